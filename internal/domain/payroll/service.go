package payroll

import "context"

type PayrollService interface {
	// Periods
	CreatePeriod(ctx context.Context, req *CreatePeriodRequest) (*PeriodResponse, error)
	GetPeriod(ctx context.Context, id string) (*PeriodResponse, error)
	ListPeriods(ctx context.Context, status *string) ([]PeriodResponse, error)
	TransitionPeriod(ctx context.Context, id string, next PeriodStatus) (*PeriodResponse, error)

	// Inputs
	UpsertInput(ctx context.Context, req *UpsertInputRequest) (*InputResponse, error)
	ListInputs(ctx context.Context, periodID string) ([]InputResponse, error)

	// Payslips
	GeneratePayslip(ctx context.Context, req *GeneratePayslipRequest) (*PayslipResponse, error)
	BulkGenerate(ctx context.Context, req *BulkGenerateRequest) (*BulkGenerateResponse, error)
	GetPayslip(ctx context.Context, id string) (*PayslipResponse, error)
	ListPayslips(ctx context.Context, filter PayslipFilter) (*ListPayslipResponse, error)
	ApprovePayslip(ctx context.Context, id string) (*PayslipResponse, error)
	MarkPayslipPaid(ctx context.Context, id string) (*PayslipResponse, error)
	VoidPayslip(ctx context.Context, id string) (*PayslipResponse, error)
}
