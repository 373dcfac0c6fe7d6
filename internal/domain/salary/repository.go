package salary

import (
	"context"
	"time"
)

type SalaryRepository interface {
	// Structures
	CreateStructure(ctx context.Context, structure *SalaryStructure) error
	GetStructureByID(ctx context.Context, id string) (*SalaryStructure, error)
	GetStructureByName(ctx context.Context, name string) (*SalaryStructure, error)
	ListStructures(ctx context.Context, activeOn *time.Time) ([]SalaryStructure, error)
	UpdateStructure(ctx context.Context, structure *SalaryStructure) error
	ReplaceComponents(ctx context.Context, structureID string, components []SalaryComponent) error
	CountAssignmentsByStructure(ctx context.Context, structureID string) (int, error)
	DeleteStructure(ctx context.Context, id string) error

	// Assignments
	CreateAssignment(ctx context.Context, assignment *EmployeeSalaryAssignment) error
	GetAssignmentByID(ctx context.Context, id string) (*EmployeeSalaryAssignment, error)
	GetActiveAssignment(ctx context.Context, employeeID string, asOf time.Time) (*EmployeeSalaryAssignment, error)
	ListAssignmentsByEmployee(ctx context.Context, employeeID string) ([]EmployeeSalaryAssignment, error)
	SupersedeAssignment(ctx context.Context, id string, effectiveTo time.Time) error
}
