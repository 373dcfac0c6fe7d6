package salary

import "context"

type SalaryService interface {
	// Structures
	CreateStructure(ctx context.Context, req *CreateStructureRequest) (*StructureResponse, error)
	GetStructure(ctx context.Context, id string) (*StructureResponse, error)
	ListStructures(ctx context.Context, activeOn *string) ([]StructureResponse, error)
	UpdateStructure(ctx context.Context, req *UpdateStructureRequest) (*StructureResponse, error)
	DeleteStructure(ctx context.Context, id string) error

	// Assignments
	AssignStructure(ctx context.Context, req *CreateAssignmentRequest) (*AssignmentResponse, error)
	GetAssignment(ctx context.Context, id string) (*AssignmentResponse, error)
	ListEmployeeAssignments(ctx context.Context, employeeID string) ([]AssignmentResponse, error)
}
