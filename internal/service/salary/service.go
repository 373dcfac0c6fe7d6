package salary

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/hrmstack/payroll-engine-go/internal/domain/employee"
	"github.com/hrmstack/payroll-engine-go/internal/domain/salary"
	"github.com/hrmstack/payroll-engine-go/internal/fixtures"
	"github.com/hrmstack/payroll-engine-go/internal/pkg/database"
	"github.com/hrmstack/payroll-engine-go/internal/repository/postgresql"
)

type SalaryServiceImpl struct {
	db           *database.DB
	salaryRepo   salary.SalaryRepository
	employeeRepo employee.EmployeeRepository
}

func NewSalaryService(
	db *database.DB,
	salaryRepo salary.SalaryRepository,
	employeeRepo employee.EmployeeRepository,
) salary.SalaryService {
	return &SalaryServiceImpl{
		db:           db,
		salaryRepo:   salaryRepo,
		employeeRepo: employeeRepo,
	}
}

// ========== STRUCTURES ==========

func (s *SalaryServiceImpl) CreateStructure(ctx context.Context, req *salary.CreateStructureRequest) (*salary.StructureResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	components := componentsFromRequests(req.Components)
	if req.UseDefaultComponents {
		components = fixtures.GetDefaultComponents()
	}

	effectiveFrom, _ := time.Parse("2006-01-02", req.EffectiveFrom)
	structure := &salary.SalaryStructure{
		Name:          req.Name,
		Description:   req.Description,
		EffectiveFrom: effectiveFrom,
		Components:    components,
	}
	if req.EffectiveTo != nil {
		to, _ := time.Parse("2006-01-02", *req.EffectiveTo)
		structure.EffectiveTo = &to
	}

	// Structural defects are rejected at save time, not discovered
	// during payslip generation.
	if _, err := CompilePlan(structure); err != nil {
		return nil, err
	}

	existing, err := s.salaryRepo.GetStructureByName(ctx, req.Name)
	if err != nil && !errors.Is(err, salary.ErrStructureNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, salary.ErrStructureNameExists
	}

	if err := s.salaryRepo.CreateStructure(ctx, structure); err != nil {
		return nil, err
	}
	return structureToResponse(structure), nil
}

func (s *SalaryServiceImpl) GetStructure(ctx context.Context, id string) (*salary.StructureResponse, error) {
	structure, err := s.salaryRepo.GetStructureByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return structureToResponse(structure), nil
}

func (s *SalaryServiceImpl) ListStructures(ctx context.Context, activeOn *string) ([]salary.StructureResponse, error) {
	var asOf *time.Time
	if activeOn != nil {
		t, err := time.Parse("2006-01-02", *activeOn)
		if err != nil {
			return nil, salary.ErrInvalidDateFilter
		}
		asOf = &t
	}

	structures, err := s.salaryRepo.ListStructures(ctx, asOf)
	if err != nil {
		return nil, err
	}
	responses := make([]salary.StructureResponse, 0, len(structures))
	for i := range structures {
		responses = append(responses, *structureToResponse(&structures[i]))
	}
	return responses, nil
}

func (s *SalaryServiceImpl) UpdateStructure(ctx context.Context, req *salary.UpdateStructureRequest) (*salary.StructureResponse, error) {
	structure, err := s.salaryRepo.GetStructureByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		structure.Name = *req.Name
	}
	if req.Description != nil {
		structure.Description = req.Description
	}
	if req.EffectiveTo != nil {
		to, parseErr := time.Parse("2006-01-02", *req.EffectiveTo)
		if parseErr != nil {
			return nil, salary.ErrInvalidDateFilter
		}
		structure.EffectiveTo = &to
	}
	if req.Components != nil {
		structure.Components = componentsFromRequests(*req.Components)
	}

	if _, err := CompilePlan(structure); err != nil {
		return nil, err
	}

	err = postgresql.WithTransaction(ctx, s.db, func(tx pgx.Tx) error {
		txCtx := context.WithValue(ctx, "tx", tx)
		if err := s.salaryRepo.UpdateStructure(txCtx, structure); err != nil {
			return err
		}
		if req.Components != nil {
			return s.salaryRepo.ReplaceComponents(txCtx, structure.ID, structure.Components)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.salaryRepo.GetStructureByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	return structureToResponse(updated), nil
}

func (s *SalaryServiceImpl) DeleteStructure(ctx context.Context, id string) error {
	if _, err := s.salaryRepo.GetStructureByID(ctx, id); err != nil {
		return err
	}

	count, err := s.salaryRepo.CountAssignmentsByStructure(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return salary.ErrStructureInUse
	}
	return s.salaryRepo.DeleteStructure(ctx, id)
}

// ========== ASSIGNMENTS ==========

func (s *SalaryServiceImpl) AssignStructure(ctx context.Context, req *salary.CreateAssignmentRequest) (*salary.AssignmentResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.employeeRepo.GetByID(ctx, req.EmployeeID); err != nil {
		return nil, err
	}
	structure, err := s.salaryRepo.GetStructureByID(ctx, req.SalaryStructureID)
	if err != nil {
		return nil, err
	}

	effectiveFrom, _ := time.Parse("2006-01-02", req.EffectiveFrom)
	assignment := &salary.EmployeeSalaryAssignment{
		EmployeeID:        req.EmployeeID,
		SalaryStructureID: req.SalaryStructureID,
		BasicSalary:       req.BasicSalary,
		Currency:          req.Currency,
		EffectiveFrom:     effectiveFrom,
		Status:            salary.AssignmentStatusActive,
	}
	if req.EffectiveTo != nil {
		to, parseErr := time.Parse("2006-01-02", *req.EffectiveTo)
		if parseErr != nil {
			return nil, salary.ErrInvalidDateFilter
		}
		assignment.EffectiveTo = &to
	}

	// A new assignment supersedes the employee's current one rather than
	// deleting it, so historical payslips keep their source.
	err = postgresql.WithTransaction(ctx, s.db, func(tx pgx.Tx) error {
		txCtx := context.WithValue(ctx, "tx", tx)

		current, err := s.salaryRepo.GetActiveAssignment(txCtx, req.EmployeeID, effectiveFrom)
		if err != nil && !errors.Is(err, salary.ErrAssignmentNotFound) {
			return err
		}
		if current != nil {
			if !current.EffectiveFrom.Before(effectiveFrom) {
				return salary.ErrAssignmentOverlap
			}
			closedAt := effectiveFrom.AddDate(0, 0, -1)
			if err := s.salaryRepo.SupersedeAssignment(txCtx, current.ID, closedAt); err != nil {
				return err
			}
		}
		return s.salaryRepo.CreateAssignment(txCtx, assignment)
	})
	if err != nil {
		return nil, err
	}

	resp := assignmentToResponse(assignment)
	resp.StructureName = structure.Name
	return resp, nil
}

func (s *SalaryServiceImpl) GetAssignment(ctx context.Context, id string) (*salary.AssignmentResponse, error) {
	assignment, err := s.salaryRepo.GetAssignmentByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return assignmentToResponse(assignment), nil
}

func (s *SalaryServiceImpl) ListEmployeeAssignments(ctx context.Context, employeeID string) ([]salary.AssignmentResponse, error) {
	if _, err := s.employeeRepo.GetByID(ctx, employeeID); err != nil {
		return nil, err
	}

	assignments, err := s.salaryRepo.ListAssignmentsByEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	responses := make([]salary.AssignmentResponse, 0, len(assignments))
	for i := range assignments {
		responses = append(responses, *assignmentToResponse(&assignments[i]))
	}
	return responses, nil
}

// ========== MAPPERS ==========

func componentsFromRequests(reqs []salary.ComponentRequest) []salary.SalaryComponent {
	components := make([]salary.SalaryComponent, 0, len(reqs))
	for _, c := range reqs {
		proratable := c.Kind == string(salary.ComponentKindEarning)
		if salary.ComponentCategory(c.Category) == salary.CategoryStatutoryDeduction {
			proratable = false
		}
		if c.Proratable != nil {
			proratable = *c.Proratable
		}
		components = append(components, salary.SalaryComponent{
			Name:          c.Name,
			Kind:          salary.ComponentKind(c.Kind),
			Category:      salary.ComponentCategory(c.Category),
			Mode:          salary.CalculationMode(c.Mode),
			Value:         c.Value,
			BaseComponent: c.BaseComponent,
			Formula:       c.Formula,
			Taxable:       c.Taxable,
			Mandatory:     c.Mandatory,
			Proratable:    proratable,
			DisplayOrder:  c.DisplayOrder,
		})
	}
	return components
}

func structureToResponse(s *salary.SalaryStructure) *salary.StructureResponse {
	resp := &salary.StructureResponse{
		ID:            s.ID,
		Name:          s.Name,
		Description:   s.Description,
		EffectiveFrom: s.EffectiveFrom.Format("2006-01-02"),
		Components:    make([]salary.ComponentResponse, 0, len(s.Components)),
	}
	if s.EffectiveTo != nil {
		to := s.EffectiveTo.Format("2006-01-02")
		resp.EffectiveTo = &to
	}
	for _, c := range s.Components {
		resp.Components = append(resp.Components, salary.ComponentResponse{
			ID:            c.ID,
			Name:          c.Name,
			Kind:          string(c.Kind),
			Category:      string(c.Category),
			Mode:          string(c.Mode),
			Value:         c.Value,
			BaseComponent: c.BaseComponent,
			Formula:       c.Formula,
			Taxable:       c.Taxable,
			Mandatory:     c.Mandatory,
			Proratable:    c.Proratable,
			DisplayOrder:  c.DisplayOrder,
		})
	}
	return resp
}

func assignmentToResponse(a *salary.EmployeeSalaryAssignment) *salary.AssignmentResponse {
	resp := &salary.AssignmentResponse{
		ID:                a.ID,
		EmployeeID:        a.EmployeeID,
		SalaryStructureID: a.SalaryStructureID,
		BasicSalary:       a.BasicSalary,
		Currency:          a.Currency,
		EffectiveFrom:     a.EffectiveFrom.Format("2006-01-02"),
		Status:            string(a.Status),
	}
	if a.EffectiveTo != nil {
		to := a.EffectiveTo.Format("2006-01-02")
		resp.EffectiveTo = &to
	}
	return resp
}
