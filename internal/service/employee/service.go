package employee

import (
	"context"
	"time"

	"github.com/hrmstack/payroll-engine-go/internal/domain/employee"
	"github.com/hrmstack/payroll-engine-go/internal/pkg/validator"
)

type EmployeeServiceImpl struct {
	employeeRepo employee.EmployeeRepository
}

func NewEmployeeService(employeeRepo employee.EmployeeRepository) employee.EmployeeService {
	return &EmployeeServiceImpl{employeeRepo: employeeRepo}
}

func (s *EmployeeServiceImpl) CreateEmployee(ctx context.Context, req *employee.CreateEmployeeRequest) (*employee.EmployeeResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	joinDate, _ := validator.IsValidDate(req.JoinDate)
	emp := &employee.Employee{
		EmployeeCode: req.EmployeeCode,
		FullName:     req.FullName,
		Email:        req.Email,
		JoinDate:     joinDate,
		Status:       employee.EmploymentStatusActive,
	}

	if err := s.employeeRepo.Create(ctx, emp); err != nil {
		return nil, err
	}

	return employeeToResponse(emp), nil
}

func (s *EmployeeServiceImpl) GetEmployee(ctx context.Context, id string) (*employee.EmployeeResponse, error) {
	emp, err := s.employeeRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return employeeToResponse(emp), nil
}

func (s *EmployeeServiceImpl) ListActiveEmployees(ctx context.Context) ([]employee.EmployeeResponse, error) {
	employees, err := s.employeeRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]employee.EmployeeResponse, 0, len(employees))
	for i := range employees {
		responses = append(responses, *employeeToResponse(&employees[i]))
	}
	return responses, nil
}

func (s *EmployeeServiceImpl) UpdateEmployee(ctx context.Context, req *employee.UpdateEmployeeRequest) (*employee.EmployeeResponse, error) {
	emp, err := s.employeeRepo.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	var errs validator.ValidationErrors
	if req.FullName != nil {
		if validator.IsEmpty(*req.FullName) {
			errs = append(errs, validator.ValidationError{Field: "full_name", Message: "must not be empty"})
		} else {
			emp.FullName = *req.FullName
		}
	}
	if req.Email != nil {
		if !validator.IsValidEmail(*req.Email) {
			errs = append(errs, validator.ValidationError{Field: "email", Message: "must be a valid email address"})
		} else {
			emp.Email = *req.Email
		}
	}
	if req.Status != nil {
		status := employee.EmploymentStatus(*req.Status)
		switch status {
		case employee.EmploymentStatusActive, employee.EmploymentStatusResigned, employee.EmploymentStatusTerminated:
			emp.Status = status
		default:
			errs = append(errs, validator.ValidationError{Field: "status", Message: "must be 'active', 'resigned' or 'terminated'"})
		}
	}
	if req.TerminationDate != nil {
		terminationDate, ok := validator.IsValidDate(*req.TerminationDate)
		if !ok {
			errs = append(errs, validator.ValidationError{Field: "termination_date", Message: "must be a valid date (YYYY-MM-DD)"})
		} else if terminationDate.Before(emp.JoinDate) {
			errs = append(errs, validator.ValidationError{Field: "termination_date", Message: "must not be before join date"})
		} else {
			emp.TerminationDate = &terminationDate
		}
	}
	if len(errs) > 0 {
		return nil, errs
	}

	if err := s.employeeRepo.Update(ctx, emp); err != nil {
		return nil, err
	}

	return employeeToResponse(emp), nil
}

func employeeToResponse(emp *employee.Employee) *employee.EmployeeResponse {
	resp := &employee.EmployeeResponse{
		ID:           emp.ID,
		EmployeeCode: emp.EmployeeCode,
		FullName:     emp.FullName,
		Email:        emp.Email,
		JoinDate:     emp.JoinDate.Format(time.DateOnly),
		Status:       string(emp.Status),
	}
	if emp.TerminationDate != nil {
		terminated := emp.TerminationDate.Format(time.DateOnly)
		resp.TerminationDate = &terminated
	}
	return resp
}
