package employee

import "github.com/hrmstack/payroll-engine-go/internal/pkg/validator"

type CreateEmployeeRequest struct {
	EmployeeCode string `json:"employee_code"`
	FullName     string `json:"full_name"`
	Email        string `json:"email"`
	JoinDate     string `json:"join_date"`
}

func (r *CreateEmployeeRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeCode) {
		errs = append(errs, validator.ValidationError{Field: "employee_code", Message: "is required"})
	}
	if validator.IsEmpty(r.FullName) {
		errs = append(errs, validator.ValidationError{Field: "full_name", Message: "is required"})
	}
	if !validator.IsValidEmail(r.Email) {
		errs = append(errs, validator.ValidationError{Field: "email", Message: "must be a valid email address"})
	}
	if _, ok := validator.IsValidDate(r.JoinDate); !ok {
		errs = append(errs, validator.ValidationError{Field: "join_date", Message: "must be a valid date (YYYY-MM-DD)"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type UpdateEmployeeRequest struct {
	ID              string
	FullName        *string `json:"full_name,omitempty"`
	Email           *string `json:"email,omitempty"`
	Status          *string `json:"status,omitempty"`
	TerminationDate *string `json:"termination_date,omitempty"`
}

type EmployeeResponse struct {
	ID              string  `json:"id"`
	EmployeeCode    string  `json:"employee_code"`
	FullName        string  `json:"full_name"`
	Email           string  `json:"email"`
	JoinDate        string  `json:"join_date"`
	TerminationDate *string `json:"termination_date,omitempty"`
	Status          string  `json:"status"`
}
