package employee

import "time"

type EmploymentStatus string

const (
	EmploymentStatusActive     EmploymentStatus = "active"
	EmploymentStatusResigned   EmploymentStatus = "resigned"
	EmploymentStatusTerminated EmploymentStatus = "terminated"
)

type Employee struct {
	ID              string
	EmployeeCode    string
	FullName        string
	Email           string
	JoinDate        time.Time
	TerminationDate *time.Time
	Status          EmploymentStatus
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// EmployableOn reports whether the employee was on the books for any part
// of the given range. Payslips are never generated outside this window.
func (e *Employee) EmployableOn(start, end time.Time) bool {
	if e.JoinDate.After(end) {
		return false
	}
	if e.TerminationDate != nil && e.TerminationDate.Before(start) {
		return false
	}
	return true
}
