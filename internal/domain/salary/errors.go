package salary

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrStructureNotFound      = errors.New("salary structure not found")
	ErrStructureNameExists    = errors.New("salary structure name already exists")
	ErrStructureInUse         = errors.New("salary structure is referenced by active assignments")
	ErrAssignmentNotFound     = errors.New("salary assignment not found")
	ErrAssignmentOverlap      = errors.New("salary assignment overlaps with an existing assignment")
	ErrUnknownReference       = errors.New("component references an unknown component")
	ErrCyclicDependency       = errors.New("component references form a cycle")
	ErrInvalidFormula         = errors.New("component formula is invalid")
	ErrMissingBasicComponent  = errors.New("structure must contain exactly one fixed basic component")
	ErrDuplicateComponentName = errors.New("component names must be unique within a structure")
	ErrInvalidDateFilter      = errors.New("date must be in YYYY-MM-DD format")
)

// ResolutionErrorKind is the machine-readable class of a structural
// resolution failure.
type ResolutionErrorKind string

const (
	ResolutionUnknownReference ResolutionErrorKind = "unknown_reference"
	ResolutionCyclicDependency ResolutionErrorKind = "cyclic_dependency"
	ResolutionInvalidFormula   ResolutionErrorKind = "invalid_formula"
)

// ResolutionError reports a structural defect in a salary structure.
// These block every employee assigned to the structure until an
// administrator corrects the definition; they are never retryable.
type ResolutionError struct {
	Kind      ResolutionErrorKind
	Component string   // component whose rule failed
	Reference string   // offending reference, for unknown_reference
	Cycle     []string // member names, for cyclic_dependency
	Reason    string
}

func (e *ResolutionError) Error() string {
	switch e.Kind {
	case ResolutionUnknownReference:
		return fmt.Sprintf("component %q references unknown component %q", e.Component, e.Reference)
	case ResolutionCyclicDependency:
		return fmt.Sprintf("cyclic dependency among components: %s", strings.Join(e.Cycle, " -> "))
	case ResolutionInvalidFormula:
		return fmt.Sprintf("invalid formula on component %q: %s", e.Component, e.Reason)
	}
	return e.Reason
}

func (e *ResolutionError) Unwrap() error {
	switch e.Kind {
	case ResolutionUnknownReference:
		return ErrUnknownReference
	case ResolutionCyclicDependency:
		return ErrCyclicDependency
	case ResolutionInvalidFormula:
		return ErrInvalidFormula
	}
	return nil
}
