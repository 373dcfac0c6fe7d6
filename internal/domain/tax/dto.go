package tax

import (
	"github.com/hrmstack/payroll-engine-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type SlabRequest struct {
	LowerBound decimal.Decimal  `json:"lower_bound"`
	UpperBound *decimal.Decimal `json:"upper_bound,omitempty"`
	Rate       decimal.Decimal  `json:"rate"`
}

type CreateSlabTableRequest struct {
	Name          string        `json:"name"`
	Currency      string        `json:"currency"`
	Slabs         []SlabRequest `json:"slabs"`
	EffectiveFrom string        `json:"effective_from"`
	EffectiveTo   *string       `json:"effective_to,omitempty"`
}

func (r *CreateSlabTableRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{Field: "name", Message: "is required"})
	}
	if validator.IsEmpty(r.Currency) {
		errs = append(errs, validator.ValidationError{Field: "currency", Message: "is required"})
	}
	if len(r.Slabs) == 0 {
		errs = append(errs, validator.ValidationError{Field: "slabs", Message: "at least one slab is required"})
	}
	if _, ok := validator.IsValidDate(r.EffectiveFrom); !ok {
		errs = append(errs, validator.ValidationError{Field: "effective_from", Message: "must be a valid date (YYYY-MM-DD)"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type SlabResponse struct {
	LowerBound decimal.Decimal  `json:"lower_bound"`
	UpperBound *decimal.Decimal `json:"upper_bound,omitempty"`
	Rate       decimal.Decimal  `json:"rate"`
}

type SlabTableResponse struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Currency      string         `json:"currency"`
	Slabs         []SlabResponse `json:"slabs"`
	EffectiveFrom string         `json:"effective_from"`
	EffectiveTo   *string        `json:"effective_to,omitempty"`
}
