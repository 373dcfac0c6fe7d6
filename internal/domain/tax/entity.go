package tax

import (
	"time"

	"github.com/shopspring/decimal"
)

// Slab - One progressive tax bracket. UpperBound nil means unbounded.
type Slab struct {
	LowerBound decimal.Decimal  `json:"lower_bound"`
	UpperBound *decimal.Decimal `json:"upper_bound,omitempty"`
	Rate       decimal.Decimal  `json:"rate"` // percentage, e.g. 10 for 10%
}

// SlabTable - An ordered set of slabs effective for a date range.
type SlabTable struct {
	ID            string
	Name          string
	Currency      string
	Slabs         []Slab
	EffectiveFrom time.Time
	EffectiveTo   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Validate checks that slabs are contiguous from zero, strictly
// increasing, non-overlapping, and end with an unbounded slab.
func (t *SlabTable) Validate() error {
	if len(t.Slabs) == 0 {
		return &ConfigError{TableID: t.ID, Reason: "slab table has no slabs"}
	}
	if !t.Slabs[0].LowerBound.IsZero() {
		return &ConfigError{TableID: t.ID, Reason: "first slab must start at zero"}
	}
	for i, s := range t.Slabs {
		if s.Rate.IsNegative() {
			return &ConfigError{TableID: t.ID, Reason: "slab rate must be non-negative"}
		}
		last := i == len(t.Slabs)-1
		if last {
			if s.UpperBound != nil {
				return &ConfigError{TableID: t.ID, Reason: "final slab must be unbounded"}
			}
			continue
		}
		if s.UpperBound == nil {
			return &ConfigError{TableID: t.ID, Reason: "only the final slab may be unbounded"}
		}
		if !s.UpperBound.GreaterThan(s.LowerBound) {
			return &ConfigError{TableID: t.ID, Reason: "slab upper bound must exceed its lower bound"}
		}
		if !t.Slabs[i+1].LowerBound.Equal(*s.UpperBound) {
			return &ConfigError{TableID: t.ID, Reason: "slabs must be contiguous with no gaps or overlaps"}
		}
	}
	return nil
}
