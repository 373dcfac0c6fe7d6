package tax

import (
	"context"
	"errors"
	"time"

	"github.com/hrmstack/payroll-engine-go/internal/domain/tax"
)

type TaxServiceImpl struct {
	taxRepo tax.TaxRepository
}

func NewTaxService(taxRepo tax.TaxRepository) tax.TaxService {
	return &TaxServiceImpl{taxRepo: taxRepo}
}

func (s *TaxServiceImpl) CreateSlabTable(ctx context.Context, req *tax.CreateSlabTableRequest) (*tax.SlabTableResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	effectiveFrom, _ := time.Parse("2006-01-02", req.EffectiveFrom)
	table := &tax.SlabTable{
		Name:          req.Name,
		Currency:      req.Currency,
		EffectiveFrom: effectiveFrom,
		Slabs:         make([]tax.Slab, 0, len(req.Slabs)),
	}
	if req.EffectiveTo != nil {
		to, err := time.Parse("2006-01-02", *req.EffectiveTo)
		if err != nil {
			return nil, &tax.ConfigError{Reason: "effective_to must be a valid date"}
		}
		table.EffectiveTo = &to
	}
	for _, s := range req.Slabs {
		table.Slabs = append(table.Slabs, tax.Slab{
			LowerBound: s.LowerBound,
			UpperBound: s.UpperBound,
			Rate:       s.Rate,
		})
	}

	if err := table.Validate(); err != nil {
		return nil, err
	}

	if err := s.taxRepo.CreateSlabTable(ctx, table); err != nil {
		return nil, err
	}
	return tableToResponse(table), nil
}

func (s *TaxServiceImpl) GetSlabTable(ctx context.Context, id string) (*tax.SlabTableResponse, error) {
	table, err := s.taxRepo.GetSlabTableByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return tableToResponse(table), nil
}

func (s *TaxServiceImpl) ListSlabTables(ctx context.Context) ([]tax.SlabTableResponse, error) {
	tables, err := s.taxRepo.ListSlabTables(ctx)
	if err != nil {
		return nil, err
	}
	responses := make([]tax.SlabTableResponse, 0, len(tables))
	for i := range tables {
		responses = append(responses, *tableToResponse(&tables[i]))
	}
	return responses, nil
}

// ActiveTable loads the slab table effective on the given date, validated.
func (s *TaxServiceImpl) ActiveTable(ctx context.Context, asOf time.Time) (*tax.SlabTable, error) {
	table, err := s.taxRepo.GetActiveSlabTable(ctx, asOf)
	if err != nil {
		if errors.Is(err, tax.ErrTableNotFound) {
			return nil, tax.ErrNoActiveTable
		}
		return nil, err
	}
	if err := table.Validate(); err != nil {
		return nil, err
	}
	return table, nil
}

func tableToResponse(t *tax.SlabTable) *tax.SlabTableResponse {
	resp := &tax.SlabTableResponse{
		ID:            t.ID,
		Name:          t.Name,
		Currency:      t.Currency,
		EffectiveFrom: t.EffectiveFrom.Format("2006-01-02"),
		Slabs:         make([]tax.SlabResponse, 0, len(t.Slabs)),
	}
	if t.EffectiveTo != nil {
		to := t.EffectiveTo.Format("2006-01-02")
		resp.EffectiveTo = &to
	}
	for _, s := range t.Slabs {
		resp.Slabs = append(resp.Slabs, tax.SlabResponse{
			LowerBound: s.LowerBound,
			UpperBound: s.UpperBound,
			Rate:       s.Rate,
		})
	}
	return resp
}
