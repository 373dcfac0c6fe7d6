package tax

import (
	"context"
	"time"
)

type TaxRepository interface {
	CreateSlabTable(ctx context.Context, table *SlabTable) error
	GetSlabTableByID(ctx context.Context, id string) (*SlabTable, error)
	GetActiveSlabTable(ctx context.Context, asOf time.Time) (*SlabTable, error)
	ListSlabTables(ctx context.Context) ([]SlabTable, error)
}
