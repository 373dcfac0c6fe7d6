package tax

import (
	"context"
	"time"
)

type TaxService interface {
	CreateSlabTable(ctx context.Context, req *CreateSlabTableRequest) (*SlabTableResponse, error)
	GetSlabTable(ctx context.Context, id string) (*SlabTableResponse, error)
	ListSlabTables(ctx context.Context) ([]SlabTableResponse, error)

	// ActiveTable returns the validated slab table effective on asOf.
	ActiveTable(ctx context.Context, asOf time.Time) (*SlabTable, error)
}
