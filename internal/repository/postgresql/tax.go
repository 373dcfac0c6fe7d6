package postgresql

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/hrmstack/payroll-engine-go/internal/domain/tax"
	"github.com/hrmstack/payroll-engine-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type taxRepository struct {
	db *database.DB
}

func NewTaxRepository(db *database.DB) tax.TaxRepository {
	return &taxRepository{db: db}
}

func (r *taxRepository) CreateSlabTable(ctx context.Context, table *tax.SlabTable) error {
	q := GetQuerier(ctx, r.db)

	slabs, err := json.Marshal(table.Slabs)
	if err != nil {
		return fmt.Errorf("failed to marshal slabs: %w", err)
	}

	query := `
		INSERT INTO tax_slab_tables (name, currency, slabs, effective_from, effective_to)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	err = q.QueryRow(ctx, query,
		table.Name, table.Currency, slabs, table.EffectiveFrom, table.EffectiveTo,
	).Scan(&table.ID, &table.CreatedAt, &table.UpdatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "uk_tax_slab_table_name") {
			return tax.ErrTableNameExists
		}
		return fmt.Errorf("failed to create tax slab table: %w", err)
	}
	return nil
}

func (r *taxRepository) GetSlabTableByID(ctx context.Context, id string) (*tax.SlabTable, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, name, currency, slabs, effective_from, effective_to, created_at, updated_at
		FROM tax_slab_tables
		WHERE id = $1
	`

	table, err := scanSlabTable(q.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, tax.ErrTableNotFound
		}
		return nil, fmt.Errorf("failed to get tax slab table: %w", err)
	}
	return table, nil
}

func (r *taxRepository) GetActiveSlabTable(ctx context.Context, asOf time.Time) (*tax.SlabTable, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, name, currency, slabs, effective_from, effective_to, created_at, updated_at
		FROM tax_slab_tables
		WHERE effective_from <= $1 AND (effective_to IS NULL OR effective_to >= $1)
		ORDER BY effective_from DESC
		LIMIT 1
	`

	table, err := scanSlabTable(q.QueryRow(ctx, query, asOf))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, tax.ErrTableNotFound
		}
		return nil, fmt.Errorf("failed to get active tax slab table: %w", err)
	}
	return table, nil
}

func (r *taxRepository) ListSlabTables(ctx context.Context) ([]tax.SlabTable, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, name, currency, slabs, effective_from, effective_to, created_at, updated_at
		FROM tax_slab_tables
		ORDER BY effective_from DESC
	`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list tax slab tables: %w", err)
	}
	defer rows.Close()

	var tables []tax.SlabTable
	for rows.Next() {
		table, err := scanSlabTable(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tax slab table: %w", err)
		}
		tables = append(tables, *table)
	}
	return tables, rows.Err()
}

func scanSlabTable(row pgx.Row) (*tax.SlabTable, error) {
	var t tax.SlabTable
	var slabs []byte
	err := row.Scan(&t.ID, &t.Name, &t.Currency, &slabs, &t.EffectiveFrom, &t.EffectiveTo, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(slabs, &t.Slabs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal slabs: %w", err)
	}
	return &t, nil
}
