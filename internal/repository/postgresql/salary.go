package postgresql

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hrmstack/payroll-engine-go/internal/domain/salary"
	"github.com/hrmstack/payroll-engine-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type salaryRepository struct {
	db *database.DB
}

func NewSalaryRepository(db *database.DB) salary.SalaryRepository {
	return &salaryRepository{db: db}
}

// ========== STRUCTURES ==========

func (r *salaryRepository) CreateStructure(ctx context.Context, structure *salary.SalaryStructure) error {
	return WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		txCtx := context.WithValue(ctx, "tx", tx)
		q := GetQuerier(txCtx, r.db)

		query := `
			INSERT INTO salary_structures (name, description, effective_from, effective_to)
			VALUES ($1, $2, $3, $4)
			RETURNING id, created_at, updated_at
		`
		err := q.QueryRow(txCtx, query,
			structure.Name, structure.Description, structure.EffectiveFrom, structure.EffectiveTo,
		).Scan(&structure.ID, &structure.CreatedAt, &structure.UpdatedAt)
		if err != nil {
			if strings.Contains(err.Error(), "uk_salary_structure_name") {
				return salary.ErrStructureNameExists
			}
			return fmt.Errorf("failed to create salary structure: %w", err)
		}

		return r.insertComponents(txCtx, structure.ID, structure.Components)
	})
}

func (r *salaryRepository) insertComponents(ctx context.Context, structureID string, components []salary.SalaryComponent) error {
	q := GetQuerier(ctx, r.db)

	for i := range components {
		c := &components[i]
		err := q.QueryRow(ctx, `
			INSERT INTO salary_components (
				structure_id, name, kind, category, mode, value,
				base_component, formula, taxable, mandatory, proratable, display_order
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			RETURNING id
		`, structureID, c.Name, c.Kind, c.Category, c.Mode, c.Value,
			c.BaseComponent, c.Formula, c.Taxable, c.Mandatory, c.Proratable, c.DisplayOrder,
		).Scan(&c.ID)
		if err != nil {
			if strings.Contains(err.Error(), "uk_salary_component_name") {
				return salary.ErrDuplicateComponentName
			}
			return fmt.Errorf("failed to insert salary component: %w", err)
		}
	}
	return nil
}

func (r *salaryRepository) GetStructureByID(ctx context.Context, id string) (*salary.SalaryStructure, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, name, description, effective_from, effective_to, created_at, updated_at
		FROM salary_structures
		WHERE id = $1
	`

	var s salary.SalaryStructure
	err := q.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.Name, &s.Description, &s.EffectiveFrom, &s.EffectiveTo, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, salary.ErrStructureNotFound
		}
		return nil, fmt.Errorf("failed to get salary structure: %w", err)
	}

	if err := r.loadComponents(ctx, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *salaryRepository) GetStructureByName(ctx context.Context, name string) (*salary.SalaryStructure, error) {
	q := GetQuerier(ctx, r.db)

	var id string
	err := q.QueryRow(ctx, `SELECT id FROM salary_structures WHERE name = $1`, name).Scan(&id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, salary.ErrStructureNotFound
		}
		return nil, fmt.Errorf("failed to get salary structure by name: %w", err)
	}
	return r.GetStructureByID(ctx, id)
}

func (r *salaryRepository) ListStructures(ctx context.Context, activeOn *time.Time) ([]salary.SalaryStructure, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, name, description, effective_from, effective_to, created_at, updated_at
		FROM salary_structures
		WHERE ($1::date IS NULL OR (effective_from <= $1 AND (effective_to IS NULL OR effective_to >= $1)))
		ORDER BY name
	`

	rows, err := q.Query(ctx, query, activeOn)
	if err != nil {
		return nil, fmt.Errorf("failed to list salary structures: %w", err)
	}
	defer rows.Close()

	var structures []salary.SalaryStructure
	for rows.Next() {
		var s salary.SalaryStructure
		err := rows.Scan(&s.ID, &s.Name, &s.Description, &s.EffectiveFrom, &s.EffectiveTo, &s.CreatedAt, &s.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan salary structure: %w", err)
		}
		structures = append(structures, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range structures {
		if err := r.loadComponents(ctx, &structures[i]); err != nil {
			return nil, err
		}
	}
	return structures, nil
}

func (r *salaryRepository) loadComponents(ctx context.Context, s *salary.SalaryStructure) error {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT id, name, kind, category, mode, value,
			   base_component, formula, taxable, mandatory, proratable, display_order
		FROM salary_components
		WHERE structure_id = $1
		ORDER BY display_order
	`, s.ID)
	if err != nil {
		return fmt.Errorf("failed to load salary components: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c salary.SalaryComponent
		err := rows.Scan(
			&c.ID, &c.Name, &c.Kind, &c.Category, &c.Mode, &c.Value,
			&c.BaseComponent, &c.Formula, &c.Taxable, &c.Mandatory, &c.Proratable, &c.DisplayOrder,
		)
		if err != nil {
			return fmt.Errorf("failed to scan salary component: %w", err)
		}
		s.Components = append(s.Components, c)
	}
	return rows.Err()
}

func (r *salaryRepository) UpdateStructure(ctx context.Context, structure *salary.SalaryStructure) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE salary_structures
		SET name = $2, description = $3, effective_to = $4, updated_at = NOW()
		WHERE id = $1
	`, structure.ID, structure.Name, structure.Description, structure.EffectiveTo)
	if err != nil {
		if strings.Contains(err.Error(), "uk_salary_structure_name") {
			return salary.ErrStructureNameExists
		}
		return fmt.Errorf("failed to update salary structure: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return salary.ErrStructureNotFound
	}
	return nil
}

func (r *salaryRepository) ReplaceComponents(ctx context.Context, structureID string, components []salary.SalaryComponent) error {
	q := GetQuerier(ctx, r.db)

	if _, err := q.Exec(ctx, `DELETE FROM salary_components WHERE structure_id = $1`, structureID); err != nil {
		return fmt.Errorf("failed to delete salary components: %w", err)
	}
	return r.insertComponents(ctx, structureID, components)
}

func (r *salaryRepository) CountAssignmentsByStructure(ctx context.Context, structureID string) (int, error) {
	q := GetQuerier(ctx, r.db)

	var count int
	err := q.QueryRow(ctx, `
		SELECT COUNT(*) FROM employee_salary_assignments WHERE salary_structure_id = $1
	`, structureID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count assignments: %w", err)
	}
	return count, nil
}

func (r *salaryRepository) DeleteStructure(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM salary_structures WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete salary structure: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return salary.ErrStructureNotFound
	}
	return nil
}

// ========== ASSIGNMENTS ==========

func (r *salaryRepository) CreateAssignment(ctx context.Context, assignment *salary.EmployeeSalaryAssignment) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO employee_salary_assignments (
			employee_id, salary_structure_id, basic_salary, currency,
			effective_from, effective_to, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		assignment.EmployeeID, assignment.SalaryStructureID, assignment.BasicSalary, assignment.Currency,
		assignment.EffectiveFrom, assignment.EffectiveTo, assignment.Status,
	).Scan(&assignment.ID, &assignment.CreatedAt, &assignment.UpdatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "uk_active_assignment") {
			return salary.ErrAssignmentOverlap
		}
		return fmt.Errorf("failed to create salary assignment: %w", err)
	}
	return nil
}

func (r *salaryRepository) GetAssignmentByID(ctx context.Context, id string) (*salary.EmployeeSalaryAssignment, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, employee_id, salary_structure_id, basic_salary, currency,
			   effective_from, effective_to, status, created_at, updated_at
		FROM employee_salary_assignments
		WHERE id = $1
	`

	var a salary.EmployeeSalaryAssignment
	err := q.QueryRow(ctx, query, id).Scan(
		&a.ID, &a.EmployeeID, &a.SalaryStructureID, &a.BasicSalary, &a.Currency,
		&a.EffectiveFrom, &a.EffectiveTo, &a.Status, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, salary.ErrAssignmentNotFound
		}
		return nil, fmt.Errorf("failed to get salary assignment: %w", err)
	}
	return &a, nil
}

func (r *salaryRepository) GetActiveAssignment(ctx context.Context, employeeID string, asOf time.Time) (*salary.EmployeeSalaryAssignment, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, employee_id, salary_structure_id, basic_salary, currency,
			   effective_from, effective_to, status, created_at, updated_at
		FROM employee_salary_assignments
		WHERE employee_id = $1
		  AND status = 'active'
		  AND effective_from <= $2
		  AND (effective_to IS NULL OR effective_to >= $2)
		ORDER BY effective_from DESC
		LIMIT 1
	`

	var a salary.EmployeeSalaryAssignment
	err := q.QueryRow(ctx, query, employeeID, asOf).Scan(
		&a.ID, &a.EmployeeID, &a.SalaryStructureID, &a.BasicSalary, &a.Currency,
		&a.EffectiveFrom, &a.EffectiveTo, &a.Status, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, salary.ErrAssignmentNotFound
		}
		return nil, fmt.Errorf("failed to get active assignment: %w", err)
	}
	return &a, nil
}

func (r *salaryRepository) ListAssignmentsByEmployee(ctx context.Context, employeeID string) ([]salary.EmployeeSalaryAssignment, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, employee_id, salary_structure_id, basic_salary, currency,
			   effective_from, effective_to, status, created_at, updated_at
		FROM employee_salary_assignments
		WHERE employee_id = $1
		ORDER BY effective_from DESC
	`

	rows, err := q.Query(ctx, query, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	defer rows.Close()

	var assignments []salary.EmployeeSalaryAssignment
	for rows.Next() {
		var a salary.EmployeeSalaryAssignment
		err := rows.Scan(
			&a.ID, &a.EmployeeID, &a.SalaryStructureID, &a.BasicSalary, &a.Currency,
			&a.EffectiveFrom, &a.EffectiveTo, &a.Status, &a.CreatedAt, &a.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

func (r *salaryRepository) SupersedeAssignment(ctx context.Context, id string, effectiveTo time.Time) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE employee_salary_assignments
		SET status = 'superseded', effective_to = $2, updated_at = NOW()
		WHERE id = $1
	`, id, effectiveTo)
	if err != nil {
		return fmt.Errorf("failed to supersede assignment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return salary.ErrAssignmentNotFound
	}
	return nil
}
