package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/stwalsh4118/estatedesk/internal/database"
	"github.com/stwalsh4118/estatedesk/internal/models"
)

// Unit attributes without a dedicated column are kept in custom_fields
// under these keys.
const (
	customKeyTower    = "tower"
	customKeyUnitCode = "unit_code"
	customKeyUnitView = "unit_view"
	customKeyUnitType = "unit_type"
)

var reservedCustomKeys = []string{customKeyTower, customKeyUnitCode, customKeyUnitView, customKeyUnitType}

// UnitRepository defines data access for units.
type UnitRepository interface {
	// UpsertUnits writes rows for a project in one transaction. Rows are keyed
	// by (project_id, unit number or unit code); existing rows are overwritten.
	// Returns the number of rows written.
	UpsertUnits(ctx context.Context, projectID string, rows []models.UnitRow) (int, error)

	// ListByProject returns every unit of the project ordered by tower, floor
	// and unit number. Returns an empty slice when there are none.
	ListByProject(ctx context.Context, projectID string) ([]models.Unit, error)

	// DeleteByProject removes all units of the project.
	DeleteByProject(ctx context.Context, projectID string) (int64, error)
}

type unitRepository struct {
	db *database.Database
}

// NewUnitRepository creates a new UnitRepository.
func NewUnitRepository(db *database.Database) UnitRepository {
	return &unitRepository{db: db}
}

const upsertUnitSQL = `
	INSERT INTO units (
		project_id, unit_number, floor_number, bedrooms,
		area_total, area_suite, area_balcony, price, status,
		custom_fields, raw_data
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	ON CONFLICT (project_id, unit_number) DO UPDATE SET
		floor_number = EXCLUDED.floor_number,
		bedrooms = EXCLUDED.bedrooms,
		area_total = EXCLUDED.area_total,
		area_suite = EXCLUDED.area_suite,
		area_balcony = EXCLUDED.area_balcony,
		price = EXCLUDED.price,
		status = EXCLUDED.status,
		custom_fields = EXCLUDED.custom_fields,
		raw_data = EXCLUDED.raw_data,
		updated_at = now()
`

func (r *unitRepository) UpsertUnits(ctx context.Context, projectID string, rows []models.UnitRow) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin unit upsert for project %s: %w", projectID, err)
	}
	// Rollback after a successful commit is a no-op.
	defer func() { _ = tx.Rollback(ctx) }()

	batch := &pgx.Batch{}
	for _, row := range rows {
		batch.Queue(upsertUnitSQL,
			projectID,
			row.Key(),
			row.Floor,
			row.Bedrooms,
			row.AreaTotal,
			row.AreaSuite,
			row.AreaBalcony,
			row.Price,
			string(unitStatus(row.Status)),
			storedCustomFields(row),
			row.RawData,
		)
	}

	results := tx.SendBatch(ctx, batch)
	for i := range rows {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			return 0, fmt.Errorf("failed to upsert unit %q (row %d) for project %s: %w", rows[i].Key(), i, projectID, err)
		}
	}
	if err := results.Close(); err != nil {
		return 0, fmt.Errorf("failed to close unit batch for project %s: %w", projectID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit unit upsert for project %s: %w", projectID, err)
	}
	return len(rows), nil
}

func (r *unitRepository) ListByProject(ctx context.Context, projectID string) ([]models.Unit, error) {
	query := `
		SELECT id, project_id, unit_number, floor_number, bedrooms,
			area_total, area_suite, area_balcony, price, status,
			custom_fields, raw_data, created_at, updated_at
		FROM units
		WHERE project_id = $1
		ORDER BY custom_fields->>'tower' NULLS FIRST, floor_number, unit_number
	`

	rows, err := r.db.Pool.Query(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list units for project %s: %w", projectID, err)
	}
	defer rows.Close()

	units := []models.Unit{}
	for rows.Next() {
		var u models.Unit
		err := rows.Scan(
			&u.ID,
			&u.ProjectID,
			&u.UnitNumber,
			&u.Floor,
			&u.Bedrooms,
			&u.AreaTotal,
			&u.AreaSuite,
			&u.AreaBalcony,
			&u.Price,
			&u.Status,
			&u.CustomFields,
			&u.RawData,
			&u.CreatedAt,
			&u.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan unit row: %w", err)
		}
		hydrateUnit(&u.UnitRow)
		units = append(units, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating unit rows: %w", err)
	}

	return units, nil
}

func (r *unitRepository) DeleteByProject(ctx context.Context, projectID string) (int64, error) {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM units WHERE project_id = $1`, projectID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete units for project %s: %w", projectID, err)
	}
	return tag.RowsAffected(), nil
}

// storedCustomFields returns the custom_fields value written for row: the
// unmapped columns plus the non-column attributes under reserved keys.
func storedCustomFields(row models.UnitRow) models.JSONMap {
	out := row.CustomFields.Clone()
	set := func(key, value string) {
		if value != "" {
			out[key] = value
		}
	}
	set(customKeyTower, row.Tower)
	set(customKeyUnitCode, row.UnitCode)
	set(customKeyUnitView, row.UnitView)
	set(customKeyUnitType, row.UnitType)
	return out
}

// hydrateUnit moves the reserved custom_fields keys back onto the row.
// Rows keyed by their unit code come back with the code as unit number.
func hydrateUnit(u *models.UnitRow) {
	if u.CustomFields == nil {
		u.CustomFields = models.JSONMap{}
	}
	if u.RawData == nil {
		u.RawData = models.JSONMap{}
	}

	u.Tower = u.CustomFields.String(customKeyTower)
	u.UnitCode = u.CustomFields.String(customKeyUnitCode)
	u.UnitView = u.CustomFields.String(customKeyUnitView)
	u.UnitType = u.CustomFields.String(customKeyUnitType)
	for _, key := range reservedCustomKeys {
		delete(u.CustomFields, key)
	}

	u.Status = unitStatus(u.Status)
}

func unitStatus(s models.UnitStatus) models.UnitStatus {
	if s.Valid() {
		return s
	}
	return models.UnitStatusUnknown
}
