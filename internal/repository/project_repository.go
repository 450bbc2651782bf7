package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/stwalsh4118/estatedesk/internal/database"
	"github.com/stwalsh4118/estatedesk/internal/models"
)

// ProjectQuery narrows a project listing. Nil fields are not filtered on.
type ProjectQuery struct {
	OrganizationID *string
	Status         *models.ProjectStatus
	Search         string
	Limit          int
	Offset         int
}

// ProjectRepository defines data access for projects.
type ProjectRepository interface {
	// FindByID returns nil, nil if the project does not exist.
	FindByID(ctx context.Context, id string) (*models.Project, error)

	// List returns projects ordered by most recently updated.
	// Returns an empty slice when nothing matches.
	List(ctx context.Context, q ProjectQuery) ([]models.Project, error)

	// Create inserts the project and fills in its generated id and timestamps.
	Create(ctx context.Context, p *models.Project) error

	// Update writes every mutable column of p. Returns nil, nil if the project
	// no longer exists.
	Update(ctx context.Context, p *models.Project) (*models.Project, error)

	// Delete removes the project (and its units). Reports whether a row was removed.
	Delete(ctx context.Context, id string) (bool, error)

	// UpdateUnitSummary overwrites the cached summary. Last writer wins.
	UpdateUnitSummary(ctx context.Context, id string, summary *models.UnitSummary) error

	// SetSourceFile links an uploaded source file to the project.
	SetSourceFile(ctx context.Context, id, fileID string) error
}

type projectRepository struct {
	db *database.Database
}

// NewProjectRepository creates a new ProjectRepository.
func NewProjectRepository(db *database.Database) ProjectRepository {
	return &projectRepository{db: db}
}

const projectColumns = `
	id, organization_id, name, description, location, status, creation_method,
	amenities, connectivity, landmarks, payment_plans, unit_summary,
	source_file_id, created_by, created_at, updated_at`

func scanProject(row rowScanner) (*models.Project, error) {
	var p models.Project
	err := row.Scan(
		&p.ID,
		&p.OrganizationID,
		&p.Name,
		&p.Description,
		&p.Location,
		&p.Status,
		&p.CreationMethod,
		&p.Amenities,
		&p.Connectivity,
		&p.Landmarks,
		&p.PaymentPlans,
		&p.UnitSummary,
		&p.SourceFileID,
		&p.CreatedBy,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *projectRepository) FindByID(ctx context.Context, id string) (*models.Project, error) {
	query := `SELECT` + projectColumns + ` FROM projects WHERE id = $1`

	p, err := scanProject(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query project %s: %w", id, err)
	}
	return p, nil
}

func (r *projectRepository) List(ctx context.Context, q ProjectQuery) ([]models.Project, error) {
	var w whereBuilder
	if q.OrganizationID != nil {
		w.add("organization_id = ?", *q.OrganizationID)
	}
	if q.Status != nil {
		w.add("status = ?", string(*q.Status))
	}
	if q.Search != "" {
		w.add("(name ILIKE '%' || ? || '%' OR location ILIKE '%' || ? || '%')", q.Search, q.Search)
	}

	query := `SELECT` + projectColumns + ` FROM projects` + w.clause() +
		` ORDER BY updated_at DESC LIMIT ` + w.arg(clampLimit(q.Limit)) +
		` OFFSET ` + w.arg(max(q.Offset, 0))

	rows, err := r.db.Pool.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	projects := []models.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project row: %w", err)
		}
		projects = append(projects, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating project rows: %w", err)
	}

	return projects, nil
}

func (r *projectRepository) Create(ctx context.Context, p *models.Project) error {
	query := `
		INSERT INTO projects (
			organization_id, name, description, location, status, creation_method,
			amenities, connectivity, landmarks, payment_plans, source_file_id, created_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, updated_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		p.OrganizationID,
		p.Name,
		p.Description,
		p.Location,
		string(p.Status),
		string(p.CreationMethod),
		nonNilStrings(p.Amenities),
		nonNilStrings(p.Connectivity),
		nonNilStrings(p.Landmarks),
		nonNilStrings(p.PaymentPlans),
		p.SourceFileID,
		p.CreatedBy,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert project %q: %w", p.Name, err)
	}
	return nil
}

func (r *projectRepository) Update(ctx context.Context, p *models.Project) (*models.Project, error) {
	query := `
		UPDATE projects SET
			name = $2,
			description = $3,
			location = $4,
			status = $5,
			amenities = $6,
			connectivity = $7,
			landmarks = $8,
			payment_plans = $9,
			updated_at = now()
		WHERE id = $1
		RETURNING` + projectColumns

	updated, err := scanProject(r.db.Pool.QueryRow(ctx, query,
		p.ID,
		p.Name,
		p.Description,
		p.Location,
		string(p.Status),
		nonNilStrings(p.Amenities),
		nonNilStrings(p.Connectivity),
		nonNilStrings(p.Landmarks),
		nonNilStrings(p.PaymentPlans),
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update project %s: %w", p.ID, err)
	}
	return updated, nil
}

func (r *projectRepository) Delete(ctx context.Context, id string) (bool, error) {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete project %s: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *projectRepository) UpdateUnitSummary(ctx context.Context, id string, summary *models.UnitSummary) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE projects SET unit_summary = $2, updated_at = now() WHERE id = $1`,
		id, summary,
	)
	if err != nil {
		return fmt.Errorf("failed to update unit summary for project %s: %w", id, err)
	}
	return nil
}

func (r *projectRepository) SetSourceFile(ctx context.Context, id, fileID string) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE projects SET source_file_id = $2, updated_at = now() WHERE id = $1`,
		id, fileID,
	)
	if err != nil {
		return fmt.Errorf("failed to set source file for project %s: %w", id, err)
	}
	return nil
}
