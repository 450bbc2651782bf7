package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/stwalsh4118/estatedesk/internal/database"
	"github.com/stwalsh4118/estatedesk/internal/models"
)

// OrganizationRepository defines data access for organizations.
type OrganizationRepository interface {
	// FindByID returns nil, nil when the organization does not exist.
	FindByID(ctx context.Context, id string) (*models.Organization, error)
}

type organizationRepository struct {
	db *database.Database
}

// NewOrganizationRepository creates a new OrganizationRepository.
func NewOrganizationRepository(db *database.Database) OrganizationRepository {
	return &organizationRepository{db: db}
}

func (r *organizationRepository) FindByID(ctx context.Context, id string) (*models.Organization, error) {
	query := `
		SELECT id, name, type, status, contact_email, contact_phone, website, created_at, updated_at
		FROM organizations
		WHERE id = $1
	`

	var org models.Organization
	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&org.ID,
		&org.Name,
		&org.Type,
		&org.Status,
		&org.ContactEmail,
		&org.ContactPhone,
		&org.Website,
		&org.CreatedAt,
		&org.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query organization %s: %w", id, err)
	}

	return &org, nil
}
