package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stwalsh4118/estatedesk/internal/database"
	"github.com/stwalsh4118/estatedesk/internal/models"
)

// PromotionQuery narrows a promotion listing. Nil fields are not filtered on.
type PromotionQuery struct {
	OrganizationID *string
	ProjectID      *string
	Status         *models.PromotionStatus
	Limit          int
	Offset         int
}

// PromotionRepository defines data access for promotions.
type PromotionRepository interface {
	// FindByID returns nil, nil if the promotion does not exist.
	FindByID(ctx context.Context, id string) (*models.Promotion, error)

	// List returns promotions ordered by start date, newest first.
	List(ctx context.Context, q PromotionQuery) ([]models.Promotion, error)

	// Create inserts the promotion and fills in its generated id and timestamps.
	Create(ctx context.Context, p *models.Promotion) error

	// Update writes every mutable column of p. Returns nil, nil if it no longer exists.
	Update(ctx context.Context, p *models.Promotion) (*models.Promotion, error)

	// Delete removes the promotion. Reports whether a row was removed.
	Delete(ctx context.Context, id string) (bool, error)

	// ActivateDue moves draft promotions whose send time has passed (and
	// whose end date has not) to active. Returns the number of rows changed.
	ActivateDue(ctx context.Context, now time.Time) (int64, error)

	// CompleteExpired moves active or paused promotions whose end date has
	// passed to completed. Returns the number of rows changed.
	CompleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type promotionRepository struct {
	db *database.Database
}

// NewPromotionRepository creates a new PromotionRepository.
func NewPromotionRepository(db *database.Database) PromotionRepository {
	return &promotionRepository{db: db}
}

const promotionColumns = `
	id, organization_id, project_id, title, description, channel, status,
	start_date, end_date, send_at, created_at, updated_at`

func scanPromotion(row rowScanner) (*models.Promotion, error) {
	var p models.Promotion
	err := row.Scan(
		&p.ID,
		&p.OrganizationID,
		&p.ProjectID,
		&p.Title,
		&p.Description,
		&p.Channel,
		&p.Status,
		&p.StartDate,
		&p.EndDate,
		&p.SendAt,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *promotionRepository) FindByID(ctx context.Context, id string) (*models.Promotion, error) {
	query := `SELECT` + promotionColumns + ` FROM promotions WHERE id = $1`

	p, err := scanPromotion(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query promotion %s: %w", id, err)
	}
	return p, nil
}

func (r *promotionRepository) List(ctx context.Context, q PromotionQuery) ([]models.Promotion, error) {
	var w whereBuilder
	if q.OrganizationID != nil {
		w.add("organization_id = ?", *q.OrganizationID)
	}
	if q.ProjectID != nil {
		w.add("project_id = ?", *q.ProjectID)
	}
	if q.Status != nil {
		w.add("status = ?", string(*q.Status))
	}

	query := `SELECT` + promotionColumns + ` FROM promotions` + w.clause() +
		` ORDER BY start_date DESC, created_at DESC LIMIT ` + w.arg(clampLimit(q.Limit)) +
		` OFFSET ` + w.arg(max(q.Offset, 0))

	rows, err := r.db.Pool.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list promotions: %w", err)
	}
	defer rows.Close()

	promotions := []models.Promotion{}
	for rows.Next() {
		p, err := scanPromotion(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan promotion row: %w", err)
		}
		promotions = append(promotions, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating promotion rows: %w", err)
	}

	return promotions, nil
}

func (r *promotionRepository) Create(ctx context.Context, p *models.Promotion) error {
	query := `
		INSERT INTO promotions (
			organization_id, project_id, title, description, channel, status,
			start_date, end_date, send_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		p.OrganizationID,
		p.ProjectID,
		p.Title,
		p.Description,
		p.Channel,
		string(p.Status),
		p.StartDate,
		p.EndDate,
		p.SendAt,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert promotion %q: %w", p.Title, err)
	}
	return nil
}

func (r *promotionRepository) Update(ctx context.Context, p *models.Promotion) (*models.Promotion, error) {
	query := `
		UPDATE promotions SET
			project_id = $2,
			title = $3,
			description = $4,
			channel = $5,
			status = $6,
			start_date = $7,
			end_date = $8,
			send_at = $9,
			updated_at = now()
		WHERE id = $1
		RETURNING` + promotionColumns

	updated, err := scanPromotion(r.db.Pool.QueryRow(ctx, query,
		p.ID,
		p.ProjectID,
		p.Title,
		p.Description,
		p.Channel,
		string(p.Status),
		p.StartDate,
		p.EndDate,
		p.SendAt,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update promotion %s: %w", p.ID, err)
	}
	return updated, nil
}

func (r *promotionRepository) Delete(ctx context.Context, id string) (bool, error) {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM promotions WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete promotion %s: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *promotionRepository) ActivateDue(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE promotions
		SET status = 'active', updated_at = now()
		WHERE status = 'draft'
			AND send_at IS NOT NULL
			AND send_at <= $1
			AND end_date > $1
	`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to activate due promotions: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *promotionRepository) CompleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE promotions
		SET status = 'completed', updated_at = now()
		WHERE status IN ('active', 'paused')
			AND end_date <= $1
	`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to complete expired promotions: %w", err)
	}
	return tag.RowsAffected(), nil
}
