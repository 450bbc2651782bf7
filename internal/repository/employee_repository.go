package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/stwalsh4118/estatedesk/internal/database"
	"github.com/stwalsh4118/estatedesk/internal/models"
)

// EmployeeRepository defines data access for employees.
type EmployeeRepository interface {
	// FindByUserID returns the employee record for an authenticated user.
	// Returns nil, nil if the user is not an employee of any organization.
	FindByUserID(ctx context.Context, userID string) (*models.Employee, error)
}

type employeeRepository struct {
	db *database.Database
}

// NewEmployeeRepository creates a new EmployeeRepository.
func NewEmployeeRepository(db *database.Database) EmployeeRepository {
	return &employeeRepository{db: db}
}

func (r *employeeRepository) FindByUserID(ctx context.Context, userID string) (*models.Employee, error) {
	query := `
		SELECT id, organization_id, user_id, role, status, full_name, email, created_at, updated_at
		FROM employees
		WHERE user_id = $1
	`

	var (
		emp  models.Employee
		role string
	)
	err := r.db.Pool.QueryRow(ctx, query, userID).Scan(
		&emp.ID,
		&emp.OrganizationID,
		&emp.UserID,
		&role,
		&emp.Status,
		&emp.FullName,
		&emp.Email,
		&emp.CreatedAt,
		&emp.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query employee for user %s: %w", userID, err)
	}

	// Legacy role names are folded here so callers only see canonical roles.
	emp.Role = models.ParseRole(role)
	return &emp, nil
}
