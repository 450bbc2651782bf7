package services

import (
	"context"
	"strings"

	"github.com/stwalsh4118/estatedesk/internal/logger"
	"github.com/stwalsh4118/estatedesk/internal/models"
	"github.com/stwalsh4118/estatedesk/internal/repository"
)

// CallerContext is who is acting, resolved once per request and passed to
// every service call.
type CallerContext struct {
	UserID           string                  `json:"user_id"`
	EmployeeID       string                  `json:"employee_id"`
	OrganizationID   string                  `json:"organization_id"`
	OrganizationName string                  `json:"organization_name"`
	OrganizationType models.OrganizationType `json:"organization_type"`
	Role             models.Role             `json:"role"`
}

// IsAdmin reports whether the caller sees every organization's rows.
func (c *CallerContext) IsAdmin() bool { return c.Role == models.RoleAdmin }

// IsAgent reports whether the caller has read-only marketing access.
func (c *CallerContext) IsAgent() bool { return c.Role == models.RoleAgent }

// CanWriteOrganization reports whether the caller may mutate rows owned by orgID.
func (c *CallerContext) CanWriteOrganization(orgID string) bool {
	switch c.Role {
	case models.RoleAdmin:
		return true
	case models.RoleDeveloper:
		return orgID == c.OrganizationID
	}
	return false
}

// CanReadProject applies project row scoping: agents see published
// projects anywhere, developers their own organization's, admins all.
func (c *CallerContext) CanReadProject(p *models.Project) bool {
	switch c.Role {
	case models.RoleAdmin:
		return true
	case models.RoleAgent:
		return p.Status == models.ProjectStatusPublished
	case models.RoleDeveloper:
		return p.OrganizationID == c.OrganizationID
	}
	return false
}

// CanReadPromotion applies promotion row scoping: agents see active
// promotions anywhere, developers their own organization's, admins all.
func (c *CallerContext) CanReadPromotion(p *models.Promotion) bool {
	switch c.Role {
	case models.RoleAdmin:
		return true
	case models.RoleAgent:
		return p.Status == models.PromotionStatusActive
	case models.RoleDeveloper:
		return p.OrganizationID == c.OrganizationID
	}
	return false
}

// effectiveRole folds the organization type into the employee role: anyone
// other than an admin working for an agency acts as an agent.
func effectiveRole(role models.Role, orgType models.OrganizationType) models.Role {
	if role != models.RoleAdmin && orgType == models.OrganizationTypeAgent {
		return models.RoleAgent
	}
	return role
}

// CallerCache stores resolved callers between requests.
type CallerCache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, v any) error
	Delete(ctx context.Context, key string) error
}

// CallerResolver turns an authenticated user id into a CallerContext.
type CallerResolver interface {
	// Resolve returns ErrAuthenticationMissing for an empty user id,
	// ErrEmployeeNotFound or ErrOrganizationNotFound when the user is not
	// attached to an organization, and ErrAuthorizationDenied for inactive
	// employees or unknown roles.
	Resolve(ctx context.Context, userID string) (*CallerContext, error)

	// Invalidate drops any cached caller for userID.
	Invalidate(ctx context.Context, userID string)
}

type callerResolver struct {
	employees     repository.EmployeeRepository
	organizations repository.OrganizationRepository
	cache         CallerCache
	log           *logger.Logger
}

// NewCallerResolver creates a CallerResolver. cache may be nil.
func NewCallerResolver(employees repository.EmployeeRepository, organizations repository.OrganizationRepository, cache CallerCache, log *logger.Logger) CallerResolver {
	return &callerResolver{
		employees:     employees,
		organizations: organizations,
		cache:         cache,
		log:           log,
	}
}

func (r *callerResolver) Resolve(ctx context.Context, userID string) (*CallerContext, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrAuthenticationMissing
	}

	if r.cache != nil {
		var cached CallerContext
		found, err := r.cache.Get(ctx, userID, &cached)
		if err != nil {
			r.log.Warn("Caller cache read failed", map[string]interface{}{
				"user_id": userID,
				"error":   err.Error(),
			})
		} else if found {
			return &cached, nil
		}
	}

	employee, err := r.employees.FindByUserID(ctx, userID)
	if err != nil {
		r.log.Error("Failed to look up employee", err, map[string]interface{}{"user_id": userID})
		return nil, upstream("look up employee", err)
	}
	if employee == nil {
		r.log.Warn("No employee record for user", map[string]interface{}{"user_id": userID})
		return nil, ErrEmployeeNotFound
	}
	if !employee.IsActive() {
		return nil, denied("employee account is " + employee.Status)
	}
	if employee.Role == "" {
		return nil, denied("employee has no recognized role")
	}

	org, err := r.organizations.FindByID(ctx, employee.OrganizationID)
	if err != nil {
		r.log.Error("Failed to look up organization", err, map[string]interface{}{
			"user_id":         userID,
			"organization_id": employee.OrganizationID,
		})
		return nil, upstream("look up organization", err)
	}
	if org == nil {
		return nil, ErrOrganizationNotFound
	}

	caller := &CallerContext{
		UserID:           userID,
		EmployeeID:       employee.ID,
		OrganizationID:   org.ID,
		OrganizationName: org.Name,
		OrganizationType: org.Type,
		Role:             effectiveRole(employee.Role, org.Type),
	}

	if r.cache != nil {
		bestEffort(r.log, "cache caller", map[string]interface{}{"user_id": userID}, func() error {
			return r.cache.Set(ctx, userID, caller)
		})
	}

	r.log.Debug("Caller resolved", map[string]interface{}{
		"user_id":         userID,
		"organization_id": caller.OrganizationID,
		"role":            caller.Role,
	})
	return caller, nil
}

func (r *callerResolver) Invalidate(ctx context.Context, userID string) {
	if r.cache == nil {
		return
	}
	bestEffort(r.log, "invalidate cached caller", map[string]interface{}{"user_id": userID}, func() error {
		return r.cache.Delete(ctx, userID)
	})
}
