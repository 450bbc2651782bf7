package services

import (
	"context"
	"strings"
	"time"

	"github.com/stwalsh4118/estatedesk/internal/logger"
	"github.com/stwalsh4118/estatedesk/internal/models"
	"github.com/stwalsh4118/estatedesk/internal/repository"
)

// MaxPromotionTitleLength bounds promotion titles.
const MaxPromotionTitleLength = 200

// PromotionFilter narrows a promotion listing. OrganizationID is honored
// for admins only.
type PromotionFilter struct {
	OrganizationID *string
	ProjectID      *string
	Status         *models.PromotionStatus
	Limit          int
	Offset         int
}

// CreatePromotionInput describes a new promotion.
type CreatePromotionInput struct {
	OrganizationID string
	ProjectID      *string
	Title          string
	Description    *string
	Channel        *string
	Status         models.PromotionStatus
	StartDate      time.Time
	EndDate        time.Time
	SendAt         *time.Time
}

// UpdatePromotionInput is a partial update; nil fields are left unchanged.
type UpdatePromotionInput struct {
	ProjectID   *string
	Title       *string
	Description *string
	Channel     *string
	Status      *models.PromotionStatus
	StartDate   *time.Time
	EndDate     *time.Time
	SendAt      *time.Time
}

// LifecycleResult counts the promotions moved by one lifecycle run.
type LifecycleResult struct {
	Activated int64
	Completed int64
}

// PromotionService defines promotion business operations.
type PromotionService interface {
	// List returns the promotions visible to caller.
	List(ctx context.Context, caller *CallerContext, filter PromotionFilter) ([]models.Promotion, error)

	// Get returns ErrPromotionNotFound when the promotion does not exist or
	// is outside the caller's scope.
	Get(ctx context.Context, caller *CallerContext, id string) (*models.Promotion, error)

	// Create returns ErrAuthorizationDenied for agents and ErrValidation for
	// bad dates, titles or a project outside the caller's organization.
	Create(ctx context.Context, caller *CallerContext, in CreatePromotionInput) (*models.Promotion, error)

	// Update applies a partial update. Completed and cancelled promotions
	// cannot change status.
	Update(ctx context.Context, caller *CallerContext, id string, in UpdatePromotionInput) (*models.Promotion, error)

	// Delete removes the promotion.
	Delete(ctx context.Context, caller *CallerContext, id string) error

	// RunLifecycle activates due drafts and completes expired promotions.
	RunLifecycle(ctx context.Context, now time.Time) (LifecycleResult, error)
}

type promotionService struct {
	repo     repository.PromotionRepository
	projects repository.ProjectRepository
	log      *logger.Logger
}

// NewPromotionService creates a new PromotionService.
func NewPromotionService(repo repository.PromotionRepository, projects repository.ProjectRepository, log *logger.Logger) PromotionService {
	return &promotionService{
		repo:     repo,
		projects: projects,
		log:      log,
	}
}

func (s *promotionService) List(ctx context.Context, caller *CallerContext, filter PromotionFilter) ([]models.Promotion, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, invalid("unknown promotion status %q", *filter.Status)
	}
	if filter.ProjectID != nil {
		if err := validateID("project", *filter.ProjectID); err != nil {
			return nil, err
		}
	}

	q := repository.PromotionQuery{
		ProjectID: filter.ProjectID,
		Status:    filter.Status,
		Limit:     filter.Limit,
		Offset:    filter.Offset,
	}

	switch caller.Role {
	case models.RoleAdmin:
		q.OrganizationID = filter.OrganizationID
	case models.RoleAgent:
		if filter.Status != nil && *filter.Status != models.PromotionStatusActive {
			return []models.Promotion{}, nil
		}
		active := models.PromotionStatusActive
		q.Status = &active
	default:
		orgID := caller.OrganizationID
		q.OrganizationID = &orgID
	}

	s.log.Info("Listing promotions", map[string]interface{}{
		"user_id": caller.UserID,
		"role":    caller.Role,
	})

	promotions, err := s.repo.List(ctx, q)
	if err != nil {
		s.log.Error("Failed to list promotions", err, map[string]interface{}{"user_id": caller.UserID})
		return nil, upstream("list promotions", err)
	}
	return promotions, nil
}

func (s *promotionService) Get(ctx context.Context, caller *CallerContext, id string) (*models.Promotion, error) {
	id = strings.TrimSpace(id)
	if err := validateID("promotion", id); err != nil {
		return nil, err
	}

	promotion, err := s.repo.FindByID(ctx, id)
	if err != nil {
		s.log.Error("Failed to look up promotion", err, map[string]interface{}{"promotion_id": id})
		return nil, upstream("look up promotion", err)
	}
	if promotion == nil || !caller.CanReadPromotion(promotion) {
		s.log.Debug("Promotion not found", map[string]interface{}{
			"promotion_id": id,
			"user_id":      caller.UserID,
		})
		return nil, ErrPromotionNotFound
	}
	return promotion, nil
}

func (s *promotionService) Create(ctx context.Context, caller *CallerContext, in CreatePromotionInput) (*models.Promotion, error) {
	if caller.IsAgent() {
		return nil, denied("agents cannot create promotions")
	}

	orgID := strings.TrimSpace(in.OrganizationID)
	if orgID == "" {
		orgID = caller.OrganizationID
	}
	if !caller.CanWriteOrganization(orgID) {
		return nil, denied("cannot create promotions for another organization")
	}

	promotion := &models.Promotion{
		OrganizationID: orgID,
		ProjectID:      in.ProjectID,
		Title:          strings.TrimSpace(in.Title),
		Description:    in.Description,
		Channel:        in.Channel,
		Status:         in.Status,
		StartDate:      in.StartDate,
		EndDate:        in.EndDate,
		SendAt:         in.SendAt,
	}
	if promotion.Status == "" {
		promotion.Status = models.PromotionStatusDraft
	}

	if err := s.validate(ctx, promotion); err != nil {
		s.log.Warn("Invalid promotion", map[string]interface{}{
			"user_id": caller.UserID,
			"error":   err.Error(),
		})
		return nil, err
	}

	if err := s.repo.Create(ctx, promotion); err != nil {
		s.log.Error("Failed to create promotion", err, map[string]interface{}{"organization_id": orgID})
		return nil, upstream("create promotion", err)
	}

	s.log.Info("Promotion created", map[string]interface{}{
		"promotion_id":    promotion.ID,
		"organization_id": orgID,
		"status":          promotion.Status,
	})
	return promotion, nil
}

func (s *promotionService) Update(ctx context.Context, caller *CallerContext, id string, in UpdatePromotionInput) (*models.Promotion, error) {
	if caller.IsAgent() {
		return nil, denied("agents cannot modify promotions")
	}

	promotion, err := s.Get(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if !caller.CanWriteOrganization(promotion.OrganizationID) {
		return nil, denied("cannot modify this promotion")
	}

	if in.Status != nil && *in.Status != promotion.Status && isTerminal(promotion.Status) {
		return nil, invalid("a %s promotion cannot change status", promotion.Status)
	}

	if in.ProjectID != nil {
		if *in.ProjectID == "" {
			promotion.ProjectID = nil
		} else {
			promotion.ProjectID = in.ProjectID
		}
	}
	if in.Title != nil {
		promotion.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		promotion.Description = in.Description
	}
	if in.Channel != nil {
		promotion.Channel = in.Channel
	}
	if in.Status != nil {
		promotion.Status = *in.Status
	}
	if in.StartDate != nil {
		promotion.StartDate = *in.StartDate
	}
	if in.EndDate != nil {
		promotion.EndDate = *in.EndDate
	}
	if in.SendAt != nil {
		promotion.SendAt = in.SendAt
	}

	if err := s.validate(ctx, promotion); err != nil {
		s.log.Warn("Invalid promotion update", map[string]interface{}{
			"promotion_id": promotion.ID,
			"error":        err.Error(),
		})
		return nil, err
	}

	updated, err := s.repo.Update(ctx, promotion)
	if err != nil {
		s.log.Error("Failed to update promotion", err, map[string]interface{}{"promotion_id": promotion.ID})
		return nil, upstream("update promotion", err)
	}
	if updated == nil {
		return nil, ErrPromotionNotFound
	}

	s.log.Info("Promotion updated", map[string]interface{}{
		"promotion_id": promotion.ID,
		"status":       updated.Status,
	})
	return updated, nil
}

func (s *promotionService) Delete(ctx context.Context, caller *CallerContext, id string) error {
	if caller.IsAgent() {
		return denied("agents cannot delete promotions")
	}

	promotion, err := s.Get(ctx, caller, id)
	if err != nil {
		return err
	}
	if !caller.CanWriteOrganization(promotion.OrganizationID) {
		return denied("cannot delete this promotion")
	}

	removed, err := s.repo.Delete(ctx, promotion.ID)
	if err != nil {
		s.log.Error("Failed to delete promotion", err, map[string]interface{}{"promotion_id": promotion.ID})
		return upstream("delete promotion", err)
	}
	if !removed {
		return ErrPromotionNotFound
	}

	s.log.Info("Promotion deleted", map[string]interface{}{"promotion_id": promotion.ID})
	return nil
}

func (s *promotionService) RunLifecycle(ctx context.Context, now time.Time) (LifecycleResult, error) {
	var result LifecycleResult

	activated, err := s.repo.ActivateDue(ctx, now)
	if err != nil {
		s.log.Error("Failed to activate due promotions", err, nil)
		return result, upstream("activate promotions", err)
	}
	result.Activated = activated

	completed, err := s.repo.CompleteExpired(ctx, now)
	if err != nil {
		s.log.Error("Failed to complete expired promotions", err, nil)
		return result, upstream("complete promotions", err)
	}
	result.Completed = completed

	if activated > 0 || completed > 0 {
		s.log.Info("Promotion lifecycle advanced", map[string]interface{}{
			"activated": activated,
			"completed": completed,
		})
	}
	return result, nil
}

// validate checks field rules and that a linked project belongs to the
// promotion's organization.
func (s *promotionService) validate(ctx context.Context, p *models.Promotion) error {
	if p.Title == "" {
		return invalid("title is required")
	}
	if len(p.Title) > MaxPromotionTitleLength {
		return invalid("title must be at most %d characters", MaxPromotionTitleLength)
	}
	if !p.Status.Valid() {
		return invalid("unknown promotion status %q", p.Status)
	}
	if p.StartDate.IsZero() || p.EndDate.IsZero() {
		return invalid("start_date and end_date are required")
	}
	if p.EndDate.Before(p.StartDate) {
		return invalid("end_date must not be before start_date")
	}
	if p.SendAt != nil && p.SendAt.After(p.EndDate) {
		return invalid("send_at must not be after end_date")
	}

	if p.ProjectID == nil {
		return nil
	}
	if err := validateID("project", *p.ProjectID); err != nil {
		return err
	}
	project, err := s.projects.FindByID(ctx, *p.ProjectID)
	if err != nil {
		s.log.Error("Failed to look up promotion project", err, map[string]interface{}{"project_id": *p.ProjectID})
		return upstream("look up project", err)
	}
	if project == nil || project.OrganizationID != p.OrganizationID {
		return invalid("project must belong to the promotion's organization")
	}
	return nil
}

func isTerminal(status models.PromotionStatus) bool {
	return status == models.PromotionStatusCompleted || status == models.PromotionStatusCancelled
}
