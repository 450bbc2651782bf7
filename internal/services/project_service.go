package services

import (
	"context"
	"strings"

	"github.com/stwalsh4118/estatedesk/internal/logger"
	"github.com/stwalsh4118/estatedesk/internal/models"
	"github.com/stwalsh4118/estatedesk/internal/repository"
	"github.com/stwalsh4118/estatedesk/internal/storage"
)

// MaxProjectNameLength bounds project names.
const MaxProjectNameLength = 200

// ProjectFilter narrows a project listing. OrganizationID is honored for
// admins only; other callers are always scoped by role.
type ProjectFilter struct {
	OrganizationID *string
	Status         *models.ProjectStatus
	Search         string
	Limit          int
	Offset         int
}

// SourceFile is an uploaded brochure or price sheet attached to a new project.
type SourceFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// CreateProjectInput describes a new project.
type CreateProjectInput struct {
	OrganizationID string
	Name           string
	Description    *string
	Location       *string
	Status         models.ProjectStatus
	CreationMethod models.CreationMethod
	Amenities      []string
	Connectivity   []string
	Landmarks      []string
	PaymentPlans   []string
	SourceFile     *SourceFile
}

// UpdateProjectInput is a partial update; nil fields are left unchanged.
type UpdateProjectInput struct {
	Name         *string
	Description  *string
	Location     *string
	Status       *models.ProjectStatus
	Amenities    *[]string
	Connectivity *[]string
	Landmarks    *[]string
	PaymentPlans *[]string
}

// ProjectService defines project business operations.
type ProjectService interface {
	// List returns the projects visible to caller.
	// Returns ErrValidation for an unknown status filter.
	List(ctx context.Context, caller *CallerContext, filter ProjectFilter) ([]models.Project, error)

	// Get returns ErrProjectNotFound when the project does not exist or is
	// outside the caller's scope.
	Get(ctx context.Context, caller *CallerContext, id string) (*models.Project, error)

	// Create returns ErrAuthorizationDenied for agents and for developers
	// targeting another organization, and ErrValidation for bad input.
	// A failed source file upload does not fail the create.
	Create(ctx context.Context, caller *CallerContext, in CreateProjectInput) (*models.Project, error)

	// Update applies a partial update. Same errors as Get and Create.
	Update(ctx context.Context, caller *CallerContext, id string, in UpdateProjectInput) (*models.Project, error)

	// Delete removes the project and its units.
	Delete(ctx context.Context, caller *CallerContext, id string) error
}

type projectService struct {
	repo     repository.ProjectRepository
	uploader storage.Uploader
	log      *logger.Logger
}

// NewProjectService creates a new ProjectService. uploader may be nil, in
// which case source files are ignored.
func NewProjectService(repo repository.ProjectRepository, uploader storage.Uploader, log *logger.Logger) ProjectService {
	return &projectService{
		repo:     repo,
		uploader: uploader,
		log:      log,
	}
}

func (s *projectService) List(ctx context.Context, caller *CallerContext, filter ProjectFilter) ([]models.Project, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, invalid("unknown project status %q", *filter.Status)
	}

	q := repository.ProjectQuery{
		Status: filter.Status,
		Search: strings.TrimSpace(filter.Search),
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	switch caller.Role {
	case models.RoleAdmin:
		q.OrganizationID = filter.OrganizationID
	case models.RoleAgent:
		if filter.Status != nil && *filter.Status != models.ProjectStatusPublished {
			return []models.Project{}, nil
		}
		published := models.ProjectStatusPublished
		q.Status = &published
	default:
		orgID := caller.OrganizationID
		q.OrganizationID = &orgID
	}

	s.log.Info("Listing projects", map[string]interface{}{
		"user_id": caller.UserID,
		"role":    caller.Role,
		"search":  q.Search,
	})

	projects, err := s.repo.List(ctx, q)
	if err != nil {
		s.log.Error("Failed to list projects", err, map[string]interface{}{"user_id": caller.UserID})
		return nil, upstream("list projects", err)
	}
	return projects, nil
}

func (s *projectService) Get(ctx context.Context, caller *CallerContext, id string) (*models.Project, error) {
	return s.load(ctx, caller, id)
}

// load fetches a project the caller may read.
func (s *projectService) load(ctx context.Context, caller *CallerContext, id string) (*models.Project, error) {
	return loadProject(ctx, s.repo, s.log, caller, id)
}

func (s *projectService) Create(ctx context.Context, caller *CallerContext, in CreateProjectInput) (*models.Project, error) {
	if caller.IsAgent() {
		return nil, denied("agents cannot create projects")
	}

	orgID := strings.TrimSpace(in.OrganizationID)
	if orgID == "" {
		orgID = caller.OrganizationID
	}
	if !caller.CanWriteOrganization(orgID) {
		return nil, denied("cannot create projects for another organization")
	}

	project := &models.Project{
		OrganizationID: orgID,
		Name:           strings.TrimSpace(in.Name),
		Description:    in.Description,
		Location:       in.Location,
		Status:         in.Status,
		CreationMethod: in.CreationMethod,
		Amenities:      in.Amenities,
		Connectivity:   in.Connectivity,
		Landmarks:      in.Landmarks,
		PaymentPlans:   in.PaymentPlans,
	}
	if project.Status == "" {
		project.Status = models.ProjectStatusDraft
	}
	if project.CreationMethod == "" {
		project.CreationMethod = models.CreationMethodManual
	}
	if caller.UserID != "" {
		createdBy := caller.UserID
		project.CreatedBy = &createdBy
	}

	if err := validateProject(project); err != nil {
		s.log.Warn("Invalid project", map[string]interface{}{
			"user_id": caller.UserID,
			"error":   err.Error(),
		})
		return nil, err
	}

	if err := s.repo.Create(ctx, project); err != nil {
		s.log.Error("Failed to create project", err, map[string]interface{}{
			"user_id":         caller.UserID,
			"organization_id": orgID,
		})
		return nil, upstream("create project", err)
	}

	s.log.Info("Project created", map[string]interface{}{
		"project_id":      project.ID,
		"organization_id": orgID,
		"user_id":         caller.UserID,
	})

	if in.SourceFile != nil {
		s.attachSourceFile(ctx, project, in.SourceFile)
	}
	return project, nil
}

// attachSourceFile uploads the file and links it to the project. Both
// writes are best-effort; the project exists either way.
func (s *projectService) attachSourceFile(ctx context.Context, project *models.Project, file *SourceFile) {
	fields := map[string]interface{}{
		"project_id": project.ID,
		"file_name":  file.Name,
	}
	if s.uploader == nil {
		s.log.Warn("Source file ignored, storage is not configured", fields)
		return
	}

	var stored *storage.StoredObject
	path := storage.ObjectPath(project.OrganizationID, project.ID, file.Name)
	if !bestEffort(s.log, "upload source file", fields, func() error {
		obj, err := s.uploader.Upload(ctx, path, file.ContentType, file.Data)
		stored = obj
		return err
	}) || stored == nil {
		return
	}

	if bestEffort(s.log, "link source file", fields, func() error {
		return s.repo.SetSourceFile(ctx, project.ID, stored.ID)
	}) {
		id := stored.ID
		project.SourceFileID = &id
	}
}

func (s *projectService) Update(ctx context.Context, caller *CallerContext, id string, in UpdateProjectInput) (*models.Project, error) {
	if caller.IsAgent() {
		return nil, denied("agents cannot modify projects")
	}

	project, err := s.load(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if !caller.CanWriteOrganization(project.OrganizationID) {
		return nil, denied("cannot modify this project")
	}

	if in.Name != nil {
		project.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		project.Description = in.Description
	}
	if in.Location != nil {
		project.Location = in.Location
	}
	if in.Status != nil {
		project.Status = *in.Status
	}
	if in.Amenities != nil {
		project.Amenities = *in.Amenities
	}
	if in.Connectivity != nil {
		project.Connectivity = *in.Connectivity
	}
	if in.Landmarks != nil {
		project.Landmarks = *in.Landmarks
	}
	if in.PaymentPlans != nil {
		project.PaymentPlans = *in.PaymentPlans
	}

	if err := validateProject(project); err != nil {
		s.log.Warn("Invalid project update", map[string]interface{}{
			"project_id": id,
			"error":      err.Error(),
		})
		return nil, err
	}

	updated, err := s.repo.Update(ctx, project)
	if err != nil {
		s.log.Error("Failed to update project", err, map[string]interface{}{"project_id": id})
		return nil, upstream("update project", err)
	}
	if updated == nil {
		return nil, ErrProjectNotFound
	}

	s.log.Info("Project updated", map[string]interface{}{
		"project_id": id,
		"user_id":    caller.UserID,
	})
	return updated, nil
}

func (s *projectService) Delete(ctx context.Context, caller *CallerContext, id string) error {
	if caller.IsAgent() {
		return denied("agents cannot delete projects")
	}

	project, err := s.load(ctx, caller, id)
	if err != nil {
		return err
	}
	if !caller.CanWriteOrganization(project.OrganizationID) {
		return denied("cannot delete this project")
	}

	removed, err := s.repo.Delete(ctx, id)
	if err != nil {
		s.log.Error("Failed to delete project", err, map[string]interface{}{"project_id": id})
		return upstream("delete project", err)
	}
	if !removed {
		return ErrProjectNotFound
	}

	s.log.Info("Project deleted", map[string]interface{}{
		"project_id": id,
		"user_id":    caller.UserID,
	})
	return nil
}

func validateProject(p *models.Project) error {
	if p.Name == "" {
		return invalid("name is required")
	}
	if len(p.Name) > MaxProjectNameLength {
		return invalid("name must be at most %d characters", MaxProjectNameLength)
	}
	if !p.Status.Valid() {
		return invalid("unknown project status %q", p.Status)
	}
	if !p.CreationMethod.Valid() {
		return invalid("unknown creation method %q", p.CreationMethod)
	}
	return nil
}

// loadProject fetches a project and hides it behind ErrProjectNotFound when
// the caller may not read it.
func loadProject(ctx context.Context, repo repository.ProjectRepository, log *logger.Logger, caller *CallerContext, id string) (*models.Project, error) {
	id = strings.TrimSpace(id)
	if err := validateID("project", id); err != nil {
		return nil, err
	}

	project, err := repo.FindByID(ctx, id)
	if err != nil {
		log.Error("Failed to look up project", err, map[string]interface{}{"project_id": id})
		return nil, upstream("look up project", err)
	}
	if project == nil || !caller.CanReadProject(project) {
		log.Debug("Project not found", map[string]interface{}{
			"project_id": id,
			"user_id":    caller.UserID,
		})
		return nil, ErrProjectNotFound
	}
	return project, nil
}
