package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stwalsh4118/estatedesk/internal/logger"
	"github.com/stwalsh4118/estatedesk/internal/models"
	"github.com/stwalsh4118/estatedesk/internal/repository"
	"github.com/stwalsh4118/estatedesk/internal/storage"
)

func ownProject() *models.Project {
	return &models.Project{
		ID:             projectID1,
		OrganizationID: orgA,
		Name:           "Marina Heights",
		Status:         models.ProjectStatusDraft,
		CreationMethod: models.CreationMethodManual,
	}
}

func TestProjectList_ScopesByRole(t *testing.T) {
	ctx := context.Background()
	published := models.ProjectStatusPublished

	t.Run("developer sees own organization", func(t *testing.T) {
		repo := new(MockProjectRepository)
		service := NewProjectService(repo, nil, logger.Nop())
		repo.On("List", ctx, mock.MatchedBy(func(q repository.ProjectQuery) bool {
			return q.OrganizationID != nil && *q.OrganizationID == orgA && q.Status == nil
		})).Return([]models.Project{*ownProject()}, nil)

		projects, err := service.List(ctx, developerCaller(), ProjectFilter{})

		require.NoError(t, err)
		assert.Len(t, projects, 1)
		repo.AssertExpectations(t)
	})

	t.Run("developer cannot widen to another organization", func(t *testing.T) {
		repo := new(MockProjectRepository)
		service := NewProjectService(repo, nil, logger.Nop())
		other := orgB
		repo.On("List", ctx, mock.MatchedBy(func(q repository.ProjectQuery) bool {
			return *q.OrganizationID == orgA
		})).Return([]models.Project{}, nil)

		_, err := service.List(ctx, developerCaller(), ProjectFilter{OrganizationID: &other})

		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("agent sees published projects everywhere", func(t *testing.T) {
		repo := new(MockProjectRepository)
		service := NewProjectService(repo, nil, logger.Nop())
		repo.On("List", ctx, mock.MatchedBy(func(q repository.ProjectQuery) bool {
			return q.OrganizationID == nil && q.Status != nil && *q.Status == published
		})).Return([]models.Project{}, nil)

		_, err := service.List(ctx, agentCaller(), ProjectFilter{})

		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("agent asking for drafts gets nothing", func(t *testing.T) {
		repo := new(MockProjectRepository)
		service := NewProjectService(repo, nil, logger.Nop())
		draft := models.ProjectStatusDraft

		projects, err := service.List(ctx, agentCaller(), ProjectFilter{Status: &draft})

		require.NoError(t, err)
		assert.Empty(t, projects)
		repo.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
	})

	t.Run("admin may filter by organization", func(t *testing.T) {
		repo := new(MockProjectRepository)
		service := NewProjectService(repo, nil, logger.Nop())
		other := orgB
		repo.On("List", ctx, mock.MatchedBy(func(q repository.ProjectQuery) bool {
			return q.OrganizationID != nil && *q.OrganizationID == orgB
		})).Return([]models.Project{}, nil)

		_, err := service.List(ctx, adminCaller(), ProjectFilter{OrganizationID: &other})

		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("unknown status", func(t *testing.T) {
		service := NewProjectService(new(MockProjectRepository), nil, logger.Nop())
		bogus := models.ProjectStatus("live")

		_, err := service.List(ctx, adminCaller(), ProjectFilter{Status: &bogus})
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestProjectGet(t *testing.T) {
	ctx := context.Background()

	t.Run("hides other organizations' drafts", func(t *testing.T) {
		repo := new(MockProjectRepository)
		service := NewProjectService(repo, nil, logger.Nop())
		foreign := ownProject()
		foreign.OrganizationID = orgB
		repo.On("FindByID", ctx, projectID1).Return(foreign, nil)

		_, err := service.Get(ctx, developerCaller(), projectID1)
		assert.ErrorIs(t, err, ErrProjectNotFound)
	})

	t.Run("missing", func(t *testing.T) {
		repo := new(MockProjectRepository)
		service := NewProjectService(repo, nil, logger.Nop())
		repo.On("FindByID", ctx, projectID1).Return(nil, nil)

		_, err := service.Get(ctx, adminCaller(), projectID1)
		assert.ErrorIs(t, err, ErrRecordNotFound)
	})

	t.Run("malformed id", func(t *testing.T) {
		service := NewProjectService(new(MockProjectRepository), nil, logger.Nop())

		_, err := service.Get(ctx, adminCaller(), "not-a-uuid")
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("database failure", func(t *testing.T) {
		repo := new(MockProjectRepository)
		service := NewProjectService(repo, nil, logger.Nop())
		repo.On("FindByID", ctx, projectID1).Return(nil, errors.New("timeout"))

		_, err := service.Get(ctx, adminCaller(), projectID1)
		assert.ErrorIs(t, err, ErrUpstreamService)
	})
}

func TestProjectCreate_Defaults(t *testing.T) {
	repo := new(MockProjectRepository)
	service := NewProjectService(repo, nil, logger.Nop())
	ctx := context.Background()

	repo.On("Create", ctx, mock.AnythingOfType("*models.Project")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*models.Project).ID = projectID1
		}).
		Return(nil)

	project, err := service.Create(ctx, developerCaller(), CreateProjectInput{Name: "  Marina Heights  "})

	require.NoError(t, err)
	assert.Equal(t, projectID1, project.ID)
	assert.Equal(t, "Marina Heights", project.Name)
	assert.Equal(t, orgA, project.OrganizationID)
	assert.Equal(t, models.ProjectStatusDraft, project.Status)
	assert.Equal(t, models.CreationMethodManual, project.CreationMethod)
	require.NotNil(t, project.CreatedBy)
	assert.Equal(t, "dev-1", *project.CreatedBy)
}

func TestProjectCreate_Rejections(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		caller  *CallerContext
		input   CreateProjectInput
		wantErr error
	}{
		{"agent", agentCaller(), CreateProjectInput{Name: "X"}, ErrAuthorizationDenied},
		{"developer for another org", developerCaller(), CreateProjectInput{Name: "X", OrganizationID: orgB}, ErrAuthorizationDenied},
		{"blank name", developerCaller(), CreateProjectInput{Name: "   "}, ErrValidation},
		{"bad status", developerCaller(), CreateProjectInput{Name: "X", Status: "live"}, ErrValidation},
		{"bad creation method", developerCaller(), CreateProjectInput{Name: "X", CreationMethod: "magic"}, ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockProjectRepository)
			service := NewProjectService(repo, nil, logger.Nop())

			_, err := service.Create(ctx, tt.caller, tt.input)

			assert.ErrorIs(t, err, tt.wantErr)
			repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestProjectCreate_AdminTargetsAnyOrganization(t *testing.T) {
	repo := new(MockProjectRepository)
	service := NewProjectService(repo, nil, logger.Nop())
	ctx := context.Background()

	repo.On("Create", ctx, mock.MatchedBy(func(p *models.Project) bool {
		return p.OrganizationID == orgB
	})).Return(nil)

	_, err := service.Create(ctx, adminCaller(), CreateProjectInput{Name: "Harbor", OrganizationID: orgB})

	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestProjectCreate_SourceFile(t *testing.T) {
	ctx := context.Background()
	file := &SourceFile{Name: "prices.xlsx", ContentType: "application/vnd.ms-excel", Data: []byte("data")}

	setup := func() (*MockProjectRepository, *MockUploader, ProjectService) {
		repo := new(MockProjectRepository)
		uploader := new(MockUploader)
		repo.On("Create", ctx, mock.AnythingOfType("*models.Project")).
			Run(func(args mock.Arguments) {
				args.Get(1).(*models.Project).ID = projectID1
			}).
			Return(nil)
		return repo, uploader, NewProjectService(repo, uploader, logger.Nop())
	}

	t.Run("uploaded and linked", func(t *testing.T) {
		repo, uploader, service := setup()
		uploader.On("Upload", ctx, mock.MatchedBy(func(path string) bool {
			return len(path) > 0 && path[:len(orgA)] == orgA
		}), file.ContentType, file.Data).Return(&storage.StoredObject{ID: "file-1"}, nil)
		repo.On("SetSourceFile", ctx, projectID1, "file-1").Return(nil)

		project, err := service.Create(ctx, developerCaller(), CreateProjectInput{Name: "Harbor", SourceFile: file})

		require.NoError(t, err)
		require.NotNil(t, project.SourceFileID)
		assert.Equal(t, "file-1", *project.SourceFileID)
		uploader.AssertExpectations(t)
		repo.AssertExpectations(t)
	})

	t.Run("upload failure still creates the project", func(t *testing.T) {
		repo, uploader, service := setup()
		uploader.On("Upload", ctx, mock.Anything, mock.Anything, mock.Anything).
			Return(nil, storage.ErrUploadFailed)

		project, err := service.Create(ctx, developerCaller(), CreateProjectInput{Name: "Harbor", SourceFile: file})

		require.NoError(t, err)
		assert.Nil(t, project.SourceFileID)
		repo.AssertNotCalled(t, "SetSourceFile", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("link failure still creates the project", func(t *testing.T) {
		repo, uploader, service := setup()
		uploader.On("Upload", ctx, mock.Anything, mock.Anything, mock.Anything).
			Return(&storage.StoredObject{ID: "file-1"}, nil)
		repo.On("SetSourceFile", ctx, projectID1, "file-1").Return(errors.New("deadlock"))

		project, err := service.Create(ctx, developerCaller(), CreateProjectInput{Name: "Harbor", SourceFile: file})

		require.NoError(t, err)
		assert.Nil(t, project.SourceFileID)
	})
}

func TestProjectUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("partial update", func(t *testing.T) {
		repo := new(MockProjectRepository)
		service := NewProjectService(repo, nil, logger.Nop())
		repo.On("FindByID", ctx, projectID1).Return(ownProject(), nil)
		repo.On("Update", ctx, mock.MatchedBy(func(p *models.Project) bool {
			return p.Name == "Marina Heights" && p.Status == models.ProjectStatusPublished
		})).Return(&models.Project{ID: projectID1, Status: models.ProjectStatusPublished}, nil)

		status := models.ProjectStatusPublished
		updated, err := service.Update(ctx, developerCaller(), projectID1, UpdateProjectInput{Status: &status})

		require.NoError(t, err)
		assert.Equal(t, models.ProjectStatusPublished, updated.Status)
		repo.AssertExpectations(t)
	})

	t.Run("agent is denied before any lookup", func(t *testing.T) {
		repo := new(MockProjectRepository)
		service := NewProjectService(repo, nil, logger.Nop())

		name := "Renamed"
		_, err := service.Update(ctx, agentCaller(), projectID1, UpdateProjectInput{Name: &name})

		assert.ErrorIs(t, err, ErrAuthorizationDenied)
		repo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("blank name rejected", func(t *testing.T) {
		repo := new(MockProjectRepository)
		service := NewProjectService(repo, nil, logger.Nop())
		repo.On("FindByID", ctx, projectID1).Return(ownProject(), nil)

		name := ""
		_, err := service.Update(ctx, developerCaller(), projectID1, UpdateProjectInput{Name: &name})

		assert.ErrorIs(t, err, ErrValidation)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("row vanished", func(t *testing.T) {
		repo := new(MockProjectRepository)
		service := NewProjectService(repo, nil, logger.Nop())
		repo.On("FindByID", ctx, projectID1).Return(ownProject(), nil)
		repo.On("Update", ctx, mock.Anything).Return(nil, nil)

		_, err := service.Update(ctx, developerCaller(), projectID1, UpdateProjectInput{})
		assert.ErrorIs(t, err, ErrProjectNotFound)
	})
}

func TestProjectDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("developer deletes own project", func(t *testing.T) {
		repo := new(MockProjectRepository)
		service := NewProjectService(repo, nil, logger.Nop())
		repo.On("FindByID", ctx, projectID1).Return(ownProject(), nil)
		repo.On("Delete", ctx, projectID1).Return(true, nil)

		require.NoError(t, service.Delete(ctx, developerCaller(), projectID1))
		repo.AssertExpectations(t)
	})

	t.Run("agent denied", func(t *testing.T) {
		repo := new(MockProjectRepository)
		service := NewProjectService(repo, nil, logger.Nop())

		err := service.Delete(ctx, agentCaller(), projectID1)

		assert.ErrorIs(t, err, ErrAuthorizationDenied)
		repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("nothing removed", func(t *testing.T) {
		repo := new(MockProjectRepository)
		service := NewProjectService(repo, nil, logger.Nop())
		repo.On("FindByID", ctx, projectID1).Return(ownProject(), nil)
		repo.On("Delete", ctx, projectID1).Return(false, nil)

		err := service.Delete(ctx, adminCaller(), projectID1)
		assert.ErrorIs(t, err, ErrProjectNotFound)
	})
}
