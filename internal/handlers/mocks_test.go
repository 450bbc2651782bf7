package handlers

import (
	"context"
	"io"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stwalsh4118/estatedesk/internal/models"
	"github.com/stwalsh4118/estatedesk/internal/services"
)

type MockProjectService struct {
	mock.Mock
}

func (m *MockProjectService) List(ctx context.Context, caller *services.CallerContext, filter services.ProjectFilter) ([]models.Project, error) {
	args := m.Called(ctx, caller, filter)
	p, _ := args.Get(0).([]models.Project)
	return p, args.Error(1)
}

func (m *MockProjectService) Get(ctx context.Context, caller *services.CallerContext, id string) (*models.Project, error) {
	args := m.Called(ctx, caller, id)
	p, _ := args.Get(0).(*models.Project)
	return p, args.Error(1)
}

func (m *MockProjectService) Create(ctx context.Context, caller *services.CallerContext, in services.CreateProjectInput) (*models.Project, error) {
	args := m.Called(ctx, caller, in)
	p, _ := args.Get(0).(*models.Project)
	return p, args.Error(1)
}

func (m *MockProjectService) Update(ctx context.Context, caller *services.CallerContext, id string, in services.UpdateProjectInput) (*models.Project, error) {
	args := m.Called(ctx, caller, id, in)
	p, _ := args.Get(0).(*models.Project)
	return p, args.Error(1)
}

func (m *MockProjectService) Delete(ctx context.Context, caller *services.CallerContext, id string) error {
	args := m.Called(ctx, caller, id)
	return args.Error(0)
}

type MockUnitService struct {
	mock.Mock
}

func (m *MockUnitService) Ingest(ctx context.Context, caller *services.CallerContext, projectID string, req services.IngestRequest) (*services.IngestResult, error) {
	args := m.Called(ctx, caller, projectID, req)
	r, _ := args.Get(0).(*services.IngestResult)
	return r, args.Error(1)
}

func (m *MockUnitService) IngestFile(ctx context.Context, caller *services.CallerContext, projectID, filename string, r io.Reader) (*services.IngestResult, error) {
	args := m.Called(ctx, caller, projectID, filename, r)
	res, _ := args.Get(0).(*services.IngestResult)
	return res, args.Error(1)
}

func (m *MockUnitService) ListUnits(ctx context.Context, caller *services.CallerContext, projectID string) ([]models.Unit, error) {
	args := m.Called(ctx, caller, projectID)
	u, _ := args.Get(0).([]models.Unit)
	return u, args.Error(1)
}

func (m *MockUnitService) ExportUnits(ctx context.Context, caller *services.CallerContext, projectID string) ([]byte, string, error) {
	args := m.Called(ctx, caller, projectID)
	data, _ := args.Get(0).([]byte)
	return data, args.String(1), args.Error(2)
}

func (m *MockUnitService) GetSummary(ctx context.Context, caller *services.CallerContext, projectID string) (*models.UnitSummary, error) {
	args := m.Called(ctx, caller, projectID)
	s, _ := args.Get(0).(*models.UnitSummary)
	return s, args.Error(1)
}

func (m *MockUnitService) ClearUnits(ctx context.Context, caller *services.CallerContext, projectID string) (int64, error) {
	args := m.Called(ctx, caller, projectID)
	return args.Get(0).(int64), args.Error(1)
}

type MockPromotionService struct {
	mock.Mock
}

func (m *MockPromotionService) List(ctx context.Context, caller *services.CallerContext, filter services.PromotionFilter) ([]models.Promotion, error) {
	args := m.Called(ctx, caller, filter)
	p, _ := args.Get(0).([]models.Promotion)
	return p, args.Error(1)
}

func (m *MockPromotionService) Get(ctx context.Context, caller *services.CallerContext, id string) (*models.Promotion, error) {
	args := m.Called(ctx, caller, id)
	p, _ := args.Get(0).(*models.Promotion)
	return p, args.Error(1)
}

func (m *MockPromotionService) Create(ctx context.Context, caller *services.CallerContext, in services.CreatePromotionInput) (*models.Promotion, error) {
	args := m.Called(ctx, caller, in)
	p, _ := args.Get(0).(*models.Promotion)
	return p, args.Error(1)
}

func (m *MockPromotionService) Update(ctx context.Context, caller *services.CallerContext, id string, in services.UpdatePromotionInput) (*models.Promotion, error) {
	args := m.Called(ctx, caller, id, in)
	p, _ := args.Get(0).(*models.Promotion)
	return p, args.Error(1)
}

func (m *MockPromotionService) Delete(ctx context.Context, caller *services.CallerContext, id string) error {
	args := m.Called(ctx, caller, id)
	return args.Error(0)
}

func (m *MockPromotionService) RunLifecycle(ctx context.Context, now time.Time) (services.LifecycleResult, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(services.LifecycleResult), args.Error(1)
}

type MockCallerResolver struct {
	mock.Mock
}

func (m *MockCallerResolver) Resolve(ctx context.Context, userID string) (*services.CallerContext, error) {
	args := m.Called(ctx, userID)
	c, _ := args.Get(0).(*services.CallerContext)
	return c, args.Error(1)
}

func (m *MockCallerResolver) Invalidate(ctx context.Context, userID string) {
	m.Called(ctx, userID)
}
