package services

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stwalsh4118/estatedesk/internal/models"
	"github.com/stwalsh4118/estatedesk/internal/repository"
	"github.com/stwalsh4118/estatedesk/internal/storage"
)

const (
	orgA       = "11111111-1111-1111-1111-111111111111"
	orgB       = "22222222-2222-2222-2222-222222222222"
	projectID1 = "33333333-3333-3333-3333-333333333333"
	promoID1   = "44444444-4444-4444-4444-444444444444"
)

func adminCaller() *CallerContext {
	return &CallerContext{UserID: "admin-1", OrganizationID: orgA, Role: models.RoleAdmin}
}

func developerCaller() *CallerContext {
	return &CallerContext{UserID: "dev-1", OrganizationID: orgA, Role: models.RoleDeveloper}
}

func agentCaller() *CallerContext {
	return &CallerContext{UserID: "agent-1", OrganizationID: orgB, Role: models.RoleAgent}
}

type MockProjectRepository struct {
	mock.Mock
}

func (m *MockProjectRepository) FindByID(ctx context.Context, id string) (*models.Project, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*models.Project)
	return p, args.Error(1)
}

func (m *MockProjectRepository) List(ctx context.Context, q repository.ProjectQuery) ([]models.Project, error) {
	args := m.Called(ctx, q)
	p, _ := args.Get(0).([]models.Project)
	return p, args.Error(1)
}

func (m *MockProjectRepository) Create(ctx context.Context, p *models.Project) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProjectRepository) Update(ctx context.Context, p *models.Project) (*models.Project, error) {
	args := m.Called(ctx, p)
	out, _ := args.Get(0).(*models.Project)
	return out, args.Error(1)
}

func (m *MockProjectRepository) Delete(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockProjectRepository) UpdateUnitSummary(ctx context.Context, id string, summary *models.UnitSummary) error {
	args := m.Called(ctx, id, summary)
	return args.Error(0)
}

func (m *MockProjectRepository) SetSourceFile(ctx context.Context, id, fileID string) error {
	args := m.Called(ctx, id, fileID)
	return args.Error(0)
}

type MockUnitRepository struct {
	mock.Mock
}

func (m *MockUnitRepository) UpsertUnits(ctx context.Context, projectID string, rows []models.UnitRow) (int, error) {
	args := m.Called(ctx, projectID, rows)
	return args.Int(0), args.Error(1)
}

func (m *MockUnitRepository) ListByProject(ctx context.Context, projectID string) ([]models.Unit, error) {
	args := m.Called(ctx, projectID)
	u, _ := args.Get(0).([]models.Unit)
	return u, args.Error(1)
}

func (m *MockUnitRepository) DeleteByProject(ctx context.Context, projectID string) (int64, error) {
	args := m.Called(ctx, projectID)
	return args.Get(0).(int64), args.Error(1)
}

type MockPromotionRepository struct {
	mock.Mock
}

func (m *MockPromotionRepository) FindByID(ctx context.Context, id string) (*models.Promotion, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*models.Promotion)
	return p, args.Error(1)
}

func (m *MockPromotionRepository) List(ctx context.Context, q repository.PromotionQuery) ([]models.Promotion, error) {
	args := m.Called(ctx, q)
	p, _ := args.Get(0).([]models.Promotion)
	return p, args.Error(1)
}

func (m *MockPromotionRepository) Create(ctx context.Context, p *models.Promotion) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPromotionRepository) Update(ctx context.Context, p *models.Promotion) (*models.Promotion, error) {
	args := m.Called(ctx, p)
	out, _ := args.Get(0).(*models.Promotion)
	return out, args.Error(1)
}

func (m *MockPromotionRepository) Delete(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockPromotionRepository) ActivateDue(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPromotionRepository) CompleteExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

type MockEmployeeRepository struct {
	mock.Mock
}

func (m *MockEmployeeRepository) FindByUserID(ctx context.Context, userID string) (*models.Employee, error) {
	args := m.Called(ctx, userID)
	e, _ := args.Get(0).(*models.Employee)
	return e, args.Error(1)
}

type MockOrganizationRepository struct {
	mock.Mock
}

func (m *MockOrganizationRepository) FindByID(ctx context.Context, id string) (*models.Organization, error) {
	args := m.Called(ctx, id)
	o, _ := args.Get(0).(*models.Organization)
	return o, args.Error(1)
}

type MockUploader struct {
	mock.Mock
}

func (m *MockUploader) Upload(ctx context.Context, objectPath, contentType string, data []byte) (*storage.StoredObject, error) {
	args := m.Called(ctx, objectPath, contentType, data)
	o, _ := args.Get(0).(*storage.StoredObject)
	return o, args.Error(1)
}

type MockCallerCache struct {
	mock.Mock
}

func (m *MockCallerCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	args := m.Called(ctx, key, dest)
	return args.Bool(0), args.Error(1)
}

func (m *MockCallerCache) Set(ctx context.Context, key string, v any) error {
	args := m.Called(ctx, key, v)
	return args.Error(0)
}

func (m *MockCallerCache) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}
