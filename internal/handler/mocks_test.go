package handler

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vcscsvcscs/nutrifast/internal/audit"
	"github.com/vcscsvcscs/nutrifast/internal/auth"
	"github.com/vcscsvcscs/nutrifast/internal/repository"
	"github.com/vcscsvcscs/nutrifast/internal/service"
	"github.com/vcscsvcscs/nutrifast/internal/storage"
	"github.com/vcscsvcscs/nutrifast/internal/tasks"
	"github.com/vcscsvcscs/nutrifast/pkg/model"
)

type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) CreateProduct(ctx context.Context, p *model.Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockProductService) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductService) ListProducts(ctx context.Context, filter repository.ProductFilter) ([]model.Product, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockProductService) UpdateProduct(ctx context.Context, id string, p *model.Product) error {
	return m.Called(ctx, id, p).Error(0)
}

func (m *MockProductService) DeleteProduct(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockProductService) ImportProducts(ctx context.Context, products []model.Product) (*service.ImportResult, error) {
	args := m.Called(ctx, products)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ImportResult), args.Error(1)
}

type MockFastingService struct {
	mock.Mock
}

func (m *MockFastingService) session(args mock.Arguments) (*model.FastingSession, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.FastingSession), args.Error(1)
}

func (m *MockFastingService) Start(ctx context.Context, fastingType string, notes *string) (*model.FastingSession, error) {
	return m.session(m.Called(ctx, fastingType, notes))
}

func (m *MockFastingService) Pause(ctx context.Context) (*model.FastingSession, error) {
	return m.session(m.Called(ctx))
}

func (m *MockFastingService) Resume(ctx context.Context, sessionID string) (*model.FastingSession, error) {
	return m.session(m.Called(ctx, sessionID))
}

func (m *MockFastingService) Cancel(ctx context.Context) (*model.FastingSession, error) {
	return m.session(m.Called(ctx))
}

func (m *MockFastingService) End(ctx context.Context) (*model.FastingSession, error) {
	return m.session(m.Called(ctx))
}

func (m *MockFastingService) Progress(ctx context.Context) (*service.Progress, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Progress), args.Error(1)
}

func (m *MockFastingService) ListSessions(ctx context.Context, filter repository.FastingFilter) ([]model.FastingSession, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.FastingSession), args.Error(1)
}

func (m *MockFastingService) GetSession(ctx context.Context, id string) (*model.FastingSession, error) {
	return m.session(m.Called(ctx, id))
}

func (m *MockFastingService) UpdateNotes(ctx context.Context, id string, notes *string) (*model.FastingSession, error) {
	return m.session(m.Called(ctx, id, notes))
}

func (m *MockFastingService) DeleteSession(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockFastingService) Stats(ctx context.Context) (*service.FastingStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.FastingStats), args.Error(1)
}

type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) WeeklyReport(ctx context.Context, anchor string) ([]byte, string, error) {
	args := m.Called(ctx, anchor)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).([]byte), args.String(1), args.Error(2)
}

type MockBackupService struct {
	mock.Mock
}

func (m *MockBackupService) Create(ctx context.Context) (*service.BackupInfo, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.BackupInfo), args.Error(1)
}

func (m *MockBackupService) List(ctx context.Context) ([]storage.Object, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storage.Object), args.Error(1)
}

func (m *MockBackupService) Restore(ctx context.Context, name string) (map[string]int, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int), args.Error(1)
}

type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) Submit(ctx context.Context, kind tasks.Kind, payload any) (*tasks.Status, error) {
	args := m.Called(ctx, kind, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tasks.Status), args.Error(1)
}

func (m *MockDispatcher) Status(ctx context.Context, id string) (*tasks.Status, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tasks.Status), args.Error(1)
}

type MockAudit struct {
	mock.Mock
}

func (m *MockAudit) Record(ctx context.Context, entry audit.Entry) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *MockAudit) Recent(ctx context.Context, limit int) ([]audit.Entry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]audit.Entry), args.Error(1)
}

type MockAuthenticator struct {
	mock.Mock
}

func (m *MockAuthenticator) Login(username, password string) (*auth.Token, error) {
	args := m.Called(username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Token), args.Error(1)
}

type MockPinger struct {
	mock.Mock
}

func (m *MockPinger) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}
