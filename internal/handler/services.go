package handler

import (
	"context"

	"github.com/vcscsvcscs/nutrifast/internal/audit"
	"github.com/vcscsvcscs/nutrifast/internal/auth"
	"github.com/vcscsvcscs/nutrifast/internal/nutrition"
	"github.com/vcscsvcscs/nutrifast/internal/repository"
	"github.com/vcscsvcscs/nutrifast/internal/service"
	"github.com/vcscsvcscs/nutrifast/internal/storage"
	"github.com/vcscsvcscs/nutrifast/pkg/model"
)

// ProductService is implemented by *service.ProductService
type ProductService interface {
	CreateProduct(ctx context.Context, p *model.Product) error
	GetProduct(ctx context.Context, id string) (*model.Product, error)
	ListProducts(ctx context.Context, filter repository.ProductFilter) ([]model.Product, error)
	UpdateProduct(ctx context.Context, id string, p *model.Product) error
	DeleteProduct(ctx context.Context, id string) error
	ImportProducts(ctx context.Context, products []model.Product) (*service.ImportResult, error)
}

// DishService is implemented by *service.DishService
type DishService interface {
	CreateDish(ctx context.Context, d *model.Dish) (*service.DishView, error)
	GetDish(ctx context.Context, id string) (*service.DishView, error)
	ListDishes(ctx context.Context) ([]service.DishView, error)
	UpdateDish(ctx context.Context, id string, d *model.Dish) (*service.DishView, error)
	DeleteDish(ctx context.Context, id string) error
}

// EntryService is implemented by *service.LogEntryService
type EntryService interface {
	CreateEntry(ctx context.Context, e *model.LogEntry) (*service.LogEntryView, error)
	GetEntry(ctx context.Context, id string) (*service.LogEntryView, error)
	ListEntries(ctx context.Context, from, to string) ([]service.LogEntryView, error)
	UpdateEntry(ctx context.Context, id string, e *model.LogEntry) (*service.LogEntryView, error)
	DeleteEntry(ctx context.Context, id string) error
}

// StatsService is implemented by *service.StatsService
type StatsService interface {
	DailyStats(ctx context.Context, date string) (*service.DailyStats, error)
	WeeklyStats(ctx context.Context, anchor string) (*service.WeeklyStats, error)
}

// ReportService is implemented by *service.ReportService
type ReportService interface {
	WeeklyReport(ctx context.Context, anchor string) ([]byte, string, error)
}

// FastingService is implemented by *service.FastingService
type FastingService interface {
	Start(ctx context.Context, fastingType string, notes *string) (*model.FastingSession, error)
	Pause(ctx context.Context) (*model.FastingSession, error)
	Resume(ctx context.Context, sessionID string) (*model.FastingSession, error)
	Cancel(ctx context.Context) (*model.FastingSession, error)
	End(ctx context.Context) (*model.FastingSession, error)
	Progress(ctx context.Context) (*service.Progress, error)
	ListSessions(ctx context.Context, filter repository.FastingFilter) ([]model.FastingSession, error)
	GetSession(ctx context.Context, id string) (*model.FastingSession, error)
	UpdateNotes(ctx context.Context, id string, notes *string) (*model.FastingSession, error)
	DeleteSession(ctx context.Context, id string) error
	Stats(ctx context.Context) (*service.FastingStats, error)
}

// GoalService is implemented by *service.GoalService
type GoalService interface {
	CreateGoal(ctx context.Context, g *model.FastingGoal) (*model.FastingGoal, error)
	GetGoal(ctx context.Context, id string) (*model.FastingGoal, error)
	ListGoals(ctx context.Context) ([]model.FastingGoal, error)
	DeleteGoal(ctx context.Context, id string) error
}

// ProfileService is implemented by *service.ProfileService
type ProfileService interface {
	GetProfile(ctx context.Context) (*model.Profile, error)
	PutProfile(ctx context.Context, p *model.Profile) (*model.Profile, error)
	Targets(ctx context.Context) (*nutrition.MacroTargets, error)
}

// BackupService is implemented by *service.BackupService
type BackupService interface {
	Create(ctx context.Context) (*service.BackupInfo, error)
	List(ctx context.Context) ([]storage.Object, error)
	Restore(ctx context.Context, name string) (map[string]int, error)
}

// AuditReader is implemented by *audit.Logger
type AuditReader interface {
	Recent(ctx context.Context, limit int) ([]audit.Entry, error)
}

// Authenticator is implemented by *auth.Authenticator
type Authenticator interface {
	Login(username, password string) (*auth.Token, error)
}

// Pinger is implemented by *pgxpool.Pool
type Pinger interface {
	Ping(ctx context.Context) error
}
