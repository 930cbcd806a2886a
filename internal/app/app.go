package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vcscsvcscs/nutrifast/internal/audit"
	"github.com/vcscsvcscs/nutrifast/internal/auth"
	"github.com/vcscsvcscs/nutrifast/internal/config"
	"github.com/vcscsvcscs/nutrifast/internal/database"
	"github.com/vcscsvcscs/nutrifast/internal/handler"
	"github.com/vcscsvcscs/nutrifast/internal/pdf"
	"github.com/vcscsvcscs/nutrifast/internal/repository"
	"github.com/vcscsvcscs/nutrifast/internal/security"
	"github.com/vcscsvcscs/nutrifast/internal/service"
	"github.com/vcscsvcscs/nutrifast/internal/storage"
	"github.com/vcscsvcscs/nutrifast/internal/tasks"
	"github.com/vcscsvcscs/nutrifast/pkg/model"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// App holds the wired components shared by the API server and the worker
type App struct {
	Config     *config.Config
	Logger     *zap.Logger
	Pool       *pgxpool.Pool
	Location   *time.Location
	Registry   *tasks.Registry
	TaskStore  tasks.StatusStore
	Dispatcher tasks.Dispatcher
	Auth       *auth.Authenticator
	Server     *handler.Server

	closers []func() error
}

// NewLogger builds the process logger from the logging configuration
func NewLogger(cfg config.LoggingConfig, environment string) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if environment != "production" {
		zcfg = zap.NewDevelopmentConfig()
	}

	if cfg.Level != "" {
		level, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid logging.level %q: %w", cfg.Level, err)
		}
		zcfg.Level = zap.NewAtomicLevelAt(level)
	}
	if cfg.Format != "" {
		zcfg.Encoding = cfg.Format
	}

	return zcfg.Build()
}

// New connects to the database and backup storage and wires repositories,
// services, task handlers and HTTP handlers
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	loc, err := cfg.Server.Location()
	if err != nil {
		return nil, err
	}

	if cfg.Database.AutoMigrate {
		if err := database.MigrateURL(ctx, cfg.Database.URL, logger); err != nil {
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	pool, err := openPool(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	logger.Info("Successfully connected to database")

	a := &App{
		Config:   cfg,
		Logger:   logger,
		Pool:     pool,
		Location: loc,
		Registry: tasks.NewRegistry(),
	}
	a.closers = append(a.closers, func() error { pool.Close(); return nil })

	if err := a.wire(ctx); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func openPool(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid database url: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		poolCfg.MaxConns = int32(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 && cfg.MaxIdleConns <= cfg.MaxOpenConns {
		poolCfg.MinConns = int32(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return pool, nil
}

func newBackupStorage(ctx context.Context, cfg config.BackupConfig, logger *zap.Logger) (storage.BackupStorage, error) {
	switch cfg.Provider {
	case "azure":
		blob, err := storage.NewAzureBlobStorage(cfg.Azure.AccountName, cfg.Azure.AccountKey, cfg.Azure.Container, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Azure Blob Storage client: %w", err)
		}
		if err := blob.EnsureContainer(ctx); err != nil {
			return nil, fmt.Errorf("failed to prepare backup container: %w", err)
		}
		return blob, nil
	default:
		return storage.NewLocalStorage(cfg.Dir, logger)
	}
}

func (a *App) newDispatcher(store tasks.StatusStore) (tasks.Dispatcher, error) {
	if a.Config.Tasks.Mode != "amqp" {
		return tasks.NewSyncDispatcher(a.Registry, store, a.Logger), nil
	}

	d, err := tasks.NewAMQPDispatcher(a.Config.Tasks.AMQP.URL, a.Config.Tasks.Queue, a.Registry, store, a.Logger)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, d.Close)
	return d, nil
}

func (a *App) wire(ctx context.Context) error {
	cfg, logger := a.Config, a.Logger

	store, err := newBackupStorage(ctx, cfg.Backup, logger)
	if err != nil {
		return err
	}

	var encryptor *security.Encryptor
	key, err := cfg.Backup.DecodeEncryptionKey()
	if err != nil {
		return err
	}
	if key != nil {
		if encryptor, err = security.NewEncryptor(key); err != nil {
			return err
		}
	}

	a.TaskStore = repository.NewTaskStatusRepository(a.Pool, logger)
	if a.Dispatcher, err = a.newDispatcher(a.TaskStore); err != nil {
		return err
	}

	auditLogger := audit.NewLogger(a.Pool, logger)

	productRepo := repository.NewProductRepository(a.Pool, logger)
	dishRepo := repository.NewDishRepository(a.Pool, logger)
	entryRepo := repository.NewLogEntryRepository(a.Pool, logger)
	fastingRepo := repository.NewFastingRepository(a.Pool, logger)
	goalRepo := repository.NewGoalRepository(a.Pool, logger)
	profileRepo := repository.NewProfileRepository(a.Pool, logger)
	snapshotRepo := repository.NewSnapshotRepository(a.Pool, logger)

	productService := service.NewProductService(productRepo, a.Dispatcher, auditLogger, logger)
	dishService := service.NewDishService(dishRepo, productRepo, auditLogger, logger)
	resolver := service.NewItemResolver(map[model.ItemType]service.NutritionSource{
		model.ItemProduct: service.NewProductSource(productRepo),
		model.ItemDish:    dishService,
	})
	entryService := service.NewLogEntryService(entryRepo, resolver, auditLogger, a.Location, logger)
	statsService := service.NewStatsService(entryRepo, resolver, a.Location, logger)
	fastingService := service.NewFastingService(fastingRepo, auditLogger, a.Location, logger)
	goalService := service.NewGoalService(goalRepo, fastingRepo, auditLogger, a.Location, logger)
	profileService := service.NewProfileService(profileRepo, logger)
	reportService := service.NewReportService(statsService, fastingService, profileService, pdf.NewPDFGenerator(logger), store, logger)
	backupService := service.NewBackupService(snapshotRepo, store, encryptor, auditLogger, logger)

	today := func() string { return statsService.Today().Format(service.DateLayout) }
	registerTasks(a.Registry, backupService, reportService, dishService, today)

	if a.Auth, err = auth.NewAuthenticator(
		cfg.Auth.JWTSecret,
		cfg.Auth.TokenTTL,
		cfg.Auth.AdminUsername,
		cfg.Auth.AdminPasswordHash,
		logger,
	); err != nil {
		return err
	}

	a.Server = &handler.Server{
		HealthHandler:  handler.NewHealthHandler(a.Pool, logger),
		AuthHandler:    handler.NewAuthHandler(a.Auth, auditLogger, logger),
		ProductHandler: handler.NewProductHandler(productService, logger),
		DishHandler:    handler.NewDishHandler(dishService, logger),
		EntryHandler:   handler.NewEntryHandler(entryService, today, logger),
		StatsHandler:   handler.NewStatsHandler(statsService, reportService, today, logger),
		FastingHandler: handler.NewFastingHandler(fastingService, logger),
		GoalHandler:    handler.NewGoalHandler(goalService, logger),
		ProfileHandler: handler.NewProfileHandler(profileService, logger),
		AdminHandler:   handler.NewAdminHandler(a.Dispatcher, backupService, auditLogger, logger),
	}

	logger.Info("application wired",
		zap.String("tasks_mode", cfg.Tasks.Mode),
		zap.String("backup_provider", cfg.Backup.Provider),
		zap.Bool("backup_encryption", encryptor != nil),
		zap.String("timezone", a.Location.String()),
	)
	return nil
}

// Close releases the broker connection and the database pool
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// weeklyReportPayload selects the week a weekly_report task renders
type weeklyReportPayload struct {
	Date string `json:"date"`
}

type (
	backupCreator interface {
		Create(ctx context.Context) (*service.BackupInfo, error)
	}
	reportStorer interface {
		StoreWeeklyReport(ctx context.Context, anchor string) (string, error)
	}
	dishRecomputer interface {
		RecomputeAll(ctx context.Context) ([]service.RecomputedDish, error)
	}
)

// registerTasks binds every background task kind to its service call
func registerTasks(registry *tasks.Registry, backups backupCreator, reports reportStorer, dishes dishRecomputer, today func() string) {
	registry.Register(tasks.KindBackup, func(ctx context.Context, _ tasks.Task) (any, error) {
		return backups.Create(ctx)
	})

	registry.Register(tasks.KindWeeklyReport, func(ctx context.Context, task tasks.Task) (any, error) {
		var payload weeklyReportPayload
		if err := tasks.DecodePayload(task, &payload); err != nil {
			return nil, err
		}
		anchor := strings.TrimSpace(payload.Date)
		if anchor == "" {
			anchor = today()
		}
		name, err := reports.StoreWeeklyReport(ctx, anchor)
		if err != nil {
			return nil, err
		}
		return map[string]string{"report": name}, nil
	})

	registry.Register(tasks.KindRecomputeDishes, func(ctx context.Context, _ tasks.Task) (any, error) {
		return dishes.RecomputeAll(ctx)
	})
}
