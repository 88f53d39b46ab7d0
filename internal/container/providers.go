package container

import (
	"context"
	"fmt"

	"github.com/PerretWilliam/frais-and-co-freeware-sub001/internal/application/dispatcher"
	"github.com/PerretWilliam/frais-and-co-freeware-sub001/internal/application/port"
	"github.com/PerretWilliam/frais-and-co-freeware-sub001/internal/application/service"
	"github.com/PerretWilliam/frais-and-co-freeware-sub001/internal/infrastructure/distance"
	"github.com/PerretWilliam/frais-and-co-freeware-sub001/internal/infrastructure/export"
	"github.com/PerretWilliam/frais-and-co-freeware-sub001/internal/infrastructure/notify"
	"github.com/PerretWilliam/frais-and-co-freeware-sub001/internal/infrastructure/persistence/repository"
	"github.com/PerretWilliam/frais-and-co-freeware-sub001/internal/infrastructure/persistence/sqlite"
	"github.com/PerretWilliam/frais-and-co-freeware-sub001/internal/infrastructure/storage"
	"github.com/PerretWilliam/frais-and-co-freeware-sub001/internal/infrastructure/worker"
	"github.com/PerretWilliam/frais-and-co-freeware-sub001/pkg/database"
	"go.uber.org/zap"
)

// DatabaseBundle holds database-related components.
type DatabaseBundle struct {
	Conn           *database.DB
	TransactionMgr *sqlite.DB
}

// ExternalBundle holds the adapters to collaborators outside the domain.
type ExternalBundle struct {
	Resolver   port.DistanceResolver
	Sender     port.MessageSender
	Reports    port.ReportExporter
	Statements port.StatementRenderer
}

// ProvideDatabase opens the database and runs the embedded migrations.
func ProvideDatabase(cfg *DatabaseConfig, logger *zap.Logger) (*DatabaseBundle, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	conn, err := database.New(database.Config{
		Path:            cfg.Path,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
		BusyTimeout:     cfg.BusyTimeout,
	}, logger)
	if err != nil {
		return nil, err
	}

	if err := database.NewMigrator(conn, logger).Run(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &DatabaseBundle{
		Conn:           conn,
		TransactionMgr: sqlite.NewDB(conn.DB, logger),
	}, nil
}

// ProvideRepositories creates all repositories on top of the transaction manager.
func ProvideRepositories(db *sqlite.DB, logger *zap.Logger) (*RepositoryBundle, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	return &RepositoryBundle{
		Expense: repository.NewExpenseRepository(db, logger),
		History: repository.NewHistoryRepository(db, logger),
		Account: repository.NewAccountRepository(db, logger),
	}, nil
}

// ProvideStorage creates the document archive.
func ProvideStorage(cfg *StorageConfig, logger *zap.Logger) (*storage.DocumentStore, error) {
	if cfg == nil || cfg.OutputDir == "" {
		return nil, fmt.Errorf("storage output dir is required")
	}
	return storage.NewDocumentStore(cfg.OutputDir, logger), nil
}

// ProvideExternal creates the distance resolver, message sender and document renderers.
func ProvideExternal(cfg *Config, archive port.FileStorage, logger *zap.Logger) (*ExternalBundle, error) {
	resolver, err := distance.NewTableResolver(cfg.Distance.Table, cfg.Distance.DefaultKm, logger.Named("distance"))
	if err != nil {
		return nil, fmt.Errorf("failed to build distance table: %w", err)
	}

	var outbox port.FileStorage
	if cfg.Notification.KeepOutbox {
		outbox = archive
	}

	return &ExternalBundle{
		Resolver:   resolver,
		Sender:     notify.NewLogSender(cfg.Notification.SenderAddress, outbox, logger.Named("notify")),
		Reports:    export.NewExcelExporter(logger.Named("export")),
		Statements: export.NewStatementWriter(cfg.Storage.CompanyName),
	}, nil
}

// ProvideDispatcher creates the event dispatcher.
func ProvideDispatcher(cfg *NotificationConfig, logger *zap.Logger) (dispatcher.Dispatcher, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	return dispatcher.NewDispatcher(
		dispatcher.WithLogger(&zapLoggerAdapter{logger: logger.Named("dispatcher")}),
		dispatcher.WithPoolSize(cfg.PoolSize),
	)
}

// ServiceDeps holds dependencies required for creating services.
type ServiceDeps struct {
	Config     *Config
	Repos      *RepositoryBundle
	TxManager  port.TransactionManager
	External   *ExternalBundle
	Storage    port.FileStorage
	Dispatcher dispatcher.Dispatcher
	Logger     *zap.Logger
}

// ProvideServices creates all application services and subscribes the
// notification handlers to the dispatcher.
func ProvideServices(ctx context.Context, deps *ServiceDeps) (*ServiceBundle, error) {
	if deps == nil || deps.Repos == nil || deps.External == nil || deps.Dispatcher == nil {
		return nil, fmt.Errorf("service dependencies are incomplete")
	}

	serviceLogger := &zapLoggerAdapter{logger: deps.Logger}
	cfg := deps.Config

	workflows := service.NewWorkflows(service.WorkflowDeps{
		Store: service.Persistence{
			Expenses:  deps.Repos.Expense,
			History:   deps.Repos.History,
			TxManager: deps.TxManager,
		},
		Dispatcher: deps.Dispatcher,
		Resolver:   deps.External.Resolver,
		Pricing: service.Pricing{
			PricePerKm:    cfg.Pricing.PricePerKm,
			PricePerNight: cfg.Pricing.PricePerNight,
			MealBasePrice: cfg.Pricing.MealBasePrice,
		},
		Logger: serviceLogger,
	})

	notifications, err := service.NewNotificationService(
		deps.Repos.Account,
		deps.External.Sender,
		service.NotificationConfig{
			SenderName:      cfg.Notification.SenderName,
			AccountantEmail: cfg.Notification.AccountantEmail,
		},
		serviceLogger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create notification service: %w", err)
	}
	notifications.Subscribe(deps.Dispatcher)

	accounts := service.NewAccountService(deps.Repos.Account, deps.Dispatcher, serviceLogger)
	if cfg.Bootstrap.AdminEmail != "" {
		if _, err := accounts.Bootstrap(ctx, cfg.Bootstrap.AdminName, cfg.Bootstrap.AdminEmail); err != nil {
			return nil, fmt.Errorf("failed to bootstrap administrator: %w", err)
		}
	}

	return &ServiceBundle{
		Workflows:     workflows,
		Accounts:      accounts,
		Notifications: notifications,
		Reminders:     service.NewReminderService(deps.Repos.Expense, deps.Dispatcher, cfg.Reminder.PendingAfter, serviceLogger),
		Export:        service.NewExportService(deps.External.Reports, deps.External.Statements, deps.Storage, serviceLogger),
	}, nil
}

// ProvideWorkers creates the worker manager and registers enabled workers.
func ProvideWorkers(cfg *ReminderConfig, reminders *service.ReminderService, logger *zap.Logger) *worker.Manager {
	manager := worker.NewManager(logger)
	if cfg.Enabled {
		manager.Register(worker.NewReminderWorker(worker.ReminderConfig{Interval: cfg.Interval}, reminders, logger))
	}
	return manager
}
