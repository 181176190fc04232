package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/decentfoods/internal/config"
	"github.com/mamadbah2/decentfoods/internal/repository"
	"github.com/mamadbah2/decentfoods/internal/repository/jsonfile"
	"github.com/mamadbah2/decentfoods/internal/repository/memory"
	"github.com/mamadbah2/decentfoods/internal/repository/mongodb"
	"github.com/mamadbah2/decentfoods/internal/repository/mysql"
	"github.com/mamadbah2/decentfoods/internal/repository/sheets"
	"github.com/mamadbah2/decentfoods/internal/service/bookkeeping"
	"github.com/mamadbah2/decentfoods/internal/service/export"
	"github.com/mamadbah2/decentfoods/internal/service/ledger"
	"github.com/mamadbah2/decentfoods/internal/service/reporting"
	applog "github.com/mamadbah2/decentfoods/pkg/logger"
)

const connectTimeout = 15 * time.Second

// App holds the services shared by the HTTP server and the command line tool.
type App struct {
	Config      *config.Config
	Logger      *zap.Logger
	Store       repository.Store
	Reporting   *reporting.Service
	Ledger      *ledger.Service
	Bookkeeping *bookkeeping.Service

	closers []func(context.Context) error
}

// New opens the configured store and archives and wires the services.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &App{Config: cfg, Logger: logger}

	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	var archives repository.Archives
	if err := a.openStore(connectCtx, &archives); err != nil {
		return nil, err
	}
	// Every write cycle from the API, the webhook and the scheduler goes
	// through one Serial so they never interleave.
	a.Store = repository.NewSerial(a.Store)

	if cfg.Sheets.Enabled() {
		sheetRepo, err := sheets.NewGoogleSheetRepository(connectCtx, cfg.Sheets, applog.Named(logger, "repo.sheets"))
		if err != nil {
			_ = a.Close(ctx)
			return nil, fmt.Errorf("init sheets archive: %w", err)
		}
		archives = append(archives, sheets.NewReportArchive(sheetRepo))
	}

	loc, err := cfg.Reporting.Location()
	if err != nil {
		_ = a.Close(ctx)
		return nil, err
	}

	opts := reporting.Options{Location: loc, Currency: cfg.Business.Currency}
	if len(archives) > 0 {
		opts.Archive = archives
	}
	a.Reporting = reporting.NewService(a.Store, opts, applog.Named(logger, "svc.reporting"))
	a.Ledger = ledger.NewService(a.Store, applog.Named(logger, "svc.ledger"))
	a.Bookkeeping = bookkeeping.NewService(a.Store, applog.Named(logger, "svc.bookkeeping"))

	logger.Info("application wired",
		zap.String("store", cfg.Store.Driver),
		zap.Int("archives", len(archives)),
		zap.String("timezone", loc.String()))
	return a, nil
}

func (a *App) openStore(ctx context.Context, archives *repository.Archives) error {
	cfg := a.Config
	switch cfg.Store.Driver {
	case config.DriverJSON:
		store, err := jsonfile.NewStore(cfg.Store.DataDir, a.Logger.Named("repo.json"))
		if err != nil {
			return err
		}
		a.Store = store
	case config.DriverMongoDB:
		repo, err := mongodb.NewMongoDBRepository(ctx, cfg.MongoDB.URI, cfg.MongoDB.DBName, a.Logger.Named("repo.mongodb"))
		if err != nil {
			return fmt.Errorf("init mongodb store: %w", err)
		}
		a.Store = repo
		*archives = append(*archives, repo)
		a.closers = append(a.closers, repo.Close)
	case config.DriverMySQL:
		store, err := mysql.Open(ctx, cfg.MySQL.DSN, a.Logger.Named("repo.mysql"))
		if err != nil {
			return fmt.Errorf("init mysql store: %w", err)
		}
		a.Store = store
		a.closers = append(a.closers, func(context.Context) error { return store.Close() })
	case config.DriverMemory:
		a.Store = memory.NewStore()
	default:
		return fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
	return nil
}

// ExportHeader identifies the business on generated workbooks.
func (a *App) ExportHeader() export.Header {
	return export.Header{BusinessName: a.Config.Business.Name, Currency: a.Config.Business.Currency}
}

// Close releases database connections.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
