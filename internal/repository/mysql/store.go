package mysql

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"gorm.io/gorm/schema"

	"github.com/mamadbah2/decentfoods/internal/domain/models"
	"github.com/mamadbah2/decentfoods/internal/repository"
)

const batchSize = 200

// Store keeps each collection in its own MySQL table. Saves replace the table
// contents inside one transaction.
type Store struct {
	db     *gorm.DB
	logger *zap.Logger

	mu       sync.Mutex
	migrated map[string]bool
}

var _ repository.Store = (*Store)(nil)

// Open connects with dsn and verifies the connection.
func Open(ctx context.Context, dsn string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := gorm.Open(gormmysql.Open(dsn), gormConfig(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mysql: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("mysql handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping mysql: %w", err)
	}

	return New(db, logger), nil
}

// New wraps an existing gorm handle.
func New(db *gorm.DB, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{db: db, logger: logger, migrated: make(map[string]bool)}
}

func gormConfig(logger *zap.Logger) *gorm.Config {
	return &gorm.Config{
		Logger: gormlogger.New(
			zap.NewStdLog(logger.Named("gorm")),
			gormlogger.Config{
				Colorful:      false,
				LogLevel:      gormlogger.Error,
				SlowThreshold: time.Second,
			},
		),
		NamingStrategy: schema.NamingStrategy{SingularTable: false},
	}
}

// LoadPurchases reads the purchases table.
func (s *Store) LoadPurchases(ctx context.Context) ([]models.PurchaseRecord, error) {
	purchases, err := loadAll[models.PurchaseRecord](ctx, s)
	for i := range purchases {
		purchases[i] = repository.NormalizePurchase(purchases[i])
	}
	return purchases, err
}

// SavePurchases replaces the purchases table.
func (s *Store) SavePurchases(ctx context.Context, purchases []models.PurchaseRecord) error {
	return replaceAll(ctx, s, purchases)
}

// LoadSales reads the sales table.
func (s *Store) LoadSales(ctx context.Context) ([]models.SaleRecord, error) {
	return loadAll[models.SaleRecord](ctx, s)
}

// SaveSales replaces the sales table.
func (s *Store) SaveSales(ctx context.Context, sales []models.SaleRecord) error {
	return replaceAll(ctx, s, sales)
}

// LoadPayments reads the payments table.
func (s *Store) LoadPayments(ctx context.Context) ([]models.PaymentRecord, error) {
	return loadAll[models.PaymentRecord](ctx, s)
}

// SavePayments replaces the payments table.
func (s *Store) SavePayments(ctx context.Context, payments []models.PaymentRecord) error {
	return replaceAll(ctx, s, payments)
}

// LoadOrders reads the orders table.
func (s *Store) LoadOrders(ctx context.Context) ([]models.OrderRecord, error) {
	return loadAll[models.OrderRecord](ctx, s)
}

// SaveOrders replaces the orders table.
func (s *Store) SaveOrders(ctx context.Context, orders []models.OrderRecord) error {
	return replaceAll(ctx, s, orders)
}

// Close releases the connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

type tabler interface {
	TableName() string
}

// loadAll reads a table ordered by id. A table that was never created is
// absent. HasTable cannot tell a missing table from a lost connection, so the
// pool is pinged before a table is declared absent.
func loadAll[T tabler](ctx context.Context, s *Store) ([]T, error) {
	var model T
	table := model.TableName()
	out := []T{}

	db := s.db.WithContext(ctx)
	if !db.Migrator().HasTable(table) {
		if err := s.ping(ctx); err != nil {
			s.logger.Warn("mysql unreachable", zap.String("table", table), zap.Error(err))
			return out, repository.Unavailable(table, err)
		}
		s.logger.Debug("table absent", zap.String("table", table))
		return out, repository.Absent(table, nil)
	}
	if err := db.Order("id").Find(&out).Error; err != nil {
		s.logger.Warn("table read failed", zap.String("table", table), zap.Error(err))
		return []T{}, repository.Unavailable(table, err)
	}
	return out, nil
}

// replaceAll deletes every row and inserts records in one transaction.
func replaceAll[T tabler](ctx context.Context, s *Store, records []T) error {
	var model T
	table := model.TableName()
	if err := s.migrate(ctx, &model, table); err != nil {
		return err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&model).Error; err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
		if len(records) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(&records, batchSize).Error; err != nil {
			return fmt.Errorf("insert %s: %w", table, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Debug("table replaced", zap.String("table", table), zap.Int("rows", len(records)))
	return nil
}

func (s *Store) migrate(ctx context.Context, model interface{}, table string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.migrated[table] {
		return nil
	}
	if err := s.db.WithContext(ctx).AutoMigrate(model); err != nil {
		return fmt.Errorf("migrate %s: %w", table, err)
	}
	s.migrated[table] = true
	return nil
}
