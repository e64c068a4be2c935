// internal/storage/postgres/postgres.go
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/fossrlabs/fossr-engine/internal/storage"
	"github.com/fossrlabs/fossr-engine/internal/storage/models"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// gormLogger adapts zap to GORM's logger.Interface.
type gormLogger struct {
	zapLogger *zap.Logger
	logLevel  logger.LogLevel
}

func newGormLogger(zapLogger *zap.Logger) logger.Interface {
	return &gormLogger{
		zapLogger: zapLogger,
		logLevel:  logger.Warn,
	}
}

func (l *gormLogger) LogMode(level logger.LogLevel) logger.Interface {
	newLogger := *l
	newLogger.logLevel = level
	return &newLogger
}

func (l *gormLogger) Info(_ context.Context, msg string, data ...interface{}) {
	if l.logLevel >= logger.Info {
		l.zapLogger.Sugar().Infof(msg, data...)
	}
}

func (l *gormLogger) Warn(_ context.Context, msg string, data ...interface{}) {
	if l.logLevel >= logger.Warn {
		l.zapLogger.Sugar().Warnf(msg, data...)
	}
}

func (l *gormLogger) Error(_ context.Context, msg string, data ...interface{}) {
	if l.logLevel >= logger.Error {
		l.zapLogger.Sugar().Errorf(msg, data...)
	}
}

func (l *gormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.logLevel <= logger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()

	fields := []zap.Field{
		zap.Duration("elapsed", elapsed),
		zap.String("sql", sql),
		zap.Int64("rows", rows),
	}

	if err != nil {
		l.zapLogger.Error("trace", append(fields, zap.Error(err))...)
		return
	}
	if l.logLevel >= logger.Info {
		l.zapLogger.Info("trace", fields...)
	}
}

// postgresStorage implements the storage.Storage interface.
type postgresStorage struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewStorage(dsn string, zapLogger *zap.Logger) (storage.Storage, error) {
	gormLogger := newGormLogger(zapLogger.Named("gorm"))

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
		DisableForeignKeyConstraintWhenMigrating: true,
		SkipDefaultTransaction:                   true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return &postgresStorage{
		db:     db,
		logger: zapLogger,
	}, nil
}

// RunMigrations uses GORM AutoMigrate under an advisory lock so two
// engine instances cannot migrate concurrently.
func (p *postgresStorage) RunMigrations() error {
	var lockObtained bool
	err := p.db.Raw("SELECT pg_try_advisory_lock(4201)").Scan(&lockObtained).Error
	if err != nil {
		return fmt.Errorf("failed to acquire migration lock: %w", err)
	}
	if !lockObtained {
		return fmt.Errorf("another migration is in progress")
	}
	defer p.db.Exec("SELECT pg_advisory_unlock(4201)")

	err = p.db.AutoMigrate(
		&models.Receipt{},
		&models.Settlement{},
		&models.Winner{},
		&models.Snapshot{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func (p *postgresStorage) SaveReceipt(ctx context.Context, receipt *models.Receipt) error {
	return p.db.WithContext(ctx).Create(receipt).Error
}

func (p *postgresStorage) ListReceipts(ctx context.Context, buyer string, limit, offset int) ([]*models.Receipt, error) {
	var receipts []*models.Receipt
	err := p.db.WithContext(ctx).
		Where("buyer = ?", buyer).
		Order("bought_at desc").
		Limit(limit).
		Offset(offset).
		Find(&receipts).Error
	return receipts, err
}

func (p *postgresStorage) SaveSettlement(ctx context.Context, settlement *models.Settlement) error {
	return p.db.WithContext(ctx).Create(settlement).Error
}

func (p *postgresStorage) SaveWinner(ctx context.Context, winner *models.Winner) error {
	return p.db.WithContext(ctx).Create(winner).Error
}

func (p *postgresStorage) LatestWinner(ctx context.Context) (*models.Winner, error) {
	var winner models.Winner
	err := p.db.WithContext(ctx).Order("awarded_at desc").First(&winner).Error
	if err != nil {
		return nil, err
	}
	return &winner, nil
}

func (p *postgresStorage) SaveSnapshot(ctx context.Context, snapshot *models.Snapshot) error {
	return p.db.WithContext(ctx).Create(snapshot).Error
}
