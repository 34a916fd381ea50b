package db

import (
	"fmt"
	stdlog "log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/learnloop/learnloop-backend/internal/domain"
	"github.com/learnloop/learnloop-backend/internal/platform/logger"
	"github.com/learnloop/learnloop-backend/internal/utils"
)

// Service owns the gorm connection. The driver is picked by DB_DRIVER:
// sqlite (the default, file-backed) or postgres.
type Service struct {
	db  *gorm.DB
	log *logger.Logger
}

func New(logg *logger.Logger) (*Service, error) {
	serviceLog := logg.With("service", "DBService")

	gormLog := gormLogger.New(
		stdlog.New(os.Stdout, "\r\n", stdlog.LstdFlags),
		gormLogger.Config{
			SlowThreshold:             1 * time.Second,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	cfg := &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLog,
	}

	driver := utils.GetEnv("DB_DRIVER", "sqlite", logg)

	var (
		conn *gorm.DB
		err  error
	)
	switch driver {
	case "postgres":
		host := utils.GetEnv("POSTGRES_HOST", "localhost", logg)
		port := utils.GetEnv("POSTGRES_PORT", "5432", logg)
		user := utils.GetEnv("POSTGRES_USER", "postgres", logg)
		password := utils.GetEnv("POSTGRES_PASSWORD", "", logg)
		name := utils.GetEnv("POSTGRES_NAME", "learnloop", logg)
		dsn := fmt.Sprintf(
			"postgres://%s:%s@%s:%s/%s?sslmode=disable",
			user, password, host, port, name,
		)
		conn, err = gorm.Open(postgres.Open(dsn), cfg)
	case "sqlite":
		path := utils.GetEnv("SQLITE_PATH", "learnloop.db", logg)
		conn, err = gorm.Open(sqlite.Open(path), cfg)
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q", driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", driver, err)
	}

	return &Service{db: conn, log: serviceLog}, nil
}

func (s *Service) DB() *gorm.DB { return s.db }

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.ContentDocument{},
		&domain.SnapshotRecord{},
	)
}

func (s *Service) AutoMigrateAll() error {
	s.log.Info("Auto migrating tables...")
	if err := AutoMigrateAll(s.db); err != nil {
		s.log.Error("Auto migration failed", "error", err)
		return err
	}
	return nil
}
