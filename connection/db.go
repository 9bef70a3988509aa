package connection

import (
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"sitecrew/config"
	"sitecrew/store"
)

// DBConnection opens the configured database and migrates it when
// DB_AUTO_MIGRATE is set.
func DBConnection(env config.DatabaseEnv, logger *zap.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch env.Driver {
	case "mysql":
		dialector = mysql.Open(env.DSN)
	case "postgres":
		dialector = postgres.Open(env.DSN)
	case "sqlite":
		dialector = sqlite.Open(env.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", env.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.New(zap.NewStdLog(logger.Named("gorm")), gormlogger.Config{
			SlowThreshold:             500 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(env.MaxOpenConns)
	sqlDB.SetMaxIdleConns(env.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if env.AutoMigrate {
		if err := store.Migrate(db); err != nil {
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
	}
	logger.Info("database connected", zap.String("driver", env.Driver))
	return db, nil
}
