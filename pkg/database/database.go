package database

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/d60-Lab/gin-posts/config"
	"github.com/d60-Lab/gin-posts/pkg/logger"
)

// InitDB 按配置打开数据库。SQLite 连接池固定为 1 个连接，
// 嵌入式存储只看到一个连接句柄。
func InitDB(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Database.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.Database.DSN)
	case "postgres":
		dialector = postgres.Open(cfg.Database.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: newGormLogger(cfg.Database.LogLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Database.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.Database.Driver == "sqlite" {
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
		sqlDB.SetConnMaxLifetime(0)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping %s: %w", cfg.Database.Driver, err)
	}

	logger.Info("database opened",
		zap.String("driver", cfg.Database.Driver),
		zap.String("dsn", redact(cfg.Database.Driver, cfg.Database.DSN)),
	)
	return db, nil
}

func newGormLogger(level string) gormlogger.Interface {
	lvl := gormlogger.Warn
	switch strings.ToLower(level) {
	case "silent":
		lvl = gormlogger.Silent
	case "error":
		lvl = gormlogger.Error
	case "info":
		lvl = gormlogger.Info
	}
	return gormlogger.New(zap.NewStdLog(logger.L().Named("gorm")), gormlogger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  lvl,
		IgnoreRecordNotFoundError: true,
	})
}

// postgres 的 DSN 可能带密码，只打印 host/dbname
func redact(driver, dsn string) string {
	if driver != "postgres" {
		return dsn
	}
	var kept []string
	for _, kv := range strings.Fields(dsn) {
		if strings.HasPrefix(kv, "host=") || strings.HasPrefix(kv, "dbname=") || strings.HasPrefix(kv, "port=") {
			kept = append(kept, kv)
		}
	}
	return strings.Join(kept, " ")
}
