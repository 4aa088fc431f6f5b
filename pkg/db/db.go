package db

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/iceymoss/weibo-trend/pkg/db/objects"
	"github.com/iceymoss/weibo-trend/pkg/logger"
)

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config 单个数据库的连接配置，live 与 staging 各一份
type Config struct {
	Driver   string `mapstructure:"driver" json:"driver"`
	DSN      string `mapstructure:"dsn" json:"dsn"` // 设置后忽略 host/port 等字段
	Host     string `mapstructure:"host" json:"host"`
	Port     int    `mapstructure:"port" json:"port"`
	User     string `mapstructure:"user" json:"user"`
	Password string `mapstructure:"password" json:"password"`
	DbName   string `mapstructure:"dbname" json:"dbname"`
	LogLevel string `mapstructure:"logLevel" json:"logLevel"`

	MaxOpenConns int `mapstructure:"maxOpenConns" json:"maxOpenConns"`
	MaxIdleConns int `mapstructure:"maxIdleConns" json:"maxIdleConns"`
}

// Models 两个库共用的表结构
func Models() []any {
	return []any{
		&objects.Post{},
		&objects.Topic{},
		&objects.Weight{},
		&objects.Channel{},
		&objects.PipelineRun{},
	}
}

// Open 按配置打开数据库并自动迁移表结构
func Open(cfg Config) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	conn, err := gorm.Open(dialector, &gorm.Config{
		Logger: NewGormLogger(logger.Named("gorm"), gormLogger.Config{
			LogLevel:                  gormLevel(cfg.LogLevel),
			IgnoreRecordNotFoundError: true,
			SlowThreshold:             500 * time.Millisecond,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Driver, err)
	}

	pool, err := conn.DB()
	if err != nil {
		return nil, err
	}
	if cfg.Driver == DriverSQLite {
		// sqlite 只允许一个写连接，事务全部串行
		pool.SetMaxOpenConns(1)
	} else {
		pool.SetMaxOpenConns(orDefault(cfg.MaxOpenConns, 30))
		pool.SetMaxIdleConns(orDefault(cfg.MaxIdleConns, 15))
	}

	if err := conn.AutoMigrate(Models()...); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return conn, nil
}

// Close 关闭底层连接池
func Close(conn *gorm.DB) {
	pool, err := conn.DB()
	if err != nil {
		return
	}
	if err := pool.Close(); err != nil {
		logger.Warn("close db", zap.Error(err))
	}
}

func dialectorFor(cfg Config) (gorm.Dialector, error) {
	switch strings.ToLower(cfg.Driver) {
	case DriverMySQL:
		dsn := cfg.DSN
		if dsn == "" {
			dsn = fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
				cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.DbName)
		}
		return mysql.Open(dsn), nil
	case DriverPostgres:
		dsn := cfg.DSN
		if dsn == "" {
			dsn = fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable TimeZone=Asia/Shanghai",
				cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DbName)
		}
		return postgres.Open(dsn), nil
	case DriverSQLite, "":
		dsn := cfg.DSN
		if dsn == "" {
			dsn = cfg.DbName + ".db"
		}
		if dir := filepath.Dir(strings.SplitN(dsn, "?", 2)[0]); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create sqlite dir: %w", err)
			}
		}
		if !strings.Contains(dsn, "?") {
			dsn += "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
		}
		return sqlite.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported db driver %q", cfg.Driver)
	}
}

func gormLevel(level string) gormLogger.LogLevel {
	switch strings.ToLower(level) {
	case "debug", "info":
		return gormLogger.Info
	case "warn", "warning":
		return gormLogger.Warn
	case "silent":
		return gormLogger.Silent
	default:
		return gormLogger.Error
	}
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
