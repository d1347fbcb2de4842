package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/cppla/bbscontroller/models"
	mysqldrv "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var db *gorm.DB

// InitDatabase opens the configured database once and keeps it for DB().
func InitDatabase(cfg AppConfig) *gorm.DB {
	if db != nil {
		return db
	}

	var err error
	db, err = OpenDatabase(cfg)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("failed to get sql.DB: %v", err)
	}
	// Ping at boot so network/auth problems show up now rather than on the first request
	if err := sqlDB.Ping(); err != nil {
		log.Fatalf("database ping failed: %v", err)
	}
	return db
}

// OpenDatabase connects with the driver named by cfg.DBDriver and applies pool settings.
func OpenDatabase(cfg AppConfig) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	// Derive level from app LogLevel and raise slow-sql threshold to reduce noise
	gLogger := logger.New(
		log.New(os.Stdout, "", log.LstdFlags),
		logger.Config{
			SlowThreshold:             2 * time.Second,
			LogLevel:                  gormLevel(cfg),
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	conn, err := gorm.Open(dialector, &gorm.Config{Logger: gLogger})
	if err != nil {
		return nil, err
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, err
	}
	maxOpen := cfg.DBMaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 20
	}
	maxIdle := cfg.DBMaxIdleConns
	if maxIdle <= 0 || maxIdle > maxOpen {
		maxIdle = maxOpen
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxIdle)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	// Recycle idle connections before the server's wait_timeout drops them
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)
	return conn, nil
}

func dialectorFor(cfg AppConfig) (gorm.Dialector, error) {
	switch cfg.DBDriver {
	case "mysql", "":
		dsn, err := mysqlDSN(cfg)
		if err != nil {
			return nil, err
		}
		return mysql.Open(dsn), nil
	case "postgres", "postgresql":
		dsn := cfg.DatabaseURI
		if dsn == "" {
			dsn = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
				cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName)
		}
		return postgres.Open(dsn), nil
	case "sqlite", "sqlite3":
		return sqlite.Open(SQLiteDSN(cfg.DatabaseURI, cfg.DBName)), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DBDriver)
	}
}

// mysqlDSN parses DatabaseURI (or builds one from the discrete keys) and forces the options
// the store relies on: parsed times and found-rows semantics for UPDATE.
func mysqlDSN(cfg AppConfig) (string, error) {
	var mc *mysqldrv.Config
	if cfg.DatabaseURI != "" {
		uri := strings.TrimPrefix(cfg.DatabaseURI, "mysql://")
		parsed, err := mysqldrv.ParseDSN(uri)
		if err != nil {
			return "", fmt.Errorf("invalid mysql dsn: %w", err)
		}
		mc = parsed
	} else {
		mc = mysqldrv.NewConfig()
		mc.User = cfg.DBUser
		mc.Passwd = cfg.DBPassword
		mc.Net = "tcp"
		mc.Addr = cfg.DBHost + ":" + cfg.DBPort
		mc.DBName = cfg.DBName
		mc.Loc = time.Local
		mc.Params = map[string]string{"charset": "utf8mb4"}
	}
	mc.ParseTime = true
	// Updates writing identical values must still report the row as matched
	mc.ClientFoundRows = true
	return mc.FormatDSN(), nil
}

// SQLiteDSN returns a sqlite DSN for path with foreign keys enforced.
func SQLiteDSN(uri, name string) string {
	path := strings.TrimPrefix(uri, "sqlite://")
	if path == "" {
		path = name + ".db"
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_foreign_keys=on&_busy_timeout=5000"
}

// Migrate creates or updates the schema for every model.
func Migrate(conn *gorm.DB) error {
	return conn.AutoMigrate(models.All()...)
}

func gormLevel(cfg AppConfig) logger.LogLevel {
	if cfg.LogSQL {
		return logger.Info
	}
	return toGormLogLevel(cfg.LogLevel)
}

// toGormLogLevel maps application LogLevel to GORM's logger level.
func toGormLogLevel(level string) logger.LogLevel {
	switch level {
	case "debug", "info", "":
		// Suppress per-statement logs; keep warnings (including slow SQL)
		return logger.Warn
	case "warn":
		return logger.Warn
	case "error":
		return logger.Error
	case "silent":
		return logger.Silent
	default:
		return logger.Warn
	}
}

// DB provides access to initialized gorm DB instance.
func DB() *gorm.DB {
	if db == nil {
		log.Fatal("database not initialized, call InitDatabase first")
	}
	return db
}
