package config

import (
	"fmt"

	"github.com/yeremiapane/restaurant-reservation/utils"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DSNString returns the explicit DB_DSN or builds one for the selected driver.
func (d DatabaseConfig) DSNString() string {
	if d.DSN != "" {
		return d.DSN
	}
	switch d.Driver {
	case DriverPostgres:
		port := d.Port
		if port == "" {
			port = "5432"
		}
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			d.Host, port, d.User, d.Password, d.Name, d.SSLMode)
	case DriverSQLite:
		return d.Name + ".db"
	default:
		port := d.Port
		if port == "" {
			port = "3306"
		}
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			d.User, d.Password, d.Host, port, d.Name)
	}
}

func dialector(d DatabaseConfig) gorm.Dialector {
	dsn := d.DSNString()
	switch d.Driver {
	case DriverPostgres:
		return postgres.Open(dsn)
	case DriverSQLite:
		return sqlite.Open(dsn)
	default:
		return mysql.Open(dsn)
	}
}

// InitDB opens the configured database, applies the pool settings and pings
// it. Any failure here aborts startup.
func InitDB(cfg *Config) (*gorm.DB, error) {
	logLevel := logger.Warn
	if cfg.LogLevel == "debug" {
		logLevel = logger.Info
	}

	db, err := gorm.Open(dialector(cfg.Database), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.Database.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.Database.Driver == DriverSQLite {
		// sqlite serializes writers; one connection avoids "database is locked".
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("ping %s database: %w", cfg.Database.Driver, err)
	}

	utils.InfoLogger.WithField("driver", cfg.Database.Driver).Info("database connection established")
	return db, nil
}
