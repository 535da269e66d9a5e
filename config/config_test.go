package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "")
	t.Setenv("JWT_TTL", "")
	t.Setenv("PORT", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, DriverMySQL, cfg.Database.Driver)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.NotEmpty(t, cfg.AllowedOrigins)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_USER", "app")
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("DB_NAME", "reservations")
	t.Setenv("JWT_TTL", "2h")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("RATE_LIMIT_RPS", "2.5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, 2*time.Hour, cfg.JWTTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, 2.5, cfg.RateLimitRPS)
	assert.Equal(t, "host=db port=5432 user=app password=pw dbname=reservations sslmode=disable", cfg.Database.DSNString())
}

func TestLoadInvalidValues(t *testing.T) {
	cases := map[string]string{
		"DB_MAX_OPEN_CONNS": "many",
		"JWT_TTL":           "forever",
		"RATE_LIMIT_RPS":    "fast",
		"DB_DRIVER":         "oracle",
	}

	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestDSNString(t *testing.T) {
	mysqlCfg := DatabaseConfig{Driver: DriverMySQL, Host: "localhost", User: "root", Password: "secret", Name: "resto"}
	assert.Equal(t, "root:secret@tcp(localhost:3306)/resto?charset=utf8mb4&parseTime=True&loc=Local", mysqlCfg.DSNString())

	sqliteCfg := DatabaseConfig{Driver: DriverSQLite, Name: "resto"}
	assert.Equal(t, "resto.db", sqliteCfg.DSNString())

	explicit := DatabaseConfig{Driver: DriverMySQL, DSN: "custom"}
	assert.Equal(t, "custom", explicit.DSNString())
}

func TestInitDBSQLite(t *testing.T) {
	cfg := &Config{
		LogLevel: "info",
		Database: DatabaseConfig{Driver: DriverSQLite, DSN: "file:config_initdb?mode=memory&cache=shared"},
	}

	db, err := InitDB(cfg)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.NoError(t, sqlDB.Ping())
	assert.NoError(t, sqlDB.Close())
}
