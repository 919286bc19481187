package config

import (
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_PASSWORD", "pw")

	cfg, err := Load()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 7*24*time.Hour, cfg.JWT.TTL)
	assert.Equal(t, StorageDriverPostgres, cfg.Storage.Driver)
	assert.False(t, cfg.Tasks.StrictNotFound)
	assert.Equal(t, "0.0.0.0:8001", cfg.Address())
	assert.Equal(t, "postgres://taskhub:pw@localhost:5432/taskhub?sslmode=disable", cfg.Database.URL)
}

func TestLoad_EscapesDatabaseCredentials(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_USER", "task:hub")
	t.Setenv("DB_PASSWORD", "p@ss:w/rd?#")
	t.Setenv("DB_HOST", "db.internal")

	cfg, err := Load()
	require.NoError(t, err)

	pgCfg, err := pgxpool.ParseConfig(cfg.Database.URL)
	require.NoError(t, err)
	assert.Equal(t, "task:hub", pgCfg.ConnConfig.User)
	assert.Equal(t, "p@ss:w/rd?#", pgCfg.ConnConfig.Password)
	assert.Equal(t, "db.internal", pgCfg.ConnConfig.Host)
	assert.Equal(t, "taskhub", pgCfg.ConnConfig.Database)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("JWT_TTL", "2h")
	t.Setenv("REQUEST_TIMEOUT_SECONDS", "3")
	t.Setenv("TASKS_STRICT_NOT_FOUND", "true")
	t.Setenv("STORAGE_DRIVER", "memory")

	cfg, err := Load()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 2*time.Hour, cfg.JWT.TTL)
	assert.Equal(t, 3*time.Second, cfg.Context.RequestTimeout)
	assert.True(t, cfg.Tasks.StrictNotFound)
	assert.Equal(t, StorageDriverMemory, cfg.Storage.Driver)
}

func TestValidate_FailsClosedOnSecret(t *testing.T) {
	tests := []struct {
		name   string
		secret string
		want   string
	}{
		{"missing", "", "JWT_SECRET must be set"},
		{"too short", "secret_key", "at least 32 bytes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("JWT_SECRET", tt.secret)
			cfg, err := Load()
			require.NoError(t, err)

			err = cfg.Validate()
			require.Error(t, err)
			assert.True(t, strings.Contains(err.Error(), tt.want), err.Error())
		})
	}
}

func TestValidate_UnknownDriver(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("STORAGE_DRIVER", "sqlite")

	cfg, err := Load()
	require.NoError(t, err)
	assert.ErrorContains(t, cfg.Validate(), "STORAGE_DRIVER")
}
