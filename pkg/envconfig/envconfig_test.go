package envconfig

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"wolfcafe/pkg/database"
	"wolfcafe/pkg/logger"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "# comment\n\nWOLFCAFE_TEST_A=alpha\nexport WOLFCAFE_TEST_B=\"quoted value\"\nWOLFCAFE_TEST_C='single'\nWOLFCAFE_TEST_KEEP=from-file\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("WOLFCAFE_TEST_KEEP", "from-env")
	for _, key := range []string{"WOLFCAFE_TEST_A", "WOLFCAFE_TEST_B", "WOLFCAFE_TEST_C"} {
		key := key
		t.Cleanup(func() { os.Unsetenv(key) })
	}

	require.NoError(t, LoadEnvFile(path))

	assert.Equal(t, "alpha", os.Getenv("WOLFCAFE_TEST_A"))
	assert.Equal(t, "quoted value", os.Getenv("WOLFCAFE_TEST_B"))
	assert.Equal(t, "single", os.Getenv("WOLFCAFE_TEST_C"))
	assert.Equal(t, "from-env", os.Getenv("WOLFCAFE_TEST_KEEP"))
}

func TestLoadEnvFileErrors(t *testing.T) {
	assert.Error(t, LoadEnvFile(filepath.Join(t.TempDir(), "missing.env")))

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("NOT A PAIR\n"), 0o600))
	assert.ErrorContains(t, LoadEnvFile(path), ":1: expected KEY=VALUE")
}

func TestTypedLookups(t *testing.T) {
	t.Setenv("WOLFCAFE_INT", "42")
	t.Setenv("WOLFCAFE_BAD_INT", "forty")
	t.Setenv("WOLFCAFE_BOOL", "false")

	assert.Equal(t, 42, GetEnvInt("WOLFCAFE_INT", 1))
	assert.Equal(t, 1, GetEnvInt("WOLFCAFE_BAD_INT", 1))
	assert.False(t, GetEnvBool("WOLFCAFE_BOOL", true))
	assert.True(t, GetEnvBool("WOLFCAFE_UNSET_BOOL", true))
	assert.Equal(t, "fallback", GetEnv("WOLFCAFE_UNSET", "fallback"))
}

func TestGetLogLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "DEBUG")
	assert.Equal(t, logger.LevelDebug, GetLogLevel())

	t.Setenv("LOG_LEVEL", "verbose")
	assert.Equal(t, logger.LevelInfo, GetLogLevel())
}

func TestLoadDatabaseConfig(t *testing.T) {
	t.Setenv("DB_DRIVER", "pgx")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("DB_NAME", "cafe")
	t.Setenv("DB_MAX_OPEN_CONNS", "7")
	t.Setenv("DB_CONN_MAX_LIFETIME", "90s")

	cfg := LoadDatabaseConfig()

	assert.Equal(t, database.DriverPGX, cfg.Driver)
	assert.Equal(t, "db.internal", cfg.Host)
	assert.Equal(t, 6543, cfg.Port)
	assert.Equal(t, "cafe", cfg.DBName)
	assert.Equal(t, 7, cfg.MaxOpenConns)
	assert.Equal(t, 90*time.Second, cfg.ConnMaxLifetime)
	assert.Equal(t, database.DefaultMaxIdleConns, cfg.MaxIdleConns)
}

func TestLoadStorageBackend(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "memory")
	backend, err := LoadStorageBackend()
	require.NoError(t, err)
	assert.Equal(t, StorageMemory, backend)

	t.Setenv("STORAGE_BACKEND", "redis")
	_, err = LoadStorageBackend()
	assert.Error(t, err)
}

func TestLoadDefaultTaxRate(t *testing.T) {
	t.Setenv("DEFAULT_TAX_RATE", "")
	rate, err := LoadDefaultTaxRate()
	require.NoError(t, err)
	assert.True(t, rate.Equal(decimal.NewFromInt(2)))

	t.Setenv("DEFAULT_TAX_RATE", "7.25")
	rate, err = LoadDefaultTaxRate()
	require.NoError(t, err)
	assert.Equal(t, "7.25", rate.String())

	t.Setenv("DEFAULT_TAX_RATE", "-1")
	_, err = LoadDefaultTaxRate()
	assert.Error(t, err)

	t.Setenv("DEFAULT_TAX_RATE", "abc")
	_, err = LoadDefaultTaxRate()
	assert.Error(t, err)
}
