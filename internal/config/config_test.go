package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gogotex/docmanager/internal/document/repository"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("DOCMANAGER_ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, BackendMemory, cfg.Store.Backend)
	require.Equal(t, "0.0.0.0:5010", cfg.Server.Addr())
	require.Equal(t, 10*time.Second, cfg.MongoDB.Timeout)
	require.Equal(t, "docmanager:", cfg.Redis.Prefix)
	require.False(t, cfg.RateLimit.Enabled)
	require.Equal(t, "info", cfg.LogLevel)
}

func TestLoadConfig_FromEnv(t *testing.T) {
	t.Setenv("DOCMANAGER_ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("STORE_BACKEND", "Redis")
	t.Setenv("REDIS_HOST", "localhost")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("RATE_LIMIT_ENABLED", "true")
	t.Setenv("RATE_LIMIT_RPS", "2.5")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, BackendRedis, cfg.Store.Backend)
	require.Equal(t, "localhost:6380", cfg.Redis.Addr())
	require.True(t, cfg.RateLimit.Enabled)
	require.Equal(t, 2.5, cfg.RateLimit.RPS)
}

func TestLoadConfig_FromEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("SERVER_PORT=7001\nMINIO_BUCKET=snapshots\n"), 0o600))
	t.Setenv("DOCMANAGER_ENV_FILE", path)
	// godotenv does not override variables that are already set, so make
	// sure the process env is clean for these keys after the test.
	t.Setenv("SERVER_PORT", "")
	os.Unsetenv("SERVER_PORT")
	t.Setenv("MINIO_BUCKET", "")
	os.Unsetenv("MINIO_BUCKET")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "7001", cfg.Server.Port)
	require.Equal(t, "snapshots", cfg.MinIO.Bucket)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		cfg     Config
		wantErr bool
		is      error
	}{
		{"memory", Config{Store: StoreConfig{Backend: BackendMemory}}, false, nil},
		{"redis without host", Config{Store: StoreConfig{Backend: BackendRedis}}, true, nil},
		{"mongo without uri", Config{Store: StoreConfig{Backend: BackendMongo}}, true, nil},
		{"mongo with uri", Config{Store: StoreConfig{Backend: BackendMongo}, MongoDB: MongoDBConfig{URI: "mongodb://localhost"}}, false, nil},
		{"unknown", Config{Store: StoreConfig{Backend: "sqlite"}}, true, repository.ErrUnknownBackend},
		{"redis limiter without host", Config{Store: StoreConfig{Backend: BackendMemory}, RateLimit: RateLimitConfig{UseRedis: true}}, true, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.wantErr {
				require.Error(t, err)
				if tc.is != nil {
					require.ErrorIs(t, err, tc.is)
				}
			} else {
				require.NoError(t, err)
			}
		})
	}
}
