package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *ProductionConfig {
	return &ProductionConfig{
		Database: DatabaseConfig{Host: "localhost", Port: 5432, Name: "pesquisa", User: "postgres"},
		Server: ServerConfig{
			Port:         8080,
			ReadTimeout:  time.Second,
			WriteTimeout: time.Second,
			IdleTimeout:  time.Second,
		},
		Security: SecurityConfig{BcryptCost: 10},
		JWT: JWTConfig{
			SecretKey:      strings.Repeat("s", 32),
			AccessTokenTTL: time.Hour,
			Issuer:         "pesquisa-campo",
			Audience:       "pesquisa-campo-api",
		},
		Logging: LoggingConfig{Level: "info", Output: "stdout"},
		Locale:  LocaleConfig{TimeZone: "America/Sao_Paulo"},
		Storage: StorageConfig{LogoDir: "/tmp/logos"},
	}
}

func TestValidateProductionConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *ProductionConfig)
		wantErr string
	}{
		{name: "valid", mutate: func(cfg *ProductionConfig) {}},
		{
			name:    "missing jwt secret",
			mutate:  func(cfg *ProductionConfig) { cfg.JWT.SecretKey = "" },
			wantErr: "JWT_SECRET_KEY is required",
		},
		{
			name:    "short jwt secret",
			mutate:  func(cfg *ProductionConfig) { cfg.JWT.SecretKey = "short" },
			wantErr: "at least 32 characters",
		},
		{
			name: "rsa keys replace the secret",
			mutate: func(cfg *ProductionConfig) {
				cfg.JWT.SecretKey = ""
				cfg.JWT.UseRSAKeys = true
				cfg.JWT.PrivateKey = "private"
				cfg.JWT.PublicKey = "public"
			},
		},
		{
			name:    "invalid server port",
			mutate:  func(cfg *ProductionConfig) { cfg.Server.Port = 70000 },
			wantErr: "SERVER_PORT",
		},
		{
			name:    "unknown log level",
			mutate:  func(cfg *ProductionConfig) { cfg.Logging.Level = "verbose" },
			wantErr: "LOG_LEVEL",
		},
		{
			name:    "file output without path",
			mutate:  func(cfg *ProductionConfig) { cfg.Logging.Output = "file" },
			wantErr: "LOG_FILE_PATH",
		},
		{
			name:    "unloadable time zone",
			mutate:  func(cfg *ProductionConfig) { cfg.Locale.TimeZone = "Mars/Olympus_Mons" },
			wantErr: "APP_TIME_ZONE",
		},
		{
			name:    "admin email without password",
			mutate:  func(cfg *ProductionConfig) { cfg.Admin.Email = "admin@example.com" },
			wantErr: "ADMIN_EMAIL and ADMIN_PASSWORD",
		},
		{
			name:    "bcrypt cost out of range",
			mutate:  func(cfg *ProductionConfig) { cfg.Security.BcryptCost = 4 },
			wantErr: "BCRYPT_COST",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := ValidateProductionConfig(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadProductionConfig_FromEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("JWT_SECRET_KEY", strings.Repeat("k", 40))
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")
	t.Setenv("TRACKING_SESSION_TTL", "6h")
	t.Setenv("APP_TIME_ZONE", "UTC")

	cfg, err := LoadProductionConfig()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.Security.AllowedOrigins)
	assert.Equal(t, 6*time.Hour, cfg.Tracking.SessionTTL)
	assert.Equal(t, "pesquisa_campo", cfg.Database.Name)
	assert.Equal(t, "/static/logos", cfg.Storage.LogoPublicPrefix)

	loc, err := cfg.Locale.Location()
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())
}

func TestLoadProductionConfig_EnvFileDoesNotOverrideEnvironment(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	envFile := "JWT_SECRET_KEY=" + strings.Repeat("f", 40) + "\nSERVER_PORT=7000\nLOG_LEVEL=debug\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(envFile), 0o600))
	t.Setenv("SERVER_PORT", "7100")
	// godotenv sets variables for the whole process, so clean up what the file adds
	t.Setenv("JWT_SECRET_KEY", "")
	t.Setenv("LOG_LEVEL", "")
	require.NoError(t, os.Unsetenv("JWT_SECRET_KEY"))
	require.NoError(t, os.Unsetenv("LOG_LEVEL"))

	cfg, err := LoadProductionConfig()
	require.NoError(t, err)

	assert.Equal(t, 7100, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, strings.Repeat("f", 40), cfg.JWT.SecretKey)
}

func TestDatabaseConfig_ConnectionStrings(t *testing.T) {
	db := DatabaseConfig{Host: "db", Port: 5433, Name: "survey", User: "u", Password: "p", SSLMode: "disable"}

	assert.Equal(t, "host=db port=5433 user=u password=p dbname=survey sslmode=disable", db.DSN())
	assert.Equal(t, "postgres://u:p@db:5433/survey?sslmode=disable", db.URL())
}
