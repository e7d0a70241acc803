package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"facility-recon/internal/reconcile/model"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(New())
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8082", cfg.Addr())
	assert.Equal(t, []string{"*"}, cfg.AllowOrigins)
	assert.Equal(t, 64, cfg.MaxUploadMB)
	assert.Equal(t, model.DefaultThreshold, cfg.Threshold)
	assert.Equal(t, "ratio", cfg.Scorer)
	assert.Empty(t, cfg.HistoryDB)
	assert.False(t, cfg.S3.Enabled())
	assert.Equal(t, "reports", cfg.S3.Prefix)
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("ALLOW_ORIGINS", "https://a.example.org, https://b.example.org")
	t.Setenv("THRESHOLD", "85.5")
	t.Setenv("SCORER", "token_sort")
	t.Setenv("S3_BUCKET", "recon")
	t.Setenv("S3_PREFIX", "/exports/")
	t.Setenv("S3_PATH_STYLE", "true")

	cfg, err := Load(New())
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, []string{"https://a.example.org", "https://b.example.org"}, cfg.AllowOrigins)
	assert.Equal(t, 85.5, cfg.Threshold)
	assert.Equal(t, "token_sort", cfg.Scorer)
	assert.True(t, cfg.S3.Enabled())
	assert.Equal(t, "exports", cfg.S3.Prefix)
	assert.True(t, cfg.S3.PathStyle)
}

func TestLoadThreshold(t *testing.T) {
	for _, raw := range []string{"101", "-1", "abc", "seventy", "NaN", "Inf", "  "} {
		t.Run("bad "+raw, func(t *testing.T) {
			t.Setenv("THRESHOLD", raw)
			_, err := Load(New())
			assert.ErrorIs(t, err, model.ErrInvalidThreshold)
		})
	}
	for raw, want := range map[string]float64{"70%": 70, "87,5": 87.5, "0": 0, "100": 100} {
		t.Run("ok "+raw, func(t *testing.T) {
			t.Setenv("THRESHOLD", raw)
			cfg, err := Load(New())
			require.NoError(t, err)
			assert.Equal(t, want, cfg.Threshold)
		})
	}
}

func TestLoadInvalid(t *testing.T) {
	t.Setenv("THRESHOLD", "70")
	t.Setenv("PORT", "0")
	_, err := Load(New())
	assert.Error(t, err)
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recon.yaml")
	require.NoError(t, os.WriteFile(path, []byte("threshold: 80\nscorer: trigram\nhistory_db: /tmp/runs.db\n"), 0o644))

	v := New()
	require.NoError(t, ReadFile(v, path))
	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, 80.0, cfg.Threshold)
	assert.Equal(t, "trigram", cfg.Scorer)
	assert.Equal(t, "/tmp/runs.db", cfg.HistoryDB)

	assert.Error(t, ReadFile(New(), filepath.Join(t.TempDir(), "missing.yaml")))
}

func TestReadFileDefaultMissing(t *testing.T) {
	t.Chdir(t.TempDir())
	assert.NoError(t, ReadFile(New(), ""))
}

func TestSetupLogger(t *testing.T) {
	var out bytes.Buffer
	logFile := filepath.Join(t.TempDir(), "logs", "recon.log")
	logger := SetupLogger(Config{LogLevel: "warn", LogFile: logFile}, &out)

	logger.Info().Msg("hidden")
	logger.Warn().Msg("shown")

	assert.Equal(t, zerolog.WarnLevel, logger.GetLevel())
	assert.NotContains(t, out.String(), "hidden")
	assert.Contains(t, out.String(), "shown")

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"shown"`)
}

func TestSetupLoggerBadLevel(t *testing.T) {
	logger := SetupLogger(Config{LogLevel: "loud"}, &bytes.Buffer{})
	assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())
}
