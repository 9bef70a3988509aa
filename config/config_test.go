package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("SITECREW_DB_DSN", "file::memory:")
	t.Setenv("SITECREW_JWT_SECRET_KEY", "access")
	t.Setenv("SITECREW_JWT_REFRESH_SECRET_KEY", "refresh")
}

func TestLoadEnv(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		setRequired(t)

		cfg, err := LoadEnv()
		require.NoError(t, err)

		assert.Equal(t, ":8080", cfg.HTTPEnv.Addr())
		assert.Equal(t, "postgres", cfg.DatabaseEnv.Driver)
		assert.Equal(t, 30*time.Minute, cfg.AuthEnv.AccessTTL)
		assert.Equal(t, "transaction", cfg.ImportEnv.Mode)
		assert.False(t, cfg.FirebaseEnv.Enabled())
		assert.False(t, cfg.WebPushEnv.Enabled())
	})

	t.Run("bare variable names fall back", func(t *testing.T) {
		setRequired(t)
		t.Setenv("HTTP_PORT", "9000")
		t.Setenv("GOOGLE_APPLICATION_CREDENTIALS_1", "/secrets/firebase.json")

		cfg, err := LoadEnv()
		require.NoError(t, err)

		assert.Equal(t, "9000", cfg.HTTPEnv.Port)
		assert.True(t, cfg.FirebaseEnv.Enabled())
	})

	t.Run("missing secrets", func(t *testing.T) {
		t.Setenv("SITECREW_DB_DSN", "file::memory:")

		_, err := LoadEnv()
		require.Error(t, err)
	})

	t.Run("unsupported driver", func(t *testing.T) {
		setRequired(t)
		t.Setenv("SITECREW_DB_DRIVER", "oracle")

		_, err := LoadEnv()
		require.ErrorContains(t, err, "DB_DRIVER")
	})

	t.Run("unsupported import mode", func(t *testing.T) {
		setRequired(t)
		t.Setenv("SITECREW_IMPORT_PROCEDURE_MODE", "rpc")

		_, err := LoadEnv()
		require.ErrorContains(t, err, "IMPORT_PROCEDURE_MODE")
	})
}
