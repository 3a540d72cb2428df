package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/bookstore_api/pkg/ghn"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_USER", "bookstore")
	t.Setenv("DB_NAME", "bookstore")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("GHN_API_TOKEN", "")
	t.Setenv("GHN_SHOP_ID", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 3, cfg.GHN.RetryAttempts)
	assert.Equal(t, time.Second, cfg.GHN.RetryDelay)
	assert.Equal(t, 20*time.Second, cfg.GHN.Timeout)
	assert.Empty(t, cfg.GHN.Token, "missing carrier credentials must not fail Load")
	assert.Equal(t, 30*time.Minute, cfg.Session.IdleTTL)
	assert.Equal(t, 6*time.Hour, cfg.Cache.DimensionTTL)
	assert.Equal(t, "TheBookStore", cfg.GHN.Sender.Name)
	assert.Equal(t, ghn.RequiredNoteViewNoTrial, cfg.GHN.RequiredNote)
}

func TestLoad_RequiresDatabase(t *testing.T) {
	t.Setenv("DB_HOST", "")
	t.Setenv("JWT_SECRET", "s3cret")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadShipping_InvalidValues(t *testing.T) {
	t.Setenv("GHN_RETRY_DELAY", "soon")
	_, err := LoadShipping()
	assert.Error(t, err)

	t.Setenv("GHN_RETRY_DELAY", "1s")
	t.Setenv("GHN_RETRY_ATTEMPTS", "0")
	_, err = LoadShipping()
	assert.Error(t, err)
}

func TestGHNConfig_ClientConfig(t *testing.T) {
	cfg := GHNConfig{
		BaseURL:       "https://dev-online-gateway.ghn.vn/shiip/public-api",
		Token:         "tok",
		ShopID:        "885",
		Timeout:       5 * time.Second,
		RetryAttempts: 2,
		RetryDelay:    time.Second,
	}

	cc := cfg.ClientConfig()
	assert.Equal(t, "885", cc.ShopID)
	assert.Equal(t, 2, cc.Retry.MaxAttempts)
	assert.Equal(t, time.Second, cc.Retry.BaseDelay)
	assert.NoError(t, cc.Validate())
}

func TestLoadShipping_MissingBaseURLIsConfigError(t *testing.T) {
	t.Setenv("GHN_API_BASE_URL", "")
	t.Setenv("GHN_API_TOKEN", "tok")
	t.Setenv("GHN_SHOP_ID", "885")

	cfg, err := LoadShipping()
	require.NoError(t, err)
	assert.Empty(t, cfg.GHN.BaseURL)

	err = cfg.GHN.ClientConfig().Validate()
	require.Error(t, err)
	assert.True(t, ghn.IsKind(err, ghn.KindConfig))
	assert.Contains(t, err.Error(), "base URL")
}
