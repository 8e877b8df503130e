package config

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("PORT", "9876")
	t.Setenv("API_BASE_URL", "https://api.example.com/")
	t.Setenv("SESSION_KEY", base64.StdEncoding.EncodeToString([]byte("0123456789abcdef0123456789abcdef")))
}

func TestLoadConfigDefaults(t *testing.T) {
	setRequired(t)
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9876", cfg.Port)
	assert.Equal(t, "https://api.example.com", cfg.APIBaseURL)
	assert.Equal(t, "prod", cfg.Env)
	assert.False(t, cfg.IsDev())
	assert.Equal(t, 15*time.Second, cfg.APITimeout)
	assert.Equal(t, 3*time.Second, cfg.CommentSaveDelay)
	assert.Equal(t, 10, cfg.PageSize)
	assert.Equal(t, int64(85000), cfg.PaymentDefaultTotal)
	assert.Equal(t, "PKR", cfg.PaymentCurrency)
	assert.Equal(t, 10, cfg.SubmissionsPerHour)
	assert.Equal(t, 30*time.Minute, cfg.CacheTTL)
	assert.Equal(t, "https", cfg.URLProtocol)
	assert.Len(t, cfg.SessionKey, 32)
}

func TestLoadConfigRequired(t *testing.T) {
	for _, key := range []string{"PORT", "API_BASE_URL", "SESSION_KEY"} {
		t.Run(key, func(t *testing.T) {
			setRequired(t)
			t.Setenv(key, "")
			_, err := LoadConfig()
			require.Error(t, err)
			assert.Equal(t, key+" cannot be empty", err.Error())
		})
	}
}

func TestCommentSaveDelayIsClamped(t *testing.T) {
	setRequired(t)
	for raw, want := range map[string]time.Duration{
		"500ms": time.Second,
		"2s":    2 * time.Second,
		"10":    3 * time.Second,
	} {
		t.Setenv("COMMENT_SAVE_DELAY", raw)
		cfg, err := LoadConfig()
		require.NoError(t, err)
		assert.Equal(t, want, cfg.CommentSaveDelay, raw)
	}
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	setRequired(t)
	t.Setenv("PAGE_SIZE", "ten")
	_, err := LoadConfig()
	assert.Error(t, err)

	t.Setenv("PAGE_SIZE", "0")
	_, err = LoadConfig()
	assert.Error(t, err)

	t.Setenv("PAGE_SIZE", "")
	t.Setenv("SESSION_KEY", "%%%")
	_, err = LoadConfig()
	assert.Error(t, err)
}

func TestDevEnv(t *testing.T) {
	setRequired(t)
	t.Setenv("ENV", "DEV")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.IsDev())
	assert.Equal(t, "http", cfg.URLProtocol)
}
