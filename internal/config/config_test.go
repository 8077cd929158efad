package config

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("PORT", "3000")
	t.Setenv("ENV", "dev")
	t.Setenv("JOBS_API_URL", "http://localhost:8080/")
}

func TestLoadConfig_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", cfg.JobsAPIURL)
	assert.Equal(t, 10*time.Second, cfg.JobsAPITimeout)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.Equal(t, "Job Service Jenkins", cfg.SiteName)
	assert.Equal(t, "http://", cfg.URLProtocol)
	assert.True(t, cfg.IsDev())
	assert.NotEmpty(t, cfg.SessionKey)
}

func TestLoadConfig_RequiredValues(t *testing.T) {
	for _, key := range []string{"PORT", "ENV", "JOBS_API_URL"} {
		t.Run(key, func(t *testing.T) {
			setRequired(t)
			t.Setenv(key, "")
			_, err := LoadConfig()
			require.Error(t, err)
			assert.Contains(t, err.Error(), key+" cannot be empty")
		})
	}
}

func TestLoadConfig_ProdNeedsSessionKey(t *testing.T) {
	setRequired(t)
	t.Setenv("ENV", "prod")
	t.Setenv("SESSION_KEY", "")
	_, err := LoadConfig()
	require.Error(t, err)

	t.Setenv("SESSION_KEY", base64.StdEncoding.EncodeToString([]byte("0123456789abcdef")))
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, []byte("0123456789abcdef"), cfg.SessionKey)
	assert.Equal(t, "https://", cfg.URLProtocol)
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	tests := map[string]string{
		"JOBS_API_TIMEOUT": "soon",
		"CACHE_TTL":        "-1s",
		"REDIS_DB":         "zero",
		"SESSION_KEY":      "%%%",
	}
	for key, val := range tests {
		t.Run(key, func(t *testing.T) {
			setRequired(t)
			t.Setenv(key, val)
			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}
