package exporter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValid(t *testing.T) {
	valid := Config{
		Port:            DefaultPort,
		Timeout:         DefaultTimeout,
		BaseURL:         "https://cloud.mongodb.com/api/atlas/v1.0",
		OrgID:           "org-1",
		PublicKey:       "public",
		PrivateKey:      "private",
		ScrapeOnRequest: true,
	}
	require.NoError(t, valid.Valid())

	tests := map[string]struct {
		mutate      func(*Config)
		expectedErr string
	}{
		"missing credentials": {
			mutate:      func(c *Config) { c.PublicKey, c.PrivateKey = "", "" },
			expectedErr: "the following flags are required: public-key,private-key",
		},
		"missing org": {
			mutate:      func(c *Config) { c.OrgID = "" },
			expectedErr: "the following flags are required: org",
		},
		"zero timeout": {
			mutate:      func(c *Config) { c.Timeout = 0 },
			expectedErr: "timeout must be positive",
		},
		"relative url": {
			mutate:      func(c *Config) { c.BaseURL = "/api/atlas" },
			expectedErr: `invalid url "/api/atlas": scheme and host are required`,
		},
		"nothing triggers a cycle": {
			mutate:      func(c *Config) { c.ScrapeOnRequest = false },
			expectedErr: "a poll schedule is required when scrape-on-request is disabled",
		},
	}
	for testName, tt := range tests {
		tt := tt
		t.Run(testName, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Valid()
			require.Error(t, err)
			assert.Equal(t, tt.expectedErr, err.Error())
		})
	}

	assert.True(t, ValidPort(8080))
	assert.False(t, ValidPort(0))
	assert.False(t, ValidPort(70000))
}
