package main

import (
	"os"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setenv(t *testing.T, key, value string) {
	t.Helper()
	require.NoError(t, os.Setenv(key, value))
	t.Cleanup(func() { os.Unsetenv(key) })
}

func newTestFlagSet() (*pflag.FlagSet, *int, *string, *string) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	port := fs.Int("port", 8080, "")
	org := fs.String("org", "", "")
	publicKey := fs.String("public-key", "", "")
	return fs, port, org, publicKey
}

func TestSetFlagsFromEnv(t *testing.T) {
	setenv(t, "TEST_EXPORTER_PORT", "9090")
	setenv(t, "TEST_EXPORTER_PUBLIC_KEY", "from-env")

	fs, port, _, publicKey := newTestFlagSet()
	require.NoError(t, fs.Parse([]string{"--public-key", "from-flag"}))
	require.NoError(t, SetFlagsFromEnv(fs, "TEST_EXPORTER", nil))

	assert.Equal(t, 9090, *port)
	assert.Equal(t, "from-flag", *publicKey, "flags take precedence over the environment")
}

func TestSetFlagsFromEnvAliases(t *testing.T) {
	setenv(t, "TEST_EXPORTER_ORG_ID", "legacy-org")
	setenv(t, "TEST_EXPORTER_LISTEN_PORT", "9191")
	setenv(t, "TEST_EXPORTER_PORT", "9090")

	fs, port, org, _ := newTestFlagSet()
	require.NoError(t, fs.Parse(nil))
	require.NoError(t, SetFlagsFromEnv(fs, "TEST_EXPORTER", map[string]string{
		"port": "TEST_EXPORTER_LISTEN_PORT",
		"org":  "TEST_EXPORTER_ORG_ID",
	}))

	assert.Equal(t, "legacy-org", *org)
	assert.Equal(t, 9090, *port, "the prefixed variable wins over its alias")
}

func TestSetFlagsFromEnvInvalidValue(t *testing.T) {
	setenv(t, "TEST_EXPORTER_PORT", "not-a-port")

	fs, _, _, _ := newTestFlagSet()
	require.NoError(t, fs.Parse(nil))
	err := SetFlagsFromEnv(fs, "TEST_EXPORTER", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TEST_EXPORTER_PORT")
}
