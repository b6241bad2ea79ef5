package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const sampleConfig = `
log_level: debug
server:
  host: 127.0.0.1
  port: "9090"
rules:
  provider: openai
  url: http://rules.internal/api/rules/create
  timeout: 15s
llm:
  base_url: https://api.example.com
  api_key: dummy
  model: gpt-4o
directory:
  provider: sqlite
  db_path: /tmp/console.db
identity:
  secret: s3cret
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	tmp, err := os.CreateTemp(t.TempDir(), "cfg-*.yaml")
	require.NoError(t, err)
	_, err = tmp.WriteString(body)
	require.NoError(t, err)
	require.NoError(t, tmp.Close())
	return tmp.Name()
}

// TestLoad_File verifies that Load unmarshals every section of the YAML file.
func TestLoad_File(t *testing.T) {
	t.Setenv("CONFIG_PATH", writeConfig(t, sampleConfig))

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, "127.0.0.1", cfg.Server.Host)
	require.Equal(t, "9090", cfg.Server.Port)
	require.Equal(t, ProviderOpenAI, cfg.Rules.Provider)
	require.Equal(t, "http://rules.internal/api/rules/create", cfg.Rules.URL)
	require.Equal(t, 15*time.Second, cfg.Rules.Timeout)
	require.Equal(t, "gpt-4o", cfg.LLM.Model)
	require.Equal(t, DirectorySQLite, cfg.Directory.Provider)
	require.Equal(t, "/tmp/console.db", cfg.Directory.DBPath)
	require.Equal(t, "s3cret", cfg.Identity.Secret)

	// untouched keys keep their defaults
	require.Equal(t, DefaultTenantID, cfg.Rules.TenantID)
	require.Equal(t, "http://localhost:4001", cfg.Admin.URL)
}

func TestLoad_Defaults(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("CONFIG_PATH", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ProviderHTTP, cfg.Rules.Provider)
	require.Equal(t, "http://localhost:4002/api/rules/create", cfg.Rules.URL)
	require.Zero(t, cfg.Rules.Timeout)
	require.Equal(t, DirectoryREST, cfg.Directory.Provider)
	require.Equal(t, "8080", cfg.Server.Port)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("CONFIG_PATH", writeConfig(t, sampleConfig))
	t.Setenv("CONSOLE_RULES_TENANT_ID", "tenant-42")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "tenant-42", cfg.Rules.TenantID)
}

func TestLoad_BadFile(t *testing.T) {
	t.Setenv("CONFIG_PATH", writeConfig(t, "server: [unclosed"))

	_, err := Load()
	require.Error(t, err)
}
