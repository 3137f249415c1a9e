package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("POSTGRES_URL", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("LABDESK_WEB_SECRET", "")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing-is-not-read.yml"))
	require.Error(t, err, "an explicit path must exist")
	assert.Nil(t, cfg)

	cfg, err = LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, 1816, cfg.Web.Port)
	assert.True(t, cfg.Web.SecretGenerated)
	assert.Len(t, cfg.Web.Secret, 48)
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "labdesk.yml")
	content := []byte(`
system:
  workdir: ` + dir + `
web:
  port: 9000
  secret: from-file
database:
  type: sqlite
  name: test.db
notify:
  retention_days: 30
  mail:
    to: [ops@example.com]
`)
	require.NoError(t, os.WriteFile(file, content, 0o600))

	t.Setenv("LABDESK_WEB_PORT", "9100")
	t.Setenv("POSTGRES_URL", "postgres://lab:lab@db:5432/lab?sslmode=disable")
	t.Setenv("LABDESK_DB_DEBUG", "true")
	t.Setenv("LABDESK_MAIL_TO", "a@example.com,b@example.com")

	cfg, err := LoadConfig(file)
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Web.Port)
	assert.Equal(t, "from-file", cfg.Web.Secret)
	assert.False(t, cfg.Web.SecretGenerated)
	assert.Equal(t, "postgres", cfg.Database.Type)
	assert.Equal(t, "postgres://lab:lab@db:5432/lab?sslmode=disable", cfg.Database.URL)
	assert.True(t, cfg.Database.Debug)
	assert.Equal(t, 30, cfg.Notify.RetentionDays)
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, cfg.Notify.Mail.To)
	assert.Equal(t, filepath.Join(dir, "data"), cfg.GetDataDir())

	require.NoError(t, cfg.InitDirs())
	assert.DirExists(t, cfg.GetLogDir())
}

func TestLoadConfigInvalidEnvIgnored(t *testing.T) {
	t.Setenv("POSTGRES_URL", "")
	t.Setenv("LABDESK_WEB_PORT", "not-a-port")
	t.Setenv("JWT_SECRET", "env-secret")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, 1816, cfg.Web.Port)
	assert.Equal(t, "env-secret", cfg.Web.Secret)
}
