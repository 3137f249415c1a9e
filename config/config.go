package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/labstack/gommon/random"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

// SysConfig system configuration
type SysConfig struct {
	Appid    string `yaml:"appid"`
	Location string `yaml:"location"`
	Workdir  string `yaml:"workdir"`
	Debug    bool   `yaml:"debug"`
}

// WebConfig admin api configuration
type WebConfig struct {
	Host          string `yaml:"host"`
	Port          int    `yaml:"port"`
	Secret        string `yaml:"secret"`
	TokenTTL      int    `yaml:"token_ttl"` // hours
	AdminEmail    string `yaml:"admin_email"`
	AdminPassword string `yaml:"admin_password"`

	// SecretGenerated is set when no secret was configured and a random one is in use.
	SecretGenerated bool `yaml:"-"`
}

// DBConfig Database configuration. Type is either postgres or sqlite.
// URL takes precedence over the discrete postgres fields when set.
type DBConfig struct {
	Type     string `yaml:"type"`
	URL      string `yaml:"url"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Passwd   string `yaml:"passwd"`
	MaxConn  int    `yaml:"max_conn"`
	IdleConn int    `yaml:"idle_conn"`
	Debug    bool   `yaml:"debug"`
}

// LogConfig logger configuration
type LogConfig struct {
	Mode       string `yaml:"mode"`
	FileEnable bool   `yaml:"file_enable"`
	Filename   string `yaml:"filename"`
}

// MailConfig SMTP settings for alert copies
type MailConfig struct {
	Enabled  bool     `yaml:"enabled"`
	Host     string   `yaml:"host"`
	Port     int      `yaml:"port"`
	User     string   `yaml:"user"`
	Password string   `yaml:"password"`
	From     string   `yaml:"from"`
	To       []string `yaml:"to"`
}

// NotifyConfig notification settings
type NotifyConfig struct {
	Locale          string     `yaml:"locale"`
	RetentionDays   int        `yaml:"retention_days"`
	StockDigestCron string     `yaml:"stock_digest_cron"`
	Mail            MailConfig `yaml:"mail"`
}

type AppConfig struct {
	System   SysConfig    `yaml:"system"`
	Web      WebConfig    `yaml:"web"`
	Database DBConfig     `yaml:"database"`
	Logger   LogConfig    `yaml:"logger"`
	Notify   NotifyConfig `yaml:"notify"`
}

func (c *AppConfig) GetLogDir() string {
	return filepath.Join(c.System.Workdir, "logs")
}

func (c *AppConfig) GetDataDir() string {
	return filepath.Join(c.System.Workdir, "data")
}

// InitDirs creates the working directories
func (c *AppConfig) InitDirs() error {
	for _, dir := range []string{c.GetLogDir(), c.GetDataDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "create %s", dir)
		}
	}
	return nil
}

// DefaultAppConfig returns a configuration suitable for local use with sqlite.
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		System: SysConfig{
			Appid:    "labdesk",
			Location: "America/Sao_Paulo",
			Workdir:  "/var/labdesk",
		},
		Web: WebConfig{
			Host:          "0.0.0.0",
			Port:          1816,
			TokenTTL:      12,
			AdminEmail:    "admin@protechlab.com",
			AdminPassword: "senha123",
		},
		Database: DBConfig{
			Type:     "sqlite",
			Host:     "127.0.0.1",
			Port:     5432,
			Name:     "labdesk.db",
			User:     "postgres",
			MaxConn:  50,
			IdleConn: 10,
		},
		Logger: LogConfig{
			Mode:       "development",
			FileEnable: false,
			Filename:   "/var/labdesk/logs/labdesk.log",
		},
		Notify: NotifyConfig{
			Locale:          "pt-BR",
			RetentionDays:   90,
			StockDigestCron: "0 0 8 * * *",
			Mail:            MailConfig{Port: 587},
		},
	}
}

// LoadConfig reads the yaml file (when present), then .env and the process
// environment. An empty cfile falls back to ./labdesk.yml and /etc/labdesk.yml.
func LoadConfig(cfile string) (*AppConfig, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := DefaultAppConfig()
	if cfile == "" {
		for _, candidate := range []string{"labdesk.yml", "/etc/labdesk.yml"} {
			if fileExists(candidate) {
				cfile = candidate
				break
			}
		}
	}
	if cfile != "" {
		data, err := os.ReadFile(cfile)
		if err != nil {
			return nil, errors.Wrapf(err, "read config %s", cfile)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrapf(err, "parse config %s", cfile)
		}
	}

	applyEnv(cfg)

	if strings.TrimSpace(cfg.Web.Secret) == "" {
		cfg.Web.Secret = random.String(48)
		cfg.Web.SecretGenerated = true
	}
	return cfg, nil
}

func applyEnv(cfg *AppConfig) {
	setEnvValue("LABDESK_SYSTEM_WORKDIR", &cfg.System.Workdir)
	setEnvValue("LABDESK_SYSTEM_LOCATION", &cfg.System.Location)
	setEnvBoolValue("LABDESK_SYSTEM_DEBUG", &cfg.System.Debug)

	setEnvValue("LABDESK_WEB_HOST", &cfg.Web.Host)
	setEnvIntValue("LABDESK_WEB_PORT", &cfg.Web.Port)
	setEnvValue("LABDESK_WEB_SECRET", &cfg.Web.Secret)
	setEnvValue("JWT_SECRET", &cfg.Web.Secret)
	setEnvIntValue("LABDESK_WEB_TOKEN_TTL", &cfg.Web.TokenTTL)
	setEnvValue("LABDESK_ADMIN_EMAIL", &cfg.Web.AdminEmail)
	setEnvValue("LABDESK_ADMIN_PASSWORD", &cfg.Web.AdminPassword)

	setEnvValue("LABDESK_DB_TYPE", &cfg.Database.Type)
	setEnvValue("LABDESK_DB_HOST", &cfg.Database.Host)
	setEnvIntValue("LABDESK_DB_PORT", &cfg.Database.Port)
	setEnvValue("LABDESK_DB_NAME", &cfg.Database.Name)
	setEnvValue("LABDESK_DB_USER", &cfg.Database.User)
	setEnvValue("LABDESK_DB_PASSWD", &cfg.Database.Passwd)
	setEnvIntValue("LABDESK_DB_MAX_CONN", &cfg.Database.MaxConn)
	setEnvIntValue("LABDESK_DB_IDLE_CONN", &cfg.Database.IdleConn)
	setEnvBoolValue("LABDESK_DB_DEBUG", &cfg.Database.Debug)
	setEnvValue("LABDESK_DB_URL", &cfg.Database.URL)
	if url := os.Getenv("POSTGRES_URL"); url != "" {
		cfg.Database.URL = url
		cfg.Database.Type = "postgres"
	}

	setEnvValue("LABDESK_LOGGER_MODE", &cfg.Logger.Mode)
	setEnvBoolValue("LABDESK_LOGGER_FILE_ENABLE", &cfg.Logger.FileEnable)
	setEnvValue("LABDESK_LOGGER_FILENAME", &cfg.Logger.Filename)

	setEnvValue("LABDESK_NOTIFY_LOCALE", &cfg.Notify.Locale)
	setEnvIntValue("LABDESK_NOTIFY_RETENTION_DAYS", &cfg.Notify.RetentionDays)
	setEnvBoolValue("LABDESK_MAIL_ENABLED", &cfg.Notify.Mail.Enabled)
	setEnvValue("LABDESK_MAIL_HOST", &cfg.Notify.Mail.Host)
	setEnvIntValue("LABDESK_MAIL_PORT", &cfg.Notify.Mail.Port)
	setEnvValue("LABDESK_MAIL_USER", &cfg.Notify.Mail.User)
	setEnvValue("LABDESK_MAIL_PASSWORD", &cfg.Notify.Mail.Password)
	setEnvValue("LABDESK_MAIL_FROM", &cfg.Notify.Mail.From)
	if to := os.Getenv("LABDESK_MAIL_TO"); to != "" {
		cfg.Notify.Mail.To = cast.ToStringSlice(strings.ReplaceAll(to, ",", " "))
	}
}

func setEnvValue(name string, val *string) {
	if v := os.Getenv(name); v != "" {
		*val = v
	}
}

func setEnvIntValue(name string, val *int) {
	if v := os.Getenv(name); v != "" {
		if i, err := cast.ToIntE(v); err == nil {
			*val = i
		}
	}
}

func setEnvBoolValue(name string, val *bool) {
	if v := os.Getenv(name); v != "" {
		if b, err := cast.ToBoolE(v); err == nil {
			*val = b
		}
	}
}

func fileExists(name string) bool {
	info, err := os.Stat(name)
	return err == nil && !info.IsDir()
}
