package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "config/config.yaml"

const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

type ServerConfig struct {
	Port int `yaml:"port" env:"SERVER_PORT"`
}

type DatabaseConfig struct {
	// Driver is one of memory, postgres, sqlite, mongo.
	Driver string `yaml:"driver" env:"DB_DRIVER"`
	DSN    string `yaml:"url" env:"DB_URL"`
	// Name is the mongo database name.
	Name string `yaml:"name" env:"DB_NAME"`
}

type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret" env:"JWT_SECRET"`
	TokenTTL  time.Duration `yaml:"token_ttl" env:"JWT_TTL"`
}

type EmailConfig struct {
	SMTPHost     string `yaml:"smtp_host" env:"SMTP_HOST"`
	SMTPPort     int    `yaml:"smtp_port" env:"SMTP_PORT"`
	SMTPUser     string `yaml:"smtp_user" env:"SMTP_USER"`
	SMTPPassword string `yaml:"smtp_password" env:"SMTP_PASSWORD"`
	FromEmail    string `yaml:"from_email" env:"SMTP_FROM"`
}

type TelegramConfig struct {
	BotToken string `yaml:"bot_token" env:"TELEGRAM_BOT_TOKEN"`
	// WebhookSecret must match the X-Telegram-Bot-Api-Secret-Token header
	// of webhook calls when set.
	WebhookSecret string `yaml:"webhook_secret" env:"TELEGRAM_WEBHOOK_SECRET"`
}

type SchedulerConfig struct {
	Enabled bool `yaml:"enabled" env:"SCHEDULER_ENABLED"`
	// ReminderSpec is a cron spec for the reminder scan.
	ReminderSpec string `yaml:"reminder_spec" env:"SCHEDULER_REMINDER_SPEC"`
}

type AppConfig struct {
	Timezone       string        `yaml:"timezone" env:"APP_TIMEZONE"`
	AutoStartTasks bool          `yaml:"auto_start_tasks" env:"APP_AUTO_START_TASKS"`
	InvitationTTL  time.Duration `yaml:"invitation_ttl" env:"APP_INVITATION_TTL"`
	PublicURL      string        `yaml:"public_url" env:"APP_PUBLIC_URL"`
}

type FilesConfig struct {
	FontPath string `yaml:"font_path" env:"FILES_FONT_PATH"`
}

type LogConfig struct {
	// Level overrides the per-env default (trace, debug, info, warn, error).
	Level string `yaml:"level" env:"LOG_LEVEL"`
}

type Config struct {
	Env       string          `yaml:"env" env:"APP_ENV"`
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Email     EmailConfig     `yaml:"email"`
	Telegram  TelegramConfig  `yaml:"telegram"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	App       AppConfig       `yaml:"app"`
	Files     FilesConfig     `yaml:"files"`
	Log       LogConfig       `yaml:"log"`
}

// Load reads the YAML file, overlays environment variables and applies
// defaults. A missing file at the default path is not an error.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	var cfg Config
	f, err := os.Open(path)
	switch {
	case err == nil:
		defer f.Close()
		if err := yaml.NewDecoder(f).Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// MustLoad panics when the configuration cannot be loaded.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Env == "" {
		c.Env = EnvLocal
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "memory"
	}
	if c.Database.Name == "" {
		c.Database.Name = "teamtasks"
	}
	if c.Auth.TokenTTL == 0 {
		c.Auth.TokenTTL = 24 * time.Hour
	}
	if c.Scheduler.ReminderSpec == "" {
		c.Scheduler.ReminderSpec = "@every 1m"
	}
	if c.App.Timezone == "" {
		c.App.Timezone = "UTC"
	}
	if c.App.InvitationTTL == 0 {
		c.App.InvitationTTL = 7 * 24 * time.Hour
	}
	if c.Files.FontPath == "" {
		c.Files.FontPath = "assets/fonts/DejaVuSans.ttf"
	}
}

func (c *Config) Validate() error {
	switch c.Env {
	case EnvLocal, EnvDev, EnvProd:
	default:
		return fmt.Errorf("unknown env %q", c.Env)
	}
	switch c.Database.Driver {
	case "memory":
	case "postgres", "sqlite", "mongo":
		if c.Database.DSN == "" {
			return fmt.Errorf("database.url is required for driver %q", c.Database.Driver)
		}
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is required")
	}
	if _, err := time.LoadLocation(c.App.Timezone); err != nil {
		return fmt.Errorf("app.timezone: %w", err)
	}
	return nil
}

// Location is the zone that defines calendar days for date checks.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
