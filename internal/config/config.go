package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type ServerConfig struct {
	Port           int      `mapstructure:"port"`
	Mode           string   `mapstructure:"mode"` // gin mode: debug, release, test
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	LogMode  bool   `mapstructure:"log_mode"`
}

// DSN renders the postgres connection URL
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s", d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

type JWTConfig struct {
	Secret   string `mapstructure:"secret"`
	TTLHours int    `mapstructure:"ttl_hours"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

type CacheConfig struct {
	AreaTTLMinutes int `mapstructure:"area_ttl_minutes"` // 0 disables the area catalogue cache
}

// SchedulerConfig drives the periodic backlog report. BacklogSpec is a
// six-field cron expression (seconds first).
type SchedulerConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	BacklogSpec     string `mapstructure:"backlog_spec"`
	StaleAfterHours int    `mapstructure:"stale_after_hours"`
}

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Log       LogConfig       `mapstructure:"log"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:5173", "http://127.0.0.1:5173"})

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.name", "caja_chica")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.log_mode", false)

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.ttl_hours", 8)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")

	v.SetDefault("cache.area_ttl_minutes", 5)

	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.backlog_spec", "0 0 8 * * *")
	v.SetDefault("scheduler.stale_after_hours", 48)
}

// Load reads configuration from the given YAML file (optional) with
// environment overrides, e.g. APP_DATABASE_HOST=db overrides database.host.
// Without an explicit path a missing file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path == "" {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("configs")
		v.AddConfigPath(".")
	} else {
		v.SetConfigFile(path)
	}

	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate rejects configurations that are unsafe to run in release mode
func (c *Config) Validate() error {
	if c.Server.Mode == "release" && c.JWT.Secret == "" {
		return errors.New("jwt.secret must be set in release mode")
	}
	if c.JWT.TTLHours <= 0 {
		return errors.New("jwt.ttl_hours must be positive")
	}
	if c.Cache.AreaTTLMinutes < 0 {
		return errors.New("cache.area_ttl_minutes must not be negative")
	}
	if c.Scheduler.Enabled {
		if c.Scheduler.BacklogSpec == "" {
			return errors.New("scheduler.backlog_spec is required when the scheduler is enabled")
		}
		if c.Scheduler.StaleAfterHours <= 0 {
			return errors.New("scheduler.stale_after_hours must be positive")
		}
	}
	return nil
}
