package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "ATHENA"

type Config struct {
	Env      string         `yaml:"env"`      // Env is the current environment: local, development, production.
	HTTP     HTTPConfig     `yaml:"http"`     // HTTP holds the console listener configuration.
	API      APIConfig      `yaml:"api"`      // API points at the upstream task API.
	Service  ServiceConfig  `yaml:"service"`  // Service is the account the snapshot service signs in with.
	Snapshot SnapshotConfig `yaml:"snapshot"` // Snapshot configures the KPI snapshot service.
	Postgres PostgresConfig `yaml:"postgres"` // Postgres holds the snapshot database configuration.
	Log      LogConfig      `yaml:"log"`
	Demo     DemoConfig     `yaml:"demo"`
}

type HTTPConfig struct {
	Addr           string `yaml:"addr"`            // Addr is the console listen address, e.g. ":3000".
	MonitoringPort int    `yaml:"monitoring_port"` // MonitoringPort serves /metrics and /healthz.
}

type APIConfig struct {
	BaseURL string        `yaml:"base_url"` // BaseURL is the task API root, e.g. `http://localhost:3777`.
	Timeout time.Duration `yaml:"timeout"`
}

type ServiceConfig struct {
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

type SnapshotConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Interval time.Duration `yaml:"interval"` // Interval is the time between two snapshot runs.
}

// PostgresConfig struct holds the configuration details for connecting to a PostgreSQL database.
type PostgresConfig struct {
	Host     string `yaml:"host"`     // Host is the database server address.
	Port     string `yaml:"port"`     // Port is the database server port.
	User     string `yaml:"user"`     // User is the database user.
	Password string `yaml:"password"` // Password is the database user's password.
	Dbname   string `yaml:"db_name"`  // Dbname is the name of the database.
}

type LogConfig struct {
	File string `yaml:"file"` // File enables a rotating log file next to stdout when set.
}

type DemoConfig struct {
	Addr   string `yaml:"addr"`   // Addr is where cmd/demoapi listens.
	Secret string `yaml:"secret"` // Secret signs the demo API login tokens.
}

// MustLoad loads the configuration and panics when it is invalid.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err.Error())
	}
	return cfg
}

// Load reads .env (when present), the optional YAML file named by CONFIG_PATH, and ATHENA_* environment
// variables, in increasing order of precedence.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if configPath := os.Getenv("CONFIG_PATH"); configPath != "" {
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("config file does not exist: %s", configPath)
		}
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config error: %w", err)
		}
	}

	apiTimeout, err := time.ParseDuration(v.GetString("api.timeout"))
	if err != nil {
		return nil, errors.New("failed to parse api timeout from configuration")
	}
	interval, err := time.ParseDuration(v.GetString("snapshot.interval"))
	if err != nil || interval <= 0 {
		return nil, errors.New("failed to parse interval from configuration")
	}

	cfg := &Config{
		Env: v.GetString("env"),
		HTTP: HTTPConfig{
			Addr:           v.GetString("http.addr"),
			MonitoringPort: v.GetInt("http.monitoring_port"),
		},
		API: APIConfig{
			BaseURL: strings.TrimRight(v.GetString("api.base_url"), "/"),
			Timeout: apiTimeout,
		},
		Service: ServiceConfig{
			Email:    v.GetString("service.email"),
			Password: v.GetString("service.password"),
		},
		Snapshot: SnapshotConfig{
			Enabled:  v.GetBool("snapshot.enabled"),
			Interval: interval,
		},
		Postgres: PostgresConfig{
			Host:     v.GetString("postgres.host"),
			Port:     v.GetString("postgres.port"),
			User:     v.GetString("postgres.user"),
			Password: v.GetString("postgres.password"),
			Dbname:   v.GetString("postgres.db_name"),
		},
		Log:  LogConfig{File: v.GetString("log.file")},
		Demo: DemoConfig{Addr: v.GetString("demo.addr"), Secret: v.GetString("demo.secret")},
	}

	if err = cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "local")
	v.SetDefault("http.addr", ":3000")
	v.SetDefault("http.monitoring_port", 8080)
	v.SetDefault("api.base_url", "http://localhost:3777")
	v.SetDefault("api.timeout", "15s")
	v.SetDefault("snapshot.enabled", false)
	v.SetDefault("snapshot.interval", "12h")
	v.SetDefault("postgres.port", "5432")
	v.SetDefault("demo.addr", ":3777")
	v.SetDefault("demo.secret", "athena-demo")
}

func (c *Config) validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api base url must be absolute: %q", c.API.BaseURL)
	}
	if c.HTTP.MonitoringPort <= 0 || c.HTTP.MonitoringPort > 65535 {
		return fmt.Errorf("invalid monitoring port: %d", c.HTTP.MonitoringPort)
	}
	if c.Snapshot.Enabled {
		if c.Service.Email == "" || c.Service.Password == "" {
			return errors.New("snapshot service requires service.email and service.password")
		}
		if c.Postgres.Host == "" || c.Postgres.Dbname == "" {
			return errors.New("snapshot service requires postgres.host and postgres.db_name")
		}
	}
	return nil
}
