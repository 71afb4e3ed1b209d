package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// Config represents the runtime configuration for the miniapp backend.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	CRUD       CRUDConfig       `mapstructure:"crud"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Activity   ActivityConfig   `mapstructure:"activity"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port        int    `mapstructure:"port"`
	LogLevel    string `mapstructure:"log_level"`
	Environment string `mapstructure:"environment"`
	BasePath    string `mapstructure:"base_path"`
}

// IsProduction reports whether the server runs in a production posture.
// Identity-header defaults and verbose 500 bodies are disabled in production.
func (s ServerConfig) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(s.Environment), "production")
}

// DatabaseConfig describes connection options for the embedded store.
type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	Path   string `mapstructure:"path"`
	DSN    string `mapstructure:"dsn"`
}

// CRUDConfig selects and configures the entity data provider.
// UseEmbedded picks the embedded SQLite store; otherwise every operation is
// forwarded to the remote entity API at APIBaseURL.
type CRUDConfig struct {
	UseEmbedded bool          `mapstructure:"use_embedded"`
	APIBaseURL  string        `mapstructure:"api_base_url"`
	APIToken    string        `mapstructure:"api_token"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// AuthConfig captures the mock auth service settings.
type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	JWTIssuer string        `mapstructure:"jwt_issuer"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
	AppName   string        `mapstructure:"app_name"`
	Access    AccessConfig  `mapstructure:"access"`
}

// AccessConfig holds the allow/deny lists consulted before issuing tokens.
// Allowed entries may be exact emails, "*" or "*@domain" wildcards; an exact
// match in Denied always wins.
type AccessConfig struct {
	Allowed []string `mapstructure:"allowed"`
	Denied  []string `mapstructure:"denied"`
}

// ActivityConfig configures the user-activity proxy.
type ActivityConfig struct {
	APIBaseURL    string        `mapstructure:"api_base_url"`
	TokenEndpoint string        `mapstructure:"token_endpoint"`
	StaticToken   string        `mapstructure:"static_token"`
	CacheTTL      time.Duration `mapstructure:"cache_ttl"`
	SafetyMargin  time.Duration `mapstructure:"safety_margin"`
	Timeout       time.Duration `mapstructure:"timeout"`
	SweepSchedule string        `mapstructure:"sweep_schedule"`
}

// MonitoringConfig enables metrics endpoints.
type MonitoringConfig struct {
	Prometheus PrometheusConfig `mapstructure:"prometheus"`
}

// PrometheusConfig toggles the metrics endpoint.
type PrometheusConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
}

// LoadConfig initialises application configuration using Viper with sensible defaults.
func LoadConfig(paths ...string) (*Config, error) {
	v := viper.NewWithOptions(viper.ExperimentalBindStruct())
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AddConfigPath("./config")
	for _, path := range paths {
		v.AddConfigPath(path)
	}

	setDefaults(v)

	v.SetEnvPrefix("MINIAPP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var cfgErr viper.ConfigFileNotFoundError
		if !errors.As(err, &cfgErr) {
			return nil, fmt.Errorf("config: read file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config, decodeHook()); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8101)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.base_path", "/defaultbasepath/defaultapp")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./data/miniapp.sqlite")

	v.SetDefault("crud.use_embedded", true)
	v.SetDefault("crud.api_base_url", "http://localhost:8102")
	v.SetDefault("crud.timeout", "30s")

	v.SetDefault("auth.jwt_issuer", "miniapp-auth-service")
	v.SetDefault("auth.token_ttl", "1h")
	v.SetDefault("auth.app_name", "myapp")
	v.SetDefault("auth.access.allowed", []string{
		"developer@company.com",
		"admin@company.com",
		"analyst@company.com",
		"*@company.com",
	})
	v.SetDefault("auth.access.denied", []string{})

	v.SetDefault("activity.api_base_url", "http://localhost:8103")
	v.SetDefault("activity.token_endpoint", "http://localhost:8086/miniappsdev/auth/token")
	v.SetDefault("activity.cache_ttl", "5m")
	v.SetDefault("activity.safety_margin", "60s")
	v.SetDefault("activity.timeout", "30s")
	v.SetDefault("activity.sweep_schedule", "")

	v.SetDefault("monitoring.prometheus.enabled", true)
	v.SetDefault("monitoring.prometheus.endpoint", "/metrics")
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}
