package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	// DefaultGatewayURL is the Asset Pagamentos transactions endpoint.
	DefaultGatewayURL = "https://api.assetpagamentos.com/functions/v1/transactions"
	// DefaultIdentityURL is the CPF lookup endpoint.
	DefaultIdentityURL = "https://completa.workbuscas.com/api"
	// DefaultIdentityToken is sent to the CPF lookup when no token is configured.
	DefaultIdentityToken = "pixgateway-public"
)

var validate = validator.New()

type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Gateway       GatewayConfig       `mapstructure:"gateway"`
	Identity      IdentityConfig      `mapstructure:"identity"`
	Providers     ProvidersConfig     `mapstructure:"providers"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

type ServerConfig struct {
	Port               int           `mapstructure:"port"`
	ReadTimeout        time.Duration `mapstructure:"read_timeout"`
	WriteTimeout       time.Duration `mapstructure:"write_timeout"`
	IdleTimeout        time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout    time.Duration `mapstructure:"shutdown_timeout"`
	RateLimitPerMinute int           `mapstructure:"rate_limit_per_minute"`
}

// GatewayConfig holds the payment gateway endpoint and credentials. The
// credentials may be absent at start-up; requests then fail with a
// configuration error instead of the process refusing to boot.
type GatewayConfig struct {
	BaseURL     string `mapstructure:"base_url"`
	SecretKey   string `mapstructure:"secret_key"`
	CompanyID   string `mapstructure:"company_id"`
	PostbackURL string `mapstructure:"postback_url"`
}

// Configured reports whether both gateway credentials are set.
func (g GatewayConfig) Configured() bool {
	return g.SecretKey != "" && g.CompanyID != ""
}

type IdentityConfig struct {
	BaseURL string `mapstructure:"base_url"`
	Token   string `mapstructure:"token"`
}

// ProvidersConfig tunes the shared outbound HTTP client. A zero Timeout
// leaves outbound calls bounded only by the inbound request context.
type ProvidersConfig struct {
	Timeout                 time.Duration `mapstructure:"timeout"`
	CircuitBreakerThreshold uint32        `mapstructure:"circuit_breaker_threshold"`
	CircuitBreakerTimeout   time.Duration `mapstructure:"circuit_breaker_timeout"`
}

type ObservabilityConfig struct {
	LogLevel       string `mapstructure:"log_level"`
	JaegerEndpoint string `mapstructure:"jaeger_endpoint"`
	EnableMetrics  bool   `mapstructure:"enable_metrics"`
	EnableTracing  bool   `mapstructure:"enable_tracing"`
}

// legacyEnv maps config keys to the variable names the service has always
// been deployed with. The prefixed form is tried first.
var legacyEnv = map[string]string{
	"gateway.secret_key":   "ASSET_SECRET_KEY",
	"gateway.company_id":   "ASSET_COMPANY_ID",
	"gateway.postback_url": "POSTBACK_URL",
	"identity.token":       "CPF_API_TOKEN",
}

// DotEnvFile is read on Load when present. Variables already set in the
// process environment take precedence over it.
const DotEnvFile = ".env"

func Load() (*Config, error) {
	if err := loadDotEnv(DotEnvFile); err != nil {
		return nil, err
	}

	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("PIXGATEWAY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, legacy := range legacyEnv {
		prefixed := "PIXGATEWAY_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, legacy); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/pixgateway")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if cfg.Identity.Token == "" {
		cfg.Identity.Token = DefaultIdentityToken
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	return nil
}

// Validate checks server and provider settings. Gateway credentials are not
// checked here, see GatewayConfig.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, fmt.Errorf("server.read_timeout must be positive"))
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, fmt.Errorf("server.write_timeout must be positive"))
	}
	if c.Server.RateLimitPerMinute < 0 {
		errs = append(errs, fmt.Errorf("server.rate_limit_per_minute must not be negative"))
	}
	if err := validate.Var(c.Gateway.BaseURL, "required,url"); err != nil {
		errs = append(errs, fmt.Errorf("gateway.base_url must be a valid URL"))
	}
	if err := validate.Var(c.Identity.BaseURL, "required,url"); err != nil {
		errs = append(errs, fmt.Errorf("identity.base_url must be a valid URL"))
	}
	if c.Gateway.PostbackURL != "" {
		if err := validate.Var(c.Gateway.PostbackURL, "url"); err != nil {
			errs = append(errs, fmt.Errorf("gateway.postback_url must be a valid URL"))
		}
	}
	if c.Providers.Timeout < 0 {
		errs = append(errs, fmt.Errorf("providers.timeout must not be negative"))
	}
	if c.Providers.CircuitBreakerThreshold == 0 {
		errs = append(errs, fmt.Errorf("providers.circuit_breaker_threshold must be positive"))
	}

	return errors.Join(errs...)
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "30s")
	v.SetDefault("server.rate_limit_per_minute", 0)

	// Provider defaults
	v.SetDefault("gateway.base_url", DefaultGatewayURL)
	v.SetDefault("gateway.secret_key", "")
	v.SetDefault("gateway.company_id", "")
	v.SetDefault("gateway.postback_url", "")
	v.SetDefault("identity.base_url", DefaultIdentityURL)
	v.SetDefault("identity.token", "")
	v.SetDefault("providers.timeout", "0s")
	v.SetDefault("providers.circuit_breaker_threshold", 10)
	v.SetDefault("providers.circuit_breaker_timeout", "30s")

	// Observability defaults
	v.SetDefault("observability.log_level", "info")
	v.SetDefault("observability.jaeger_endpoint", "http://localhost:14268/api/traces")
	v.SetDefault("observability.enable_metrics", true)
	v.SetDefault("observability.enable_tracing", false)
}
