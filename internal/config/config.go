package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/spartan-coder90/sar-narrative-generator-sub000/internal/model"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Narrative NarrativeConfig `yaml:"narrative" mapstructure:"narrative"`
	Cases     CasesConfig     `yaml:"cases" mapstructure:"cases"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
	Defaults  model.Defaults  `yaml:"defaults" mapstructure:"defaults"`
}

// StoreConfig configures session persistence.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// AnthropicConfig configures the text generation client.
type AnthropicConfig struct {
	Key              string  `yaml:"key" mapstructure:"key"`
	BaseURL          string  `yaml:"base_url" mapstructure:"base_url"`
	Model            string  `yaml:"model" mapstructure:"model"`
	MaxTokens        int     `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature      float64 `yaml:"temperature" mapstructure:"temperature"`
	TimeoutSecs      int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RateLimit        float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
	RetryAttempts    int     `yaml:"retry_attempts" mapstructure:"retry_attempts"`
	CircuitThreshold int     `yaml:"circuit_threshold" mapstructure:"circuit_threshold"`
}

// Timeout returns the per-attempt timeout.
func (a AnthropicConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutSecs) * time.Second
}

// NarrativeConfig configures narrative assembly.
type NarrativeConfig struct {
	UseLLM      bool `yaml:"use_llm" mapstructure:"use_llm"`
	ProtectPII  bool `yaml:"protect_pii" mapstructure:"protect_pii"`
	Concurrency int  `yaml:"concurrency" mapstructure:"concurrency"`
}

// CasesConfig locates the case repository file.
type CasesConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port        int      `yaml:"port" mapstructure:"port"`
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
	MaxUploadMB int64    `yaml:"max_upload_mb" mapstructure:"max_upload_mb"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads config.yaml from the working directory (optional) and
// SARNARR_* environment variables.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("SARNARR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}
	cfg.Defaults = cfg.Defaults.WithFallbacks()
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "sarnarr.db")
	v.SetDefault("store.max_conns", 10)
	v.SetDefault("store.min_conns", 1)

	v.SetDefault("anthropic.key", "")
	v.SetDefault("anthropic.base_url", "")
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.max_tokens", 1000)
	v.SetDefault("anthropic.temperature", 0.2)
	v.SetDefault("anthropic.timeout_secs", 30)
	v.SetDefault("anthropic.rate_limit", 2.0)
	v.SetDefault("anthropic.retry_attempts", 2)
	v.SetDefault("anthropic.circuit_threshold", 5)

	v.SetDefault("narrative.use_llm", false)
	v.SetDefault("narrative.protect_pii", true)
	v.SetDefault("narrative.concurrency", 4)

	v.SetDefault("cases.path", "data/cases.json")

	v.SetDefault("server.port", 8081)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.max_upload_mb", 32)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	std := model.StandardDefaults()
	v.SetDefault("defaults.alert_id", std.AlertID)
	v.SetDefault("defaults.alert_description", std.AlertDescription)
	v.SetDefault("defaults.subject_name", std.SubjectName)
	v.SetDefault("defaults.account_number", std.AccountNumber)
	v.SetDefault("defaults.account_type", std.AccountType)
	v.SetDefault("defaults.unknown_account", std.UnknownAccount)
	v.SetDefault("defaults.unknown_status", std.UnknownStatus)
	v.SetDefault("defaults.transaction_type", std.TransactionType)
	v.SetDefault("defaults.activity_start_date", std.ActivityStartDate)
	v.SetDefault("defaults.reconcile_total", std.ReconcileTotal)
}

// Validate checks the fields a command needs. cmd is the command name.
func (c *Config) Validate(cmd string) error {
	var missing []string

	switch c.Store.Driver {
	case "sqlite", "postgres":
	default:
		missing = append(missing, "store.driver must be sqlite or postgres")
	}
	if c.Store.Driver == "postgres" && c.Store.DatabaseURL == "" {
		missing = append(missing, "store.database_url is required for postgres")
	}

	switch cmd {
	case "serve", "process":
		if c.Narrative.UseLLM && c.Anthropic.Key == "" {
			missing = append(missing, "anthropic.key is required when narrative.use_llm is set")
		}
	}
	if cmd == "serve" && (c.Server.Port <= 0 || c.Server.Port > 65535) {
		missing = append(missing, "server.port must be between 1 and 65535")
	}

	if len(missing) > 0 {
		return eris.Errorf("config: %s", strings.Join(missing, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)
	return nil
}
