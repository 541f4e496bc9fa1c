package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Google  GoogleConfig  `yaml:"google" mapstructure:"google"`
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Redis   RedisConfig   `yaml:"redis" mapstructure:"redis"`
	Notify  NotifyConfig  `yaml:"notify" mapstructure:"notify"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
	Retry   RetryConfig   `yaml:"retry" mapstructure:"retry"`
	Circuit CircuitConfig `yaml:"circuit" mapstructure:"circuit"`
}

// GoogleConfig configures the Places API lookup.
type GoogleConfig struct {
	Key             string  `yaml:"key" mapstructure:"key"`
	BaseURL         string  `yaml:"base_url" mapstructure:"base_url"`
	Language        string  `yaml:"language" mapstructure:"language"`
	RateLimit       float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
	RadiusM         int     `yaml:"radius_m" mapstructure:"radius_m"`
	CandidateLimit  int     `yaml:"candidate_limit" mapstructure:"candidate_limit"`
	CompetitorLimit int     `yaml:"competitor_limit" mapstructure:"competitor_limit"`
	Concurrency     int     `yaml:"concurrency" mapstructure:"concurrency"`
}

// StoreConfig configures the result store backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	TTLHours    int    `yaml:"ttl_hours" mapstructure:"ttl_hours"`
	MaxEntries  int    `yaml:"max_entries" mapstructure:"max_entries"`
}

// RedisConfig configures the redis store driver.
type RedisConfig struct {
	Addr     string `yaml:"addr" mapstructure:"addr"`
	Password string `yaml:"password" mapstructure:"password"`
	DB       int    `yaml:"db" mapstructure:"db"`
}

// NotifyConfig configures lead notification delivery.
type NotifyConfig struct {
	WebhookURL  string           `yaml:"webhook_url" mapstructure:"webhook_url"`
	TimeoutSecs int              `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	Workers     int              `yaml:"workers" mapstructure:"workers"`
	QueueSize   int              `yaml:"queue_size" mapstructure:"queue_size"`
	AWSRegion   string           `yaml:"aws_region" mapstructure:"aws_region"`
	Email       EmailConfig      `yaml:"email" mapstructure:"email"`
	SMS         SMSConfig        `yaml:"sms" mapstructure:"sms"`
	Notion      NotionConfig     `yaml:"notion" mapstructure:"notion"`
	Salesforce  SalesforceConfig `yaml:"salesforce" mapstructure:"salesforce"`
}

// EmailConfig configures the SES lead summary email.
type EmailConfig struct {
	From string `yaml:"from" mapstructure:"from"`
	To   string `yaml:"to" mapstructure:"to"`
}

// SMSConfig configures the SNS lead text message.
type SMSConfig struct {
	TopicARN    string `yaml:"topic_arn" mapstructure:"topic_arn"`
	PhoneNumber string `yaml:"phone_number" mapstructure:"phone_number"`
}

// NotionConfig holds Notion API credentials and the lead database ID.
type NotionConfig struct {
	Token  string `yaml:"token" mapstructure:"token"`
	LeadDB string `yaml:"lead_db" mapstructure:"lead_db"`
}

// SalesforceConfig holds Salesforce JWT auth settings.
type SalesforceConfig struct {
	ClientID   string `yaml:"client_id" mapstructure:"client_id"`
	Username   string `yaml:"username" mapstructure:"username"`
	KeyPath    string `yaml:"key_path" mapstructure:"key_path"`
	LoginURL   string `yaml:"login_url" mapstructure:"login_url"`
	LeadSource string `yaml:"lead_source" mapstructure:"lead_source"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// RetryConfig configures retries of upstream API calls.
type RetryConfig struct {
	MaxAttempts      int     `yaml:"max_attempts" mapstructure:"max_attempts"`
	InitialBackoffMs int     `yaml:"initial_backoff_ms" mapstructure:"initial_backoff_ms"`
	MaxBackoffMs     int     `yaml:"max_backoff_ms" mapstructure:"max_backoff_ms"`
	Multiplier       float64 `yaml:"multiplier" mapstructure:"multiplier"`
	JitterFraction   float64 `yaml:"jitter_fraction" mapstructure:"jitter_fraction"`
}

// CircuitConfig configures the upstream circuit breaker.
type CircuitConfig struct {
	FailureThreshold int `yaml:"failure_threshold" mapstructure:"failure_threshold"`
	ResetTimeoutSecs int `yaml:"reset_timeout_secs" mapstructure:"reset_timeout_secs"`
}

// Load reads configuration from .env, config.yaml and the environment, in
// increasing order of precedence.
func Load() (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("VISIBILITY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Keys without a useful default are registered empty so Unmarshal
	// picks them up from the environment.
	for _, key := range []string{
		"google.key",
		"store.database_url",
		"redis.password",
		"notify.webhook_url",
		"notify.email.from",
		"notify.email.to",
		"notify.sms.topic_arn",
		"notify.sms.phone_number",
		"notify.notion.token",
		"notify.notion.lead_db",
		"notify.salesforce.client_id",
		"notify.salesforce.username",
		"notify.salesforce.key_path",
	} {
		v.SetDefault(key, "")
	}
	v.SetDefault("redis.db", 0)

	v.SetDefault("google.base_url", "https://maps.googleapis.com/maps/api/place")
	v.SetDefault("google.language", "en")
	v.SetDefault("google.rate_limit", 10)
	v.SetDefault("google.radius_m", 8000)
	v.SetDefault("google.candidate_limit", 10)
	v.SetDefault("google.competitor_limit", 5)
	v.SetDefault("google.concurrency", 4)

	v.SetDefault("store.driver", "memory")
	v.SetDefault("store.ttl_hours", 24)
	v.SetDefault("store.max_entries", 1000)

	v.SetDefault("redis.addr", "localhost:6379")

	v.SetDefault("notify.timeout_secs", 10)
	v.SetDefault("notify.workers", 2)
	v.SetDefault("notify.queue_size", 64)
	v.SetDefault("notify.aws_region", "eu-north-1")
	v.SetDefault("notify.salesforce.login_url", "https://login.salesforce.com")
	v.SetDefault("notify.salesforce.lead_source", "Visibility Report")

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("retry.max_attempts", 3)
	v.SetDefault("retry.initial_backoff_ms", 500)
	v.SetDefault("retry.max_backoff_ms", 5000)
	v.SetDefault("retry.multiplier", 2.0)
	v.SetDefault("retry.jitter_fraction", 0.25)

	v.SetDefault("circuit.failure_threshold", 5)
	v.SetDefault("circuit.reset_timeout_secs", 30)
}

// loadDotEnv loads path into the process environment when it exists.
// Variables already set in the environment win.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return eris.Wrapf(err, "config: load %s", path)
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
