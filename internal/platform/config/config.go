package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	tbstrings "tallybridge/pkg/platform/strings"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr               string
	Environment        string
	LogLevel           string
	LogFormat          string
	FieldMapFile       string
	UpdateSendsCountry bool
	HTTPClientTimeout  time.Duration
	RateLimitPerMinute int // 0 disables
	TrustForwardedFor  bool
}

// Stripe holds the payments provider credentials. The public key is used
// for tokens, the secret key for everything else.
type Stripe struct {
	PublicKey  string
	SecretKey  string
	APIURL     string
	UploadsURL string
}

// Bubble holds the secondary registration API settings.
type Bubble struct {
	BaseURL string
	TestKey string
	LiveKey string

	BreakerThreshold int
	BreakerCooldown  time.Duration
}

// Kafka enables the outcome event publisher when Brokers is non-empty.
type Kafka struct {
	Brokers []string
	Topic   string
}

// Config is the full runtime configuration.
type Config struct {
	Server    Server
	Stripe    Stripe
	Bubble    Bubble
	Kafka     Kafka
	SentryDSN string
}

const defaultEnvFile = ".env"

// FromEnv builds the config from defaults, an optional .env file and the
// process environment, in increasing precedence.
func FromEnv() (Config, error) {
	v := viper.New()
	v.SetDefault("tallybridge_addr", ":3000")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
	v.SetDefault("http_client_timeout", 30*time.Second)
	v.SetDefault("rate_limit_per_minute", 0)
	v.SetDefault("bubble_base_url", "https://guestwhat.co")
	v.SetDefault("bubble_breaker_threshold", 5)
	v.SetDefault("bubble_breaker_cooldown", 30*time.Second)
	v.SetDefault("kafka_topic", "tallybridge.onboarding.outcomes")
	v.SetDefault("payments_update_sends_country", false)
	v.AutomaticEnv()

	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = defaultEnvFile
	}
	if _, err := os.Stat(envFile); err == nil {
		v.SetConfigFile(envFile)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read %s: %w", envFile, err)
		}
	} else if os.Getenv("ENV_FILE") != "" {
		return Config{}, fmt.Errorf("env file %s: %w", envFile, err)
	}

	return Config{
		Server: Server{
			Addr:               v.GetString("tallybridge_addr"),
			Environment:        v.GetString("app_env"),
			LogLevel:           v.GetString("log_level"),
			LogFormat:          v.GetString("log_format"),
			FieldMapFile:       v.GetString("field_map_file"),
			UpdateSendsCountry: v.GetBool("payments_update_sends_country"),
			HTTPClientTimeout:  v.GetDuration("http_client_timeout"),
			RateLimitPerMinute: v.GetInt("rate_limit_per_minute"),
			TrustForwardedFor:  v.GetBool("trust_forwarded_for"),
		},
		Stripe: Stripe{
			PublicKey:  v.GetString("stripe_public_key"),
			SecretKey:  v.GetString("stripe_secret_key"),
			APIURL:     v.GetString("stripe_api_url"),
			UploadsURL: v.GetString("stripe_uploads_url"),
		},
		Bubble: Bubble{
			BaseURL: strings.TrimRight(v.GetString("bubble_base_url"), "/"),
			TestKey: v.GetString("bubble_test_key"),
			LiveKey: v.GetString("bubble_live_key"),

			BreakerThreshold: v.GetInt("bubble_breaker_threshold"),
			BreakerCooldown:  v.GetDuration("bubble_breaker_cooldown"),
		},
		Kafka: Kafka{
			Brokers: tbstrings.SplitList(v.GetString("kafka_brokers"), ","),
			Topic:   v.GetString("kafka_topic"),
		},
		SentryDSN: v.GetString("sentry_dsn"),
	}, nil
}

// RequireStripe fails when either payments key is missing.
func (c Config) RequireStripe() error {
	var errs []error
	if c.Stripe.PublicKey == "" {
		errs = append(errs, errors.New("STRIPE_PUBLIC_KEY is not set"))
	}
	if c.Stripe.SecretKey == "" {
		errs = append(errs, errors.New("STRIPE_SECRET_KEY is not set"))
	}
	return errors.Join(errs...)
}

// RequireBubble fails when the key for the requested environment is missing.
func (c Config) RequireBubble(isTest bool) error {
	if isTest && c.Bubble.TestKey == "" {
		return errors.New("BUBBLE_TEST_KEY is not set")
	}
	if !isTest && c.Bubble.LiveKey == "" {
		return errors.New("BUBBLE_LIVE_KEY is not set")
	}
	return nil
}
