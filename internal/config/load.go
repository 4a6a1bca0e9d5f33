package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// envPrefix is prepended to every environment variable, e.g. NOTIFIER_DATABASE_URL.
const envPrefix = "NOTIFIER"

// Load configuration from environment variables and optionally config files.
// Environment variables take precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvs(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")

	v.SetDefault("auth.token_lifetime_minutes", 60*24*365)

	v.SetDefault("queue.routing_key", "forum.notifications")
	v.SetDefault("queue.prefetch", 4)

	v.SetDefault("redis.delivery_ttl_hours", 72)

	v.SetDefault("discussion.timeout_seconds", 5)

	v.SetDefault("email.port", 587)

	v.SetDefault("platform.name", "Open edX")
	v.SetDefault("platform.default_language", "en")
	v.SetDefault("platform.use_https", true)

	v.SetDefault("task.worker_count", 2)
	v.SetDefault("task.queue_size", 100)
	v.SetDefault("task.stuck_task_age_minutes", 30)
}

// bindEnvs registers every key viper should look up in the environment.
// AutomaticEnv only resolves keys viper already knows about, so keys without
// defaults must be bound explicitly for Unmarshal to see them.
func bindEnvs(v *viper.Viper) {
	keys := []string{
		"server.port", "server.log_level",
		"database.url",
		"auth.jwt_secret", "auth.token_lifetime_minutes",
		"queue.url", "queue.routing_key", "queue.prefetch",
		"redis.url", "redis.delivery_ttl_hours",
		"discussion.base_url", "discussion.api_key", "discussion.timeout_seconds",
		"email.host", "email.port", "email.username", "email.password", "email.from_address",
		"platform.name", "platform.contact_email", "platform.contact_mailing_address",
		"platform.logo_url", "platform.homepage_url", "platform.revision", "platform.default_language",
		"platform.use_https", "platform.tracking_id", "platform.analytics_tracking_id", "platform.user_id_custom_dimension",
		"task.worker_count", "task.queue_size", "task.stuck_task_age_minutes",
	}
	for _, key := range keys {
		// BindEnv only fails when given no key.
		_ = v.BindEnv(key)
	}
}
