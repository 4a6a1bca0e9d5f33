package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server     ServerConfig     `mapstructure:"server" validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database" validate:"required"`
	Auth       AuthConfig       `mapstructure:"auth" validate:"required"`
	Queue      QueueConfig      `mapstructure:"queue" validate:"required"`
	Redis      RedisConfig      `mapstructure:"redis" validate:"required"`
	Discussion DiscussionConfig `mapstructure:"discussion" validate:"required"`
	Email      EmailConfig      `mapstructure:"email" validate:"required"`
	Platform   PlatformConfig   `mapstructure:"platform" validate:"required"`
	Task       TaskConfig       `mapstructure:"task" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// AuthConfig holds the shared secret used to verify service tokens on the
// publish endpoint.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret" validate:"required,min=32"`
	// TokenLifetimeMinutes bounds tokens issued with the -issue-token flag.
	TokenLifetimeMinutes int `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
}

// QueueConfig describes the broker the notification tasks arrive on.
type QueueConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
	// RoutingKey is both the queue name consumed and the key tasks are published with.
	RoutingKey string `mapstructure:"routing_key" validate:"required"`
	Prefetch   int    `mapstructure:"prefetch" validate:"gte=1"`
}

// RedisConfig configures the delivery guard store.
type RedisConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
	// DeliveryTTLHours bounds how long a sent notification is remembered.
	DeliveryTTLHours int `mapstructure:"delivery_ttl_hours" validate:"gte=1"`
}

// DiscussionConfig points at the discussion (comments) service.
type DiscussionConfig struct {
	BaseURL        string `mapstructure:"base_url" validate:"required,url"`
	APIKey         string `mapstructure:"api_key" validate:"required"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" validate:"gte=1"`
}

// EmailConfig contains SMTP delivery settings.
type EmailConfig struct {
	Host        string `mapstructure:"host" validate:"required,hostname|ip"`
	Port        int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
	FromAddress string `mapstructure:"from_address" validate:"required,email"`
}

// PlatformConfig holds the platform-wide defaults that site configuration
// may override when building email template context.
type PlatformConfig struct {
	Name                  string            `mapstructure:"name" validate:"required"`
	ContactEmail          string            `mapstructure:"contact_email" validate:"omitempty,email"`
	ContactMailingAddress string            `mapstructure:"contact_mailing_address"`
	LogoURL               string            `mapstructure:"logo_url"`
	HomepageURL           string            `mapstructure:"homepage_url" validate:"omitempty,url"`
	Revision              string            `mapstructure:"revision"`
	SocialMediaURLs       map[string]string `mapstructure:"social_media_urls"`
	MobileStoreURLs       map[string]string `mapstructure:"mobile_store_urls"`
	DefaultLanguage       string            `mapstructure:"default_language" validate:"required"`
	UseHTTPS              bool              `mapstructure:"use_https"`
	// TrackingID is the analytics account id (GOOGLE_ANALYTICS_ACCOUNT).
	TrackingID            string            `mapstructure:"tracking_id"`
	// AnalyticsTrackingID is used when no account id is set. With neither,
	// emails carry no tracking pixel.
	AnalyticsTrackingID   string            `mapstructure:"analytics_tracking_id"`
	UserIDCustomDimension int               `mapstructure:"user_id_custom_dimension" validate:"gte=0"`
}

// TaskConfig contains settings for the background task runner.
type TaskConfig struct {
	WorkerCount         int `mapstructure:"worker_count" validate:"required,gt=0"`
	QueueSize           int `mapstructure:"queue_size" validate:"required,gt=0"`
	StuckTaskAgeMinutes int `mapstructure:"stuck_task_age_minutes" validate:"required,gt=0"`
}
