package initializers

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the process configuration, read from the environment.
type Config struct {
	Port              string        `env:"PORT" envDefault:"8080"`
	DatabaseURL       string        `env:"DIRECT_URL,required"`
	RunMigrations     bool          `env:"RUN_MIGRATIONS" envDefault:"true"`
	MigrationsPath    string        `env:"MIGRATIONS_PATH" envDefault:"file://db/migrations"`
	LogLevel          string        `env:"LOG_LEVEL" envDefault:"info"`
	AppURL            string        `env:"APP_URL" envDefault:"http://localhost:3000"`
	JWTSecret         string        `env:"SUPABASE_JWT_SECRET,required,notEmpty"`
	DigestToken       string        `env:"ACTION_CENTER_DIGEST_TOKEN"`
	DefaultTenantSlug string        `env:"DEFAULT_TENANT_SLUG" envDefault:"demo-mpo"`
	CORSOrigins       []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
	ShutdownTimeout   time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	Storage       StorageConfig
	Search        SearchConfig
	Notifications NotificationConfig
	AI            AIConfig
}

// StorageConfig points at the S3-compatible endpoint of Supabase storage.
type StorageConfig struct {
	Region    string `env:"SUPABASE_REGION"`
	Endpoint  string `env:"SUPABASE_S3_ENDPOINT"`
	AccessKey string `env:"SUPABASE_ACCESS_KEY"`
	SecretKey string `env:"SUPABASE_SECRET_KEY"`
	Bucket    string `env:"SUPABASE_BUCKET" envDefault:"documents"`
}

// Enabled reports whether every value needed for an S3 session is set.
func (c StorageConfig) Enabled() bool {
	return c.Region != "" && c.Endpoint != "" && c.AccessKey != "" && c.SecretKey != ""
}

type SearchConfig struct {
	ElasticsearchURL string `env:"ELASTICSEARCH_URL"`
	Index            string `env:"ELASTICSEARCH_INDEX" envDefault:"documents"`
}

type NotificationConfig struct {
	SlackWebhookURL string        `env:"SLACK_WEBHOOK_URL"`
	SMTPHost        string        `env:"SMTP_HOST"`
	SMTPPort        string        `env:"SMTP_PORT" envDefault:"587"`
	SMTPUsername    string        `env:"SMTP_USERNAME"`
	SMTPPassword    string        `env:"SMTP_PASSWORD"`
	FromEmail       string        `env:"RESEND_FROM_EMAIL" envDefault:"notifications@project-manager.app"`
	AlertRecipient  string        `env:"COMMUNITY_ALERT_EMAIL"`
	Timeout         time.Duration `env:"NOTIFICATION_TIMEOUT" envDefault:"10s"`
}

type AIConfig struct {
	APIKey     string        `env:"AI_API_KEY"`
	Endpoint   string        `env:"AI_ENDPOINT" envDefault:"https://api.groq.com/openai/v1/chat/completions"`
	Model      string        `env:"AI_MODEL" envDefault:"llama-3.3-70b-versatile"`
	Timeout    time.Duration `env:"AI_TIMEOUT" envDefault:"30s"`
	MaxRetries int           `env:"AI_MAX_RETRIES" envDefault:"3"`
	RetryDelay time.Duration `env:"AI_RETRY_DELAY" envDefault:"10s"`
	RatePerMin int           `env:"AI_RATE_PER_MINUTE" envDefault:"50"`
}

// LoadConfig parses the environment into a Config.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
