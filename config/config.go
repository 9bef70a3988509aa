package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const namespace = "SITECREW"

type HTTPEnv struct {
	Host        string   `envconfig:"HTTP_HOST" default:""`
	Port        string   `envconfig:"HTTP_PORT" default:"8080"`
	GinMode     string   `envconfig:"GIN_MODE" default:"release"`
	CORSOrigins []string `envconfig:"CORS_ORIGINS" default:"*"`
}

func (e HTTPEnv) Addr() string {
	return e.Host + ":" + e.Port
}

type DatabaseEnv struct {
	Driver       string `envconfig:"DB_DRIVER" default:"postgres"`
	DSN          string `envconfig:"DB_DSN" required:"true"`
	MaxOpenConns int    `envconfig:"DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns int    `envconfig:"DB_MAX_IDLE_CONNS" default:"5"`
	AutoMigrate  bool   `envconfig:"DB_AUTO_MIGRATE" default:"true"`
}

type AuthEnv struct {
	AccessSecret  string        `envconfig:"JWT_SECRET_KEY" required:"true"`
	RefreshSecret string        `envconfig:"JWT_REFRESH_SECRET_KEY" required:"true"`
	AccessTTL     time.Duration `envconfig:"JWT_ACCESS_TTL" default:"30m"`
	RefreshTTL    time.Duration `envconfig:"JWT_REFRESH_TTL" default:"168h"`
	Issuer        string        `envconfig:"JWT_ISSUER" default:"sitecrew"`
}

// FirebaseEnv is optional; an empty credentials file disables Firestore and FCM.
type FirebaseEnv struct {
	CredentialsFile string `envconfig:"GOOGLE_APPLICATION_CREDENTIALS_1"`
	ProjectID       string `envconfig:"FIREBASE_PROJECT_ID"`
}

func (e FirebaseEnv) Enabled() bool {
	return e.CredentialsFile != ""
}

type ChatEnv struct {
	WebhookURL string `envconfig:"CHAT_WEBHOOK_URL"`
	Channel    string `envconfig:"CHAT_CHANNEL"`
}

type WebPushEnv struct {
	VAPIDPublicKey  string `envconfig:"VAPID_PUBLIC_KEY"`
	VAPIDPrivateKey string `envconfig:"VAPID_PRIVATE_KEY"`
	VAPIDContact    string `envconfig:"VAPID_CONTACT" default:"ops@sitecrew.local"`
}

func (e WebPushEnv) Enabled() bool {
	return e.VAPIDPublicKey != "" && e.VAPIDPrivateKey != ""
}

type S3Env struct {
	Bucket     string        `envconfig:"S3_BUCKET"`
	Region     string        `envconfig:"S3_REGION" default:"ap-southeast-1"`
	Prefix     string        `envconfig:"S3_PREFIX" default:"attachments/"`
	PresignTTL time.Duration `envconfig:"S3_PRESIGN_TTL" default:"15m"`
}

type ImportEnv struct {
	// Mode is "transaction" (procedure runs as one gorm transaction) or
	// "function" (procedure is a stored function in the database).
	Mode         string `envconfig:"IMPORT_PROCEDURE_MODE" default:"transaction"`
	FunctionName string `envconfig:"IMPORT_FUNCTION_NAME" default:"import_schedule_bulk"`
}

type SchedulerEnv struct {
	ReminderSpec string `envconfig:"REMINDER_CRON" default:"0 0 7 * * *"`
	PurgeSpec    string `envconfig:"INVITE_PURGE_CRON" default:"0 30 3 * * *"`
}

type LogEnv struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEVELOPMENT" default:"false"`
}

type CacheEnv struct {
	Size int           `envconfig:"CACHE_SIZE" default:"1024"`
	TTL  time.Duration `envconfig:"CACHE_TTL" default:"5m"`
}

type Config struct {
	HTTPEnv
	DatabaseEnv
	AuthEnv
	FirebaseEnv
	ChatEnv
	WebPushEnv
	S3Env
	ImportEnv
	SchedulerEnv
	LogEnv
	CacheEnv
}

// Load reads .env (when present) and then the process environment.
func Load() (*Config, error) {
	if os.Getenv("RENDER") == "" {
		if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Warning: .env file not loaded: %v\n", err)
		}
	}
	return LoadEnv()
}

func LoadEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(namespace, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load env: %w", err)
	}
	switch cfg.DatabaseEnv.Driver {
	case "mysql", "postgres", "sqlite":
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DatabaseEnv.Driver)
	}
	switch cfg.ImportEnv.Mode {
	case "transaction", "function":
	default:
		return nil, fmt.Errorf("unsupported IMPORT_PROCEDURE_MODE %q", cfg.ImportEnv.Mode)
	}
	return &cfg, nil
}
