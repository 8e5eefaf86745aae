package config // package config loads application configuration from environment variables

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all runtime configuration values.  Every leaf field maps to
// one environment variable named by its envconfig tag; defaults apply when
// the variable is unset.
type Config struct {
	Env  string `envconfig:"APP_ENV" default:"dev"`  // application environment (dev/test/prod)
	Port string `envconfig:"APP_PORT" default:"8080"` // HTTP port to listen on

	Store     StoreConfig
	Identity  IdentityConfig
	RateLimit RateLimitConfig
	Redis     RedisConfig
	AMQP      AMQPConfig
	Log       LogConfig
	Tracing   TracingConfig

	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
}

// StoreConfig selects and configures the document-store backend.
type StoreConfig struct {
	Driver string `envconfig:"DOCSTORE_DRIVER" default:"memory"` // firestore | mongo | mysql | memory

	FirestoreProjectID string `envconfig:"FIRESTORE_PROJECT_ID"`
	CredentialsFile    string `envconfig:"GOOGLE_APPLICATION_CREDENTIALS"`

	MongoURI      string `envconfig:"MONGO_URI" default:"mongodb://localhost:27017"`
	MongoDatabase string `envconfig:"MONGO_DATABASE" default:"automarket"`

	DBUser string `envconfig:"DB_USER"`
	DBPass string `envconfig:"DB_PASS"` // empty allowed
	DBHost string `envconfig:"DB_HOST"`
	DBPort string `envconfig:"DB_PORT" default:"3306"`
	DBName string `envconfig:"DB_NAME"`
}

// IdentityConfig picks how bearer tokens are verified.
type IdentityConfig struct {
	Mode              string `envconfig:"AUTH_MODE" default:"firebase"` // firebase | dev
	FirebaseProjectID string `envconfig:"FIREBASE_PROJECT_ID"`
	JWKSURL           string `envconfig:"AUTH_JWKS_URL"`
	DevSecret         string `envconfig:"DEV_JWT_SECRET"`
}

type AMQPConfig struct {
	URL      string `envconfig:"RABBITMQ_URL"` // empty disables listing events
	Exchange string `envconfig:"LISTING_EVENTS_EXCHANGE" default:"marketplace.listings"`

	BufferSize  int           `envconfig:"LISTING_EVENTS_BUFFER" default:"256"`
	DialTimeout time.Duration `envconfig:"RABBITMQ_DIAL_TIMEOUT" default:"3s"`
	RetryAfter  time.Duration `envconfig:"RABBITMQ_RETRY_AFTER" default:"5s"`
}

type LogConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Format string `envconfig:"LOG_FORMAT"` // json | console; empty picks by APP_ENV
	File   string `envconfig:"LOG_FILE"`
}

type TracingConfig struct {
	Endpoint    string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"` // empty disables export
	ServiceName string `envconfig:"OTEL_SERVICE_NAME" default:"marketplace-api"`
}

// Load reads an optional .env file and then the process environment.
// Variables already set in the environment win over the file.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return Config{}, err
	}
	c.RateLimit.normalize()
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate rejects combinations that cannot start a working server.
func (c Config) Validate() error {
	switch strings.ToLower(c.Store.Driver) {
	case "memory":
	case "firestore":
		if c.Store.FirestoreProjectID == "" {
			return errors.New("FIRESTORE_PROJECT_ID is required for the firestore driver")
		}
	case "mongo":
		if c.Store.MongoURI == "" || c.Store.MongoDatabase == "" {
			return errors.New("MONGO_URI and MONGO_DATABASE are required for the mongo driver")
		}
	case "mysql":
		if c.Store.DBHost == "" || c.Store.DBUser == "" || c.Store.DBName == "" {
			return errors.New("DB_HOST, DB_USER and DB_NAME are required for the mysql driver")
		}
	default:
		return fmt.Errorf("unknown DOCSTORE_DRIVER %q", c.Store.Driver)
	}

	switch strings.ToLower(c.Identity.Mode) {
	case "firebase":
		if c.Identity.FirebaseProjectID == "" {
			return errors.New("FIREBASE_PROJECT_ID is required when AUTH_MODE=firebase")
		}
	case "dev":
		if c.Identity.DevSecret == "" {
			return errors.New("DEV_JWT_SECRET is required when AUTH_MODE=dev")
		}
		if strings.EqualFold(c.Env, "prod") {
			return errors.New("AUTH_MODE=dev is not allowed when APP_ENV=prod")
		}
	default:
		return fmt.Errorf("unknown AUTH_MODE %q", c.Identity.Mode)
	}
	return nil
}

// IsDev reports whether the service runs in a development environment.
func (c Config) IsDev() bool {
	return c.Env == "" || strings.EqualFold(c.Env, "dev") || strings.EqualFold(c.Env, "local")
}
