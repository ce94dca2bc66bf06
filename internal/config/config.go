package config // package config loads application configuration from environment variables

import (
	"errors"  // errors reports missing or invalid variables
	"fmt"     // fmt formats validation messages
	"os"      // os provides access to environment variables
	"strings" // strings normalizes enum-like values

	"github.com/joho/godotenv" // godotenv preloads variables from a .env file
)

// Delete policies applied when a venue or artist still has shows.
const (
	DeleteRestrict = "restrict" // refuse the delete while shows reference the row
	DeleteCascade  = "cascade"  // delete the dependent shows in the same transaction
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.
type Config struct {
	Env          string // application environment (e.g. "dev", "prod")
	Port         string // HTTP port to listen on
	LogLevel     string // slog level name (debug, info, warn, error)
	ErrorLog     string // file receiving warn and above; empty disables it
	DBUser       string // database username
	DBPass       string // database password (optional)
	DBHost       string // database host address
	DBPort       string // database port number
	DBName       string // database name
	AutoMigrate  bool   // apply the embedded schema at startup
	SecretKey    string // secret used to sign flash cookies
	DeletePolicy string // DeleteRestrict or DeleteCascade
	AMQPURL      string // RabbitMQ URL for listing events; empty disables publishing
}

// Load reads a .env file when present, then builds a Config from the
// environment.  Every missing required variable is reported in one error.
func Load(envFiles ...string) (Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load env file: %w", err)
	}
	var missing []string
	must := func(key string) string {
		v, ok := os.LookupEnv(key)
		if !ok || v == "" {
			missing = append(missing, key)
		}
		return v
	}
	cfg := Config{
		Env:          envStr("APP_ENV", "dev"),
		Port:         must("APP_PORT"),
		LogLevel:     strings.ToLower(envStr("LOG_LEVEL", "info")),
		DBUser:       must("DB_USER"),
		DBPass:       os.Getenv("DB_PASS"), // empty allowed
		DBHost:       must("DB_HOST"),
		DBPort:       must("DB_PORT"),
		DBName:       must("DB_NAME"),
		AutoMigrate:  envBool("DB_AUTO_MIGRATE", true),
		SecretKey:    must("SECRET_KEY"),
		DeletePolicy: strings.ToLower(envStr("DELETE_POLICY", DeleteRestrict)),
		AMQPURL:      envStr("AMQP_URL", os.Getenv("RABBITMQ_URL")),
	}
	cfg.ErrorLog = errorLogPath(cfg.LogLevel)
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required env vars: %s", strings.Join(missing, ", "))
	}
	switch cfg.DeletePolicy {
	case DeleteRestrict, DeleteCascade:
	default:
		return Config{}, fmt.Errorf("invalid DELETE_POLICY %q (want %s or %s)", cfg.DeletePolicy, DeleteRestrict, DeleteCascade)
	}
	return cfg, nil
}

// errorLogPath resolves ERROR_LOG_FILE. Outside debug level it defaults to
// error.log; "off" disables the file.
func errorLogPath(level string) string {
	v := os.Getenv("ERROR_LOG_FILE")
	switch {
	case strings.EqualFold(v, "off"):
		return ""
	case v != "":
		return v
	case level == "debug":
		return ""
	}
	return "error.log"
}
