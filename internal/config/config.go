package config // package config loads application configuration from environment variables

import (
	"os"      // os provides access to environment variables

	"github.com/sirupsen/logrus" // logrus reports configuration errors and halts execution
)

// Config holds the runtime configuration of the HTTP service.  Each
// field corresponds to an environment variable.
type Config struct {
	Env       string // application environment (e.g. "dev", "prod")
	Port      string // HTTP port to listen on
	DBUser    string // database username
	DBPass    string // database password (optional)
	DBHost    string // database host address
	DBPort    string // database port number
	DBName    string // database name
	DBMaxConn int    // maximum open connections in the pool
	JWTSecret string // secret used to verify access tokens issued by the identity service
	// AutoMigrate creates missing tables on startup.  Off in production
	// where the schema is managed separately.
	AutoMigrate bool
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:         must("APP_ENV"),                 // environment (dev/test/prod)
		Port:        must("APP_PORT"),                // port to bind the HTTP server
		DBUser:      must("DB_USER"),                 // database user
		DBPass:      os.Getenv("DB_PASS"),            // database password (empty allowed)
		DBHost:      must("DB_HOST"),                 // database host
		DBPort:      must("DB_PORT"),                 // database port
		DBName:      must("DB_NAME"),                 // database name
		DBMaxConn:   envInt("DB_MAX_OPEN_CONNS", 25), // pool size
		JWTSecret:   must("JWT_SECRET"),              // secret used for verifying JWTs
		AutoMigrate: envBool("DB_AUTO_MIGRATE", false),
	}
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		logrus.WithField("key", key).Fatal("missing required env var")
	}
	return v
}
