package config // package config loads application configuration from environment variables

import (
    "fmt"     // fmt builds descriptive configuration errors
    "os"      // os provides access to environment variables
    "strings" // strings normalises driver names

    "github.com/joho/godotenv" // godotenv loads an optional .env file into the process environment
)

// Supported values for DB_DRIVER.
const (
    DriverMySQL  = "mysql"
    DriverSQLite = "sqlite"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Only the database connection settings of the
// selected driver are required; everything else has a default.
type Config struct {
    Env       string // application environment (e.g. "dev", "prod")
    Port      string // HTTP port to listen on
    DBDriver  string // "mysql" (default) or "sqlite"
    DBUser    string // database username (mysql)
    DBPass    string // database password (optional)
    DBHost    string // database host address (mysql)
    DBPort    string // database port number (mysql)
    DBName    string // database name (mysql)
    DBPath    string // database file path (sqlite)
    LogLevel  string // zerolog level name (debug, info, warn, error)
    LogFormat string // "json" (default) or "console"
}

// Load reads configuration values from the environment and returns a
// Config.  A .env file in the working directory is loaded first when
// present; variables already set in the environment win.  The returned
// error names the first required variable that is missing.
func Load() (Config, error) {
    _ = godotenv.Load() // no error if .env doesn't exist

    cfg := Config{
        Env:       envStr("APP_ENV", "dev"),
        Port:      envStr("APP_PORT", "5000"),
        DBDriver:  strings.ToLower(envStr("DB_DRIVER", DriverMySQL)),
        DBPass:    os.Getenv("DB_PASS"), // empty allowed
        DBPath:    envStr("DB_PATH", "data/directory.db"),
        LogLevel:  envStr("LOG_LEVEL", "info"),
        LogFormat: envStr("LOG_FORMAT", "json"),
    }

    switch cfg.DBDriver {
    case DriverMySQL:
        var err error
        if cfg.DBUser, err = requireEnv("DB_USER"); err != nil {
            return Config{}, err
        }
        if cfg.DBHost, err = requireEnv("DB_HOST"); err != nil {
            return Config{}, err
        }
        if cfg.DBPort, err = requireEnv("DB_PORT"); err != nil {
            return Config{}, err
        }
        if cfg.DBName, err = requireEnv("DB_NAME"); err != nil {
            return Config{}, err
        }
    case DriverSQLite:
        // DB_PATH has a default
    default:
        return Config{}, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
    }
    return cfg, nil
}

// requireEnv retrieves the value of a required environment variable.  An unset
// or empty variable is reported as an error.
func requireEnv(key string) (string, error) {
    v, ok := os.LookupEnv(key)
    if !ok || v == "" {
        return "", fmt.Errorf("missing required env var: %s", key)
    }
    return v, nil
}
