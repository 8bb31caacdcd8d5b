package config // package config loads application configuration from environment variables

import (
    "errors"
    "fmt"
    "os"
    "strconv"
    "strings"
    "time"

    "golang.org/x/crypto/bcrypt"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.
type Config struct {
    Env         string        // application environment (e.g. "dev", "prod")
    Port        string        // HTTP port to listen on
    DBUser      string        // database username
    DBPass      string        // database password (optional)
    DBHost      string        // database host address
    DBPort      string        // database port number
    DBName      string        // database name
    AutoMigrate bool          // apply embedded migrations at startup
    JWTSecret   string        // secret used to sign session tokens
    SessionTTL  time.Duration // session token lifetime
    BcryptCost  int           // bcrypt cost for password hashing
    RabbitURL   string        // AMQP broker URL; empty disables events
    LogLevel    string        // debug | info | warn | error
}

// Load reads configuration values from environment variables and returns a
// Config.  Every missing required variable is reported in the returned error.
func Load() (Config, error) {
    var errs []error
    must := func(key string) string {
        v, ok := os.LookupEnv(key)
        if !ok || v == "" {
            errs = append(errs, fmt.Errorf("missing required env var: %s", key))
        }
        return v
    }

    cfg := Config{
        Env:         getenv("APP_ENV", "dev"),
        Port:        getenv("APP_PORT", "8080"),
        DBUser:      must("DB_USER"),
        DBPass:      os.Getenv("DB_PASS"),
        DBHost:      must("DB_HOST"),
        DBPort:      getenv("DB_PORT", "3306"),
        DBName:      must("DB_NAME"),
        AutoMigrate: envBool("DB_AUTO_MIGRATE", true),
        JWTSecret:   must("JWT_SECRET"),
        SessionTTL:  envDur("SESSION_TTL", 2*time.Hour),
        BcryptCost:  envInt("BCRYPT_COST", 10),
        RabbitURL:   os.Getenv("RABBITMQ_URL"),
        LogLevel:    getenv("LOG_LEVEL", "info"),
    }

    if cfg.BcryptCost < bcrypt.MinCost || cfg.BcryptCost > bcrypt.MaxCost {
        errs = append(errs, fmt.Errorf("BCRYPT_COST must be between %d and %d, got %d", bcrypt.MinCost, bcrypt.MaxCost, cfg.BcryptCost))
    }
    if cfg.SessionTTL <= 0 {
        errs = append(errs, fmt.Errorf("SESSION_TTL must be positive, got %s", cfg.SessionTTL))
    }
    if err := errors.Join(errs...); err != nil {
        return Config{}, err
    }
    return cfg, nil
}

// IsProd reports whether the service runs in production mode.
func (c Config) IsProd() bool { return c.Env == "prod" || c.Env == "production" }

// String masks secrets so the config can be logged at startup.
func (c Config) String() string {
    return fmt.Sprintf("Config{Env: %s, Port: %s, DB: %s@%s:%s/%s, SessionTTL: %s, BcryptCost: %d, Events: %t, JWTSecret: ***}",
        c.Env, c.Port, c.DBUser, c.DBHost, c.DBPort, c.DBName, c.SessionTTL, c.BcryptCost, c.RabbitURL != "")
}

func getenv(key, def string) string {
    if v := os.Getenv(key); v != "" {
        return v
    }
    return def
}

func envBool(k string, d bool) bool {
    switch strings.ToLower(strings.TrimSpace(os.Getenv(k))) {
    case "1", "true", "yes", "on":
        return true
    case "0", "false", "no", "off":
        return false
    }
    return d
}

func envInt(k string, d int) int {
    v := os.Getenv(k)
    if v == "" {
        return d
    }
    n, err := strconv.Atoi(v)
    if err != nil {
        return d
    }
    return n
}

func envDur(k string, d time.Duration) time.Duration {
    v := os.Getenv(k)
    if v == "" {
        return d
    }
    dur, err := time.ParseDuration(v)
    if err != nil {
        return d
    }
    return dur
}
