// Config loads configuration.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

const Version = "0.4"

// GetInt loads the environment variable varName, converts it to an integer,
// and returns that integer or an error.
func GetInt(varName string) (int, error) {
	envVar := os.Getenv(varName)
	return strconv.Atoi(envVar)
}

// GetIntOr is like GetInt, but returns fallback if varName is unset or not an
// integer.
func GetIntOr(varName string, fallback int) int {
	i, err := GetInt(varName)
	if err != nil {
		return fallback
	}
	return i
}

// GetFloatOr returns varName parsed as a float, or fallback if it is unset or
// invalid.
func GetFloatOr(varName string, fallback float64) float64 {
	f, err := strconv.ParseFloat(os.Getenv(varName), 64)
	if err != nil {
		return fallback
	}
	return f
}

// GetDurationOr returns varName parsed with time.ParseDuration ("5s",
// "250ms"), or fallback if it is unset or invalid.
func GetDurationOr(varName string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(varName))
	if err != nil {
		return fallback
	}
	return d
}

// GetStringOr returns the value of varName, or fallback if it is unset or
// empty.
func GetStringOr(varName string, fallback string) string {
	if v := os.Getenv(varName); v != "" {
		return v
	}
	return fallback
}

// GetURL parses the URL stored in urlEnvVar.
func GetURL(urlEnvVar string) (*url.URL, error) {
	raw := os.Getenv(urlEnvVar)
	if raw == "" {
		return nil, fmt.Errorf("No URL configured. Please set %s", urlEnvVar)
	}
	parsedUrl, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("Invalid url in %s: %s. %s", urlEnvVar, raw, err.Error())
	}
	return parsedUrl, nil
}

// SetMaxIdleConnsPerHost sets the MaxIdleConnsPerHost value for the default
// HTTP transport. If you are using a custom transport, calling this function
// won't change anything.
func SetMaxIdleConnsPerHost(maxConns int) {
	http.DefaultTransport.(*http.Transport).MaxIdleConnsPerHost = maxConns
}

// Server holds the settings of the API server.
type Server struct {
	DatabaseURL                  string
	DBDriver                     string
	DBConns                      int
	AcquireTimeout               time.Duration
	Port                         string
	LogLevel                     slog.Level
	AllowedOrigins               []string
	RateLimitRPS                 float64
	RateLimitBurst               int
	RedisURL                     string
	MetricsLogInterval           time.Duration
	AllowUnencryptedProxyTraffic bool
	TrustProxyHeaders            bool
	DebugHTTPTraffic             bool
}

// LoadServer reads the server settings from the environment.
func LoadServer() (*Server, error) {
	cfg := &Server{
		DatabaseURL:                  os.Getenv("DATABASE_URL"),
		DBDriver:                     GetStringOr("DB_DRIVER", "postgres"),
		DBConns:                      GetIntOr("PG_SERVER_POOL_SIZE", 10),
		AcquireTimeout:               GetDurationOr("DB_ACQUIRE_TIMEOUT", 5*time.Second),
		Port:                         GetStringOr("PORT", "4000"),
		LogLevel:                     ParseLevel(os.Getenv("LOG_LEVEL")),
		AllowedOrigins:               splitList(GetStringOr("CORS_ALLOWED_ORIGINS", "*")),
		RateLimitRPS:                 GetFloatOr("RATE_LIMIT_RPS", 20),
		RateLimitBurst:               GetIntOr("RATE_LIMIT_BURST", 40),
		RedisURL:                     os.Getenv("REDIS_URL"),
		MetricsLogInterval:           GetDurationOr("METRICS_LOG_INTERVAL", 0),
		AllowUnencryptedProxyTraffic: os.Getenv("ALLOW_UNENCRYPTED_PROXY_TRAFFIC") == "true",
		TrustProxyHeaders:            os.Getenv("TRUST_PROXY_HEADERS") == "true",
		DebugHTTPTraffic:             os.Getenv("DEBUG_HTTP_TRAFFIC") == "true",
	}
	if cfg.DatabaseURL == "" {
		return nil, errors.New("config: No value provided for DATABASE_URL, cannot connect")
	}
	if cfg.DBDriver != "postgres" && cfg.DBDriver != "pgx" {
		return nil, fmt.Errorf("config: Unknown DB_DRIVER %q, use postgres or pgx", cfg.DBDriver)
	}
	if cfg.DBConns <= 0 {
		return nil, fmt.Errorf("config: PG_SERVER_POOL_SIZE must be positive, got %d", cfg.DBConns)
	}
	return cfg, nil
}

// ParseLevel converts "debug", "info", "warn" or "error" to a slog.Level.
// Anything else is info.
func ParseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return l
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
