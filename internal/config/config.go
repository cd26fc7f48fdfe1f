// Package config provides centralized configuration management for the application.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import "time"

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server  ServerConfig
	Upload  UploadConfig
	Session SessionConfig
	Rate    RateLimitConfig
	Logging LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 0,
	// disabled so large whole-file uploads are not cut off mid-body)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"0s"`

	// WriteTimeout is the maximum duration for writing response (default: 0,
	// full-table parses of large files can exceed any fixed limit)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"0s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
}

// UploadConfig holds file upload settings.
type UploadConfig struct {
	// Dir is the directory where assembled and whole-shot uploads are stored (default: uploads)
	Dir string `env:"UPLOAD_DIR" default:"uploads"`

	// ChunkSize is the chunk size in bytes advertised to clients (default: 5MB)
	ChunkSize int64 `env:"UPLOAD_CHUNK_SIZE" default:"5242880"`

	// MaxFileSize is the maximum allowed whole-file upload size in bytes (default: 200MB)
	MaxFileSize int64 `env:"UPLOAD_MAX_FILE_SIZE" default:"209715200"`

	// MaxConcurrentParses is the maximum number of parallel table parses (default: 4)
	MaxConcurrentParses int `env:"UPLOAD_MAX_CONCURRENT_PARSES" default:"4"`

	// ParseWaitTime is how long to wait for a parse slot (default: 30s)
	ParseWaitTime time.Duration `env:"UPLOAD_PARSE_WAIT_TIME" default:"30s"`
}

// SessionConfig holds session lifecycle settings.
type SessionConfig struct {
	// FileTTL is how long a completed-file session lives without activity (default: 1h)
	FileTTL time.Duration `env:"SESSION_FILE_TTL" default:"1h"`

	// UploadTTL is how long an in-progress chunked upload lives without activity (default: 2h)
	UploadTTL time.Duration `env:"SESSION_UPLOAD_TTL" default:"2h"`

	// SweepInterval is how often the expiry sweep runs (default: 5m)
	SweepInterval time.Duration `env:"SESSION_SWEEP_INTERVAL" default:"5m"`
}

// RateLimitConfig holds rate limiting settings per time window.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the default rate limit per IP (default: 120)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"120"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	if c.Host == "" {
		return ":" + itoa(c.Port)
	}
	return c.Host + ":" + itoa(c.Port)
}

// itoa converts an int to string without importing strconv in this file.
func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	var b [20]byte
	n := len(b)
	neg := i < 0
	if neg {
		i = -i
	}
	for i > 0 {
		n--
		b[n] = byte('0' + i%10)
		i /= 10
	}
	if neg {
		n--
		b[n] = '-'
	}
	return string(b[n:])
}
