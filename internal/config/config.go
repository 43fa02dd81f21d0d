// Package config provides functionality for managing configuration options
// for the application using command-line flags, environment variables,
// an optional config file and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

// Defaults usable only outside production.
const (
	DefaultAddress   = ":3000"
	DefaultDriver    = "sqlite3"
	DefaultDSN       = "todoapp.db"
	DefaultJWTSecret = "todoapp-dev-secret"
	DefaultTokenTTL  = 24 * time.Hour
	DefaultLogLevel  = "info"
	DefaultConfig    = "config.json"
)

// Supported storage drivers.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

const (
	keyAddress    = "address"
	keyDriver     = "db-driver"
	keyDSN        = "dsn"
	keyJWTSecret  = "jwt-secret"
	keyTokenTTL   = "token-ttl"
	keyBcryptCost = "bcrypt-cost"
	keyLogLevel   = "log-level"
	keyCORS       = "cors-origins"
	keyTLSCert    = "tls-cert"
	keyTLSKey     = "tls-key"
	keyConfig     = "config"
	keyPort       = "port"
)

var envBindings = map[string]string{
	keyAddress:    "SERVER_ADDRESS",
	keyDriver:     "DATABASE_DRIVER",
	keyDSN:        "DATABASE_DSN",
	keyJWTSecret:  "JWT_SECRET",
	keyTokenTTL:   "TOKEN_TTL",
	keyBcryptCost: "BCRYPT_COST",
	keyLogLevel:   "LOG_LEVEL",
	keyCORS:       "CORS_ALLOWED_ORIGINS",
	keyTLSCert:    "TLS_CERT_FILE",
	keyTLSKey:     "TLS_KEY_FILE",
	keyConfig:     "CONFIG",
	keyPort:       "PORT",
}

// Options holds the configuration values for the application.
type Options struct {
	// Port defines the server's listening address (ip:port).
	Port string

	// DatabaseDriver selects the storage backend: "sqlite3" or "postgres".
	DatabaseDriver string

	// DatabaseDSN holds the database connection string (a file path for sqlite3).
	DatabaseDSN string

	// JWTSecret signs and verifies session tokens.
	JWTSecret string

	// TokenTTL is the lifetime of an issued session token.
	TokenTTL time.Duration

	// BcryptCost is the adaptive hashing cost factor.
	BcryptCost int

	// LogLevel is one of debug, info, warn, error.
	LogLevel string

	// CORSAllowedOrigins lists origins allowed to call the API.
	CORSAllowedOrigins []string

	// TLSCertFile and TLSKeyFile enable HTTPS when both are set.
	TLSCertFile string
	TLSKeyFile  string

	// Config is the path to the Config file.
	Config string
}

// RegisterFlags declares every option on fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.StringP(keyAddress, "a", DefaultAddress, "run on ip:port server")
	fs.String(keyDriver, DefaultDriver, "storage driver (sqlite3 or postgres)")
	fs.StringP(keyDSN, "d", DefaultDSN, "db address")
	fs.String(keyJWTSecret, DefaultJWTSecret, "token signing secret")
	fs.Duration(keyTokenTTL, DefaultTokenTTL, "session token lifetime")
	fs.Int(keyBcryptCost, bcrypt.DefaultCost, "bcrypt cost factor")
	fs.String(keyLogLevel, DefaultLogLevel, "log level")
	fs.StringSlice(keyCORS, []string{"*"}, "allowed CORS origins")
	fs.String(keyTLSCert, "", "TLS certificate file")
	fs.String(keyTLSKey, "", "TLS key file")
	fs.StringP(keyConfig, "c", DefaultConfig, "path to config file")
}

// Load merges the parsed flags in fs with environment variables, a .env
// file and the config file. Precedence: flag, env, config file, default.
func Load(fs *pflag.FlagSet) (*Options, error) {
	// A missing .env is the normal case.
	_ = godotenv.Load()

	v := viper.New()
	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("bind flags: %w", err)
	}
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", env, err)
		}
	}

	if path := v.GetString(keyConfig); path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("error while reading config file: %w", err)
			}
		}
	}

	options := &Options{
		Port:               v.GetString(keyAddress),
		DatabaseDriver:     v.GetString(keyDriver),
		DatabaseDSN:        v.GetString(keyDSN),
		JWTSecret:          v.GetString(keyJWTSecret),
		TokenTTL:           v.GetDuration(keyTokenTTL),
		BcryptCost:         v.GetInt(keyBcryptCost),
		LogLevel:           v.GetString(keyLogLevel),
		CORSAllowedOrigins: splitList(v.GetStringSlice(keyCORS)),
		TLSCertFile:        v.GetString(keyTLSCert),
		TLSKeyFile:         v.GetString(keyTLSKey),
		Config:             v.GetString(keyConfig),
	}

	// PORT is the conventional knob on hosting platforms.
	if !v.IsSet(keyAddress) {
		if port := v.GetString(keyPort); port != "" {
			options.Port = ":" + port
		}
	}

	if err := options.Validate(); err != nil {
		return nil, err
	}
	return options, nil
}

// Validate checks the options for values the server cannot start with.
func (o *Options) Validate() error {
	switch o.DatabaseDriver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("unsupported database driver %q", o.DatabaseDriver)
	}
	if o.DatabaseDSN == "" {
		return errors.New("database DSN is required")
	}
	if o.JWTSecret == "" {
		return errors.New("JWT secret is required")
	}
	if o.TokenTTL <= 0 {
		return fmt.Errorf("token TTL must be positive, got %s", o.TokenTTL)
	}
	if o.BcryptCost < bcrypt.MinCost || o.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("bcrypt cost must be in [%d, %d], got %d", bcrypt.MinCost, bcrypt.MaxCost, o.BcryptCost)
	}
	if (o.TLSCertFile == "") != (o.TLSKeyFile == "") {
		return errors.New("TLS requires both certificate and key files")
	}
	return nil
}

// UsesDefaultSecret reports whether tokens are signed with the built-in
// development secret.
func (o *Options) UsesDefaultSecret() bool {
	return o.JWTSecret == DefaultJWTSecret
}

// splitList flattens comma separated entries; env values arrive as a
// single element.
func splitList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// TLSEnabled reports whether the server should listen with HTTPS.
func (o *Options) TLSEnabled() bool {
	return o.TLSCertFile != "" && o.TLSKeyFile != ""
}
