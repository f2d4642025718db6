package config

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/mandelsoft/vfs/pkg/vfs"

	"go.hackfix.me/todo/xtime"
)

// Config represents the application configuration, backed by a filesystem for
// persistence.
type Config struct {
	Server    Server
	Auth      Auth
	Telemetry Telemetry

	fs   vfs.FileSystem
	path string
}

// NewConfig creates a new Config instance with the specified filesystem
// and configuration file path.
func NewConfig(fs vfs.FileSystem, path string) *Config {
	return &Config{fs: fs, path: path}
}

// Load reads and parses the configuration file from the filesystem.
// If the file doesn't exist, it initializes with an empty configuration.
func (c *Config) Load() error {
	if err := c.fs.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("failed creating configuration directory: %w", err)
	}

	configJSON, err := vfs.ReadFile(c.fs, c.path)
	if err != nil && !vfs.IsErrNotExist(err) {
		return fmt.Errorf("failed reading configuration file: %w", err)
	}

	// Ensure that unmarshalling JSON doesn't fail if the file doesn't exist or is empty.
	if len(configJSON) == 0 {
		configJSON = []byte("{}")
	}

	if err = json.Unmarshal(configJSON, c); err != nil {
		return fmt.Errorf("failed parsing configuration file: %w", err)
	}

	return nil
}

// Path returns the filesystem path where the configuration is stored.
func (c *Config) Path() string {
	return c.path
}

// Save writes the current configuration to the filesystem as JSON.
func (c *Config) Save() error {
	if err := c.fs.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("failed creating configuration directory: %w", err)
	}
	configJSON, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed serializing configuration data: %w", err)
	}
	if err = vfs.WriteFile(c.fs, c.path, configJSON, 0o644); err != nil {
		return fmt.Errorf("failed writing configuration file: %w", err)
	}

	return nil
}

// Server defines configuration options specific to the HTTP server.
type Server struct {
	// Address is the network address in [host]:port format the server will listen on.
	Address sql.Null[string] `json:"address"`
	// TokenExpiration is the amount of time issued access tokens are valid for.
	// It serializes from/to xtime.Duration string values. Minimum value: 1 minute.
	TokenExpiration sql.Null[time.Duration] `json:"token_expiration"`
}

// Auth defines authorization options.
type Auth struct {
	// PoliciesFile is the path to a YAML file with authorization policies. It's
	// reloaded when it changes.
	PoliciesFile sql.Null[string] `json:"policies_file"`
}

// Telemetry defines tracing options.
type Telemetry struct {
	// OTLPEndpoint is the host:port of an OTLP gRPC trace collector. Tracing is
	// disabled if it's not set.
	OTLPEndpoint sql.Null[string] `json:"otlp_endpoint"`
	// OTLPInsecure disables TLS when connecting to the collector.
	OTLPInsecure sql.Null[bool] `json:"otlp_insecure"`
}

type cfgWrapper struct {
	Server    srvCfgWrapper       `json:"server"`
	Auth      authCfgWrapper      `json:"auth"`
	Telemetry telemetryCfgWrapper `json:"telemetry"`
}
type srvCfgWrapper struct {
	Address         string `json:"address,omitempty"`
	TokenExpiration string `json:"token_expiration,omitempty"`
}
type authCfgWrapper struct {
	PoliciesFile string `json:"policies_file,omitempty"`
}
type telemetryCfgWrapper struct {
	OTLPEndpoint string `json:"otlp_endpoint,omitempty"`
	OTLPInsecure *bool  `json:"otlp_insecure,omitempty"`
}

// MarshalJSON implements custom JSON marshaling to convert sql.Null values
// to their underlying types, omitting invalid/null fields from the output.
func (c Config) MarshalJSON() ([]byte, error) {
	w := cfgWrapper{}

	if c.Server.Address.Valid {
		w.Server.Address = c.Server.Address.V
	}
	if c.Server.TokenExpiration.Valid {
		w.Server.TokenExpiration = xtime.FormatDuration(c.Server.TokenExpiration.V, time.Minute)
	}

	if c.Auth.PoliciesFile.Valid {
		w.Auth.PoliciesFile = c.Auth.PoliciesFile.V
	}

	if c.Telemetry.OTLPEndpoint.Valid {
		w.Telemetry.OTLPEndpoint = c.Telemetry.OTLPEndpoint.V
	}
	if c.Telemetry.OTLPInsecure.Valid {
		insecure := c.Telemetry.OTLPInsecure.V
		w.Telemetry.OTLPInsecure = &insecure
	}

	//nolint:wrapcheck // This is fine.
	return json.Marshal(w)
}

// UnmarshalJSON implements custom JSON unmarshaling to convert plain values
// into sql.Null types and parse duration strings into time.Duration values.
func (c *Config) UnmarshalJSON(data []byte) error {
	var w cfgWrapper
	if err := json.Unmarshal(data, &w); err != nil {
		//nolint:wrapcheck // This is fine.
		return err
	}

	if w.Server.Address != "" {
		c.Server.Address = sql.Null[string]{V: w.Server.Address, Valid: true}
	}
	if w.Server.TokenExpiration != "" {
		dur, err := xtime.ParseDuration(w.Server.TokenExpiration)
		if err != nil {
			return fmt.Errorf("failed parsing token expiration: %w", err)
		}
		if dur < time.Minute {
			return fmt.Errorf("token expiration must be at least 1 minute, got '%s'", w.Server.TokenExpiration)
		}
		c.Server.TokenExpiration = sql.Null[time.Duration]{V: dur, Valid: true}
	}

	if w.Auth.PoliciesFile != "" {
		c.Auth.PoliciesFile = sql.Null[string]{V: w.Auth.PoliciesFile, Valid: true}
	}

	if w.Telemetry.OTLPEndpoint != "" {
		c.Telemetry.OTLPEndpoint = sql.Null[string]{V: w.Telemetry.OTLPEndpoint, Valid: true}
	}
	if w.Telemetry.OTLPInsecure != nil {
		c.Telemetry.OTLPInsecure = sql.Null[bool]{V: *w.Telemetry.OTLPInsecure, Valid: true}
	}

	return nil
}

// SetDefaults sets default configuration values if they weren't set already.
func (c *Config) SetDefaults() {
	if !c.Server.Address.Valid {
		c.Server.Address = sql.Null[string]{V: "localhost:8080", Valid: true}
	}
	if !c.Server.TokenExpiration.Valid {
		c.Server.TokenExpiration = sql.Null[time.Duration]{V: 12 * time.Hour, Valid: true}
	}
}
