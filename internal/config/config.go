// Package config provides unified configuration loading for poleposition.
// It supports loading from YAML files and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/nvandessel/poleposition/internal/logging"
	"github.com/nvandessel/poleposition/internal/store"
)

// FileName is the config file looked up in the working directory.
const FileName = "poleposition.yaml"

var validate = validator.New()

// Config contains all poleposition configuration settings.
type Config struct {
	// Data locates the simulation artifacts.
	Data DataConfig `json:"data" yaml:"data"`

	// Server configures the HTTP API.
	Server ServerConfig `json:"server" yaml:"server"`

	// Logging contains settings for operational and decision logging.
	Logging LoggingConfig `json:"logging" yaml:"logging"`

	// Audit configures the tool-call audit log.
	Audit AuditConfig `json:"audit" yaml:"audit"`
}

// DataConfig locates the artifacts the simulation bundle is loaded from.
// Paths may be local files or gs://bucket/object URLs and support ${VAR}
// expansion.
type DataConfig struct {
	// BundlePath is the JSON simulation bundle or a compiled .db snapshot.
	BundlePath string `json:"bundle_path" yaml:"bundle_path" validate:"required"`

	// PointsPath optionally overrides the bundle's points matrix with an
	// Arrow IPC file.
	PointsPath string `json:"points_path,omitempty" yaml:"points_path,omitempty"`

	// TeamsPath and NamesPath are the CSV lookup tables. Both are required
	// unless BundlePath is a snapshot.
	TeamsPath string `json:"teams_path" yaml:"teams_path"`
	NamesPath string `json:"names_path" yaml:"names_path"`

	TeamColumn string `json:"team_column" yaml:"team_column" validate:"required"`
	NameColumn string `json:"name_column" yaml:"name_column" validate:"required"`

	// NameOverrides supply display names for drivers missing from the names
	// table. They are applied in order after the table is read.
	NameOverrides []store.NameOverride `json:"name_overrides" yaml:"name_overrides" validate:"dive"`
}

// Sources converts the data settings into store sources.
func (d DataConfig) Sources() store.Sources {
	return store.Sources{
		BundlePath:    d.BundlePath,
		PointsPath:    d.PointsPath,
		TeamsPath:     d.TeamsPath,
		NamesPath:     d.NamesPath,
		TeamColumn:    d.TeamColumn,
		NameColumn:    d.NameColumn,
		NameOverrides: append([]store.NameOverride(nil), d.NameOverrides...),
	}
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	// Addr is the listen address, e.g. ":8000".
	Addr string `json:"addr" yaml:"addr" validate:"required"`

	// AllowedOrigins are the CORS origins allowed to call the API and open
	// WebSocket sessions.
	AllowedOrigins []string `json:"allowed_origins" yaml:"allowed_origins" validate:"dive,required"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout" validate:"gte=0"`
}

// LoggingConfig configures logging behavior.
type LoggingConfig struct {
	// Level sets the log verbosity: "info" (default), "debug", or "trace".
	// "debug" enables resolution decision logging to decisions.jsonl in
	// the audit directory.
	Level string `json:"level" yaml:"level"`
}

// AuditConfig configures the JSONL audit log of tool calls.
type AuditConfig struct {
	Enabled bool `json:"enabled" yaml:"enabled"`
	// Dir holds audit.jsonl and decisions.jsonl. Defaults to
	// ~/.poleposition.
	Dir string `json:"dir" yaml:"dir"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Data: DataConfig{
			BundlePath: "data/predictions/sim_data.json",
			TeamsPath:  "data/features_2026.csv",
			NamesPath:  "data/race_results_2025.csv",
			TeamColumn: store.DefaultTeamColumn,
			NameColumn: store.DefaultNameColumn,
			NameOverrides: []store.NameOverride{
				{Code: "BOT", Name: "Valtteri Bottas"},
				{Code: "PER", Name: "Sergio Perez"},
				{Code: "LIN", Name: "Arvid Lindblad"},
			},
		},
		Server: ServerConfig{
			Addr:            ":8000",
			AllowedOrigins:  []string{"http://localhost:5173"},
			ShutdownTimeout: 5 * time.Second,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Audit: AuditConfig{
			Enabled: true,
			Dir:     defaultAuditDir(),
		},
	}
}

func defaultAuditDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".poleposition"
	}
	return filepath.Join(home, ".poleposition")
}

// Load loads configuration from the default locations and environment variables.
// Order: defaults -> ./poleposition.yaml, else ~/.poleposition/config.yaml ->
// environment variables.
func Load() (*Config, error) {
	config := Default()

	for _, path := range defaultPaths() {
		if _, statErr := os.Stat(path); statErr != nil {
			continue
		}
		fileConfig, loadErr := LoadFromFile(path)
		if loadErr != nil {
			return nil, fmt.Errorf("loading config file: %w", loadErr)
		}
		config = fileConfig
		break
	}

	applyEnvOverrides(config)

	return config, nil
}

func defaultPaths() []string {
	paths := []string{FileName}
	if homeDir, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(homeDir, ".poleposition", "config.yaml"))
	}
	return paths
}

// LoadFromFile loads configuration from a specific YAML file, then applies
// environment overrides.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	d := &config.Data
	d.BundlePath = expandEnvVars(d.BundlePath)
	d.PointsPath = expandEnvVars(d.PointsPath)
	d.TeamsPath = expandEnvVars(d.TeamsPath)
	d.NamesPath = expandEnvVars(d.NamesPath)
	config.Audit.Dir = expandEnvVars(config.Audit.Dir)

	applyEnvOverrides(config)

	return config, nil
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, len(verrs))
			for i, fe := range verrs {
				msgs[i] = fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag())
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}

	if !store.IsSnapshotPath(c.Data.BundlePath) {
		if c.Data.TeamsPath == "" {
			return errors.New("data.teams_path is required unless bundle_path is a snapshot")
		}
		if c.Data.NamesPath == "" {
			return errors.New("data.names_path is required unless bundle_path is a snapshot")
		}
	}

	for i, o := range c.Data.NameOverrides {
		if strings.TrimSpace(o.Code) == "" || strings.TrimSpace(o.Name) == "" {
			return fmt.Errorf("data.name_overrides[%d] needs both code and name", i)
		}
	}

	if c.Logging.Level != "" && !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("invalid log level: %s (valid: error, warn, info, debug, trace, or empty for default)", c.Logging.Level)
	}

	if c.Audit.Enabled && c.Audit.Dir == "" {
		return errors.New("audit.dir is required when audit is enabled")
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("SIM_DATA_PATH"); v != "" {
		config.Data.BundlePath = v
	}
	if v := os.Getenv("SIM_POINTS_PATH"); v != "" {
		config.Data.PointsPath = v
	}
	if v := os.Getenv("FEATURES_2026_PATH"); v != "" {
		config.Data.TeamsPath = v
	}
	if v := os.Getenv("RESULTS_PATH"); v != "" {
		config.Data.NamesPath = v
	}

	if v := os.Getenv("POLEPOSITION_ADDR"); v != "" {
		config.Server.Addr = v
	}
	if v := os.Getenv("POLEPOSITION_ALLOWED_ORIGINS"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		config.Server.AllowedOrigins = origins
	}

	if v := os.Getenv("POLEPOSITION_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}

	if v := os.Getenv("POLEPOSITION_AUDIT_DIR"); v != "" {
		config.Audit.Dir = v
	}
	if v := os.Getenv("POLEPOSITION_AUDIT"); v != "" {
		config.Audit.Enabled = v == "true" || v == "1"
	}
}

// expandEnvVars expands ${VAR} patterns in a string with environment variable values.
func expandEnvVars(s string) string {
	if !strings.Contains(s, "${") {
		return s
	}
	return os.Expand(s, os.Getenv)
}
