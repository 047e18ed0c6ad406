// Package config loads the hook configuration file.
//
// The file is YAML unless its extension is ".toml". Values from the file are
// overlaid with XSVN_* environment variables (XSVN_AUTHORITY_TOKEN,
// XSVN_ALLOWED_USERS, ...) and then validated. A loaded Config is treated as
// immutable and passed by value or pointer to every component that needs it.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

const envPrefix = "XSVN"

var (
	// ErrNotFound means the configuration file does not exist.
	ErrNotFound = errors.New("configuration file not found")
	// ErrInvalid means the configuration file exists but cannot be used.
	ErrInvalid = errors.New("invalid configuration")
)

type Config struct {
	// TempDir holds runtime files: the hook log and the default audit database.
	TempDir      string   `yaml:"temp_dir" toml:"temp_dir" split_words:"true"`
	RepoID       string   `yaml:"repo_id" toml:"repo_id" split_words:"true"`
	AllowedUsers []string `yaml:"allowed_users" toml:"allowed_users" split_words:"true"`

	Svnlook   SvnlookConfig   `yaml:"svnlook" toml:"svnlook"`
	Authority AuthorityConfig `yaml:"authority" toml:"authority"`
	Audit     AuditConfig     `yaml:"audit" toml:"audit"`
	Telemetry TelemetryConfig `yaml:"telemetry" toml:"telemetry"`
	Log       LogConfig       `yaml:"log" toml:"log"`
}

type SvnlookConfig struct {
	Path     string `yaml:"path" toml:"path"`
	CopyInfo bool   `yaml:"copy_info" toml:"copy_info" split_words:"true"`
}

// AuthorityConfig locates the policy authority queried for non-privileged users.
type AuthorityConfig struct {
	URL     string   `yaml:"url" toml:"url"`
	Token   string   `yaml:"token" toml:"token"`
	Timeout Duration `yaml:"timeout" toml:"timeout"`
}

type AuditConfig struct {
	Enabled     bool   `yaml:"enabled" toml:"enabled"`
	DatabaseURL string `yaml:"database_url" toml:"database_url" split_words:"true"`
	AuthToken   string `yaml:"auth_token" toml:"auth_token" split_words:"true"`
}

type TelemetryConfig struct {
	Enabled  bool   `yaml:"enabled" toml:"enabled"`
	Endpoint string `yaml:"endpoint" toml:"endpoint"`
	Insecure bool   `yaml:"insecure" toml:"insecure"`
}

type LogConfig struct {
	Level string `yaml:"level" toml:"level"`
	// File receives hook logs; stderr is reserved for the committer.
	File string `yaml:"file" toml:"file"`
}

// Duration is a time.Duration written as "30s" in config files and env vars.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

func DefaultConfig() *Config {
	return &Config{
		TempDir:      filepath.Join(os.TempDir(), "xsvn"),
		AllowedUsers: []string{},
		Svnlook: SvnlookConfig{
			Path: "svnlook",
		},
		Authority: AuthorityConfig{
			Timeout: Duration{30 * time.Second},
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Exists reports whether the configuration file is present.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Load reads, overlays and validates the configuration at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("%w: reading %s: %v", ErrInvalid, path, err)
	}

	cfg := DefaultConfig()
	if err := decode(path, data, cfg); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", ErrInvalid, path, err)
	}

	if err := envconfig.Process(envPrefix, cfg); err != nil {
		return nil, fmt.Errorf("%w: environment: %v", ErrInvalid, err)
	}

	cfg.applyDerivedDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		return dec.Decode(cfg)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (c *Config) applyDerivedDefaults() {
	if c.Log.File == "" && c.TempDir != "" {
		c.Log.File = filepath.Join(c.TempDir, "xsvn.log")
	}
	if c.Audit.Enabled && c.Audit.DatabaseURL == "" && c.TempDir != "" {
		c.Audit.DatabaseURL = "file:" + filepath.Join(c.TempDir, "audit.db")
	}
	if c.Svnlook.Path == "" {
		c.Svnlook.Path = "svnlook"
	}
}

// Validate checks that every value the hook needs is present and usable.
func (c *Config) Validate() error {
	var problems []string

	if c.TempDir == "" {
		problems = append(problems, "temp_dir is required")
	}
	if strings.TrimSpace(c.RepoID) == "" {
		problems = append(problems, "repo_id is required")
	}
	if c.Authority.URL == "" {
		problems = append(problems, "authority.url is required")
	} else if !strings.HasPrefix(c.Authority.URL, "http://") && !strings.HasPrefix(c.Authority.URL, "https://") {
		problems = append(problems, fmt.Sprintf("authority.url must be http(s), got %q", c.Authority.URL))
	}
	if c.Authority.Timeout.Duration < 0 {
		problems = append(problems, "authority.timeout must not be negative")
	}
	if c.Telemetry.Enabled && c.Telemetry.Endpoint == "" {
		problems = append(problems, "telemetry.endpoint is required when telemetry is enabled")
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		problems = append(problems, err.Error())
	}
	for _, u := range c.AllowedUsers {
		if strings.TrimSpace(u) == "" {
			problems = append(problems, "allowed_users must not contain empty names")
			break
		}
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

// IsAllowedUser reports whether username bypasses policy evaluation. The
// empty username is never allowed.
func (c *Config) IsAllowedUser(username string) bool {
	if username == "" {
		return false
	}
	return slices.Contains(c.AllowedUsers, username)
}

// PrepareTempDir makes sure the temporary directory exists and is writable.
func (c *Config) PrepareTempDir() error {
	if err := os.MkdirAll(c.TempDir, 0o700); err != nil {
		return fmt.Errorf("creating temp directory %s: %w", c.TempDir, err)
	}

	probe, err := os.CreateTemp(c.TempDir, ".xsvn-probe-*")
	if err != nil {
		return fmt.Errorf("temp directory %s is not writable: %w", c.TempDir, err)
	}
	name := probe.Name()
	_ = probe.Close()
	_ = os.Remove(name)
	return nil
}
