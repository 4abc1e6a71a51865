// Package config provides configuration management for gitrun. Settings are
// read from an optional YAML file first, with environment variables taking
// precedence, and sensible defaults underneath.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// TransferProgressMode selects which large-file transfer progress variant
// the runner consumes.
type TransferProgressMode string

const (
	// TransferProgressStderr parses the inline stderr lines git-lfs prints.
	// This is the default.
	TransferProgressStderr TransferProgressMode = "stderr"
	// TransferProgressSidecar tails the progress file named by
	// GIT_LFS_PROGRESS.
	TransferProgressSidecar TransferProgressMode = "sidecar"
)

// Config holds gitrun configuration.
type Config struct {
	// GitPath is the git binary to invoke. Defaults to "git", resolved
	// through PATH.
	GitPath string `yaml:"git_path"`

	// CredentialHelper is a credential helper injected into every
	// invocation via `-c credential.helper=...`.
	CredentialHelper string `yaml:"credential_helper"`

	// Home overrides HOME/USERPROFILE for spawned processes.
	Home string `yaml:"home"`

	// PathPrefixes are directories prepended to PATH for spawned processes.
	PathPrefixes []string `yaml:"path_prefixes"`

	// TransferProgress picks the LFS progress variant.
	TransferProgress TransferProgressMode `yaml:"transfer_progress"`

	// Trace enables GIT_TRACE capture and trace event emission.
	Trace bool `yaml:"trace"`

	// Timeout, when positive, bounds each invocation. Zero means no
	// timeout; callers can still cancel through the context.
	Timeout time.Duration `yaml:"timeout"`
}

// Default returns the built-in defaults.
func Default() *Config {
	return &Config{
		GitPath:          "git",
		TransferProgress: TransferProgressStderr,
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// path is empty or the file does not exist), and the environment, in that
// order of increasing precedence.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.loadEnv(); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) loadEnv() error {
	if v := os.Getenv("GITRUN_GIT_PATH"); v != "" {
		c.GitPath = v
	}
	if v := os.Getenv("GITRUN_CREDENTIAL_HELPER"); v != "" {
		c.CredentialHelper = v
	}
	if v := os.Getenv("GITRUN_HOME"); v != "" {
		c.Home = v
	}
	if v := os.Getenv("GITRUN_PATH_PREFIXES"); v != "" {
		c.PathPrefixes = splitNonEmpty(v, string(os.PathListSeparator))
	}
	if v := os.Getenv("GITRUN_LFS_PROGRESS"); v != "" {
		c.TransferProgress = TransferProgressMode(strings.ToLower(v))
	}
	if v := os.Getenv("GITRUN_TRACE"); v != "" {
		c.Trace = v == "true" || v == "1"
	}
	if v := os.Getenv("GITRUN_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid GITRUN_TIMEOUT %q: %w", v, err)
		}
		c.Timeout = d
	}
	return nil
}

func (c *Config) validate() error {
	if c.GitPath == "" {
		return fmt.Errorf("git path must not be empty")
	}
	switch c.TransferProgress {
	case TransferProgressStderr, TransferProgressSidecar:
	default:
		return fmt.Errorf("invalid transfer progress mode %q", c.TransferProgress)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	return nil
}

func splitNonEmpty(s, sep string) []string {
	var out []string
	for _, part := range strings.Split(s, sep) {
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
