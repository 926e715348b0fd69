// Package config loads buildpad configuration from a TOML file and
// overlays it on built-in defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/shlex"
	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/buildpad/internal/toolchain"
)

// Config is the full buildpad configuration.
type Config struct {
	Tools Tools `toml:"tools"`
	Flags Flags `toml:"flags"`
	Build Build `toml:"build"`
	Log   Log   `toml:"log"`
}

// Tools overrides the external toolchain binaries.
type Tools struct {
	Python string `toml:"python"`
	CC     string `toml:"cc"`
	CXX    string `toml:"cxx"`
	Javac  string `toml:"javac"`
	Java   string `toml:"java"`
}

// Flags holds extra compiler flags as shell-style strings.
type Flags struct {
	C   string `toml:"c"`
	CXX string `toml:"cxx"`
}

// Build controls artifact placement and console behavior.
type Build struct {
	// Dir is the per-source build directory name for compiled artifacts.
	Dir string `toml:"dir"`
	// Scrollback is the console scrollback limit in lines.
	Scrollback int `toml:"scrollback"`
}

// Log controls the application log.
type Log struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Build: Build{
			Dir:        toolchain.DefaultBuildDir,
			Scrollback: 2000,
		},
		Log: Log{
			Level: "info",
		},
	}
}

// DefaultPath returns the standard config file location,
// ~/.config/buildpad/buildpad.toml on Linux.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "buildpad", "buildpad.toml")
}

// Load reads the config file at path and overlays it on the defaults.
// A missing file is not an error; an empty path uses DefaultPath.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = DefaultPath()
		if path == "" {
			return cfg, nil
		}
	}
	path = expandHome(path)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, &ParseError{Path: path, Message: err.Error(), Err: err}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate applies fallback values for fields that cannot be zero.
func (c *Config) validate() error {
	if c.Build.Dir == "" {
		c.Build.Dir = toolchain.DefaultBuildDir
	}
	if strings.ContainsAny(c.Build.Dir, `/\`) {
		return fmt.Errorf("build.dir %q must be a bare directory name", c.Build.Dir)
	}
	if c.Build.Scrollback <= 0 {
		c.Build.Scrollback = 2000
	}
	return nil
}

// Overrides converts the configuration into toolchain overrides,
// splitting the flag strings shell-style.
func (c *Config) Overrides() (toolchain.Overrides, error) {
	cflags, err := splitFlags("flags.c", c.Flags.C)
	if err != nil {
		return toolchain.Overrides{}, err
	}
	cxxflags, err := splitFlags("flags.cxx", c.Flags.CXX)
	if err != nil {
		return toolchain.Overrides{}, err
	}

	return toolchain.Overrides{
		Python:   c.Tools.Python,
		CC:       c.Tools.CC,
		CXX:      c.Tools.CXX,
		Javac:    c.Tools.Javac,
		Java:     c.Tools.Java,
		CFlags:   cflags,
		CXXFlags: cxxflags,
		BuildDir: c.Build.Dir,
	}, nil
}

func splitFlags(key, s string) ([]string, error) {
	if s == "" {
		return nil, nil
	}
	parts, err := shlex.Split(s)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", key, err)
	}
	return parts, nil
}

// expandHome replaces a leading ~ with the user home directory.
func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// ParseError represents an error while parsing a configuration file.
type ParseError struct {
	Path    string
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error in %s: %s", e.Path, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
