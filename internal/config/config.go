package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// DefaultPath is read when no config path is given.
const DefaultPath = "fasta-filter.json"

type Config struct {
	InputFasta  string   `json:"input_fasta"`
	OutputFasta string   `json:"output_fasta"`
	Terms       []string `json:"terms"`
	WrapWidth   int      `json:"wrap_width"`
	IgnoreCase  bool     `json:"ignore_case"`
	Literal     bool     `json:"literal"`
	LogFile     string   `json:"log_file"`
	LogLevel    string   `json:"log_level"`
}

// LoadConfig loads a JSON config from the given path. If path is empty, looks
// for ./fasta-filter.json. A missing file yields the defaults; a file that
// exists but cannot be decoded is an error.
func LoadConfig(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}
	f, err := os.Open(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			c := &Config{}
			c.ApplyDefaults()
			return c, nil
		}
		return nil, err
	}
	defer f.Close()
	var c Config
	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	c.ApplyDefaults()
	return &c, nil
}

// ApplyDefaults fills zero values.
func (c *Config) ApplyDefaults() {
	if c.WrapWidth == 0 {
		c.WrapWidth = 80
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Validate checks the values the filter cannot run without.
func (c *Config) Validate() error {
	if c.WrapWidth < 1 {
		return fmt.Errorf("wrap_width must be at least 1, got %d", c.WrapWidth)
	}
	if _, ok := ParseLevel(c.LogLevel); !ok {
		return fmt.Errorf("unknown log_level %q", c.LogLevel)
	}
	return nil
}

// ParseLevel maps a config level name to a logger level. Unknown names map to
// info and report false.
func ParseLevel(s string) (log.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return log.DebugLevel, true
	case "info", "":
		return log.InfoLevel, true
	case "warn", "warning":
		return log.WarnLevel, true
	case "error":
		return log.ErrorLevel, true
	default:
		return log.InfoLevel, false
	}
}
