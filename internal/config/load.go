package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// ErrUnsupportedFormat is returned for configuration files with an unknown extension.
var ErrUnsupportedFormat = errors.New("unsupported configuration format")

// Loader reads configuration files and logs through the given logger.
type Loader struct {
	log zerolog.Logger
}

// NewLoader creates a Loader.
func NewLoader(logger zerolog.Logger) *Loader {
	return &Loader{log: logger}
}

// Load reads a configuration file and overlays it on Default. The decoder is
// chosen by extension: .yaml, .yml and .json are YAML, .hcl is HCL.
func Load(path string) (Config, error) {
	return NewLoader(zerolog.Nop()).Load(path)
}

// Parse decodes configuration bytes without logging.
func Parse(data []byte, filename string) (Config, error) {
	return NewLoader(zerolog.Nop()).Parse(data, filename)
}

// Load reads and parses the file at path.
func (l *Loader) Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}
	return l.Parse(data, path)
}

// Parse decodes configuration bytes. The filename selects the format and is
// used in error messages.
func (l *Loader) Parse(data []byte, filename string) (Config, error) {
	format := strings.ToLower(filepath.Ext(filename))
	l.log.Debug().Str("file", filename).Str("format", format).Msg("parsing configuration")

	switch format {
	case ".yaml", ".yml", ".json":
		return parseYAML(data, filename)
	case ".hcl":
		return parseHCL(data, filename)
	default:
		return Config{}, fmt.Errorf("%s: %w %q", filename, ErrUnsupportedFormat, format)
	}
}

func parseYAML(data []byte, filename string) (Config, error) {
	cfg := Default()
	if len(bytes.TrimSpace(data)) == 0 {
		return cfg, nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing %s: %w", filename, err)
	}
	return cfg, nil
}
