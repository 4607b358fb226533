package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// DefaultPath is read when no config path is given. Its absence is not an error.
const DefaultPath = "config.json"

// DefaultOutput is the output FASTA written when none is configured.
const DefaultOutput = "new_headers.fasta"

type Config struct {
	Report           string `mapstructure:"report"`
	Assembly         string `mapstructure:"assembly"`
	InputFasta       string `mapstructure:"input_fasta"`
	OutputFasta      string `mapstructure:"output_fasta"`
	LineWidth        int    `mapstructure:"line_width"`
	RejectDuplicates bool   `mapstructure:"reject_duplicates"`
	LogFile          string `mapstructure:"log_file"`
	LogLevel         string `mapstructure:"log_level"`
	NcbiCachePath    string `mapstructure:"ncbi_cache_path"`
	NcbiCacheTTLSecs int64  `mapstructure:"ncbi_cache_ttl_seconds"`
}

var defaults = map[string]any{
	"report":                 "",
	"assembly":               "",
	"input_fasta":            "",
	"output_fasta":           DefaultOutput,
	"line_width":             60,
	"reject_duplicates":      false,
	"log_file":               "",
	"log_level":              "info",
	"ncbi_cache_path":        "",
	"ncbi_cache_ttl_seconds": 0,
}

// LoadConfig loads a JSON config from the given path. If path is empty, looks for ./config.json
// and falls back to defaults when it does not exist. Every key can also be set through
// a REFHEADERS_<KEY> environment variable, which wins over the file.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetEnvPrefix("refheaders")
	v.AutomaticEnv()

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}
	_, statErr := os.Stat(path)
	switch {
	case statErr == nil:
		v.SetConfigFile(path)
		v.SetConfigType("json")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	case explicit || !errors.Is(statErr, os.ErrNotExist):
		return nil, fmt.Errorf("config %s: %w", path, statErr)
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}
	return &c, nil
}

// Validate checks that the config names exactly one metadata source and an input FASTA.
func (c *Config) Validate() error {
	switch {
	case c.Report == "" && c.Assembly == "":
		return errors.New("no assembly report given (set report or assembly)")
	case c.Report != "" && c.Assembly != "":
		return errors.New("report and assembly are mutually exclusive")
	case c.InputFasta == "":
		return errors.New("no input FASTA given")
	case c.LineWidth < 1:
		return fmt.Errorf("line_width must be positive, got %d", c.LineWidth)
	}
	return nil
}
