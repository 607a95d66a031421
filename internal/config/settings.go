package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/havonz/file-split-packer/internal/model"
)

// configName is the config file name without extension.
const configName = ".splitpack"

// configType is the config file format.
const configType = "yaml"

// envPrefix is the environment variable prefix, e.g. SPLITPACK_PART_SIZE.
const envPrefix = "SPLITPACK"

// Settings holds all configuration options.
type Settings struct {
	// Output
	OutputDir string `mapstructure:"output_dir" yaml:"output_dir"`
	Overwrite bool   `mapstructure:"overwrite" yaml:"overwrite"`

	// Splitting. SplitBy is "size" or "count"; PartSize accepts
	// human-readable sizes such as "100MiB".
	SplitBy      string `mapstructure:"split_by" yaml:"split_by"`
	PartSize     string `mapstructure:"part_size" yaml:"part_size"`
	PartCount    uint64 `mapstructure:"part_count" yaml:"part_count"`
	Strategy     string `mapstructure:"strategy" yaml:"strategy"`
	DirSplitMode string `mapstructure:"dir_split_mode" yaml:"dir_split_mode"`

	// Compression
	CompressionLevel int `mapstructure:"compression_level" yaml:"compression_level"`
	Workers          int `mapstructure:"workers" yaml:"workers"`

	// Restore
	AutoExtract bool `mapstructure:"auto_extract" yaml:"auto_extract"`

	// Logging
	LogFile string `mapstructure:"log_file" yaml:"log_file"`
	Debug   bool   `mapstructure:"debug" yaml:"debug"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	return &Settings{
		OutputDir: "",
		Overwrite: false,

		SplitBy:      model.SplitBySize.String(),
		PartSize:     "100MiB",
		PartCount:    2,
		Strategy:     model.SplitThenZip.String(),
		DirSplitMode: model.DirModeCompressSplitStore.String(),

		CompressionLevel: -1,
		Workers:          0,

		AutoExtract: false,
	}
}

// Load reads settings from path, or from .splitpack.yaml in the working
// directory or $HOME when path is empty. SPLITPACK_* environment
// variables override file values. A missing file yields the defaults.
func Load(path string) (*Settings, error) {
	v := viper.New()
	applyDefaults(v)

	v.SetConfigType(configType)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configName)
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !(path != "" && errors.Is(err, os.ErrNotExist)) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &s, nil
}

func applyDefaults(v *viper.Viper) {
	d := DefaultSettings()
	v.SetDefault("output_dir", d.OutputDir)
	v.SetDefault("overwrite", d.Overwrite)
	v.SetDefault("split_by", d.SplitBy)
	v.SetDefault("part_size", d.PartSize)
	v.SetDefault("part_count", d.PartCount)
	v.SetDefault("strategy", d.Strategy)
	v.SetDefault("dir_split_mode", d.DirSplitMode)
	v.SetDefault("compression_level", d.CompressionLevel)
	v.SetDefault("workers", d.Workers)
	v.SetDefault("auto_extract", d.AutoExtract)
	v.SetDefault("log_file", d.LogFile)
	v.SetDefault("debug", d.Debug)
}

// Save writes settings to a YAML file.
func (s *Settings) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate checks that every enumerated field parses.
func (s *Settings) Validate() error {
	if _, err := model.ParseSplitUnit(s.SplitBy); err != nil {
		return err
	}
	if _, err := model.ParseStrategy(s.Strategy); err != nil {
		return err
	}
	if _, err := model.ParseDirSplitMode(s.DirSplitMode); err != nil {
		return err
	}
	if _, err := s.PartSizeBytes(); err != nil {
		return err
	}
	if s.CompressionLevel < -1 || s.CompressionLevel > 9 {
		return fmt.Errorf("%w: got %d", model.ErrInvalidLevel, s.CompressionLevel)
	}
	if s.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", s.Workers)
	}
	return nil
}

// PartSizeBytes parses PartSize, accepting forms like "100MiB", "1.5 GB"
// or a plain byte count.
func (s *Settings) PartSizeBytes() (uint64, error) {
	n, err := humanize.ParseBytes(s.PartSize)
	if err != nil {
		return 0, fmt.Errorf("part size %q: %w", s.PartSize, err)
	}
	return n, nil
}

// ToSplitRequest builds a split request for input. An empty OutputDir
// places parts next to the input.
func (s *Settings) ToSplitRequest(input, password string) (model.SplitRequest, error) {
	unit, err := model.ParseSplitUnit(s.SplitBy)
	if err != nil {
		return model.SplitRequest{}, err
	}
	strategy, err := model.ParseStrategy(s.Strategy)
	if err != nil {
		return model.SplitRequest{}, err
	}
	mode, err := model.ParseDirSplitMode(s.DirSplitMode)
	if err != nil {
		return model.SplitRequest{}, err
	}
	size, err := s.PartSizeBytes()
	if err != nil {
		return model.SplitRequest{}, err
	}

	level := s.CompressionLevel
	return model.SplitRequest{
		InputPath:        input,
		OutputDir:        s.outputFor(input),
		Unit:             unit,
		Size:             size,
		Count:            s.PartCount,
		Strategy:         strategy,
		Password:         password,
		DirMode:          mode,
		Overwrite:        s.Overwrite,
		CompressionLevel: &level,
	}, nil
}

// ToRestoreRequest builds a restore request for input, a part file or a
// directory of parts.
func (s *Settings) ToRestoreRequest(input, password string) (model.RestoreRequest, error) {
	strategy, err := model.ParseStrategy(s.Strategy)
	if err != nil {
		return model.RestoreRequest{}, err
	}
	return model.RestoreRequest{
		InputPath:   input,
		OutputDir:   s.outputFor(input),
		Strategy:    strategy,
		Password:    password,
		AutoExtract: s.AutoExtract,
	}, nil
}

func (s *Settings) outputFor(input string) string {
	if s.OutputDir != "" {
		return s.OutputDir
	}
	return filepath.Dir(filepath.Clean(input))
}
