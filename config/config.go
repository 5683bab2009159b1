// Package config defines the YAML configuration of the scrollrate command.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/xaionaro-go/scrollrate/preprocess"
	"github.com/xaionaro-go/scrollrate/shift"
	"github.com/xaionaro-go/scrollrate/types"
	"github.com/xaionaro-go/typing"
	"gopkg.in/yaml.v3"
)

const (
	PreprocessorBild = "bild"
	PreprocessorCV   = "cv"
)

type Config struct {
	Input        InputConfig    `yaml:"input"`
	Sampling     SamplingConfig `yaml:"sampling"`
	Crop         CropConfig     `yaml:"crop"`
	Rate         RateConfig     `yaml:"rate"`
	Preprocessor string         `yaml:"preprocessor"`
}

type InputConfig struct {
	// FPS overrides the frame rate of the input: "30", "30000/1001" or "~29.97".
	// It is mandatory for image sequences.
	FPS string `yaml:"fps,omitempty"`

	StreamIndex      *int `yaml:"stream_index,omitempty"`
	MaxForwardDecode int  `yaml:"max_forward_decode,omitempty"`
}

// SamplingConfig selects the range to sample either by frame indexes or by
// time, never both.
type SamplingConfig struct {
	StartFrame       *int           `yaml:"start_frame,omitempty"`
	EndFrame         *int           `yaml:"end_frame,omitempty"`
	StartTime        *time.Duration `yaml:"start_time,omitempty"`
	EndTime          *time.Duration `yaml:"end_time,omitempty"`
	SamplesPerSecond float64        `yaml:"samples_per_second"`
}

type CropConfig struct {
	Top    *int `yaml:"top,omitempty"`
	Bottom *int `yaml:"bottom,omitempty"`
	Left   *int `yaml:"left,omitempty"`
	Right  *int `yaml:"right,omitempty"`
}

type RateConfig struct {
	BinarizeThreshold uint8 `yaml:"binarize_threshold"`
	VoteThreshold     int   `yaml:"vote_threshold"`
}

func Default() *Config {
	return &Config{
		Sampling: SamplingConfig{
			SamplesPerSecond: 1,
		},
		Rate: RateConfig{
			BinarizeThreshold: shift.DefaultBinarizeThreshold,
			VoteThreshold:     shift.DefaultVoteThreshold,
		},
		Preprocessor: PreprocessorBild,
	}
}

// Load reads the configuration from the file, on top of the defaults.
// An empty path yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read the config file '%s': %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("unable to parse the config file '%s': %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file '%s': %w", path, err)
	}
	return cfg, nil
}

func (cfg *Config) Save(path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("unable to serialize the config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("unable to write the config file '%s': %w", path, err)
	}
	return nil
}

func (cfg *Config) Validate() error {
	if cfg.Sampling.ByTime() && (cfg.Sampling.StartFrame != nil || cfg.Sampling.EndFrame != nil) {
		return fmt.Errorf("the sampling range is defined both by frames and by time")
	}
	switch cfg.Preprocessor {
	case PreprocessorBild, PreprocessorCV:
	default:
		return fmt.Errorf("unknown preprocessor '%s'", cfg.Preprocessor)
	}
	if _, err := cfg.Input.FrameRate(); err != nil {
		return err
	}
	return nil
}

// FrameRate returns the parsed FPS override, or nil if it is not set.
func (c InputConfig) FrameRate() (*types.Rational, error) {
	if c.FPS == "" {
		return nil, nil
	}
	r, err := types.RationalFromString(c.FPS)
	if err != nil {
		return nil, fmt.Errorf("unable to parse the frame rate '%s': %w", c.FPS, err)
	}
	if r.Float64() <= 0 {
		return nil, fmt.Errorf("the frame rate must be positive, got '%s'", c.FPS)
	}
	return r, nil
}

func (c SamplingConfig) ByTime() bool {
	return c.StartTime != nil || c.EndTime != nil
}

func (c SamplingConfig) FrameRange() (start, end typing.Optional[int]) {
	return opt(c.StartFrame), opt(c.EndFrame)
}

func (c SamplingConfig) TimeRange() (start, end typing.Optional[time.Duration]) {
	return opt(c.StartTime), opt(c.EndTime)
}

func (c CropConfig) Bounds() preprocess.Bounds {
	return preprocess.Bounds{
		Top:    opt(c.Top),
		Bottom: opt(c.Bottom),
		Left:   opt(c.Left),
		Right:  opt(c.Right),
	}
}

func (cfg *Config) RateParams() shift.RateParams {
	return shift.RateParams{
		Crop:              cfg.Crop.Bounds(),
		BinarizeThreshold: cfg.Rate.BinarizeThreshold,
		VoteThreshold:     cfg.Rate.VoteThreshold,
	}
}

func opt[T any](v *T) typing.Optional[T] {
	if v == nil {
		return typing.Optional[T]{}
	}
	return typing.Opt(*v)
}
