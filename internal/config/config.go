package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"image-viewer/internal/logger"

	"github.com/BurntSushi/toml"
)

const (
	// EnvConfigFile names an optional TOML file overriding the defaults.
	EnvConfigFile = "IMAGE_VIEWER_CONFIG"

	DecoderNative = "native"
	DecoderOpenCV = "opencv"
)

var ErrInvalid = errors.New("invalid configuration")

// Config holds all runtime configuration.
type Config struct {
	Title         string   `toml:"title"`
	AppID         string   `toml:"app_id"`
	Window        Window   `toml:"window"`
	DefaultPath   string   `toml:"default_path"`
	Images        []Image  `toml:"images"`
	FrameRate     int      `toml:"frame_rate"`
	DecodeTimeout Duration `toml:"decode_timeout"`
	Decoder       string   `toml:"decoder"`
	LogLevel      string   `toml:"log_level"`
	ResultBuffer  int      `toml:"result_buffer"`
	StatsInterval Duration `toml:"stats_interval"`
}

type Window struct {
	Width  float32 `toml:"width"`
	Height float32 `toml:"height"`
}

// Image is one of the two fixed, user-selectable files.
type Image struct {
	Label string `toml:"label"`
	Path  string `toml:"path"`
}

// Duration reads Go duration strings such as "1.5s" from TOML.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

func Default() *Config {
	return &Config{
		Title:       "hello-image-viewer",
		AppID:       "com.example.hello-image-viewer",
		Window:      Window{Width: 360, Height: 700},
		DefaultPath: "resources/drawable/1.jpg",
		Images: []Image{
			{Label: "Load Image", Path: "resources/drawable/1.jpg"},
			{Label: "Load Other Image", Path: "resources/drawable/Slice22.png"},
		},
		FrameRate:     60,
		Decoder:       DecoderNative,
		LogLevel:      "debug",
		ResultBuffer:  1,
		StatsInterval: Duration{30 * time.Second},
	}
}

// Load builds the configuration from defaults, the optional file named by
// IMAGE_VIEWER_CONFIG and the LOG_LEVEL/DEBUG environment variables.
func Load() (*Config, error) {
	cfg := Default()
	if path := os.Getenv(EnvConfigFile); path != "" {
		if err := cfg.merge(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads path on top of the defaults without consulting the environment.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if err := cfg.merge(path); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) merge(path string) error {
	meta, err := toml.DecodeFile(path, c)
	if err != nil {
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("unknown config key %q in %s: %w", undecoded[0].String(), path, ErrInvalid)
	}
	return nil
}

func (c *Config) applyEnv() {
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		c.LogLevel = level
	} else if os.Getenv("DEBUG") == "1" {
		c.LogLevel = "debug"
	}
}

func (c *Config) Validate() error {
	switch {
	case c.Window.Width <= 0 || c.Window.Height <= 0:
		return fmt.Errorf("window size %.0fx%.0f: %w", c.Window.Width, c.Window.Height, ErrInvalid)
	case c.FrameRate < 1 || c.FrameRate > 240:
		return fmt.Errorf("frame rate %d outside 1..240: %w", c.FrameRate, ErrInvalid)
	case c.DefaultPath == "":
		return fmt.Errorf("default path is empty: %w", ErrInvalid)
	case len(c.Images) != 2:
		return fmt.Errorf("need exactly 2 images, got %d: %w", len(c.Images), ErrInvalid)
	case c.DecodeTimeout.Duration < 0:
		return fmt.Errorf("negative decode timeout: %w", ErrInvalid)
	case c.StatsInterval.Duration <= 0:
		return fmt.Errorf("stats interval must be positive: %w", ErrInvalid)
	case c.ResultBuffer < 1:
		return fmt.Errorf("result buffer %d must be positive: %w", c.ResultBuffer, ErrInvalid)
	}

	for i, img := range c.Images {
		if img.Path == "" {
			return fmt.Errorf("image %d has no path: %w", i, ErrInvalid)
		}
	}

	switch c.Decoder {
	case DecoderNative, DecoderOpenCV:
	default:
		return fmt.Errorf("unknown decoder %q: %w", c.Decoder, ErrInvalid)
	}
	return nil
}

func (c *Config) Level() logger.LogLevel {
	return logger.ParseLevel(c.LogLevel)
}

// FrameInterval is the time between two render frames.
func (c *Config) FrameInterval() time.Duration {
	return time.Second / time.Duration(c.FrameRate)
}
