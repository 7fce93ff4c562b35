package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/fkcurrie/omega-matrix-golang/internal/types"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config represents the application configuration
type Config struct {
	Driver  types.DriverConfig  `json:"driver"`
	Display types.DisplayConfig `json:"display"`
	Player  types.PlayerConfig  `json:"player"`
	Remote  types.RemoteConfig  `json:"remote"`
}

// LoadConfig loads the configuration from a file. Fields missing from the
// file keep their default values.
func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	config := DefaultConfig()
	if err := json.NewDecoder(file).Decode(config); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Driver: types.DriverConfig{
			Backend: "cdev",
			Chip:    "gpiochip0",
		},
		Display: types.DisplayConfig{
			FPS: 60,
			Pins: types.PinConfig{
				Data:         0,
				Clock:        1,
				Latch:        2,
				RedButton:    19,
				YellowButton: 18,
			},
		},
		Player: types.PlayerConfig{
			Pattern:  "checkerboard",
			Text:     "HELLO",
			Interval: 100,
		},
		Remote: types.RemoteConfig{
			Enabled: false,
			Listen:  ":8080",
		},
	}
}

// Validate checks the configuration for values the renderer cannot use
func (c *Config) Validate() error {
	switch c.Driver.Backend {
	case "cdev", "sysfs", "omega2":
	default:
		return fmt.Errorf("%w: unknown driver backend %q", ErrInvalid, c.Driver.Backend)
	}

	if c.Display.FPS <= 0 || c.Display.FPS > 1000 {
		return fmt.Errorf("%w: fps must be between 1 and 1000, got %d", ErrInvalid, c.Display.FPS)
	}

	p := c.Display.Pins
	seen := make(map[int]string)
	for _, pin := range []struct {
		name string
		num  int
	}{
		{"data", p.Data},
		{"clock", p.Clock},
		{"latch", p.Latch},
		{"red_button", p.RedButton},
		{"yellow_button", p.YellowButton},
	} {
		if pin.num < 0 {
			return fmt.Errorf("%w: pin %s is negative", ErrInvalid, pin.name)
		}
		if other, ok := seen[pin.num]; ok {
			return fmt.Errorf("%w: pins %s and %s share %d", ErrInvalid, other, pin.name, pin.num)
		}
		seen[pin.num] = pin.name
	}

	switch c.Player.Pattern {
	case "off", "fill", "checkerboard", "text":
	case "svg":
		if c.Player.SVGPath == "" {
			return fmt.Errorf("%w: svg pattern needs svg_path", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: unknown pattern %q", ErrInvalid, c.Player.Pattern)
	}
	if c.Player.Interval <= 0 {
		return fmt.Errorf("%w: interval_ms must be positive", ErrInvalid)
	}

	if c.Remote.Enabled && c.Remote.Listen == "" {
		return fmt.Errorf("%w: remote enabled without listen address", ErrInvalid)
	}
	return nil
}
