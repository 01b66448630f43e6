package stream

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v2"
)

// ErrConfig is returned when a configuration file fails validation.
var ErrConfig = errors.New("stream: invalid config")

// MarkerConfig places a marker in the scene at startup.
type MarkerConfig struct {
	ID       string  `yaml:"id" toml:"id"`
	X        float64 `yaml:"x" toml:"x"`
	Altitude float64 `yaml:"altitude" toml:"altitude"`
	Radius   float64 `yaml:"radius" toml:"radius"`
	Color    string  `yaml:"color" toml:"color"`
	Mode     string  `yaml:"mode" toml:"mode"`
}

// BackdropConfig chooses what is drawn behind the markers.
type BackdropConfig struct {
	Type     string   `yaml:"type" toml:"type"`
	Colors   []string `yaml:"colors" toml:"colors"`
	Length   int      `yaml:"length" toml:"length"`
	Speed    float64  `yaml:"speed" toml:"speed"`
	Chance   float64  `yaml:"chance" toml:"chance"`
	PeriodMs int      `yaml:"periodMs" toml:"period_ms"`
}

// Period is how long one twinkle lasts.
func (b BackdropConfig) Period() time.Duration {
	return time.Duration(b.PeriodMs) * time.Millisecond
}

// Config is the application configuration.
type Config struct {
	Mqtt struct {
		URL      string `yaml:"url" toml:"url"`
		ClientID string `yaml:"clientID" toml:"client_id"`
		Username string `yaml:"username" toml:"username"`
		Password string `yaml:"password" toml:"password"`
		Topics   struct {
			Stream  string `yaml:"stream" toml:"stream"`
			Ack     string `yaml:"ack" toml:"ack"`
			Command string `yaml:"command" toml:"command"`
		} `yaml:"topics" toml:"topics"`
	} `yaml:"mqtt" toml:"mqtt"`

	Fx struct {
		TickIntervalMs int     `yaml:"tickIntervalMs" toml:"tick_interval_ms"`
		DedupeMs       int     `yaml:"dedupeMs" toml:"dedupe_ms"`
		FrameRate      float64 `yaml:"frameRate" toml:"frame_rate"`
	} `yaml:"fx" toml:"fx"`

	Scene struct {
		Layout       string         `yaml:"layout" toml:"layout"`
		Pixels       int            `yaml:"pixels" toml:"pixels"`
		Height       float64        `yaml:"height" toml:"height"`
		Ground       float64        `yaml:"ground" toml:"ground"`
		ViewDistance float64        `yaml:"viewDistance" toml:"view_distance"`
		Background   string         `yaml:"background" toml:"background"`
		Backdrop     BackdropConfig `yaml:"backdrop" toml:"backdrop"`
		Markers      []MarkerConfig `yaml:"markers" toml:"markers"`
	} `yaml:"scene" toml:"scene"`

	HTTP struct {
		Addr   string `yaml:"addr" toml:"addr"`
		Static string `yaml:"static" toml:"static"`
	} `yaml:"http" toml:"http"`

	Log struct {
		Level string `yaml:"level" toml:"level"`
	} `yaml:"log" toml:"log"`
}

// LoadConfig reads a YAML or TOML file, chosen by extension, applies defaults
// and validates the result.
func LoadConfig(path string) (Config, error) {
	var c Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.DecodeFile(path, &c); err != nil {
			return Config{}, fmt.Errorf("config parse failed (%s): %w", path, err)
		}
	default:
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
		}
		if err := yaml.Unmarshal(data, &c); err != nil {
			return Config{}, fmt.Errorf("config parse failed (%s): %w", path, err)
		}
	}

	c.ApplyDefaults()
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// ApplyDefaults fills every unset field.
func (c *Config) ApplyDefaults() {
	if c.Mqtt.ClientID == "" {
		c.Mqtt.ClientID = "ledfx"
	}
	if c.Mqtt.Topics.Stream == "" {
		c.Mqtt.Topics.Stream = "home/xmastree/stream"
	}
	if c.Mqtt.Topics.Ack == "" {
		c.Mqtt.Topics.Ack = "home/xmastree/ack"
	}
	if c.Mqtt.Topics.Command == "" {
		c.Mqtt.Topics.Command = "home/xmastree/fx"
	}
	if c.Fx.TickIntervalMs == 0 {
		c.Fx.TickIntervalMs = 100
	}
	if c.Fx.DedupeMs == 0 {
		c.Fx.DedupeMs = 10
	}
	if c.Fx.FrameRate == 0 {
		c.Fx.FrameRate = 30
	}
	if c.Scene.Pixels == 0 {
		c.Scene.Pixels = 500
	}
	if c.Scene.Height == 0 {
		c.Scene.Height = 2.0
	}
	if c.Scene.ViewDistance == 0 {
		c.Scene.ViewDistance = c.Scene.Height * 2
	}
	if c.Scene.Background == "" {
		c.Scene.Background = "#000005"
	}
	switch b := &c.Scene.Backdrop; b.Type {
	case "gradient":
		if b.Length == 0 {
			b.Length = 200
		}
		if b.Speed == 0 {
			b.Speed = 60
		}
	case "twinkle":
		if b.Chance == 0 {
			b.Chance = 0.005
		}
		if b.PeriodMs == 0 {
			b.PeriodMs = 800
		}
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":3000"
	}
	if c.HTTP.Static == "" {
		c.HTTP.Static = "client/dist"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Mqtt.URL) == "":
		return fmt.Errorf("%w: mqtt.url is required", ErrConfig)
	case c.Fx.TickIntervalMs < 0:
		return fmt.Errorf("%w: fx.tickIntervalMs must be positive", ErrConfig)
	case c.Fx.DedupeMs < 0:
		return fmt.Errorf("%w: fx.dedupeMs must not be negative", ErrConfig)
	case c.Fx.FrameRate < 0:
		return fmt.Errorf("%w: fx.frameRate must be positive", ErrConfig)
	case c.Scene.Pixels < 0:
		return fmt.Errorf("%w: scene.pixels must be positive", ErrConfig)
	case c.Scene.Height < 0:
		return fmt.Errorf("%w: scene.height must be positive", ErrConfig)
	}

	switch b := c.Scene.Backdrop; b.Type {
	case "", "solid", "gradient":
	case "twinkle":
		if b.Chance < 0 || b.Chance > 1 {
			return fmt.Errorf("%w: scene.backdrop.chance outside [0, 1]", ErrConfig)
		}
		if b.PeriodMs < 0 {
			return fmt.Errorf("%w: scene.backdrop.periodMs must be positive", ErrConfig)
		}
	default:
		return fmt.Errorf("%w: unknown backdrop %q", ErrConfig, b.Type)
	}

	seen := make(map[string]bool)
	for i, m := range c.Scene.Markers {
		if strings.TrimSpace(m.ID) == "" {
			return fmt.Errorf("%w: scene.markers[%d] missing id", ErrConfig, i)
		}
		if seen[m.ID] {
			return fmt.Errorf("%w: duplicate marker %q", ErrConfig, m.ID)
		}
		seen[m.ID] = true
		if _, err := ParseMode(m.Mode); err != nil {
			return fmt.Errorf("%w: scene.markers[%d]: %v", ErrConfig, i, err)
		}
	}
	return nil
}

// TickInterval is the fallback timer period of the animation clock.
func (c *Config) TickInterval() time.Duration {
	return time.Duration(c.Fx.TickIntervalMs) * time.Millisecond
}

// Dedupe is the window within which a second tick is dropped.
func (c *Config) Dedupe() time.Duration {
	return time.Duration(c.Fx.DedupeMs) * time.Millisecond
}

// FrameInterval is the period between published frames.
func (c *Config) FrameInterval() time.Duration {
	return time.Duration(float64(time.Second) / c.Fx.FrameRate)
}
