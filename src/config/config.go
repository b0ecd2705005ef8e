// Package config holds the settings of the prism command.
package config

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Window  Window  `toml:"window" yaml:"window"`
	Shaders Shaders `toml:"shaders" yaml:"shaders"`
	Render  Render  `toml:"render" yaml:"render"`
	Log     Log     `toml:"log" yaml:"log"`
}

type Window struct {
	Width  int    `toml:"width" yaml:"width"`
	Height int    `toml:"height" yaml:"height"`
	Title  string `toml:"title" yaml:"title"`
}

type Shaders struct {
	Dir      string `toml:"dir" yaml:"dir"`
	Vertex   string `toml:"vertex" yaml:"vertex"`
	Fragment string `toml:"fragment" yaml:"fragment"`
}

type Render struct {
	// ClearColor is RGBA in [0, 1].
	ClearColor [4]float32 `toml:"clear_color" yaml:"clear_color"`
	// Debug enables the validation layer and routes its messages to the log.
	Debug bool `toml:"debug" yaml:"debug"`
}

type Log struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"`
}

func Default() Config {
	return Config{
		Window: Window{
			Width:  800,
			Height: 600,
			Title:  "prism",
		},
		Shaders: Shaders{
			Dir:      "shaders",
			Vertex:   "main.vert.spv",
			Fragment: "main.frag.spv",
		},
		Render: Render{
			ClearColor: [4]float32{0, 0, 0, 1},
		},
		Log: Log{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads a TOML or YAML file, chosen by extension, over the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(err, "read config")
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		err = toml.Unmarshal(data, &cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		return cfg, errors.Errorf("config %s: unsupported extension %q", path, ext)
	}
	if err != nil {
		return cfg, errors.Wrapf(err, "decode config %s", path)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return errors.Errorf("window size %dx%d must be positive", c.Window.Width, c.Window.Height)
	}
	if c.Shaders.Vertex == "" || c.Shaders.Fragment == "" {
		return errors.New("both shader names are required")
	}
	for i, v := range c.Render.ClearColor {
		if v < 0 || v > 1 {
			return errors.Errorf("clear color component %d is %v, want [0, 1]", i, v)
		}
	}
	if _, err := c.Log.level(); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return errors.Errorf("log format %q, want text or json", c.Log.Format)
	}
	return nil
}

func (l Log) level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return level, errors.Wrapf(err, "log level %q", l.Level)
	}
	return level, nil
}

// NewLogger builds the logger described by l, writing to w.
func (l Log) NewLogger(w io.Writer) (*slog.Logger, error) {
	level, err := l.level()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if l.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}
