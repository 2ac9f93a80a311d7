// Package config loads the demo scene: frame rate, logging and the emitters
// to place on screen.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// Kind names a particle effect.
type Kind string

const (
	KindSpark Kind = "spark"
	KindEmber Kind = "ember"
	KindSmoke Kind = "smoke"
)

// Config is the whole scene description.
type Config struct {
	FPS     int    `yaml:"fps"`
	Workers int    `yaml:"workers"`
	Seed    uint64 `yaml:"seed"`
	// Grid is the fluid solver resolution used by smoke emitters.
	Grid int `yaml:"grid"`

	Log      LogConfig       `yaml:"log"`
	Emitters []EmitterConfig `yaml:"emitters"`
	// Click describes the burst spawned by a mouse click. Count 0 disables it.
	Click BurstConfig `yaml:"click"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	ShowCaller bool   `yaml:"caller"`
}

// envOverrides lists the settings that may be overridden from the environment.
type envOverrides struct {
	FPS        int    `env:"PARTICLES_FPS"`
	Workers    int    `env:"PARTICLES_WORKERS"`
	Seed       uint64 `env:"PARTICLES_SEED"`
	Grid       int    `env:"PARTICLES_GRID"`
	LogLevel   string `env:"PARTICLES_LOG_LEVEL"`
	LogFile    string `env:"PARTICLES_LOG_FILE"`
	ShowCaller bool   `env:"PARTICLES_LOG_CALLER"`
}

// EmitterConfig places one emitter. X and Y are fractions of the screen size.
type EmitterConfig struct {
	Kind Kind    `yaml:"kind"`
	X    float64 `yaml:"x"`
	Y    float64 `yaml:"y"`
	// Rate is particles per second.
	Rate float64 `yaml:"rate"`
	// Cap limits the live population; absent means unbounded.
	Cap      *int       `yaml:"cap"`
	Speed    [2]float64 `yaml:"speed"`
	Lifetime [2]float64 `yaml:"lifetime"`
	Width    float64    `yaml:"width"`
	Color    string     `yaml:"color"`
	// ColorEnd is the colour an ember cools to.
	ColorEnd string `yaml:"color_end"`
}

// BurstConfig describes a one-shot spark burst.
type BurstConfig struct {
	Count    int        `yaml:"count"`
	Speed    [2]float64 `yaml:"speed"`
	Lifetime [2]float64 `yaml:"lifetime"`
	Color    string     `yaml:"color"`
}

// Default returns the scene used when no file is given.
func Default() Config {
	return Config{
		FPS:     30,
		Workers: 1,
		Grid:    48,
		Log:     LogConfig{Level: "info"},
		Emitters: []EmitterConfig{
			{Kind: KindEmber, X: 0.5, Y: 0.95, Rate: 25, Lifetime: [2]float64{1.5, 3}, Speed: [2]float64{4, 9}, Width: 20, Color: "#ffd23f", ColorEnd: "#5a0b0b"},
			{Kind: KindSmoke, X: 0.5, Y: 0.8, Rate: 15, Lifetime: [2]float64{2, 4}, Speed: [2]float64{1, 3}, Color: "#c8c8c8"},
		},
		Click: BurstConfig{Count: 60, Speed: [2]float64{8, 30}, Lifetime: [2]float64{0.5, 1.5}, Color: "#ffffff"},
	}
}

// Load reads a YAML scene from path on top of the defaults, then applies
// environment overrides. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		source, err := os.ReadFile(path)
		if err != nil {
			return cfg, errors.Wrap(err, "read config")
		}
		if cfg, err = Parse(source); err != nil {
			return cfg, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// applyEnv overwrites settings whose PARTICLES_* variable is set.
func (c *Config) applyEnv() error {
	o := envOverrides{
		FPS:        c.FPS,
		Workers:    c.Workers,
		Seed:       c.Seed,
		Grid:       c.Grid,
		LogLevel:   c.Log.Level,
		LogFile:    c.Log.File,
		ShowCaller: c.Log.ShowCaller,
	}
	if err := env.Parse(&o); err != nil {
		return errors.Wrap(err, "parse env")
	}
	c.FPS, c.Workers, c.Seed, c.Grid = o.FPS, o.Workers, o.Seed, o.Grid
	c.Log = LogConfig{Level: o.LogLevel, File: o.LogFile, ShowCaller: o.ShowCaller}
	return nil
}

// Parse decodes a YAML scene on top of the defaults without touching the environment.
func Parse(source []byte) (Config, error) {
	cfg := Default()
	if err := yaml.UnmarshalStrict(source, &cfg); err != nil {
		return cfg, errors.Wrap(err, "decode config")
	}
	return cfg, nil
}

// Validate rejects settings that have no sensible meaning.
func (c Config) Validate() error {
	var problems []string
	if c.FPS <= 0 {
		problems = append(problems, "fps must be positive")
	}
	if c.Workers < 0 {
		problems = append(problems, "workers must not be negative")
	}
	if c.Grid < 2 {
		problems = append(problems, "grid must be at least 2")
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		problems = append(problems, "unknown log level "+c.Log.Level)
	}
	for i, e := range c.Emitters {
		problems = append(problems, e.problems(i)...)
	}
	if c.Click.Count < 0 {
		problems = append(problems, "click count must not be negative")
	}
	if _, err := ParseColor(c.Click.Color); err != nil {
		problems = append(problems, "click: "+err.Error())
	}
	if len(problems) > 0 {
		return errors.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

func (e EmitterConfig) problems(i int) []string {
	var out []string
	prefix := "emitter " + strconv.Itoa(i) + ": "
	switch e.Kind {
	case KindSpark, KindEmber, KindSmoke:
	default:
		out = append(out, prefix+"unknown kind "+string(e.Kind))
	}
	if e.Rate < 0 {
		out = append(out, prefix+"rate must not be negative")
	}
	if e.Cap != nil && *e.Cap < 0 {
		out = append(out, prefix+"cap must not be negative")
	}
	if e.Lifetime[0] < 0 || e.Lifetime[1] < e.Lifetime[0] {
		out = append(out, prefix+"lifetime must be an increasing non-negative range")
	}
	for _, hex := range []string{e.Color, e.ColorEnd} {
		if _, err := ParseColor(hex); err != nil {
			out = append(out, prefix+err.Error())
		}
	}
	return out
}

// ParseColor decodes a #rrggbb colour. An empty string is white.
func ParseColor(hex string) (colorful.Color, error) {
	if hex == "" {
		return colorful.Color{R: 1, G: 1, B: 1}, nil
	}
	col, err := colorful.Hex(hex)
	if err != nil {
		return col, errors.Errorf("bad colour %q", hex)
	}
	return col, nil
}

// Exists reports whether a config file is present at path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
