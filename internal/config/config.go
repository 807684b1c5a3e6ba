// YAML config loader with CUE validation
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"svw.info/sudokucoach/internal/coach"
	"svw.info/sudokucoach/internal/domain"
	"svw.info/sudokucoach/internal/stage"
)

// Duration is a time.Duration written as a Go duration string ("750ms").
type Duration time.Duration

func (d *Duration) UnmarshalYAML(n *yaml.Node) error {
	var s string
	if err := n.Decode(&s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("line %d: %w", n.Line, err)
	}
	*d = Duration(v)
	return nil
}

func (d Duration) MarshalYAML() (any, error) { return time.Duration(d).String(), nil }

// Lesson paces the scripted tutorial.
type Lesson struct {
	StepTimeout   Duration `yaml:"step_timeout"`
	ShortTimeout  Duration `yaml:"short_timeout"`
	MorphTimeout  Duration `yaml:"morph_timeout"`
	PuzzleTimeout Duration `yaml:"puzzle_timeout"`
	Pause         Duration `yaml:"pause"`
	ArrowSeconds  int      `yaml:"arrow_seconds"`
	PeekSeconds   int      `yaml:"peek_seconds"`
	PeekKey       string   `yaml:"peek_key"`
	PeekHold      Duration `yaml:"peek_hold"`
	ContextClicks int      `yaml:"context_clicks"`
}

// Stage holds the animation timings of the board surface.
type Stage struct {
	Tick       Duration `yaml:"tick"`
	Wrong      Duration `yaml:"wrong"`
	Celebrate  Duration `yaml:"celebrate"`
	Ripple     Duration `yaml:"ripple"`
	Nudge      Duration `yaml:"nudge"`
	Cry        Duration `yaml:"cry"`
	Ping       Duration `yaml:"ping"`
	Wave       Duration `yaml:"wave"`
	Morph      Duration `yaml:"morph"`
	Type       Duration `yaml:"type"`
	Frame      Duration `yaml:"frame"`
	Roam       Duration `yaml:"roam"`
	TypeRate   int      `yaml:"type_rate"`
	AvatarStep float64  `yaml:"avatar_step"`
}

// Config is the root configuration of sudoku-coach.
type Config struct {
	LogLevel   string `yaml:"log_level"`
	LogFile    string `yaml:"log_file"`
	DataDir    string `yaml:"data_dir"`
	FlagsFile  string `yaml:"flags_file"`
	Addr       string `yaml:"addr"`
	Solver     string `yaml:"solver"`
	Variant    string `yaml:"variant"`
	Difficulty string `yaml:"difficulty"`
	Lesson     Lesson `yaml:"lesson"`
	Stage      Stage  `yaml:"stage"`
}

// Default returns the configuration used when no file is given. Zero
// timings fall through to the package defaults of stage and coach.
func Default() *Config {
	return &Config{
		LogLevel:   "info",
		DataDir:    "./data",
		Addr:       ":8080",
		Solver:     "dlx",
		Variant:    domain.Classic9.Key(),
		Difficulty: domain.Easy.String(),
	}
}

// Load reads the YAML file at path over the defaults after validating it
// against the CUE schema. An empty path yields Default().
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := Validate(path, data); err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// VariantValue returns the configured default board size.
func (c *Config) VariantValue() domain.Variant {
	v, _ := domain.ParseVariant(c.Variant)
	return v
}

// DifficultyValue returns the configured generator difficulty.
func (c *Config) DifficultyValue() domain.Difficulty {
	d, _ := domain.ParseDifficulty(c.Difficulty)
	return d
}

// FlagsPath is where durable flags live; data_dir/flags.yaml by default.
func (c *Config) FlagsPath() string {
	if c.FlagsFile != "" {
		return c.FlagsFile
	}
	return filepath.Join(c.DataDir, "flags.yaml")
}

// LogPath is the log file of the terminal UI; data_dir/coach.log by default.
func (c *Config) LogPath() string {
	if c.LogFile != "" {
		return c.LogFile
	}
	return filepath.Join(c.DataDir, "coach.log")
}

// StageOptions maps the stage section onto stage.Options. Puzzles and
// Logger are left for the caller.
func (c *Config) StageOptions() stage.Options {
	s := c.Stage
	return stage.Options{
		Variant:    c.VariantValue(),
		Difficulty: c.DifficultyValue(),
		Timings: stage.Timings{
			Tick:      time.Duration(s.Tick),
			Wrong:     time.Duration(s.Wrong),
			Celebrate: time.Duration(s.Celebrate),
			Ripple:    time.Duration(s.Ripple),
			Nudge:     time.Duration(s.Nudge),
			Cry:       time.Duration(s.Cry),
			Ping:      time.Duration(s.Ping),
			Wave:      time.Duration(s.Wave),
			Morph:     time.Duration(s.Morph),
			Type:      time.Duration(s.Type),
			Frame:     time.Duration(s.Frame),
			Roam:      time.Duration(s.Roam),
		},
		TypeRate:   s.TypeRate,
		AvatarStep: s.AvatarStep,
	}
}

// LessonSettings maps the lesson section onto coach.Settings.
func (c *Config) LessonSettings() coach.Settings {
	l := c.Lesson
	return coach.Settings{
		StepTimeout:   time.Duration(l.StepTimeout),
		ShortTimeout:  time.Duration(l.ShortTimeout),
		MorphTimeout:  time.Duration(l.MorphTimeout),
		PuzzleTimeout: time.Duration(l.PuzzleTimeout),
		Pause:         time.Duration(l.Pause),
		ArrowSeconds:  l.ArrowSeconds,
		PeekSeconds:   l.PeekSeconds,
		PeekKey:       l.PeekKey,
		PeekHold:      time.Duration(l.PeekHold),
		ContextClicks: l.ContextClicks,
	}
}
