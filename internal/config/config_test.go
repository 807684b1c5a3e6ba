package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"svw.info/sudokucoach/internal/domain"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "coach.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.VariantValue() != domain.Classic9 || cfg.DifficultyValue() != domain.Easy {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if got := cfg.FlagsPath(); got != filepath.Join("data", "flags.yaml") {
		t.Fatalf("flags path: %q", got)
	}
}

func TestLoadConfig_Valid(t *testing.T) {
	path := writeConfig(t, `
log_level: debug
variant: mini4
difficulty: hard
data_dir: /tmp/coach
lesson:
  step_timeout: 5s
  arrow_seconds: 12
  peek_key: q
stage:
  tick: 250ms
  type_rate: 3
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.VariantValue() != domain.Mini4 || cfg.DifficultyValue() != domain.Hard {
		t.Fatalf("unexpected board settings %+v", cfg)
	}
	if cfg.Solver != "dlx" || cfg.Addr != ":8080" {
		t.Fatalf("defaults should survive a partial file: %+v", cfg)
	}
	ls := cfg.LessonSettings()
	if ls.StepTimeout != 5*time.Second || ls.ArrowSeconds != 12 || ls.PeekKey != "q" {
		t.Fatalf("unexpected lesson settings %+v", ls)
	}
	so := cfg.StageOptions()
	if so.Timings.Tick != 250*time.Millisecond || so.TypeRate != 3 || so.Variant != domain.Mini4 {
		t.Fatalf("unexpected stage options %+v", so)
	}
	if got := cfg.LogPath(); got != filepath.Join("/tmp/coach", "coach.log") {
		t.Fatalf("log path: %q", got)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	cases := map[string]string{
		"solver":    "solver: magic\n",
		"variant":   "variant: huge25\n",
		"duration":  "lesson:\n  step_timeout: soon\n",
		"range":     "lesson:\n  arrow_seconds: 0\n",
		"unknown":   "colour: blue\n",
		"bound key": "lesson:\n  peek_key: h\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, body)); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil || !strings.Contains(err.Error(), "read config") {
		t.Fatalf("expected read error, got %v", err)
	}
}

func TestValidateEmpty(t *testing.T) {
	if err := Validate("empty.yaml", []byte("\n")); err != nil {
		t.Fatalf("empty file should validate: %v", err)
	}
}
