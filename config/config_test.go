package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

// fakeBinder wraps a pflag.FlagSet to satisfy the flagBinder interface.
type fakeBinder struct {
	fs *pflag.FlagSet
}

func (f *fakeBinder) Flags() *pflag.FlagSet { return f.fs }

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Data.Dir != "data" {
		t.Errorf("Data.Dir = %q; want %q", cfg.Data.Dir, "data")
	}

	if cfg.Batch.Size != 32 {
		t.Errorf("Batch.Size = %d; want 32", cfg.Batch.Size)
	}

	if cfg.Batch.ASCIISteps() != 6 {
		t.Errorf("ASCIISteps() = %d; want 6", cfg.Batch.ASCIISteps())
	}

	if cfg.Preprocess.Limit != 500 {
		t.Errorf("Preprocess.Limit = %d; want 500", cfg.Preprocess.Limit)
	}

	if cfg.Preprocess.Scale != 50 {
		t.Errorf("Preprocess.Scale = %v; want 50", cfg.Preprocess.Scale)
	}

	if n := len([]rune(cfg.Text.Alphabet)); n != 36 {
		t.Errorf("alphabet has %d letters; want 36", n)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() on defaults = %v", err)
	}
}

func TestKnownChars(t *testing.T) {
	tc := TextConfig{Alphabet: "abc"}
	if got := tc.KnownChars(); got != "abc " {
		t.Errorf("KnownChars() = %q; want %q", got, "abc ")
	}

	tc.UnknownToken = "xyz"
	if got := tc.KnownChars(); got != "xyz" {
		t.Errorf("KnownChars() = %q; want %q", got, "xyz")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"zero batch size", func(c *Config) { c.Batch.Size = 0 }, "batch.size"},
		{"zero tsteps per ascii", func(c *Config) { c.Batch.TStepsPerASCII = 0 }, "tsteps_per_ascii"},
		{"tsteps below per ascii", func(c *Config) { c.Batch.TSteps = 10 }, "at least"},
		{"empty alphabet", func(c *Config) { c.Text.Alphabet = "" }, "alphabet"},
		{"negative scale", func(c *Config) { c.Preprocess.Scale = -1 }, "scale"},
		{"zero limit", func(c *Config) { c.Preprocess.Limit = 0 }, "limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatalf("Validate() = nil; want error mentioning %q", tt.want)
			}

			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Validate() = %v; want mention of %q", err, tt.want)
			}
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	defaults := DefaultConfig()
	cfg, err := Load(LoadOptions{Defaults: defaults})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg != defaults {
		t.Errorf("Load() = %+v; want defaults %+v", cfg, defaults)
	}
}

func TestLoad_FlagOverride(t *testing.T) {
	t.Chdir(t.TempDir())

	defaults := DefaultConfig()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs, defaults)

	err := fs.Parse([]string{
		"--batch-size=8",
		"--data-dir=/tmp/ink",
		"--log-level=debug",
		"--analysis-enabled",
	})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	cfg, err := Load(LoadOptions{
		Cmd:      &fakeBinder{fs: fs},
		Defaults: defaults,
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Batch.Size != 8 {
		t.Errorf("Batch.Size = %d; want 8", cfg.Batch.Size)
	}

	if cfg.Data.Dir != "/tmp/ink" {
		t.Errorf("Data.Dir = %q; want %q", cfg.Data.Dir, "/tmp/ink")
	}

	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q; want %q", cfg.Log.Level, "debug")
	}

	if !cfg.Analysis.Enabled {
		t.Error("Analysis.Enabled = false; want true")
	}

	if cfg.Batch.TSteps != defaults.Batch.TSteps {
		t.Errorf("Batch.TSteps = %d; want default %d", cfg.Batch.TSteps, defaults.Batch.TSteps)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SCRIBE_LOG_LEVEL", "warn")
	t.Setenv("SCRIBE_BATCH_TSTEPS", "300")

	cfg, err := Load(LoadOptions{Defaults: DefaultConfig()})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q; want %q", cfg.Log.Level, "warn")
	}

	if cfg.Batch.TSteps != 300 {
		t.Errorf("Batch.TSteps = %d; want 300", cfg.Batch.TSteps)
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	cfgFile := filepath.Join(dir, "scribe.yaml")

	content := `
data:
  dir: /srv/khatt
batch:
  size: 64
  tsteps_per_ascii: 30
preprocess:
  limit: 250
`
	if err := os.WriteFile(cfgFile, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	defaults := DefaultConfig()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs, defaults)
	if err := fs.Parse([]string{"--batch-size=16"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	cfg, err := Load(LoadOptions{
		Cmd:        &fakeBinder{fs: fs},
		ConfigFile: cfgFile,
		Defaults:   defaults,
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Data.Dir != "/srv/khatt" {
		t.Errorf("Data.Dir = %q; want %q", cfg.Data.Dir, "/srv/khatt")
	}

	// flags win over the file
	if cfg.Batch.Size != 16 {
		t.Errorf("Batch.Size = %d; want 16", cfg.Batch.Size)
	}

	if cfg.Batch.TStepsPerASCII != 30 {
		t.Errorf("Batch.TStepsPerASCII = %d; want 30", cfg.Batch.TStepsPerASCII)
	}

	if cfg.Preprocess.Limit != 250 {
		t.Errorf("Preprocess.Limit = %d; want 250", cfg.Preprocess.Limit)
	}
}

func TestLoad_MissingExplicitConfigFile(t *testing.T) {
	_, err := Load(LoadOptions{
		ConfigFile: filepath.Join(t.TempDir(), "missing.yaml"),
		Defaults:   DefaultConfig(),
	})
	if err == nil {
		t.Fatal("Load() = nil error; want error for missing config file")
	}
}
