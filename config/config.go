package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// DefaultAlphabet holds the Arabic base letters U+0621..U+063A and
// U+0641..U+064A.
const DefaultAlphabet = "ءآأؤإئابةتثجحخدذرزسشصضطظعغفقكلمنهوىي"

// DefaultFilter lists characters stripped from every label.
const DefaultFilter = ".,;:!?\"'()-0123456789،؛؟"

// Config is the full tool configuration, one section per concern.
type Config struct {
	Data       DataConfig       `mapstructure:"data"`
	Text       TextConfig       `mapstructure:"text"`
	Batch      BatchConfig      `mapstructure:"batch"`
	Preprocess PreprocessConfig `mapstructure:"preprocess"`
	Analysis   AnalysisConfig   `mapstructure:"analysis"`
	Log        LogConfig        `mapstructure:"log"`
}

// DataConfig locates the raw dataset and the files derived from it.
type DataConfig struct {
	Dir             string `mapstructure:"dir"`
	CacheFile       string `mapstructure:"cache_file"`
	PermutationFile string `mapstructure:"permutation_file"`
	CursorFile      string `mapstructure:"cursor_file"`
	InkMarker       string `mapstructure:"ink_marker"`
	LabelMarker     string `mapstructure:"label_marker"`
}

// TextConfig controls label filtering and encoding.
type TextConfig struct {
	Alphabet     string `mapstructure:"alphabet"`
	UnknownToken string `mapstructure:"unknown_token"`
	Filter       string `mapstructure:"filter"`
	LabelPatch   string `mapstructure:"label_patch"`
}

// BatchConfig sizes training batches and their windows.
type BatchConfig struct {
	Size           int   `mapstructure:"size"`
	TSteps         int   `mapstructure:"tsteps"`
	TStepsPerASCII int   `mapstructure:"tsteps_per_ascii"`
	Seed           int64 `mapstructure:"seed"`
}

// PreprocessConfig holds the clip limit and scale applied to stroke offsets.
type PreprocessConfig struct {
	Scale float64 `mapstructure:"scale"`
	Limit int     `mapstructure:"limit"`
}

// AnalysisConfig enables the dataset report and sets its output paths.
type AnalysisConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	ReportPath string `mapstructure:"report_path"`
	PlotPath   string `mapstructure:"plot_path"`
}

// LogConfig configures the log file and stdout echo.
type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
	Echo  bool   `mapstructure:"echo"`
}

// LoadOptions are the inputs to Load. Cmd may be nil.
type LoadOptions struct {
	Cmd        flagBinder
	ConfigFile string
	Defaults   Config
}

type flagBinder interface {
	Flags() *pflag.FlagSet
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		Data: DataConfig{
			Dir:             "data",
			CacheFile:       "strokes_training_data.gob",
			PermutationFile: "idx.gob",
			CursorFile:      "pointer.gob",
			InkMarker:       "inkml",
			LabelMarker:     "upx",
		},
		Text: TextConfig{
			Alphabet:     DefaultAlphabet,
			UnknownToken: "",
			Filter:       DefaultFilter,
			LabelPatch:   "warn",
		},
		Batch: BatchConfig{
			Size:           32,
			TSteps:         150,
			TStepsPerASCII: 25,
			Seed:           0,
		},
		Preprocess: PreprocessConfig{
			Scale: 50,
			Limit: 500,
		},
		Analysis: AnalysisConfig{
			Enabled:    false,
			ReportPath: "logs/dataset_info.txt",
			PlotPath:   "logs/dataset_lengths.png",
		},
		Log: LogConfig{
			Level: "info",
			File:  "logs/train_scribe.txt",
			Echo:  true,
		},
	}
}

// ASCIISteps is the number of label characters encoded per sample.
func (b BatchConfig) ASCIISteps() int {
	if b.TStepsPerASCII <= 0 {
		return 0
	}
	return b.TSteps / b.TStepsPerASCII
}

// KnownChars returns the character set the legacy label patch keeps in
// place. An empty unknown_token means the alphabet plus space.
func (t TextConfig) KnownChars() string {
	if t.UnknownToken != "" {
		return t.UnknownToken
	}
	return t.Alphabet + " "
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	if c.Data.Dir == "" {
		errs = append(errs, errors.New("data.dir must be set"))
	}
	if c.Data.InkMarker == "" || c.Data.LabelMarker == "" {
		errs = append(errs, errors.New("data.ink_marker and data.label_marker must be set"))
	}
	if c.Text.Alphabet == "" {
		errs = append(errs, errors.New("text.alphabet must not be empty"))
	}
	if c.Batch.Size <= 0 {
		errs = append(errs, fmt.Errorf("batch.size must be positive, got %d", c.Batch.Size))
	}
	if c.Batch.TSteps <= 0 {
		errs = append(errs, fmt.Errorf("batch.tsteps must be positive, got %d", c.Batch.TSteps))
	}
	if c.Batch.TStepsPerASCII <= 0 {
		errs = append(errs, fmt.Errorf("batch.tsteps_per_ascii must be positive, got %d", c.Batch.TStepsPerASCII))
	} else if c.Batch.ASCIISteps() == 0 {
		errs = append(errs, fmt.Errorf("batch.tsteps (%d) must be at least batch.tsteps_per_ascii (%d)",
			c.Batch.TSteps, c.Batch.TStepsPerASCII))
	}
	if c.Preprocess.Scale <= 0 {
		errs = append(errs, fmt.Errorf("preprocess.scale must be positive, got %v", c.Preprocess.Scale))
	}
	if c.Preprocess.Limit <= 0 {
		errs = append(errs, fmt.Errorf("preprocess.limit must be positive, got %d", c.Preprocess.Limit))
	}
	return errors.Join(errs...)
}

// RegisterFlags adds one flag per config key to fs.
func RegisterFlags(fs *pflag.FlagSet, defaults Config) {
	fs.String("data-dir", defaults.Data.Dir, "Dataset root directory")
	fs.String("data-cache-file", defaults.Data.CacheFile, "Preprocessed cache file name inside the data dir")
	fs.String("data-permutation-file", defaults.Data.PermutationFile, "Persisted permutation file name inside the data dir")
	fs.String("data-cursor-file", defaults.Data.CursorFile, "Persisted cursor file name inside the data dir")
	fs.String("data-ink-marker", defaults.Data.InkMarker, "Substring identifying ink trace files")
	fs.String("data-label-marker", defaults.Data.LabelMarker, "Substring identifying label files")
	fs.String("text-alphabet", defaults.Text.Alphabet, "Label alphabet")
	fs.String("text-unknown-token", defaults.Text.UnknownToken, "Known character set for the legacy label patch (default alphabet + space)")
	fs.String("text-filter", defaults.Text.Filter, "Characters removed from every label")
	fs.String("text-label-patch", defaults.Text.LabelPatch, "Label length mismatch policy (warn|legacy)")
	fs.Int("batch-size", defaults.Batch.Size, "Samples per batch")
	fs.Int("batch-tsteps", defaults.Batch.TSteps, "Stroke points per training window")
	fs.Int("batch-tsteps-per-ascii", defaults.Batch.TStepsPerASCII, "Stroke points per label character")
	fs.Int64("batch-seed", defaults.Batch.Seed, "Permutation seed (0 = time based)")
	fs.Float64("preprocess-scale", defaults.Preprocess.Scale, "Divisor applied to dx and dy")
	fs.Int("preprocess-limit", defaults.Preprocess.Limit, "Clip offsets to [-limit, limit]")
	fs.Bool("analysis-enabled", defaults.Analysis.Enabled, "Write the dataset analysis report when loading")
	fs.String("analysis-report-path", defaults.Analysis.ReportPath, "Dataset analysis report path")
	fs.String("analysis-plot-path", defaults.Analysis.PlotPath, "Dataset analysis chart path (PNG)")
	fs.String("log-level", defaults.Log.Level, "Log level (debug|info|warn|error)")
	fs.String("log-file", defaults.Log.File, "Log file path")
	fs.Bool("log-echo", defaults.Log.Echo, "Echo log lines to stdout")
}

// Load resolves the configuration from defaults, flags, SCRIBE_ env vars
// and the config file.
func Load(opts LoadOptions) (Config, error) {
	v := viper.New()

	setDefaults(v, opts.Defaults)
	if opts.Cmd != nil {
		if err := bindFlags(v, opts.Cmd.Flags()); err != nil {
			return Config{}, err
		}
	}

	v.SetEnvPrefix("SCRIBE")
	replacer := strings.NewReplacer("-", "_", ".", "_")
	v.SetEnvKeyReplacer(replacer)
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	} else {
		v.SetConfigName("scribedata")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	return cfg, nil
}

// keys maps every config key to its flag name.
var keys = [][2]string{
	{"data.dir", "data-dir"},
	{"data.cache_file", "data-cache-file"},
	{"data.permutation_file", "data-permutation-file"},
	{"data.cursor_file", "data-cursor-file"},
	{"data.ink_marker", "data-ink-marker"},
	{"data.label_marker", "data-label-marker"},
	{"text.alphabet", "text-alphabet"},
	{"text.unknown_token", "text-unknown-token"},
	{"text.filter", "text-filter"},
	{"text.label_patch", "text-label-patch"},
	{"batch.size", "batch-size"},
	{"batch.tsteps", "batch-tsteps"},
	{"batch.tsteps_per_ascii", "batch-tsteps-per-ascii"},
	{"batch.seed", "batch-seed"},
	{"preprocess.scale", "preprocess-scale"},
	{"preprocess.limit", "preprocess-limit"},
	{"analysis.enabled", "analysis-enabled"},
	{"analysis.report_path", "analysis-report-path"},
	{"analysis.plot_path", "analysis-plot-path"},
	{"log.level", "log-level"},
	{"log.file", "log-file"},
	{"log.echo", "log-echo"},
}

func setDefaults(v *viper.Viper, c Config) {
	v.SetDefault("data.dir", c.Data.Dir)
	v.SetDefault("data.cache_file", c.Data.CacheFile)
	v.SetDefault("data.permutation_file", c.Data.PermutationFile)
	v.SetDefault("data.cursor_file", c.Data.CursorFile)
	v.SetDefault("data.ink_marker", c.Data.InkMarker)
	v.SetDefault("data.label_marker", c.Data.LabelMarker)
	v.SetDefault("text.alphabet", c.Text.Alphabet)
	v.SetDefault("text.unknown_token", c.Text.UnknownToken)
	v.SetDefault("text.filter", c.Text.Filter)
	v.SetDefault("text.label_patch", c.Text.LabelPatch)
	v.SetDefault("batch.size", c.Batch.Size)
	v.SetDefault("batch.tsteps", c.Batch.TSteps)
	v.SetDefault("batch.tsteps_per_ascii", c.Batch.TStepsPerASCII)
	v.SetDefault("batch.seed", c.Batch.Seed)
	v.SetDefault("preprocess.scale", c.Preprocess.Scale)
	v.SetDefault("preprocess.limit", c.Preprocess.Limit)
	v.SetDefault("analysis.enabled", c.Analysis.Enabled)
	v.SetDefault("analysis.report_path", c.Analysis.ReportPath)
	v.SetDefault("analysis.plot_path", c.Analysis.PlotPath)
	v.SetDefault("log.level", c.Log.Level)
	v.SetDefault("log.file", c.Log.File)
	v.SetDefault("log.echo", c.Log.Echo)
}

// bindFlags binds each flag to its dotted key so that config files, env
// vars and flags all resolve through the same name.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for _, k := range keys {
		f := fs.Lookup(k[1])
		if f == nil {
			continue
		}
		if err := v.BindPFlag(k[0], f); err != nil {
			return fmt.Errorf("bind flag %s: %w", k[1], err)
		}
	}
	return nil
}
