// Package config loads planner settings: scoring weights, request defaults,
// storage and log locations. Values are layered, highest precedence first:
// environment, an explicit file, the project .dayplan.yaml, the user
// config file and the built-in defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alexanderramin/dayplan/internal/db"
	"github.com/alexanderramin/dayplan/internal/domain"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	// ProjectFile is looked up in the working directory and its parents.
	ProjectFile = ".dayplan.yaml"
	// EnvLogFile enables the rotating file log sink.
	EnvLogFile = "DAYPLAN_LOG_FILE"
)

type Config struct {
	Weights  domain.WeightParams `mapstructure:"weights" yaml:"weights"`
	Defaults DefaultsConfig      `mapstructure:"defaults" yaml:"defaults"`
	Storage  StorageConfig       `mapstructure:"storage" yaml:"storage"`
	Log      LogConfig           `mapstructure:"log" yaml:"log"`
}

// DefaultsConfig fills request fields a request file leaves empty.
type DefaultsConfig struct {
	UserID        int64           `mapstructure:"user_id" yaml:"user_id"`
	FocusTimeZone domain.TimeZone `mapstructure:"focus_time_zone" yaml:"focus_time_zone"`
	DayEndTime    string          `mapstructure:"day_end_time" yaml:"day_end_time"`
	StartArrange  string          `mapstructure:"start_arrange" yaml:"start_arrange"`
}

type StorageConfig struct {
	// DBPath is the SQLite file. Empty means db.DefaultPath().
	DBPath       string `mapstructure:"db_path" yaml:"db_path"`
	HistoryLimit int    `mapstructure:"history_limit" yaml:"history_limit"`
}

// LogConfig controls the file log sink. An empty File logs to stderr only.
type LogConfig struct {
	File       string `mapstructure:"file" yaml:"file"`
	Level      string `mapstructure:"level" yaml:"level"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" yaml:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days" yaml:"max_age_days"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Weights: domain.DefaultWeights(),
		Defaults: DefaultsConfig{
			UserID:        1,
			FocusTimeZone: domain.ZoneMorning,
			DayEndTime:    "23:00",
			StartArrange:  "09:00",
		},
		Storage: StorageConfig{HistoryLimit: 20},
		Log:     LogConfig{Level: "info", MaxSizeMB: 10, MaxBackups: 3, MaxAgeDays: 28},
	}
}

// Load reads the layered configuration. When path is non-empty that file
// must exist and is merged above the user and project files.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(UserConfigDir())
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	if project := findProjectConfig(); project != "" {
		if err := mergeFile(v, project); err != nil {
			return nil, fmt.Errorf("merging project config: %w", err)
		}
	}
	if path != "" {
		if err := mergeFile(v, path); err != nil {
			return nil, fmt.Errorf("reading config from %s: %w", path, err)
		}
	}

	v.BindEnv("storage.db_path", db.EnvPath)
	v.BindEnv("log.file", EnvLogFile)

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if cfg.Weights.WCategory == nil {
		cfg.Weights.WCategory = map[domain.Category]float64{}
	}
	cfg.Defaults.FocusTimeZone = domain.TimeZone(strings.ToUpper(string(cfg.Defaults.FocusTimeZone)))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func mergeFile(v *viper.Viper, path string) error {
	fv := viper.New()
	fv.SetConfigFile(path)
	if err := fv.ReadInConfig(); err != nil {
		return err
	}
	return v.MergeConfigMap(fv.AllSettings())
}

// Validate reports every out-of-range value together.
func (c *Config) Validate() error {
	var errs []error
	w := c.Weights
	if w.ClipMin > w.ClipMax {
		errs = append(errs, fmt.Errorf("weights.clip_min %.2f exceeds clip_max %.2f", w.ClipMin, w.ClipMax))
	}
	if w.EMADecay < 0 || w.EMADecay > 1 {
		errs = append(errs, fmt.Errorf("weights.ema_decay must be within [0, 1], got %.2f", w.EMADecay))
	}
	for name, val := range map[string]float64{
		"w_included": w.WIncluded, "w_excluded": w.WExcluded,
		"w_overflow": w.WOverflow, "w_fatigue_risk": w.WFatigueRisk,
	} {
		if val < 0 {
			errs = append(errs, fmt.Errorf("weights.%s must not be negative", name))
		}
	}
	if !c.Defaults.FocusTimeZone.Valid() {
		errs = append(errs, fmt.Errorf("defaults.focus_time_zone: unknown time zone %q", c.Defaults.FocusTimeZone))
	}
	if _, err := domain.ParseClock(c.Defaults.DayEndTime); err != nil {
		errs = append(errs, fmt.Errorf("defaults.day_end_time: %w", err))
	}
	if _, err := domain.ParseClock(c.Defaults.StartArrange); err != nil {
		errs = append(errs, fmt.Errorf("defaults.start_arrange: %w", err))
	}
	if c.Storage.HistoryLimit <= 0 {
		errs = append(errs, errors.New("storage.history_limit must be positive"))
	}
	return errors.Join(errs...)
}

// DBPath resolves the database location.
func (c *Config) DBPath() string {
	if c.Storage.DBPath != "" {
		return c.Storage.DBPath
	}
	return db.DefaultPath()
}

// Apply fills the empty user and start fields of req.
func (d DefaultsConfig) Apply(req *domain.ArrangementRequest) {
	if req.User.UserID == 0 {
		req.User.UserID = d.UserID
	}
	if req.User.FocusTimeZone == "" {
		req.User.FocusTimeZone = d.FocusTimeZone
	}
	if req.User.DayEndTime == "" {
		req.User.DayEndTime = d.DayEndTime
	}
	if req.StartArrange == "" {
		req.StartArrange = d.StartArrange
	}
}

// WriteDefault writes the built-in configuration to path as YAML. An
// existing file is never overwritten.
func WriteDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	if err := enc.Encode(Default()); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return enc.Close()
}

// UserConfigDir is the directory holding the user config file.
func UserConfigDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".", ".config", "dayplan")
	}
	return filepath.Join(dir, "dayplan")
}

// UserConfigPath is the path of the user config file.
func UserConfigPath() string {
	return filepath.Join(UserConfigDir(), "config.yaml")
}

func setDefaults(v *viper.Viper, d Config) {
	w := d.Weights
	v.SetDefault("weights.w_focus", w.WFocus)
	v.SetDefault("weights.w_urgent", w.WUrgent)
	v.SetDefault("weights.w_category", map[string]float64{})
	v.SetDefault("weights.w_carry_task", w.WCarryTask)
	v.SetDefault("weights.w_carry_group", w.WCarryGroup)
	v.SetDefault("weights.w_reject_penalty", w.WRejectPenalty)
	v.SetDefault("weights.alpha_duration", w.AlphaDuration)
	v.SetDefault("weights.beta_load", w.BetaLoad)
	v.SetDefault("weights.w_included", w.WIncluded)
	v.SetDefault("weights.w_excluded", w.WExcluded)
	v.SetDefault("weights.w_overflow", w.WOverflow)
	v.SetDefault("weights.w_focus_align", w.WFocusAlign)
	v.SetDefault("weights.w_switch", w.WSwitch)
	v.SetDefault("weights.w_fatigue_risk", w.WFatigueRisk)
	v.SetDefault("weights.w_instruction", w.WInstruction)
	v.SetDefault("weights.instruction_cap", w.InstructionCap)
	v.SetDefault("weights.clip_min", w.ClipMin)
	v.SetDefault("weights.clip_max", w.ClipMax)
	v.SetDefault("weights.ema_decay", w.EMADecay)

	v.SetDefault("defaults.user_id", d.Defaults.UserID)
	v.SetDefault("defaults.focus_time_zone", string(d.Defaults.FocusTimeZone))
	v.SetDefault("defaults.day_end_time", d.Defaults.DayEndTime)
	v.SetDefault("defaults.start_arrange", d.Defaults.StartArrange)

	v.SetDefault("storage.db_path", d.Storage.DBPath)
	v.SetDefault("storage.history_limit", d.Storage.HistoryLimit)

	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.max_size_mb", d.Log.MaxSizeMB)
	v.SetDefault("log.max_backups", d.Log.MaxBackups)
	v.SetDefault("log.max_age_days", d.Log.MaxAgeDays)
}

// findProjectConfig searches the working directory and its parents.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		candidate := filepath.Join(cwd, ProjectFile)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		parent := filepath.Dir(cwd)
		if parent == cwd {
			return ""
		}
		cwd = parent
	}
}
