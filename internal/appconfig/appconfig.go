// internal/appconfig/appconfig.go
// Package appconfig manages loading and interpreting the experiment configuration.
package appconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"
)

const (
	// DefaultConfigPath is the default path to the experiment configuration file.
	DefaultConfigPath = "config/config.json"
	// legacyConfigPath is the path used before configs moved under config/.
	legacyConfigPath = "config.json"
	// defaultMinTraitSpacing is the minimum number of trials between repeats of a trait.
	defaultMinTraitSpacing = 2
	// defaultTrialsBetweenBreaks is how many trials pass between rest screens.
	defaultTrialsBetweenBreaks = 20
	// defaultPracticeTrials is how many practice trials run before the main block.
	defaultPracticeTrials = 1
)

// DefaultTraits lists the five personality traits compared in the study.
// Each trial compares a HIGH and a LOW exemplar of the same trait.
var DefaultTraits = []string{
	"Extraversion",
	"Agreeableness",
	"Conscientiousness",
	"Emotional Stability",
	"Openness",
}

// Config represents the top-level experiment configuration. It is loaded once
// per session and passed by value into the sequencer, logger, and driver;
// nothing in the core reads it as process-wide state.
type Config struct {
	ExperimentName    string            `json:"experimentName,omitempty"`
	ExperimentVersion string            `json:"experimentVersion,omitempty"`
	Traits            []string          `json:"traits,omitempty"`
	Questions         map[string]string `json:"questions,omitempty"`
	VideoBasePath     string            `json:"videoBasePath,omitempty"`
	CatalogFile       string            `json:"catalogFile,omitempty"`

	RandomizeTrialOrder bool `json:"randomizeTrialOrder"`
	RandomizePositions  bool `json:"randomizePositions"`
	MinTraitSpacing     int  `json:"minTraitSpacing,omitempty"`
	TrialsPerTraitCap   int  `json:"trialsPerTraitCap,omitempty"`

	IncludePractice bool `json:"includePractice"`
	PracticeTrials  int  `json:"practiceTrials,omitempty"`

	EnableBreaks        bool `json:"enableBreaks"`
	TrialsBetweenBreaks int  `json:"trialsBetweenBreaks,omitempty"`

	FixationSeconds    float64 `json:"fixationSeconds,omitempty"`
	VideoSeconds       float64 `json:"videoSeconds,omitempty"`
	InterTrialSeconds  float64 `json:"interTrialSeconds,omitempty"`
	ResponseTimeoutSec float64 `json:"responseTimeout,omitempty"`
	EnableConfidence   bool    `json:"enableConfidence"`

	DataFolder     string `json:"dataFolder,omitempty"`
	DataFilePrefix string `json:"dataFilePrefix,omitempty"`
	DataFormat     string `json:"dataFormat,omitempty"`

	EyeTracker EyeTrackerConfig `json:"eyeTracker"`

	Debug      bool   `json:"debug"`
	LogFile    string `json:"logFile,omitempty"`
	ConfigPath string `json:"-"`
}

// EyeTrackerConfig holds the settings for the optional eye-tracking collaborator.
type EyeTrackerConfig struct {
	Enabled         bool   `json:"enabled"`
	Address         string `json:"address,omitempty"`
	SampleRate      int    `json:"sampleRate,omitempty"`
	ScreenWidth     int    `json:"screenWidth,omitempty"`
	ScreenHeight    int    `json:"screenHeight,omitempty"`
	VideoWidth      int    `json:"videoWidth,omitempty"`
	VideoHeight     int    `json:"videoHeight,omitempty"`
	VideoSeparation int    `json:"videoSeparation,omitempty"`
	InterestPadding int    `json:"interestPadding,omitempty"`
}

// TraitList returns the configured traits, falling back to the default five.
func (c Config) TraitList() []string {
	if len(c.Traits) > 0 {
		return c.Traits
	}
	return DefaultTraits
}

// Question returns the judgment prompt for a trait, with a generic fallback.
func (c Config) Question(trait string) string {
	if q, ok := c.Questions[trait]; ok && q != "" {
		return q
	}
	return fmt.Sprintf("Which person appears to have MORE %s?", trait)
}

// MinSpacing returns the minimum trial spacing between repeats of a trait.
func (c Config) MinSpacing() int {
	if c.MinTraitSpacing <= 0 {
		return defaultMinTraitSpacing
	}
	return c.MinTraitSpacing
}

// BreakInterval returns how many trials pass between break screens.
func (c Config) BreakInterval() int {
	if c.TrialsBetweenBreaks <= 0 {
		return defaultTrialsBetweenBreaks
	}
	return c.TrialsBetweenBreaks
}

// PracticeCount returns the number of practice trials to run.
func (c Config) PracticeCount() int {
	if c.PracticeTrials <= 0 {
		return defaultPracticeTrials
	}
	return c.PracticeTrials
}

// ResponseTimeout returns the response collection timeout. Zero means the
// driver waits indefinitely.
func (c Config) ResponseTimeout() time.Duration {
	if c.ResponseTimeoutSec <= 0 {
		return 0
	}
	return time.Duration(c.ResponseTimeoutSec * float64(time.Second))
}

// DataFolderPath returns the folder session data files are written to.
func (c Config) DataFolderPath() string {
	if c.DataFolder != "" {
		return c.DataFolder
	}
	return "data"
}

// DataPrefix returns the filename prefix for session data files.
func (c Config) DataPrefix() string {
	if c.DataFilePrefix != "" {
		return c.DataFilePrefix
	}
	return "participant"
}

// DataFileFormat returns the results store format, "csv" or "json".
func (c Config) DataFileFormat() string {
	if c.DataFormat == "json" {
		return "json"
	}
	return "csv"
}

// LogFilePath returns the path to the application log file, applying a default if not set.
func (c Config) LogFilePath() string {
	if c.LogFile != "" {
		return c.LogFile
	}
	return "pairwise.log"
}

// Load reads the experiment configuration from the specified path, with
// fallback to a legacy path.
func Load(path string) (Config, error) {
	if path == "" {
		path = DefaultConfigPath
	}

	config, err := loadFromPath(path)
	if err == nil {
		config.ConfigPath = path
		return config, nil
	}

	if errors.Is(err, os.ErrNotExist) {
		if path == DefaultConfigPath {
			config, legacyErr := loadFromPath(legacyConfigPath)
			if legacyErr == nil {
				config.ConfigPath = legacyConfigPath
				return config, nil
			}
			if errors.Is(legacyErr, os.ErrNotExist) {
				return Config{}, fmt.Errorf("no configuration file found (searched %q and %q)", DefaultConfigPath, legacyConfigPath)
			}
			return Config{}, fmt.Errorf("could not read config file %q: %w", legacyConfigPath, legacyErr)
		}
		return Config{}, fmt.Errorf("no configuration file found at %q", path)
	}

	return Config{}, fmt.Errorf("could not read config file %q: %w", path, err)
}

// loadFromPath is a helper function that loads the configuration from a specific file path.
func loadFromPath(path string) (Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer file.Close()

	var config Config
	if err := json.NewDecoder(file).Decode(&config); err != nil {
		return Config{}, err
	}
	if config.DataFormat != "" && config.DataFormat != "csv" && config.DataFormat != "json" {
		return Config{}, fmt.Errorf("unsupported dataFormat %q (want csv or json)", config.DataFormat)
	}

	return config, nil
}
