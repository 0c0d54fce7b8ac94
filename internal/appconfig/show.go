package appconfig

import (
	"fmt"
	"io"
	"strings"
)

// ShowConfig prints the effective experiment settings, including defaults
// applied on top of whatever the config file provided.
func ShowConfig(out io.Writer, file string, cfg *Config) {
	if file == "" {
		fmt.Fprintln(out, "No config file loaded (using defaults).")
	} else {
		fmt.Fprintf(out, "Config file: %s\n\n", file)
	}

	fmt.Fprintln(out, "Current configuration:")
	if cfg == nil {
		fmt.Fprintln(out, "  (not initialized)")
		return
	}

	fmt.Fprintf(out, "  Experiment:        %s (v%s)\n", cfg.ExperimentName, cfg.ExperimentVersion)
	fmt.Fprintf(out, "  Traits:            %s\n", strings.Join(cfg.TraitList(), ", "))
	fmt.Fprintf(out, "  Video Base Path:   %s\n", cfg.VideoBasePath)
	if cfg.CatalogFile != "" {
		fmt.Fprintf(out, "  Catalog File:      %s\n", cfg.CatalogFile)
	}
	fmt.Fprintf(out, "  Randomize Order:   %v (min trait spacing %d)\n", cfg.RandomizeTrialOrder, cfg.MinSpacing())
	fmt.Fprintf(out, "  Randomize Sides:   %v\n", cfg.RandomizePositions)
	if cfg.TrialsPerTraitCap > 0 {
		fmt.Fprintf(out, "  Trials Per Trait:  capped at %d\n", cfg.TrialsPerTraitCap)
	}
	fmt.Fprintf(out, "  Practice:          %v (%d trials)\n", cfg.IncludePractice, cfg.PracticeCount())
	fmt.Fprintf(out, "  Breaks:            %v (every %d trials)\n", cfg.EnableBreaks, cfg.BreakInterval())
	fmt.Fprintf(out, "  Fixation:          %.1fs, Video: %.1fs, Inter-trial: %.1fs\n", cfg.FixationSeconds, cfg.VideoSeconds, cfg.InterTrialSeconds)
	if cfg.ResponseTimeout() > 0 {
		fmt.Fprintf(out, "  Response Timeout:  %s\n", cfg.ResponseTimeout())
	} else {
		fmt.Fprintln(out, "  Response Timeout:  none (wait indefinitely)")
	}
	fmt.Fprintf(out, "  Confidence Rating: %v\n", cfg.EnableConfidence)
	fmt.Fprintf(out, "  Data Folder:       %s (%s, prefix %q)\n", cfg.DataFolderPath(), cfg.DataFileFormat(), cfg.DataPrefix())
	fmt.Fprintf(out, "  Log File:          %s\n", cfg.LogFilePath())
	fmt.Fprintf(out, "  Debug:             %v\n", cfg.Debug)
	if cfg.EyeTracker.Enabled {
		fmt.Fprintf(out, "  Eye Tracker:       %s at %d Hz, screen %dx%d\n",
			cfg.EyeTracker.Address, cfg.EyeTracker.SampleRate,
			cfg.EyeTracker.ScreenWidth, cfg.EyeTracker.ScreenHeight)
	} else {
		fmt.Fprintln(out, "  Eye Tracker:       disabled")
	}
}
