// internal/commands/run.go
package pairwise

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/perceptlab/pairwise/internal/appconfig"
	"github.com/perceptlab/pairwise/internal/catalog"
	"github.com/perceptlab/pairwise/internal/driver"
	"github.com/perceptlab/pairwise/internal/eyetrack"
	"github.com/perceptlab/pairwise/internal/logging"
	"github.com/perceptlab/pairwise/internal/sequencer"
	"github.com/perceptlab/pairwise/internal/session"
)

type runOptions struct {
	participant  string
	session      int
	catalogPath  string
	sequencePath string
	startIndex   int
}

var runOpts runOptions

// runCmd executes a full participant session: sequence generation, practice,
// main trials with breaks, and finalized output files.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a participant session in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		if cfg == nil {
			return fmt.Errorf("configuration is not initialized")
		}
		if runOpts.participant == "" {
			return fmt.Errorf("--participant is required")
		}

		cat, err := loadCatalog(cfg, runOpts.catalogPath)
		if err != nil {
			return err
		}

		seq := sequencer.New(*cfg)
		if runOpts.sequencePath != "" {
			trials, err := sequencer.LoadSequence(runOpts.sequencePath)
			if err != nil {
				return fmt.Errorf("load sequence: %w", err)
			}
			seq.SetTrials(trials)
			logging.LogEvent("loaded %d trials from %s", len(trials), runOpts.sequencePath)
		} else {
			trials := seq.Generate(cat, runOpts.participant)
			if len(trials) == 0 {
				return fmt.Errorf("no trials could be generated; check the stimulus catalog")
			}
		}
		if cfg.IncludePractice {
			seq.GeneratePractice(cat)
		}

		logger, err := session.NewLogger(*cfg, runOpts.participant, runOpts.session)
		if err != nil {
			return fmt.Errorf("session logger: %w", err)
		}

		// Snapshot the sequence next to the session data for later auditing.
		if err := sequencer.SaveSequence(logger.SequenceSnapshotPath(), seq.Trials()); err != nil {
			return fmt.Errorf("save sequence snapshot: %w", err)
		}

		var tracker eyetrack.Tracker
		if cfg.EyeTracker.Enabled {
			tracker = eyetrack.NewSim()
			logging.LogEvent("eye tracking enabled in simulation mode")
		}

		pres := driver.NewConsole(cmd.InOrStdin(), cmd.OutOrStdout())
		d := driver.New(*cfg, seq, logger, tracker, pres)
		d.StartIndex = runOpts.startIndex

		logging.LogStage("session", runOpts.participant, "", map[string]any{
			"session": runOpts.session,
			"trials":  seq.Len(),
		})
		if err := d.Run(); err != nil {
			return err
		}

		fmt.Fprintf(os.Stdout, "\nSession data written to %s\n", logger.DataPath())
		return nil
	},
}

func init() {
	runCmd.Flags().StringVarP(&runOpts.participant, "participant", "p", "", "participant identifier (required)")
	runCmd.Flags().IntVarP(&runOpts.session, "session", "s", 1, "session number")
	runCmd.Flags().String("catalog", "", "stimulus catalog file (YAML or JSON); default scans videoBasePath")
	runCmd.Flags().String("sequence", "", "resume from a previously saved trial sequence CSV")
	runCmd.Flags().Int("startIndex", 0, "zero-based main-trial index to resume from")
	_ = runCmd.MarkFlagRequired("participant")

	runCmd.PreRun = func(cmd *cobra.Command, args []string) {
		runOpts.catalogPath, _ = cmd.Flags().GetString("catalog")
		runOpts.sequencePath, _ = cmd.Flags().GetString("sequence")
		runOpts.startIndex, _ = cmd.Flags().GetInt("startIndex")
	}

	rootCmd.AddCommand(runCmd)
}

// loadCatalog resolves the stimulus catalog: an explicit file wins, then the
// configured catalog file, then a scan of the video directory tree.
func loadCatalog(cfg *appconfig.Config, path string) (catalog.Catalog, error) {
	if path == "" {
		path = cfg.CatalogFile
	}
	if path != "" {
		cat, err := catalog.LoadFile(path)
		if err != nil {
			return nil, fmt.Errorf("load catalog: %w", err)
		}
		return cat, nil
	}
	cat, err := catalog.ScanDir(cfg.VideoBasePath, cfg.TraitList())
	if err != nil {
		return nil, fmt.Errorf("scan stimulus directory: %w", err)
	}
	return cat, nil
}
