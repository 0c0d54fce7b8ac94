// internal/commands/generate.go
package pairwise

import (
	"fmt"
	"sort"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/perceptlab/pairwise/internal/logging"
	"github.com/perceptlab/pairwise/internal/sequencer"
)

type generateOptions struct {
	participant string
	catalogPath string
	output      string
}

var generateOpts generateOptions

// generateCmd builds and saves a trial sequence without running a session,
// for piloting counterbalancing and ordering before participants arrive.
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate and save a trial sequence for a participant",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		if cfg == nil {
			return fmt.Errorf("configuration is not initialized")
		}

		cat, err := loadCatalog(cfg, generateOpts.catalogPath)
		if err != nil {
			return err
		}

		seq := sequencer.New(*cfg)
		trials := seq.Generate(cat, generateOpts.participant)
		if len(trials) == 0 {
			return fmt.Errorf("no trials could be generated; check the stimulus catalog")
		}

		output := generateOpts.output
		if output == "" {
			output = fmt.Sprintf("sequence_%s.csv", generateOpts.participant)
		}
		if err := sequencer.SaveSequence(output, trials); err != nil {
			return fmt.Errorf("save sequence: %w", err)
		}
		logging.LogEvent("sequence for %s written to %s", generateOpts.participant, output)

		printSequenceSummary(cmd, seq.Summarize(), output)
		return nil
	},
}

func init() {
	generateCmd.Flags().StringVarP(&generateOpts.participant, "participant", "p", "", "participant identifier (required)")
	generateCmd.Flags().StringVar(&generateOpts.catalogPath, "catalog", "", "stimulus catalog file (YAML or JSON); default scans videoBasePath")
	generateCmd.Flags().StringVarP(&generateOpts.output, "output", "o", "", "sequence CSV path (default sequence_<participant>.csv)")
	_ = generateCmd.MarkFlagRequired("participant")

	rootCmd.AddCommand(generateCmd)
}

func printSequenceSummary(cmd *cobra.Command, s sequencer.Summary, output string) {
	headerStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	traitStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("255"))

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("Sequence: %d trials -> %s", s.TotalTrials, output)))

	var traits []string
	for trait := range s.TrialsPerTrait {
		traits = append(traits, trait)
	}
	sort.Strings(traits)
	for _, trait := range traits {
		fmt.Fprintln(out, traitStyle.Render(fmt.Sprintf("  %-22s %d", trait+":", s.TrialsPerTrait[trait])))
	}
	fmt.Fprintf(out, "  high on left: %d, high on right: %d\n", s.HighLeftCount, s.HighRightCount)
}
