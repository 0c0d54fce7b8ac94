// internal/commands/catalog.go
package pairwise

import (
	"fmt"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/perceptlab/pairwise/internal/catalog"
)

var catalogPathFlag string

// catalogCmd prints the stimulus inventory and verifies that every referenced
// video file exists on disk.
var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Show the stimulus catalog and check that all video files exist",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		if cfg == nil {
			return fmt.Errorf("configuration is not initialized")
		}

		cat, err := loadCatalog(cfg, catalogPathFlag)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		traitColor := color.New(color.FgCyan, color.Bold).SprintFunc()
		okColor := color.New(color.FgGreen).SprintFunc()
		badColor := color.New(color.FgRed).SprintFunc()

		var traits []string
		for trait := range cat {
			traits = append(traits, trait)
		}
		sort.Strings(traits)

		for _, trait := range traits {
			pool := cat[trait]
			fmt.Fprintln(out, traitColor(trait+":"))
			fmt.Fprintf(out, "  high: %d videos\n", len(pool.High))
			fmt.Fprintf(out, "  low:  %d videos\n", len(pool.Low))
			if !cat.Usable(trait) {
				fmt.Fprintln(out, badColor("  unusable: needs at least one video on each side"))
			}
		}

		ok, missing := catalog.Validate(cat, cfg.VideoBasePath)
		if ok {
			fmt.Fprintln(out, okColor("\nAll video files present."))
			return nil
		}
		fmt.Fprintln(out, badColor(fmt.Sprintf("\n%d missing video files:", len(missing))))
		for _, path := range missing {
			fmt.Fprintln(out, badColor("  "+path))
		}
		return fmt.Errorf("catalog validation failed")
	},
}

func init() {
	catalogCmd.Flags().StringVar(&catalogPathFlag, "catalog", "", "stimulus catalog file (YAML or JSON); default scans videoBasePath")
	rootCmd.AddCommand(catalogCmd)
}
