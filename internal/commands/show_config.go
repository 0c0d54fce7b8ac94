// internal/commands/show_config.go
package pairwise

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/perceptlab/pairwise/internal/appconfig"
)

// showCmd groups read-only inspection commands.
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show experiment settings",
}

// showConfigCmd implements the 'show config' command, which displays the current configuration settings.
var showConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Show config settings",
	Long:  `Show config settings ensuring that the JSON configs are loaded properly and overridden by flags accordingly.`,
	Run: func(cmd *cobra.Command, args []string) {
		appconfig.ShowConfig(cmd.OutOrStdout(), viper.ConfigFileUsed(), GetConfig())
	},
}

func init() {
	showCmd.AddCommand(showConfigCmd)
	rootCmd.AddCommand(showCmd)
}
