// internal/commands/root.go
package pairwise

import (
	"fmt"
	"os"

	"github.com/k0kubun/pp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/perceptlab/pairwise/internal/appconfig"
	"github.com/perceptlab/pairwise/internal/logging"
)

var (
	cfgFile       string
	currentConfig *appconfig.Config
	appVersion    = "dev"
	appCommit     = "none"
	appDate       = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "pairwise",
	Short: "pairwise — trial sequencing and session logging for pairwise perception studies",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := ensureConfigLoaded(); err != nil {
			return err
		}

		for _, name := range []string{"debug", "randomizeTrialOrder", "randomizePositions", "includePractice"} {
			if !cmd.Flags().Changed(name) && viper.IsSet(name) {
				_ = cmd.Flags().Set(name, fmt.Sprintf("%t", viper.GetBool(name)))
			}
		}
		for _, name := range []string{"dataFolder", "dataFormat", "logFile"} {
			if !cmd.Flags().Changed(name) && viper.IsSet(name) {
				_ = cmd.Flags().Set(name, viper.GetString(name))
			}
		}

		var cfg appconfig.Config
		if err := viper.Unmarshal(&cfg); err != nil {
			return fmt.Errorf("unmarshal config: %w", err)
		}
		cfg.ConfigPath = viper.ConfigFileUsed()
		switch cfg.DataFileFormat() {
		case "csv", "json":
		default:
			return fmt.Errorf("invalid configuration: dataFormat must be csv or json, got %q", cfg.DataFormat)
		}
		currentConfig = &cfg

		if err := logging.Init(cfg.LogFilePath()); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		if cfg.Debug {
			pp.Println(cfg)
		}

		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", appVersion, appCommit, appDate)

	defer logging.Close()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", appconfig.DefaultConfigPath, "config file (e.g., config/config.json)")

	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().Bool("randomizeTrialOrder", true, "shuffle main trials with trait spacing")
	rootCmd.PersistentFlags().Bool("randomizePositions", false, "randomize high/low sides instead of deterministic counterbalancing")
	rootCmd.PersistentFlags().Bool("includePractice", true, "run practice trials before the main block")
	rootCmd.PersistentFlags().String("dataFolder", "", "folder for session output files")
	rootCmd.PersistentFlags().String("dataFormat", "", "results store format: csv or json")
	rootCmd.PersistentFlags().String("logFile", "", "path to the log file")

	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("randomizeTrialOrder", rootCmd.PersistentFlags().Lookup("randomizeTrialOrder"))
	_ = viper.BindPFlag("randomizePositions", rootCmd.PersistentFlags().Lookup("randomizePositions"))
	_ = viper.BindPFlag("includePractice", rootCmd.PersistentFlags().Lookup("includePractice"))
	_ = viper.BindPFlag("dataFolder", rootCmd.PersistentFlags().Lookup("dataFolder"))
	_ = viper.BindPFlag("dataFormat", rootCmd.PersistentFlags().Lookup("dataFormat"))
	_ = viper.BindPFlag("logFile", rootCmd.PersistentFlags().Lookup("logFile"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}
}

// ensureConfigLoaded reads the config and tolerates a missing file, so every
// setting can come from flags alone. When the default path is absent,
// appconfig.Load resolves the legacy location and validates the file before
// viper re-reads it.
func ensureConfigLoaded() error {
	err := viper.ReadInConfig()
	if err == nil {
		return nil
	}
	if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfgFile == appconfig.DefaultConfigPath {
		if cfg, loadErr := appconfig.Load(cfgFile); loadErr == nil {
			viper.SetConfigFile(cfg.ConfigPath)
			return viper.ReadInConfig()
		}
	}
	return nil
}

// GetConfig returns the loaded application configuration for other packages.
func GetConfig() *appconfig.Config {
	return currentConfig
}

// DebugEnabled returns true if debug mode is enabled.
func DebugEnabled() bool { return viper.GetBool("debug") }

// SetVersionInfo allows the main package to inject build-time variables.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}
