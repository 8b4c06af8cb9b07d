// Command dtnsim runs discrete-event delay-tolerant-network simulations
// described by a scenario configuration file.
package main

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/iti/dtnsim"
)

var (
	scenarioFile string
	logLevel     string
	outputDir    string
)

var rootCmd = &cobra.Command{
	Use:   "dtnsim",
	Short: "Discrete-event simulator for delay-tolerant networks",
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a scenario and log its summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		level, err := log.ParseLevel(logLevel)
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", logLevel, err)
		}
		log.SetLevel(level)

		if scenarioFile == "" {
			return fmt.Errorf("--scenario is required")
		}
		settings, err := dtnsim.ParseSettingsFile(scenarioFile)
		if err != nil {
			return fmt.Errorf("loading scenario: %w", err)
		}

		result, err := dtnsim.RunScenario(settings, outputDir)
		if err != nil {
			return fmt.Errorf("running scenario: %w", err)
		}
		log.WithFields(log.Fields{
			"deliveryRatio": result.DeliveryRatio,
			"overheadRatio": result.OverheadRatio,
		}).Info("run complete")
		return nil
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Parse and report on a scenario file without running it",
	RunE: func(cmd *cobra.Command, args []string) error {
		if scenarioFile == "" {
			return fmt.Errorf("--scenario is required")
		}
		settings, err := dtnsim.ParseSettingsFile(scenarioFile)
		if err != nil {
			return fmt.Errorf("invalid scenario: %w", err)
		}
		sweeps := settings.Sweeps()
		if len(sweeps) == 0 {
			fmt.Println("scenario is valid; no sweep parameters")
			return nil
		}
		fmt.Println("scenario is valid; sweep parameters:")
		for key, values := range sweeps {
			fmt.Printf("  %s: %v\n", key, values)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&scenarioFile, "scenario", "", "path to a scenario configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: trace, debug, info, warn, error")
	runCmd.Flags().StringVar(&outputDir, "output", ".", "directory to write the run trace into, when tracing is enabled")
	rootCmd.AddCommand(runCmd, validateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
