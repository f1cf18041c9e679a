package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var rootCmd = &cobra.Command{
	Use:   "probe",
	Short: "Probe host types, members and plugins without crashing",
	Long: `probe resolves types and members through the failure-tolerant probe
library and reports what is present, what is absent and why.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return teardown(cmd.Context())
	},
}

func main() {
	rootCmd.Version = version

	rootCmd.AddCommand(loadCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(envCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("config", "", "config file (default $PROBE_CONFIG)")
	rootCmd.PersistentFlags().String("color", "", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("verbose", false, "log every probe, not only failures")
	rootCmd.PersistentFlags().String("journal", "", "append probe records to this msgpack journal")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
