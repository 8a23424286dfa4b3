package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "watchdeck",
	Short: "watchdeck - live trading signal dashboard client",
	Long: `watchdeck consumes a live signal stream over WebSocket, keeps the
active-signal registry reconciled in memory, and serves time-decayed
dashboard views over HTTP. State is disposable: a restart rebuilds the
view from the upstream stream.`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug mode")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
