package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:   "ollamaedit",
	Short: "LLM edit sidecar for Vim/Neovim",
	Long: "ollamaedit runs natural-language edits against a buffer: it asks an LLM\n" +
		"to rewrite a line range, diffs the proposal against the original, and\n" +
		"renders the changes as groups to accept or reject one by one.",
}

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run the edit daemon on its unix socket",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDaemon()
	},
}

var attachCmd = &cobra.Command{
	Use:   "attach",
	Short: "Relay stdio to the daemon, starting it if needed",
	Long: "attach is what the editor plugin spawns: it bridges the plugin's\n" +
		"msgpack-rpc channel on stdin/stdout to the shared daemon's socket.",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := NewClient()
		if err := client.EnsureDaemonRunning(); err != nil {
			return err
		}
		return client.Connect()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print ollamaedit version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(os.Stdout, "ollamaedit version %s\n", version)
	},
}

func main() {
	rootCmd.AddCommand(daemonCmd)
	rootCmd.AddCommand(attachCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
