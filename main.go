// Package main is the entry point for the lol-blacklist dashboard and CLI.
package main

import (
	"embed"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

//go:embed templates static
var content embed.FS

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "lol-blacklist",
	Short: "lol-blacklist - a personal League of Legends blacklist",
	Long: `lol-blacklist keeps a private list of League of Legends players you
would rather not play with again. It looks players up through the Riot API,
shows their recent matches and warns you when someone from the list is in
your current game.

Running without a subcommand starts the web dashboard.`,
	Version:      Version,
	SilenceUsage: true,
	Args:         cobra.NoArgs,
	RunE:         runServe,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.SetVersionTemplate("lol-blacklist version {{.Version}}\n")
}
