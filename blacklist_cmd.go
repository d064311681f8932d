package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"lol-blacklist/internal/blacklist"
	"lol-blacklist/internal/model"

	"github.com/spf13/cobra"
)

var blacklistCmd = &cobra.Command{
	Use:     "blacklist",
	Aliases: []string{"bl"},
	Short:   "Manage the blacklist from the terminal",
}

var blacklistListCmd = &cobra.Command{
	Use:   "list",
	Short: "List blacklisted players",
	Args:  cobra.NoArgs,
	RunE:  runBlacklistList,
}

var blacklistAddCmd = &cobra.Command{
	Use:   "add <Name#Tag>",
	Short: "Look a player up and add them to the blacklist",
	Long: `Look a player up through the Riot API and add them to the blacklist.

When the tag is omitted the default tag of the configured region is used.

Examples:
  lol-blacklist blacklist add "Some Player#EUW" --reason "ran it down"
  lol-blacklist blacklist add Player`,
	Args: cobra.ExactArgs(1),
	RunE: runBlacklistAdd,
}

var blacklistRemoveCmd = &cobra.Command{
	Use:   "remove <summoner-id>",
	Short: "Remove a player from the blacklist",
	Args:  cobra.ExactArgs(1),
	RunE:  runBlacklistRemove,
}

var blacklistExportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Write the blacklist as CSV to a file or stdout",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runBlacklistExport,
}

var blacklistImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Merge a CSV export into the blacklist",
	Args:  cobra.ExactArgs(1),
	RunE:  runBlacklistImport,
}

var (
	listFilter string
	addReason  string
)

func init() {
	blacklistListCmd.Flags().StringVarP(&listFilter, "filter", "f", "", "only show names containing this text")
	blacklistAddCmd.Flags().StringVarP(&addReason, "reason", "r", "", "why the player is blacklisted")

	blacklistCmd.AddCommand(blacklistListCmd, blacklistAddCmd, blacklistRemoveCmd, blacklistExportCmd, blacklistImportCmd)
	rootCmd.AddCommand(blacklistCmd)
}

func runBlacklistList(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	entries, err := a.manager.List(listFilter)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(entries) == 0 {
		if listFilter != "" {
			fmt.Fprintf(out, "No blacklisted players match %q.\n", listFilter)
		} else {
			fmt.Fprintln(out, "Your blacklist is empty.")
		}
		return nil
	}
	return printEntries(out, entries)
}

func printEntries(out io.Writer, entries []model.BlacklistEntry) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PLAYER\tADDED\tREASON\tID")
	for _, e := range entries {
		added := "unknown"
		if !e.DateAdded.IsZero() {
			added = e.DateAdded.Format("2006-01-02")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.DisplayName(), added, e.Reason, e.SummonerID)
	}
	return tw.Flush()
}

func runBlacklistAdd(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()
	if err := a.requireAPI(); err != nil {
		return err
	}

	summoner, err := a.manager.ResolveSummoner(cmd.Context(), args[0], "")
	if err != nil {
		return err
	}
	entry, err := a.manager.Add(model.BlacklistEntry{
		SummonerID:   summoner.BlacklistID(),
		SummonerName: summoner.GameName,
		Tagline:      summoner.Tagline,
		Reason:       addReason,
	})
	if err != nil {
		if errors.Is(err, blacklist.ErrAlreadyBlacklisted) {
			return fmt.Errorf("%s: %w", summoner.DisplayName(), err)
		}
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %s to your blacklist\n", colorize(out, colorGreen, "Added"), entry.DisplayName())
	return nil
}

func runBlacklistRemove(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	entry, ok, err := a.manager.Entry(args[0])
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%s: %w", args[0], blacklist.ErrNotBlacklisted)
	}
	if err := a.manager.Remove(entry.SummonerID); err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %s from your blacklist\n", colorize(out, colorGreen, "Removed"), entry.DisplayName())
	return nil
}

func runBlacklistExport(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	if len(args) == 0 {
		return a.manager.Export(cmd.OutOrStdout())
	}
	f, err := os.Create(args[0])
	if err != nil {
		return err
	}
	if err := a.manager.Export(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported blacklist to %s\n", args[0])
	return nil
}

func runBlacklistImport(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	result, err := a.manager.Import(f)
	if err != nil {
		return fmt.Errorf("import %s: %w", args[0], err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d players, skipped %d already on the list\n", result.Added, result.Skipped)
	return nil
}
