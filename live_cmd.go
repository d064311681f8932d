package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"lol-blacklist/internal/blacklist"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
)

const checkTimeout = 30 * time.Second

var liveCmd = &cobra.Command{
	Use:   "live <Name#Tag>",
	Short: "Check a player's current game for blacklisted players",
	Args:  cobra.ExactArgs(1),
	RunE:  runLive,
}

var watchCmd = &cobra.Command{
	Use:   "watch <Name#Tag>",
	Short: "Keep checking a player's live game until interrupted",
	Long: `Keep checking a player's live game until interrupted.

A report is printed whenever a new game starts. The interval defaults to
LIVE_REFRESH_SECONDS.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

var watchEvery time.Duration

func init() {
	watchCmd.Flags().DurationVar(&watchEvery, "every", 0, "time between checks, e.g. 30s")

	rootCmd.AddCommand(liveCmd, watchCmd)
}

func runLive(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()
	if err := a.requireAPI(); err != nil {
		return err
	}

	report, err := a.manager.CheckLiveGame(cmd.Context(), args[0], "")
	if err != nil {
		return err
	}
	printReport(cmd.OutOrStdout(), report)
	return nil
}

func printReport(out io.Writer, report blacklist.LiveReport) {
	name := report.Summoner.DisplayName()
	if !report.InGame() {
		fmt.Fprintf(out, "%s is not currently in a game.\n", name)
		return
	}
	game := report.Game
	fmt.Fprintf(out, "%s is in a %s game (id %d).\n", name, game.QueueName, game.GameID)
	if len(report.Flagged) == 0 {
		fmt.Fprintln(out, colorize(out, colorGreen, "No blacklisted players found in this game."))
		return
	}
	fmt.Fprintln(out, colorize(out, colorRed, fmt.Sprintf("Found %d blacklisted player(s):", len(report.Flagged))))
	for _, p := range report.Flagged {
		line := fmt.Sprintf("  %s (%s team, champion %s)", p.DisplayName(), p.Team, p.Champion)
		if p.Entry != nil && p.Entry.Reason != "" {
			line += ": " + p.Entry.Reason
		}
		fmt.Fprintln(out, colorize(out, colorYellow, line))
	}
}

// watcher prints a report each time the watched player enters a new game.
type watcher struct {
	manager *blacklist.Manager
	riotID  string
	out     io.Writer
	logger  *slog.Logger

	mu       sync.Mutex
	lastGame int64
}

func (w *watcher) check(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	report, err := w.manager.CheckLiveGame(ctx, w.riotID, "")
	if err != nil {
		w.logger.Error("live check failed", "riot_id", w.riotID, "error", err)
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if !report.InGame() {
		if w.lastGame != 0 {
			fmt.Fprintf(w.out, "%s left game %d.\n", report.Summoner.DisplayName(), w.lastGame)
		}
		w.lastGame = 0
		return
	}
	if report.Game.GameID == w.lastGame {
		return
	}
	w.lastGame = report.Game.GameID
	for _, p := range report.Flagged {
		w.logger.Warn("blacklisted player in game", "game_id", report.Game.GameID, "riot_id", p.DisplayName(), "summoner_id", p.SummonerID)
	}
	printReport(w.out, report)
}

func runWatch(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()
	if err := a.requireAPI(); err != nil {
		return err
	}

	every := watchEvery
	if every <= 0 {
		every = a.cfg.LiveRefresh
	}
	if every < 5*time.Second {
		return fmt.Errorf("--every must be at least 5s")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w := &watcher{manager: a.manager, riotID: args[0], out: cmd.OutOrStdout(), logger: a.logger}
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(fmt.Sprintf("@every %s", every), func() { w.check(ctx) }); err != nil {
		return fmt.Errorf("schedule live check: %w", err)
	}

	w.check(ctx)
	c.Start()
	a.logger.Info("watching live games", "riot_id", args[0], "every", every)

	<-ctx.Done()
	a.logger.Info("stopping watch")
	<-c.Stop().Done()
	return nil
}
