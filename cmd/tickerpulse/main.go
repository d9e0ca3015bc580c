// tickerpulse scores recent news sentiment for every ticker in a
// spreadsheet column and writes the results back in one batch.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/tickerpulse/internal/config"
	"github.com/seenimoa/tickerpulse/internal/scheduler"
	"github.com/seenimoa/tickerpulse/pkg/utils"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config
var cfg *config.Config

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "tickerpulse",
	Short: "News sentiment for a spreadsheet of tickers",
	Long: `tickerpulse reads a column of tickers from a Google Sheet, fetches recent
news for each from Alpaca, scores every article with a lexicon-based
sentiment model and writes the average, article count and timestamp
back to the sheet in a single update.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env is optional
		_ = godotenv.Load()

		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if level, _ := cmd.Flags().GetString("log-level"); level != "" {
			cfg.Logging.Level = level
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(scheduleCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(normalizeCmd)
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("tickerpulse %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Run Command ---

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Score every ticker once and write the results",
	RunE: func(cmd *cobra.Command, args []string) error {
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		app, err := newApp(ctx, cfg, dryRun, os.Stderr)
		if err != nil {
			return err
		}
		summary, err := app.job.Execute(ctx)
		if err != nil {
			return err
		}

		fmt.Printf("rows=%d scored=%d no_data=%d skipped=%d written=%t elapsed=%s\n",
			summary.Rows, summary.Scored, summary.NoData, summary.Skipped,
			summary.Written, summary.Elapsed.Round(time.Millisecond))
		return nil
	},
}

func init() {
	runCmd.Flags().Bool("dry-run", false, "compute results but do not write to the sheet")
}

// --- Schedule Command ---

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run on the configured cron schedule until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		now, _ := cmd.Flags().GetBool("now")

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		app, err := newApp(ctx, cfg, false, os.Stderr)
		if err != nil {
			return err
		}

		job := func(ctx context.Context) error {
			summary, err := app.job.Execute(ctx)
			if err != nil {
				return err
			}
			app.logger.Info().
				Int("rows", summary.Rows).
				Int("scored", summary.Scored).
				Int("no_data", summary.NoData).
				Dur("elapsed", summary.Elapsed).
				Msg("scheduled run complete")
			return nil
		}

		sched, err := scheduler.New(cfg.Schedule.Cron, job, app.logger)
		if err != nil {
			return err
		}
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error { return sched.Run(gctx) })
		if now {
			g.Go(func() error {
				sched.RunNow(gctx)
				return nil
			})
		}
		return g.Wait()
	},
}

func init() {
	scheduleCmd.Flags().Bool("now", false, "also run once immediately")
}

// --- Check Command ---

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Show configuration and credential status",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("═══════════════════════════════════════")
		fmt.Println("  tickerpulse — Configuration")
		fmt.Println("═══════════════════════════════════════")
		fmt.Printf("  Version:        %s (%s)\n", version, commit)
		fmt.Printf("  Time (UTC):     %s\n", utils.FormatUTC(time.Now()))
		fmt.Println()

		fmt.Println("  News:")
		fmt.Printf("    Base URL:       %s\n", cfg.News.BaseURL)
		fmt.Printf("    Max articles:   %d\n", cfg.News.MaxArticles)
		fmt.Printf("    Lookback:       %d days\n", cfg.News.LookbackDays)
		fmt.Printf("    Ticker delay:   %s\n", cfg.Run.InterTickerDelay)
		fmt.Println()

		fmt.Println("  Sheet:")
		fmt.Printf("    Spreadsheet:    %s\n", cfg.Sheet.SpreadsheetID)
		fmt.Printf("    Worksheet:      %s\n", cfg.Sheet.Worksheet)
		fmt.Printf("    Tickers:        column %s\n", cfg.Sheet.TickerColumn)
		fmt.Printf("    Output:         from column %s, row %d\n", cfg.Sheet.OutputColumn, cfg.Sheet.HeaderRow)
		fmt.Printf("    Schedule:       %s (UTC)\n", cfg.Schedule.Cron)
		fmt.Println()

		fmt.Println("  Credentials:")
		for _, k := range config.CheckAPIKeys(cfg) {
			status := "❌ not set"
			if k.IsSet {
				status = fmt.Sprintf("✅ set (%s: %s)", k.Source, k.Masked)
			}
			fmt.Printf("    %-25s %s\n", k.Name+":", status)
		}
		fmt.Println("═══════════════════════════════════════")

		return cfg.Validate()
	},
}

// --- Normalize Command ---

var normalizeCmd = &cobra.Command{
	Use:   "normalize TICKER...",
	Short: "Show the news-API symbol for each ticker",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		for _, raw := range args {
			fmt.Printf("%-16s %s\n", raw, utils.NormalizeTicker(raw))
		}
	},
}
