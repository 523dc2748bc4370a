// marketdata resolves market snapshots and charts for NSE, US and crypto
// symbols from public sources, falling back to synthetic estimates.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/seenimoa/marketdata/api"
	"github.com/seenimoa/marketdata/internal/config"
	"github.com/seenimoa/marketdata/internal/datasource"
	"github.com/seenimoa/marketdata/internal/infra"
	"github.com/seenimoa/marketdata/internal/resolver"
	"github.com/seenimoa/marketdata/internal/synthetic"
	"github.com/seenimoa/marketdata/internal/watch"
	"github.com/seenimoa/marketdata/pkg/models"
	"github.com/seenimoa/marketdata/pkg/utils"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config and logger, set by the root command.
var (
	cfg    *config.Config
	logger *slog.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "marketdata",
	Short: "Market snapshots and charts for NSE, US and crypto symbols",
	Long: `marketdata resolves a complete, uniformly keyed snapshot for any symbol
by merging NSE, Yahoo Finance, Screener.in and CoinGecko data, and falls back
to clearly marked synthetic estimates when every source fails.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
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
		logger = infra.NewLogger(cfg.Logging.Level, cfg.Logging.Format, os.Stderr)
		slog.SetDefault(logger)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringP("format", "f", formatTable, "output format (table, json, yaml)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(chartCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(statusCmd)
}

// newResolver builds the resolution engine from the loaded configuration.
func newResolver(c *config.Config, l *slog.Logger) *resolver.Resolver {
	cache := infra.NewCache(c.Cache.SnapshotTTL,
		infra.WithTTL(infra.OpChart, c.Cache.ChartTTL),
		infra.WithShards(c.Cache.Shards),
	)
	return resolver.New(
		resolver.WithSources(resolver.Sources{
			NSE:       sourceOptions(c.Sources.NSE),
			Yahoo:     sourceOptions(c.Sources.Yahoo),
			Screener:  sourceOptions(c.Sources.Screener),
			CoinGecko: sourceOptions(c.Sources.CoinGecko),
		}),
		resolver.WithCache(cache),
		resolver.WithGenerator(synthetic.New(c.Resolver.Seed)),
		resolver.WithMaxConcurrency(c.Resolver.MaxConcurrency),
		resolver.WithLogger(l),
	)
}

func sourceOptions(s config.SourceConfig) datasource.Options {
	return datasource.Options{
		BaseURL: s.BaseURL,
		Timeout: s.Timeout,
		Rate:    s.Rate,
		APIKey:  s.APIKey,
	}
}

// newWatcher builds the watchlist refresher from config, merging the
// configured symbols with the watchlist file and any extra symbols.
func newWatcher(c *config.Config, r watch.Resolver, l *slog.Logger, extra []string) (*watch.Watcher, error) {
	symbols := c.Watch.Symbols
	if c.Watch.File != "" {
		wl, err := watch.LoadWatchlist(c.Watch.File)
		if err != nil {
			return nil, err
		}
		symbols = watch.Dedupe(symbols, wl.Symbols)
	}
	w := watch.New(r, watch.Dedupe(symbols, extra), watch.WithLogger(l))
	if err := w.Schedule(c.Watch.Schedule); err != nil {
		return nil, err
	}
	return w, nil
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "marketdata %s\n", version)
		fmt.Fprintf(out, "  commit:  %s\n", commit)
		fmt.Fprintf(out, "  built:   %s\n", date)
	},
}

// --- Snapshot Command ---

var snapshotCmd = &cobra.Command{
	Use:   "snapshot [symbol]",
	Short: "Resolve the full snapshot for a symbol",
	Long: `Resolve the full snapshot for a symbol.

Examples:
  marketdata snapshot RELIANCE
  marketdata snapshot BTC-USD --format json
  marketdata snapshot AAPL -f yaml`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := outputFormat(cmd)
		if err != nil {
			return err
		}
		r := newResolver(cfg, logger)
		snap := r.GetSnapshot(cmd.Context(), args[0])
		return render(cmd.OutOrStdout(), format, snap, func() string { return snapshotTable(snap) })
	},
}

// --- Chart Command ---

var chartCmd = &cobra.Command{
	Use:   "chart [symbol]",
	Short: "Build a candle series with indicators for a symbol",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := outputFormat(cmd)
		if err != nil {
			return err
		}
		period, _ := cmd.Flags().GetString("period")
		interval, _ := cmd.Flags().GetString("interval")

		r := newResolver(cfg, logger)
		chart := r.GetChart(cmd.Context(), args[0], models.Period(period), interval)
		return render(cmd.OutOrStdout(), format, chart, func() string { return chartTable(chart) })
	},
}

func init() {
	chartCmd.Flags().String("period", string(models.Period1D), "look-back period (1d, 5d, 1mo, 3mo, 6mo, 1y, 5y)")
	chartCmd.Flags().String("interval", "", "candle interval (default depends on period)")
}

// --- Compare Command ---

var compareCmd = &cobra.Command{
	Use:   "compare [symbol...]",
	Short: "Resolve several symbols side by side",
	Args:  cobra.RangeArgs(1, api.MaxCompareSymbols),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := outputFormat(cmd)
		if err != nil {
			return err
		}
		r := newResolver(cfg, logger)
		snaps := r.CompareSnapshots(cmd.Context(), args)
		return render(cmd.OutOrStdout(), format, snaps, func() string { return compareTable(snaps) })
	},
}

// --- Serve Command (API Server) ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		r := newResolver(cfg, logger)
		opts := []api.Option{api.WithLogger(logger), api.WithVersion(version)}

		w, err := newWatcher(cfg, r, logger, nil)
		if err != nil {
			return err
		}
		if len(w.Symbols()) > 0 {
			w.Start(ctx)
			defer w.Stop()
			opts = append(opts, api.WithWatcher(w))
		}

		addr := net.JoinHostPort(cfg.API.Host, strconv.Itoa(cfg.API.Port))
		return api.NewServer(cfg, r, opts...).ListenAndServe(ctx, addr)
	},
}

// --- Watch Command ---

var watchCmd = &cobra.Command{
	Use:   "watch [symbol...]",
	Short: "Refresh a watchlist on a schedule and print each update",
	Long: `Refresh a watchlist on a schedule and print each update.

Symbols come from watch.symbols, the watch.file YAML watchlist and the
arguments. The schedule is a cron spec such as "@every 30s" or "*/5 * * * *".`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := outputFormat(cmd)
		if err != nil {
			return err
		}
		if schedule, _ := cmd.Flags().GetString("schedule"); schedule != "" {
			cfg.Watch.Schedule = schedule
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		r := newResolver(cfg, logger)
		w, err := newWatcher(cfg, r, logger, args)
		if err != nil {
			return err
		}
		if len(w.Symbols()) == 0 {
			return fmt.Errorf("no symbols to watch: pass symbols or set watch.symbols / watch.file")
		}

		if save, _ := cmd.Flags().GetString("save"); save != "" {
			if err := (&watch.Watchlist{Symbols: w.Symbols()}).Save(save); err != nil {
				return err
			}
		}

		updates, unsubscribe := w.Subscribe(1)
		defer unsubscribe()

		out := cmd.OutOrStdout()
		printUpdate := func(u watch.Update) error {
			return render(out, format, u, func() string {
				return fmt.Sprintf("── %s ──\n%s", utils.FormatDateTimeIST(u.At), compareTable(u.Snapshots))
			})
		}

		if err := printUpdate(w.RunOnce(ctx)); err != nil {
			return err
		}
		// RunOnce also published to our own subscription.
		<-updates

		w.Start(ctx)
		defer w.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case u, ok := <-updates:
				if !ok {
					return nil
				}
				if err := printUpdate(u); err != nil {
					return err
				}
			}
		}
	},
}

func init() {
	watchCmd.Flags().String("schedule", "", "cron schedule override (default: watch.schedule)")
	watchCmd.Flags().String("save", "", "write the merged watchlist to this YAML file")
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show market sessions, source chains and configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		r := newResolver(cfg, logger)
		now := time.Now()
		out := cmd.OutOrStdout()

		fmt.Fprintln(out, "═══════════════════════════════════════")
		fmt.Fprintln(out, "  marketdata System Status")
		fmt.Fprintln(out, "═══════════════════════════════════════")
		fmt.Fprintf(out, "  Version:       %s (%s)\n", version, commit)
		fmt.Fprintf(out, "  Time (IST):    %s\n", utils.FormatDateTimeIST(now))
		fmt.Fprintln(out)

		fmt.Fprintln(out, "  Markets:")
		for _, m := range []models.Market{models.MarketEquityIN, models.MarketEquityUS, models.MarketCrypto} {
			fmt.Fprintf(out, "    %-10s %-22s sources: %v\n", m, utils.MarketStatus(m, now), r.Chain(m))
		}
		fmt.Fprintln(out)

		fmt.Fprintln(out, "  Configuration:")
		fmt.Fprintf(out, "    Cache TTL:     snapshot %s, chart %s (%d shards)\n",
			cfg.Cache.SnapshotTTL, cfg.Cache.ChartTTL, cfg.Cache.Shards)
		fmt.Fprintf(out, "    Concurrency:   %d\n", cfg.Resolver.MaxConcurrency)
		fmt.Fprintf(out, "    API Server:    %s:%d\n", cfg.API.Host, cfg.API.Port)
		fmt.Fprintf(out, "    Watch:         %s, %d symbols\n", cfg.Watch.Schedule, len(cfg.Watch.Symbols))
		fmt.Fprintln(out)

		fmt.Fprintln(out, "  API Keys:")
		for _, k := range config.CheckAPIKeys(cfg) {
			status := "not set"
			if k.IsSet {
				status = fmt.Sprintf("set (%s: %s)", k.Source, k.Masked)
			}
			fmt.Fprintf(out, "    %-25s %s\n", k.Name+":", status)
		}

		fmt.Fprintln(out, "═══════════════════════════════════════")
		return nil
	},
}
