// hwtelemetry polls a LibreHardwareMonitor web server, classifies the
// sensor tree into CPU, GPU, memory, storage, network and motherboard
// readings and presents them.
//
// Commands:
//
//	monitor   live terminal dashboard (default)
//	serve     headless: poll, record and serve the HTTP/WebSocket API
//	once      fetch a single snapshot and print it
//	history   browse recorded days
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/luki/hwtelemetry/internal/api"
	"github.com/luki/hwtelemetry/internal/config"
	"github.com/luki/hwtelemetry/internal/detect"
	"github.com/luki/hwtelemetry/internal/extract"
	"github.com/luki/hwtelemetry/internal/format"
	"github.com/luki/hwtelemetry/internal/history"
	"github.com/luki/hwtelemetry/internal/logging"
	"github.com/luki/hwtelemetry/internal/monitor"
	"github.com/luki/hwtelemetry/internal/poller"
	"github.com/luki/hwtelemetry/internal/store"
	"github.com/luki/hwtelemetry/internal/viewer"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	command := "monitor"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		command, args = args[0], args[1:]
	}

	flagSet := pflag.NewFlagSet("hwtelemetry "+command, pflag.ContinueOnError)
	configPath := flagSet.StringP("config", "c", "", "YAML config file (default $HWT_CONFIG)")
	flagSet.String("host", "", "LibreHardwareMonitor host")
	flagSet.Int("port", 0, "LibreHardwareMonitor port")
	flagSet.Duration("interval", 0, "poll interval")
	flagSet.Duration("timeout", 0, "fetch timeout")
	flagSet.String("unit", "", "temperature unit: celsius or fahrenheit")
	flagSet.String("listen", "", "API listen address (serve)")
	flagSet.String("data-dir", "", "directory for the readings database and log file")
	flagSet.Bool("no-record", false, "do not write readings to the database")
	flagSet.String("log-level", "", "debug, info, warn or error")
	jsonOut := flagSet.Bool("json", false, "print the snapshot as JSON (once)")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printHelp(flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help || command == "help" {
		printHelp(flagSet)
		return nil
	}
	if rest := flagSet.Args(); len(rest) > 0 {
		return fmt.Errorf("unexpected argument: %s", rest[0])
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	applyFlags(&cfg, flagSet)
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch command {
	case "monitor":
		return runMonitor(ctx, cfg)
	case "serve":
		return runServe(ctx, cfg)
	case "once":
		return runOnce(ctx, cfg, *jsonOut, os.Stdout)
	case "history":
		return runHistory(ctx, cfg)
	default:
		return fmt.Errorf("unknown command %q (want monitor, serve, once or history)", command)
	}
}

// applyFlags copies explicitly set flags over the loaded configuration.
func applyFlags(cfg *config.Config, fs *pflag.FlagSet) {
	if fs.Changed("host") {
		cfg.Host, _ = fs.GetString("host")
	}
	if fs.Changed("port") {
		cfg.Port, _ = fs.GetInt("port")
	}
	if fs.Changed("interval") {
		cfg.PollInterval, _ = fs.GetDuration("interval")
	}
	if fs.Changed("timeout") {
		cfg.FetchTimeout, _ = fs.GetDuration("timeout")
	}
	if fs.Changed("unit") {
		u, _ := fs.GetString("unit")
		cfg.TemperatureUnit = strings.ToLower(u)
	}
	if fs.Changed("listen") {
		cfg.ListenAddr, _ = fs.GetString("listen")
	}
	if fs.Changed("data-dir") {
		cfg.DataDir, _ = fs.GetString("data-dir")
	}
	if fs.Changed("no-record") {
		noRecord, _ := fs.GetBool("no-record")
		cfg.Record = !noRecord
	}
	if fs.Changed("log-level") {
		l, _ := fs.GetString("log-level")
		cfg.LogLevel = strings.ToLower(l)
	}
}

func printHelp(fs *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `hwtelemetry - hardware telemetry from a LibreHardwareMonitor web server.

Usage:
  hwtelemetry [command] [flags]

Commands:
  monitor   live terminal dashboard (default)
  serve     poll, record and serve the HTTP/WebSocket API
  once      fetch one snapshot and print it
  history   browse recorded days

Flags:
%s`, fs.FlagUsages())
}

// pipeline is the poller with its in-memory history attached.
type pipeline struct {
	poller  *poller.Poller
	history *history.Store
	fetcher *poller.HTTPFetcher
}

func newPipeline(cfg config.Config, log *slog.Logger) pipeline {
	fetcher := poller.NewHTTPFetcher(poller.BaseURL(cfg.Host, cfg.Port), cfg.FetchTimeout, nil)
	builder := extract.NewBuilder(detect.Default(cfg.Tuning.Detect), cfg.Tuning.Limits)
	p := poller.New(fetcher, builder,
		poller.WithInterval(cfg.PollInterval),
		poller.WithLogger(log),
	)
	hist := history.NewStore(cfg.HistorySize)
	p.OnPublish(hist.RecordSnapshot)
	return pipeline{poller: p, history: hist, fetcher: fetcher}
}

// openRecorder opens the database and subscribes a recorder to p when
// recording is enabled. The returned close func is never nil.
func openRecorder(cfg config.Config, p *poller.Poller, log *slog.Logger) (*store.Recorder, func(), error) {
	if !cfg.Record {
		return nil, func() {}, nil
	}
	disk, err := store.Open(cfg.DataDir)
	if err != nil {
		return nil, nil, err
	}
	rec := store.NewRecorder(disk, log)
	p.OnPublish(rec.Enqueue)
	return rec, func() {
		if err := disk.Close(); err != nil {
			log.Warn("close database failed", "error", err)
		}
	}, nil
}

func runMonitor(ctx context.Context, cfg config.Config) error {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("cannot create data dir: %w", err)
	}
	logFile, err := tea.LogToFile(filepath.Join(cfg.DataDir, "hwtelemetry.log"), "")
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()
	log := logging.New(cfg.LogLevel, cfg.LogFormat, logFile)

	pl := newPipeline(cfg, log)
	rec, closeDB, err := openRecorder(cfg, pl.poller, log)
	if err != nil {
		return err
	}
	defer closeDB()

	opts := monitor.Options{
		Unit:     format.ParseUnit(cfg.TemperatureUnit),
		Endpoint: pl.fetcher.URL(),
	}
	if rec != nil {
		opts.RecordDir = cfg.DataDir
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return pl.poller.Run(gctx)
	})
	if rec != nil {
		g.Go(func() error {
			return rec.Run(gctx)
		})
	}
	g.Go(func() error {
		defer cancel()
		program := tea.NewProgram(
			monitor.New(pl.poller, pl.history, opts),
			tea.WithAltScreen(),
			tea.WithContext(gctx),
		)
		_, err := program.Run()
		if errors.Is(err, tea.ErrProgramKilled) {
			return nil
		}
		return err
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func runServe(ctx context.Context, cfg config.Config) error {
	log := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)

	pl := newPipeline(cfg, log)
	rec, closeDB, err := openRecorder(cfg, pl.poller, log)
	if err != nil {
		return err
	}
	defer closeDB()

	hub := api.NewHub(log)
	pl.poller.OnPublish(hub.Publish)
	srv := api.NewServer(cfg.ListenAddr, pl.poller, pl.history, hub, log)

	log.Info("hwtelemetry starting",
		"source", pl.fetcher.URL(),
		"interval", cfg.PollInterval,
		"record", cfg.Record,
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})
	g.Go(func() error {
		return pl.poller.Run(gctx)
	})
	g.Go(func() error {
		return srv.Start(gctx)
	})
	if rec != nil {
		g.Go(func() error {
			return rec.Run(gctx)
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info("hwtelemetry stopped")
	return nil
}

func runOnce(ctx context.Context, cfg config.Config, asJSON bool, w io.Writer) error {
	log := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	pl := newPipeline(cfg, log)

	if err := pl.poller.PollOnce(ctx); err != nil {
		return err
	}
	snap := pl.poller.Snapshot()

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	}

	unit := format.ParseUnit(cfg.TemperatureUnit)
	for _, src := range format.Sources(snap.Identity) {
		p := unit.Render(src, snap)
		fmt.Fprintf(w, "%s\n  %s\n  %s\n  %s\n", src, p.Title, p.Detail, p.Extra)
	}
	if len(snap.Missing) > 0 {
		fmt.Fprintf(w, "not detected: %s\n", strings.Join(snap.Missing, ", "))
	}
	return nil
}

func runHistory(ctx context.Context, cfg config.Config) error {
	disk, err := store.Open(cfg.DataDir)
	if err != nil {
		return err
	}
	defer disk.Close()

	err = viewer.Run(ctx, disk, format.ParseUnit(cfg.TemperatureUnit))
	if errors.Is(err, viewer.ErrNoHistory) {
		return fmt.Errorf("no history data found in %s", disk.Dir())
	}
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}
