// Sugoi - Anime Catalog and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sugoi

// Command sugoictl runs maintenance tasks against the Sugoi database without
// going through the HTTP API.
//
//	sugoictl dedupe
//	sugoictl report [-top 5] [-csv report.csv] [-profile 12]
//	sugoictl recommend -profile 12 [-limit 10]
//	sugoictl seed [-seed 42]
//
// Configuration is read the same way as the server (CONFIG_PATH and
// environment variables).
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/goccy/go-json"

	"github.com/tomtom215/sugoi/internal/config"
	"github.com/tomtom215/sugoi/internal/database"
	"github.com/tomtom215/sugoi/internal/logging"
	"github.com/tomtom215/sugoi/internal/metrics"
	"github.com/tomtom215/sugoi/internal/recommend"
	"github.com/tomtom215/sugoi/internal/recommend/strategies"
)

const usage = `usage: sugoictl <command> [flags]

commands:
  dedupe      remove duplicate watch events
  report      print the activity report as JSON, or write it as CSV
  recommend   print recommendations for a profile
  seed        load deterministic demo data
`

var errUsage = errors.New("invalid usage")

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logging.Init(cfg.LoggingConfig())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open database")
	}

	err = run(ctx, cfg, db, os.Args[1:], os.Stdout)
	if closeErr := db.Close(); closeErr != nil {
		logging.Error().Err(closeErr).Msg("Error closing database")
	}
	switch {
	case errors.Is(err, errUsage):
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	case err != nil:
		logging.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}

// run dispatches one subcommand.
func run(ctx context.Context, cfg *config.Config, db *database.DB, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, args := args[0], args[1:]

	switch cmd {
	case "dedupe":
		return runDedupe(ctx, db, out)
	case "report":
		return runReport(ctx, cfg, db, args, out)
	case "recommend":
		return runRecommend(ctx, cfg, db, args, out)
	case "seed":
		return runSeed(ctx, cfg, db, args, out)
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
}

func runDedupe(ctx context.Context, db *database.DB, out io.Writer) error {
	res, err := db.DedupeWatchEvents(ctx)
	if err != nil {
		metrics.RecordDedupe(0, err)
		return fmt.Errorf("dedupe: %w", err)
	}
	metrics.RecordDedupe(res.Removed, nil)
	_, err = fmt.Fprintf(out, "removed %d duplicate watch events in %d groups, %d remaining\n",
		res.Removed, res.Groups, res.Remaining)
	return err
}

// reportOutput is the JSON document printed by report.
type reportOutput struct {
	Report          interface{}         `json:"report"`
	Recommendations *recommend.Response `json:"recommendations,omitempty"`
}

func runReport(ctx context.Context, cfg *config.Config, db *database.DB, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	top := fs.Int("top", database.DefaultReportTopN, "entries per ranking")
	csvPath := fs.String("csv", "", "write the report as CSV to this file instead of printing JSON")
	profileID := fs.Int64("profile", 0, "also print recommendations for this profile")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	report, err := db.BuildReport(ctx, *top)
	if err != nil {
		return fmt.Errorf("build report: %w", err)
	}

	if *csvPath != "" {
		f, err := os.Create(*csvPath)
		if err != nil {
			return fmt.Errorf("create %s: %w", *csvPath, err)
		}
		if err := database.WriteReportCSV(f, report); err != nil {
			_ = f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		_, err = fmt.Fprintf(out, "report written to %s\n", *csvPath)
		return err
	}

	doc := reportOutput{Report: report}
	if *profileID > 0 {
		engine, err := newEngine(cfg, db)
		if err != nil {
			return err
		}
		if err := engine.CheckProfile(ctx, *profileID); err != nil {
			return err
		}
		if doc.Recommendations, err = engine.Recommend(ctx, recommend.Request{ProfileID: *profileID}); err != nil {
			return fmt.Errorf("recommend: %w", err)
		}
	}
	return writeJSON(out, doc)
}

func runRecommend(ctx context.Context, cfg *config.Config, db *database.DB, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("recommend", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	profileID := fs.Int64("profile", 0, "profile id (required)")
	limit := fs.Int("limit", 0, "number of items, 0 uses the configured default")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if *profileID <= 0 {
		return fmt.Errorf("%w: -profile is required", errUsage)
	}

	engine, err := newEngine(cfg, db)
	if err != nil {
		return err
	}
	if err := engine.CheckProfile(ctx, *profileID); err != nil {
		return err
	}
	resp, err := engine.Recommend(ctx, recommend.Request{ProfileID: *profileID, Limit: *limit})
	if err != nil {
		return fmt.Errorf("recommend: %w", err)
	}
	return writeJSON(out, resp)
}

func runSeed(ctx context.Context, cfg *config.Config, db *database.DB, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	seed := fs.Int64("seed", cfg.Database.SeedValue, "random seed for generated activity")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	res, err := db.SeedDemoData(ctx, *seed)
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	return writeJSON(out, res)
}

func newEngine(cfg *config.Config, db *database.DB) (*recommend.Engine, error) {
	engineCfg := cfg.EngineConfig()
	engine, err := recommend.NewEngine(engineCfg, db, logging.Logger())
	if err != nil {
		return nil, err
	}
	strategies.Register(engine, db, engineCfg.Signals)
	return engine, nil
}

func writeJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
