package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/hindsight-sh/hindsight/internal/capture"
	"github.com/hindsight-sh/hindsight/internal/config"
	"github.com/hindsight-sh/hindsight/internal/errors"
	"github.com/hindsight-sh/hindsight/internal/logging"
	"github.com/hindsight-sh/hindsight/internal/ocr"
	"github.com/hindsight-sh/hindsight/internal/preamble"
	"github.com/hindsight-sh/hindsight/internal/screen"
	"github.com/hindsight-sh/hindsight/internal/store"
	"github.com/hindsight-sh/hindsight/internal/web"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(st *store.Store, cfg *config.Config) *cli.App {
	app := &cli.App{
		Name:    "hindsight",
		Usage:   "Local screen recall",
		Version: Version,
		Commands: []*cli.Command{
			runCmd(st, cfg),
			recentCmd(st),
			searchCmd(st),
			contextCmd(st, cfg),
			resolveCmd(st),
			webCmd(st),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// runCmd creates the run command: the capture daemon.
func runCmd(st *store.Store, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Run the capture daemon until interrupted",
		Flags: []cli.Flag{
			&cli.Float64Flag{Name: "interval", Aliases: []string{"i"}, Usage: "Sampling interval in seconds (overrides config, clamped to [1,300])"},
			&cli.StringFlag{Name: "mode", Aliases: []string{"m"}, Usage: "OCR mode: fast|accurate (overrides config)"},
			&cli.BoolFlag{Name: "debug", Usage: "Verbose logging"},
		},
		Action: func(c *cli.Context) error {
			log := logging.New(c.Bool("debug"))
			defer log.Sync()

			interval := cfg.SamplingIntervalSeconds
			if c.IsSet("interval") {
				interval = c.Float64("interval")
			}
			interval = config.ClampInterval(interval)

			modeName := cfg.OCRMode
			if m := c.String("mode"); m != "" {
				modeName = m
			}
			mode := ocr.ParseMode(modeName)

			extractor := ocr.NewTesseract(ocr.WithExecPath(cfg.TesseractPath))
			if !extractor.Available() {
				log.Warn("tesseract binary not found; events will carry no text")
			} else {
				log.Info("ocr engine ready", zap.String("version", extractor.Version()))
			}

			sched := capture.New(capture.Options{
				Stream:      screen.NewDisplayStream(log),
				Permissions: screen.Permissions{},
				Foreground:  screen.NewForeground(log),
				Extractor:   extractor,
				Store:       st,
				Rules:       cfg.Rules,
				Mode:        func() ocr.Mode { return mode },
				Interval:    time.Duration(interval * float64(time.Second)),
				Logger:      log,
			})

			// Surface lifecycle transitions in the daemon log.
			go func() {
				for status := range sched.Events() {
					if status.Err != nil {
						log.Warn("capture state changed",
							zap.Stringer("state", status.State),
							zap.Error(status.Err))
					} else {
						log.Info("capture state changed",
							zap.Stringer("state", status.State))
					}
				}
			}()

			if err := sched.Start(); err != nil {
				return outputError(err)
			}

			sig := make(chan os.Signal, 1)
			signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
			s := <-sig
			log.Info("shutting down", zap.String("signal", s.String()))

			sched.Stop()
			return nil
		},
	}
}

// recentCmd creates the recent command.
func recentCmd(st *store.Store) *cli.Command {
	return &cli.Command{
		Name:  "recent",
		Usage: "List recent capture events, newest first",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: 20, Usage: "Maximum events to return (0 = all)"},
		},
		Action: func(c *cli.Context) error {
			limit := c.Int("limit")
			if limit < 0 {
				return outputError(errors.NewInvalidRequest("limit must not be negative"))
			}

			events, err := st.FetchRecent(limit)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(map[string]any{
				"events": events,
				"count":  len(events),
			})
		},
	}
}

// searchCmd creates the search command.
func searchCmd(st *store.Store) *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search capture events by keywords (case- and accent-insensitive)",
		ArgsUsage: "<keyword> [keyword...]",
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return outputError(errors.NewInvalidRequest("at least one keyword is required"))
			}

			events, err := st.FetchByKeywords(c.Args().Slice())
			if err != nil {
				return outputError(err)
			}

			return outputJSON(map[string]any{
				"events": events,
				"count":  len(events),
			})
		},
	}
}

// contextCmd creates the context command.
func contextCmd(st *store.Store, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "context",
		Usage: "Assemble a recall context block from recent history",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "max-events", Aliases: []string{"n"}, Value: 10, Usage: "Maximum events to include (0 = all)"},
		},
		Action: func(c *cli.Context) error {
			maxEvents := c.Int("max-events")
			if maxEvents < 0 {
				return outputError(errors.NewInvalidRequest("max-events must not be negative"))
			}

			text, err := preamble.New(st, cfg.PreambleTruncateChars).Build(maxEvents)
			if err != nil {
				return outputError(err)
			}

			// Plain text, not JSON: the output is pasted into prompts as-is.
			fmt.Println(text)
			return nil
		},
	}
}

// resolveCmd creates the resolve command.
func resolveCmd(st *store.Store) *cli.Command {
	return &cli.Command{
		Name:      "resolve",
		Usage:     "Resolve a stored screenshot path to an absolute file path",
		ArgsUsage: "<screenshot_path>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return outputError(errors.NewInvalidRequest("exactly one screenshot path is required"))
			}

			abs := st.ResolveScreenshotPath(c.Args().First())
			if abs == nil {
				return outputError(errors.NewInvalidRequest("path is empty or escapes the screenshots directory"))
			}
			if _, err := os.Stat(*abs); err != nil {
				return outputError(errors.NewNotFound(c.Args().First()))
			}

			return outputJSON(map[string]any{"path": *abs})
		},
	}
}

// webCmd creates the web command.
func webCmd(st *store.Store) *cli.Command {
	return &cli.Command{
		Name:  "web",
		Usage: "Serve the local timeline viewer",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Aliases: []string{"a"}, Value: web.DefaultAddr, Usage: "Listen address"},
			&cli.BoolFlag{Name: "debug", Usage: "Verbose logging"},
		},
		Action: func(c *cli.Context) error {
			log := logging.New(c.Bool("debug"))
			defer log.Sync()

			srv, err := web.NewServer(st, log)
			if err != nil {
				return outputError(err)
			}
			return srv.ListenAndServe(c.String("addr"))
		},
	}
}

// Helper functions

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if hErr, ok := err.(*errors.Error); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", hErr.Code, hErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}
