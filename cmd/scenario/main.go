package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/milk9111/tabletop/logging"
	"github.com/milk9111/tabletop/scenario"
)

func main() {
	script := flag.String("script", "break_glass", "scenario script under prefabs/scripts (.tengo optional)")
	scene := flag.String("scene", scenario.DefaultScene, "scene prefab")
	seed := flag.Uint64("seed", 0, "random seed; 0 uses the scene's seed")
	out := flag.String("out", "", "write the YAML report here instead of stdout")
	timeout := flag.Duration("timeout", 30*time.Second, "abort the script after this long")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	logger, err := logging.New(*debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "scenario: logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(logger, *script, *scene, *seed, *out, *timeout); err != nil {
		logger.Error("scenario failed", zap.String("script", *script), zap.Error(err))
		if errors.Is(err, scenario.ErrExpectation) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run(logger *zap.Logger, script, scene string, seed uint64, out string, timeout time.Duration) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	ctx, cancelTimeout := context.WithTimeout(ctx, timeout)
	defer cancelTimeout()

	runner, err := scenario.NewRunner(scenario.Options{Scene: scene, Seed: seed, Logger: logger})
	if err != nil {
		return err
	}

	report, runErr := runner.RunScript(ctx, script)
	data, err := report.YAML()
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if out == "" {
		_, err = os.Stdout.Write(data)
	} else {
		err = os.WriteFile(out, data, 0o644)
	}
	if err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	logger.Info("scenario finished",
		zap.String("script", script),
		zap.Int("steps", report.Steps),
		zap.Bool("broken", report.Broken),
		zap.Int("clinks", report.Clinks),
		zap.Bool("passed", report.Passed()))
	return runErr
}
