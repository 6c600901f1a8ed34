// Command glassopt runs one buildup optimization from a YAML job file and
// writes the result tables of the best design.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/copyleftdev/glassopt/internal/config"
	"github.com/copyleftdev/glassopt/internal/job"
	"github.com/copyleftdev/glassopt/internal/logging"
	"github.com/copyleftdev/glassopt/internal/optimization/genetic"
	"github.com/copyleftdev/glassopt/internal/oracle"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	jobPath := flag.String("job", "job.yaml", "YAML job file")
	outDir := flag.String("out", "results", "directory for the result CSV files")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger, err := logging.NewLogger(&logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	logger = logger.WithField("job", *jobPath)

	j, err := job.LoadFileWith(*jobPath, cfg.DefaultSettings())
	if err != nil {
		return err
	}
	if err := j.Preflight(cfg.Limits()); err != nil {
		return err
	}

	predictor := oracle.NewClient(cfg.OracleConfig(), logging.NewZapLogger(logger.Named("oracle")))
	driver, err := j.NewDriver(job.Deps{
		Predictor: predictor,
		Loads:     cfg.LoadsConfig(),
		Sink:      genetic.Tee{&genetic.WriterSink{W: os.Stdout}, genetic.LoggerSink{Logger: logger}},
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	// Ctrl-C ends the run at the next generation boundary.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, runErr := driver.Optimize(ctx, j.Design)
	if result != nil {
		if err := job.WriteResults(*outDir, result); err != nil {
			return err
		}
		logger.Info("results written", map[string]interface{}{
			"dir":       *outDir,
			"outcome":   string(result.Outcome),
			"accepted":  result.Accepted,
			"buildup":   result.Best.Description(),
			"thickness": result.BestThickness,
		})
	}
	return runErr
}
