package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"codeberg.org/mutker/mmcqueues/internal/config"
	"codeberg.org/mutker/mmcqueues/internal/errors"
	"codeberg.org/mutker/mmcqueues/internal/logger"
	"codeberg.org/mutker/mmcqueues/internal/report"
	"codeberg.org/mutker/mmcqueues/internal/search"
	"github.com/spf13/pflag"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	level, err := logger.ParseLevel(cfg.GetLogLevel().String())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger.Init(level, logger.IsService())
	logger.Debug().Msg("Config loaded")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleSignals(cancel)

	if err := run(ctx, cfg, os.Stdout); err != nil {
		var coded errors.Error
		if errors.As(err, &coded) {
			logger.FatalWithCode(coded).Msg("Sweep failed")
		}
		logger.Fatal().Err(err).Msg("Sweep failed")
	}
}

func run(ctx context.Context, cfg config.Provider, out io.Writer) error {
	errFactory := errors.New()

	renderer, err := report.NewRenderer(cfg.Report())
	if err != nil {
		return errFactory.Wrap(errors.ErrInitApp, err)
	}

	searcher, err := search.New(cfg.Grid(),
		search.WithWorkers(cfg.GetWorkers()),
		search.WithPrecision(cfg.GetPrecision()),
		search.WithLogger(logger.Global()),
	)
	if err != nil {
		return errFactory.Wrap(errors.ErrInitApp, err)
	}

	result, err := searcher.Run(ctx)
	if err != nil {
		return errFactory.Wrap(errors.ErrRunApp, err)
	}

	return renderer.Render(out, result)
}

func handleSignals(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	logger.Info().Msg("Received termination signal.")
	cancel()
}
