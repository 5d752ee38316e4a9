// Package main mints and verifies hashcash stamps from the command line.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goodnatureofminers/hashcash/internal/metrics"
	"github.com/goodnatureofminers/hashcash/pkg/hashcash"
	"github.com/jessevdk/go-flags"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type config struct {
	Algorithm         string        `long:"algorithm" env:"HASHCASH_ALGORITHM" description:"digest algorithm" default:"SHA1"`
	Bits              int           `long:"bits" env:"HASHCASH_BITS" description:"leading zero bits to mint" default:"20"`
	Workers           int           `long:"workers" env:"HASHCASH_WORKERS" description:"parallel mint workers, 1 mints on a single goroutine" default:"1"`
	Timeout           time.Duration `long:"timeout" env:"HASHCASH_TIMEOUT" description:"give up minting after this long, 0 waits forever"`
	Progress          time.Duration `long:"progress" env:"HASHCASH_PROGRESS" description:"log mint progress at this interval, 0 disables" default:"5s"`
	Resource          string        `long:"resource" env:"HASHCASH_RESOURCE" description:"resource the stamp pays for"`
	Random            string        `long:"random" env:"HASHCASH_RANDOM" description:"random field, generated when empty"`
	Date              string        `long:"date" env:"HASHCASH_DATE" description:"stamp date as YYMMDD, today when empty"`
	Verify            []string      `long:"verify" description:"stamp to verify instead of minting (repeatable)"`
	VerifyConcurrency int           `long:"verify-concurrency" env:"HASHCASH_VERIFY_CONCURRENCY" description:"stamps verified in parallel" default:"4"`
	MetricsAddr       string        `long:"metrics-addr" env:"HASHCASH_METRICS_ADDR" description:"serve prometheus metrics on this address"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic("can't initialize zap logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync()
	}()

	var cfg config
	if _, err := flags.ParseArgs(&cfg, os.Args[1:]); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return
		}
		logger.Fatal("Failed to parse arguments", zap.Error(err))
	}

	if cfg.MetricsAddr != "" {
		serveMetrics(ctx, cfg.MetricsAddr, logger)
	}

	algorithm, err := hashcash.AlgorithmByName(cfg.Algorithm)
	if err != nil {
		logger.Fatal("Unknown algorithm", zap.String("algorithm", cfg.Algorithm), zap.Error(err))
	}

	minter := hashcash.NewMinter(logger, metrics.NewMinter("cli"))
	app := &app{
		cfg:       cfg,
		algorithm: algorithm,
		minter:    minter,
		logger:    logger,
		out:       os.Stdout,
		now:       time.Now,
	}

	if len(cfg.Verify) > 0 {
		allValid, err := app.verify(ctx)
		if err != nil {
			logger.Fatal("Verify failed", zap.Error(err))
		}
		if !allValid {
			_ = logger.Sync()
			os.Exit(1)
		}
		return
	}

	if err := app.mint(ctx); err != nil {
		logger.Fatal("Mint failed", zap.Error(err))
	}
}

func serveMetrics(ctx context.Context, addr string, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	s := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    http.DefaultMaxHeaderBytes,
	}
	go func() {
		<-ctx.Done()
		if err := s.Shutdown(context.Background()); err != nil {
			logger.Error("Failed to shutdown metrics server", zap.Error(err))
		}
	}()
	go func() {
		logger.Info("Serving metrics", zap.String("addr", addr))
		if err := s.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Failed to listen and serve metrics", zap.Error(err))
		}
	}()
}
