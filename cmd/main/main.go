package main

import (
	"context"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/rs/zerolog/log"

	"facility-recon/internal/config"
	serverhttp "facility-recon/server/http"
)

func main() {
	if runtime.GOMAXPROCS(0) < runtime.NumCPU() {
		runtime.GOMAXPROCS(runtime.NumCPU())
	}

	v := config.New()
	if err := config.ReadFile(v, os.Getenv("CONFIG_FILE")); err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	cfg, err := config.Load(v)
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	logger := config.SetupLogger(cfg, os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, closeDeps, err := serverhttp.BuildDeps(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("init")
	}
	defer closeDeps()

	if err := serverhttp.Serve(ctx, deps); err != nil {
		logger.Error().Err(err).Msg("server")
		closeDeps()
		os.Exit(1)
	}
}
