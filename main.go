package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/MikeDev101/camrelay/pkg/config"
	"github.com/MikeDev101/camrelay/pkg/logger"
	"github.com/MikeDev101/camrelay/pkg/metrics"
	srv "github.com/MikeDev101/camrelay/pkg/signaling"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath, os.LookupEnv)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(2)
	}

	log, err := logger.New(cfg.LogLevel, string(cfg.LogFormat))
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(2)
	}
	defer log.Sync()

	s := srv.Initialize(&cfg, log, metrics.New())
	app := s.NewApp()

	errs := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", cfg.ListenAddr))
		errs <- app.Listen(cfg.ListenAddr)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errs:
		log.Fatal("server stopped", zap.Error(err))
	case sig := <-stop:
		log.Info("shutting down", zap.Stringer("signal", sig))
	}

	s.Shutdown()
	if err := app.ShutdownWithTimeout(cfg.ShutdownTimeout); err != nil {
		log.Warn("shutdown incomplete", zap.Error(err))
	}
}
