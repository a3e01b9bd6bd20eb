// Package main runs the chess HTTP API with optional SQLite persistence.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chessbot/cmd/chess-server/cli"
	chesshttp "chessbot/internal/http"
	"chessbot/internal/logx"
	"chessbot/internal/service"
	"chessbot/internal/storage"
)

const gracefulShutdownTimeout = 5 * time.Second

func main() {
	if len(os.Args) > 1 && os.Args[1] == "db" {
		if err := cli.Run(os.Args[2:], os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "db: %v\n", err)
			os.Exit(1)
		}
		return
	}
	os.Exit(run())
}

// run serves the API until a signal arrives and returns the process exit code.
func run() int {
	var (
		host        = flag.String("host", "localhost", "API server host")
		port        = flag.Int("port", 8080, "API server port")
		dev         = flag.Bool("dev", false, "Development mode (relaxed rate limits, WAL journal)")
		storagePath = flag.String("storage-path", "", "Path to SQLite database file (disables persistence if empty)")
		logLevel    = flag.String("log-level", "info", "Log level: debug, info, warn, error")
		pidPath     = flag.String("pid", "", "Optional path to write PID file")
		pidLock     = flag.Bool("pid-lock", false, "Lock PID file to allow only one instance (requires -pid)")
	)
	flag.Parse()

	log := logx.New(os.Stdout, logx.ParseLevel(*logLevel))

	if *pidLock && *pidPath == "" {
		log.Error().Msg("-pid-lock requires the -pid flag to be set")
		return 2
	}
	if *pidPath != "" {
		pf, err := acquirePIDFile(*pidPath, *pidLock)
		if err != nil {
			log.Error().Err(err).Msg("failed to manage PID file")
			return 1
		}
		defer pf.Release()
		log.Info().Str("path", *pidPath).Bool("lock", *pidLock).Msg("PID file created")
	}

	var store *storage.Store
	if *storagePath != "" {
		var err error
		store, err = storage.NewStore(*storagePath, *dev, log)
		if err != nil {
			log.Error().Err(err).Msg("failed to initialize storage")
			return 1
		}
		if err := store.InitDB(); err != nil {
			log.Error().Err(err).Msg("failed to initialize schema")
			store.Close()
			return 1
		}
		log.Info().Str("path", *storagePath).Msg("persistent storage enabled")
	} else {
		log.Info().Msg("persistent storage disabled (use -storage-path to enable)")
	}

	svc := service.New(store, log)
	app := chesshttp.NewFiberApp(svc, chesshttp.Config{DevMode: *dev, Logger: log})

	addr := fmt.Sprintf("%s:%d", *host, *port)
	go func() {
		log.Info().
			Str("addr", "http://"+addr).
			Bool("dev", *dev).
			Str("games", fmt.Sprintf("http://%s/api/v1/games", addr)).
			Msg("chess API server starting")
		if err := app.Listen(addr); err != nil {
			log.Error().Err(err).Msg("API server listen error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	// long-poll waiters are released by the service, so stop it before draining HTTP
	if err := svc.Close(); err != nil {
		log.Error().Err(err).Msg("service shutdown error")
	}
	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited")
	return 0
}
