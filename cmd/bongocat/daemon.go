package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/1broseidon/bongocat/internal/daemon"
	"github.com/1broseidon/bongocat/internal/eventloop"
	"github.com/1broseidon/bongocat/internal/hotkeys"
	"github.com/1broseidon/bongocat/internal/input"
	"github.com/1broseidon/bongocat/internal/ipc"
	"github.com/1broseidon/bongocat/internal/platform"
	"github.com/1broseidon/bongocat/internal/prefs"
)

const shutdownTimeout = 3 * time.Second

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Start the bongocat daemon (foreground)",
	Args:  cobra.NoArgs,
	RunE:  runDaemon,
}

func init() {
	rootCmd.AddCommand(daemonCmd)
}

func runDaemon(_ *cobra.Command, _ []string) error {
	res, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	cfg := res.Config
	log.Printf("Configuration loaded from %s (%d file(s))", res.Path, len(res.Files))

	level := new(slog.LevelVar)
	level.Set(cfg.SlogLevel())
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	statePath := cfg.StateFile
	if statePath == "" {
		statePath, err = prefs.DefaultPath()
		if err != nil {
			return err
		}
	}
	store, err := prefs.OpenFile(statePath)
	if err != nil {
		return fmt.Errorf("failed to open state file: %w", err)
	}
	log.Printf("Preferences stored in %s", store.Path())

	backend, err := platform.NewLinuxBackendFromDisplay()
	if err != nil {
		return fmt.Errorf("failed to connect to display: %w", err)
	}
	defer backend.Disconnect()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	loop := eventloop.New(0, logger.With("component", "eventloop"))
	go loop.Run(ctx)

	d, err := daemon.New(daemon.Options{
		Config:     cfg,
		ConfigPath: res.Path,
		Store:      store,
		Desktop:    backend,
		Exec:       loop,
		Input:      input.NewPollingSource(backend, cfg.InputPollInterval(), logger.With("component", "input")),
		Hotkeys:    hotkeys.NewHandler(backend),
		Logger:     logger,
		Level:      level,
	})
	if err != nil {
		return err
	}
	if err := d.Start(ctx); err != nil {
		return fmt.Errorf("failed to start daemon: %w", err)
	}

	server, err := ipc.NewServer(d)
	if err != nil {
		return fmt.Errorf("failed to create IPC server: %w", err)
	}
	if err := server.Start(); err != nil {
		return fmt.Errorf("failed to start IPC server: %w", err)
	}
	log.Printf("bongocat daemon started (instance %s)", d.ID())

	eventsDone := make(chan struct{})
	go func() {
		backend.EventLoop()
		close(eventsDone)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigCh)

	shutdown := func() error {
		server.Stop()
		sctx, scancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer scancel()
		err := d.Shutdown(sctx)
		cancel()
		backend.Quit()
		return err
	}

	for {
		select {
		case sig := <-sigCh:
			if sig == syscall.SIGHUP {
				log.Println("Received SIGHUP, reloading config...")
				if err := d.Reload(); err != nil {
					log.Printf("Config reload failed: %v", err)
				}
				continue
			}
			log.Println("Shutting down bongocat daemon...")
			return shutdown()
		case <-eventsDone:
			log.Println("X event loop exited, shutting down")
			return shutdown()
		}
	}
}
