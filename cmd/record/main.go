package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	audioimpl "github.com/foxseedlab/kikitori/external/audio"
	configloader "github.com/foxseedlab/kikitori/external/config"
	"github.com/foxseedlab/kikitori/external/serialport"
	"github.com/foxseedlab/kikitori/internal/config"
	"github.com/foxseedlab/kikitori/internal/recorder"
	"github.com/samber/do/v2"
)

// Usage: record [serial-port]
func main() {
	var portArg string
	if len(os.Args) > 1 {
		portArg = os.Args[1]
	}

	cfg, err := configloader.LoadRecorder(portArg)
	if err != nil {
		slog.Error("config validation failed", "error", err)
		logAvailablePorts()
		os.Exit(1)
	}
	slog.SetDefault(newLogger(cfg))

	if err := record(cfg); err != nil {
		slog.Error("recording failed", "port", cfg.SerialPort, "error", err)
		os.Exit(1)
	}
}

func newLogger(cfg *config.RecorderConfig) *slog.Logger {
	level := slog.LevelInfo
	if cfg.IsDevelopment() {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}

func record(cfg *config.RecorderConfig) error {
	injector := do.New()
	do.ProvideValue(injector, cfg)
	audioimpl.RegisterDI(injector)
	serialport.RegisterDI(injector)

	rec, err := do.Invoke[*recorder.Recorder](injector)
	if err != nil {
		return fmt.Errorf("resolve recorder: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	out, err := rec.Record(ctx)
	if err != nil {
		return err
	}
	slog.Info("recording saved",
		"path", out.Path,
		"bytes", out.Bytes,
		"trimmed_bytes", out.TrimmedBytes,
		"approx_duration_sec", out.Duration.Seconds(),
	)
	return nil
}

func logAvailablePorts() {
	ports, err := serialport.ListPorts()
	if err != nil {
		slog.Warn("could not list serial ports", "error", err)
		return
	}
	if len(ports) == 0 {
		slog.Warn("no serial ports found")
		return
	}
	slog.Info("available serial ports", "ports", ports)
}
