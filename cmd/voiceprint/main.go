package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	audioimpl "github.com/foxseedlab/kikitori/external/audio"
	configloader "github.com/foxseedlab/kikitori/external/config"
	transcriberimpl "github.com/foxseedlab/kikitori/external/transcriber"
	"github.com/foxseedlab/kikitori/internal/audio"
	"github.com/foxseedlab/kikitori/internal/config"
	"github.com/foxseedlab/kikitori/internal/transcriber"
	"github.com/foxseedlab/kikitori/internal/voiceprint"
	"github.com/samber/do/v2"
)

const usage = `usage:
  voiceprint train
  voiceprint identify [-transcribe] <file.wav>`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := configloader.LoadVoiceprint()
	if err != nil {
		slog.Error("config validation failed", "error", err)
		os.Exit(1)
	}
	initLogger(cfg)

	injector := do.New()
	do.ProvideValue(injector, cfg)
	audioimpl.RegisterDI(injector)
	voiceprint.RegisterDI(injector)
	svc := do.MustInvoke[*voiceprint.Service](injector)

	switch os.Args[1] {
	case "train":
		err = train(cfg, svc)
	case "identify":
		err = identify(cfg, svc, injector, os.Args[2:])
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		slog.Error("voiceprint command failed", "command", os.Args[1], "error", err)
		os.Exit(1)
	}
}

func initLogger(cfg *config.VoiceprintConfig) {
	logLevel := slog.LevelInfo
	if cfg.IsDevelopment() {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))
}

func train(cfg *config.VoiceprintConfig, svc *voiceprint.Service) error {
	model, err := svc.TrainDir(cfg.TrainDir)
	if err != nil {
		return err
	}
	if err := model.Save(cfg.ModelPath); err != nil {
		return err
	}
	slog.Info("voiceprint model saved", "path", cfg.ModelPath, "speakers", model.Labels)
	return nil
}

func identify(cfg *config.VoiceprintConfig, svc *voiceprint.Service, injector do.Injector, args []string) error {
	fs := flag.NewFlagSet("identify", flag.ContinueOnError)
	withTranscript := fs.Bool("transcribe", false, "also transcribe the file with Cloud Speech")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("identify expects exactly one file\n%s", usage)
	}
	path := fs.Arg(0)

	model, err := voiceprint.Load(cfg.ModelPath)
	if err != nil {
		return err
	}
	label, score, err := svc.Identify(model, path)
	if err != nil {
		return err
	}
	slog.Info("speaker identified", "path", path, "speaker", label, "score", score)
	if !*withTranscript {
		fmt.Println(label)
		return nil
	}

	text, err := transcribe(injector, path)
	if err != nil {
		return err
	}
	fmt.Printf("[%s]: %s\n", label, text)
	return nil
}

// transcribe runs a single undiarized recognition; the speaker already comes
// from the voiceprint model.
func transcribe(injector do.Injector, path string) (string, error) {
	cfg, err := configloader.Load()
	if err != nil {
		return "", err
	}
	do.ProvideValue(injector, cfg)
	transcriberimpl.RegisterDI(injector)

	preparer := do.MustInvoke[*audio.Preparer](injector)
	stt := do.MustInvoke[transcriber.Transcriber](injector)
	defer func() {
		if err := stt.Close(); err != nil {
			slog.Error("transcriber close failed", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, cfg.RecognizeTimeout())
	defer cancel()

	prepared, err := preparer.Prepare(ctx, path)
	if err != nil {
		return "", err
	}
	content, err := os.ReadFile(prepared.Path)
	if err != nil {
		return "", fmt.Errorf("read prepared audio: %w", err)
	}
	res, err := stt.Recognize(ctx, transcriber.Request{
		Audio:           content,
		Language:        cfg.TranscribeLanguage,
		SampleRateHertz: prepared.Format.SampleRate,
		Channels:        prepared.Format.Channels,
	})
	if err != nil {
		return "", err
	}
	return res.Transcript, nil
}
