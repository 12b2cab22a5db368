package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	audioimpl "github.com/foxseedlab/kikitori/external/audio"
	configloader "github.com/foxseedlab/kikitori/external/config"
	"github.com/foxseedlab/kikitori/external/discord"
	documentimpl "github.com/foxseedlab/kikitori/external/document"
	repositoryimpl "github.com/foxseedlab/kikitori/external/repository"
	transcriberimpl "github.com/foxseedlab/kikitori/external/transcriber"
	webhookimpl "github.com/foxseedlab/kikitori/external/webhook"
	"github.com/foxseedlab/kikitori/internal/config"
	discordpkg "github.com/foxseedlab/kikitori/internal/discord"
	"github.com/foxseedlab/kikitori/internal/document"
	"github.com/foxseedlab/kikitori/internal/pipeline"
	"github.com/foxseedlab/kikitori/internal/repository"
	"github.com/foxseedlab/kikitori/internal/transcriber"
	"github.com/samber/do/v2"
)

func main() {
	cleanup := flag.String("delete-recognizers", "", "comma-separated Speech v2 recognizer ids to delete before transcribing")
	list := flag.Bool("list-recognizers", false, "list Speech v2 recognizers and exit")
	show := flag.String("show", "", "print a stored transcription by id and exit (requires DATABASE_URL)")
	flag.Parse()

	slog.Info("startup: loading configuration")
	cfg := mustLoadConfig()
	initLogger(cfg)
	slog.Info("startup: configuration loaded", "env", cfg.Env, "speech_api", cfg.GoogleCloudSpeechAPI, "model", cfg.GoogleCloudSpeechModel)

	slog.Info("startup: building dependency graph")
	injector := setupDI(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	checkTranscoder(ctx, injector)

	if *list {
		if err := listRecognizers(ctx, injector); err != nil {
			slog.Error("recognizer listing failed", "error", err)
			os.Exit(1)
		}
		return
	}
	if *cleanup != "" {
		if err := deleteRecognizers(ctx, injector, strings.Split(*cleanup, ",")); err != nil {
			slog.Error("recognizer cleanup failed", "error", err)
			os.Exit(1)
		}
	}

	runner, err := do.Invoke[*pipeline.Runner](injector)
	if err != nil {
		slog.Error("failed to resolve pipeline runner", "error", err)
		os.Exit(1)
	}

	if *show != "" {
		err := runner.WriteRecord(ctx, *show, os.Stdout)
		shutdown(cfg, injector)
		if err != nil {
			slog.Error("failed to show transcription", "id", *show, "error", err)
			os.Exit(1)
		}
		return
	}

	ok := run(ctx, runner, flag.Args())
	shutdown(cfg, injector)
	if !ok {
		os.Exit(1)
	}
}

func mustLoadConfig() *config.Config {
	cfg, err := configloader.Load()
	if err != nil {
		slog.Error("config validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

func initLogger(cfg *config.Config) {
	logLevel := slog.LevelInfo
	if cfg.IsDevelopment() {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))
}

func setupDI(cfg *config.Config) do.Injector {
	injector := do.New()

	do.ProvideValue(injector, cfg)
	repositoryimpl.RegisterDI(injector)
	audioimpl.RegisterDI(injector)
	documentimpl.RegisterDI(injector)
	discord.RegisterDI(injector)
	transcriberimpl.RegisterDI(injector)
	webhookimpl.RegisterDI(injector)
	pipeline.RegisterDI(injector)

	return injector
}

// checkTranscoder only warns: valid 16-bit WAV input never needs ffmpeg.
func checkTranscoder(ctx context.Context, injector do.Injector) {
	ffmpeg := do.MustInvoke[*audioimpl.FFmpegConverter](injector)
	if err := ffmpeg.CheckAvailable(ctx); err != nil {
		slog.Warn("ffmpeg unavailable; only valid wav files can be processed", "error", err)
	}
}

func speechV2(injector do.Injector) (*transcriberimpl.CloudSpeechV2Transcriber, error) {
	stt := do.MustInvoke[transcriber.Transcriber](injector)
	v2, ok := stt.(*transcriberimpl.CloudSpeechV2Transcriber)
	if !ok {
		return nil, errors.New("recognizer maintenance requires GOOGLE_CLOUD_SPEECH_API=v2")
	}
	return v2, nil
}

func listRecognizers(ctx context.Context, injector do.Injector) error {
	v2, err := speechV2(injector)
	if err != nil {
		return err
	}
	defer v2.Close()
	names, err := v2.ListRecognizers(ctx)
	if err != nil {
		return err
	}
	for _, name := range names {
		fmt.Println(name)
	}
	slog.Info("recognizers listed", "count", len(names))
	return nil
}

func deleteRecognizers(ctx context.Context, injector do.Injector, ids []string) error {
	v2, err := speechV2(injector)
	if err != nil {
		return err
	}
	return v2.DeleteRecognizers(ctx, ids)
}

func run(ctx context.Context, runner *pipeline.Runner, files []string) bool {
	if len(files) == 0 {
		summary, err := runner.ProcessDir(ctx)
		if err != nil {
			slog.Error("failed to process audio directory", "error", err)
			return false
		}
		return summary.Failed == 0
	}

	ok := true
	for _, f := range files {
		if ctx.Err() != nil {
			return false
		}
		if _, err := runner.ProcessFile(ctx, f); err != nil {
			slog.Error("failed to process audio file", "path", f, "error", err)
			ok = false
		}
	}
	return ok
}

func shutdown(cfg *config.Config, injector do.Injector) {
	if stt, err := do.Invoke[transcriber.Transcriber](injector); err == nil {
		if err := stt.Close(); err != nil {
			slog.Error("transcriber close failed", "error", err)
		}
	}
	if cfg.DatabaseEnabled() {
		if repo, err := do.Invoke[repository.Repository](injector); err == nil {
			repo.Close()
		}
	}
	if cfg.FirestoreEnabled() {
		if store, err := do.Invoke[document.Store](injector); err == nil {
			if err := store.Close(); err != nil {
				slog.Error("firestore close failed", "error", err)
			}
		}
	}
	if cfg.DiscordEnabled() {
		if dc, err := do.Invoke[discordpkg.Client](injector); err == nil {
			if err := dc.Close(); err != nil {
				slog.Error("discord close failed", "error", err)
			}
		}
	}
}
