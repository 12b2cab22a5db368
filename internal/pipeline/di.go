package pipeline

import (
	"os"

	"github.com/foxseedlab/kikitori/internal/audio"
	"github.com/foxseedlab/kikitori/internal/config"
	"github.com/foxseedlab/kikitori/internal/discord"
	"github.com/foxseedlab/kikitori/internal/document"
	"github.com/foxseedlab/kikitori/internal/repository"
	"github.com/foxseedlab/kikitori/internal/transcriber"
	"github.com/foxseedlab/kikitori/internal/webhook"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Runner, error) {
		cfg := do.MustInvoke[*config.Config](i)
		preparer := do.MustInvoke[*audio.Preparer](i)
		stt := do.MustInvoke[transcriber.Transcriber](i)

		opts := []Option{WithSinks(NewStdoutSink(os.Stdout))}
		if cfg.TranscriptWriteTextFile {
			opts = append(opts, WithSinks(NewTextFileSink()))
		}
		if cfg.DatabaseEnabled() {
			repo, err := do.Invoke[repository.Repository](i)
			if err != nil {
				return nil, err
			}
			opts = append(opts, WithRepository(repo))
		}
		if cfg.FirestoreEnabled() {
			store, err := do.Invoke[document.Store](i)
			if err != nil {
				return nil, err
			}
			opts = append(opts, WithSinks(NewDocumentSink(store, document.Target{
				Collection: cfg.FirestoreCollection,
				DocumentID: cfg.FirestoreDocumentID,
				Field:      cfg.FirestoreField,
			})))
		}
		if cfg.DiscordEnabled() {
			dc, err := do.Invoke[discord.Client](i)
			if err != nil {
				return nil, err
			}
			opts = append(opts, WithSinks(NewDiscordSink(dc, cfg.DiscordChannelID)))
		}
		if cfg.WebhookEnabled() {
			wh, err := do.Invoke[webhook.Sender](i)
			if err != nil {
				return nil, err
			}
			opts = append(opts, WithSinks(NewWebhookSink(wh, cfg.TranscriptTimezone, cfg.Location())))
		}
		return NewRunner(cfg, preparer, stt, opts...), nil
	})
}
