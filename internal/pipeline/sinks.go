package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/foxseedlab/kikitori/internal/discord"
	"github.com/foxseedlab/kikitori/internal/document"
	"github.com/foxseedlab/kikitori/internal/webhook"
)

// Sink receives every finished transcription. Sinks are independent: one
// failing never stops the others.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, t *Transcription) error
}

// FailureNotifier is implemented by sinks that also announce files which
// could not be transcribed.
type FailureNotifier interface {
	NotifyFailure(ctx context.Context, sourcePath string, cause error) error
}

type StdoutSink struct {
	w io.Writer
}

func NewStdoutSink(w io.Writer) *StdoutSink {
	return &StdoutSink{w: w}
}

func (s *StdoutSink) Name() string { return "stdout" }

func (s *StdoutSink) Deliver(_ context.Context, t *Transcription) error {
	_, err := fmt.Fprintf(s.w, "\n%s\n%s\n%s\n\n", stdoutResultOpen, t.Text, stdoutResultClose)
	return err
}

type TextFileSink struct{}

func NewTextFileSink() *TextFileSink {
	return &TextFileSink{}
}

func (s *TextFileSink) Name() string { return "text_file" }

func (s *TextFileSink) Deliver(_ context.Context, t *Transcription) error {
	path := textFilePath(t.SourcePath)
	if err := os.WriteFile(path, []byte(t.Text+"\n"), 0o644); err != nil {
		return fmt.Errorf("write transcript file %s: %w", path, err)
	}
	return nil
}

// DocumentSink stores the turn blocks, without header, in one document field.
type DocumentSink struct {
	store  document.Store
	target document.Target
}

func NewDocumentSink(store document.Store, target document.Target) *DocumentSink {
	return &DocumentSink{store: store, target: target}
}

func (s *DocumentSink) Name() string { return "firestore" }

func (s *DocumentSink) Deliver(ctx context.Context, t *Transcription) error {
	return s.store.SetField(ctx, s.target, t.Body)
}

type DiscordSink struct {
	client    discord.Client
	channelID string
}

func NewDiscordSink(client discord.Client, channelID string) *DiscordSink {
	return &DiscordSink{client: client, channelID: channelID}
}

func (s *DiscordSink) Name() string { return "discord" }

func (s *DiscordSink) Deliver(_ context.Context, t *Transcription) error {
	name := filepath.Base(textFilePath(t.SourcePath))
	err := s.client.SendChannelMessageWithFile(discord.FileMessage{
		ChannelID: s.channelID,
		Content:   fmt.Sprintf(messageAttachmentTitleFormat, filepath.Base(t.SourcePath)) + "\n" + messagePoweredByLine,
		Filename:  name,
		FileBody:  []byte(t.Text),
	})
	if err != nil {
		return err
	}
	slog.Info("transcript posted to discord", "channel", s.client.ChannelName(s.channelID), "file", name)
	return nil
}

func (s *DiscordSink) NotifyFailure(_ context.Context, sourcePath string, cause error) error {
	return s.client.SendChannelMessage(s.channelID, fmt.Sprintf(messageFailureFormat, filepath.Base(sourcePath), cause))
}

type WebhookSink struct {
	sender   webhook.Sender
	timezone string
	loc      *time.Location
}

func NewWebhookSink(sender webhook.Sender, timezone string, loc *time.Location) *WebhookSink {
	return &WebhookSink{sender: sender, timezone: timezone, loc: loc}
}

func (s *WebhookSink) Name() string { return "webhook" }

func (s *WebhookSink) Deliver(ctx context.Context, t *Transcription) error {
	return s.sender.SendTranscript(ctx, buildTranscriptWebhookPayload(t, s.timezone, s.loc))
}
