package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/foxseedlab/kikitori/internal/audio"
	"github.com/foxseedlab/kikitori/internal/config"
	"github.com/foxseedlab/kikitori/internal/repository"
	"github.com/foxseedlab/kikitori/internal/transcriber"
	"github.com/foxseedlab/kikitori/internal/transcript"
)

const repositorySinkName = "postgres"

type AudioPreparer interface {
	Prepare(ctx context.Context, path string) (*audio.Prepared, error)
}

// Transcription is one processed audio file as handed to the sinks.
type Transcription struct {
	SourcePath  string
	AudioPath   string
	Language    string
	Model       string
	APIVersion  string
	StartedAt   time.Time
	CompletedAt time.Time
	Result      *transcriber.Result
	Report      transcript.Report
	// Body is the rendered turns, or the plain transcript when not diarized.
	Body string
	// Text is Body preceded by the report header.
	Text string
}

type Outcome struct {
	Transcription *Transcription
	RecordID      string
	SinkErrors    map[string]error
}

type Summary struct {
	Processed int
	Failed    int
}

type Runner struct {
	cfg         *config.Config
	preparer    AudioPreparer
	transcriber transcriber.Transcriber
	repo        repository.Repository
	sinks       []Sink
	loc         *time.Location
	now         func() time.Time
}

type Option func(*Runner)

func WithRepository(repo repository.Repository) Option {
	return func(r *Runner) { r.repo = repo }
}

func WithSinks(sinks ...Sink) Option {
	return func(r *Runner) { r.sinks = append(r.sinks, sinks...) }
}

func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

func NewRunner(cfg *config.Config, preparer AudioPreparer, stt transcriber.Transcriber, opts ...Option) *Runner {
	r := &Runner{
		cfg:         cfg,
		preparer:    preparer,
		transcriber: stt,
		loc:         cfg.Location(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ProcessDir transcribes every audio file of the configured directory in name
// order. A failing file is logged and counted; only ctx cancellation stops
// the loop early.
func (r *Runner) ProcessDir(ctx context.Context) (Summary, error) {
	files, err := r.listAudioFiles()
	if err != nil {
		return Summary{}, err
	}
	slog.Info("audio files found", "dir", r.cfg.AudioDir, "count", len(files))

	var summary Summary
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		if _, err := r.ProcessFile(ctx, path); err != nil {
			summary.Failed++
			slog.Error("failed to process audio file", "path", path, "error", err)
			continue
		}
		summary.Processed++
	}
	slog.Info("audio directory processed", "dir", r.cfg.AudioDir, "processed", summary.Processed, "failed", summary.Failed)
	return summary, nil
}

func (r *Runner) listAudioFiles() ([]string, error) {
	entries, err := os.ReadDir(r.cfg.AudioDir)
	if err != nil {
		return nil, fmt.Errorf("read audio dir %s: %w", r.cfg.AudioDir, err)
	}

	sources := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if e.IsDir() || audio.IsConvertedArtifact(e.Name()) {
			continue
		}
		sources[strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))] = struct{}{}
	}

	var files []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !r.cfg.HasAudioExtension(name) {
			continue
		}
		if audio.IsConvertedArtifact(name) {
			base := name[:len(name)-len("_converted.wav")]
			if _, ok := sources[base]; ok {
				slog.Debug("skipping conversion artifact", "file", name)
				continue
			}
		}
		files = append(files, filepath.Join(r.cfg.AudioDir, name))
	}
	return files, nil
}

func (r *Runner) ProcessFile(ctx context.Context, path string) (*Outcome, error) {
	slog.Info("processing audio file", "path", path)
	outcome := &Outcome{SinkErrors: make(map[string]error)}
	startedAt := r.now()

	recordID := r.createRecord(ctx, path, startedAt, outcome)
	outcome.RecordID = recordID

	t, err := r.transcribe(ctx, path, startedAt)
	if err != nil {
		r.failRecord(ctx, recordID, err, outcome)
		r.notifyFailure(ctx, path, err, outcome)
		return outcome, err
	}
	outcome.Transcription = t

	r.completeRecord(ctx, recordID, t, outcome)
	for _, sink := range r.sinks {
		if err := sink.Deliver(ctx, t); err != nil {
			slog.Error("sink delivery failed", "sink", sink.Name(), "path", path, "error", err)
			outcome.SinkErrors[sink.Name()] = err
			continue
		}
		slog.Debug("sink delivered", "sink", sink.Name(), "path", path)
	}
	slog.Info("audio file processed", "path", path, "diarized", t.Result.Diarized, "turns", len(t.Report.Turns), "sink_errors", len(outcome.SinkErrors))
	return outcome, nil
}

func (r *Runner) transcribe(ctx context.Context, path string, startedAt time.Time) (*Transcription, error) {
	prepared, err := r.preparer.Prepare(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("prepare audio: %w", err)
	}
	content, err := os.ReadFile(prepared.Path)
	if err != nil {
		return nil, fmt.Errorf("read prepared audio %s: %w", prepared.Path, err)
	}
	slog.Info("audio prepared", "path", prepared.Path, "converted", prepared.Converted, "bytes", len(content),
		"channels", prepared.Format.Channels, "sample_rate", prepared.Format.SampleRate, "duration", prepared.Format.Duration.String())

	recognizeCtx, cancel := context.WithTimeout(ctx, r.cfg.RecognizeTimeout())
	defer cancel()
	res, err := r.transcriber.Recognize(recognizeCtx, transcriber.Request{
		Audio:           content,
		Language:        r.cfg.TranscribeLanguage,
		SampleRateHertz: prepared.Format.SampleRate,
		Channels:        prepared.Format.Channels,
		Diarization: transcriber.Diarization{
			Enabled:     true,
			MinSpeakers: r.cfg.DiarizationMinSpeakers,
			MaxSpeakers: r.cfg.DiarizationMaxSpeakers,
		},
	})
	if err != nil {
		if errors.Is(err, transcriber.ErrNoSpeech) {
			return nil, err
		}
		return nil, fmt.Errorf("recognize audio: %w", err)
	}
	slog.Info("recognition finished", "path", path, "words", len(res.Words), "diarized", res.Diarized, "confidence", res.Confidence)

	t := &Transcription{
		SourcePath:  path,
		AudioPath:   prepared.Path,
		Language:    r.cfg.TranscribeLanguage,
		Model:       r.transcriber.Model(),
		APIVersion:  r.cfg.GoogleCloudSpeechAPI,
		StartedAt:   startedAt,
		CompletedAt: r.now(),
		Result:      res,
	}
	if res.Diarized {
		t.Report = transcript.Reconcile(res.Words, res.Transcript)
		logTiers(t.Report)
	}
	t.Body = buildBody(t)
	t.Text = buildReportText(t, r.cfg.TranscriptTimezone, r.loc)
	return t, nil
}

func (r *Runner) notifyFailure(ctx context.Context, path string, cause error, outcome *Outcome) {
	if ctx.Err() != nil {
		return
	}
	for _, sink := range r.sinks {
		n, ok := sink.(FailureNotifier)
		if !ok {
			continue
		}
		if err := n.NotifyFailure(ctx, path, cause); err != nil {
			slog.Error("failure notice not delivered", "sink", sink.Name(), "path", path, "error", err)
			outcome.SinkErrors[sink.Name()] = err
		}
	}
}

func logTiers(report transcript.Report) {
	counts := make(map[transcript.MatchTier]int, 3)
	for _, turn := range report.Turns {
		counts[turn.Tier]++
	}
	slog.Debug("turns reconciled",
		"pattern", counts[transcript.MatchTierPattern],
		"window", counts[transcript.MatchTierWindow],
		"unmatched", counts[transcript.MatchTierUnmatched])
}

func (r *Runner) createRecord(ctx context.Context, path string, startedAt time.Time, outcome *Outcome) string {
	if r.repo == nil {
		return ""
	}
	rec, err := r.repo.CreateTranscription(ctx, repository.CreateTranscriptionInput{
		SourcePath: path,
		Language:   r.cfg.TranscribeLanguage,
		Model:      r.transcriber.Model(),
		APIVersion: r.cfg.GoogleCloudSpeechAPI,
		StartedAt:  startedAt,
	})
	if err != nil {
		slog.Error("failed to create transcription record", "path", path, "error", err)
		outcome.SinkErrors[repositorySinkName] = err
		return ""
	}
	slog.Info("created transcription record", "id", rec.ID, "path", path)
	return rec.ID
}

func (r *Runner) completeRecord(ctx context.Context, id string, t *Transcription, outcome *Outcome) {
	if r.repo == nil || id == "" {
		return
	}
	turns := make([]repository.TurnInput, 0, len(t.Report.Turns))
	for _, turn := range t.Report.Turns {
		turns = append(turns, repository.TurnInput{
			SpeakerID: turn.SpeakerID,
			Text:      turn.Text,
			MatchTier: string(turn.Tier),
			WordCount: len(turn.Words),
		})
	}
	err := r.repo.CompleteTranscription(ctx, repository.CompleteTranscriptionInput{
		TranscriptionID: id,
		EndedAt:         t.CompletedAt,
		Diarized:        t.Result.Diarized,
		Report:          t.Body,
		Turns:           turns,
	})
	if err != nil {
		slog.Error("failed to complete transcription record", "id", id, "error", err)
		outcome.SinkErrors[repositorySinkName] = err
	}
}

func (r *Runner) failRecord(ctx context.Context, id string, cause error, outcome *Outcome) {
	if r.repo == nil || id == "" {
		return
	}
	err := r.repo.FailTranscription(ctx, repository.FailTranscriptionInput{
		TranscriptionID: id,
		EndedAt:         r.now(),
		Reason:          cause.Error(),
	})
	if err != nil {
		slog.Error("failed to mark transcription record as failed", "id", id, "error", err)
		outcome.SinkErrors[repositorySinkName] = err
	}
}
