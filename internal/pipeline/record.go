package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/foxseedlab/kikitori/internal/repository"
	"github.com/foxseedlab/kikitori/internal/transcript"
)

var ErrRepositoryDisabled = errors.New("transcription history requires DATABASE_URL")

// WriteRecord prints a stored transcription with its turns, reading it back
// from the repository.
func (r *Runner) WriteRecord(ctx context.Context, id string, w io.Writer) error {
	if r.repo == nil {
		return ErrRepositoryDisabled
	}
	rec, err := r.repo.GetTranscription(ctx, id)
	if err != nil {
		return fmt.Errorf("get transcription %s: %w", id, err)
	}
	turns, err := r.repo.ListTurns(ctx, id)
	if err != nil {
		return fmt.Errorf("list turns of %s: %w", id, err)
	}
	_, err = io.WriteString(w, renderRecord(rec, turns, r.loc)+"\n")
	return err
}

func renderRecord(rec *repository.Transcription, turns []repository.TranscriptTurn, loc *time.Location) string {
	lines := []string{
		fmt.Sprintf(recordIDFormat, rec.ID),
		fmt.Sprintf(headerFileFormat, rec.SourcePath),
		fmt.Sprintf(headerLanguageFormat, rec.Language),
		fmt.Sprintf(headerModelFormat, rec.Model, rec.APIVersion),
		fmt.Sprintf(recordStatusFormat, rec.Status),
		fmt.Sprintf(recordStartedFormat, rec.StartedAt.In(loc).Format(time.DateTime)),
	}
	if rec.EndedAt != nil {
		lines = append(lines, fmt.Sprintf(recordEndedFormat, rec.EndedAt.In(loc).Format(time.DateTime)))
	}
	if rec.Status == repository.TranscriptionStatusFailed {
		lines = append(lines, fmt.Sprintf(recordErrorFormat, rec.Error))
		return strings.Join(lines, "\n")
	}

	body := rec.Report
	if len(turns) > 0 {
		report := transcript.Report{Turns: make([]transcript.ReconciledTurn, 0, len(turns))}
		for _, t := range turns {
			report.Turns = append(report.Turns, transcript.ReconciledTurn{
				SpeakerID: t.SpeakerID,
				Text:      t.Text,
				Tier:      transcript.MatchTier(t.MatchTier),
			})
		}
		body = report.Render()
	}
	if body == "" {
		return strings.Join(lines, "\n")
	}
	return strings.Join(lines, "\n") + "\n\n" + body
}
