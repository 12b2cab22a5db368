package pipeline

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/foxseedlab/kikitori/internal/transcript"
	"github.com/foxseedlab/kikitori/internal/webhook"
)

const transcriptTimeLayout = "2006-01-02 15:04:05"

// buildBody renders the reconciled turns, or the plain transcript when the
// API returned no speaker labels.
func buildBody(t *Transcription) string {
	if t.Result.Diarized {
		return t.Report.Render()
	}
	text := strings.TrimSpace(t.Result.Transcript)
	if text == "" {
		return transcript.NoWordsDetected
	}
	return plainTranscriptPrefix + text
}

func buildReportText(t *Transcription, timezone string, loc *time.Location) string {
	lines := []string{
		fmt.Sprintf(headerFileFormat, filepath.Base(t.SourcePath)),
		fmt.Sprintf(headerLanguageFormat, t.Language),
		fmt.Sprintf(headerModelFormat, t.Model, t.APIVersion),
		fmt.Sprintf(headerProcessedFormat, t.CompletedAt.In(safeLocation(loc)).Format(transcriptTimeLayout), timezone),
	}
	if speakers := speakerIDs(t.Report); t.Result.Diarized && len(speakers) > 0 {
		lines = append(lines, fmt.Sprintf(headerSpeakersFormat, strings.Join(speakers, ", ")))
	} else {
		lines = append(lines, headerNoSpeakers)
	}
	lines = append(lines, "", t.Body)
	return strings.Join(lines, "\n")
}

// speakerIDs lists speakers in order of first appearance.
func speakerIDs(r transcript.Report) []string {
	seen := make(map[string]struct{}, len(r.Turns))
	out := make([]string, 0, len(r.Turns))
	for _, turn := range r.Turns {
		if _, ok := seen[turn.SpeakerID]; ok {
			continue
		}
		seen[turn.SpeakerID] = struct{}{}
		out = append(out, turn.SpeakerID)
	}
	return out
}

func buildTranscriptWebhookPayload(t *Transcription, timezone string, loc *time.Location) webhook.TranscriptWebhookPayload {
	loc = safeLocation(loc)
	turns := make([]webhook.TurnPayload, 0, len(t.Report.Turns))
	for i, turn := range t.Report.Turns {
		turns = append(turns, webhook.TurnPayload{
			Index:     i,
			SpeakerID: turn.SpeakerID,
			Text:      turn.Text,
			MatchTier: string(turn.Tier),
		})
	}
	return webhook.TranscriptWebhookPayload{
		SchemaVersion: webhook.TranscriptWebhookSchemaVersion,
		SourceFile:    filepath.Base(t.SourcePath),
		Language:      t.Language,
		Model:         t.Model,
		Diarized:      t.Result.Diarized,
		StartedAt:     t.StartedAt.In(loc).Format(time.RFC3339),
		CompletedAt:   t.CompletedAt.In(loc).Format(time.RFC3339),
		Timezone:      timezone,
		Speakers:      speakerIDs(t.Report),
		Transcript:    t.Result.Transcript,
		Report:        t.Body,
		Turns:         turns,
	}
}

// textFilePath places the report next to the source audio.
func textFilePath(sourcePath string) string {
	return strings.TrimSuffix(sourcePath, filepath.Ext(sourcePath)) + ".txt"
}

func safeLocation(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}
