package pipeline

import (
	"strings"
	"testing"
	"time"

	"github.com/foxseedlab/kikitori/internal/transcriber"
	"github.com/foxseedlab/kikitori/internal/transcript"
)

func TestBuildReportText_Header(t *testing.T) {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		t.Skipf("timezone data unavailable: %v", err)
	}
	tr := &Transcription{
		SourcePath:  "audios/reuniao.wav",
		Language:    "pt-BR",
		Model:       "chirp_3",
		APIVersion:  "v2",
		CompletedAt: time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC),
		Result:      &transcriber.Result{Diarized: true},
		Report: transcript.Report{Turns: []transcript.ReconciledTurn{
			{SpeakerID: "2", Text: "Oi."},
			{SpeakerID: "1", Text: "Olá."},
			{SpeakerID: "2", Text: "Tchau."},
		}},
		Body: "corpo",
	}

	got := buildReportText(tr, "America/Sao_Paulo", loc)
	want := strings.Join([]string{
		"📁 Arquivo: reuniao.wav",
		"🌐 Idioma: pt-BR",
		"🤖 Modelo: chirp_3 (API v2)",
		"🕒 Processado em: 2026-03-14 12:00:00 (America/Sao_Paulo)",
		"👥 Locutores: 2, 1",
		"",
		"corpo",
	}, "\n")
	if got != want {
		t.Fatalf("unexpected report:\n%s\nwant:\n%s", got, want)
	}
}

func TestBuildBody_EmptyPlainTranscript(t *testing.T) {
	tr := &Transcription{Result: &transcriber.Result{}}
	if got := buildBody(tr); got != transcript.NoWordsDetected {
		t.Fatalf("unexpected body: %q", got)
	}
}

func TestTextFilePath(t *testing.T) {
	if got := textFilePath("audios/voz.m4a"); got != "audios/voz.txt" {
		t.Fatalf("unexpected path: %s", got)
	}
}

func TestBuildTranscriptWebhookPayload(t *testing.T) {
	tr := &Transcription{
		SourcePath:  "audios/reuniao.wav",
		Language:    "pt-BR",
		StartedAt:   time.Date(2026, 3, 14, 14, 59, 0, 0, time.UTC),
		CompletedAt: time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC),
		Result:      &transcriber.Result{Transcript: "Oi. Olá.", Diarized: true},
		Report: transcript.Report{Turns: []transcript.ReconciledTurn{
			{SpeakerID: "1", Text: "Oi.", Tier: transcript.MatchTierPattern},
			{SpeakerID: "2", Text: "olá", Tier: transcript.MatchTierUnmatched},
		}},
	}
	p := buildTranscriptWebhookPayload(tr, "UTC", nil)
	if p.SourceFile != "reuniao.wav" || p.StartedAt != "2026-03-14T14:59:00Z" {
		t.Fatalf("unexpected payload: %+v", p)
	}
	if len(p.Speakers) != 2 || p.Turns[1].Index != 1 || p.Turns[1].MatchTier != "unmatched" {
		t.Fatalf("unexpected turns: %+v", p.Turns)
	}
}
