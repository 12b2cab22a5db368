package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/foxseedlab/kikitori/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestMapNotFound(t *testing.T) {
	if err := mapNotFound(pgx.ErrNoRows); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for no rows, got %v", err)
	}
	malformed := fmt.Errorf("query: %w", &pgconn.PgError{Code: invalidTextRepresentation})
	if err := mapNotFound(malformed); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for malformed id, got %v", err)
	}
	other := &pgconn.PgError{Code: "23505"}
	if err := mapNotFound(other); errors.Is(err, repository.ErrNotFound) || err != error(other) {
		t.Fatalf("unrelated errors must pass through, got %v", err)
	}
}

// Set KIKITORI_TEST_DATABASE_URL to run these against a disposable database.
func newTestRepository(t *testing.T) repository.Repository {
	t.Helper()
	url := os.Getenv("KIKITORI_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("KIKITORI_TEST_DATABASE_URL not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	pool, err := openPool(ctx, url)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	repo := NewPostgresRepository(pool)
	t.Cleanup(repo.Close)
	return repo
}

func createTestTranscription(t *testing.T, repo repository.Repository) *repository.Transcription {
	t.Helper()
	rec, err := repo.CreateTranscription(context.Background(), repository.CreateTranscriptionInput{
		SourcePath: "audios/reuniao.wav",
		Language:   "pt-BR",
		Model:      "chirp_3",
		APIVersion: "v2",
		StartedAt:  time.Now().UTC().Truncate(time.Microsecond),
	})
	if err != nil {
		t.Fatalf("failed to create transcription: %v", err)
	}
	return rec
}

func TestPostgres_CompleteWithoutTurns(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	rec := createTestTranscription(t, repo)

	err := repo.CompleteTranscription(ctx, repository.CompleteTranscriptionInput{
		TranscriptionID: rec.ID,
		EndedAt:         time.Now().UTC(),
		Report:          "[Transcrição]: bom dia",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := repo.GetTranscription(ctx, rec.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != repository.TranscriptionStatusCompleted || got.Report != "[Transcrição]: bom dia" || got.EndedAt == nil {
		t.Fatalf("unexpected record: %+v", got)
	}
	turns, err := repo.ListTurns(ctx, rec.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(turns) != 0 {
		t.Fatalf("expected no turns, got %+v", turns)
	}
}

func TestPostgres_CompleteUpsertsTurns(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	rec := createTestTranscription(t, repo)

	input := repository.CompleteTranscriptionInput{
		TranscriptionID: rec.ID,
		EndedAt:         time.Now().UTC(),
		Diarized:        true,
		Turns: []repository.TurnInput{
			{SpeakerID: "1", Text: "Oi, tudo bem?", MatchTier: "pattern", WordCount: 3},
			{SpeakerID: "2", Text: "ótimo", MatchTier: "unmatched", WordCount: 1},
		},
	}
	if err := repo.CompleteTranscription(ctx, input); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	input.Turns[1].Text = "Ótimo."
	input.Turns[1].MatchTier = "pattern"
	if err := repo.CompleteTranscription(ctx, input); err != nil {
		t.Fatalf("unexpected error on second completion: %v", err)
	}

	turns, err := repo.ListTurns(ctx, rec.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(turns) != 2 || turns[0].TurnIndex != 0 || turns[1].Text != "Ótimo." || turns[1].MatchTier != "pattern" {
		t.Fatalf("unexpected turns: %+v", turns)
	}
}

func TestPostgres_UnknownIDIsNotFound(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	err := repo.CompleteTranscription(ctx, repository.CompleteTranscriptionInput{
		TranscriptionID: "00000000-0000-0000-0000-000000000000",
		EndedAt:         time.Now().UTC(),
	})
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on completion, got %v", err)
	}
	for _, id := range []string{"00000000-0000-0000-0000-000000000000", "nao-e-uuid"} {
		if _, err := repo.GetTranscription(ctx, id); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound for %q, got %v", id, err)
		}
	}
}

func TestPostgres_FailStoresReason(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	rec := createTestTranscription(t, repo)

	err := repo.FailTranscription(ctx, repository.FailTranscriptionInput{
		TranscriptionID: rec.ID,
		EndedAt:         time.Now().UTC(),
		Reason:          "no speech detected in audio",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := repo.GetTranscription(ctx, rec.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != repository.TranscriptionStatusFailed || got.Error != "no speech detected in audio" {
		t.Fatalf("unexpected record: %+v", got)
	}
}
