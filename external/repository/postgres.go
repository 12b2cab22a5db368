package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/foxseedlab/kikitori/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) repository.Repository {
	return &PostgresRepository{pool: pool}
}

const transcriptionColumns = `id, source_path, language, model, api_version, diarized, started_at, ended_at, status, report, error, created_at`

func scanTranscription(row pgx.Row) (*repository.Transcription, error) {
	var t repository.Transcription
	err := row.Scan(&t.ID, &t.SourcePath, &t.Language, &t.Model, &t.APIVersion, &t.Diarized,
		&t.StartedAt, &t.EndedAt, &t.Status, &t.Report, &t.Error, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *PostgresRepository) CreateTranscription(ctx context.Context, input repository.CreateTranscriptionInput) (*repository.Transcription, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO transcriptions (source_path, language, model, api_version, started_at, status)
		 VALUES ($1, $2, $3, $4, $5, 'running')
		 RETURNING `+transcriptionColumns,
		input.SourcePath, input.Language, input.Model, input.APIVersion, input.StartedAt)
	return scanTranscription(row)
}

func (r *PostgresRepository) CompleteTranscription(ctx context.Context, input repository.CompleteTranscriptionInput) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE transcriptions SET status = 'completed', ended_at = $2, diarized = $3, report = $4
			 WHERE id = $1`,
			input.TranscriptionID, input.EndedAt, input.Diarized, input.Report)
		if err != nil {
			return fmt.Errorf("update transcription: %w", mapNotFound(err))
		}
		if tag.RowsAffected() == 0 {
			return repository.ErrNotFound
		}

		batch := &pgx.Batch{}
		for i, turn := range input.Turns {
			batch.Queue(
				`INSERT INTO transcript_turns (transcription_id, turn_index, speaker_id, text, match_tier, word_count)
				 VALUES ($1, $2, $3, $4, $5, $6)
				 ON CONFLICT (transcription_id, turn_index) DO UPDATE
				 SET speaker_id = EXCLUDED.speaker_id, text = EXCLUDED.text,
				     match_tier = EXCLUDED.match_tier, word_count = EXCLUDED.word_count`,
				input.TranscriptionID, i, turn.SpeakerID, turn.Text, turn.MatchTier, turn.WordCount)
		}
		if batch.Len() == 0 {
			return nil
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert transcript turns: %w", err)
		}
		return nil
	})
}

func (r *PostgresRepository) FailTranscription(ctx context.Context, input repository.FailTranscriptionInput) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE transcriptions SET status = 'failed', ended_at = $2, error = $3 WHERE id = $1`,
		input.TranscriptionID, input.EndedAt, input.Reason)
	return err
}

func (r *PostgresRepository) GetTranscription(ctx context.Context, id string) (*repository.Transcription, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+transcriptionColumns+` FROM transcriptions WHERE id = $1`, id)
	t, err := scanTranscription(row)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return t, nil
}

func (r *PostgresRepository) ListTurns(ctx context.Context, transcriptionID string) ([]repository.TranscriptTurn, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT transcription_id, turn_index, speaker_id, text, match_tier, word_count
		 FROM transcript_turns WHERE transcription_id = $1 ORDER BY turn_index ASC`,
		transcriptionID)
	if err != nil {
		return nil, mapNotFound(err)
	}
	turns, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (repository.TranscriptTurn, error) {
		var t repository.TranscriptTurn
		err := row.Scan(&t.TranscriptionID, &t.TurnIndex, &t.SpeakerID, &t.Text, &t.MatchTier, &t.WordCount)
		return t, err
	})
	if err != nil {
		return nil, mapNotFound(err)
	}
	return turns, nil
}

// SQLSTATE raised when a malformed UUID is compared with the id column.
const invalidTextRepresentation = "22P02"

// mapNotFound turns a missing row, or an id that is not a UUID at all, into
// repository.ErrNotFound.
func mapNotFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == invalidTextRepresentation {
		return repository.ErrNotFound
	}
	return err
}

func (r *PostgresRepository) Close() {
	r.pool.Close()
}
