package repository

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

var migrationStatements = []string{
	`DO $$ BEGIN CREATE TYPE transcription_status AS ENUM ('running', 'completed', 'failed'); EXCEPTION WHEN duplicate_object THEN NULL; END $$`,
	`CREATE TABLE IF NOT EXISTS transcriptions (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		source_path TEXT NOT NULL,
		language TEXT NOT NULL,
		model TEXT NOT NULL,
		api_version TEXT NOT NULL,
		diarized BOOLEAN NOT NULL DEFAULT FALSE,
		started_at TIMESTAMPTZ NOT NULL,
		ended_at TIMESTAMPTZ,
		status transcription_status NOT NULL DEFAULT 'running',
		report TEXT NOT NULL DEFAULT '',
		error TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_transcriptions_source ON transcriptions (source_path, started_at DESC)`,
	`CREATE TABLE IF NOT EXISTS transcript_turns (
		transcription_id UUID NOT NULL REFERENCES transcriptions(id) ON DELETE CASCADE,
		turn_index INTEGER NOT NULL,
		speaker_id TEXT NOT NULL,
		text TEXT NOT NULL,
		match_tier TEXT NOT NULL,
		word_count INTEGER NOT NULL,
		PRIMARY KEY (transcription_id, turn_index)
	)`,
}

func RunMigration(ctx context.Context, pool *pgxpool.Pool) error {
	for _, s := range migrationStatements {
		stmt := strings.TrimSpace(s)
		if stmt == "" {
			continue
		}
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
