package repository

import (
	"strings"
	"testing"
)

func TestMigrationStatementsAreIdempotent(t *testing.T) {
	for _, stmt := range migrationStatements {
		s := strings.TrimSpace(stmt)
		switch {
		case strings.HasPrefix(s, "DO $$"):
			if !strings.Contains(s, "duplicate_object") {
				t.Fatalf("enum creation must ignore duplicates: %s", s)
			}
		case strings.HasPrefix(s, "CREATE"):
			if !strings.Contains(s, "IF NOT EXISTS") {
				t.Fatalf("statement is not idempotent: %s", s)
			}
		default:
			t.Fatalf("unexpected migration statement: %s", s)
		}
	}
}

func TestMigrationCreatesTurnTableAfterTranscriptions(t *testing.T) {
	transcriptions, turns := -1, -1
	for i, stmt := range migrationStatements {
		if strings.Contains(stmt, "TABLE IF NOT EXISTS transcriptions") {
			transcriptions = i
		}
		if strings.Contains(stmt, "TABLE IF NOT EXISTS transcript_turns") {
			turns = i
		}
	}
	if transcriptions < 0 || turns < 0 || turns < transcriptions {
		t.Fatalf("unexpected table order: transcriptions=%d turns=%d", transcriptions, turns)
	}
}
