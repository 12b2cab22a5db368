package repository

import "time"

type TranscriptionStatus string

const (
	TranscriptionStatusRunning   TranscriptionStatus = "running"
	TranscriptionStatusCompleted TranscriptionStatus = "completed"
	TranscriptionStatusFailed    TranscriptionStatus = "failed"
)

type Transcription struct {
	ID         string
	SourcePath string
	Language   string
	Model      string
	APIVersion string
	Diarized   bool
	StartedAt  time.Time
	EndedAt    *time.Time
	Status     TranscriptionStatus
	Report     string
	Error      string
	CreatedAt  time.Time
}

type TranscriptTurn struct {
	TranscriptionID string
	TurnIndex       int
	SpeakerID       string
	Text            string
	MatchTier       string
	WordCount       int
}
