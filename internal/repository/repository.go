package repository

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("transcription not found")

type CreateTranscriptionInput struct {
	SourcePath string
	Language   string
	Model      string
	APIVersion string
	StartedAt  time.Time
}

type TurnInput struct {
	SpeakerID string
	Text      string
	MatchTier string
	WordCount int
}

type CompleteTranscriptionInput struct {
	TranscriptionID string
	EndedAt         time.Time
	Diarized        bool
	Report          string
	Turns           []TurnInput
}

type FailTranscriptionInput struct {
	TranscriptionID string
	EndedAt         time.Time
	Reason          string
}

type TranscriptionRepository interface {
	CreateTranscription(ctx context.Context, input CreateTranscriptionInput) (*Transcription, error)
	CompleteTranscription(ctx context.Context, input CompleteTranscriptionInput) error
	FailTranscription(ctx context.Context, input FailTranscriptionInput) error
	GetTranscription(ctx context.Context, id string) (*Transcription, error)
}

type TurnRepository interface {
	ListTurns(ctx context.Context, transcriptionID string) ([]TranscriptTurn, error)
}

type Repository interface {
	TranscriptionRepository
	TurnRepository
	Close()
}
