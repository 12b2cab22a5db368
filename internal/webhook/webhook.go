package webhook

import "context"

const TranscriptWebhookSchemaVersion = 1

type TurnPayload struct {
	Index     int    `json:"index"`
	SpeakerID string `json:"speaker_id"`
	Text      string `json:"text"`
	MatchTier string `json:"match_tier"`
}

type TranscriptWebhookPayload struct {
	SchemaVersion int           `json:"schema_version"`
	SourceFile    string        `json:"source_file"`
	Language      string        `json:"language"`
	Model         string        `json:"model"`
	Diarized      bool          `json:"diarized"`
	StartedAt     string        `json:"started_at"`
	CompletedAt   string        `json:"completed_at"`
	Timezone      string        `json:"timezone"`
	Speakers      []string      `json:"speakers"`
	Transcript    string        `json:"transcript"`
	Report        string        `json:"report"`
	Turns         []TurnPayload `json:"turns"`
}

type Sender interface {
	SendTranscript(ctx context.Context, payload TranscriptWebhookPayload) error
}
