package transcriber

import (
	"testing"

	"github.com/foxseedlab/kikitori/internal/config"
)

func TestNewTranscriber_SelectsAPIVersion(t *testing.T) {
	cfg := &config.Config{
		GoogleCloudProjectID:      "projeto",
		GoogleCloudSpeechLocation: "us",
		GoogleCloudSpeechModel:    "chirp_3",
		GoogleCloudSpeechAPI:      config.SpeechAPIV1,
	}
	stt, err := newTranscriber(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := stt.(*CloudSpeechV1Transcriber); !ok {
		t.Fatalf("expected v1 transcriber, got %T", stt)
	}

	cfg.GoogleCloudSpeechAPI = config.SpeechAPIV2
	stt, err = newTranscriber(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := stt.(*CloudSpeechV2Transcriber); !ok {
		t.Fatalf("expected v2 transcriber, got %T", stt)
	}
}

func TestNewTranscriber_UnknownAPI(t *testing.T) {
	if _, err := newTranscriber(&config.Config{GoogleCloudSpeechAPI: "v9"}); err == nil {
		t.Fatal("expected error for unknown api version")
	}
}
