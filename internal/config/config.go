package config

import (
	"fmt"
	"strings"
	"time"
	// Timezone names must resolve on hosts without a zoneinfo database.
	_ "time/tzdata"
)

const (
	SpeechAPIV1 = "v1"
	SpeechAPIV2 = "v2"
)

type Config struct {
	Env                        string
	TranscribeLanguage         string
	GoogleCloudProjectID       string
	GoogleCloudCredentialsJSON string
	GoogleCloudSpeechAPI       string
	GoogleCloudSpeechLocation  string
	GoogleCloudSpeechModel     string
	DiarizationMinSpeakers     int
	DiarizationMaxSpeakers     int
	RecognizeTimeoutSec        int
	AudioDir                   string
	AudioExtensions            []string
	FFmpegPath                 string
	OpusChannels               int
	TranscriptWriteTextFile    bool
	TranscriptTimezone         string
	DatabaseURL                string
	FirestoreProjectID         string
	FirestoreCredentialsJSON   string
	FirestoreCollection        string
	FirestoreDocumentID        string
	FirestoreField             string
	DiscordToken               string
	DiscordChannelID           string
	TranscriptWebhookURL       string
}

func (c *Config) Validate() error {
	for _, req := range c.requiredFieldChecks() {
		if req.value == "" {
			return fmt.Errorf("%s is required", req.name)
		}
	}
	if c.GoogleCloudSpeechAPI != SpeechAPIV1 && c.GoogleCloudSpeechAPI != SpeechAPIV2 {
		return fmt.Errorf("GOOGLE_CLOUD_SPEECH_API must be %q or %q, got %q", SpeechAPIV1, SpeechAPIV2, c.GoogleCloudSpeechAPI)
	}
	if c.DiarizationMinSpeakers <= 0 {
		return fmt.Errorf("DIARIZATION_MIN_SPEAKERS must be positive, got %d", c.DiarizationMinSpeakers)
	}
	if c.DiarizationMaxSpeakers < c.DiarizationMinSpeakers {
		return fmt.Errorf("DIARIZATION_MAX_SPEAKERS (%d) must not be less than DIARIZATION_MIN_SPEAKERS (%d)", c.DiarizationMaxSpeakers, c.DiarizationMinSpeakers)
	}
	if c.RecognizeTimeoutSec <= 0 {
		return fmt.Errorf("RECOGNIZE_TIMEOUT_SEC must be positive, got %d", c.RecognizeTimeoutSec)
	}
	if c.OpusChannels != 1 && c.OpusChannels != 2 {
		return fmt.Errorf("OPUS_CHANNELS must be 1 or 2, got %d", c.OpusChannels)
	}
	if len(c.AudioExtensions) == 0 {
		return fmt.Errorf("AUDIO_EXTENSIONS must list at least one extension")
	}
	if _, err := time.LoadLocation(c.TranscriptTimezone); err != nil {
		return fmt.Errorf("TRANSCRIPT_TIMEZONE is invalid: %w", err)
	}
	if c.FirestoreEnabled() && (c.FirestoreDocumentID == "" || c.FirestoreCollection == "" || c.FirestoreField == "") {
		return fmt.Errorf("FIRESTORE_COLLECTION, FIRESTORE_DOCUMENT_ID and FIRESTORE_FIELD are required when FIRESTORE_PROJECT_ID is set")
	}
	if c.DiscordToken != "" && c.DiscordChannelID == "" {
		return fmt.Errorf("DISCORD_CHANNEL_ID is required when DISCORD_TOKEN is set")
	}
	return nil
}

type requiredEnvField struct {
	name  string
	value string
}

func (c *Config) requiredFieldChecks() []requiredEnvField {
	return []requiredEnvField{
		{name: "TRANSCRIBE_LANGUAGE", value: c.TranscribeLanguage},
		{name: "GOOGLE_CLOUD_PROJECT_ID", value: c.GoogleCloudProjectID},
		{name: "GOOGLE_CLOUD_SPEECH_LOCATION", value: c.GoogleCloudSpeechLocation},
		{name: "AUDIO_DIR", value: c.AudioDir},
		{name: "FFMPEG_PATH", value: c.FFmpegPath},
		{name: "TRANSCRIPT_TIMEZONE", value: c.TranscriptTimezone},
	}
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c *Config) RecognizeTimeout() time.Duration {
	return time.Duration(c.RecognizeTimeoutSec) * time.Second
}

// HasAudioExtension reports whether name ends with one of AudioExtensions, ignoring case.
func (c *Config) HasAudioExtension(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range c.AudioExtensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext != "" && strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

func (c *Config) DatabaseEnabled() bool {
	return c.DatabaseURL != ""
}

func (c *Config) FirestoreEnabled() bool {
	return c.FirestoreProjectID != ""
}

func (c *Config) DiscordEnabled() bool {
	return c.DiscordToken != ""
}

func (c *Config) WebhookEnabled() bool {
	return c.TranscriptWebhookURL != ""
}

func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.TranscriptTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

type RecorderConfig struct {
	Env            string
	SerialPort     string
	SerialBaudRate int
	SampleRate     int
	Channels       int
	DurationSec    int
	WarmupMs       int
	OutputPath     string
}

func (c *RecorderConfig) Validate() error {
	if c.SerialPort == "" {
		return fmt.Errorf("SERIAL_PORT is required")
	}
	if c.OutputPath == "" {
		return fmt.Errorf("RECORD_OUTPUT is required")
	}
	if c.SerialBaudRate <= 0 || c.SampleRate <= 0 || c.DurationSec <= 0 {
		return fmt.Errorf("SERIAL_BAUD_RATE, RECORD_SAMPLE_RATE and RECORD_DURATION_SEC must be positive")
	}
	if c.Channels != 1 && c.Channels != 2 {
		return fmt.Errorf("RECORD_CHANNELS must be 1 or 2, got %d", c.Channels)
	}
	if c.WarmupMs < 0 {
		return fmt.Errorf("RECORD_WARMUP_MS must not be negative, got %d", c.WarmupMs)
	}
	return nil
}

func (c *RecorderConfig) IsDevelopment() bool {
	return c.Env == "development"
}

type VoiceprintConfig struct {
	Env       string
	TrainDir  string
	ModelPath string
	MFCCCount int
	Epochs    int
}

func (c *VoiceprintConfig) Validate() error {
	if c.TrainDir == "" || c.ModelPath == "" {
		return fmt.Errorf("VOICEPRINT_TRAIN_DIR and VOICEPRINT_MODEL_PATH are required")
	}
	if c.MFCCCount <= 0 || c.MFCCCount > 26 {
		return fmt.Errorf("VOICEPRINT_MFCC_COUNT must be between 1 and 26, got %d", c.MFCCCount)
	}
	if c.Epochs <= 0 {
		return fmt.Errorf("VOICEPRINT_EPOCHS must be positive, got %d", c.Epochs)
	}
	return nil
}

func (c *VoiceprintConfig) IsDevelopment() bool {
	return c.Env == "development"
}
