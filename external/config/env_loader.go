package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	internalconfig "github.com/foxseedlab/kikitori/internal/config"
)

type envConfig struct {
	Env                        string   `env:"ENV" envDefault:"production"`
	TranscribeLanguage         string   `env:"TRANSCRIBE_LANGUAGE" envDefault:"pt-BR"`
	GoogleCloudProjectID       string   `env:"GOOGLE_CLOUD_PROJECT_ID,required"`
	GoogleCloudCredentialsJSON string   `env:"GOOGLE_CLOUD_CREDENTIALS_JSON"`
	GoogleCloudSpeechAPI       string   `env:"GOOGLE_CLOUD_SPEECH_API" envDefault:"v2"`
	GoogleCloudSpeechLocation  string   `env:"GOOGLE_CLOUD_SPEECH_LOCATION" envDefault:"us"`
	GoogleCloudSpeechModel     string   `env:"GOOGLE_CLOUD_SPEECH_MODEL" envDefault:"chirp_3"`
	DiarizationMinSpeakers     int      `env:"DIARIZATION_MIN_SPEAKERS" envDefault:"1"`
	DiarizationMaxSpeakers     int      `env:"DIARIZATION_MAX_SPEAKERS" envDefault:"5"`
	RecognizeTimeoutSec        int      `env:"RECOGNIZE_TIMEOUT_SEC" envDefault:"300"`
	AudioDir                   string   `env:"AUDIO_DIR" envDefault:"audios"`
	AudioExtensions            []string `env:"AUDIO_EXTENSIONS" envDefault:".wav,.mp3,.m4a,.flac,.ogg,.opus" envSeparator:","`
	FFmpegPath                 string   `env:"FFMPEG_PATH" envDefault:"ffmpeg"`
	OpusChannels               int      `env:"OPUS_CHANNELS" envDefault:"1"`
	TranscriptWriteTextFile    bool     `env:"TRANSCRIPT_WRITE_TEXT_FILE" envDefault:"true"`
	TranscriptTimezone         string   `env:"TRANSCRIPT_TIMEZONE" envDefault:"America/Sao_Paulo"`
	DatabaseURL                string   `env:"DATABASE_URL"`
	FirestoreProjectID         string   `env:"FIRESTORE_PROJECT_ID"`
	FirestoreCredentialsJSON   string   `env:"FIRESTORE_CREDENTIALS_JSON"`
	FirestoreCollection        string   `env:"FIRESTORE_COLLECTION" envDefault:"textoTranscricao"`
	FirestoreDocumentID        string   `env:"FIRESTORE_DOCUMENT_ID"`
	FirestoreField             string   `env:"FIRESTORE_FIELD" envDefault:"texto"`
	DiscordToken               string   `env:"DISCORD_TOKEN"`
	DiscordChannelID           string   `env:"DISCORD_CHANNEL_ID"`
	TranscriptWebhookURL       string   `env:"TRANSCRIPT_WEBHOOK_URL"`
}

type recorderEnvConfig struct {
	Env            string `env:"ENV" envDefault:"production"`
	SerialPort     string `env:"SERIAL_PORT"`
	SerialBaudRate int    `env:"SERIAL_BAUD_RATE" envDefault:"115200"`
	SampleRate     int    `env:"RECORD_SAMPLE_RATE" envDefault:"16000"`
	Channels       int    `env:"RECORD_CHANNELS" envDefault:"1"`
	DurationSec    int    `env:"RECORD_DURATION_SEC" envDefault:"10"`
	WarmupMs       int    `env:"RECORD_WARMUP_MS" envDefault:"2000"`
	OutputPath     string `env:"RECORD_OUTPUT" envDefault:"audios/gravacao.wav"`
}

type voiceprintEnvConfig struct {
	Env       string `env:"ENV" envDefault:"production"`
	TrainDir  string `env:"VOICEPRINT_TRAIN_DIR" envDefault:"audios_treinamento"`
	ModelPath string `env:"VOICEPRINT_MODEL_PATH" envDefault:"modelo_timbres.json"`
	MFCCCount int    `env:"VOICEPRINT_MFCC_COUNT" envDefault:"13"`
	Epochs    int    `env:"VOICEPRINT_EPOCHS" envDefault:"200"`
}

func Load() (*internalconfig.Config, error) {
	var raw envConfig
	if err := env.Parse(&raw); err != nil {
		return nil, fmt.Errorf("environment variables are invalid or missing: %w", err)
	}

	cfg := &internalconfig.Config{
		Env:                        raw.Env,
		TranscribeLanguage:         raw.TranscribeLanguage,
		GoogleCloudProjectID:       raw.GoogleCloudProjectID,
		GoogleCloudCredentialsJSON: raw.GoogleCloudCredentialsJSON,
		GoogleCloudSpeechAPI:       raw.GoogleCloudSpeechAPI,
		GoogleCloudSpeechLocation:  raw.GoogleCloudSpeechLocation,
		GoogleCloudSpeechModel:     raw.GoogleCloudSpeechModel,
		DiarizationMinSpeakers:     raw.DiarizationMinSpeakers,
		DiarizationMaxSpeakers:     raw.DiarizationMaxSpeakers,
		RecognizeTimeoutSec:        raw.RecognizeTimeoutSec,
		AudioDir:                   raw.AudioDir,
		AudioExtensions:            raw.AudioExtensions,
		FFmpegPath:                 raw.FFmpegPath,
		OpusChannels:               raw.OpusChannels,
		TranscriptWriteTextFile:    raw.TranscriptWriteTextFile,
		TranscriptTimezone:         raw.TranscriptTimezone,
		DatabaseURL:                raw.DatabaseURL,
		FirestoreProjectID:         raw.FirestoreProjectID,
		FirestoreCredentialsJSON:   raw.FirestoreCredentialsJSON,
		FirestoreCollection:        raw.FirestoreCollection,
		FirestoreDocumentID:        raw.FirestoreDocumentID,
		FirestoreField:             raw.FirestoreField,
		DiscordToken:               raw.DiscordToken,
		DiscordChannelID:           raw.DiscordChannelID,
		TranscriptWebhookURL:       raw.TranscriptWebhookURL,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadRecorder reads the serial recorder settings. portOverride, when not
// empty, replaces SERIAL_PORT.
func LoadRecorder(portOverride string) (*internalconfig.RecorderConfig, error) {
	var raw recorderEnvConfig
	if err := env.Parse(&raw); err != nil {
		return nil, fmt.Errorf("environment variables are invalid or missing: %w", err)
	}
	if portOverride != "" {
		raw.SerialPort = portOverride
	}
	cfg := &internalconfig.RecorderConfig{
		Env:            raw.Env,
		SerialPort:     raw.SerialPort,
		SerialBaudRate: raw.SerialBaudRate,
		SampleRate:     raw.SampleRate,
		Channels:       raw.Channels,
		DurationSec:    raw.DurationSec,
		WarmupMs:       raw.WarmupMs,
		OutputPath:     raw.OutputPath,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func LoadVoiceprint() (*internalconfig.VoiceprintConfig, error) {
	var raw voiceprintEnvConfig
	if err := env.Parse(&raw); err != nil {
		return nil, fmt.Errorf("environment variables are invalid or missing: %w", err)
	}
	cfg := &internalconfig.VoiceprintConfig{
		Env:       raw.Env,
		TrainDir:  raw.TrainDir,
		ModelPath: raw.ModelPath,
		MFCCCount: raw.MFCCCount,
		Epochs:    raw.Epochs,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
