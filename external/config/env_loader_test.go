package config

import (
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("GOOGLE_CLOUD_PROJECT_ID", "conecta")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.TranscribeLanguage != "pt-BR" || cfg.GoogleCloudSpeechAPI != "v2" || cfg.GoogleCloudSpeechModel != "chirp_3" {
		t.Fatalf("unexpected speech defaults: %+v", cfg)
	}
	if cfg.DiarizationMinSpeakers != 1 || cfg.DiarizationMaxSpeakers != 5 {
		t.Fatalf("unexpected diarization defaults: %d..%d", cfg.DiarizationMinSpeakers, cfg.DiarizationMaxSpeakers)
	}
	if len(cfg.AudioExtensions) != 6 || cfg.AudioExtensions[0] != ".wav" {
		t.Fatalf("unexpected audio extensions: %v", cfg.AudioExtensions)
	}
	if cfg.DatabaseEnabled() || cfg.FirestoreEnabled() || cfg.DiscordEnabled() {
		t.Fatal("optional sinks must be disabled by default")
	}
}

func TestLoad_MissingProject(t *testing.T) {
	t.Setenv("GOOGLE_CLOUD_PROJECT_ID", "")
	if _, err := Load(); err == nil {
		t.Fatal("expected error without GOOGLE_CLOUD_PROJECT_ID")
	}
}

func TestLoad_InvalidSpeakerRange(t *testing.T) {
	t.Setenv("GOOGLE_CLOUD_PROJECT_ID", "conecta")
	t.Setenv("DIARIZATION_MIN_SPEAKERS", "4")
	t.Setenv("DIARIZATION_MAX_SPEAKERS", "2")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for inverted speaker range")
	}
}

func TestLoadRecorder_PortOverride(t *testing.T) {
	t.Setenv("SERIAL_PORT", "/dev/ttyUSB0")

	cfg, err := LoadRecorder("/dev/ttyACM1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.SerialPort != "/dev/ttyACM1" {
		t.Fatalf("expected override port, got %s", cfg.SerialPort)
	}
	if cfg.SerialBaudRate != 115200 || cfg.SampleRate != 16000 || cfg.DurationSec != 10 {
		t.Fatalf("unexpected recorder defaults: %+v", cfg)
	}
}

func TestLoadRecorder_RequiresPort(t *testing.T) {
	t.Setenv("SERIAL_PORT", "")
	if _, err := LoadRecorder(""); err == nil {
		t.Fatal("expected error without serial port")
	}
}

func TestLoadVoiceprint_Defaults(t *testing.T) {
	cfg, err := LoadVoiceprint()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.MFCCCount != 13 || cfg.ModelPath != "modelo_timbres.json" {
		t.Fatalf("unexpected voiceprint defaults: %+v", cfg)
	}
}
