package recorder

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/foxseedlab/kikitori/internal/config"
)

type fakePort struct {
	chunks [][]byte
	reads  int
	resets int
	closed bool
	err    error
}

func (p *fakePort) Read(b []byte) (int, error) {
	if p.err != nil {
		return 0, p.err
	}
	if p.reads >= len(p.chunks) {
		p.reads++
		return 0, nil
	}
	n := copy(b, p.chunks[p.reads])
	p.reads++
	return n, nil
}

func (p *fakePort) ResetInputBuffer() error {
	p.resets++
	return nil
}

func (p *fakePort) Close() error {
	p.closed = true
	return nil
}

type fakeOpener struct {
	port *fakePort
	err  error
	name string
	baud int
}

func (o *fakeOpener) Open(name string, baudRate int) (Port, error) {
	o.name, o.baud = name, baudRate
	if o.err != nil {
		return nil, o.err
	}
	return o.port, nil
}

type fakeWriter struct {
	path     string
	samples  []int16
	rate     int
	channels int
}

func (w *fakeWriter) WritePCM16(path string, samples []int16, sampleRate, channels int) error {
	w.path, w.samples, w.rate, w.channels = path, samples, sampleRate, channels
	return nil
}

// steppingClock advances by step on every call.
func steppingClock(step time.Duration) func() time.Time {
	t := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(step)
		return t
	}
}

func testConfig(t *testing.T) *config.RecorderConfig {
	return &config.RecorderConfig{
		SerialPort:     "/dev/ttyUSB0",
		SerialBaudRate: 115200,
		SampleRate:     4,
		Channels:       1,
		DurationSec:    1,
		OutputPath:     filepath.Join(t.TempDir(), "gravacao.wav"),
	}
}

func TestRecord_TrimsAndWritesSamples(t *testing.T) {
	port := &fakePort{chunks: [][]byte{{0x01, 0x00, 0xff}, {0xff, 0x10}}}
	opener := &fakeOpener{port: port}
	writer := &fakeWriter{}
	cfg := testConfig(t)

	r := NewRecorder(cfg, opener, writer)
	r.now = steppingClock(100 * time.Millisecond)

	rec, err := r.Record(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opener.name != "/dev/ttyUSB0" || opener.baud != 115200 {
		t.Fatalf("unexpected open args: %s %d", opener.name, opener.baud)
	}
	if port.resets != 1 || !port.closed {
		t.Fatalf("expected reset and close, got resets=%d closed=%v", port.resets, port.closed)
	}
	if rec.Bytes != 4 || rec.TrimmedBytes != 1 {
		t.Fatalf("unexpected recording: %+v", rec)
	}
	if len(writer.samples) != 2 || writer.samples[0] != 1 || writer.samples[1] != -1 {
		t.Fatalf("unexpected samples: %v", writer.samples)
	}
	if rec.Duration != 500*time.Millisecond {
		t.Fatalf("unexpected duration: %s", rec.Duration)
	}
	if writer.path != cfg.OutputPath || writer.rate != 4 || writer.channels != 1 {
		t.Fatalf("unexpected writer args: %+v", writer)
	}
}

func TestRecord_OpenError(t *testing.T) {
	boom := errors.New("port busy")
	r := NewRecorder(testConfig(t), &fakeOpener{err: boom}, &fakeWriter{})
	if _, err := r.Record(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected open error, got %v", err)
	}
}

func TestRecord_ReadErrorClosesPort(t *testing.T) {
	port := &fakePort{err: errors.New("device unplugged")}
	r := NewRecorder(testConfig(t), &fakeOpener{port: port}, &fakeWriter{})
	r.now = steppingClock(100 * time.Millisecond)
	if _, err := r.Record(context.Background()); err == nil {
		t.Fatal("expected read error")
	}
	if !port.closed {
		t.Fatal("port must be closed on error")
	}
}

func TestRecord_CancelledDuringWarmup(t *testing.T) {
	cfg := testConfig(t)
	cfg.WarmupMs = 60000
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := NewRecorder(cfg, &fakeOpener{port: &fakePort{}}, &fakeWriter{})
	if _, err := r.Record(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestBytesToSamples(t *testing.T) {
	got := bytesToSamples([]byte{0x00, 0x80, 0xff, 0x7f})
	if got[0] != -32768 || got[1] != 32767 {
		t.Fatalf("unexpected samples: %v", got)
	}
}
