package audio

import (
	"fmt"
	"os"
	"time"

	"github.com/foxseedlab/kikitori/internal/audio"
	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const wavFormatPCM = 1

type WAVFile struct{}

func NewWAVFile() *WAVFile {
	return &WAVFile{}
}

func (WAVFile) Probe(path string) (audio.Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return audio.Format{}, err
	}
	defer func() {
		_ = f.Close()
	}()

	d := wav.NewDecoder(f)
	if !d.IsValidFile() {
		return audio.Format{}, fmt.Errorf("%s is not a valid wav file", path)
	}
	if err := d.FwdToPCM(); err != nil {
		return audio.Format{}, fmt.Errorf("locate wav data chunk: %w", err)
	}
	format := audio.Format{
		Channels:   int(d.NumChans),
		SampleRate: int(d.SampleRate),
		BitDepth:   int(d.BitDepth),
	}
	format.Duration = pcmDuration(d.PCMSize, format)
	return format, nil
}

func (WAVFile) WritePCM16(path string, samples []int16, sampleRate, channels int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	data := make([]int, len(samples))
	for i, s := range samples {
		data[i] = int(s)
	}
	enc := wav.NewEncoder(f, sampleRate, audio.TargetBitDepth, channels, wavFormatPCM)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: audio.TargetBitDepth,
	}
	if err := enc.Write(buf); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		_ = f.Close()
		return fmt.Errorf("finalize wav: %w", err)
	}
	return f.Close()
}

func (WAVFile) ReadMono(path string) ([]float64, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer func() {
		_ = f.Close()
	}()

	d := wav.NewDecoder(f)
	if !d.IsValidFile() {
		return nil, 0, fmt.Errorf("%s is not a valid wav file", path)
	}
	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("read pcm: %w", err)
	}
	channels := buf.Format.NumChannels
	if channels <= 0 {
		channels = 1
	}
	scale := float64(int64(1) << (uint(d.BitDepth) - 1))
	frames := len(buf.Data) / channels
	out := make([]float64, frames)
	for i := 0; i < frames; i++ {
		var sum float64
		for c := 0; c < channels; c++ {
			sum += float64(buf.Data[i*channels+c])
		}
		out[i] = sum / float64(channels) / scale
	}
	return out, int(d.SampleRate), nil
}

func pcmDuration(pcmBytes int, f audio.Format) time.Duration {
	bytesPerSecond := f.SampleRate * f.Channels * f.BitDepth / 8
	if bytesPerSecond <= 0 {
		return 0
	}
	return time.Duration(int64(pcmBytes) * int64(time.Second) / int64(bytesPerSecond))
}
