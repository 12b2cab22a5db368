package audio

import (
	"math"
	"reflect"
	"testing"
)

func TestDownmixToMono(t *testing.T) {
	got := DownmixToMono([]int16{100, 300, -200, 200, 32767, 32767}, 2)
	want := []int16{200, 0, 32767}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	mono := []int16{1, 2, 3}
	if !reflect.DeepEqual(DownmixToMono(mono, 1), mono) {
		t.Fatal("mono input should be returned unchanged")
	}
}

func TestDecimate_KeepsConstantSignal(t *testing.T) {
	pcm := make([]int16, 301)
	for i := range pcm {
		pcm[i] = 1200
	}
	got := Decimate(pcm, 3)
	if len(got) != 100 {
		t.Fatalf("expected 100 samples, got %d", len(got))
	}
	for i, v := range got {
		if v < 1199 || v > 1201 {
			t.Fatalf("sample %d: expected ~1200, got %d", i, v)
		}
	}
}

func tone(freq, rate float64, n int, amp float64) []int16 {
	out := make([]int16, n)
	for i := range out {
		out[i] = int16(amp * math.Sin(2*math.Pi*freq*float64(i)/rate))
	}
	return out
}

// rms skips the filter warm-up at both ends.
func rms(pcm []int16) float64 {
	inner := pcm[len(pcm)/8 : len(pcm)-len(pcm)/8]
	var sum float64
	for _, v := range inner {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum / float64(len(inner)))
}

func TestDecimate_PassesSpeechBand(t *testing.T) {
	const amp = 10000
	got := Decimate(tone(1000, 48000, 4800, amp), 3)
	if r := rms(got); math.Abs(r-amp/math.Sqrt2) > 0.05*amp/math.Sqrt2 {
		t.Fatalf("1 kHz tone attenuated: rms %.1f", r)
	}
}

func TestDecimate_RejectsAboveNyquist(t *testing.T) {
	const amp = 10000
	got := Decimate(tone(12000, 48000, 4800, amp), 3)
	if r := rms(got); r > 0.02*amp {
		t.Fatalf("12 kHz tone aliased into output: rms %.1f", r)
	}
}

func TestTrimToFrames(t *testing.T) {
	raw := []byte{1, 2, 3, 4, 5}
	trimmed, cut := TrimToFrames(raw, 2)
	if len(trimmed) != 4 || cut != 1 {
		t.Fatalf("unexpected trim: len=%d cut=%d", len(trimmed), cut)
	}
}

func TestClampPCM(t *testing.T) {
	if clampPCM(40000) != 32767 || clampPCM(-40000) != -32768 || clampPCM(12) != 12 {
		t.Fatal("clampPCM did not clamp to int16 range")
	}
}
