package audio

import (
	"math"

	"gonum.org/v1/gonum/dsp/window"
	"gonum.org/v1/gonum/floats"
)

// DownmixToMono averages interleaved frames of the given channel count.
func DownmixToMono(pcm []int16, channels int) []int16 {
	if channels <= 1 {
		return pcm
	}
	frames := len(pcm) / channels
	out := make([]int16, frames)
	for i := 0; i < frames; i++ {
		var sum int32
		for c := 0; c < channels; c++ {
			sum += int32(pcm[i*channels+c])
		}
		out[i] = clampPCM(sum / int32(channels))
	}
	return out
}

const (
	decimationTaps = 63
	// Fraction of the output Nyquist frequency kept by the low-pass filter.
	decimationCutoff = 0.9
)

// Decimate low-pass filters mono PCM and keeps every factor-th sample, so
// content above the new Nyquist frequency does not alias into the output.
// Trailing samples that do not fill a whole group are dropped.
func Decimate(pcm []int16, factor int) []int16 {
	if factor <= 1 {
		return pcm
	}
	kernel := lowPassKernel(factor, decimationTaps)
	mid := len(kernel) / 2
	last := len(pcm) - 1

	out := make([]int16, 0, len(pcm)/factor)
	for n := 0; n+factor <= len(pcm); n += factor {
		var acc float64
		for k, h := range kernel {
			// Edges repeat the boundary sample.
			i := min(max(n+k-mid, 0), last)
			acc += h * float64(pcm[i])
		}
		out = append(out, clampPCM(int32(math.Round(acc))))
	}
	return out
}

// lowPassKernel is a Hamming-windowed sinc with unity DC gain.
func lowPassKernel(factor, taps int) []float64 {
	cutoff := decimationCutoff * 0.5 / float64(factor)
	center := float64(taps-1) / 2
	h := make([]float64, taps)
	for i := range h {
		x := float64(i) - center
		if x == 0 {
			h[i] = 2 * cutoff
			continue
		}
		h[i] = math.Sin(2*math.Pi*cutoff*x) / (math.Pi * x)
	}
	window.Hamming(h)
	floats.Scale(1/floats.Sum(h), h)
	return h
}

// TrimToFrames drops trailing bytes that do not form a whole sample frame.
func TrimToFrames(raw []byte, bytesPerFrame int) ([]byte, int) {
	if bytesPerFrame <= 0 {
		return raw, 0
	}
	cut := len(raw) % bytesPerFrame
	return raw[:len(raw)-cut], cut
}

func clampPCM(v int32) int16 {
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return int16(v)
}
