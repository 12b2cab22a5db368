package voiceprint

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
)

const (
	frameDuration = 0.025
	hopDuration   = 0.010
	melFilters    = 26
	logFloor      = 1e-10
)

var ErrTooShort = errors.New("audio too short for feature extraction")

// ExtractMFCC returns the mean of n mel-frequency cepstral coefficients over
// all 25 ms frames of samples, hopping 10 ms between frames.
func ExtractMFCC(samples []float64, sampleRate, n int) ([]float64, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate %d", sampleRate)
	}
	if n <= 0 || n > melFilters {
		return nil, fmt.Errorf("coefficient count must be between 1 and %d, got %d", melFilters, n)
	}
	frameLen := int(math.Round(frameDuration * float64(sampleRate)))
	hop := int(math.Round(hopDuration * float64(sampleRate)))
	if len(samples) < frameLen {
		return nil, fmt.Errorf("%w: %d samples, need %d", ErrTooShort, len(samples), frameLen)
	}

	nfft := nextPow2(frameLen)
	fft := fourier.NewFFT(nfft)
	window := hann(frameLen)
	filters := melFilterbank(melFilters, nfft, sampleRate)

	frame := make([]float64, nfft)
	coeffs := make([]complex128, nfft/2+1)
	power := make([]float64, nfft/2+1)
	energies := make([]float64, melFilters)
	cepstrum := make([]float64, n)
	sum := make([]float64, n)
	frames := 0

	for start := 0; start+frameLen <= len(samples); start += hop {
		for i := range frame {
			frame[i] = 0
		}
		for i := 0; i < frameLen; i++ {
			frame[i] = samples[start+i] * window[i]
		}
		coeffs = fft.Coefficients(coeffs, frame)
		for i, c := range coeffs {
			re, im := real(c), imag(c)
			power[i] = (re*re + im*im) / float64(nfft)
		}
		for m, filter := range filters {
			energies[m] = math.Log(floats.Dot(filter, power) + logFloor)
		}
		dct2(cepstrum, energies)
		floats.Add(sum, cepstrum)
		frames++
	}

	floats.Scale(1/float64(frames), sum)
	return sum, nil
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

func hann(n int) []float64 {
	w := make([]float64, n)
	if n == 1 {
		w[0] = 1
		return w
	}
	for i := range w {
		w[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n-1))
	}
	return w
}

func hzToMel(f float64) float64 { return 2595 * math.Log10(1+f/700) }
func melToHz(m float64) float64 { return 700 * (math.Pow(10, m/2595) - 1) }

// melFilterbank builds triangular filters spaced evenly on the mel scale from
// 0 Hz to Nyquist, each as weights over the nfft/2+1 power bins.
func melFilterbank(count, nfft, sampleRate int) [][]float64 {
	bins := nfft/2 + 1
	maxMel := hzToMel(float64(sampleRate) / 2)
	points := make([]float64, count+2)
	for i := range points {
		hz := melToHz(maxMel * float64(i) / float64(count+1))
		points[i] = hz * float64(nfft) / float64(sampleRate)
	}

	filters := make([][]float64, count)
	for m := 0; m < count; m++ {
		left, center, right := points[m], points[m+1], points[m+2]
		f := make([]float64, bins)
		for k := 0; k < bins; k++ {
			x := float64(k)
			switch {
			case x > left && x <= center && center > left:
				f[k] = (x - left) / (center - left)
			case x > center && x < right && right > center:
				f[k] = (right - x) / (right - center)
			}
		}
		filters[m] = f
	}
	return filters
}

// dct2 writes the first len(dst) orthonormal DCT-II coefficients of src.
func dct2(dst, src []float64) {
	n := float64(len(src))
	for k := range dst {
		var s float64
		for i, v := range src {
			s += v * math.Cos(math.Pi*float64(k)*(float64(i)+0.5)/n)
		}
		scale := math.Sqrt(2 / n)
		if k == 0 {
			scale = math.Sqrt(1 / n)
		}
		dst[k] = s * scale
	}
}
