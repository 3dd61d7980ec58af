package audio

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/cmplx"

	"github.com/ktye/fft"
)

// FFT computes magnitude spectra of fixed-size real blocks.
type FFT struct {
	fft fft.FFT
	buf []complex128
	abs []float64
}

// NewFFT ...
func NewFFT(size int) (*FFT, error) {
	if size < 2 || size&(size-1) != 0 {
		return nil, fmt.Errorf("%w: fft size must be a power of two, got %d", ErrInvalidParams, size)
	}
	f, err := fft.New(size)
	if err != nil {
		return nil, err
	}
	return &FFT{
		fft: f,
		buf: make([]complex128, size),
		abs: make([]float64, size/2),
	}, nil
}

// Size ...
func (f *FFT) Size() int {
	return len(f.buf)
}

// Spectrum returns the Hann-windowed magnitude spectrum of x up to Nyquist,
// normalized so that a full-scale sine peaks near 1. The result is reused by
// the next call.
func (f *FFT) Spectrum(x []float64) []float64 {
	n := len(f.buf)
	for i := range f.buf {
		v := 0.0
		if i < len(x) {
			v = x[i]
		}
		f.buf[i] = complex(v*han(i, n), 0)
	}
	f.buf = f.fft.Transform(f.buf)
	for i := range f.abs {
		f.abs[i] = cmplx.Abs(f.buf[i]) * 4 / float64(n)
	}
	return f.abs
}

// PeakFrequency returns the frequency of the strongest bin of x.
func (f *FFT) PeakFrequency(x []float64, sampleRate float64) float64 {
	spectrum := f.Spectrum(x)
	peak := 1
	for i := 2; i < len(spectrum); i++ {
		if spectrum[i] > spectrum[peak] {
			peak = i
		}
	}
	return float64(peak) * sampleRate / float64(len(f.buf))
}

// ----- Spectrum Tap ----- //

// SpectrumTap collects the first block of a 16-bit little-endian interleaved
// stream, downmixed to mono. It is an io.Writer so that it can sit next to a
// sink.
type SpectrumTap struct {
	channels int
	samples  []float64
	size     int
}

// NewSpectrumTap ...
func NewSpectrumTap(channels, size int) *SpectrumTap {
	return &SpectrumTap{
		channels: channels,
		samples:  make([]float64, 0, size),
		size:     size,
	}
}

// Write ...
func (t *SpectrumTap) Write(p []byte) (int, error) {
	frame := t.channels * bitDepthInBytes
	for i := 0; i+frame <= len(p) && len(t.samples) < t.size; i += frame {
		sum := 0.0
		for c := 0; c < t.channels; c++ {
			v := int16(binary.LittleEndian.Uint16(p[i+c*bitDepthInBytes:]))
			sum += float64(v) / math.MaxInt16
		}
		t.samples = append(t.samples, sum/float64(t.channels))
	}
	return len(p), nil
}

// Full reports whether a whole block has been collected.
func (t *SpectrumTap) Full() bool {
	return len(t.samples) >= t.size
}

// Samples ...
func (t *SpectrumTap) Samples() []float64 {
	return t.samples
}
