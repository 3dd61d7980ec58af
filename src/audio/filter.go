package audio

import (
	"fmt"
	"math"
)

// ----- Filter Kind ----- //

// FilterKind ...
type FilterKind int

const (
	Lowpass FilterKind = iota
	Highpass
	Bandpass
	Notch
	Allpass
)

var filterKindNames = [...]string{"lowpass", "highpass", "bandpass", "notch", "allpass"}

func (k FilterKind) String() string {
	if k < 0 || int(k) >= len(filterKindNames) {
		return fmt.Sprintf("FilterKind(%d)", int(k))
	}
	return filterKindNames[k]
}

// ----- Filter ----- //

// FilterParams ...
type FilterParams struct {
	Kind       FilterKind
	Freq       float64 // cutoff or center frequency in Hz
	Q          float64
	SampleRate float64
}

// Filter is a biquad modifier. Each channel keeps its own state.
type Filter struct {
	a    []float64 // feedforward
	b    []float64 // feedback
	past [2][]float64
}

// NewFilter ...
func NewFilter(p FilterParams) (*Filter, error) {
	if p.SampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate must be positive, got %v", ErrInvalidParams, p.SampleRate)
	}
	if p.Freq <= 0 || p.Freq >= p.SampleRate/2 {
		return nil, fmt.Errorf("%w: filter frequency must be in (0, %v), got %v", ErrInvalidParams, p.SampleRate/2, p.Freq)
	}
	if p.Q <= 0 {
		return nil, fmt.Errorf("%w: q must be positive, got %v", ErrInvalidParams, p.Q)
	}
	a, b, err := biquad(p.Kind, p.Freq/p.SampleRate, p.Q)
	if err != nil {
		return nil, err
	}
	f := &Filter{a: a, b: b}
	for i := range f.past {
		f.past[i] = make([]float64, 2)
	}
	return f, nil
}

// Apply ...
func (f *Filter) Apply(in Sample) Sample {
	in.L = f.step(in.L, f.past[0])
	if in.Stereo {
		in.R = f.step(in.R, f.past[1])
	} else {
		in.R = in.L
	}
	return in
}

func (f *Filter) step(in float64, past []float64) float64 {
	for j := 0; j < len(f.b); j++ {
		in -= past[j] * f.b[j]
	}
	o := in * f.a[0]
	for j := 1; j < len(f.a); j++ {
		o += past[j-1] * f.a[j]
	}
	past[1] = past[0]
	past[0] = in
	return o
}

// FrequencyResponse returns the magnitude response of the filter at size/2
// evenly spaced frequencies up to Nyquist. The filter state is not touched.
func (f *Filter) FrequencyResponse(size int) ([]float64, error) {
	fft, err := NewFFT(size)
	if err != nil {
		return nil, err
	}
	impulse := &Filter{a: f.a, b: f.b}
	impulse.past[0] = make([]float64, 2)
	h := make([]float64, size)
	for i := range h {
		in := 0.0
		if i == 0 {
			in = 1
		}
		h[i] = impulse.step(in, impulse.past[0])
	}
	fft.buf = fft.fft.Transform(toComplex(h, fft.buf))
	res := make([]float64, size/2)
	for i := range res {
		res[i] = math.Hypot(real(fft.buf[i]), imag(fft.buf[i]))
	}
	return res, nil
}

func toComplex(x []float64, buf []complex128) []complex128 {
	for i := range buf {
		buf[i] = complex(x[i], 0)
	}
	return buf
}

// biquad returns the coefficients for a normalized frequency fc (cycles per
// sample), from RBJ's cookbook.
func biquad(kind FilterKind, fc, q float64) ([]float64, []float64, error) {
	w0 := 2 * math.Pi * fc
	cos, sin := math.Cos(w0), math.Sin(w0)
	alpha := sin / (2 * q)
	var b0, b1, b2 float64
	switch kind {
	case Lowpass:
		b0, b1, b2 = (1-cos)/2, 1-cos, (1-cos)/2
	case Highpass:
		b0, b1, b2 = (1+cos)/2, -(1 + cos), (1+cos)/2
	case Bandpass:
		b0, b1, b2 = alpha, 0, -alpha
	case Notch:
		b0, b1, b2 = 1, -2*cos, 1
	case Allpass:
		b0, b1, b2 = 1-alpha, -2*cos, 1+alpha
	default:
		return nil, nil, fmt.Errorf("%w: unknown filter kind %v", ErrInvalidParams, kind)
	}
	a0 := 1 + alpha
	a1 := -2 * cos
	a2 := 1 - alpha
	return []float64{b0 / a0, b1 / a0, b2 / a0}, []float64{a1 / a0, a2 / a0}, nil
}
