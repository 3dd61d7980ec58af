package audio

import (
	"fmt"
	"math"
)

// ----- Wave Shape ----- //

// Shape selects the waveform of an Oscillator.
type Shape int

const (
	ShapeSine Shape = iota
	ShapeSquare
	ShapeSawtooth
	ShapeTriangle
)

var shapeNames = map[Shape]string{
	ShapeSine:     "sine",
	ShapeSquare:   "square",
	ShapeSawtooth: "sawtooth",
	ShapeTriangle: "triangle",
}

func (s Shape) String() string {
	if name, ok := shapeNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Shape(%d)", int(s))
}

// ----- OSC Params ----- //

// OscParams configures an Oscillator. A zero Min and Max mean [-1, 1].
type OscParams struct {
	Shape      Shape
	Freq       float64 // Hz
	Phase      float64 // degrees
	Amp        float64
	SampleRate float64
	Min        float64
	Max        float64
	Threshold  float64 // square only
}

// ----- OSC ----- //

// Oscillator is a periodic generator.
type Oscillator struct {
	shape      Shape
	sampleRate float64
	min        float64
	max        float64
	threshold  float64

	initFreq  float64
	initPhase float64
	initAmp   float64

	freq  float64
	phase float64 // degrees
	amp   float64

	i      float64 // radians for sine/square, samples for saw/triangle
	p      float64 // phase offset in the unit of i
	step   float64
	period float64
}

// NewOscillator ...
func NewOscillator(p OscParams) (*Oscillator, error) {
	if p.Freq <= 0 {
		return nil, fmt.Errorf("%w: frequency must be positive, got %v", ErrInvalidParams, p.Freq)
	}
	if p.SampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate must be positive, got %v", ErrInvalidParams, p.SampleRate)
	}
	if p.Min == 0 && p.Max == 0 {
		p.Min, p.Max = -1, 1
	}
	if p.Min >= p.Max {
		return nil, fmt.Errorf("%w: empty wave range [%v, %v]", ErrInvalidParams, p.Min, p.Max)
	}
	if _, ok := shapeNames[p.Shape]; !ok {
		return nil, fmt.Errorf("%w: unknown shape %v", ErrInvalidParams, p.Shape)
	}
	o := &Oscillator{
		shape:      p.Shape,
		sampleRate: p.SampleRate,
		min:        p.Min,
		max:        p.Max,
		threshold:  p.Threshold,
		initFreq:   p.Freq,
		initPhase:  p.Phase,
		initAmp:    p.Amp,
	}
	o.SetFreq(p.Freq)
	o.SetPhase(p.Phase)
	o.SetAmp(p.Amp)
	return o, nil
}

// NewSine ...
func NewSine(freq, phase, amp, sampleRate float64) (*Oscillator, error) {
	return NewOscillator(OscParams{Shape: ShapeSine, Freq: freq, Phase: phase, Amp: amp, SampleRate: sampleRate})
}

// NewSquare ...
func NewSquare(freq, phase, amp, sampleRate float64) (*Oscillator, error) {
	return NewOscillator(OscParams{Shape: ShapeSquare, Freq: freq, Phase: phase, Amp: amp, SampleRate: sampleRate})
}

// NewSawtooth ...
func NewSawtooth(freq, phase, amp, sampleRate float64) (*Oscillator, error) {
	return NewOscillator(OscParams{Shape: ShapeSawtooth, Freq: freq, Phase: phase, Amp: amp, SampleRate: sampleRate})
}

// NewTriangle ...
func NewTriangle(freq, phase, amp, sampleRate float64) (*Oscillator, error) {
	return NewOscillator(OscParams{Shape: ShapeTriangle, Freq: freq, Phase: phase, Amp: amp, SampleRate: sampleRate})
}

// Shape ...
func (o *Oscillator) Shape() Shape { return o.shape }

// Freq ...
func (o *Oscillator) Freq() float64 { return o.freq }

// Phase ...
func (o *Oscillator) Phase() float64 { return o.phase }

// Amp ...
func (o *Oscillator) Amp() float64 { return o.amp }

// InitFreq ...
func (o *Oscillator) InitFreq() float64 { return o.initFreq }

// InitPhase ...
func (o *Oscillator) InitPhase() float64 { return o.initPhase }

// InitAmp ...
func (o *Oscillator) InitAmp() float64 { return o.initAmp }

// SetFreq overwrites the current frequency.
func (o *Oscillator) SetFreq(freq float64) {
	o.freq = freq
	switch o.shape {
	case ShapeSine, ShapeSquare:
		o.step = 2.0 * math.Pi * freq / o.sampleRate
	case ShapeSawtooth, ShapeTriangle:
		o.period = o.sampleRate / freq
		o.updatePhaseOffset()
	}
}

// SetPhase overwrites the current phase, in degrees.
func (o *Oscillator) SetPhase(phase float64) {
	o.phase = phase
	o.updatePhaseOffset()
}

// SetAmp overwrites the current amplitude.
func (o *Oscillator) SetAmp(amp float64) {
	o.amp = amp
}

func (o *Oscillator) updatePhaseOffset() {
	switch o.shape {
	case ShapeSine, ShapeSquare:
		o.p = o.phase / 360 * 2.0 * math.Pi
	case ShapeSawtooth, ShapeTriangle:
		// a quarter period ahead so that phase 0 starts mid-ramp
		o.p = (o.phase + 90) / 360 * o.period
	}
}

// Next ...
func (o *Oscillator) Next() Sample {
	value := 0.0
	switch o.shape {
	case ShapeSine:
		value = math.Sin(o.i + o.p)
		o.i += o.step
		value = o.squish(value)
	case ShapeSquare:
		if math.Sin(o.i+o.p) >= o.threshold {
			value = o.max
		} else {
			value = o.min
		}
		o.i += o.step
	case ShapeSawtooth:
		value = o.saw()
		o.i++
		value = o.squish(value)
	case ShapeTriangle:
		value = (math.Abs(o.saw()) - 0.5) * 2
		o.i++
		value = o.squish(value)
	}
	return Mono(value * o.amp)
}

func (o *Oscillator) saw() float64 {
	div := (o.i + o.p) / o.period
	return 2 * (div - math.Floor(0.5+div))
}

// squish maps [-1, 1] onto [min, max].
func (o *Oscillator) squish(v float64) float64 {
	if o.min == -1 && o.max == 1 {
		return v
	}
	return (v+1)/2*(o.max-o.min) + o.min
}
