package audio

import (
	"fmt"
	"math"
)

// ----- Delay ----- //

type delay struct {
	cursor int
	past   []float64
	peak   float64 // largest |value| written in the current lap
	last   float64 // same for the previous lap
}

func newDelay(length int) *delay {
	return &delay{past: make([]float64, length)}
}

func (d *delay) step(in float64) {
	d.past[d.cursor] = in
	if a := math.Abs(in); a > d.peak {
		d.peak = a
	}
	d.cursor++
	if d.cursor >= len(d.past) {
		d.cursor = 0
		d.last = d.peak
		d.peak = 0
	}
}

func (d *delay) delayed() float64 {
	return d.past[d.cursor]
}

// level bounds every value currently held in the line.
func (d *delay) level() float64 {
	return math.Max(d.peak, d.last)
}

// ----- Echo ----- //

// EchoParams ...
type EchoParams struct {
	Delay      float64 // seconds
	Feedback   float64 // [0,1)
	Mix        float64 // [0,1]
	SampleRate float64
}

// echoSilence is the line level below which a released echo counts as ended.
// It is under one LSB of 16 bit output.
const echoSilence = 1.0 / 65536

// Echo is a feedback delay modifier. Each channel has its own line.
// Once released, it ends when both lines have decayed below echoSilence.
// Whatever feeds it must fall silent too, otherwise it never ends.
type Echo struct {
	lines    [2]*delay
	feedback float64
	mix      float64
	released bool
}

// NewEcho ...
func NewEcho(p EchoParams) (*Echo, error) {
	if p.SampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate must be positive, got %v", ErrInvalidParams, p.SampleRate)
	}
	length := int(p.Delay * p.SampleRate)
	if length < 1 {
		return nil, fmt.Errorf("%w: delay must be at least one sample, got %vs", ErrInvalidParams, p.Delay)
	}
	if p.Feedback < 0 || p.Feedback >= 1 {
		return nil, fmt.Errorf("%w: feedback must be in [0, 1), got %v", ErrInvalidParams, p.Feedback)
	}
	if p.Mix < 0 || p.Mix > 1 {
		return nil, fmt.Errorf("%w: mix must be in [0, 1], got %v", ErrInvalidParams, p.Mix)
	}
	return &Echo{
		lines:    [2]*delay{newDelay(length), newDelay(length)},
		feedback: p.Feedback,
		mix:      p.Mix,
	}, nil
}

// Apply ...
func (e *Echo) Apply(in Sample) Sample {
	in.L = e.step(in.L, e.lines[0])
	if in.Stereo {
		in.R = e.step(in.R, e.lines[1])
	} else {
		in.R = in.L
	}
	return in
}

func (e *Echo) step(in float64, d *delay) float64 {
	delayed := d.delayed()
	d.step(in + delayed*e.feedback)
	return in + delayed*e.mix
}

// TriggerRelease ...
func (e *Echo) TriggerRelease() {
	e.released = true
}

// Ended ...
func (e *Echo) Ended() bool {
	return e.released && e.lines[0].level() < echoSilence && e.lines[1].level() < echoSilence
}
