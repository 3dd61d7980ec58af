package audio

import (
	"errors"
	"math"
)

const (
	DefaultSampleRate    = 44100
	DefaultBufferSize    = 64
	DefaultGain          = 0.3
	DefaultMaxAmplitude  = 0.8
	DefaultEventsPerPoll = 16
	DefaultBaseFreq      = 440.0
	DefaultEDO           = 12.0
)
const bitDepthInBytes = 2

// maxPoly is the number of distinct notes, one voice each.
const maxPoly = 128

var (
	// ErrInvalidParams is returned when a component is constructed with
	// parameters it cannot work with.
	ErrInvalidParams = errors.New("invalid params")
	// ErrRenderFault is returned when a voice produces a non-finite sample.
	ErrRenderFault = errors.New("render fault")
)

// ----- Sample ----- //

// Sample is one produced value, either mono or a stereo pair.
type Sample struct {
	L, R   float64
	Stereo bool
}

// Mono ...
func Mono(v float64) Sample {
	return Sample{L: v, R: v}
}

// Stereo ...
func Stereo(l, r float64) Sample {
	return Sample{L: l, R: r, Stereo: true}
}

// Channels ...
func (s Sample) Channels() int {
	if s.Stereo {
		return 2
	}
	return 1
}

// Value returns the mono value, or the mean of both channels.
func (s Sample) Value() float64 {
	if s.Stereo {
		return (s.L + s.R) / 2
	}
	return s.L
}

// adapt converts s to the requested channel layout.
func (s Sample) adapt(stereo bool) Sample {
	if stereo && !s.Stereo {
		return Stereo(s.L, s.L)
	}
	if !stereo && s.Stereo {
		return Mono(s.Value())
	}
	return s
}

func (s Sample) isFinite() bool {
	return !math.IsNaN(s.L) && !math.IsNaN(s.R) && !math.IsInf(s.L, 0) && !math.IsInf(s.R, 0)
}

// ----- Interfaces ----- //

// Generator produces one sample per call and advances its state.
type Generator interface {
	Next() Sample
}

// Modifier transforms one sample.
type Modifier interface {
	Apply(in Sample) Sample
}

// Stepper is implemented by modifiers driven by their own modulator.
// Step advances the modulator by one sample.
type Stepper interface {
	Step()
}

// Releaser is implemented by anything that can be told to start its release
// and later reports that it has finished.
type Releaser interface {
	TriggerRelease()
	Ended() bool
}

// releasable is implemented by composites whose release capability depends
// on their members.
type releasable interface {
	Releasable() bool
}

// AsReleaser returns x as a Releaser if it is release-capable.
func AsReleaser(x interface{}) (Releaser, bool) {
	r, ok := x.(Releaser)
	if !ok {
		return nil, false
	}
	if c, ok := x.(releasable); ok && !c.Releasable() {
		return nil, false
	}
	return r, true
}

func collectReleasers(xs ...interface{}) []Releaser {
	var rs []Releaser
	for _, x := range xs {
		if r, ok := AsReleaser(x); ok {
			rs = append(rs, r)
		}
	}
	return rs
}

func allEnded(rs []Releaser) bool {
	for _, r := range rs {
		if !r.Ended() {
			return false
		}
	}
	return true
}

// ----- Utility ----- //

// Tuning maps note numbers to frequencies.
type Tuning struct {
	BaseFreq float64 // frequency of note 69
	EDO      float64 // equal divisions of the octave
}

// DefaultTuning ...
var DefaultTuning = Tuning{BaseFreq: DefaultBaseFreq, EDO: DefaultEDO}

// NoteToFreq rounds to 0.1 Hz.
func (t Tuning) NoteToFreq(note int) float64 {
	freq := t.BaseFreq * math.Pow(2, float64(note-69)/t.EDO)
	return math.Round(freq*10) / 10
}

func clamp(v, min, max float64) float64 {
	return math.Max(min, math.Min(max, v))
}
