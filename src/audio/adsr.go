package audio

import (
	"fmt"
	"math"
)

// ----- ADSR Stage ----- //

// Stage of an ADSR envelope.
type Stage int

const (
	StageAttack Stage = iota
	StageDecay
	StageSustain
	StageRelease
	StageEnded
)

var stageNames = [...]string{"attack", "decay", "sustain", "release", "ended"}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return fmt.Sprintf("Stage(%d)", int(s))
	}
	return stageNames[s]
}

// ramps within this distance of their target count as arrived
const rampEpsilon = 1e-9

// ----- ADSR Params ----- //

// ADSRParams configures an envelope. Durations are in seconds.
type ADSRParams struct {
	Attack     float64
	Decay      float64
	Sustain    float64 // 0-1
	Release    float64
	SampleRate float64
}

// ----- ADSR ----- //

/*
  1 +     x
    |    / \
    |   /   \
  s +  /     x------x
    | /              \
    |/                \
  0 +-----+---+------+---
    |a    |d  |      |r |
*/
type ADSR struct {
	attackStep  float64
	decayStep   float64
	sustain     float64
	releaseLen  float64 // samples
	stage       Stage
	pos         int
	value       float64
	releaseFrom float64
	releaseStep float64
	ended       bool
}

// NewADSR ...
func NewADSR(p ADSRParams) (*ADSR, error) {
	if p.SampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate must be positive, got %v", ErrInvalidParams, p.SampleRate)
	}
	if p.Attack < 0 || p.Decay < 0 || p.Release < 0 {
		return nil, fmt.Errorf("%w: negative envelope duration", ErrInvalidParams)
	}
	if p.Sustain < 0 || p.Sustain > 1 {
		return nil, fmt.Errorf("%w: sustain level must be in [0, 1], got %v", ErrInvalidParams, p.Sustain)
	}
	a := &ADSR{
		sustain:    p.Sustain,
		releaseLen: p.Release * p.SampleRate,
	}
	if p.Attack > 0 {
		a.attackStep = 1 / (p.Attack * p.SampleRate)
	}
	if p.Decay > 0 {
		a.decayStep = (1 - p.Sustain) / (p.Decay * p.SampleRate)
	}
	switch {
	case a.attackStep > 0:
		a.stage = StageAttack
	case a.decayStep > 0:
		a.stage = StageDecay
	default:
		a.stage = StageSustain
	}
	return a, nil
}

// Stage ...
func (a *ADSR) Stage() Stage {
	return a.stage
}

// Value returns the last produced value.
func (a *ADSR) Value() float64 {
	return a.value
}

// Ended ...
func (a *ADSR) Ended() bool {
	return a.ended
}

// TriggerRelease starts a linear ramp from the current value to zero.
// Calling it again restarts the ramp from the value at that moment.
func (a *ADSR) TriggerRelease() {
	a.stage = StageRelease
	a.pos = 0
	a.releaseFrom = a.value
	if a.releaseLen <= 0 {
		a.end()
		return
	}
	a.releaseStep = a.value / a.releaseLen
}

func (a *ADSR) end() {
	a.stage = StageEnded
	a.value = 0
	a.ended = true
}

// Next ...
func (a *ADSR) Next() Sample {
	switch a.stage {
	case StageAttack:
		a.value = float64(a.pos) * a.attackStep
		a.pos++
		if a.value >= 1-rampEpsilon {
			a.value = 1
			if a.decayStep > 0 {
				// the peak is the first decay sample
				a.stage = StageDecay
				a.pos = 1
			} else {
				a.stage = StageSustain
				a.pos = 0
			}
		}
	case StageDecay:
		a.value = 1 - float64(a.pos)*a.decayStep
		a.pos++
		if a.value <= a.sustain+rampEpsilon {
			a.value = a.sustain
			a.stage = StageSustain
			a.pos = 0
		}
	case StageSustain:
		a.value = a.sustain
	case StageRelease:
		a.pos++
		a.value = a.releaseFrom - float64(a.pos)*a.releaseStep
		if a.value <= rampEpsilon {
			a.end()
		}
	case StageEnded:
		a.value = 0
	}
	return Mono(math.Max(a.value, 0))
}
