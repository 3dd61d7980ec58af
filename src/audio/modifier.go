package audio

import "fmt"

// ----- Volume ----- //

// Volume scales every channel by amp.
type Volume struct {
	amp float64
}

// NewVolume ...
func NewVolume(amp float64) *Volume {
	return &Volume{amp: amp}
}

// Amp ...
func (v *Volume) Amp() float64 {
	return v.amp
}

// Apply ...
func (v *Volume) Apply(in Sample) Sample {
	in.L *= v.amp
	in.R *= v.amp
	return in
}

// ModulatedVolume takes its amp from a modulator, one sample per Step.
type ModulatedVolume struct {
	Volume
	modulator Generator
	releaser  Releaser
}

// NewModulatedVolume ...
func NewModulatedVolume(modulator Generator) (*ModulatedVolume, error) {
	if modulator == nil {
		return nil, fmt.Errorf("%w: nil modulator", ErrInvalidParams)
	}
	v := &ModulatedVolume{modulator: modulator}
	if r, ok := AsReleaser(modulator); ok {
		v.releaser = r
	}
	return v, nil
}

// Step ...
func (v *ModulatedVolume) Step() {
	v.amp = v.modulator.Next().Value()
}

// Releasable ...
func (v *ModulatedVolume) Releasable() bool {
	return v.releaser != nil
}

// TriggerRelease ...
func (v *ModulatedVolume) TriggerRelease() {
	if v.releaser != nil {
		v.releaser.TriggerRelease()
	}
}

// Ended ...
func (v *ModulatedVolume) Ended() bool {
	return v.releaser != nil && v.releaser.Ended()
}

// ----- Panner ----- //

// Panner turns its input into a stereo pair. r is 0 for hard left, 1 for
// hard right and 0.5 for center.
type Panner struct {
	r float64
}

// NewPanner ...
func NewPanner(r float64) (*Panner, error) {
	if r < 0 || r > 1 {
		return nil, fmt.Errorf("%w: pan must be in [0, 1], got %v", ErrInvalidParams, r)
	}
	return &Panner{r: r}, nil
}

// Pan ...
func (p *Panner) Pan() float64 {
	return p.r
}

// Apply ...
func (p *Panner) Apply(in Sample) Sample {
	r := p.r * 2
	l := 2 - r
	if in.Stereo {
		return Stereo(l*in.L, r*in.R)
	}
	return Stereo(l*in.L, r*in.L)
}

// ModulatedPanner takes its pan from a modulator in [-1, 1].
type ModulatedPanner struct {
	Panner
	modulator Generator
}

// NewModulatedPanner ...
func NewModulatedPanner(modulator Generator) (*ModulatedPanner, error) {
	if modulator == nil {
		return nil, fmt.Errorf("%w: nil modulator", ErrInvalidParams)
	}
	return &ModulatedPanner{modulator: modulator}, nil
}

// Step ...
func (p *ModulatedPanner) Step() {
	p.r = (p.modulator.Next().Value() + 1) / 2
}

// ----- Clipper ----- //

// Clipper clamps every channel to [min, max]. Stereo channels are halved
// before clamping and doubled after.
type Clipper struct {
	min float64
	max float64
}

// NewClipper ...
func NewClipper(min, max float64) (*Clipper, error) {
	if min >= max {
		return nil, fmt.Errorf("%w: empty clip range [%v, %v]", ErrInvalidParams, min, max)
	}
	return &Clipper{min: min, max: max}, nil
}

// Apply ...
func (c *Clipper) Apply(in Sample) Sample {
	if in.Stereo {
		return Stereo(clamp(in.L/2, c.min, c.max)*2, clamp(in.R/2, c.min, c.max)*2)
	}
	return Mono(clamp(in.L, c.min, c.max))
}
