package audio

import (
	"fmt"
	"math"
	"sort"
)

// ----- Mod Functions ----- //

// AmpEnvelope scales the amplitude by the modulator.
func AmpEnvelope(initial, mod float64) float64 {
	return initial * mod
}

// Vibrato detunes by up to depth (a ratio of the frequency).
func Vibrato(depth float64) ModFunc {
	return func(initial, mod float64) float64 {
		return initial * (1 + depth*mod)
	}
}

// PhaseShift shifts the phase by up to degrees.
func PhaseShift(degrees float64) ModFunc {
	return func(initial, mod float64) float64 {
		return initial + degrees*mod
	}
}

// ----- Presets ----- //

var presets = map[string]Patch{
	"sine":       plainPatch(ShapeSine),
	"square":     plainPatch(ShapeSquare),
	"saw":        plainPatch(ShapeSawtooth),
	"triangle":   plainPatch(ShapeTriangle),
	"pluck":      pluckPatch,
	"vibrato":    vibratoPatch,
	"fm":         fmPatch,
	"trio":       trioPatch,
	"wobble-pan": wobblePanPatch,
	"organ":      organPatch,
	"bass":       bassPatch,
	"echo-pluck": echoPluckPatch,
}

// LookupPatch ...
func LookupPatch(name string) (Patch, error) {
	p, ok := presets[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown patch %q", ErrInvalidParams, name)
	}
	return p, nil
}

// PatchNames ...
func PatchNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// builder keeps the first construction error so that patches read top-down.
type builder struct {
	sampleRate float64
	err        error
}

func (b *builder) osc(shape Shape, freq, amp float64) *Oscillator {
	if b.err != nil {
		return nil
	}
	o, err := NewOscillator(OscParams{Shape: shape, Freq: freq, Amp: amp, SampleRate: b.sampleRate})
	b.err = err
	return o
}

func (b *builder) adsr(attack, decay, sustain, release float64) *ADSR {
	if b.err != nil {
		return nil
	}
	a, err := NewADSR(ADSRParams{Attack: attack, Decay: decay, Sustain: sustain, Release: release, SampleRate: b.sampleRate})
	b.err = err
	return a
}

func (b *builder) modulated(osc *Oscillator, mod Modulation, modulators ...Generator) *ModulatedOscillator {
	if b.err != nil {
		return nil
	}
	m, err := NewModulatedOscillator(osc, mod, modulators...)
	b.err = err
	return m
}

func (b *builder) envelopeVolume(attack, decay, sustain, release float64) *ModulatedVolume {
	env := b.adsr(attack, decay, sustain, release)
	if b.err != nil {
		return nil
	}
	v, err := NewModulatedVolume(env)
	b.err = err
	return v
}

func (b *builder) panner(r float64) *Panner {
	if b.err != nil {
		return nil
	}
	p, err := NewPanner(r)
	b.err = err
	return p
}

func (b *builder) modulatedPanner(modulator Generator) *ModulatedPanner {
	if b.err != nil {
		return nil
	}
	p, err := NewModulatedPanner(modulator)
	b.err = err
	return p
}

func (b *builder) clipper(min, max float64) *Clipper {
	if b.err != nil {
		return nil
	}
	c, err := NewClipper(min, max)
	b.err = err
	return c
}

func (b *builder) filter(kind FilterKind, freq, q float64) *Filter {
	if b.err != nil {
		return nil
	}
	// keep the cutoff below Nyquist for high notes
	freq = math.Min(freq, b.sampleRate*0.45)
	f, err := NewFilter(FilterParams{Kind: kind, Freq: freq, Q: q, SampleRate: b.sampleRate})
	b.err = err
	return f
}

func (b *builder) echo(delay, feedback, mix float64) *Echo {
	if b.err != nil {
		return nil
	}
	e, err := NewEcho(EchoParams{Delay: delay, Feedback: feedback, Mix: mix, SampleRate: b.sampleRate})
	b.err = err
	return e
}

func (b *builder) chain(g Generator, mods ...Modifier) *Chain {
	if b.err != nil {
		return nil
	}
	c, err := NewChain(g, mods...)
	b.err = err
	return c
}

func (b *builder) adder(stereo bool, gens ...Generator) *WaveAdder {
	if b.err != nil {
		return nil
	}
	w, err := NewWaveAdder(stereo, gens...)
	b.err = err
	return w
}

func (b *builder) result(g Generator) (Generator, error) {
	if b.err != nil {
		return nil, b.err
	}
	return g, nil
}

func plainPatch(shape Shape) Patch {
	return func(freq, amp, sampleRate float64) (Generator, error) {
		b := &builder{sampleRate: sampleRate}
		return b.result(b.osc(shape, freq, amp))
	}
}

func pluckPatch(freq, amp, sampleRate float64) (Generator, error) {
	b := &builder{sampleRate: sampleRate}
	osc := b.osc(ShapeTriangle, freq, amp)
	vol := b.envelopeVolume(0.005, 0.3, 0.2, 0.2)
	return b.result(b.chain(osc, vol))
}

func vibratoPatch(freq, amp, sampleRate float64) (Generator, error) {
	b := &builder{sampleRate: sampleRate}
	lfo := b.osc(ShapeSine, 5, 1)
	m := b.modulated(b.osc(ShapeSine, freq, amp), Modulation{Freq: Vibrato(0.01)}, lfo)
	vol := b.envelopeVolume(0.05, 0.2, 0.7, 0.3)
	return b.result(b.chain(m, vol))
}

// fmPatch: the envelope drives the amplitude and a second sine at twice the
// frequency drives the phase.
func fmPatch(freq, amp, sampleRate float64) (Generator, error) {
	b := &builder{sampleRate: sampleRate}
	env := b.adsr(0.01, 0.4, 0.5, 0.4)
	mod := b.osc(ShapeSine, freq*2, 1)
	return b.result(b.modulated(
		b.osc(ShapeSine, freq, amp),
		Modulation{Amp: AmpEnvelope, Phase: PhaseShift(90)},
		env, mod,
	))
}

func trioPatch(freq, amp, sampleRate float64) (Generator, error) {
	b := &builder{sampleRate: sampleRate}
	env := b.adsr(0.1, 0.3, 0.6, 0.5)
	vib := b.osc(ShapeSine, 6, 1)
	drift := b.osc(ShapeTriangle, 0.25, 1)
	return b.result(b.modulated(
		b.osc(ShapeSawtooth, freq, amp),
		Modulation{Amp: AmpEnvelope, Freq: Vibrato(0.005), Phase: PhaseShift(45)},
		env, vib, drift,
	))
}

func wobblePanPatch(freq, amp, sampleRate float64) (Generator, error) {
	b := &builder{sampleRate: sampleRate}
	mix := b.adder(false, b.osc(ShapeSquare, freq, amp), b.osc(ShapeTriangle, freq, amp))
	pan := b.modulatedPanner(b.osc(ShapeSine, 0.5, 1))
	vol := b.envelopeVolume(0.02, 0.1, 0.8, 0.4)
	return b.result(b.chain(mix, pan, vol, b.clipper(-1, 1)))
}

func organPatch(freq, amp, sampleRate float64) (Generator, error) {
	b := &builder{sampleRate: sampleRate}
	low := b.chain(b.osc(ShapeSine, freq, amp), b.panner(0.3))
	high := b.chain(b.osc(ShapeSine, freq*2, amp), b.panner(0.7))
	fifth := b.osc(ShapeSine, freq*3, amp)
	mix := b.adder(true, low, high, fifth)
	vol := b.envelopeVolume(0.01, 0, 1, 0.1)
	return b.result(b.chain(mix, vol))
}

func bassPatch(freq, amp, sampleRate float64) (Generator, error) {
	b := &builder{sampleRate: sampleRate}
	osc := b.osc(ShapeSawtooth, freq, amp)
	lp := b.filter(Lowpass, freq*4, 2)
	vol := b.envelopeVolume(0.01, 0.2, 0.6, 0.15)
	return b.result(b.chain(osc, lp, vol, b.clipper(-1, 1)))
}

func echoPluckPatch(freq, amp, sampleRate float64) (Generator, error) {
	b := &builder{sampleRate: sampleRate}
	osc := b.osc(ShapeTriangle, freq, amp)
	vol := b.envelopeVolume(0.005, 0.3, 0.2, 0.6)
	return b.result(b.chain(osc, vol, b.echo(0.18, 0.4, 0.5), b.panner(0.4)))
}
