package audio

import "fmt"

// ----- Modulation ----- //

// ModFunc computes a new parameter value from the unmodulated value and one
// modulator sample.
type ModFunc func(initial, mod float64) float64

// Modulation selects which oscillator parameters are modulated.
type Modulation struct {
	Amp   ModFunc
	Freq  ModFunc
	Phase ModFunc
}

// ----- Modulated OSC ----- //

// ModulatedOscillator drives the parameters of one Oscillator from 1 to 3
// modulators.
type ModulatedOscillator struct {
	osc        *Oscillator
	modulators []Generator
	mod        Modulation
	ampIndex   int
	freqIndex  int
	phaseIndex int
	modVals    []float64
	releasers  []Releaser
}

// NewModulatedOscillator ...
//
// With one modulator every function reads it. With two, Amp reads the first
// and Freq and Phase read the second. With three, each reads its own.
func NewModulatedOscillator(osc *Oscillator, mod Modulation, modulators ...Generator) (*ModulatedOscillator, error) {
	if osc == nil {
		return nil, fmt.Errorf("%w: nil oscillator", ErrInvalidParams)
	}
	if len(modulators) < 1 || len(modulators) > 3 {
		return nil, fmt.Errorf("%w: expected 1 to 3 modulators, got %d", ErrInvalidParams, len(modulators))
	}
	m := &ModulatedOscillator{
		osc:        osc,
		modulators: modulators,
		mod:        mod,
		modVals:    make([]float64, len(modulators)),
	}
	switch len(modulators) {
	case 2:
		m.freqIndex, m.phaseIndex = 1, 1
	case 3:
		m.freqIndex, m.phaseIndex = 1, 2
	}
	xs := make([]interface{}, 0, len(modulators)+1)
	for _, g := range modulators {
		xs = append(xs, g)
	}
	xs = append(xs, osc)
	m.releasers = collectReleasers(xs...)
	return m, nil
}

// Oscillator returns the wrapped oscillator.
func (m *ModulatedOscillator) Oscillator() *Oscillator {
	return m.osc
}

// Next ...
func (m *ModulatedOscillator) Next() Sample {
	for i, g := range m.modulators {
		m.modVals[i] = g.Next().Value()
	}
	if m.mod.Amp != nil {
		m.osc.SetAmp(m.mod.Amp(m.osc.InitAmp(), m.modVals[m.ampIndex]))
	}
	if m.mod.Freq != nil {
		m.osc.SetFreq(m.mod.Freq(m.osc.InitFreq(), m.modVals[m.freqIndex]))
	}
	if m.mod.Phase != nil {
		m.osc.SetPhase(m.mod.Phase(m.osc.InitPhase(), m.modVals[m.phaseIndex]))
	}
	return m.osc.Next()
}

// Releasable ...
func (m *ModulatedOscillator) Releasable() bool {
	return len(m.releasers) > 0
}

// TriggerRelease ...
func (m *ModulatedOscillator) TriggerRelease() {
	for _, r := range m.releasers {
		r.TriggerRelease()
	}
}

// Ended ...
func (m *ModulatedOscillator) Ended() bool {
	return allEnded(m.releasers)
}
