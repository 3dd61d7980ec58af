package audio

import "fmt"

// ----- Chain ----- //

// Chain pipes one generator through an ordered list of modifiers.
type Chain struct {
	generator Generator
	modifiers []Modifier
	steppers  []Stepper
	releasers []Releaser // generator first, then modifiers in order
}

// NewChain ...
func NewChain(generator Generator, modifiers ...Modifier) (*Chain, error) {
	if generator == nil {
		return nil, fmt.Errorf("%w: nil generator", ErrInvalidParams)
	}
	c := &Chain{
		generator: generator,
		modifiers: modifiers,
	}
	xs := []interface{}{generator}
	for _, m := range modifiers {
		if m == nil {
			return nil, fmt.Errorf("%w: nil modifier", ErrInvalidParams)
		}
		if s, ok := m.(Stepper); ok {
			c.steppers = append(c.steppers, s)
		}
		xs = append(xs, m)
	}
	c.releasers = collectReleasers(xs...)
	return c, nil
}

// Generator ...
func (c *Chain) Generator() Generator {
	return c.generator
}

// Modifiers ...
func (c *Chain) Modifiers() []Modifier {
	return c.modifiers
}

// Next ...
func (c *Chain) Next() Sample {
	s := c.generator.Next()
	for _, st := range c.steppers {
		st.Step()
	}
	for _, m := range c.modifiers {
		s = m.Apply(s)
	}
	return s
}

// Releasable ...
func (c *Chain) Releasable() bool {
	return len(c.releasers) > 0
}

// TriggerRelease ...
func (c *Chain) TriggerRelease() {
	for _, r := range c.releasers {
		r.TriggerRelease()
	}
}

// Ended ...
func (c *Chain) Ended() bool {
	return allEnded(c.releasers)
}

// ----- Wave Adder ----- //

// WaveAdder mixes several generators by taking their mean.
type WaveAdder struct {
	generators []Generator
	stereo     bool
	releasers  []Releaser
}

// NewWaveAdder ...
func NewWaveAdder(stereo bool, generators ...Generator) (*WaveAdder, error) {
	if len(generators) == 0 {
		return nil, fmt.Errorf("%w: no generators", ErrInvalidParams)
	}
	xs := make([]interface{}, len(generators))
	for i, g := range generators {
		if g == nil {
			return nil, fmt.Errorf("%w: nil generator", ErrInvalidParams)
		}
		xs[i] = g
	}
	return &WaveAdder{
		generators: generators,
		stereo:     stereo,
		releasers:  collectReleasers(xs...),
	}, nil
}

// Next ...
func (w *WaveAdder) Next() Sample {
	l, r := 0.0, 0.0
	for _, g := range w.generators {
		s := g.Next().adapt(w.stereo)
		l += s.L
		r += s.R
	}
	n := float64(len(w.generators))
	if w.stereo {
		return Stereo(l/n, r/n)
	}
	return Mono(l / n)
}

// Releasable ...
func (w *WaveAdder) Releasable() bool {
	return len(w.releasers) > 0
}

// TriggerRelease ...
func (w *WaveAdder) TriggerRelease() {
	for _, r := range w.releasers {
		r.TriggerRelease()
	}
}

// Ended ...
func (w *WaveAdder) Ended() bool {
	return allEnded(w.releasers)
}
