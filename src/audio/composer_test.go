package audio

import (
	"testing"
)

// negate is a modifier that counts its calls.
type negate struct {
	calls int
}

func (n *negate) Apply(in Sample) Sample {
	n.calls++
	in.L, in.R = -in.L, -in.R
	return in
}

func TestChainAppliesModifiersInOrder(t *testing.T) {
	c, err := NewChain(&constant{s: Mono(0.5)}, NewVolume(2), &negate{}, NewVolume(0.5))
	expectNoError(t, err)
	expectEqual(t, c.Next(), Mono(-0.5))

	pan, err := NewPanner(1)
	expectNoError(t, err)
	clip, err := NewClipper(-0.5, 0.5)
	expectNoError(t, err)
	c, err = NewChain(&constant{s: Mono(0.8)}, pan, clip)
	expectNoError(t, err)
	expectEqual(t, c.Next(), Stereo(0, 1))
	expectEqual(t, len(c.Modifiers()), 2)
}

func TestChainStepsModulatedModifiers(t *testing.T) {
	vol, err := NewModulatedVolume(&sequence{values: []float64{0.1, 0.2, 0.3}})
	expectNoError(t, err)
	c, err := NewChain(&constant{s: Mono(1)}, vol)
	expectNoError(t, err)
	values := pull(c, 3)
	expectNearlyEqual(t, values[0], 0.1)
	expectNearlyEqual(t, values[1], 0.2)
	expectNearlyEqual(t, values[2], 0.3)
}

func TestChainRelease(t *testing.T) {
	gen := &finite{value: 1, left: 1}
	env := &finite{value: 1, left: 2}
	vol, err := NewModulatedVolume(env)
	expectNoError(t, err)
	n := &negate{}
	c, err := NewChain(gen, n, vol)
	expectNoError(t, err)
	expectEqual(t, c.Releasable(), true)
	c.TriggerRelease()
	expectEqual(t, gen.triggered, 1)
	expectEqual(t, env.triggered, 1)
	c.Next()
	expectEqual(t, c.Ended(), false)
	c.Next()
	expectEqual(t, c.Ended(), true)
	expectEqual(t, n.calls, 2)
}

func TestChainRejectsNil(t *testing.T) {
	_, err := NewChain(nil)
	expectError(t, err, ErrInvalidParams)
	_, err = NewChain(&constant{}, nil)
	expectError(t, err, ErrInvalidParams)
}

func TestWaveAdderMono(t *testing.T) {
	a, err := NewSine(440, 0, 1, 44100)
	expectNoError(t, err)
	b, err := NewSquare(220, 0, 0.5, 44100)
	expectNoError(t, err)
	c, err := NewTriangle(110, 0, 0.3, 44100)
	expectNoError(t, err)
	w, err := NewWaveAdder(false, a, b, c)
	expectNoError(t, err)

	a2, _ := NewSine(440, 0, 1, 44100)
	b2, _ := NewSquare(220, 0, 0.5, 44100)
	c2, _ := NewTriangle(110, 0, 0.3, 44100)
	for i := 0; i < 1000; i++ {
		expected := (a2.Next().Value() + b2.Next().Value() + c2.Next().Value()) / 3
		s := w.Next()
		expectEqual(t, s.Stereo, false)
		expectNearlyEqual(t, s.Value(), expected)
	}
}

func TestWaveAdderChannelAdaptation(t *testing.T) {
	mono := &constant{s: Mono(0.4)}
	stereo := &constant{s: Stereo(0.2, 0.6)}
	w, err := NewWaveAdder(true, mono, stereo)
	expectNoError(t, err)
	s := w.Next()
	expectNearlyEqual(t, s.L, 0.3)
	expectNearlyEqual(t, s.R, 0.5)
	expectEqual(t, s.Stereo, true)

	w, err = NewWaveAdder(false, mono, stereo)
	expectNoError(t, err)
	s = w.Next()
	expectNearlyEqual(t, s.Value(), 0.4)
	expectEqual(t, s.Stereo, false)

	_, err = NewWaveAdder(false)
	expectError(t, err, ErrInvalidParams)
}

func TestWaveAdderReleaseIgnoresPlainGenerators(t *testing.T) {
	plain := &constant{s: Mono(1)}
	f := &finite{value: 1, left: 1}
	w, err := NewWaveAdder(false, plain, f)
	expectNoError(t, err)
	expectEqual(t, w.Releasable(), true)
	w.TriggerRelease()
	expectEqual(t, w.Ended(), false)
	w.Next()
	expectEqual(t, w.Ended(), true)

	w, err = NewWaveAdder(false, plain)
	expectNoError(t, err)
	_, ok := AsReleaser(w)
	expectEqual(t, ok, false)
}
