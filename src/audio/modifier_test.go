package audio

import (
	"testing"
)

func TestVolume(t *testing.T) {
	v := NewVolume(0.5)
	expectEqual(t, v.Apply(Mono(0.8)), Mono(0.4))
	expectEqual(t, v.Apply(Stereo(0.8, -0.2)), Stereo(0.4, -0.1))
}

func TestModulatedVolume(t *testing.T) {
	v, err := NewModulatedVolume(&sequence{values: []float64{0.5, 0.25}})
	expectNoError(t, err)
	v.Step()
	expectEqual(t, v.Apply(Mono(1)), Mono(0.5))
	v.Step()
	expectEqual(t, v.Apply(Stereo(1, 2)), Stereo(0.25, 0.5))
	expectEqual(t, v.Releasable(), false)
	expectEqual(t, v.Ended(), false)

	f := &finite{value: 1, left: 1}
	v, err = NewModulatedVolume(f)
	expectNoError(t, err)
	expectEqual(t, v.Releasable(), true)
	v.TriggerRelease()
	v.Step()
	expectEqual(t, v.Ended(), true)
}

func TestPanner(t *testing.T) {
	left, err := NewPanner(0)
	expectNoError(t, err)
	expectEqual(t, left.Apply(Mono(0.3)), Stereo(0.6, 0))
	right, err := NewPanner(1)
	expectNoError(t, err)
	expectEqual(t, right.Apply(Mono(0.3)), Stereo(0, 0.6))
	center, err := NewPanner(0.5)
	expectNoError(t, err)
	expectEqual(t, center.Apply(Mono(0.3)), Stereo(0.3, 0.3))
	expectEqual(t, left.Apply(Stereo(0.1, 0.2)), Stereo(0.2, 0))

	_, err = NewPanner(1.5)
	expectError(t, err, ErrInvalidParams)
	_, err = NewPanner(-0.1)
	expectError(t, err, ErrInvalidParams)
}

func TestModulatedPanner(t *testing.T) {
	p, err := NewModulatedPanner(&sequence{values: []float64{-1, 1, 0}})
	expectNoError(t, err)
	p.Step()
	expectEqual(t, p.Pan(), 0.0)
	expectEqual(t, p.Apply(Mono(1)), Stereo(2, 0))
	p.Step()
	expectEqual(t, p.Pan(), 1.0)
	expectEqual(t, p.Apply(Mono(1)), Stereo(0, 2))
	p.Step()
	expectEqual(t, p.Apply(Mono(1)), Stereo(1, 1))
}

func TestClipper(t *testing.T) {
	c, err := NewClipper(-1, 1)
	expectNoError(t, err)
	for _, v := range []float64{-1, -0.5, 0, 0.25, 1} {
		expectEqual(t, c.Apply(Mono(v)), Mono(v))
		expectEqual(t, c.Apply(Stereo(v, -v)), Stereo(v, -v))
	}
	expectEqual(t, c.Apply(Mono(1.5)), Mono(1))
	expectEqual(t, c.Apply(Mono(-3)), Mono(-1))
	// stereo channels are halved before clamping and doubled after
	expectEqual(t, c.Apply(Stereo(1.5, -1.5)), Stereo(1.5, -1.5))
	expectEqual(t, c.Apply(Stereo(3, -5)), Stereo(2, -2))

	_, err = NewClipper(1, 1)
	expectError(t, err, ErrInvalidParams)
}
