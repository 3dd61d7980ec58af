package audio

import (
	"math"
	"testing"
)

func TestSineFollowsFormula(t *testing.T) {
	freq, amp, phase, sr := 440.0, 0.8, 30.0, 44100.0
	osc, err := NewSine(freq, phase, amp, sr)
	expectNoError(t, err)
	p := phase / 360 * 2 * math.Pi
	for n, v := range pull(osc, 2000) {
		expected := amp * math.Sin(2*math.Pi*freq*float64(n)/sr+p)
		if math.Abs(v-expected) > 1e-9 {
			t.Fatalf("sample %d: expected %v, but got: %v", n, expected, v)
		}
	}
}

func TestSquareHasTwoLevels(t *testing.T) {
	amp := 0.5
	osc, err := NewSquare(1000, 0, amp, 44100)
	expectNoError(t, err)
	highs, lows := 0, 0
	for n, v := range pull(osc, 4410) {
		switch v {
		case amp:
			highs++
		case -amp:
			lows++
		default:
			t.Fatalf("sample %d: unexpected level %v", n, v)
		}
	}
	if highs == 0 || lows == 0 {
		t.Errorf("expected both levels, got %d highs and %d lows", highs, lows)
	}
}

func TestSquareRangeAndThreshold(t *testing.T) {
	osc, err := NewOscillator(OscParams{Shape: ShapeSquare, Freq: 100, Amp: 1, SampleRate: 1000, Min: 0, Max: 1, Threshold: 0.5})
	expectNoError(t, err)
	values := pull(osc, 10)
	// sin(2*pi*n/10) >= 0.5 only for n = 1..4
	expected := []float64{0, 1, 1, 1, 1, 0, 0, 0, 0, 0}
	for i := range expected {
		expectEqual(t, values[i], expected[i])
	}
}

func TestSawtooth(t *testing.T) {
	// period of 4 samples, a quarter period ahead
	osc, err := NewSawtooth(250, 0, 1, 1000)
	expectNoError(t, err)
	expected := []float64{0.5, -1, -0.5, 0, 0.5, -1}
	for i, v := range pull(osc, len(expected)) {
		expectNearlyEqual(t, v, expected[i])
	}
}

func TestTriangle(t *testing.T) {
	osc, err := NewTriangle(250, 0, 1, 1000)
	expectNoError(t, err)
	expected := []float64{0, 1, 0, -1, 0, 1}
	for i, v := range pull(osc, len(expected)) {
		expectNearlyEqual(t, v, expected[i])
	}
}

func TestSquishRange(t *testing.T) {
	osc, err := NewOscillator(OscParams{Shape: ShapeSine, Freq: 250, Phase: 90, Amp: 2, SampleRate: 1000, Min: 0, Max: 1})
	expectNoError(t, err)
	// cos over a 4 sample period mapped onto [0, 1] then doubled
	expected := []float64{2, 1, 0, 1}
	for i, v := range pull(osc, len(expected)) {
		expectNearlyEqual(t, v, expected[i])
	}
}

func TestModulationKeepsInitialValues(t *testing.T) {
	osc, err := NewSine(440, 10, 0.5, 44100)
	expectNoError(t, err)
	osc.SetFreq(880)
	osc.SetAmp(0.1)
	osc.SetPhase(20)
	expectEqual(t, osc.Freq(), 880.0)
	expectEqual(t, osc.InitFreq(), 440.0)
	expectEqual(t, osc.InitAmp(), 0.5)
	expectEqual(t, osc.InitPhase(), 10.0)
}

func TestOscillatorRejectsInvalidParams(t *testing.T) {
	_, err := NewSine(0, 0, 1, 44100)
	expectError(t, err, ErrInvalidParams)
	_, err = NewSine(-1, 0, 1, 44100)
	expectError(t, err, ErrInvalidParams)
	_, err = NewSine(440, 0, 1, 0)
	expectError(t, err, ErrInvalidParams)
	_, err = NewOscillator(OscParams{Shape: ShapeSine, Freq: 1, SampleRate: 1, Min: 1, Max: -1})
	expectError(t, err, ErrInvalidParams)
	_, err = NewOscillator(OscParams{Shape: Shape(42), Freq: 1, SampleRate: 1})
	expectError(t, err, ErrInvalidParams)
}
