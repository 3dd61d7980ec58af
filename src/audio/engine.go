package audio

import (
	"fmt"
	"log"
	"math"
	"strings"
)

// ----- Duplicate Policy ----- //

// DuplicatePolicy decides what a note-on does for a note that is already
// sounding on a release-capable voice.
type DuplicatePolicy int

const (
	// Retrigger discards the sounding voice and starts a new one.
	Retrigger DuplicatePolicy = iota
	// Ignore keeps the sounding voice.
	Ignore
)

func (p DuplicatePolicy) String() string {
	switch p {
	case Retrigger:
		return "retrigger"
	case Ignore:
		return "ignore"
	}
	return fmt.Sprintf("DuplicatePolicy(%d)", int(p))
}

// ParseDuplicatePolicy ...
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch strings.ToLower(s) {
	case "", "retrigger":
		return Retrigger, nil
	case "ignore":
		return Ignore, nil
	}
	return 0, fmt.Errorf("%w: unknown duplicate policy %q", ErrInvalidParams, s)
}

// ----- Engine Config ----- //

// EngineConfig ...
type EngineConfig struct {
	SampleRate   int
	BufferSize   int // frames per tick
	Gain         float64
	MaxAmplitude float64
	Policy       DuplicatePolicy
	Tuning       Tuning
}

// DefaultEngineConfig ...
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		SampleRate:   DefaultSampleRate,
		BufferSize:   DefaultBufferSize,
		Gain:         DefaultGain,
		MaxAmplitude: DefaultMaxAmplitude,
		Policy:       Retrigger,
		Tuning:       DefaultTuning,
	}
}

func (c EngineConfig) validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate must be positive, got %d", ErrInvalidParams, c.SampleRate)
	}
	if c.BufferSize <= 0 {
		return fmt.Errorf("%w: buffer size must be positive, got %d", ErrInvalidParams, c.BufferSize)
	}
	if err := validateMix(c.Gain, c.MaxAmplitude); err != nil {
		return err
	}
	if c.Tuning.BaseFreq <= 0 || c.Tuning.EDO <= 0 {
		return fmt.Errorf("%w: invalid tuning %+v", ErrInvalidParams, c.Tuning)
	}
	return nil
}

func validateMix(gain, maxAmplitude float64) error {
	if gain < 0 {
		return fmt.Errorf("%w: gain must not be negative, got %v", ErrInvalidParams, gain)
	}
	if maxAmplitude <= 0 || maxAmplitude > 1 {
		return fmt.Errorf("%w: max amplitude must be in (0, 1], got %v", ErrInvalidParams, maxAmplitude)
	}
	return nil
}

// ----- Voice ----- //

// Patch builds the generator graph of one note.
type Patch func(freq, amp, sampleRate float64) (Generator, error)

// VoiceState ...
type VoiceState int

const (
	VoiceActive VoiceState = iota
	VoiceReleasing
)

func (s VoiceState) String() string {
	if s == VoiceReleasing {
		return "releasing"
	}
	return "active"
}

// Voice is one sounding note.
type Voice struct {
	note     int
	gen      Generator
	releaser Releaser // nil if the graph cannot be released
	released bool
}

// Note ...
func (v *Voice) Note() int {
	return v.note
}

// State ...
func (v *Voice) State() VoiceState {
	if v.released {
		return VoiceReleasing
	}
	return VoiceActive
}

func (v *Voice) done() bool {
	return v.released && v.releaser != nil && v.releaser.Ended()
}

func (v *Voice) discard() {
	v.gen = nil
	v.releaser = nil
}

// ----- Engine ----- //

// Engine owns the voice table and renders one buffer per tick.
// It is not safe for concurrent use.
type Engine struct {
	cfg      EngineConfig
	patch    Patch
	channels int
	active   []*Voice
	mix      []float64 // BufferSize * channels
	out      []int16   // BufferSize * channels
}

// NewEngine probes the patch once to learn its channel count.
func NewEngine(cfg EngineConfig, patch Patch) (*Engine, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	channels, err := probeChannels(patch, float64(cfg.SampleRate))
	if err != nil {
		return nil, err
	}
	log.Printf("engine: %d Hz, %d frames per buffer, %d channel(s)\n", cfg.SampleRate, cfg.BufferSize, channels)
	return &Engine{
		cfg:      cfg,
		patch:    patch,
		channels: channels,
		active:   make([]*Voice, 0, maxPoly),
		mix:      make([]float64, cfg.BufferSize*channels),
		out:      make([]int16, cfg.BufferSize*channels),
	}, nil
}

func probeChannels(patch Patch, sampleRate float64) (int, error) {
	if patch == nil {
		return 0, fmt.Errorf("%w: nil patch", ErrInvalidParams)
	}
	g, err := patch(1, 1, sampleRate)
	if err != nil {
		return 0, fmt.Errorf("probing patch: %w", err)
	}
	return g.Next().Channels(), nil
}

// Channels ...
func (e *Engine) Channels() int {
	return e.channels
}

// Config ...
func (e *Engine) Config() EngineConfig {
	return e.cfg
}

// SetPatch replaces the patch used for new notes. Sounding voices keep
// their graphs. The channel count of the engine does not change.
func (e *Engine) SetPatch(patch Patch) error {
	if _, err := probeChannels(patch, float64(e.cfg.SampleRate)); err != nil {
		return err
	}
	e.patch = patch
	return nil
}

// SetMix ...
func (e *Engine) SetMix(gain, maxAmplitude float64) error {
	if err := validateMix(gain, maxAmplitude); err != nil {
		return err
	}
	e.cfg.Gain = gain
	e.cfg.MaxAmplitude = maxAmplitude
	return nil
}

// SetPolicy ...
func (e *Engine) SetPolicy(p DuplicatePolicy) {
	e.cfg.Policy = p
}

// Len returns the number of voices in the table.
func (e *Engine) Len() int {
	return len(e.active)
}

// Voice returns the voice of note, if any.
func (e *Engine) Voice(note int) (*Voice, bool) {
	i := e.find(note)
	if i < 0 {
		return nil, false
	}
	return e.active[i], true
}

func (e *Engine) find(note int) int {
	for i, v := range e.active {
		if v.note == note {
			return i
		}
	}
	return -1
}

func (e *Engine) remove(i int) {
	e.active[i].discard()
	e.active = append(e.active[:i], e.active[i+1:]...)
}

// Apply ...
func (e *Engine) Apply(ev Event) error {
	switch ev.Kind {
	case NoteOn:
		return e.NoteOn(ev.Note, ev.Velocity)
	case NoteOff:
		e.NoteOff(ev.Note)
	}
	return nil
}

// NoteOn ...
func (e *Engine) NoteOn(note int, velocity float64) error {
	i := e.find(note)
	if i >= 0 {
		v := e.active[i]
		if v.releaser == nil || e.cfg.Policy == Ignore {
			return nil
		}
	}
	gen, err := e.patch(e.cfg.Tuning.NoteToFreq(note), velocity, float64(e.cfg.SampleRate))
	if err != nil {
		return fmt.Errorf("note %d: %w", note, err)
	}
	v := &Voice{note: note, gen: gen}
	if r, ok := AsReleaser(gen); ok {
		v.releaser = r
	}
	if i >= 0 {
		e.active[i].discard()
		e.active[i] = v
		return nil
	}
	e.active = append(e.active, v)
	return nil
}

// NoteOff ...
func (e *Engine) NoteOff(note int) {
	i := e.find(note)
	if i < 0 {
		return
	}
	v := e.active[i]
	if v.releaser == nil {
		e.remove(i)
		return
	}
	v.released = true
	v.releaser.TriggerRelease()
}

// Sweep removes released voices that have ended and returns how many.
func (e *Engine) Sweep() int {
	removed := 0
	for j := len(e.active) - 1; j >= 0; j-- {
		if e.active[j].done() {
			e.remove(j)
			removed++
		}
	}
	return removed
}

// Render advances every voice by one buffer and returns the quantized,
// interleaved result. The returned slice is reused by the next call.
func (e *Engine) Render() ([]int16, error) {
	for i := range e.mix {
		e.mix[i] = 0
	}
	stereo := e.channels == 2
	for _, v := range e.active {
		for i := 0; i < e.cfg.BufferSize; i++ {
			s := v.gen.Next()
			if !s.isFinite() {
				return nil, fmt.Errorf("%w: note %d produced %v", ErrRenderFault, v.note, s)
			}
			s = s.adapt(stereo)
			if stereo {
				e.mix[2*i] += s.L
				e.mix[2*i+1] += s.R
			} else {
				e.mix[i] += s.L
			}
		}
	}
	for i, value := range e.mix {
		value = clamp(value*e.cfg.Gain, -e.cfg.MaxAmplitude, e.cfg.MaxAmplitude)
		e.out[i] = int16(value * math.MaxInt16)
	}
	return e.out, nil
}
