package audio

import (
	"bytes"
	"context"
	"errors"
	"math"
	"testing"
)

// queueSource hands out one batch of events per poll.
type queueSource struct {
	batches [][]RawEvent
	polls   int
}

func (q *queueSource) Poll() bool {
	q.polls++
	return len(q.batches) > 0
}

func (q *queueSource) Read(max int) ([]RawEvent, error) {
	batch := q.batches[0]
	if len(batch) > max {
		q.batches[0] = batch[max:]
		return batch[:max], nil
	}
	q.batches = q.batches[1:]
	return batch, nil
}

// chunkRecorder keeps every write separately.
type chunkRecorder struct {
	chunks [][]byte
}

func (c *chunkRecorder) Write(p []byte) (int, error) {
	c.chunks = append(c.chunks, append([]byte(nil), p...))
	return len(p), nil
}

type failingWriter struct{}

var errSinkClosed = errors.New("sink closed")

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errSinkClosed
}

func silent(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}

func newTestEngine(t *testing.T, name string) *Engine {
	t.Helper()
	patch, err := LookupPatch(name)
	expectNoError(t, err)
	e, err := NewEngine(testEngineConfig(), patch)
	expectNoError(t, err)
	return e
}

func TestPlayWritesOneBufferPerTick(t *testing.T) {
	for _, name := range []string{"sine", "organ"} {
		t.Run(name, func(t *testing.T) {
			e := newTestEngine(t, name)
			var sink bytes.Buffer
			p := NewPlayer(e, &sink, nil, PlayerOptions{MaxTicks: 5})
			expectNoError(t, p.Play(context.Background()))
			expectEqual(t, p.Ticks(), 5)
			expectEqual(t, sink.Len(), 5*256*e.Channels()*2)
			// silence is written while no voice sounds
			expectEqual(t, silent(sink.Bytes()), true)
		})
	}
}

func TestPlayAppliesEventsAfterWriting(t *testing.T) {
	e := newTestEngine(t, "sine")
	src := &queueSource{batches: [][]RawEvent{
		{{Status: 0x90, Note: 69, Velocity: 127}},
		{},
		{{Status: 0x80, Note: 69}},
	}}
	sink := &chunkRecorder{}
	p := NewPlayer(e, sink, src, PlayerOptions{MaxTicks: 4})
	expectNoError(t, p.Play(context.Background()))
	expectEqual(t, len(sink.chunks), 4)
	expectEqual(t, silent(sink.chunks[0]), true)
	expectEqual(t, silent(sink.chunks[1]), false)
	expectEqual(t, silent(sink.chunks[2]), false)
	expectEqual(t, silent(sink.chunks[3]), true)
	expectEqual(t, src.polls, 4)
	expectEqual(t, e.Len(), 0)
}

func TestPlayReadsAtMostEventsPerPoll(t *testing.T) {
	e := newTestEngine(t, "sine")
	src := &queueSource{batches: [][]RawEvent{{
		{Status: 0x90, Note: 60, Velocity: 100},
		{Status: 0x90, Note: 62, Velocity: 100},
		{Status: 0x90, Note: 64, Velocity: 100},
	}}}
	p := NewPlayer(e, &bytes.Buffer{}, src, PlayerOptions{EventsPerPoll: 2, MaxTicks: 1})
	expectNoError(t, p.Play(context.Background()))
	expectEqual(t, e.Len(), 2)
	p = NewPlayer(e, &bytes.Buffer{}, src, PlayerOptions{EventsPerPoll: 2, MaxTicks: 1})
	expectNoError(t, p.Play(context.Background()))
	expectEqual(t, e.Len(), 3)
}

func TestPlayQuantizesLittleEndian(t *testing.T) {
	cfg := testEngineConfig()
	cfg.Gain = 1
	cfg.MaxAmplitude = 1
	e, err := NewEngine(cfg, func(freq, amp, sampleRate float64) (Generator, error) {
		return &constant{s: Mono(-amp)}, nil
	})
	expectNoError(t, err)
	expectNoError(t, e.NoteOn(60, 1))
	sink := &chunkRecorder{}
	p := NewPlayer(e, sink, nil, PlayerOptions{MaxTicks: 1})
	expectNoError(t, p.Play(context.Background()))
	b := sink.chunks[0]
	expectEqual(t, int16(uint16(b[0])|uint16(b[1])<<8), int16(-math.MaxInt16))
}

func TestPlayStopsOnCancel(t *testing.T) {
	e := newTestEngine(t, "sine")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := NewPlayer(e, &bytes.Buffer{}, nil, PlayerOptions{})
	expectNoError(t, p.Play(ctx))
	expectEqual(t, p.Ticks(), 0)
}

func TestPlayReturnsSinkError(t *testing.T) {
	e := newTestEngine(t, "sine")
	p := NewPlayer(e, failingWriter{}, nil, PlayerOptions{})
	err := p.Play(context.Background())
	expectError(t, err, errSinkClosed)
	expectEqual(t, p.Ticks(), 0)
}

func TestPlayReturnsRenderFault(t *testing.T) {
	cfg := testEngineConfig()
	e, err := NewEngine(cfg, func(freq, amp, sampleRate float64) (Generator, error) {
		if freq > 1 {
			return &constant{s: Mono(math.Inf(1))}, nil
		}
		return &constant{}, nil
	})
	expectNoError(t, err)
	src := &queueSource{batches: [][]RawEvent{{{Status: 0x90, Note: 60, Velocity: 127}}}}
	p := NewPlayer(e, &bytes.Buffer{}, src, PlayerOptions{})
	err = p.Play(context.Background())
	expectError(t, err, ErrRenderFault)
	expectEqual(t, p.Ticks(), 1)
}

func TestPlayKeepsGoingAfterFailedNoteOn(t *testing.T) {
	e, err := NewEngine(testEngineConfig(), func(freq, amp, sampleRate float64) (Generator, error) {
		if freq > 1000 {
			return nil, ErrInvalidParams
		}
		return NewSine(freq, 0, amp, sampleRate)
	})
	expectNoError(t, err)
	src := &queueSource{batches: [][]RawEvent{{
		{Status: 0x90, Note: 120, Velocity: 127},
		{Status: 0x90, Note: 60, Velocity: 127},
	}}}
	p := NewPlayer(e, &bytes.Buffer{}, src, PlayerOptions{MaxTicks: 2})
	expectNoError(t, p.Play(context.Background()))
	expectEqual(t, e.Len(), 1)
	_, ok := e.Voice(60)
	expectEqual(t, ok, true)
}

func TestEnqueueRunsBetweenTicks(t *testing.T) {
	e := newTestEngine(t, "sine")
	p := NewPlayer(e, &bytes.Buffer{}, nil, PlayerOptions{MaxTicks: 1})
	ticksSeen := -1
	expectNoError(t, p.Enqueue(context.Background(), func(e *Engine) {
		ticksSeen = p.Ticks()
		e.SetPolicy(Ignore)
	}))
	expectNoError(t, p.Play(context.Background()))
	expectEqual(t, ticksSeen, 1)
	expectEqual(t, e.Config().Policy, Ignore)

	for i := 0; i < cap(p.updates); i++ {
		expectNoError(t, p.Enqueue(context.Background(), func(*Engine) {}))
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	expectError(t, p.Enqueue(ctx, func(*Engine) {}), context.Canceled)
}
