package audio

import (
	"context"
	"fmt"
	"io"
	"log"
)

// Source is a control-event source. Poll must not block.
type Source interface {
	Poll() bool
	Read(max int) ([]RawEvent, error)
}

// Player runs the render loop of an Engine.
type Player struct {
	engine        *Engine
	sink          io.Writer
	source        Source
	decoder       Decoder
	eventsPerPoll int
	maxTicks      int
	updates       chan func(*Engine)
	buf           []byte
	ticks         int
}

// PlayerOptions ...
type PlayerOptions struct {
	Decoder       Decoder
	EventsPerPoll int // 0 means DefaultEventsPerPoll
	MaxTicks      int // 0 means unbounded
}

// NewPlayer ...
func NewPlayer(engine *Engine, sink io.Writer, source Source, opts PlayerOptions) *Player {
	if opts.EventsPerPoll <= 0 {
		opts.EventsPerPoll = DefaultEventsPerPoll
	}
	return &Player{
		engine:        engine,
		sink:          sink,
		source:        source,
		decoder:       opts.Decoder,
		eventsPerPoll: opts.EventsPerPoll,
		maxTicks:      opts.MaxTicks,
		updates:       make(chan func(*Engine), 16),
		buf:           make([]byte, engine.cfg.BufferSize*engine.channels*bitDepthInBytes),
	}
}

// Ticks returns the number of buffers written so far.
func (p *Player) Ticks() int {
	return p.ticks
}

// Enqueue schedules f to run on the render loop between two ticks.
// It is safe to call from other goroutines.
func (p *Player) Enqueue(ctx context.Context, f func(*Engine)) error {
	select {
	case p.updates <- f:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Play blocks until ctx is cancelled, MaxTicks is reached or a tick fails.
func (p *Player) Play(ctx context.Context) error {
	log.Println("start playing...")
	defer log.Println("Play() ended.")
	for p.maxTicks <= 0 || p.ticks < p.maxTicks {
		select {
		case <-ctx.Done():
			log.Println("Play() interrupted.")
			return nil
		default:
		}
		if err := p.tick(); err != nil {
			return err
		}
	}
	return nil
}

func (p *Player) tick() error {
	out, err := p.engine.Render()
	if err != nil {
		return err
	}
	writeBuffer(out, p.buf)
	if _, err := p.sink.Write(p.buf); err != nil {
		return fmt.Errorf("writing buffer: %w", err)
	}
	p.ticks++
	if p.source != nil && p.source.Poll() {
		events, err := p.source.Read(p.eventsPerPoll)
		if err != nil {
			return fmt.Errorf("reading events: %w", err)
		}
		for _, raw := range events {
			ev, ok := p.decoder.Decode(raw)
			if !ok {
				continue
			}
			if err := p.engine.Apply(ev); err != nil {
				// the note never enters the table; keep playing the others
				log.Printf("failed to apply %v: %v\n", ev.Kind, err)
			}
		}
	}
	p.engine.Sweep()
	for {
		select {
		case f := <-p.updates:
			f(p.engine)
		default:
			return nil
		}
	}
}

// writeBuffer encodes interleaved samples as 16-bit little endian.
func writeBuffer(out []int16, buf []byte) {
	for i, b := range out {
		buf[bitDepthInBytes*i] = byte(b)
		buf[bitDepthInBytes*i+1] = byte(b >> 8)
	}
}
