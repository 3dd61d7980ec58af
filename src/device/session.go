package device

import (
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/jinjor/polysynth/src/audio"
)

// Output backends.
const (
	Oto       = "oto"
	PortAudio = "portaudio"
)

// SessionOptions ...
type SessionOptions struct {
	Output       string
	SampleRate   int
	BufferFrames int
	MidiPort     int // negative means the first input
}

// Session holds the devices the render loop talks to.
type Session struct {
	Sink   io.Writer
	Source audio.Source

	closers []io.Closer
	once    sync.Once
}

// close releases everything in reverse order of opening. It is safe to call
// more than once.
func (s *Session) close() {
	s.once.Do(func() {
		log.Println("closing devices...")
		for i := len(s.closers) - 1; i >= 0; i-- {
			if err := s.closers[i].Close(); err != nil {
				log.Printf("error while closing device: %v", err)
			}
		}
	})
}

// WithSession opens the MIDI input and then the output sink, runs f, and
// releases both on every exit path. Nothing is opened if the MIDI input is
// missing.
func WithSession(opts SessionOptions, channels int, f func(*Session) error) error {
	s := &Session{}
	defer s.close()

	source, err := OpenMidiIn(opts.MidiPort)
	if err != nil {
		return err
	}
	s.Source = source
	s.closers = append(s.closers, source)

	sink, err := openSink(opts, channels)
	if err != nil {
		return err
	}
	s.Sink = sink
	s.closers = append(s.closers, sink)
	return f(s)
}

func openSink(opts SessionOptions, channels int) (io.WriteCloser, error) {
	switch opts.Output {
	case "", Oto:
		return OpenOto(opts.SampleRate, channels, opts.BufferFrames)
	case PortAudio:
		return OpenPortAudio(opts.SampleRate, channels, opts.BufferFrames)
	}
	return nil, fmt.Errorf("%w: unknown output %q", audio.ErrInvalidParams, opts.Output)
}
