package device

import (
	"errors"
	"fmt"
	"log"
	"sync/atomic"

	"github.com/jinjor/polysynth/src/audio"
	"gitlab.com/gomidi/midi"
	"gitlab.com/gomidi/rtmididrv"
)

// ErrNoDevice is returned when no MIDI input is available.
var ErrNoDevice = errors.New("no MIDI input device")

const midiQueueSize = 1024

// MidiSource is an audio.Source fed by a MIDI input port. The driver calls
// the listener on its own thread; events reach the render loop through a
// buffered channel.
type MidiSource struct {
	dropped int64 // first for 64-bit alignment
	drv     *rtmididrv.Driver
	in      midi.In
	ch      chan audio.RawEvent
}

// ListMidiIns returns the names of the available MIDI inputs.
func ListMidiIns() ([]string, error) {
	drv, err := rtmididrv.New()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize MIDI driver: %w", err)
	}
	defer drv.Close()
	ins, err := drv.Ins()
	if err != nil {
		return nil, fmt.Errorf("failed to get MIDI IN: %w", err)
	}
	names := make([]string, len(ins))
	for i, in := range ins {
		names[i] = in.String()
	}
	return names, nil
}

// OpenMidiIn opens the input with the given number, or the first one if
// port is negative.
func OpenMidiIn(port int) (*MidiSource, error) {
	drv, err := rtmididrv.New()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize MIDI driver: %w", err)
	}
	in, err := selectIn(drv, port)
	if err != nil {
		drv.Close()
		return nil, err
	}
	if err := in.Open(); err != nil {
		drv.Close()
		return nil, fmt.Errorf("failed to open MIDI IN: %w", err)
	}
	log.Println("opened " + in.String())
	s := &MidiSource{
		drv: drv,
		in:  in,
		ch:  make(chan audio.RawEvent, midiQueueSize),
	}
	log.Println("start listening MIDI IN...")
	if err := in.SetListener(s.listen); err != nil {
		in.Close()
		drv.Close()
		return nil, fmt.Errorf("failed to set listener: %w", err)
	}
	return s, nil
}

func selectIn(drv *rtmididrv.Driver, port int) (midi.In, error) {
	ins, err := drv.Ins()
	if err != nil {
		return nil, fmt.Errorf("failed to get MIDI IN: %w", err)
	}
	log.Printf("MIDI IN: %v\n", ins)
	if len(ins) == 0 {
		return nil, ErrNoDevice
	}
	if port < 0 {
		return ins[0], nil
	}
	for _, in := range ins {
		if in.Number() == port {
			return in, nil
		}
	}
	return nil, fmt.Errorf("%w: port %d not found", ErrNoDevice, port)
}

func (s *MidiSource) listen(data []byte, deltaMicroseconds int64) {
	ev, ok := toRawEvent(data)
	if !ok {
		return
	}
	select {
	case s.ch <- ev:
	default:
		atomic.AddInt64(&s.dropped, 1)
	}
}

// toRawEvent keeps channel messages with two data bytes.
func toRawEvent(data []byte) (audio.RawEvent, bool) {
	if len(data) < 3 || data[0] < 0x80 || data[0] >= 0xF0 {
		return audio.RawEvent{}, false
	}
	return audio.RawEvent{Status: data[0], Note: data[1], Velocity: data[2]}, true
}

// Poll ...
func (s *MidiSource) Poll() bool {
	return len(s.ch) > 0
}

// Read returns at most max queued events without blocking.
func (s *MidiSource) Read(max int) ([]audio.RawEvent, error) {
	events := make([]audio.RawEvent, 0, max)
	for len(events) < max {
		select {
		case ev := <-s.ch:
			events = append(events, ev)
		default:
			return events, nil
		}
	}
	return events, nil
}

// Close stops listening and releases the port and the driver.
func (s *MidiSource) Close() error {
	log.Println("stop listening MIDI IN...")
	err := s.in.StopListening()
	if err != nil {
		log.Printf("failed to stop listening: %v\n", err)
	}
	if err := s.in.Close(); err != nil {
		log.Printf("failed to close MIDI IN: %v\n", err)
	}
	if n := atomic.LoadInt64(&s.dropped); n > 0 {
		log.Printf("dropped %d MIDI events\n", n)
	}
	return s.drv.Close()
}
