package audio

import "fmt"

const (
	statusNoteOff = 0x80
	statusNoteOn  = 0x90
)

// RawEvent is one message as read from a control source.
type RawEvent struct {
	Status   byte
	Note     byte
	Velocity byte
	Reserved byte
}

// EventKind ...
type EventKind int

const (
	NoteOn EventKind = iota
	NoteOff
)

func (k EventKind) String() string {
	switch k {
	case NoteOn:
		return "note-on"
	case NoteOff:
		return "note-off"
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// Event is a decoded control event. Velocity is in [0, 1].
type Event struct {
	Kind     EventKind
	Note     int
	Velocity float64
}

// Decoder turns raw messages into events.
type Decoder struct {
	// Omni accepts note messages on every channel, not only the first.
	Omni bool
}

// Decode returns false for messages the engine does not handle.
func (d Decoder) Decode(raw RawEvent) (Event, bool) {
	status := raw.Status
	if d.Omni {
		status &= 0xF0
	}
	switch {
	case status == statusNoteOff || status == statusNoteOn && raw.Velocity == 0:
		return Event{Kind: NoteOff, Note: int(raw.Note)}, true
	case status == statusNoteOn:
		return Event{Kind: NoteOn, Note: int(raw.Note), Velocity: float64(raw.Velocity) / 127}, true
	}
	return Event{}, false
}
