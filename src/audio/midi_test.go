package audio

import (
	"testing"
)

func TestDecode(t *testing.T) {
	cases := []struct {
		name string
		omni bool
		raw  RawEvent
		ok   bool
		ev   Event
	}{
		{"note on", false, RawEvent{Status: 0x90, Note: 69, Velocity: 127}, true, Event{Kind: NoteOn, Note: 69, Velocity: 1}},
		{"note off", false, RawEvent{Status: 0x80, Note: 60, Velocity: 64}, true, Event{Kind: NoteOff, Note: 60}},
		{"zero velocity", false, RawEvent{Status: 0x90, Note: 60}, true, Event{Kind: NoteOff, Note: 60}},
		{"control change", false, RawEvent{Status: 0xB0, Note: 7, Velocity: 100}, false, Event{}},
		{"other channel", false, RawEvent{Status: 0x93, Note: 60, Velocity: 127}, false, Event{}},
		{"omni note on", true, RawEvent{Status: 0x93, Note: 60, Velocity: 127}, true, Event{Kind: NoteOn, Note: 60, Velocity: 1}},
		{"omni note off", true, RawEvent{Status: 0x8F, Note: 61}, true, Event{Kind: NoteOff, Note: 61}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			ev, ok := Decoder{Omni: c.omni}.Decode(c.raw)
			expectEqual(t, ok, c.ok)
			expectEqual(t, ev, c.ev)
		})
	}
	ev, _ := Decoder{}.Decode(RawEvent{Status: 0x90, Note: 1, Velocity: 64})
	expectNearlyEqual(t, ev.Velocity, 64.0/127)
}
