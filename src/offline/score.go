package offline

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/jinjor/polysynth/src/audio"
)

const (
	statusNoteOff = 0x80
	statusNoteOn  = 0x90
)

// Note is one note of a score. Times are in seconds.
type Note struct {
	Note     int
	Start    float64
	Duration float64
	Velocity byte
}

// ParseNotes parses a comma separated list of note:start:duration[:velocity],
// e.g. "60:0:1,64:0.5:1:100". Velocity defaults to 127.
func ParseNotes(s string) ([]Note, error) {
	var notes []Note
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		fields := strings.Split(item, ":")
		if len(fields) < 3 || len(fields) > 4 {
			return nil, fmt.Errorf("%w: note %q must be note:start:duration[:velocity]", audio.ErrInvalidParams, item)
		}
		n := Note{Velocity: 127}
		note, err := strconv.Atoi(fields[0])
		if err != nil || note < 0 || note > 127 {
			return nil, fmt.Errorf("%w: invalid note number in %q", audio.ErrInvalidParams, item)
		}
		n.Note = note
		if n.Start, err = strconv.ParseFloat(fields[1], 64); err != nil || n.Start < 0 {
			return nil, fmt.Errorf("%w: invalid start in %q", audio.ErrInvalidParams, item)
		}
		if n.Duration, err = strconv.ParseFloat(fields[2], 64); err != nil || n.Duration < 0 {
			return nil, fmt.Errorf("%w: invalid duration in %q", audio.ErrInvalidParams, item)
		}
		if len(fields) == 4 {
			v, err := strconv.Atoi(fields[3])
			if err != nil || v < 1 || v > 127 {
				return nil, fmt.Errorf("%w: invalid velocity in %q", audio.ErrInvalidParams, item)
			}
			n.Velocity = byte(v)
		}
		notes = append(notes, n)
	}
	return notes, nil
}

type scheduled struct {
	tick int
	raw  audio.RawEvent
}

// Score is an audio.Source that replays notes at buffer granularity. The
// player polls once per written buffer; an event scheduled at tick t is
// delivered by the poll that follows the t-th buffer.
type Score struct {
	events []scheduled
	next   int
	polls  int
}

// NewScore schedules notes for an engine rendering bufferSize frames per tick.
func NewScore(notes []Note, sampleRate, bufferSize int) *Score {
	s := &Score{}
	for _, n := range notes {
		on := SecondsToTicks(n.Start, sampleRate, bufferSize)
		off := SecondsToTicks(n.Start+n.Duration, sampleRate, bufferSize)
		if off <= on {
			off = on + 1
		}
		s.events = append(s.events,
			scheduled{on, audio.RawEvent{Status: statusNoteOn, Note: byte(n.Note), Velocity: n.Velocity}},
			scheduled{off, audio.RawEvent{Status: statusNoteOff, Note: byte(n.Note)}},
		)
	}
	sort.SliceStable(s.events, func(i, j int) bool {
		return s.events[i].tick < s.events[j].tick
	})
	return s
}

// SecondsToTicks rounds a time to the nearest buffer boundary, at least 1.
func SecondsToTicks(sec float64, sampleRate, bufferSize int) int {
	t := int(math.Round(sec * float64(sampleRate) / float64(bufferSize)))
	if t < 1 {
		t = 1
	}
	return t
}

// Length is the tick of the last event.
func (s *Score) Length() int {
	if len(s.events) == 0 {
		return 0
	}
	return s.events[len(s.events)-1].tick
}

// Done reports whether every event has been delivered.
func (s *Score) Done() bool {
	return s.next >= len(s.events)
}

// Poll ...
func (s *Score) Poll() bool {
	s.polls++
	return !s.Done() && s.events[s.next].tick <= s.polls
}

// Read ...
func (s *Score) Read(max int) ([]audio.RawEvent, error) {
	var events []audio.RawEvent
	for len(events) < max && !s.Done() && s.events[s.next].tick <= s.polls {
		events = append(events, s.events[s.next].raw)
		s.next++
	}
	return events, nil
}
