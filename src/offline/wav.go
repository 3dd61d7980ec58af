package offline

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	bitDepth        = 16
	bitDepthInBytes = 2
	wavFormatPCM    = 1
)

// WavSink encodes the 16-bit little-endian interleaved stream of a player
// into a WAV file.
type WavSink struct {
	file     io.Closer // nil when the caller owns the writer
	enc      *wav.Encoder
	buf      *goaudio.IntBuffer
	channels int
	frames   int
}

// CreateWav creates the file at path and returns a sink writing to it.
func CreateWav(path string, sampleRate, channels int) (*WavSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("can't create %s: %w", path, err)
	}
	s := NewWavSink(f, sampleRate, channels)
	s.file = f
	return s, nil
}

// NewWavSink ...
func NewWavSink(ws io.WriteSeeker, sampleRate, channels int) *WavSink {
	return &WavSink{
		enc: wav.NewEncoder(ws, sampleRate, bitDepth, channels, wavFormatPCM),
		buf: &goaudio.IntBuffer{
			Format:         &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
			SourceBitDepth: bitDepth,
		},
		channels: channels,
	}
}

// Write accepts whole frames.
func (s *WavSink) Write(p []byte) (int, error) {
	frame := s.channels * bitDepthInBytes
	if len(p)%frame != 0 {
		return 0, fmt.Errorf("write of %d bytes is not a multiple of the %d byte frame", len(p), frame)
	}
	n := len(p) / bitDepthInBytes
	if cap(s.buf.Data) < n {
		s.buf.Data = make([]int, n)
	}
	s.buf.Data = s.buf.Data[:n]
	for i := range s.buf.Data {
		s.buf.Data[i] = int(int16(binary.LittleEndian.Uint16(p[bitDepthInBytes*i:])))
	}
	if err := s.enc.Write(s.buf); err != nil {
		return 0, fmt.Errorf("encoding wav: %w", err)
	}
	s.frames += len(p) / frame
	return len(p), nil
}

// Frames returns the number of frames written so far.
func (s *WavSink) Frames() int {
	return s.frames
}

// Close finishes the WAV header and closes the file if the sink created it.
func (s *WavSink) Close() error {
	err := s.enc.Close()
	if s.file != nil {
		if cerr := s.file.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
