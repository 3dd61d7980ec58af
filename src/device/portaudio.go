package device

import (
	"encoding/binary"
	"fmt"
	"log"

	"github.com/gordonklaus/portaudio"
)

// PortAudioSink writes to the default output device through a blocking
// PortAudio stream.
type PortAudioSink struct {
	stream *portaudio.Stream
	buf    []int16 // one buffer, interleaved
}

// OpenPortAudio ...
func OpenPortAudio(sampleRate, channels, bufferFrames int) (*PortAudioSink, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("can't init portaudio: %w", err)
	}
	s := &PortAudioSink{buf: make([]int16, bufferFrames*channels)}
	stream, err := portaudio.OpenDefaultStream(0, channels, float64(sampleRate), bufferFrames, &s.buf)
	if err != nil {
		// ignore Terminate error
		portaudio.Terminate()
		return nil, fmt.Errorf("can't open default stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return nil, fmt.Errorf("can't start stream: %w", err)
	}
	s.stream = stream
	log.Printf("opened portaudio: %d Hz, %d channel(s), %d frames per buffer\n", sampleRate, channels, bufferFrames)
	return s, nil
}

// Write accepts whole buffers of 16-bit little-endian samples.
func (s *PortAudioSink) Write(p []byte) (int, error) {
	size := len(s.buf) * bitDepthInBytes
	if len(p)%size != 0 {
		return 0, fmt.Errorf("write of %d bytes is not a multiple of the %d byte buffer", len(p), size)
	}
	for off := 0; off < len(p); off += size {
		for i := range s.buf {
			s.buf[i] = int16(binary.LittleEndian.Uint16(p[off+bitDepthInBytes*i:]))
		}
		// an underflow only means the loop was late; the buffer still plays
		if err := s.stream.Write(); err != nil && err != portaudio.OutputUnderflowed {
			return off, err
		}
	}
	return len(p), nil
}

// Close stops the stream and terminates PortAudio.
func (s *PortAudioSink) Close() error {
	err := s.stream.Stop()
	if cerr := s.stream.Close(); err == nil {
		err = cerr
	}
	if terr := portaudio.Terminate(); err == nil {
		err = terr
	}
	return err
}
