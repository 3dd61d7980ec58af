package device

import (
	"fmt"
	"log"

	"github.com/hajimehoshi/oto"
)

const bitDepthInBytes = 2

// oto needs some headroom to avoid underruns on small buffers
const minOtoBufferSizeInBytes = 4096

// OtoSink writes 16-bit interleaved samples to the default output device.
// Write blocks until the device has room, which paces the render loop.
type OtoSink struct {
	context *oto.Context
	player  *oto.Player
}

// OpenOto ...
func OpenOto(sampleRate, channels, bufferFrames int) (*OtoSink, error) {
	bufferSizeInBytes := bufferFrames * channels * bitDepthInBytes
	if bufferSizeInBytes < minOtoBufferSizeInBytes {
		bufferSizeInBytes = minOtoBufferSizeInBytes
	}
	c, err := oto.NewContext(sampleRate, channels, bitDepthInBytes, bufferSizeInBytes)
	if err != nil {
		return nil, fmt.Errorf("can't open oto context: %w", err)
	}
	log.Printf("opened oto: %d Hz, %d channel(s), %d bytes buffer\n", sampleRate, channels, bufferSizeInBytes)
	return &OtoSink{
		context: c,
		player:  c.NewPlayer(),
	}, nil
}

// Write ...
func (s *OtoSink) Write(p []byte) (int, error) {
	return s.player.Write(p)
}

// Close ...
func (s *OtoSink) Close() error {
	err := s.player.Close()
	if cerr := s.context.Close(); err == nil {
		err = cerr
	}
	return err
}
