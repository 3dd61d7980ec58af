package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/ioutil"
	"os"

	"github.com/jinjor/polysynth/src/audio"
)

const defaultConfig = `{
	"sampleRate": 44100,
	"bufferSize": 64,
	"output": "oto",
	"midiPort": -1,
	"omni": false,
	"eventsPerPoll": 16,
	"baseFreq": 440,
	"edo": 12,
	"watchConfig": true,
	"patch": "pluck",
	"gain": 0.3,
	"maxAmplitude": 0.8,
	"duplicatePolicy": "retrigger"
}
`

// Output backends.
const (
	OutputOto       = "oto"
	OutputPortAudio = "portaudio"
)

// StaticConfig is read once at startup.
type StaticConfig struct {
	SampleRate    int     `json:"sampleRate"`
	BufferSize    int     `json:"bufferSize"`
	Output        string  `json:"output"`
	MidiPort      int     `json:"midiPort"` // negative means the first input
	Omni          bool    `json:"omni"`
	EventsPerPoll int     `json:"eventsPerPoll"`
	BaseFreq      float64 `json:"baseFreq"`
	EDO           float64 `json:"edo"`
	WatchConfig   bool    `json:"watchConfig"`
}

// DynamicConfig can be applied to a running engine.
type DynamicConfig struct {
	Patch           string  `json:"patch"`
	Gain            float64 `json:"gain"`
	MaxAmplitude    float64 `json:"maxAmplitude"`
	DuplicatePolicy string  `json:"duplicatePolicy"`
}

// Config ...
type Config struct {
	StaticConfig
	DynamicConfig
}

// Default returns the configuration written on first run.
func Default() *Config {
	c, err := parse([]byte(defaultConfig))
	if err != nil {
		panic(err)
	}
	return c
}

// ReadConfig reads the config at p, writing the default one first if the
// file does not exist.
func ReadConfig(p string) (*Config, error) {
	if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
		err = ioutil.WriteFile(p, []byte(defaultConfig), 0644)
		if err != nil {
			return nil, fmt.Errorf("can't write defaultConfig: %w", err)
		}
	}
	data, err := ioutil.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("can't read config: %w", err)
	}
	return parse(data)
}

func parse(data []byte) (*Config, error) {
	// fields missing from the file keep their defaults
	c := &Config{
		StaticConfig: StaticConfig{
			SampleRate:    audio.DefaultSampleRate,
			BufferSize:    audio.DefaultBufferSize,
			Output:        OutputOto,
			MidiPort:      -1,
			EventsPerPoll: audio.DefaultEventsPerPoll,
			BaseFreq:      audio.DefaultBaseFreq,
			EDO:           audio.DefaultEDO,
		},
		DynamicConfig: DynamicConfig{
			Patch:        "sine",
			Gain:         audio.DefaultGain,
			MaxAmplitude: audio.DefaultMaxAmplitude,
		},
	}
	if err := json.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("unmarshalling: %w", err)
	}
	if c.Output != OutputOto && c.Output != OutputPortAudio {
		return nil, fmt.Errorf("%w: unknown output %q", audio.ErrInvalidParams, c.Output)
	}
	return c, nil
}

// Engine converts the config into engine parameters.
func (c *Config) Engine() (audio.EngineConfig, error) {
	policy, err := audio.ParseDuplicatePolicy(c.DuplicatePolicy)
	if err != nil {
		return audio.EngineConfig{}, err
	}
	return audio.EngineConfig{
		SampleRate:   c.SampleRate,
		BufferSize:   c.BufferSize,
		Gain:         c.Gain,
		MaxAmplitude: c.MaxAmplitude,
		Policy:       policy,
		Tuning:       audio.Tuning{BaseFreq: c.BaseFreq, EDO: c.EDO},
	}, nil
}

// Player ...
func (c *Config) Player() audio.PlayerOptions {
	return audio.PlayerOptions{
		Decoder:       audio.Decoder{Omni: c.Omni},
		EventsPerPoll: c.EventsPerPoll,
	}
}

// Apply returns an update that moves a running engine to the dynamic part of
// c. Unknown patch or policy names are reported here, before any engine sees
// them.
func (c *DynamicConfig) Apply() (func(*audio.Engine) error, error) {
	patch, err := audio.LookupPatch(c.Patch)
	if err != nil {
		return nil, err
	}
	policy, err := audio.ParseDuplicatePolicy(c.DuplicatePolicy)
	if err != nil {
		return nil, err
	}
	gain, maxAmplitude := c.Gain, c.MaxAmplitude
	return func(e *audio.Engine) error {
		if err := e.SetMix(gain, maxAmplitude); err != nil {
			return err
		}
		if err := e.SetPatch(patch); err != nil {
			return err
		}
		e.SetPolicy(policy)
		return nil
	}, nil
}
