package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/jinjor/polysynth/src/audio"
	"github.com/jinjor/polysynth/src/config"
	"github.com/jinjor/polysynth/src/device"
	"golang.org/x/sync/errgroup"
)

func main() {
	configFile := flag.String("config", "polysynth.json", "Path to config, created with defaults if not found.")
	patchName := flag.String("patch", "", "Patch to play, overrides the config.")
	output := flag.String("output", "", "Output backend (oto or portaudio), overrides the config.")
	listPorts := flag.Bool("list", false, "List MIDI inputs and patches, then exit.")
	flag.Parse()
	log.SetFlags(log.Lshortfile)
	log.Printf("NumCPU: %v\n", runtime.NumCPU())

	if *listPorts {
		if err := list(); err != nil {
			log.Fatalf("error: %v\n", err)
		}
		return
	}

	c, err := config.ReadConfig(*configFile)
	if err != nil {
		log.Fatalf("can't read config: %v because: %v", *configFile, err)
	}
	if *patchName != "" {
		c.Patch = *patchName
	}
	if *output != "" {
		c.Output = *output
	}
	engineConfig, err := c.Engine()
	if err != nil {
		log.Fatalf("error: %v\n", err)
	}
	patch, err := audio.LookupPatch(c.Patch)
	if err != nil {
		log.Fatalf("error: %v\n", err)
	}
	engine, err := audio.NewEngine(engineConfig, patch)
	if err != nil {
		log.Fatalf("error: %v\n", err)
	}
	log.Printf("patch: %s\n", c.Patch)

	ctx := context.Background()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM)
	defer func() {
		signal.Stop(signalCh)
		cancel()
	}()
	go func() {
		select {
		case sig := <-signalCh:
			log.Printf("Caught signal %s: shutting down...\n", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	opts := device.SessionOptions{
		Output:       c.Output,
		SampleRate:   engineConfig.SampleRate,
		BufferFrames: engineConfig.BufferSize,
		MidiPort:     c.MidiPort,
	}
	err = device.WithSession(opts, engine.Channels(), func(s *device.Session) error {
		player := audio.NewPlayer(engine, s.Sink, s.Source, c.Player())
		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			// stop the watcher once playing ends
			defer cancel()
			return player.Play(ctx)
		})
		if c.WatchConfig {
			configs := make(chan *config.Config)
			g.Go(func() error {
				return config.Watch(ctx, *configFile, configs)
			})
			g.Go(func() error {
				return applyConfigs(ctx, player, configs)
			})
		}
		return g.Wait()
	})
	if err != nil {
		log.Fatalf("error: %v\n", err)
	}
	log.Println("main() ended.")
}

// applyConfigs forwards reloaded configs to the render loop.
func applyConfigs(ctx context.Context, player *audio.Player, configs <-chan *config.Config) error {
	for {
		select {
		case <-ctx.Done():
			log.Println("applyConfigs() ended.")
			return nil
		case c := <-configs:
			update, err := c.DynamicConfig.Apply()
			if err != nil {
				log.Printf("ignoring config: %v\n", err)
				continue
			}
			err = player.Enqueue(ctx, func(e *audio.Engine) {
				if err := update(e); err != nil {
					log.Printf("failed to apply config: %v\n", err)
					return
				}
				log.Printf("applied config: patch=%s gain=%v policy=%s\n", c.Patch, c.Gain, e.Config().Policy)
			})
			if err != nil {
				return nil
			}
		}
	}
}

func list() error {
	names, err := device.ListMidiIns()
	if err != nil {
		return err
	}
	fmt.Println("MIDI inputs:")
	for i, name := range names {
		fmt.Printf("  %d: %s\n", i, name)
	}
	fmt.Println("patches:")
	for _, name := range audio.PatchNames() {
		fmt.Printf("  %s\n", name)
	}
	return nil
}
