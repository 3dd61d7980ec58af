package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"

	"github.com/jinjor/polysynth/src/audio"
	"github.com/jinjor/polysynth/src/config"
	"github.com/jinjor/polysynth/src/offline"
	"golang.org/x/sync/errgroup"
)

const fftSize = 4096

// seconds rendered after the last note-off
const tailSeconds = 1.0

func main() {
	configFile := flag.String("config", "", "Path to config. Defaults are used if empty.")
	patches := flag.String("patches", strings.Join(audio.PatchNames(), ","), "Comma separated patches to render.")
	notes := flag.String("notes", "69:0:1", "Comma separated note:start:duration[:velocity], times in seconds.")
	flag.Parse()
	dir := flag.Arg(0)
	if dir == "" {
		panic("dir is not passed")
	}
	log.SetFlags(log.Lshortfile)

	c := config.Default()
	if *configFile != "" {
		var err error
		c, err = config.ReadConfig(*configFile)
		if err != nil {
			log.Fatalf("can't read config: %v because: %v", *configFile, err)
		}
	}
	engineConfig, err := c.Engine()
	if err != nil {
		log.Fatalf("error: %v\n", err)
	}
	score, err := offline.ParseNotes(*notes)
	if err != nil {
		log.Fatalf("error: %v\n", err)
	}

	ctx := context.Background()
	g, ctx := errgroup.WithContext(ctx)
	for _, name := range strings.Split(*patches, ",") {
		name := strings.TrimSpace(name)
		if name == "" {
			continue
		}
		g.Go(func() error {
			return render(ctx, engineConfig, c.Player(), name, score, filepath.Join(dir, name+".wav"))
		})
	}
	err = g.Wait()
	if err != nil {
		log.Fatalf("error: %v\n", err)
	}
	log.Println("Successfully rendered patches.")
}

func render(ctx context.Context, cfg audio.EngineConfig, opts audio.PlayerOptions, name string, notes []offline.Note, path string) error {
	patch, err := audio.LookupPatch(name)
	if err != nil {
		return err
	}
	engine, err := audio.NewEngine(cfg, patch)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	score := offline.NewScore(notes, cfg.SampleRate, cfg.BufferSize)
	sink, err := offline.CreateWav(path, cfg.SampleRate, engine.Channels())
	if err != nil {
		return err
	}
	tap := audio.NewSpectrumTap(engine.Channels(), fftSize)

	opts.MaxTicks = score.Length() + offline.SecondsToTicks(tailSeconds, cfg.SampleRate, cfg.BufferSize)
	player := audio.NewPlayer(engine, io.MultiWriter(sink, tap), score, opts)
	if err := player.Play(ctx); err != nil {
		sink.Close()
		return fmt.Errorf("%s: %w", name, err)
	}
	if err := sink.Close(); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	log.Printf("rendered %s: %d frames to %s\n", name, sink.Frames(), path)

	if tap.Full() {
		fft, err := audio.NewFFT(fftSize)
		if err != nil {
			return err
		}
		log.Printf("%s: peak at %.1f Hz\n", name, fft.PeakFrequency(tap.Samples(), float64(cfg.SampleRate)))
	}
	return nil
}
