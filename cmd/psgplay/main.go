// Command psgplay plays a PC-6001 PSG bytecode song file, dispatching
// driver ticks at a 2 ms cadence and fanning register writes and note
// events out to a selectable backend/UI pair.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli"

	"github.com/pc6001/psgplayer/backend"
	"github.com/pc6001/psgplayer/channel"
	"github.com/pc6001/psgplayer/disasm"
	"github.com/pc6001/psgplayer/driver"
	"github.com/pc6001/psgplayer/host"
	"github.com/pc6001/psgplayer/loader"
	"github.com/pc6001/psgplayer/ui"
	"github.com/pc6001/psgplayer/ui/terminal"
)

func main() {
	app := cli.NewApp()
	app.Name = "psgplay"
	app.Description = "PC-6001 PSG bytecode song player"
	app.Usage = "psgplay [options] <song file>"
	app.Version = "1.0.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "backend",
			Usage: "PSG backend: synth (audible, default) or headless",
			Value: "synth",
		},
		cli.StringFlag{
			Name:  "ui",
			Usage: "UI sink: terminal (default) or none",
			Value: "terminal",
		},
		cli.IntFlag{
			Name:  "frames",
			Usage: "Number of host ticks to run in headless mode (0 = run the reference host loop instead)",
			Value: 0,
		},
		cli.BoolTFlag{
			Name:  "keep-vibrato-tie",
			Usage: "Keep the vibrato LFO running across tied notes (default true; --keep-vibrato-tie=false restarts it on every tie)",
		},
		cli.BoolFlag{
			Name:  "debug",
			Usage: "Enable debug logging (unknown opcodes, tick traces)",
		},
	}
	app.Action = run
	app.Commands = []cli.Command{
		{
			Name:      "disasm",
			Usage:     "Disassemble a song file's bytecode instead of playing it",
			ArgsUsage: "<song file>",
			Action:    runDisasm,
		},
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("psgplay failed", "error", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	level := slog.LevelInfo
	if c.Bool("debug") {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if c.NArg() < 1 {
		cli.ShowAppHelp(c)
		return errors.New("no song file provided")
	}

	path := c.Args().Get(0)
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading song file: %w", err)
	}

	song, err := loader.Load(raw)
	if err != nil {
		return fmt.Errorf("parsing song file: %w", err)
	}

	be, err := selectBackend(c.String("backend"))
	if err != nil {
		return err
	}
	if err := be.Init(); err != nil {
		return fmt.Errorf("initializing backend: %w", err)
	}
	defer be.Fini()
	if err := be.Enable(); err != nil {
		return fmt.Errorf("enabling backend: %w", err)
	}

	sink, err := selectUI(c.String("ui"))
	if err != nil {
		return err
	}
	defer sink.Close()

	writeReg := func(reg, val uint8) {
		be.WriteReg(reg, val)
		sink.RegisterWrite(reg, val)
	}
	drv := driver.New(writeReg, sink.NoteEvent, driver.Config{
		VibratoTiePolicy: vibratoPolicy(c.Bool("keep-vibrato-tie")),
		Logger:           logger,
	})
	drv.LoadSong(song.A, song.B, song.C)

	frames := c.Int("frames")
	if frames > 0 {
		for i := 0; i < frames && drv.Active(); i++ {
			drv.Tick()
		}
	} else {
		loop := host.NewLoop(drv, logger)
		loop.Run(nil)
	}

	drv.Stop()
	slog.Info("playback finished", "stats", drv.Stats())
	return nil
}

func runDisasm(c *cli.Context) error {
	if c.NArg() < 1 {
		cli.ShowCommandHelp(c, "disasm")
		return errors.New("no song file provided")
	}

	raw, err := os.ReadFile(c.Args().Get(0))
	if err != nil {
		return fmt.Errorf("reading song file: %w", err)
	}
	song, err := loader.Load(raw)
	if err != nil {
		return fmt.Errorf("parsing song file: %w", err)
	}

	for _, ch := range []struct {
		name string
		data []byte
	}{{"A", song.A}, {"B", song.B}, {"C", song.C}} {
		fmt.Printf("; channel %s\n", ch.name)
		for _, line := range disasm.Disassemble(ch.data) {
			fmt.Println(disasm.Format(line))
		}
	}
	return nil
}

func selectBackend(name string) (backend.Backend, error) {
	switch name {
	case "synth":
		return backend.NewSynth(44100), nil
	case "headless":
		return backend.NewHeadless(), nil
	default:
		return nil, fmt.Errorf("unknown backend %q (want synth or headless)", name)
	}
}

func selectUI(name string) (ui.Sink, error) {
	switch name {
	case "terminal":
		return terminal.New()
	case "none":
		return ui.Null{}, nil
	default:
		return nil, fmt.Errorf("unknown ui %q (want terminal or none)", name)
	}
}

func vibratoPolicy(keep bool) channel.VibratoTiePolicy {
	if keep {
		return channel.KeepVibrato
	}
	return channel.RestartVibrato
}
