package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/pkg/profile"
	"github.com/urfave/cli/v2"

	"github.com/tholden/goboy/internal/cart"
	"github.com/tholden/goboy/internal/emulator"
	"github.com/tholden/goboy/internal/frontend/terminal"
	"github.com/tholden/goboy/internal/frontend/window"
)

func main() {
	app := &cli.App{
		Name:  "goboy",
		Usage: "a DMG Game Boy emulator core",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "rom", Aliases: []string{"r"}, Usage: "path to a cartridge ROM image", Required: true},
			&cli.StringFlag{Name: "bootrom", Usage: "optional 256-byte DMG boot ROM image"},
			&cli.IntFlag{Name: "scale", Value: 4, Usage: "window scale factor (ebiten frontend only)"},
			&cli.StringFlag{Name: "title", Value: "goboy", Usage: "window title (ebiten frontend only)"},
			&cli.BoolFlag{Name: "terminal", Usage: "run the tcell terminal frontend instead of the ebiten window"},
			&cli.BoolFlag{Name: "cpuprofile", Usage: "write a CPU profile to ./profiles for the duration of the run"},
			&cli.BoolFlag{Name: "memprofile", Usage: "write a memory profile to ./profiles on exit"},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("goboy exited with an error", "error", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	if c.Bool("cpuprofile") {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("./profiles")).Stop()
	} else if c.Bool("memprofile") {
		defer profile.Start(profile.MemProfile, profile.ProfilePath("./profiles")).Stop()
	}

	rom, err := os.ReadFile(c.String("rom"))
	if err != nil {
		return fmt.Errorf("read rom: %w", err)
	}

	var boot []byte
	if path := c.String("bootrom"); path != "" {
		boot, err = os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read boot rom: %w", err)
		}
	}

	if h, err := cart.ParseHeader(rom); err == nil {
		slog.Info("rom header", "title", h.Title, "type", h.CartTypeStr, "rom_banks", h.ROMBanks, "ram_bytes", h.RAMSizeBytes)
	} else {
		slog.Warn("could not parse rom header", "error", err)
	}

	emu, err := emulator.New(rom, boot, false)
	if err != nil {
		return fmt.Errorf("initialize emulator: %w", err)
	}

	if c.Bool("terminal") {
		return terminal.New(emu).Run()
	}

	app := window.New(emu, c.String("title"), c.Int("scale"))
	return app.Run()
}
