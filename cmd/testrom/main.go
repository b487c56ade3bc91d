// Command testrom runs a blargg-style test ROM headlessly, watching the
// serial port for a "Passed"/"Failed N tests" banner and exiting 0/1
// accordingly. It is a diagnostic harness, not part of the emulator core.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/tholden/goboy/internal/cpu"
	"github.com/tholden/goboy/internal/peripheral"
	"github.com/tholden/goboy/internal/soc"
)

func main() {
	romPath := flag.String("rom", "", "path to ROM (.gb)")
	bootPath := flag.String("bootrom", "", "optional DMG boot ROM to run from 0x0000 until 0xFF50 disables it")
	maxSteps := flag.Int("steps", 100_000_000, "max SoC steps to run before giving up")
	timeout := flag.Duration("timeout", 60*time.Second, "wall-clock timeout; 0 disables")
	trace := flag.Bool("trace", false, "print PC/cycles for every step")
	flag.Parse()

	if *romPath == "" {
		log.Fatal("-rom is required")
	}
	rom, err := os.ReadFile(*romPath)
	if err != nil {
		log.Fatalf("read rom: %v", err)
	}
	var boot []byte
	if *bootPath != "" {
		boot, err = os.ReadFile(*bootPath)
		if err != nil {
			log.Fatalf("read bootrom: %v", err)
		}
	}

	p := peripheral.New(rom, boot, nil)
	var serialLog bytes.Buffer
	p.SetSerialWriter(&serialLog)

	c := cpu.New()
	if len(boot) == 0 {
		c.ResetNoBoot()
	}
	s := soc.New(c, p)

	start := time.Now()
	var deadline time.Time
	if *timeout > 0 {
		deadline = start.Add(*timeout)
	}

	for i := 0; i < *maxSteps; i++ {
		cycles := s.Run()
		if *trace {
			fmt.Printf("cycles=%d serial=%q\n", cycles, serialLog.String())
		}

		output := serialLog.String()
		lower := strings.ToLower(output)
		if strings.Contains(lower, "passed") {
			fmt.Printf("PASSED after %d steps (%s)\n%s\n", i+1, time.Since(start).Truncate(time.Millisecond), output)
			os.Exit(0)
		}
		if strings.Contains(lower, "failed") {
			fmt.Printf("FAILED after %d steps (%s)\n%s\n", i+1, time.Since(start).Truncate(time.Millisecond), output)
			os.Exit(1)
		}

		if !deadline.IsZero() && time.Now().After(deadline) {
			fmt.Printf("TIMEOUT after %s\n%s\n", time.Since(start).Truncate(time.Millisecond), serialLog.String())
			os.Exit(2)
		}
	}

	fmt.Printf("exhausted %d steps without a verdict\n%s\n", *maxSteps, serialLog.String())
	os.Exit(2)
}
