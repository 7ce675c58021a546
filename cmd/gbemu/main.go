// Command gbemu is the windowed and headless host for the emulator core: it
// loads a ROM, wires battery-backed save RAM, and either opens an ebiten
// window or runs a fixed number of frames and reports a framebuffer
// checksum for CI-style determinism checks.
package main

import (
	"flag"
	"fmt"
	"hash/crc32"
	"image"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gbcore/gbvm/internal/emu"
	"github.com/gbcore/gbvm/internal/ui"
	"github.com/gbcore/gbvm/internal/vm"
)

type cliFlags struct {
	romPath string
	bootROM string
	scale   int
	title   string

	emu.Config

	headless bool
	frames   int
	pngOut   string
	expect   string
}

func parseFlags() cliFlags {
	var f cliFlags
	flag.StringVar(&f.romPath, "rom", "", "path to ROM (.gb/.gbc)")
	flag.StringVar(&f.bootROM, "bootrom", "", "accepted for compatibility; the file is only checked for readability, never executed")
	flag.IntVar(&f.scale, "scale", 3, "window scale")
	flag.StringVar(&f.title, "title", "gbvm", "window title")
	flag.BoolVar(&f.Trace, "trace", false, "CPU trace log")
	flag.BoolVar(&f.SaveBattery, "save", true, "load/persist battery RAM as <title>.gbsave next to the ROM")
	flag.BoolVar(&f.ForceDMG, "force-dmg", false, "run a CGB-aware cartridge in DMG mode")
	flag.BoolVar(&f.FastForward, "fastforward", false, "start already uncapped (windowed mode only; Tab still toggles it)")

	flag.BoolVar(&f.headless, "headless", false, "run without a window")
	flag.IntVar(&f.frames, "frames", 300, "frames to run in headless mode")
	flag.StringVar(&f.pngOut, "outpng", "", "write the last framebuffer to PNG at this path")
	flag.StringVar(&f.expect, "expect", "", "assert the framebuffer CRC32 (hex) and exit nonzero on mismatch")
	flag.Parse()
	return f
}

func runHeadless(m *vm.VM, frames int, pngPath, expectCRC string) error {
	if frames <= 0 {
		frames = 1
	}

	start := time.Now()
	for i := 0; i < frames; i++ {
		m.RunUntilVBlank()
	}
	dur := time.Since(start)

	fb := m.Framebuffer()
	crc := crc32.ChecksumIEEE(fb)
	fps := float64(frames) / dur.Seconds()
	log.Printf("headless: frames=%d elapsed=%s fps=%.2f fb_crc32=%08x", frames, dur.Truncate(time.Millisecond), fps, crc)

	if pngPath != "" {
		if err := saveFramePNG(fb, 160, 144, pngPath); err != nil {
			return fmt.Errorf("write PNG: %w", err)
		}
		log.Printf("wrote %s", pngPath)
	}

	if expectCRC != "" {
		want := strings.TrimPrefix(strings.ToLower(expectCRC), "0x")
		got := fmt.Sprintf("%08x", crc)
		if got != want {
			return fmt.Errorf("checksum mismatch: got %s, want %s", got, want)
		}
	}
	return nil
}

func saveFramePNG(pix []byte, w, h int, path string) error {
	img := &image.RGBA{
		Pix:    append([]byte(nil), pix...),
		Stride: 4 * w,
		Rect:   image.Rect(0, 0, w, h),
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}

func main() {
	f := parseFlags()
	if f.romPath == "" {
		log.Fatal("-rom is required")
	}
	rom, err := os.ReadFile(f.romPath)
	if err != nil {
		log.Fatalf("read rom: %v", err)
	}
	if f.bootROM != "" {
		if _, err := os.ReadFile(f.bootROM); err != nil {
			log.Printf("bootrom %q unreadable (ignored, boot ROM execution is out of scope): %v", f.bootROM, err)
		}
	}

	if f.SaveBattery {
		if abs, err := filepath.Abs(f.romPath); err == nil {
			f.SaveDir = filepath.Dir(abs)
		}
	}
	cfg := f.Config

	m, err := vm.NewWithOptions(rom, vm.Options{SaveDir: cfg.SaveDir, ForceDMG: cfg.ForceDMG})
	if err != nil {
		log.Fatalf("load cart: %v", err)
	}
	m.SetSerialWriter(log.Writer())
	if cfg.Trace {
		m.SetTraceWriter(os.Stdout)
	}

	h := m.Header()
	log.Printf("ROM: %q type=0x%02X banks=%d ram=%dB cgb=%v", h.Title, h.CartType, h.ROMBanks, h.RAMSizeBytes, m.CGB())

	if f.headless {
		err := runHeadless(m, f.frames, f.pngOut, f.expect)
		if cfg.SaveBattery {
			if serr := m.SaveBattery(); serr != nil {
				log.Printf("save battery: %v", serr)
			}
		}
		if err != nil {
			log.Fatal(err)
		}
		return
	}

	app := ui.NewApp(ui.Config{Title: f.title, Scale: f.scale}, m, cfg.FastForward)
	runErr := app.Run()
	if cfg.SaveBattery {
		if err := m.SaveBattery(); err != nil {
			log.Printf("save battery: %v", err)
		}
	}
	if runErr != nil {
		log.Fatal(runErr)
	}
}
