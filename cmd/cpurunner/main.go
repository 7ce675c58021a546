// Command cpurunner is a standalone driver that wires cart+bus+cpu directly,
// without the vm/ui layers, for instruction-level trace debugging against blargg-style
// test ROMs that report pass/fail over the serial port.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/gbcore/gbvm/internal/bus"
	"github.com/gbcore/gbvm/internal/cart"
	"github.com/gbcore/gbvm/internal/cpu"
	"github.com/gbcore/gbvm/internal/ppu"
)

func main() {
	romPath := flag.String("rom", "", "path to ROM (.gb)")
	steps := flag.Int("steps", 5_000_000, "max CPU steps to run")
	startPC := flag.Int("pc", 0x0100, "initial PC value")
	trace := flag.Bool("trace", false, "print PC/opcode/register trace")
	until := flag.String("until", "Passed", "stop when serial output contains this substring (case-insensitive); empty to disable")
	auto := flag.Bool("auto", false, "auto-detect 'Passed' or 'Failed N tests' in serial output and exit with code 0/1")
	timeout := flag.Duration("timeout", 0, "optional wall-clock timeout (e.g. 30s, 2m); 0 disables")
	traceOnFail := flag.Bool("traceOnFail", false, "when -auto detects failure, print a recent trace window")
	traceWindow := flag.Int("traceWindow", 200, "number of recent instructions to retain for traceOnFail")
	flag.Parse()

	if *romPath == "" {
		fmt.Fprintln(os.Stderr, "-rom is required")
		os.Exit(2)
	}
	rom, err := os.ReadFile(*romPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read rom: %v\n", err)
		os.Exit(2)
	}

	c, h, err := cart.New(rom)
	if err != nil {
		fmt.Fprintf(os.Stderr, "parse cart: %v\n", err)
		os.Exit(2)
	}
	b := bus.New(c, h.IsCGB(), ppu.SchemeForTitle(h.Title, h.HeaderChecksum, false))

	var ser bytes.Buffer
	w := io.Writer(os.Stdout)
	if *until != "" || *auto {
		w = io.MultiWriter(os.Stdout, &ser)
	}
	b.SetSerialWriter(w)

	cc := cpu.New(b)
	cc.Reset()
	cc.SetPC(uint16(*startPC))

	start := time.Now()
	var deadline time.Time
	if *timeout > 0 {
		deadline = start.Add(*timeout)
	}
	failRe := regexp.MustCompile(`(?i)failed\s+(\d+)\s+tests?`)

	type traceEntry struct {
		pc                     uint16
		op                     byte
		cyc                    int
		a, f, b, c, d, e, h, l byte
		sp                     uint16
		ime                    bool
	}
	ring := make([]traceEntry, *traceWindow)
	ringIdx, ringFill := 0, 0
	var cycles int

	for i := 0; i < *steps; i++ {
		pc := cc.PC
		var op byte
		if *trace || *traceOnFail {
			op = b.Read(pc)
		}
		cyc := cc.Step()
		b.Tick(cyc)
		cycles += cyc

		if *trace || *traceOnFail {
			te := traceEntry{pc: pc, op: op, cyc: cyc,
				a: cc.A, f: cc.F, b: cc.B, c: cc.C, d: cc.D, e: cc.E, h: cc.H, l: cc.L,
				sp: cc.SP, ime: cc.IME}
			if *trace {
				fmt.Printf("PC=%04X OP=%02X cyc=%d A=%02X F=%02X B=%02X C=%02X D=%02X E=%02X H=%02X L=%02X SP=%04X IME=%t\n",
					te.pc, te.op, te.cyc, te.a, te.f, te.b, te.c, te.d, te.e, te.h, te.l, te.sp, te.ime)
			}
			if *traceOnFail && *traceWindow > 0 {
				ring[ringIdx] = te
				ringIdx = (ringIdx + 1) % *traceWindow
				if ringFill < *traceWindow {
					ringFill++
				}
			}
		}

		if *auto {
			s := ser.String()
			if strings.Contains(strings.ToLower(s), "passed") {
				fmt.Printf("\nDetected PASS in serial output.\nDone: steps=%d cycles~=%d elapsed=%s\n",
					i+1, cycles, time.Since(start).Truncate(time.Millisecond))
				os.Exit(0)
			}
			if m := failRe.FindStringSubmatch(s); m != nil {
				fmt.Printf("\nDetected %s in serial output.\n", m[0])
				if *traceOnFail && ringFill > 0 {
					fmt.Printf("\n--- recent trace (last %d instructions) ---\n", ringFill)
					startIdx := (ringIdx - ringFill + *traceWindow) % *traceWindow
					for j := 0; j < ringFill; j++ {
						te := ring[(startIdx+j)%*traceWindow]
						fmt.Printf("PC=%04X OP=%02X cyc=%d A=%02X F=%02X B=%02X C=%02X D=%02X E=%02X H=%02X L=%02X SP=%04X IME=%t\n",
							te.pc, te.op, te.cyc, te.a, te.f, te.b, te.c, te.d, te.e, te.h, te.l, te.sp, te.ime)
					}
					fmt.Printf("--- end trace ---\n")
				}
				fmt.Printf("\nDone: steps=%d cycles~=%d elapsed=%s\n", i+1, cycles, time.Since(start).Truncate(time.Millisecond))
				os.Exit(1)
			}
		} else if *until != "" {
			if strings.Contains(strings.ToLower(ser.String()), strings.ToLower(*until)) {
				fmt.Printf("\nDetected '%s' in serial output.\nDone: steps=%d cycles~=%d elapsed=%s\n",
					*until, i+1, cycles, time.Since(start).Truncate(time.Millisecond))
				return
			}
		}
		if !deadline.IsZero() && time.Now().After(deadline) {
			fmt.Printf("\nTimeout after %s.\nDone: steps=%d cycles~=%d elapsed=%s\n",
				time.Since(start).Truncate(time.Millisecond), i+1, cycles, time.Since(start).Truncate(time.Millisecond))
			os.Exit(2)
		}
	}
	fmt.Printf("\nDone: steps=%d cycles~=%d elapsed=%s\n", *steps, cycles, time.Since(start).Truncate(time.Millisecond))
}
