// Command pcxt88mon is an interactive terminal debugger for the pcxt88 CPU
// core: step/continue/breakpoint/register/memory commands driven straight
// off the core's public Step and breakpoint API.
//
// Grounded on the terminal_host.go (raw-mode stdin via
// golang.org/x/term, CR/DEL translation) for the line-editing front end,
// and debug_cpu_x86.go's trapLoop (a goroutine that free-runs Step until a
// breakpoint or a stop signal) for the continue command.
//
// (c) 2025-2026 PCXT88 Contributors - GPLv3 or later
package main

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/retrocore/pcxt88"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	var loadAt uint32
	var startSeg, startOff uint16
	var cpuType string

	root := &cobra.Command{
		Use:   "pcxt88mon <image>",
		Short: "Interactive step/breakpoint debugger for the pcxt88 CPU core",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}
			bus := newMemBus()
			bus.load(loadAt, data...)

			cfg := cpu.DefaultConfig()
			if cpuType == "8086" {
				cfg.CPUType = cpu.CPU8086
			}
			cfg.ResetVector = cpu.ResetVector{Segment: startSeg, Offset: startOff}
			c := cpu.New(bus, nil, cfg)

			return runMonitor(c, bus)
		},
	}
	root.Flags().Uint32Var(&loadAt, "load-at", 0, "linear address to load the image at")
	root.Flags().Uint16Var(&startSeg, "cs", 0xFFFF, "initial CS")
	root.Flags().Uint16Var(&startOff, "ip", 0x0000, "initial IP")
	root.Flags().StringVar(&cpuType, "cpu", "8088", "CPU type: 8088 or 8086")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// memBus is a flat 1MB address space plus a 64K IO space and the
// per-address breakpoint/return-address flag byte the call-stack shadow
// needs; the monitor has no device models, so reads/writes below just touch
// backing arrays.
type memBus struct {
	mem   [1 << 20]byte
	ports [1 << 16]byte
	flags [1 << 20]byte
}

func newMemBus() *memBus { return &memBus{} }

func (b *memBus) load(at uint32, data ...byte) {
	for i, v := range data {
		b.mem[(at+uint32(i))&0xFFFFF] = v
	}
}

func (b *memBus) ReadByte(linear uint32) (byte, int) { return b.mem[linear&0xFFFFF], 0 }
func (b *memBus) ReadWord(linear uint32) (uint16, int) {
	lo := b.mem[linear&0xFFFFF]
	hi := b.mem[(linear+1)&0xFFFFF]
	return uint16(lo) | uint16(hi)<<8, 0
}
func (b *memBus) WriteByte(linear uint32, v byte) int { b.mem[linear&0xFFFFF] = v; return 0 }
func (b *memBus) WriteWord(linear uint32, v uint16) int {
	b.mem[linear&0xFFFFF] = byte(v)
	b.mem[(linear+1)&0xFFFFF] = byte(v >> 8)
	return 0
}
func (b *memBus) IOReadByte(port uint16) byte         { return b.ports[port] }
func (b *memBus) IOWriteByte(port uint16, v byte)     { b.ports[port] = v }
func (b *memBus) GetFlags(linear uint32) byte         { return b.flags[linear&0xFFFFF] }
func (b *memBus) SetFlags(linear uint32, mask byte)   { b.flags[linear&0xFFFFF] |= mask }
func (b *memBus) ClearFlags(linear uint32, mask byte) { b.flags[linear&0xFFFFF] &^= mask }

// rawLineReader reads one line at a time from a raw-mode terminal, echoing
// input and translating CR to a line terminator and DEL to backspace the
// same way the TerminalHost does for its MMIO device.
type rawLineReader struct {
	fd    int
	state *term.State
	piped *bufio.Scanner
}

func newRawLineReader() (*rawLineReader, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return &rawLineReader{fd: -1, piped: bufio.NewScanner(os.Stdin)}, nil
	}
	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("raw mode: %w", err)
	}
	return &rawLineReader{fd: fd, state: state}, nil
}

func (r *rawLineReader) Close() {
	if r.state != nil {
		_ = term.Restore(r.fd, r.state)
	}
}

func (r *rawLineReader) ReadLine(prompt string) (string, bool) {
	fmt.Print(prompt)
	if r.fd < 0 {
		// Not a terminal (piped input, e.g. under test harnesses): fall
		// back to plain line reads with no echo/editing.
		if !r.piped.Scan() {
			return "", false
		}
		return r.piped.Text(), true
	}
	buf := make([]byte, 1)
	var line []byte
	for {
		n, err := os.Stdin.Read(buf)
		if n == 0 || err != nil {
			return "", false
		}
		b := buf[0]
		if b == '\r' || b == '\n' {
			fmt.Print("\r\n")
			return string(line), true
		}
		if b == 0x7F || b == 0x08 {
			if len(line) > 0 {
				line = line[:len(line)-1]
				fmt.Print("\b \b")
			}
			continue
		}
		if b == 0x03 { // Ctrl-C
			return "", false
		}
		line = append(line, b)
		fmt.Printf("%c", b)
	}
}

func runMonitor(c *cpu.CPU, bus *memBus) error {
	rl, err := newRawLineReader()
	if err != nil {
		return err
	}
	defer rl.Close()

	fmt.Println("pcxt88mon - type 'help' for commands")
	for {
		line, ok := rl.ReadLine("(pcxt88mon) ")
		if !ok {
			return nil
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "help":
			printHelp()
		case "regs", "r":
			printRegs(c)
		case "step", "s":
			n := 1
			if len(fields) > 1 {
				if v, err := strconv.Atoi(fields[1]); err == nil {
					n = v
				}
			}
			doStep(c, n)
		case "continue", "c":
			doContinue(c)
		case "break", "b":
			if len(fields) < 2 {
				fmt.Println("usage: break <seg:off> [if <lua-expr>]")
				continue
			}
			seg, off, err := parseSegOff(fields[1])
			if err != nil {
				fmt.Println(err)
				continue
			}
			lin := cpu.LinearAddress(seg, off)
			if len(fields) >= 4 && fields[2] == "if" {
				expr := strings.Join(fields[3:], " ")
				c.SetConditionalBreakpoint(lin, expr)
			} else {
				c.SetBreakpoint(lin)
			}
			fmt.Printf("breakpoint set at %05X\n", lin)
		case "clear":
			if len(fields) < 2 {
				fmt.Println("usage: clear <seg:off>")
				continue
			}
			seg, off, err := parseSegOff(fields[1])
			if err != nil {
				fmt.Println(err)
				continue
			}
			c.ClearBreakpoint(cpu.LinearAddress(seg, off))
		case "watch":
			if len(fields) < 2 {
				fmt.Println("usage: watch <seg:off>")
				continue
			}
			seg, off, err := parseSegOff(fields[1])
			if err != nil {
				fmt.Println(err)
				continue
			}
			lin := cpu.LinearAddress(seg, off)
			c.SetWatchpoint(lin)
			fmt.Printf("watchpoint set at %05X\n", lin)
		case "dump", "d":
			if len(fields) < 3 {
				fmt.Println("usage: dump <seg:off> <len>")
				continue
			}
			seg, off, err := parseSegOff(fields[1])
			if err != nil {
				fmt.Println(err)
				continue
			}
			n, err := strconv.Atoi(fields[2])
			if err != nil {
				fmt.Println(err)
				continue
			}
			dumpMemory(bus, cpu.LinearAddress(seg, off), n)
		case "calldepth":
			fmt.Println(c.CallDepth())
		case "quit", "q", "exit":
			return nil
		default:
			fmt.Printf("unknown command %q (try 'help')\n", fields[0])
		}
	}
}

func printHelp() {
	fmt.Println(`commands:
  step [n]                 execute n instructions (default 1)
  continue                 run until breakpoint, halt, or error (SIGINT stops)
  break <seg:off> [if E]   set an (optionally conditional) execute breakpoint
  clear <seg:off>          remove a breakpoint
  watch <seg:off>          set a memory-access watchpoint
  dump <seg:off> <len>     hex-dump memory
  regs                     print the register file
  calldepth                print the call-stack shadow depth
  quit                     exit`)
}

func parseSegOff(s string) (seg, off uint16, err error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("expected seg:off, got %q", s)
	}
	segV, err := strconv.ParseUint(parts[0], 16, 16)
	if err != nil {
		return 0, 0, fmt.Errorf("bad segment %q: %w", parts[0], err)
	}
	offV, err := strconv.ParseUint(parts[1], 16, 16)
	if err != nil {
		return 0, 0, fmt.Errorf("bad offset %q: %w", parts[1], err)
	}
	return uint16(segV), uint16(offV), nil
}

func printRegs(c *cpu.CPU) {
	r := c.Registers()
	fmt.Printf("AX=%04X BX=%04X CX=%04X DX=%04X SP=%04X BP=%04X SI=%04X DI=%04X\n",
		r.AX, r.BX, r.CX, r.DX, r.SP, r.BP, r.SI, r.DI)
	fmt.Printf("CS=%04X DS=%04X ES=%04X SS=%04X IP=%04X FLAGS=%04X\n",
		r.Seg[cpu.SegCS], r.Seg[cpu.SegDS], r.Seg[cpu.SegES], r.Seg[cpu.SegSS], r.IP, r.Flags)
}

func dumpMemory(bus *memBus, linear uint32, n int) {
	for i := 0; i < n; i += 16 {
		fmt.Printf("%05X: ", (linear+uint32(i))&0xFFFFF)
		for j := 0; j < 16 && i+j < n; j++ {
			fmt.Printf("%02X ", bus.mem[(linear+uint32(i+j))&0xFFFFF])
		}
		fmt.Println()
	}
}

func doStep(c *cpu.CPU, n int) {
	for i := 0; i < n; i++ {
		res, err := c.Step()
		if err != nil {
			fmt.Println("error:", err)
			return
		}
		if res.Status == cpu.StatusBreakpointHit {
			fmt.Println("breakpoint hit")
			return
		}
		if res.Status == cpu.StatusWatchpointHit {
			fmt.Printf("watchpoint hit at %05X\n", res.WatchLinear)
			return
		}
		if res.Status == cpu.StatusHalted {
			fmt.Println("halted")
			return
		}
	}
	printRegs(c)
}

// doContinue free-runs Step in a background goroutine until a breakpoint,
// halt, or error, the way the trapLoop does, so that a SIGINT can interrupt
// a runaway program. While stdin is a terminal it is in raw mode, which does
// not turn Ctrl-C into SIGINT, so there Ctrl-C does not stop a continue; with
// piped stdin, or a signal sent from outside, the SIGINT stops it.
func doContinue(c *cpu.CPU) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	defer signal.Stop(sigCh)

	done := make(chan struct{})
	stop := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-stop:
				return
			default:
			}
			res, err := c.Step()
			if err != nil {
				fmt.Println("error:", err)
				return
			}
			if res.Status == cpu.StatusBreakpointHit {
				fmt.Println("breakpoint hit")
				return
			}
			if res.Status == cpu.StatusWatchpointHit {
				fmt.Printf("watchpoint hit at %05X\n", res.WatchLinear)
				return
			}
			if res.Status == cpu.StatusHalted {
				fmt.Println("halted")
				return
			}
		}
	}()

	select {
	case <-done:
	case <-sigCh:
		close(stop)
		<-done
	}
	printRegs(c)
}
