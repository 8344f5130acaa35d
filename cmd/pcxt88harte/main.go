// Command pcxt88harte batch-runs Tom Harte SingleStepTests/8088-shaped JSON
// conformance fixtures against the pcxt88 CPU core.
//
// Grounded on the cpu_x86_harte_test.go fixture shape (gzip-or-
// plain JSON, initial/final regs plus sparse RAM diffs) and fanned out with
// golang.org/x/sync/errgroup the way a batch validator over thousands of
// independent single-instruction cases should be, bounded by GOMAXPROCS
// since every worker owns its own CPU instance and the core itself stays
// single-threaded.
//
// (c) 2025-2026 PCXT88 Contributors - GPLv3 or later
package main

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/retrocore/pcxt88"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func main() {
	var workers int
	var verbose bool

	root := &cobra.Command{
		Use:   "pcxt88harte <dir-or-file>...",
		Short: "Run Tom Harte SingleStepTests/8088 fixtures against the pcxt88 core",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if workers <= 0 {
				workers = runtime.GOMAXPROCS(0)
			}
			files, err := collectFixtureFiles(args)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				return fmt.Errorf("no fixture files found in %v", args)
			}
			return runFixtures(files, workers, verbose)
		},
	}
	root.Flags().IntVar(&workers, "workers", 0, "number of concurrent fixture files (0 = GOMAXPROCS)")
	root.Flags().BoolVarP(&verbose, "verbose", "v", false, "print every failing case")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func collectFixtureFiles(args []string) ([]string, error) {
	var files []string
	for _, a := range args {
		info, err := os.Stat(a)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, a)
			continue
		}
		entries, err := os.ReadDir(a)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if !e.IsDir() {
				files = append(files, filepath.Join(a, e.Name()))
			}
		}
	}
	return files, nil
}

type fixtureCase struct {
	Name    string      `json:"name"`
	Initial fixtureSide `json:"initial"`
	Final   fixtureSide `json:"final"`
}

type fixtureSide struct {
	Regs fixtureRegs `json:"regs"`
	RAM  [][]uint32  `json:"ram"`
}

type fixtureRegs struct {
	AX, BX, CX, DX     uint16
	SI, DI, BP, SP, IP uint16
	CS, DS, ES, SS     uint16
	Flags              uint16
}

func loadFixture(path string) ([]fixtureCase, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var dec *json.Decoder
	if filepath.Ext(path) == ".gz" {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("%s: gzip: %w", path, err)
		}
		defer gz.Close()
		dec = json.NewDecoder(gz)
	} else {
		dec = json.NewDecoder(f)
	}

	var cases []fixtureCase
	if err := dec.Decode(&cases); err != nil {
		return nil, fmt.Errorf("%s: decode: %w", path, err)
	}
	return cases, nil
}

// fixtureBus is the same flat-array Bus the unconditional fixture replay
// needs: no device models, just memory and the flag map the core's
// call-stack shadow reads and writes incidentally during Step.
type fixtureBus struct {
	mem   [1 << 20]byte
	flags [1 << 20]byte
}

func (b *fixtureBus) ReadByte(linear uint32) (byte, int) { return b.mem[linear&0xFFFFF], 0 }
func (b *fixtureBus) ReadWord(linear uint32) (uint16, int) {
	lo := b.mem[linear&0xFFFFF]
	hi := b.mem[(linear+1)&0xFFFFF]
	return uint16(lo) | uint16(hi)<<8, 0
}
func (b *fixtureBus) WriteByte(linear uint32, v byte) int { b.mem[linear&0xFFFFF] = v; return 0 }
func (b *fixtureBus) WriteWord(linear uint32, v uint16) int {
	b.mem[linear&0xFFFFF] = byte(v)
	b.mem[(linear+1)&0xFFFFF] = byte(v >> 8)
	return 0
}
func (b *fixtureBus) IOReadByte(uint16) byte                 { return 0 }
func (b *fixtureBus) IOWriteByte(uint16, byte)                {}
func (b *fixtureBus) GetFlags(linear uint32) byte             { return b.flags[linear&0xFFFFF] }
func (b *fixtureBus) SetFlags(linear uint32, mask byte)       { b.flags[linear&0xFFFFF] |= mask }
func (b *fixtureBus) ClearFlags(linear uint32, mask byte)     { b.flags[linear&0xFFFFF] &^= mask }

type fileResult struct {
	path          string
	total, passed int
	failures      []string
}

func runFixtures(files []string, workers int, verbose bool) error {
	results := make([]fileResult, len(files))

	g := new(errgroup.Group)
	g.SetLimit(workers)
	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			r, err := runFixtureFile(path, verbose)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	var total, passed int64
	for _, r := range results {
		atomic.AddInt64(&total, int64(r.total))
		atomic.AddInt64(&passed, int64(r.passed))
		fmt.Printf("%s: %d/%d\n", r.path, r.passed, r.total)
		if verbose {
			for _, f := range r.failures {
				fmt.Println("  FAIL", f)
			}
		}
	}
	fmt.Printf("\ntotal: %d/%d passed\n", passed, total)
	if passed != total {
		return fmt.Errorf("%d cases failed", total-passed)
	}
	return nil
}

func runFixtureFile(path string, verbose bool) (fileResult, error) {
	cases, err := loadFixture(path)
	if err != nil {
		return fileResult{}, err
	}
	res := fileResult{path: path, total: len(cases)}

	// The file's cases are replayed sequentially here, each on a fresh CPU
	// built by runOneCase; concurrency is across fixture files only.
	var mu sync.Mutex
	for _, tc := range cases {
		ok, diff := runOneCase(tc)
		mu.Lock()
		if ok {
			res.passed++
		} else if verbose {
			res.failures = append(res.failures, fmt.Sprintf("%s: %s", tc.Name, diff))
		}
		mu.Unlock()
	}
	return res, nil
}

func runOneCase(tc fixtureCase) (bool, string) {
	bus := &fixtureBus{}
	cfg := cpu.DefaultConfig()
	c := cpu.New(bus, nil, cfg)

	r := tc.Initial.Regs
	regs := cpu.Registers{
		AX: r.AX, BX: r.BX, CX: r.CX, DX: r.DX,
		SP: r.SP, BP: r.BP, SI: r.SI, DI: r.DI,
		IP: r.IP, Flags: r.Flags,
	}
	regs.Seg[cpu.SegCS] = r.CS
	regs.Seg[cpu.SegDS] = r.DS
	regs.Seg[cpu.SegES] = r.ES
	regs.Seg[cpu.SegSS] = r.SS
	c.SetRegisters(regs)

	for _, entry := range tc.Initial.RAM {
		if len(entry) >= 2 && entry[0] < uint32(len(bus.mem)) {
			bus.mem[entry[0]] = byte(entry[1])
		}
	}

	if _, err := c.Step(); err != nil {
		return false, err.Error()
	}

	got := c.Registers()
	want := tc.Final.Regs
	if got.AX != want.AX || got.BX != want.BX || got.CX != want.CX || got.DX != want.DX ||
		got.SP != want.SP || got.BP != want.BP || got.SI != want.SI || got.DI != want.DI ||
		got.IP != want.IP || got.Flags != want.Flags ||
		got.Seg[cpu.SegCS] != want.CS || got.Seg[cpu.SegDS] != want.DS ||
		got.Seg[cpu.SegES] != want.ES || got.Seg[cpu.SegSS] != want.SS {
		return false, "register mismatch"
	}
	for _, entry := range tc.Final.RAM {
		if len(entry) < 2 {
			continue
		}
		addr := entry[0]
		if addr < uint32(len(bus.mem)) && bus.mem[addr] != byte(entry[1]) {
			return false, fmt.Sprintf("mem[%05X] mismatch", addr)
		}
	}
	return true, ""
}
