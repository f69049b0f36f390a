package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/0xPolygonHermez/zisk-sub000/internal/asmgen"
	"github.com/0xPolygonHermez/zisk-sub000/internal/romsynth"
	"github.com/0xPolygonHermez/zisk-sub000/internal/rvdecode"
	"github.com/0xPolygonHermez/zisk-sub000/internal/rvimage"
	"github.com/0xPolygonHermez/zisk-sub000/internal/transpile"
	"github.com/0xPolygonHermez/zisk-sub000/internal/zisk"
)

// cli.go implements a Go-like subcommand CLI:
//   ziskasm [-o out.s] [--policy p] transpile <program.elf>
//   ziskasm disasm-rom <program.elf>
//   ziskasm rom-stats <program.elf>
//   ziskasm help
//   ziskasm version
// Flags go before the subcommand: flag parsing stops at the first
// non-flag argument.

// CommandContext holds the resolved flags every subcommand needs.
type CommandContext struct {
	Args       []string
	Policy     asmgen.Policy
	Verbose    bool
	Watch      bool
	OutputPath string
}

// RunCLI dispatches to the subcommand named by ctx.Args[0].
func RunCLI(ctx *CommandContext) error {
	if len(ctx.Args) == 0 {
		return cmdHelp()
	}

	subcmd := ctx.Args[0]
	rest := ctx.Args[1:]

	switch subcmd {
	case "transpile":
		if len(rest) < 1 {
			return fmt.Errorf("usage: ziskasm [-o out.s] transpile <program.elf>")
		}
		if ctx.Watch {
			return cmdWatch(ctx, rest[0])
		}
		return cmdTranspile(ctx, rest[0])

	case "disasm-rom":
		if len(rest) < 1 {
			return fmt.Errorf("usage: ziskasm disasm-rom <program.elf>")
		}
		return cmdDisasmRom(ctx, rest[0])

	case "rom-stats":
		if len(rest) < 1 {
			return fmt.Errorf("usage: ziskasm rom-stats <program.elf>")
		}
		return cmdRomStats(ctx, rest[0])

	case "help", "--help", "-h":
		return cmdHelp()

	case "version", "--version", "-V":
		fmt.Println(versionString)
		return nil

	default:
		return fmt.Errorf("unknown subcommand %q (try 'ziskasm help')", subcmd)
	}
}

// buildRom runs the full decode -> lower -> synthesize pipeline for a RISC-V
// ELF executable and returns the populated Rom alongside its BIOS layout.
func buildRom(ctx *CommandContext, elfPath string) (*zisk.Rom, romsynth.Layout, error) {
	data, err := os.ReadFile(elfPath)
	if err != nil {
		return nil, romsynth.Layout{}, fmt.Errorf("reading %s: %w", elfPath, err)
	}

	img, err := rvimage.Load(data)
	if err != nil {
		return nil, romsynth.Layout{}, fmt.Errorf("loading ELF: %w", err)
	}
	if ctx.Verbose {
		fmt.Fprintf(os.Stderr, "loaded %s: entry=%#x segments=%d\n", elfPath, img.Entry, len(img.Segments))
	}

	rom := zisk.NewRom(img.Entry)
	layout := romsynth.Synthesize(rom, img.Entry)
	if ctx.Verbose {
		fmt.Fprintf(os.Stderr, "synthesized BIOS: entry=%#x trap=%#x next_free=%#x\n",
			layout.EntryAddr, layout.TrapAddr, layout.NextFreeAddr)
	}

	tctx := transpile.NewContext(rom)

	errs := NewErrorCollector(20)
	for _, seg := range img.TextSegments() {
		for off := uint64(0); off+4 <= uint64(len(seg.Bytes)); off += 4 {
			pc := seg.VAddr + off
			word := uint32(seg.Bytes[off]) | uint32(seg.Bytes[off+1])<<8 |
				uint32(seg.Bytes[off+2])<<16 | uint32(seg.Bytes[off+3])<<24

			in, err := rvdecode.Decode(pc, word)
			if err != nil {
				errs.AddError(DecodeError(pc, word, err.Error()))
				if errs.ShouldStop() {
					break
				}
				continue
			}
			if _, err := tctx.Lower(in); err != nil {
				errs.AddError(TranspileError{
					Level:    LevelError,
					Category: CategoryLower,
					Message:  err.Error(),
					Location: InstLocation{PC: pc, Mnem: in.Mnem},
				})
				if errs.ShouldStop() {
					break
				}
			}
		}
	}
	if errs.HasErrors() {
		fmt.Fprint(os.Stderr, errs.Report(true))
		return nil, layout, fmt.Errorf("%d error(s) while lowering %s", errs.ErrorCount(), elfPath)
	}

	romsynth.EmitInitData(rom, layout.NextFreeAddr, img.DataSegments())

	return rom, layout, nil
}

func cmdTranspile(ctx *CommandContext, elfPath string) error {
	rom, layout, err := buildRom(ctx, elfPath)
	if err != nil {
		return err
	}

	text, err := asmgen.Emit(rom, "emulator_start", ctx.Policy)
	if err != nil {
		return fmt.Errorf("generating assembly: %w", err)
	}

	outPath := ctx.OutputPath
	if outPath == "" {
		outPath = strings.TrimSuffix(elfPath, filepath.Ext(elfPath)) + ".s"
	}
	if err := os.WriteFile(outPath, []byte(text), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", outPath, err)
	}

	if ctx.Verbose {
		fmt.Fprintf(os.Stderr, "wrote %s (%d instructions, entry=%#x)\n", outPath, rom.Len(), layout.EntryAddr)
	}
	return nil
}

func cmdDisasmRom(ctx *CommandContext, elfPath string) error {
	rom, _, err := buildRom(ctx, elfPath)
	if err != nil {
		return err
	}
	for _, pc := range rom.SortedPCs() {
		inst, _ := rom.At(pc)
		fmt.Printf("%#08x: %s\n", pc, inst.String())
	}
	return nil
}

func cmdRomStats(ctx *CommandContext, elfPath string) error {
	rom, layout, err := buildRom(ctx, elfPath)
	if err != nil {
		return err
	}

	unreachable := romsynth.Unreachable(rom, layout.EntryAddr)
	counts := map[zisk.Op]int{}
	for _, pc := range rom.SortedPCs() {
		inst, _ := rom.At(pc)
		counts[inst.Op]++
	}

	fmt.Printf("instructions: %d\n", rom.Len())
	fmt.Printf("unreachable:  %d\n", len(unreachable))
	for _, pc := range unreachable {
		fmt.Printf("  unreachable: %#08x\n", pc)
	}

	fmt.Println("op histogram:")
	ops := make([]int, 0, len(counts))
	for op := range counts {
		ops = append(ops, int(op))
	}
	sort.Ints(ops)
	for _, op := range ops {
		fmt.Printf("  %-20s %d\n", zisk.Op(op), counts[zisk.Op(op)])
	}
	return nil
}

func cmdHelp() error {
	fmt.Println(versionString)
	fmt.Println(`
usage: ziskasm [flags] <command> [arguments]

commands:
  transpile <program.elf>    lower a RISC-V ELF into x86-64 assembly text
  disasm-rom <program.elf>   print the intermediate ZisK micro-program
  rom-stats <program.elf>    print instruction counts and reachability
  help                       show this message
  version                    print version information

flags:
  -o, --output <file>        output path for 'transpile' (default: <input>.s)
  --policy <name>             fast, minimal-trace, rom-histogram, main-trace, chunks
  -v, --verbose               show pipeline stage progress
  --watch                     re-transpile whenever the input ELF changes`)
	return nil
}
