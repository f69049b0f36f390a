// Package romsynth builds the fixed BIOS-region instructions that wrap a
// transpiled RISC-V program: the initial-data copy loop, the entry/exit
// jumps, and the trap handler ecall lowers into.
package romsynth

import (
	"github.com/0xPolygonHermez/zisk-sub000/internal/rvimage"
	"github.com/0xPolygonHermez/zisk-sub000/internal/zisk"
)

// EmitInitData lays down one ZisK instruction per chunk of every writable
// data segment's initial contents, starting at addr, and returns the next
// free BIOS address. Each segment is copied in 8-byte chunks, followed by
// a 4-byte, a 2-byte, and finally a 1-byte remainder chunk as needed.
//
// The original this is grounded on used ind_width=2 for that final 1-byte
// remainder — an off-by-one that would read a byte of whatever followed
// the chunk in memory. This uses ind_width=1, the width the chunk's own
// size actually calls for (see DESIGN.md).
func EmitInitData(rom *zisk.Rom, addr uint64, segs []rvimage.Segment) uint64 {
	for _, seg := range segs {
		addr = emitSegment(rom, addr, seg)
	}
	return addr
}

func emitSegment(rom *zisk.Rom, addr uint64, seg rvimage.Segment) uint64 {
	data := seg.Bytes
	target := seg.VAddr
	i := 0
	n := len(data)

	chunk := func(width int) {
		var val int64
		for b := 0; b < width; b++ {
			val |= int64(data[i+b]) << (8 * b)
		}
		inst := zisk.NewBuilder().
			A(zisk.SrcImm).ARegImm(0, 0).
			B(zisk.SrcImm).BRegImm(0, val).
			Op(zisk.OpCopyB).
			IndWidth(width).
			StoreTo(zisk.StoreInd).StoreRegImm(0, int64(target)).
			J(1).
			Verbose("init data copy").
			Build()
		rom.Add(addr, inst)
		addr++
		i += width
		target += uint64(width)
	}

	for n-i >= 8 {
		chunk(8)
	}
	if n-i >= 4 {
		chunk(4)
	}
	if n-i >= 2 {
		chunk(2)
	}
	if n-i >= 1 {
		chunk(1)
	}
	return addr
}
