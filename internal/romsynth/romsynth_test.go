package romsynth

import (
	"testing"

	"github.com/0xPolygonHermez/zisk-sub000/internal/rvimage"
	"github.com/0xPolygonHermez/zisk-sub000/internal/zisk"
)

func TestSynthesizeProducesReachableLayout(t *testing.T) {
	rom := zisk.NewRom(0x8000_0000)
	layout := Synthesize(rom, 0x8000_0000)

	if layout.EntryAddr != 0 {
		t.Errorf("entry addr = %d, want 0", layout.EntryAddr)
	}
	if layout.TrapAddr == 0 {
		t.Error("trap addr should not be zero")
	}

	dead := Unreachable(rom, layout.EntryAddr)
	// The end stub at address 1 is intentionally unreferenced by anything
	// in this build (kept only as a layout anchor), so it alone may be
	// reported dead.
	for _, pc := range dead {
		if pc != layout.EndAddr {
			t.Errorf("unexpected unreachable BIOS address %#x", pc)
		}
	}
}

func TestEmitInitDataUsesCorrectFinalChunkWidth(t *testing.T) {
	rom := zisk.NewRom(0x8000_0000)
	seg := rvimage.Segment{VAddr: 0x1000, Bytes: make([]byte, 9)} // 8 + 1 remainder
	for i := range seg.Bytes {
		seg.Bytes[i] = byte(i + 1)
	}
	next := EmitInitData(rom, 100, []rvimage.Segment{seg})
	if next != 102 {
		t.Fatalf("next addr = %d, want 102 (2 chunks)", next)
	}
	last, ok := rom.At(101)
	if !ok {
		t.Fatal("missing final chunk instruction")
	}
	if last.IndWidth != 1 {
		t.Errorf("final remainder chunk ind_width = %d, want 1", last.IndWidth)
	}
}
