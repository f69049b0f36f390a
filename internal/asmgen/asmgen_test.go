package asmgen

import (
	"strings"
	"testing"

	"github.com/0xPolygonHermez/zisk-sub000/internal/zisk"
)

func TestParsePolicyRoundTrips(t *testing.T) {
	for _, p := range []Policy{PolicyFast, PolicyMinimalTrace, PolicyROMHistogram, PolicyMainTrace, PolicyChunks} {
		got, err := ParsePolicy(p.String())
		if err != nil {
			t.Fatalf("ParsePolicy(%q): %v", p.String(), err)
		}
		if got != p {
			t.Fatalf("ParsePolicy(%q) = %v, want %v", p.String(), got, p)
		}
	}
}

func TestParsePolicyRejectsUnknown(t *testing.T) {
	if _, err := ParsePolicy("bogus"); err == nil {
		t.Fatal("expected an error for an unknown policy name")
	}
}

func TestContextFoldTableSkipsRedundantLoad(t *testing.T) {
	ctx := NewContext(PolicyFast)
	first := ctx.resolveOperand(RegA, zisk.SrcReg, 5, 0, 0)
	if first == "" {
		t.Fatal("first resolution of a register must emit a load")
	}
	second := ctx.resolveOperand(RegA, zisk.SrcReg, 5, 0, 0)
	if second != "" {
		t.Fatalf("fold table should have skipped the redundant reload, got %q", second)
	}
}

func TestContextInvalidateForcesReload(t *testing.T) {
	ctx := NewContext(PolicyFast)
	ctx.resolveOperand(RegA, zisk.SrcReg, 5, 0, 0)
	ctx.Invalidate(5)
	again := ctx.resolveOperand(RegA, zisk.SrcReg, 5, 0, 0)
	if again == "" {
		t.Fatal("invalidated register must be reloaded")
	}
}

func TestEmitSkipsJumpToFallthrough(t *testing.T) {
	inst := zisk.Inst{JmpOffset1: 4}
	got := emitPCUpdate(inst, 0x1000, PolicyFast)
	if strings.Contains(got, "jmp") {
		t.Fatalf("jump to the immediately-following instruction should be elided, got %q", got)
	}
}

func TestEmitBranchElidesRedundantArm(t *testing.T) {
	inst := zisk.Inst{Jmp: true, JmpOffset1: 4, JmpOffset2: 0x20}
	got := emitPCUpdate(inst, 0x1000, PolicyFast)
	if strings.Count(got, "jmp") != 0 || !strings.Contains(got, "jne") {
		t.Fatalf("branch whose not-taken arm is the fallthrough should compile to a single conditional jump, got %q", got)
	}
}

func TestEmitEndJumpsToHalt(t *testing.T) {
	inst := zisk.Inst{End: true}
	got := emitPCUpdate(inst, 0x1000, PolicyFast)
	if !strings.Contains(got, "emulator_halt") {
		t.Fatalf("an End instruction must transfer to the halt path, got %q", got)
	}
}

func TestSetPCJumpsToRegisterNotThroughIt(t *testing.T) {
	inst := zisk.Inst{SetPC: true}
	got := emitPCUpdate(inst, 0x1000, PolicyFast)
	if strings.Contains(got, "jmp ["+RegC+"]") {
		t.Fatalf("a computed jump must target the address in %s directly, not dereference it, got %q", RegC, got)
	}
	if !strings.Contains(got, "jmp "+RegC) {
		t.Fatalf("expected a direct jump through %s, got %q", RegC, got)
	}
}

func TestEmitShiftKeepsOperandSizesConsistent(t *testing.T) {
	for _, op := range []string{"sll", "srl", "sra"} {
		got := emitShift(op, false, op == "sra")
		if strings.Contains(got, "mov ecx, rax") || strings.Contains(got, "mov ecx, "+RegB) {
			t.Fatalf("64-bit %s shift count staging must not narrow %s into ecx, got %q", op, RegB, got)
		}
		if !strings.Contains(got, "mov rcx, "+RegB) {
			t.Fatalf("64-bit %s shift must stage the count with a matching-width mov, got %q", op, got)
		}
	}
}

func TestEmitDivKeepsOperandSizesConsistentFor32Bit(t *testing.T) {
	got := emitDiv("divw", true)
	if strings.Contains(got, "mov rax, e") {
		t.Fatalf("32-bit division must not mix a 64-bit accumulator with a 32-bit source, got %q", got)
	}
}

func TestEmitProducesOneLabelPerInstruction(t *testing.T) {
	rom := zisk.NewRom(0x1000)
	rom.Add(0x2000, zisk.Inst{Op: zisk.OpAdd, ASrc: zisk.SrcImm, BSrc: zisk.SrcImm, Store: zisk.StoreReg, RegStore: 1, JmpOffset1: 4})
	rom.Add(0x2004, zisk.Inst{End: true})

	text, err := Emit(rom, "emulator_start", PolicyFast)
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if !strings.Contains(text, Label(0x2000)+":") || !strings.Contains(text, Label(0x2004)+":") {
		t.Fatalf("expected a label per instruction address, got:\n%s", text)
	}
}
