package transpile

import (
	"testing"

	"github.com/0xPolygonHermez/zisk-sub000/internal/rvdecode"
	"github.com/0xPolygonHermez/zisk-sub000/internal/zisk"
)

func newTestContext() (*Context, *zisk.Rom) {
	rom := zisk.NewRom(0x1000)
	return NewContext(rom), rom
}

func TestLowerAddiStepsSumToFour(t *testing.T) {
	ctx, rom := newTestContext()
	in := rvdecode.Inst{PC: 0x1000, Mnem: "addi", Rd: 10, Rs1: 10, Imm: 5}
	next, err := ctx.Lower(in)
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	if next != 0x1004 {
		t.Errorf("next pc = %#x, want 0x1004", next)
	}
	inst, ok := rom.At(0x1000)
	if !ok {
		t.Fatal("no instruction installed at 0x1000")
	}
	if inst.Op != zisk.OpAdd || inst.ASrc != zisk.SrcReg || inst.BSrc != zisk.SrcImm {
		t.Errorf("unexpected lowering shape: %+v", inst)
	}
	if inst.ImmB != 5 || inst.RegA != 10 || inst.RegStore != 10 {
		t.Errorf("unexpected operands: %+v", inst)
	}
	if inst.JmpOffset1 != 4 {
		t.Errorf("jmp_offset1 = %d, want 4", inst.JmpOffset1)
	}
}

func TestLowerJalrSetsPCAndStoresRA(t *testing.T) {
	ctx, rom := newTestContext()
	in := rvdecode.Inst{PC: 0x2000, Mnem: "jalr", Rd: 1, Rs1: 5, Imm: -4}
	if _, err := ctx.Lower(in); err != nil {
		t.Fatalf("Lower: %v", err)
	}

	// jalr always lowers to two steps: rs1+imm into a scratch register,
	// then mask its low 2 bits and jump through it. The target's low-bit
	// alignment (odd imm, say) can't be known until both operands are
	// summed, so the mask always runs on the add's result rather than on
	// either operand alone.
	add, ok := rom.At(0x2000)
	if !ok {
		t.Fatal("no add step installed at 0x2000")
	}
	if add.SetPC {
		t.Error("jalr's add step must not set PC itself")
	}
	if add.ImmB != -4 || add.RegA != 5 {
		t.Errorf("unexpected jalr add-step operands: %+v", add)
	}

	maskAndJump, ok := rom.At(0x2001)
	if !ok {
		t.Fatal("no mask-and-jump step installed at 0x2001")
	}
	if !maskAndJump.SetPC {
		t.Error("jalr lowering must set SetPC on its final step")
	}
	if !maskAndJump.StoreRA || maskAndJump.RegStore != 1 {
		t.Errorf("jalr must store return address to rd: %+v", maskAndJump)
	}
	if maskAndJump.Op != zisk.OpAnd || maskAndJump.ImmB != -4 {
		t.Errorf("jalr's final step must mask the low 2 bits: %+v", maskAndJump)
	}
}

func TestLowerJalrLeavesX0Alone(t *testing.T) {
	ctx, rom := newTestContext()
	in := rvdecode.Inst{PC: 0x2000, Mnem: "jalr", Rd: 0, Rs1: 1, Imm: 0}
	if _, err := ctx.Lower(in); err != nil {
		t.Fatalf("Lower: %v", err)
	}
	maskAndJump, _ := rom.At(0x2001)
	if maskAndJump.StoreRA {
		t.Error("ret (jalr x0, ...) must not store the return address")
	}
}

func TestLowerAmoaddWIsThreeSteps(t *testing.T) {
	ctx, rom := newTestContext()
	in := rvdecode.Inst{PC: 0x3000, Mnem: "amoadd.w", Rd: 11, Rs1: 10, Rs2: 12}
	next, err := ctx.Lower(in)
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	if next != 0x3004 {
		t.Errorf("next pc = %#x, want 0x3004", next)
	}
	var widths []int64
	pc := uint64(0x3000)
	for pc < next {
		inst, ok := rom.At(pc)
		if !ok {
			t.Fatalf("missing instruction at %#x", pc)
		}
		widths = append(widths, inst.JmpOffset1)
		pc += uint64(inst.JmpOffset1)
	}
	if len(widths) != 3 {
		t.Errorf("amoadd.w lowered to %d steps, want 3: %v", len(widths), widths)
	}
	var total int64
	for _, w := range widths {
		total += w
	}
	if total != 4 {
		t.Errorf("step widths sum to %d, want 4", total)
	}
}

func TestLowerCsrrwiFcallComputesFuncID(t *testing.T) {
	ctx, rom := newTestContext()
	in := rvdecode.Inst{PC: 0x4000, Mnem: "csrrwi", Rd: 10, Csr: CSRFcallBase + 3, Imm: 7}
	if _, err := ctx.Lower(in); err != nil {
		t.Fatalf("Lower: %v", err)
	}
	inst, _ := rom.At(0x4000)
	if inst.Op != zisk.OpFcall {
		t.Fatalf("op = %v, want OpFcall", inst.Op)
	}
	if inst.ImmA != 3 {
		t.Errorf("func id = %d, want 3", inst.ImmA)
	}
	if inst.ImmB != 7 {
		t.Errorf("param = %d, want 7 (the zimm)", inst.ImmB)
	}
}

func TestLowerBeqTakenOffsetIsJmpOffset2(t *testing.T) {
	ctx, rom := newTestContext()
	in := rvdecode.Inst{PC: 0x5000, Mnem: "beq", Rs1: 1, Rs2: 2, Imm: 64}
	if _, err := ctx.Lower(in); err != nil {
		t.Fatalf("Lower: %v", err)
	}
	inst, _ := rom.At(0x5000)
	if inst.JmpOffset2 != 64 || inst.JmpOffset1 != 4 {
		t.Errorf("beq offsets = (%d,%d), want (4,64)", inst.JmpOffset1, inst.JmpOffset2)
	}
}

func TestLowerBneSwapsOffsets(t *testing.T) {
	ctx, rom := newTestContext()
	in := rvdecode.Inst{PC: 0x5000, Mnem: "bne", Rs1: 1, Rs2: 2, Imm: 64}
	if _, err := ctx.Lower(in); err != nil {
		t.Fatalf("Lower: %v", err)
	}
	inst, _ := rom.At(0x5000)
	if inst.JmpOffset1 != 64 || inst.JmpOffset2 != 4 {
		t.Errorf("bne offsets = (%d,%d), want (64,4)", inst.JmpOffset1, inst.JmpOffset2)
	}
}

func TestLowerEcallReadsMtvecDynamically(t *testing.T) {
	ctx, rom := newTestContext()
	in := rvdecode.Inst{PC: 0x6000, Mnem: "ecall"}
	if _, err := ctx.Lower(in); err != nil {
		t.Fatalf("Lower: %v", err)
	}
	inst, _ := rom.At(0x6000)
	if !inst.SetPC {
		t.Error("ecall must set PC")
	}
	if inst.BSrc != zisk.SrcMem || inst.ImmB != csrBackingAddr(CSRMtvec) {
		t.Errorf("ecall must read its target from the mtvec backing cell: %+v", inst)
	}
	if !inst.StoreRA || inst.RegStore != 1 {
		t.Errorf("ecall must link ra (x1): %+v", inst)
	}
}

func TestLowerUnknownMnemonic(t *testing.T) {
	ctx, _ := newTestContext()
	_, err := ctx.Lower(rvdecode.Inst{PC: 0, Mnem: "frobnicate"})
	if err == nil {
		t.Error("expected error for unknown mnemonic")
	}
}
