package zisk

// Builder accumulates the fields of an Inst through a chain of setters and
// produces the finished value with Build. Mirrors the accumulator-then-
// finalize pattern used elsewhere in this module for multi-field value
// construction (see asmgen.Context for the analogous assembly-side builder).
type Builder struct {
	inst Inst
}

// NewBuilder starts a fresh instruction, defaulting jmp_offset1 to 4 (the
// fixed per-RISC-V-instruction step most ops fall through with).
func NewBuilder() *Builder {
	return &Builder{inst: Inst{JmpOffset1: 4, IndWidth: 8}}
}

func (b *Builder) A(src ASrc) *Builder {
	b.inst.ASrc = src
	return b
}

func (b *Builder) B(src BSrc) *Builder {
	b.inst.BSrc = src
	return b
}

// ARegImm sets both the a-operand register/base index and its accompanying
// immediate (literal for SrcImm, offset for SrcInd).
func (b *Builder) ARegImm(reg int, imm int64) *Builder {
	b.inst.RegA = reg
	b.inst.ImmA = imm
	return b
}

func (b *Builder) BRegImm(reg int, imm int64) *Builder {
	b.inst.RegB = reg
	b.inst.ImmB = imm
	return b
}

func (b *Builder) Op(op Op) *Builder {
	b.inst.Op = op
	return b
}

func (b *Builder) StoreTo(s Store) *Builder {
	b.inst.Store = s
	return b
}

// StoreRegImm sets the store target's register/base index and, for
// indirect stores, its byte offset.
func (b *Builder) StoreRegImm(reg int, imm int64) *Builder {
	b.inst.RegStore = reg
	b.inst.ImmStore = imm
	return b
}

func (b *Builder) StoreRA(v bool) *Builder {
	b.inst.StoreRA = v
	return b
}

func (b *Builder) IndWidth(w int) *Builder {
	b.inst.IndWidth = w
	return b
}

// J sets the step taken on a non-branching (or not-taken) path. romsynth
// calls this on every instruction it lays down; among transpile's
// lowerings only jal and the branches call it, and the others take their
// step from transpile's install.
func (b *Builder) J(offset1 int64) *Builder {
	b.inst.JmpOffset1 = offset1
	return b
}

func (b *Builder) J2(offset2 int64) *Builder {
	b.inst.JmpOffset2 = offset2
	b.inst.Jmp = true
	return b
}

func (b *Builder) SetPC(v bool) *Builder {
	b.inst.SetPC = v
	return b
}

func (b *Builder) End(v bool) *Builder {
	b.inst.End = v
	return b
}

func (b *Builder) Verbose(s string) *Builder {
	b.inst.Verbose = s
	return b
}

// Build finalizes the instruction. The caller is responsible for pushing it
// onto a Rom at the right address.
func (b *Builder) Build() Inst {
	return b.inst
}
