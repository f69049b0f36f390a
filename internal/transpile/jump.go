package transpile

import (
	"github.com/0xPolygonHermez/zisk-sub000/internal/rvdecode"
	"github.com/0xPolygonHermez/zisk-sub000/internal/zisk"
)

// lowerJump handles jal and jalr. Both link this instruction's address + 4
// into rd (via StoreRA) while separately determining where execution
// continues next.
//
// jal's target is a static relative offset (JmpOffset1), computable at
// transpile time, so it's a single op. jalr's target is data-dependent
// (rs1+imm) and RISC-V requires its low 2 bits be cleared before use, so it
// lowers to two steps: add rs1+imm into a scratch register, then mask that
// scratch register and jump through it (SetPC). Computing the mask in the
// second op, on the add's result rather than on either raw operand, keeps
// it correct regardless of whether imm is 4-aligned.
func (c *Context) lowerJump(in rvdecode.Inst) (uint64, error) {
	if in.Mnem == "jal" {
		b := zisk.NewBuilder().
			A(zisk.SrcImm).ARegImm(0, 0).
			B(zisk.SrcImm).BRegImm(0, 0).
			Op(zisk.OpAdd).
			J(in.Imm).
			Verbose(in.Mnem)
		// x0 is hard-wired zero: `j offset` decodes to `jal x0, offset` and
		// must not touch it, so the link value is only stored for rd != 0.
		if in.Rd != 0 {
			b.StoreRA(true).StoreTo(zisk.StoreReg).StoreRegImm(int(in.Rd), 0)
		}
		return install(c.Rom, in.PC, []step{{width: 4, inst: b.Build()}})
	}

	// jalr. `ret` decodes to `jalr x0, x1, 0`, so rd==0 is routine, not an
	// edge case.
	addTarget := zisk.NewBuilder().
		A(zisk.SrcReg).ARegImm(int(in.Rs1), 0).
		B(zisk.SrcImm).BRegImm(0, in.Imm).
		Op(zisk.OpAdd).
		StoreTo(zisk.StoreReg).StoreRegImm(RegJumpScratch, 0).
		Verbose(in.Mnem + " (target)").
		Build()

	maskAndJump := zisk.NewBuilder().
		A(zisk.SrcReg).ARegImm(RegJumpScratch, 0).
		B(zisk.SrcImm).BRegImm(0, -4). // clear the 2 low bits per the jalr spec
		Op(zisk.OpAnd).
		SetPC(true).
		Verbose(in.Mnem)
	if in.Rd != 0 {
		maskAndJump.StoreRA(true).StoreTo(zisk.StoreReg).StoreRegImm(int(in.Rd), 0)
	}

	return install(c.Rom, in.PC, []step{
		{width: 1, inst: addTarget},
		{width: 3, inst: maskAndJump.Build()},
	})
}
