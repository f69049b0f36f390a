package transpile

import (
	"github.com/0xPolygonHermez/zisk-sub000/internal/rvdecode"
	"github.com/0xPolygonHermez/zisk-sub000/internal/zisk"
)

// branchPredicate gives the comparison op each branch mnemonic tests, and
// whether the branch is taken when that predicate is true (false for the
// negated forms bne/bge/bgeu, which share eq/lt/ltu's predicate op and
// simply swap which offset is taken).
var branchPredicate = map[string]struct {
	op        zisk.Op
	takeOnYes bool
}{
	"beq":  {zisk.OpEq, true},
	"bne":  {zisk.OpEq, false},
	"blt":  {zisk.OpLt, true},
	"bge":  {zisk.OpLt, false},
	"bltu": {zisk.OpLtU, true},
	"bgeu": {zisk.OpLtU, false},
}

// lowerBranch handles all six RV64 conditional branches as a single ZisK
// op: the comparison result selects between falling through (+4) and
// jumping to the branch target (+in.Imm).
func (c *Context) lowerBranch(in rvdecode.Inst) (uint64, error) {
	pred := branchPredicate[in.Mnem]
	b := zisk.NewBuilder().
		A(zisk.SrcReg).ARegImm(int(in.Rs1), 0).
		B(zisk.SrcReg).BRegImm(int(in.Rs2), 0).
		Op(pred.op).
		Verbose(in.Mnem)

	// JmpOffset2 is always "taken when the predicate is true"; JmpOffset1
	// is the other path. Negated mnemonics (bne/bge/bgeu) share eq/lt/ltu's
	// predicate but branch on it being false, so their target/fallthrough
	// assignment to the two offsets is swapped relative to beq/blt/bltu.
	if pred.takeOnYes {
		b.J(4).J2(in.Imm)
	} else {
		b.J(in.Imm).J2(4)
	}

	return install(c.Rom, in.PC, []step{{width: 4, inst: b.Build()}})
}
