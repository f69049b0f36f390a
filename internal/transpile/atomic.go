package transpile

import (
	"strings"

	"github.com/0xPolygonHermez/zisk-sub000/internal/rvdecode"
	"github.com/0xPolygonHermez/zisk-sub000/internal/zisk"
)

var amoOp = map[string]zisk.Op{
	"swap": zisk.OpCopyB,
	"add":  zisk.OpAdd,
	"xor":  zisk.OpXor,
	"and":  zisk.OpAnd,
	"or":   zisk.OpOr,
	"min":  zisk.OpMin,
	"max":  zisk.OpMax,
	"minu": zisk.OpMinU,
	"maxu": zisk.OpMaxU,
}

func amoWidth(mnem string) int {
	if strings.HasSuffix(mnem, ".d") {
		return 8
	}
	return 4
}

// lowerAtomic handles the A extension. lr.* is modeled as a plain indirect
// load (the reservation set itself is not tracked — see DESIGN.md). sc.*
// always succeeds: it stores rs2 to mem[rs1] and clears rd. The read-
// modify-write amo*.* ops take the full 3-step load/compute/store-back
// sequence, using register 32 as a scratch for the new value.
func (c *Context) lowerAtomic(in rvdecode.Inst) (uint64, error) {
	width := amoWidth(in.Mnem)

	if strings.HasPrefix(in.Mnem, "lr.") {
		inst := zisk.NewBuilder().
			A(zisk.SrcImm).ARegImm(0, 0).
			B(zisk.SrcInd).BRegImm(int(in.Rs1), 0).
			Op(zisk.OpCopyB).IndWidth(width).
			StoreTo(zisk.StoreReg).StoreRegImm(int(in.Rd), 0).
			Verbose(in.Mnem).
			Build()
		return install(c.Rom, in.PC, []step{{width: 4, inst: inst}})
	}

	if strings.HasPrefix(in.Mnem, "sc.") {
		store := zisk.NewBuilder().
			A(zisk.SrcImm).ARegImm(0, 0).
			B(zisk.SrcReg).BRegImm(int(in.Rs2), 0).
			Op(zisk.OpCopyB).IndWidth(width).
			StoreTo(zisk.StoreInd).StoreRegImm(int(in.Rs1), 0).
			Verbose(in.Mnem + " (write)").
			Build()
		clear := zisk.NewBuilder().
			A(zisk.SrcImm).ARegImm(0, 0).
			B(zisk.SrcImm).BRegImm(0, 0).
			Op(zisk.OpAdd).
			StoreTo(zisk.StoreReg).StoreRegImm(int(in.Rd), 0).
			Verbose(in.Mnem + " (rd=0)").
			Build()
		return install(c.Rom, in.PC, []step{
			{width: 2, inst: store},
			{width: 2, inst: clear},
		})
	}

	kind := in.Mnem[len("amo") : strings.IndexByte(in.Mnem, '.')]
	op := amoOp[kind]

	load := zisk.NewBuilder().
		A(zisk.SrcImm).ARegImm(0, 0).
		B(zisk.SrcInd).BRegImm(int(in.Rs1), 0).
		Op(zisk.OpCopyB).IndWidth(width).
		StoreTo(zisk.StoreReg).StoreRegImm(int(in.Rd), 0).
		Verbose(in.Mnem + " (load old)").
		Build()
	compute := zisk.NewBuilder().
		A(zisk.SrcReg).ARegImm(int(in.Rd), 0).
		B(zisk.SrcReg).BRegImm(int(in.Rs2), 0).
		Op(op).
		StoreTo(zisk.StoreReg).StoreRegImm(RegAtomicScratch, 0).
		Verbose(in.Mnem + " (compute new)").
		Build()
	writeback := zisk.NewBuilder().
		A(zisk.SrcImm).ARegImm(0, 0).
		B(zisk.SrcReg).BRegImm(RegAtomicScratch, 0).
		Op(zisk.OpCopyB).IndWidth(width).
		StoreTo(zisk.StoreInd).StoreRegImm(int(in.Rs1), 0).
		Verbose(in.Mnem + " (store new)").
		Build()

	return install(c.Rom, in.PC, []step{
		{width: 1, inst: load},
		{width: 1, inst: compute},
		{width: 2, inst: writeback},
	})
}
