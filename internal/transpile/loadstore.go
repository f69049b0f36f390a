package transpile

import (
	"github.com/0xPolygonHermez/zisk-sub000/internal/rvdecode"
	"github.com/0xPolygonHermez/zisk-sub000/internal/zisk"
)

var loadWidth = map[string]int{
	"lb": 1, "lbu": 1,
	"lh": 2, "lhu": 2,
	"lw": 4, "lwu": 4,
	"ld": 8,
}

var signedLoad = map[string]bool{
	"lb": true, "lh": true, "lw": true,
}

var signExtendOp = map[string]zisk.Op{
	"lb": zisk.OpSignExtendB,
	"lh": zisk.OpSignExtendH,
	"lw": zisk.OpSignExtendW,
}

// lowerLoad handles lb/lh/lw/ld/lbu/lhu/lwu. Unsigned and 64-bit loads need
// no follow-up and take the whole 4-step budget in a single indirect read.
// Signed narrower loads read raw bytes in one step then sign-extend in a
// second, so the raw value never leaks into rd before extension.
func (c *Context) lowerLoad(in rvdecode.Inst) (uint64, error) {
	width := loadWidth[in.Mnem]

	if !signedLoad[in.Mnem] {
		inst := zisk.NewBuilder().
			A(zisk.SrcImm).ARegImm(0, 0).
			B(zisk.SrcInd).BRegImm(int(in.Rs1), in.Imm).
			Op(zisk.OpCopyB).
			IndWidth(width).
			StoreTo(zisk.StoreReg).StoreRegImm(int(in.Rd), 0).
			Verbose(in.Mnem).
			Build()
		return install(c.Rom, in.PC, []step{{width: 4, inst: inst}})
	}

	load := zisk.NewBuilder().
		A(zisk.SrcImm).ARegImm(0, 0).
		B(zisk.SrcInd).BRegImm(int(in.Rs1), in.Imm).
		Op(zisk.OpCopyB).
		IndWidth(width).
		StoreTo(zisk.StoreReg).StoreRegImm(RegAtomicScratch, 0).
		Verbose(in.Mnem + " (raw)").
		Build()
	extend := zisk.NewBuilder().
		A(zisk.SrcReg).ARegImm(RegAtomicScratch, 0).
		B(zisk.SrcImm).BRegImm(0, 0).
		Op(signExtendOp[in.Mnem]).
		StoreTo(zisk.StoreReg).StoreRegImm(int(in.Rd), 0).
		Verbose(in.Mnem + " (sext)").
		Build()
	return install(c.Rom, in.PC, []step{
		{width: 1, inst: load},
		{width: 3, inst: extend},
	})
}

var storeWidth = map[string]int{"sb": 1, "sh": 2, "sw": 4, "sd": 8}

// lowerStore handles sb/sh/sw/sd: a single indirect write of rs2's value to
// address rs1+imm.
func (c *Context) lowerStore(in rvdecode.Inst) (uint64, error) {
	width := storeWidth[in.Mnem]
	inst := zisk.NewBuilder().
		A(zisk.SrcImm).ARegImm(0, 0).
		B(zisk.SrcReg).BRegImm(int(in.Rs2), 0).
		Op(zisk.OpCopyB).
		IndWidth(width).
		StoreTo(zisk.StoreInd).StoreRegImm(int(in.Rs1), in.Imm).
		Verbose(in.Mnem).
		Build()
	return install(c.Rom, in.PC, []step{{width: 4, inst: inst}})
}
