package transpile

import (
	"github.com/0xPolygonHermez/zisk-sub000/internal/rvdecode"
	"github.com/0xPolygonHermez/zisk-sub000/internal/zisk"
)

// csrBackingAddr is the memory cell a plain (non-side-channel) CSR's value
// is persisted in between accesses. The ZisK data model has no separate
// CSR file, so ordinary CSRs are just named memory.
func csrBackingAddr(csr uint16) int64 {
	return 0x10000 + int64(csr)*8
}

func isPrecompiled(csr uint16) bool {
	return csr >= CSRPrecompiledBase && csr < CSRPrecompiledEnd
}

func isFcall(csr uint16) bool {
	return csr >= CSRFcallBase && csr < CSRFcallEnd
}

func isFcallParam(csr uint16) bool {
	return csr >= CSRFcallParamBase && csr < CSRFcallParamEnd
}

// lowerCSR dispatches csrrw/csrrs/csrrc/csrrwi/csrrsi/csrrci. The
// side-channel address ranges (precompiled crypto, fcall, fcall_param,
// fcall_get) bypass the plain memory-backed CSR algebra entirely and
// become a single dispatch op.
func (c *Context) lowerCSR(in rvdecode.Inst) (uint64, error) {
	switch {
	case isPrecompiled(in.Csr):
		return c.lowerPrecompiledCSR(in)
	case isFcall(in.Csr):
		return c.lowerFcallCSR(in)
	case isFcallParam(in.Csr):
		return c.lowerFcallParamCSR(in)
	case in.Csr == CSRFcallGet:
		return c.lowerFcallGetCSR(in)
	default:
		return c.lowerPlainCSR(in)
	}
}

func (c *Context) lowerPrecompiledCSR(in rvdecode.Inst) (uint64, error) {
	op := PrecompiledOps[in.Csr-CSRPrecompiledBase]
	inst := zisk.NewBuilder().
		A(zisk.SrcReg).ARegImm(int(in.Rs1), 0).
		B(zisk.SrcImm).BRegImm(0, 0).
		Op(op).
		Verbose(in.Mnem).
		Build()
	return install(c.Rom, in.PC, []step{{width: 4, inst: inst}})
}

// lowerFcallCSR dispatches an fcall by function id. The id is the CSR
// index's offset from CSRFcallBase; the value written (register for
// csrrw/csrrs/csrrc, zero-extended immediate for the *i forms) carries the
// call's argument count or selector, per the side channel's convention.
func (c *Context) lowerFcallCSR(in rvdecode.Inst) (uint64, error) {
	funcID := int64(in.Csr - CSRFcallBase)
	b := zisk.NewBuilder().
		A(zisk.SrcImm).ARegImm(0, funcID).
		Op(zisk.OpFcall).
		Verbose(in.Mnem)
	if isImmForm(in.Mnem) {
		b.B(zisk.SrcImm).BRegImm(0, in.Imm)
	} else {
		b.B(zisk.SrcReg).BRegImm(int(in.Rs1), 0)
	}
	if in.Rd != 0 {
		b.StoreTo(zisk.StoreReg).StoreRegImm(int(in.Rd), 0)
	}
	return install(c.Rom, in.PC, []step{{width: 4, inst: b.Build()}})
}

func (c *Context) lowerFcallParamCSR(in rvdecode.Inst) (uint64, error) {
	words := FcallParamWords[in.Csr-CSRFcallParamBase]
	b := zisk.NewBuilder().
		A(zisk.SrcImm).ARegImm(0, int64(words)).
		Op(zisk.OpFcallParam).
		Verbose(in.Mnem)
	if isImmForm(in.Mnem) {
		b.B(zisk.SrcImm).BRegImm(0, in.Imm)
	} else {
		b.B(zisk.SrcReg).BRegImm(int(in.Rs1), 0)
	}
	return install(c.Rom, in.PC, []step{{width: 4, inst: b.Build()}})
}

func (c *Context) lowerFcallGetCSR(in rvdecode.Inst) (uint64, error) {
	b := zisk.NewBuilder().
		A(zisk.SrcImm).ARegImm(0, 0).
		B(zisk.SrcImm).BRegImm(0, 0).
		Op(zisk.OpFcallGet).
		Verbose(in.Mnem)
	if in.Rd != 0 {
		b.StoreTo(zisk.StoreReg).StoreRegImm(int(in.Rd), 0)
	}
	return install(c.Rom, in.PC, []step{{width: 4, inst: b.Build()}})
}

func isImmForm(mnem string) bool {
	return mnem == "csrrwi" || mnem == "csrrsi" || mnem == "csrrci"
}

// lowerPlainCSR implements the read-modify-write algebra for an ordinary
// CSR backed by memory. Always reads the old value into a scratch register
// before touching rd, and always performs the "new value" register/
// immediate read before rd is written, so the rd==rs1 aliasing hazard
// (overwriting rs1's value via rd before it's consumed) never arises. The
// original's optimization that skips the memory write entirely when
// rs1 (or the zimm) is zero is not replicated: writing back an unchanged
// value is correct, just one redundant store, and always taking the same
// op shape keeps this lowering's step accounting simple. See DESIGN.md.
func (c *Context) lowerPlainCSR(in rvdecode.Inst) (uint64, error) {
	addr := csrBackingAddr(in.Csr)

	readOld := zisk.NewBuilder().
		A(zisk.SrcImm).ARegImm(0, 0).
		B(zisk.SrcInd).BRegImm(0, addr).
		Op(zisk.OpCopyB).IndWidth(8).
		StoreTo(zisk.StoreReg).StoreRegImm(RegCSRScratch, 0).
		Verbose(in.Mnem + " (read old)").
		Build()

	var newValSrc zisk.ASrc
	var newValReg int
	var newValImm int64
	if isImmForm(in.Mnem) {
		newValSrc, newValImm = zisk.SrcImm, in.Imm
	} else {
		newValSrc, newValReg = zisk.SrcReg, int(in.Rs1)
	}

	var op zisk.Op
	switch in.Mnem {
	case "csrrw", "csrrwi":
		op = zisk.OpCopyB
	case "csrrs", "csrrsi":
		op = zisk.OpOr
	case "csrrc", "csrrci":
		op = zisk.OpAnd
	}

	// csrrc/csrrci clear the bits set in rs1/zimm, which this op set
	// expresses as AND with the bitwise complement (XOR against -1).
	var writeNew zisk.Inst
	if op == zisk.OpAnd {
		notVal := zisk.NewBuilder().
			A(newValSrc).ARegImm(newValReg, newValImm).
			B(zisk.SrcImm).BRegImm(0, -1).
			Op(zisk.OpXor).
			StoreTo(zisk.StoreReg).StoreRegImm(RegCSRScratch+1, 0).
			Verbose(in.Mnem + " (complement)").
			Build()
		andNew := zisk.NewBuilder().
			A(zisk.SrcReg).ARegImm(RegCSRScratch, 0).
			B(zisk.SrcReg).BRegImm(RegCSRScratch+1, 0).
			Op(zisk.OpAnd).
			StoreTo(zisk.StoreInd).StoreRegImm(0, addr).IndWidth(8).
			Verbose(in.Mnem + " (write)").
			Build()
		copyOldB := zisk.NewBuilder().
			A(zisk.SrcImm).ARegImm(0, 0).
			B(zisk.SrcReg).BRegImm(RegCSRScratch, 0).
			Op(zisk.OpCopyB).
			Verbose(in.Mnem + " (rd=old)")
		// x0 is hard-wired zero: `csrrc x0, csr, rs1` must leave it alone.
		if in.Rd != 0 {
			copyOldB.StoreTo(zisk.StoreReg).StoreRegImm(int(in.Rd), 0)
		}
		return install(c.Rom, in.PC, []step{
			{width: 1, inst: readOld},
			{width: 1, inst: notVal},
			{width: 1, inst: andNew},
			{width: 1, inst: copyOldB.Build()},
		})
	}

	writeNew = zisk.NewBuilder().
		A(zisk.SrcReg).ARegImm(RegCSRScratch, 0).
		B(newValSrc).BRegImm(newValReg, newValImm).
		Op(op).
		StoreTo(zisk.StoreInd).StoreRegImm(0, addr).IndWidth(8).
		Verbose(in.Mnem + " (write)").
		Build()
	copyOld := zisk.NewBuilder().
		A(zisk.SrcImm).ARegImm(0, 0).
		B(zisk.SrcReg).BRegImm(RegCSRScratch, 0).
		Op(zisk.OpCopyB).
		Verbose(in.Mnem + " (rd=old)")
	// x0 is hard-wired zero: `csrrw x0, csr, rs1` must leave it alone.
	if in.Rd != 0 {
		copyOld.StoreTo(zisk.StoreReg).StoreRegImm(int(in.Rd), 0)
	}

	return install(c.Rom, in.PC, []step{
		{width: 1, inst: readOld},
		{width: 2, inst: writeNew},
		{width: 1, inst: copyOld.Build()},
	})
}
