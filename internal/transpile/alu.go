package transpile

import (
	"github.com/0xPolygonHermez/zisk-sub000/internal/rvdecode"
	"github.com/0xPolygonHermez/zisk-sub000/internal/zisk"
)

// aluOp maps every ALU/shift/compare mnemonic (register and immediate
// forms alike) to its ZisK op. Immediate and register forms share an op:
// the only difference in the lowering is whether b comes from SrcReg or
// SrcImm, decided in lowerALU below.
var aluOp = map[string]zisk.Op{
	"add": zisk.OpAdd, "addi": zisk.OpAdd,
	"addw": zisk.OpAddW, "addiw": zisk.OpAddW,
	"sub": zisk.OpSub, "subw": zisk.OpSubW,
	"xor": zisk.OpXor, "xori": zisk.OpXor,
	"or": zisk.OpOr, "ori": zisk.OpOr,
	"and": zisk.OpAnd, "andi": zisk.OpAnd,
	"sll": zisk.OpSll, "slli": zisk.OpSll,
	"sllw": zisk.OpSllW, "slliw": zisk.OpSllW,
	"srl": zisk.OpSrl, "srli": zisk.OpSrl,
	"srlw": zisk.OpSrlW, "srliw": zisk.OpSrlW,
	"sra": zisk.OpSra, "srai": zisk.OpSra,
	"sraw": zisk.OpSraW, "sraiw": zisk.OpSraW,
	"slt": zisk.OpLt, "slti": zisk.OpLt,
	"sltu": zisk.OpLtU, "sltiu": zisk.OpLtU,
}

var immForm = map[string]bool{
	"addi": true, "addiw": true, "xori": true, "ori": true, "andi": true,
	"slli": true, "slliw": true, "srli": true, "srliw": true,
	"srai": true, "sraiw": true, "slti": true, "sltiu": true,
}

// lowerALU handles every two-operand-in-one-out integer op: register-
// register and register-immediate forms of add/sub/logic/shift/compare.
// Each is a single ZisK op, taking the whole 4-step budget.
func (c *Context) lowerALU(in rvdecode.Inst) (uint64, error) {
	op := aluOp[in.Mnem]
	b := zisk.NewBuilder().
		A(zisk.SrcReg).ARegImm(int(in.Rs1), 0).
		Op(op).
		Verbose(in.Mnem)

	if immForm[in.Mnem] {
		b.B(zisk.SrcImm).BRegImm(0, in.Imm)
	} else {
		b.B(zisk.SrcReg).BRegImm(int(in.Rs2), 0)
	}

	// x0 is hard-wired zero: `nop` is `addi x0, x0, 0`, so rd==0 is common.
	if in.Rd != 0 {
		b.StoreTo(zisk.StoreReg).StoreRegImm(int(in.Rd), 0)
	}

	return install(c.Rom, in.PC, []step{{width: 4, inst: b.Build()}})
}

var mulDivOp = map[string]zisk.Op{
	"mul": zisk.OpMul, "mulw": zisk.OpMulW,
	"mulh": zisk.OpMulH, "mulhu": zisk.OpMulUH, "mulhsu": zisk.OpMulSUH,
	"div": zisk.OpDiv, "divw": zisk.OpDivW,
	"divu": zisk.OpDivU, "divuw": zisk.OpDivUW,
	"rem": zisk.OpRem, "remw": zisk.OpRemW,
	"remu": zisk.OpRemU, "remuw": zisk.OpRemUW,
}

// lowerMulDiv handles the M-extension: a single ZisK op per mnemonic, same
// shape as lowerALU but always register-register.
func (c *Context) lowerMulDiv(in rvdecode.Inst) (uint64, error) {
	b := zisk.NewBuilder().
		A(zisk.SrcReg).ARegImm(int(in.Rs1), 0).
		B(zisk.SrcReg).BRegImm(int(in.Rs2), 0).
		Op(mulDivOp[in.Mnem]).
		Verbose(in.Mnem)
	if in.Rd != 0 {
		b.StoreTo(zisk.StoreReg).StoreRegImm(int(in.Rd), 0)
	}
	return install(c.Rom, in.PC, []step{{width: 4, inst: b.Build()}})
}

// lowerUpperImm handles lui/auipc. lui writes the 20-bit immediate shifted
// into place; auipc adds it to the instruction's own address. Both are a
// single add against a zero or PC-valued a-operand.
func (c *Context) lowerUpperImm(in rvdecode.Inst) (uint64, error) {
	var aSrc zisk.ASrc
	var aReg int
	var aImm int64
	if in.Mnem == "auipc" {
		aSrc, aImm = zisk.SrcImm, int64(in.PC)
	} else {
		aSrc, aReg, aImm = zisk.SrcImm, 0, 0
	}
	b := zisk.NewBuilder().
		A(aSrc).ARegImm(aReg, aImm).
		B(zisk.SrcImm).BRegImm(0, in.Imm).
		Op(zisk.OpAdd).
		Verbose(in.Mnem)
	if in.Rd != 0 {
		b.StoreTo(zisk.StoreReg).StoreRegImm(int(in.Rd), 0)
	}
	return install(c.Rom, in.PC, []step{{width: 4, inst: b.Build()}})
}
