package asmgen

import (
	"fmt"
	"strings"

	"github.com/0xPolygonHermez/zisk-sub000/internal/zisk"
)

// Emit walks every instruction in rom in address order and produces the
// complete assembly text for it: preamble, function header, one labeled
// block per instruction (Phases 1 through 5), and, under the rom-histogram
// policy, the per-instruction rom_hits_ counters those blocks increment.
func Emit(rom *zisk.Rom, entryLabel string, policy Policy) (string, error) {
	ctx := NewContext(policy)

	var body strings.Builder
	for _, pc := range rom.SortedPCs() {
		inst, _ := rom.At(pc)
		if err := inst.Verify(); err != nil {
			return "", fmt.Errorf("asmgen: %s at pc %#x: %w", Label(pc), pc, err)
		}
		body.WriteString(emitInstruction(ctx, inst, pc))
	}

	var out strings.Builder
	out.WriteString(Preamble(policy))
	out.WriteString(FunctionHeader(entryLabel, 0))
	out.WriteString(fmt.Sprintf("\tjmp %s\n\n", Label(rom.SortedPCs()[0])))
	out.WriteString(body.String())
	if policy.countsROMHits() {
		out.WriteString("\n.bss\n.align 8\n")
		for _, pc := range rom.SortedPCs() {
			fmt.Fprintf(&out, "rom_hits_%s: .zero 8\n", Label(pc))
		}
	}
	return out.String(), nil
}

func emitInstruction(ctx *Context, inst zisk.Inst, pc uint64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s:\n", Label(pc))

	if ctx.Policy.countsROMHits() {
		fmt.Fprintf(&b, "\tinc qword ptr [rip+rom_hits_%s]\n", Label(pc))
	}

	b.WriteString(ctx.resolveOperand(RegA, inst.ASrc, inst.RegA, inst.ImmA, inst.IndWidth))
	b.WriteString(ctx.resolveOperand(RegB, inst.BSrc, inst.RegB, inst.ImmB, inst.IndWidth))

	b.WriteString(emitOp(inst))

	b.WriteString(ctx.emitStore(inst))
	ctx.advance()

	b.WriteString(emitPCUpdate(inst, pc, ctx.Policy))
	b.WriteString("\n")
	return b.String()
}

// emitOp is the Phase-3 dispatcher: one case per member of zisk.Op, each
// delegating to the per-family emitter that already has RegA/RegB resolved.
func emitOp(inst zisk.Inst) string {
	switch inst.Op {
	case zisk.OpNop:
		return emitNop()
	case zisk.OpFlag:
		return emitFlag()
	case zisk.OpCopyB:
		return emitCopyB()
	case zisk.OpPubOut:
		return emitPubOut()

	case zisk.OpAdd:
		return emitALU("add", false)
	case zisk.OpAddW:
		return emitALU("add", true)
	case zisk.OpSub:
		return emitALU("sub", false)
	case zisk.OpSubW:
		return emitALU("sub", true)
	case zisk.OpAnd:
		return emitALU("and", false)
	case zisk.OpOr:
		return emitALU("or", false)
	case zisk.OpXor:
		return emitALU("xor", false)

	case zisk.OpSll:
		return emitShift("sll", false, false)
	case zisk.OpSllW:
		return emitShift("sll", true, false)
	case zisk.OpSrl:
		return emitShift("srl", false, false)
	case zisk.OpSrlW:
		return emitShift("srl", true, false)
	case zisk.OpSra:
		return emitShift("sra", false, true)
	case zisk.OpSraW:
		return emitShift("sra", true, true)

	case zisk.OpEq, zisk.OpEqW:
		return emitCompare("e", inst.Op == zisk.OpEqW)
	case zisk.OpLt, zisk.OpLtW:
		return emitCompare("l", inst.Op == zisk.OpLtW)
	case zisk.OpLtU, zisk.OpLtUW:
		return emitCompare("b", inst.Op == zisk.OpLtUW)
	case zisk.OpLe, zisk.OpLeW:
		return emitCompare("le", inst.Op == zisk.OpLeW)
	case zisk.OpLeU, zisk.OpLeUW:
		return emitCompare("be", inst.Op == zisk.OpLeUW)
	case zisk.OpLtAbs:
		return emitLtAbs()

	case zisk.OpMin:
		return emitMinMax("min")
	case zisk.OpMinU:
		return emitMinMax("minu")
	case zisk.OpMax:
		return emitMinMax("max")
	case zisk.OpMaxU:
		return emitMinMax("maxu")

	case zisk.OpMul:
		return emitMul("mul")
	case zisk.OpMulW:
		return emitMul("mulw")
	case zisk.OpMulU:
		return emitMul("mulu")
	case zisk.OpMulUH:
		return emitMul("muluh")
	case zisk.OpMulH:
		return emitMul("mulh")
	case zisk.OpMulSUH:
		return emitMul("mulsuh")

	case zisk.OpDiv:
		return emitDiv("div", true)
	case zisk.OpDivW:
		return emitDiv("divw", true)
	case zisk.OpDivU:
		return emitDiv("divu", false)
	case zisk.OpDivUW:
		return emitDiv("divuw", false)
	case zisk.OpRem:
		return emitRem("rem", true)
	case zisk.OpRemW:
		return emitRem("remw", true)
	case zisk.OpRemU:
		return emitRem("remu", false)
	case zisk.OpRemUW:
		return emitRem("remuw", false)

	case zisk.OpSignExtendB:
		return emitSignExtend(1)
	case zisk.OpSignExtendH:
		return emitSignExtend(2)
	case zisk.OpSignExtendW:
		return emitSignExtend(4)

	case zisk.OpKeccak:
		return emitPrecompiled("keccak")
	case zisk.OpArith256:
		return emitPrecompiled("arith256")
	case zisk.OpArith256Mod:
		return emitPrecompiled("arith256_mod")
	case zisk.OpSecp256k1Add:
		return emitPrecompiled("secp256k1_add")
	case zisk.OpSecp256k1Dbl:
		return emitPrecompiled("secp256k1_dbl")
	case zisk.OpSha256:
		return emitPrecompiled("sha256")
	case zisk.OpBn254CurveAdd:
		return emitPrecompiled("bn254_curve_add")
	case zisk.OpBn254CurveDbl:
		return emitPrecompiled("bn254_curve_dbl")
	case zisk.OpBn254ComplexAdd:
		return emitPrecompiled("bn254_complex_add")
	case zisk.OpBn254ComplexSub:
		return emitPrecompiled("bn254_complex_sub")
	case zisk.OpBn254ComplexMul:
		return emitPrecompiled("bn254_complex_mul")

	case zisk.OpFcall:
		return emitFcall()
	case zisk.OpFcallParam:
		return emitFcallParam()
	case zisk.OpFcallGet:
		return emitFcallGet()

	default:
		return fmt.Sprintf("\t# unhandled op %d\n", inst.Op)
	}
}
