// Package transpile lowers decoded RV64IMA instructions into ZisK
// micro-instructions, one RISC-V instruction at a time. Every lowering
// function in this package must advance the returned cursor by exactly 4
// from the instruction's base address, matching the fixed per-instruction
// step budget the rest of the toolchain (in particular the assembly
// generator's chunk-boundary logic) assumes.
package transpile

import (
	"fmt"

	"github.com/0xPolygonHermez/zisk-sub000/internal/rvdecode"
	"github.com/0xPolygonHermez/zisk-sub000/internal/zisk"
)

// Scratch register indices used by CSR and atomic lowerings, chosen to sit
// outside the 32 RISC-V architectural registers so they never alias a
// guest register.
const (
	RegAtomicScratch = 32
	RegCSRScratch    = 33
	RegJumpScratch   = 34
)

// CSR-address-space constants for the precompiled/fcall side channels.
const (
	CSRPrecompiledBase = 0x800
	CSRPrecompiledEnd  = 0x80B // exclusive
	CSRFcallBase       = 0x8C0
	CSRFcallEnd        = 0x8E0 // exclusive
	CSRFcallParamBase  = 0x8F0
	CSRFcallParamEnd   = 0x900 // exclusive
	CSRFcallGet        = 0xFFE
	CSRMtvec           = 0x305
)

// FcallParamWords gives the number of 64-bit words each fcall_param CSR
// index transfers, indexed by (csr - CSRFcallParamBase).
var FcallParamWords = [16]int{1, 2, 4, 8, 12, 16, 20, 24, 28, 32, 48, 64, 80, 96, 128, 256}

// PrecompiledOps names the 11 precompiled-crypto CSR targets in address
// order starting at CSRPrecompiledBase.
var PrecompiledOps = [11]zisk.Op{
	zisk.OpKeccak,
	zisk.OpArith256,
	zisk.OpArith256Mod,
	zisk.OpSecp256k1Add,
	zisk.OpSecp256k1Dbl,
	zisk.OpSha256,
	zisk.OpBn254CurveAdd,
	zisk.OpBn254CurveDbl,
	zisk.OpBn254ComplexAdd,
	zisk.OpBn254ComplexSub,
	zisk.OpBn254ComplexMul,
}

// Context accumulates lowered instructions into a Rom as the decoder feeds
// it one RISC-V instruction at a time.
type Context struct {
	Rom *zisk.Rom
}

// NewContext wraps rom for incremental lowering.
func NewContext(rom *zisk.Rom) *Context {
	return &Context{Rom: rom}
}

// step is a single micro-op queued for installation at a known offset from
// an instruction's base address, alongside the width it occupies.
type step struct {
	width uint64
	inst  zisk.Inst
}

// install places steps sequentially starting at base, verifying their
// widths sum to exactly 4 (the per-RISC-V-instruction step budget), and
// returns the next instruction's base address. In a lowering of more than
// one step, every step except a SetPC jump gets its own width as
// jmp_offset1, so it falls through to the next step's slot.
func install(rom *zisk.Rom, base uint64, steps []step) (uint64, error) {
	var total uint64
	cursor := base
	for i, s := range steps {
		total += s.width
		inst := s.inst
		if !inst.End && (inst.JmpOffset1 == 0 || (len(steps) > 1 && !inst.SetPC)) {
			inst.JmpOffset1 = int64(s.width)
		}
		if err := inst.Verify(); err != nil {
			return 0, fmt.Errorf("transpile: pc=%#x step=%d: %w", base, i, err)
		}
		rom.Add(cursor, inst)
		cursor += s.width
	}
	if total != 4 {
		return 0, fmt.Errorf("transpile: pc=%#x: lowering steps summed to %d, want 4", base, total)
	}
	return base + 4, nil
}

// Lower dispatches a decoded instruction to its mnemonic-specific lowering
// function and installs the resulting micro-ops into the Rom.
func (c *Context) Lower(in rvdecode.Inst) (nextPC uint64, err error) {
	switch in.Mnem {
	case "lb", "lh", "lw", "ld", "lbu", "lhu", "lwu":
		return c.lowerLoad(in)
	case "sb", "sh", "sw", "sd":
		return c.lowerStore(in)
	case "add", "addi", "addw", "addiw", "sub", "subw",
		"xor", "xori", "or", "ori", "and", "andi",
		"sll", "slli", "sllw", "slliw",
		"srl", "srli", "srlw", "srliw",
		"sra", "srai", "sraw", "sraiw",
		"slt", "slti", "sltu", "sltiu":
		return c.lowerALU(in)
	case "mul", "mulw", "mulh", "mulhu", "mulhsu",
		"div", "divw", "divu", "divuw",
		"rem", "remw", "remu", "remuw":
		return c.lowerMulDiv(in)
	case "lui", "auipc":
		return c.lowerUpperImm(in)
	case "beq", "bne", "blt", "bge", "bltu", "bgeu":
		return c.lowerBranch(in)
	case "jal", "jalr":
		return c.lowerJump(in)
	case "lr.w", "lr.d", "sc.w", "sc.d",
		"amoswap.w", "amoswap.d", "amoadd.w", "amoadd.d",
		"amoxor.w", "amoxor.d", "amoand.w", "amoand.d",
		"amoor.w", "amoor.d",
		"amomin.w", "amomin.d", "amomax.w", "amomax.d",
		"amominu.w", "amominu.d", "amomaxu.w", "amomaxu.d":
		return c.lowerAtomic(in)
	case "csrrw", "csrrs", "csrrc", "csrrwi", "csrrsi", "csrrci":
		return c.lowerCSR(in)
	case "ecall":
		return c.lowerEcall(in)
	case "ebreak", "fence":
		return install(c.Rom, in.PC, []step{{width: 4, inst: zisk.Inst{Verbose: in.Mnem}}})
	default:
		return 0, fmt.Errorf("transpile: unknown mnemonic %q at pc=%#x", in.Mnem, in.PC)
	}
}
