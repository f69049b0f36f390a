// Package rvdecode turns raw RV64IMA instruction words into the decoded
// form the transpiler consumes. Register-name tables are grounded on the
// riscvGPRegs/riscvFPRegs naming convention used for the host repo's
// RISC-V backend.
package rvdecode

import "fmt"

// Inst is one decoded RISC-V instruction, already split into the fields
// every lowering in package transpile needs. PC is the byte address this
// instruction occupies in the guest program.
type Inst struct {
	PC     uint64
	Raw    uint32
	Mnem   string
	Rd     uint8
	Rs1    uint8
	Rs2    uint8
	Imm    int64
	Funct3 uint8
	Funct7 uint8
	Csr    uint16
	// Aq/Rl are the acquire/release bits carried by AMO and LR/SC.
	Aq, Rl bool
}

// GPRegNames gives the canonical ABI name for integer register indices 0-31.
var GPRegNames = [32]string{
	"zero", "ra", "sp", "gp", "tp", "t0", "t1", "t2",
	"s0", "s1", "a0", "a1", "a2", "a3", "a4", "a5",
	"a6", "a7", "s2", "s3", "s4", "s5", "s6", "s7",
	"s8", "s9", "s10", "s11", "t3", "t4", "t5", "t6",
}

func bits(word uint32, hi, lo uint) uint32 {
	return (word >> lo) & ((1 << (hi - lo + 1)) - 1)
}

func signExtend(v uint32, bits uint) int64 {
	shift := 32 - bits
	return int64(int32(v<<shift)) >> shift
}

// Decode decodes a single 32-bit RV64IMA instruction word at address pc.
// Compressed (16-bit) instructions are out of scope: guest programs are
// expected to be assembled without the C extension, matching the fixed
// 4-byte-per-instruction transpiler cursor.
func Decode(pc uint64, word uint32) (Inst, error) {
	inst := Inst{PC: pc, Raw: word}
	opcode := bits(word, 6, 0)
	inst.Rd = uint8(bits(word, 11, 7))
	inst.Funct3 = uint8(bits(word, 14, 12))
	inst.Rs1 = uint8(bits(word, 19, 15))
	inst.Rs2 = uint8(bits(word, 24, 20))
	inst.Funct7 = uint8(bits(word, 31, 25))

	switch opcode {
	case 0x37: // LUI
		inst.Mnem = "lui"
		inst.Imm = int64(word & 0xFFFFF000)
	case 0x17: // AUIPC
		inst.Mnem = "auipc"
		inst.Imm = int64(word & 0xFFFFF000)
	case 0x6F: // JAL
		inst.Mnem = "jal"
		raw := (bits(word, 31, 31) << 20) | (bits(word, 19, 12) << 12) |
			(bits(word, 20, 20) << 11) | (bits(word, 30, 21) << 1)
		inst.Imm = signExtend(raw, 21)
	case 0x67: // JALR
		inst.Mnem = "jalr"
		inst.Imm = signExtend(bits(word, 31, 20), 12)
	case 0x63: // branches
		raw := (bits(word, 31, 31) << 12) | (bits(word, 7, 7) << 11) |
			(bits(word, 30, 25) << 5) | (bits(word, 11, 8) << 1)
		inst.Imm = signExtend(raw, 13)
		switch inst.Funct3 {
		case 0x0:
			inst.Mnem = "beq"
		case 0x1:
			inst.Mnem = "bne"
		case 0x4:
			inst.Mnem = "blt"
		case 0x5:
			inst.Mnem = "bge"
		case 0x6:
			inst.Mnem = "bltu"
		case 0x7:
			inst.Mnem = "bgeu"
		default:
			return inst, fmt.Errorf("rvdecode: unknown branch funct3 %#x at pc=%#x", inst.Funct3, pc)
		}
	case 0x03: // loads
		inst.Imm = signExtend(bits(word, 31, 20), 12)
		switch inst.Funct3 {
		case 0x0:
			inst.Mnem = "lb"
		case 0x1:
			inst.Mnem = "lh"
		case 0x2:
			inst.Mnem = "lw"
		case 0x3:
			inst.Mnem = "ld"
		case 0x4:
			inst.Mnem = "lbu"
		case 0x5:
			inst.Mnem = "lhu"
		case 0x6:
			inst.Mnem = "lwu"
		default:
			return inst, fmt.Errorf("rvdecode: unknown load funct3 %#x at pc=%#x", inst.Funct3, pc)
		}
	case 0x23: // stores
		raw := (bits(word, 31, 25) << 5) | bits(word, 11, 7)
		inst.Imm = signExtend(raw, 12)
		switch inst.Funct3 {
		case 0x0:
			inst.Mnem = "sb"
		case 0x1:
			inst.Mnem = "sh"
		case 0x2:
			inst.Mnem = "sw"
		case 0x3:
			inst.Mnem = "sd"
		default:
			return inst, fmt.Errorf("rvdecode: unknown store funct3 %#x at pc=%#x", inst.Funct3, pc)
		}
	case 0x13, 0x1B: // OP-IMM, OP-IMM-32
		word32 := opcode == 0x1B
		inst.Imm = signExtend(bits(word, 31, 20), 12)
		switch inst.Funct3 {
		case 0x0:
			inst.Mnem = ifw("addi", "addiw", word32)
		case 0x4:
			inst.Mnem = "xori"
		case 0x6:
			inst.Mnem = "ori"
		case 0x7:
			inst.Mnem = "andi"
		case 0x1:
			inst.Mnem = ifw("slli", "slliw", word32)
			inst.Imm = int64(bits(word, 25, 20))
		case 0x5:
			if bits(word, 30, 30) == 1 {
				inst.Mnem = ifw("srai", "sraiw", word32)
			} else {
				inst.Mnem = ifw("srli", "srliw", word32)
			}
			inst.Imm = int64(bits(word, 25, 20))
		case 0x2:
			inst.Mnem = "slti"
		case 0x3:
			inst.Mnem = "sltiu"
		default:
			return inst, fmt.Errorf("rvdecode: unknown op-imm funct3 %#x at pc=%#x", inst.Funct3, pc)
		}
	case 0x33, 0x3B: // OP, OP-32 (R-type ALU and M-extension)
		word32 := opcode == 0x3B
		if inst.Funct7 == 0x01 { // M extension
			inst.Mnem = mulDivMnem(inst.Funct3, word32)
			if inst.Mnem == "" {
				return inst, fmt.Errorf("rvdecode: unknown mul/div funct3 %#x at pc=%#x", inst.Funct3, pc)
			}
		} else {
			switch inst.Funct3 {
			case 0x0:
				if inst.Funct7 == 0x20 {
					inst.Mnem = ifw("sub", "subw", word32)
				} else {
					inst.Mnem = ifw("add", "addw", word32)
				}
			case 0x4:
				inst.Mnem = "xor"
			case 0x6:
				inst.Mnem = "or"
			case 0x7:
				inst.Mnem = "and"
			case 0x1:
				inst.Mnem = ifw("sll", "sllw", word32)
			case 0x5:
				if inst.Funct7 == 0x20 {
					inst.Mnem = ifw("sra", "sraw", word32)
				} else {
					inst.Mnem = ifw("srl", "srlw", word32)
				}
			case 0x2:
				inst.Mnem = "slt"
			case 0x3:
				inst.Mnem = "sltu"
			default:
				return inst, fmt.Errorf("rvdecode: unknown op funct3 %#x at pc=%#x", inst.Funct3, pc)
			}
		}
	case 0x2F: // AMO / LR / SC (A extension: funct3==2 is .w, funct3==3 is .d)
		inst.Aq = bits(word, 26, 26) == 1
		inst.Rl = bits(word, 25, 25) == 1
		funct5 := bits(word, 31, 27)
		w32 := inst.Funct3 == 0x2
		switch funct5 {
		case 0x02:
			inst.Mnem = ifw("lr.d", "lr.w", w32)
		case 0x03:
			inst.Mnem = ifw("sc.d", "sc.w", w32)
		case 0x01:
			inst.Mnem = ifw("amoswap.d", "amoswap.w", w32)
		case 0x00:
			inst.Mnem = ifw("amoadd.d", "amoadd.w", w32)
		case 0x04:
			inst.Mnem = ifw("amoxor.d", "amoxor.w", w32)
		case 0x0C:
			inst.Mnem = ifw("amoand.d", "amoand.w", w32)
		case 0x08:
			inst.Mnem = ifw("amoor.d", "amoor.w", w32)
		case 0x10:
			inst.Mnem = ifw("amomin.d", "amomin.w", w32)
		case 0x14:
			inst.Mnem = ifw("amomax.d", "amomax.w", w32)
		case 0x18:
			inst.Mnem = ifw("amominu.d", "amominu.w", w32)
		case 0x1C:
			inst.Mnem = ifw("amomaxu.d", "amomaxu.w", w32)
		default:
			return inst, fmt.Errorf("rvdecode: unknown amo funct5 %#x at pc=%#x", funct5, pc)
		}
	case 0x73: // SYSTEM: ecall/ebreak/csr*
		if inst.Funct3 == 0 {
			switch bits(word, 31, 20) {
			case 0:
				inst.Mnem = "ecall"
			case 1:
				inst.Mnem = "ebreak"
			default:
				inst.Mnem = "ecall"
			}
			break
		}
		inst.Csr = uint16(bits(word, 31, 20))
		switch inst.Funct3 {
		case 0x1:
			inst.Mnem = "csrrw"
		case 0x2:
			inst.Mnem = "csrrs"
		case 0x3:
			inst.Mnem = "csrrc"
		case 0x5:
			inst.Mnem = "csrrwi"
			inst.Imm = int64(inst.Rs1)
		case 0x6:
			inst.Mnem = "csrrsi"
			inst.Imm = int64(inst.Rs1)
		case 0x7:
			inst.Mnem = "csrrci"
			inst.Imm = int64(inst.Rs1)
		default:
			return inst, fmt.Errorf("rvdecode: unknown system funct3 %#x at pc=%#x", inst.Funct3, pc)
		}
	case 0x0F:
		inst.Mnem = "fence"
	default:
		return inst, fmt.Errorf("rvdecode: unknown opcode %#x at pc=%#x", opcode, pc)
	}
	return inst, nil
}

func ifw(base, wform string, w32 bool) string {
	if w32 {
		return wform
	}
	return base
}

func mulDivMnem(funct3 uint8, w32 bool) string {
	switch funct3 {
	case 0x0:
		return ifw("mul", "mulw", w32)
	case 0x1:
		if w32 {
			return ""
		}
		return "mulh"
	case 0x2:
		if w32 {
			return ""
		}
		return "mulhsu"
	case 0x3:
		if w32 {
			return ""
		}
		return "mulhu"
	case 0x4:
		return ifw("div", "divw", w32)
	case 0x5:
		return ifw("divu", "divuw", w32)
	case 0x6:
		return ifw("rem", "remw", w32)
	case 0x7:
		return ifw("remu", "remuw", w32)
	default:
		return ""
	}
}
