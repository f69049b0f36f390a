package asmgen

import (
	"fmt"
	"strings"

	"github.com/0xPolygonHermez/zisk-sub000/internal/zisk"
)

// resolveOperand is Phase 1+2: load whichever of REG/MEM/IMM/IND/STEP/C/
// LASTC an operand names into dst, skipping the load entirely when the
// fold table already knows dst holds this exact value.
func (c *Context) resolveOperand(dst string, src zisk.ASrc, reg int, imm int64, indWidth int) string {
	switch src {
	case zisk.SrcImm:
		return fmt.Sprintf("\tmov %s, %d\n", dst, imm)

	case zisk.SrcReg:
		if phys, ok := c.Resident(reg); ok && phys == dst {
			return "" // already exactly where we need it
		}
		c.MarkResident(reg, dst)
		return loadRegSlot(dst, reg)

	case zisk.SrcMem:
		// MEM names a fixed absolute address in the guest's 1:1-mapped
		// address space, not a register-relative one: no base register or
		// width variant, always a qword load.
		return fmt.Sprintf("\tmov %s, [%d]\n", dst, imm)

	case zisk.SrcInd:
		var b strings.Builder
		b.WriteString(loadRegSlot(ScratchAddr, reg))
		if imm != 0 {
			fmt.Fprintf(&b, "\tadd %s, %d\n", ScratchAddr, imm)
		}
		fmt.Fprintf(&b, "%s", loadSized(dst, ScratchAddr, indWidth))
		c.Invalidate(-1)
		return b.String()

	case zisk.SrcStep:
		return fmt.Sprintf("\tmov %s, %s\n", dst, RegStepDown)

	case zisk.SrcC:
		return fmt.Sprintf("\tmov %s, %s\n", dst, RegC)

	case zisk.SrcLastC:
		return fmt.Sprintf("\tmov %s, [last_c]\n", dst)

	default:
		return fmt.Sprintf("\txor %s, %s\n", dst, dst)
	}
}

// loadSized emits the correctly-widened load from the address in addrReg
// into dst, zero-extending narrower reads the way an unsigned load would
// (sign-extension, where the source RISC-V load needs it, is a transpiler-
// level op applied afterward, not a concern of this load itself).
func loadSized(dst, addrReg string, width int) string {
	switch width {
	case 1:
		return fmt.Sprintf("\tmovzx %s, byte ptr [%s]\n", dst, addrReg)
	case 2:
		return fmt.Sprintf("\tmovzx %s, word ptr [%s]\n", dst, addrReg)
	case 4:
		return fmt.Sprintf("\tmov %s, dword ptr [%s]\n", dst32(dst), addrReg)
	default:
		return fmt.Sprintf("\tmov %s, qword ptr [%s]\n", dst, addrReg)
	}
}

// storeSized is the Phase-4 counterpart to loadSized.
func storeSized(addrReg, srcReg string, width int) string {
	switch width {
	case 1:
		return fmt.Sprintf("\tmov byte ptr [%s], %s\n", addrReg, lowByte(srcReg))
	case 2:
		return fmt.Sprintf("\tmov word ptr [%s], %s\n", addrReg, low16(srcReg))
	case 4:
		return fmt.Sprintf("\tmov dword ptr [%s], %s\n", addrReg, dst32(srcReg))
	default:
		return fmt.Sprintf("\tmov qword ptr [%s], %s\n", addrReg, srcReg)
	}
}

var reg64to32 = map[string]string{
	"rax": "eax", "rbx": "ebx", "rcx": "ecx", "rdx": "edx",
	"r9": "r9d", "r10": "r10d", "r11": "r11d", "r12": "r12d",
	"r13": "r13d", "r14": "r14d", "r15": "r15d",
}

var reg64to16 = map[string]string{
	"rax": "ax", "rbx": "bx", "rcx": "cx", "rdx": "dx",
	"r9": "r9w", "r10": "r10w", "r11": "r11w", "r12": "r12w",
	"r13": "r13w", "r14": "r14w", "r15": "r15w",
}

var reg64to8 = map[string]string{
	"rax": "al", "rbx": "bl", "rcx": "cl", "rdx": "dl",
	"r9": "r9b", "r10": "r10b", "r11": "r11b", "r12": "r12b",
	"r13": "r13b", "r14": "r14b", "r15": "r15b",
}

func dst32(r string) string {
	if n, ok := reg64to32[r]; ok {
		return n
	}
	return r
}

func low16(r string) string {
	if n, ok := reg64to16[r]; ok {
		return n
	}
	return r
}

func lowByte(r string) string {
	if n, ok := reg64to8[r]; ok {
		return n
	}
	return r
}
