// Package asmgen lowers a zisk.Rom into Intel-syntax x86-64 assembly text.
// Register assignment is fixed, not allocated: every generated function
// uses the same physical registers for the same logical roles, so no
// register-allocation pass runs per program.
package asmgen

import (
	"fmt"
	"strconv"
)

// Physical register names for each of ZisK's fixed logical roles.
const (
	RegA         = "rbx" // operand a
	RegB         = "rax" // operand b
	RegC         = "r15" // operation result (op(a, b))
	RegFlag      = "rdx" // comparison/branch-predicate result
	RegStepDown  = "r14" // counts remaining steps in the current chunk
	ScratchValue = "r9"  // spare: staging a value
	ScratchAddr  = "r10" // spare: staging a memory address
	MemReadsAddr = "r12" // trace-policy bookkeeping: last mem read address
	MemReadsSize = "r13" // trace-policy bookkeeping: last mem read size
	ScratchAux   = "r11" // spare: anything phase-local
)

// maxZiskReg is the highest ZisK register index the generator ever spills
// or fills: 0-31 architectural, 32-34 the atomic/CSR transpiler scratch
// slots, 40 the BIOS-only scratch register synthesize.go uses. Every index
// in between that isn't XMM-aliased still gets a .bss cell reserved for it.
const maxZiskReg = 40

// xmmAliasRegs is the fixed, non-overlapping set of ZisK register indices
// backed by an XMM register instead of a .bss cell — the hot caller-saved
// and argument registers on the RISC-V side. Index into this slice is the
// XMM register number (xmmAliasRegs[0] lives in xmm0, and so on). Every
// other register slot (including x0, gp/tp, the saved registers s3-s11,
// and the transpiler's own scratch registers) lives in .bss.
var xmmAliasRegs = [16]int{1, 2, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18}

var xmmAliasIndex = func() map[int]int {
	m := make(map[int]int, len(xmmAliasRegs))
	for i, r := range xmmAliasRegs {
		m[r] = i
	}
	return m
}()

// xmmSlot returns the XMM register name ziskReg aliases to, and whether it
// has one at all (false means it is backed by a .bss cell instead).
func xmmSlot(ziskReg int) (string, bool) {
	i, ok := xmmAliasIndex[ziskReg]
	if !ok {
		return "", false
	}
	return "xmm" + strconv.Itoa(i), true
}

// bssCell names the fixed memory cell backing a ZisK register that isn't
// one of the 16 XMM-aliased hot registers.
func bssCell(ziskReg int) string {
	return "reg_slot_" + strconv.Itoa(ziskReg)
}

// loadRegSlot emits the load of ziskReg's current value into dst, from
// whichever of the XMM alias bank or .bss it lives in.
func loadRegSlot(dst string, ziskReg int) string {
	if xmm, ok := xmmSlot(ziskReg); ok {
		return fmt.Sprintf("\tmovq %s, %s\n", dst, xmm)
	}
	return fmt.Sprintf("\tmov %s, [rip+%s]\n", dst, bssCell(ziskReg))
}

// storeRegSlot is loadRegSlot's counterpart: write src into ziskReg's slot.
func storeRegSlot(ziskReg int, src string) string {
	if xmm, ok := xmmSlot(ziskReg); ok {
		return fmt.Sprintf("\tmovq %s, %s\n", xmm, src)
	}
	return fmt.Sprintf("\tmov [rip+%s], %s\n", bssCell(ziskReg), src)
}
