package asmgen

import (
	"fmt"

	"github.com/0xPolygonHermez/zisk-sub000/internal/zisk"
)

// Label returns the text-assembly label a given ZisK program address is
// emitted under. Since every address in a Rom is reachable only through
// jmp_offset1/jmp_offset2, which are always relative, this is the only
// place a ZisK address turns into a symbol name.
func Label(addr uint64) string {
	return fmt.Sprintf("L_%x", addr)
}

// emitPCUpdate is Phase 5: resolve jmp_offset1/jmp_offset2 (and SetPC) into
// control flow, then append whatever per-instruction bookkeeping the active
// policy requires before falling into (or jumping to) the next instruction.
//
// The jump-skip optimization below is load-bearing, not cosmetic: when a
// non-branching instruction's only target is selfAddr+4, no jmp is emitted
// at all and execution simply falls through into the next label, since the
// generator always lays out instructions in address order. Only selfAddr+4
// is compared, not the next populated address: a target at selfAddr+1..+3
// (the next step of a multi-step lowering, or the next BIOS slot) always
// gets an explicit jmp, even though it is the next label.
func emitPCUpdate(inst zisk.Inst, selfAddr uint64, policy Policy) string {
	var s string

	if policy.boundsChunks() {
		s += fmt.Sprintf("\tdec %s\n\tjnz 4f\n\tcall chunk_end_and_start\n4:\n", RegStepDown)
	}

	switch {
	case inst.End:
		s += "\tjmp emulator_halt\n"
		return s

	case inst.SetPC:
		// Target came from a jalr/ecall-style computed jump: RegC already
		// holds the exact absolute destination address (x86_64-side, which
		// overlays the RISC-V address space 1:1 within the program body).
		// Any adjustment the lowering needs (jalr's displacement, its
		// target-alignment mask) is folded into the op that wrote RegC, not
		// applied again here — jmp_offset1 on a SetPC instruction is install
		// bookkeeping only, never a runtime offset.
		s += fmt.Sprintf("\tjmp %s\n", RegC)
		return s

	case !inst.Jmp:
		target := selfAddr + uint64(inst.JmpOffset1)
		fallthroughAddr := selfAddr + 4
		if target == fallthroughAddr {
			return s // jump-skip: falls straight into the next label
		}
		s += fmt.Sprintf("\tjmp %s\n", Label(target))
		return s

	default:
		taken := selfAddr + uint64(inst.JmpOffset2)
		notTaken := selfAddr + uint64(inst.JmpOffset1)
		fallthroughAddr := selfAddr + 4
		s += fmt.Sprintf("\tcmp %s, 0\n", RegFlag)
		switch {
		case notTaken == fallthroughAddr:
			s += fmt.Sprintf("\tjne %s\n", Label(taken))
		case taken == fallthroughAddr:
			s += fmt.Sprintf("\tje %s\n", Label(notTaken))
		default:
			s += fmt.Sprintf("\tjne %s\n\tjmp %s\n", Label(taken), Label(notTaken))
		}
		return s
	}
}
