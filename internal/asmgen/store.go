package asmgen

import (
	"fmt"

	"github.com/0xPolygonHermez/zisk-sub000/internal/zisk"
)

// emitStore is Phase 4: write RegC out to wherever the instruction's Store
// field names, updating the fold table so a later Phase 2 can skip
// reloading a register this store just refreshed.
func (c *Context) emitStore(inst zisk.Inst) string {
	switch inst.Store {
	case zisk.StoreNone:
		return ""

	case zisk.StoreReg:
		c.MarkResident(inst.RegStore, RegC)
		s := storeRegSlot(inst.RegStore, RegC)
		if inst.StoreRA {
			s += fmt.Sprintf("\tmov %s, [rip+next_pc_backing]\n", ScratchValue)
			s += storeRegSlot(1, ScratchValue) // ra is x1
		}
		return s

	case zisk.StoreMem:
		// Mirrors the SrcMem read: a fixed absolute address, qword width,
		// no base register.
		return fmt.Sprintf("\tmov [%d], %s\n", inst.ImmStore, RegC)

	case zisk.StoreInd:
		var s string
		s += loadRegSlot(ScratchAddr, inst.RegStore)
		if inst.ImmStore != 0 {
			s += fmt.Sprintf("\tadd %s, %d\n", ScratchAddr, inst.ImmStore)
		}
		s += storeSized(ScratchAddr, RegC, inst.IndWidth)
		if c.Policy.tracesMemReads() {
			s += fmt.Sprintf("\tmov %s, %s\n\tmov %s, %d\n", MemReadsAddr, ScratchAddr, MemReadsSize, inst.IndWidth)
		}
		if inst.StoreRA {
			s += fmt.Sprintf("\tmov %s, [rip+next_pc_backing]\n", ScratchValue)
			s += storeRegSlot(1, ScratchValue)
		}
		return s

	default:
		return ""
	}
}
