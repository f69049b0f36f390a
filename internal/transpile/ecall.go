package transpile

import (
	"github.com/0xPolygonHermez/zisk-sub000/internal/rvdecode"
	"github.com/0xPolygonHermez/zisk-sub000/internal/zisk"
)

// lowerEcall transfers control to whatever the BIOS has stored in MTVEC at
// the moment the ecall executes, not a compile-time-fixed address: the
// trap vector is itself just a memory cell (csrBackingAddr(CSRMtvec)), the
// same one csrrw mtvec, rs1 writes through lowerPlainCSR. This is what lets
// a guest that rewrites its own trap handler actually change where ecall
// lands.
func (c *Context) lowerEcall(in rvdecode.Inst) (uint64, error) {
	inst := zisk.NewBuilder().
		A(zisk.SrcImm).ARegImm(0, 0).
		B(zisk.SrcMem).BRegImm(0, csrBackingAddr(CSRMtvec)).
		Op(zisk.OpCopyB).
		SetPC(true).
		StoreRA(true).StoreTo(zisk.StoreReg).StoreRegImm(1, 0).
		Verbose("ecall").
		Build()
	return install(c.Rom, in.PC, []step{{width: 4, inst: inst}})
}
