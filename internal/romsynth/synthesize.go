package romsynth

import (
	"github.com/0xPolygonHermez/zisk-sub000/internal/zisk"
)

// Layout describes where the synthesized BIOS pieces ended up, so the
// transpiler (for ecall) and the assembly generator (for the histogram
// table and entry symbol) can refer back to them.
type Layout struct {
	EntryAddr      uint64 // where execution starts: the jump-over-end stub
	EndAddr        uint64 // the synthesized End instruction
	ProgramAddr    uint64 // where the transpiled RISC-V program begins
	TrapAddr       uint64 // where ecall transfers control
	OutputLoopAddr uint64
	NextFreeAddr   uint64 // first address after the whole prologue
}

const (
	csrMarchID = 0xF12
	csrMtvec   = 0x305

	// causeExit is the a7/r17 syscall-number convention ecall's trap
	// handler checks for before draining the output buffer. Any other
	// cause falls straight back into the guest via its stored ra.
	causeExit = 93

	// inputAddr/outputAddr are the fixed memory addresses the BIOS seeds
	// into a0/a1 (x10/x11) before jumping into the program, matching the
	// RISC-V argument-register convention the original ZisK entry stub
	// uses. No concrete value for these ships in the retrieval pack (they
	// come from an external crate not present there), so these are this
	// port's own placeholder choice, picked well outside the BIOS's own
	// 0x10000/0x20000 backing-cell range so a guest's MMIO reads/writes
	// never alias the interpreter's bookkeeping. See DESIGN.md.
	inputAddr  = 0x3000_0000
	outputAddr = 0x3001_0000

	// outputWords is the fixed number of 64-bit words the output loop
	// drains, per the original BIOS's register-counted (not length-
	// prefixed) output convention.
	outputWords = 32

	// regOutputLen/regOutputIdx/regOutputPtr are the RISC-V registers the
	// output loop uses as its counters, reusing the guest's own register
	// file exactly as a0/a1 are reused for the input/output addresses —
	// the BIOS runs before and after the guest program, never concurrently
	// with it, so clobbering these is safe.
	regOutputLen = 11
	regOutputIdx = 12
	regOutputPtr = 13
)

// Synthesize builds the fixed BIOS prologue/epilogue around a transpiled
// program. programAddr is the ZisK address the transpiled program's first
// instruction occupies (== its RISC-V entry PC, since BIOS and program
// addresses share one space split at rom.BiosBoundary).
func Synthesize(rom *zisk.Rom, programAddr uint64) Layout {
	addr := uint64(0)
	l := Layout{ProgramAddr: programAddr}

	// 0: jump over the end instruction that immediately follows it, so
	// address 1 (EndAddr) stays available as a terminal jump target for
	// anything that wants to halt immediately (kept for parity with the
	// original's layout; the output loop's exit branch jumps here).
	l.EntryAddr = addr
	rom.Add(addr, zisk.NewBuilder().
		A(zisk.SrcImm).B(zisk.SrcImm).Op(zisk.OpCopyB).
		J(2).
		Verbose("bios: entry, skip end stub").
		Build())
	addr++

	l.EndAddr = addr
	rom.Add(addr, zisk.NewBuilder().
		A(zisk.SrcImm).B(zisk.SrcImm).Op(zisk.OpCopyB).
		End(true).
		Verbose("bios: end stub").
		Build())
	addr++

	// marchid: identifies this as a ZisK-targeting machine to any guest
	// code that reads it defensively.
	rom.Add(addr, zisk.NewBuilder().
		A(zisk.SrcImm).
		B(zisk.SrcImm).BRegImm(0, 0xFEED).
		Op(zisk.OpCopyB).
		StoreTo(zisk.StoreInd).StoreRegImm(0, csrBackingAddrBios(csrMarchID)).IndWidth(8).
		J(1).
		Verbose("bios: store marchid").
		Build())
	addr++

	// mtvec: points the trap vector at TrapAddr, assigned below once known.
	mtvecAddr := addr
	addr++

	// Seed a0/a1 with the fixed input/output addresses, per the RISC-V
	// entry-argument convention the transpiled program's own prologue
	// expects (register 10 = a0, register 11 = a1).
	rom.Add(addr, zisk.NewBuilder().
		A(zisk.SrcImm).
		B(zisk.SrcImm).BRegImm(0, inputAddr).
		Op(zisk.OpCopyB).
		StoreTo(zisk.StoreReg).StoreRegImm(10, 0).
		J(1).
		Verbose("bios: seed a0 = input_addr").
		Build())
	addr++

	rom.Add(addr, zisk.NewBuilder().
		A(zisk.SrcImm).
		B(zisk.SrcImm).BRegImm(0, outputAddr).
		Op(zisk.OpCopyB).
		StoreTo(zisk.StoreReg).StoreRegImm(11, 0).
		J(1).
		Verbose("bios: seed a1 = output_addr").
		Build())
	addr++

	// Call into the transpiled program. programAddr may be far away, so
	// this is expressed as a jump whose delta is computed relative to
	// addr, with StoreRA so a stray `ret` in the guest program returns
	// here (and immediately falls into the output loop).
	entryCallAddr := addr
	rom.Add(entryCallAddr, zisk.NewBuilder().
		A(zisk.SrcImm).B(zisk.SrcImm).Op(zisk.OpCopyB).
		StoreRA(true).StoreTo(zisk.StoreReg).StoreRegImm(1, 0).
		J(int64(programAddr) - int64(entryCallAddr)).
		Verbose("bios: call program entry").
		Build())
	addr++

	// Output-emission loop: drains the fixed outputWords-word buffer at
	// outputAddr, one word per iteration, via three registers reused from
	// the guest's own file: regOutputLen holds the word count, regOutputIdx
	// the loop index, regOutputPtr the cursor into the buffer. 8
	// instructions: init len, init idx, init ptr, loop-top compare-and-exit,
	// load word, emit word, advance ptr, advance idx and jump back.
	l.OutputLoopAddr = addr
	rom.Add(addr, zisk.NewBuilder(). // len = outputWords
						A(zisk.SrcImm).B(zisk.SrcImm).BRegImm(0, outputWords).Op(zisk.OpCopyB).
						StoreTo(zisk.StoreReg).StoreRegImm(regOutputLen, 0).
						J(1).Verbose("bios: output loop init len").Build())
	addr++
	rom.Add(addr, zisk.NewBuilder(). // idx = 0
						A(zisk.SrcImm).ARegImm(0, 0).B(zisk.SrcImm).Op(zisk.OpCopyB).
						StoreTo(zisk.StoreReg).StoreRegImm(regOutputIdx, 0).
						J(1).Verbose("bios: output loop init idx").Build())
	addr++
	rom.Add(addr, zisk.NewBuilder().
		A(zisk.SrcImm).B(zisk.SrcImm).BRegImm(0, outputAddr).Op(zisk.OpCopyB).
		StoreTo(zisk.StoreReg).StoreRegImm(regOutputPtr, 0).
		J(1).Verbose("bios: output loop init ptr").Build())
	addr++
	loopTop := addr
	rom.Add(addr, zisk.NewBuilder(). // idx == len -> done, exit to End
						A(zisk.SrcReg).ARegImm(regOutputIdx, 0).
						B(zisk.SrcReg).BRegImm(regOutputLen, 0).
						Op(zisk.OpEq).
						J(1).J2(int64(l.EndAddr)-int64(addr)).
						Verbose("bios: output loop test").Build())
	addr++
	rom.Add(addr, zisk.NewBuilder(). // read word at ptr
						A(zisk.SrcImm).
						B(zisk.SrcInd).BRegImm(regOutputPtr, 0).IndWidth(8).Op(zisk.OpCopyB).
						StoreTo(zisk.StoreReg).StoreRegImm(RegBiosScratch, 0).
						J(1).Verbose("bios: output loop load").Build())
	addr++
	rom.Add(addr, zisk.NewBuilder(). // emit word as public output
						A(zisk.SrcImm).B(zisk.SrcReg).BRegImm(RegBiosScratch, 0).
						Op(zisk.OpPubOut).
						J(1).Verbose("bios: output loop emit").Build())
	addr++
	rom.Add(addr, zisk.NewBuilder(). // ptr += 8
						A(zisk.SrcReg).ARegImm(regOutputPtr, 0).
						B(zisk.SrcImm).BRegImm(0, 8).Op(zisk.OpAdd).
						StoreTo(zisk.StoreReg).StoreRegImm(regOutputPtr, 0).
						J(1).Verbose("bios: output loop advance ptr").Build())
	addr++
	rom.Add(addr, zisk.NewBuilder(). // idx += 1, loop back
						A(zisk.SrcReg).ARegImm(regOutputIdx, 0).
						B(zisk.SrcImm).BRegImm(0, 1).Op(zisk.OpAdd).
						StoreTo(zisk.StoreReg).StoreRegImm(regOutputIdx, 0).
						J(int64(loopTop)-int64(addr)).
						Verbose("bios: output loop advance idx").Build())
	addr++

	// Trap handler: ecall lands here with every register untouched except
	// ra (x1, set to the ecall's own address+4 by the lowering). Only a7
	// (r17) == causeExit is treated as "the guest is done"; anything else
	// falls straight back into the guest through ra, since this BIOS build
	// implements no other syscalls.
	l.TrapAddr = addr
	rom.Add(addr, zisk.NewBuilder().
		A(zisk.SrcReg).ARegImm(17, 0).
		B(zisk.SrcImm).BRegImm(0, causeExit).
		Op(zisk.OpEq).
		J(1).J2(int64(l.OutputLoopAddr)-int64(addr)).
		Verbose("bios: trap handler dispatch").Build())
	addr++
	rom.Add(addr, zisk.NewBuilder().
		A(zisk.SrcImm).
		B(zisk.SrcReg).BRegImm(1, 0).
		Op(zisk.OpCopyB).
		SetPC(true).
		Verbose("bios: trap handler return").Build())
	addr++

	// Now that TrapAddr is known, backfill the mtvec store.
	rom.Add(mtvecAddr, zisk.NewBuilder().
		A(zisk.SrcImm).
		B(zisk.SrcImm).BRegImm(0, int64(l.TrapAddr)).
		Op(zisk.OpCopyB).
		StoreTo(zisk.StoreInd).StoreRegImm(0, csrBackingAddrBios(csrMtvec)).IndWidth(8).
		J(1).
		Verbose("bios: store mtvec").
		Build())

	l.NextFreeAddr = addr
	return l
}

// RegBiosScratch is a scratch register used only by synthesized BIOS code,
// never by the transpiled program, so it never collides with
// transpile.RegAtomicScratch/RegCSRScratch either.
const RegBiosScratch = 40

func csrBackingAddrBios(csr uint16) int64 {
	return 0x10000 + int64(csr)*8
}
