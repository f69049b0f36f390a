package zisk

import "sort"

// Rom maps ZisK program-counter addresses to the micro-instructions that
// live there. Addresses below BiosBoundary belong to the synthesized BIOS
// prologue/epilogue; addresses at or above it belong to the transpiled
// RISC-V program.
type Rom struct {
	insts map[uint64]Inst

	// NextInitAddr is a cursor field for synthesized code. Nothing in this
	// module sets or reads it: romsynth.EmitInitData takes its start
	// address as a parameter and returns the next free one.
	NextInitAddr uint64

	MaxBiosPC    uint64
	MaxProgramPC uint64

	BiosBoundary uint64
}

// NewRom creates an empty Rom with the given BIOS/program address split.
func NewRom(biosBoundary uint64) *Rom {
	return &Rom{
		insts:        make(map[uint64]Inst),
		BiosBoundary: biosBoundary,
	}
}

// Add installs inst at pc, tracking the running bios/program PC maxima.
func (r *Rom) Add(pc uint64, inst Inst) {
	r.insts[pc] = inst
	if pc < r.BiosBoundary {
		if pc > r.MaxBiosPC {
			r.MaxBiosPC = pc
		}
	} else if pc > r.MaxProgramPC {
		r.MaxProgramPC = pc
	}
}

// At returns the instruction at pc, if any.
func (r *Rom) At(pc uint64) (Inst, bool) {
	inst, ok := r.insts[pc]
	return inst, ok
}

// Len reports how many addresses are populated.
func (r *Rom) Len() int {
	return len(r.insts)
}

// SortedPCs returns every populated address in ascending order, the order
// the assembly generator emits them in. The index of a PC in this slice is
// its sorted_pc_list_index, which IndexOf returns.
func (r *Rom) SortedPCs() []uint64 {
	pcs := make([]uint64, 0, len(r.insts))
	for pc := range r.insts {
		pcs = append(pcs, pc)
	}
	sort.Slice(pcs, func(i, j int) bool { return pcs[i] < pcs[j] })
	return pcs
}

// IndexOf returns the position of pc within SortedPCs, or -1 if pc is not
// populated.
func (r *Rom) IndexOf(pc uint64) int {
	pcs := r.SortedPCs()
	lo, hi := 0, len(pcs)
	for lo < hi {
		mid := (lo + hi) / 2
		if pcs[mid] < pc {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo < len(pcs) && pcs[lo] == pc {
		return lo
	}
	return -1
}

// Reachable walks the jump graph from entry and returns the set of
// addresses reachable via jmp_offset1/jmp_offset2, following End
// instructions as terminal nodes. Used by romsynth.Unreachable to flag
// dead ROM slots.
func (r *Rom) Reachable(entry uint64) map[uint64]bool {
	seen := make(map[uint64]bool)
	stack := []uint64{entry}
	for len(stack) > 0 {
		pc := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[pc] {
			continue
		}
		inst, ok := r.insts[pc]
		if !ok {
			continue
		}
		seen[pc] = true
		if inst.End {
			continue
		}
		next1 := uint64(int64(pc) + inst.JmpOffset1)
		stack = append(stack, next1)
		if inst.Jmp {
			next2 := uint64(int64(pc) + inst.JmpOffset2)
			stack = append(stack, next2)
		}
	}
	return seen
}
