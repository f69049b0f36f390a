package romsynth

import "github.com/0xPolygonHermez/zisk-sub000/internal/zisk"

// Unreachable returns every populated ROM address that rom.Reachable(entry)
// does not reach, sorted ascending. A non-empty result usually means a
// transpiled branch/jump target was computed wrong, or that dead code in
// the guest program was transpiled anyway.
func Unreachable(rom *zisk.Rom, entry uint64) []uint64 {
	reached := rom.Reachable(entry)
	var dead []uint64
	for _, pc := range rom.SortedPCs() {
		if !reached[pc] {
			dead = append(dead, pc)
		}
	}
	return dead
}
