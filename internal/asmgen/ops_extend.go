package asmgen

import "fmt"

// emitSignExtend covers sext.b/sext.h/sext.w (the second step of the
// signed lb/lh/lw lowerings): movsx/movsxd do the whole job in one
// instruction.
func emitSignExtend(width int) string {
	switch width {
	case 1:
		return fmt.Sprintf("\tmovsx %s, %s\n", RegC, lowByte(RegA))
	case 2:
		return fmt.Sprintf("\tmovsx %s, %s\n", RegC, low16(RegA))
	default:
		return fmt.Sprintf("\tmovsxd %s, %s\n", RegC, dst32(RegA))
	}
}
