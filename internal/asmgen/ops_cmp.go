package asmgen

import "fmt"

// emitCompare covers eq/lt/ltu/le/leu: the x86-64 comparison sets RegFlag
// to 0/1 via setcc, matching ZisK's boolean-result convention, and also
// mirrors the result into RegC the way the op's definition requires (flag
// and c always agree for these ops).
func emitCompare(cc string, w32 bool) string {
	a, b := RegA, RegB
	if w32 {
		a, b = dst32(a), dst32(b)
	}
	return fmt.Sprintf(
		"\tcmp %s, %s\n\tset%s %s\n\tmovzx %s, %s\n\tmov %s, %s\n",
		a, b, cc, lowByte(RegFlag), RegFlag, lowByte(RegFlag), RegC, RegFlag,
	)
}

// emitLtAbs computes |a| < |b| as signed 64-bit magnitudes, the one
// comparison op that isn't a direct x86 condition code.
func emitLtAbs() string {
	return fmt.Sprintf(
		"\tmov %s, %s\n\tneg %s\n\tcmovl %s, %s\n" + // scratch = |a|
			"\tmov %s, %s\n\tneg %s\n\tcmovl %s, %s\n" + // aux = |b|
			"\tcmp %s, %s\n\tsetl %s\n\tmovzx %s, %s\n\tmov %s, %s\n",
		ScratchValue, RegA, ScratchValue, ScratchValue, RegA,
		ScratchAux, RegB, ScratchAux, ScratchAux, RegB,
		ScratchValue, ScratchAux, lowByte(RegFlag), RegFlag, lowByte(RegFlag), RegC, RegFlag,
	)
}

// emitMinMax covers min/minu/max/maxu.
func emitMinMax(op string) string {
	cc := map[string]string{"min": "g", "minu": "a", "max": "l", "maxu": "b"}[op]
	return fmt.Sprintf(
		"\tmov %s, %s\n\tcmp %s, %s\n\tcmov%s %s, %s\n\tmov %s, %s\n",
		RegC, RegA, RegA, RegB, cc, RegC, RegB, RegC, RegC,
	)
}
