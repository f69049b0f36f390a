package asmgen

import "fmt"

// emitMul covers mul/mulw/mulu/muluh/mulh/mulsuh. The *h variants want the
// high half of a 128-bit product, which x86-64 imul/mul already compute
// into rdx on the one-operand form; everything else is the low half. RegB
// is rax, the implicit operand of the one-operand form, so b is already in
// place and multiplying by RegA forms a*b.
func emitMul(op string) string {
	switch op {
	case "mul", "mulw":
		dst := RegC
		a, b := RegA, RegB
		if op == "mulw" {
			dst, a, b = dst32(dst), dst32(a), dst32(b)
		}
		s := fmt.Sprintf("\tmov %s, %s\n\timul %s, %s\n", dst, a, dst, b)
		if op == "mulw" {
			s += fmt.Sprintf("\tmovsxd %s, %s\n", RegC, dst32(RegC))
		}
		return s
	case "mulu":
		return fmt.Sprintf("\tmul %s\n\tmov %s, rax\n", RegA, RegC)
	case "muluh":
		return fmt.Sprintf("\tmul %s\n\tmov %s, rdx\n", RegA, RegC)
	case "mulh":
		return fmt.Sprintf("\timul %s\n\tmov %s, rdx\n", RegA, RegC)
	case "mulsuh":
		// signed a * unsigned b, high half: compute the unsigned a*b
		// product first (mul treats both operands as unsigned bit
		// patterns), then correct the high half for a's sign. If a is
		// negative, its unsigned bit pattern is a + 2^64, so the
		// unsigned product overcounts the high half by b; subtract it
		// back out. mul overwrites rax (RegB), so b is kept in
		// ScratchValue for the correction.
		return fmt.Sprintf(
			"\tmov %s, %s\n\tmul %s\n\tmov %s, rdx\n\tcmp %s, 0\n\tjge 1f\n\tsub %s, %s\n1:\n",
			ScratchValue, RegB, RegA, RegC, RegA, RegC, ScratchValue,
		)
	default:
		return fmt.Sprintf("\t# unhandled mul op %s\n", op)
	}
}

// emitDiv covers div/divw/divu/divuw; RISC-V's divide-by-zero and
// signed-overflow results (all-ones / MIN, respectively) are produced by
// sidestepping the x86 #DE trap with explicit zero and -1 divisor checks.
func emitDiv(op string, signed bool) string {
	w32 := op == "divw" || op == "divuw"
	a, b := RegA, RegB
	if w32 {
		a, b = dst32(a), dst32(b)
	}
	var insn string
	if signed {
		insn = "idiv"
	} else {
		insn = "div"
	}
	zeroResult := "-1"
	if !signed {
		zeroResult = "0xFFFFFFFFFFFFFFFF"
		if w32 {
			zeroResult = "0xFFFFFFFF"
		}
	}
	accum, rem := "rax", "rdx"
	divisor := ScratchValue
	if w32 {
		accum, rem = "eax", "edx"
		divisor = dst32(ScratchValue)
	}
	dst := RegC
	if w32 {
		dst = dst32(RegC)
	}
	// RegB is rax, which receives the dividend, so b is divided by from
	// ScratchValue.
	s := fmt.Sprintf(
		"\tmov %s, %s\n\tcmp %s, 0\n\tje 2f\n",
		divisor, b, divisor,
	)
	if signed {
		// x / -1 is -x, and MIN / -1 wraps back to MIN under neg.
		s += fmt.Sprintf("\tcmp %s, -1\n\tjne 5f\n\tmov %s, %s\n\tneg %s\n\tjmp 3f\n5:\n", divisor, dst, a, dst)
	}
	s += fmt.Sprintf("\tmov %s, %s\n", accum, a)
	if signed {
		if w32 {
			s += "\tcdq\n"
		} else {
			s += "\tcqo\n"
		}
	} else {
		s += fmt.Sprintf("\txor %s, %s\n", rem, rem)
	}
	s += fmt.Sprintf("\t%s %s\n\tmov %s, %s\n\tjmp 3f\n2:\n\tmov %s, %s\n3:\n", insn, divisor, dst, accum, dst, zeroResult)
	if w32 {
		s += fmt.Sprintf("\tmovsxd %s, %s\n", RegC, dst)
	}
	return s
}

// emitRem is emitDiv's remainder counterpart: RISC-V defines x % 0 == x.
func emitRem(op string, signed bool) string {
	w32 := op == "remw" || op == "remuw"
	a, b := RegA, RegB
	if w32 {
		a, b = dst32(a), dst32(b)
	}
	var insn string
	if signed {
		insn = "idiv"
	} else {
		insn = "div"
	}
	accum, rem := "rax", "rdx"
	divisor := ScratchValue
	if w32 {
		accum, rem = "eax", "edx"
		divisor = dst32(ScratchValue)
	}
	// RegB is rax, which receives the dividend, so b is divided by from
	// ScratchValue.
	s := fmt.Sprintf("\tmov %s, %s\n\tcmp %s, 0\n\tje 2f\n\tmov %s, %s\n", divisor, b, divisor, accum, a)
	if signed {
		if w32 {
			s += "\tcdq\n"
		} else {
			s += "\tcqo\n"
		}
	} else {
		s += fmt.Sprintf("\txor %s, %s\n", rem, rem)
	}
	dst := RegC
	if w32 {
		dst = dst32(RegC)
	}
	s += fmt.Sprintf("\t%s %s\n\tmov %s, %s\n\tjmp 3f\n2:\n\tmov %s, %s\n3:\n", insn, divisor, dst, rem, dst, a)
	if w32 {
		s += fmt.Sprintf("\tmovsxd %s, %s\n", RegC, dst)
	}
	return s
}
