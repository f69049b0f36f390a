package asmgen

import "fmt"

// emitCopyB implements OpCopyB: the result is simply b, used by the load,
// store, lr.*/sc.*, amo*.* and CSR lowerings that want "write this value
// through verbatim".
func emitCopyB() string {
	return fmt.Sprintf("\tmov %s, %s\n", RegC, RegB)
}

// emitFlag implements OpFlag: copies the last comparison's flag into c.
// No lowering in transpile emits OpFlag; branches act on the flag directly.
func emitFlag() string {
	return fmt.Sprintf("\tmov %s, %s\n", RegC, RegFlag)
}

// emitNop implements OpNop: no operation, just step bookkeeping (handled
// by the per-instruction wrapper that surrounds every emitted op).
func emitNop() string {
	return ""
}

// emitPubOut implements OpPubOut: hands b off to the host's public-output
// channel, used once per word by the synthesized output-emission loop.
func emitPubOut() string {
	return fmt.Sprintf("\tmov rdi, %s\n\tcall emulator_publish_output\n", RegB)
}
