package asmgen

import "fmt"

// precompiledSymbol names the runtime hook each precompiled crypto op
// lowers to. Order matches transpile.PrecompiledOps, which is itself
// ordered by ascending CSR address (0x800-0x80A).
var precompiledSymbol = map[string]string{
	"keccak":             "precompiled_keccak",
	"arith256":           "precompiled_arith256",
	"arith256_mod":       "precompiled_arith256_mod",
	"secp256k1_add":      "precompiled_secp256k1_add",
	"secp256k1_dbl":      "precompiled_secp256k1_dbl",
	"sha256":             "precompiled_sha256",
	"bn254_curve_add":    "precompiled_bn254_curve_add",
	"bn254_curve_dbl":    "precompiled_bn254_curve_dbl",
	"bn254_complex_add":  "precompiled_bn254_complex_add",
	"bn254_complex_sub":  "precompiled_bn254_complex_sub",
	"bn254_complex_mul":  "precompiled_bn254_complex_mul",
}

// emitPrecompiled calls out to the runtime implementation of a crypto
// primitive: the operand (a buffer address carried in RegA) goes in rdi,
// the call clobbers the scratch/volatile registers the System V ABI
// allows it to, and the result pointer it returns comes back in RegC.
func emitPrecompiled(name string) string {
	sym, ok := precompiledSymbol[name]
	if !ok {
		return fmt.Sprintf("\t# unhandled precompiled op %s\n", name)
	}
	return fmt.Sprintf(
		"\tmov rdi, %s\n\tmov rsi, %s\n\tcall %s\n\tmov %s, rax\n",
		RegA, RegB, sym, RegC,
	)
}

// emitFcall implements OpFcall: funcID was staged into ImmA by the
// transpiler (Phase 1 loads it into RegA), the argument into RegB.
func emitFcall() string {
	return fmt.Sprintf(
		"\tlea rdi, [rip+fcall_ctx]\n\tmov rsi, %s\n\tmov rdx, %s\n\tcall fcall_dispatch\n\tmov %s, rax\n",
		RegA, RegB, RegC,
	)
}

// emitFcallParam implements OpFcallParam: stashes one parameter word into
// the shared fcall_ctx buffer at the slot given by RegA (the transpiler
// tracks how many words the active function expects).
func emitFcallParam() string {
	return fmt.Sprintf(
		"\tlea %s, [rip+fcall_ctx]\n\tmov [%s+%s*8], %s\n",
		ScratchAddr, ScratchAddr, RegA, RegB,
	)
}

// emitFcallGet implements OpFcallGet: reads back one result word the prior
// dispatch populated into fcall_ctx.
func emitFcallGet() string {
	return fmt.Sprintf(
		"\tlea %s, [rip+fcall_ctx]\n\tmov %s, [%s+%s*8]\n",
		ScratchAddr, RegC, ScratchAddr, RegA,
	)
}
