package asmgen

import (
	"fmt"
	"strings"
)

// Preamble returns the fixed header every generated assembly file opens
// with: syntax directive, extern declarations for the policy's trace
// hooks, the global-symbol declaration for the emulator's single entry
// point, the .bss cells backing every ZisK register that is not
// XMM-aliased (plus next_pc_backing and fcall_ctx), and a closing switch
// back to the text section for the code that follows.
func Preamble(policy Policy) string {
	var b strings.Builder

	b.WriteString(".intel_syntax noprefix\n")
	b.WriteString(".text\n")

	externs := []string{
		"emulator_start", "get_max_bios_pc", "get_max_program_pc", "get_gen_method",
		"emulator_publish_output", "precompiled_keccak", "precompiled_arith256",
		"precompiled_arith256_mod", "precompiled_secp256k1_add", "precompiled_secp256k1_dbl",
		"precompiled_sha256", "precompiled_bn254_curve_add", "precompiled_bn254_curve_dbl",
		"precompiled_bn254_complex_add", "precompiled_bn254_complex_sub", "precompiled_bn254_complex_mul",
		"fcall_dispatch",
	}
	switch policy {
	case PolicyROMHistogram:
		externs = append(externs, "get_rom_histogram_trace_address")
	case PolicyMainTrace, PolicyChunks:
		externs = append(externs, "chunk_start", "chunk_end", "chunk_end_and_start", "precompiled_save_mem_reads")
	}
	for _, sym := range externs {
		fmt.Fprintf(&b, ".extern %s\n", sym)
	}
	b.WriteString(".global emulator_start\n\n")

	b.WriteString(".bss\n")
	b.WriteString(".align 8\n")
	for i := 0; i <= maxZiskReg; i++ {
		if _, ok := xmmSlot(i); ok {
			continue
		}
		fmt.Fprintf(&b, "%s: .zero 8\n", bssCell(i))
	}
	b.WriteString("next_pc_backing: .zero 8\n")
	b.WriteString("fcall_ctx: .zero 256\n\n")
	b.WriteString(".text\n")

	return b.String()
}

// FunctionHeader emits the label and prologue a generated function needs
// before its per-instruction bodies: register zero-initialization and the
// step-down counter's starting value.
func FunctionHeader(name string, initialSteps int64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s:\n", name)
	fmt.Fprintf(&b, "\txor %s, %s\n", RegA, RegA)
	fmt.Fprintf(&b, "\txor %s, %s\n", RegB, RegB)
	fmt.Fprintf(&b, "\txor %s, %s\n", RegC, RegC)
	fmt.Fprintf(&b, "\txor %s, %s\n", RegFlag, RegFlag)
	fmt.Fprintf(&b, "\tmov %s, %d\n", RegStepDown, initialSteps)
	return b.String()
}
