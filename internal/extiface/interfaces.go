// Package extiface declares the narrow interfaces this module expects from
// its external collaborators, without implementing their internals — the
// proof system, the memory-access counting subsystem, and the PIL schema
// that assigns meaning to trace columns are all out of scope for this
// module (see SPEC_FULL.md's Non-goals).
package extiface

// MemCounterBus is the interface the memory-access counting subsystem
// presents to generated code's mem-trace-policy paths. Modeled after
// mem_counters.rs's per-bucket read/write counters, but this module only
// needs to know the call shape, not the bucket bookkeeping itself.
type MemCounterBus interface {
	Record(addr uint64, width int, isWrite bool)
}

// ProofSystemSink receives the finished chunk/main-trace data a generated
// binary emits when run under the "main-trace" or "chunks" policy. This
// module's job ends at generating the assembly that calls into it; the
// sink's implementation lives in the proof system.
type ProofSystemSink interface {
	WriteChunk(index uint64, data []byte) error
	Finalize() error
}

// PilSchema names the trace columns a generated binary's instrumented
// paths are expected to populate. This module does not interpret the
// schema, it only needs stable column names to emit symbol references
// against.
type PilSchema interface {
	ColumnName(op string, field string) string
}
