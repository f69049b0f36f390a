package asmgen

// regState tracks what the generator currently believes about one ZisK
// register's value, so Phase 2 (source resolution) can skip re-loading a
// value that is already sitting in the physical register an op needs it
// in. Modeled on the host project's SSA-variable liveness bookkeeping,
// repurposed from "is this variable's last write still live" to "is this
// register's spilled value still exactly what's in the physical slot".
type regState struct {
	// residentIn is the physical register currently holding this ZisK
	// register's value ("" if it must be loaded from its XMM spill slot).
	residentIn string
	// isConstant marks a register whose value was last set by an
	// immediate, letting Phase 2 embed the literal directly instead of
	// loading it.
	isConstant  bool
	constValue  int64
	lastWriteOp int // index into the emitted instruction stream
}

// Context carries the running state of one function's worth of code
// generation: which physical register (if any) currently mirrors each
// ZisK register, and the active generation policy.
type Context struct {
	Policy Policy

	regs map[int]*regState

	// opIndex counts instructions emitted so far, used for
	// regState.lastWriteOp bookkeeping.
	opIndex int
}

// NewContext starts a fresh generation context for the given policy.
func NewContext(policy Policy) *Context {
	return &Context{Policy: policy, regs: make(map[int]*regState)}
}

func (c *Context) state(reg int) *regState {
	s, ok := c.regs[reg]
	if !ok {
		s = &regState{}
		c.regs[reg] = s
	}
	return s
}

// MarkResident records that ziskReg's value now lives in physReg, cleared
// of its constant-folding knowledge (a freshly loaded register's value is
// whatever is in memory, not a known literal).
func (c *Context) MarkResident(ziskReg int, physReg string) {
	s := c.state(ziskReg)
	s.residentIn = physReg
	s.isConstant = false
	s.lastWriteOp = c.opIndex
}

// MarkConstant records that ziskReg's value is statically known, letting
// later reads of it embed the literal instead of touching memory at all.
func (c *Context) MarkConstant(ziskReg int, value int64) {
	s := c.state(ziskReg)
	s.isConstant = true
	s.constValue = value
	s.residentIn = ""
	s.lastWriteOp = c.opIndex
}

// Invalidate clears any fold-table knowledge about ziskReg, needed
// whenever control flow could have changed it via a path this context
// didn't see (a jump target, a loop back-edge).
func (c *Context) Invalidate(ziskReg int) {
	delete(c.regs, ziskReg)
}

// Resident reports the physical register currently mirroring ziskReg, if
// any.
func (c *Context) Resident(ziskReg int) (string, bool) {
	s, ok := c.regs[ziskReg]
	if !ok || s.residentIn == "" {
		return "", false
	}
	return s.residentIn, true
}

// Constant reports the known literal value of ziskReg, if any.
func (c *Context) Constant(ziskReg int) (int64, bool) {
	s, ok := c.regs[ziskReg]
	if !ok || !s.isConstant {
		return 0, false
	}
	return s.constValue, true
}

func (c *Context) advance() {
	c.opIndex++
}
