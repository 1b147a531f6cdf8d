// Package jit compiles a lowered BF program directly to x86_64 machine
// code and runs it from an mmap'd executable page, calling back into Go
// through the sysv64 bridge in internal/runtime for tape growth and I/O.
//
// Compilation is two-pass: the first pass walks the program once, emitting
// bytes and recording two maps as it goes -- where each (ir index, sub
// label) pair landed in the buffer, and which buffer offsets are rel32
// placeholders still waiting to be patched with a target. The second pass
// resolves every placeholder now that every label is known, including
// ones defined after the instruction that references them (the
// terminating Halt's shared epilogue, for instance, is referenced by
// every instruction that can fail).
package jit

import (
	"fmt"
	"io"

	"github.com/lcox74/catbf/internal/ir"
	"github.com/lcox74/catbf/internal/runtime"
	"github.com/lcox74/catbf/pkg/amd64"
)

// TargetSupported reports whether Compile can produce runnable code on
// this platform.
const TargetSupported = runtime.TargetSupported

// UnsupportedTargetError is returned by Compile when TargetSupported is
// false.
type UnsupportedTargetError struct{}

func (UnsupportedTargetError) Error() string {
	return "jit: just-in-time compilation is unsupported on this platform"
}

// BadLabelError indicates a placeholder referenced an (ir index, sub
// label) pair that was never defined, which can only happen from a bug in
// the compiler itself.
type BadLabelError struct {
	IRLabel int
}

func (e *BadLabelError) Error() string {
	return fmt.Sprintf("jit: label index %d is out of bounds", e.IRLabel)
}

// Executable is a compiled, runnable program.
type Executable struct {
	exe *runtime.Executable
}

// Close releases the executable's backing memory.
func (e *Executable) Close() error {
	return e.exe.Close()
}

// Run invokes the compiled program against input and output, blocking
// until the program halts.
func (e *Executable) Run(input io.Reader, output io.Writer) error {
	return e.exe.Run(input, output)
}

// Compile lowers an ir.Program directly to x86_64 machine code. The
// returned Executable's Run method invokes it against a real input/output
// pair.
func Compile(p ir.Program) (*Executable, error) {
	if !TargetSupported {
		return nil, UnsupportedTargetError{}
	}

	c := newCompiler(runtime.Addresses())
	c.firstPass(p)
	if err := c.secondPass(); err != nil {
		return nil, err
	}

	exe, err := runtime.NewExecutable(c.buf)
	if err != nil {
		return nil, fmt.Errorf("jit: %w", err)
	}
	return &Executable{exe: exe}, nil
}

type labelKey struct {
	ir  int
	sub int
}

// compiler assembles machine code for one program in two passes: the
// emission order below mirrors ir.Program's instruction order exactly, so
// every label recorded during the first pass is already final by the time
// the second pass runs.
type compiler struct {
	buf          []byte
	labels       map[labelKey]int
	placeholders map[int]labelKey
	addrs        runtime.FuncAddrs
}

func newCompiler(addrs runtime.FuncAddrs) *compiler {
	return &compiler{
		labels:       make(map[labelKey]int),
		placeholders: make(map[int]labelKey),
		addrs:        addrs,
	}
}

func (c *compiler) write(b []byte) {
	c.buf = append(c.buf, b...)
}

func (c *compiler) defLabel(irLabel, subLabel int) {
	c.labels[labelKey{irLabel, subLabel}] = len(c.buf)
}

func (c *compiler) defMainLabel(irLabel int) {
	c.defLabel(irLabel, 0)
}

// makePlaceholder records that the rel32 field of the jump instruction
// just written -- the last 4 bytes of buf -- must be patched to point at
// the given label once every label is known. It must be called
// immediately after writing a JmpRel32/JzRel32/JnzRel32/JsRel32 encoding,
// whose rel32 operand is still the placeholder value 0.
func (c *compiler) makePlaceholder(irLabel, subLabel int) {
	c.placeholders[len(c.buf)-4] = labelKey{irLabel, subLabel}
}

func (c *compiler) callAbsolute(funcAddr uint64) {
	c.write(amd64.CallAbsolute(funcAddr))
}

func (c *compiler) firstPass(p ir.Program) {
	lastIRLabel := p.Len()
	c.writeEnter(lastIRLabel)

	for irLabel, instr := range p.Code {
		c.defMainLabel(irLabel)
		c.handleInstruction(irLabel, instr, lastIRLabel)
	}

	c.defMainLabel(lastIRLabel)
	c.writeLeave(lastIRLabel)
}

func (c *compiler) secondPass() error {
	for pos, key := range c.placeholders {
		target, ok := c.labels[key]
		if !ok {
			return &BadLabelError{IRLabel: key.ir}
		}
		from := int64(pos + 4)
		distance := int32(int64(target) - from)
		amd64.PatchRel32(c.buf, pos, distance)
	}
	return nil
}

func (c *compiler) handleInstruction(irLabel int, instr ir.Instruction, lastIRLabel int) {
	switch instr.Kind {
	case ir.Inc:
		c.writeInc()
	case ir.Dec:
		c.writeDec()
	case ir.Next:
		c.writeNext(irLabel, lastIRLabel)
	case ir.Prev:
		c.writePrev(irLabel, lastIRLabel)
	case ir.Get:
		c.writeGet(irLabel, lastIRLabel)
	case ir.Put:
		c.writePut(lastIRLabel)
	case ir.Jz:
		c.writeJz(instr.Target)
	case ir.Jnz:
		c.writeJnz(instr.Target)
	case ir.Halt:
		c.writeHalt(lastIRLabel)
	}
}

// writeEnter emits the prologue: save callee-saved registers, stash the
// entry handle in rbx, zero the cursor, and allocate the first tape chunk
// into r12/r13.
func (c *compiler) writeEnter(lastIRLabel int) {
	c.write(amd64.PushR14())
	c.write(amd64.PushR13())
	c.write(amd64.PushR12())
	c.write(amd64.PushRBX())
	c.write(amd64.MovRDIToRBX())
	c.write(amd64.XorR14ToR14())
	c.callAbsolute(c.addrs.CreateTape)
	c.write(amd64.TestRAXWithRAX())
	c.write(amd64.JzRel32(0))
	c.makePlaceholder(lastIRLabel, 1)
	c.write(amd64.MovImm32ToR13(runtime.TapeChunkSize))
	c.write(amd64.MovRAXToR12())
}

// writeLeave emits the two exit paths (normal halt falls through to
// status 0, any failed runtime call jumps to label (lastIRLabel, 1), which
// writes status -1 into r14b) and the shared epilogue that frees the tape
// and restores registers.
func (c *compiler) writeLeave(lastIRLabel int) {
	c.write(amd64.XorR14BToR14B())
	c.write(amd64.JmpRel32(0))
	c.makePlaceholder(lastIRLabel, 2)
	c.defLabel(lastIRLabel, 1)
	c.write(amd64.MovImm8ToR14B(0xff)) // -1
	c.defLabel(lastIRLabel, 2)
	c.write(amd64.MovR12ToRDI())
	c.callAbsolute(c.addrs.DestroyTape)
	c.write(amd64.MovR14BToAL())
	c.write(amd64.PopRBX())
	c.write(amd64.PopR12())
	c.write(amd64.PopR13())
	c.write(amd64.PopR14())
	c.write(amd64.Ret())
}

func (c *compiler) writeInc() {
	c.write(amd64.IncbMemR12R14())
}

func (c *compiler) writeDec() {
	c.write(amd64.DecbMemR12R14())
}

// writeNext advances the cursor, growing the tape forward first if the
// cursor is already at the end of the allocated buffer.
func (c *compiler) writeNext(irLabel, lastIRLabel int) {
	c.write(amd64.CmpR14WithR13())
	c.write(amd64.JnzRel32(0))
	c.makePlaceholder(irLabel, 1)
	c.write(amd64.MovR12ToRDI())
	c.write(amd64.MovR13ToRSI())
	c.callAbsolute(c.addrs.GrowNext)
	c.write(amd64.TestRAXWithRAX())
	c.write(amd64.JzRel32(0))
	c.makePlaceholder(lastIRLabel, 1)
	c.write(amd64.MovRAXToR12())
	c.write(amd64.AddImm32ToR13(runtime.TapeChunkSize))
	c.defLabel(irLabel, 1)
	c.write(amd64.IncR14())
}

// writePrev retreats the cursor, growing the tape backward first if the
// cursor is already at offset 0; growing backward also relocates the
// cursor and buffer length by one chunk since the buffer slid forward.
func (c *compiler) writePrev(irLabel, lastIRLabel int) {
	c.write(amd64.TestR14WithR14())
	c.write(amd64.JnzRel32(0))
	c.makePlaceholder(irLabel, 1)
	c.write(amd64.MovR12ToRDI())
	c.write(amd64.MovR13ToRSI())
	c.callAbsolute(c.addrs.GrowPrev)
	c.write(amd64.TestRAXWithRAX())
	c.write(amd64.JzRel32(0))
	c.makePlaceholder(lastIRLabel, 1)
	c.write(amd64.AddImm32ToR14(runtime.TapeChunkSize))
	c.write(amd64.MovRAXToR12())
	c.write(amd64.AddImm32ToR13(runtime.TapeChunkSize))
	c.defLabel(irLabel, 1)
	c.write(amd64.DecR14())
}

func (c *compiler) writePut(lastIRLabel int) {
	c.write(amd64.MovRBXToRDI())
	c.write(amd64.XorEAXToEAX())
	c.write(amd64.MovMemR12R14ToAL())
	c.write(amd64.MovAXToSI())
	c.callAbsolute(c.addrs.Put)
	c.write(amd64.TestALWithAL())
	c.write(amd64.JsRel32(0))
	c.makePlaceholder(lastIRLabel, 1)
}

// writeGet grows the tape forward if needed (the two-cell convention needs
// room for both the flag byte at the cursor and the data byte past it),
// reads one byte, and on success rotates ax so the flag lands at the
// cursor and the data byte lands just past it in a single 16-bit store.
func (c *compiler) writeGet(irLabel, lastIRLabel int) {
	c.write(amd64.CmpR14WithR13())
	c.write(amd64.JnzRel32(0))
	c.makePlaceholder(irLabel, 1)
	c.write(amd64.MovR12ToRDI())
	c.write(amd64.MovR13ToRSI())
	c.callAbsolute(c.addrs.GrowNext)
	c.write(amd64.TestRAXWithRAX())
	c.write(amd64.JzRel32(0))
	c.makePlaceholder(lastIRLabel, 1)
	c.write(amd64.MovRAXToR12())
	c.write(amd64.AddImm32ToR13(runtime.TapeChunkSize))
	c.defLabel(irLabel, 1)
	c.write(amd64.MovRBXToRDI())
	c.callAbsolute(c.addrs.Get)
	c.write(amd64.TestAXWithAX())
	c.write(amd64.JsRel32(0))
	c.makePlaceholder(lastIRLabel, 1)
	c.write(amd64.RorImm8ToAX(8))
	c.write(amd64.MovAXToMemR12R14())
}

func (c *compiler) writeHalt(lastIRLabel int) {
	c.write(amd64.JmpRel32(0))
	c.makePlaceholder(lastIRLabel, 0)
}

func (c *compiler) writeJz(targetIRLabel int) {
	c.write(amd64.MovMemR12R14ToAL())
	c.write(amd64.TestALWithAL())
	c.write(amd64.JzRel32(0))
	c.makePlaceholder(targetIRLabel, 0)
}

func (c *compiler) writeJnz(targetIRLabel int) {
	c.write(amd64.MovMemR12R14ToAL())
	c.write(amd64.TestALWithAL())
	c.write(amd64.JnzRel32(0))
	c.makePlaceholder(targetIRLabel, 0)
}
