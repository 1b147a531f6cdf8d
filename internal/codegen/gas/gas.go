// Package gas renders a lowered BF program as GAS (AT&T syntax) x86_64
// assembly text for ahead-of-time compilation. The emitted main symbol
// expects to be linked against a C translation unit providing
// create_tape, destroy_tape, grow_next, grow_prev, get, and put -- the
// same six-function contract internal/jit calls directly as machine
// addresses, here expressed as ordinary symbolic calls resolved at link
// time.
package gas

import (
	"fmt"
	"strings"

	"github.com/lcox74/catbf/internal/ir"
	"github.com/lcox74/catbf/internal/tape"
)

// Generator renders one ir.Program as assembly text.
type Generator struct {
	code []ir.Instruction
	out  strings.Builder
}

// NewGenerator returns a Generator for p.
func NewGenerator(p ir.Program) *Generator {
	return &Generator{code: p.Code}
}

// Generate produces the complete assembly source, including the label
// preceding every instruction (so Jz/Jnz targets always resolve) and the
// shared failure landing pad that frees the tape and exits 1.
func (g *Generator) Generate() string {
	g.emitHeader()
	g.emitEnter()

	for i, instr := range g.code {
		fmt.Fprintf(&g.out, ".label_%d:\n", i)
		g.emitInstruction(i, instr)
	}
	fmt.Fprintf(&g.out, ".label_%d:\n", len(g.code))

	g.emitLeave()
	return g.out.String()
}

func (g *Generator) emitHeader() {
	fmt.Fprintf(&g.out, ".text\n")
	fmt.Fprintf(&g.out, ".globl main\n")
}

// emitEnter allocates the first tape chunk into r12 (base) / r13 (length)
// and zeroes r14 (cursor), matching internal/jit's register assignment.
func (g *Generator) emitEnter() {
	fmt.Fprintf(&g.out, "main:\n")
	fmt.Fprintf(&g.out, "    push %%rbx\n")
	fmt.Fprintf(&g.out, "    push %%r12\n")
	fmt.Fprintf(&g.out, "    push %%r13\n")
	fmt.Fprintf(&g.out, "    push %%r14\n")
	fmt.Fprintf(&g.out, "    xorq %%r14, %%r14\n")
	fmt.Fprintf(&g.out, "    call create_tape\n")
	fmt.Fprintf(&g.out, "    testq %%rax, %%rax\n")
	fmt.Fprintf(&g.out, "    jz .fail\n")
	fmt.Fprintf(&g.out, "    movq $%d, %%r13\n", tape.ChunkSize)
	fmt.Fprintf(&g.out, "    movq %%rax, %%r12\n")
}

// emitLeave defines .fail (status 1) and .leave (shared epilogue): the
// tape is always destroyed and the callee-saved registers restored on the
// way out, regardless of which path got here.
func (g *Generator) emitLeave() {
	fmt.Fprintf(&g.out, "    xorl %%ebx, %%ebx\n")
	fmt.Fprintf(&g.out, "    jmp .leave\n")
	fmt.Fprintf(&g.out, ".fail:\n")
	fmt.Fprintf(&g.out, "    movl $1, %%ebx\n")
	fmt.Fprintf(&g.out, ".leave:\n")
	fmt.Fprintf(&g.out, "    movq %%r12, %%rdi\n")
	fmt.Fprintf(&g.out, "    call destroy_tape\n")
	fmt.Fprintf(&g.out, "    movl %%ebx, %%eax\n")
	fmt.Fprintf(&g.out, "    pop %%r14\n")
	fmt.Fprintf(&g.out, "    pop %%r13\n")
	fmt.Fprintf(&g.out, "    pop %%r12\n")
	fmt.Fprintf(&g.out, "    pop %%rbx\n")
	fmt.Fprintf(&g.out, "    ret\n")
}

func (g *Generator) emitInstruction(i int, instr ir.Instruction) {
	switch instr.Kind {
	case ir.Halt:
		fmt.Fprintf(&g.out, "    jmp .label_%d\n", len(g.code))
	case ir.Inc:
		fmt.Fprintf(&g.out, "    incb (%%r12,%%r14)\n")
	case ir.Dec:
		fmt.Fprintf(&g.out, "    decb (%%r12,%%r14)\n")
	case ir.Next:
		g.emitNext(i)
	case ir.Prev:
		g.emitPrev(i)
	case ir.Get:
		g.emitGet(i)
	case ir.Put:
		g.emitPut()
	case ir.Jz:
		g.emitBranch("jz", instr.Target)
	case ir.Jnz:
		g.emitBranch("jnz", instr.Target)
	}
}

// emitNext grows the tape forward when the cursor has reached the end of
// the allocated buffer, under the unique label .growed_next_N so every
// Next site gets its own landing pad.
func (g *Generator) emitNext(i int) {
	label := fmt.Sprintf(".growed_next_%d", i)
	fmt.Fprintf(&g.out, "    cmpq %%r13, %%r14\n")
	fmt.Fprintf(&g.out, "    jne %s\n", label)
	fmt.Fprintf(&g.out, "    movq %%r12, %%rdi\n")
	fmt.Fprintf(&g.out, "    movq %%r13, %%rsi\n")
	fmt.Fprintf(&g.out, "    call grow_next\n")
	fmt.Fprintf(&g.out, "    testq %%rax, %%rax\n")
	fmt.Fprintf(&g.out, "    jz .fail\n")
	fmt.Fprintf(&g.out, "    movq %%rax, %%r12\n")
	fmt.Fprintf(&g.out, "    addq $%d, %%r13\n", tape.ChunkSize)
	fmt.Fprintf(&g.out, "%s:\n", label)
	fmt.Fprintf(&g.out, "    incq %%r14\n")
}

// emitPrev mirrors emitNext for the low end, under .growed_prev_N.
func (g *Generator) emitPrev(i int) {
	label := fmt.Sprintf(".growed_prev_%d", i)
	fmt.Fprintf(&g.out, "    testq %%r14, %%r14\n")
	fmt.Fprintf(&g.out, "    jne %s\n", label)
	fmt.Fprintf(&g.out, "    movq %%r12, %%rdi\n")
	fmt.Fprintf(&g.out, "    movq %%r13, %%rsi\n")
	fmt.Fprintf(&g.out, "    call grow_prev\n")
	fmt.Fprintf(&g.out, "    testq %%rax, %%rax\n")
	fmt.Fprintf(&g.out, "    jz .fail\n")
	fmt.Fprintf(&g.out, "    addq $%d, %%r14\n", tape.ChunkSize)
	fmt.Fprintf(&g.out, "    movq %%rax, %%r12\n")
	fmt.Fprintf(&g.out, "    addq $%d, %%r13\n", tape.ChunkSize)
	fmt.Fprintf(&g.out, "%s:\n", label)
	fmt.Fprintf(&g.out, "    decq %%r14\n")
}

// emitGet reads one byte from stdin via the get() runtime call, growing
// the tape forward first to make room for the two-cell convention's data
// byte. The landing pad is .get_growed_next_N, distinct from a plain
// Next's .growed_next_N at the same ir index.
func (g *Generator) emitGet(i int) {
	label := fmt.Sprintf(".get_growed_next_%d", i)
	fmt.Fprintf(&g.out, "    cmpq %%r13, %%r14\n")
	fmt.Fprintf(&g.out, "    jne %s\n", label)
	fmt.Fprintf(&g.out, "    movq %%r12, %%rdi\n")
	fmt.Fprintf(&g.out, "    movq %%r13, %%rsi\n")
	fmt.Fprintf(&g.out, "    call grow_next\n")
	fmt.Fprintf(&g.out, "    testq %%rax, %%rax\n")
	fmt.Fprintf(&g.out, "    jz .fail\n")
	fmt.Fprintf(&g.out, "    movq %%rax, %%r12\n")
	fmt.Fprintf(&g.out, "    addq $%d, %%r13\n", tape.ChunkSize)
	fmt.Fprintf(&g.out, "%s:\n", label)
	fmt.Fprintf(&g.out, "    call get\n")
	fmt.Fprintf(&g.out, "    testw %%ax, %%ax\n")
	fmt.Fprintf(&g.out, "    js .fail\n")
	fmt.Fprintf(&g.out, "    rorw $8, %%ax\n")
	fmt.Fprintf(&g.out, "    movw %%ax, (%%r12,%%r14)\n")
}

func (g *Generator) emitPut() {
	fmt.Fprintf(&g.out, "    movzbl (%%r12,%%r14), %%edi\n")
	fmt.Fprintf(&g.out, "    call put\n")
	fmt.Fprintf(&g.out, "    testb %%al, %%al\n")
	fmt.Fprintf(&g.out, "    js .fail\n")
}

func (g *Generator) emitBranch(op string, target int) {
	fmt.Fprintf(&g.out, "    movb (%%r12,%%r14), %%al\n")
	fmt.Fprintf(&g.out, "    testb %%al, %%al\n")
	fmt.Fprintf(&g.out, "    %s .label_%d\n", op, target)
}
