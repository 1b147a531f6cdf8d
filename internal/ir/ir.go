// Package ir defines the intermediate representation lowered from BF
// source: a flat instruction sequence with resolved jump targets.
//
// Instructions:
//
//	halt        ; synthesized once, at the end of every program
//	inc         ; cell += 1 (wraps mod 256)
//	dec         ; cell -= 1 (wraps mod 256)
//	next        ; move data pointer forward one cell
//	prev        ; move data pointer back one cell
//	get         ; read one byte of input into the tape
//	put         ; write the current cell to output
//	jz target   ; jump to target if current cell is zero
//	jnz target  ; jump to target if current cell is non-zero
//
// target is an absolute index into the instruction sequence. No run of
// identical instructions is folded: each BF source character lowers to
// exactly one Instruction.
package ir

import (
	"fmt"
	"strings"
)

// Kind identifies the variant of an Instruction.
type Kind int

const (
	Halt Kind = iota
	Inc
	Dec
	Next
	Prev
	Get
	Put
	Jz
	Jnz
)

var kindNames = [...]string{
	Halt: "halt",
	Inc:  "inc",
	Dec:  "dec",
	Next: "next",
	Prev: "prev",
	Get:  "get",
	Put:  "put",
	Jz:   "jz",
	Jnz:  "jnz",
}

func (k Kind) String() string {
	return kindNames[k]
}

// Instruction is one IR instruction. Target is only meaningful for Jz/Jnz.
type Instruction struct {
	Kind   Kind
	Target int
}

// Program is an ordered, immutable sequence of Instructions produced by the
// parser. code[len(code)-1] is always Halt.
type Program struct {
	Code []Instruction
}

// Len returns the number of instructions, including the trailing Halt.
func (p Program) Len() int {
	return len(p.Code)
}

// Dump renders the program as indented disassembly, with a "label_N:" line
// preceding any instruction that is the target of some jump.
func Dump(p Program) string {
	labels := make(map[int]bool)
	for _, instr := range p.Code {
		if instr.Kind == Jz || instr.Kind == Jnz {
			labels[instr.Target] = true
		}
	}

	var out strings.Builder
	for i, instr := range p.Code {
		if labels[i] {
			fmt.Fprintf(&out, "label_%d:\n", i)
		}
		switch instr.Kind {
		case Jz, Jnz:
			fmt.Fprintf(&out, "    %s label_%d\n", instr.Kind, instr.Target)
		default:
			fmt.Fprintf(&out, "    %s\n", instr.Kind)
		}
	}
	return out.String()
}
