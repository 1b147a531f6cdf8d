// Package vm provides a tree-walking interpreter for BF IR, executing
// either an ir.Program or a serialized.Program against a tape.Tape and an
// I/O pair.
package vm

import (
	"errors"
	"fmt"
	"io"

	"github.com/lcox74/catbf/internal/ir"
	"github.com/lcox74/catbf/internal/serialized"
	"github.com/lcox74/catbf/internal/tape"
)

// RuntimeError is returned when a Machine fails mid-run.
type RuntimeError struct {
	Msg string
	PC  int
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("runtime error at pc %d: %s", e.PC, e.Msg)
}

// Machine drives an ir.Program or serialized.Program against a tape.Tape
// and an I/O pair, constructed via functional options.
type Machine struct {
	tape   tape.Tape
	input  io.Reader
	output io.Writer
	ioBuf  [1]byte
}

// Option configures a Machine.
type Option func(*Machine)

// WithTape overrides the default GrowingTape.
func WithTape(t tape.Tape) Option {
	return func(m *Machine) { m.tape = t }
}

// WithInput sets the input reader. Get fails if none is set.
func WithInput(r io.Reader) Option {
	return func(m *Machine) { m.input = r }
}

// WithOutput sets the output writer. Put fails if none is set.
func WithOutput(w io.Writer) Option {
	return func(m *Machine) { m.output = w }
}

// New creates a Machine. Without WithTape it runs against a fresh
// GrowingTape.
func New(opts ...Option) *Machine {
	m := &Machine{tape: tape.NewGrowingTape()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// get implements the two-cell input convention from spec.md §4.3: on a
// successful read, cells[c]=1, cells[c+1]=byte, cursor stays at c; on
// end-of-stream, cells[c]=0 and the second cell is left untouched.
func (m *Machine) get() error {
	if m.input == nil {
		return errors.New("no input reader configured")
	}
	n, err := m.input.Read(m.ioBuf[:])
	if n > 0 {
		m.tape.SetByte(1)
		m.tape.Next()
		m.tape.SetByte(m.ioBuf[0])
		m.tape.Prev()
		return nil
	}
	if err == io.EOF || err == nil {
		m.tape.SetByte(0)
		return nil
	}
	return err
}

func (m *Machine) put() error {
	if m.output == nil {
		return errors.New("no output writer configured")
	}
	m.ioBuf[0] = m.tape.Byte()
	_, err := m.output.Write(m.ioBuf[:])
	return err
}

// Run executes an ir.Program to completion.
func (m *Machine) Run(p ir.Program) error {
	pc := 0
	for pc < len(p.Code) {
		instr := p.Code[pc]
		switch instr.Kind {
		case ir.Halt:
			return nil
		case ir.Inc:
			m.tape.Inc()
		case ir.Dec:
			m.tape.Dec()
		case ir.Next:
			m.tape.Next()
		case ir.Prev:
			m.tape.Prev()
		case ir.Get:
			if err := m.get(); err != nil {
				return &RuntimeError{Msg: fmt.Sprintf("input error: %v", err), PC: pc}
			}
		case ir.Put:
			if err := m.put(); err != nil {
				return &RuntimeError{Msg: fmt.Sprintf("output error: %v", err), PC: pc}
			}
		case ir.Jz:
			if m.tape.Byte() == 0 {
				pc = instr.Target
				continue
			}
		case ir.Jnz:
			if m.tape.Byte() != 0 {
				pc = instr.Target
				continue
			}
		}
		pc++
	}
	return &RuntimeError{Msg: "label out of bounds", PC: pc}
}

// RunSerialized executes a packed serialized.Program to completion. This is
// the fastest interpreter path: no per-instruction struct dispatch, just a
// byte-offset decode loop.
func (m *Machine) RunSerialized(p serialized.Program) error {
	dec := serialized.NewDecoder(p)
	for {
		pc := dec.IP()
		op, label, err := dec.Decode()
		if err != nil {
			return &RuntimeError{Msg: err.Error(), PC: pc}
		}

		switch op {
		case serialized.OpHalt:
			return nil
		case serialized.OpInc:
			m.tape.Inc()
		case serialized.OpDec:
			m.tape.Dec()
		case serialized.OpNext:
			m.tape.Next()
		case serialized.OpPrev:
			m.tape.Prev()
		case serialized.OpGet:
			if err := m.get(); err != nil {
				return &RuntimeError{Msg: fmt.Sprintf("input error: %v", err), PC: pc}
			}
		case serialized.OpPut:
			if err := m.put(); err != nil {
				return &RuntimeError{Msg: fmt.Sprintf("output error: %v", err), PC: pc}
			}
		case serialized.OpJz:
			if m.tape.Byte() == 0 {
				dec.Jump(label)
			}
		case serialized.OpJnz:
			if m.tape.Byte() != 0 {
				dec.Jump(label)
			}
		}
	}
}
