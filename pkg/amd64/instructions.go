package amd64

// This file contains x86_64 instruction encoders for the register set the
// JIT reserves across runtime calls: rbx (Interface*), r12 (tape base),
// r13 (tape length), r14 (cursor). All four are callee-saved under SysV,
// so the emitted prologue/epilogue push/pop them explicitly.
//
// For details on x86-64 instruction encoding (REX prefixes, ModRM, SIB
// bytes), see: https://wiki.osdev.org/X86-64_Instruction_Encoding

// PushR14, PushR13, PushR12, PushRBX save the callee-saved registers the
// JIT keeps live across runtime calls.
func PushR14() []byte { return []byte{0x41, 0x56} }
func PushR13() []byte { return []byte{0x41, 0x55} }
func PushR12() []byte { return []byte{0x41, 0x54} }
func PushRBX() []byte { return []byte{0x53} }

// PopR14, PopR13, PopR12, PopRBX restore them, in the reverse order they
// were pushed.
func PopR14() []byte { return []byte{0x41, 0x5e} }
func PopR13() []byte { return []byte{0x41, 0x5d} }
func PopR12() []byte { return []byte{0x41, 0x5c} }
func PopRBX() []byte { return []byte{0x5b} }

// MovRDIToRBX encodes: movq %rdi, %rbx (48 89 fb)
// Saves the entry argument (the I/O handle) into rbx for the run's duration.
func MovRDIToRBX() []byte { return []byte{0x48, 0x89, 0xfb} }

// MovR12ToRDI encodes: movq %r12, %rdi (4c 89 e7)
func MovR12ToRDI() []byte { return []byte{0x4c, 0x89, 0xe7} }

// MovR13ToRSI encodes: movq %r13, %rsi (4c 89 ee)
func MovR13ToRSI() []byte { return []byte{0x4c, 0x89, 0xee} }

// MovRAXToR12 encodes: movq %rax, %r12 (49 89 c4)
func MovRAXToR12() []byte { return []byte{0x49, 0x89, 0xc4} }

// MovRBXToRDI encodes: movq %rbx, %rdi (48 89 df)
func MovRBXToRDI() []byte { return []byte{0x48, 0x89, 0xdf} }

// MovAXToSI encodes: movw %ax, %si (66 89 c6)
func MovAXToSI() []byte { return []byte{0x66, 0x89, 0xc6} }

// MovAXToMemR12R14 encodes: movw %ax, (%r12,%r14) (66 43 89 04 34)
// Stores both the flag byte (low byte) and the data byte (high byte) of ax
// in one 16-bit write, placing the flag at the cursor and the data at
// cursor+1.
func MovAXToMemR12R14() []byte { return []byte{0x66, 0x43, 0x89, 0x04, 0x34} }

// MovR14BToAL encodes: movb %r14b, %al (44 88 f0)
func MovR14BToAL() []byte { return []byte{0x44, 0x88, 0xf0} }

// MovMemR12R14ToAL encodes: movb (%r12,%r14), %al (43 8a 04 34)
func MovMemR12R14ToAL() []byte { return []byte{0x43, 0x8a, 0x04, 0x34} }

// MovImm64ToRAX encodes the first two bytes of movabs $imm64, %rax; the
// caller appends the little-endian imm64 itself.
func MovImm64ToRAX() []byte { return []byte{0x48, 0xb8} }

// CmpR14WithR13 encodes: cmpq %r13, %r14 (4d 39 ee)
func CmpR14WithR13() []byte { return []byte{0x4d, 0x39, 0xee} }

// TestR14WithR14 encodes: testq %r14, %r14 (4d 85 f6)
func TestR14WithR14() []byte { return []byte{0x4d, 0x85, 0xf6} }

// TestRAXWithRAX encodes: testq %rax, %rax (48 85 c0)
func TestRAXWithRAX() []byte { return []byte{0x48, 0x85, 0xc0} }

// TestAXWithAX encodes: testw %ax, %ax (66 85 c0)
func TestAXWithAX() []byte { return []byte{0x66, 0x85, 0xc0} }

// TestALWithAL encodes: testb %al, %al (84 c0)
func TestALWithAL() []byte { return []byte{0x84, 0xc0} }

// JmpRel32 encodes: jmp rel32 (e9 <rel32>)
func JmpRel32(rel32 int32) []byte {
	buf := make([]byte, 5)
	buf[0] = 0xe9
	writeLE32(buf[1:], uint32(rel32))
	return buf
}

// JzRel32 encodes: jz rel32 (0f 84 <rel32>). Jump if the zero flag is set.
func JzRel32(rel32 int32) []byte {
	buf := make([]byte, 6)
	buf[0] = 0x0f
	buf[1] = 0x84
	writeLE32(buf[2:], uint32(rel32))
	return buf
}

// JnzRel32 encodes: jnz rel32 (0f 85 <rel32>). Jump if the zero flag is clear.
func JnzRel32(rel32 int32) []byte {
	buf := make([]byte, 6)
	buf[0] = 0x0f
	buf[1] = 0x85
	writeLE32(buf[2:], uint32(rel32))
	return buf
}

// JsRel32 encodes: js rel32 (0f 88 <rel32>). Jump if the sign flag is set.
func JsRel32(rel32 int32) []byte {
	buf := make([]byte, 6)
	buf[0] = 0x0f
	buf[1] = 0x88
	writeLE32(buf[2:], uint32(rel32))
	return buf
}

// CallAbsRAX encodes: call *%rax (ff d0)
func CallAbsRAX() []byte { return []byte{0xff, 0xd0} }

// CallAbsolute produces movabs $funcAddr, %rax; call *%rax: an absolute
// call to a fixed function address, used to invoke the sysv64 runtime
// trampolines whose addresses are known at emission time.
func CallAbsolute(funcAddr uint64) []byte {
	buf := make([]byte, 0, 12)
	buf = append(buf, MovImm64ToRAX()...)
	imm := make([]byte, 8)
	writeLE64(imm, funcAddr)
	buf = append(buf, imm...)
	buf = append(buf, CallAbsRAX()...)
	return buf
}

// XorR14ToR14 encodes: xorq %r14, %r14 (4d 31 f6)
func XorR14ToR14() []byte { return []byte{0x4d, 0x31, 0xf6} }

// XorEAXToEAX encodes: xorl %eax, %eax (31 c0)
func XorEAXToEAX() []byte { return []byte{0x31, 0xc0} }

// XorR14BToR14B encodes: xorb %r14b, %r14b (45 30 f6)
func XorR14BToR14B() []byte { return []byte{0x45, 0x30, 0xf6} }

// MovImm32ToR13 encodes: movq $imm32, %r13 (49 c7 c5 <imm32>)
func MovImm32ToR13(imm32 uint32) []byte {
	buf := make([]byte, 7)
	buf[0] = 0x49
	buf[1] = 0xc7
	buf[2] = 0xc5
	writeLE32(buf[3:], imm32)
	return buf
}

// MovImm8ToR14B encodes: movb $imm8, %r14b (41 b6 <imm8>)
func MovImm8ToR14B(imm8 uint8) []byte {
	return []byte{0x41, 0xb6, imm8}
}

// AddImm32ToR13 encodes: addq $imm32, %r13 (49 81 c5 <imm32>)
func AddImm32ToR13(imm32 uint32) []byte {
	buf := make([]byte, 7)
	buf[0] = 0x49
	buf[1] = 0x81
	buf[2] = 0xc5
	writeLE32(buf[3:], imm32)
	return buf
}

// AddImm32ToR14 encodes: addq $imm32, %r14 (49 81 c6 <imm32>)
func AddImm32ToR14(imm32 uint32) []byte {
	buf := make([]byte, 7)
	buf[0] = 0x49
	buf[1] = 0x81
	buf[2] = 0xc6
	writeLE32(buf[3:], imm32)
	return buf
}

// RorImm8ToAX encodes: rorw $imm8, %ax (66 c1 c8 <imm8>)
func RorImm8ToAX(imm8 uint8) []byte {
	return []byte{0x66, 0xc1, 0xc8, imm8}
}

// IncR14 encodes: incq %r14 (49 ff c6)
func IncR14() []byte { return []byte{0x49, 0xff, 0xc6} }

// DecR14 encodes: decq %r14 (49 ff ce)
func DecR14() []byte { return []byte{0x49, 0xff, 0xce} }

// IncbMemR12R14 encodes: incb (%r12,%r14) (43 fe 04 34)
func IncbMemR12R14() []byte { return []byte{0x43, 0xfe, 0x04, 0x34} }

// DecbMemR12R14 encodes: decb (%r12,%r14) (43 fe 0c 34)
func DecbMemR12R14() []byte { return []byte{0x43, 0xfe, 0x0c, 0x34} }

// Ret encodes: ret (c3)
func Ret() []byte { return []byte{0xc3} }

// PatchRel32 overwrites the 4-byte little-endian rel32 placeholder at
// buf[pos:pos+4] with distance, used once every jump target is known.
func PatchRel32(buf []byte, pos int, distance int32) {
	writeLE32(buf[pos:pos+4], uint32(distance))
}
