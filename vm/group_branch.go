package vm

// Groups 12-13 (spec.md §4.D.12-13): conditional branch / SVC, and
// unconditional branch. State.PC() at dispatch time already equals the
// instruction's own address + 2 (the engine's fetch advance); the
// formula's "+2" is the architectural Thumb PC-read quirk (PC always
// reads as instruction_address+4), so the branch base is
// s.PC() + 2, and the target is that base plus the signed offset.

// Group 12: `1101xxxx` — conditional branch or SVC. Cond 0xE/0xF are
// undefined/SVC and reported as errors (neither is implemented).
func (s *State) execCondBranch(pc uint32, h uint16) error {
	cond := uint32((h >> 8) & 0xF)
	imm8 := uint32(h & 0xFF)

	if cond == 0xE {
		return &DecodeError{Addr: pc, Opcode: uint32(h)}
	}
	if cond == 0xF {
		return &UnsupportedError{Addr: pc, Opcode: uint32(h), Reason: "SVC is not implemented"}
	}

	if !s.ConditionPassed(cond) {
		return nil
	}

	offset := SignExtend(imm8, 7) * 2
	return s.writePC(s.PC() + 2 + offset)
}

// Group 13: `11100xxx` — unconditional branch. 11-bit immediate,
// sign-extended, doubled.
func (s *State) execUncondBranch(pc uint32, h uint16) error {
	imm11 := uint32(h & 0x7FF)
	offset := SignExtend(imm11, 10) * 2
	return s.writePC(s.PC() + 2 + offset)
}
