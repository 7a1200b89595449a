package vm

// Group 8 (spec.md §4.D.8): `10100xxx` — ADR.
// Rd := align_down(PC+2, 4) + imm8*4. No flag update. State.PC() at
// dispatch time already equals the instruction's own address + 2 (the
// engine's fetch advance); the formula's "+2" is the architectural
// Thumb PC-read quirk (PC always reads as instruction_address+4), so
// the base here is align_down(State.PC()+2, 4).
func (s *State) execADR(pc uint32, h uint16) error {
	rd := int((h >> 8) & 7)
	imm8 := uint32(h & 0xFF)
	base := (s.PC() + 2) &^ 3
	s.SetRegister(rd, base+imm8*4)
	return nil
}

// Group 9 (spec.md §4.D.9): `10101xxx` — ADD to SP.
// Rd := SP + imm8*4. No flag update.
func (s *State) execAddToSP(pc uint32, h uint16) error {
	rd := int((h >> 8) & 7)
	imm8 := uint32(h & 0xFF)
	s.SetRegister(rd, s.SP()+imm8*4)
	return nil
}
