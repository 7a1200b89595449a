package vm

// Groups 4-7 (spec.md §4.D.4-7): LDR literal, load/store single item
// with register offset, load/store immediate (word/byte), and
// load/store halfword-immediate / SP-relative word.

// Group 4: `01001xxx` — LDR literal.
// Rd := [align_down(PC+2, 4) + imm8*4]. State.PC() at dispatch time
// already equals the instruction address + 2 (the engine's fetch
// advance); the formula's "+2" is the architectural Thumb PC-read
// quirk (PC always reads as instruction_address+4), so the base is
// align_down(State.PC()+2, 4).
func (s *State) execLDRLiteral(pc uint32, h uint16) error {
	rt := int((h >> 8) & 7)
	imm8 := uint32(h & 0xFF)
	base := (s.PC() + 2) &^ 3
	addr := base + imm8*4

	v, err := s.ReadWord(addr)
	if err != nil {
		return err
	}
	s.SetRegister(rt, v)
	return nil
}

// Group 5: `0101xxxx` — load/store single item, register offset.
// Eight forms selected by bits 11:9. Address is Rn + Rm.
func (s *State) execGroupLoadStoreRegOffset(pc uint32, h uint16) error {
	rm := int((h >> 6) & 7)
	rn := int((h >> 3) & 7)
	rt := int(h & 7)
	addr := s.Register(rn) + s.Register(rm)

	switch (h >> 9) & 7 {
	case 0: // STR
		return s.WriteWord(addr, s.Register(rt))
	case 1: // STRH
		return s.WriteHalf(addr, uint16(s.Register(rt)))
	case 2: // STRB
		return s.WriteByte(addr, uint8(s.Register(rt)))
	case 3: // LDRSB
		v, err := s.ReadByte(addr)
		if err != nil {
			return err
		}
		s.SetRegister(rt, SignExtend(uint32(v), 7))
		return nil
	case 4: // LDR
		v, err := s.ReadWord(addr)
		if err != nil {
			return err
		}
		s.SetRegister(rt, v)
		return nil
	case 5: // LDRH
		v, err := s.ReadHalf(addr)
		if err != nil {
			return err
		}
		s.SetRegister(rt, uint32(v))
		return nil
	case 6: // LDRB
		v, err := s.ReadByte(addr)
		if err != nil {
			return err
		}
		s.SetRegister(rt, uint32(v))
		return nil
	case 7: // LDRSH
		v, err := s.ReadHalf(addr)
		if err != nil {
			return err
		}
		s.SetRegister(rt, SignExtend(uint32(v), 15))
		return nil
	}
	return &DecodeError{Addr: pc, Opcode: uint32(h)}
}

// Group 6: `011xxxxx` — load/store immediate, word or byte.
// Word forms scale the 5-bit immediate by 4; byte forms do not scale.
func (s *State) execGroupLoadStoreImm(pc uint32, h uint16) error {
	bBit := (h >> 12) & 1
	lBit := (h >> 11) & 1
	imm5 := uint32((h >> 6) & 0x1F)
	rn := int((h >> 3) & 7)
	rt := int(h & 7)

	var addr uint32
	if bBit == 0 {
		addr = s.Register(rn) + imm5*4
	} else {
		addr = s.Register(rn) + imm5
	}

	switch {
	case bBit == 0 && lBit == 0: // STR
		return s.WriteWord(addr, s.Register(rt))
	case bBit == 0 && lBit == 1: // LDR
		v, err := s.ReadWord(addr)
		if err != nil {
			return err
		}
		s.SetRegister(rt, v)
		return nil
	case bBit == 1 && lBit == 0: // STRB
		return s.WriteByte(addr, uint8(s.Register(rt)))
	default: // LDRB
		v, err := s.ReadByte(addr)
		if err != nil {
			return err
		}
		s.SetRegister(rt, uint32(v))
		return nil
	}
}

// Group 7: `100xxxxx` — load/store halfword-immediate, and
// SP-relative word. bit12 selects between the two subforms.
func (s *State) execGroupLoadStoreHalfwordSP(pc uint32, h uint16) error {
	if (h>>12)&1 == 0 {
		// Halfword immediate: scaled by 2.
		lBit := (h >> 11) & 1
		imm5 := uint32((h >> 6) & 0x1F)
		rn := int((h >> 3) & 7)
		rt := int(h & 7)
		addr := s.Register(rn) + imm5*2

		if lBit == 0 {
			return s.WriteHalf(addr, uint16(s.Register(rt)))
		}
		v, err := s.ReadHalf(addr)
		if err != nil {
			return err
		}
		s.SetRegister(rt, uint32(v))
		return nil
	}

	// SP-relative word: 8-bit immediate scaled by 4, addressed from SP.
	lBit := (h >> 11) & 1
	rt := int((h >> 8) & 7)
	imm8 := uint32(h & 0xFF)
	addr := s.SP() + imm8*4

	if lBit == 0 {
		return s.WriteWord(addr, s.Register(rt))
	}
	v, err := s.ReadWord(addr)
	if err != nil {
		return err
	}
	s.SetRegister(rt, v)
	return nil
}
