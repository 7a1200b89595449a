package vm

// Group 1 (spec.md §4.D.1): `00xxxxxx` — shift-imm, add/sub, and
// move/compare-immediate on R0..R7. Flags are always set for this
// group.
func (s *State) execGroupShiftAddSubImm(pc uint32, h uint16) error {
	switch {
	case h&0xE000 == 0x0000 && h&0x1800 != 0x1800:
		// bits15:13 == 000, bits12:11 != 11: LSL/LSR/ASR immediate
		return s.execShiftImm(h)

	case h&0xFE00 == 0x1800:
		// 0001100: ADD register
		return s.execAddSubReg(h, false)
	case h&0xFE00 == 0x1A00:
		// 0001101: SUB register
		return s.execAddSubReg(h, true)
	case h&0xFE00 == 0x1C00:
		// 0001110: ADD 3-bit immediate
		return s.execAddSubImm3(h, false)
	case h&0xFE00 == 0x1E00:
		// 0001111: SUB 3-bit immediate
		return s.execAddSubImm3(h, true)

	case h&0xF800 == 0x2000:
		return s.execMovImm8(h)
	case h&0xF800 == 0x2800:
		return s.execCmpImm8(h)
	case h&0xF800 == 0x3000:
		return s.execAddImm8(h)
	case h&0xF800 == 0x3800:
		return s.execSubImm8(h)

	default:
		return &DecodeError{Addr: pc, Opcode: uint32(h)}
	}
}

func (s *State) execShiftImm(h uint16) error {
	imm5 := uint((h >> 6) & 0x1F)
	rm := int((h >> 3) & 7)
	rd := int(h & 7)
	x := s.Register(rm)

	var result uint32
	var carry bool
	keepCarry := false
	switch (h >> 11) & 3 {
	case 0: // LSL #0 is a plain MOV: C is left untouched.
		if imm5 == 0 {
			result, keepCarry = x, true
		} else {
			result, carry = LSL_C(x, imm5)
		}
	case 1: // LSR (imm5==0 means LSR #32)
		n := imm5
		if n == 0 {
			n = 32
		}
		result, carry = LSR_C(x, n)
	case 2: // ASR (imm5==0 means ASR #32)
		n := imm5
		if n == 0 {
			n = 32
		}
		result, carry = ASR_C(x, n)
	}

	s.SetRegister(rd, result)
	if keepCarry {
		s.UpdateNZ(result)
	} else {
		s.UpdateNZCV(result, carry, s.flag(FlagV))
	}
	return nil
}

func (s *State) execAddSubReg(h uint16, sub bool) error {
	rm := int((h >> 6) & 7)
	rn := int((h >> 3) & 7)
	rd := int(h & 7)
	a, b := s.Register(rn), s.Register(rm)

	var r uint32
	var c, v bool
	if sub {
		r, c, v = AddWithCarry(a, ^b, true)
	} else {
		r, c, v = AddWithCarry(a, b, false)
	}
	s.SetRegister(rd, r)
	s.UpdateNZCV(r, c, v)
	return nil
}

func (s *State) execAddSubImm3(h uint16, sub bool) error {
	imm3 := uint32((h >> 6) & 7)
	rn := int((h >> 3) & 7)
	rd := int(h & 7)
	a := s.Register(rn)

	var r uint32
	var c, v bool
	if sub {
		r, c, v = AddWithCarry(a, ^imm3, true)
	} else {
		r, c, v = AddWithCarry(a, imm3, false)
	}
	s.SetRegister(rd, r)
	s.UpdateNZCV(r, c, v)
	return nil
}

func (s *State) execMovImm8(h uint16) error {
	rd := int((h >> 8) & 7)
	imm8 := uint32(h & 0xFF)
	s.SetRegister(rd, imm8)
	s.UpdateNZCV(imm8, s.flag(FlagC), s.flag(FlagV))
	return nil
}

func (s *State) execCmpImm8(h uint16) error {
	rn := int((h >> 8) & 7)
	imm8 := uint32(h & 0xFF)
	a := s.Register(rn)
	r, c, v := AddWithCarry(a, ^imm8, true)
	s.UpdateNZCV(r, c, v)
	return nil
}

func (s *State) execAddImm8(h uint16) error {
	rdn := int((h >> 8) & 7)
	imm8 := uint32(h & 0xFF)
	a := s.Register(rdn)
	r, c, v := AddWithCarry(a, imm8, false)
	s.SetRegister(rdn, r)
	s.UpdateNZCV(r, c, v)
	return nil
}

func (s *State) execSubImm8(h uint16) error {
	rdn := int((h >> 8) & 7)
	imm8 := uint32(h & 0xFF)
	a := s.Register(rdn)
	r, c, v := AddWithCarry(a, ^imm8, true)
	s.SetRegister(rdn, r)
	s.UpdateNZCV(r, c, v)
	return nil
}
