package vm

// Group 14 (spec.md §4.D.14): 32-bit Thumb. Reached from stepOnce when
// the first halfword matches the `11110xxx` prefix (h1&0xF800==0xF000).
// The only fully supported family is BL; MSR/MRS (APSR only) and
// DSB/DMB/ISB are recognized and otherwise inert. Every other 32-bit
// form is reported as unsupported.
func (s *State) exec32(pc uint32, h1 uint16) error {
	h2, err := s.fetchHalf(pc + 2)
	if err != nil {
		return err
	}
	// Advance PC past both halfwords before computing anything
	// PC-relative; State.PC() now equals pc+4.
	s.SetRegister(RegPC, pc+4)

	switch {
	case h2&0xC000 == 0xC000:
		return s.execBL(pc, h1, h2)

	case h1&0xFFF0 == 0xF380 && h2 == 0x8800:
		return s.execMSR(h1, h2)

	case h1 == 0xF3EF && h2&0xF0FF == 0x8000:
		return s.execMRS(h2)

	case h1 == 0xF3BF && (h2 == 0x8F4F || h2 == 0x8F5F || h2 == 0x8F6F):
		// DSB, DMB, ISB: recognized, no effect.
		return nil

	default:
		return &UnsupportedError{Addr: pc, Opcode: uint32(h1)<<16 | uint32(h2), Reason: "unsupported 32-bit Thumb encoding"}
	}
}

// execBL implements the ARMv6-M S/J1/J2 bit rearrangement:
//
//	imm24 = (S<<24) | (~(J1^S)<<23) | (~(J2^S)<<22) | (imm10<<12) | (imm11<<1)
//
// LR is set to the instruction-after-BL address (PC after advancing
// past both halfwords, i.e. s.PC()) with the low bit set; the new PC
// is that same base plus the sign-extended immediate.
func (s *State) execBL(pc uint32, h1, h2 uint16) error {
	s1 := uint32((h1 >> 10) & 1)
	imm10 := uint32(h1 & 0x3FF)
	j1 := uint32((h2 >> 13) & 1)
	j2 := uint32((h2 >> 11) & 1)
	imm11 := uint32(h2 & 0x7FF)

	i1 := 1 - (j1 ^ s1)
	i2 := 1 - (j2 ^ s1)

	imm24 := (s1 << 24) | (i1 << 23) | (i2 << 22) | (imm10 << 12) | (imm11 << 1)
	offset := SignExtend(imm24, 24)

	base := s.PC()
	s.SetRegister(RegLR, base|1)
	return s.writePC(base + offset)
}

// execMSR writes the top nibble of Rn into the flag word; all other
// bits of MSR's destination (the control/mask fields ARMv6-M defines
// beyond APSR_nzcvq) are out of scope.
func (s *State) execMSR(h1, h2 uint16) error {
	rn := int(h1 & 0xF)
	v := s.Register(rn)
	s.Flags = (s.Flags &^ 0xF0000000) | (v & 0xF0000000)
	return nil
}

// execMRS reads the flag word's top nibble into Rd; the remaining
// APSR bits this host never sets are read back as zero.
func (s *State) execMRS(h2 uint16) error {
	rd := int((h2 >> 8) & 0xF)
	s.SetRegister(rd, s.Flags&0xF0000000)
	return nil
}
