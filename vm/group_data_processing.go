package vm

// Group 2 (spec.md §4.D.2): `010000xx` — data processing on low
// registers. Sixteen operations selected by bits 9..6. ADC/SBC use the
// current C; MUL sets only N,Z; TST/CMP/CMN discard the result.
// Shift-register operations with Rm == 0 follow the zero-count rule:
// for shift amount 0, destination equals source and C is unchanged.
func (s *State) execGroupDataProcessing(pc uint32, h uint16) error {
	op := (h >> 6) & 0xF
	rm := int((h >> 3) & 7)
	rdn := int(h & 7)
	a := s.Register(rdn)
	b := s.Register(rm)

	switch op {
	case 0x0: // AND
		r := a & b
		s.SetRegister(rdn, r)
		s.UpdateNZ(r)
	case 0x1: // EOR
		r := a ^ b
		s.SetRegister(rdn, r)
		s.UpdateNZ(r)
	case 0x2: // LSL (register): shift amount is low byte of Rm
		n := uint(b & 0xFF)
		r, c := shiftRegLSL(a, n)
		s.SetRegister(rdn, r)
		s.updateNZC(r, n, c)
	case 0x3: // LSR (register)
		n := uint(b & 0xFF)
		r, c := shiftRegLSR(a, n)
		s.SetRegister(rdn, r)
		s.updateNZC(r, n, c)
	case 0x4: // ASR (register)
		n := uint(b & 0xFF)
		r, c := shiftRegASR(a, n)
		s.SetRegister(rdn, r)
		s.updateNZC(r, n, c)
	case 0x5: // ADC
		r, c, v := AddWithCarry(a, b, s.flag(FlagC))
		s.SetRegister(rdn, r)
		s.UpdateNZCV(r, c, v)
	case 0x6: // SBC
		r, c, v := AddWithCarry(a, ^b, s.flag(FlagC))
		s.SetRegister(rdn, r)
		s.UpdateNZCV(r, c, v)
	case 0x7: // ROR (register)
		n := uint(b & 0xFF)
		r, c := shiftRegROR(a, n)
		s.SetRegister(rdn, r)
		s.updateNZC(r, n, c)
	case 0x8: // TST
		r := a & b
		s.UpdateNZ(r)
	case 0x9: // RSB #0 (NEG)
		r, c, v := AddWithCarry(^b, 0, true)
		s.SetRegister(rdn, r)
		s.UpdateNZCV(r, c, v)
	case 0xA: // CMP
		r, c, v := AddWithCarry(a, ^b, true)
		s.UpdateNZCV(r, c, v)
	case 0xB: // CMN
		r, c, v := AddWithCarry(a, b, false)
		s.UpdateNZCV(r, c, v)
	case 0xC: // ORR
		r := a | b
		s.SetRegister(rdn, r)
		s.UpdateNZ(r)
	case 0xD: // MUL
		r := a * b
		s.SetRegister(rdn, r)
		s.UpdateNZ(r)
	case 0xE: // BIC
		r := a &^ b
		s.SetRegister(rdn, r)
		s.UpdateNZ(r)
	case 0xF: // MVN
		r := ^b
		s.SetRegister(rdn, r)
		s.UpdateNZ(r)
	default:
		return &DecodeError{Addr: pc, Opcode: uint32(h)}
	}
	return nil
}

// updateNZC applies the "shift count 0 leaves C unchanged" rule
// (spec.md §8 property 5): when n==0, N/Z are set from the unshifted
// value and C is left alone.
func (s *State) updateNZC(r uint32, n uint, c bool) {
	if n == 0 {
		s.UpdateNZ(r)
		return
	}
	s.UpdateNZCV(r, c, s.flag(FlagV))
}

func shiftRegLSL(x uint32, n uint) (uint32, bool) {
	if n == 0 {
		return x, false
	}
	return LSL_C(x, n)
}

func shiftRegLSR(x uint32, n uint) (uint32, bool) {
	if n == 0 {
		return x, false
	}
	return LSR_C(x, n)
}

func shiftRegASR(x uint32, n uint) (uint32, bool) {
	if n == 0 {
		return x, false
	}
	return ASR_C(x, n)
}

func shiftRegROR(x uint32, n uint) (uint32, bool) {
	if n == 0 {
		return x, false
	}
	return ROR_C(x, n)
}
