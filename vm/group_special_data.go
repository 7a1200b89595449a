package vm

// Group 3 (spec.md §4.D.3): `010001xx` — special data processing and
// branch exchange over the full register set (including SP, LR, PC).
// ADD/MOV never update flags here; CMP always does. A destination of
// PC routes the result through the PC-write path (writePC) instead of
// a plain register write.
func (s *State) execGroupSpecialData(pc uint32, h uint16) error {
	op := (h >> 8) & 3
	dBit := (h >> 7) & 1
	rm := int((h >> 3) & 0xF)
	rdn := int((h & 7) | (dBit << 3))

	switch op {
	case 0: // ADD (T2)
		r := s.Register(rdn) + s.Register(rm)
		if rdn == RegPC {
			return s.writePC(r)
		}
		s.SetRegister(rdn, r)
		return nil

	case 1: // CMP (T2) - always sets flags
		a, b := s.Register(rdn), s.Register(rm)
		r, c, v := AddWithCarry(a, ^b, true)
		s.UpdateNZCV(r, c, v)
		return nil

	case 2: // MOV (T1)
		r := s.Register(rm)
		if rdn == RegPC {
			return s.writePC(r)
		}
		s.SetRegister(rdn, r)
		return nil

	case 3: // BX / BLX (register)
		if dBit == 0 {
			// BX Rm: PC as source is unpredictable and rejected.
			if rm == RegPC {
				return &UnsupportedError{Addr: pc, Opcode: uint32(h), Reason: "BX PC is unpredictable"}
			}
			return s.writePC(s.Register(rm))
		}
		// BLX Rm
		if rm == RegPC {
			return &UnsupportedError{Addr: pc, Opcode: uint32(h), Reason: "BLX PC is unpredictable"}
		}
		target := s.Register(rm)
		s.SetRegister(RegLR, s.PC()|1)
		return s.writePC(target)
	}
	return &DecodeError{Addr: pc, Opcode: uint32(h)}
}
