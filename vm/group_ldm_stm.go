package vm

// Group 11 (spec.md §4.D.11): `1100xxxx` — LDM / STM. Rn is a low
// register; the 8-bit register list is iterated from bit 0 (R0)
// upward. STM writes Rn back through unchanged after increment; LDM
// writes back Rn to the post-increment address unless Rn is present
// in the list (in which case no writeback occurs).
func (s *State) execLDMSTM(pc uint32, h uint16) error {
	load := (h>>11)&1 != 0
	rn := int((h >> 8) & 7)
	list := uint8(h & 0xFF)
	addr := s.Register(rn)

	if load {
		for i := 0; i < 8; i++ {
			if list&(1<<uint(i)) != 0 {
				v, err := s.ReadWord(addr)
				if err != nil {
					return err
				}
				s.SetRegister(i, v)
				addr += 4
			}
		}
		if list&(1<<uint(rn)) == 0 {
			s.SetRegister(rn, addr)
		}
		return nil
	}

	for i := 0; i < 8; i++ {
		if list&(1<<uint(i)) != 0 {
			if err := s.WriteWord(addr, s.Register(i)); err != nil {
				return err
			}
			addr += 4
		}
	}
	s.SetRegister(rn, addr)
	return nil
}
