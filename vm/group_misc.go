package vm

import "math/bits"

// Group 10 (spec.md §4.D.10): `1011xxxx` — miscellaneous 16-bit
// instructions. Any unrecognized subform in this block is an error.
func (s *State) execGroupMisc(pc uint32, h uint16) error {
	switch {
	case h&0xFF80 == 0xB000: // ADD SP, #imm7*4
		imm7 := uint32(h & 0x7F)
		s.SetRegister(RegSP, s.SP()+imm7*4)
		return nil

	case h&0xFF80 == 0xB080: // SUB SP, #imm7*4
		imm7 := uint32(h & 0x7F)
		s.SetRegister(RegSP, s.SP()-imm7*4)
		return nil

	case h&0xFFC0 == 0xB200: // SXTH
		rm, rd := extRegs(h)
		s.SetRegister(rd, SignExtend(s.Register(rm)&0xFFFF, 15))
		return nil
	case h&0xFFC0 == 0xB240: // SXTB
		rm, rd := extRegs(h)
		s.SetRegister(rd, SignExtend(s.Register(rm)&0xFF, 7))
		return nil
	case h&0xFFC0 == 0xB280: // UXTH
		rm, rd := extRegs(h)
		s.SetRegister(rd, s.Register(rm)&0xFFFF)
		return nil
	case h&0xFFC0 == 0xB2C0: // UXTB
		rm, rd := extRegs(h)
		s.SetRegister(rd, s.Register(rm)&0xFF)
		return nil

	case h&0xFE00 == 0xB400: // PUSH
		includeLR := (h>>8)&1 != 0
		return s.execPush(uint8(h&0xFF), includeLR)
	case h&0xFE00 == 0xBC00: // POP
		includePC := (h>>8)&1 != 0
		return s.execPop(uint8(h&0xFF), includePC)

	case h&0xFFC0 == 0xBA00: // REV
		rm, rd := extRegs(h)
		s.SetRegister(rd, bits.ReverseBytes32(s.Register(rm)))
		return nil
	case h&0xFFC0 == 0xBA40: // REV16
		rm, rd := extRegs(h)
		x := s.Register(rm)
		lo := bits.ReverseBytes16(uint16(x))
		hi := bits.ReverseBytes16(uint16(x >> 16))
		s.SetRegister(rd, uint32(hi)<<16|uint32(lo))
		return nil
	case h&0xFFC0 == 0xBAC0: // REVSH
		rm, rd := extRegs(h)
		x := uint16(s.Register(rm))
		swapped := x>>8 | x<<8
		s.SetRegister(rd, SignExtend(uint32(swapped), 15))
		return nil

	case h&0xFFE0 == 0xB660: // CPS: decoded and ignored
		return nil

	case h == 0xBF00: // NOP
		return nil
	case h&0xFF00 == 0xBF00: // hint beyond NOP: unsupported
		return &UnsupportedError{Addr: pc, Opcode: uint32(h), Reason: "hint instruction beyond NOP"}

	case h&0xFF00 == 0xBE00: // BKPT: accepted, not acted on
		return nil

	default:
		return &DecodeError{Addr: pc, Opcode: uint32(h)}
	}
}

func extRegs(h uint16) (rm, rd int) {
	return int((h >> 3) & 7), int(h & 7)
}

func (s *State) execPush(list uint8, includeLR bool) error {
	n := bits.OnesCount8(list)
	if includeLR {
		n++
	}
	addr := s.SP() - uint32(n)*4
	newSP := addr

	for i := 0; i < 8; i++ {
		if list&(1<<uint(i)) != 0 {
			if err := s.WriteWord(addr, s.Register(i)); err != nil {
				return err
			}
			addr += 4
		}
	}
	if includeLR {
		if err := s.WriteWord(addr, s.LR()); err != nil {
			return err
		}
	}
	s.SetRegister(RegSP, newSP)
	return nil
}

func (s *State) execPop(list uint8, includePC bool) error {
	addr := s.SP()

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

	if includePC {
		v, err := s.ReadWord(addr)
		if err != nil {
			return err
		}
		addr += 4
		s.SetRegister(RegSP, addr)
		return s.writePC(v)
	}

	s.SetRegister(RegSP, addr)
	return nil
}
