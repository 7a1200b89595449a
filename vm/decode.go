package vm

// Decoder + executor, spec.md §4.D. One call to stepOnce fetches a
// halfword at PC, advances PC by 2 (4 for the 32-bit BL form before
// dispatch adjusts it further), classifies it by a cascade of
// high-bit masks, and dispatches to the operation.

// fetchHalf fetches the halfword at addr without side effects on PC.
func (s *State) fetchHalf(addr uint32) (uint16, error) {
	return s.ReadHalf(addr)
}

// stepOnce executes exactly one instruction (two halfwords for BL).
// It returns errFunctionReturned when the sentinel return address is
// reached via the control-flow boundary.
func (s *State) stepOnce() error {
	pc := s.PC()
	h1, err := s.fetchHalf(pc)
	if err != nil {
		s.diagFail(pc, uint32(h1), err)
		return err
	}

	// Advance PC past the first halfword before dispatch; individual
	// handlers that write PC explicitly (branches) overwrite it.
	s.SetRegister(RegPC, pc+2)

	if h1&0xF800 == 0xF000 {
		// 32-bit Thumb prefix (bits15:11 == 0b11110): fetch the
		// second halfword and dispatch to the BL/MSR/MRS/barrier forms.
		err := s.exec32(pc, h1)
		if err != nil {
			s.diagFail(pc, uint32(h1), err)
		}
		return err
	}

	if err := s.exec16(pc, h1); err != nil {
		s.diagFail(pc, uint32(h1), err)
		return err
	}
	return nil
}

func (s *State) diagFail(addr uint32, opcode uint32, err error) {
	s.Diagnostics.Printf("thumb fault at 0x%08X: opcode=0x%04X: %v", addr, opcode, err)
}

// exec16 classifies and dispatches a 16-bit instruction. pc is the
// address the halfword was fetched from (PC has already been
// advanced by 2 in the State).
func (s *State) exec16(pc uint32, h uint16) error {
	switch {
	case h&0xC000 == 0x0000:
		// 00xxxxxx: shift-imm, add/sub, move/compare-imm
		return s.execGroupShiftAddSubImm(pc, h)

	case h&0xFC00 == 0x4000:
		// 010000xx: data processing, low registers
		return s.execGroupDataProcessing(pc, h)

	case h&0xFC00 == 0x4400:
		// 010001xx: special data & branch exchange
		return s.execGroupSpecialData(pc, h)

	case h&0xF800 == 0x4800:
		// 01001xxx: LDR literal
		return s.execLDRLiteral(pc, h)

	case h&0xF000 == 0x5000:
		// 0101xxxx: load/store single item, register offset
		return s.execGroupLoadStoreRegOffset(pc, h)

	case h&0xE000 == 0x6000:
		// 011xxxxx: load/store immediate, word/byte
		return s.execGroupLoadStoreImm(pc, h)

	case h&0xE000 == 0x8000:
		// 100xxxxx: load/store halfword-imm, SP-relative word
		return s.execGroupLoadStoreHalfwordSP(pc, h)

	case h&0xF800 == 0xA000:
		// 10100xxx: ADR
		return s.execADR(pc, h)

	case h&0xF800 == 0xA800:
		// 10101xxx: ADD to SP
		return s.execAddToSP(pc, h)

	case h&0xF000 == 0xB000:
		// 1011xxxx: miscellaneous 16-bit
		return s.execGroupMisc(pc, h)

	case h&0xF000 == 0xC000:
		// 1100xxxx: LDM/STM
		return s.execLDMSTM(pc, h)

	case h&0xF000 == 0xD000:
		// 1101xxxx: conditional branch or SVC
		return s.execCondBranch(pc, h)

	case h&0xF800 == 0xE000:
		// 11100xxx: unconditional branch
		return s.execUncondBranch(pc, h)

	default:
		return &DecodeError{Addr: pc, Opcode: uint32(h)}
	}
}
