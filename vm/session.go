package vm

// Session API, spec.md §4.F. Configure wires the three memory regions
// and the host callbacks once; StartCall seeds a fresh invocation;
// Step runs the decode loop under an instruction budget; ReturnValue
// reads the result back out. A *State doubles as the session handle —
// there is no separate session type, matching the engine's "no
// persisted state beyond the register/memory model" design.

// Configure installs the three memory regions, zeros the data region,
// and resets all registers and flags.
func (s *State) Configure(program, data, service MemoryRegion) {
	s.Program = program
	s.Data = data
	s.Service = service

	for i := range s.Data.Data {
		s.Data.Data[i] = 0
	}

	s.R = [16]uint32{}
	s.Flags = 0
	s.LastError = nil
}

// StartCall zeros the registers, sets SP to the top of the data
// region, LR to the sentinel return address, PC to entry with its low
// bit cleared, and copies up to four argument words into R0..R3.
func (s *State) StartCall(entry uint32, args ...uint32) {
	s.R = [16]uint32{}
	s.SetRegister(RegSP, s.Data.Base+s.Data.Length)
	s.SetRegister(RegLR, SentinelReturnAddress)
	s.SetRegister(RegPC, entry)

	for i := 0; i < len(args) && i < 4; i++ {
		s.SetRegister(i, args[i])
	}
}

// Step decodes and executes up to n instructions. It returns
// StepRunning if the budget was exhausted while still running,
// StepReturned if the sentinel return address was reached, or
// StepError if an instruction faulted (the failure is also recorded
// in s.LastError).
func (s *State) Step(n int) StepResult {
	for i := 0; i < n; i++ {
		err := s.stepOnce()
		if err == nil {
			continue
		}
		if err == errReturned {
			return StepReturned
		}
		s.LastError = err
		return StepError
	}
	return StepRunning
}

// ReturnValue reads R0, the function's result register.
func (s *State) ReturnValue() uint32 {
	return s.Register(0)
}
