package vm

// Memory router: classifies an address into {program, data, service,
// out-of-range} and dispatches reads/writes with alignment checks,
// per spec.md §4.B. Regions must not overlap; membership is
// "addr - base < length" in unsigned arithmetic.

// Classify returns which region addr belongs to.
func (s *State) Classify(addr uint32) RegionKind {
	switch {
	case s.Program.contains(addr):
		return RegionProgram
	case s.Data.contains(addr):
		return RegionData
	case s.Service.contains(addr):
		return RegionService
	default:
		return RegionNone
	}
}

func checkAlignment(addr uint32, width int) error {
	switch width {
	case 1:
		return nil
	case 2:
		if addr&1 != 0 {
			return &AlignmentError{Addr: addr, Width: width}
		}
	case 4:
		if addr&3 != 0 {
			return &AlignmentError{Addr: addr, Width: width}
		}
	}
	return nil
}

// ReadWidth reads a 1, 2, or 4 byte little-endian value at addr,
// dispatching to the owning region. Program reads are always
// delegated to the host callback, never served from a local copy.
func (s *State) ReadWidth(addr uint32, width int) (uint32, error) {
	if err := checkAlignment(addr, width); err != nil {
		return 0, err
	}

	switch s.Classify(addr) {
	case RegionProgram:
		buf := make([]byte, width)
		if err := s.ReadProgramMemory(buf, addr); err != nil {
			return 0, &HostRejectError{Addr: addr, Err: err}
		}
		return decodeLE(buf), nil

	case RegionData:
		off := addr - s.Data.Base
		if off+uint32(width) > s.Data.Length {
			return 0, &BusError{Addr: addr, Count: uint32(width)}
		}
		return decodeLE(s.Data.Data[off : off+uint32(width)]), nil

	case RegionService:
		off := addr - s.Service.Base
		if off+uint32(width) > s.Service.Length {
			return 0, &BusError{Addr: addr, Count: uint32(width)}
		}
		return decodeLE(s.Service.Data[off : off+uint32(width)]), nil

	default:
		return 0, &BusError{Addr: addr, Count: uint32(width)}
	}
}

// WriteWidth writes a 1, 2, or 4 byte little-endian value at addr.
// Only the data region is writable.
func (s *State) WriteWidth(addr uint32, value uint32, width int) error {
	if err := checkAlignment(addr, width); err != nil {
		return err
	}

	if s.Classify(addr) != RegionData {
		return &BusError{Addr: addr, Count: uint32(width), Write: true}
	}

	off := addr - s.Data.Base
	if off+uint32(width) > s.Data.Length {
		return &BusError{Addr: addr, Count: uint32(width), Write: true}
	}
	encodeLE(s.Data.Data[off:off+uint32(width)], value)
	return nil
}

// ReadByte, ReadHalf, ReadWord are narrow convenience wrappers.
func (s *State) ReadByte(addr uint32) (uint8, error) {
	v, err := s.ReadWidth(addr, 1)
	return uint8(v), err
}

func (s *State) ReadHalf(addr uint32) (uint16, error) {
	v, err := s.ReadWidth(addr, 2)
	return uint16(v), err
}

func (s *State) ReadWord(addr uint32) (uint32, error) {
	return s.ReadWidth(addr, 4)
}

func (s *State) WriteByte(addr uint32, v uint8) error {
	return s.WriteWidth(addr, uint32(v), 1)
}

func (s *State) WriteHalf(addr uint32, v uint16) error {
	return s.WriteWidth(addr, uint32(v), 2)
}

func (s *State) WriteWord(addr uint32, v uint32) error {
	return s.WriteWidth(addr, v, 4)
}

func decodeLE(b []byte) uint32 {
	var v uint32
	for i, c := range b {
		v |= uint32(c) << (8 * i)
	}
	return v
}

func encodeLE(b []byte, v uint32) {
	for i := range b {
		b[i] = byte(v >> (8 * i))
	}
}
