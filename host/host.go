// Package host demonstrates embedding the vm engine the way the
// LPC1114 plugin loader does: lay out program/data/service memory,
// implement the two vm callbacks, and expose a service_api function
// table to plugins at a fixed address. Grounded on
// original_source/examples/lpc1114.c and original_source/src/plugin_api.h.
package host

import (
	"fmt"

	"github.com/pluginhost/thumbvm/vm"
)

// Service function slots, matching struct service_api's field order in
// plugin_api.h (version_major, version_minor, function_count, then
// seven function pointers). Each slot after the header occupies one
// word; the word's value is a trap address a plugin "calls" that
// ExampleHost's FunctionCall callback recognizes and dispatches to Go.
const (
	slotGetUptime = iota
	slotDebugWriteLine
	slotDebugWriteLineHex32
	slotWriteScreen
	slotWriteScreenDecimal
	slotWriteI2C
	slotReadI2C
	slotCount
)

const serviceHeaderSize = 4 // version_major, version_minor, function_count

// ServiceAPI is the host's simulated service_api table: a clock, a
// captured debug-log sink, and a simulated screen/I2C surface. It is
// deliberately minimal — there is no real hardware behind WriteI2C and
// ReadI2C, only enough behavior to let a plugin test exercise them.
type ServiceAPI struct {
	base     uint32
	uptimeMs uint32

	DebugLog []string
	Screen   map[[2]uint32]string
	I2C      map[uint32][]byte
}

// NewServiceAPI creates a service table addressed at base (the
// service-region base address, conventionally 0x300) with an initial
// simulated uptime, matching lpc1114.c's uptime_ms = 1000 seed.
func NewServiceAPI(base uint32) *ServiceAPI {
	return &ServiceAPI{
		base:     base,
		uptimeMs: 1000,
		Screen:   make(map[[2]uint32]string),
		I2C:      make(map[uint32][]byte),
	}
}

// slotAddress returns the trap address written into the function
// pointer field for the given slot: base + header + slot*4.
func (a *ServiceAPI) slotAddress(slot int) uint32 {
	return a.base + serviceHeaderSize + uint32(slot)*4
}

// Encode writes this table's byte image (header plus function pointer
// slots) in little-endian order, the layout a plugin's linker script
// expects at SERVICE_API_ADDRESS.
func (a *ServiceAPI) Encode() []byte {
	buf := make([]byte, serviceHeaderSize+slotCount*4)
	buf[0] = 1 // version_major
	buf[1] = 0 // version_minor
	buf[2] = byte(slotCount)
	buf[3] = byte(slotCount >> 8)
	for slot := 0; slot < slotCount; slot++ {
		off := serviceHeaderSize + slot*4
		addr := a.slotAddress(slot)
		buf[off] = byte(addr)
		buf[off+1] = byte(addr >> 8)
		buf[off+2] = byte(addr >> 16)
		buf[off+3] = byte(addr >> 24)
	}
	return buf
}

// Dispatch handles a function call trapped to one of this table's
// slot addresses. It returns whether target is one of the slots, and
// any error raised while servicing it. Each routine reads its
// arguments from the argument registers and writes any result to R0
// itself; the caller (ExampleHost.FunctionCall) only reports the call
// as handled, and the engine then resumes at LR.
func (a *ServiceAPI) Dispatch(s *vm.State, target uint32) (bool, error) {
	for slot := 0; slot < slotCount; slot++ {
		if target != a.slotAddress(slot) {
			continue
		}
		switch slot {
		case slotGetUptime:
			a.uptimeMs += 16
			s.SetRegister(0, a.uptimeMs)

		case slotDebugWriteLine:
			str, err := a.readString(s, s.Register(0), uint16(s.Register(1)))
			if err != nil {
				return true, err
			}
			a.DebugLog = append(a.DebugLog, str)

		case slotDebugWriteLineHex32:
			str, err := a.readString(s, s.Register(0), uint16(s.Register(1)))
			if err != nil {
				return true, err
			}
			a.DebugLog = append(a.DebugLog, fmt.Sprintf("%s 0x%X", str, s.Register(2)))

		case slotWriteScreen:
			yx := s.Register(0)
			str, err := a.readString(s, s.Register(1), uint16(s.Register(2)))
			if err != nil {
				return true, err
			}
			a.Screen[[2]uint32{yx >> 16, yx & 0xFFFF}] = str

		case slotWriteScreenDecimal:
			yx := s.Register(0)
			a.Screen[[2]uint32{yx >> 16, yx & 0xFFFF}] = fmt.Sprintf("%d", int32(s.Register(1)))

		case slotWriteI2C:
			addrPageReg := s.Register(0)
			n := s.Register(2)
			data := make([]byte, n)
			for i := uint32(0); i < n; i++ {
				b, err := s.ReadByte(s.Register(1) + i)
				if err != nil {
					return true, err
				}
				data[i] = b
			}
			a.I2C[addrPageReg] = data
			s.SetRegister(0, 0)

		case slotReadI2C:
			addrPageReg := s.Register(1)
			data := a.I2C[addrPageReg]
			n := s.Register(2)
			for i := uint32(0); i < n && int(i) < len(data); i++ {
				if err := s.WriteByte(s.Register(0)+i, data[i]); err != nil {
					return true, err
				}
			}
			s.SetRegister(0, 0)
		}
		return true, nil
	}
	return false, nil
}

func (a *ServiceAPI) readString(s *vm.State, addr uint32, length uint16) (string, error) {
	buf := make([]byte, length)
	for i := range buf {
		b, err := s.ReadByte(addr + uint32(i))
		if err != nil {
			return "", fmt.Errorf("reading debug string: %w", err)
		}
		buf[i] = b
	}
	return string(buf), nil
}

// PluginHeader mirrors struct plugin_api from plugin_api.h: the
// fixed-layout header every plugin image places at PLUGIN_API_ADDRESS.
type PluginHeader struct {
	VersionMajor   uint8
	VersionMinor   uint8
	FunctionCount  uint16
	RequiredMemory uint32
	ProgramAddress uint32
	DataAddress    uint32
	InitOffset     uint32 // offset of Init, relative to ProgramAddress
}

// DecodePluginHeader parses a plugin_api struct from its packed
// little-endian byte image.
func DecodePluginHeader(buf []byte) (PluginHeader, error) {
	if len(buf) < 20 {
		return PluginHeader{}, fmt.Errorf("host: plugin header too short: %d bytes", len(buf))
	}
	le32 := func(off int) uint32 {
		return uint32(buf[off]) | uint32(buf[off+1])<<8 | uint32(buf[off+2])<<16 | uint32(buf[off+3])<<24
	}
	return PluginHeader{
		VersionMajor:   buf[0],
		VersionMinor:   buf[1],
		FunctionCount:  uint16(buf[2]) | uint16(buf[3])<<8,
		RequiredMemory: le32(4),
		ProgramAddress: le32(8),
		DataAddress:    le32(12),
		InitOffset:     le32(16),
	}, nil
}

// ExampleHost wires a vm.State's two callbacks to an in-memory program
// image and a ServiceAPI, the minimal embedding shown in lpc1114.c:
// program reads are served from a byte slice, and any call leaving
// program memory is checked against the service table.
type ExampleHost struct {
	Program []byte
	Service *ServiceAPI
	Verbose bool
}

// NewExampleHost creates a host serving program out of a fixed-size
// in-memory buffer and dispatching service calls through api.
func NewExampleHost(program []byte, api *ServiceAPI) *ExampleHost {
	return &ExampleHost{Program: program, Service: api}
}

// ReadProgramMemory implements vm.ReadProgramMemoryFunc by copying out
// of the in-memory program image, offset by the program base the
// caller configured on the State.
func (h *ExampleHost) ReadProgramMemory(programBase uint32) vm.ReadProgramMemoryFunc {
	return func(buf []byte, addr uint32) error {
		off := addr - programBase
		if int(off)+len(buf) > len(h.Program) {
			return fmt.Errorf("host: read past end of program image at 0x%X", addr)
		}
		copy(buf, h.Program[off:int(off)+len(buf)])
		return nil
	}
}

// FunctionCall implements vm.FunctionCallFunc: it tries the service
// table first, and otherwise rejects the call (no extended memory or
// other callees exist in this example, mirroring debug.c's
// arm_emulator_callback_functioncall stub).
func (h *ExampleHost) FunctionCall(s *vm.State, target uint32) bool {
	handled, err := h.Service.Dispatch(s, target)
	if err != nil {
		s.LastError = err
		return false
	}
	if handled && h.Verbose {
		h.Service.DebugLog = append(h.Service.DebugLog, fmt.Sprintf("(call trapped at 0x%X)", target))
	}
	return handled
}
