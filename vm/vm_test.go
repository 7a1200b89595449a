package vm_test

import (
	"encoding/binary"

	"github.com/pluginhost/thumbvm/vm"
)

// newTestState builds a State whose program region is backed by a
// plain byte slice (via a closure-based ReadProgramMemoryFunc) and
// whose data region is a scratch buffer, sized generously for
// PUSH/POP/LDM/STM scenarios that touch a handful of stack slots.
func newTestState(code []byte) *vm.State {
	const progBase = 0x6000
	const dataBase = 0x20000000
	const dataLen = 0x1000

	s := vm.New()
	s.Configure(
		vm.MemoryRegion{Base: progBase, Length: uint32(len(code))},
		vm.MemoryRegion{Base: dataBase, Length: dataLen, Data: make([]byte, dataLen)},
		vm.MemoryRegion{},
	)
	s.ReadProgramMemory = func(buf []byte, addr uint32) error {
		off := addr - progBase
		copy(buf, code[off:off+uint32(len(buf))])
		return nil
	}
	s.SetRegister(vm.RegPC, progBase)
	return s
}

// putHalf encodes a little-endian halfword into code at offset off.
func putHalf(code []byte, off int, h uint16) {
	binary.LittleEndian.PutUint16(code[off:], h)
}

func putWord(code []byte, off int, w uint32) {
	binary.LittleEndian.PutUint32(code[off:], w)
}
