package vm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pluginhost/thumbvm/vm"
)

// Data-region bounds mirror the stack-bounds coverage style: a table
// of addresses inside/outside [Base, Base+Length), asserting both the
// success and failure paths through ReadWidth/WriteWidth.

func TestState_DataRegion_ValidRange(t *testing.T) {
	s := newBareState()

	tests := []struct {
		name string
		addr uint32
	}{
		{"region start", 0x20000000},
		{"region middle", 0x20000000 + 0x80},
		{"last valid word", 0x20000000 + 0x100 - 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.WriteWord(tt.addr, 0xCAFEBABE)
			require.NoError(t, err, "write inside the data region should not error")

			got, err := s.ReadWord(tt.addr)
			require.NoError(t, err, "read inside the data region should not error")
			assert.Equal(t, uint32(0xCAFEBABE), got)
		})
	}
}

func TestState_DataRegion_OutOfBounds(t *testing.T) {
	s := newBareState()

	tests := []struct {
		name string
		addr uint32
	}{
		{"one word past the end", 0x20000000 + 0x100},
		{"far past the end", 0x20000000 + 0x10000},
		{"below the region", 0x1FFFFFFC},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.ReadWord(tt.addr)
			require.Error(t, err, "read outside the data region should error")
			assert.IsType(t, &vm.BusError{}, err)
		})
	}
}

func TestState_ProgramRegion_NotWritable(t *testing.T) {
	s := newBareState()

	err := s.WriteByte(0x6000, 0x42)
	require.Error(t, err, "program region is read-only")
	assert.IsType(t, &vm.BusError{}, err)
}
