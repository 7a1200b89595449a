package vm_test

import (
	"testing"

	"github.com/pluginhost/thumbvm/vm"
)

func TestSignExtend(t *testing.T) {
	cases := []struct {
		x    uint32
		bit  uint
		want uint32
	}{
		{0x7F, 7, 0x7F},
		{0x80, 7, 0xFFFFFF80},
		{0x3FF, 10, 0x3FF},
		{0x400, 10, 0xFFFFFC00},
	}
	for _, c := range cases {
		if got := vm.SignExtend(c.x, c.bit); got != c.want {
			t.Errorf("SignExtend(0x%X, %d) = 0x%08X, want 0x%08X", c.x, c.bit, got, c.want)
		}
	}
}

func TestAddWithCarry_NoOverflow(t *testing.T) {
	r, c, v := vm.AddWithCarry(1, 1, false)
	if r != 2 || c || v {
		t.Errorf("AddWithCarry(1,1,false) = (0x%X, %v, %v), want (2, false, false)", r, c, v)
	}
}

func TestAddWithCarry_UnsignedOverflowSetsCarry(t *testing.T) {
	r, c, v := vm.AddWithCarry(0xFFFFFFFF, 1, false)
	if r != 0 || !c || v {
		t.Errorf("AddWithCarry(max,1,false) = (0x%X, %v, %v), want (0, true, false)", r, c, v)
	}
}

func TestAddWithCarry_SignedOverflowSetsV(t *testing.T) {
	// Two large positive int32 operands overflowing into a negative result.
	r, c, v := vm.AddWithCarry(0x7FFFFFFF, 1, false)
	if r != 0x80000000 || c || !v {
		t.Errorf("AddWithCarry(0x7FFFFFFF,1,false) = (0x%X, %v, %v), want (0x80000000, false, true)", r, c, v)
	}
}

func TestAddWithCarry_SubtractionViaInvertAndCarryIn(t *testing.T) {
	// a - b is a + ^b + 1.
	r, c, v := vm.AddWithCarry(5, ^uint32(3), true)
	if r != 2 || !c || v {
		t.Errorf("5-3 via AddWithCarry = (0x%X, %v, %v), want (2, true, false)", r, c, v)
	}
}

func TestLSL_C(t *testing.T) {
	if r, c := vm.LSL_C(0x1, 31); r != 0x80000000 || c {
		t.Errorf("LSL_C(1,31) = (0x%X, %v), want (0x80000000, false)", r, c)
	}
	if r, c := vm.LSL_C(0x1, 32); r != 0 || !c {
		t.Errorf("LSL_C(1,32) = (0x%X, %v), want (0, true)", r, c)
	}
}

func TestLSR_C(t *testing.T) {
	if r, c := vm.LSR_C(0x80000000, 1); r != 0x40000000 || c {
		t.Errorf("LSR_C(0x80000000,1) = (0x%X, %v), want (0x40000000, false)", r, c)
	}
	if r, c := vm.LSR_C(0x80000000, 32); r != 0 || !c {
		t.Errorf("LSR_C(0x80000000,32) = (0x%X, %v), want (0, true)", r, c)
	}
}

func TestASR_C_SignPreserving(t *testing.T) {
	if r, c := vm.ASR_C(0x80000000, 4); r != 0xF8000000 || c {
		t.Errorf("ASR_C(0x80000000,4) = (0x%X, %v), want (0xF8000000, false)", r, c)
	}
	if r, c := vm.ASR_C(0x80000000, 40); r != 0xFFFFFFFF || !c {
		t.Errorf("ASR_C(0x80000000,40) = (0x%X, %v), want (0xFFFFFFFF, true)", r, c)
	}
}

func TestROR_C(t *testing.T) {
	r, c := vm.ROR_C(0x1, 1)
	if r != 0x80000000 || !c {
		t.Errorf("ROR_C(1,1) = (0x%X, %v), want (0x80000000, true)", r, c)
	}
}

func TestConditionPassed_AlwaysIncludesReserved(t *testing.T) {
	s := vm.New()
	if !s.ConditionPassed(0xE) {
		t.Error("cond 0xE (AL) must pass")
	}
	if !s.ConditionPassed(0xF) {
		t.Error("cond 0xF (reserved, treated as AL) must pass")
	}
}

func TestConditionPassed_GTUsesNEqualsV(t *testing.T) {
	s := vm.New()
	s.Flags = 0 // Z=0, N=0, V=0 -> GT true
	if !s.ConditionPassed(0xC) {
		t.Error("GT should pass when Z=0 and N==V")
	}
	s.Flags = vm.FlagN // N=1, V=0 -> N!=V -> GT false
	if s.ConditionPassed(0xC) {
		t.Error("GT should fail when N!=V")
	}
}
