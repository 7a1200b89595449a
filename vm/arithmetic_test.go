package vm_test

import (
	"testing"

	"github.com/pluginhost/thumbvm/vm"
)

// S1/S2: ADC R2, R3 (0x415A — the low-register data-processing ADC
// form with Rm=R3, Rdn=R2) combines the widened-add carry path with
// whatever C the caller seeded.
func TestADC_S1_NoInitialCarry(t *testing.T) {
	code := make([]byte, 2)
	putHalf(code, 0, 0x415A)
	s := newTestState(code)
	s.SetRegister(2, 0x88776655)
	s.SetRegister(3, 0x99887766)
	s.Flags = vm.FlagN

	if r := s.Step(1); r != vm.StepRunning {
		t.Fatalf("Step: got %v, err=%v", r, s.LastError)
	}
	if got := s.Register(2); got != 0x21FFDDBB {
		t.Errorf("R2 = 0x%08X, want 0x21FFDDBB", got)
	}
	if s.Flags&vm.FlagC == 0 || s.Flags&vm.FlagV == 0 {
		t.Errorf("flags = 0x%X, want C and V set", s.Flags)
	}
	if s.Flags&vm.FlagN != 0 || s.Flags&vm.FlagZ != 0 {
		t.Errorf("flags = 0x%X, want N and Z clear", s.Flags)
	}
}

func TestADC_S2_WithInitialCarry(t *testing.T) {
	code := make([]byte, 2)
	putHalf(code, 0, 0x415A)
	s := newTestState(code)
	s.SetRegister(2, 0x88776655)
	s.SetRegister(3, 0x99887766)
	s.Flags = vm.FlagN | vm.FlagC

	if r := s.Step(1); r != vm.StepRunning {
		t.Fatalf("Step: got %v, err=%v", r, s.LastError)
	}
	if got := s.Register(2); got != 0x21FFDDBC {
		t.Errorf("R2 = 0x%08X, want 0x21FFDDBC", got)
	}
	if s.Flags&vm.FlagC == 0 || s.Flags&vm.FlagV == 0 {
		t.Errorf("flags = 0x%X, want C and V set", s.Flags)
	}
}

// S3: CMP R3, #22 with R3=11 leaves R3 unchanged and sets only N.
func TestCMP_S3(t *testing.T) {
	code := make([]byte, 2)
	// 00101 Rn(3) imm8(8): CMP Rn,#imm8 is encoding 0x2800 | Rn<<8 | imm8.
	putHalf(code, 0, 0x2800|(3<<8)|22)
	s := newTestState(code)
	s.SetRegister(3, 11)

	if r := s.Step(1); r != vm.StepRunning {
		t.Fatalf("Step: got %v, err=%v", r, s.LastError)
	}
	if got := s.Register(3); got != 11 {
		t.Errorf("R3 = %d, want unchanged 11", got)
	}
	if s.Flags != vm.FlagN {
		t.Errorf("flags = 0x%X, want only N set", s.Flags)
	}
}

func TestEOR_UpdatesNZOnly(t *testing.T) {
	code := make([]byte, 2)
	// EOR Rdn,Rm: 010000 0001 mmm ddd -> 0x4040 | Rm<<3 | Rdn
	putHalf(code, 0, 0x4040|(5<<3)|1)
	s := newTestState(code)
	s.SetRegister(1, 0xFFFFFFFF)
	s.SetRegister(5, 1)
	s.Flags = vm.FlagC | vm.FlagV

	if r := s.Step(1); r != vm.StepRunning {
		t.Fatalf("Step: got %v, err=%v", r, s.LastError)
	}
	if got := s.Register(1); got != 0xFFFFFFFE {
		t.Errorf("R1 = 0x%08X, want 0xFFFFFFFE", got)
	}
	if s.Flags&vm.FlagC == 0 || s.Flags&vm.FlagV == 0 {
		t.Errorf("EOR must not disturb C/V, flags = 0x%X", s.Flags)
	}
}

func TestShiftRegister_ZeroCountLeavesCarryUnchanged(t *testing.T) {
	code := make([]byte, 2)
	// LSL Rdn,Rm (register form): 010000 0010 mmm ddd
	putHalf(code, 0, 0x4080|(1<<3)|0)
	s := newTestState(code)
	s.SetRegister(0, 0x42)
	s.SetRegister(1, 0) // shift count 0
	s.Flags = vm.FlagC

	if r := s.Step(1); r != vm.StepRunning {
		t.Fatalf("Step: got %v, err=%v", r, s.LastError)
	}
	if got := s.Register(0); got != 0x42 {
		t.Errorf("R0 = 0x%X, want unchanged 0x42", got)
	}
	if s.Flags&vm.FlagC == 0 {
		t.Errorf("shift-by-0 must leave C set, flags = 0x%X", s.Flags)
	}
}

func TestLSLImmediateZeroLeavesCarryAlone(t *testing.T) {
	code := make([]byte, 2)
	// LSL Rd,Rm,#0: 00000 00000 mmm ddd, Rm=R2, Rd=R0
	putHalf(code, 0, 0x0000|(2<<3)|0)
	s := newTestState(code)
	s.SetRegister(2, 0x8000_0001)
	s.Flags = vm.FlagC

	if r := s.Step(1); r != vm.StepRunning {
		t.Fatalf("Step: got %v, err=%v", r, s.LastError)
	}
	if got := s.Register(0); got != 0x8000_0001 {
		t.Errorf("R0 = 0x%X, want unchanged operand", got)
	}
	if s.Flags&vm.FlagC == 0 {
		t.Errorf("LSL #0 must leave C untouched, flags = 0x%X", s.Flags)
	}
	if s.Flags&vm.FlagN == 0 {
		t.Errorf("N should be set from the loaded value, flags = 0x%X", s.Flags)
	}
}
