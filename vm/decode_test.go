package vm_test

import (
	"errors"
	"testing"

	"github.com/pluginhost/thumbvm/vm"
)

func TestDecode_UnrecognizedMiscOpcodeIsDecodeError(t *testing.T) {
	code := make([]byte, 2)
	putHalf(code, 0, 0xB800) // misc block, no case matches this pattern

	s := newTestState(code)
	r := s.Step(1)
	if r != vm.StepError {
		t.Fatalf("Step: got %v, want StepError", r)
	}
	var decErr *vm.DecodeError
	if !errors.As(s.LastError, &decErr) {
		t.Errorf("LastError = %v, want *DecodeError", s.LastError)
	}
}

func TestDecode_SVCIsUnsupported(t *testing.T) {
	code := make([]byte, 2)
	putHalf(code, 0, 0xDF00) // cond=0xF -> SVC

	s := newTestState(code)
	r := s.Step(1)
	if r != vm.StepError {
		t.Fatalf("Step: got %v, want StepError", r)
	}
	var unsupErr *vm.UnsupportedError
	if !errors.As(s.LastError, &unsupErr) {
		t.Errorf("LastError = %v, want *UnsupportedError", s.LastError)
	}
}

func TestDecode_ReservedCondBranchIsDecodeError(t *testing.T) {
	code := make([]byte, 2)
	putHalf(code, 0, 0xDE00) // cond=0xE, undefined in this encoding

	s := newTestState(code)
	r := s.Step(1)
	if r != vm.StepError {
		t.Fatalf("Step: got %v, want StepError", r)
	}
	var decErr *vm.DecodeError
	if !errors.As(s.LastError, &decErr) {
		t.Errorf("LastError = %v, want *DecodeError", s.LastError)
	}
}

func TestNOP_IsExactEncodingOnly(t *testing.T) {
	code := make([]byte, 2)
	putHalf(code, 0, 0xBF00) // NOP

	s := newTestState(code)
	if r := s.Step(1); r != vm.StepRunning {
		t.Fatalf("NOP step: got %v, err=%v", r, s.LastError)
	}
}

func TestHint_BeyondNOPIsUnsupported(t *testing.T) {
	code := make([]byte, 2)
	putHalf(code, 0, 0xBF10) // WFE-shaped hint, not plain NOP

	s := newTestState(code)
	r := s.Step(1)
	if r != vm.StepError {
		t.Fatalf("Step: got %v, want StepError", r)
	}
	var unsupErr *vm.UnsupportedError
	if !errors.As(s.LastError, &unsupErr) {
		t.Errorf("LastError = %v, want *UnsupportedError", s.LastError)
	}
}

func TestBKPT_IsAcceptedAndIgnored(t *testing.T) {
	code := make([]byte, 2)
	putHalf(code, 0, 0xBE12)

	s := newTestState(code)
	if r := s.Step(1); r != vm.StepRunning {
		t.Fatalf("BKPT step: got %v, err=%v", r, s.LastError)
	}
}

func TestBarriers_AreRecognizedAndIgnored(t *testing.T) {
	for _, h2 := range []uint16{0x8F4F, 0x8F5F, 0x8F6F} { // DSB, DMB, ISB
		code := make([]byte, 4)
		putHalf(code, 0, 0xF3BF)
		putHalf(code, 2, h2)

		s := newTestState(code)
		if r := s.Step(1); r != vm.StepRunning {
			t.Fatalf("barrier 0x%04X: got %v, err=%v", h2, r, s.LastError)
		}
	}
}

func TestMSR_MRS_APSRRoundTrip(t *testing.T) {
	code := make([]byte, 8)
	putHalf(code, 0, 0xF380|1) // MSR APSR, R1
	putHalf(code, 2, 0x8800)
	putHalf(code, 4, 0xF3EF) // MRS R2, APSR
	putHalf(code, 6, 0x8200)

	s := newTestState(code)
	s.SetRegister(1, 0xF0000000)

	if r := s.Step(1); r != vm.StepRunning {
		t.Fatalf("MSR step: got %v, err=%v", r, s.LastError)
	}
	if s.Flags&0xF0000000 != 0xF0000000 {
		t.Fatalf("flags after MSR = 0x%X, want top nibble 0xF0000000", s.Flags)
	}

	if r := s.Step(1); r != vm.StepRunning {
		t.Fatalf("MRS step: got %v, err=%v", r, s.LastError)
	}
	if got := s.Register(2); got != 0xF0000000 {
		t.Errorf("R2 after MRS = 0x%08X, want 0xF0000000", got)
	}
}

func TestUnsupported32BitForm(t *testing.T) {
	code := make([]byte, 4)
	putHalf(code, 0, 0xF000) // 32-bit prefix
	putHalf(code, 2, 0x0000) // second halfword top bits 00: not BL, not MSR/MRS/barrier

	s := newTestState(code)
	r := s.Step(1)
	if r != vm.StepError {
		t.Fatalf("Step: got %v, want StepError", r)
	}
	var unsupErr *vm.UnsupportedError
	if !errors.As(s.LastError, &unsupErr) {
		t.Errorf("LastError = %v, want *UnsupportedError", s.LastError)
	}
}
