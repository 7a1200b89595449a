package vm

// Control-flow boundary, spec.md §4.E. Every PC write is funneled
// through writePC, which: (1) recognizes the sentinel return address
// and terminates the step with "function returned"; (2) for branches
// that leave program memory, invokes the host function-call callback,
// resuming at the current LR if the callback handled the call; (3)
// otherwise stores the target (low bit cleared) into PC.

// errFunctionReturned is the internal signal stepOnce uses to tell
// the session loop the sentinel was reached; it carries no data and
// is never surfaced to the host as a Go error value (Session.Step
// translates it to StepReturned).
type errFunctionReturned struct{}

func (errFunctionReturned) Error() string { return "function returned" }

var errReturned error = errFunctionReturned{}

func (s *State) writePC(target uint32) error {
	if target == SentinelReturnAddress {
		return errReturned
	}

	if s.Classify(target) != RegionProgram && s.FunctionCall != nil {
		if s.FunctionCall(s, target) {
			// The callee is presumed to have updated R0..R3 in place;
			// the call is treated as already having returned.
			return s.writePC(s.LR())
		}
	}

	s.SetRegister(RegPC, target)
	return nil
}
