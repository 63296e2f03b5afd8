package lifecycle

import (
	"fmt"

	"github.com/wnxd/memstate/memory"
)

type Step int

const (
	StepReserve Step = iota
	StepCommit
	StepLock
	StepUnlock
	StepDecommit
	StepRelease

	stepCount
)

// "Reverse" is the label existing MemState.log consumers key on.
var stepNames = [...]string{"Reverse", "Commit", "Lock", "Unlock", "Decommit", "Release"}

func (s Step) String() string {
	if s < 0 || s >= stepCount {
		return fmt.Sprintf("Step(%d)", int(s))
	}
	return stepNames[s]
}

type Trace struct {
	Start uintptr
	Size  uint64
}

type traceState struct {
	modes  []memory.ProtectionMode
	traces []Trace
}

func newTraceState(modes []memory.ProtectionMode) *traceState {
	return &traceState{
		modes:  modes,
		traces: make([]Trace, len(modes)),
	}
}

func (ts *traceState) steps() int {
	return len(ts.modes) * int(stepCount)
}

func locate(n int) (int, Step) {
	return n / int(stepCount), Step(n % int(stepCount))
}
