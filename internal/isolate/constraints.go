package isolate

import (
	"fmt"
)

type Constraints struct {
	CpuTimeLimInSec      float64
	ExtraCpuTimeLimInSec float64
	WallTimeLimInSec     float64
	MemoryLimitInKB      int
	MaxProcesses         int
	MaxOpenFiles         int
}

func DefaultConstraints() Constraints {
	return Constraints{
		CpuTimeLimInSec:      50.0,
		ExtraCpuTimeLimInSec: 0.5,
		WallTimeLimInSec:     10.0,
		MemoryLimitInKB:      2048000,
		MaxProcesses:         128,
		MaxOpenFiles:         128,
	}
}

// NewConstraints maps a problem's declared limits onto sandbox arguments.
// A little extra cpu time and a generous wall-time cap are granted so that
// the scorer, not the sandbox teardown, decides whether the time limit was
// exceeded.
func NewConstraints(timeSecs float64, memoryMBs int) Constraints {
	return Constraints{
		CpuTimeLimInSec:      timeSecs,
		ExtraCpuTimeLimInSec: 0.5,
		WallTimeLimInSec:     timeSecs*3 + 5,
		MemoryLimitInKB:      memoryMBs * 1024,
		MaxProcesses:         128,
		MaxOpenFiles:         128,
	}
}

func (constraints *Constraints) ToArgs() []string {
	return []string{
		fmt.Sprintf("--mem=%d", constraints.MemoryLimitInKB),
		fmt.Sprintf("--time=%f", constraints.CpuTimeLimInSec),
		fmt.Sprintf("--extra-time=%f", constraints.ExtraCpuTimeLimInSec),
		fmt.Sprintf("--wall-time=%f", constraints.WallTimeLimInSec),
		fmt.Sprintf("--processes=%d", constraints.MaxProcesses),
		fmt.Sprintf("--open-files=%d", constraints.MaxOpenFiles),
	}
}
