// Package judge turns raw sandbox executions into scored outcomes and
// aggregates them into subtask and solution totals.
package judge

import (
	"github.com/ngthanhtrung23/VO-problemtools/internal/problem"
)

type Verdict int

const (
	Accepted Verdict = iota
	WrongAnswer
	TimeLimitExceeded
	MemoryLimitExceeded
	RuntimeError
	CheckerFailure
)

func (v Verdict) String() string {
	switch v {
	case Accepted:
		return "AC"
	case WrongAnswer:
		return "WA"
	case TimeLimitExceeded:
		return "TL"
	case MemoryLimitExceeded:
		return "ML"
	case RuntimeError:
		return "RE"
	case CheckerFailure:
		return "CHK"
	}
	return "??"
}

// Outcome is the judged result of one execution. Score is in [0, 1]; only
// Accepted outcomes may carry a non-zero score, and partial-credit checkers
// may make it fractional.
type Outcome struct {
	Verdict Verdict
	Score   float64
	CpuSec  float64
	MemKiB  int64
	Msg     string
}

// classifyRun applies the resource-violation policy to raw run stats.
// Checked strictly in order: time, then memory, then sandbox failure, then
// exit status. A resource violation must never be masked by a checker that
// happens to accept truncated output, so done=true short-circuits the
// checker entirely.
func classifyRun(stats RunStats, limits problem.Limits) (out Outcome, done bool) {
	out = Outcome{CpuSec: stats.CpuSec, MemKiB: stats.MemKiB}

	if stats.Status == StatusTimeout || stats.CpuSec > limits.TimeSecs {
		out.Verdict = TimeLimitExceeded
		return out, true
	}
	if stats.OomKilled || stats.MemKiB > int64(limits.MemoryMBs)*1024 {
		out.Verdict = MemoryLimitExceeded
		return out, true
	}
	if stats.Status == StatusSandboxErr {
		out.Verdict = CheckerFailure
		out.Msg = stats.Message
		return out, true
	}
	if stats.ExitCode != 0 || stats.Status == StatusSignalled {
		out.Verdict = RuntimeError
		out.Msg = stats.Message
		return out, true
	}
	return out, false
}

// outcomeFromCheck folds the checker verdict into the outcome: 0 is a wrong
// answer, everything else counts as accepted (possibly with partial credit).
func outcomeFromCheck(out Outcome, check CheckResult) Outcome {
	out.Msg = check.Msg
	if check.Score == 0 {
		out.Verdict = WrongAnswer
		return out
	}
	out.Verdict = Accepted
	out.Score = check.Score
	return out
}
