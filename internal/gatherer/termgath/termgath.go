// Package termgath renders verification progress as colored status lines,
// one [✔]/[✘] line per check.
package termgath

import (
	"fmt"
	"time"

	"github.com/fatih/color"

	"github.com/ngthanhtrung23/VO-problemtools/internal/report"
)

type TerminalGatherer struct {
	startedAt time.Time
	verbose   bool
}

// New creates a terminal gatherer. With verbose set, every per-test verdict
// is printed, not just summary lines.
func New(verbose bool) *TerminalGatherer {
	return &TerminalGatherer{startedAt: time.Now(), verbose: verbose}
}

func (t *TerminalGatherer) StartRun(runUuid string, problemDir string) {
	fmt.Printf("== Verifying problem package %s (run %s) ==\n", problemDir, runUuid)
}

func (t *TerminalGatherer) Status(msg string, ok bool) {
	if ok {
		fmt.Printf("[%s] %s\n", color.GreenString("✔"), msg)
	} else {
		fmt.Printf("[%s] %s\n", color.RedString("✘"), msg)
	}
}

func (t *TerminalGatherer) StartSolution(name string, testCount int) {
	fmt.Printf("Running %s (%d tests)\n", name, testCount)
}

func (t *TerminalGatherer) FinishTest(solution string, outcome report.TestOutcome) {
	if !t.verbose {
		return
	}
	if outcome.Verdict == "TL" {
		fmt.Printf("    %s -----  %s\n", outcome.Verdict, outcome.Test)
		return
	}
	fmt.Printf("    %s %.2fs %s\n", outcome.Verdict, outcome.CpuSec, outcome.Test)
}

func (t *TerminalGatherer) FinishSolution(res report.SolutionResult) {
	for _, sub := range res.Subtasks {
		fmt.Printf("- subtask %d, score = %.2f / %d\n", sub.SubtaskID, sub.Score, sub.MaxScore)
	}
}

func (t *TerminalGatherer) FinishRun(rep *report.Report) {
	dur := time.Since(t.startedAt).Round(time.Millisecond)
	if rep.OK() {
		fmt.Printf("== Verification passed in %s ==\n", dur)
		return
	}
	fmt.Printf("== Verification FAILED with %d violation(s) in %s ==\n", len(rep.Violations), dur)
	for _, v := range rep.Violations {
		fmt.Printf("  [%s] %s\n", v.Kind, v.Msg)
	}
}
