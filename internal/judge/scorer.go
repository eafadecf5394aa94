package judge

import (
	"path/filepath"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ngthanhtrung23/VO-problemtools/internal/classify"
	"github.com/ngthanhtrung23/VO-problemtools/internal/problem"
	"github.com/ngthanhtrung23/VO-problemtools/internal/report"
)

// Scorer runs one compiled solution over every test and folds the outcomes
// into a SolutionResult. Tests run independently of each other, so they fan
// out over a bounded worker pool; the classification was computed before
// any dispatch and is read-only here.
type Scorer struct {
	Runner     Runner
	Checker    Checker
	Limits     problem.Limits
	Workers    int
	ScratchDir string
}

type judgedTest struct {
	outcome   report.TestOutcome
	violation *report.Violation
}

// ScoreSolution executes the solution against all tests of all subtasks and
// returns the aggregated result plus any checker-level defects discovered
// along the way. Checker defects score the test as zero but are surfaced as
// run-level violations, since they indicate the package is broken.
func (s *Scorer) ScoreSolution(
	sol problem.Solution,
	execPath string,
	subtasks []problem.Subtask,
	asg classify.Assignment,
	gath report.Gatherer,
) (report.SolutionResult, []report.Violation) {

	type workItem struct {
		test      problem.Test
		subtaskID int
	}
	var items []workItem
	for _, st := range subtasks {
		for _, t := range asg.BySubtask[st.ID] {
			items = append(items, workItem{test: t, subtaskID: st.ID})
		}
	}

	gath.StartSolution(sol.Name, len(items))

	judged := make([]judgedTest, len(items))
	var eg errgroup.Group
	workers := s.Workers
	if workers < 1 {
		workers = 1
	}
	eg.SetLimit(workers)

	for i, item := range items {
		eg.Go(func() error {
			judged[i] = s.judgeTest(execPath, item.test, item.subtaskID)
			gath.FinishTest(sol.Name, judged[i].outcome)
			return nil
		})
	}
	_ = eg.Wait()

	var violations []report.Violation
	bySubtask := make(map[int][]report.TestOutcome, len(subtasks))
	for _, j := range judged {
		bySubtask[j.outcome.Subtask] = append(bySubtask[j.outcome.Subtask], j.outcome)
		if j.violation != nil {
			violations = append(violations, *j.violation)
		}
	}

	res := report.SolutionResult{
		Name:     sol.Name,
		MinScore: sol.MinScore,
		MaxScore: sol.MaxScore,
		Compiled: true,
	}
	for _, st := range subtasks {
		sub := AggregateSubtask(st, bySubtask[st.ID])
		res.Subtasks = append(res.Subtasks, sub)
		res.TotalScore += sub.Score
	}
	return res, violations
}

// judgeTest runs one test end to end: sandboxed execution, resource
// classification, then the checker if and only if the run was clean.
func (s *Scorer) judgeTest(execPath string, t problem.Test, subtaskID int) judgedTest {
	outcome := report.TestOutcome{Test: t.Name, Subtask: subtaskID}

	producedPath := filepath.Join(s.ScratchDir, uuid.NewString()+".out")
	stats, err := s.Runner.Run(execPath, t.InputPath, producedPath, s.Limits)
	if err != nil {
		// A broken run primitive is an environment defect, not a wrong
		// answer; score zero and surface it.
		outcome.Verdict = CheckerFailure.String()
		outcome.Msg = err.Error()
		v := report.Violationf(report.CheckerDefect,
			"test %s could not be executed: %v", t.Name, err)
		return judgedTest{outcome: outcome, violation: &v}
	}

	out, done := classifyRun(stats, s.Limits)
	if !done {
		check, err := s.Checker.Check(t.InputPath, producedPath, t.OutputPath)
		if err != nil {
			out.Verdict = CheckerFailure
			out.Score = 0
			out.Msg = err.Error()
			v := report.Violationf(report.CheckerDefect,
				"checker failed on test %s: %v", t.Name, err)
			fill(&outcome, out)
			return judgedTest{outcome: outcome, violation: &v}
		}
		out = outcomeFromCheck(out, check)
	}

	fill(&outcome, out)
	if out.Verdict == CheckerFailure {
		v := report.Violationf(report.CheckerDefect,
			"test %s: %s", t.Name, out.Msg)
		return judgedTest{outcome: outcome, violation: &v}
	}
	return judgedTest{outcome: outcome}
}

func fill(to *report.TestOutcome, from Outcome) {
	to.Verdict = from.Verdict.String()
	to.Score = from.Score
	to.CpuSec = from.CpuSec
	to.MemKiB = from.MemKiB
	to.Msg = from.Msg
}

// ZeroResult is the result recorded for a solution whose compilation
// failed: total score zero with no per-test outcomes, distinct from a
// runtime failure on every test.
func ZeroResult(sol problem.Solution, subtasks []problem.Subtask) report.SolutionResult {
	res := report.SolutionResult{
		Name:     sol.Name,
		MinScore: sol.MinScore,
		MaxScore: sol.MaxScore,
		Compiled: false,
	}
	for _, st := range subtasks {
		res.Subtasks = append(res.Subtasks, report.SubtaskResult{
			SubtaskID: st.ID,
			Score:     0,
			MaxScore:  st.Score,
		})
	}
	return res
}
