package judge

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ngthanhtrung23/VO-problemtools/internal/classify"
	"github.com/ngthanhtrung23/VO-problemtools/internal/problem"
	"github.com/ngthanhtrung23/VO-problemtools/internal/report"
)

// fakeRunner scripts per-test run stats by test input path substring.
type fakeRunner struct {
	statsFor map[string]RunStats
	errFor   map[string]error
}

func (r *fakeRunner) Run(execPath, inputPath, outputPath string, limits problem.Limits) (RunStats, error) {
	for k, err := range r.errFor {
		if strings.Contains(inputPath, k) {
			return RunStats{}, err
		}
	}
	for k, stats := range r.statsFor {
		if strings.Contains(inputPath, k) {
			return stats, nil
		}
	}
	return RunStats{CpuSec: 0.1}, nil
}

// fakeCheck scripts checker verdicts the same way.
type fakeCheck struct {
	scoreFor map[string]float64
	errFor   map[string]error
}

func (c *fakeCheck) Check(inputPath, producedPath, expectedPath string) (CheckResult, error) {
	for k, err := range c.errFor {
		if strings.Contains(inputPath, k) {
			return CheckResult{}, err
		}
	}
	for k, s := range c.scoreFor {
		if strings.Contains(inputPath, k) {
			return CheckResult{Score: s}, nil
		}
	}
	return CheckResult{Score: 1}, nil
}

type nopGatherer struct {
	mu        sync.Mutex
	testCount int
}

func (g *nopGatherer) StartRun(string, string) {}
func (g *nopGatherer) Status(string, bool) {}
func (g *nopGatherer) StartSolution(string, int) {}
func (g *nopGatherer) FinishTest(string, report.TestOutcome) {
	g.mu.Lock()
	g.testCount++
	g.mu.Unlock()
}
func (g *nopGatherer) FinishSolution(report.SolutionResult) {}
func (g *nopGatherer) FinishRun(*report.Report) {}

func fixture(t *testing.T) ([]problem.Subtask, classify.Assignment) {
	t.Helper()
	subtasks := make([]problem.Subtask, 0, 3)
	for _, spec := range []struct {
		id    int
		regex string
		score int
	}{
		{0, "sample.*", 0},
		{1, "sub1.*", 50},
		{2, "sub2.*", 50},
	} {
		st, err := problem.NewSubtask(spec.id, spec.regex, spec.score)
		require.NoError(t, err)
		subtasks = append(subtasks, st)
	}

	tests := []problem.Test{
		{Name: "sample_01.inp", InputPath: "sample_01.inp"},
		{Name: "sub1_01.inp", InputPath: "sub1_01.inp"},
		{Name: "sub1_02.inp", InputPath: "sub1_02.inp"},
		{Name: "sub2_01.inp", InputPath: "sub2_01.inp"},
		{Name: "sub2_02.inp", InputPath: "sub2_02.inp"},
	}
	asg, vs := classify.Classify(subtasks, tests)
	require.Empty(t, vs)
	return subtasks, asg
}

func newScorer(runner Runner, checker Checker, workers int, t *testing.T) *Scorer {
	return &Scorer{
		Runner:     runner,
		Checker:    checker,
		Limits:     problem.Limits{TimeSecs: 1.0, MemoryMBs: 256},
		Workers:    workers,
		ScratchDir: t.TempDir(),
	}
}

var sol = problem.Solution{Name: "main.cpp", MinScore: 100, MaxScore: 100}

func TestScoreSolutionFullScore(t *testing.T) {
	subtasks, asg := fixture(t)
	s := newScorer(&fakeRunner{}, &fakeCheck{}, 2, t)
	gath := &nopGatherer{}

	res, vs := s.ScoreSolution(sol, "main", subtasks, asg, gath)
	assert.Empty(t, vs)
	assert.Equal(t, 100.0, res.TotalScore)
	assert.True(t, res.Compiled)
	assert.Equal(t, 5, gath.testCount)

	// totalScore is exactly the sum of subtask scores
	sum := 0.0
	for _, sub := range res.Subtasks {
		sum += sub.Score
	}
	assert.Equal(t, res.TotalScore, sum)
}

func TestScoreSolutionOneSubtaskFails(t *testing.T) {
	// Passes samples and sub1, fails one test of sub2: total is 50.
	subtasks, asg := fixture(t)
	checker := &fakeCheck{scoreFor: map[string]float64{"sub2_02": 0}}
	s := newScorer(&fakeRunner{}, checker, 2, t)

	res, vs := s.ScoreSolution(sol, "main", subtasks, asg, &nopGatherer{})
	assert.Empty(t, vs)
	assert.Equal(t, 50.0, res.TotalScore)
}

func TestScoreSolutionResourceViolationMasksChecker(t *testing.T) {
	// sub1_02 times out; the checker would accept, but must never be asked.
	subtasks, asg := fixture(t)
	runner := &fakeRunner{statsFor: map[string]RunStats{
		"sub1_02": {CpuSec: 2.0},
	}}
	s := newScorer(runner, &fakeCheck{}, 1, t)

	res, vs := s.ScoreSolution(sol, "main", subtasks, asg, &nopGatherer{})
	assert.Empty(t, vs)
	assert.Equal(t, 50.0, res.TotalScore)

	for _, sub := range res.Subtasks {
		if sub.SubtaskID != 1 {
			continue
		}
		verdicts := map[string]string{}
		for _, out := range sub.Tests {
			verdicts[out.Test] = out.Verdict
		}
		assert.Equal(t, "TL", verdicts["sub1_02.inp"])
	}
}

func TestScoreSolutionPartialCredit(t *testing.T) {
	subtasks, asg := fixture(t)
	checker := &fakeCheck{scoreFor: map[string]float64{
		"sub2_01": 0.5,
		"sub2_02": 0.8,
	}}
	s := newScorer(&fakeRunner{}, checker, 2, t)

	res, vs := s.ScoreSolution(sol, "main", subtasks, asg, &nopGatherer{})
	assert.Empty(t, vs)
	// sub2 = 50 * min(0.5, 0.8) = 25
	assert.InDelta(t, 75.0, res.TotalScore, 1e-9)
}

func TestScoreSolutionCheckerDefectIsViolation(t *testing.T) {
	subtasks, asg := fixture(t)
	checker := &fakeCheck{errFor: map[string]error{
		"sub2_01": fmt.Errorf("checker emitted malformed partial score"),
	}}
	s := newScorer(&fakeRunner{}, checker, 2, t)

	res, vs := s.ScoreSolution(sol, "main", subtasks, asg, &nopGatherer{})
	require.Len(t, vs, 1)
	assert.Equal(t, report.CheckerDefect, vs[0].Kind)
	assert.Equal(t, 50.0, res.TotalScore, "broken checker scores the test 0 but is reported separately")
}

func TestScoreSolutionRunnerFailureIsViolation(t *testing.T) {
	subtasks, asg := fixture(t)
	runner := &fakeRunner{errFor: map[string]error{
		"sample_01": fmt.Errorf("isolate box setup failed"),
	}}
	s := newScorer(runner, &fakeCheck{}, 2, t)

	res, vs := s.ScoreSolution(sol, "main", subtasks, asg, &nopGatherer{})
	require.Len(t, vs, 1)
	assert.Equal(t, report.CheckerDefect, vs[0].Kind)
	assert.Equal(t, 100.0, res.TotalScore, "score-0 sample subtask hides the zero in the total")
}

func TestZeroResult(t *testing.T) {
	subtasks, _ := fixture(t)
	res := ZeroResult(sol, subtasks)
	assert.Equal(t, 0.0, res.TotalScore)
	assert.False(t, res.Compiled)
	assert.Len(t, res.Subtasks, 3)
}
