// Package verifier orchestrates a full problem package verification:
// configuration checks, test classification, input validation, solution
// scoring and score-band checks, accumulating every violation found into
// one report.
package verifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ngthanhtrung23/VO-problemtools/internal/classify"
	"github.com/ngthanhtrung23/VO-problemtools/internal/compile"
	"github.com/ngthanhtrung23/VO-problemtools/internal/judge"
	"github.com/ngthanhtrung23/VO-problemtools/internal/problem"
	"github.com/ngthanhtrung23/VO-problemtools/internal/report"
	"github.com/ngthanhtrung23/VO-problemtools/internal/testdata"
)

// EPS tolerates floating-point drift when comparing aggregate scores
// against integer bands.
const EPS = 1e-6

// The engine is a linear state machine with no retries.
type state int

const (
	stateConfigLoaded state = iota
	stateTestsClassified
	stateValidatorChecked
	stateSolutionsScored
	stateVerified
	stateFailed
)

func (s state) String() string {
	switch s {
	case stateConfigLoaded:
		return "ConfigLoaded"
	case stateTestsClassified:
		return "TestsClassified"
	case stateValidatorChecked:
		return "ValidatorChecked"
	case stateSolutionsScored:
		return "SolutionsScored"
	case stateVerified:
		return "Verified"
	case stateFailed:
		return "Failed"
	}
	return "Unknown"
}

// Compiler abstracts compile.Compiler for tests.
type Compiler interface {
	Compile(srcPath string) (string, error)
}

type Engine struct {
	Gatherer   report.Gatherer
	Compiler   Compiler
	Runner     judge.Runner
	Store      *testdata.Store
	Workers    int
	ScratchDir string

	// Overridable for tests; default to the exec-based implementations.
	NewValidator func(execPath string) judge.Validator
	NewChecker   func(execPath string) judge.Checker
}

func (e *Engine) validator(execPath string) judge.Validator {
	if e.NewValidator != nil {
		return e.NewValidator(execPath)
	}
	return judge.ExecValidator{ExecPath: execPath}
}

func (e *Engine) checker(execPath string) judge.Checker {
	if e.NewChecker != nil {
		return e.NewChecker(execPath)
	}
	return judge.TestlibChecker{ExecPath: execPath}
}

func (e *Engine) enter(s state) {
	slog.Debug("verification state", "state", s.String())
}

// Verify runs the whole pipeline on one problem directory. Package defects
// are reported as violations in the returned report; the error return is
// reserved for environment failures that prevent verification entirely.
// Running Verify twice on an unchanged directory yields the same findings.
func (e *Engine) Verify(dir string) (*report.Report, error) {
	rep := &report.Report{
		RunUuid:    uuid.NewString(),
		ProblemDir: dir,
		StartedAt:  time.Now(),
	}
	e.Gatherer.StartRun(rep.RunUuid, dir)
	defer func() {
		rep.FinishedAt = time.Now()
		e.Gatherer.FinishRun(rep)
	}()

	fail := func(vs ...report.Violation) (*report.Report, error) {
		rep.Add(vs...)
		e.enter(stateFailed)
		return rep, nil
	}

	p, err := problem.Load(dir)
	if err != nil {
		e.Gatherer.Status(fmt.Sprintf("load problem config: %v", err), false)
		return fail(report.Violationf(report.Configuration, "%v", err))
	}
	e.enter(stateConfigLoaded)
	e.Gatherer.Status(fmt.Sprintf("problem config loaded from %s", dir), true)

	// Configuration invariants fail fast, before any compilation or
	// execution cost is paid.
	if vs := p.Validate(); len(vs) > 0 {
		for _, v := range vs {
			e.Gatherer.Status(v.Msg, false)
		}
		return fail(vs...)
	}
	e.Gatherer.Status(fmt.Sprintf("%d subtasks, scores sum to %d", len(p.Subtasks), p.Score), true)

	tests, asg, vs, err := e.classifyTests(p)
	if err != nil {
		return nil, err
	}
	if len(vs) > 0 {
		for _, v := range vs {
			e.Gatherer.Status(v.Msg, false)
		}
		return fail(vs...)
	}
	e.enter(stateTestsClassified)
	e.Gatherer.Status(fmt.Sprintf("%d tests classified into %d subtasks", len(tests), len(p.Subtasks)), true)

	if extra, err := p.CheckSubmissionsDir(); err != nil {
		return nil, err
	} else {
		rep.Add(extra...)
		for _, v := range extra {
			e.Gatherer.Status(v.Msg, false)
		}
	}

	validator, checker, vs := e.compileTools(p)
	if len(vs) > 0 {
		for _, v := range vs {
			e.Gatherer.Status(v.Msg, false)
		}
		return fail(vs...)
	}

	if vs := e.runValidator(p, validator, asg); len(vs) > 0 {
		return fail(vs...)
	}
	e.enter(stateValidatorChecked)

	e.scoreSolutions(p, asg, checker, rep)
	e.enter(stateSolutionsScored)

	e.checkFullScoreCount(p, rep)

	if rep.OK() {
		e.enter(stateVerified)
	} else {
		e.enter(stateFailed)
	}
	return rep, nil
}

// classifyTests discovers the test pairs, stages them into the scratch
// store and computes the subtask assignment.
func (e *Engine) classifyTests(p *problem.Problem) ([]problem.Test, classify.Assignment, []report.Violation, error) {
	if p.TestsUrl != "" && e.Store != nil {
		if _, err := os.Stat(p.TestsDir()); errors.Is(err, os.ErrNotExist) {
			if err := e.Store.FetchArchive(p.TestsUrl, p.TestsDir()); err != nil {
				return nil, classify.Assignment{}, nil, fmt.Errorf("failed to fetch tests: %w", err)
			}
		}
	}

	tests, vs, err := p.DiscoverTests()
	if err != nil {
		return nil, classify.Assignment{}, nil, err
	}
	if len(tests) == 0 {
		vs = append(vs, report.Violationf(report.Configuration, "no tests found in %s", p.TestsDir()))
	}

	if e.Store != nil {
		for i := range tests {
			staged, err := e.Store.Stage(tests[i])
			if err != nil {
				return nil, classify.Assignment{}, nil, err
			}
			tests[i] = staged
		}
	}

	asg, cvs := classify.Classify(p.Subtasks, tests)
	vs = append(vs, cvs...)
	return tests, asg, vs, nil
}

// compileTools builds the input validator and the checker concurrently.
// Either failing to compile is fatal to the whole run: no solution can be
// scored without them.
func (e *Engine) compileTools(p *problem.Problem) (judge.Validator, judge.Checker, []report.Violation) {
	var validatorExec, checkerExec string
	var vs []report.Violation

	eg, _ := errgroup.WithContext(context.Background())
	var verr, cerr error

	eg.Go(func() error {
		validatorExec, verr = e.Compiler.Compile(p.ValidatorPath())
		return nil
	})
	if p.CheckerPath() != "" {
		eg.Go(func() error {
			checkerExec, cerr = e.Compiler.Compile(p.CheckerPath())
			return nil
		})
	}
	_ = eg.Wait()

	if verr != nil {
		vs = append(vs, report.Violationf(report.Compile, "input validator: %v", verr))
	}
	if cerr != nil {
		vs = append(vs, report.Violationf(report.Compile, "output checker: %v", cerr))
	}
	if len(vs) > 0 {
		return nil, nil, vs
	}

	e.Gatherer.Status("input validator compiled", true)
	var checker judge.Checker = judge.DiffChecker{}
	if p.CheckerPath() != "" {
		checker = e.checker(checkerExec)
		e.Gatherer.Status(fmt.Sprintf("found and compiled checker %s", p.Checker), true)
	} else {
		e.Gatherer.Status("no checker required, using default `diff -w`", true)
	}

	return e.validator(validatorExec), checker, nil
}

// runValidator feeds every classified test input to the validator. Any
// rejection is fatal to the whole run: an invalid input invalidates every
// solution's score against it.
func (e *Engine) runValidator(p *problem.Problem, validator judge.Validator, asg classify.Assignment) []report.Violation {
	var vs []report.Violation
	for _, st := range p.Subtasks {
		passed := true
		for _, t := range asg.BySubtask[st.ID] {
			ok, out, err := validator.Validate(st.ID, t.InputPath)
			if err != nil {
				vs = append(vs, report.Violationf(report.Validation,
					"could not validate test %s: %v", t.Name, err))
				passed = false
				continue
			}
			if !ok {
				msg := fmt.Sprintf("test %s failed input validator", t.Name)
				if out != "" {
					msg += ": " + out
				}
				vs = append(vs, report.Violationf(report.Validation, "%s", msg))
				passed = false
			}
		}
		e.Gatherer.Status(fmt.Sprintf("subtask %d passed input validator", st.ID), passed)
	}
	return vs
}

// scoreSolutions compiles and judges each declared solution in turn. A
// compile failure is fatal to that solution only; every other declared
// solution still runs.
func (e *Engine) scoreSolutions(p *problem.Problem, asg classify.Assignment, checker judge.Checker, rep *report.Report) {
	scorer := &judge.Scorer{
		Runner:     e.Runner,
		Checker:    checker,
		Limits:     p.Limits,
		Workers:    e.Workers,
		ScratchDir: e.ScratchDir,
	}

	for _, sol := range p.Solutions {
		execPath, err := e.Compiler.Compile(p.SubmissionPath(sol.Name))
		if err != nil {
			v := report.Violationf(report.Compile, "solution %s could not be compiled: %v", sol.Name, err)
			var cerr *compile.Error
			if errors.As(err, &cerr) {
				v = report.Violationf(report.Compile, "solution %s failed to compile:\n%s", sol.Name, cerr.Output)
			}
			rep.Add(v)
			res := judge.ZeroResult(sol, p.Subtasks)
			e.bandCheck(p, &res, rep)
			rep.Solutions = append(rep.Solutions, res)
			e.Gatherer.FinishSolution(res)
			continue
		}

		res, vs := scorer.ScoreSolution(sol, execPath, p.Subtasks, asg, e.Gatherer)
		rep.Add(vs...)
		e.bandCheck(p, &res, rep)
		rep.Solutions = append(rep.Solutions, res)
		e.Gatherer.FinishSolution(res)
	}
}

// bandCheck validates the computed total against the declared acceptable
// band. Violations are collected, not fatal: remaining solutions still get
// evaluated.
func (e *Engine) bandCheck(p *problem.Problem, res *report.SolutionResult, rep *report.Report) {
	score := res.TotalScore
	switch {
	case score < float64(res.MinScore)-EPS:
		rep.Add(report.Violationf(report.ScoreBand,
			"%s received %.1f, min_score = %d", res.Name, score, res.MinScore))
		e.Gatherer.Status(fmt.Sprintf("%s received %.1f, min_score = %d", res.Name, score, res.MinScore), false)
	case score > float64(res.MaxScore)+EPS:
		rep.Add(report.Violationf(report.ScoreBand,
			"%s received %.1f, max_score = %d", res.Name, score, res.MaxScore))
		e.Gatherer.Status(fmt.Sprintf("%s received %.1f, max_score = %d", res.Name, score, res.MaxScore), false)
	default:
		res.InBand = true
		e.Gatherer.Status(fmt.Sprintf("%s received %.1f, in range [%d, %d]",
			res.Name, score, res.MinScore, res.MaxScore), true)
	}
}

// checkFullScoreCount warns when fewer than two reference solutions are
// declared to achieve full score; a lone accepted solution is weak evidence
// the expected outputs are right.
func (e *Engine) checkFullScoreCount(p *problem.Problem, rep *report.Report) {
	cnt := 0
	for _, sol := range p.Solutions {
		if float64(sol.MinScore) > float64(p.Score)-EPS {
			cnt++
		}
	}
	if cnt <= 1 {
		v := report.Violationf(report.Warning, "only %d solution(s) declared with full score", cnt)
		rep.Add(v)
		e.Gatherer.Status(v.Msg, false)
	}
}
