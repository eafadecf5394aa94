package judge

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// CheckResult is a checker verdict: Score in [0, 1] plus optional
// diagnostic text.
type CheckResult struct {
	Score float64
	Msg   string
}

// Checker judges the produced output for one test. A returned error means
// the checker itself misbehaved (crashed, emitted a malformed verdict) —
// that is a defect in the problem package, never a score of zero.
type Checker interface {
	Check(inputPath string, producedPath string, expectedPath string) (CheckResult, error)
}

// DiffChecker is the default binary accept/reject comparison used when the
// problem configures no checker: `diff -w expected produced`.
type DiffChecker struct{}

func (DiffChecker) Check(inputPath string, producedPath string, expectedPath string) (CheckResult, error) {
	cmd := exec.Command("diff", "-w", expectedPath, producedPath)
	err := cmd.Run()
	if err == nil {
		return CheckResult{Score: 1}, nil
	}

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return CheckResult{}, fmt.Errorf("failed to run diff: %w", err)
	}
	if exitErr.ExitCode() == 1 {
		return CheckResult{Score: 0, Msg: "output differs from expected"}, nil
	}
	return CheckResult{}, fmt.Errorf("diff exited with code %d", exitErr.ExitCode())
}

// Testlib exit codes.
const (
	testlibOK      = 0
	testlibWA      = 1
	testlibPE      = 2
	testlibFail    = 3
	testlibPartial = 7
)

// TestlibChecker invokes a compiled testlib checker as
// `checker input produced expected`. Full-score checkers answer only
// OK/WA/PE; partial-credit checkers exit with the partial code and print
// their fraction.
type TestlibChecker struct {
	ExecPath string
}

func (c TestlibChecker) Check(inputPath string, producedPath string, expectedPath string) (CheckResult, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.Command(c.ExecPath, inputPath, producedPath, expectedPath)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	msg := strings.TrimSpace(stderr.String())

	code := 0
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return CheckResult{}, fmt.Errorf("failed to run checker: %w", err)
		}
		code = exitErr.ExitCode()
	}

	switch code {
	case testlibOK:
		return CheckResult{Score: 1, Msg: msg}, nil
	case testlibWA, testlibPE:
		return CheckResult{Score: 0, Msg: msg}, nil
	case testlibPartial:
		score, err := parsePartialScore(stdout.String(), msg)
		if err != nil {
			return CheckResult{}, err
		}
		return CheckResult{Score: score, Msg: msg}, nil
	case testlibFail:
		return CheckResult{}, fmt.Errorf("checker reported judge failure: %s", msg)
	}
	return CheckResult{}, fmt.Errorf("checker exited with unexpected code %d: %s", code, msg)
}

// parsePartialScore extracts the fractional verdict. The convention is a
// bare float on stdout; older checkers print "points X" into the message
// instead, so that form is accepted as a fallback.
func parsePartialScore(stdout string, msg string) (float64, error) {
	if s := strings.TrimSpace(stdout); s != "" {
		score, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("checker emitted malformed partial score %q", s)
		}
		return clampScore(score)
	}

	fields := strings.Fields(msg)
	for i, f := range fields {
		if strings.EqualFold(f, "points") && i+1 < len(fields) {
			score, err := strconv.ParseFloat(fields[i+1], 64)
			if err != nil {
				break
			}
			return clampScore(score)
		}
	}
	return 0, fmt.Errorf("checker exited with partial verdict but no parsable score")
}

func clampScore(score float64) (float64, error) {
	if score < 0 || score > 1 {
		return 0, fmt.Errorf("checker partial score %f outside [0, 1]", score)
	}
	return score, nil
}
