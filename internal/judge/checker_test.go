package judge

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// fakeChecker writes a shell script standing in for a compiled testlib
// checker.
func fakeChecker(t *testing.T, script string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "checker")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0755))
	return path
}

func TestDiffCheckerAccepts(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "t.inp", "1 2\n")
	expected := writeFile(t, dir, "t.out", "3\n")
	produced := writeFile(t, dir, "t.got", "3\n")

	res, err := DiffChecker{}.Check(in, produced, expected)
	require.NoError(t, err)
	assert.Equal(t, 1.0, res.Score)
}

func TestDiffCheckerIgnoresWhitespace(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "t.inp", "1 2\n")
	expected := writeFile(t, dir, "t.out", "3\n")
	produced := writeFile(t, dir, "t.got", "3   \n")

	res, err := DiffChecker{}.Check(in, produced, expected)
	require.NoError(t, err)
	assert.Equal(t, 1.0, res.Score)
}

func TestDiffCheckerRejects(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "t.inp", "1 2\n")
	expected := writeFile(t, dir, "t.out", "3\n")
	produced := writeFile(t, dir, "t.got", "4\n")

	res, err := DiffChecker{}.Check(in, produced, expected)
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.Score)
}

func TestTestlibCheckerVerdicts(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "t.inp", "")
	expected := writeFile(t, dir, "t.out", "")
	produced := writeFile(t, dir, "t.got", "")

	cases := []struct {
		name   string
		script string
		score  float64
		msg    string
	}{
		{name: "ok", script: "echo ok >&2; exit 0", score: 1, msg: "ok"},
		{name: "wrong answer", script: "echo '1st words differ' >&2; exit 1", score: 0, msg: "1st words differ"},
		{name: "presentation error", script: "exit 2", score: 0},
		{name: "partial via stdout", script: "echo 0.5; exit 7", score: 0.5},
		{name: "partial via points message", script: "echo 'points 0.25' >&2; exit 7", score: 0.25, msg: "points 0.25"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := TestlibChecker{ExecPath: fakeChecker(t, tc.script)}
			res, err := c.Check(in, produced, expected)
			require.NoError(t, err)
			assert.InDelta(t, tc.score, res.Score, 1e-9)
			if tc.msg != "" {
				assert.Equal(t, tc.msg, res.Msg)
			}
		})
	}
}

func TestTestlibCheckerDefects(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "t.inp", "")
	expected := writeFile(t, dir, "t.out", "")
	produced := writeFile(t, dir, "t.got", "")

	cases := []struct {
		name   string
		script string
	}{
		{name: "judge failure exit", script: "echo 'fail: unexpected eof' >&2; exit 3"},
		{name: "unexpected exit code", script: "exit 42"},
		{name: "malformed partial score", script: "echo banana; exit 7"},
		{name: "partial score out of range", script: "echo 1.5; exit 7"},
		{name: "partial with no score at all", script: "exit 7"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := TestlibChecker{ExecPath: fakeChecker(t, tc.script)}
			_, err := c.Check(in, produced, expected)
			assert.Error(t, err, "checker defects must be errors, never a plain 0 score")
		})
	}
}

func TestExecValidator(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "t.inp", "42\n")

	accept := ExecValidator{ExecPath: fakeChecker(t, "exit 0")}
	ok, _, err := accept.Validate(1, input)
	require.NoError(t, err)
	assert.True(t, ok)

	reject := ExecValidator{ExecPath: fakeChecker(t, "echo 'value out of range'; exit 1")}
	ok, out, err := reject.Validate(1, input)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "value out of range", out)
}
