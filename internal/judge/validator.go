package judge

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// Validator confirms one test input conforms to the problem's format and
// constraint rules, independent of any solution.
type Validator interface {
	// Validate returns ok=false with diagnostic output when the input is
	// rejected; a non-nil error means the validator could not be run.
	Validate(subtaskID int, inputPath string) (ok bool, output string, err error)
}

// ExecValidator runs a compiled input validator with the subtask id and
// input path as arguments, and the input on stdin as well (validators read
// whichever they prefer).
type ExecValidator struct {
	ExecPath string
}

func (v ExecValidator) Validate(subtaskID int, inputPath string) (bool, string, error) {
	input, err := os.Open(inputPath)
	if err != nil {
		return false, "", fmt.Errorf("failed to open test input: %w", err)
	}
	defer input.Close()

	var stdout bytes.Buffer
	cmd := exec.Command(v.ExecPath, strconv.Itoa(subtaskID), inputPath)
	cmd.Stdin = input
	cmd.Stdout = &stdout

	err = cmd.Run()
	if err == nil {
		return true, "", nil
	}

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return false, "", fmt.Errorf("failed to run input validator: %w", err)
	}
	return false, strings.TrimSpace(stdout.String()), nil
}
