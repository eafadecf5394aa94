package isolate

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

type Process struct {
	cmd          *exec.Cmd
	stdout       io.ReadCloser
	stderr       io.ReadCloser
	metaFilePath string
}

// Metrics is parsed from the isolate meta file after the process exits.
// Status is one of "" (ok), "TO" (timed out), "SG" (killed by signal),
// "RE" (non-zero exit) or "XX" (sandbox internal error).
type Metrics struct {
	TimeSec      float64
	TimeWallSec  float64
	MaxRssKb     int64
	CswVoluntary int64
	CswForced    int64
	CgMemKb      int64
	CgOomKilled  bool
	ExitCode     int64
	ExitSignal   *int64
	Status       string
	Message      string
}

func (process *Process) Stdout() io.ReadCloser {
	return process.stdout
}

func (process *Process) Stderr() io.ReadCloser {
	return process.stderr
}

// Wait blocks until the sandboxed command finishes, then reads the meta
// file. Isolate itself exits non-zero when the boxed program fails, so an
// ExitError is expected and not propagated.
func (process *Process) Wait() (*Metrics, error) {
	err := process.cmd.Wait()
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, err
		}
	}

	metaFileBytes, err := os.ReadFile(process.metaFilePath)
	if err != nil {
		return nil, err
	}
	defer os.Remove(process.metaFilePath)

	return parseMetaFile(metaFileBytes)
}

func parseMetaFile(content []byte) (*Metrics, error) {
	metrics := &Metrics{}
	for _, line := range strings.Split(string(content), "\n") {
		if line == "" {
			continue
		}
		key, value, found := strings.Cut(line, ":")
		if !found {
			return nil, fmt.Errorf("malformed meta file line: %q", line)
		}

		var err error
		switch key {
		case "time":
			metrics.TimeSec, err = strconv.ParseFloat(value, 64)
		case "time-wall":
			metrics.TimeWallSec, err = strconv.ParseFloat(value, 64)
		case "max-rss":
			metrics.MaxRssKb, err = strconv.ParseInt(value, 10, 64)
		case "csw-voluntary":
			metrics.CswVoluntary, err = strconv.ParseInt(value, 10, 64)
		case "csw-forced":
			metrics.CswForced, err = strconv.ParseInt(value, 10, 64)
		case "cg-mem":
			metrics.CgMemKb, err = strconv.ParseInt(value, 10, 64)
		case "cg-oom-killed":
			metrics.CgOomKilled = value == "1"
		case "exitcode":
			metrics.ExitCode, err = strconv.ParseInt(value, 10, 64)
		case "exitsig":
			var sig int64
			sig, err = strconv.ParseInt(value, 10, 64)
			metrics.ExitSignal = &sig
		case "status":
			metrics.Status = value
		case "message":
			metrics.Message = value
		}
		if err != nil {
			return nil, fmt.Errorf("meta file key %s has bad value %q: %w", key, value, err)
		}
	}
	return metrics, nil
}
