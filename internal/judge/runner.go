package judge

import (
	"fmt"
	"io"
	"os"

	"github.com/ngthanhtrung23/VO-problemtools/internal/isolate"
	"github.com/ngthanhtrung23/VO-problemtools/internal/problem"
)

// Sandbox status classes, as reported by the run primitive.
const (
	StatusOK         = ""
	StatusTimeout    = "TO"
	StatusSignalled  = "SG"
	StatusRuntimeErr = "RE"
	StatusSandboxErr = "XX"
)

// RunStats is the raw result of executing one program against one input.
type RunStats struct {
	ExitCode  int64
	CpuSec    float64
	WallSec   float64
	MemKiB    int64
	OomKilled bool
	Status    string
	Message   string
}

// Runner executes a solution binary against a test input under the declared
// limits and writes the produced output to outputPath.
type Runner interface {
	Run(execPath string, inputPath string, outputPath string, limits problem.Limits) (RunStats, error)
}

// IsolateRunner runs each execution in a fresh isolate box. Boxes are the
// scarce resource here, so the scorer bounds how many run concurrently.
type IsolateRunner struct {
	iso *isolate.Isolate
}

func NewIsolateRunner() *IsolateRunner {
	return &IsolateRunner{iso: isolate.GetInstance()}
}

const boxExecName = "solution"

func (r *IsolateRunner) Run(execPath string, inputPath string, outputPath string, limits problem.Limits) (RunStats, error) {
	box, err := r.iso.NewBox()
	if err != nil {
		return RunStats{}, fmt.Errorf("failed to create isolate box: %w", err)
	}
	defer box.Close()

	executable, err := os.ReadFile(execPath)
	if err != nil {
		return RunStats{}, fmt.Errorf("failed to read executable: %w", err)
	}
	if err := box.AddFile(boxExecName, executable); err != nil {
		return RunStats{}, fmt.Errorf("failed to add executable to box: %w", err)
	}

	input, err := os.Open(inputPath)
	if err != nil {
		return RunStats{}, fmt.Errorf("failed to open test input: %w", err)
	}
	defer input.Close()

	constraints := isolate.NewConstraints(limits.TimeSecs, limits.MemoryMBs)
	process, err := box.Run("./"+boxExecName, input, &constraints)
	if err != nil {
		return RunStats{}, fmt.Errorf("failed to run solution: %w", err)
	}

	produced, err := os.Create(outputPath)
	if err != nil {
		return RunStats{}, fmt.Errorf("failed to create output file: %w", err)
	}
	defer produced.Close()

	// Stream stdout to the produced-output file while the process runs;
	// stderr is drained and discarded so the pipe cannot fill up.
	if _, err := io.Copy(produced, process.Stdout()); err != nil {
		return RunStats{}, fmt.Errorf("failed to collect solution output: %w", err)
	}
	_, _ = io.Copy(io.Discard, process.Stderr())

	metrics, err := process.Wait()
	if err != nil {
		return RunStats{}, fmt.Errorf("failed to collect run metrics: %w", err)
	}

	return RunStats{
		ExitCode:  metrics.ExitCode,
		CpuSec:    metrics.TimeSec,
		WallSec:   metrics.TimeWallSec,
		MemKiB:    metrics.CgMemKb,
		OomKilled: metrics.CgOomKilled,
		Status:    metrics.Status,
		Message:   metrics.Message,
	}, nil
}
