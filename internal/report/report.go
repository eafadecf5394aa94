package report

import (
	"fmt"
	"time"
)

// ViolationKind groups verification findings by the layer that produced them.
type ViolationKind string

const (
	Configuration ViolationKind = "configuration"
	Validation    ViolationKind = "validation"
	Compile       ViolationKind = "compile"
	CheckerDefect ViolationKind = "checker"
	ScoreBand     ViolationKind = "score_band"
	Warning       ViolationKind = "warning"
)

type Violation struct {
	Kind ViolationKind `json:"kind"`
	Msg  string        `json:"msg"`
}

func Violationf(kind ViolationKind, format string, args ...any) Violation {
	return Violation{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// TestOutcome is the judged result of one (solution, test) execution.
type TestOutcome struct {
	Test    string  `json:"test"`
	Subtask int     `json:"subtask"`
	Verdict string  `json:"verdict"`
	Score   float64 `json:"score"`
	CpuSec  float64 `json:"cpu_sec"`
	MemKiB  int64   `json:"mem_kib"`
	Msg     string  `json:"msg,omitempty"`
}

type SubtaskResult struct {
	SubtaskID int           `json:"subtask_id"`
	Score     float64       `json:"score"`
	MaxScore  int           `json:"max_score"`
	Tests     []TestOutcome `json:"tests"`
}

type SolutionResult struct {
	Name       string          `json:"name"`
	TotalScore float64         `json:"total_score"`
	MinScore   int             `json:"min_score"`
	MaxScore   int             `json:"max_score"`
	Compiled   bool            `json:"compiled"`
	Subtasks   []SubtaskResult `json:"subtasks"`
	InBand     bool            `json:"in_band"`
}

// Report is the terminal artifact of one verification run. An empty
// violation list means the problem package passed.
type Report struct {
	RunUuid    string           `json:"run_uuid"`
	ProblemDir string           `json:"problem_dir"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
	Violations []Violation      `json:"violations"`
	Solutions  []SolutionResult `json:"solutions"`
}

func (r *Report) OK() bool {
	return len(r.Violations) == 0
}

func (r *Report) Add(v ...Violation) {
	r.Violations = append(r.Violations, v...)
}

// Gatherer receives verification progress. Implementations publish to a
// terminal, a NATS subject or an SQS queue.
type Gatherer interface {
	StartRun(runUuid string, problemDir string)

	// Status reports a single named check, e.g. "subtask scores sum to 100".
	Status(msg string, ok bool)

	StartSolution(name string, testCount int)
	FinishTest(solution string, outcome TestOutcome)
	FinishSolution(res SolutionResult)

	FinishRun(rep *Report)
}
