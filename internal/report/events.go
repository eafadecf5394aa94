package report

// Wire events emitted by the queue gatherers. Every event carries the run
// uuid so consumers can correlate interleaved runs.

const (
	MsgTypeStartedRun   = "started_run"
	MsgTypeStatus       = "status"
	MsgTypeStartedSoln  = "started_solution"
	MsgTypeFinishedTest = "finished_test"
	MsgTypeFinishedSoln = "finished_solution"
	MsgTypeFinishedRun  = "finished_run"
)

type StartedRun struct {
	MsgType    string `json:"msg_type"`
	RunUuid    string `json:"run_uuid"`
	ProblemDir string `json:"problem_dir"`
}

type StatusLine struct {
	MsgType string `json:"msg_type"`
	RunUuid string `json:"run_uuid"`
	Msg     string `json:"msg"`
	Ok      bool   `json:"ok"`
}

type StartedSolution struct {
	MsgType   string `json:"msg_type"`
	RunUuid   string `json:"run_uuid"`
	Solution  string `json:"solution"`
	TestCount int    `json:"test_count"`
}

type FinishedTest struct {
	MsgType  string      `json:"msg_type"`
	RunUuid  string      `json:"run_uuid"`
	Solution string      `json:"solution"`
	Outcome  TestOutcome `json:"outcome"`
}

type FinishedSolution struct {
	MsgType string         `json:"msg_type"`
	RunUuid string         `json:"run_uuid"`
	Result  SolutionResult `json:"result"`
}

type FinishedRun struct {
	MsgType string  `json:"msg_type"`
	RunUuid string  `json:"run_uuid"`
	Report  *Report `json:"report"`
}

func NewStartedRun(runUuid, problemDir string) StartedRun {
	return StartedRun{MsgType: MsgTypeStartedRun, RunUuid: runUuid, ProblemDir: problemDir}
}

func NewStatusLine(runUuid, msg string, ok bool) StatusLine {
	return StatusLine{MsgType: MsgTypeStatus, RunUuid: runUuid, Msg: msg, Ok: ok}
}

func NewStartedSolution(runUuid, solution string, testCount int) StartedSolution {
	return StartedSolution{MsgType: MsgTypeStartedSoln, RunUuid: runUuid, Solution: solution, TestCount: testCount}
}

func NewFinishedTest(runUuid, solution string, outcome TestOutcome) FinishedTest {
	return FinishedTest{MsgType: MsgTypeFinishedTest, RunUuid: runUuid, Solution: solution, Outcome: outcome}
}

func NewFinishedSolution(runUuid string, result SolutionResult) FinishedSolution {
	return FinishedSolution{MsgType: MsgTypeFinishedSoln, RunUuid: runUuid, Result: result}
}

func NewFinishedRun(runUuid string, rep *Report) FinishedRun {
	return FinishedRun{MsgType: MsgTypeFinishedRun, RunUuid: runUuid, Report: rep}
}
