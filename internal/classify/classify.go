// Package classify assigns every test to a subtask by matching subtask
// regexes against test input filenames in declared configuration order.
package classify

import (
	"github.com/ngthanhtrung23/VO-problemtools/internal/problem"
	"github.com/ngthanhtrung23/VO-problemtools/internal/report"
)

// Assignment is the test-to-subtask mapping computed once before any
// solution runs. BySubtask preserves the discovery order of tests.
type Assignment struct {
	SubtaskOf map[string]int
	BySubtask map[int][]problem.Test
}

// Classify evaluates subtask regexes top-to-bottom for each test; the first
// match wins, so problem authors control precedence by ordering subtasks in
// the config. Tests matching no subtask and subtasks claiming no tests are
// configuration violations; scoring against such a test set would be
// meaningless, so the caller must abort when any are returned.
func Classify(subtasks []problem.Subtask, tests []problem.Test) (Assignment, []report.Violation) {
	asg := Assignment{
		SubtaskOf: make(map[string]int, len(tests)),
		BySubtask: make(map[int][]problem.Test, len(subtasks)),
	}

	var vs []report.Violation
	for _, t := range tests {
		matched := false
		for i := range subtasks {
			if subtasks[i].Match(t.Name) {
				asg.SubtaskOf[t.Name] = subtasks[i].ID
				asg.BySubtask[subtasks[i].ID] = append(asg.BySubtask[subtasks[i].ID], t)
				matched = true
				break
			}
		}
		if !matched {
			vs = append(vs, report.Violationf(report.Configuration,
				"test %s matches no subtask regex", t.Name))
		}
	}

	// Every subtask must hold at least one test. Score-0 sample subtasks
	// still execute to catch crashes, so they are not exempt.
	for _, st := range subtasks {
		if len(asg.BySubtask[st.ID]) == 0 {
			vs = append(vs, report.Violationf(report.Configuration,
				"subtask %d has 0 tests", st.ID))
		}
	}

	return asg, vs
}
