package judge

import (
	"github.com/ngthanhtrung23/VO-problemtools/internal/problem"
	"github.com/ngthanhtrung23/VO-problemtools/internal/report"
)

// AggregateSubtask computes one subtask's score for one solution from the
// outcomes of all its tests: subtask score times the minimum per-test
// verdict score. One failing test caps the whole subtask at zero; with
// partial-credit checkers the weakest test still wins, scaled
// multiplicatively.
func AggregateSubtask(st problem.Subtask, outcomes []report.TestOutcome) report.SubtaskResult {
	minScore := 1.0
	for _, out := range outcomes {
		if out.Score < minScore {
			minScore = out.Score
		}
	}
	if len(outcomes) == 0 {
		// Classification guarantees every subtask has tests; an empty
		// slice here means the solution was never run (compile failure).
		minScore = 0
	}

	return report.SubtaskResult{
		SubtaskID: st.ID,
		Score:     float64(st.Score) * minScore,
		MaxScore:  st.Score,
		Tests:     outcomes,
	}
}
