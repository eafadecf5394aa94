package judge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ngthanhtrung23/VO-problemtools/internal/problem"
	"github.com/ngthanhtrung23/VO-problemtools/internal/report"
)

func scoredOutcomes(scores ...float64) []report.TestOutcome {
	outs := make([]report.TestOutcome, 0, len(scores))
	for _, s := range scores {
		outs = append(outs, report.TestOutcome{Score: s})
	}
	return outs
}

func TestAggregateSubtaskAllPass(t *testing.T) {
	st, err := problem.NewSubtask(1, "sub1.*", 50)
	require.NoError(t, err)

	res := AggregateSubtask(st, scoredOutcomes(1, 1, 1))
	assert.Equal(t, 50.0, res.Score)
	assert.Equal(t, 50, res.MaxScore)
}

func TestAggregateSubtaskOneFailureCapsToZero(t *testing.T) {
	st, err := problem.NewSubtask(1, "sub1.*", 50)
	require.NoError(t, err)

	res := AggregateSubtask(st, scoredOutcomes(1, 0, 1))
	assert.Equal(t, 0.0, res.Score, "a single failing test caps the whole subtask")
}

func TestAggregateSubtaskWeakestPartialWins(t *testing.T) {
	st, err := problem.NewSubtask(1, "sub1.*", 40)
	require.NoError(t, err)

	res := AggregateSubtask(st, scoredOutcomes(1, 0.5, 0.75))
	assert.InDelta(t, 20.0, res.Score, 1e-9)
}

func TestAggregateSubtaskZeroScoreSubtask(t *testing.T) {
	st, err := problem.NewSubtask(0, "sample.*", 0)
	require.NoError(t, err)

	res := AggregateSubtask(st, scoredOutcomes(1, 1))
	assert.Equal(t, 0.0, res.Score)
	assert.Equal(t, 0, res.MaxScore)
}

func TestAggregateSubtaskNoOutcomes(t *testing.T) {
	st, err := problem.NewSubtask(1, "sub1.*", 50)
	require.NoError(t, err)

	res := AggregateSubtask(st, nil)
	assert.Equal(t, 0.0, res.Score)
}
