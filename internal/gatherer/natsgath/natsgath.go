// Package natsgath publishes verification progress events to a NATS
// subject, for CI pipelines that verify packages remotely.
package natsgath

import (
	"encoding/json"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/ngthanhtrung23/VO-problemtools/internal/report"
)

type natsGatherer struct {
	nc      *nats.Conn
	subject string
	runUuid string
}

// New creates a NATS gatherer that streams events to the given subject.
func New(nc *nats.Conn, subject string) *natsGatherer {
	return &natsGatherer{nc: nc, subject: subject}
}

func (g *natsGatherer) send(msg interface{}) {
	b, err := json.Marshal(msg)
	if err != nil {
		slog.Error("failed to marshal message", "error", err)
		return
	}
	if err := g.nc.Publish(g.subject, b); err != nil {
		slog.Error("failed to publish message to NATS", "error", err)
	}
}

func (g *natsGatherer) StartRun(runUuid string, problemDir string) {
	g.runUuid = runUuid
	g.send(report.NewStartedRun(runUuid, problemDir))
}

func (g *natsGatherer) Status(msg string, ok bool) {
	g.send(report.NewStatusLine(g.runUuid, msg, ok))
}

func (g *natsGatherer) StartSolution(name string, testCount int) {
	g.send(report.NewStartedSolution(g.runUuid, name, testCount))
}

func (g *natsGatherer) FinishTest(solution string, outcome report.TestOutcome) {
	outcome.Msg = trimStrToRect(outcome.Msg, maxMsgHeight, maxMsgWidth)
	g.send(report.NewFinishedTest(g.runUuid, solution, outcome))
}

func (g *natsGatherer) FinishSolution(res report.SolutionResult) {
	g.send(report.NewFinishedSolution(g.runUuid, res))
}

func (g *natsGatherer) FinishRun(rep *report.Report) {
	g.send(report.NewFinishedRun(g.runUuid, rep))
}
