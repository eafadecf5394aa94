// Package sqsgath publishes verification progress events to an AWS SQS
// queue.
package sqsgath

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/ngthanhtrung23/VO-problemtools/internal/report"
)

type sqsGatherer struct {
	sqsClient *sqs.Client
	queueUrl  string
	runUuid   string
}

func New(region string, queueUrl string) *sqsGatherer {
	cfg, err := config.LoadDefaultConfig(context.TODO(), config.WithRegion(region))
	if err != nil {
		panic(fmt.Sprintf("unable to load SDK config, %v", err))
	}

	return &sqsGatherer{
		sqsClient: sqs.NewFromConfig(cfg),
		queueUrl:  queueUrl,
	}
}

func (g *sqsGatherer) send(msg interface{}) {
	b, err := json.Marshal(msg)
	if err != nil {
		slog.Error("failed to marshal message", "error", err)
		return
	}

	_, err = g.sqsClient.SendMessage(context.TODO(), &sqs.SendMessageInput{
		QueueUrl:    aws.String(g.queueUrl),
		MessageBody: aws.String(string(b)),
	})
	if err != nil {
		slog.Error("failed to send message to SQS", "error", err)
	}
}

func (g *sqsGatherer) StartRun(runUuid string, problemDir string) {
	g.runUuid = runUuid
	g.send(report.NewStartedRun(runUuid, problemDir))
}

func (g *sqsGatherer) Status(msg string, ok bool) {
	g.send(report.NewStatusLine(g.runUuid, msg, ok))
}

func (g *sqsGatherer) StartSolution(name string, testCount int) {
	g.send(report.NewStartedSolution(g.runUuid, name, testCount))
}

func (g *sqsGatherer) FinishTest(solution string, outcome report.TestOutcome) {
	g.send(report.NewFinishedTest(g.runUuid, solution, outcome))
}

func (g *sqsGatherer) FinishSolution(res report.SolutionResult) {
	g.send(report.NewFinishedSolution(g.runUuid, res))
}

func (g *sqsGatherer) FinishRun(rep *report.Report) {
	g.send(report.NewFinishedRun(g.runUuid, rep))
}
