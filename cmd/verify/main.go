package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/lmittmann/tint"
	"github.com/nats-io/nats.go"
	"github.com/urfave/cli/v3"

	"github.com/ngthanhtrung23/VO-problemtools/internal/compile"
	"github.com/ngthanhtrung23/VO-problemtools/internal/environment"
	"github.com/ngthanhtrung23/VO-problemtools/internal/gatherer/natsgath"
	"github.com/ngthanhtrung23/VO-problemtools/internal/gatherer/sqsgath"
	"github.com/ngthanhtrung23/VO-problemtools/internal/gatherer/termgath"
	"github.com/ngthanhtrung23/VO-problemtools/internal/judge"
	"github.com/ngthanhtrung23/VO-problemtools/internal/report"
	"github.com/ngthanhtrung23/VO-problemtools/internal/s3downl"
	"github.com/ngthanhtrung23/VO-problemtools/internal/testdata"
	"github.com/ngthanhtrung23/VO-problemtools/internal/verifier"
)

func main() {
	cmd := &cli.Command{
		Name:      "verify",
		Usage:     "verify a competitive-programming problem package",
		ArgsUsage: "PROBLEM_DIR",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "workers",
				Usage: "max parallel test executions",
				Value: runtime.NumCPU(),
			},
			&cli.StringFlag{
				Name:  "publish",
				Usage: "where to publish results: terminal, nats or sqs",
				Value: "terminal",
			},
			&cli.StringFlag{
				Name:  "testlib",
				Usage: "directory with testlib.h",
				Value: "testlib",
			},
			&cli.StringFlag{
				Name:  "env",
				Usage: ".env file with queue/object-storage settings",
				Value: ".env",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "print per-test verdicts and debug logs",
			},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	level := slog.LevelInfo
	if cmd.Bool("verbose") {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	})))

	problemDir := cmd.Args().First()
	if problemDir == "" {
		return cli.Exit("usage: verify [flags] PROBLEM_DIR", 2)
	}

	env := environment.ReadEnvConfig(cmd.String("env"))

	workDir := filepath.Join("var", "verify")
	compiler, err := compile.New(filepath.Join(workDir, "bin"), cmd.String("testlib"))
	if err != nil {
		return err
	}

	store, err := testdata.NewStore(
		filepath.Join(workDir, "tests"),
		s3downl.GetS3DownloadFunc(env.AwsRegion),
	)
	if err != nil {
		return err
	}

	scratchDir := filepath.Join(workDir, "out")
	if err := os.MkdirAll(scratchDir, 0755); err != nil {
		return err
	}

	gath, err := newGatherer(cmd, env)
	if err != nil {
		return err
	}

	engine := &verifier.Engine{
		Gatherer:   gath,
		Compiler:   compiler,
		Runner:     judge.NewIsolateRunner(),
		Store:      store,
		Workers:    int(cmd.Int("workers")),
		ScratchDir: scratchDir,
	}

	rep, err := engine.Verify(problemDir)
	if err != nil {
		return err
	}
	if !rep.OK() {
		return cli.Exit(fmt.Sprintf("verification failed with %d violation(s)", len(rep.Violations)), 1)
	}
	return nil
}

func newGatherer(cmd *cli.Command, env *environment.EnvConfig) (report.Gatherer, error) {
	switch cmd.String("publish") {
	case "terminal":
		return termgath.New(cmd.Bool("verbose")), nil
	case "nats":
		nc, err := nats.Connect(env.NatsUrl)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to NATS: %w", err)
		}
		return natsgath.New(nc, env.NatsSubject), nil
	case "sqs":
		if env.SqsQueueUrl == "" {
			return nil, fmt.Errorf("SQS_QUEUE_URL is not configured")
		}
		return sqsgath.New(env.AwsRegion, env.SqsQueueUrl), nil
	}
	return nil, fmt.Errorf("unknown publish target %q", cmd.String("publish"))
}
