package environment

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
)

// EnvConfig holds process-level settings for the optional remote
// integrations. A missing .env file is fine for purely local verification.
type EnvConfig struct {
	AwsRegion   string
	SqsQueueUrl string

	NatsUrl     string
	NatsSubject string
}

func ReadEnvConfig(path string) *EnvConfig {
	if err := godotenv.Load(path); err != nil {
		slog.Debug("no .env file loaded", "path", path)
	}

	result := &EnvConfig{
		AwsRegion:   os.Getenv("AWS_REGION"),
		SqsQueueUrl: os.Getenv("SQS_QUEUE_URL"),
		NatsUrl:     os.Getenv("NATS_URL"),
		NatsSubject: os.Getenv("NATS_SUBJECT"),
	}
	if result.AwsRegion == "" {
		result.AwsRegion = "eu-central-1"
	}
	if result.NatsUrl == "" {
		result.NatsUrl = "nats://localhost:4222"
	}
	if result.NatsSubject == "" {
		result.NatsSubject = "problemtools.verify"
	}
	return result
}
