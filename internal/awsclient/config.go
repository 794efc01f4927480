package awsclient

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/directoryservice"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/workspaces"
	"github.com/aws/smithy-go"
)

type Config struct {
	Region      string `envconfig:"AWS_REGION"`
	MaxAttempts int    `envconfig:"PROVISIONER_AWS_MAX_ATTEMPTS" default:"10"`
}

// Load resolves the shared SDK configuration. Throttling and transient
// failures are absorbed by the SDK retryer, bounded by MaxAttempts.
func Load(ctx context.Context, cfg Config) (aws.Config, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRetryMaxAttempts(cfg.MaxAttempts),
	}
	if cfg.Region != "" {
		opts = append(opts, config.WithRegion(cfg.Region))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}
	return awsCfg, nil
}

// Clients are the provider API clients, built once per process.
type Clients struct {
	WorkSpaces *workspaces.Client
	Directory  *directoryservice.Client
	SSM        *ssm.Client
}

func NewClients(awsCfg aws.Config) *Clients {
	return &Clients{
		WorkSpaces: workspaces.NewFromConfig(awsCfg),
		Directory:  directoryservice.NewFromConfig(awsCfg),
		SSM:        ssm.NewFromConfig(awsCfg),
	}
}

// IsErrorCode reports whether err carries the provider error code.
func IsErrorCode(err error, code string) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode() == code
	}
	return false
}

const CodeResourceNotFound = "ResourceNotFoundException"
