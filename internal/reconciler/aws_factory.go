// Where: internal/reconciler/aws_factory.go
// What: AWS client factory for trigger reconciliation.
// Why: Encapsulate SDK configuration for profiles and local endpoints.
package reconciler

import (
	"context"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

// ClientFactory builds the per-service provider clients the reconciler needs.
// Each call site receives exactly the client it asks for; nothing is shared
// through package globals.
type ClientFactory interface {
	Function(ctx context.Context) (FunctionAPI, error)
	Events(ctx context.Context) (EventsAPI, error)
	Topics(ctx context.Context) (TopicsAPI, error)
	Storage(ctx context.Context) (StorageAPI, error)
}

// AWSClientFactory builds clients from the shared AWS configuration.
type AWSClientFactory struct {
	// Profile selects a shared-config credential profile; empty uses the
	// default chain.
	Profile string
	// Region overrides the resolved region when set.
	Region string
}

func (f AWSClientFactory) Function(ctx context.Context) (FunctionAPI, error) {
	cfg, err := f.load(ctx)
	if err != nil {
		return nil, err
	}
	client := lambda.NewFromConfig(cfg, func(options *lambda.Options) {
		if endpoint := localEndpoint(); endpoint != "" {
			options.BaseEndpoint = aws.String(endpoint)
		}
	})
	return awsFunctionClient{client: client}, nil
}

func (f AWSClientFactory) Events(ctx context.Context) (EventsAPI, error) {
	cfg, err := f.load(ctx)
	if err != nil {
		return nil, err
	}
	client := eventbridge.NewFromConfig(cfg, func(options *eventbridge.Options) {
		if endpoint := localEndpoint(); endpoint != "" {
			options.BaseEndpoint = aws.String(endpoint)
		}
	})
	return awsEventsClient{client: client}, nil
}

func (f AWSClientFactory) Topics(ctx context.Context) (TopicsAPI, error) {
	cfg, err := f.load(ctx)
	if err != nil {
		return nil, err
	}
	client := sns.NewFromConfig(cfg, func(options *sns.Options) {
		if endpoint := localEndpoint(); endpoint != "" {
			options.BaseEndpoint = aws.String(endpoint)
		}
	})
	return awsTopicsClient{client: client}, nil
}

func (f AWSClientFactory) Storage(ctx context.Context) (StorageAPI, error) {
	cfg, err := f.load(ctx)
	if err != nil {
		return nil, err
	}
	client := s3.NewFromConfig(cfg, func(options *s3.Options) {
		if endpoint := localEndpoint(); endpoint != "" {
			options.BaseEndpoint = aws.String(endpoint)
			options.UsePathStyle = true
		}
	})
	return awsStorageClient{client: client}, nil
}

func (f AWSClientFactory) load(ctx context.Context) (aws.Config, error) {
	options := []func(*config.LoadOptions) error{}
	if f.Profile != "" {
		options = append(options, config.WithSharedConfigProfile(f.Profile))
	}
	if f.Region != "" {
		options = append(options, config.WithRegion(f.Region))
	}
	// Local stacks run without real credentials.
	if localEndpoint() != "" {
		options = append(options, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(localAccessKey(), localSecretKey(), ""),
		))
	}
	return config.LoadDefaultConfig(ctx, options...)
}

// localEndpoint returns the base endpoint override for local stacks
// (LocalStack and friends). Empty means real AWS endpoints.
func localEndpoint() string {
	return os.Getenv("FUNCWIRE_ENDPOINT")
}

func localAccessKey() string {
	if value := os.Getenv("FUNCWIRE_ACCESS_KEY"); value != "" {
		return value
	}
	return "dummy"
}

func localSecretKey() string {
	if value := os.Getenv("FUNCWIRE_SECRET_KEY"); value != "" {
		return value
	}
	return "dummy"
}
