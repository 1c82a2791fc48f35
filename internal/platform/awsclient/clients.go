package awsclient

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/kendra"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lexmodelbuildingservice"
	"github.com/aws/aws-sdk-go-v2/service/ssm"

	"github.com/lexkendra/lexkendra/internal/platform/s3"
)

// Options controls how the shared AWS configuration is loaded.
type Options struct {
	Region string

	// Profile selects a shared config profile. Empty uses the default chain.
	Profile string

	// Endpoint overrides the service endpoint for every client.
	// Used for local testing against emulators.
	Endpoint string

	// AccessKeyID and SecretAccessKey switch to static credentials when both are set.
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
}

// Clients is the set of service clients shared by one process.
type Clients struct {
	Config         aws.Config
	Kendra         *kendra.Client
	Lex            *lexmodelbuildingservice.Client
	CloudFormation *cloudformation.Client
	SSM            *ssm.Client
	EventBridge    *eventbridge.Client
	Lambda         *lambda.Client
	S3             *s3.Client
}

// Load resolves the AWS configuration and builds every client from it.
func Load(ctx context.Context, opts Options) (*Clients, error) {
	cfg, err := LoadConfig(ctx, opts)
	if err != nil {
		return nil, err
	}
	return New(cfg), nil
}

// LoadConfig resolves the AWS configuration without building clients.
func LoadConfig(ctx context.Context, opts Options) (aws.Config, error) {
	var loadOpts []func(*config.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(opts.Region))
	}
	if opts.Profile != "" {
		loadOpts = append(loadOpts, config.WithSharedConfigProfile(opts.Profile))
	}
	if opts.AccessKeyID != "" && opts.SecretAccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, opts.SessionToken),
		))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}
	if opts.Endpoint != "" {
		cfg.BaseEndpoint = aws.String(opts.Endpoint)
	}
	if cfg.Region == "" {
		return aws.Config{}, fmt.Errorf("no AWS region configured (set AWS_REGION or region in the config file)")
	}
	return cfg, nil
}

// New builds every client from an already resolved configuration.
func New(cfg aws.Config) *Clients {
	return &Clients{
		Config:         cfg,
		Kendra:         kendra.NewFromConfig(cfg),
		Lex:            lexmodelbuildingservice.NewFromConfig(cfg),
		CloudFormation: cloudformation.NewFromConfig(cfg),
		SSM:            ssm.NewFromConfig(cfg),
		EventBridge:    eventbridge.NewFromConfig(cfg),
		Lambda:         lambda.NewFromConfig(cfg),
		S3:             s3.NewFromConfig(cfg),
	}
}
