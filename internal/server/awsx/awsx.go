// Package awsx builds the aws.Config shared by the DynamoDB, SES, S3 and
// Cognito clients.
package awsx

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
)

// loadDefaultConfig is a seam for testing config.LoadDefaultConfig.
var loadDefaultConfig = config.LoadDefaultConfig

// Options override parts of the default AWS chain. Empty fields are ignored.
// Endpoint points every client at an emulator such as LocalStack or MinIO.
type Options struct {
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

func LoadConfig(ctx context.Context, o Options) (aws.Config, error) {
	var opts []func(*config.LoadOptions) error

	if o.Region != "" {
		opts = append(opts, config.WithRegion(o.Region))
	}
	if o.AccessKeyID != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			o.AccessKeyID,
			o.SecretAccessKey,
			"",
		)))
	}

	cfg, err := loadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, err
	}

	if o.Endpoint != "" {
		cfg.BaseEndpoint = aws.String(o.Endpoint)
	}

	return cfg, nil
}
