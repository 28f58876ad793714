// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package aws

import (
	"context"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	"github.com/aws/aws-sdk-go-v2/config"
	s3v2 "github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Settings are the connection knobs of an s3 cache group. Zero values
// inherit the shell's AWS setup (AWS_PROFILE, shared config, env, IMDS).
type S3Settings struct {
	Profile  string
	Region   string
	Endpoint string
	// PathStyle addresses buckets as endpoint/bucket, as MinIO expects.
	PathStyle   bool
	MaxAttempts int
}

// LoadOptions returns the config loader options for s.
func (s S3Settings) LoadOptions() []func(*config.LoadOptions) error {
	var opts []func(*config.LoadOptions) error
	if s.Profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(s.Profile))
	}
	if s.Region != "" {
		opts = append(opts, config.WithRegion(s.Region))
	}
	if s.MaxAttempts > 0 {
		n := s.MaxAttempts
		opts = append(opts, config.WithRetryer(func() awsv2.Retryer {
			return retry.AddWithMaxAttempts(retry.NewStandard(), n)
		}))
	}
	return opts
}

// ClientOptions applies the endpoint override to an S3 client.
func (s S3Settings) ClientOptions(o *s3v2.Options) {
	if s.Endpoint != "" {
		o.BaseEndpoint = awsv2.String(s.Endpoint)
	}
	o.UsePathStyle = s.PathStyle
}

// NewS3Client loads AWS config for s and returns an S3 client.
func NewS3Client(ctx context.Context, s S3Settings) (*s3v2.Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx, s.LoadOptions()...)
	if err != nil {
		return nil, err
	}
	return s3v2.NewFromConfig(cfg, s.ClientOptions), nil
}
