// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/apex/log"
	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	awsx "github.com/staranto/k7ctl/internal/aws"
)

const (
	s3ExpiresMeta      = "k7-expires"
	s3DefaultKeyPrefix = "k7-cache/"
)

func init() {
	RegisterDriver("s3", func(ctx context.Context, cfg map[string]any) (Driver, error) {
		return NewS3(ctx, cfg)
	})
}

// s3API is the slice of the S3 client the driver needs.
type s3API interface {
	GetObject(context.Context, *s3.GetObjectInput, ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(context.Context, *s3.PutObjectInput, ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(context.Context, *s3.DeleteObjectInput, ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	DeleteObjects(context.Context, *s3.DeleteObjectsInput, ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error)
	s3.ListObjectsV2APIClient
}

// S3 stores one object per entry below key_prefix in bucket. The expiry is
// kept in object metadata.
type S3 struct {
	Base
	client    s3API
	bucket    string
	keyPrefix string
}

// NewS3 builds an S3 driver. bucket is required; region, profile, endpoint,
// path_style and max_attempts tune the client.
func NewS3(ctx context.Context, cfg map[string]any) (*S3, error) {
	d := &S3{}
	d.bind(d, cfg)

	if d.stringValue("bucket", "") == "" {
		return nil, &Error{Message: "Bucket not available in K7 Cache configuration"}
	}

	client, err := awsx.NewS3Client(ctx, awsx.S3Settings{
		Profile:     d.stringValue("profile", ""),
		Region:      d.stringValue("region", ""),
		Endpoint:    d.stringValue("endpoint", ""),
		PathStyle:   d.boolValue("path_style", false),
		MaxAttempts: d.intValue("max_attempts", 0),
	})
	if err != nil {
		return nil, &Error{Message: "Failed to load AWS configuration for K7 Cache", Err: err}
	}
	return newS3WithClient(d, client), nil
}

func newS3WithClient(d *S3, client s3API) *S3 {
	d.client = client
	d.bucket = d.stringValue("bucket", "")
	d.keyPrefix = d.stringValue("key_prefix", s3DefaultKeyPrefix)
	return d
}

func (d *S3) key(id string) string {
	return d.keyPrefix + d.SanitizeID(id)
}

func (d *S3) Get(ctx context.Context, id string) ([]byte, bool, error) {
	key := d.key(id)
	out, err := d.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: awsv2.String(d.bucket),
		Key:    awsv2.String(key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get s3://%s/%s: %w", d.bucket, key, err)
	}
	defer out.Body.Close() //nolint:errcheck

	if exp, ok := out.Metadata[s3ExpiresMeta]; ok {
		expires, err := strconv.ParseInt(exp, 10, 64)
		if err != nil || d.expired(expires) {
			if err := d.Delete(ctx, id); err != nil {
				log.WithError(err).Warnf("failed to remove expired object %s", key)
			}
			return nil, false, nil
		}
	}

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read s3://%s/%s: %w", d.bucket, key, err)
	}
	return data, true, nil
}

func (d *S3) Set(ctx context.Context, id string, data []byte, lifetime time.Duration) error {
	key := d.key(id)
	_, err := d.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: awsv2.String(d.bucket),
		Key:    awsv2.String(key),
		Body:   bytes.NewReader(data),
		Metadata: map[string]string{
			s3ExpiresMeta: strconv.FormatInt(d.expiresAt(lifetime), 10),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to put s3://%s/%s: %w", d.bucket, key, err)
	}
	return nil
}

func (d *S3) Delete(ctx context.Context, id string) error {
	key := d.key(id)
	_, err := d.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: awsv2.String(d.bucket),
		Key:    awsv2.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete s3://%s/%s: %w", d.bucket, key, err)
	}
	return nil
}

// DeleteAll removes every object below key_prefix, a page at a time.
func (d *S3) DeleteAll(ctx context.Context) error {
	p := s3.NewListObjectsV2Paginator(d.client, &s3.ListObjectsV2Input{
		Bucket: awsv2.String(d.bucket),
		Prefix: awsv2.String(d.keyPrefix),
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("failed to list s3://%s/%s: %w", d.bucket, d.keyPrefix, err)
		}
		if len(page.Contents) == 0 {
			continue
		}
		ids := make([]types.ObjectIdentifier, 0, len(page.Contents))
		for _, obj := range page.Contents {
			ids = append(ids, types.ObjectIdentifier{Key: obj.Key})
		}
		_, err = d.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: awsv2.String(d.bucket),
			Delete: &types.Delete{Objects: ids, Quiet: awsv2.Bool(true)},
		})
		if err != nil {
			return fmt.Errorf("failed to delete objects in s3://%s: %w", d.bucket, err)
		}
		log.Debugf("deleted %d objects from s3://%s/%s", len(ids), d.bucket, d.keyPrefix)
	}
	return nil
}
