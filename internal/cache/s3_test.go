// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeObject struct {
	data []byte
	meta map[string]string
}

// fakeS3 is an in-memory stand-in for the S3 client.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string]fakeObject
	deletes int
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string]fakeObject{}}
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	obj, ok := f.objects[*in.Key]
	if !ok {
		return nil, &types.NoSuchKey{Message: awsv2.String("missing")}
	}
	return &s3.GetObjectOutput{
		Body:     io.NopCloser(bytes.NewReader(obj.data)),
		Metadata: obj.meta,
	}, nil
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[*in.Key] = fakeObject{data: data, meta: in.Metadata}
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, *in.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeS3) DeleteObjects(_ context.Context, in *s3.DeleteObjectsInput, _ ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes++
	for _, id := range in.Delete.Objects {
		delete(f.objects, *id.Key)
	}
	return &s3.DeleteObjectsOutput{}, nil
}

func (f *fakeS3) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var keys []string
	for k := range f.objects {
		if strings.HasPrefix(k, awsv2.ToString(in.Prefix)) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	out := &s3.ListObjectsV2Output{IsTruncated: awsv2.Bool(false)}
	for _, k := range keys {
		out.Contents = append(out.Contents, types.Object{Key: awsv2.String(k)})
	}
	return out, nil
}

func newTestS3(t *testing.T, cfg map[string]any) (*S3, *fakeS3) {
	t.Helper()
	if cfg == nil {
		cfg = map[string]any{"bucket": "k7-test"}
	}
	fake := newFakeS3()
	d := &S3{}
	d.bind(d, cfg)
	return newS3WithClient(d, fake), fake
}

func TestNewS3_MissingBucket(t *testing.T) {
	_, err := NewS3(context.Background(), map[string]any{})
	require.Error(t, err)
	assert.Equal(t, "Bucket not available in K7 Cache configuration", err.Error())
}

func TestS3_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	d, fake := newTestS3(t, nil)

	_, ok, err := d.Get(ctx, "foo")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, d.Set(ctx, "foo", []byte("bar"), time.Minute))
	_, stored := fake.objects["k7-cache/0beec7b5ea3f0fdbc95d0dd47f3c5bc275da8a33"]
	assert.True(t, stored)

	got, ok, err := d.Get(ctx, "foo")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("bar"), got)

	require.NoError(t, d.Delete(ctx, "foo"))
	_, ok, err = d.Get(ctx, "foo")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestS3_Expiry(t *testing.T) {
	ctx := context.Background()
	d, fake := newTestS3(t, nil)

	now := time.Unix(1_700_000_000, 0)
	d.now = func() time.Time { return now }

	require.NoError(t, d.Set(ctx, "foo", []byte("bar"), 5*time.Second))
	now = now.Add(10 * time.Second)

	_, ok, err := d.Get(ctx, "foo")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, fake.objects)
}

func TestS3_DeleteAll(t *testing.T) {
	ctx := context.Background()
	d, fake := newTestS3(t, map[string]any{"bucket": "k7-test", "key_prefix": "grp/"})

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, d.Set(ctx, id, []byte(id), 0))
	}
	fake.objects["other/keep"] = fakeObject{data: []byte("x")}

	require.NoError(t, d.DeleteAll(ctx))
	assert.Equal(t, 1, fake.deletes)
	assert.Len(t, fake.objects, 1)
	assert.Contains(t, fake.objects, "other/keep")
}
