// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package encrypt

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staranto/k7ctl/internal/config"
)

func testSource() *config.Type {
	return &config.Type{Data: map[string]interface{}{
		"encrypt": map[string]interface{}{
			"default": map[string]interface{}{
				"type": "sodium",
				"key":  testKey,
			},
			"legacy": map[string]interface{}{
				"type":   "openssl",
				"cipher": "aes-256-cbc",
				"key":    testKey,
			},
			"nokey": map[string]interface{}{
				"type": "sodium",
			},
		},
	}}
}

func TestRegistry_Instance(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry(testSource())

	def, err := r.Instance(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, DefaultGroup, def.Group)
	assert.IsType(t, &Sodium{}, def.Engine)

	again, err := r.Instance(ctx, "default")
	require.NoError(t, err)
	assert.Same(t, def, again)

	legacy, err := r.Instance(ctx, "legacy")
	require.NoError(t, err)
	assert.IsType(t, &OpenSSL{}, legacy.Engine)
	assert.NotSame(t, def, legacy)
}

func TestRegistry_InstanceErrors(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry(testSource())

	_, err := r.Instance(ctx, "missing")
	require.Error(t, err)
	assert.Equal(t, "Failed to load encryption group: missing", err.Error())

	_, err = r.Instance(ctx, "nokey")
	require.Error(t, err)
	assert.Equal(t, NoKeyMessage, err.Error())

	_, err = NewRegistry(nil).Instance(ctx, "default")
	var cerr *ConfigError
	assert.ErrorAs(t, err, &cerr)
}

func TestEncrypter_EncodeDecode(t *testing.T) {
	r := NewRegistry(testSource())
	for _, group := range []string{"default", "legacy"} {
		t.Run(group, func(t *testing.T) {
			e, err := r.Instance(context.Background(), group)
			require.NoError(t, err)

			a, err := e.Encode("the message")
			require.NoError(t, err)
			b, err := e.Encode("the message")
			require.NoError(t, err)
			assert.NotEqual(t, a, b, "each Encode uses a fresh IV")

			for _, ct := range []string{a, b} {
				pt, err := e.Decode(ct)
				require.NoError(t, err)
				assert.Equal(t, "the message", pt)
			}
		})
	}
}

func TestEngines(t *testing.T) {
	assert.Equal(t, []string{"chacha", "openssl", "sodium"}, Engines())
}
