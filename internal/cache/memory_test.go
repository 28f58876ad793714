// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_SetGet(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(nil)

	_, ok, err := m.Get(ctx, "food")
	require.NoError(t, err)
	assert.False(t, ok)

	in := []byte("apple")
	require.NoError(t, m.Set(ctx, "food", in, time.Minute))
	in[0] = 'X'

	got, ok, err := m.Get(ctx, "food")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("apple"), got)

	got[0] = 'Y'
	again, _, _ := m.Get(ctx, "food")
	assert.Equal(t, []byte("apple"), again)
}

func TestMemory_Expiry(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(nil)

	require.NoError(t, m.Set(ctx, "food", []byte("apple"), 20*time.Millisecond))
	time.Sleep(40 * time.Millisecond)

	_, ok, err := m.Get(ctx, "food")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemory_DeleteAndFlush(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(nil)

	require.NoError(t, m.Set(ctx, "food", []byte("apple"), 0))
	require.NoError(t, m.Set(ctx, "drink", []byte("juice"), 0))
	assert.Equal(t, 2, m.ItemCount())

	require.NoError(t, m.Delete(ctx, "food"))
	_, ok, _ := m.Get(ctx, "food")
	assert.False(t, ok)

	require.NoError(t, m.DeleteAll(ctx))
	assert.Equal(t, 0, m.ItemCount())
}

func TestMemory_Arithmetic(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(nil)

	var a Arithmetic = m

	_, err := a.Increment(ctx, "hits", 1)
	assert.Error(t, err)

	require.NoError(t, m.Set(ctx, "hits", []byte("10"), time.Minute))

	n, err := a.Increment(ctx, "hits", 5)
	require.NoError(t, err)
	assert.Equal(t, int64(15), n)

	n, err = a.Decrement(ctx, "hits", 20)
	require.NoError(t, err)
	assert.Equal(t, int64(-5), n)

	got, ok, err := m.Get(ctx, "hits")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("-5"), got)

	require.NoError(t, m.Set(ctx, "name", []byte("apple"), 0))
	_, err = a.Increment(ctx, "name", 1)
	assert.ErrorContains(t, err, "not an integer")
}
