// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMangleArguments(t *testing.T) {
	sets := map[string][]string{
		"tasks.cache:set.defaults": {"--lifetime 10m"},
		"tasks.cache:set.forever":  {"--lifetime -1s", "--group files"},
	}
	lookup := func(key string) ([]string, error) {
		if v, ok := sets[key]; ok {
			return v, nil
		}
		return nil, errors.New("not found")
	}

	tests := []struct {
		name    string
		args    []string
		want    []string
		wantErr string
	}{
		{
			name: "no task",
			args: []string{"k7ctl", "--version"},
			want: []string{"k7ctl", "--version"},
		},
		{
			name: "defaults applied",
			args: []string{"k7ctl", "cache:set", "k", "v"},
			want: []string{"k7ctl", "cache:set", "--lifetime", "10m", "k", "v"},
		},
		{
			name: "named set",
			args: []string{"k7ctl", "cache:set", "@forever", "k", "v"},
			want: []string{"k7ctl", "cache:set", "--lifetime", "-1s", "--group", "files", "k", "v"},
		},
		{
			name:    "unknown set",
			args:    []string{"k7ctl", "cache:set", "@nope", "k"},
			wantErr: "argument set nope not found for cache:set",
		},
		{
			name: "literal @ value",
			args: []string{"k7ctl", "cache:set", "handle", "@alice"},
			want: []string{"k7ctl", "cache:set", "--lifetime", "10m", "handle", "@alice"},
		},
		{
			name: "@ value after terminator",
			args: []string{"k7ctl", "encrypt:encode", "--", "@secret"},
			want: []string{"k7ctl", "encrypt:encode", "--", "@secret"},
		},
		{
			name: "only the first @ is a set",
			args: []string{"k7ctl", "cache:set", "@forever", "id", "@b"},
			want: []string{"k7ctl", "cache:set", "--lifetime", "-1s", "--group", "files", "id", "@b"},
		},
		{
			name: "help after terminator is data",
			args: []string{"k7ctl", "cache:set", "k", "--", "--help"},
			want: []string{"k7ctl", "cache:set", "--lifetime", "10m", "k", "--", "--help"},
		},
		{
			name: "no defaults for task",
			args: []string{"k7ctl", "cache:get", "k"},
			want: []string{"k7ctl", "cache:get", "k"},
		},
		{
			name: "help untouched",
			args: []string{"k7ctl", "cache:set", "--help"},
			want: []string{"k7ctl", "cache:set", "--help"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := mangleArguments(tt.args, lookup)
			if tt.wantErr != "" {
				assert.EqualError(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
