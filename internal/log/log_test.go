// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package log

import (
	"bytes"
	"errors"
	"testing"

	"github.com/apex/log"
	"github.com/stretchr/testify/assert"
)

func TestCustomHandler_HandleLog(t *testing.T) {
	var buf bytes.Buffer
	logger := &log.Logger{Handler: &CustomHandler{Writer: &buf}, Level: log.DebugLevel}

	logger.WithField("group", "file").WithError(errors.New("boom")).Warn("cache miss")

	out := buf.String()
	assert.Contains(t, out, " W cache miss")
	assert.Contains(t, out, "error=boom group=file")
	assert.True(t, bytes.HasSuffix(buf.Bytes(), []byte("\n")))
}

func TestInitLogger_Level(t *testing.T) {
	t.Setenv("K7_LOG", "debug")
	InitLogger()
	l, ok := log.Log.(*log.Logger)
	assert.True(t, ok)
	assert.Equal(t, log.DebugLevel, l.Level)
}
