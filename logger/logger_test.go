// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package logger_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"testing"

	mglog "github.com/absmach/mgcache/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type logMsg struct {
	Level   string `json:"level"`
	Message string `json:"msg"`
	Region  string `json:"region,omitempty"`
}

func TestNew(t *testing.T) {
	cases := []struct {
		desc  string
		level string
		err   bool
	}{
		{desc: "debug level", level: "debug", err: false},
		{desc: "info level", level: "info", err: false},
		{desc: "upper case warn level", level: "WARN", err: false},
		{desc: "error level", level: "error", err: false},
		{desc: "invalid level", level: "not_a_level", err: true},
	}

	for _, tc := range cases {
		var buf bytes.Buffer
		_, err := mglog.New(&buf, tc.level)
		assert.Equal(t, tc.err, err != nil, fmt.Sprintf("%s: expected error %t got %v", tc.desc, tc.err, err))
	}
}

func TestLevelFiltering(t *testing.T) {
	cases := []struct {
		desc     string
		level    string
		log      func(buf *bytes.Buffer, level string)
		expected *logMsg
	}{
		{
			desc:  "info is written at info level",
			level: "info",
			log: func(buf *bytes.Buffer, level string) {
				logger, _ := mglog.New(buf, level)
				logger.Info("cache region created", "region", "products")
			},
			expected: &logMsg{Level: "INFO", Message: "cache region created", Region: "products"},
		},
		{
			desc:  "debug is dropped at info level",
			level: "info",
			log: func(buf *bytes.Buffer, level string) {
				logger, _ := mglog.New(buf, level)
				logger.Debug("cache region created", "region", "products")
			},
			expected: nil,
		},
		{
			desc:  "warn is written at debug level",
			level: "debug",
			log: func(buf *bytes.Buffer, level string) {
				logger, _ := mglog.New(buf, level)
				logger.Warn("store get failed", "region", "orders")
			},
			expected: &logMsg{Level: "WARN", Message: "store get failed", Region: "orders"},
		},
	}

	for _, tc := range cases {
		var buf bytes.Buffer
		tc.log(&buf, tc.level)
		if tc.expected == nil {
			assert.Empty(t, buf.String(), fmt.Sprintf("%s: expected no output got %s", tc.desc, buf.String()))
			continue
		}
		var msg logMsg
		err := json.Unmarshal(buf.Bytes(), &msg)
		require.Nil(t, err, fmt.Sprintf("%s: unexpected decode error %s", tc.desc, err))
		assert.Equal(t, *tc.expected, msg, fmt.Sprintf("%s: expected %v got %v", tc.desc, *tc.expected, msg))
	}
}

func TestNewMock(t *testing.T) {
	logger := mglog.NewMock()
	require.NotNil(t, logger, "expected mock logger to be created")
	logger.Info("mock logger accepts messages")
}
