package cmd

import (
	"bytes"
	"context"
	"testing"

	"github.com/jjudge-oj/accounts/internal/mq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintUserEvent(t *testing.T) {
	var buf bytes.Buffer
	handler := printUserEvent(&buf)

	err := handler(context.Background(), mq.Message{
		ID:   "1",
		Data: []byte(`{"type":"user.registered","user_id":"abc","occurred_at":"2026-01-02T03:04:05Z"}`),
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"user.registered","user_id":"abc","occurred_at":"2026-01-02T03:04:05Z"}`, buf.String())

	buf.Reset()
	require.NoError(t, handler(context.Background(), mq.Message{ID: "2", Data: []byte("not json")}))
	assert.Empty(t, buf.String())
}

func TestNewLoggerFallsBackToInfo(t *testing.T) {
	logger := newLogger("verbose")
	assert.True(t, logger.Enabled(context.Background(), 0))
	assert.False(t, logger.Enabled(context.Background(), -4))
}
