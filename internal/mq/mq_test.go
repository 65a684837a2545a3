package mq

import (
	"context"
	"errors"
	"testing"

	"github.com/jjudge-oj/accounts/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubBackend struct {
	published []string
	closed    bool
	err       error
}

func (s *stubBackend) Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.published = append(s.published, channel+":"+string(data))
	return "id-1", nil
}

func (s *stubBackend) Subscribe(ctx context.Context, channel string, handler Handler) error {
	return handler(ctx, Message{ID: "id-1", Data: []byte("payload")})
}

func (s *stubBackend) Close() error {
	s.closed = true
	return nil
}

func TestMQDelegatesToBackend(t *testing.T) {
	backend := &stubBackend{}
	m := New(backend)

	id, err := m.Publish(context.Background(), "user-events", []byte("{}"), nil)
	require.NoError(t, err)
	assert.Equal(t, "id-1", id)
	assert.Equal(t, []string{"user-events:{}"}, backend.published)

	var got Message
	require.NoError(t, m.Subscribe(context.Background(), "user-events", func(ctx context.Context, msg Message) error {
		got = msg
		return nil
	}))
	assert.Equal(t, "payload", string(got.Data))

	require.NoError(t, m.Close())
	assert.True(t, backend.closed)

	backend.err = errors.New("broker down")
	_, err = m.Publish(context.Background(), "user-events", nil, nil)
	assert.ErrorIs(t, err, backend.err)
}

func TestOpen(t *testing.T) {
	m, err := Open(context.Background(), config.MQConfig{Backend: config.MQNone})
	require.NoError(t, err)
	assert.Nil(t, m)

	m, err = Open(context.Background(), config.MQConfig{})
	require.NoError(t, err)
	assert.Nil(t, m)

	_, err = Open(context.Background(), config.MQConfig{Backend: "kafka"})
	assert.Error(t, err)

	_, err = Open(context.Background(), config.MQConfig{Backend: config.MQRabbitMQ})
	assert.Error(t, err)
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "application/json", contentType(nil))
	assert.Equal(t, "text/plain", contentType(map[string]string{"content_type": "text/plain"}))
}
