package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jjudge-oj/accounts/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func testConfig() config.Config {
	return config.Config{
		ServerPort:     0,
		RequestTimeout: 5 * time.Second,
		StoreBackend:   config.StoreMemory,
		ListMaxCount:   100,
		Auth: config.AuthConfig{
			JWTSecret:       "server-secret",
			BcryptCost:      bcrypt.MinCost,
			HashConcurrency: 2,
		},
		MQ: config.MQConfig{Backend: config.MQNone},
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewRequiresSecret(t *testing.T) {
	cfg := testConfig()
	cfg.Auth.JWTSecret = "   "

	_, err := New(context.Background(), cfg, quietLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestNewRejectsUnknownBackends(t *testing.T) {
	cfg := testConfig()
	cfg.StoreBackend = "cassandra"
	_, err := New(context.Background(), cfg, quietLogger())
	require.Error(t, err)

	cfg = testConfig()
	cfg.MQ.Backend = "kafka"
	_, err = New(context.Background(), cfg, quietLogger())
	require.Error(t, err)
}

func TestRouterServesUsers(t *testing.T) {
	srv, err := New(context.Background(), testConfig(), quietLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })

	assert.Equal(t, ":8080", srv.httpServer.Addr)

	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := `{"usuario":"ana","email":"ana@x.com","password":"secret1"}`
	resp, err = http.Post(ts.URL+"/api/v1/users/register", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/api/v1/users")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("Content-Type"))
}
