package mq

import (
	"context"
	"testing"

	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/pubsub/pstest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const testProject = "accounts-test"

func newTestPubSubClient(t *testing.T) (*PubSubClient, *pstest.Server) {
	t.Helper()
	srv := pstest.NewServer()
	t.Cleanup(func() { _ = srv.Close() })

	conn, err := grpc.NewClient(srv.Addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)

	client, err := pubsub.NewClient(context.Background(), testProject, option.WithGRPCConn(conn))
	require.NoError(t, err)

	return newPubSubClient(client, ""), srv
}

func TestPubSubPublishCachesTopic(t *testing.T) {
	client, srv := newTestPubSubClient(t)
	ctx := context.Background()

	_, err := client.Publish(ctx, "user-events", []byte(`{"type":"user.registered"}`), map[string]string{"type": "user.registered"})
	require.NoError(t, err)

	first := client.topics["user-events"]
	require.NotNil(t, first)

	_, err = client.Publish(ctx, "user-events", []byte(`{"type":"user.deleted"}`), map[string]string{"type": "user.deleted"})
	require.NoError(t, err)

	assert.Len(t, client.topics, 1)
	assert.Same(t, first, client.topics["user-events"])

	msgs := srv.Messages()
	require.Len(t, msgs, 2)
	types := []string{msgs[0].Attributes["type"], msgs[1].Attributes["type"]}
	assert.ElementsMatch(t, []string{"user.registered", "user.deleted"}, types)

	require.NoError(t, client.Close())
	assert.Empty(t, client.topics)
}

func TestPubSubPublishUsesExistingTopic(t *testing.T) {
	client, srv := newTestPubSubClient(t)
	ctx := context.Background()

	_, err := client.client.CreateTopic(ctx, "user-events")
	require.NoError(t, err)

	_, err = client.Publish(ctx, "user-events", []byte("{}"), nil)
	require.NoError(t, err)
	assert.Len(t, srv.Messages(), 1)

	require.NoError(t, client.Close())
}

func TestPubSubPublishRequiresChannel(t *testing.T) {
	client, _ := newTestPubSubClient(t)
	t.Cleanup(func() { _ = client.Close() })

	_, err := client.Publish(context.Background(), "  ", []byte("{}"), nil)
	assert.Error(t, err)
	assert.Empty(t, client.topics)
}

func TestSubscriptionName(t *testing.T) {
	client, _ := newTestPubSubClient(t)
	t.Cleanup(func() { _ = client.Close() })

	assert.Equal(t, "user-events-sub", client.subscriptionName("user-events"))
}
