package common

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageBrokerRoundTrip(t *testing.T) {
	mb, err := NewMessageBroker(TestRabbitMQ(t))
	require.NoError(t, err)
	t.Cleanup(func() { mb.Close() })

	require.NoError(t, SetupBlogExchange(mb))

	msgs, err := mb.Consume(CommentCreatedKey, BlogExchange, CommentCreatedQueue)
	require.NoError(t, err)

	event := CommentCreatedEvent{
		OwnerName:    "Alice",
		OwnerEmail:   "alice@example.com",
		BlogTitle:    "Hello World",
		BlogSlug:     "hello-world",
		CommentTitle: "Nice",
		Rating:       5,
	}
	body, err := json.Marshal(event)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// a user.created message must not reach the comment queue
	require.NoError(t, mb.Publish(ctx, []byte(`{"name":"Bob","email":"bob@example.com"}`), UserCreatedKey, BlogExchange))
	require.NoError(t, mb.Publish(ctx, body, CommentCreatedKey, BlogExchange))

	select {
	case msg := <-msgs:
		var got CommentCreatedEvent
		require.NoError(t, json.Unmarshal(msg.Body, &got))
		assert.Equal(t, event, got)
		assert.Equal(t, "application/json", msg.ContentType)
		assert.NoError(t, msg.Ack(false))
	case <-ctx.Done():
		t.Fatal("no message delivered")
	}
}
