package realtime

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	t.Cleanup(func() {
		cancel()
		<-stopped
	})
	return hub
}

func receive(t *testing.T, c *Client) []byte {
	t.Helper()
	select {
	case msg := <-c.Send:
		return msg
	case <-time.After(time.Second):
		t.Fatal("no message delivered")
		return nil
	}
}

func TestHub_SendToUserReachesEverySocket(t *testing.T) {
	hub := startHub(t)
	user, other := uuid.New(), uuid.New()

	a, b, c := NewClient(user), NewClient(user), NewClient(other)
	for _, cl := range []*Client{a, b, c} {
		require.True(t, hub.RegisterClient(cl))
	}
	assert.Equal(t, 2, hub.Connected(user))

	require.NoError(t, hub.SendToUser(user, Event{Type: EventNewMessage, Data: "oi"}))

	for _, cl := range []*Client{a, b} {
		var ev Event
		require.NoError(t, json.Unmarshal(receive(t, cl), &ev))
		assert.Equal(t, EventNewMessage, ev.Type)
	}
	assert.Len(t, c.Send, 0)
}

func TestHub_UnregisterClosesSend(t *testing.T) {
	hub := startHub(t)
	cl := NewClient(uuid.New())
	require.True(t, hub.RegisterClient(cl))

	hub.UnregisterClient(cl)
	_, open := <-cl.Send
	assert.False(t, open)
	assert.Equal(t, 0, hub.Connected(cl.UserID))
}

func TestHub_FullBufferDropsInsteadOfBlocking(t *testing.T) {
	hub := startHub(t)
	cl := &Client{ID: "slow", UserID: uuid.New(), Send: make(chan []byte, 1)}
	require.True(t, hub.RegisterClient(cl))

	assert.Equal(t, 1, hub.SendRaw(cl.UserID, []byte("1")))
	assert.Equal(t, 0, hub.SendRaw(cl.UserID, []byte("2")))
}

func TestHub_StoppedHubRefusesClients(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	hub.Run(ctx)

	assert.False(t, hub.RegisterClient(NewClient(uuid.New())))
	hub.UnregisterClient(NewClient(uuid.New()))
}

func TestLocalNotifier(t *testing.T) {
	hub := startHub(t)
	cl := NewClient(uuid.New())
	require.True(t, hub.RegisterClient(cl))

	err := NotifyAll(context.Background(), NewLocalNotifier(hub), Event{Type: EventServiceStatus, Data: map[string]string{"status": "accepted"}}, cl.UserID, uuid.New())
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"service_status","data":{"status":"accepted"}}`, string(receive(t, cl)))
}

func TestRedisNotifier_DeliverRoutesByChannel(t *testing.T) {
	hub := startHub(t)
	cl := NewClient(uuid.New())
	require.True(t, hub.RegisterClient(cl))

	n := &RedisNotifier{Hub: hub}
	n.deliver(&redis.Message{Channel: Channel(cl.UserID), Payload: `{"type":"new_message"}`})
	assert.Equal(t, `{"type":"new_message"}`, string(receive(t, cl)))

	n.deliver(&redis.Message{Channel: "notifications:not-a-uuid", Payload: "x"})
	assert.Len(t, cl.Send, 0)
}
