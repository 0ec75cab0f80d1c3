package websocket

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weekly-planner/backend/internal/planner"
)

func receive(t *testing.T, c *Client) map[string]any {
	t.Helper()
	select {
	case data, ok := <-c.Send():
		require.True(t, ok, "client channel closed")
		var msg map[string]any
		require.NoError(t, json.Unmarshal(data, &msg))
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
		return nil
	}
}

func TestHub_BroadcastReachesClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub := NewHub()
	go hub.Run(ctx)

	a, b := NewClient(hub), NewClient(hub)
	hub.Register(a)
	hub.Register(b)
	require.Eventually(t, func() bool { return hub.ClientCount() == 2 }, time.Second, 10*time.Millisecond)

	e, err := planner.NewEvent("sync",
		planner.MustWeekTime(planner.Tuesday, 9, 0), planner.MustWeekTime(planner.Tuesday, 10, 0),
		false, "Room 1", []string{"Host", "A"})
	require.NoError(t, err)
	NewEventBroadcaster(hub).BroadcastEventRemoved(e, "A")

	for _, c := range []*Client{a, b} {
		msg := receive(t, c)
		assert.Equal(t, string(TypeEventRemoved), msg["type"])
		payload := msg["payload"].(map[string]any)
		assert.Equal(t, "A", payload["acting_user"])
		event := payload["event"].(map[string]any)
		assert.Equal(t, "Tuesday: 09:00", event["start"])
		assert.Equal(t, []any{"Host", "A"}, event["invitees"])
	}
}

func TestHub_UnregisterClosesClient(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub := NewHub()
	go hub.Run(ctx)

	c := NewClient(hub)
	hub.Register(c)
	hub.Unregister(c)

	_, ok := <-c.Send()
	assert.False(t, ok)
	assert.Zero(t, hub.ClientCount())
}

func TestHub_StopClosesClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub()
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()

	c := NewClient(hub)
	hub.Register(c)
	cancel()
	<-done

	_, ok := <-c.Send()
	assert.False(t, ok)
}

func TestHandleCommand(t *testing.T) {
	c := NewClient(NewHub())

	HandleCommand(c, []byte(`{"type":"ping"}`))
	assert.Equal(t, string(TypePong), receive(t, c)["type"])

	HandleCommand(c, []byte(`{"type":"subscribe"}`))
	msg := receive(t, c)
	assert.Equal(t, string(TypeError), msg["type"])
	assert.Equal(t, "subscribe", msg["payload"].(map[string]any)["original_type"])

	HandleCommand(c, []byte(`not json`))
	assert.Equal(t, string(TypeError), receive(t, c)["type"])
}

func TestHub_AfterStop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub()
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()
	cancel()
	<-done

	c := NewClient(hub)
	hub.Register(c)
	hub.Unregister(c)

	_, ok := <-c.Send()
	assert.False(t, ok)
	assert.False(t, c.Reply(NewMessage(TypePong, nil)))
}
