package ws

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingsgambit/kingsgambit-go/internal/protocol"
	"github.com/kingsgambit/kingsgambit-go/internal/testutil"
)

func expectFrame(t *testing.T, c *Client) []byte {
	t.Helper()
	select {
	case data := <-c.send:
		return data
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for frame")
		return nil
	}
}

func expectNoFrame(t *testing.T, c *Client) {
	t.Helper()
	select {
	case data := <-c.send:
		t.Fatalf("unexpected frame: %s", data)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestGroupBroadcastReachesAllClients(t *testing.T) {
	group := NewGroup("ROOMAAAA", testutil.NopLogger())
	go group.Run()
	defer group.Close()

	a := NewClient("ROOMAAAA", nil, "player-a", testutil.NopLogger())
	b := NewClient("ROOMAAAA", nil, "player-b", testutil.NopLogger())
	group.Register(a)
	group.Register(b)

	group.Broadcast([]byte(`{"type":"lobby_state"}`), "")

	assert.JSONEq(t, `{"type":"lobby_state"}`, string(expectFrame(t, a)))
	assert.JSONEq(t, `{"type":"lobby_state"}`, string(expectFrame(t, b)))
}

func TestGroupBroadcastExcludesChannel(t *testing.T) {
	group := NewGroup("ROOMAAAA", testutil.NopLogger())
	go group.Run()
	defer group.Close()

	sender := NewClient("ROOMAAAA", nil, "player-a", testutil.NopLogger())
	other := NewClient("ROOMAAAA", nil, "player-b", testutil.NopLogger())
	group.Register(sender)
	group.Register(other)

	group.Broadcast([]byte(`{"type":"chat"}`), sender.ChannelID())

	assert.JSONEq(t, `{"type":"chat"}`, string(expectFrame(t, other)))
	expectNoFrame(t, sender)
}

func TestGroupUnregisterStopsDelivery(t *testing.T) {
	group := NewGroup("ROOMAAAA", testutil.NopLogger())
	go group.Run()
	defer group.Close()

	a := NewClient("ROOMAAAA", nil, "player-a", testutil.NopLogger())
	b := NewClient("ROOMAAAA", nil, "player-b", testutil.NopLogger())
	group.Register(a)
	group.Register(b)
	group.Unregister(a)

	// Membership is synchronous, so the count reflects the departure
	// as soon as Unregister returns
	require.Equal(t, 1, group.ClientCount())

	group.Broadcast([]byte(`{"type":"chat"}`), "")

	assert.JSONEq(t, `{"type":"chat"}`, string(expectFrame(t, b)))

	// Unregister closed the leaver's send channel
	_, open := <-a.send
	assert.False(t, open)
}

func TestGroupUnregisterTwiceIsNoOp(t *testing.T) {
	group := NewGroup("ROOMAAAA", testutil.NopLogger())
	go group.Run()
	defer group.Close()

	a := NewClient("ROOMAAAA", nil, "player-a", testutil.NopLogger())
	group.Register(a)
	group.Unregister(a)
	group.Unregister(a)

	require.Equal(t, 0, group.ClientCount())
}

func TestManagerPublishRoutesToGroup(t *testing.T) {
	manager := NewGroupManager(testutil.NopLogger())

	c := NewClient("ROOMAAAA", nil, "player-a", testutil.NopLogger())
	manager.Register("ROOMAAAA", c)
	defer manager.Unregister("ROOMAAAA", c)

	manager.Publish("ROOMAAAA", &protocol.ChatEvent{
		Type:    protocol.EventChat,
		Sender:  "alice",
		Message: "hi",
	}, "")

	assert.JSONEq(t, `{"type":"chat","sender":"alice","message":"hi"}`, string(expectFrame(t, c)))
}

func TestManagerPublishWithoutGroupIsDropped(t *testing.T) {
	manager := NewGroupManager(testutil.NopLogger())
	manager.Publish("MISSING1", &protocol.ChatEvent{Type: protocol.EventChat}, "")
}

func TestManagerRemovesGroupWhenLastClientLeaves(t *testing.T) {
	manager := NewGroupManager(testutil.NopLogger())

	a := NewClient("ROOMAAAA", nil, "player-a", testutil.NopLogger())
	b := NewClient("ROOMAAAA", nil, "player-b", testutil.NopLogger())
	manager.Register("ROOMAAAA", a)
	manager.Register("ROOMAAAA", b)

	manager.Unregister("ROOMAAAA", a)
	require.NotNil(t, manager.GetGroup("ROOMAAAA"))

	// The last departure tears the group down before Unregister returns
	manager.Unregister("ROOMAAAA", b)
	assert.Nil(t, manager.GetGroup("ROOMAAAA"))
}

func TestManagerRegisterAfterTeardownCreatesFreshGroup(t *testing.T) {
	manager := NewGroupManager(testutil.NopLogger())

	a := NewClient("ROOMAAAA", nil, "player-a", testutil.NopLogger())
	manager.Register("ROOMAAAA", a)
	manager.Unregister("ROOMAAAA", a)
	require.Nil(t, manager.GetGroup("ROOMAAAA"))

	b := NewClient("ROOMAAAA", nil, "player-b", testutil.NopLogger())
	manager.Register("ROOMAAAA", b)

	manager.Publish("ROOMAAAA", &protocol.ChatEvent{Type: protocol.EventChat, Sender: "bob", Message: "hi"}, "")
	assert.JSONEq(t, `{"type":"chat","sender":"bob","message":"hi"}`, string(expectFrame(t, b)))
}

// A departure racing an arrival must never leave the arrival holding a
// closed send channel or an orphaned group.
func TestManagerTeardownNeverDropsConcurrentArrival(t *testing.T) {
	manager := NewGroupManager(testutil.NopLogger())

	for i := 0; i < 50; i++ {
		leaver := NewClient("ROOMAAAA", nil, "leaver", testutil.NopLogger())
		manager.Register("ROOMAAAA", leaver)

		joiner := NewClient("ROOMAAAA", nil, "joiner", testutil.NopLogger())
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			manager.Unregister("ROOMAAAA", leaver)
		}()
		go func() {
			defer wg.Done()
			manager.Register("ROOMAAAA", joiner)
		}()
		wg.Wait()

		manager.Publish("ROOMAAAA", &protocol.ChatEvent{Type: protocol.EventChat}, "")
		expectFrame(t, joiner)

		manager.Unregister("ROOMAAAA", joiner)
		require.Nil(t, manager.GetGroup("ROOMAAAA"))
	}
}
