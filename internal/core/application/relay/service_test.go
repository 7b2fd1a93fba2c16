package relay_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/swapdex/swapd/internal/core/application/relay"
	"github.com/swapdex/swapd/internal/core/domain"
	"github.com/swapdex/swapd/internal/core/ports"
)

func TestRelayDeliver(t *testing.T) {
	svc := relay.NewService()
	t.Cleanup(svc.Close)

	alice := newTestChannel("alice-1", 0)
	svc.Register("alice", alice)
	require.True(t, svc.IsConnected("alice"))
	require.False(t, svc.IsConnected("bob"))

	events := []string{relay.EventCreated, relay.EventOpening, relay.EventOpened}
	for _, e := range events {
		svc.Deliver("alice", ports.RelayEvent{Type: e, SwapID: "swap"})
	}
	// Delivery to an offline party must not panic nor block.
	svc.Deliver("bob", ports.RelayEvent{Type: relay.EventCreated, SwapID: "swap"})

	got := alice.received()
	require.Len(t, got, len(events))
	for i, e := range got {
		require.Equal(t, events[i], e.Type)
		require.NotZero(t, e.Timestamp)
	}
}

func TestRelayDeliverFullChannel(t *testing.T) {
	svc := relay.NewService()
	t.Cleanup(svc.Close)

	alice := newTestChannel("alice-1", 1)
	svc.Register("alice", alice)

	svc.Deliver("alice", ports.RelayEvent{Type: relay.EventCreated})
	svc.Deliver("alice", ports.RelayEvent{Type: relay.EventOpening})

	got := alice.received()
	require.Len(t, got, 1)
	require.Equal(t, relay.EventCreated, got[0].Type)
}

func TestRelayReconnect(t *testing.T) {
	svc := relay.NewService()
	t.Cleanup(svc.Close)

	first := newTestChannel("alice-1", 0)
	second := newTestChannel("alice-2", 0)
	svc.Register("alice", first)
	svc.Register("alice", second)
	require.True(t, first.isClosed())
	require.False(t, second.isClosed())

	// teardown of the stale connection keeps the new one bound.
	svc.UnregisterChannel("alice", first.Id())
	require.True(t, svc.IsConnected("alice"))

	svc.Deliver("alice", ports.RelayEvent{Type: relay.EventOpened})
	require.Empty(t, first.received())
	require.Len(t, second.received(), 1)

	svc.UnregisterChannel("alice", second.Id())
	require.False(t, svc.IsConnected("alice"))

	svc.Register("alice", first)
	svc.Unregister("alice")
	require.False(t, svc.IsConnected("alice"))
}

type testChannel struct {
	id     string
	max    int
	lock   sync.Mutex
	events []ports.RelayEvent
	closed bool
}

func newTestChannel(id string, max int) *testChannel {
	return &testChannel{id: id, max: max}
}

func (c *testChannel) Id() string { return c.id }

func (c *testChannel) Send(event ports.RelayEvent) error {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.closed {
		return domain.ErrPartyNotConnected
	}
	if c.max > 0 && len(c.events) >= c.max {
		return domain.ErrPartyChannelFull
	}
	c.events = append(c.events, event)
	return nil
}

func (c *testChannel) Close() {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.closed = true
}

func (c *testChannel) received() []ports.RelayEvent {
	c.lock.Lock()
	defer c.lock.Unlock()
	return append([]ports.RelayEvent{}, c.events...)
}

func (c *testChannel) isClosed() bool {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.closed
}
