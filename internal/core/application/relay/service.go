package relay

import (
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/swapdex/swapd/internal/core/domain"
	"github.com/swapdex/swapd/internal/core/ports"
	"github.com/swapdex/swapd/pkg/stats"
)

// Event types delivered to the parties of a swap.
const (
	EventCreated    = "created"
	EventOpening    = "opening"
	EventExchange   = "exchange"
	EventOpened     = "opened"
	EventCommitting = "committing"
	EventCommitted  = "committed"
	EventErrored    = "errored"
)

// Service maps every connected user to its live delivery channel. A user has
// at most one channel, a new registration replaces the previous one.
type Service struct {
	lock     sync.RWMutex
	channels map[string]ports.PartyChannel
}

func NewService() *Service {
	return &Service{
		channels: make(map[string]ports.PartyChannel),
	}
}

// Register binds the channel to the user. Any previous channel of the same
// user is closed.
func (s *Service) Register(uid string, channel ports.PartyChannel) {
	s.lock.Lock()
	prev, ok := s.channels[uid]
	s.channels[uid] = channel
	s.lock.Unlock()

	if ok && prev.Id() != channel.Id() {
		log.Debugf("relay: replacing channel %s of party %s", prev.Id(), uid)
		prev.Close()
		return
	}
	if !ok {
		stats.ConnectedParties.Inc()
	}
	log.Debugf("relay: registered channel %s for party %s", channel.Id(), uid)
}

// Unregister removes whatever channel is bound to the user.
func (s *Service) Unregister(uid string) {
	s.lock.Lock()
	_, ok := s.channels[uid]
	delete(s.channels, uid)
	s.lock.Unlock()

	if ok {
		stats.ConnectedParties.Dec()
		log.Debugf("relay: unregistered party %s", uid)
	}
}

// UnregisterChannel removes the user channel only if it is the given one.
// Connections use this on teardown so that a stale connection does not
// unbind a newer one.
func (s *Service) UnregisterChannel(uid, channelID string) {
	s.lock.Lock()
	ch, ok := s.channels[uid]
	found := ok && ch.Id() == channelID
	if found {
		delete(s.channels, uid)
	}
	s.lock.Unlock()

	if found {
		stats.ConnectedParties.Dec()
		log.Debugf("relay: unregistered channel %s of party %s", channelID, uid)
	}
}

// IsConnected returns whether the user has a live channel.
func (s *Service) IsConnected(uid string) bool {
	s.lock.RLock()
	defer s.lock.RUnlock()

	_, ok := s.channels[uid]
	return ok
}

// Deliver enqueues the event on the user channel. Failures are only logged,
// a party that misses an event must query the swap status.
func (s *Service) Deliver(uid string, event ports.RelayEvent) {
	if err := s.deliver(uid, event); err != nil {
		stats.DeliveryFailures.Inc()
		log.WithError(err).Debugf(
			"relay: dropped %s event of swap %s for party %s",
			event.Type, event.SwapID, uid,
		)
	}
}

// Close closes all channels.
func (s *Service) Close() {
	s.lock.Lock()
	channels := s.channels
	s.channels = make(map[string]ports.PartyChannel)
	s.lock.Unlock()

	for _, ch := range channels {
		ch.Close()
	}
	stats.ConnectedParties.Set(0)
}

func (s *Service) deliver(uid string, event ports.RelayEvent) error {
	s.lock.RLock()
	ch, ok := s.channels[uid]
	s.lock.RUnlock()

	if !ok {
		return domain.ErrPartyNotConnected
	}
	if event.Timestamp == 0 {
		event.Timestamp = time.Now().Unix()
	}
	return ch.Send(event)
}
