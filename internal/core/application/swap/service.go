package swap

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/swapdex/swapd/internal/core/application/pubsub"
	"github.com/swapdex/swapd/internal/core/application/relay"
	"github.com/swapdex/swapd/internal/core/domain"
	"github.com/swapdex/swapd/internal/core/ports"
	"github.com/swapdex/swapd/pkg/stats"
)

// Relay delivers events to connected parties without blocking.
type Relay interface {
	Deliver(uid string, event ports.RelayEvent)
}

// Config holds the deadlines of a session.
type Config struct {
	// OpenTimeout bounds the time a session waits in CREATED or OPENING.
	OpenTimeout time.Duration
	// CommitTimeout bounds the time a session waits in OPENED or COMMITTING.
	CommitTimeout time.Duration
	// EvictAfter is the grace period a terminal session is kept in memory
	// before being archived and evicted.
	EvictAfter time.Duration
}

func (c Config) validate() error {
	if c.OpenTimeout <= 0 {
		return fmt.Errorf("open timeout must be positive")
	}
	if c.CommitTimeout <= 0 {
		return fmt.Errorf("commit timeout must be positive")
	}
	if c.EvictAfter < 0 {
		return fmt.Errorf("evict grace period must not be negative")
	}
	return nil
}

// Ack is the acknowledgement of an accepted open or commit submission.
// Changed is false for identical resubmissions.
type Ack struct {
	SwapID  string
	Status  domain.SwapStatus
	Changed bool
}

type session struct {
	lock  sync.Mutex
	swap  *domain.SwapSession
	timer *time.Timer
	gen   uint64
}

// Service is the registry of live swap sessions. Operations on the same
// session are serialized, distinct sessions proceed in parallel.
type Service struct {
	relay       Relay
	repoManager ports.RepoManager
	pubsub      *pubsub.Service
	cfg         Config

	lock     sync.RWMutex
	sessions map[string]*session
	closed   bool
}

// NewService returns a new registry. The pubsub service is optional.
func NewService(
	relay Relay,
	repoManager ports.RepoManager,
	pubsubSvc *pubsub.Service,
	cfg Config,
) (*Service, error) {
	if relay == nil {
		return nil, fmt.Errorf("missing relay")
	}
	if repoManager == nil {
		return nil, fmt.Errorf("missing repo manager")
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &Service{
		relay:       relay,
		repoManager: repoManager,
		pubsub:      pubsubSvc,
		cfg:         cfg,
		sessions:    make(map[string]*session),
	}, nil
}

// CreateSession creates the session for a pair of matched orders. It is the
// match handler of the order book.
func (s *Service) CreateSession(
	incoming, resting domain.Order,
) (*domain.SwapSession, error) {
	swap, err := domain.NewSwapSession(incoming, resting)
	if err != nil {
		return nil, err
	}

	sess := &session{swap: swap}
	sess.lock.Lock()
	defer sess.lock.Unlock()

	s.lock.Lock()
	if s.closed {
		s.lock.Unlock()
		return nil, fmt.Errorf("swap registry is closed")
	}
	if _, ok := s.sessions[swap.ID]; ok {
		s.lock.Unlock()
		return nil, domain.ErrSwapAlreadyExists
	}
	s.sessions[swap.ID] = sess
	s.lock.Unlock()

	stats.LiveSwaps.Inc()
	log.Infof(
		"swap: created session %s, secret holder %s, secret seeker %s",
		swap.ID, swap.SecretHolder.UID, swap.SecretSeeker.UID,
	)
	s.armTimer(sess, s.cfg.OpenTimeout)
	s.notifyTransition(sess)

	swapCopy := *swap
	return &swapCopy, nil
}

// Open submits the public info of a party. Once both parties opened the
// session, each of them receives the counterparty public info through the
// relay.
func (s *Service) Open(
	ctx context.Context, id, uid string,
	publicInfo json.RawMessage, secretHash string,
) (*Ack, error) {
	return s.submit(ctx, id, func(swap *domain.SwapSession) (bool, error) {
		return swap.Open(uid, publicInfo, secretHash)
	})
}

// Commit submits the settlement confirmation of a party, optionally along
// with the revealed secret.
func (s *Service) Commit(
	ctx context.Context, id, uid string,
	confirmation json.RawMessage, secret string,
) (*Ack, error) {
	return s.submit(ctx, id, func(swap *domain.SwapSession) (bool, error) {
		return swap.Commit(uid, confirmation, secret)
	})
}

// Abort lets a party bring the session to ERRORED.
func (s *Service) Abort(ctx context.Context, id, uid string) (*Ack, error) {
	return s.submit(ctx, id, func(swap *domain.SwapSession) (bool, error) {
		if err := swap.Abort(uid); err != nil {
			return false, err
		}
		return true, nil
	})
}

// GetSession returns the session with the given id as seen by the given
// party, either live or archived. An empty uid returns the operator view.
func (s *Service) GetSession(
	ctx context.Context, id, uid string,
) (*SwapView, error) {
	if id == "" {
		return nil, domain.ErrSwapMissingId
	}

	var swap domain.SwapSession
	if sess, ok := s.getSession(id); ok {
		sess.lock.Lock()
		swap = *sess.swap
		sess.lock.Unlock()
	} else {
		archived, err := s.repoManager.SwapRepository().GetSwap(ctx, id)
		if err != nil {
			return nil, err
		}
		swap = *archived
	}

	if uid != "" && !swap.IsParty(uid) {
		return nil, domain.ErrSwapUnknownParty
	}
	view := newSwapView(swap, uid)
	return &view, nil
}

// ListSessions returns the live sessions of the given user followed by the
// archived ones. Pagination applies to the archived sessions only. An empty
// uid lists the sessions of everyone.
func (s *Service) ListSessions(
	ctx context.Context, uid string, page domain.Page,
) ([]SwapView, error) {
	live := s.liveSessions(uid)

	var archived []domain.SwapSession
	var err error
	if uid == "" {
		archived, err = s.repoManager.SwapRepository().GetAllSwaps(ctx, page)
	} else {
		archived, err = s.repoManager.SwapRepository().GetSwapsForParty(ctx, uid, page)
	}
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(live))
	views := make([]SwapView, 0, len(live)+len(archived))
	for _, swap := range live {
		seen[swap.ID] = struct{}{}
		views = append(views, newSwapView(swap, uid))
	}
	for _, swap := range archived {
		if _, ok := seen[swap.ID]; ok {
			continue
		}
		views = append(views, newSwapView(swap, uid))
	}
	return views, nil
}

// Close stops all timers and archives the sessions still held in memory.
// Sessions in progress are marked as ERRORED before being archived.
func (s *Service) Close() {
	s.lock.Lock()
	s.closed = true
	sessions := s.sessions
	s.sessions = make(map[string]*session)
	s.lock.Unlock()

	for id, sess := range sessions {
		sess.lock.Lock()
		sess.gen++
		if sess.timer != nil {
			sess.timer.Stop()
		}
		if !sess.swap.IsTerminal() {
			log.Warnf(
				"swap: failing session %s in status %s on shutdown",
				id, sess.swap.Status,
			)
			sess.swap.Fail(domain.ErrSwapShutdown)
		}
		swap := *sess.swap
		sess.lock.Unlock()

		if err := s.repoManager.SwapRepository().AddSwap(
			context.Background(), swap,
		); err != nil {
			log.WithError(err).Warnf("swap: failed to archive session %s", id)
		}
	}
	stats.LiveSwaps.Set(0)
}

func (s *Service) submit(
	ctx context.Context, id string,
	transition func(swap *domain.SwapSession) (bool, error),
) (*Ack, error) {
	if id == "" {
		return nil, domain.ErrSwapMissingId
	}

	sess, ok := s.getSession(id)
	if !ok {
		// Submissions to evicted sessions are late, not unknown.
		if _, err := s.repoManager.SwapRepository().GetSwap(ctx, id); err == nil {
			return nil, domain.ErrSwapTerminated
		}
		return nil, domain.ErrSwapNotFound
	}

	sess.lock.Lock()
	defer sess.lock.Unlock()

	changed, err := transition(sess.swap)
	if err != nil {
		return nil, err
	}
	ack := &Ack{SwapID: id, Status: sess.swap.Status, Changed: changed}
	if !changed {
		return ack, nil
	}

	log.Debugf("swap: session %s moved to %s", id, sess.swap.Status)
	switch sess.swap.Status {
	case domain.SwapStatusOpening:
		s.armTimer(sess, s.cfg.OpenTimeout)
	case domain.SwapStatusOpened, domain.SwapStatusCommitting:
		s.armTimer(sess, s.cfg.CommitTimeout)
	default:
		s.terminate(sess)
	}
	s.notifyTransition(sess)
	return ack, nil
}

// armTimer (re)starts the deadline of the current phase. Must be called with
// the session lock held.
func (s *Service) armTimer(sess *session, timeout time.Duration) {
	if sess.timer != nil {
		sess.timer.Stop()
	}
	sess.gen++
	gen := sess.gen
	id := sess.swap.ID
	sess.swap.ExpiresAt = time.Now().Add(timeout).Unix()
	sess.timer = time.AfterFunc(timeout, func() {
		s.expire(id, gen)
	})
}

func (s *Service) expire(id string, gen uint64) {
	sess, ok := s.getSession(id)
	if !ok {
		return
	}

	sess.lock.Lock()
	defer sess.lock.Unlock()

	if sess.gen != gen || !sess.swap.Expire() {
		return
	}
	log.Infof("swap: session %s expired", id)
	s.terminate(sess)
	s.notifyTransition(sess)
}

// terminate stops the deadline timer of a terminated session and schedules
// its eviction. Must be called with the session lock held.
func (s *Service) terminate(sess *session) {
	sess.gen++
	gen := sess.gen
	if sess.timer != nil {
		sess.timer.Stop()
	}
	id := sess.swap.ID
	sess.timer = time.AfterFunc(s.cfg.EvictAfter, func() {
		s.evict(id, gen)
	})
}

func (s *Service) evict(id string, gen uint64) {
	sess, ok := s.getSession(id)
	if !ok {
		return
	}

	sess.lock.Lock()
	if sess.gen != gen {
		sess.lock.Unlock()
		return
	}
	swap := *sess.swap
	sess.lock.Unlock()

	if err := s.repoManager.SwapRepository().AddSwap(
		context.Background(), swap,
	); err != nil {
		log.WithError(err).Warnf("swap: failed to archive session %s", id)
	}

	s.lock.Lock()
	_, ok = s.sessions[id]
	delete(s.sessions, id)
	s.lock.Unlock()

	if ok {
		stats.LiveSwaps.Dec()
		log.Debugf("swap: evicted session %s", id)
	}
}

// notifyTransition forwards the current status of the session to both
// parties, and to the operator webhooks. Entering OPENED, each party first
// receives the counterparty public info. Must be called with the session
// lock held, so that events of a session are enqueued in transition order.
func (s *Service) notifyTransition(sess *session) {
	swap := *sess.swap
	stats.SwapTransitions.WithLabelValues(string(swap.Status)).Inc()

	now := time.Now().Unix()
	if swap.Status == domain.SwapStatusOpened {
		for _, uid := range swap.Parties() {
			counterparty := swap.Counterparty(uid)
			s.relay.Deliver(uid, ports.RelayEvent{
				Type:      relay.EventExchange,
				SwapID:    swap.ID,
				Status:    string(swap.Status),
				Role:      string(counterparty.Role),
				Payload:   counterparty.PublicInfo,
				Timestamp: now,
			})
		}
	}

	eventType := eventForStatus(swap.Status)
	for _, uid := range swap.Parties() {
		event := ports.RelayEvent{
			Type:      eventType,
			SwapID:    swap.ID,
			Status:    string(swap.Status),
			Role:      string(swap.Party(uid).Role),
			Error:     swap.Error,
			Timestamp: now,
		}
		if swap.Status == domain.SwapStatusCreated {
			event.Payload, _ = json.Marshal(newSwapView(swap, uid))
		}
		s.relay.Deliver(uid, event)
	}

	if s.pubsub != nil {
		go func() {
			if err := s.pubsub.PublishSwapEvent(swap); err != nil {
				log.WithError(err).Warnf(
					"swap: failed to publish %s event for session %s",
					swap.Status, swap.ID,
				)
			}
		}()
	}
}

func (s *Service) getSession(id string) (*session, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	sess, ok := s.sessions[id]
	return sess, ok
}

func (s *Service) liveSessions(uid string) []domain.SwapSession {
	s.lock.RLock()
	list := make([]*session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		list = append(list, sess)
	}
	s.lock.RUnlock()

	swaps := make([]domain.SwapSession, 0)
	for _, sess := range list {
		sess.lock.Lock()
		if uid == "" || sess.swap.IsParty(uid) {
			swaps = append(swaps, *sess.swap)
		}
		sess.lock.Unlock()
	}
	sort.Slice(swaps, func(i, j int) bool {
		if swaps[i].CreatedAt != swaps[j].CreatedAt {
			return swaps[i].CreatedAt > swaps[j].CreatedAt
		}
		return swaps[i].ID < swaps[j].ID
	})
	return swaps
}

func eventForStatus(status domain.SwapStatus) string {
	switch status {
	case domain.SwapStatusCreated:
		return relay.EventCreated
	case domain.SwapStatusOpening:
		return relay.EventOpening
	case domain.SwapStatusOpened:
		return relay.EventOpened
	case domain.SwapStatusCommitting:
		return relay.EventCommitting
	case domain.SwapStatusCommitted:
		return relay.EventCommitted
	default:
		return relay.EventErrored
	}
}
