package domain

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/shopspring/decimal"
	"github.com/swapdex/swapd/pkg/hashlock"
)

// SwapStatus represents the different statuses that a swap session can
// assume.
type SwapStatus string

const (
	SwapStatusCreated    SwapStatus = "CREATED"
	SwapStatusOpening    SwapStatus = "OPENING"
	SwapStatusOpened     SwapStatus = "OPENED"
	SwapStatusCommitting SwapStatus = "COMMITTING"
	SwapStatusCommitted  SwapStatus = "COMMITTED"
	SwapStatusErrored    SwapStatus = "ERRORED"
)

// SwapRole is the role a party plays in the hash-locked exchange.
type SwapRole string

const (
	// SwapRoleSecretHolder chooses the secret and reveals it to settle.
	SwapRoleSecretHolder SwapRole = "secretHolder"
	// SwapRoleSecretSeeker settles against the hash without knowing the secret
	// until the holder reveals it.
	SwapRoleSecretSeeker SwapRole = "secretSeeker"
)

// SwapParty holds the info of one party of a session and the payloads it
// submitted so far.
type SwapParty struct {
	UID          string
	Role         SwapRole
	OrderID      string
	Side         OrderSide
	PublicInfo   json.RawMessage
	Confirmation json.RawMessage
	OpenedAt     int64
	CommittedAt  int64
}

// HasOpened ...
func (p SwapParty) HasOpened() bool {
	return len(p.PublicInfo) > 0
}

// HasCommitted ...
func (p SwapParty) HasCommitted() bool {
	return len(p.Confirmation) > 0
}

// SwapSession is the data structure representing the atomic swap protocol
// instance of one matched pair of orders.
type SwapSession struct {
	ID            string
	Market        Market
	BaseQuantity  decimal.Decimal
	QuoteQuantity decimal.Decimal
	SecretHolder  SwapParty
	SecretSeeker  SwapParty
	SecretHash    string
	Status        SwapStatus
	Error         string
	CreatedAt     int64
	UpdatedAt     int64
	ExpiresAt     int64
}

// SessionID derives the id of the session of two matched orders. The result
// does not depend on the order of the arguments.
func SessionID(orderID, otherOrderID string) string {
	ids := []string{orderID, otherOrderID}
	sort.Strings(ids)
	return hex.EncodeToString(chainhash.HashB([]byte(strings.Join(ids, ":"))))
}

// NewSwapSession returns a session in CREATED status for the given pair of
// orders, where resting is the order that was waiting in the book.
//
// The bid pays the quote asset, which by policy settles second, so its owner
// is the secret-holder and the ask's one is the secret-seeker. The session is
// committed to the hash of the bid, if any, otherwise the holder must provide
// one when opening. Any hash on the ask is ignored since the seeker must not
// know the secret. The execution quote quantity is the resting order's one.
func NewSwapSession(incoming, resting Order) (*SwapSession, error) {
	if incoming.Side == resting.Side ||
		incoming.UID == resting.UID ||
		incoming.Market() != resting.Market() ||
		!incoming.BaseQuantity.Equal(resting.BaseQuantity) ||
		!incoming.Crosses(resting) {
		return nil, ErrSwapInvalidMatch
	}

	bid, ask := incoming, resting
	if !incoming.IsBid() {
		bid, ask = resting, incoming
	}

	now := time.Now().Unix()
	return &SwapSession{
		ID:            SessionID(bid.ID, ask.ID),
		Market:        resting.Market(),
		BaseQuantity:  resting.BaseQuantity,
		QuoteQuantity: resting.QuoteQuantity,
		SecretHolder: SwapParty{
			UID:     bid.UID,
			Role:    SwapRoleSecretHolder,
			OrderID: bid.ID,
			Side:    bid.Side,
		},
		SecretSeeker: SwapParty{
			UID:     ask.UID,
			Role:    SwapRoleSecretSeeker,
			OrderID: ask.ID,
			Side:    ask.Side,
		},
		SecretHash: bid.Hash,
		Status:     SwapStatusCreated,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// Open stores the public info submitted by the given party. The first party
// to open brings the session from CREATED to OPENING, the second one from
// OPENING to OPENED. The secret-holder must also provide the secret hash if
// the session is not committed to one yet.
// Resubmitting the same payload is accepted without changes, while a
// different one is rejected as conflicting.
func (s *SwapSession) Open(
	uid string, publicInfo json.RawMessage, secretHash string,
) (bool, error) {
	if s.IsTerminal() {
		return false, ErrSwapTerminated
	}

	party := s.Party(uid)
	if party == nil {
		return false, ErrSwapUnknownParty
	}
	info, err := compactPayload(publicInfo)
	if err != nil {
		return false, err
	}
	if info == nil {
		return false, ErrSwapMissingPublicInfo
	}

	hash := s.SecretHash
	if party.Role == SwapRoleSecretHolder {
		if secretHash != "" {
			h, err := hashlock.NormalizeHash(secretHash)
			if err != nil {
				return false, ErrSwapInvalidSecretHash
			}
			if hash != "" && hash != h {
				return false, ErrSwapSecretHashMismatch
			}
			hash = h
		}
		if hash == "" {
			return false, ErrSwapMissingSecretHash
		}
	}

	if party.HasOpened() {
		if bytes.Equal(party.PublicInfo, info) {
			return false, nil
		}
		return false, ErrSwapConflictingSubmission
	}

	if s.Status != SwapStatusCreated && s.Status != SwapStatusOpening {
		return false, ErrSwapMustBeOpening
	}

	now := time.Now().Unix()
	party.PublicInfo = info
	party.OpenedAt = now
	s.SecretHash = hash
	s.UpdatedAt = now
	if s.Status == SwapStatusCreated {
		s.Status = SwapStatusOpening
	} else {
		s.Status = SwapStatusOpened
	}
	return true, nil
}

// Commit stores the settlement confirmation submitted by the given party. The
// first party to commit brings the session from OPENED to COMMITTING, the
// second one from COMMITTING to COMMITTED. A party may reveal the secret with
// its confirmation, in which case it must open the session hash. The secret
// is never stored.
// Resubmitting the same confirmation is accepted without changes, while a
// different one is rejected as conflicting.
func (s *SwapSession) Commit(
	uid string, confirmation json.RawMessage, secret string,
) (bool, error) {
	if s.IsTerminal() {
		return false, ErrSwapTerminated
	}

	party := s.Party(uid)
	if party == nil {
		return false, ErrSwapUnknownParty
	}
	conf, err := compactPayload(confirmation)
	if err != nil {
		return false, err
	}
	if conf == nil {
		return false, ErrSwapMissingConfirmation
	}

	if s.Status != SwapStatusOpened && s.Status != SwapStatusCommitting {
		return false, ErrSwapMustBeOpened
	}

	if secret != "" {
		if err := hashlock.Verify(secret, s.SecretHash); err != nil {
			return false, ErrSwapInvalidSecret
		}
	}

	if party.HasCommitted() {
		if bytes.Equal(party.Confirmation, conf) {
			return false, nil
		}
		return false, ErrSwapConflictingSubmission
	}

	now := time.Now().Unix()
	party.Confirmation = conf
	party.CommittedAt = now
	s.UpdatedAt = now
	if s.Status == SwapStatusOpened {
		s.Status = SwapStatusCommitting
	} else {
		s.Status = SwapStatusCommitted
		s.ExpiresAt = 0
	}
	return true, nil
}

// Abort lets a party bring the session to ERRORED.
func (s *SwapSession) Abort(uid string) error {
	if s.IsTerminal() {
		return ErrSwapTerminated
	}
	if !s.IsParty(uid) {
		return ErrSwapUnknownParty
	}
	s.Fail(ErrSwapAborted)
	return nil
}

// Expire brings a non terminal session to ERRORED because of the counterparty
// not advancing in time. It returns whether the status changed.
func (s *SwapSession) Expire() bool {
	if s.IsTerminal() {
		return false
	}
	s.Fail(ErrSwapExpired)
	return true
}

// Fail marks the session as ERRORED with the given reason. It is a no-op for
// terminal sessions.
func (s *SwapSession) Fail(reason error) {
	if s.IsTerminal() {
		return
	}
	s.Status = SwapStatusErrored
	s.Error = reason.Error()
	s.UpdatedAt = time.Now().Unix()
	s.ExpiresAt = 0
}

// Party returns the party with the given uid, or nil if not part of the
// session.
func (s *SwapSession) Party(uid string) *SwapParty {
	switch uid {
	case s.SecretHolder.UID:
		return &s.SecretHolder
	case s.SecretSeeker.UID:
		return &s.SecretSeeker
	default:
		return nil
	}
}

// Counterparty returns the other party with respect to the given uid, or nil
// if not part of the session.
func (s *SwapSession) Counterparty(uid string) *SwapParty {
	switch uid {
	case s.SecretHolder.UID:
		return &s.SecretSeeker
	case s.SecretSeeker.UID:
		return &s.SecretHolder
	default:
		return nil
	}
}

// Parties returns the uids of both parties, holder first.
func (s *SwapSession) Parties() []string {
	return []string{s.SecretHolder.UID, s.SecretSeeker.UID}
}

// IsParty ...
func (s *SwapSession) IsParty(uid string) bool {
	return s.Party(uid) != nil
}

// IsTerminal returns whether the session is either COMMITTED or ERRORED.
func (s *SwapSession) IsTerminal() bool {
	return s.Status == SwapStatusCommitted || s.Status == SwapStatusErrored
}

// IsOpened returns whether both parties opened the session, ie. whether their
// public info can be disclosed to each other.
func (s *SwapSession) IsOpened() bool {
	return s.SecretHolder.HasOpened() && s.SecretSeeker.HasOpened()
}

func compactPayload(payload json.RawMessage) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	buf := &bytes.Buffer{}
	if err := json.Compact(buf, trimmed); err != nil {
		return nil, ErrSwapInvalidPayload
	}
	return buf.Bytes(), nil
}
