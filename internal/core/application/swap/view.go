package swap

import (
	"encoding/json"

	"github.com/swapdex/swapd/internal/core/domain"
)

// SwapView is the session as seen by one of its parties. The counterparty
// public info is disclosed only once both parties opened the session, and
// settlement confirmations are never disclosed to parties.
// The operator view, for an empty uid, carries the info of both parties.
type SwapView struct {
	ID                     string          `json:"id"`
	Market                 string          `json:"market"`
	BaseQuantity           string          `json:"baseQuantity"`
	QuoteQuantity          string          `json:"quoteQuantity"`
	Status                 string          `json:"status"`
	SecretHash             string          `json:"secretHash,omitempty"`
	Role                   string          `json:"role,omitempty"`
	OrderID                string          `json:"orderId,omitempty"`
	Counterparty           string          `json:"counterparty,omitempty"`
	PublicInfo             json.RawMessage `json:"publicInfo,omitempty"`
	CounterpartyPublicInfo json.RawMessage `json:"counterpartyPublicInfo,omitempty"`
	SecretHolder           string          `json:"secretHolder,omitempty"`
	SecretSeeker           string          `json:"secretSeeker,omitempty"`
	Error                  string          `json:"error,omitempty"`
	CreatedAt              int64           `json:"createdAt"`
	UpdatedAt              int64           `json:"updatedAt"`
	ExpiresAt              int64           `json:"expiresAt,omitempty"`
}

func newSwapView(swap domain.SwapSession, uid string) SwapView {
	view := SwapView{
		ID:            swap.ID,
		Market:        swap.Market.String(),
		BaseQuantity:  swap.BaseQuantity.String(),
		QuoteQuantity: swap.QuoteQuantity.String(),
		Status:        string(swap.Status),
		SecretHash:    swap.SecretHash,
		Error:         swap.Error,
		CreatedAt:     swap.CreatedAt,
		UpdatedAt:     swap.UpdatedAt,
		ExpiresAt:     swap.ExpiresAt,
	}

	party := swap.Party(uid)
	if party == nil {
		view.SecretHolder = swap.SecretHolder.UID
		view.SecretSeeker = swap.SecretSeeker.UID
		return view
	}

	counterparty := swap.Counterparty(uid)
	view.Role = string(party.Role)
	view.OrderID = party.OrderID
	view.Counterparty = counterparty.UID
	view.PublicInfo = party.PublicInfo
	if swap.IsOpened() {
		view.CounterpartyPublicInfo = counterparty.PublicInfo
	}
	return view
}
