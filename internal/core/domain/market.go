package domain

import (
	"fmt"
	"sort"
	"strings"
)

// Market identifies an asset pair, each asset qualified by its network.
type Market struct {
	BaseAsset    string
	BaseNetwork  string
	QuoteAsset   string
	QuoteNetwork string
}

// String returns the market name in the form BASE@network/QUOTE@network.
func (m Market) String() string {
	return fmt.Sprintf(
		"%s@%s/%s@%s", m.BaseAsset, m.BaseNetwork, m.QuoteAsset, m.QuoteNetwork,
	)
}

// HasAssets returns whether the market exchanges the given base and quote
// assets, on whatever network.
func (m Market) HasAssets(baseAsset, quoteAsset string) bool {
	return m.BaseAsset == baseAsset && m.QuoteAsset == quoteAsset
}

// ParseMarket is the inverse of Market.String.
func ParseMarket(name string) (Market, error) {
	base, quote, ok := strings.Cut(name, "/")
	if !ok {
		return Market{}, ErrMarketInvalid
	}
	baseAsset, baseNetwork, ok := strings.Cut(base, "@")
	if !ok || baseAsset == "" || baseNetwork == "" {
		return Market{}, ErrMarketInvalid
	}
	quoteAsset, quoteNetwork, ok := strings.Cut(quote, "@")
	if !ok || quoteAsset == "" || quoteNetwork == "" {
		return Market{}, ErrMarketInvalid
	}
	return Market{baseAsset, baseNetwork, quoteAsset, quoteNetwork}, nil
}

// Book holds the live orders of a market partitioned by side. Each side is
// kept sorted by priority: best price first (highest for bids, lowest for
// asks), then earliest timestamp. Book is not safe for concurrent use.
type Book struct {
	Market Market
	bids   []*Order
	asks   []*Order
	ids    map[string]OrderSide
}

// NewBook returns an empty book for the given market.
func NewBook(market Market) *Book {
	return &Book{
		Market: market,
		ids:    make(map[string]OrderSide),
	}
}

// Insert adds the order to its side of the book respecting priority.
func (b *Book) Insert(order *Order) error {
	if order.Market() != b.Market {
		return ErrMarketNotFound
	}
	if _, ok := b.ids[order.ID]; ok {
		return ErrOrderAlreadyExists
	}

	side := b.side(order.Side)
	i := sort.Search(len(side), func(i int) bool {
		return hasPriority(order, side[i])
	})
	side = append(side, nil)
	copy(side[i+1:], side[i:])
	side[i] = order
	b.setSide(order.Side, side)
	b.ids[order.ID] = order.Side
	return nil
}

// Remove deletes the order with the given id from the book and returns it.
func (b *Book) Remove(id string) (*Order, bool) {
	orderSide, ok := b.ids[id]
	if !ok {
		return nil, false
	}
	side := b.side(orderSide)
	for i, o := range side {
		if o.ID == id {
			side = append(side[:i], side[i+1:]...)
			b.setSide(orderSide, side)
			delete(b.ids, id)
			return o, true
		}
	}
	return nil, false
}

// Get returns the order with the given id, if present.
func (b *Book) Get(id string) (*Order, bool) {
	orderSide, ok := b.ids[id]
	if !ok {
		return nil, false
	}
	for _, o := range b.side(orderSide) {
		if o.ID == id {
			return o, true
		}
	}
	return nil, false
}

// BestMatch returns the resting order with highest priority that can be
// exactly paired with the given one: opposite side, crossing price, same base
// quantity and different owner. Scanning stops at the first resting order
// whose price does not cross.
func (b *Book) BestMatch(order *Order) *Order {
	for _, resting := range b.side(order.Side.Opposite()) {
		if !order.Crosses(*resting) {
			return nil
		}
		if resting.UID == order.UID {
			continue
		}
		if resting.BaseQuantity.Equal(order.BaseQuantity) {
			return resting
		}
	}
	return nil
}

// Bids returns a copy of the bid side in priority order.
func (b *Book) Bids() []Order {
	return copyOrders(b.bids)
}

// Asks returns a copy of the ask side in priority order.
func (b *Book) Asks() []Order {
	return copyOrders(b.asks)
}

// Len returns the number of live orders.
func (b *Book) Len() int {
	return len(b.ids)
}

func (b *Book) side(side OrderSide) []*Order {
	if side == OrderSideBid {
		return b.bids
	}
	return b.asks
}

func (b *Book) setSide(side OrderSide, orders []*Order) {
	if side == OrderSideBid {
		b.bids = orders
		return
	}
	b.asks = orders
}

// hasPriority returns whether b must come after a in the book, that is a has
// strictly higher priority than b. Orders are assumed on the same side.
func hasPriority(a, b *Order) bool {
	if cmp := a.ComparePrice(*b); cmp != 0 {
		if a.IsBid() {
			return cmp > 0
		}
		return cmp < 0
	}
	if a.Timestamp != b.Timestamp {
		return a.Timestamp < b.Timestamp
	}
	return a.ID < b.ID
}

func copyOrders(orders []*Order) []Order {
	out := make([]Order, 0, len(orders))
	for _, o := range orders {
		out = append(out, *o)
	}
	return out
}
