package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/swapdex/swapd/pkg/hashlock"
)

// PricePrecision is the number of decimal digits of an order price.
const PricePrecision = 18

// OrderSide is the direction of an order with respect to the base asset.
type OrderSide string

const (
	// OrderSideBid buys base asset paying quote asset.
	OrderSideBid OrderSide = "bid"
	// OrderSideAsk sells base asset receiving quote asset.
	OrderSideAsk OrderSide = "ask"
)

// OrderType ...
type OrderType string

// OrderTypeLimit is the only supported order type.
const OrderTypeLimit OrderType = "limit"

// Opposite returns the other side of the book.
func (s OrderSide) Opposite() OrderSide {
	if s == OrderSideBid {
		return OrderSideAsk
	}
	return OrderSideBid
}

// Order is the data structure representing one side of a desired exchange.
type Order struct {
	ID            string
	UID           string
	Timestamp     int64
	Side          OrderSide
	Type          OrderType
	BaseAsset     string
	BaseNetwork   string
	BaseQuantity  decimal.Decimal
	QuoteAsset    string
	QuoteNetwork  string
	QuoteQuantity decimal.Decimal
	Hash          string
}

// LimitOrderArgs holds the user submitted fields of a limit order.
type LimitOrderArgs struct {
	UID           string
	Side          string
	Type          string
	BaseAsset     string
	BaseNetwork   string
	BaseQuantity  decimal.Decimal
	QuoteAsset    string
	QuoteNetwork  string
	QuoteQuantity decimal.Decimal
	Hash          string
}

// NewLimitOrder validates the given args and returns a limit order with a new
// id and the current time as timestamp. An empty type defaults to limit.
// Text fields are stored as given and rejected if padded with whitespace. The
// hash is the only normalized field: it is stored lowercase.
func NewLimitOrder(args LimitOrderArgs) (*Order, error) {
	if isPadded(args.UID, args.BaseAsset, args.BaseNetwork,
		args.QuoteAsset, args.QuoteNetwork, args.Hash) {
		return nil, ErrOrderPaddedField
	}

	orderType := OrderType(args.Type)
	if orderType == "" {
		orderType = OrderTypeLimit
	}
	order := &Order{
		UID:           args.UID,
		Side:          OrderSide(args.Side),
		Type:          orderType,
		BaseAsset:     args.BaseAsset,
		BaseNetwork:   args.BaseNetwork,
		BaseQuantity:  args.BaseQuantity,
		QuoteAsset:    args.QuoteAsset,
		QuoteNetwork:  args.QuoteNetwork,
		QuoteQuantity: args.QuoteQuantity,
		Hash:          args.Hash,
	}
	if order.Hash != "" {
		hash, err := hashlock.NormalizeHash(order.Hash)
		if err != nil {
			return nil, ErrOrderInvalidHash
		}
		order.Hash = hash
	}
	if err := order.Validate(); err != nil {
		return nil, err
	}

	order.ID = uuid.New().String()
	order.Timestamp = time.Now().UnixNano()
	return order, nil
}

// Validate checks the order fields. It does not check whether the assets are
// supported, that is up to the order book.
func (o Order) Validate() error {
	if o.UID == "" {
		return ErrOrderMissingUid
	}
	if o.Side != OrderSideBid && o.Side != OrderSideAsk {
		return ErrOrderInvalidSide
	}
	if o.Type != OrderTypeLimit {
		return ErrOrderInvalidType
	}
	if o.BaseAsset == "" || o.QuoteAsset == "" {
		return ErrOrderMissingAsset
	}
	if o.BaseNetwork == "" || o.QuoteNetwork == "" {
		return ErrOrderMissingNetwork
	}
	if o.BaseAsset == o.QuoteAsset && o.BaseNetwork == o.QuoteNetwork {
		return ErrOrderSameAsset
	}
	if !o.BaseQuantity.IsPositive() || !o.QuoteQuantity.IsPositive() {
		return ErrOrderInvalidQuantity
	}
	return nil
}

// Price returns the quote/base ratio of the order rounded to PricePrecision
// digits. It is meant for display only, use ComparePrice to compare orders.
func (o Order) Price() decimal.Decimal {
	return o.QuoteQuantity.DivRound(o.BaseQuantity, PricePrecision)
}

// ComparePrice compares the exact prices of the two orders by cross
// multiplying quantities. It returns -1, 0 or +1 if the price of o is
// respectively lower, equal or higher than the other's.
func (o Order) ComparePrice(other Order) int {
	return o.QuoteQuantity.Mul(other.BaseQuantity).
		Cmp(other.QuoteQuantity.Mul(o.BaseQuantity))
}

// Market returns the market the order belongs to.
func (o Order) Market() Market {
	return Market{
		BaseAsset:    o.BaseAsset,
		BaseNetwork:  o.BaseNetwork,
		QuoteAsset:   o.QuoteAsset,
		QuoteNetwork: o.QuoteNetwork,
	}
}

// IsBid ...
func (o Order) IsBid() bool {
	return o.Side == OrderSideBid
}

// Crosses returns whether the order and the given one of the opposite side
// agree on price: the bid price must be greater than or equal to the ask one.
func (o Order) Crosses(other Order) bool {
	if o.Side == other.Side || o.Market() != other.Market() {
		return false
	}
	bid, ask := o, other
	if !o.IsBid() {
		bid, ask = other, o
	}
	return bid.ComparePrice(ask) >= 0
}

// OrderStatus is the status of an order that left the book.
type OrderStatus string

const (
	// OrderStatusMatched ...
	OrderStatusMatched OrderStatus = "matched"
	// OrderStatusCancelled ...
	OrderStatusCancelled OrderStatus = "cancelled"
)

// ClosedOrder is an order removed from the book either because it was matched
// or cancelled. Matched orders reference the swap session they originated.
type ClosedOrder struct {
	Order
	Status   OrderStatus
	SwapID   string
	ClosedAt int64
}

// NewClosedOrder ...
func NewClosedOrder(order Order, status OrderStatus, swapID string) ClosedOrder {
	return ClosedOrder{
		Order:    order,
		Status:   status,
		SwapID:   swapID,
		ClosedAt: time.Now().Unix(),
	}
}

func isPadded(fields ...string) bool {
	for _, f := range fields {
		if f != strings.TrimSpace(f) {
			return true
		}
	}
	return false
}
