package httpinterface

import (
	"encoding/json"

	"github.com/shopspring/decimal"
	"github.com/swapdex/swapd/internal/core/application/orderbook"
	"github.com/swapdex/swapd/internal/core/application/swap"
	"github.com/swapdex/swapd/internal/core/domain"
)

type addLimitOrderRequest struct {
	Side          string          `json:"side" validate:"required,oneof=bid ask"`
	Type          string          `json:"type" validate:"omitempty,oneof=limit"`
	BaseAsset     string          `json:"baseAsset" validate:"required"`
	BaseNetwork   string          `json:"baseNetwork" validate:"required"`
	BaseQuantity  decimal.Decimal `json:"baseQuantity"`
	QuoteAsset    string          `json:"quoteAsset" validate:"required"`
	QuoteNetwork  string          `json:"quoteNetwork" validate:"required"`
	QuoteQuantity decimal.Decimal `json:"quoteQuantity"`
	Hash          string          `json:"hash,omitempty" validate:"omitempty,hexadecimal,len=64"`
}

func (r addLimitOrderRequest) toDomain(uid string) domain.LimitOrderArgs {
	return domain.LimitOrderArgs{
		UID:           uid,
		Side:          r.Side,
		Type:          r.Type,
		BaseAsset:     r.BaseAsset,
		BaseNetwork:   r.BaseNetwork,
		BaseQuantity:  r.BaseQuantity,
		QuoteAsset:    r.QuoteAsset,
		QuoteNetwork:  r.QuoteNetwork,
		QuoteQuantity: r.QuoteQuantity,
		Hash:          r.Hash,
	}
}

type cancelLimitOrderRequest struct {
	ID         string `json:"id" validate:"required"`
	BaseAsset  string `json:"baseAsset" validate:"required"`
	QuoteAsset string `json:"quoteAsset" validate:"required"`
}

type openSwapRequest struct {
	ID         string          `json:"id" validate:"required"`
	PublicInfo json.RawMessage `json:"publicInfo"`
	SecretHash string          `json:"secretHash,omitempty"`
}

type commitSwapRequest struct {
	ID           string          `json:"id" validate:"required"`
	Confirmation json.RawMessage `json:"confirmation"`
	Secret       string          `json:"secret,omitempty"`
}

type addWebhookRequest struct {
	Event    string `json:"event" validate:"required"`
	Endpoint string `json:"endpoint" validate:"required,url"`
	Secret   string `json:"secret,omitempty"`
}

type orderInfo struct {
	ID            string `json:"id"`
	UID           string `json:"uid"`
	Timestamp     int64  `json:"timestamp"`
	Side          string `json:"side"`
	Type          string `json:"type"`
	BaseAsset     string `json:"baseAsset"`
	BaseNetwork   string `json:"baseNetwork"`
	BaseQuantity  string `json:"baseQuantity"`
	QuoteAsset    string `json:"quoteAsset"`
	QuoteNetwork  string `json:"quoteNetwork"`
	QuoteQuantity string `json:"quoteQuantity"`
	Price         string `json:"price"`
	Hash          string `json:"hash,omitempty"`
	Status        string `json:"status,omitempty"`
	SwapID        string `json:"swapId,omitempty"`
	ClosedAt      int64  `json:"closedAt,omitempty"`
}

func newOrderInfo(order domain.Order) orderInfo {
	return orderInfo{
		ID:            order.ID,
		UID:           order.UID,
		Timestamp:     order.Timestamp,
		Side:          string(order.Side),
		Type:          string(order.Type),
		BaseAsset:     order.BaseAsset,
		BaseNetwork:   order.BaseNetwork,
		BaseQuantity:  order.BaseQuantity.String(),
		QuoteAsset:    order.QuoteAsset,
		QuoteNetwork:  order.QuoteNetwork,
		QuoteQuantity: order.QuoteQuantity.String(),
		Price:         order.Price().String(),
		Hash:          order.Hash,
	}
}

func newClosedOrderInfo(order domain.ClosedOrder) orderInfo {
	info := newOrderInfo(order.Order)
	info.Status = string(order.Status)
	info.SwapID = order.SwapID
	info.ClosedAt = order.ClosedAt
	return info
}

func newOrderInfoList(orders []domain.Order) []orderInfo {
	list := make([]orderInfo, 0, len(orders))
	for _, o := range orders {
		list = append(list, newOrderInfo(o))
	}
	return list
}

type addLimitOrderResponse struct {
	Order  orderInfo `json:"order"`
	SwapID string    `json:"swapId,omitempty"`
}

func newAddLimitOrderResponse(res *orderbook.AddOrderResult) addLimitOrderResponse {
	return addLimitOrderResponse{
		Order:  newOrderInfo(res.Order),
		SwapID: res.SwapID,
	}
}

type marketInfo struct {
	Market string `json:"market"`
	Bids   int    `json:"bids"`
	Asks   int    `json:"asks"`
}

type orderBookResponse struct {
	Market string      `json:"market"`
	Bids   []orderInfo `json:"bids"`
	Asks   []orderInfo `json:"asks"`
}

type listOrdersResponse struct {
	Open   []orderInfo `json:"open"`
	Closed []orderInfo `json:"closed"`
}

type ackResponse struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	Changed bool   `json:"changed"`
}

func newAckResponse(ack *swap.Ack) ackResponse {
	return ackResponse{
		ID:      ack.SwapID,
		Status:  string(ack.Status),
		Changed: ack.Changed,
	}
}

type listSwapsResponse struct {
	Swaps []swap.SwapView `json:"swaps"`
}
