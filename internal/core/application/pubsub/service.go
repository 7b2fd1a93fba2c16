package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/swapdex/swapd/internal/core/domain"
	"github.com/swapdex/swapd/internal/core/ports"
)

const (
	EventSwapCreated   = "SWAP_CREATED"
	EventSwapOpened    = "SWAP_OPENED"
	EventSwapCommitted = "SWAP_COMMITTED"
	EventSwapErrored   = "SWAP_ERRORED"
	EventOrderMatched  = "ORDER_MATCHED"
	EventAny           = ports.AnyTopic
)

var events = map[string]struct{}{
	EventSwapCreated:   {},
	EventSwapOpened:    {},
	EventSwapCommitted: {},
	EventSwapErrored:   {},
	EventOrderMatched:  {},
	EventAny:           {},
}

// ErrInvalidWebhookEvent ...
var ErrInvalidWebhookEvent = fmt.Errorf("invalid webhook event type")

// WebhookInfo ...
type WebhookInfo struct {
	Id        string `json:"id"`
	Event     string `json:"event"`
	Endpoint  string `json:"endpoint"`
	IsSecured bool   `json:"isSecured"`
}

// Service notifies operator webhooks about swap lifecycle events.
type Service struct {
	pubsub ports.PubSub
}

func NewService(pubsub ports.PubSub) (*Service, error) {
	if pubsub == nil {
		return nil, fmt.Errorf("missing pubsub")
	}
	return &Service{pubsub}, nil
}

func (s *Service) AddWebhook(
	_ context.Context, event, endpoint, secret string,
) (string, error) {
	if _, ok := events[event]; !ok {
		return "", ErrInvalidWebhookEvent
	}
	return s.pubsub.Subscribe(event, endpoint, secret)
}

func (s *Service) RemoveWebhook(_ context.Context, id string) error {
	return s.pubsub.Unsubscribe(ports.UnspecifiedTopic, id)
}

// ListWebhooks returns the webhooks for the given event, or all of them if
// the event is empty.
func (s *Service) ListWebhooks(
	_ context.Context, event string,
) ([]WebhookInfo, error) {
	if _, ok := events[event]; !ok && event != ports.UnspecifiedTopic {
		return nil, ErrInvalidWebhookEvent
	}
	subs := s.pubsub.ListSubscriptionsForTopic(event)
	webhooks := make([]WebhookInfo, 0, len(subs))
	for _, sub := range subs {
		webhooks = append(webhooks, WebhookInfo{
			Id:        sub.Id(),
			Event:     sub.Topic(),
			Endpoint:  sub.NotifyAt(),
			IsSecured: sub.IsSecured(),
		})
	}
	return webhooks, nil
}

// PublishSwapEvent notifies the subscribers of the topic matching the swap
// status. Transitions towards intermediate statuses are not published.
func (s *Service) PublishSwapEvent(swap domain.SwapSession) error {
	event, ok := topicForStatus(swap.Status)
	if !ok {
		return nil
	}
	payload := map[string]interface{}{
		"event": event,
		"swap":  getSwapPayload(swap),
	}
	message, _ := json.Marshal(payload)
	return s.pubsub.Publish(event, string(message))
}

// PublishOrderMatchedEvent notifies that the given orders were matched into
// the swap with the given id.
func (s *Service) PublishOrderMatchedEvent(
	swapID string, orders ...domain.Order,
) error {
	event := EventOrderMatched
	list := make([]map[string]interface{}, 0, len(orders))
	for _, o := range orders {
		list = append(list, getOrderPayload(o))
	}
	payload := map[string]interface{}{
		"event":   event,
		"swap_id": swapID,
		"orders":  list,
		"date":    time.Now().Format(time.RFC3339),
	}
	message, _ := json.Marshal(payload)
	return s.pubsub.Publish(event, string(message))
}

func (s *Service) Close() {
	s.pubsub.Close()
}

func topicForStatus(status domain.SwapStatus) (string, bool) {
	switch status {
	case domain.SwapStatusCreated:
		return EventSwapCreated, true
	case domain.SwapStatusOpened:
		return EventSwapOpened, true
	case domain.SwapStatusCommitted:
		return EventSwapCommitted, true
	case domain.SwapStatusErrored:
		return EventSwapErrored, true
	default:
		return "", false
	}
}

func getSwapPayload(swap domain.SwapSession) map[string]interface{} {
	return map[string]interface{}{
		"id":             swap.ID,
		"market":         swap.Market.String(),
		"status":         swap.Status,
		"base_quantity":  swap.BaseQuantity.String(),
		"quote_quantity": swap.QuoteQuantity.String(),
		"secret_hash":    swap.SecretHash,
		"secret_holder":  swap.SecretHolder.UID,
		"secret_seeker":  swap.SecretSeeker.UID,
		"error":          swap.Error,
		"updated_at":     swap.UpdatedAt,
	}
}

func getOrderPayload(order domain.Order) map[string]interface{} {
	return map[string]interface{}{
		"id":             order.ID,
		"uid":            order.UID,
		"side":           order.Side,
		"market":         order.Market().String(),
		"base_quantity":  order.BaseQuantity.String(),
		"quote_quantity": order.QuoteQuantity.String(),
		"price":          order.Price().String(),
	}
}
