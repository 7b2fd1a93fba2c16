package orderbook

import (
	"context"
	"fmt"
	"sort"
	"sync"

	log "github.com/sirupsen/logrus"
	"github.com/swapdex/swapd/internal/core/application/pubsub"
	"github.com/swapdex/swapd/internal/core/domain"
	"github.com/swapdex/swapd/internal/core/ports"
	"github.com/swapdex/swapd/pkg/stats"
)

// MatchHandler consumes the pairs of matched orders. It is invoked while the
// market of the orders is locked, so it must not call back into the order
// book nor block on I/O.
type MatchHandler interface {
	CreateSession(incoming, resting domain.Order) (*domain.SwapSession, error)
}

// AddOrderResult is the outcome of a limit order submission. If the order was
// matched, SwapID references the session created for the pair.
type AddOrderResult struct {
	Order  domain.Order
	SwapID string
}

// Matched ...
func (r AddOrderResult) Matched() bool {
	return r.SwapID != ""
}

// MarketInfo summarizes the live orders of a market.
type MarketInfo struct {
	Market domain.Market
	Bids   int
	Asks   int
}

type market struct {
	lock sync.Mutex
	book *domain.Book
}

// Service holds the live orders of every market. Operations on the same
// market are serialized, distinct markets proceed in parallel.
type Service struct {
	assets       ports.AssetRegistry
	repoManager  ports.RepoManager
	matchHandler MatchHandler
	pubsub       *pubsub.Service

	lock    sync.RWMutex
	markets map[domain.Market]*market
}

// NewService returns a new order book. The pubsub service is optional.
func NewService(
	assets ports.AssetRegistry,
	repoManager ports.RepoManager,
	matchHandler MatchHandler,
	pubsubSvc *pubsub.Service,
) (*Service, error) {
	if assets == nil {
		return nil, fmt.Errorf("missing asset registry")
	}
	if repoManager == nil {
		return nil, fmt.Errorf("missing repo manager")
	}
	if matchHandler == nil {
		return nil, fmt.Errorf("missing match handler")
	}

	return &Service{
		assets:       assets,
		repoManager:  repoManager,
		matchHandler: matchHandler,
		pubsub:       pubsubSvc,
		markets:      make(map[domain.Market]*market),
	}, nil
}

// AddLimitOrder validates the given order and matches it against the
// opposite side of its market. If no resting order can be paired, the order
// is inserted into the book.
func (s *Service) AddLimitOrder(
	ctx context.Context, args domain.LimitOrderArgs,
) (*AddOrderResult, error) {
	order, err := domain.NewLimitOrder(args)
	if err != nil {
		return nil, err
	}
	if !s.assets.IsSupported(order.BaseAsset, order.BaseNetwork) ||
		!s.assets.IsSupported(order.QuoteAsset, order.QuoteNetwork) {
		return nil, domain.ErrAssetNotSupported
	}

	mktName := order.Market().String()
	mkt := s.getOrCreateMarket(order.Market())

	resting, swap, err := func() (*domain.Order, *domain.SwapSession, error) {
		mkt.lock.Lock()
		defer mkt.lock.Unlock()

		resting := mkt.book.BestMatch(order)
		if resting == nil {
			if err := mkt.book.Insert(order); err != nil {
				return nil, nil, err
			}
			stats.OpenOrders.WithLabelValues(mktName).Set(float64(mkt.book.Len()))
			return nil, nil, nil
		}

		swap, err := s.matchHandler.CreateSession(*order, *resting)
		if err != nil {
			return nil, nil, err
		}
		mkt.book.Remove(resting.ID)
		stats.OpenOrders.WithLabelValues(mktName).Set(float64(mkt.book.Len()))
		return resting, swap, nil
	}()
	if err != nil {
		return nil, err
	}

	stats.OrdersAdded.WithLabelValues(mktName).Inc()
	if swap == nil {
		log.Debugf("orderbook: added %s order %s to market %s", order.Side, order.ID, mktName)
		return &AddOrderResult{Order: *order}, nil
	}

	log.Infof(
		"orderbook: matched order %s with %s in market %s, swap %s",
		order.ID, resting.ID, mktName, swap.ID,
	)
	s.archive(ctx, domain.OrderStatusMatched, swap.ID, *order, *resting)
	if s.pubsub != nil {
		go func(swapID string, orders ...domain.Order) {
			if err := s.pubsub.PublishOrderMatchedEvent(swapID, orders...); err != nil {
				log.WithError(err).Warn("orderbook: failed to publish order matched event")
			}
		}(swap.ID, *resting, *order)
	}
	return &AddOrderResult{Order: *order, SwapID: swap.ID}, nil
}

// CancelLimitOrder removes the order with the given id from any market
// exchanging the given assets. If uid is not empty, the order must belong to
// that user.
func (s *Service) CancelLimitOrder(
	ctx context.Context, uid, id, baseAsset, quoteAsset string,
) (*domain.Order, error) {
	if id == "" {
		return nil, domain.ErrOrderMissingId
	}
	if baseAsset == "" || quoteAsset == "" {
		return nil, domain.ErrOrderMissingAsset
	}

	for _, mkt := range s.marketsByAssets(baseAsset, quoteAsset) {
		order, ok := func() (*domain.Order, bool) {
			mkt.lock.Lock()
			defer mkt.lock.Unlock()

			order, ok := mkt.book.Get(id)
			if !ok || (uid != "" && order.UID != uid) {
				return nil, false
			}
			mkt.book.Remove(id)
			stats.OpenOrders.WithLabelValues(mkt.book.Market.String()).
				Set(float64(mkt.book.Len()))
			return order, true
		}()
		if ok {
			log.Debugf("orderbook: cancelled order %s", order.ID)
			s.archive(ctx, domain.OrderStatusCancelled, "", *order)
			return order, nil
		}
	}
	return nil, domain.ErrOrderNotFound
}

// GetOrderBook returns the bids and asks of the given market in priority
// order.
func (s *Service) GetOrderBook(
	_ context.Context, m domain.Market,
) (bids, asks []domain.Order, err error) {
	s.lock.RLock()
	mkt, ok := s.markets[m]
	s.lock.RUnlock()
	if !ok {
		return nil, nil, domain.ErrMarketNotFound
	}

	mkt.lock.Lock()
	defer mkt.lock.Unlock()
	return mkt.book.Bids(), mkt.book.Asks(), nil
}

// ListMarkets returns the markets that ever received an order, sorted by
// name.
func (s *Service) ListMarkets(_ context.Context) []MarketInfo {
	s.lock.RLock()
	list := make([]*market, 0, len(s.markets))
	for _, mkt := range s.markets {
		list = append(list, mkt)
	}
	s.lock.RUnlock()

	info := make([]MarketInfo, 0, len(list))
	for _, mkt := range list {
		mkt.lock.Lock()
		info = append(info, MarketInfo{
			Market: mkt.book.Market,
			Bids:   len(mkt.book.Bids()),
			Asks:   len(mkt.book.Asks()),
		})
		mkt.lock.Unlock()
	}
	sort.Slice(info, func(i, j int) bool {
		return info[i].Market.String() < info[j].Market.String()
	})
	return info
}

// ListOpenOrders returns the live orders of the given user across all
// markets.
func (s *Service) ListOpenOrders(_ context.Context, uid string) []domain.Order {
	s.lock.RLock()
	list := make([]*market, 0, len(s.markets))
	for _, mkt := range s.markets {
		list = append(list, mkt)
	}
	s.lock.RUnlock()

	orders := make([]domain.Order, 0)
	for _, mkt := range list {
		mkt.lock.Lock()
		for _, o := range append(mkt.book.Bids(), mkt.book.Asks()...) {
			if o.UID == uid {
				orders = append(orders, o)
			}
		}
		mkt.lock.Unlock()
	}
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].Timestamp < orders[j].Timestamp
	})
	return orders
}

// ListClosedOrders returns the matched and cancelled orders of the given
// user.
func (s *Service) ListClosedOrders(
	ctx context.Context, uid string, page domain.Page,
) ([]domain.ClosedOrder, error) {
	return s.repoManager.OrderRepository().GetOrdersForUser(ctx, uid, page)
}

func (s *Service) getOrCreateMarket(m domain.Market) *market {
	s.lock.RLock()
	mkt, ok := s.markets[m]
	s.lock.RUnlock()
	if ok {
		return mkt
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	if mkt, ok := s.markets[m]; ok {
		return mkt
	}
	mkt = &market{book: domain.NewBook(m)}
	s.markets[m] = mkt
	return mkt
}

func (s *Service) marketsByAssets(baseAsset, quoteAsset string) []*market {
	s.lock.RLock()
	defer s.lock.RUnlock()

	list := make([]*market, 0)
	for m, mkt := range s.markets {
		if m.HasAssets(baseAsset, quoteAsset) {
			list = append(list, mkt)
		}
	}
	return list
}

func (s *Service) archive(
	ctx context.Context, status domain.OrderStatus, swapID string,
	orders ...domain.Order,
) {
	for _, o := range orders {
		stats.OrdersClosed.WithLabelValues(o.Market().String(), string(status)).Inc()
		closed := domain.NewClosedOrder(o, status, swapID)
		if err := s.repoManager.OrderRepository().AddOrder(ctx, closed); err != nil {
			log.WithError(err).Warnf("orderbook: failed to archive order %s", o.ID)
		}
	}
}
