package inmemory

import (
	"context"
	"sort"
	"sync"

	"github.com/swapdex/swapd/internal/core/domain"
)

type orderRepositoryImpl struct {
	locker sync.RWMutex
	orders map[string]domain.ClosedOrder
}

// NewOrderRepositoryImpl returns a new inmemory OrderRepository
// implementation.
func NewOrderRepositoryImpl() domain.OrderRepository {
	return &orderRepositoryImpl{
		orders: make(map[string]domain.ClosedOrder),
	}
}

func (r *orderRepositoryImpl) AddOrder(
	_ context.Context, order domain.ClosedOrder,
) error {
	r.locker.Lock()
	defer r.locker.Unlock()

	if _, ok := r.orders[order.ID]; ok {
		return domain.ErrOrderAlreadyExists
	}
	r.orders[order.ID] = order
	return nil
}

func (r *orderRepositoryImpl) GetOrder(
	_ context.Context, id string,
) (*domain.ClosedOrder, error) {
	r.locker.RLock()
	defer r.locker.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return &order, nil
}

func (r *orderRepositoryImpl) GetOrdersForUser(
	_ context.Context, uid string, page domain.Page,
) ([]domain.ClosedOrder, error) {
	r.locker.RLock()
	defer r.locker.RUnlock()

	orders := make([]domain.ClosedOrder, 0)
	for _, o := range r.orders {
		if o.UID == uid {
			orders = append(orders, o)
		}
	}
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].Timestamp > orders[j].Timestamp
	})
	return paginate(orders, page), nil
}
