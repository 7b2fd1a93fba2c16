package dbbadger

import (
	"context"

	"github.com/swapdex/swapd/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

type orderRepositoryImpl struct {
	store *badgerhold.Store
}

// NewOrderRepositoryImpl returns a new badger OrderRepository implementation.
func NewOrderRepositoryImpl(store *badgerhold.Store) domain.OrderRepository {
	return &orderRepositoryImpl{store}
}

func (r *orderRepositoryImpl) AddOrder(
	_ context.Context, order domain.ClosedOrder,
) error {
	if err := r.store.Insert(order.ID, &order); err != nil {
		if err == badgerhold.ErrKeyExists {
			return domain.ErrOrderAlreadyExists
		}
		return err
	}
	return nil
}

func (r *orderRepositoryImpl) GetOrder(
	_ context.Context, id string,
) (*domain.ClosedOrder, error) {
	var order domain.ClosedOrder
	if err := r.store.Get(id, &order); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, domain.ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (r *orderRepositoryImpl) GetOrdersForUser(
	_ context.Context, uid string, page domain.Page,
) ([]domain.ClosedOrder, error) {
	query := badgerhold.Where("Order.UID").Eq(uid).
		SortBy("Order.Timestamp").Reverse()
	if !page.IsZero() {
		query = query.Skip(page.Offset()).Limit(page.Size)
	}

	var orders []domain.ClosedOrder
	if err := r.store.Find(&orders, query); err != nil {
		return nil, err
	}
	return orders, nil
}
