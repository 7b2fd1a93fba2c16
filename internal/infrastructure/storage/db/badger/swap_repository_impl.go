package dbbadger

import (
	"context"
	"sort"

	"github.com/swapdex/swapd/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

type swapRepositoryImpl struct {
	store *badgerhold.Store
}

// NewSwapRepositoryImpl returns a new badger SwapRepository implementation.
func NewSwapRepositoryImpl(store *badgerhold.Store) domain.SwapRepository {
	return &swapRepositoryImpl{store}
}

func (r *swapRepositoryImpl) AddSwap(
	_ context.Context, swap domain.SwapSession,
) error {
	return r.store.Upsert(swap.ID, &swap)
}

func (r *swapRepositoryImpl) GetSwap(
	_ context.Context, id string,
) (*domain.SwapSession, error) {
	var swap domain.SwapSession
	if err := r.store.Get(id, &swap); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, domain.ErrSwapNotFound
		}
		return nil, err
	}
	return &swap, nil
}

func (r *swapRepositoryImpl) GetAllSwaps(
	_ context.Context, page domain.Page,
) ([]domain.SwapSession, error) {
	query := (&badgerhold.Query{}).SortBy("CreatedAt", "ID").Reverse()
	if !page.IsZero() {
		query = query.Skip(page.Offset()).Limit(page.Size)
	}

	var swaps []domain.SwapSession
	if err := r.store.Find(&swaps, query); err != nil {
		return nil, err
	}
	return swaps, nil
}

func (r *swapRepositoryImpl) GetSwapsForParty(
	_ context.Context, uid string, page domain.Page,
) ([]domain.SwapSession, error) {
	query := badgerhold.Where("SecretHolder.UID").Eq(uid).
		Or(badgerhold.Where("SecretSeeker.UID").Eq(uid))

	var swaps []domain.SwapSession
	if err := r.store.Find(&swaps, query); err != nil {
		return nil, err
	}
	sort.SliceStable(swaps, func(i, j int) bool {
		if swaps[i].CreatedAt != swaps[j].CreatedAt {
			return swaps[i].CreatedAt > swaps[j].CreatedAt
		}
		return swaps[i].ID > swaps[j].ID
	})
	return paginate(swaps, page), nil
}
