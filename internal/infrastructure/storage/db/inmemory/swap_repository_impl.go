package inmemory

import (
	"context"
	"sort"
	"sync"

	"github.com/swapdex/swapd/internal/core/domain"
)

type swapRepositoryImpl struct {
	locker sync.RWMutex
	swaps  map[string]domain.SwapSession
}

// NewSwapRepositoryImpl returns a new inmemory SwapRepository implementation.
func NewSwapRepositoryImpl() domain.SwapRepository {
	return &swapRepositoryImpl{
		swaps: make(map[string]domain.SwapSession),
	}
}

func (r *swapRepositoryImpl) AddSwap(
	_ context.Context, swap domain.SwapSession,
) error {
	r.locker.Lock()
	defer r.locker.Unlock()

	r.swaps[swap.ID] = swap
	return nil
}

func (r *swapRepositoryImpl) GetSwap(
	_ context.Context, id string,
) (*domain.SwapSession, error) {
	r.locker.RLock()
	defer r.locker.RUnlock()

	swap, ok := r.swaps[id]
	if !ok {
		return nil, domain.ErrSwapNotFound
	}
	return &swap, nil
}

func (r *swapRepositoryImpl) GetAllSwaps(
	_ context.Context, page domain.Page,
) ([]domain.SwapSession, error) {
	return r.find(func(domain.SwapSession) bool { return true }, page), nil
}

func (r *swapRepositoryImpl) GetSwapsForParty(
	_ context.Context, uid string, page domain.Page,
) ([]domain.SwapSession, error) {
	return r.find(func(s domain.SwapSession) bool { return s.IsParty(uid) }, page), nil
}

func (r *swapRepositoryImpl) find(
	filter func(domain.SwapSession) bool, page domain.Page,
) []domain.SwapSession {
	r.locker.RLock()
	defer r.locker.RUnlock()

	swaps := make([]domain.SwapSession, 0, len(r.swaps))
	for _, s := range r.swaps {
		if filter(s) {
			swaps = append(swaps, s)
		}
	}
	sort.SliceStable(swaps, func(i, j int) bool {
		if swaps[i].CreatedAt != swaps[j].CreatedAt {
			return swaps[i].CreatedAt > swaps[j].CreatedAt
		}
		return swaps[i].ID > swaps[j].ID
	})
	return paginate(swaps, page)
}
