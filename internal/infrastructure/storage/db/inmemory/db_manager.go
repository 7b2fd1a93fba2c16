package inmemory

import (
	"github.com/swapdex/swapd/internal/core/domain"
	"github.com/swapdex/swapd/internal/core/ports"
)

type RepoManager struct {
	swapRepository  domain.SwapRepository
	orderRepository domain.OrderRepository
}

func NewRepoManager() ports.RepoManager {
	return &RepoManager{
		swapRepository:  NewSwapRepositoryImpl(),
		orderRepository: NewOrderRepositoryImpl(),
	}
}

func (d *RepoManager) SwapRepository() domain.SwapRepository {
	return d.swapRepository
}

func (d *RepoManager) OrderRepository() domain.OrderRepository {
	return d.orderRepository
}

func (d *RepoManager) Close() {}

func paginate[T any](list []T, page domain.Page) []T {
	if page.IsZero() {
		return list
	}
	start := page.Offset()
	if start >= len(list) {
		return []T{}
	}
	end := start + page.Size
	if end > len(list) {
		end = len(list)
	}
	return list[start:end]
}
