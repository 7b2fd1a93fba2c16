package ports

import "github.com/swapdex/swapd/internal/core/domain"

// RepoManager interface defines the methods to access the repositories of
// archived swaps and closed orders.
type RepoManager interface {
	SwapRepository() domain.SwapRepository
	OrderRepository() domain.OrderRepository

	Close()
}
