package domain

import "context"

// SwapRepository is the abstraction for the archive of terminated swap
// sessions.
type SwapRepository interface {
	// AddSwap stores a terminated session. Adding a session twice overwrites
	// the previous record.
	AddSwap(ctx context.Context, swap SwapSession) error
	// GetSwap returns the session with the given id.
	GetSwap(ctx context.Context, id string) (*SwapSession, error)
	// GetAllSwaps returns all archived sessions, optionally paginated.
	GetAllSwaps(ctx context.Context, page Page) ([]SwapSession, error)
	// GetSwapsForParty returns the archived sessions the given user took part
	// in, optionally paginated.
	GetSwapsForParty(ctx context.Context, uid string, page Page) ([]SwapSession, error)
}

// OrderRepository is the abstraction for the history of orders that left the
// book.
type OrderRepository interface {
	// AddOrder stores a closed order.
	AddOrder(ctx context.Context, order ClosedOrder) error
	// GetOrder returns the closed order with the given id.
	GetOrder(ctx context.Context, id string) (*ClosedOrder, error)
	// GetOrdersForUser returns the closed orders of the given user, optionally
	// paginated.
	GetOrdersForUser(ctx context.Context, uid string, page Page) ([]ClosedOrder, error)
}

// Page ...
type Page struct {
	Number int
	Size   int
}

// NewPage returns a page with defaults for non positive values.
func NewPage(pageNumber, pageSize int) Page {
	pNumber := 1
	if pageNumber > 0 {
		pNumber = pageNumber
	}

	pSize := 10
	if pageSize > 0 {
		pSize = pageSize
	}

	return Page{
		Number: pNumber,
		Size:   pSize,
	}
}

// IsZero returns whether no pagination is requested.
func (p Page) IsZero() bool {
	return p.Number <= 0 || p.Size <= 0
}

// Offset ...
func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}
