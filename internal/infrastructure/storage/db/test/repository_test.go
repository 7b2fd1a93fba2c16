package db_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/swapdex/swapd/internal/core/domain"
	"github.com/swapdex/swapd/internal/core/ports"
	dbbadger "github.com/swapdex/swapd/internal/infrastructure/storage/db/badger"
	"github.com/swapdex/swapd/internal/infrastructure/storage/db/inmemory"
)

var ctx = context.Background()

func TestRepoManagers(t *testing.T) {
	repoManagers := map[string]func(t *testing.T) ports.RepoManager{
		"inmemory": func(t *testing.T) ports.RepoManager {
			return inmemory.NewRepoManager()
		},
		"badger_inmemory": func(t *testing.T) ports.RepoManager {
			repoManager, err := dbbadger.NewRepoManager("", nil)
			require.NoError(t, err)
			return repoManager
		},
		"badger_ondisk": func(t *testing.T) ports.RepoManager {
			repoManager, err := dbbadger.NewRepoManager(t.TempDir(), nil)
			require.NoError(t, err)
			return repoManager
		},
	}

	for name, newRepoManager := range repoManagers {
		newRepoManager := newRepoManager
		t.Run(name, func(t *testing.T) {
			t.Run("swap_repository", func(t *testing.T) {
				repoManager := newRepoManager(t)
				t.Cleanup(repoManager.Close)
				testSwapRepository(t, repoManager.SwapRepository())
			})
			t.Run("order_repository", func(t *testing.T) {
				repoManager := newRepoManager(t)
				t.Cleanup(repoManager.Close)
				testOrderRepository(t, repoManager.OrderRepository())
			})
		})
	}
}

func testSwapRepository(t *testing.T, repo domain.SwapRepository) {
	swaps := []domain.SwapSession{
		newTestSwap("swap1", "alice", "bob", 1),
		newTestSwap("swap2", "carol", "alice", 2),
		newTestSwap("swap3", "carol", "dave", 3),
	}
	for _, s := range swaps {
		require.NoError(t, repo.AddSwap(ctx, s))
	}

	swap, err := repo.GetSwap(ctx, "swap1")
	require.NoError(t, err)
	require.Equal(t, "alice", swap.SecretHolder.UID)
	require.Equal(t, domain.SwapStatusCommitted, swap.Status)
	require.True(t, decimal.NewFromInt(10).Equal(swap.QuoteQuantity))
	require.JSONEq(t, `{"address":"0xalice"}`, string(swap.SecretHolder.PublicInfo))

	_, err = repo.GetSwap(ctx, "unknown")
	require.ErrorIs(t, err, domain.ErrSwapNotFound)

	// upsert overwrites.
	updated := swaps[0]
	updated.Status = domain.SwapStatusErrored
	require.NoError(t, repo.AddSwap(ctx, updated))
	swap, err = repo.GetSwap(ctx, "swap1")
	require.NoError(t, err)
	require.Equal(t, domain.SwapStatusErrored, swap.Status)

	all, err := repo.GetAllSwaps(ctx, domain.Page{})
	require.NoError(t, err)
	require.Equal(t, []string{"swap3", "swap2", "swap1"}, swapIDs(all))

	paged, err := repo.GetAllSwaps(ctx, domain.NewPage(2, 2))
	require.NoError(t, err)
	require.Equal(t, []string{"swap1"}, swapIDs(paged))

	forAlice, err := repo.GetSwapsForParty(ctx, "alice", domain.Page{})
	require.NoError(t, err)
	require.Equal(t, []string{"swap2", "swap1"}, swapIDs(forAlice))

	forAlice, err = repo.GetSwapsForParty(ctx, "alice", domain.NewPage(1, 1))
	require.NoError(t, err)
	require.Equal(t, []string{"swap2"}, swapIDs(forAlice))

	forNobody, err := repo.GetSwapsForParty(ctx, "mallory", domain.Page{})
	require.NoError(t, err)
	require.Empty(t, forNobody)
}

func testOrderRepository(t *testing.T, repo domain.OrderRepository) {
	orders := []domain.ClosedOrder{
		newTestClosedOrder("order1", "alice", 1, domain.OrderStatusMatched),
		newTestClosedOrder("order2", "alice", 2, domain.OrderStatusCancelled),
		newTestClosedOrder("order3", "bob", 3, domain.OrderStatusMatched),
	}
	for _, o := range orders {
		require.NoError(t, repo.AddOrder(ctx, o))
	}

	err := repo.AddOrder(ctx, orders[0])
	require.ErrorIs(t, err, domain.ErrOrderAlreadyExists)

	order, err := repo.GetOrder(ctx, "order1")
	require.NoError(t, err)
	require.Equal(t, domain.OrderStatusMatched, order.Status)
	require.Equal(t, "swap", order.SwapID)
	require.True(t, decimal.NewFromInt(1).Equal(order.BaseQuantity))

	_, err = repo.GetOrder(ctx, "unknown")
	require.ErrorIs(t, err, domain.ErrOrderNotFound)

	forAlice, err := repo.GetOrdersForUser(ctx, "alice", domain.Page{})
	require.NoError(t, err)
	require.Len(t, forAlice, 2)
	require.Equal(t, "order2", forAlice[0].ID)
	require.Equal(t, "order1", forAlice[1].ID)

	forAlice, err = repo.GetOrdersForUser(ctx, "alice", domain.NewPage(2, 1))
	require.NoError(t, err)
	require.Len(t, forAlice, 1)
	require.Equal(t, "order1", forAlice[0].ID)
}

func newTestSwap(id, holder, seeker string, createdAt int64) domain.SwapSession {
	return domain.SwapSession{
		ID: id,
		Market: domain.Market{
			BaseAsset: "ETH", BaseNetwork: "goerli",
			QuoteAsset: "USDC", QuoteNetwork: "sepolia",
		},
		BaseQuantity:  decimal.NewFromInt(1),
		QuoteQuantity: decimal.NewFromInt(10),
		SecretHolder: domain.SwapParty{
			UID:        holder,
			Role:       domain.SwapRoleSecretHolder,
			PublicInfo: []byte(`{"address":"0x` + holder + `"}`),
		},
		SecretSeeker: domain.SwapParty{
			UID:  seeker,
			Role: domain.SwapRoleSecretSeeker,
		},
		Status:    domain.SwapStatusCommitted,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

func newTestClosedOrder(
	id, uid string, ts int64, status domain.OrderStatus,
) domain.ClosedOrder {
	return domain.ClosedOrder{
		Order: domain.Order{
			ID:            id,
			UID:           uid,
			Timestamp:     ts,
			Side:          domain.OrderSideBid,
			Type:          domain.OrderTypeLimit,
			BaseAsset:     "ETH",
			BaseNetwork:   "goerli",
			BaseQuantity:  decimal.NewFromInt(1),
			QuoteAsset:    "USDC",
			QuoteNetwork:  "sepolia",
			QuoteQuantity: decimal.NewFromInt(10),
		},
		Status:   status,
		SwapID:   "swap",
		ClosedAt: ts,
	}
}

func swapIDs(swaps []domain.SwapSession) []string {
	ids := make([]string, 0, len(swaps))
	for _, s := range swaps {
		ids = append(ids, s.ID)
	}
	return ids
}
