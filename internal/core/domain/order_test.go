package domain_test

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/swapdex/swapd/internal/core/domain"
	"github.com/swapdex/swapd/pkg/hashlock"
)

func TestNewLimitOrder(t *testing.T) {
	_, hash, err := hashlock.NewSecret()
	require.NoError(t, err)

	args := newOrderArgs("alice", "bid", "1", "10")
	args.Hash = hash

	order, err := domain.NewLimitOrder(args)
	require.NoError(t, err)
	require.NotEmpty(t, order.ID)
	require.NotZero(t, order.Timestamp)
	require.Equal(t, args.UID, order.UID)
	require.Equal(t, domain.OrderSideBid, order.Side)
	require.Equal(t, domain.OrderTypeLimit, order.Type)
	require.Equal(t, args.BaseAsset, order.BaseAsset)
	require.Equal(t, args.BaseNetwork, order.BaseNetwork)
	require.True(t, args.BaseQuantity.Equal(order.BaseQuantity))
	require.Equal(t, args.QuoteAsset, order.QuoteAsset)
	require.Equal(t, args.QuoteNetwork, order.QuoteNetwork)
	require.True(t, args.QuoteQuantity.Equal(order.QuoteQuantity))
	require.Equal(t, hash, order.Hash)
	require.Equal(t, "10", order.Price().String())
	require.Equal(t, "ETH@goerli/USDC@sepolia", order.Market().String())
}

func TestNewLimitOrderLowercasesHash(t *testing.T) {
	_, hash, err := hashlock.NewSecret()
	require.NoError(t, err)

	args := newOrderArgs("alice", "bid", "1", "10")
	args.Hash = strings.ToUpper(hash)

	order, err := domain.NewLimitOrder(args)
	require.NoError(t, err)
	require.Equal(t, hash, order.Hash)
}

func TestFailingNewLimitOrder(t *testing.T) {
	tests := []struct {
		name string
		args func() domain.LimitOrderArgs
		err  error
	}{
		{
			name: "missing_uid",
			args: func() domain.LimitOrderArgs {
				return newOrderArgs("", "bid", "1", "10")
			},
			err: domain.ErrOrderMissingUid,
		},
		{
			name: "invalid_side",
			args: func() domain.LimitOrderArgs {
				return newOrderArgs("alice", "buy", "1", "10")
			},
			err: domain.ErrOrderInvalidSide,
		},
		{
			name: "invalid_type",
			args: func() domain.LimitOrderArgs {
				args := newOrderArgs("alice", "bid", "1", "10")
				args.Type = "market"
				return args
			},
			err: domain.ErrOrderInvalidType,
		},
		{
			name: "missing_asset",
			args: func() domain.LimitOrderArgs {
				args := newOrderArgs("alice", "bid", "1", "10")
				args.QuoteAsset = ""
				return args
			},
			err: domain.ErrOrderMissingAsset,
		},
		{
			name: "missing_network",
			args: func() domain.LimitOrderArgs {
				args := newOrderArgs("alice", "bid", "1", "10")
				args.BaseNetwork = ""
				return args
			},
			err: domain.ErrOrderMissingNetwork,
		},
		{
			name: "same_asset",
			args: func() domain.LimitOrderArgs {
				args := newOrderArgs("alice", "bid", "1", "10")
				args.QuoteAsset, args.QuoteNetwork = args.BaseAsset, args.BaseNetwork
				return args
			},
			err: domain.ErrOrderSameAsset,
		},
		{
			name: "zero_base_quantity",
			args: func() domain.LimitOrderArgs {
				return newOrderArgs("alice", "bid", "0", "10")
			},
			err: domain.ErrOrderInvalidQuantity,
		},
		{
			name: "negative_quote_quantity",
			args: func() domain.LimitOrderArgs {
				return newOrderArgs("alice", "ask", "1", "-10")
			},
			err: domain.ErrOrderInvalidQuantity,
		},
		{
			name: "padded_uid",
			args: func() domain.LimitOrderArgs {
				return newOrderArgs(" alice", "bid", "1", "10")
			},
			err: domain.ErrOrderPaddedField,
		},
		{
			name: "padded_asset",
			args: func() domain.LimitOrderArgs {
				args := newOrderArgs("alice", "bid", "1", "10")
				args.QuoteAsset = "USDC "
				return args
			},
			err: domain.ErrOrderPaddedField,
		},
		{
			name: "padded_hash",
			args: func() domain.LimitOrderArgs {
				_, hash, _ := hashlock.NewSecret()
				args := newOrderArgs("alice", "bid", "1", "10")
				args.Hash = hash + "\n"
				return args
			},
			err: domain.ErrOrderPaddedField,
		},
		{
			name: "invalid_hash",
			args: func() domain.LimitOrderArgs {
				args := newOrderArgs("alice", "bid", "1", "10")
				args.Hash = "deadbeef"
				return args
			},
			err: domain.ErrOrderInvalidHash,
		},
	}

	for i := range tests {
		tt := tests[i]
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			order, err := domain.NewLimitOrder(tt.args())
			require.ErrorIs(t, err, tt.err)
			require.ErrorIs(t, err, domain.ErrValidation)
			require.Nil(t, order)
		})
	}
}

func TestOrderCrosses(t *testing.T) {
	bid := newOrder(t, "alice", "bid", "1", "10")

	tests := []struct {
		name    string
		other   *domain.Order
		crosses bool
	}{
		{"ask_lower_price", newOrder(t, "bob", "ask", "1", "9"), true},
		{"ask_same_price", newOrder(t, "bob", "ask", "2", "20"), true},
		{"ask_higher_price", newOrder(t, "bob", "ask", "1", "11"), false},
		{"same_side", newOrder(t, "bob", "bid", "1", "10"), false},
	}
	for i := range tests {
		tt := tests[i]
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.crosses, bid.Crosses(*tt.other))
			require.Equal(t, tt.crosses, tt.other.Crosses(*bid))
		})
	}
}

func TestOrderCrossesBeyondPricePrecision(t *testing.T) {
	bid := newOrder(t, "alice", "bid", "1", "1.0000000000000000001")
	ask := newOrder(t, "bob", "ask", "1", "1.0000000000000000002")
	askSame := newOrder(t, "carol", "ask", "3", "3.0000000000000000003")

	// Rounded prices are equal, exact ones are not.
	require.True(t, bid.Price().Equal(ask.Price()))
	require.Equal(t, -1, bid.ComparePrice(*ask))
	require.Equal(t, 0, bid.ComparePrice(*askSame))

	require.False(t, bid.Crosses(*ask))
	require.False(t, ask.Crosses(*bid))
	require.True(t, bid.Crosses(*askSame))

	_, err := domain.NewSwapSession(*bid, *ask)
	require.ErrorIs(t, err, domain.ErrSwapInvalidMatch)
}

func newOrderArgs(uid, side, baseQty, quoteQty string) domain.LimitOrderArgs {
	return domain.LimitOrderArgs{
		UID:           uid,
		Side:          side,
		BaseAsset:     "ETH",
		BaseNetwork:   "goerli",
		BaseQuantity:  decimal.RequireFromString(baseQty),
		QuoteAsset:    "USDC",
		QuoteNetwork:  "sepolia",
		QuoteQuantity: decimal.RequireFromString(quoteQty),
	}
}

func newOrder(t *testing.T, uid, side, baseQty, quoteQty string) *domain.Order {
	order, err := domain.NewLimitOrder(newOrderArgs(uid, side, baseQty, quoteQty))
	require.NoError(t, err)
	return order
}
