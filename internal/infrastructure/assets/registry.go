package assets

import (
	"fmt"
	"sort"
	"strings"

	"github.com/swapdex/swapd/internal/core/ports"
)

// Asset is an asset/network pair.
type Asset struct {
	Asset   string
	Network string
}

func (a Asset) GetAsset() string   { return a.Asset }
func (a Asset) GetNetwork() string { return a.Network }

// String returns the pair in the form ASSET:network.
func (a Asset) String() string {
	return fmt.Sprintf("%s:%s", a.Asset, a.Network)
}

type registry struct {
	assets map[Asset]struct{}
}

// NewStaticRegistry returns an asset registry made of the given list of
// pairs, each in the form ASSET:network.
func NewStaticRegistry(pairs []string) (ports.AssetRegistry, error) {
	if len(pairs) <= 0 {
		return nil, fmt.Errorf("missing supported assets")
	}

	assets := make(map[Asset]struct{}, len(pairs))
	for _, pair := range pairs {
		asset, err := ParseAsset(pair)
		if err != nil {
			return nil, err
		}
		assets[asset] = struct{}{}
	}
	return &registry{assets}, nil
}

// ParseAsset parses a pair in the form ASSET:network.
func ParseAsset(pair string) (Asset, error) {
	asset, network, ok := strings.Cut(strings.TrimSpace(pair), ":")
	if !ok || asset == "" || network == "" {
		return Asset{}, fmt.Errorf(
			"invalid asset %q, must be in the form ASSET:network", pair,
		)
	}
	return Asset{asset, network}, nil
}

func (r *registry) IsSupported(asset, network string) bool {
	_, ok := r.assets[Asset{asset, network}]
	return ok
}

func (r *registry) SupportedAssets() []ports.Asset {
	list := make([]Asset, 0, len(r.assets))
	for a := range r.assets {
		list = append(list, a)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].String() < list[j].String()
	})

	assets := make([]ports.Asset, 0, len(list))
	for _, a := range list {
		assets = append(assets, a)
	}
	return assets
}
