package ports

// Asset identifies an asset on a specific network.
type Asset interface {
	GetAsset() string
	GetNetwork() string
}

// AssetRegistry is the source of truth for the asset/network pairs that can
// be traded.
type AssetRegistry interface {
	IsSupported(asset, network string) bool
	SupportedAssets() []Asset
}
