package domain

import "fmt"

// AssetBalance holds the funds of a single asset. Total is always the sum of
// free and locked.
type AssetBalance struct {
	Free   float64
	Locked float64
	Total  float64
}

// AccountBalance maps assets to their balances. It is an immutable snapshot
// built from a raw API payload; lookups of unknown assets return a zero
// balance.
type AccountBalance struct {
	balances map[string]AssetBalance
}

// RawAssetBalance is one entry of the venue's balance payload.
type RawAssetBalance struct {
	Asset  string `json:"asset"`
	Free   string `json:"free"`
	Locked string `json:"locked"`
}

// NewAccountBalance parses the venue's raw balance entries into an
// AccountBalance snapshot.
func NewAccountBalance(raw []RawAssetBalance) (AccountBalance, error) {
	balances := make(map[string]AssetBalance, len(raw))
	for _, entry := range raw {
		free, err := ParseDecimal(entry.Free)
		if err != nil {
			return AccountBalance{}, fmt.Errorf("balance %s: free: %w", entry.Asset, err)
		}
		locked, err := ParseDecimal(entry.Locked)
		if err != nil {
			return AccountBalance{}, fmt.Errorf("balance %s: locked: %w", entry.Asset, err)
		}
		balances[entry.Asset] = AssetBalance{
			Free:   free,
			Locked: locked,
			Total:  free + locked,
		}
	}
	return AccountBalance{balances: balances}, nil
}

// Balance returns the balance of the given asset, or a zero balance when the
// asset is not present in the snapshot.
func (b AccountBalance) Balance(asset string) AssetBalance {
	return b.balances[asset]
}

// Assets returns a copy of the full asset->balance mapping, mainly for
// logging.
func (b AccountBalance) Assets() map[string]AssetBalance {
	out := make(map[string]AssetBalance, len(b.balances))
	for asset, bal := range b.balances {
		out[asset] = bal
	}
	return out
}
