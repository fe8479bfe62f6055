package blockchain

import "errors"

type Network string

const (
	Solana   Network = "solana"
	Polkadot Network = "polkadot"
	Polygon  Network = "polygon"
	Moonbeam Network = "moonbeam"
	Base     Network = "base"
)

var ErrUnsupportedNetwork = errors.New("unsupported network")

// Networks lists every network the mobile client can sync to, in display order.
func Networks() []Network {
	return []Network{Solana, Polkadot, Polygon, Moonbeam, Base}
}

func (n Network) IsValid() bool {
	switch n {
	case Solana, Polkadot, Polygon, Moonbeam, Base:
		return true
	}

	return false
}

// IsEVM reports whether addresses and hashes on n carry the 0x prefix.
func (n Network) IsEVM() bool {
	return n == Polygon || n == Moonbeam || n == Base
}

// Next cycles through Networks, starting over after the last one.
func (n Network) Next() Network {
	all := Networks()
	for i, candidate := range all {
		if candidate == n {
			return all[(i+1)%len(all)]
		}
	}

	return all[0]
}

type delays struct {
	create, update, delete int
}

var networkDelays = map[Network]delays{
	Solana:   {create: 1500, update: 1200, delete: 1000},
	Polkadot: {create: 1800, update: 1500, delete: 1200},
	Polygon:  {create: 2000, update: 1700, delete: 1400},
	Moonbeam: {create: 1800, update: 1500, delete: 1300},
	Base:     {create: 1600, update: 1300, delete: 1100},
}
