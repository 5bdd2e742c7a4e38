package toolchain

type networkDef struct {
	name    string
	url     string
	chainID uint64
}

var registry = []networkDef{
	{name: NetworkPolygon, url: "https://polygon-rpc.com/", chainID: 137},
	{name: NetworkMumbai, url: "https://rpc-mumbai.matic.today", chainID: 80001},
}

// CanonicalChainID returns the chain ID a network name must carry
func CanonicalChainID(name string) (uint64, bool) {
	for _, def := range registry {
		if def.name == name {
			return def.chainID, true
		}
	}
	return 0, false
}
