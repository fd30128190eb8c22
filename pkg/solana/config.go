package solana

import "strings"

type Environment string

const (
	EnvironmentLocal Environment = "http://localhost:8899"
	EnvironmentDev   Environment = "https://api.devnet.solana.com"
	EnvironmentTest  Environment = "https://api.testnet.solana.com"
	EnvironmentProd  Environment = "https://api.mainnet-beta.solana.com"
)

// ResolveEndpoint maps a cluster moniker (localnet, devnet, testnet,
// mainnet-beta) to its public RPC endpoint. Anything else is returned as is.
func ResolveEndpoint(endpoint string) string {
	switch strings.ToLower(strings.TrimSpace(endpoint)) {
	case "localnet", "local":
		return string(EnvironmentLocal)
	case "devnet":
		return string(EnvironmentDev)
	case "testnet":
		return string(EnvironmentTest)
	case "mainnet-beta", "mainnet":
		return string(EnvironmentProd)
	}
	return endpoint
}
