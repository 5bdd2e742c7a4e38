package toolchain

import (
	"sort"

	"github.com/caarlos0/env/v10"
)

// Compiler settings consumed by the external build step.
const (
	CompilerVersion  = "0.6.12"
	OptimizerEnabled = true
	OptimizerRuns    = 999999
)

// Network names in the registry
const (
	NetworkPolygon = "polygon"
	NetworkMumbai  = "mumbai"
)

// ToolchainConfig is the complete toolchain configuration.
// It is built once by Load and never mutated afterwards; consumers that
// need their own copy call Clone.
type ToolchainConfig struct {
	Compiler     CompilerSettings           `json:"compiler"`
	Verification VerificationSettings       `json:"verification"`
	Networks     map[string]NetworkEndpoint `json:"networks" validate:"required,dive"`
}

// CompilerSettings selects the compiler and its optimizer
type CompilerSettings struct {
	Version   string            `json:"version" validate:"required,semver"`
	Optimizer OptimizerSettings `json:"optimizer"`
}

// OptimizerSettings holds the optimizer switch and run count
type OptimizerSettings struct {
	Enabled bool `json:"enabled"`
	Runs    int  `json:"runs" validate:"gt=0"`
}

// VerificationSettings holds the block-explorer verification credential
type VerificationSettings struct {
	APIKey Secret `json:"apiKey"`
}

// NetworkEndpoint is a named deployment target
type NetworkEndpoint struct {
	URL        string `json:"url" validate:"required,url,startswith=https://"`
	ChainID    uint64 `json:"chainId" validate:"gt=0"`
	SigningKey Secret `json:"signingKey"`
}

// secrets are the environment variables the configuration reads
type secrets struct {
	PrivateKey        Secret `env:"PRIVATE_KEY"`
	PolygonscanAPIKey Secret `env:"POLYGONSCAN_API_KEY"`
}

// Load builds the configuration from an explicit environment snapshot.
// Missing secrets are kept as absent values; Load never fails.
func Load(environ map[string]string) *ToolchainConfig {
	if environ == nil {
		// a nil Environment makes env fall back to the process environment
		environ = map[string]string{}
	}

	var s secrets
	// Secret.UnmarshalText cannot fail, so neither can parsing. On any
	// future parse error the secrets stay absent.
	if err := env.ParseWithOptions(&s, env.Options{Environment: environ}); err != nil {
		s = secrets{}
	}

	networks := make(map[string]NetworkEndpoint, len(registry))
	for _, def := range registry {
		networks[def.name] = NetworkEndpoint{
			URL:        def.url,
			ChainID:    def.chainID,
			SigningKey: s.PrivateKey,
		}
	}

	return &ToolchainConfig{
		Compiler: CompilerSettings{
			Version: CompilerVersion,
			Optimizer: OptimizerSettings{
				Enabled: OptimizerEnabled,
				Runs:    OptimizerRuns,
			},
		},
		Verification: VerificationSettings{
			APIKey: s.PolygonscanAPIKey,
		},
		Networks: networks,
	}
}

// NetworkNames returns the configured network names in sorted order
func (c *ToolchainConfig) NetworkNames() []string {
	names := make([]string, 0, len(c.Networks))
	for name := range c.Networks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns a deep copy
func (c *ToolchainConfig) Clone() *ToolchainConfig {
	out := *c
	out.Networks = make(map[string]NetworkEndpoint, len(c.Networks))
	for name, n := range c.Networks {
		out.Networks[name] = n
	}
	return &out
}

// Redacted returns a deep copy with every present secret masked
func (c *ToolchainConfig) Redacted() *ToolchainConfig {
	out := c.Clone()
	out.Verification.APIKey = out.Verification.APIKey.Redacted()
	for name, n := range out.Networks {
		n.SigningKey = n.SigningKey.Redacted()
		out.Networks[name] = n
	}
	return out
}
