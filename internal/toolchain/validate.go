package toolchain

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrUnknownNetwork is returned when a network name is not in the registry
	ErrUnknownNetwork = errors.New("unknown network")

	// ErrMissingSigningKey is returned when a signing key is requested but PRIVATE_KEY was not set
	ErrMissingSigningKey = errors.New("signing key not configured")

	// ErrMissingAPIKey is returned when the verification credential is requested but POLYGONSCAN_API_KEY was not set
	ErrMissingAPIKey = errors.New("verification API key not configured")

	// ErrChainIDMismatch is returned when a network carries a chain ID other than its canonical one
	ErrChainIDMismatch = errors.New("chain ID does not match network")
)

var validate = validator.New()

// Network looks up a network entry by name.
func (c *ToolchainConfig) Network(name string) (NetworkEndpoint, error) {
	n, ok := c.Networks[name]
	if !ok {
		return NetworkEndpoint{}, fmt.Errorf("%w: %s", ErrUnknownNetwork, name)
	}
	return n, nil
}

// Accounts returns the signing keys for the network. This is the point
// where a missing PRIVATE_KEY becomes an error.
func (n NetworkEndpoint) Accounts() ([]string, error) {
	key, ok := n.SigningKey.Value()
	if !ok {
		return nil, ErrMissingSigningKey
	}
	return []string{key}, nil
}

// Credential returns the verification API key
func (v VerificationSettings) Credential() (string, error) {
	key, ok := v.APIKey.Value()
	if !ok {
		return "", ErrMissingAPIKey
	}
	return key, nil
}

// Validate checks the shape of the configuration and that every known
// network carries its canonical chain ID. Load never calls it; consumers
// call it before they act on the configuration.
func (c *ToolchainConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	for _, name := range c.NetworkNames() {
		want, known := CanonicalChainID(name)
		if !known {
			continue
		}
		if got := c.Networks[name].ChainID; got != want {
			return fmt.Errorf("%w: %s has %d, want %d", ErrChainIDMismatch, name, got, want)
		}
	}

	return nil
}
