// Package toolchain provides the smart-contract toolchain configuration.
//
// The configuration pins the compiler (0.6.12, optimizer on, 999999 runs),
// the polygon (137) and mumbai (80001) network endpoints and the
// block-explorer verification credential. Secrets come from an explicit
// environment snapshot:
//
//	environ, err := toolchain.Environ(".env")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	cfg := toolchain.Load(environ)
//
//	polygon, _ := cfg.Network(toolchain.NetworkPolygon)
//	accounts, err := polygon.Accounts() // ErrMissingSigningKey without PRIVATE_KEY
//
// Load never fails. A missing PRIVATE_KEY or POLYGONSCAN_API_KEY is kept
// as an absent Secret and only surfaces when Accounts or Credential is
// called.
package toolchain
