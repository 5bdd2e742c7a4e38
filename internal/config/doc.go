// Package config provides configuration management for the chaincfg daemon.
//
// Configuration is loaded from environment variables using the env package.
// All configuration values have sensible defaults for development use.
// The toolchain configuration (compiler, networks, secrets) lives in the
// toolchain package; this package only covers the service around it.
//
// Example usage:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Printf("HTTP server will listen on %s\n", cfg.GetHTTPAddr())
package config
