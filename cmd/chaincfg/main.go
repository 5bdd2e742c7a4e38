// chaincfg loads the smart-contract toolchain configuration and publishes
// it to the services that build, deploy and verify contracts.
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
