package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Version is set by build flags
	Version   = "dev"
	BuildTime = "unknown"
)

// newRootCmd builds the command tree
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "chaincfg",
		Short: "Smart-contract toolchain configuration provider",
		Long: `chaincfg provides the compiler settings, deployment networks and
verification credential used by the contract toolchain.

Secrets are read from PRIVATE_KEY and POLYGONSCAN_API_KEY, from the process
environment first and then from a dotenv file.

Get started:
  $ chaincfg print    # Show the redacted configuration
  $ chaincfg serve    # Publish and serve it`,
		SilenceUsage: true,
	}

	root.AddCommand(newServeCmd(), newPrintCmd(), newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "chaincfg version %s (built %s)\n", Version, BuildTime)
		},
	}
}
