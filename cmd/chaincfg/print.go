package main

import (
	"encoding/json"
	"fmt"

	"github.com/aescanero/chaincfg/internal/config"
	"github.com/aescanero/chaincfg/internal/toolchain"
	"github.com/spf13/cobra"
)

func newPrintCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "print",
		Short: "Print the redacted toolchain configuration as JSON",
		Long: `Print the toolchain configuration with every present secret replaced
by a redaction marker. Absent secrets print as null.

Daemon settings are not read, so this works regardless of how the
service is configured.

Examples:
  chaincfg print
  chaincfg print --dotenv ./deploy/.env`,
		Args: cobra.NoArgs,
		RunE: runPrint,
	}

	cmd.Flags().String("dotenv", config.DotEnvPath(), "dotenv file merged under the environment (empty disables it)")
	return cmd
}

func runPrint(cmd *cobra.Command, args []string) error {
	dotenv, err := cmd.Flags().GetString("dotenv")
	if err != nil {
		return err
	}

	environ, err := toolchain.Environ(dotenv)
	if err != nil {
		return fmt.Errorf("failed to read environment: %w", err)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(toolchain.Load(environ).Redacted())
}
