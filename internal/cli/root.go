// Package cli defines the bookscanner command tree.
package cli

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/mrlokans/bookscanner/internal/config"
	"github.com/mrlokans/bookscanner/internal/entrypoint"
)

func NewRootCmd(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bookscanner",
		Short: "Catalog books by scanning their barcodes",
		Long: `BookScanner looks up scanned ISBN barcodes in an online bibliographic
service and keeps a local catalog of the books you confirm.

Scan one book at a time, or switch to batch mode to collect many scans and
save them together.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
		},
		SilenceUsage: true,
	}

	cmd.AddCommand(newServeCmd(version))
	cmd.AddCommand(newScanCmd())
	cmd.AddCommand(newLookupCmd())
	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newDeleteCmd())

	return cmd
}

// openApp reads configuration from the environment and wires the core
// components.
func openApp() (*entrypoint.App, error) {
	return entrypoint.NewApp(config.NewConfig())
}
