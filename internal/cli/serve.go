package cli

import (
	"github.com/spf13/cobra"

	"github.com/mrlokans/bookscanner/internal/config"
	"github.com/mrlokans/bookscanner/internal/entrypoint"
)

func newServeCmd(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Starts the HTTP API. Each client opens a scan session and posts the
barcodes it decodes; confirmed books are stored in the catalog database.

Configuration is read from the environment (and a .env file if present).`,
		Example: `  # Start on the default port 8188
  bookscanner serve

  # Use OpenBD for lookups
  LOOKUP_PROVIDER=openbd bookscanner serve`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return entrypoint.Run(cmd.Context(), config.NewConfig(), version)
		},
	}
}
