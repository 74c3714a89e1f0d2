package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mrlokans/bookscanner/internal/metadata"
	"github.com/mrlokans/bookscanner/internal/scan"
)

func newLookupCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "lookup <isbn>",
		Short:   "Look up one ISBN without saving it",
		Example: `  bookscanner lookup 9784003101018`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp()
			if err != nil {
				return err
			}
			defer app.Close()

			return runLookup(cmd.Context(), cmd.OutOrStdout(), app.Gateway, args[0])
		},
	}
}

func runLookup(ctx context.Context, out io.Writer, resolver scan.Resolver, isbn string) error {
	summary, err := resolver.Resolve(ctx, isbn)
	if errors.Is(err, metadata.ErrNotFound) {
		return fmt.Errorf("no book found for %s", isbn)
	}
	if err != nil {
		return err
	}

	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(summary); err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	return enc.Close()
}
