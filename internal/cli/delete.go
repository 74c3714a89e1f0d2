package cli

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mrlokans/bookscanner/internal/selection"
)

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>...",
		Short:   "Delete books by id",
		Example: `  bookscanner delete 3 7 12`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}

			app, err := openApp()
			if err != nil {
				return err
			}
			defer app.Close()

			n, err := runDelete(cmd.Context(), app.Records, selection.NewManager(app.Records), ids)
			if err != nil {
				return err
			}
			app.Metrics.IncRecordsDeleted(n)
			printDeleted(cmd.OutOrStdout(), n, len(ids))
			return nil
		},
	}
}

func parseIDs(args []string) ([]uint, error) {
	ids := make([]uint, 0, len(args))
	for _, arg := range args {
		id, err := strconv.ParseUint(arg, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q", arg)
		}
		ids = append(ids, uint(id))
	}
	slices.Sort(ids)
	return slices.Compact(ids), nil
}

// runDelete selects ids and deletes those that exist in one batch.
func runDelete(ctx context.Context, reader snapshotReader, manager *selection.Manager, ids []uint) (int, error) {
	for _, id := range ids {
		if !manager.Contains(id) {
			manager.Toggle(id)
		}
	}

	current, err := reader.Snapshot(ctx)
	if err != nil {
		return 0, err
	}
	return manager.DeleteSelected(ctx, current)
}

func printDeleted(out io.Writer, deleted, requested int) {
	fmt.Fprintf(out, "deleted %d books\n", deleted)
	if skipped := requested - deleted; skipped > 0 {
		fmt.Fprintf(out, "%d ids did not match a book\n", skipped)
	}
}
