package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mrlokans/bookscanner/internal/entities"
)

type snapshotReader interface {
	Snapshot(ctx context.Context) ([]entities.Book, error)
}

func newListCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalogued books, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp()
			if err != nil {
				return err
			}
			defer app.Close()

			return runList(cmd.Context(), cmd.OutOrStdout(), app.Records, format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format: table or yaml")

	return cmd
}

func runList(ctx context.Context, out io.Writer, reader snapshotReader, format string) error {
	if format != "table" && format != "yaml" {
		return fmt.Errorf("unknown format %q (want table or yaml)", format)
	}

	books, err := reader.Snapshot(ctx)
	if err != nil {
		return err
	}

	if format == "yaml" {
		if books == nil {
			books = []entities.Book{}
		}
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(books); err != nil {
			return fmt.Errorf("encode books: %w", err)
		}
		return enc.Close()
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tISBN\tTITLE\tAUTHOR")
	for _, b := range books {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", b.ID, b.ISBN, b.Title, b.Author)
	}
	return w.Flush()
}
