package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mrlokans/bookscanner/internal/scan"
	"github.com/mrlokans/bookscanner/internal/scanner"
)

func newScanCmd() *cobra.Command {
	var batch bool

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Read barcodes from standard input",
		Long: `Reads one barcode per line from standard input, for example from a USB
barcode reader in keyboard mode. Lines that are not ISBNs are commands:

  save    save the displayed book, or the whole buffer in batch mode
  reset   dismiss the current result
  batch   switch to batch mode (clears the buffer)
  single  switch to single mode (clears the buffer)
  status  show the current state
  quit    exit`,
		Example: `  # Interactive scanning
  bookscanner scan

  # Collect a list of ISBNs and save them together
  printf '9784003101018\n9784101010014\nsave\n' | bookscanner scan --batch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp()
			if err != nil {
				return err
			}
			defer app.Close()

			coordinator := app.NewCoordinator()
			defer coordinator.Close()

			sc := scanner.New(app.Config.Scan.Prefixes...)
			return runScan(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), coordinator, sc, batch)
		},
	}

	cmd.Flags().BoolVarP(&batch, "batch", "b", false, "Start in batch mode")

	return cmd
}

// runScan drives the coordinator from a line source. Each detection is
// resolved before the next line is read, so scripted input is processed in
// order.
func runScan(ctx context.Context, in io.Reader, out io.Writer, c *scan.Coordinator, sc *scanner.Scanner, batch bool) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if batch {
		c.SetBatchMode(true)
	}

	commands := make(chan string)
	sc.OnOther = func(line string) {
		select {
		case commands <- line:
		case <-ctx.Done():
		}
	}
	detections := sc.Detections(ctx, in)

	fmt.Fprintf(out, "Ready (%s mode). Scan a barcode or type a command.\n", modeName(c.BatchMode()))

	for {
		select {
		case <-ctx.Done():
			return nil
		case code, ok := <-detections:
			if !ok {
				// Nothing more to read; keep whatever is buffered until saved.
				if n := len(c.Buffer()); n > 0 {
					fmt.Fprintf(out, "%d unsaved books in buffer\n", n)
				}
				return nil
			}
			outcome := c.OnScanDetected(code)
			if outcome != scan.OutcomeAccepted {
				fmt.Fprintf(out, "%s: %s\n", code, outcome)
				continue
			}
			c.Wait()
			printSnapshot(out, c.Snapshot())
		case line := <-commands:
			if quit := runCommand(ctx, out, c, line); quit {
				return nil
			}
		}
	}
}

func runCommand(ctx context.Context, out io.Writer, c *scan.Coordinator, line string) bool {
	cmd := strings.ToLower(line)
	switch cmd {
	case "save":
		if c.BatchMode() {
			n, err := c.SaveBuffered(ctx)
			if err != nil {
				fmt.Fprintf(out, "save failed: %v\n", err)
				return false
			}
			fmt.Fprintf(out, "saved %d books\n", n)
			return false
		}
		saved, err := c.SaveCurrent(ctx)
		switch {
		case err != nil:
			fmt.Fprintf(out, "save failed: %v\n", err)
		case saved:
			fmt.Fprintln(out, "saved 1 book")
		default:
			fmt.Fprintln(out, "nothing to save")
		}
	case "reset":
		c.ResetState()
		printSnapshot(out, c.Snapshot())
	case "batch", "single":
		c.SetBatchMode(cmd == "batch")
		fmt.Fprintf(out, "%s mode\n", modeName(c.BatchMode()))
	case "status":
		printSnapshot(out, c.Snapshot())
	case "quit", "exit":
		return true
	default:
		fmt.Fprintf(out, "unknown command %q\n", line)
	}
	return false
}

func modeName(batch bool) string {
	if batch {
		return "batch"
	}
	return "single"
}

func printSnapshot(out io.Writer, snap scan.Snapshot) {
	switch snap.State.Kind {
	case scan.Success:
		b := snap.State.Book
		fmt.Fprintf(out, "found: %s by %s (%s)\n", orUnknown(b.Title), orUnknown(b.Author), b.ISBN)
	case scan.Error:
		fmt.Fprintf(out, "not found (%s)\n", snap.State.Reason)
	default:
		if snap.BatchMode {
			fmt.Fprintf(out, "%s, %d in buffer\n", snap.State.Kind, len(snap.Buffer))
		} else {
			fmt.Fprintln(out, snap.State.Kind)
		}
	}
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
