package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/okatev/readspace/internal/api"
)

func newProgressCmd(app *App) *cobra.Command {
	progress := &cobra.Command{
		Use:   "progress",
		Short: "Track reading progress",
	}

	var entry api.ProgressEntry
	set := &cobra.Command{
		Use:   "set <book-id>",
		Short: "Record the last read page for a book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			entry.BookID = id
			if err := app.API.SaveProgress(cmd.Context(), entry); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "book %d: page %d (%d%%)\n",
				id, entry.LastReadPageNumber, entry.CompletionPercentage)
			return nil
		},
	}
	set.Flags().IntVar(&entry.LastReadPageNumber, "page", 0, "last read page number")
	set.Flags().IntVar(&entry.CompletionPercentage, "percent", 0, "completion percentage")
	_ = set.MarkFlagRequired("page")

	list := &cobra.Command{
		Use:   "list",
		Short: "Show progress across all books",
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := app.API.MyProgress(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "BOOK\tPAGE\tDONE")
			for _, e := range entries {
				fmt.Fprintf(tw, "%d\t%d\t%d%%\n", e.BookID, e.LastReadPageNumber, e.CompletionPercentage)
			}
			return tw.Flush()
		},
	}

	progress.AddCommand(set, list)
	return progress
}
