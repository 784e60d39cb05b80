package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/okatev/readspace/internal/api"
)

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a numeric id", arg)
	}
	return id, nil
}

func printBookTable(w io.Writer, books []api.Book) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tAUTHOR\tCATEGORY\tRATING")
	for _, b := range books {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%.1f\n", b.BookID, b.Title, b.Author, b.Category, b.Rating)
	}
	tw.Flush()
}

func newBooksCmd(app *App) *cobra.Command {
	books := &cobra.Command{
		Use:   "books",
		Short: "Browse the book catalogue",
	}

	var page, size int
	list := &cobra.Command{
		Use:   "list",
		Short: "List the catalogue",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := app.API.ListBooks(cmd.Context(), page, size)
			if err != nil {
				return err
			}
			printBookTable(cmd.OutOrStdout(), result.Books)
			fmt.Fprintf(cmd.OutOrStdout(), "page %d of %d (%d books)\n", page, result.TotalPages, result.TotalCount)
			return nil
		},
	}
	list.Flags().IntVar(&page, "page", 1, "page number")
	list.Flags().IntVar(&size, "size", 20, "page size")

	show := &cobra.Command{
		Use:   "show <book-id>",
		Short: "Show one book with its chapters",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			b, err := app.API.GetBook(cmd.Context(), id)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s — %s\n", b.Title, b.Author)
			if b.Description != "" {
				fmt.Fprintln(out, b.Description)
			}
			fmt.Fprintf(out, "category %s, language %s, difficulty %s, rating %.1f, %d views\n",
				b.Category, b.Language, b.Difficulty, b.Rating, b.Views)
			for _, ch := range b.Chapters {
				fmt.Fprintf(out, "  %3d. %s (chapter id %d)\n", ch.Number, ch.Title, ch.ChapterID)
			}
			return nil
		},
	}

	var topN int
	top := &cobra.Command{
		Use:   "top",
		Short: "Show the top-ranked recommendations",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := app.API.TopRanked(cmd.Context(), topN)
			if err != nil {
				return err
			}
			printBookTable(cmd.OutOrStdout(), result)
			return nil
		},
	}
	top.Flags().IntVarP(&topN, "top", "n", 8, "number of books")

	var simN int
	similar := &cobra.Command{
		Use:   "similar <book-id>",
		Short: "Show books similar to the given one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			result, err := app.API.ContentRecommendations(cmd.Context(), id, simN)
			if err != nil {
				return err
			}
			printBookTable(cmd.OutOrStdout(), result)
			return nil
		},
	}
	similar.Flags().IntVarP(&simN, "top", "n", 8, "number of books")

	var filter api.BookFilter
	search := &cobra.Command{
		Use:   "search",
		Short: "Filter the catalogue by attributes",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := app.API.FilterRecommendations(cmd.Context(), filter)
			if err != nil {
				return err
			}
			printBookTable(cmd.OutOrStdout(), result.Books)
			fmt.Fprintf(cmd.OutOrStdout(), "%d matching books\n", result.TotalCount)
			return nil
		},
	}
	sf := search.Flags()
	sf.IntVar(&filter.PageNumber, "page", 1, "page number")
	sf.IntVar(&filter.PageSize, "size", 20, "page size")
	sf.StringVar(&filter.Category, "category", "", "category")
	sf.StringVar(&filter.Author, "author", "", "author")
	sf.StringVar(&filter.Language, "language", "", "language")
	sf.StringVar(&filter.Difficulty, "difficulty", "", "difficulty")
	sf.Int64Var(&filter.MinViews, "min-views", 0, "minimum view count")
	sf.Float64Var(&filter.MinRating, "min-rating", 0, "minimum rating")
	sf.IntVar(&filter.RecentYears, "recent-years", 0, "published within the last N years")

	var uploadTitle string
	upload := &cobra.Command{
		Use:   "upload <pdf-file>",
		Short: "Upload a PDF for processing into a book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			title := uploadTitle
			if title == "" {
				title = filepath.Base(args[0])
			}
			b, err := app.API.UploadBook(cmd.Context(), title, filepath.Base(args[0]), f)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "uploaded %q as book %d\n", b.Title, b.BookID)
			return nil
		},
	}
	upload.Flags().StringVar(&uploadTitle, "title", "", "book title (defaults to the file name)")

	books.AddCommand(list, show, top, similar, search, upload)
	return books
}
