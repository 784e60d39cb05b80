package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLibraryCmd(app *App) *cobra.Command {
	library := &cobra.Command{
		Use:   "library",
		Short: "Manage your personal library",
	}

	var page, size int
	list := &cobra.Command{
		Use:   "list",
		Short: "List the books in your library",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := app.API.LibraryBooks(cmd.Context(), page, size)
			if err != nil {
				return err
			}
			printBookTable(cmd.OutOrStdout(), result.Books)
			return nil
		},
	}
	list.Flags().IntVar(&page, "page", 1, "page number")
	list.Flags().IntVar(&size, "size", 20, "page size")

	add := &cobra.Command{
		Use:   "add <book-id>",
		Short: "Add a book to your library",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := app.API.AddToLibrary(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "book %d added\n", id)
			return nil
		},
	}

	remove := &cobra.Command{
		Use:   "remove <book-id>",
		Short: "Remove a book from your library",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := app.API.RemoveFromLibrary(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "book %d removed\n", id)
			return nil
		},
	}

	status := &cobra.Command{
		Use:   "status <book-id>",
		Short: "Check whether a book is in your library",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			st, err := app.API.LibraryStatus(cmd.Context(), id)
			if err != nil {
				return err
			}
			if st.InLibrary {
				fmt.Fprintf(cmd.OutOrStdout(), "book %d is in your library\n", id)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "book %d is not in your library\n", id)
			}
			return nil
		},
	}

	library.AddCommand(list, add, remove, status)
	return library
}
