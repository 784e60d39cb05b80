package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newNotesCmd(app *App) *cobra.Command {
	notes := &cobra.Command{
		Use:   "notes",
		Short: "Manage chapter notes",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List all of your notes",
		RunE: func(cmd *cobra.Command, args []string) error {
			all, err := app.API.MyNotes(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, n := range all {
				fmt.Fprintf(out, "#%d book %d chapter %d (%s)\n  %s\n",
					n.NoteID, n.BookID, n.ChapterID,
					n.CreatedAt.Format("2006-01-02"), n.Content)
			}
			if len(all) == 0 {
				fmt.Fprintln(out, "no notes yet")
			}
			return nil
		},
	}

	var bookID, chapterID int64
	add := &cobra.Command{
		Use:   "add <text>...",
		Short: "Add a note to a chapter",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := app.API.CreateNote(cmd.Context(), bookID, chapterID, strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "note #%d saved\n", n.NoteID)
			return nil
		},
	}
	add.Flags().Int64Var(&bookID, "book", 0, "book id")
	add.Flags().Int64Var(&chapterID, "chapter", 0, "chapter id")
	_ = add.MarkFlagRequired("book")
	_ = add.MarkFlagRequired("chapter")

	var eBookID, eChapterID int64
	edit := &cobra.Command{
		Use:   "edit <note-id> <text>...",
		Short: "Replace the text of a note",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := app.API.UpdateNote(cmd.Context(), id, eBookID, eChapterID, strings.Join(args[1:], " ")); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "note #%d updated\n", id)
			return nil
		},
	}
	edit.Flags().Int64Var(&eBookID, "book", 0, "book id")
	edit.Flags().Int64Var(&eChapterID, "chapter", 0, "chapter id")

	rm := &cobra.Command{
		Use:   "rm <note-id>",
		Short: "Delete a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := app.API.DeleteNote(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "note #%d deleted\n", id)
			return nil
		},
	}

	notes.AddCommand(list, add, edit, rm)
	return notes
}
