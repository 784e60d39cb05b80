package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStudyCmd(app *App) *cobra.Command {
	study := &cobra.Command{
		Use:   "study",
		Short: "Chapter summaries and quizzes",
	}

	summary := &cobra.Command{
		Use:   "summary <chapter-id>",
		Short: "Show the generated summary for a chapter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			s, err := app.API.ChapterSummary(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), s.Content)
			return nil
		},
	}

	var reveal bool
	quiz := &cobra.Command{
		Use:   "quiz <chapter-id>",
		Short: "Show the generated quiz for a chapter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			q, err := app.API.ChapterQuiz(cmd.Context(), id)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for i, question := range q.Questions {
				fmt.Fprintf(out, "%d. %s\n", i+1, question.Question)
				for j, opt := range question.Options {
					fmt.Fprintf(out, "   %c) %s\n", 'a'+j, opt)
				}
				if reveal {
					fmt.Fprintf(out, "   answer: %s\n", question.CorrectAnswer)
				}
			}
			return nil
		},
	}
	quiz.Flags().BoolVar(&reveal, "answers", false, "print the correct answers")

	study.AddCommand(summary, quiz)
	return study
}
