package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/okatev/readspace/internal/api"
)

func newProfileCmd(app *App) *cobra.Command {
	profile := &cobra.Command{
		Use:   "profile",
		Short: "View and edit your profile",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Show your profile and current reading",
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := app.API.Me(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			p := page.UserProfile
			fmt.Fprintf(out, "username:       %s\n", p.Username)
			if p.Age > 0 {
				fmt.Fprintf(out, "age:            %d\n", p.Age)
			}
			if p.Specialization != "" {
				fmt.Fprintf(out, "specialization: %s\n", p.Specialization)
			}
			if p.Level != "" {
				fmt.Fprintf(out, "level:          %s\n", p.Level)
			}
			if p.Interest != "" {
				fmt.Fprintf(out, "interest:       %s\n", p.Interest)
			}
			if len(page.CurrentlyReadingBooks) > 0 {
				fmt.Fprintln(out, "currently reading:")
				for _, b := range page.CurrentlyReadingBooks {
					fmt.Fprintf(out, "  %d: %s\n", b.BookID, b.Title)
				}
			}
			return nil
		},
	}

	var edited api.Profile
	update := &cobra.Command{
		Use:   "update",
		Short: "Update profile fields",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Fetch first so unspecified flags keep their current values.
			page, err := app.API.Me(cmd.Context())
			if err != nil {
				return err
			}
			next := page.UserProfile
			if cmd.Flags().Changed("username") {
				next.Username = edited.Username
			}
			if cmd.Flags().Changed("age") {
				next.Age = edited.Age
			}
			if cmd.Flags().Changed("specialization") {
				next.Specialization = edited.Specialization
			}
			if cmd.Flags().Changed("level") {
				next.Level = edited.Level
			}
			if cmd.Flags().Changed("interest") {
				next.Interest = edited.Interest
			}
			if err := app.API.UpdateProfile(cmd.Context(), next); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "profile updated")
			return nil
		},
	}
	uf := update.Flags()
	uf.StringVar(&edited.Username, "username", "", "display name")
	uf.IntVar(&edited.Age, "age", 0, "age")
	uf.StringVar(&edited.Specialization, "specialization", "", "field of study or work")
	uf.StringVar(&edited.Level, "level", "", "reading level")
	uf.StringVar(&edited.Interest, "interest", "", "primary interest")

	setPicture := &cobra.Command{
		Use:   "set-picture <image-file>",
		Short: "Upload a profile picture",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			url, err := app.API.UploadPicture(cmd.Context(), args[0], f)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "picture uploaded: %s\n", url)
			return nil
		},
	}

	profile.AddCommand(show, update, setPicture)
	return profile
}

func newStreakCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "streak",
		Short: "Show your reading streak",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.API.MyStreak(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "current streak: %d days (longest: %d)\n",
				s.CurrentStreak, s.LongestStreak)
			return nil
		},
	}
}
