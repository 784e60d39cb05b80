package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/okatev/readspace/internal/api"
	"github.com/okatev/readspace/internal/space"
	"github.com/okatev/readspace/internal/transport"
	"github.com/okatev/readspace/internal/transport/livekit"
)

func newSpacesCmd(app *App) *cobra.Command {
	spaces := &cobra.Command{
		Use:   "spaces",
		Short: "Live audio spaces",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List active spaces",
		RunE: func(cmd *cobra.Command, args []string) error {
			all, err := app.API.ListSpaces(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTITLE\tHOST\tPARTICIPANTS")
			for _, s := range all {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%d\n", s.ID, s.Title, s.HostUserName, s.ParticipantCount)
			}
			return tw.Flush()
		},
	}

	create := &cobra.Command{
		Use:   "create <title>...",
		Short: "Create a new space",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := app.API.CreateSpace(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "space %d created\n", id)
			return nil
		},
	}

	show := &cobra.Command{
		Use:   "show <space-id>",
		Short: "Show the roster of a space",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			details, err := app.API.SpaceDetails(cmd.Context(), id)
			if err != nil {
				return err
			}
			printRoster(cmd.OutOrStdout(), space.BuildRoster(details), nil)
			return nil
		},
	}

	join := &cobra.Command{
		Use:   "join <space-id>",
		Short: "Join a space as a muted listener",
		Long: "Join a space's audio channel. While connected, type m to toggle the\n" +
			"microphone and q (or Ctrl-C) to leave. Joiners always start muted.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return runJoin(cmd, app, id)
		},
	}

	spaces.AddCommand(list, create, show, join)
	return spaces
}

func printRoster(w io.Writer, r space.Roster, speaking map[string]bool) {
	mark := func(u api.SpaceUser) string {
		if speaking[u.RTCUID] {
			return " *"
		}
		return ""
	}
	fmt.Fprintf(w, "%s (%d participants)\n", r.Title, r.Total)
	if r.Host != nil {
		fmt.Fprintf(w, "  host:     %s%s\n", r.Host.UserName, mark(*r.Host))
	}
	for _, s := range r.Speakers {
		fmt.Fprintf(w, "  speaker:  %s%s\n", s.UserName, mark(s))
	}
	for _, l := range r.Listeners {
		fmt.Fprintf(w, "  listener: %s\n", l.UserName)
	}
}

func runJoin(cmd *cobra.Command, app *App, spaceID int64) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	// Keep the interface nil when no transport is configured; a typed nil
	// would defeat the controller's availability check.
	var engine transport.Engine
	if lk := livekit.New(app.Config.TransportURL, app.Log); lk != nil {
		engine = lk
	}
	ctrl := space.NewController(engine, app.API, app.Tokens, app.Log, app.Config.PollInterval)
	ctrl.OnRoster = func(r space.Roster, speaking map[string]bool) {
		printRoster(out, r, speaking)
	}

	if err := ctrl.Join(ctx, spaceID); err != nil {
		return err
	}
	defer ctrl.Leave(context.Background())
	fmt.Fprintln(out, "connected (muted); m toggles the mic, q leaves")

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(cmd.InOrStdin())
		for scanner.Scan() {
			select {
			case lines <- strings.TrimSpace(scanner.Text()):
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			fmt.Fprintln(out, "leaving")
			return nil
		case line, ok := <-lines:
			if !ok || line == "q" {
				fmt.Fprintln(out, "leaving")
				return nil
			}
			if line == "m" {
				ctrl.ToggleMute()
				if ctrl.Muted() {
					fmt.Fprintln(out, "muted")
				} else {
					fmt.Fprintln(out, "unmuted")
				}
			}
		}
	}
}
