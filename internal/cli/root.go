// Package cli wires the readspace commands: authentication, the book
// catalogue and library, reading progress, notes, study aids, profile,
// and live audio spaces.
package cli

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/okatev/readspace/internal/api"
	"github.com/okatev/readspace/internal/config"
	"github.com/okatev/readspace/internal/log"
	"github.com/okatev/readspace/internal/session"
)

// App carries the shared state every command needs. It is built once in
// the root command's PersistentPreRunE, after flags are parsed.
type App struct {
	Config config.Config
	Log    *zerolog.Logger
	Tokens *session.Holder
	API    *api.Client

	store *session.SQLiteStore
}

// Close releases the credential store.
func (a *App) Close() {
	if a.store != nil {
		_ = a.store.Close()
	}
}

func (a *App) init(configPath string, overrides config.Config) error {
	logger := log.New("info")
	cfg, _, err := config.Load(logger, configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg.UpdateFrom(overrides)

	a.Config = cfg
	a.Log = log.New(cfg.LogLevel)

	store, err := session.NewSQLiteStore(cfg.CredentialsPath)
	if err != nil {
		return fmt.Errorf("open credential store: %w", err)
	}
	a.store = store
	a.Tokens = session.NewHolder(store, session.NewMemoryStore())

	client, err := api.New(cfg.APIBaseURL, a.Tokens, a.Log, cfg.HTTPTimeout)
	if err != nil {
		return fmt.Errorf("build api client: %w", err)
	}
	a.API = client
	return nil
}

// NewRootCmd assembles the full command tree.
func NewRootCmd() *cobra.Command {
	app := &App{}
	var (
		configPath string
		overrides  config.Config
	)

	root := &cobra.Command{
		Use:           "readspace",
		Short:         "Command-line client for the Boookify reading platform",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.init(configPath, overrides)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			app.Close()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "path to config file")
	pf.StringVar(&overrides.APIBaseURL, "api-url", "", "override the platform API base URL")
	pf.StringVar(&overrides.TransportURL, "transport-url", "", "override the audio transport URL")
	pf.StringVar(&overrides.LogLevel, "log-level", "", "log level (trace, debug, info, warn, error)")

	root.AddCommand(
		newLoginCmd(app),
		newLogoutCmd(app),
		newRegisterCmd(app),
		newWhoamiCmd(app),
		newBooksCmd(app),
		newLibraryCmd(app),
		newProgressCmd(app),
		newNotesCmd(app),
		newStudyCmd(app),
		newProfileCmd(app),
		newStreakCmd(app),
		newSpacesCmd(app),
	)
	return root
}

// Execute runs the command tree and returns the process exit code.
func Execute() int {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	return 0
}
