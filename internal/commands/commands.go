// Package commands is the ejournal command line: it reads the same config
// as the server and prints calendars and stored documents.
package commands

import (
	"context"
	"time"

	"eJournalAPI/internal/backends"
	"eJournalAPI/internal/config"
	"eJournalAPI/internal/store"

	firebase "firebase.google.com/go/v4"
	"github.com/spf13/cobra"
)

// openStore is swapped in tests.
var openStore = func(ctx context.Context) (store.Store, error) {
	cfg, err := config.LoadStore()
	if err != nil {
		return nil, err
	}

	var app *firebase.App
	if cfg.StoreBackend == config.StoreFirestore {
		if app, err = backends.Firebase(ctx, cfg); err != nil {
			return nil, err
		}
	}
	return backends.OpenStore(ctx, cfg, app)
}

var now = time.Now

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "ejournal",
		Short:        "Inspect journal, mood and study documents from the command line.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	AddCommands(cmd)
	return cmd
}

func AddCommands(topLevel *cobra.Command) {
	addCalendar(topLevel)
	addEntries(topLevel)
}
