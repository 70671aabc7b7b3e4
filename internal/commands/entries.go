package commands

import (
	"context"

	"eJournalAPI/internal/journal"
	"eJournalAPI/internal/runner/entries"

	"github.com/spf13/cobra"
)

func addEntries(topLevel *cobra.Command) {
	e := &entries.Entries{}

	cmd := &cobra.Command{
		Use:   "entries",
		Short: "List the stored documents of a user's collection",
		Example: `
ejournal entries --user 9Xb2
ejournal entries --user 9Xb2 --collection subjects
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			backend, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer backend.Close()

			e.Docs = backend
			e.Out = cmd.OutOrStdout()
			return e.Do(ctx)
		},
	}

	cmd.Flags().StringVar(&e.User, "user", "", "user id")
	cmd.Flags().StringVar(&e.Collection, "collection", journal.Collection, "journalEntries, moodDays or subjects")
	_ = cmd.MarkFlagRequired("user")

	topLevel.AddCommand(cmd)
}
