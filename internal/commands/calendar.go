package commands

import (
	"context"
	"errors"

	"eJournalAPI/internal/calendar"
	"eJournalAPI/internal/journal"
	"eJournalAPI/internal/runner/month"
	"eJournalAPI/internal/store"
	"eJournalAPI/services"

	"github.com/spf13/cobra"
)

func addCalendar(topLevel *cobra.Command) {
	var (
		year, monthIndex, delta int
		selected                string
	)
	m := &month.Month{}

	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Print a month grid, marking the days that have a document",
		Example: `
ejournal calendar
ejournal calendar --year 2024 --month 11
ejournal calendar --user 9Xb2 --collection moodDays --delta -1
ejournal calendar --user 9Xb2 --collection subjects --subject Math
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			cfg := calendar.Today(now())
			if cmd.Flags().Changed("year") {
				cfg.Year = year
			}
			if cmd.Flags().Changed("month") {
				cfg.Month = monthIndex
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if selected != "" {
				if _, _, err := calendar.ParseDate(selected); err != nil {
					return errors.New("--selected must be a date like 2024-12-05")
				}
			}
			m.Query = services.MonthQuery{Config: calendar.AdvanceMonth(cfg, delta), Selected: selected}
			m.Out = cmd.OutOrStdout()
			m.Now = now

			if m.User != "" {
				backend, err := openStore(ctx)
				if err != nil {
					return err
				}
				defer backend.Close()
				m.Docs = store.NewCache(backend)
			}
			return m.Do(ctx)
		},
	}

	cmd.Flags().IntVar(&year, "year", 0, "year to show, defaults to the current year")
	cmd.Flags().IntVar(&monthIndex, "month", 0, "month to show, 0 (January) to 11 (December), defaults to the current month")
	cmd.Flags().IntVar(&delta, "delta", 0, "months to step forward (or back when negative)")
	cmd.Flags().StringVar(&selected, "selected", "", "date to highlight")
	cmd.Flags().StringVar(&m.User, "user", "", "user id whose documents are marked")
	cmd.Flags().StringVar(&m.Collection, "collection", journal.Collection, "journalEntries, moodDays or subjects")
	cmd.Flags().StringVar(&m.Subject, "subject", "", "subject name, for the subjects collection")

	topLevel.AddCommand(cmd)
}
