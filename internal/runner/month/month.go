package month

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"eJournalAPI/internal/journal"
	"eJournalAPI/internal/mood"
	"eJournalAPI/internal/study"
	caltypes "eJournalAPI/internal/types/calendar"
	"eJournalAPI/services"

	"github.com/fatih/color"
)

// Month prints one month of a user's collection, or the bare grid when no
// user is given.
type Month struct {
	Query      services.MonthQuery
	User       string
	Collection string
	Subject    string

	Docs services.DocumentCache
	Out  io.Writer
	Now  func() time.Time
}

func (m *Month) Do(ctx context.Context) error {
	view, err := m.view(ctx)
	if err != nil {
		return err
	}
	Print(m.Out, view)
	return nil
}

func (m *Month) view(ctx context.Context) (*caltypes.CalendarResponse, error) {
	if m.User == "" {
		return services.GridOnly(m.Query, m.Now()), nil
	}
	if m.Docs == nil {
		return nil, errors.New("can not show month, no store")
	}

	switch m.Collection {
	case journal.Collection:
		return services.NewJournalService(m.Docs).MonthView(ctx, m.User, m.Query)
	case mood.Collection:
		return services.NewMoodService(m.Docs).MonthView(ctx, m.User, m.Query)
	case study.Collection:
		if m.Subject == "" {
			return nil, errors.New("--subject is required for the subjects collection")
		}
		return services.NewStudyService(m.Docs).MonthView(ctx, m.User, m.Subject, m.Query)
	}
	return nil, fmt.Errorf("unknown collection %q", m.Collection)
}

const cellWidth = 4

// Print renders the month as a 7 column table. Today is bold and underlined,
// days with a document are green and the selected day is reversed.
func Print(w io.Writer, view *caltypes.CalendarResponse) {
	title := color.New(color.Bold, color.Underline)
	faint := color.New(color.Faint)
	today := color.New(color.Bold, color.Underline)
	marked := color.New(color.FgGreen)
	selected := color.New(color.ReverseVideo)

	_, _ = title.Fprintln(w, view.Title)
	for _, name := range view.Weekdays {
		_, _ = faint.Fprintf(w, "%*s", cellWidth, name)
	}
	_, _ = fmt.Fprintln(w)

	for _, row := range view.Rows {
		for _, cell := range row {
			if cell.Day == nil {
				_, _ = fmt.Fprintf(w, "%*s", cellWidth, "")
				continue
			}
			text := fmt.Sprintf("%*d", cellWidth, *cell.Day)
			switch {
			case cell.IsSelected:
				text = selected.Sprint(text)
			case cell.IsToday:
				text = today.Sprint(text)
			case cell.HasEntry:
				text = marked.Sprint(text)
			}
			_, _ = fmt.Fprint(w, text)
		}
		_, _ = fmt.Fprintln(w)
	}

	if view.Message != "" {
		_, _ = fmt.Fprintln(w)
		_, _ = faint.Fprintln(w, view.Message)
	}
}
