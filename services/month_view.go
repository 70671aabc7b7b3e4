package services

import (
	"time"

	"eJournalAPI/internal/calendar"
	caltypes "eJournalAPI/internal/types/calendar"
)

// MonthQuery is what a calendar page asks for: the displayed month and an
// optional selected date.
type MonthQuery struct {
	Config   calendar.Config
	Selected string
}

type monthMessages struct {
	empty   string
	summary func(total int) string
}

// buildMonthView lays out one month. marked holds the ISO keys that have a
// document and total is the number of documents across all months.
func buildMonthView(q MonthQuery, marked map[string]bool, total int, today time.Time, msgs monthMessages) *caltypes.CalendarResponse {
	grid := calendar.ComputeGrid(q.Config)
	cfg := grid.Config

	selected := ""
	if q.Selected != "" {
		if key, err := calendar.CanonicalKey(q.Selected); err == nil {
			selected = key
		}
	}

	resp := &caltypes.CalendarResponse{
		Year:         cfg.Year,
		Month:        cfg.Month,
		Title:        cfg.String(),
		Weekdays:     calendar.WeekdayNames[:],
		Rows:         make([][]*caltypes.CalendarDay, 0, grid.RowCount()),
		Prev:         monthRef(calendar.AdvanceMonth(cfg, -1)),
		Next:         monthRef(calendar.AdvanceMonth(cfg, 1)),
		Selected:     selected,
		TotalEntries: total,
	}

	for row := range grid.Rows() {
		cells := make([]*caltypes.CalendarDay, 0, len(row))
		for _, cell := range row {
			c := &caltypes.CalendarDay{Row: cell.Row, Column: cell.Column}
			if !cell.Blank() {
				day := cell.Day
				key := calendar.DateKey(cfg, day)
				c.Day = &day
				c.Date = key
				c.HasEntry = marked[key]
				c.IsSelected = key == selected
				c.IsToday = calendar.IsToday(cfg, day, today)
			}
			cells = append(cells, c)
		}
		resp.Rows = append(resp.Rows, cells)
	}

	if total == 0 {
		resp.Message = msgs.empty
	} else {
		resp.Message = msgs.summary(total)
	}
	return resp
}

func monthRef(c calendar.Config) caltypes.MonthRef {
	return caltypes.MonthRef{Year: c.Year, Month: c.Month}
}

// GridOnly is the month layout without any stored data, for the public
// calendar endpoint.
func GridOnly(q MonthQuery, today time.Time) *caltypes.CalendarResponse {
	return buildMonthView(q, nil, 0, today, monthMessages{})
}
