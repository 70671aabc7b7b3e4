package calendar

type MonthRef struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// CalendarDay is one cell of the month grid. Day is nil for blank cells.
type CalendarDay struct {
	Row        int    `json:"row"`
	Column     int    `json:"column"`
	Day        *int   `json:"day"`
	Date       string `json:"date,omitempty"`
	HasEntry   bool   `json:"has_entry"`
	IsSelected bool   `json:"is_selected"`
	IsToday    bool   `json:"is_today"`
}

type CalendarResponse struct {
	Year         int              `json:"year"`
	Month        int              `json:"month"`
	Title        string           `json:"title"`
	Weekdays     []string         `json:"weekdays"`
	Rows         [][]*CalendarDay `json:"rows"`
	Prev         MonthRef         `json:"prev"`
	Next         MonthRef         `json:"next"`
	Selected     string           `json:"selected,omitempty"`
	TotalEntries int              `json:"total_entries"`
	Message      string           `json:"message"`
}
