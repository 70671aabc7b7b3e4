// Package calendar computes month views: which cells of a 7-column grid hold
// a day of the month, how to step between months, and how a clicked day maps
// to the date string used as a document key.
package calendar

import (
	"errors"
	"fmt"
	"iter"
	"strconv"
	"strings"
	"time"
)

const DaysPerWeek = 7

var (
	ErrInvalidMonth = errors.New("month must be between 0 and 11")
	ErrInvalidDate  = errors.New("invalid date string")
)

var WeekdayNames = [DaysPerWeek]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

var monthNames = [12]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// Config identifies a displayed month. Month is 0-indexed (0 = January).
type Config struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// Today returns the config of the month containing now.
func Today(now time.Time) Config {
	return Config{Year: now.Year(), Month: int(now.Month()) - 1}
}

// Validate reports whether Month is inside [0, 11].
func (c Config) Validate() error {
	if c.Month < 0 || c.Month > 11 {
		return fmt.Errorf("%w: got %d", ErrInvalidMonth, c.Month)
	}
	return nil
}

// Normalize folds an out-of-range month into the year, so {2024, 12}
// becomes {2025, 0} and {2024, -1} becomes {2023, 11}.
func (c Config) Normalize() Config {
	return AdvanceMonth(c, 0)
}

// FirstWeekday is the weekday of day 1, 0 = Sunday.
func (c Config) FirstWeekday() int {
	c = c.Normalize()
	return int(time.Date(c.Year, time.Month(c.Month+1), 1, 0, 0, 0, 0, time.UTC).Weekday())
}

// DaysInMonth is computed as day 0 of the next month.
func (c Config) DaysInMonth() int {
	c = c.Normalize()
	return time.Date(c.Year, time.Month(c.Month+2), 0, 0, 0, 0, 0, time.UTC).Day()
}

// RowCount is ceil((firstWeekday + daysInMonth) / 7).
func (c Config) RowCount() int {
	toDisplay := c.FirstWeekday() + c.DaysInMonth()
	return (toDisplay + DaysPerWeek - 1) / DaysPerWeek
}

func (c Config) MonthName() string {
	return monthNames[c.Normalize().Month]
}

func (c Config) String() string {
	n := c.Normalize()
	return fmt.Sprintf("%s, %d", monthNames[n.Month], n.Year)
}

// DayCell is one grid position. Day is 0 for blank padding cells, otherwise
// the 1-based day of the month.
type DayCell struct {
	Row    int
	Column int
	Day    int
}

func (d DayCell) Blank() bool {
	return d.Day == 0
}

// Grid is the month view of a Config. It holds only the derived numbers, so
// rows are produced on demand and can be iterated any number of times.
type Grid struct {
	Config       Config
	firstWeekday int
	daysInMonth  int
	rowCount     int
}

// ComputeGrid derives the grid for cfg. Out-of-range months are normalized.
func ComputeGrid(cfg Config) Grid {
	cfg = cfg.Normalize()
	return Grid{
		Config:       cfg,
		firstWeekday: cfg.FirstWeekday(),
		daysInMonth:  cfg.DaysInMonth(),
		rowCount:     cfg.RowCount(),
	}
}

func (g Grid) RowCount() int     { return g.rowCount }
func (g Grid) FirstWeekday() int { return g.firstWeekday }
func (g Grid) DaysInMonth() int  { return g.daysInMonth }

// Cell computes the cell at (row, column).
func (g Grid) Cell(row, column int) DayCell {
	cell := DayCell{Row: row, Column: column}
	dayIndex := row*DaysPerWeek + column - (g.firstWeekday - 1)
	if dayIndex > g.daysInMonth || (row == 0 && column < g.firstWeekday) {
		return cell
	}
	cell.Day = dayIndex
	return cell
}

// Row returns the seven cells of one row.
func (g Grid) Row(row int) []DayCell {
	cells := make([]DayCell, DaysPerWeek)
	for c := range cells {
		cells[c] = g.Cell(row, c)
	}
	return cells
}

// Rows yields every row in order, computing each one when it is requested.
func (g Grid) Rows() iter.Seq[[]DayCell] {
	return func(yield func([]DayCell) bool) {
		for r := 0; r < g.rowCount; r++ {
			if !yield(g.Row(r)) {
				return
			}
		}
	}
}

// AdvanceMonth moves cfg by delta months, carrying into the year in either
// direction. Whole years are carried before the month arithmetic so years
// near the int limits do not overflow.
func AdvanceMonth(cfg Config, delta int) Config {
	year := cfg.Year + cfg.Month/12 + delta/12
	month := cfg.Month%12 + delta%12
	year += month / 12
	month %= 12
	if month < 0 {
		month += 12
		year--
	}
	return Config{Year: year, Month: month}
}

// DateString formats a clicked day as "year-month-day" with a 1-based month
// and no zero padding, e.g. "2024-12-5".
func DateString(cfg Config, day int) string {
	cfg = cfg.Normalize()
	return fmt.Sprintf("%d-%d-%d", cfg.Year, cfg.Month+1, day)
}

// DateKey formats the same day as ISO "YYYY-MM-DD". Stored documents are keyed
// with this form.
func DateKey(cfg Config, day int) string {
	cfg = cfg.Normalize()
	return fmt.Sprintf("%04d-%02d-%02d", cfg.Year, cfg.Month+1, day)
}

// ParseDate accepts both "2024-12-5" and "2024-12-05". Each part is plain
// ASCII digits; a leading '-' marks a negative year, as DateString writes it.
func ParseDate(s string) (Config, int, error) {
	s = strings.TrimSpace(s)
	body, negative := strings.CutPrefix(s, "-")

	parts := strings.Split(body, "-")
	if len(parts) != 3 {
		return Config{}, 0, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	var nums [3]int
	for i, p := range parts {
		if !isDigits(p) {
			return Config{}, 0, fmt.Errorf("%w: %q", ErrInvalidDate, s)
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return Config{}, 0, fmt.Errorf("%w: %q", ErrInvalidDate, s)
		}
		nums[i] = n
	}
	if negative {
		nums[0] = -nums[0]
	}

	cfg := Config{Year: nums[0], Month: nums[1] - 1}
	if err := cfg.Validate(); err != nil {
		return Config{}, 0, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	if nums[2] < 1 || nums[2] > cfg.DaysInMonth() {
		return Config{}, 0, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return cfg, nums[2], nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// CanonicalKey rewrites either date form into DateKey form.
func CanonicalKey(s string) (string, error) {
	cfg, day, err := ParseDate(s)
	if err != nil {
		return "", err
	}
	return DateKey(cfg, day), nil
}

// IsToday reports whether (cfg, day) is the calendar date of today.
func IsToday(cfg Config, day int, today time.Time) bool {
	cfg = cfg.Normalize()
	return today.Year() == cfg.Year && int(today.Month())-1 == cfg.Month && today.Day() == day
}
