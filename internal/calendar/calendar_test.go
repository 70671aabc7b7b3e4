package calendar

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeGrid_EveryDayExactlyOnce(t *testing.T) {
	for year := 1899; year <= 2101; year++ {
		for month := 0; month < 12; month++ {
			cfg := Config{Year: year, Month: month}
			grid := ComputeGrid(cfg)

			seen := make(map[int]int)
			rows := 0
			for row := range grid.Rows() {
				require.Len(t, row, DaysPerWeek)
				for _, cell := range row {
					if cell.Blank() {
						// padding only ever sits in the first or last row
						assert.True(t, cell.Row == 0 || cell.Row == grid.RowCount()-1, "%v blank at row %d", cfg, cell.Row)
						continue
					}
					seen[cell.Day]++
				}
				rows++
			}

			require.Equal(t, grid.RowCount(), rows)
			require.Len(t, seen, cfg.DaysInMonth(), "%v", cfg)
			for d := 1; d <= cfg.DaysInMonth(); d++ {
				require.Equal(t, 1, seen[d], "%v day %d", cfg, d)
			}
		}
	}
}

func TestComputeGrid_December2024(t *testing.T) {
	cfg := Config{Year: 2024, Month: 11}
	grid := ComputeGrid(cfg)

	assert.Equal(t, 0, grid.FirstWeekday())
	assert.Equal(t, 31, grid.DaysInMonth())
	assert.Equal(t, 5, grid.RowCount())
	assert.Equal(t, 1, grid.Cell(0, 0).Day)
	assert.Equal(t, 31, grid.Cell(4, 2).Day)

	for c := 0; c < DaysPerWeek; c++ {
		if c == 0 || c == 1 || c == 2 {
			assert.False(t, grid.Cell(4, c).Blank())
			continue
		}
		assert.True(t, grid.Cell(4, c).Blank(), "column %d", c)
	}
}

func TestComputeGrid_LeadingBlanks(t *testing.T) {
	// 1 March 2025 is a Saturday: six blanks then day 1, and six rows.
	grid := ComputeGrid(Config{Year: 2025, Month: 2})

	assert.Equal(t, 6, grid.FirstWeekday())
	assert.Equal(t, 6, grid.RowCount())
	for c := 0; c < 6; c++ {
		assert.True(t, grid.Cell(0, c).Blank())
	}
	assert.Equal(t, 1, grid.Cell(0, 6).Day)
	assert.Equal(t, 31, grid.Cell(5, 1).Day)
}

func TestComputeGrid_FebruaryFitsFourRows(t *testing.T) {
	// February 2015 starts on Sunday and has 28 days.
	grid := ComputeGrid(Config{Year: 2015, Month: 1})
	assert.Equal(t, 4, grid.RowCount())
	assert.Equal(t, 28, grid.Cell(3, 6).Day)
}

func TestComputeGrid_Restartable(t *testing.T) {
	grid := ComputeGrid(Config{Year: 2024, Month: 1})

	collect := func() [][]DayCell {
		var out [][]DayCell
		for row := range grid.Rows() {
			out = append(out, row)
		}
		return out
	}

	first := collect()
	second := collect()
	assert.Equal(t, first, second)

	// stopping early must not break later iterations
	for range grid.Rows() {
		break
	}
	assert.Equal(t, first, collect())
}

func TestComputeGrid_NormalizesMonth(t *testing.T) {
	assert.Equal(t, Config{Year: 2025, Month: 0}, ComputeGrid(Config{Year: 2024, Month: 12}).Config)
	assert.Equal(t, Config{Year: 2023, Month: 11}, ComputeGrid(Config{Year: 2024, Month: -1}).Config)
}

func TestAdvanceMonth(t *testing.T) {
	tests := []struct {
		in    Config
		delta int
		want  Config
	}{
		{Config{2024, 0}, -1, Config{2023, 11}},
		{Config{2024, 11}, 1, Config{2025, 0}},
		{Config{2024, 5}, 1, Config{2024, 6}},
		{Config{2024, 5}, -1, Config{2024, 4}},
		{Config{2024, 5}, 0, Config{2024, 5}},
		{Config{2024, 5}, 19, Config{2026, 0}},
		{Config{2024, 5}, -30, Config{2021, 11}},
		{Config{0, 0}, -1, Config{-1, 11}},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%v%+d", tt.in, tt.delta), func(t *testing.T) {
			assert.Equal(t, tt.want, AdvanceMonth(tt.in, tt.delta))
		})
	}
}

func TestAdvanceMonth_LargeYears(t *testing.T) {
	big := math.MaxInt/12 + 5
	assert.Equal(t, Config{Year: big, Month: 4}, AdvanceMonth(Config{Year: big, Month: 3}, 1))
	assert.Equal(t, Config{Year: big - 1, Month: 11}, AdvanceMonth(Config{Year: big, Month: 0}, -1))
	assert.Equal(t, Config{Year: math.MaxInt, Month: 0}, AdvanceMonth(Config{Year: math.MaxInt - 1, Month: 11}, 1))
	assert.Equal(t, Config{Year: math.MinInt, Month: 11}, AdvanceMonth(Config{Year: math.MinInt + 1, Month: 0}, -1))
	assert.Equal(t, Config{Year: big + 2, Month: 3}, AdvanceMonth(Config{Year: big, Month: 3}, 24))
}

func TestAdvanceMonth_RoundTrip(t *testing.T) {
	for year := 1990; year <= 2030; year++ {
		for month := 0; month < 12; month++ {
			cfg := Config{Year: year, Month: month}
			assert.Equal(t, cfg, AdvanceMonth(AdvanceMonth(cfg, 1), -1))
			assert.Equal(t, cfg, AdvanceMonth(AdvanceMonth(cfg, -1), 1))
			assert.Equal(t, cfg, AdvanceMonth(AdvanceMonth(cfg, 25), -25))
		}
	}
}

func TestAdvanceMonth_MatchesRepeatedSteps(t *testing.T) {
	cfg := Config{Year: 2024, Month: 3}
	stepped := cfg
	for i := 0; i < 40; i++ {
		stepped = AdvanceMonth(stepped, -1)
	}
	assert.Equal(t, stepped, AdvanceMonth(cfg, -40))
}

func TestDateString(t *testing.T) {
	assert.Equal(t, "2024-12-5", DateString(Config{Year: 2024, Month: 11}, 5))
	assert.Equal(t, "2024-1-31", DateString(Config{Year: 2024, Month: 0}, 31))
	assert.Equal(t, "2024-12-11", DateString(Config{Year: 2024, Month: 11}, 11))
}

func TestDateString_ParsesBack(t *testing.T) {
	for month := 0; month < 12; month++ {
		cfg := Config{Year: 2024, Month: month}
		for day := 1; day <= cfg.DaysInMonth(); day++ {
			gotCfg, gotDay, err := ParseDate(DateString(cfg, day))
			require.NoError(t, err)
			assert.Equal(t, cfg, gotCfg)
			assert.Equal(t, day, gotDay)

			gotCfg, gotDay, err = ParseDate(DateKey(cfg, day))
			require.NoError(t, err)
			assert.Equal(t, cfg, gotCfg)
			assert.Equal(t, day, gotDay)
		}
	}
}

func TestParseDate_RejectsSigns(t *testing.T) {
	for _, bad := range []string{"2024-+12-+5", "+2024-12-5", "2024-12-+05", "2024- 12-5", "--2024-12-5", "-2024-12"} {
		_, _, err := ParseDate(bad)
		assert.ErrorIs(t, err, ErrInvalidDate, bad)
	}
}

func TestParseDate_NegativeYears(t *testing.T) {
	cfg := Config{Year: -5, Month: 0}

	assert.Equal(t, "-5-1-1", DateString(cfg, 1))
	gotCfg, gotDay, err := ParseDate(DateString(cfg, 1))
	require.NoError(t, err)
	assert.Equal(t, cfg, gotCfg)
	assert.Equal(t, 1, gotDay)

	gotCfg, gotDay, err = ParseDate(DateKey(cfg, 1))
	require.NoError(t, err)
	assert.Equal(t, cfg, gotCfg)
	assert.Equal(t, 1, gotDay)
}

func TestCanonicalKey(t *testing.T) {
	key, err := CanonicalKey("2024-12-5")
	require.NoError(t, err)
	assert.Equal(t, "2024-12-05", key)

	key, err = CanonicalKey("2024-12-05")
	require.NoError(t, err)
	assert.Equal(t, "2024-12-05", key)

	for _, bad := range []string{"", "2024-12", "2024-13-01", "2024-0-1", "2023-2-29", "2024-x-1", "2024--1"} {
		_, err := CanonicalKey(bad)
		assert.ErrorIs(t, err, ErrInvalidDate, bad)
	}
}

func TestIsToday(t *testing.T) {
	today := time.Date(2024, time.December, 11, 15, 4, 0, 0, time.UTC)
	cfg := Config{Year: 2024, Month: 11}

	assert.True(t, IsToday(cfg, 11, today))
	assert.False(t, IsToday(cfg, 12, today))
	assert.False(t, IsToday(Config{Year: 2023, Month: 11}, 11, today))
	assert.False(t, IsToday(Config{Year: 2024, Month: 10}, 11, today))
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, Config{Year: 2024, Month: 0}.Validate())
	assert.NoError(t, Config{Year: 2024, Month: 11}.Validate())
	assert.ErrorIs(t, Config{Year: 2024, Month: 12}.Validate(), ErrInvalidMonth)
	assert.ErrorIs(t, Config{Year: 2024, Month: -1}.Validate(), ErrInvalidMonth)
}

func TestConfig_String(t *testing.T) {
	assert.Equal(t, "December, 2024", Config{Year: 2024, Month: 11}.String())
	assert.Equal(t, "January", Today(time.Date(2026, time.January, 3, 0, 0, 0, 0, time.UTC)).MonthName())
}
