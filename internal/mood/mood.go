// Package mood holds the bYou day log: a mood score with an optional note and
// a period flag, stored per date.
package mood

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

const Collection = "moodDays"

const (
	MinMood = 1
	MaxMood = 5
)

var ErrMoodOutOfRange = fmt.Errorf("mood must be between %d and %d", MinMood, MaxMood)

// Scale lists the mood buttons in score order, starting at MinMood.
var Scale = []Level{
	{Score: 1, Label: "&*@#$", Emoji: "😭"},
	{Score: 2, Label: "Sad", Emoji: "😢"},
	{Score: 3, Label: "Existing", Emoji: "😶"},
	{Score: 4, Label: "Good", Emoji: "😀"},
	{Score: 5, Label: "Elated", Emoji: "😍"},
}

type Level struct {
	Score int    `json:"score"`
	Label string `json:"label"`
	Emoji string `json:"emoji"`
}

// Day is one stored day. Mood/note and period are written by separate
// actions, so each may be absent.
type Day struct {
	Mood   *int    `json:"mood,omitempty"`
	Note   *string `json:"note,omitempty"`
	Period *bool   `json:"period,omitempty"`
}

func CheckMood(m int) error {
	if m < MinMood || m > MaxMood {
		return fmt.Errorf("%w: got %d", ErrMoodOutOfRange, m)
	}
	return nil
}

func LevelFor(m int) (Level, error) {
	if err := CheckMood(m); err != nil {
		return Level{}, err
	}
	return Scale[m-MinMood], nil
}

// FromDocument decodes a stored day document.
func FromDocument(doc map[string]any) (Day, error) {
	var d Day
	if len(doc) == 0 {
		return d, nil
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return d, fmt.Errorf("failed to encode mood document: %w", err)
	}
	if err := json.Unmarshal(raw, &d); err != nil {
		return d, fmt.Errorf("failed to decode mood document: %w", err)
	}
	return d, nil
}

// Stats summarises every stored day.
type Stats struct {
	NumDays       int     `json:"num_days"`
	AverageMood   float64 `json:"average_mood"`
	TimeRemaining string  `json:"time_remaining"`
}

// ComputeStats counts every recorded day and averages the days that carry a
// mood, rounded to one decimal. Days holding only a period flag count towards
// NumDays but not the average.
func ComputeStats(days map[string]Day, now time.Time) Stats {
	var sum, rated int
	for _, d := range days {
		if d.Mood != nil {
			sum += *d.Mood
			rated++
		}
	}

	s := Stats{NumDays: len(days), TimeRemaining: TimeRemaining(now)}
	if rated > 0 {
		s.AverageMood = math.Round(float64(sum)/float64(rated)*10) / 10
	}
	return s
}

// TimeRemaining is the time left to log today, formatted like "5H 42M".
func TimeRemaining(now time.Time) string {
	return fmt.Sprintf("%dH %dM", 23-now.Hour(), 60-now.Minute())
}
