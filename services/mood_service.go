package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"eJournalAPI/internal/mood"
	"eJournalAPI/internal/store"
	caltypes "eJournalAPI/internal/types/calendar"
	"eJournalAPI/internal/validation"
)

type MoodService struct {
	days dayDocs
	now  func() time.Time
}

func NewMoodService(docs DocumentCache) *MoodService {
	return &MoodService{days: dayDocs{docs: docs, collection: mood.Collection}, now: time.Now}
}

// SetMoodAndNote records the mood of a day together with its note. The
// period flag of the same day is kept.
func (s *MoodService) SetMoodAndNote(ctx context.Context, userID, date string, score int, note string) (*mood.Day, error) {
	k, err := parseDay(date)
	if err != nil {
		return nil, err
	}
	if err := mood.CheckMood(score); err != nil {
		return nil, invalid("mood", err.Error())
	}
	note = strings.TrimSpace(note)
	if note != "" {
		if res := validation.Note(note); !res.Valid {
			return nil, invalid("note", res.Message)
		}
	}

	if err := s.days.put(ctx, userID, k, store.Document{"mood": score, "note": note}); err != nil {
		return nil, fmt.Errorf("failed to save mood: %w", err)
	}
	savedDocuments.WithLabelValues(mood.Collection).Inc()
	return s.getDay(ctx, userID, k)
}

func (s *MoodService) SetPeriod(ctx context.Context, userID, date string, period bool) (*mood.Day, error) {
	k, err := parseDay(date)
	if err != nil {
		return nil, err
	}

	if err := s.days.put(ctx, userID, k, store.Document{"period": period}); err != nil {
		return nil, fmt.Errorf("failed to save period: %w", err)
	}
	savedDocuments.WithLabelValues(mood.Collection).Inc()
	return s.getDay(ctx, userID, k)
}

func (s *MoodService) getDay(ctx context.Context, userID string, k dayKey) (*mood.Day, error) {
	doc, err := s.days.get(ctx, userID, k)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return &mood.Day{}, nil
		}
		return nil, err
	}
	day, err := mood.FromDocument(doc)
	if err != nil {
		return nil, err
	}
	return &day, nil
}

// GetDays returns every logged day keyed by ISO date. Read failures degrade
// to an empty map.
func (s *MoodService) GetDays(ctx context.Context, userID string) (map[string]mood.Day, error) {
	docs, err := s.days.all(ctx, userID)
	if err != nil {
		log.Printf("MoodService: failed to list days for user %s: %v", userID, err)
		return map[string]mood.Day{}, nil
	}

	days := make(map[string]mood.Day, len(docs))
	for key, doc := range docs {
		day, err := mood.FromDocument(doc)
		if err != nil {
			log.Printf("MoodService: skipping day %s for user %s: %v", key, userID, err)
			continue
		}
		days[key] = day
	}
	return days, nil
}

func (s *MoodService) Stats(ctx context.Context, userID string) (*mood.Stats, error) {
	days, err := s.GetDays(ctx, userID)
	if err != nil {
		return nil, err
	}
	stats := mood.ComputeStats(days, s.now())
	return &stats, nil
}

// MonthView marks the days that carry a mood. Days holding only a period
// flag count towards the total but are not marked.
func (s *MoodService) MonthView(ctx context.Context, userID string, q MonthQuery) (*caltypes.CalendarResponse, error) {
	days, err := s.GetDays(ctx, userID)
	if err != nil {
		return nil, err
	}

	marked := make(map[string]bool, len(days))
	for key, day := range days {
		if day.Mood != nil {
			marked[key] = true
		}
	}

	return buildMonthView(q, marked, len(days), s.now(), monthMessages{
		empty: "You haven't logged a mood yet. How are you feeling today?",
		summary: func(total int) string {
			return fmt.Sprintf("Number of days: %d", total)
		},
	}), nil
}
