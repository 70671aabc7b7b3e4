package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"eJournalAPI/internal/journal"
	"eJournalAPI/internal/store"
	caltypes "eJournalAPI/internal/types/calendar"

	"github.com/prometheus/client_golang/prometheus"
)

var savedDocuments = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "saved_documents_total",
		Help: "Documents written by collection",
	},
	[]string{"collection"},
)

// Collectors returns the service metrics for registration in main.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{savedDocuments}
}

type JournalService struct {
	days dayDocs
	now  func() time.Time
}

func NewJournalService(docs DocumentCache) *JournalService {
	return &JournalService{days: dayDocs{docs: docs, collection: journal.Collection}, now: time.Now}
}

// GetEntry returns the entry of one date merged with defaults. A missing
// document and a failing store both yield the default entry; only a bad
// date is an error.
func (s *JournalService) GetEntry(ctx context.Context, userID, date string) (*journal.Entry, error) {
	k, err := parseDay(date)
	if err != nil {
		return nil, err
	}
	key := k.iso

	defaults := journal.Normalize(journal.Entry{})

	doc, err := s.days.get(ctx, userID, k)
	if err != nil {
		if !store.IsNotFound(err) {
			log.Printf("JournalService: failed to load entry %s for user %s: %v", key, userID, err)
		}
		return &defaults, nil
	}

	entry, err := journal.FromDocument(doc)
	if err != nil {
		log.Printf("JournalService: failed to decode entry %s for user %s: %v", key, userID, err)
		return &defaults, nil
	}
	normalized := journal.Normalize(entry)
	return &normalized, nil
}

// GetEntries returns every stored entry keyed by ISO date. Read failures
// degrade to an empty map.
func (s *JournalService) GetEntries(ctx context.Context, userID string) (map[string]journal.Entry, error) {
	docs, err := s.days.all(ctx, userID)
	if err != nil {
		log.Printf("JournalService: failed to list entries for user %s: %v", userID, err)
		return map[string]journal.Entry{}, nil
	}

	entries := make(map[string]journal.Entry, len(docs))
	for key, doc := range docs {
		entry, err := journal.FromDocument(doc)
		if err != nil {
			log.Printf("JournalService: skipping entry %s for user %s: %v", key, userID, err)
			continue
		}
		entries[key] = journal.Normalize(entry)
	}
	return entries, nil
}

// SaveEntry validates one half of an entry and merges it into the stored
// document, leaving the other half untouched.
func (s *JournalService) SaveEntry(ctx context.Context, userID, date string, entryType journal.EntryType, section journal.Section) (*journal.Entry, error) {
	k, err := parseDay(date)
	if err != nil {
		return nil, err
	}

	if errs := journal.ValidateSection(entryType, section); len(errs) > 0 {
		return nil, &ValidationError{Field: errs[0].Field, Message: errs[0].Message, Fields: errs}
	}

	if err := s.days.put(ctx, userID, k, section.Document(entryType)); err != nil {
		return nil, fmt.Errorf("failed to save %s entry: %w", entryType, err)
	}
	savedDocuments.WithLabelValues(journal.Collection).Inc()

	return s.GetEntry(ctx, userID, k.iso)
}

func (s *JournalService) MonthView(ctx context.Context, userID string, q MonthQuery) (*caltypes.CalendarResponse, error) {
	entries, err := s.GetEntries(ctx, userID)
	if err != nil {
		return nil, err
	}

	marked := make(map[string]bool, len(entries))
	for key := range entries {
		marked[key] = true
	}

	return buildMonthView(q, marked, len(entries), s.now(), monthMessages{
		empty: "You don't have any journal entries yet. Why not start one today and capture your thoughts?",
		summary: func(total int) string {
			return fmt.Sprintf("Total journal days: %d", total)
		},
	}), nil
}
