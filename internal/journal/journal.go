// Package journal models the eJournal morning/evening entries and the
// merge-with-defaults step applied when they are read back.
package journal

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"

	"eJournalAPI/internal/validation"
)

// Collection is the per-user document collection holding journal entries.
const Collection = "journalEntries"

// FieldSlots is the number of lines each prompt offers.
const FieldSlots = 3

type EntryType string

const (
	Morning EntryType = "morning"
	Evening EntryType = "evening"
)

var ErrUnknownEntryType = errors.New("entry type must be morning or evening")

func ParseEntryType(s string) (EntryType, error) {
	switch EntryType(s) {
	case Morning, Evening:
		return EntryType(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownEntryType, s)
}

// Fields lists the prompt keys of a section in display order.
func (t EntryType) Fields() []string {
	if t == Morning {
		return []string{"gratitude", "goals", "affirmations"}
	}
	return []string{"amazingThings", "improvements"}
}

var Prompts = map[string]string{
	"gratitude":     "I am grateful for ...",
	"goals":         "What would make today great?",
	"affirmations":  "Daily affirmation. I am ...",
	"amazingThings": "Amazing things that happened today ...",
	"improvements":  "How could I have made today better ...",
}

type MorningSection struct {
	Gratitude    []string `json:"gratitude"`
	Goals        []string `json:"goals"`
	Affirmations []string `json:"affirmations"`
}

type EveningSection struct {
	AmazingThings []string `json:"amazingThings"`
	Improvements  []string `json:"improvements"`
}

// Entry is a stored journal day. Either section may be missing because each
// one is saved on its own.
type Entry struct {
	Morning *MorningSection `json:"morning,omitempty"`
	Evening *EveningSection `json:"evening,omitempty"`
}

// Section is the generic field -> lines shape a client sends when saving one
// half of an entry.
type Section map[string][]string

func blankLines() []string {
	return make([]string, FieldSlots)
}

func fill(lines []string) []string {
	if lines == nil {
		return blankLines()
	}
	return lines
}

// Normalize merges the entry with defaults so both sections and every field
// exist. Stored data always wins over the defaults.
func Normalize(e Entry) Entry {
	out := Entry{
		Morning: &MorningSection{},
		Evening: &EveningSection{},
	}
	if e.Morning != nil {
		*out.Morning = *e.Morning
	}
	if e.Evening != nil {
		*out.Evening = *e.Evening
	}
	out.Morning.Gratitude = fill(out.Morning.Gratitude)
	out.Morning.Goals = fill(out.Morning.Goals)
	out.Morning.Affirmations = fill(out.Morning.Affirmations)
	out.Evening.AmazingThings = fill(out.Evening.AmazingThings)
	out.Evening.Improvements = fill(out.Evening.Improvements)
	return out
}

func allBlank(groups ...[]string) bool {
	for _, g := range groups {
		for _, line := range g {
			if line != "" {
				return false
			}
		}
	}
	return true
}

// IsEmpty is true when no line of the given section holds text.
func (e Entry) IsEmpty(t EntryType) bool {
	if t == Morning {
		if e.Morning == nil {
			return true
		}
		return allBlank(e.Morning.Gratitude, e.Morning.Goals, e.Morning.Affirmations)
	}
	if e.Evening == nil {
		return true
	}
	return allBlank(e.Evening.AmazingThings, e.Evening.Improvements)
}

// FromDocument decodes a stored document. Unknown keys are ignored.
func FromDocument(doc map[string]any) (Entry, error) {
	var e Entry
	if len(doc) == 0 {
		return e, nil
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return e, fmt.Errorf("failed to encode journal document: %w", err)
	}
	if err := json.Unmarshal(raw, &e); err != nil {
		return e, fmt.Errorf("failed to decode journal document: %w", err)
	}
	return e, nil
}

// FieldError is a validation failure on one line of a section.
type FieldError struct {
	Field   string `json:"field"`
	Index   int    `json:"index"`
	Message string `json:"message"`
}

// ValidateSection checks a section for unknown fields and runs the note check
// over every line. The returned slice is empty when the section can be saved.
func ValidateSection(t EntryType, s Section) []FieldError {
	allowed := make(map[string]bool)
	for _, f := range t.Fields() {
		allowed[f] = true
	}

	var errs []FieldError
	for _, field := range slices.Sorted(maps.Keys(s)) {
		if !allowed[field] {
			errs = append(errs, FieldError{Field: field, Index: -1, Message: fmt.Sprintf("unknown %s field", t)})
			continue
		}
		lines := s[field]
		if len(lines) > FieldSlots {
			errs = append(errs, FieldError{Field: field, Index: FieldSlots, Message: fmt.Sprintf("at most %d lines are allowed", FieldSlots)})
			continue
		}
		for i, line := range lines {
			if res := validation.Note(line); !res.Valid {
				errs = append(errs, FieldError{Field: field, Index: i, Message: res.Message})
			}
		}
	}
	return errs
}

// Document converts a validated section into the partial document written
// under its entry type, padding each field to FieldSlots lines.
func (s Section) Document(t EntryType) map[string]any {
	fields := make(map[string]any, len(t.Fields()))
	for _, f := range t.Fields() {
		lines := blankLines()
		copy(lines, s[f])
		fields[f] = lines
	}
	return map[string]any{string(t): fields}
}
