package services

import (
	"context"
	"fmt"
	"log"
	"slices"
	"strings"

	"eJournalAPI/internal/calendar"
	"eJournalAPI/internal/store"
)

// dayKey holds both spellings of one date: iso is "2024-12-05", legacy is
// the unpadded "2024-12-5" that older clients wrote. They are equal when
// nothing needs padding.
type dayKey struct {
	iso    string
	legacy string
}

func parseDay(date string) (dayKey, error) {
	cfg, day, err := calendar.ParseDate(date)
	if err != nil {
		return dayKey{}, err
	}
	return dayKey{iso: calendar.DateKey(cfg, day), legacy: calendar.DateString(cfg, day)}, nil
}

func (k dayKey) hasLegacy() bool { return k.legacy != k.iso }

// dayDocs reads and writes the date-keyed documents of one collection.
// Writes always land on the ISO key. A legacy twin is still read, and is
// folded into the ISO document and removed on the next write of that date.
type dayDocs struct {
	docs       DocumentCache
	collection string
}

func (d dayDocs) lookup(ctx context.Context, userID, key string) (store.Document, error) {
	doc, err := d.docs.Get(ctx, userID, d.collection, key)
	if store.IsNotFound(err) {
		return nil, nil
	}
	return doc, err
}

// get returns the document of one date, with the ISO document applied over
// a legacy twin. It answers store.ErrNotFound when neither exists.
func (d dayDocs) get(ctx context.Context, userID string, k dayKey) (store.Document, error) {
	doc, err := d.lookup(ctx, userID, k.iso)
	if err != nil {
		return nil, err
	}
	if k.hasLegacy() {
		old, err := d.lookup(ctx, userID, k.legacy)
		if err != nil {
			return nil, err
		}
		if old != nil {
			doc = store.Merge(old, doc)
		}
	}
	if doc == nil {
		return nil, fmt.Errorf("%s/%s: %w", d.collection, k.iso, store.ErrNotFound)
	}
	return doc, nil
}

// put merges partial into the ISO document of the date, migrating a legacy
// twin first.
func (d dayDocs) put(ctx context.Context, userID string, k dayKey, partial store.Document) error {
	if k.hasLegacy() {
		if err := d.migrate(ctx, userID, k); err != nil {
			return err
		}
	}
	return d.docs.Put(ctx, userID, d.collection, k.iso, partial)
}

func (d dayDocs) migrate(ctx context.Context, userID string, k dayKey) error {
	old, err := d.lookup(ctx, userID, k.legacy)
	if err != nil {
		return fmt.Errorf("failed to read %s/%s: %w", d.collection, k.legacy, err)
	}
	if old == nil {
		return nil
	}
	current, err := d.lookup(ctx, userID, k.iso)
	if err != nil {
		return fmt.Errorf("failed to read %s/%s: %w", d.collection, k.iso, err)
	}

	if err := d.docs.Put(ctx, userID, d.collection, k.iso, store.Merge(old, current)); err != nil {
		return fmt.Errorf("failed to migrate %s/%s: %w", d.collection, k.legacy, err)
	}
	// the ISO copy wins on every read, so a leftover twin is harmless
	if err := d.docs.Delete(ctx, userID, d.collection, k.legacy); err != nil {
		log.Printf("Store: failed to remove legacy %s/%s for user %s: %v", d.collection, k.legacy, userID, err)
	}
	return nil
}

// all lists the collection keyed by ISO date.
func (d dayDocs) all(ctx context.Context, userID string) (map[string]store.Document, error) {
	docs, err := d.docs.GetAll(ctx, userID, d.collection)
	if err != nil {
		return nil, err
	}
	return canonicalKeys(docs), nil
}

type keyForm struct {
	raw       string
	canonical string
}

func (f keyForm) legacy() bool { return f.raw != f.canonical }

// canonicalForms pairs every key with its ISO form. Legacy spellings sort
// first so that where both forms of a date exist the ISO one is applied
// last. Keys that are not dates are kept as they are.
func canonicalForms[V any](m map[string]V) []keyForm {
	forms := make([]keyForm, 0, len(m))
	for k := range m {
		canonical, err := calendar.CanonicalKey(k)
		if err != nil {
			canonical = k
		}
		forms = append(forms, keyForm{raw: k, canonical: canonical})
	}
	slices.SortFunc(forms, func(a, b keyForm) int {
		if la, lb := a.legacy(), b.legacy(); la != lb {
			if la {
				return -1
			}
			return 1
		}
		return strings.Compare(a.raw, b.raw)
	})
	return forms
}

// canonicalKeys rewrites legacy unpadded keys of a listing. When both forms
// of one date exist the documents are merged, the ISO one winning.
func canonicalKeys(docs map[string]store.Document) map[string]store.Document {
	out := make(map[string]store.Document, len(docs))
	for _, f := range canonicalForms(docs) {
		out[f.canonical] = store.Merge(out[f.canonical], docs[f.raw])
	}
	return out
}

// canonicalHours does the same for the per-date hours of a subject.
func canonicalHours(data map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(data))
	for _, f := range canonicalForms(data) {
		out[f.canonical] = data[f.raw]
	}
	return out
}
