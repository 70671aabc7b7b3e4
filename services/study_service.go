package services

import (
	"context"
	"fmt"
	"log"
	"slices"
	"strings"
	"time"

	"eJournalAPI/internal/calendar"
	"eJournalAPI/internal/store"
	"eJournalAPI/internal/study"
	caltypes "eJournalAPI/internal/types/calendar"
)

type SubjectView struct {
	Name string `json:"name"`
	study.Subject
	study.Progress
}

type StudyService struct {
	docs DocumentCache
	now  func() time.Time
}

func NewStudyService(docs DocumentCache) *StudyService {
	return &StudyService{docs: docs, now: time.Now}
}

// ListSubjects returns every subject with its progress, sorted by name.
// Read failures degrade to an empty list.
func (s *StudyService) ListSubjects(ctx context.Context, userID string) ([]SubjectView, error) {
	docs, err := s.docs.GetAll(ctx, userID, study.Collection)
	if err != nil {
		log.Printf("StudyService: failed to list subjects for user %s: %v", userID, err)
		return []SubjectView{}, nil
	}

	views := make([]SubjectView, 0, len(docs))
	for name, doc := range docs {
		subject, err := study.FromDocument(doc)
		if err != nil {
			log.Printf("StudyService: skipping subject %q for user %s: %v", name, userID, err)
			continue
		}
		subject.StudyData = canonicalHours(subject.StudyData)
		views = append(views, SubjectView{Name: name, Subject: subject, Progress: study.ComputeProgress(subject)})
	}
	slices.SortFunc(views, func(a, b SubjectView) int { return strings.Compare(a.Name, b.Name) })
	return views, nil
}

func (s *StudyService) getSubject(ctx context.Context, userID, name string) (study.Subject, error) {
	doc, err := s.docs.Get(ctx, userID, study.Collection, name)
	if err != nil {
		if store.IsNotFound(err) {
			return study.Subject{}, fmt.Errorf("%w: %q", ErrSubjectNotFound, name)
		}
		return study.Subject{}, fmt.Errorf("failed to load subject %q: %w", name, err)
	}
	subject, err := study.FromDocument(doc)
	if err != nil {
		return study.Subject{}, err
	}
	subject.StudyData = canonicalHours(subject.StudyData)
	return subject, nil
}

func (s *StudyService) view(ctx context.Context, userID, name string) (*SubjectView, error) {
	subject, err := s.getSubject(ctx, userID, name)
	if err != nil {
		return nil, err
	}
	return &SubjectView{Name: name, Subject: subject, Progress: study.ComputeProgress(subject)}, nil
}

func (s *StudyService) AddSubject(ctx context.Context, userID, name string, targetHours float64) (*SubjectView, error) {
	name, err := study.CheckName(name)
	if err != nil {
		return nil, invalid("name", err.Error())
	}
	if err := study.CheckTarget(targetHours); err != nil {
		return nil, invalid("targetHours", err.Error())
	}

	_, err = s.getSubject(ctx, userID, name)
	switch {
	case err == nil:
		return nil, ErrSubjectExists
	case !isSubjectNotFound(err):
		return nil, err
	}

	doc := store.Document{"targetHours": targetHours, "studyData": map[string]any{}}
	if err := s.docs.Put(ctx, userID, study.Collection, name, doc); err != nil {
		return nil, fmt.Errorf("failed to add subject: %w", err)
	}
	savedDocuments.WithLabelValues(study.Collection).Inc()
	return s.view(ctx, userID, name)
}

func (s *StudyService) DeleteSubject(ctx context.Context, userID, name string) error {
	name, err := study.CheckName(name)
	if err != nil {
		return invalid("name", err.Error())
	}
	if _, err := s.getSubject(ctx, userID, name); err != nil {
		return err
	}
	if err := s.docs.Delete(ctx, userID, study.Collection, name); err != nil {
		return fmt.Errorf("failed to delete subject: %w", err)
	}
	return nil
}

func (s *StudyService) SetTargetHours(ctx context.Context, userID, name string, targetHours float64) (*SubjectView, error) {
	name, err := study.CheckName(name)
	if err != nil {
		return nil, invalid("name", err.Error())
	}
	if err := study.CheckTarget(targetHours); err != nil {
		return nil, invalid("targetHours", err.Error())
	}
	if _, err := s.getSubject(ctx, userID, name); err != nil {
		return nil, err
	}

	if err := s.docs.Put(ctx, userID, study.Collection, name, store.Document{"targetHours": targetHours}); err != nil {
		return nil, fmt.Errorf("failed to set target hours: %w", err)
	}
	savedDocuments.WithLabelValues(study.Collection).Inc()
	return s.view(ctx, userID, name)
}

// LogHours sets the hours studied on one date, replacing any earlier value
// for that date.
func (s *StudyService) LogHours(ctx context.Context, userID, name, date string, hours float64) (*SubjectView, error) {
	name, err := study.CheckName(name)
	if err != nil {
		return nil, invalid("name", err.Error())
	}
	key, err := calendar.CanonicalKey(date)
	if err != nil {
		return nil, err
	}
	if err := study.CheckHours(hours); err != nil {
		return nil, invalid("hours", err.Error())
	}
	if _, err := s.getSubject(ctx, userID, name); err != nil {
		return nil, err
	}

	partial := store.Document{"studyData": map[string]any{key: hours}}
	if err := s.docs.Put(ctx, userID, study.Collection, name, partial); err != nil {
		return nil, fmt.Errorf("failed to log hours: %w", err)
	}
	savedDocuments.WithLabelValues(study.Collection).Inc()
	return s.view(ctx, userID, name)
}

func (s *StudyService) MonthView(ctx context.Context, userID, name string, q MonthQuery) (*caltypes.CalendarResponse, error) {
	name, err := study.CheckName(name)
	if err != nil {
		return nil, invalid("name", err.Error())
	}
	subject, err := s.getSubject(ctx, userID, name)
	if err != nil {
		return nil, err
	}

	marked := make(map[string]bool, len(subject.StudyData))
	for key, hours := range subject.StudyData {
		if hours > 0 {
			marked[key] = true
		}
	}

	return buildMonthView(q, marked, len(subject.StudyData), s.now(), monthMessages{
		empty: fmt.Sprintf("No study hours logged for %s yet.", name),
		summary: func(total int) string {
			return fmt.Sprintf("Total study days: %d", total)
		},
	}), nil
}
