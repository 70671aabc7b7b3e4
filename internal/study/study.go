// Package study holds the Stutra subjects: a target number of hours and the
// hours logged per day.
package study

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const Collection = "subjects"

const MaxHoursPerDay = 24

var (
	ErrInvalidName   = errors.New("subject name must be 1 to 50 characters without '/'")
	ErrInvalidHours  = fmt.Errorf("hours must be between 0 and %d", MaxHoursPerDay)
	ErrInvalidTarget = errors.New("target hours cannot be negative")
)

// Subject is the stored document of one subject. StudyData is keyed by
// ISO date.
type Subject struct {
	TargetHours float64            `json:"targetHours"`
	StudyData   map[string]float64 `json:"studyData"`
}

type Progress struct {
	ProgressPercentage float64 `json:"progressPercentage"`
	TotalStudyDays     int     `json:"totalStudyDays"`
	TotalStudyHours    float64 `json:"totalStudyHours"`
}

// CheckName trims a subject name and rejects names that cannot be used as a
// document key.
func CheckName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || len([]rune(name)) > 50 || strings.Contains(name, "/") {
		return "", ErrInvalidName
	}
	return name, nil
}

func CheckHours(h float64) error {
	if h < 0 || h > MaxHoursPerDay {
		return fmt.Errorf("%w: got %g", ErrInvalidHours, h)
	}
	return nil
}

func CheckTarget(h float64) error {
	if h < 0 {
		return ErrInvalidTarget
	}
	return nil
}

// ComputeProgress sums every logged day. The percentage is zero while no
// target is set and is not capped at 100.
func ComputeProgress(s Subject) Progress {
	var p Progress
	for _, hours := range s.StudyData {
		p.TotalStudyDays++
		p.TotalStudyHours += hours
	}
	if s.TargetHours > 0 {
		p.ProgressPercentage = p.TotalStudyHours / s.TargetHours * 100
	}
	return p
}

// FromDocument decodes a stored subject document.
func FromDocument(doc map[string]any) (Subject, error) {
	s := Subject{StudyData: map[string]float64{}}
	if len(doc) == 0 {
		return s, nil
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return s, fmt.Errorf("failed to encode subject document: %w", err)
	}
	if err := json.Unmarshal(raw, &s); err != nil {
		return s, fmt.Errorf("failed to decode subject document: %w", err)
	}
	if s.StudyData == nil {
		s.StudyData = map[string]float64{}
	}
	return s, nil
}
