package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar date format used by the record files and exports.
const DateLayout = "2006-01-02"

// HomeworkStatus is the submission state of a student's homework
type HomeworkStatus string

const (
	HomeworkSubmitted HomeworkStatus = "submitted"
	HomeworkPending   HomeworkStatus = "pending"
)

// homeworkSynonyms maps the spellings seen in source data and questions to a status.
var homeworkSynonyms = map[string]HomeworkStatus{
	"submitted":         HomeworkSubmitted,
	"completed":         HomeworkSubmitted,
	"complete":          HomeworkSubmitted,
	"done":              HomeworkSubmitted,
	"pending":           HomeworkPending,
	"not_submitted":     HomeworkPending,
	"not submitted":     HomeworkPending,
	"not-submitted":     HomeworkPending,
	"haven't submitted": HomeworkPending,
	"incomplete":        HomeworkPending,
	"missing":           HomeworkPending,
}

// ParseHomeworkStatus normalizes a homework status spelling.
func ParseHomeworkStatus(s string) (HomeworkStatus, error) {
	if status, ok := homeworkSynonyms[strings.ToLower(strings.TrimSpace(s))]; ok {
		return status, nil
	}
	return "", fmt.Errorf("unknown homework status %q", s)
}

func (h *HomeworkStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("homework_status must be a string: %w", err)
	}
	status, err := ParseHomeworkStatus(raw)
	if err != nil {
		return err
	}
	*h = status
	return nil
}

// Date is a calendar date without a time of day.
type Date struct {
	time.Time
}

// NewDate returns the date for the given year, month and day in UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD date. A trailing time component is tolerated and discarded.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if len(s) > len(DateLayout) && (s[len(DateLayout)] == 'T' || s[len(DateLayout)] == ' ') {
		s = s[:len(DateLayout)]
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date{t}, nil
}

// DateOf truncates t to its calendar date.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// AddDays returns the date n days later (earlier for negative n).
func (d Date) AddDays(n int) Date {
	return Date{d.Time.AddDate(0, 0, n)}
}

// Compare returns -1, 0 or +1.
func (d Date) Compare(other Date) int {
	switch {
	case d.Before(other.Time):
		return -1
	case d.After(other.Time):
		return 1
	}
	return 0
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	parsed, err := ParseDate(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// StudentRecord is one row of the read-only student data set
type StudentRecord struct {
	StudentID      string         `json:"student_id" validate:"required"`
	StudentName    string         `json:"student_name" validate:"required"`
	Grade          int            `json:"grade" validate:"min=1"`
	Class          string         `json:"class" validate:"required"`
	Region         string         `json:"region" validate:"required"`
	QuizScore      int            `json:"quiz_score" validate:"min=0,max=100"`
	HomeworkStatus HomeworkStatus `json:"homework_status" validate:"oneof=submitted pending"`
	Date           Date           `json:"date"`
}
