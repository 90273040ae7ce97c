package models

import "time"

type ExamStatus string

const (
	ExamDraft      ExamStatus = "draft"
	ExamProcessing ExamStatus = "processing"
	ExamPublished  ExamStatus = "published"
)

// Exam is the catalog entry returned by the upstream exam API. It is
// immutable from the session's point of view; only published exams are
// offered for selection.
type Exam struct {
	ID            uint       `json:"id"`
	Name          string     `json:"name"`
	Status        ExamStatus `json:"status"`
	QuestionCount int        `json:"questionCount"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// IsPublished reports whether the exam may be offered to students.
func (e *Exam) IsPublished() bool {
	return e.Status == ExamPublished
}
