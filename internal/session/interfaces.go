package session

import (
	"context"

	"github.com/lumen-edu/quiz-session-service/internal/models"
)

// ExamCatalog lists the exams offered by the upstream exam API. Callers
// are expected to filter to published exams before offering selection;
// the session trusts that contract.
type ExamCatalog interface {
	ListExams(ctx context.Context) ([]models.Exam, error)
}

// Submission is the payload scored by the upstream exam API.
type Submission struct {
	ExamID          uint             `json:"examId"`
	StudentID       string           `json:"studentId"`
	Answers         models.AnswerMap `json:"answers"`
	DurationSeconds int              `json:"durationSeconds"`
}

// QuestionService fetches question sets and scores submissions. When
// revealCorrect is false the returned options must not carry correctness
// flags; the session additionally scrubs them as a leak guard.
type QuestionService interface {
	GetQuestions(ctx context.Context, examID uint, revealCorrect bool) ([]models.Question, error)
	Submit(ctx context.Context, sub Submission) (*models.SubmittedResult, error)
}
