package services

import (
	"context"
	"errors"

	"github.com/lumen-edu/quiz-session-service/internal/models"
	"github.com/lumen-edu/quiz-session-service/internal/validator"
)

// Service-level errors
var (
	ErrExamNotFound     = errors.New("exam not found")
	ErrExamNotPublished = errors.New("exam is not published")
	ErrQuizInProgress   = errors.New("another quiz is already in progress")
)

// QuizStateResponse is the session state returned to the client after
// every operation.
type QuizStateResponse struct {
	Stage            models.Stage            `json:"stage"`
	Exam             *models.Exam            `json:"exam,omitempty"`
	Questions        []models.Question       `json:"questions,omitempty"`
	Answers          models.AnswerMap        `json:"answers,omitempty"`
	CurrentIndex     int                     `json:"currentIndex"`
	RemainingSeconds int                     `json:"remainingSeconds"`
	Result           *models.SubmittedResult `json:"result,omitempty"`
}

// ReviewResponse is the reconciled post-submission view. Correct maps
// each question id to whether the student's recorded answer hit the
// flagged option; unanswered questions are present and false.
type ReviewResponse struct {
	Result    models.SubmittedResult `json:"result"`
	Questions []models.Question      `json:"questions"`
	Annotated bool                   `json:"annotated"`
	Correct   map[uint]bool          `json:"correct"`
	Answers   models.AnswerMap       `json:"answers"`
}

// QuizService drives one quiz session per student.
type QuizService interface {
	// Exam catalog
	ListExams(ctx context.Context) ([]models.Exam, error)

	// Lifecycle
	StartQuiz(ctx context.Context, studentID string, req *validator.StartQuizRequest) (*QuizStateResponse, error)
	Submit(ctx context.Context, studentID string) (*QuizStateResponse, error)
	Review(ctx context.Context, studentID string) (*ReviewResponse, error)
	Reset(ctx context.Context, studentID string) error

	// Taking-stage operations
	SelectAnswer(ctx context.Context, studentID string, req *validator.SelectAnswerRequest) (*QuizStateResponse, error)
	Next(ctx context.Context, studentID string) (*QuizStateResponse, error)
	Previous(ctx context.Context, studentID string) (*QuizStateResponse, error)
	Jump(ctx context.Context, studentID string, req *validator.JumpRequest) (*QuizStateResponse, error)

	// State
	GetState(ctx context.Context, studentID string) (*QuizStateResponse, error)
	GetTimeRemaining(ctx context.Context, studentID string) (int, error)
}
