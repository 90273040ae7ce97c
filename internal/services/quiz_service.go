package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/lumen-edu/quiz-session-service/internal/events"
	"github.com/lumen-edu/quiz-session-service/internal/models"
	"github.com/lumen-edu/quiz-session-service/internal/session"
	"github.com/lumen-edu/quiz-session-service/internal/validator"
)

type quizService struct {
	catalog   session.ExamCatalog
	questions session.QuestionService
	publisher events.EventPublisher
	validator *validator.QuizValidator
	logger    *slog.Logger
	quizCfg   session.Config

	mu       sync.Mutex
	sessions map[string]*session.Session
}

// NewQuizService builds the session registry. Each student gets at most
// one live session; sessions are created lazily on first use.
func NewQuizService(
	catalog session.ExamCatalog,
	questions session.QuestionService,
	publisher events.EventPublisher,
	v *validator.QuizValidator,
	logger *slog.Logger,
	quizCfg session.Config,
) QuizService {
	return &quizService{
		catalog:   catalog,
		questions: questions,
		publisher: publisher,
		validator: v,
		logger:    logger.With("component", "quiz_service"),
		quizCfg:   quizCfg,
		sessions:  make(map[string]*session.Session),
	}
}

// sessionFor returns the student's session, creating it on first use. The
// submission hook is bound per student so timed auto-submits publish the
// same event as manual ones.
func (s *quizService) sessionFor(studentID string) *session.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[studentID]; ok {
		return sess
	}

	cfg := s.quizCfg
	cfg.OnSubmitted = func(sub session.Submission, result models.SubmittedResult, timed bool) {
		s.publishSubmitted(sub, result, timed)
	}
	sess := session.New(studentID, s.questions, cfg, s.logger)
	s.sessions[studentID] = sess
	return sess
}

func (s *quizService) publishSubmitted(sub session.Submission, result models.SubmittedResult, timed bool) {
	err := s.publisher.PublishEvent(context.Background(), events.EventQuizSubmitted, events.QuizSubmittedData{
		StudentID:       sub.StudentID,
		ExamID:          sub.ExamID,
		Score:           result.Score,
		CorrectCount:    result.CorrectCount,
		Total:           result.Total,
		AnsweredCount:   len(sub.Answers),
		DurationSeconds: sub.DurationSeconds,
		Timed:           timed,
	})
	if err != nil {
		s.logger.Error("Failed to publish quiz.submitted event",
			"student_id", sub.StudentID,
			"exam_id", sub.ExamID,
			"error", err)
	}
}

// ===== EXAM CATALOG =====

// ListExams returns the published exams a student may start.
func (s *quizService) ListExams(ctx context.Context) ([]models.Exam, error) {
	exams, err := s.catalog.ListExams(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load exam catalog: %w", err)
	}

	published := make([]models.Exam, 0, len(exams))
	for _, exam := range exams {
		if exam.IsPublished() {
			published = append(published, exam)
		}
	}
	return published, nil
}

// ===== LIFECYCLE =====

func (s *quizService) StartQuiz(ctx context.Context, studentID string, req *validator.StartQuizRequest) (*QuizStateResponse, error) {
	s.logger.Info("Starting quiz",
		"exam_id", req.ExamID,
		"student_id", studentID)

	if errs := s.validator.Validate(req); errs != nil {
		return nil, fmt.Errorf("validation failed: %w", errs)
	}

	exam, err := s.findExam(ctx, req.ExamID)
	if err != nil {
		return nil, err
	}

	sess := s.sessionFor(studentID)
	if err := sess.Start(ctx, *exam); err != nil {
		if errors.Is(err, session.ErrAlreadyStarted) {
			// Same exam still being taken: hand back the live state so a
			// reconnecting client resumes instead of erroring.
			snap := sess.Snapshot()
			if snap.Stage == models.StageTaking && snap.Exam != nil && snap.Exam.ID == exam.ID {
				return stateFromSnapshot(snap), nil
			}
			return nil, ErrQuizInProgress
		}
		return nil, err
	}

	if pubErr := s.publisher.PublishEvent(ctx, events.EventQuizStarted, events.QuizStartedData{
		StudentID:     studentID,
		ExamID:        exam.ID,
		ExamName:      exam.Name,
		QuestionCount: exam.QuestionCount,
	}); pubErr != nil {
		s.logger.Error("Failed to publish quiz.started event",
			"exam_id", exam.ID, "error", pubErr)
	}

	return s.state(studentID), nil
}

func (s *quizService) findExam(ctx context.Context, examID uint) (*models.Exam, error) {
	exams, err := s.catalog.ListExams(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load exam catalog: %w", err)
	}
	for i := range exams {
		if exams[i].ID == examID {
			if !exams[i].IsPublished() {
				return nil, ErrExamNotPublished
			}
			return &exams[i], nil
		}
	}
	return nil, ErrExamNotFound
}

func (s *quizService) Submit(ctx context.Context, studentID string) (*QuizStateResponse, error) {
	if err := s.sessionFor(studentID).Submit(ctx); err != nil {
		return nil, err
	}
	return s.state(studentID), nil
}

func (s *quizService) Review(ctx context.Context, studentID string) (*ReviewResponse, error) {
	sess := s.sessionFor(studentID)
	view, err := sess.Review()
	if err != nil {
		return nil, err
	}

	snap := sess.Snapshot()
	return &ReviewResponse{
		Result:    view.Result,
		Questions: view.Set.Questions,
		Annotated: view.Set.Annotated,
		Correct:   view.Correct,
		Answers:   snap.Answers,
	}, nil
}

func (s *quizService) Reset(ctx context.Context, studentID string) error {
	sess := s.sessionFor(studentID)
	snap := sess.Snapshot()
	sess.Reset()

	if snap.Exam != nil {
		if err := s.publisher.PublishEvent(ctx, events.EventQuizReset, events.QuizResetData{
			StudentID: studentID,
			ExamID:    snap.Exam.ID,
		}); err != nil {
			s.logger.Error("Failed to publish quiz.reset event",
				"exam_id", snap.Exam.ID, "error", err)
		}
	}
	return nil
}

// ===== TAKING-STAGE OPERATIONS =====

func (s *quizService) SelectAnswer(ctx context.Context, studentID string, req *validator.SelectAnswerRequest) (*QuizStateResponse, error) {
	if errs := s.validator.Validate(req); errs != nil {
		return nil, fmt.Errorf("validation failed: %w", errs)
	}
	if err := s.sessionFor(studentID).SelectAnswer(req.QuestionID, req.OptionID); err != nil {
		return nil, err
	}
	return s.state(studentID), nil
}

func (s *quizService) Next(ctx context.Context, studentID string) (*QuizStateResponse, error) {
	if err := s.sessionFor(studentID).Next(); err != nil {
		return nil, err
	}
	return s.state(studentID), nil
}

func (s *quizService) Previous(ctx context.Context, studentID string) (*QuizStateResponse, error) {
	if err := s.sessionFor(studentID).Previous(); err != nil {
		return nil, err
	}
	return s.state(studentID), nil
}

func (s *quizService) Jump(ctx context.Context, studentID string, req *validator.JumpRequest) (*QuizStateResponse, error) {
	if errs := s.validator.Validate(req); errs != nil {
		return nil, fmt.Errorf("validation failed: %w", errs)
	}
	if err := s.sessionFor(studentID).Jump(*req.Index); err != nil {
		return nil, err
	}
	return s.state(studentID), nil
}

// ===== STATE =====

func (s *quizService) GetState(ctx context.Context, studentID string) (*QuizStateResponse, error) {
	return s.state(studentID), nil
}

func (s *quizService) GetTimeRemaining(ctx context.Context, studentID string) (int, error) {
	sess := s.sessionFor(studentID)
	if sess.Stage() != models.StageTaking {
		return 0, session.ErrNotTaking
	}
	return sess.RemainingSeconds(), nil
}

func (s *quizService) state(studentID string) *QuizStateResponse {
	return stateFromSnapshot(s.sessionFor(studentID).Snapshot())
}

func stateFromSnapshot(snap session.Snapshot) *QuizStateResponse {
	return &QuizStateResponse{
		Stage:            snap.Stage,
		Exam:             snap.Exam,
		Questions:        snap.Questions,
		Answers:          snap.Answers,
		CurrentIndex:     snap.CurrentIndex,
		RemainingSeconds: snap.RemainingSeconds,
		Result:           snap.Result,
	}
}
