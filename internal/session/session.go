package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lumen-edu/quiz-session-service/internal/models"
)

// submitState is the tri-state gate resolving the race between a manual
// submit and timer expiry. It is checked before the network call is issued
// and set before the call is awaited, all under the session mutex.
type submitState int

const (
	submitIdle submitState = iota
	submitInFlight
	submitDone
)

const reviewFetchTimeout = 15 * time.Second

// Config carries the timing policy for a session. Duration is the total
// answering budget; TickInterval is the countdown granularity and exists
// so tests can compress time. OnSubmitted, when set, runs on the
// submitting goroutine after every successful submission, whether manual
// or timer-driven, outside the session mutex.
type Config struct {
	Duration     time.Duration
	TickInterval time.Duration
	OnSubmitted  func(sub Submission, result models.SubmittedResult, timed bool)
}

func (c Config) withDefaults() Config {
	if c.Duration <= 0 {
		c.Duration = time.Hour
	}
	if c.TickInterval <= 0 {
		c.TickInterval = time.Second
	}
	return c
}

// Session owns one student's quiz lifecycle: list → taking → review and
// back to list. All state is guarded by a single mutex; the countdown and
// the post-submission review fetch re-enter through generation-checked
// callbacks so work scheduled for an abandoned run can never touch a newer
// one.
type Session struct {
	studentID string
	questions QuestionService
	cfg       Config
	logger    *slog.Logger

	mu              sync.Mutex
	stage           models.Stage
	exam            *models.Exam
	questionSet     []models.Question
	reviewQuestions []models.Question
	answers         models.AnswerMap
	current         int
	startedAt       time.Time
	remaining       int
	result          *models.SubmittedResult
	submit          submitState
	timer           *countdown
	generation      uint64
}

// New creates a session in the list stage for the given student. The
// student identity is injected here, never read from ambient state.
func New(studentID string, questions QuestionService, cfg Config, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		studentID: studentID,
		questions: questions,
		cfg:       cfg.withDefaults(),
		logger:    logger.With("component", "quiz_session", "student_id", studentID),
		stage:     models.StageList,
	}
}

// StudentID returns the identity the session submits under.
func (s *Session) StudentID() string {
	return s.studentID
}

// Start transitions list → taking for the given exam: fetches the question
// set without correctness annotations, resets the answer map and cursor,
// and arms the countdown. The caller is responsible for offering only
// published exams. On any failure the session stays in the list stage.
func (s *Session) Start(ctx context.Context, exam models.Exam) error {
	s.mu.Lock()
	if s.stage != models.StageList {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	s.mu.Unlock()

	qs, err := s.questions.GetQuestions(ctx, exam.ID, false)
	if err != nil {
		return fmt.Errorf("failed to fetch questions for exam %d: %w", exam.ID, err)
	}
	if len(qs) == 0 {
		return ErrNoQuestions
	}
	scrubCorrectness(qs)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stage != models.StageList {
		// Lost a start race; the other start owns the session now.
		return ErrAlreadyStarted
	}

	total := int(s.cfg.Duration / time.Second)
	gen := s.generation

	examCopy := exam
	s.stage = models.StageTaking
	s.exam = &examCopy
	s.questionSet = qs
	s.reviewQuestions = nil
	s.answers = make(models.AnswerMap)
	s.current = 0
	s.startedAt = time.Now()
	s.remaining = total
	s.result = nil
	s.submit = submitIdle
	s.timer = startCountdown(total, s.cfg.TickInterval,
		func(remaining int) { s.onTick(gen, remaining) },
		func() { s.onExpire(gen) },
	)

	s.logger.Info("Quiz started",
		"exam_id", exam.ID,
		"question_count", len(qs),
		"duration_seconds", total)
	return nil
}

// SelectAnswer records the selected option for a question, overwriting any
// previous selection. Unknown question or option ids fail loudly: they
// indicate a defect in the caller, not user input.
func (s *Session) SelectAnswer(questionID, optionID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stage != models.StageTaking {
		return ErrNotTaking
	}

	q := s.findQuestion(questionID)
	if q == nil {
		return ErrUnknownQuestion
	}
	if !q.HasOption(optionID) {
		return ErrUnknownOption
	}

	s.answers[questionID] = optionID
	return nil
}

// Next advances to the following question, clamped at the last one.
func (s *Session) Next() error {
	return s.step(1)
}

// Previous moves to the preceding question, clamped at the first one.
func (s *Session) Previous() error {
	return s.step(-1)
}

func (s *Session) step(delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stage != models.StageTaking {
		return ErrNotTaking
	}

	next := s.current + delta
	if next < 0 {
		next = 0
	}
	if next > len(s.questionSet)-1 {
		next = len(s.questionSet) - 1
	}
	s.current = next
	return nil
}

// Jump moves directly to the question at index, as the question-number
// navigation does. Unlike step navigation this does not clamp: an
// out-of-range index is a caller defect.
func (s *Session) Jump(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stage != models.StageTaking {
		return ErrNotTaking
	}
	if index < 0 || index >= len(s.questionSet) {
		return ErrIndexOutOfRange
	}
	s.current = index
	return nil
}

// Submit performs transition taking → review on behalf of the user. The
// same path serves timer expiry; whichever trigger arrives second finds
// the gate no longer idle and becomes a no-op.
func (s *Session) Submit(ctx context.Context) error {
	s.mu.Lock()
	gen := s.generation
	s.mu.Unlock()
	return s.doSubmit(ctx, gen, false)
}

func (s *Session) doSubmit(ctx context.Context, gen uint64, timed bool) error {
	s.mu.Lock()
	if gen != s.generation {
		// Stale trigger from a run that has since been reset.
		s.mu.Unlock()
		return nil
	}
	if s.stage == models.StageList {
		s.mu.Unlock()
		if timed {
			return nil
		}
		return ErrNotTaking
	}
	if s.submit != submitIdle || s.stage != models.StageTaking {
		// Already in flight or done; the second trigger is a no-op.
		s.mu.Unlock()
		return nil
	}

	s.submit = submitInFlight
	sub := Submission{
		ExamID:          s.exam.ID,
		StudentID:       s.studentID,
		Answers:         s.answers.Clone(),
		DurationSeconds: elapsedSeconds(s.startedAt),
	}
	s.mu.Unlock()

	result, err := s.questions.Submit(ctx, sub)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		// Session was reset while the call was in flight; discard.
		return nil
	}
	if err != nil {
		// Clear the gate so a later manual or timer-driven retry can
		// succeed; the countdown stays armed.
		s.submit = submitIdle
		return fmt.Errorf("failed to submit quiz for exam %d: %w", sub.ExamID, err)
	}

	s.submit = submitDone
	s.stage = models.StageReview
	s.result = result
	if s.timer != nil {
		s.timer.Stop()
	}

	s.logger.Info("Quiz submitted",
		"exam_id", sub.ExamID,
		"timed_out", timed,
		"score", result.Score,
		"correct", result.CorrectCount,
		"total", result.Total)

	// Score display never waits on the annotated review set.
	go s.fetchReview(gen, sub.ExamID)

	if s.cfg.OnSubmitted != nil {
		resultCopy := *result
		s.mu.Unlock()
		s.cfg.OnSubmitted(sub, resultCopy, timed)
		s.mu.Lock()
	}
	return nil
}

// fetchReview loads the correctness-annotated question set after a
// successful submission. Failure degrades to the unannotated taking set;
// a resolve landing after reset is discarded by the generation check.
func (s *Session) fetchReview(gen uint64, examID uint) {
	ctx, cancel := context.WithTimeout(context.Background(), reviewFetchTimeout)
	defer cancel()

	qs, err := s.questions.GetQuestions(ctx, examID, true)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation || s.stage != models.StageReview {
		return
	}
	if err != nil {
		s.logger.Warn("Review question fetch failed, showing unannotated set",
			"exam_id", examID, "error", err)
		return
	}
	s.reviewQuestions = qs
}

// Reset discards the session back to the list stage: disarms the timer,
// bumps the generation so in-flight work cannot rehydrate the session,
// and clears every field.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.generation++
	s.stage = models.StageList
	s.exam = nil
	s.questionSet = nil
	s.reviewQuestions = nil
	s.answers = nil
	s.current = 0
	s.startedAt = time.Time{}
	s.remaining = 0
	s.result = nil
	s.submit = submitIdle
}

// onTick records the remaining budget. Ticks delivered after the stage
// left taking are dropped.
func (s *Session) onTick(gen uint64, remaining int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation || s.stage != models.StageTaking {
		return
	}
	s.remaining = remaining
}

// onExpire drives the auto-submit when the countdown reaches zero. It
// shares the submission path (and its idempotency gate) with Submit.
func (s *Session) onExpire(gen uint64) {
	ctx, cancel := context.WithTimeout(context.Background(), reviewFetchTimeout)
	defer cancel()
	if err := s.doSubmit(ctx, gen, true); err != nil {
		s.logger.Error("Timed auto-submit failed", "error", err)
	}
}

func (s *Session) findQuestion(questionID uint) *models.Question {
	for i := range s.questionSet {
		if s.questionSet[i].ID == questionID {
			return &s.questionSet[i]
		}
	}
	return nil
}

// Snapshot is a consistent copy of the session state for rendering.
type Snapshot struct {
	Stage            models.Stage            `json:"stage"`
	Exam             *models.Exam            `json:"exam,omitempty"`
	Questions        []models.Question       `json:"questions,omitempty"`
	Answers          models.AnswerMap        `json:"answers,omitempty"`
	CurrentIndex     int                     `json:"currentIndex"`
	RemainingSeconds int                     `json:"remainingSeconds"`
	Result           *models.SubmittedResult `json:"result,omitempty"`
}

// Snapshot returns a copy of the current state. The slices share backing
// arrays with the session; they are never mutated after Start.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Stage:            s.stage,
		Questions:        s.questionSet,
		Answers:          s.answers.Clone(),
		CurrentIndex:     s.current,
		RemainingSeconds: s.remaining,
	}
	if s.exam != nil {
		examCopy := *s.exam
		snap.Exam = &examCopy
	}
	if s.result != nil {
		resultCopy := *s.result
		snap.Result = &resultCopy
	}
	return snap
}

// Stage returns the current lifecycle stage.
func (s *Session) Stage() models.Stage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stage
}

// RemainingSeconds returns the countdown budget left. Once the stage
// leaves taking the value is inert.
func (s *Session) RemainingSeconds() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remaining
}

func elapsedSeconds(start time.Time) int {
	if start.IsZero() {
		return 0
	}
	elapsed := int(time.Since(start) / time.Second)
	if elapsed < 0 {
		elapsed = 0
	}
	return elapsed
}

// scrubCorrectness strips correctness flags from a taking-stage fetch.
// The upstream API must not send them on that path; scrubbing guards
// against an answer leak if it ever does.
func scrubCorrectness(qs []models.Question) {
	for i := range qs {
		for j := range qs[i].Options {
			qs[i].Options[j].IsCorrect = nil
		}
	}
}
