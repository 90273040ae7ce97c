package session

import (
	"github.com/lumen-edu/quiz-session-service/internal/models"
)

// ReviewView is everything the review screen needs: the stored score, the
// question set to display (annotated when the review fetch succeeded), and
// the per-question correctness reconciliation.
type ReviewView struct {
	Result  models.SubmittedResult `json:"result"`
	Set     models.ReviewSet       `json:"set"`
	Correct map[uint]bool          `json:"correct"`
}

// Review returns the review view. The annotated set is populated
// asynchronously after submission; until then (or if that fetch failed)
// the view falls back to the unannotated taking-stage set, so callers
// always get a renderable value rather than an error branch.
func (s *Session) Review() (*ReviewView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stage != models.StageReview || s.result == nil {
		return nil, ErrNotInReview
	}

	set := models.ReviewSet{Questions: s.questionSet}
	if s.reviewQuestions != nil {
		set = models.ReviewSet{Questions: s.reviewQuestions, Annotated: true}
	}

	correct := make(map[uint]bool, len(set.Questions))
	for i := range set.Questions {
		q := &set.Questions[i]
		correct[q.ID] = answeredCorrectly(q, s.answers)
	}

	return &ReviewView{
		Result:  *s.result,
		Set:     set,
		Correct: correct,
	}, nil
}

// answeredCorrectly reconciles one question against the answer map: the
// question counts as correct iff an answer exists for it, that option id
// belongs to the question, and the option is flagged correct. Computed per
// question; the aggregate score is never used to reconstruct this, since
// the review set may differ from the scored taking set.
func answeredCorrectly(q *models.Question, answers models.AnswerMap) bool {
	optionID, ok := answers[q.ID]
	if !ok {
		return false
	}
	for i := range q.Options {
		if q.Options[i].ID == optionID {
			return q.Options[i].Correct()
		}
	}
	return false
}
