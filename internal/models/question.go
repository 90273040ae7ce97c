package models

type DifficultyLevel string

const (
	DifficultyEasy   DifficultyLevel = "easy"
	DifficultyMedium DifficultyLevel = "medium"
	DifficultyHard   DifficultyLevel = "hard"
)

// Option is a single answer choice. IsCorrect is only populated on
// review-mode fetches; on taking-mode fetches it must be nil.
type Option struct {
	ID        uint   `json:"id"`
	Text      string `json:"text"`
	IsCorrect *bool  `json:"isCorrect,omitempty"`
}

// Correct reports whether the option is flagged correct. Unannotated
// options are never correct.
func (o *Option) Correct() bool {
	return o.IsCorrect != nil && *o.IsCorrect
}

type Question struct {
	ID             uint            `json:"id"`
	QuestionNumber int             `json:"questionNumber"`
	QuestionText   string          `json:"questionText"`
	Difficulty     DifficultyLevel `json:"difficulty"`
	Explanation    *string         `json:"answerExplanation,omitempty"`
	Options        []Option        `json:"options"`
}

// HasOption reports whether optionID belongs to the question's options.
func (q *Question) HasOption(optionID uint) bool {
	for i := range q.Options {
		if q.Options[i].ID == optionID {
			return true
		}
	}
	return false
}

// AnswerMap maps a question ID to the selected option ID. Absence of a key
// means unanswered; re-selection overwrites, entries are never removed.
// Integer keys marshal as JSON string keys, matching the upstream wire
// format.
type AnswerMap map[uint]uint

// Clone returns an independent copy of the map.
func (m AnswerMap) Clone() AnswerMap {
	out := make(AnswerMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
