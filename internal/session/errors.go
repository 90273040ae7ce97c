package session

import "errors"

var (
	// ErrAlreadyStarted is returned when Start is called while a quiz is
	// already being taken or reviewed.
	ErrAlreadyStarted = errors.New("session: quiz already started")

	// ErrNotTaking is returned for operations that require an active
	// taking-stage quiz. It indicates a caller defect, not user input.
	ErrNotTaking = errors.New("session: no quiz in progress")

	// ErrNotInReview is returned when review data is requested before a
	// submission has completed.
	ErrNotInReview = errors.New("session: no submitted quiz to review")

	// ErrNoQuestions is returned when the question fetch for an exam
	// yields an empty set; the session stays in list stage.
	ErrNoQuestions = errors.New("session: exam has no questions")

	// ErrUnknownQuestion is returned when an answer targets a question
	// that is not part of the current question set.
	ErrUnknownQuestion = errors.New("session: question not in current set")

	// ErrUnknownOption is returned when the selected option does not
	// belong to the targeted question.
	ErrUnknownOption = errors.New("session: option does not belong to question")

	// ErrIndexOutOfRange is returned for jumps to a question index outside
	// the current set. Step navigation clamps instead.
	ErrIndexOutOfRange = errors.New("session: question index out of range")
)
