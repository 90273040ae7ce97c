package validator

// StartQuizRequest launches a quiz for the selected exam.
type StartQuizRequest struct {
	ExamID uint `json:"examId" validate:"required,entity_id"`
}

// SelectAnswerRequest records an option selection for a question.
type SelectAnswerRequest struct {
	QuestionID uint `json:"questionId" validate:"required,entity_id"`
	OptionID   uint `json:"optionId" validate:"required,entity_id"`
}

// JumpRequest navigates directly to a question index. The index is a
// pointer so zero survives the required check.
type JumpRequest struct {
	Index *int `json:"index" validate:"required,min=0"`
}
