package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lumen-edu/quiz-session-service/internal/services"
	"github.com/lumen-edu/quiz-session-service/internal/utils"
	"github.com/lumen-edu/quiz-session-service/internal/validator"
)

type QuizHandler struct {
	BaseHandler
	quizService services.QuizService
}

func NewQuizHandler(quizService services.QuizService, logger utils.Logger) *QuizHandler {
	return &QuizHandler{
		BaseHandler: NewBaseHandler(logger),
		quizService: quizService,
	}
}

// StartQuiz launches a quiz for the selected exam
// @Summary Start a quiz
// @Accept json
// @Produce json
// @Param quiz body validator.StartQuizRequest true "Exam selection"
// @Success 201 {object} services.QuizStateResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /quiz/start [post]
func (h *QuizHandler) StartQuiz(c *gin.Context) {
	h.LogRequest(c, "Starting quiz")

	var req validator.StartQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "bad_request",
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	studentID, ok := h.studentID(c)
	if !ok {
		return
	}

	state, err := h.quizService.StartQuiz(c.Request.Context(), studentID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, state)
}

// SelectAnswer records an option selection
// @Summary Select an answer
// @Accept json
// @Produce json
// @Param answer body validator.SelectAnswerRequest true "Answer selection"
// @Success 200 {object} services.QuizStateResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /quiz/answer [post]
func (h *QuizHandler) SelectAnswer(c *gin.Context) {
	var req validator.SelectAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "bad_request",
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	studentID, ok := h.studentID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Selecting answer",
		"question_id", req.QuestionID,
		"option_id", req.OptionID)

	state, err := h.quizService.SelectAnswer(c.Request.Context(), studentID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, state)
}

// NextQuestion advances to the following question
// @Summary Go to next question
// @Produce json
// @Success 200 {object} services.QuizStateResponse
// @Failure 409 {object} ErrorResponse
// @Router /quiz/next [post]
func (h *QuizHandler) NextQuestion(c *gin.Context) {
	studentID, ok := h.studentID(c)
	if !ok {
		return
	}

	state, err := h.quizService.Next(c.Request.Context(), studentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, state)
}

// PreviousQuestion moves to the preceding question
// @Summary Go to previous question
// @Produce json
// @Success 200 {object} services.QuizStateResponse
// @Failure 409 {object} ErrorResponse
// @Router /quiz/previous [post]
func (h *QuizHandler) PreviousQuestion(c *gin.Context) {
	studentID, ok := h.studentID(c)
	if !ok {
		return
	}

	state, err := h.quizService.Previous(c.Request.Context(), studentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, state)
}

// GotoQuestion jumps directly to a question index
// @Summary Jump to question
// @Accept json
// @Produce json
// @Param jump body validator.JumpRequest true "Target index"
// @Success 200 {object} services.QuizStateResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /quiz/goto [post]
func (h *QuizHandler) GotoQuestion(c *gin.Context) {
	var req validator.JumpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "bad_request",
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	studentID, ok := h.studentID(c)
	if !ok {
		return
	}

	state, err := h.quizService.Jump(c.Request.Context(), studentID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, state)
}

// SubmitQuiz submits the quiz for scoring
// @Summary Submit quiz
// @Produce json
// @Success 200 {object} services.QuizStateResponse
// @Failure 409 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /quiz/submit [post]
func (h *QuizHandler) SubmitQuiz(c *gin.Context) {
	studentID, ok := h.studentID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Submitting quiz", "student_id", studentID)

	state, err := h.quizService.Submit(c.Request.Context(), studentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, state)
}

// GetReview returns the reconciled review view
// @Summary Get quiz review
// @Produce json
// @Success 200 {object} services.ReviewResponse
// @Failure 409 {object} ErrorResponse
// @Router /quiz/review [get]
func (h *QuizHandler) GetReview(c *gin.Context) {
	studentID, ok := h.studentID(c)
	if !ok {
		return
	}

	review, err := h.quizService.Review(c.Request.Context(), studentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, review)
}

// ResetQuiz abandons the current quiz and returns to the exam list
// @Summary Reset quiz
// @Produce json
// @Success 200 {object} SuccessResponse
// @Router /quiz/reset [post]
func (h *QuizHandler) ResetQuiz(c *gin.Context) {
	studentID, ok := h.studentID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Resetting quiz", "student_id", studentID)

	if err := h.quizService.Reset(c.Request.Context(), studentID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "quiz reset"})
}

// GetState returns the current session state
// @Summary Get quiz state
// @Produce json
// @Success 200 {object} services.QuizStateResponse
// @Router /quiz/state [get]
func (h *QuizHandler) GetState(c *gin.Context) {
	studentID, ok := h.studentID(c)
	if !ok {
		return
	}

	state, err := h.quizService.GetState(c.Request.Context(), studentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, state)
}

// GetTimeRemaining returns the countdown budget left
// @Summary Get remaining time
// @Produce json
// @Success 200 {object} SuccessResponse
// @Failure 409 {object} ErrorResponse
// @Router /quiz/time-remaining [get]
func (h *QuizHandler) GetTimeRemaining(c *gin.Context) {
	studentID, ok := h.studentID(c)
	if !ok {
		return
	}

	remaining, err := h.quizService.GetTimeRemaining(c.Request.Context(), studentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"remainingSeconds": remaining})
}
