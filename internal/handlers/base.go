package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lumen-edu/quiz-session-service/internal/services"
	"github.com/lumen-edu/quiz-session-service/internal/session"
	"github.com/lumen-edu/quiz-session-service/internal/utils"
	"github.com/lumen-edu/quiz-session-service/internal/validator"
)

// ErrorResponse is the error body returned by every handler.
type ErrorResponse struct {
	Error   string      `json:"error"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// SuccessResponse wraps non-entity responses.
type SuccessResponse struct {
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// BaseHandler carries the pieces every handler needs.
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

// LogRequest logs the handled operation with the request-scoped logger.
func (h *BaseHandler) LogRequest(c *gin.Context, msg string, args ...any) {
	utils.FromContext(c, h.logger).Info(msg, args...)
}

// studentID extracts the authenticated user's id set by the auth
// middleware. Writes the 401 response itself when absent.
func (h *BaseHandler) studentID(c *gin.Context) (string, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "User not authenticated",
		})
		return "", false
	}
	id, ok := userID.(string)
	if !ok || id == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "Invalid user identity",
		})
		return "", false
	}
	return id, true
}

// handleServiceError maps service and session errors to HTTP statuses.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_failed",
			Message: "Request validation failed",
			Details: validationErrs,
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrExamNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: "Exam not found",
		})
	case errors.Is(err, services.ErrExamNotPublished):
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "exam_not_published",
			Message: "Exam is not published",
		})
	case errors.Is(err, services.ErrQuizInProgress):
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "quiz_in_progress",
			Message: "Another quiz is already in progress",
		})
	case errors.Is(err, session.ErrAlreadyStarted):
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "quiz_in_progress",
			Message: "A quiz is already in progress",
		})
	case errors.Is(err, session.ErrNotTaking):
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "no_active_quiz",
			Message: "No quiz in progress",
		})
	case errors.Is(err, session.ErrNotInReview):
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "no_review",
			Message: "No submitted quiz to review",
		})
	case errors.Is(err, session.ErrNoQuestions):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "empty_exam",
			Message: "Exam has no questions",
		})
	case errors.Is(err, session.ErrUnknownQuestion),
		errors.Is(err, session.ErrUnknownOption),
		errors.Is(err, session.ErrIndexOutOfRange):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_reference",
			Message: err.Error(),
		})
	default:
		utils.FromContext(c, h.logger).Error("Unhandled service error", "error", err)
		c.JSON(http.StatusBadGateway, ErrorResponse{
			Error:   "upstream_error",
			Message: "Operation failed",
		})
	}
}
