package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lumen-edu/quiz-session-service/internal/services"
	"github.com/lumen-edu/quiz-session-service/internal/utils"
)

type ExamHandler struct {
	BaseHandler
	quizService services.QuizService
}

func NewExamHandler(quizService services.QuizService, logger utils.Logger) *ExamHandler {
	return &ExamHandler{
		BaseHandler: NewBaseHandler(logger),
		quizService: quizService,
	}
}

// ListExams returns the published exams available to the student
// @Summary List available exams
// @Produce json
// @Success 200 {object} SuccessResponse
// @Failure 502 {object} ErrorResponse
// @Router /exams [get]
func (h *ExamHandler) ListExams(c *gin.Context) {
	h.LogRequest(c, "Listing exams")

	exams, err := h.quizService.ListExams(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Data: exams})
}
