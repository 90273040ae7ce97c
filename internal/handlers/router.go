package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lumen-edu/quiz-session-service/internal/config"
	"github.com/lumen-edu/quiz-session-service/internal/models"
	"github.com/lumen-edu/quiz-session-service/internal/repositories"
	"github.com/lumen-edu/quiz-session-service/internal/services"
	"github.com/lumen-edu/quiz-session-service/internal/utils"
)

type HandlerManager struct {
	examHandler    *ExamHandler
	quizHandler    *QuizHandler
	authMiddleware *CasdoorAuthMiddleware
}

func NewHandlerManager(
	quizService services.QuizService,
	logger utils.Logger,
	casdoorConfig config.CasdoorConfig,
	userRepo repositories.UserRepository,
) *HandlerManager {
	return &HandlerManager{
		examHandler:    NewExamHandler(quizService, logger),
		quizHandler:    NewQuizHandler(quizService, logger),
		authMiddleware: NewCasdoorAuthMiddleware(casdoorConfig, userRepo),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", HealthCheck)

	v1 := router.Group("/api/v1")
	v1.Use(hm.authMiddleware.AuthMiddleware())
	{
		v1.GET("/exams", hm.examHandler.ListExams)

		quiz := v1.Group("/quiz")
		quiz.Use(hm.authMiddleware.RequireRoleMiddleware(models.RoleStudent))
		{
			quiz.POST("/start", hm.quizHandler.StartQuiz)
			quiz.POST("/answer", hm.quizHandler.SelectAnswer)
			quiz.POST("/next", hm.quizHandler.NextQuestion)
			quiz.POST("/previous", hm.quizHandler.PreviousQuestion)
			quiz.POST("/goto", hm.quizHandler.GotoQuestion)
			quiz.POST("/submit", hm.quizHandler.SubmitQuiz)
			quiz.POST("/reset", hm.quizHandler.ResetQuiz)
			quiz.GET("/state", hm.quizHandler.GetState)
			quiz.GET("/review", hm.quizHandler.GetReview)
			quiz.GET("/time-remaining", hm.quizHandler.GetTimeRemaining)
		}
	}
}

// HealthCheck endpoint
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "quiz-session-service",
	})
}
