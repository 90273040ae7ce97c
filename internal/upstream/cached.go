package upstream

import (
	"context"
	"fmt"
	"time"

	"github.com/lumen-edu/quiz-session-service/internal/cache"
	"github.com/lumen-edu/quiz-session-service/internal/models"
	"github.com/lumen-edu/quiz-session-service/internal/session"
)

// CachedCatalog is a cache-aside decorator over an ExamCatalog.
type CachedCatalog struct {
	inner  session.ExamCatalog
	caches *cache.CacheManager
	ttl    time.Duration
}

// NewCachedCatalog wraps catalog with the exam cache. A cache manager
// built on a nil redis client degrades to pass-through.
func NewCachedCatalog(inner session.ExamCatalog, caches *cache.CacheManager, ttl time.Duration) *CachedCatalog {
	if ttl <= 0 {
		ttl = cache.ExamCacheConfig.TTL
	}
	return &CachedCatalog{inner: inner, caches: caches, ttl: ttl}
}

func (c *CachedCatalog) ListExams(ctx context.Context) ([]models.Exam, error) {
	var exams []models.Exam
	err := c.caches.Exam.CacheOrExecute(ctx, "list", &exams, c.ttl, func() (interface{}, error) {
		return c.inner.ListExams(ctx)
	})
	if err != nil {
		return nil, err
	}
	return exams, nil
}

// CachedQuestions is a cache-aside decorator over a QuestionService.
// Only taking-stage fetches are cached; review fetches carry correctness
// annotations and always go to the upstream.
type CachedQuestions struct {
	inner  session.QuestionService
	caches *cache.CacheManager
	ttl    time.Duration
}

func NewCachedQuestions(inner session.QuestionService, caches *cache.CacheManager, ttl time.Duration) *CachedQuestions {
	if ttl <= 0 {
		ttl = cache.QuestionCacheConfig.TTL
	}
	return &CachedQuestions{inner: inner, caches: caches, ttl: ttl}
}

func (c *CachedQuestions) GetQuestions(ctx context.Context, examID uint, revealCorrect bool) ([]models.Question, error) {
	if revealCorrect {
		return c.inner.GetQuestions(ctx, examID, true)
	}

	var questions []models.Question
	key := fmt.Sprintf("exam:%d", examID)
	err := c.caches.Question.CacheOrExecute(ctx, key, &questions, c.ttl, func() (interface{}, error) {
		return c.inner.GetQuestions(ctx, examID, false)
	})
	if err != nil {
		return nil, err
	}
	return questions, nil
}

func (c *CachedQuestions) Submit(ctx context.Context, sub session.Submission) (*models.SubmittedResult, error) {
	return c.inner.Submit(ctx, sub)
}
