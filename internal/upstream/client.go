package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/lumen-edu/quiz-session-service/internal/models"
	"github.com/lumen-edu/quiz-session-service/internal/session"
)

const defaultTimeout = 30 * time.Second

// Client talks to the upstream exam API. It implements both
// session.ExamCatalog and session.QuestionService.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	logger  *slog.Logger
}

// NewClient creates an exam API client. token may be empty when the
// upstream does not require authentication.
func NewClient(baseURL, token string, logger *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: defaultTimeout},
		logger:  logger.With("component", "upstream_client"),
	}
}

// ListExams fetches the exam catalog.
func (c *Client) ListExams(ctx context.Context) ([]models.Exam, error) {
	var exams []models.Exam
	if err := c.get(ctx, "/exams", &exams); err != nil {
		return nil, fmt.Errorf("failed to list exams: %w", err)
	}
	return exams, nil
}

// GetQuestions fetches the question set for an exam. With revealCorrect
// the upstream annotates every option with its correctness flag.
func (c *Client) GetQuestions(ctx context.Context, examID uint, revealCorrect bool) ([]models.Question, error) {
	path := fmt.Sprintf("/quizzes/%d/questions", examID)
	if revealCorrect {
		path += "?includeCorrect=true"
	}

	var questions []models.Question
	if err := c.get(ctx, path, &questions); err != nil {
		return nil, fmt.Errorf("failed to fetch questions for exam %d: %w", examID, err)
	}
	return questions, nil
}

// Submit sends a completed quiz for scoring.
func (c *Client) Submit(ctx context.Context, sub session.Submission) (*models.SubmittedResult, error) {
	body, err := json.Marshal(sub)
	if err != nil {
		return nil, fmt.Errorf("failed to encode submission: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/quizzes/submit", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build submit request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	var result models.SubmittedResult
	if err := c.do(req, &result); err != nil {
		return nil, fmt.Errorf("failed to submit quiz for exam %d: %w", sub.ExamID, err)
	}

	c.logger.Info("Quiz submission scored",
		"exam_id", sub.ExamID,
		"score", result.Score,
		"correct", result.CorrectCount,
		"total", result.Total)
	return &result, nil
}

func (c *Client) get(ctx context.Context, path string, dest interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	c.authorize(req)
	return c.do(req, dest)
}

func (c *Client) authorize(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

func (c *Client) do(req *http.Request, dest interface{}) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.decodeError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// decodeError extracts the upstream's JSON error message when present,
// falling back to the HTTP status.
func (c *Client) decodeError(resp *http.Response) error {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err == nil && len(body) > 0 {
		var apiErr struct {
			Message string `json:"message"`
		}
		if jsonErr := json.Unmarshal(body, &apiErr); jsonErr == nil && apiErr.Message != "" {
			return fmt.Errorf("upstream error (status %d): %s", resp.StatusCode, apiErr.Message)
		}
	}
	return fmt.Errorf("upstream error: unexpected status %d", resp.StatusCode)
}
