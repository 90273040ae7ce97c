package upstream

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/lumen-edu/quiz-session-service/internal/cache"
	"github.com/lumen-edu/quiz-session-service/internal/models"
	"github.com/lumen-edu/quiz-session-service/internal/session"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestClientListExams(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/exams" {
			t.Errorf("path = %s, want /exams", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("authorization = %q", got)
		}
		json.NewEncoder(w).Encode([]models.Exam{
			{ID: 1, Name: "Algebra", Status: models.ExamPublished, QuestionCount: 10},
			{ID: 2, Name: "Drafts", Status: models.ExamDraft},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret", testLogger())
	exams, err := c.ListExams(context.Background())
	if err != nil {
		t.Fatalf("ListExams: %v", err)
	}
	if len(exams) != 2 {
		t.Fatalf("exam count = %d, want 2", len(exams))
	}
	if exams[0].Name != "Algebra" || !exams[0].IsPublished() {
		t.Errorf("exams[0] = %+v", exams[0])
	}
}

func TestClientGetQuestions(t *testing.T) {
	t.Run("taking mode omits includeCorrect", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/quizzes/7/questions" {
				t.Errorf("path = %s", r.URL.Path)
			}
			if r.URL.Query().Has("includeCorrect") {
				t.Error("taking-mode fetch sent includeCorrect")
			}
			json.NewEncoder(w).Encode([]models.Question{
				{ID: 11, QuestionNumber: 1, QuestionText: "Q1", Options: []models.Option{{ID: 1, Text: "a"}}},
			})
		}))
		defer srv.Close()

		c := NewClient(srv.URL, "", testLogger())
		qs, err := c.GetQuestions(context.Background(), 7, false)
		if err != nil {
			t.Fatalf("GetQuestions: %v", err)
		}
		if len(qs) != 1 || qs[0].ID != 11 {
			t.Fatalf("questions = %+v", qs)
		}
	})

	t.Run("review mode requests annotations", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("includeCorrect") != "true" {
				t.Error("review-mode fetch missing includeCorrect=true")
			}
			correct := true
			json.NewEncoder(w).Encode([]models.Question{
				{ID: 11, Options: []models.Option{{ID: 1, IsCorrect: &correct}}},
			})
		}))
		defer srv.Close()

		c := NewClient(srv.URL, "", testLogger())
		qs, err := c.GetQuestions(context.Background(), 7, true)
		if err != nil {
			t.Fatalf("GetQuestions: %v", err)
		}
		if !qs[0].Options[0].Correct() {
			t.Error("annotation lost in transit")
		}
	})
}

func TestClientSubmit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/quizzes/submit" {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		var sub map[string]json.RawMessage
		if err := json.Unmarshal(body, &sub); err != nil {
			t.Fatalf("bad submit body: %v", err)
		}
		for _, field := range []string{"examId", "studentId", "answers", "durationSeconds"} {
			if _, ok := sub[field]; !ok {
				t.Errorf("submit body missing %s: %s", field, body)
			}
		}
		// Answer keys travel as strings.
		if !strings.Contains(string(sub["answers"]), `"11":2`) {
			t.Errorf("answers = %s", sub["answers"])
		}
		json.NewEncoder(w).Encode(models.SubmittedResult{Score: 50, CorrectCount: 1, Total: 2})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", testLogger())
	result, err := c.Submit(context.Background(), session.Submission{
		ExamID:          7,
		StudentID:       "student-1",
		Answers:         models.AnswerMap{11: 2},
		DurationSeconds: 42,
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if result.Score != 50 || result.CorrectCount != 1 || result.Total != 2 {
		t.Errorf("result = %+v", result)
	}
}

func TestClientErrorDecoding(t *testing.T) {
	t.Run("json message body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusConflict)
			io.WriteString(w, `{"message":"exam not published"}`)
		}))
		defer srv.Close()

		c := NewClient(srv.URL, "", testLogger())
		_, err := c.ListExams(context.Background())
		if err == nil || !strings.Contains(err.Error(), "exam not published") {
			t.Fatalf("err = %v, want upstream message", err)
		}
	})

	t.Run("opaque body falls back to status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			io.WriteString(w, "<html>gateway</html>")
		}))
		defer srv.Close()

		c := NewClient(srv.URL, "", testLogger())
		_, err := c.ListExams(context.Background())
		if err == nil || !strings.Contains(err.Error(), "502") {
			t.Fatalf("err = %v, want status in message", err)
		}
	})
}

func testCaches(t *testing.T) *cache.CacheManager {
	t.Helper()
	mr := miniredis.RunT(t)
	return cache.NewCacheManager(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
}

func TestCachedCatalog(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		json.NewEncoder(w).Encode([]models.Exam{{ID: 1, Name: "Algebra", Status: models.ExamPublished}})
	}))
	defer srv.Close()

	catalog := NewCachedCatalog(NewClient(srv.URL, "", testLogger()), testCaches(t), time.Minute)

	exams, err := catalog.ListExams(context.Background())
	if err != nil {
		t.Fatalf("ListExams: %v", err)
	}
	if len(exams) != 1 || exams[0].Name != "Algebra" {
		t.Fatalf("exams = %+v", exams)
	}

	// The cache write after a miss is asynchronous.
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		var cached []models.Exam
		if err := catalog.caches.Exam.Get(context.Background(), "list", &cached); err == nil {
			break
		}
		time.Sleep(2 * time.Millisecond)
	}

	for i := 0; i < 2; i++ {
		if _, err := catalog.ListExams(context.Background()); err != nil {
			t.Fatalf("ListExams: %v", err)
		}
	}
	if got := hits.Load(); got != 1 {
		t.Errorf("upstream hits = %d, want 1", got)
	}
}

func TestCachedQuestions(t *testing.T) {
	var takingHits, reviewHits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Has("includeCorrect") {
			reviewHits.Add(1)
		} else {
			takingHits.Add(1)
		}
		json.NewEncoder(w).Encode([]models.Question{{ID: 11, QuestionNumber: 1}})
	}))
	defer srv.Close()

	svc := NewCachedQuestions(NewClient(srv.URL, "", testLogger()), testCaches(t), time.Minute)
	ctx := context.Background()

	if _, err := svc.GetQuestions(ctx, 7, false); err != nil {
		t.Fatalf("GetQuestions: %v", err)
	}
	waitForCache(t, svc, 7)
	if _, err := svc.GetQuestions(ctx, 7, false); err != nil {
		t.Fatalf("GetQuestions: %v", err)
	}
	if got := takingHits.Load(); got != 1 {
		t.Errorf("taking hits = %d, want 1 (second fetch should hit cache)", got)
	}

	// Review fetches bypass the cache every time.
	for i := 0; i < 2; i++ {
		if _, err := svc.GetQuestions(ctx, 7, true); err != nil {
			t.Fatalf("GetQuestions review: %v", err)
		}
	}
	if got := reviewHits.Load(); got != 2 {
		t.Errorf("review hits = %d, want 2", got)
	}
}

func waitForCache(t *testing.T, svc *CachedQuestions, examID uint) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		var qs []models.Question
		if err := svc.caches.Question.Get(context.Background(), "exam:7", &qs); err == nil {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("cached question set never appeared")
}
