package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

// Event types emitted by the quiz session service.
const (
	EventQuizStarted   = "quiz.started"
	EventQuizSubmitted = "quiz.submitted"
	EventQuizReset     = "quiz.reset"
)

// Event is the envelope every published message is wrapped in.
type Event struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// QuizStartedData is the payload for quiz.started events.
type QuizStartedData struct {
	StudentID     string `json:"studentId"`
	ExamID        uint   `json:"examId"`
	ExamName      string `json:"examName"`
	QuestionCount int    `json:"questionCount"`
}

// QuizSubmittedData is the payload for quiz.submitted events. Timed marks
// submissions triggered by timer expiry rather than the student.
type QuizSubmittedData struct {
	StudentID       string `json:"studentId"`
	ExamID          uint   `json:"examId"`
	Score           int    `json:"score"`
	CorrectCount    int    `json:"correct"`
	Total           int    `json:"total"`
	AnsweredCount   int    `json:"answeredCount"`
	DurationSeconds int    `json:"durationSeconds"`
	Timed           bool   `json:"timed"`
}

// QuizResetData is the payload for quiz.reset events.
type QuizResetData struct {
	StudentID string `json:"studentId"`
	ExamID    uint   `json:"examId"`
}

const (
	eventSource  = "quiz-session-service"
	eventVersion = "1.0"
)

// EventPublisher publishes domain events to the message broker.
type EventPublisher interface {
	PublishEvent(ctx context.Context, eventType string, data interface{}) error
	Close() error
}

func newEvent(eventType string, data interface{}) Event {
	return Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Source:    eventSource,
		Version:   eventVersion,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

// KafkaEventPublisher publishes events to a Kafka topic via watermill.
type KafkaEventPublisher struct {
	publisher message.Publisher
	topic     string
	logger    *slog.Logger
}

// NewKafkaEventPublisher connects a watermill Kafka publisher to brokers.
func NewKafkaEventPublisher(brokers []string, topic string, logger *slog.Logger) (*KafkaEventPublisher, error) {
	publisher, err := kafka.NewPublisher(
		kafka.PublisherConfig{
			Brokers:   brokers,
			Marshaler: kafka.DefaultMarshaler{},
		},
		watermill.NewSlogLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka publisher: %w", err)
	}

	return &KafkaEventPublisher{
		publisher: publisher,
		topic:     topic,
		logger:    logger.With("component", "event_publisher"),
	}, nil
}

func (p *KafkaEventPublisher) PublishEvent(ctx context.Context, eventType string, data interface{}) error {
	event := newEvent(eventType, data)

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event %s: %w", eventType, err)
	}

	msg := message.NewMessage(event.ID, payload)
	msg.Metadata.Set("event_type", eventType)
	msg.SetContext(ctx)

	if err := p.publisher.Publish(p.topic, msg); err != nil {
		return fmt.Errorf("failed to publish event %s: %w", eventType, err)
	}

	p.logger.Info("Event published",
		"event_id", event.ID,
		"event_type", eventType,
		"topic", p.topic)
	return nil
}

func (p *KafkaEventPublisher) Close() error {
	return p.publisher.Close()
}

// LogEventPublisher writes events to the log only. Used when no broker is
// configured so event publication never blocks quiz flow in development.
type LogEventPublisher struct {
	logger *slog.Logger
}

func NewLogEventPublisher(logger *slog.Logger) *LogEventPublisher {
	return &LogEventPublisher{logger: logger.With("component", "event_publisher")}
}

func (p *LogEventPublisher) PublishEvent(ctx context.Context, eventType string, data interface{}) error {
	event := newEvent(eventType, data)
	p.logger.InfoContext(ctx, "Event published (log only)",
		"event_id", event.ID,
		"event_type", eventType,
		"data", data)
	return nil
}

func (p *LogEventPublisher) Close() error { return nil }

// MockEventPublisher records events in memory for tests.
type MockEventPublisher struct {
	mu     sync.Mutex
	events []Event
	logger *slog.Logger
}

func NewMockEventPublisher(logger *slog.Logger) *MockEventPublisher {
	return &MockEventPublisher{logger: logger}
}

func (p *MockEventPublisher) PublishEvent(ctx context.Context, eventType string, data interface{}) error {
	event := newEvent(eventType, data)
	p.mu.Lock()
	p.events = append(p.events, event)
	p.mu.Unlock()
	return nil
}

func (p *MockEventPublisher) Close() error { return nil }

// GetPublishedEvents returns a copy of all recorded events.
func (p *MockEventPublisher) GetPublishedEvents() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Event, len(p.events))
	copy(out, p.events)
	return out
}

// ClearEvents discards all recorded events.
func (p *MockEventPublisher) ClearEvents() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = nil
}
