package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/temcen/smartdiet/internal/config"
	"github.com/temcen/smartdiet/pkg/models"
)

const RecommendationGeneratedEvent = "recommendation.generated"

const (
	breakerFailureThreshold = 5
	breakerOpenTimeout      = 30 * time.Second
	writeTimeout            = 5 * time.Second
	defaultQueueSize        = 1024
)

var (
	// ErrPublishQueueFull is returned when events arrive faster than the
	// broker accepts them. The event is dropped.
	ErrPublishQueueFull = errors.New("event publish queue is full")
	ErrPublisherClosed  = errors.New("event publisher is closed")
)

// RecommendationEvent is published after every served recommendation.
type RecommendationEvent struct {
	EventType      string             `json:"event_type"`
	RequestID      uuid.UUID          `json:"request_id"`
	BestDiet       models.DietType    `json:"best_diet"`
	FuzzyOutput    models.FuzzyOutput `json:"fuzzy_output"`
	TargetCalories float64            `json:"target_calories"`
	RecipeIDs      []int              `json:"recipe_ids"`
	Scores         []float64          `json:"scores"`
	CatalogVersion string             `json:"catalog_version"`
	Timestamp      time.Time          `json:"timestamp"`
}

// NewRecommendationEvent summarizes a response for the event stream.
func NewRecommendationEvent(resp *models.RecommendationResponse, catalogVersion string) RecommendationEvent {
	ids := make([]int, len(resp.Recommendations))
	scores := make([]float64, len(resp.Recommendations))
	for i, r := range resp.Recommendations {
		ids[i] = r.Recipe.RecipeID
		scores[i] = r.Score
	}
	return RecommendationEvent{
		EventType:      RecommendationGeneratedEvent,
		RequestID:      resp.RequestID,
		BestDiet:       resp.DietProfile.BestDiet,
		FuzzyOutput:    resp.DietProfile.FuzzyOutput,
		TargetCalories: resp.TargetCalories,
		RecipeIDs:      ids,
		Scores:         scores,
		CatalogVersion: catalogVersion,
		Timestamp:      resp.GeneratedAt,
	}
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// EventPublisher queues recommendation events and writes them to Kafka
// from a single background goroutine. Callers never wait on the broker.
type EventPublisher struct {
	writer  messageWriter
	topic   string
	timeout time.Duration
	breaker *gobreaker.CircuitBreaker[struct{}]
	logger  *logrus.Logger

	mu     sync.Mutex
	closed bool
	queue  chan kafka.Message
	done   chan struct{}
}

func NewEventPublisher(cfg *config.KafkaConfig, logger *logrus.Logger) *EventPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{}, // Key by best diet type
		RequiredAcks: kafka.RequireOne,
		Async:        false,
		BatchTimeout: 10 * time.Millisecond,
		BatchSize:    100,
	}
	return newEventPublisher(writer, cfg.Topic, cfg.QueueSize, logger)
}

func newEventPublisher(writer messageWriter, topic string, queueSize int, logger *logrus.Logger) *EventPublisher {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}

	// While the breaker is open, events are dropped without touching the broker.
	breaker := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        "kafka-" + topic,
		MaxRequests: 1,
		Timeout:     breakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerFailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Event publisher circuit breaker changed state")
		},
	})

	p := &EventPublisher{
		writer:  writer,
		topic:   topic,
		timeout: writeTimeout,
		breaker: breaker,
		logger:  logger,
		queue:   make(chan kafka.Message, queueSize),
		done:    make(chan struct{}),
	}
	go p.run()
	return p
}

// PublishRecommendation enqueues the event without blocking.
func (p *EventPublisher) PublishRecommendation(ctx context.Context, event RecommendationEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg, err := newMessage(event)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrPublisherClosed
	}
	select {
	case p.queue <- msg:
		return nil
	default:
		p.logger.WithField("request_id", event.RequestID).Warn("Event queue full, dropping recommendation event")
		return ErrPublishQueueFull
	}
}

func newMessage(event RecommendationEvent) (kafka.Message, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to marshal event: %w", err)
	}

	return kafka.Message{
		Key:   []byte(event.BestDiet.String()),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
			{Key: "request_id", Value: []byte(event.RequestID.String())},
			{Key: "timestamp", Value: []byte(event.Timestamp.Format(time.RFC3339))},
		},
	}, nil
}

func (p *EventPublisher) run() {
	defer close(p.done)
	for msg := range p.queue {
		if err := p.write(msg); err != nil {
			p.logger.WithError(err).WithField("request_id", requestID(msg)).Error("Failed to publish recommendation event")
			continue
		}
		p.logger.WithFields(logrus.Fields{
			"request_id": requestID(msg),
			"best_diet":  string(msg.Key),
			"topic":      p.topic,
		}).Debug("Recommendation event published")
	}
}

// write sends one message through the circuit breaker.
func (p *EventPublisher) write(msg kafka.Message) error {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	_, err := p.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, p.writer.WriteMessages(ctx, msg)
	})
	if err != nil {
		return fmt.Errorf("failed to write message to Kafka: %w", err)
	}
	return nil
}

func requestID(msg kafka.Message) string {
	for _, h := range msg.Headers {
		if h.Key == "request_id" {
			return string(h.Value)
		}
	}
	return ""
}

// Close stops accepting events, drains the queue and closes the writer.
func (p *EventPublisher) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	<-p.done
	return p.writer.Close()
}
