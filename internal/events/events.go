package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	log "github.com/sirupsen/logrus"
)

type Type string

const (
	TypeSubmissionGraded Type = "submission.graded"
	TypeResultsPublished Type = "results.published"
	TypePaymentApproved  Type = "payment.approved"
)

type Event struct {
	Type       Type        `json:"type"`
	Key        string      `json:"key"`
	OccurredAt time.Time   `json:"occurredAt"`
	Payload    interface{} `json:"payload"`
}

type SubmissionGraded struct {
	ResultID       uuid.UUID `json:"resultId"`
	ContestID      uuid.UUID `json:"contestId"`
	UserID         uuid.UUID `json:"userId"`
	Score          float64   `json:"score"`
	CorrectAnswers int32     `json:"correctAnswers"`
	AutoSubmitted  bool      `json:"autoSubmitted"`
	TabSwitchCount int32     `json:"tabSwitchCount"`
}

type ResultsPublished struct {
	ContestID   uuid.UUID   `json:"contestId"`
	ResultCount int         `json:"resultCount"`
	Winners     []uuid.UUID `json:"winners"`
}

type PaymentApproved struct {
	RegistrationID uuid.UUID `json:"registrationId"`
	ContestID      uuid.UUID `json:"contestId"`
	UserID         uuid.UUID `json:"userId"`
	CommissionPaid bool      `json:"commissionPaid"`
}

// Publisher delivers domain events to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer messageWriter
	logger *log.Entry
}

// publishBatchTimeout bounds how long a synchronous WriteMessages waits for
// a batch to fill. Each Publish carries a single message.
const publishBatchTimeout = 10 * time.Millisecond

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.LeastBytes{},
			RequiredAcks:           kafka.RequireOne,
			BatchTimeout:           publishBatchTimeout,
			AllowAutoTopicCreation: true,
		},
		logger: log.WithField("from", "event-publisher"),
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, e Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", e.Type, err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(e.Key),
		Value: data,
		Time:  e.OccurredAt,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(e.Type)},
		},
	})
	if err != nil {
		p.logger.Errorf("failed to publish %s for %s: %v", e.Type, e.Key, err)
		return err
	}
	p.logger.Debugf("published %s for %s", e.Type, e.Key)
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NoopPublisher drops every event. Used when no brokers are configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) error { return nil }
func (NoopPublisher) Close() error                         { return nil }
