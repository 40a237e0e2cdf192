package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/twmb/franz-go/pkg/kgo"
)

const (
	// TopicNotifications carries per-session notification events.
	TopicNotifications = "bursar_notifications"
	// TopicSecurity carries administrative security events.
	TopicSecurity = "bursar_security"

	produceTimeout = 5 * time.Second
)

// KafkaEmitter publishes events to Kafka for the dispatcher to deliver.
type KafkaEmitter struct {
	client *kgo.Client
	logger *logrus.Logger
}

// NewKafkaEmitter creates a Kafka-backed event emitter
func NewKafkaEmitter(brokers []string, logger *logrus.Logger) (*KafkaEmitter, error) {
	opts := []kgo.Opt{
		kgo.SeedBrokers(brokers...),
		kgo.ClientID("bursar"),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
		kgo.ProducerLinger(10 * time.Millisecond),
	}

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka client: %w", err)
	}

	return &KafkaEmitter{client: client, logger: logger}, nil
}

// Close shuts down the underlying Kafka client
func (e *KafkaEmitter) Close() error {
	e.client.Close()
	return nil
}

// Client returns the underlying kgo.Client for health checks
func (e *KafkaEmitter) Client() *kgo.Client {
	return e.client
}

// EmitNotification publishes a notification event keyed by session id
func (e *KafkaEmitter) EmitNotification(sessionID, eventType, text string) {
	event := newNotification(sessionID, eventType, text)
	e.produce(TopicNotifications, sessionID, event.EventType, event)
}

// EmitSecurity publishes a security event keyed by persistent identity
func (e *KafkaEmitter) EmitSecurity(eventType, melonID, detail string) {
	event := newSecurity(eventType, melonID, detail)
	e.produce(TopicSecurity, melonID, event.EventType, event)
}

// produce sends a single record synchronously. Failures are logged and
// dropped: delivery is best-effort and must never affect ledger state.
func (e *KafkaEmitter) produce(topic, key, eventType string, payload interface{}) {
	value, err := json.Marshal(payload)
	if err != nil {
		e.logger.WithError(err).WithField("event_type", eventType).Error("Failed to marshal event")
		return
	}

	record := &kgo.Record{
		Topic: topic,
		Key:   []byte(key),
		Value: value,
		Headers: []kgo.RecordHeader{
			{Key: "source", Value: []byte("bursar")},
			{Key: "event_type", Value: []byte(eventType)},
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), produceTimeout)
	defer cancel()

	if err := e.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		e.logger.WithError(err).WithFields(logrus.Fields{
			"topic":      topic,
			"event_type": eventType,
		}).Warn("Failed to produce event")
	}
}

// LogEmitter writes events to the service log instead of Kafka. Used when
// no brokers are configured (local development, tests of wiring).
type LogEmitter struct {
	logger *logrus.Logger
}

// NewLogEmitter creates a log-only event emitter
func NewLogEmitter(logger *logrus.Logger) *LogEmitter {
	return &LogEmitter{logger: logger}
}

func (e *LogEmitter) EmitNotification(sessionID, eventType, text string) {
	e.logger.WithFields(logrus.Fields{
		"event_type": eventType,
		"session_id": sessionID,
		"text":       text,
	}).Info("Notification event")
}

func (e *LogEmitter) EmitSecurity(eventType, melonID, detail string) {
	e.logger.WithFields(logrus.Fields{
		"event_type": eventType,
		"melon_id":   melonID,
		"detail":     detail,
	}).Warn("Security event")
}
