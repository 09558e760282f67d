package processor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"partshop/background-worker-service/internal/app/background-worker/entity"
	"partshop/background-worker-service/internal/app/background-worker/service"
	"partshop/pkg/events"
	"partshop/pkg/logger"
	"partshop/pkg/metrics"

	"github.com/segmentio/kafka-go"
)

const (
	serviceName = "background-worker-service"

	retryBackoffMin = 500 * time.Millisecond
	retryBackoffMax = 30 * time.Second
)

// errMalformedEvent - сообщение нельзя разобрать, повторная доставка не поможет
var errMalformedEvent = errors.New("malformed shop event")

// KafkaConsumer обрабатывает события из топика shop_events
type KafkaConsumer struct {
	reader   *kafka.Reader
	topic    string
	groupID  string
	eventSvc service.EventProcessingServiceInterface
	stopChan chan struct{}
	doneChan chan struct{}
}

// NewKafkaConsumer создает новый Kafka consumer
func NewKafkaConsumer(
	brokers []string,
	topic string,
	groupID string,
	minBytes int,
	maxBytes int,
	eventSvc service.EventProcessingServiceInterface,
) *KafkaConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       minBytes,
		MaxBytes:       maxBytes,
		StartOffset:    kafka.FirstOffset, // новая группа дочитывает архив с начала топика
		CommitInterval: 0,                 // коммитим синхронно после обработки
		ReadBackoffMin: 100 * time.Millisecond,
		ReadBackoffMax: 1 * time.Second,
	})

	return &KafkaConsumer{
		reader:   reader,
		topic:    topic,
		groupID:  groupID,
		eventSvc: eventSvc,
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
	}
}

// Start запускает consumer в отдельной горутине
func (c *KafkaConsumer) Start(ctx context.Context) {
	logger.Info().Str("topic", c.topic).Str("group", c.groupID).Msg("Starting Kafka consumer")
	go c.consume(ctx)
}

// Stop останавливает consumer и ждет завершения текущего сообщения
func (c *KafkaConsumer) Stop() {
	logger.Info().Msg("Stopping Kafka consumer...")
	close(c.stopChan)
	<-c.doneChan
	if c.reader != nil {
		c.reader.Close()
	}
	logger.Info().Msg("Kafka consumer stopped")
}

func (c *KafkaConsumer) consume(ctx context.Context) {
	defer close(c.doneChan)

	for {
		select {
		case <-c.stopChan:
			return
		default:
			readCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			message, err := c.reader.FetchMessage(readCtx)
			cancel()

			if err != nil {
				if ctx.Err() != nil {
					return
				}
				// таймаут чтения при пустом топике
				if errors.Is(err, context.DeadlineExceeded) {
					continue
				}
				metrics.RecordKafkaError(serviceName, c.topic, "fetch")
				logger.Error().Err(err).Msg("Error fetching message")
				time.Sleep(time.Second)
				continue
			}

			if !c.handleWithRetry(ctx, message) {
				return
			}

			if err := c.reader.CommitMessages(ctx, message); err != nil {
				metrics.RecordKafkaError(serviceName, c.topic, "commit")
				logger.Error().Err(err).Msg("Error committing message")
			}
		}
	}
}

// handleWithRetry повторяет обработку одного сообщения, пока она не пройдет:
// offset не коммитится, а reader kafka-go сам сообщение заново не отдаст.
// Возвращает false, если consumer остановлен раньше.
func (c *KafkaConsumer) handleWithRetry(ctx context.Context, message kafka.Message) bool {
	backoff := retryBackoffMin
	for {
		err := c.handle(ctx, message)
		if err == nil {
			return true
		}

		logger.Error().Err(err).
			Int("partition", message.Partition).
			Int64("offset", message.Offset).
			Dur("retry_in", backoff).
			Msg("Error processing message")

		select {
		case <-c.stopChan:
			return false
		case <-ctx.Done():
			return false
		case <-time.After(backoff):
		}

		backoff *= 2
		if backoff > retryBackoffMax {
			backoff = retryBackoffMax
		}
	}
}

// handle обрабатывает сообщение; битые сообщения логируются и пропускаются
func (c *KafkaConsumer) handle(ctx context.Context, message kafka.Message) error {
	start := time.Now()

	err := c.processMessage(ctx, message)
	if errors.Is(err, errMalformedEvent) {
		metrics.RecordKafkaError(serviceName, c.topic, "decode")
		logger.Warn().Err(err).
			Int("partition", message.Partition).
			Int64("offset", message.Offset).
			Msg("Skipping malformed message")
		return nil
	}
	if err != nil {
		return err
	}

	metrics.RecordKafkaMessageConsumed(serviceName, c.topic, c.groupID, time.Since(start))
	return nil
}

// processMessage разбирает событие и передает его в сервис
func (c *KafkaConsumer) processMessage(ctx context.Context, message kafka.Message) error {
	event, err := events.Unmarshal(message.Value)
	if err != nil {
		return fmt.Errorf("%w: %v", errMalformedEvent, err)
	}

	logger.Debug().
		Str("event_id", event.EventID).
		Str("event_type", string(event.EventType)).
		Int("partition", message.Partition).
		Int64("offset", message.Offset).
		Msg("Received shop event")

	archived := &entity.ArchivedEvent{
		ShopEvent: *event,
		Partition: message.Partition,
		Offset:    message.Offset,
	}

	if err := c.eventSvc.ProcessEvent(ctx, archived); err != nil {
		metrics.WorkerEventsProcessed.WithLabelValues(string(event.EventType), "failed").Inc()
		return fmt.Errorf("failed to process %s event: %w", event.EventType, err)
	}

	metrics.WorkerEventsProcessed.WithLabelValues(string(event.EventType), "success").Inc()
	return nil
}

// GetStats возвращает статистику consumer
func (c *KafkaConsumer) GetStats() kafka.ReaderStats {
	return c.reader.Stats()
}
