// Worker consumes user.registered events from Kafka and sends the
// corresponding welcome email. Delivery itself is logged; wiring an SMTP
// provider happens behind the mailer interface.
package main

import (
	"context"
	"encoding/json"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/monok8i/users-service/internal/config"
	"github.com/monok8i/users-service/internal/events"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	brokers := cfg.KafkaBrokersList()
	if len(brokers) == 0 {
		log.Fatal("worker: KAFKA_BROKERS is required")
	}
	topic := cfg.EmailsTopic
	if topic == "" {
		topic = "emails"
	}
	groupID := cfg.KafkaGroupID
	if groupID == "" {
		groupID = "users-emails-worker"
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()
	logger = logger.Named("worker")

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       1,
		MaxBytes:       10e6, // 10MB
		MaxWait:        1 * time.Second,
		CommitInterval: time.Second,
	})
	defer reader.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("consuming", zap.String("topic", topic), zap.String("group", groupID))

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				logger.Info("stopped")
				return
			}
			logger.Error("kafka read", zap.Error(err))
			continue
		}

		var event events.UserRegistered
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			logger.Warn("malformed event, skipping",
				zap.Int64("offset", msg.Offset), zap.Error(err))
			continue
		}

		logger.Info("welcome email queued",
			zap.String("event_id", event.ID),
			zap.Int64("user_id", event.UserID),
			zap.String("email", event.Email))
	}
}
