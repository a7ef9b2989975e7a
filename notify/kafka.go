package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/cloudx-io/auctionhouse/core"
)

// KafkaConfig configures the Kafka notifier.
type KafkaConfig struct {
	Brokers      []string
	Topic        string
	MaxRetries   int
	RetryBackoff time.Duration
	WriteTimeout time.Duration
}

// messageWriter is the subset of *kafka.Writer the notifier needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaNotifier publishes notifications as JSON messages keyed by lot number,
// so every event for a lot lands on one partition in engine order.
// Publish failures are logged and dropped.
type KafkaNotifier struct {
	writer       messageWriter
	writeTimeout time.Duration
	logger       *slog.Logger
}

// NewKafkaNotifier builds a synchronous producer for cfg.Topic.
func NewKafkaNotifier(cfg KafkaConfig, logger *slog.Logger) (*KafkaNotifier, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka notifier: no brokers configured")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("kafka notifier: no topic configured")
	}
	backoff := cfg.RetryBackoff
	if backoff <= 0 {
		backoff = 100 * time.Millisecond
	}

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		RequiredAcks:           kafka.RequireAll,
		MaxAttempts:            cfg.MaxRetries,
		WriteBackoffMin:        backoff,
		WriteBackoffMax:        backoff * 10,
	}
	return newKafkaNotifier(writer, cfg.WriteTimeout, logger), nil
}

func newKafkaNotifier(w messageWriter, writeTimeout time.Duration, logger *slog.Logger) *KafkaNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	if writeTimeout <= 0 {
		writeTimeout = 5 * time.Second
	}
	return &KafkaNotifier{writer: w, writeTimeout: writeTimeout, logger: logger}
}

func (k *KafkaNotifier) publish(ctx context.Context, note Notification) {
	data, err := json.Marshal(note)
	if err != nil {
		k.logger.ErrorContext(ctx, "failed to marshal notification", "event", note.Event, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, k.writeTimeout)
	defer cancel()

	msg := kafka.Message{
		Key:   []byte(strconv.Itoa(note.Lot)),
		Value: data,
	}
	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		k.logger.ErrorContext(ctx, "failed to publish notification",
			"event", note.Event,
			"address", note.Address,
			"lot", note.Lot,
			"error", err,
		)
		return
	}
	k.logger.DebugContext(ctx, "notification published", "event", note.Event, "lot", note.Lot)
}

func (k *KafkaNotifier) AuctionOpened(ctx context.Context, address string, lotNumber int) {
	k.publish(ctx, Notification{Event: EventAuctionOpened, Address: address, Lot: lotNumber})
}

func (k *KafkaNotifier) BidAccepted(ctx context.Context, address string, lotNumber int, amount core.Money) {
	k.publish(ctx, Notification{Event: EventBidAccepted, Address: address, Lot: lotNumber, Amount: &amount})
}

func (k *KafkaNotifier) LotSold(ctx context.Context, address string, lotNumber int) {
	k.publish(ctx, Notification{Event: EventLotSold, Address: address, Lot: lotNumber})
}

func (k *KafkaNotifier) LotUnsold(ctx context.Context, address string, lotNumber int) {
	k.publish(ctx, Notification{Event: EventLotUnsold, Address: address, Lot: lotNumber})
}

// Close flushes pending writes and releases the producer.
func (k *KafkaNotifier) Close() error {
	return k.writer.Close()
}

var _ core.Notifier = (*KafkaNotifier)(nil)
