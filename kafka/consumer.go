// Package kafka accepts ingestion requests from a Kafka topic, as an
// alternative intake to the HTTP API.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"newsgraph/logger"

	"github.com/IBM/sarama"
)

// Request kinds accepted on the ingest topic.
const (
	KindTopic = "topic"
	KindRSS   = "rss"
	KindURL   = "url"
)

// IngestRequest is the message format on the ingest topic.
type IngestRequest struct {
	Kind     string `json:"kind"`
	Value    string `json:"value"`
	MaxItems int    `json:"max_items,omitempty"`
}

// Submitter is the slice of the ingestion service the consumer drives.
type Submitter interface {
	SubmitTopic(topic string, maxItems int) (string, error)
	SubmitFeed(feedURL string) (string, error)
	SubmitURL(rawURL string) (string, error)
}

// ConsumerConfig holds Kafka consumer configuration.
type ConsumerConfig struct {
	Brokers []string
	Topic   string
	GroupID string
}

// Consumer reads ingest requests off Kafka and submits them as jobs.
type Consumer struct {
	group     sarama.ConsumerGroup
	submitter Submitter
	topic     string
	groupID   string
	ready     chan bool
	log       *logger.Logger
}

// NewConsumer creates the consumer group client. Start must be called to
// begin consuming.
func NewConsumer(cfg ConsumerConfig, submitter Submitter, baseLog *logger.Logger) (*Consumer, error) {
	if baseLog == nil {
		baseLog = logger.NewNop()
	}

	saramaConfig := sarama.NewConfig()
	saramaConfig.Version = sarama.V3_6_0_0
	saramaConfig.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRoundRobin()}
	saramaConfig.Consumer.Offsets.Initial = sarama.OffsetNewest
	saramaConfig.Consumer.Return.Errors = true

	group, err := sarama.NewConsumerGroup(cfg.Brokers, cfg.GroupID, saramaConfig)
	if err != nil {
		return nil, err
	}

	return &Consumer{
		group:     group,
		submitter: submitter,
		topic:     cfg.Topic,
		groupID:   cfg.GroupID,
		ready:     make(chan bool),
		log:       baseLog.With("component", "kafka"),
	}, nil
}

// Start begins consuming in the background and returns once the group has
// joined.
func (c *Consumer) Start(ctx context.Context) error {
	handler := &groupHandler{consumer: c, ready: c.ready}

	go func() {
		for {
			if err := c.group.Consume(ctx, []string{c.topic}, handler); err != nil {
				if errors.Is(err, context.Canceled) {
					return
				}
				c.log.Error("consumer loop error", "err", err)
			}
			if ctx.Err() != nil {
				return
			}
			handler.ready = make(chan bool)
		}
	}()

	<-c.ready
	c.log.Info("kafka consumer started", "group", c.groupID, "topic", c.topic)

	go func() {
		for err := range c.group.Errors() {
			c.log.Error("kafka consumer error", "err", err)
		}
	}()

	return nil
}

// Close shuts the consumer group down.
func (c *Consumer) Close() error {
	return c.group.Close()
}

// handle submits one decoded request. Malformed or unknown messages are
// dropped; only submission failures are surfaced for retry.
func (c *Consumer) handle(raw []byte) (shouldMark bool, err error) {
	var req IngestRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		c.log.Warn("dropping malformed ingest request", "err", err)
		return true, nil
	}

	value := strings.TrimSpace(req.Value)
	if value == "" {
		c.log.Warn("dropping ingest request without value", "kind", req.Kind)
		return true, nil
	}

	var jobID string
	switch req.Kind {
	case KindTopic:
		jobID, err = c.submitter.SubmitTopic(value, req.MaxItems)
	case KindRSS:
		jobID, err = c.submitter.SubmitFeed(value)
	case KindURL:
		jobID, err = c.submitter.SubmitURL(value)
	default:
		c.log.Warn("dropping ingest request with unknown kind", "kind", req.Kind)
		return true, nil
	}
	if err != nil {
		return false, err
	}

	c.log.Info("ingest request submitted", "kind", req.Kind, "value", value, "job_id", jobID)
	return true, nil
}

// groupHandler implements sarama.ConsumerGroupHandler.
type groupHandler struct {
	consumer *Consumer
	ready    chan bool
}

func (h *groupHandler) Setup(sarama.ConsumerGroupSession) error {
	close(h.ready)
	return nil
}

func (h *groupHandler) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

func (h *groupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message := <-claim.Messages():
			if message == nil {
				return nil
			}

			shouldMark, err := h.consumer.handle(message.Value)
			if err != nil {
				h.consumer.log.Error("failed to handle message",
					"partition", message.Partition, "offset", message.Offset, "err", err)
			}
			if shouldMark {
				session.MarkMessage(message, "")
			}

		case <-session.Context().Done():
			return nil
		}
	}
}
