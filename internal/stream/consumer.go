package stream

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	readBatch       = 10
	readBlock       = time.Second
	claimBatch      = 100
	claimMinIdle    = time.Minute
	pelScanInterval = 30 * time.Second
	trimInterval    = time.Hour
)

// ConsumerConfig names the stream, group and member a Consumer reads as.
type ConsumerConfig struct {
	StreamKey     string
	Group         string
	Name          string
	DeadLetterKey string
	Retention     time.Duration
}

// Consumer reads queued analyses from a Redis stream consumer group and
// hands them to a Processor.
type Consumer struct {
	client    redis.Cmdable
	cfg       ConsumerConfig
	processor *Processor
	lastScan  time.Time
}

func NewConsumer(client redis.Cmdable, cfg ConsumerConfig, processor *Processor) *Consumer {
	return &Consumer{
		client:    client,
		cfg:       cfg,
		processor: processor,
	}
}

// Start blocks until ctx is cancelled.
func (c *Consumer) Start(ctx context.Context) error {
	if err := c.ensureGroup(ctx); err != nil {
		log.Warn().Err(err).Str("group", c.cfg.Group).Msg("Could not create consumer group")
	}

	// entries left pending by a previous crash
	if err := c.claimStale(ctx); err != nil {
		log.Warn().Err(err).Msg("Pending entry recovery failed on startup")
	}
	c.lastScan = time.Now()

	if c.cfg.Retention > 0 {
		go c.trimLoop(ctx)
	}

	log.Info().
		Str("stream", c.cfg.StreamKey).
		Str("group", c.cfg.Group).
		Str("consumer", c.cfg.Name).
		Msg("Analysis consumer started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := c.poll(ctx); err != nil {
			log.Error().Err(err).Msg("Stream poll failed")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Second):
			}
		}
	}
}

func (c *Consumer) ensureGroup(ctx context.Context) error {
	err := c.client.XGroupCreateMkStream(ctx, c.cfg.StreamKey, c.cfg.Group, "$").Err()
	if err == nil {
		log.Info().Str("group", c.cfg.Group).Msg("Created consumer group")
		return nil
	}
	// Redis replies "BUSYGROUP Consumer Group name already exists" for an existing group
	if strings.Contains(err.Error(), "BUSYGROUP") {
		return nil
	}
	return fmt.Errorf("failed to create consumer group: %w", err)
}

// claimStale takes over entries another member left idle in the PEL.
func (c *Consumer) claimStale(ctx context.Context) error {
	pending, err := c.client.XPendingExt(ctx, &redis.XPendingExtArgs{
		Stream: c.cfg.StreamKey,
		Group:  c.cfg.Group,
		Start:  "-",
		End:    "+",
		Count:  claimBatch,
	}).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to list pending entries: %w", err)
	}

	ids := make([]string, 0, len(pending))
	for _, p := range pending {
		if p.Idle >= claimMinIdle {
			ids = append(ids, p.ID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	claimed, err := c.client.XClaim(ctx, &redis.XClaimArgs{
		Stream:   c.cfg.StreamKey,
		Group:    c.cfg.Group,
		Consumer: c.cfg.Name,
		MinIdle:  claimMinIdle,
		Messages: ids,
	}).Result()
	if err != nil {
		return fmt.Errorf("failed to claim pending entries: %w", err)
	}

	log.Info().Int("claimed", len(claimed)).Msg("Claimed stale pending entries")
	c.handleAll(ctx, claimed)
	return nil
}

func (c *Consumer) poll(ctx context.Context) error {
	if time.Since(c.lastScan) > pelScanInterval {
		if err := c.claimStale(ctx); err != nil {
			log.Warn().Err(err).Msg("Pending entry recovery failed")
		}
		c.lastScan = time.Now()
	}

	streams, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    c.cfg.Group,
		Consumer: c.cfg.Name,
		Streams:  []string{c.cfg.StreamKey, ">"},
		Count:    readBatch,
		Block:    readBlock,
	}).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read from stream: %w", err)
	}

	for _, s := range streams {
		if s.Stream == c.cfg.StreamKey {
			c.handleAll(ctx, s.Messages)
		}
	}
	return nil
}

func (c *Consumer) handleAll(ctx context.Context, msgs []redis.XMessage) {
	for i := range msgs {
		if err := c.handle(ctx, &msgs[i]); err != nil {
			log.Error().Err(err).Str("message_id", msgs[i].ID).Msg("Analysis message failed")
		}
	}
}

// handle always acknowledges. A failed analysis would fail again on the
// same input, so it is parked on the dead-letter stream instead of retried.
func (c *Consumer) handle(ctx context.Context, msg *redis.XMessage) error {
	req, err := ParseAnalysisRequest(toStreamMessage(msg))
	if err == nil {
		err = c.processor.Process(ctx, req)
	}
	if err != nil {
		c.deadLetter(ctx, msg, err)
	}

	if ackErr := c.client.XAck(ctx, c.cfg.StreamKey, c.cfg.Group, msg.ID).Err(); ackErr != nil {
		log.Error().Err(ackErr).Str("message_id", msg.ID).Msg("Failed to acknowledge message")
	}
	return err
}

func toStreamMessage(msg *redis.XMessage) *StreamMessage {
	fields := make(map[string]string, len(msg.Values))
	for k, v := range msg.Values {
		if s, ok := v.(string); ok {
			fields[k] = s
		}
	}
	return &StreamMessage{ID: msg.ID, Fields: fields}
}

func (c *Consumer) deadLetter(ctx context.Context, msg *redis.XMessage, cause error) {
	if c.cfg.DeadLetterKey == "" {
		return
	}

	values := make(map[string]interface{}, len(msg.Values)+2)
	for k, v := range msg.Values {
		values[k] = v
	}
	values["original_id"] = msg.ID
	values["error"] = cause.Error()

	if err := c.client.XAdd(ctx, &redis.XAddArgs{
		Stream: c.cfg.DeadLetterKey,
		Values: values,
	}).Err(); err != nil {
		log.Error().Err(err).Str("message_id", msg.ID).Msg("Failed to dead-letter message")
	}
}

// trimLoop drops entries older than the retention window.
func (c *Consumer) trimLoop(ctx context.Context) {
	ticker := time.NewTicker(trimInterval)
	defer ticker.Stop()

	for {
		if err := c.trim(ctx); err != nil {
			log.Error().Err(err).Msg("Stream trim failed")
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (c *Consumer) trim(ctx context.Context) error {
	cutoff := time.Now().Add(-c.cfg.Retention)
	minID := fmt.Sprintf("%d-0", cutoff.UnixMilli())

	n, err := c.client.XTrimMinID(ctx, c.cfg.StreamKey, minID).Result()
	if err != nil {
		return fmt.Errorf("failed to trim stream: %w", err)
	}
	if n > 0 {
		log.Debug().Int64("trimmed", n).Time("cutoff", cutoff).Msg("Trimmed analysis stream")
	}
	return nil
}
