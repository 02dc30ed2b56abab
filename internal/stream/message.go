package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/RishiKendai/aegis-text/internal/models"
	"github.com/redis/go-redis/v9"
)

const (
	fieldAnalysisID = "analysisId"
	fieldPayload    = "payload"
)

var ErrMalformedMessage = errors.New("malformed stream message")

// StreamMessage is a stream entry with its fields flattened to strings
type StreamMessage struct {
	ID     string
	Fields map[string]string
}

// ParseAnalysisRequest decodes a queued analysis request
func ParseAnalysisRequest(msg *StreamMessage) (*models.AnalysisRequest, error) {
	analysisID := msg.Fields[fieldAnalysisID]
	if analysisID == "" {
		return nil, fmt.Errorf("%w: missing %s", ErrMalformedMessage, fieldAnalysisID)
	}

	payload, ok := msg.Fields[fieldPayload]
	if !ok {
		return nil, fmt.Errorf("%w: missing %s", ErrMalformedMessage, fieldPayload)
	}

	var req models.AnalysisRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	req.AnalysisID = analysisID

	return &req, nil
}

// Producer queues analysis requests on the stream
type Producer struct {
	client    redis.Cmdable
	streamKey string
}

func NewProducer(client redis.Cmdable, streamKey string) *Producer {
	return &Producer{
		client:    client,
		streamKey: streamKey,
	}
}

func encodeRequest(req *models.AnalysisRequest) (map[string]interface{}, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal analysis request: %w", err)
	}
	return map[string]interface{}{
		fieldAnalysisID: req.AnalysisID,
		fieldPayload:    string(payload),
	}, nil
}

func (p *Producer) Enqueue(ctx context.Context, req *models.AnalysisRequest) error {
	values, err := encodeRequest(req)
	if err != nil {
		return err
	}

	if err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.streamKey,
		Values: values,
	}).Err(); err != nil {
		return fmt.Errorf("failed to enqueue analysis: %w", err)
	}

	return nil
}
