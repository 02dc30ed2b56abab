package stream

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/RishiKendai/aegis-text/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unreachableRedis(t *testing.T) *redis.Client {
	t.Helper()
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		MaxRetries:  -1,
		DialTimeout: 200 * time.Millisecond,
	})
	t.Cleanup(func() { client.Close() })
	return client
}

func TestToStreamMessageKeepsStringFields(t *testing.T) {
	msg := &redis.XMessage{
		ID: "5-1",
		Values: map[string]interface{}{
			fieldAnalysisID: "an-1",
			fieldPayload:    "{}",
			"attempt":       3,
		},
	}

	got := toStreamMessage(msg)

	assert.Equal(t, "5-1", got.ID)
	assert.Equal(t, map[string]string{fieldAnalysisID: "an-1", fieldPayload: "{}"}, got.Fields)
}

func TestHandleMalformedMessageReturnsParseError(t *testing.T) {
	c := NewConsumer(unreachableRedis(t), ConsumerConfig{
		StreamKey:     "analysis:stream",
		Group:         "analysis:group",
		Name:          "test",
		DeadLetterKey: "analysis:dlq",
	}, nil)

	err := c.handle(context.Background(), &redis.XMessage{ID: "1-0", Values: map[string]interface{}{}})

	assert.ErrorIs(t, err, ErrMalformedMessage)
}

func TestEnqueueWrapsRedisError(t *testing.T) {
	p := NewProducer(unreachableRedis(t), "analysis:stream")

	err := p.Enqueue(context.Background(), &models.AnalysisRequest{AnalysisID: "an-1"})

	assert.ErrorContains(t, err, "failed to enqueue analysis")
}

// groupCreateReply answers XGROUP CREATE with a fixed error; other commands are not expected
type groupCreateReply struct {
	redis.Cmdable
	err error
}

func (g groupCreateReply) XGroupCreateMkStream(ctx context.Context, _, _, _ string) *redis.StatusCmd {
	return redis.NewStatusResult("OK", g.err)
}

func TestEnsureGroup(t *testing.T) {
	tests := []struct {
		name    string
		reply   error
		wantErr bool
	}{
		{"created", nil, false},
		{"already exists", errors.New("BUSYGROUP Consumer Group name already exists"), false},
		{"other failure", errors.New("WRONGTYPE Operation against a key holding the wrong kind of value"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewConsumer(groupCreateReply{err: tt.reply}, ConsumerConfig{
				StreamKey: "analysis:stream",
				Group:     "analysis:group",
			}, nil)

			err := c.ensureGroup(context.Background())

			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorContains(t, err, "failed to create consumer group")
				return
			}
			assert.NoError(t, err)
		})
	}
}
