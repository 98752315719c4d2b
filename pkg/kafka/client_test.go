package kafka

import (
	"context"
	"errors"
	"testing"
	"time"

	"contenthub/pkg/tasks"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
)

type flakyProcessor struct {
	failures int
	calls    int
}

func (p *flakyProcessor) Process(_ context.Context, _ tasks.TreeEvent) error {
	p.calls++
	if p.calls <= p.failures {
		return errors.New("index unavailable")
	}
	return nil
}

func TestProcessWithRetryRecovers(t *testing.T) {
	retryBackoff = time.Millisecond
	p := &flakyProcessor{failures: 2}

	ok := processWithRetry(context.Background(), p, tasks.TreeEvent{Type: tasks.ContentCreated, ID: "x"}, nil, kafka.Message{})
	assert.True(t, ok)
	assert.Equal(t, 3, p.calls)
}

func TestProcessWithRetryGivesUp(t *testing.T) {
	retryBackoff = time.Millisecond
	p := &flakyProcessor{failures: 100}

	ok := processWithRetry(context.Background(), p, tasks.TreeEvent{Type: tasks.ContentCreated, ID: "x"}, nil, kafka.Message{})
	assert.True(t, ok)
	assert.Equal(t, maxAttempts, p.calls)
}

func TestProcessWithRetryStopsOnCancel(t *testing.T) {
	retryBackoff = time.Hour
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := &flakyProcessor{failures: 100}

	ok := processWithRetry(ctx, p, tasks.TreeEvent{Type: tasks.ContentCreated, ID: "x"}, nil, kafka.Message{})
	assert.False(t, ok)
	assert.Equal(t, 1, p.calls)
}
