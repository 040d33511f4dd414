//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/couchcryptid/storm-relief-allocator/internal/adapter/allocator"
	"github.com/couchcryptid/storm-relief-allocator/internal/adapter/kafka"
	"github.com/couchcryptid/storm-relief-allocator/internal/config"
	"github.com/couchcryptid/storm-relief-allocator/internal/observability"
	"github.com/couchcryptid/storm-relief-allocator/internal/pipeline"
	"github.com/couchcryptid/storm-relief-allocator/internal/session"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testOutcomeTopic = "test-allocation-outcomes"

// publishedOutcome is one record read back from the outcome topic.
type publishedOutcome struct {
	Key     string
	Headers map[string]string
	Body    map[string]any
}

func readOutcome(ctx context.Context, t *testing.T, consumer *kafkago.Reader) publishedOutcome {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from outcome topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	var body map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &body), "unmarshal outcome record")

	return publishedOutcome{Key: string(msg.Key), Headers: headers, Body: body}
}

// TestSubmitPublishesOutcomes runs submissions through the real allocator
// client and Kafka writer and reads the committed outcomes back off the topic.
func TestSubmitPublishesOutcomes(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testOutcomeTopic)

	service := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"Region A": 20}`))
	}))
	t.Cleanup(service.Close)

	cfg := &config.Config{
		KafkaBrokers:      []string{broker},
		KafkaOutcomeTopic: testOutcomeTopic,
		PublishEnabled:    true,
	}
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	metrics := observability.NewMetricsForTesting()
	client := allocator.NewClient(service.URL, 10*time.Second, metrics, discardLogger())
	store := session.NewStore(session.Inputs{Supplies: "50"})
	p := pipeline.New(client, store, writer, discardLogger(), metrics)

	ok := p.Submit(ctx, session.Inputs{Regions: `[{"name":"Region A","need":20,"urgency":9}]`, Supplies: "50"})
	require.True(t, ok.OK())
	failed := p.Submit(ctx, session.Inputs{Regions: "not json", Supplies: "50"})
	require.False(t, failed.OK())

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testOutcomeTopic,
		GroupID:     fmt.Sprintf("test-outcomes-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	first := readOutcome(ctx, t, consumer)
	assert.Equal(t, ok.SubmissionID, first.Key)
	assert.Equal(t, "ok", first.Headers["outcome"])
	_, err := time.Parse(time.RFC3339, first.Headers["completed_at"])
	assert.NoError(t, err, "invalid completed_at header")
	assert.Equal(t, map[string]any{"Region A": 20.0}, first.Body["result"])
	assert.EqualValues(t, 200, first.Body["status_code"])

	second := readOutcome(ctx, t, consumer)
	assert.Equal(t, failed.SubmissionID, second.Key)
	assert.Equal(t, "input", second.Headers["outcome"])
	assert.Contains(t, second.Body["error"], "invalid regions")
	assert.NotContains(t, second.Body, "request")
}

// TestWriterPublishFailsWithoutBroker checks that an unreachable broker
// surfaces as a publish error rather than blocking the submission.
func TestWriterPublishFailsWithoutBroker(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	service := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(service.Close)

	cfg := &config.Config{
		KafkaBrokers:      []string{"127.0.0.1:1"},
		KafkaOutcomeTopic: testOutcomeTopic,
		PublishEnabled:    true,
	}
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	metrics := observability.NewMetricsForTesting()
	client := allocator.NewClient(service.URL, 0, metrics, discardLogger())
	p := pipeline.New(client, session.NewStore(session.Inputs{}), writer, discardLogger(), metrics)

	outcome := p.Submit(ctx, session.Inputs{Regions: `[]`, Supplies: "1"})
	assert.True(t, outcome.OK(), "publish failures never change the outcome")
}
