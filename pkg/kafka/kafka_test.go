package kafka

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMessage_EncodesJSON(t *testing.T) {
	msg, err := NewMessage("user-1", map[string]interface{}{"kind": "coupon"})
	require.NoError(t, err)

	assert.Equal(t, []byte("user-1"), msg.Key)
	assert.JSONEq(t, `{"kind":"coupon"}`, string(msg.Value))

	var out map[string]string
	require.NoError(t, UnmarshalMessage(msg, &out))
	assert.Equal(t, "coupon", out["kind"])
}

func TestParseStartOffset(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{in: "", want: kafka.FirstOffset},
		{in: "first", want: kafka.FirstOffset},
		{in: "LAST", want: kafka.LastOffset},
		{in: "middle", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseStartOffset(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestParseCompression(t *testing.T) {
	tests := []struct {
		in      string
		want    kafka.Compression
		wantErr bool
	}{
		{in: "", want: kafka.Snappy},
		{in: "none", want: 0},
		{in: "gzip", want: kafka.Gzip},
		{in: "lz4", want: kafka.Lz4},
		{in: "zstd", want: kafka.Zstd},
		{in: "brotli", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseCompression(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestConsumerOptions_IgnoreNonPositive(t *testing.T) {
	cfg := &consumerConfig{maxWait: _defaultMaxWait, commitInterval: _defaultCommitInterval, retryBackoff: _defaultRetryBackoff}

	for _, opt := range []ConsumerOption{WithMaxWait(0), WithCommitInterval(-time.Second), WithRetryBackoff(0)} {
		opt(cfg)
	}
	assert.Equal(t, _defaultMaxWait, cfg.maxWait)
	assert.Equal(t, _defaultCommitInterval, cfg.commitInterval)
	assert.Equal(t, _defaultRetryBackoff, cfg.retryBackoff)

	for _, opt := range []ConsumerOption{WithMaxWait(time.Second), WithCommitInterval(5 * time.Second), WithRetryBackoff(time.Millisecond), WithStartOffset(kafka.LastOffset)} {
		opt(cfg)
	}
	assert.Equal(t, time.Second, cfg.maxWait)
	assert.Equal(t, 5*time.Second, cfg.commitInterval)
	assert.Equal(t, time.Millisecond, cfg.retryBackoff)
	assert.Equal(t, kafka.LastOffset, cfg.startOffset)
}

func TestHandleWithRetry(t *testing.T) {
	c := &Consumer{retryBackoff: time.Millisecond}
	calls := 0
	handler := MessageHandlerFunc(func(context.Context, kafka.Message) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})

	require.NoError(t, c.handleWithRetry(context.Background(), handler, kafka.Message{}, 3))
	assert.Equal(t, 3, calls)
}

func TestHandleWithRetry_GivesUp(t *testing.T) {
	c := &Consumer{retryBackoff: time.Millisecond}
	boom := errors.New("boom")
	calls := 0
	handler := MessageHandlerFunc(func(context.Context, kafka.Message) error {
		calls++
		return boom
	})

	err := c.handleWithRetry(context.Background(), handler, kafka.Message{}, 2)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 3, calls)
}
