package tracing

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGenerateRequestID(t *testing.T) {
	first := GenerateRequestID()
	second := GenerateRequestID()

	assert.True(t, strings.HasPrefix(first, "req_"))
	assert.NotEqual(t, first, second)
}

func TestRequestContextRoundTrip(t *testing.T) {
	ctx := context.Background()
	start := time.Now()

	ctx = WithRequestID(ctx, "req_test")
	ctx = WithStartTime(ctx, start)

	assert.Equal(t, "req_test", GetRequestID(ctx))
	assert.Equal(t, start, GetStartTime(ctx))

	info := GetRequestInfo(ctx)
	assert.Equal(t, "req_test", info.RequestID)
	assert.Equal(t, start, info.StartTime)
}

func TestRequestContextEmpty(t *testing.T) {
	ctx := context.Background()

	assert.Empty(t, GetRequestID(ctx))
	assert.True(t, GetStartTime(ctx).IsZero())
	assert.Equal(t, time.Duration(0), Duration(ctx))
}

func TestDuration(t *testing.T) {
	ctx := WithStartTime(context.Background(), time.Now().Add(-time.Second))

	elapsed := Duration(ctx)
	assert.GreaterOrEqual(t, elapsed, time.Second)
}
