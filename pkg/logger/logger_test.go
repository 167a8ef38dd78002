package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestInit(t *testing.T) {
	require.NoError(t, Init("production"))
	assert.NotNil(t, Get())

	require.NoError(t, Init("development"))
	assert.NotNil(t, Get())
}

func TestWithContextAddsCorrelationID(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	SetLogger(zap.New(core))
	t.Cleanup(func() { SetLogger(nil) })

	ctx := ContextWithCorrelationID(context.Background(), "req-123")
	WithContext(ctx).Info("scored batch")
	WithContext(context.Background()).Info("no request")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "req-123", entries[0].ContextMap()["correlation_id"])
	assert.NotContains(t, entries[1].ContextMap(), "correlation_id")
}

func TestCorrelationIDFromContext(t *testing.T) {
	assert.Empty(t, CorrelationIDFromContext(context.Background()))
	assert.Equal(t, "abc", CorrelationIDFromContext(ContextWithCorrelationID(context.Background(), "abc")))
}

func TestGetFallsBackWithoutInit(t *testing.T) {
	SetLogger(nil)
	assert.NotNil(t, Get())
}
