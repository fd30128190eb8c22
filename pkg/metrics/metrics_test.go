package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecording_NoApplication(t *testing.T) {
	ctx := NewContext(context.Background(), nil)

	_, ok := fromContext(ctx)
	assert.False(t, ok)

	// None of these should panic without an application on the context
	RecordCount(ctx, "count", 1)
	RecordDuration(ctx, "duration", time.Second)
	RecordEvent(ctx, "event", map[string]interface{}{"key": "value"})

	tracer := TraceMethodCall(ctx, "metrics", "TestRecording_NoApplication")
	assert.Nil(t, tracer)
	tracer.AddAttribute("key", "value")
	tracer.OnError(errors.New("error"))
	tracer.End()
}

func TestFormatMessage(t *testing.T) {
	entry := logrus.NewEntry(logrus.New())
	entry.Message = "hello"
	assert.Equal(t, "hello", formatMessage(entry))

	entry = entry.WithError(errors.New("failure")).WithField("slot", 12)
	entry.Message = "hello"
	assert.Equal(t, `message="hello", error="failure", data={"slot":12}`, formatMessage(entry))
}

func TestTraceMethodCall_StartsTransaction(t *testing.T) {
	app, err := newrelic.NewApplication(
		newrelic.ConfigAppName("metrics-test"),
		newrelic.ConfigEnabled(false),
	)
	require.NoError(t, err)
	defer app.Shutdown(0)

	ctx := NewContext(context.Background(), app)

	tracer := TraceMethodCall(ctx, "metrics", "TestTraceMethodCall_StartsTransaction")
	require.NotNil(t, tracer)
	assert.True(t, tracer.owned)
	tracer.AddAttribute("key", "value")
	tracer.OnError(errors.New("error"))
	tracer.End()

	// An existing transaction is joined rather than replaced
	txn := app.StartTransaction("outer")
	defer txn.End()

	tracer = TraceMethodCall(newrelic.NewContext(ctx, txn), "metrics", "TestTraceMethodCall_StartsTransaction")
	require.NotNil(t, tracer)
	assert.False(t, tracer.owned)
	tracer.End()
}
