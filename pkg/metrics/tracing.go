package metrics

import (
	"context"
	"fmt"

	"github.com/newrelic/go-agent/v3/newrelic"
)

// TraceMethodCall traces a method call with a given struct/package and method
// names. The trace joins the New Relic transaction on ctx, or starts a
// background transaction when ctx only carries the application. Returns nil,
// which is safe to use, when neither is present.
func TraceMethodCall(ctx context.Context, structOrPackageName, methodName string) *MethodTracer {
	name := fmt.Sprintf("%s %s", structOrPackageName, methodName)

	txn := newrelic.FromContext(ctx)
	var owned bool
	if txn == nil {
		app, ok := fromContext(ctx)
		if !ok {
			return nil
		}
		txn = app.StartTransaction(name)
		owned = true
	}

	return &MethodTracer{
		txn:   txn,
		seg:   txn.StartSegment(name),
		owned: owned,
	}
}

// MethodTracer collects analytics for a given method call
type MethodTracer struct {
	txn   *newrelic.Transaction
	seg   *newrelic.Segment
	owned bool
}

// AddAttribute adds a key-value pair metadata to the method trace
func (t *MethodTracer) AddAttribute(key string, value interface{}) {
	if t == nil {
		return
	}
	t.seg.AddAttribute(key, value)
}

// OnError observes an error within a method trace
func (t *MethodTracer) OnError(err error) {
	if t == nil || err == nil {
		return
	}
	t.txn.NoticeError(err)
}

// End completes the trace, and the transaction if the tracer started it.
func (t *MethodTracer) End() {
	if t == nil {
		return
	}

	t.seg.End()
	if t.owned {
		t.txn.End()
	}
}
