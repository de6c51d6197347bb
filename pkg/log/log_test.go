package log

import (
	"context"
	"testing"

	"github.com/google/uuid"

	contextPkg "voicechess/pkg/context"
)

func TestWithContext(t *testing.T) {
	ctx := contextPkg.WithRequestID(context.Background(), "req-1")
	ctx = contextPkg.WithSessionID(ctx, "game-1")

	entry := WithContext(Discard(), ctx)
	if got := entry.Data[RequestIDKey]; got != "req-1" {
		t.Errorf("request_id = %v, want req-1", got)
	}
	if got := entry.Data[SessionIDKey]; got != "game-1" {
		t.Errorf("session_id = %v, want game-1", got)
	}

	entry = WithContext(Discard(), contextPkg.WithRequestID(context.Background(), "req-2"))
	if _, ok := entry.Data[SessionIDKey]; ok {
		t.Error("session_id set without a session in ctx")
	}
}

func TestErrorWithTraceID(t *testing.T) {
	t.Setenv("APP_ENV", "test")

	if got := ErrorWithTraceID(Fields{RequestIDKey: "req-9"}, "boom"); got != "req-9" {
		t.Errorf("trace id = %q, want the request id", got)
	}

	got := ErrorWithTraceID(nil, "boom")
	if _, err := uuid.Parse(got); err != nil {
		t.Errorf("trace id %q is not a uuid: %v", got, err)
	}
}
