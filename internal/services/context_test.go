package services

import (
	"context"
	"testing"
)

func TestContextAnnotations(t *testing.T) {
	ctx := context.Background()

	if _, ok := SessionIDFromContext(ctx); ok {
		t.Fatal("expected no session id on fresh context")
	}

	ctx = WithSessionID(ctx, "session-1")
	ctx = WithCurator(ctx, "velvet")
	ctx = WithRequestID(ctx, "req-1")

	if got, ok := SessionIDFromContext(ctx); !ok || got != "session-1" {
		t.Fatalf("session id = %q, %v", got, ok)
	}
	if got, ok := CuratorFromContext(ctx); !ok || got != "velvet" {
		t.Fatalf("curator = %q, %v", got, ok)
	}
	if got, ok := RequestIDFromContext(ctx); !ok || got != "req-1" {
		t.Fatalf("request id = %q, %v", got, ok)
	}
}

func TestContextAnnotationsIgnoreEmptyValues(t *testing.T) {
	ctx := context.Background()
	if got := WithSessionID(ctx, ""); got != ctx {
		t.Fatal("empty session id should not annotate context")
	}
	if got := WithCurator(ctx, ""); got != ctx {
		t.Fatal("empty curator should not annotate context")
	}
	if got := WithRequestID(ctx, ""); got != ctx {
		t.Fatal("empty request id should not annotate context")
	}
}
