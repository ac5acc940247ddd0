package ctxutil

import (
	"context"
	"testing"

	"github.com/yungbote/leontief-backend/internal/access"
)

func TestPrincipalDefaultsToAnonymous(t *testing.T) {
	if p := Principal(context.Background()); p.IsAuthenticated() {
		t.Fatalf("expected anonymous, got %+v", p)
	}

	ctx := WithRequestData(context.Background(), &RequestData{
		Principal: access.Principal{Kind: access.User, UserID: 4},
	})
	if p := Principal(ctx); p.UserID != 4 || p.Kind != access.User {
		t.Fatalf("unexpected principal %+v", p)
	}
}

func TestTraceData(t *testing.T) {
	if GetTraceData(context.Background()) != nil {
		t.Fatalf("expected nil trace data")
	}
	ctx := WithTraceData(context.Background(), &TraceData{TraceID: "t", RequestID: "r"})
	if td := GetTraceData(ctx); td == nil || td.TraceID != "t" || td.RequestID != "r" {
		t.Fatalf("unexpected trace data %+v", td)
	}
}

func TestDefault(t *testing.T) {
	var unset context.Context
	if Default(unset) == nil {
		t.Fatalf("Default(nil) returned nil")
	}
	ctx := context.WithValue(context.Background(), traceDataKey{}, &TraceData{TraceID: "t"})
	if Default(ctx) != ctx {
		t.Fatalf("Default should return a non-nil ctx unchanged")
	}
}
