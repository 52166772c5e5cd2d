package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
)

func TestRequestID(t *testing.T) {
	ctx := context.Background()
	if RequestID(ctx) != "" {
		t.Error("empty context should have no request ID")
	}
	ctx = WithRequestID(ctx, "01HZX")
	if got := RequestID(ctx); got != "01HZX" {
		t.Errorf("RequestID() = %q", got)
	}
}

func TestL(t *testing.T) {
	tests := []struct {
		name      string
		requestID string
	}{
		{"without request ID", ""},
		{"with request ID", "01HZX"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			l, err := New(Config{Level: "info", Format: "json", Output: &buf})
			if err != nil {
				t.Fatal(err)
			}
			defer SetLevel("warn")

			ctx := WithLogger(context.Background(), l)
			if tt.requestID != "" {
				ctx = WithRequestID(ctx, tt.requestID)
			}
			L(ctx).Info("call")

			var entry map[string]any
			if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
				t.Fatalf("decode %q: %v", buf.String(), err)
			}
			got, _ := entry["request_id"].(string)
			if got != tt.requestID {
				t.Errorf("request_id = %q, want %q", got, tt.requestID)
			}
		})
	}
}

func TestL_FallsBackToDefault(t *testing.T) {
	if L(context.Background()) == nil {
		t.Fatal("L() returned nil")
	}
}
