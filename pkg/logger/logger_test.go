package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]zerolog.Level{
		"":         zerolog.InfoLevel,
		"debug":    zerolog.DebugLevel,
		" WARN ":   zerolog.WarnLevel,
		"nonsense": zerolog.InfoLevel,
	}
	for input, want := range cases {
		if got := ParseLevel(input); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestContextFieldsAreCarried(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logg := New(Options{ServiceName: "storefront", Output: &buf})

	ctx := logg.WithUserID(context.Background(), "user-1")
	ctx = logg.WithFields(ctx, map[string]any{"product_id": "p1"})
	logg.Info(ctx, "cart.item_added")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if entry["service"] != "storefront" {
		t.Fatalf("expected service field, got %v", entry["service"])
	}
	if entry["user_id"] != "user-1" || entry["product_id"] != "p1" {
		t.Fatalf("expected context fields, got %v", entry)
	}
	if entry["message"] != "cart.item_added" {
		t.Fatalf("unexpected message %v", entry["message"])
	}
}

func TestDebugSuppressedAtInfo(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logg := New(Options{Output: &buf, Level: zerolog.InfoLevel})
	logg.Debug(context.Background(), "noise")
	if buf.Len() != 0 {
		t.Fatalf("expected debug to be suppressed, got %q", buf.String())
	}
}

func TestRequestIDRetrievable(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logg := New(Options{Output: &buf})
	if got := RequestIDFrom(context.Background()); got != "" {
		t.Fatalf("expected empty id, got %q", got)
	}

	ctx := logg.WithRequestID(context.Background(), "req-9")
	if got := RequestIDFrom(ctx); got != "req-9" {
		t.Fatalf("expected req-9, got %q", got)
	}
	logg.Warn(ctx, "request.rejected")
	if !bytes.Contains(buf.Bytes(), []byte(`"request_id":"req-9"`)) {
		t.Fatalf("expected request id on line, got %s", buf.String())
	}
}
