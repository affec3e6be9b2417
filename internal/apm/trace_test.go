package apm

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/fd1az/resale-pricer/internal/logger"
)

func TestParseHeaders(t *testing.T) {
	tests := []struct {
		in      string
		want    map[string]string
		wantErr bool
	}{
		{"", map[string]string{}, false},
		{"x-honeycomb-team=abc", map[string]string{"x-honeycomb-team": "abc"}, false},
		{" api-key = k1 , tenant=t=1 ", map[string]string{"api-key": "k1", "tenant": "t=1"}, false},
		{"novalue", nil, true},
		{"=v", nil, true},
	}

	for _, tt := range tests {
		got, err := ParseHeaders(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseHeaders(%q) err = %v", tt.in, err)
			continue
		}
		if tt.wantErr {
			continue
		}
		if len(got) != len(tt.want) {
			t.Errorf("ParseHeaders(%q) = %v, want %v", tt.in, got, tt.want)
			continue
		}
		for k, v := range tt.want {
			if got[k] != v {
				t.Errorf("ParseHeaders(%q)[%s] = %q, want %q", tt.in, k, got[k], v)
			}
		}
	}
}

func TestNewTraceProvider_None(t *testing.T) {
	log := logger.New(io.Discard, logger.LevelError, "pricer-test", nil)
	tp, err := NewTraceProvider(context.Background(), TraceConfig{Provider: NoneProvider}, log)
	if err != nil {
		t.Fatalf("NewTraceProvider: %v", err)
	}
	if err := tp.Stop(); err != nil {
		t.Errorf("Stop: %v", err)
	}
}

func TestNewTraceProvider_UnknownProvider(t *testing.T) {
	log := logger.New(io.Discard, logger.LevelError, "pricer-test", nil)
	if _, err := NewTraceProvider(context.Background(), TraceConfig{Provider: "jaeger"}, log); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestNewTraceProvider_ConsoleExportsSpans(t *testing.T) {
	var out bytes.Buffer
	log := logger.New(io.Discard, logger.LevelError, "pricer-test", nil)

	tp, err := NewTraceProvider(context.Background(), TraceConfig{
		ServiceName: "pricer-test",
		Provider:    ConsoleProvider,
		Output:      &out,
	}, log)
	if err != nil {
		t.Fatalf("NewTraceProvider: %v", err)
	}

	ctx, span := NewTracer("apm-test").StartSpanFromContext(context.Background(), "pricing.test")
	if TraceID(ctx) == "" {
		t.Error("TraceID empty inside a recorded span")
	}
	span.NoticeError(errors.New("boom"))
	span.End()

	if err := tp.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if !bytes.Contains(out.Bytes(), []byte(`"Name": "pricing.test"`)) {
		t.Errorf("span not exported:\n%s", out.String())
	}
}

func TestTraceID_NoSpan(t *testing.T) {
	if got := TraceID(context.Background()); got != "" {
		t.Errorf("TraceID = %q, want empty", got)
	}
}
