package gologger

import (
	"context"
	"errors"
	"testing"

	glog "github.com/goliatone/go-logger/glog"

	"github.com/goliatone/go-mdgallery/internal/logging"
	"github.com/goliatone/go-mdgallery/pkg/interfaces"
)

func TestNewProviderCreatesLogger(t *testing.T) {
	p, err := NewProvider(Config{
		Level:  "debug",
		Format: "console",
	})
	if err != nil {
		t.Fatalf("NewProvider returned error: %v", err)
	}

	logger := p.GetLogger("mdgallery.gallery")
	if logger == nil {
		t.Fatal("expected logger, got nil")
	}

	child := logging.WithFields(logger, map[string]any{"module": "mdgallery.gallery"})
	if child == nil {
		t.Fatal("expected WithFields to return logger")
	}

	// Ensure chained operations do not panic.
	child.Debug("adapter.initialised")
}

func TestNewProviderRejectsUnknownFormat(t *testing.T) {
	_, err := NewProvider(Config{Format: "xml"})
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestGetLoggerReusesModuleChild(t *testing.T) {
	p, err := NewProvider(Config{Level: "warning", Format: "json"})
	if err != nil {
		t.Fatalf("NewProvider returned error: %v", err)
	}

	first := p.GetLogger("mdgallery.markdown")
	second := p.GetLogger(" mdgallery.markdown ")
	if first != second {
		t.Fatal("expected one child logger per module name")
	}
	if p.GetLogger("mdgallery.gallery") == first {
		t.Fatal("expected distinct modules to get distinct loggers")
	}
}

func TestConfigOptions(t *testing.T) {
	cases := []struct {
		cfg  Config
		want int
	}{
		{cfg: Config{}, want: 1},
		{cfg: Config{Format: "Pretty", Level: "DEBUG"}, want: 2},
		{cfg: Config{Format: "console", Level: "verbose", AddSource: true}, want: 2},
	}
	for _, tc := range cases {
		opts, err := tc.cfg.options()
		if err != nil {
			t.Fatalf("options(%+v): %v", tc.cfg, err)
		}
		if len(opts) != tc.want {
			t.Fatalf("options(%+v): expected %d options, got %d", tc.cfg, tc.want, len(opts))
		}
	}
}

func TestConfigFocusDropsBlanksAndDuplicates(t *testing.T) {
	cfg := Config{Focus: []string{" mdgallery.gallery ", "", "mdgallery.gallery", "mdgallery.markdown"}}
	got := cfg.focus()
	if len(got) != 2 || got[0] != "mdgallery.gallery" || got[1] != "mdgallery.markdown" {
		t.Fatalf("unexpected focus list %v", got)
	}
}

func TestNilProviderReturnsNoOp(t *testing.T) {
	var p *Provider
	logger := p.GetLogger("mdgallery")
	if logger == nil {
		t.Fatal("expected noop logger")
	}
	logger.Info("dropped")
}

func TestAdapterDelegatesToUnderlyingLogger(t *testing.T) {
	stub := &stubLogger{}
	adapted := wrap(stub)

	adapted.Trace("trace", "key", "value")
	adapted.Debug("debug")
	adapted.Info("info")
	adapted.Warn("warn")
	adapted.Error("error")
	adapted.Fatal("fatal")

	fieldsLogger, ok := adapted.(interfaces.FieldsLogger)
	if !ok {
		t.Fatalf("expected adapter to implement FieldsLogger, got %T", adapted)
	}
	fields := map[string]any{"gallery": "dogs"}
	child := fieldsLogger.WithFields(fields)
	if child == nil {
		t.Fatal("expected WithFields to return logger")
	}

	fields["gallery"] = "cats"
	if len(stub.fields) != 1 {
		t.Fatalf("expected fields to be recorded once, got %d", len(stub.fields))
	}
	if stub.fields[0]["gallery"] != "dogs" {
		t.Fatalf("expected fields to be cloned, got %v", stub.fields[0]["gallery"])
	}

	ctx := context.WithValue(context.Background(), struct{}{}, "value")
	adapted.WithContext(ctx)
	if len(stub.contexts) != 1 || stub.contexts[0] != ctx {
		t.Fatalf("expected context propagation, got %#v", stub.contexts)
	}

	wantCalls := []string{"trace", "debug", "info", "warn", "error", "fatal"}
	if len(stub.calls) != len(wantCalls) {
		t.Fatalf("expected %d calls, got %d", len(wantCalls), len(stub.calls))
	}
	for i, want := range wantCalls {
		if stub.calls[i] != want {
			t.Fatalf("call %d: expected %q, got %q", i, want, stub.calls[i])
		}
	}
}

type stubLogger struct {
	calls    []string
	fields   []map[string]any
	contexts []context.Context
}

var _ glog.Logger = (*stubLogger)(nil)
var _ glog.FieldsLogger = (*stubLogger)(nil)

func (s *stubLogger) Trace(string, ...any) { s.calls = append(s.calls, "trace") }
func (s *stubLogger) Debug(string, ...any) { s.calls = append(s.calls, "debug") }
func (s *stubLogger) Info(string, ...any)  { s.calls = append(s.calls, "info") }
func (s *stubLogger) Warn(string, ...any)  { s.calls = append(s.calls, "warn") }
func (s *stubLogger) Error(string, ...any) { s.calls = append(s.calls, "error") }
func (s *stubLogger) Fatal(string, ...any) { s.calls = append(s.calls, "fatal") }

func (s *stubLogger) WithContext(ctx context.Context) glog.Logger {
	s.contexts = append(s.contexts, ctx)
	return s
}

func (s *stubLogger) WithFields(fields map[string]any) glog.Logger {
	copied := make(map[string]any, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	s.fields = append(s.fields, copied)
	return s
}
