package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func jsonLogger(buf *bytes.Buffer, level string) *Logger {
	return NewWithWriter(&Config{Level: level, Format: FormatJSON}, "pullfeed", buf)
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	line := strings.TrimSpace(buf.String())
	if err := json.Unmarshal([]byte(line), &m); err != nil {
		t.Fatalf("decode %q: %v", line, err)
	}
	return m
}

func TestNewDefault(t *testing.T) {
	l := NewDefault("test-service")
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
	if l.service != "test-service" {
		t.Errorf("service = %q, want %q", l.service, "test-service")
	}
}

func TestJSONOutputCarriesService(t *testing.T) {
	var buf bytes.Buffer
	jsonLogger(&buf, "info").Info("hello", Fields("n", 3))

	m := decodeLine(t, &buf)
	if m["message"] != "hello" {
		t.Errorf("message = %v", m["message"])
	}
	if m[FieldService] != "pullfeed" {
		t.Errorf("service = %v", m[FieldService])
	}
	if m["n"] != float64(3) {
		t.Errorf("n = %v", m["n"])
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := jsonLogger(&buf, "warn")
	l.Debug("dropped")
	l.Info("dropped")
	if buf.Len() != 0 {
		t.Fatalf("expected nothing below warn, got %q", buf.String())
	}
	l.Warn("kept")
	if !strings.Contains(buf.String(), "kept") {
		t.Errorf("warn line missing: %q", buf.String())
	}
}

func TestNewInvalidLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	l := jsonLogger(&buf, "nonsense")
	l.Debug("dropped")
	l.Info("kept")
	if strings.Contains(buf.String(), "dropped") || !strings.Contains(buf.String(), "kept") {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestNewFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("LOG_OUTPUT", OutputDiscard)

	l := NewFromEnv("env-service")
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
	if got := l.GetLogger().GetLevel().String(); got != "debug" {
		t.Errorf("level = %q, want debug", got)
	}
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	jsonLogger(&buf, "info").WithComponent("feed").Info("x")
	if m := decodeLine(t, &buf); m[FieldComponent] != "feed" {
		t.Errorf("component = %v", m[FieldComponent])
	}
}

func TestWithContextRequestID(t *testing.T) {
	var buf bytes.Buffer
	ctx := context.WithValue(context.Background(), RequestIDKey, "req-1")
	jsonLogger(&buf, "info").WithContext(ctx).Info("x")
	if m := decodeLine(t, &buf); m[FieldRequestID] != "req-1" {
		t.Errorf("request_id = %v", m[FieldRequestID])
	}
}

func TestWithContextWithoutRequestID(t *testing.T) {
	var buf bytes.Buffer
	jsonLogger(&buf, "info").WithContext(context.Background()).Info("x")
	if _, ok := decodeLine(t, &buf)[FieldRequestID]; ok {
		t.Error("request_id should be absent")
	}
}

func TestWithFieldsAndError(t *testing.T) {
	var buf bytes.Buffer
	jsonLogger(&buf, "info").
		WithFields(map[string]interface{}{FieldFeed: "home"}).
		WithError(errors.New("boom")).
		Error("failed")

	m := decodeLine(t, &buf)
	if m[FieldFeed] != "home" {
		t.Errorf("feed = %v", m[FieldFeed])
	}
	if m["error"] != "boom" {
		t.Errorf("error = %v", m["error"])
	}
}

func TestNopDiscards(t *testing.T) {
	l := Nop()
	l.Info("nothing")
	l.WithComponent("x").Warn("nothing")
}

func TestInitSetsGlobal(t *testing.T) {
	prev := GetGlobalLogger()
	defer SetGlobalLogger(prev)

	Init(&Config{Level: "error", Format: FormatJSON, Output: OutputDiscard})
	if got := GetGlobalLogger().GetLogger().GetLevel().String(); got != "error" {
		t.Errorf("global level = %q, want error", got)
	}
}

func TestPackageLevelFunctionsUseGlobal(t *testing.T) {
	prev := GetGlobalLogger()
	defer SetGlobalLogger(prev)

	var buf bytes.Buffer
	SetGlobalLogger(jsonLogger(&buf, "debug"))

	Debug("d")
	Info("i")
	Warn("w")
	Error("e")
	WithComponent("sched").Info("c")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 5 {
		t.Fatalf("got %d lines, want 5: %q", len(lines), buf.String())
	}
	if !strings.Contains(lines[4], `"component":"sched"`) {
		t.Errorf("component line = %q", lines[4])
	}
}

func TestFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feed.log")
	l := New(&Config{Level: "info", Format: FormatJSON, Output: path}, "pullfeed")
	l.Info("to file")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "to file") {
		t.Errorf("file content = %q", data)
	}
}

func TestConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&Config{Level: "info", Format: FormatConsole, NoColor: true}, "pullfeed", &buf)
	l.Info("console line")

	out := buf.String()
	if !strings.Contains(out, "[PUL][INF]") {
		t.Errorf("missing level tag: %q", out)
	}
	if !strings.Contains(out, "console line") {
		t.Errorf("missing message: %q", out)
	}
}

func TestConfigApplyDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.ApplyDefaults()

	if cfg.Level != "info" {
		t.Errorf("Level = %q", cfg.Level)
	}
	if cfg.Format != FormatConsole {
		t.Errorf("Format = %q", cfg.Format)
	}
	if cfg.Output != OutputStdout {
		t.Errorf("Output = %q", cfg.Output)
	}
	if !cfg.Timestamp {
		t.Error("Timestamp should default to true")
	}

	cfg = &Config{Level: "debug", Format: FormatJSON, Output: OutputDiscard}
	cfg.ApplyDefaults()
	if cfg.Level != "debug" || cfg.Format != FormatJSON || cfg.Output != OutputDiscard {
		t.Errorf("explicit values overwritten: %+v", cfg)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{Level: "info", Format: FormatJSON}, false},
		{"disabled", Config{Level: "disabled", Format: FormatConsole}, false},
		{"bad level", Config{Level: "loud", Format: FormatJSON}, true},
		{"bad format", Config{Level: "info", Format: "xml"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestFields(t *testing.T) {
	tests := []struct {
		name string
		kvs  []interface{}
		want map[string]interface{}
	}{
		{"empty", nil, map[string]interface{}{}},
		{"pairs", []interface{}{"a", 1, "b", "x"}, map[string]interface{}{"a": 1, "b": "x"}},
		{"odd trailing key", []interface{}{"a", 1, "b"}, map[string]interface{}{"a": 1}},
		{"non-string key", []interface{}{7, 1, "b", 2}, map[string]interface{}{"b": 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Fields(tt.kvs...)
			if len(got) != len(tt.want) {
				t.Fatalf("Fields() = %v, want %v", got, tt.want)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("Fields()[%q] = %v, want %v", k, got[k], v)
				}
			}
		})
	}
}

func TestErrorFields(t *testing.T) {
	f := ErrorFields("pull", errors.New("broken"))
	if f[FieldOperation] != "pull" || f[FieldError] != "broken" {
		t.Errorf("ErrorFields = %v", f)
	}
}

func TestDurationFields(t *testing.T) {
	f := DurationFields("batch", 1500*time.Millisecond)
	if f[FieldOperation] != "batch" || f[FieldDuration] != int64(1500) {
		t.Errorf("DurationFields = %v", f)
	}
}

func TestMergeHelpers(t *testing.T) {
	f := MergeWithError(nil, errors.New("x"))
	if f[FieldError] != "x" {
		t.Errorf("MergeWithError(nil) = %v", f)
	}

	base := Fields(FieldAmount, 4)
	f = MergeWithDuration(base, 20*time.Millisecond)
	if f[FieldAmount] != 4 || f[FieldDuration] != int64(20) {
		t.Errorf("MergeWithDuration = %v", f)
	}
}
