package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestLogger_Log(t *testing.T) {
	tests := []struct {
		name    string
		level   Level
		message string
		fields  Fields
		err     error
		want    bool
	}{
		{
			name:    "info message",
			level:   LevelInfo,
			message: "season loaded",
			fields:  Fields{"season": "2021-2022"},
			want:    true,
		},
		{
			name:    "debug below threshold",
			level:   LevelDebug,
			message: "request headers",
			want:    false,
		},
		{
			name:    "error with err",
			level:   LevelError,
			message: "fetch failed",
			err:     errors.New("connection refused"),
			want:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			l := New(LevelInfo, &buf)

			l.log(tt.level, tt.message, tt.fields, tt.err)

			if logged := buf.Len() > 0; logged != tt.want {
				t.Fatalf("log() logged = %v, want %v", logged, tt.want)
			}
			if !tt.want {
				return
			}

			var entry LogEntry
			if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
				t.Fatalf("log output is not JSON: %v (%q)", err, buf.String())
			}
			if entry.Message != tt.message {
				t.Errorf("Message = %q, want %q", entry.Message, tt.message)
			}
			if entry.Level != string(tt.level) {
				t.Errorf("Level = %q, want %q", entry.Level, tt.level)
			}
			if tt.err != nil && entry.Error != tt.err.Error() {
				t.Errorf("Error = %q, want %q", entry.Error, tt.err.Error())
			}
		})
	}
}

func TestLogger_Levels(t *testing.T) {
	tests := []struct {
		name      string
		minLevel  Level
		logLevel  Level
		shouldLog bool
	}{
		{"debug logs at debug", LevelDebug, LevelDebug, true},
		{"info logs at debug", LevelDebug, LevelInfo, true},
		{"debug doesn't log at info", LevelInfo, LevelDebug, false},
		{"warn doesn't log at error", LevelError, LevelWarn, false},
		{"error always logs", LevelDebug, LevelError, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			New(tt.minLevel, &buf).log(tt.logLevel, "test", nil, nil)

			if logged := buf.Len() > 0; logged != tt.shouldLog {
				t.Errorf("logged = %v, want %v", logged, tt.shouldLog)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{" Warn ", LevelWarn, false},
		{"error", LevelError, false},
		{"trace", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSetDefault(t *testing.T) {
	prev := Default()
	defer SetDefault(prev)

	var buf bytes.Buffer
	SetDefault(New(LevelDebug, &buf))

	Debug("debug line", nil)
	Info("info line", Fields{"key": "value"})
	Warn("warn line", nil)
	Error("error line", nil, errors.New("boom"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("default logger wrote %d lines, want 4:\n%s", len(lines), buf.String())
	}
}

func TestMetrics_Counter(t *testing.T) {
	m := NewMetrics()

	m.IncrCounter("cache.hit")
	m.IncrCounter("cache.hit")
	m.IncrCounter("cache.hit")

	if got := m.Counter("cache.hit"); got != 3 {
		t.Errorf("Counter() = %v, want 3", got)
	}

	counters := m.GetSnapshot()["counters"].(map[string]int64)
	if counters["cache.hit"] != 3 {
		t.Errorf("snapshot counter = %v, want 3", counters["cache.hit"])
	}
}

func TestMetrics_Gauge(t *testing.T) {
	m := NewMetrics()

	m.SetGauge("cache.size", 2)
	m.SetGauge("cache.size", 5)

	gauges := m.GetSnapshot()["gauges"].(map[string]float64)
	if gauges["cache.size"] != 5 {
		t.Errorf("Gauge = %v, want 5", gauges["cache.size"])
	}
}

func TestMetrics_Timing(t *testing.T) {
	m := NewMetrics()

	m.RecordTiming("fetch.duration", 100*time.Millisecond)
	m.RecordTiming("fetch.duration", 200*time.Millisecond)
	m.RecordTiming("fetch.duration", 150*time.Millisecond)

	timings := m.GetSnapshot()["timings"].(map[string]map[string]interface{})
	fetch := timings["fetch.duration"]

	if fetch["count"].(int64) != 3 {
		t.Errorf("Timing count = %v, want 3", fetch["count"])
	}
	if fetch["min"].(string) != "100ms" {
		t.Errorf("Min timing = %v, want 100ms", fetch["min"])
	}
	if fetch["max"].(string) != "200ms" {
		t.Errorf("Max timing = %v, want 200ms", fetch["max"])
	}
	if fetch["average"].(string) != "150ms" {
		t.Errorf("Average timing = %v, want 150ms", fetch["average"])
	}
}

func TestMetrics_TimingKeepsAggregatesOnly(t *testing.T) {
	m := NewMetrics()

	for i := 1; i <= 10000; i++ {
		m.RecordTiming("http.request", time.Duration(i)*time.Microsecond)
	}

	agg, ok := m.timings["http.request"]
	if !ok {
		t.Fatal("no aggregate recorded for http.request")
	}
	if agg.count != 10000 {
		t.Errorf("count = %d, want 10000", agg.count)
	}
	if want := time.Duration(10000*10001/2) * time.Microsecond; agg.total != want {
		t.Errorf("total = %v, want %v", agg.total, want)
	}
	if agg.min != time.Microsecond || agg.max != 10*time.Millisecond {
		t.Errorf("min, max = %v, %v; want 1µs, 10ms", agg.min, agg.max)
	}

	fetch := m.GetSnapshot()["timings"].(map[string]map[string]interface{})["http.request"]
	if fetch["average"].(string) != "5.0005ms" {
		t.Errorf("Average timing = %v, want 5.0005ms", fetch["average"])
	}
}

func TestPackageLevelMetrics(t *testing.T) {
	IncrCounter("test")
	SetGauge("test", 42.0)
	RecordTiming("test", time.Second)

	if GetMetricsSnapshot() == nil {
		t.Error("GetMetricsSnapshot() returned nil")
	}
	if DefaultMetrics().Counter("test") < 1 {
		t.Error("package-level IncrCounter did not reach the default tracker")
	}
}
