package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	var buf bytes.Buffer
	if err := m.WritePrometheus(&buf); err != nil {
		t.Fatalf("WritePrometheus: %v", err)
	}
	return buf.String()
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveAPI("GET", "/", "200", time.Millisecond)
	m.ApiInflightInc()
	m.ApiInflightDec()
	m.ObserveAggregateOperation("Todo.Create", "success", time.Millisecond)
	m.IncAggregateConflict("Todo.Create")
	m.IncAggregateRetry("Todo.Create")
	m.IncCache("hit")
	m.IncAuthFailure("invalid")
	m.StartPostgresCollector(context.Background(), nil, nil)
	m.StartRedisCollector(context.Background(), nil, nil)
	if err := m.WritePrometheus(&bytes.Buffer{}); err != nil {
		t.Fatalf("nil WritePrometheus: %v", err)
	}

	rec := httptest.NewRecorder()
	m.WriteHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("nil WriteHTTP status: %d", rec.Code)
	}
}

func TestMetricsExposition(t *testing.T) {
	m := New(0.1, time.Second)
	m.ObserveAPI("GET", "/api/todo/:id", "200", 20*time.Millisecond)
	m.ObserveAPI("GET", "/api/todo/:id", "200", 20*time.Millisecond)
	m.ObserveAPI("POST", "/api/todo", "500", time.Second)
	m.ObserveAggregateOperation("Todo.Create", "success", 2*time.Millisecond)
	m.ObserveAggregateOperation("Todo.Create", "internal", 2*time.Millisecond)
	m.IncAggregateConflict("Todo.Update")
	m.IncCache("hit")
	m.IncAuthFailure("missing")

	if got := m.apiReqError.Value(); got != 1 {
		t.Fatalf("api errors: %v", got)
	}
	if got := m.apiReqGood.Value(); got != 2 {
		t.Fatalf("api good: %v", got)
	}
	if got := m.aggregateFailed.Value(); got != 1 {
		t.Fatalf("aggregate failed: %v", got)
	}

	out := scrape(t, m)
	for _, want := range []string{
		"# TYPE todo_api_requests_total counter",
		`todo_api_requests_total{method="GET",route="/api/todo/:id",status="200"} 2.000000`,
		`todo_api_request_duration_seconds_bucket{method="GET",route="/api/todo/:id",status="200",le="0.025"} 2`,
		`todo_api_request_duration_seconds_bucket{method="POST",route="/api/todo",status="500",le="0.5"} 0`,
		`todo_api_request_duration_seconds_count{method="POST",route="/api/todo",status="500"} 1`,
		`todo_aggregate_operations_total{operation="Todo.Create",status="internal"} 1.000000`,
		`todo_aggregate_conflicts_total{operation="Todo.Update"} 1.000000`,
		`todo_cache_operations_total{result="hit"} 1.000000`,
		`todo_auth_failures_total{reason="missing"} 1.000000`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("exposition missing %q\n%s", want, out)
		}
	}

	rec := httptest.NewRecorder()
	m.WriteHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK || !strings.HasPrefix(rec.Header().Get("Content-Type"), "text/plain") {
		t.Fatalf("WriteHTTP: %d %q", rec.Code, rec.Header().Get("Content-Type"))
	}
}

func TestLabelEscaping(t *testing.T) {
	got := labelString([]string{"a", "b"}, []string{`x"y`})
	if got != `{a="x\"y",b="unknown"}` {
		t.Fatalf("labelString: %s", got)
	}
	if got := withLe("", "1"); got != `{le="1"}` {
		t.Fatalf("withLe empty: %s", got)
	}
}

func TestSLOEvaluatorBurnAlert(t *testing.T) {
	alerts := make(chan map[string]any, 4)
	hook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		alerts <- body
	}))
	defer hook.Close()

	m := New(0.5, time.Second)
	for i := 0; i < 5; i++ {
		m.ObserveAPI("GET", "/api/todo", "200", time.Millisecond)
		m.ObserveAPI("GET", "/api/todo", "503", time.Millisecond)
	}

	e := NewSLOEvaluator(m, nil, SLOConfig{
		Interval:         time.Minute,
		Window:           time.Hour,
		APIAvailTarget:   0.995,
		APILatencyTarget: 0.95,
		WriteTarget:      0.999,
		AlertWebhook:     hook.URL,
		AlertOwner:       "todo-team",
		AlertMinInterval: time.Hour,
		AlertBurnWarn:    2,
		AlertBurnCrit:    10,
	})
	e.evaluate(context.Background())

	out := scrape(t, m)
	for _, want := range []string{
		`todo_slo_compliance{slo="api_availability",window="1h"} 0.500000`,
		`todo_slo_compliance{slo="api_latency",window="1h"} 1.000000`,
		`todo_slo_error_budget_remaining{slo="api_availability",window="1h"} 0.000000`,
		`todo_slo_compliance{slo="write_success",window="1h"} 1.000000`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("exposition missing %q\n%s", want, out)
		}
	}

	select {
	case a := <-alerts:
		if a["slo"] != "api_availability" || a["severity"] != "critical" || a["owner"] != "todo-team" {
			t.Fatalf("alert payload: %+v", a)
		}
	default:
		t.Fatalf("expected an alert")
	}

	// same severity inside the min interval is suppressed
	e.evaluate(context.Background())
	select {
	case a := <-alerts:
		t.Fatalf("duplicate alert: %+v", a)
	default:
	}
}

func TestFormatWindowLabel(t *testing.T) {
	cases := map[time.Duration]string{
		720 * time.Hour:  "30d",
		36 * time.Hour:   "36h",
		30 * time.Minute: "30m",
	}
	for in, want := range cases {
		if got := formatWindowLabel(in); got != want {
			t.Fatalf("formatWindowLabel(%s) = %s, want %s", in, got, want)
		}
	}
}
