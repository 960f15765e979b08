package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/yungbote/todo-backend/internal/platform/envutil"
	"github.com/yungbote/todo-backend/internal/platform/logger"
)

// rollingSum keeps the sum of the last len(values) samples.
type rollingSum struct {
	values []float64
	idx    int
	total  float64
}

func newRollingSum(size int) *rollingSum {
	if size < 1 {
		size = 1
	}
	return &rollingSum{values: make([]float64, size)}
}

func (r *rollingSum) add(v float64) {
	r.total += v - r.values[r.idx]
	r.values[r.idx] = v
	r.idx++
	if r.idx >= len(r.values) {
		r.idx = 0
	}
}

// sloSeries tracks one SLI as (total, bad) counter deltas over the window.
type sloSeries struct {
	name   string
	target float64
	read   func(m *Metrics) (total, bad float64)

	total, bad         *rollingSum
	prevTotal, prevBad float64
}

type SLOConfig struct {
	Interval         time.Duration
	Window           time.Duration
	APIAvailTarget   float64
	APILatencyTarget float64
	WriteTarget      float64

	AlertWebhook     string
	AlertOwner       string
	AlertRunbook     string
	AlertMinInterval time.Duration
	AlertBurnWarn    float64
	AlertBurnCrit    float64
}

func LoadSLOConfig(log *logger.Logger) (SLOConfig, bool) {
	windowHours := envutil.Float("SLO_WINDOW_HOURS", 720, log)
	if windowHours < 1 {
		windowHours = 24
	}
	return SLOConfig{
		Interval:         envutil.Seconds("SLO_EVAL_INTERVAL_SECONDS", time.Minute, log),
		Window:           time.Duration(windowHours * float64(time.Hour)),
		APIAvailTarget:   clamp01(envutil.Float("SLO_API_AVAIL_TARGET", 0.995, log)),
		APILatencyTarget: clamp01(envutil.Float("SLO_API_LATENCY_TARGET", 0.95, log)),
		WriteTarget:      clamp01(envutil.Float("SLO_WRITE_SUCCESS_TARGET", 0.999, log)),
		AlertWebhook:     envutil.String("SLO_ALERT_WEBHOOK_URL", "", log),
		AlertOwner:       envutil.String("SLO_ALERT_OWNER", "", log),
		AlertRunbook:     envutil.String("SLO_ALERT_RUNBOOK_URL", "", log),
		AlertMinInterval: envutil.Seconds("SLO_ALERT_MIN_INTERVAL_SECONDS", 15*time.Minute, log),
		AlertBurnWarn:    envutil.Float("SLO_ALERT_BURN_RATE_WARN", 2, log),
		AlertBurnCrit:    envutil.Float("SLO_ALERT_BURN_RATE_CRIT", 10, log),
	}, envutil.Bool("SLO_ENABLED", false, log)
}

type SLOEvaluator struct {
	metrics *Metrics
	log     *logger.Logger
	cfg     SLOConfig
	client  *http.Client

	windowLabel string
	series      []*sloSeries

	alertMu    sync.Mutex
	lastAlerts map[string]time.Time
}

func (m *Metrics) StartSLOEvaluator(ctx context.Context, log *logger.Logger, cfg SLOConfig) {
	if m == nil {
		return
	}
	eval := NewSLOEvaluator(m, log, cfg)
	go eval.run(ctx)
	if log != nil {
		log.Info("SLO evaluator started", "window", eval.windowLabel, "interval", eval.cfg.Interval.String())
	}
}

func NewSLOEvaluator(m *Metrics, log *logger.Logger, cfg SLOConfig) *SLOEvaluator {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	if cfg.Window < cfg.Interval {
		cfg.Window = cfg.Interval
	}
	size := int(cfg.Window / cfg.Interval)
	e := &SLOEvaluator{
		metrics:     m,
		log:         log,
		cfg:         cfg,
		client:      &http.Client{Timeout: 5 * time.Second},
		windowLabel: formatWindowLabel(cfg.Window),
		lastAlerts:  map[string]time.Time{},
	}
	e.series = []*sloSeries{
		{name: "api_availability", target: cfg.APIAvailTarget, read: func(m *Metrics) (float64, float64) {
			return m.apiReqTotal.Value(), m.apiReqError.Value()
		}},
		{name: "api_latency", target: cfg.APILatencyTarget, read: func(m *Metrics) (float64, float64) {
			total := m.apiReqTotal.Value()
			return total, total - m.apiReqGood.Value()
		}},
		{name: "write_success", target: cfg.WriteTarget, read: func(m *Metrics) (float64, float64) {
			return m.aggregateTotal.Value(), m.aggregateFailed.Value()
		}},
	}
	for _, s := range e.series {
		s.total = newRollingSum(size)
		s.bad = newRollingSum(size)
	}
	return e
}

func (e *SLOEvaluator) run(ctx context.Context) {
	ticker := time.NewTicker(e.cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.evaluate(ctx)
		}
	}
}

func (e *SLOEvaluator) evaluate(ctx context.Context) {
	if e.metrics == nil {
		return
	}
	for _, s := range e.series {
		total, bad := s.read(e.metrics)
		s.total.add(delta(total, s.prevTotal))
		s.bad.add(delta(bad, s.prevBad))
		s.prevTotal, s.prevBad = total, bad
		e.evalSLO(ctx, s.name, s.total.total, s.bad.total, s.target)
	}
}

func (e *SLOEvaluator) evalSLO(ctx context.Context, name string, total, bad, target float64) {
	if total <= 0 {
		e.metrics.sloCompliance.Set(1, name, e.windowLabel)
		e.metrics.sloBudget.Set(1, name, e.windowLabel)
		e.metrics.sloBurn.Set(0, name, e.windowLabel)
		return
	}
	sli := clamp01(1 - bad/total)
	burn := 0.0
	if target < 1 {
		burn = (1 - sli) / (1 - target)
	}
	budget := clamp01(1 - burn)
	e.metrics.sloCompliance.Set(sli, name, e.windowLabel)
	e.metrics.sloBudget.Set(budget, name, e.windowLabel)
	e.metrics.sloBurn.Set(burn, name, e.windowLabel)

	if e.cfg.AlertWebhook == "" || e.cfg.AlertOwner == "" {
		return
	}
	severity := ""
	if burn >= e.cfg.AlertBurnCrit {
		severity = "critical"
	} else if burn >= e.cfg.AlertBurnWarn {
		severity = "warning"
	}
	if severity == "" {
		return
	}
	key := name + ":" + severity
	e.alertMu.Lock()
	last := e.lastAlerts[key]
	if !last.IsZero() && time.Since(last) < e.cfg.AlertMinInterval {
		e.alertMu.Unlock()
		return
	}
	e.lastAlerts[key] = time.Now()
	e.alertMu.Unlock()
	e.sendAlert(ctx, name, severity, sli, target, burn, budget)
}

func (e *SLOEvaluator) sendAlert(ctx context.Context, name, severity string, sli, target, burn, budget float64) {
	body, _ := json.Marshal(map[string]any{
		"title":                  "SLO burn rate alert",
		"service":                DefaultServiceName,
		"severity":               severity,
		"owner":                  e.cfg.AlertOwner,
		"slo":                    name,
		"window":                 e.windowLabel,
		"sli":                    sli,
		"target":                 target,
		"burn_rate":              burn,
		"error_budget_remaining": budget,
		"runbook":                e.cfg.AlertRunbook,
		"timestamp":              time.Now().UTC().Format(time.RFC3339),
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.cfg.AlertWebhook, bytes.NewReader(body))
	if err != nil {
		if e.log != nil {
			e.log.Warn("slo alert request build failed", "error", err, "slo", name)
		}
		return
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := e.client.Do(req)
	if err != nil {
		if e.log != nil {
			e.log.Warn("slo alert post failed", "error", err, "slo", name)
		}
		return
	}
	_ = resp.Body.Close()
	if e.log != nil {
		e.log.Info("slo alert sent", "slo", name, "severity", severity, "status", resp.StatusCode)
	}
}

func delta(current, prev float64) float64 {
	if current < prev {
		return current
	}
	return current - prev
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func formatWindowLabel(window time.Duration) string {
	hours := int(window.Hours())
	if hours >= 24 && window%(24*time.Hour) == 0 {
		return strconv.Itoa(hours/24) + "d"
	}
	if hours >= 1 {
		return strconv.Itoa(hours) + "h"
	}
	return strconv.Itoa(int(window.Minutes())) + "m"
}
