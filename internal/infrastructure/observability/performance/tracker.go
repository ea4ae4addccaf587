// Package performance provides performance tracking and monitoring capabilities
// for Octopus operations.
package performance

import (
	"sort"
	"strings"
	"sync"
	"time"
)

// Tracker keeps a bounded history of completed markers and the alerts they raised.
type Tracker struct {
	completed  []*Marker
	alerts     []*PerformanceAlert
	active     int
	thresholds *AlertThresholds
	config     *TrackerConfig
	started    time.Time
	mu         sync.RWMutex
}

// TrackerConfig contains configuration options for the performance tracker
type TrackerConfig struct {
	MaxMarkers   int  `json:"maxMarkers"`
	MaxAlerts    int  `json:"maxAlerts"`
	EnableAlerts bool `json:"enableAlerts"`
}

// DefaultTrackerConfig returns a sensible default configuration
func DefaultTrackerConfig() *TrackerConfig {
	return &TrackerConfig{
		MaxMarkers:   1000,
		MaxAlerts:    200,
		EnableAlerts: true,
	}
}

// AlertThresholds defines performance thresholds for generating alerts
type AlertThresholds struct {
	SlowResponseThreshold     time.Duration `json:"slowResponseThreshold"`
	CriticalResponseThreshold time.Duration `json:"criticalResponseThreshold"`
	AuthOperationThreshold    time.Duration `json:"authOperationThreshold"`
	StorageAuditThreshold     time.Duration `json:"storageAuditThreshold"`
}

// DefaultAlertThresholds returns sensible default alert thresholds
func DefaultAlertThresholds() *AlertThresholds {
	return &AlertThresholds{
		SlowResponseThreshold:     2 * time.Second,
		CriticalResponseThreshold: 10 * time.Second,
		AuthOperationThreshold:    500 * time.Millisecond,
		StorageAuditThreshold:     30 * time.Second,
	}
}

// NewTracker creates a new performance tracker with the given configuration
func NewTracker(config *TrackerConfig) *Tracker {
	if config == nil {
		config = DefaultTrackerConfig()
	}
	return &Tracker{
		thresholds: DefaultAlertThresholds(),
		config:     config,
		started:    time.Now(),
	}
}

// SetThresholds replaces the alert thresholds.
func (t *Tracker) SetThresholds(th *AlertThresholds) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.thresholds = th
}

// StartOperation creates and tracks a new performance marker for an operation
func (t *Tracker) StartOperation(operation string) *Marker {
	t.mu.Lock()
	t.active++
	t.mu.Unlock()

	return &Marker{
		Operation: operation,
		StartTime: time.Now(),
		Success:   true,
		tracker:   t,
	}
}

func (t *Tracker) record(m *Marker) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.active--
	t.completed = append(t.completed, m)
	if over := len(t.completed) - t.config.MaxMarkers; over > 0 {
		t.completed = append([]*Marker(nil), t.completed[over:]...)
	}

	if !t.config.EnableAlerts {
		return
	}
	for _, alert := range t.evaluateThresholds(m) {
		t.alerts = append(t.alerts, alert)
	}
	if over := len(t.alerts) - t.config.MaxAlerts; over > 0 {
		t.alerts = append([]*PerformanceAlert(nil), t.alerts[over:]...)
	}
}

func (t *Tracker) evaluateThresholds(m *Marker) []*PerformanceAlert {
	var alerts []*PerformanceAlert
	th := t.thresholds

	switch {
	case m.Duration > th.CriticalResponseThreshold:
		alerts = append(alerts, newAlert(m, AlertCritical, th.CriticalResponseThreshold,
			"Operation exceeded critical response time threshold"))
	case m.Duration > th.SlowResponseThreshold && !strings.HasPrefix(m.Operation, "storage:audit"):
		alerts = append(alerts, newAlert(m, AlertWarning, th.SlowResponseThreshold,
			"Operation exceeded slow response time threshold"))
	}

	switch {
	case strings.HasPrefix(m.Operation, "auth:"):
		if m.Duration > th.AuthOperationThreshold {
			alerts = append(alerts, newAlert(m, AlertWarning, th.AuthOperationThreshold,
				"Authentication operation exceeded threshold"))
		}
	case strings.HasPrefix(m.Operation, "storage:audit"):
		if m.Duration > th.StorageAuditThreshold {
			alerts = append(alerts, newAlert(m, AlertWarning, th.StorageAuditThreshold,
				"Storage audit exceeded threshold"))
		}
	}
	return alerts
}

func newAlert(m *Marker, severity AlertSeverity, threshold time.Duration, msg string) *PerformanceAlert {
	return &PerformanceAlert{
		Timestamp: m.EndTime,
		Severity:  severity,
		Operation: m.Operation,
		Threshold: threshold,
		Actual:    m.Duration,
		Message:   msg,
	}
}

// OperationStats aggregates completed markers of one operation.
type OperationStats struct {
	Operation       string        `json:"operation"`
	Count           int           `json:"count"`
	Failures        int           `json:"failures"`
	AverageDuration time.Duration `json:"averageDuration"`
	MaxDuration     time.Duration `json:"maxDuration"`
}

// Summary is the report served by the admin performance endpoint.
type Summary struct {
	Uptime           time.Duration       `json:"uptime"`
	ActiveOperations int                 `json:"activeOperations"`
	Operations       []OperationStats    `json:"operations"`
	RecentAlerts     []*PerformanceAlert `json:"recentAlerts"`
	Health           HealthStatus        `json:"health"`
}

// GetSummary aggregates the retained markers per operation.
func (t *Tracker) GetSummary() *Summary {
	t.mu.RLock()
	defer t.mu.RUnlock()

	byOp := make(map[string]*OperationStats)
	var total time.Duration
	for _, m := range t.completed {
		s, ok := byOp[m.Operation]
		if !ok {
			s = &OperationStats{Operation: m.Operation}
			byOp[m.Operation] = s
		}
		s.Count++
		if !m.Success {
			s.Failures++
		}
		if m.Duration > s.MaxDuration {
			s.MaxDuration = m.Duration
		}
		s.AverageDuration += m.Duration
		total += m.Duration
	}

	summary := &Summary{
		Uptime:           time.Since(t.started),
		ActiveOperations: t.active,
		Operations:       make([]OperationStats, 0, len(byOp)),
		RecentAlerts:     append([]*PerformanceAlert(nil), t.alerts...),
	}
	for _, s := range byOp {
		s.AverageDuration /= time.Duration(s.Count)
		summary.Operations = append(summary.Operations, *s)
	}
	sort.Slice(summary.Operations, func(i, j int) bool {
		return summary.Operations[i].Operation < summary.Operations[j].Operation
	})

	summary.Health = t.health()
	return summary
}

func (t *Tracker) health() HealthStatus {
	if len(t.completed) == 0 {
		return HealthUnknown
	}
	critical := 0
	for _, a := range t.alerts {
		if a.Severity == AlertCritical {
			critical++
		}
	}
	switch {
	case critical > 0:
		return HealthUnhealthy
	case len(t.alerts) > len(t.completed)/10:
		return HealthDegraded
	default:
		return HealthHealthy
	}
}
