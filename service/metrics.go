package services

import (
	"strconv"
	"time"

	model "github.com/nfredmond/project-manager/models"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the Prometheus collectors exported on /metrics. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	actionItems       *prometheus.CounterVec
	actionCenterBuild prometheus.Counter
	notifications     *prometheus.CounterVec
	requests          *prometheus.CounterVec
	requestDuration   *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		actionItems: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "project_manager",
			Name:      "action_items_total",
			Help:      "Action items produced by action center builds, by severity",
		}, []string{"severity"}),
		actionCenterBuild: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "project_manager",
			Name:      "action_center_builds_total",
			Help:      "Number of action center builds",
		}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "project_manager",
			Name:      "notifications_total",
			Help:      "Notification deliveries by channel and result",
		}, []string{"channel", "result"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "project_manager",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "project_manager",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	reg.MustRegister(m.actionItems, m.actionCenterBuild, m.notifications, m.requests, m.requestDuration)
	return m
}

func (m *Metrics) ObserveActionItems(items []model.ActionItem) {
	if m == nil {
		return
	}
	m.actionCenterBuild.Inc()
	for _, item := range items {
		m.actionItems.WithLabelValues(string(item.Severity)).Inc()
	}
}

func (m *Metrics) ObserveNotification(channel string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.notifications.WithLabelValues(channel, result).Inc()
}

func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
