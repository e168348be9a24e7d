// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package prometheus

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/canonical/device-audit/internal/logging"
	"github.com/canonical/device-audit/internal/monitoring"
)

var _ monitoring.MonitorInterface = (*Monitor)(nil)

type Monitor struct {
	service string

	registry            *prometheus.Registry
	responseTime        *prometheus.HistogramVec
	dependencyAvailable *prometheus.GaugeVec
	recordOutcomes      *prometheus.CounterVec

	logger logging.LoggerInterface
}

func (m *Monitor) GetService() string {
	return m.service
}

// SetResponseTimeMetric observes the duration in seconds of a call to a remote
// dependency, labels must provide "route" and "status".
func (m *Monitor) SetResponseTimeMetric(labels map[string]string, value float64) error {
	if m.responseTime == nil {
		return fmt.Errorf("metric not instantiated")
	}

	o, err := m.responseTime.GetMetricWith(m.withService(labels))
	if err != nil {
		return err
	}
	o.Observe(value)

	return nil
}

// SetDependencyAvailability sets 1 or 0 for the dependency named by the
// "component" label.
func (m *Monitor) SetDependencyAvailability(labels map[string]string, value float64) error {
	if m.dependencyAvailable == nil {
		return fmt.Errorf("metric not instantiated")
	}

	g, err := m.dependencyAvailable.GetMetricWith(m.withService(labels))
	if err != nil {
		return err
	}
	g.Set(value)

	return nil
}

// IncRecordOutcome counts one audited record, labels must provide "outcome".
func (m *Monitor) IncRecordOutcome(labels map[string]string) error {
	if m.recordOutcomes == nil {
		return fmt.Errorf("metric not instantiated")
	}

	c, err := m.recordOutcomes.GetMetricWith(m.withService(labels))
	if err != nil {
		return err
	}
	c.Inc()

	return nil
}

// WriteToTextfile dumps the registry in the text exposition format, suitable
// for the node_exporter textfile collector.
func (m *Monitor) WriteToTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

func (m *Monitor) withService(labels map[string]string) prometheus.Labels {
	l := prometheus.Labels{"service": m.service}
	for k, v := range labels {
		l[k] = v
	}

	return l
}

func (m *Monitor) registerHistograms() {
	m.responseTime = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dependency_response_time_seconds",
			Help:    "Response time of remote dependency calls",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "route", "status"},
	)

	m.registry.MustRegister(m.responseTime)
}

func (m *Monitor) registerGauges() {
	m.dependencyAvailable = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "dependency_available",
			Help: "Availability of remote dependencies",
		},
		[]string{"service", "component"},
	)

	m.registry.MustRegister(m.dependencyAvailable)
}

func (m *Monitor) registerCounters() {
	m.recordOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_records_total",
			Help: "Audited input records by outcome",
		},
		[]string{"service", "outcome"},
	)

	m.registry.MustRegister(m.recordOutcomes)
}

func NewMonitor(service string, logger logging.LoggerInterface) *Monitor {
	m := new(Monitor)

	m.service = service
	m.logger = logger
	m.registry = prometheus.NewRegistry()

	m.registerHistograms()
	m.registerGauges()
	m.registerCounters()

	return m
}
