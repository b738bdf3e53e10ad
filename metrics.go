package deepcopy

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/objgraph/deepcopy"

// pipelineMetrics holds the pipeline's OpenTelemetry counters. Instruments
// that fail to initialize are left nil and their recording methods no-op,
// so metric problems never affect copying.
type pipelineMetrics struct {
	hits        metric.Int64Counter
	misses      metric.Int64Counter
	resolutions metric.Int64Counter
	failures    metric.Int64Counter
}

func newPipelineMetrics(mp metric.MeterProvider, logger Logger) *pipelineMetrics {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	meter := mp.Meter(instrumentationName)

	m := &pipelineMetrics{}
	var err error
	if m.hits, err = meter.Int64Counter("deepcopy.cache.hits",
		metric.WithDescription("Copier cache hits")); err != nil {
		logger.Warn("deepcopy: cache.hits counter unavailable: %v", err)
	}
	if m.misses, err = meter.Int64Counter("deepcopy.cache.misses",
		metric.WithDescription("Copier cache misses")); err != nil {
		logger.Warn("deepcopy: cache.misses counter unavailable: %v", err)
	}
	if m.resolutions, err = meter.Int64Counter("deepcopy.resolutions",
		metric.WithDescription("Copier resolutions run to completion")); err != nil {
		logger.Warn("deepcopy: resolutions counter unavailable: %v", err)
	}
	if m.failures, err = meter.Int64Counter("deepcopy.resolution.failures",
		metric.WithDescription("Copier resolutions that returned an error")); err != nil {
		logger.Warn("deepcopy: resolution.failures counter unavailable: %v", err)
	}
	return m
}

func (m *pipelineMetrics) hit() {
	if m == nil || m.hits == nil {
		return
	}
	m.hits.Add(context.Background(), 1)
}

func (m *pipelineMetrics) miss() {
	if m == nil || m.misses == nil {
		return
	}
	m.misses.Add(context.Background(), 1)
}

func (m *pipelineMetrics) resolution() {
	if m == nil || m.resolutions == nil {
		return
	}
	m.resolutions.Add(context.Background(), 1)
}

func (m *pipelineMetrics) failure() {
	if m == nil || m.failures == nil {
		return
	}
	m.failures.Add(context.Background(), 1)
}
