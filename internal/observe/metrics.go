// Package observe holds the OpenTelemetry metric instruments recorded by the
// translation loop. The binary installs a Prometheus-backed provider with
// InitProvider; tests build a Metrics from their own metric.MeterProvider via
// NewMetrics. Default falls back to the global provider.
package observe

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/ayusman/signbridge"

// Commit sources.
const (
	SourceAuto       = "auto"
	SourceManual     = "manual"
	SourceSuggestion = "suggestion"
)

// Pipeline stages that can drop a frame.
const (
	StageDetect    = "detect"
	StageNormalize = "normalize"
	StageClassify  = "classify"
	StagePanic     = "panic"
)

// Metrics holds the instruments. All fields are safe for concurrent use.
type Metrics struct {
	// Frames counts processed loop iterations.
	Frames metric.Int64Counter

	// Commits counts text mutations that add content. Attribute "source".
	Commits metric.Int64Counter

	// TransientFrames counts frames whose observation was dropped.
	// Attribute "stage".
	TransientFrames metric.Int64Counter

	// FrameDuration is the wall time of one iteration.
	FrameDuration metric.Float64Histogram

	// ActiveSessions is 1 while a session loop runs.
	ActiveSessions metric.Int64UpDownCounter
}

// frameBuckets are histogram boundaries in seconds, sized for 5-60 fps.
var frameBuckets = []float64{
	0.005, 0.01, 0.02, 0.033, 0.05, 0.1, 0.2, 0.5, 1,
}

// NewMetrics creates the instruments on mp.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.Frames, err = m.Int64Counter("signbridge.frames",
		metric.WithDescription("Frames processed by the translation loop."),
	); err != nil {
		return nil, err
	}
	if met.Commits, err = m.Int64Counter("signbridge.commits",
		metric.WithDescription("Letters and words committed to the transcript by source."),
	); err != nil {
		return nil, err
	}
	if met.TransientFrames, err = m.Int64Counter("signbridge.transient_frames",
		metric.WithDescription("Frames whose observation was dropped, by stage."),
	); err != nil {
		return nil, err
	}
	if met.FrameDuration, err = m.Float64Histogram("signbridge.frame.duration",
		metric.WithDescription("Wall time of one loop iteration."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(frameBuckets...),
	); err != nil {
		return nil, err
	}
	if met.ActiveSessions, err = m.Int64UpDownCounter("signbridge.sessions.active",
		metric.WithDescription("Number of running translation sessions."),
	); err != nil {
		return nil, err
	}

	return met, nil
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// Default returns a Metrics on the global meter provider.
func Default() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// RecordFrame counts one iteration and its duration.
func (m *Metrics) RecordFrame(ctx context.Context, d time.Duration) {
	m.Frames.Add(ctx, 1)
	m.FrameDuration.Record(ctx, d.Seconds())
}

// RecordCommit counts a transcript commit from source.
func (m *Metrics) RecordCommit(ctx context.Context, source string) {
	m.Commits.Add(ctx, 1, metric.WithAttributes(attribute.String("source", source)))
}

// RecordTransient counts a dropped frame at stage.
func (m *Metrics) RecordTransient(ctx context.Context, stage string) {
	m.TransientFrames.Add(ctx, 1, metric.WithAttributes(attribute.String("stage", stage)))
}

// SessionStarted marks a session as running.
func (m *Metrics) SessionStarted(ctx context.Context) {
	m.ActiveSessions.Add(ctx, 1)
}

// SessionStopped marks a session as finished.
func (m *Metrics) SessionStopped(ctx context.Context) {
	m.ActiveSessions.Add(ctx, -1)
}
