// Package metrics exposes Prometheus instrumentation for the blob
// decode pipeline and control-channel command round trips.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "govisionary"
	subsystem = "client"
)

// Label names.
const (
	labelSegment = "segment"
	labelReason  = "reason"
	labelCommand = "command"
)

// Collector holds all govisionary Prometheus metrics.
//
// Metrics are organized around the two pipelines a Device/Decoder pair
// drives:
//   - Control-channel command round trips (latency, errors).
//   - Blob decode outcomes (frames decoded, per-segment CRC/length/
//     version errors, reassembly drops, authentication failures).
type Collector struct {
	// FramesDecoded counts blobs successfully decoded into a Frame.
	FramesDecoded prometheus.Counter

	// SegmentErrors counts per-segment decode failures, labeled by
	// segment name and error kind (blob.ErrorKind).
	SegmentErrors *prometheus.CounterVec

	// ReassemblyDrops counts in-progress blobs abandoned by a reassembler,
	// labeled by reason (out-of-order, blob-mismatch, invalid-udp-length,
	// ...).
	ReassemblyDrops *prometheus.CounterVec

	// AuthFailures counts Login attempts that did not succeed.
	AuthFailures prometheus.Counter

	// CommandLatency observes the round-trip duration of a control
	// command, labeled by command name.
	CommandLatency *prometheus.HistogramVec
}

// NewCollector creates a Collector with all metrics registered against
// the provided prometheus.Registerer. If reg is nil,
// prometheus.DefaultRegisterer is used.
func NewCollector(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	c := newMetrics()

	reg.MustRegister(
		c.FramesDecoded,
		c.SegmentErrors,
		c.ReassemblyDrops,
		c.AuthFailures,
		c.CommandLatency,
	)

	return c
}

// newMetrics creates all Prometheus metrics without registering them.
func newMetrics() *Collector {
	return &Collector{
		FramesDecoded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "frames_decoded_total",
			Help:      "Total blobs successfully decoded into a Frame.",
		}),

		SegmentErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "segment_errors_total",
			Help:      "Total per-segment decode failures, by segment and reason.",
		}, []string{labelSegment, labelReason}),

		ReassemblyDrops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "reassembly_drops_total",
			Help:      "Total blob fragments or stream bytes discarded by a reassembler.",
		}, []string{labelReason}),

		AuthFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "auth_failures_total",
			Help:      "Total Login attempts that did not succeed.",
		}),

		CommandLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "command_latency_seconds",
			Help:      "Round-trip duration of a control channel command.",
			Buckets:   prometheus.DefBuckets,
		}, []string{labelCommand}),
	}
}

// -------------------------------------------------------------------------
// Decode pipeline
// -------------------------------------------------------------------------

// RecordFrameDecoded increments the decoded-frame counter. Called once
// per blob.Decoder.Decode call that returns without error.
func (c *Collector) RecordFrameDecoded() {
	c.FramesDecoded.Inc()
}

// RecordSegmentError increments the segment error counter for the given
// segment name and error kind (e.g. "crc-mismatch", "length-mismatch").
func (c *Collector) RecordSegmentError(segment, reason string) {
	c.SegmentErrors.WithLabelValues(segment, reason).Inc()
}

// RecordReassemblyDrop increments the reassembly drop counter for the
// given reason (e.g. "out-of-order", "blob-mismatch", "read-error").
func (c *Collector) RecordReassemblyDrop(reason string) {
	c.ReassemblyDrops.WithLabelValues(reason).Inc()
}

// -------------------------------------------------------------------------
// Control channel
// -------------------------------------------------------------------------

// RecordAuthFailure increments the auth failure counter. Called when
// Device.Login returns false.
func (c *Collector) RecordAuthFailure() {
	c.AuthFailures.Inc()
}

// ObserveCommandLatency records the round-trip duration of a control
// command, labeled by its CoLa variable/method name (e.g.
// "SetAccessMode", "DeviceIdent", "PLAYSTART").
func (c *Collector) ObserveCommandLatency(command string, seconds float64) {
	c.CommandLatency.WithLabelValues(command).Observe(seconds)
}
