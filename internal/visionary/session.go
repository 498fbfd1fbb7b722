package visionary

import (
	"context"
	"time"
)

// MetricsRecorder receives control-channel telemetry. A Device has none
// by default; SetMetrics enables instrumentation for callers that keep
// a collector around (the svstreamd daemon), without forcing it on
// callers that don't (the svctl CLI).
type MetricsRecorder interface {
	ObserveCommandLatency(command string, seconds float64)
	RecordAuthFailure()
}

// ControlSession is the thin façade original_source's ControlSession.cpp
// presents above a Framer: it builds empty-parameter command requests and
// forwards exchanges, without knowing which framing variant is underneath.
type ControlSession struct {
	framer  Framer
	metrics MetricsRecorder
}

// NewControlSession wraps framer.
func NewControlSession(framer Framer) *ControlSession {
	return &ControlSession{framer: framer}
}

// PrepareRead builds an empty-parameter read-variable ("sRN") request.
func (s *ControlSession) PrepareRead(name string) Command {
	return requestFromBuilder(KindReadVariable, name, NewCommandBuilder(KindReadVariable, name))
}

// PrepareWrite starts a write-variable ("sWN") request; callers append
// parameters via the returned builder, then pass it to Build to obtain
// the Command ready for Send.
func (s *ControlSession) PrepareWrite(name string) *CommandBuilder {
	return NewCommandBuilder(KindWriteVariable, name)
}

// PrepareCall starts a method-invoke ("sMN") request; callers append
// parameters via the returned builder, then pass it to Build to obtain
// the Command ready for Send.
func (s *ControlSession) PrepareCall(name string) *CommandBuilder {
	return NewCommandBuilder(KindMethodInvocation, name)
}

// Build finalizes b into a Command of the given kind and name, ready for
// ControlSession.Send.
func Build(kind CommandKind, name string, b *CommandBuilder) Command {
	return requestFromBuilder(kind, name, b)
}

// requestFromBuilder wraps a builder's finished buffer into a Command,
// computing the parameter offset from the fixed "tag space name space" prefix.
func requestFromBuilder(kind CommandKind, name string, b *CommandBuilder) Command {
	return Command{
		kind:         kind,
		name:         name,
		buffer:       b.Build(),
		parameterOff: 4 + len(name) + 1,
	}
}

// Send forwards cmd to the framing handler and returns its response. On
// any transport or framing error it returns the network-error sentinel
// Command rather than propagating the error, matching original_source's
// behavior of surfacing a clean "device unreachable" result to callers
// that inspect Kind() == KindNetworkError. If a MetricsRecorder is
// configured, the round-trip duration is observed under cmd.Name().
func (s *ControlSession) Send(ctx context.Context, cmd Command) Command {
	start := time.Now()
	resp, err := s.framer.Exchange(ctx, cmd)
	if s.metrics != nil {
		s.metrics.ObserveCommandLatency(cmd.Name(), time.Since(start).Seconds())
	}
	if err != nil {
		return NetworkErrorCommand()
	}
	return resp
}

// SetMetrics attaches m to observe every subsequent Send's round-trip
// latency. Passing nil disables instrumentation.
func (s *ControlSession) SetMetrics(m MetricsRecorder) {
	s.metrics = m
}

// Open begins the underlying framer's session (a no-op for Variant B).
func (s *ControlSession) Open(ctx context.Context, timeoutSecs uint8) error {
	return s.framer.OpenSession(ctx, timeoutSecs)
}

// Close ends the underlying framer's session (a no-op for Variant B, and
// specified but unimplemented for Variant 2 — see DESIGN.md).
func (s *ControlSession) Close(ctx context.Context) error {
	return s.framer.CloseSession(ctx)
}
