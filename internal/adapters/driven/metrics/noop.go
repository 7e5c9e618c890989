package metrics

import (
	"github.com/philiph/xmldsig/internal/core/ports"
)

// NoopMetricsRecorder is a no-op implementation for when metrics are disabled.
// All methods are safe to call and do nothing.
type NoopMetricsRecorder struct{}

// NewNoopMetricsRecorder creates a new no-op metrics recorder.
func NewNoopMetricsRecorder() *NoopMetricsRecorder {
	return &NoopMetricsRecorder{}
}

// RecordSign is a no-op.
func (n *NoopMetricsRecorder) RecordSign(algorithm string, success bool) {}

// RecordVerify is a no-op.
func (n *NoopMetricsRecorder) RecordVerify(algorithm string, success bool) {}

// RecordReferenceValidation is a no-op.
func (n *NoopMetricsRecorder) RecordReferenceValidation(success bool, references int) {}

// RecordExternalFetch is a no-op.
func (n *NoopMetricsRecorder) RecordExternalFetch(scheme string, success bool) {}

// Ensure NoopMetricsRecorder implements ports.MetricsRecorder
var _ ports.MetricsRecorder = (*NoopMetricsRecorder)(nil)
