package ports

// MetricsRecorder is the port interface for recording metrics.
// Implementations are adapters (PrometheusMetricsRecorder for production,
// NoopMetricsRecorder for disabled/testing).
type MetricsRecorder interface {
	// RecordSign records a signing attempt for a signature method.
	RecordSign(algorithm string, success bool)

	// RecordVerify records a signature value verification result.
	RecordVerify(algorithm string, success bool)

	// RecordReferenceValidation records the outcome of validating all
	// references of a signature.
	RecordReferenceValidation(success bool, references int)

	// RecordExternalFetch records an external reference fetch.
	RecordExternalFetch(scheme string, success bool)
}
