package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/philiph/xmldsig/internal/core/domain"
	"github.com/philiph/xmldsig/internal/core/ports"
)

// PrometheusMetricsRecorder records metrics using Prometheus.
type PrometheusMetricsRecorder struct {
	signTotal                *prometheus.CounterVec
	verifyTotal              *prometheus.CounterVec
	referenceValidationTotal *prometheus.CounterVec
	referencesValidated      prometheus.Counter
	externalFetchTotal       *prometheus.CounterVec
}

// NewPrometheusMetricsRecorder creates a new Prometheus metrics recorder
// using the default Prometheus registry.
func NewPrometheusMetricsRecorder() *PrometheusMetricsRecorder {
	return NewPrometheusMetricsRecorderWithRegistry(prometheus.DefaultRegisterer)
}

// NewPrometheusMetricsRecorderWithRegistry creates a new Prometheus metrics recorder
// with a custom registry. Use this for testing.
func NewPrometheusMetricsRecorderWithRegistry(reg prometheus.Registerer) *PrometheusMetricsRecorder {
	signTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "xmldsig_sign_total",
		Help: "Total XML signature creation attempts",
	}, []string{"algorithm", "result"})

	verifyTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "xmldsig_verify_total",
		Help: "Total XML signature value verifications",
	}, []string{"algorithm", "result"})

	referenceValidationTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "xmldsig_reference_validations_total",
		Help: "Total reference set validations",
	}, []string{"result"})

	referencesValidated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "xmldsig_references_validated_total",
		Help: "Total individual references validated successfully",
	})

	externalFetchTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "xmldsig_external_fetch_total",
		Help: "Total external reference fetch attempts",
	}, []string{"scheme", "result"})

	reg.MustRegister(
		signTotal,
		verifyTotal,
		referenceValidationTotal,
		referencesValidated,
		externalFetchTotal,
	)

	return &PrometheusMetricsRecorder{
		signTotal:                signTotal,
		verifyTotal:              verifyTotal,
		referenceValidationTotal: referenceValidationTotal,
		referencesValidated:      referencesValidated,
		externalFetchTotal:       externalFetchTotal,
	}
}

func result(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}

// RecordSign records a signing attempt.
func (p *PrometheusMetricsRecorder) RecordSign(algorithm string, success bool) {
	p.signTotal.WithLabelValues(domain.AlgorithmName(algorithm), result(success)).Inc()
}

// RecordVerify records a signature value verification result.
func (p *PrometheusMetricsRecorder) RecordVerify(algorithm string, success bool) {
	p.verifyTotal.WithLabelValues(domain.AlgorithmName(algorithm), result(success)).Inc()
}

// RecordReferenceValidation records a reference set validation.
func (p *PrometheusMetricsRecorder) RecordReferenceValidation(success bool, references int) {
	p.referenceValidationTotal.WithLabelValues(result(success)).Inc()
	if success {
		p.referencesValidated.Add(float64(references))
	}
}

// RecordExternalFetch records an external reference fetch.
func (p *PrometheusMetricsRecorder) RecordExternalFetch(scheme string, success bool) {
	p.externalFetchTotal.WithLabelValues(scheme, result(success)).Inc()
}

// Ensure PrometheusMetricsRecorder implements ports.MetricsRecorder
var _ ports.MetricsRecorder = (*PrometheusMetricsRecorder)(nil)
