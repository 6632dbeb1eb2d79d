package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "docschema", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "docschema", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
	TemplateOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "docschema", Name: "template_ops_total", Help: "Template repository operations by outcome."},
		[]string{"op", "outcome"},
	)
	DocumentOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "docschema", Name: "document_ops_total", Help: "Document repository operations by outcome."},
		[]string{"op", "outcome"},
	)
	SchemaCompiles = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "docschema", Name: "schema_compiles_total", Help: "Template schema compilations by variant."},
		[]string{"variant"},
	)
	SchemaCache = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "docschema", Name: "schema_cache_total", Help: "Schema cache lookups by result (hit, miss, error)."},
		[]string{"result"},
	)
	ValidationFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "docschema", Name: "validation_failures_total", Help: "Rejected document writes by validation mode."},
		[]string{"mode"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
	reg.MustRegister(TemplateOps)
	reg.MustRegister(DocumentOps)
	reg.MustRegister(SchemaCompiles)
	reg.MustRegister(SchemaCache)
	reg.MustRegister(ValidationFailures)
}

// Outcome buckets an operation error into a low-cardinality label.
func Outcome(err error, notFound func(error) bool) string {
	switch {
	case err == nil:
		return "ok"
	case notFound != nil && notFound(err):
		return "not_found"
	default:
		return "error"
	}
}
