package observability

import "github.com/prometheus/client_golang/prometheus"

var (
	// gateway metrics
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "provisioner_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"route", "method", "code"})

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "provisioner_http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})

	ActiveRequests = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "provisioner_active_requests",
		Help: "Current in-flight requests",
	})

	// lifecycle handler metrics
	HandlerInvocationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "provisioner_handler_invocations_total",
		Help: "Lifecycle events handled",
	}, []string{"handler", "request_type", "status"})

	HandlerDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "provisioner_handler_duration_seconds",
		Help:    "Lifecycle event handling duration",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300},
	}, []string{"handler", "request_type"})

	ProviderCallsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "provisioner_provider_calls_total",
		Help: "Provider API calls by outcome",
	}, []string{"service", "operation", "outcome"})

	LDAPDuplicateEntriesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "provisioner_ldap_duplicate_entries_total",
		Help: "Directory entries that already existed on add",
	})

	WorkspacesTerminatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "provisioner_workspaces_terminated_total",
		Help: "Workspaces submitted for termination",
	})

	RegistrationStateTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "provisioner_registration_state_transitions_total",
		Help: "Directory registration state transition count",
	}, []string{"from", "to"})

	// orchestrator metrics
	FleetItemsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "provisioner_fleet_items_total",
		Help: "Fleet trainee items processed",
	}, []string{"phase", "status"})
)

func RegisterAll(reg prometheus.Registerer) {
	reg.MustRegister(
		HTTPRequestsTotal, HTTPRequestDuration, ActiveRequests,
		HandlerInvocationsTotal, HandlerDuration, ProviderCallsTotal,
		LDAPDuplicateEntriesTotal, WorkspacesTerminatedTotal, RegistrationStateTransitions,
		FleetItemsTotal,
	)
}

// ObserveCall records the outcome of one provider API call.
func ObserveCall(service, operation string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	ProviderCallsTotal.WithLabelValues(service, operation, outcome).Inc()
}
