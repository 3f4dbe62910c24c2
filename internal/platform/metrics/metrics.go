// Package metrics registers the Prometheus instruments for the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	PlansSubmitted    prometheus.Counter
	PlansApproved     prometheus.Counter
	PlansRejected     prometheus.Counter
	PlansCancelled    prometheus.Counter
	DebitsDenied      prometheus.Counter
	RoutesRestricted  prometheus.Counter
	SubmitCompensated prometheus.Counter
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		PlansSubmitted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "seaplan_plans_submitted_total",
			Help: "Total number of navigation plans admitted with status pending",
		}),
		PlansApproved: promauto.NewCounter(prometheus.CounterOpts{
			Name: "seaplan_plans_approved_total",
			Help: "Total number of navigation plans approved by reviewers",
		}),
		PlansRejected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "seaplan_plans_rejected_total",
			Help: "Total number of navigation plans rejected by reviewers",
		}),
		PlansCancelled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "seaplan_plans_cancelled_total",
			Help: "Total number of navigation plans cancelled by their owners",
		}),
		DebitsDenied: promauto.NewCounter(prometheus.CounterOpts{
			Name: "seaplan_ledger_debits_denied_total",
			Help: "Total number of submissions denied for insufficient credits",
		}),
		RoutesRestricted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "seaplan_routes_restricted_total",
			Help: "Total number of submissions denied by the geofencing check",
		}),
		SubmitCompensated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "seaplan_submit_compensations_total",
			Help: "Total number of credit refunds issued after a failed persistence write",
		}),
	}
}
