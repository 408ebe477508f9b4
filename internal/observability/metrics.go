package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// GuessesCreated counts accepted guesses by kind.
	GuessesCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "babypool_guesses_created_total",
		Help: "Total number of guesses created by kind",
	}, []string{"kind"})

	// SlotConflicts counts rejected date/hour/minute claims. Race is "true"
	// when the unique index caught it rather than the pre-check.
	SlotConflicts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "babypool_slot_conflicts_total",
		Help: "Total number of rejected guess slot claims",
	}, []string{"kind", "race"})

	PaymentActions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "babypool_payment_actions_total",
		Help: "Total number of host payment actions by type",
	}, []string{"action"})

	Logins = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "babypool_logins_total",
		Help: "Successful logins by method",
	}, []string{"method"})
)
