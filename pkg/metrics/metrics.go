package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "tertulia", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "tertulia", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
	MessagesPosted = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "tertulia", Name: "messages_posted_total", Help: "Number of messages accepted onto the board by kind."},
		[]string{"kind"},
	)
	ParticipantsJoined = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "tertulia", Name: "participants_joined_total", Help: "Number of successful joins."},
	)
	ParticipantsEvicted = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "tertulia", Name: "participants_evicted_total", Help: "Number of participants removed by the inactivity sweeper."},
	)
	Sweeps = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "tertulia", Name: "sweeps_total", Help: "Number of completed sweep passes."},
	)
	SweepErrors = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "tertulia", Name: "sweep_errors_total", Help: "Number of per-participant failures during sweep passes."},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
	reg.MustRegister(MessagesPosted)
	reg.MustRegister(ParticipantsJoined)
	reg.MustRegister(ParticipantsEvicted)
	reg.MustRegister(Sweeps)
	reg.MustRegister(SweepErrors)
}
