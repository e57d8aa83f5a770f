package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CodesIssued counts issued verification codes by purpose
	CodesIssued = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "verification_codes_issued_total",
		Help: "Number of verification codes issued, by purpose",
	}, []string{"purpose"})

	// Validations counts validation calls by outcome
	Validations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "verification_validations_total",
		Help: "Number of code validation calls, by outcome",
	}, []string{"outcome"})

	// IssuanceRejected counts issuance requests blocked before dispatch
	IssuanceRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "verification_issuance_rejected_total",
		Help: "Number of issuance requests rejected, by reason",
	}, []string{"reason"})

	// SMSDispatchFailures counts best-effort SMS sends that failed
	SMSDispatchFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "verification_sms_dispatch_failures_total",
		Help: "Number of SMS dispatch attempts that failed",
	})
)

// Validation outcomes
const (
	OutcomeSuccess     = "success"
	OutcomeInvalid     = "invalid"
	OutcomeExpired     = "expired"
	OutcomeMaxAttempts = "max_attempts"
)

// Issuance rejection reasons
const (
	ReasonCooldown   = "cooldown"
	ReasonDailyLimit = "daily_limit"
)
