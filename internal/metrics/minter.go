package metrics

import (
	"errors"
	"time"

	"github.com/goodnatureofminers/hashcash/pkg/hashcash"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	mintTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hashcash",
		Subsystem: "minter",
		Name:      "mint_total",
		Help:      "Count of mint calls by outcome.",
	}, []string{"minter", "algorithm", "status"})

	mintDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "hashcash",
		Subsystem: "minter",
		Name:      "mint_duration_seconds",
		Help:      "Duration of mint calls.",
		Buckets:   prometheus.ExponentialBuckets(0.001, 4, 12), // 1ms..~70min
	}, []string{"minter", "algorithm", "status"})

	mintAttempts = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "hashcash",
		Subsystem: "minter",
		Name:      "mint_attempts",
		Help:      "Digests computed per mint call.",
		Buckets:   prometheus.ExponentialBuckets(1, 4, 16), // 1..4^15
	}, []string{"minter", "algorithm"})

	mintWorkers = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "hashcash",
		Subsystem: "minter",
		Name:      "last_mint_workers",
		Help:      "Worker count of the most recent mint call.",
	}, []string{"minter", "algorithm"})

	hashesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hashcash",
		Subsystem: "minter",
		Name:      "hashes_total",
		Help:      "Count of digests computed while minting.",
	}, []string{"minter", "algorithm"})

	verifyTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hashcash",
		Subsystem: "minter",
		Name:      "verify_total",
		Help:      "Count of verifications by result.",
	}, []string{"minter", "algorithm", "result"})
)

// Minter records hashcash minting and verification outcomes.
type Minter struct {
	name string
}

// NewMinter constructs a metrics collector labelled with the minter name.
func NewMinter(name string) *Minter {
	if name == "" {
		name = "unknown"
	}
	return &Minter{name: name}
}

// ObserveMint records one mint call.
func (m Minter) ObserveMint(algorithm string, workers int, err error, attempts uint64, started time.Time) {
	algorithm = labelOrUnknown(algorithm)
	status := mintStatus(err)

	mintTotal.WithLabelValues(m.name, algorithm, status).Inc()
	mintDuration.WithLabelValues(m.name, algorithm, status).Observe(time.Since(started).Seconds())
	mintAttempts.WithLabelValues(m.name, algorithm).Observe(float64(attempts))
	mintWorkers.WithLabelValues(m.name, algorithm).Set(float64(workers))
	hashesTotal.WithLabelValues(m.name, algorithm).Add(float64(attempts))
}

// ObserveVerify records one verification.
func (m Minter) ObserveVerify(algorithm string, valid bool, err error) {
	result := "invalid"
	switch {
	case err != nil:
		result = "error"
	case valid:
		result = "valid"
	}
	verifyTotal.WithLabelValues(m.name, labelOrUnknown(algorithm), result).Inc()
}

func mintStatus(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, hashcash.ErrCancelled):
		return "cancelled"
	case errors.Is(err, hashcash.ErrExhausted):
		return "exhausted"
	default:
		return "error"
	}
}

func labelOrUnknown(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
