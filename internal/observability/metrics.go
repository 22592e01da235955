package observability

import (
	"regexp"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trackback_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "trackback_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// ClaimsReported counts found-reports submitted against lost posts.
	ClaimsReported = promauto.NewCounter(prometheus.CounterOpts{
		Name: "trackback_claims_reported_total",
		Help: "Total number of found-item claims reported",
	})

	// ClaimsConfirmed counts owner confirmations that resolved a post.
	ClaimsConfirmed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "trackback_claims_confirmed_total",
		Help: "Total number of claims confirmed by post owners",
	})

	// EmailDeliveries counts notification email attempts by outcome.
	EmailDeliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trackback_email_deliveries_total",
		Help: "Total number of notification email attempts by outcome",
	}, []string{"kind", "outcome"})

	// FacebookPublishes counts Graph API cross-post attempts by outcome.
	FacebookPublishes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trackback_facebook_publishes_total",
		Help: "Total number of Facebook cross-post attempts by outcome",
	}, []string{"outcome"})
)

var sqlTablePattern = regexp.MustCompile("(?i)(?:FROM|INTO|UPDATE)\\s+[\"`]?(\\w+)")

// ObserveQuery records one query's latency in DatabaseQueryLatency,
// labelled by the leading SQL keyword and the first table the
// statement touches. Called from the GORM logger's Trace hook.
func ObserveQuery(sql string, elapsed time.Duration) {
	operation := "OTHER"
	if fields := strings.Fields(sql); len(fields) > 0 {
		operation = strings.ToUpper(fields[0])
	}

	table := "unknown"
	if m := sqlTablePattern.FindStringSubmatch(sql); m != nil {
		table = strings.ToLower(m[1])
	}

	DatabaseQueryLatency.WithLabelValues(operation, table).Observe(elapsed.Seconds())
}
