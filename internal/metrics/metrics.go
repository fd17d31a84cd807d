package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// Identity

	SignupsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "perch",
		Name:      "signups_total",
		Help:      "Total successful account creations.",
	})

	LoginsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "perch",
		Name:      "logins_total",
		Help:      "Total login attempts, by outcome.",
	}, []string{"outcome"})

	AccountsDeletedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "perch",
		Name:      "accounts_deleted_total",
		Help:      "Total accounts removed, cascades included.",
	})

	// Social / engagement graph

	FollowMutationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "perch",
		Name:      "follow_mutations_total",
		Help:      "Follow graph mutations, by action.",
	}, []string{"action"})

	LikeMutationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "perch",
		Name:      "like_mutations_total",
		Help:      "Like graph mutations, by action.",
	}, []string{"action"})

	// Reauthentication gate

	ReauthIssuedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "perch",
		Name:      "reauth_tokens_issued_total",
		Help:      "Reauthentication tokens issued.",
	})

	ReauthConsumedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "perch",
		Name:      "reauth_tokens_consumed_total",
		Help:      "Reauthentication token consumption attempts, by outcome.",
	}, []string{"outcome"})

	ReauthPurgedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "perch",
		Name:      "reauth_tokens_purged_total",
		Help:      "Expired reauthentication tokens removed by the janitor.",
	})

	// Feed

	FeedQueryDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "perch",
		Name:      "feed_query_duration_seconds",
		Help:      "Latency of feed assembly, storage path only.",
		Buckets:   []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
	})

	FeedCacheTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "perch",
		Name:      "feed_cache_total",
		Help:      "Feed cache lookups, by result.",
	}, []string{"result"})

	// HTTP metrics

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "perch",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "perch",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests.",
	}, []string{"method", "path", "status"})
)

func Register() {
	prometheus.MustRegister(
		SignupsTotal,
		LoginsTotal,
		AccountsDeletedTotal,
		FollowMutationsTotal,
		LikeMutationsTotal,
		ReauthIssuedTotal,
		ReauthConsumedTotal,
		ReauthPurgedTotal,
		FeedQueryDuration,
		FeedCacheTotal,
		HTTPRequestDuration,
		HTTPRequestsTotal,
	)
}
