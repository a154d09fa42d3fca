// Package metrics exposes Prometheus collectors for the crawl engine and the
// review service.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	cardsScannedTotal        prometheus.Counter
	recordsPersistedTotal    prometheus.Counter
	duplicatesObservedTotal  prometheus.Counter
	cardFailuresTotal        *prometheus.CounterVec
	pagesAdvancedTotal       prometheus.Counter
	obstructionsClearedTotal *prometheus.CounterVec
	challengePausesTotal     prometheus.Counter

	once sync.Once
)

// Init registers the collectors. Safe to call more than once.
func Init() {
	once.Do(func() {
		cardsScannedTotal = promauto.NewCounter(prometheus.CounterOpts{
			Name: "jobtrawler_cards_scanned_total",
			Help: "Total number of listing cards opened for extraction.",
		})
		recordsPersistedTotal = promauto.NewCounter(prometheus.CounterOpts{
			Name: "jobtrawler_records_persisted_total",
			Help: "Total number of new listing records persisted.",
		})
		duplicatesObservedTotal = promauto.NewCounter(prometheus.CounterOpts{
			Name: "jobtrawler_duplicates_observed_total",
			Help: "Total number of cards skipped because the title was already stored.",
		})
		cardFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "jobtrawler_card_failures_total",
			Help: "Total number of cards abandoned due to a recoverable failure, labeled by stage.",
		}, []string{"stage"})
		pagesAdvancedTotal = promauto.NewCounter(prometheus.CounterOpts{
			Name: "jobtrawler_pages_advanced_total",
			Help: "Total number of successful next-page transitions.",
		})
		obstructionsClearedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "jobtrawler_obstructions_cleared_total",
			Help: "Total number of UI obstructions cleared, labeled by kind.",
		}, []string{"kind"})
		challengePausesTotal = promauto.NewCounter(prometheus.CounterOpts{
			Name: "jobtrawler_challenge_pauses_total",
			Help: "Total number of human-in-the-loop pauses for anti-automation challenges.",
		})
	})
}

// Handler returns an http.Handler exposing the Prometheus registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveCardScanned increments the scanned-cards counter.
func ObserveCardScanned() {
	if cardsScannedTotal != nil {
		cardsScannedTotal.Inc()
	}
}

// ObserveRecordPersisted increments the persisted-records counter.
func ObserveRecordPersisted() {
	if recordsPersistedTotal != nil {
		recordsPersistedTotal.Inc()
	}
}

// ObserveDuplicate increments the duplicates counter.
func ObserveDuplicate() {
	if duplicatesObservedTotal != nil {
		duplicatesObservedTotal.Inc()
	}
}

// ObserveCardFailure increments the card-failure counter for a stage.
func ObserveCardFailure(stage string) {
	if cardFailuresTotal != nil {
		cardFailuresTotal.WithLabelValues(stage).Inc()
	}
}

// ObservePageAdvanced increments the page-advance counter.
func ObservePageAdvanced() {
	if pagesAdvancedTotal != nil {
		pagesAdvancedTotal.Inc()
	}
}

// ObserveObstructionCleared increments the cleared-obstruction counter.
func ObserveObstructionCleared(kind string) {
	if obstructionsClearedTotal != nil {
		obstructionsClearedTotal.WithLabelValues(kind).Inc()
	}
}

// ObserveChallengePause increments the challenge-pause counter.
func ObserveChallengePause() {
	if challengePausesTotal != nil {
		challengePausesTotal.Inc()
	}
}
