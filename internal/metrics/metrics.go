// SPDX-License-Identifier: MIT
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Media registry metrics
	mediaIngestTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vidstash_media_ingest_total",
		Help: "Media ingest operations by source and outcome",
	}, []string{"source", "outcome"}) // source=local|remote, outcome=created|deduplicated|error

	mediaResolveTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vidstash_media_resolve_total",
		Help: "Playback source resolutions by outcome",
	}, []string{"outcome"}) // outcome=success|blob_missing|error

	handlesActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "vidstash_playback_handles_active",
		Help: "Transient playback handles currently minted and not released",
	})

	// Post registry metrics
	postMutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vidstash_post_mutations_total",
		Help: "Post mutations by operation and outcome",
	}, []string{"op", "outcome"}) // op=create|update|delete

	postNotifyFanout = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vidstash_post_notifications_total",
		Help: "Total post change notifications delivered to subscribers",
	})
)

// RecordMediaIngest records one media ingest attempt.
func RecordMediaIngest(source, outcome string) {
	mediaIngestTotal.WithLabelValues(source, outcome).Inc()
}

// RecordMediaResolve records one playback source resolution.
func RecordMediaResolve(outcome string) {
	mediaResolveTotal.WithLabelValues(outcome).Inc()
}

// HandleMinted tracks a newly minted playback handle.
func HandleMinted() { handlesActive.Inc() }

// HandleReleased tracks an explicit handle release.
func HandleReleased() { handlesActive.Dec() }

// RecordPostMutation records one post mutation.
func RecordPostMutation(op, outcome string) {
	postMutationsTotal.WithLabelValues(op, outcome).Inc()
}

// RecordNotification counts one delivered change notification.
func RecordNotification() { postNotifyFanout.Inc() }
