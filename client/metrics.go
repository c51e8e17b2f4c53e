package client

import (
	apierrors "github.com/paperless/paperless-go/client/internal/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	deletesEnqueuedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "paperless_client",
			Name:      "deletes_enqueued_total",
			Help:      "Fire-and-forget deletes accepted into the shard executor.",
		},
		[]string{"shard"},
	)

	uploadConflictsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "paperless_client",
			Name:      "upload_conflicts_total",
			Help:      "Uploads rejected by the backend as duplicates (409).",
		},
	)
)

// observeUpload records the duplicate-conflict rate of the upload path.
func observeUpload(err error) {
	if apierrors.IsConflict(err) {
		uploadConflictsTotal.Inc()
	}
}
