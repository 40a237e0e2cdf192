package handlers

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/credoworks/bursar/internal/ledger"
	"github.com/credoworks/bursar/pkg/events"
	"github.com/credoworks/bursar/pkg/logging"
)

var (
	store         *ledger.Store
	logger        logging.Logger
	emitter       events.Emitter
	metrics       *BursarMetrics
	defaultSecret string
)

// BursarMetrics holds all Prometheus metrics for Bursar
type BursarMetrics struct {
	Transfers      *prometheus.CounterVec
	Logins         *prometheus.CounterVec
	Provisions     *prometheus.CounterVec
	SecurityEvents *prometheus.CounterVec
	DBQueries      *prometheus.CounterVec
	DBDuration     *prometheus.HistogramVec
	DBConnections  *prometheus.GaugeVec
}

// Init initializes the handlers with the ledger store, logger, event
// emitter, metrics, and the default secret assigned to new accounts
func Init(ledgerStore *ledger.Store, log logging.Logger, eventEmitter events.Emitter, bursarMetrics *BursarMetrics, provisionSecret string) {
	store = ledgerStore
	logger = log
	emitter = eventEmitter
	metrics = bursarMetrics
	defaultSecret = provisionSecret
}

func countTransfer(status string) {
	if metrics != nil && metrics.Transfers != nil {
		metrics.Transfers.WithLabelValues(status).Inc()
	}
}

func countLogin(status string) {
	if metrics != nil && metrics.Logins != nil {
		metrics.Logins.WithLabelValues(status).Inc()
	}
}

func countProvision(status string) {
	if metrics != nil && metrics.Provisions != nil {
		metrics.Provisions.WithLabelValues(status).Inc()
	}
}

func countSecurity(eventType string) {
	if metrics != nil && metrics.SecurityEvents != nil {
		metrics.SecurityEvents.WithLabelValues(eventType).Inc()
	}
}
