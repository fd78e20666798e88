package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "debmarket_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "debmarket_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	DepositsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "debmarket_deposits_total",
			Help: "Deposit sessions by final state",
		},
		[]string{"state", "method"},
	)

	DepositSessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "debmarket_deposit_sessions_active",
			Help: "Deposit sessions currently tracked in memory",
		},
	)

	PollTicksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "debmarket_poll_ticks_total",
			Help: "Payment status poll ticks by result",
		},
		[]string{"result"},
	)

	WalletTransactionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "debmarket_wallet_transactions_total",
			Help: "Wallet ledger writes by type",
		},
		[]string{"type"},
	)

	InvestmentsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "debmarket_investments_total",
			Help: "Total number of confirmed investments",
		},
	)

	NotificationsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "debmarket_notifications_sent_total",
			Help: "Total number of notifications sent",
		},
		[]string{"type", "status"},
	)

	NotificationQueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "debmarket_notification_queue_length",
			Help: "Current length of the notification queue",
		},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordDeposit(state, method string) {
	DepositsTotal.WithLabelValues(state, method).Inc()
}

func RecordPollTick(result string) {
	PollTicksTotal.WithLabelValues(result).Inc()
}

func RecordWalletTransaction(txType string) {
	WalletTransactionsTotal.WithLabelValues(txType).Inc()
}

func RecordInvestment() {
	InvestmentsTotal.Inc()
}

func RecordNotification(notifType, status string) {
	NotificationsSentTotal.WithLabelValues(notifType, status).Inc()
}
