package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TurnsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chat_turns_processed_total",
		Help: "Dialogue turns processed, labeled by turn status.",
	}, []string{"status"})

	OrdersFinalized = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chat_orders_finalized_total",
		Help: "Orders successfully persisted.",
	})

	ChannelFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chat_notification_failures_total",
		Help: "Notification deliveries that failed, labeled by channel.",
	}, []string{"channel"})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chat_http_requests_total",
		Help: "HTTP requests served, labeled by route and status code.",
	}, []string{"route", "code"})
)
