package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "endpoint", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request durations.",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint", "status"},
	)
	priceUpdatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wishlist_price_updates_total",
			Help: "Price updates by outcome (changed, unchanged, failed).",
		},
		[]string{"outcome"},
	)
	priceDropsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "wishlist_price_drops_total",
			Help: "Price drops detected.",
		},
	)
	notificationsCreatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wishlist_notifications_created_total",
			Help: "Notifications committed, by kind.",
		},
		[]string{"kind"},
	)
	notificationsPublishedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wishlist_notifications_published_total",
			Help: "Notification broker publishes, by result.",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		priceUpdatesTotal,
		priceDropsTotal,
		notificationsCreatedTotal,
		notificationsPublishedTotal,
	)
}

// RecordRequest записывает метрики для HTTP-запроса.
func RecordRequest(method, endpoint string, statusCode int, duration time.Duration) {
	status := classifyStatus(statusCode)
	httpRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	httpRequestDuration.WithLabelValues(method, endpoint, status).Observe(duration.Seconds())
}

func RecordPriceUpdate(outcome string) {
	priceUpdatesTotal.WithLabelValues(outcome).Inc()
}

func RecordPriceDrop() {
	priceDropsTotal.Inc()
}

func RecordNotificationCreated(kind string) {
	notificationsCreatedTotal.WithLabelValues(kind).Inc()
}

func RecordNotificationPublished(ok bool) {
	notificationsPublishedTotal.WithLabelValues(strconv.FormatBool(ok)).Inc()
}

func classifyStatus(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return "2xx"
	case statusCode >= 300 && statusCode < 400:
		return "3xx"
	case statusCode >= 400 && statusCode < 500:
		return "4xx"
	case statusCode >= 500 && statusCode < 600:
		return "5xx"
	}
	return "unknown"
}

// MetricsHandler возвращает HTTP-обработчик для экспорта метрик Prometheus.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
