package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
)

const namespace = "account_service"

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, route and status",
	}, []string{"method", "path", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by method and route",
		Buckets:   prometheus.ExponentialBuckets(0.005, 2.5, 9),
	}, []string{"method", "path"})

	requestsInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "http_requests_in_flight",
		Help:      "HTTP requests currently being served",
	})

	// AccountEventsTotal counts account operations by outcome: "ok" or the
	// domain error code (invalid_credentials, account_not_verified, ...).
	AccountEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "account_events_total",
			Help:      "Account operations by event and outcome",
		},
		[]string{"event", "outcome"},
	)

	RateLimitFallbackTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limit_fallback_total",
			Help:      "Requests limited in-process because the shared limiter failed",
		},
		[]string{"route"},
	)
)

// Account event labels.
const (
	EventRegistration     = "registration"
	EventLoginToken       = "login_token"
	EventLoginJWT         = "login_jwt"
	EventLogout           = "logout"
	EventRefresh          = "refresh"
	EventVerify           = "verify"
	EventPasswordChange   = "password_change"
	EventActivationResend = "activation_resend"
	EventActivationVerify = "activation_confirm"
)

// RecordAccountEvent increments AccountEventsTotal for event.
func RecordAccountEvent(event string, err error) {
	AccountEventsTotal.WithLabelValues(event, Outcome(err)).Inc()
}

// Outcome is "ok" for nil, the code of a domain error, or "error".
func Outcome(err error) string {
	if err == nil {
		return "ok"
	}
	var de *domain.Error
	if errors.As(err, &de) {
		return de.Code
	}
	return "error"
}

// Metrics records request count, latency and concurrency. The path label is
// the matched chi route pattern, or "unmatched".
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestsInFlight.Inc()
		defer requestsInFlight.Dec()

		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		elapsed := time.Since(start)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		path := routeLabel(r)
		requestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(status)).Inc()
		requestDuration.WithLabelValues(r.Method, path).Observe(elapsed.Seconds())
	})
}

func routeLabel(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil || rctx.RoutePattern() == "" {
		return "unmatched"
	}
	return rctx.RoutePattern()
}
