package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/contactbook/internal/metrics"
)

// unmatchedRoute はどのルートにも一致しなかったリクエストのrouteラベル。
const unmatchedRoute = "unmatched"

// NewMetricsMiddleware はリクエストごとのステータスコードと処理時間を記録するミドルウェアを返す。
// routeラベルにはchiのルートパターン（例: /api/contacts/{id}）を使う。
func NewMetricsMiddleware(collector metrics.MetricsCollector) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := newStatusRecorder(w)

			next.ServeHTTP(rec, r)

			route := unmatchedRoute
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					route = pattern
				}
			}

			collector.RecordHTTPRequest(r.Method, route, rec.statusCode, time.Since(start))
		})
	}
}
