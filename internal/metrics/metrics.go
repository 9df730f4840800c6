// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// 連絡先操作の結果ラベル
const (
	ResultSuccess    = "success"
	ResultValidation = "validation_error"
	ResultInvalidID  = "invalid_id"
	ResultDuplicate  = "duplicate"
	ResultNotFound   = "not_found"
	ResultError      = "error"
)

// MetricsCollector はメトリクス収集のインターフェース。
// サービス層とHTTPミドルウェアから利用する。
type MetricsCollector interface {
	RecordContactOperation(op, result string)
	RecordHTTPRequest(method, route string, statusCode int, duration time.Duration)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	contactOps  *prometheus.CounterVec
	httpStatus  *prometheus.CounterVec
	httpLatency *prometheus.HistogramVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		contactOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "contactbook_contact_operations_total",
			Help: "連絡先操作の結果別の合計数",
		}, []string{"op", "result"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "contactbook_http_requests_total",
			Help: "ルート・メソッド・ステータスコード別のHTTPリクエスト数",
		}, []string{"method", "route", "status_code"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "contactbook_http_request_duration_seconds",
			Help:    "HTTPリクエストの処理時間（秒）",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	reg.MustRegister(
		c.contactOps,
		c.httpStatus,
		c.httpLatency,
	)

	return c
}

// RecordContactOperation は連絡先操作の結果を記録する。
func (c *Collector) RecordContactOperation(op, result string) {
	c.contactOps.WithLabelValues(op, result).Inc()
}

// RecordHTTPRequest はHTTPリクエストのステータスコードと処理時間を記録する。
// routeにはURLではなくルートパターンを渡し、ラベルの濃度を抑える。
func (c *Collector) RecordHTTPRequest(method, route string, statusCode int, duration time.Duration) {
	c.httpStatus.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	c.httpLatency.WithLabelValues(method, route).Observe(duration.Seconds())
}

// NopCollector は何も記録しないMetricsCollector。
type NopCollector struct{}

// RecordContactOperation は何もしない。
func (NopCollector) RecordContactOperation(op, result string) {}

// RecordHTTPRequest は何もしない。
func (NopCollector) RecordHTTPRequest(method, route string, statusCode int, duration time.Duration) {}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute は/metricsエンドポイントを提供するHTTPハンドラーを返す。
// Prometheusスクレイプに対応する。
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}

var (
	_ MetricsCollector = (*Collector)(nil)
	_ MetricsCollector = NopCollector{}
)
