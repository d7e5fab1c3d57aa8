// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// サービス層とミドルウェアから利用する。
type MetricsCollector interface {
	RecordLoginSuccess()
	RecordLoginNotFound()
	RecordExchangeFailure()
	RecordVerificationFailure()
	RecordUserCreated()
	RecordHTTPStatus(statusCode int)
	RecordProviderLatency(operation string, duration time.Duration)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	loginSuccess    prometheus.Counter
	loginNotFound   prometheus.Counter
	exchangeFail    prometheus.Counter
	verifyFail      prometheus.Counter
	userCreated     prometheus.Counter
	httpStatus      *prometheus.CounterVec
	providerLatency *prometheus.HistogramVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		loginSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "eventauth_login_success_total",
			Help: "ログイン成功の合計数",
		}),
		loginNotFound: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "eventauth_login_not_found_total",
			Help: "未登録メールによるログイン試行の合計数",
		}),
		exchangeFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "eventauth_token_exchange_fail_total",
			Help: "カスタムトークン交換失敗の合計数",
		}),
		verifyFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "eventauth_token_verify_fail_total",
			Help: "ベアラートークン検証失敗の合計数",
		}),
		userCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "eventauth_user_created_total",
			Help: "作成されたユーザーの合計数",
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "eventauth_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		providerLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "eventauth_provider_latency_seconds",
			Help:    "IDプロバイダー呼び出しのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
	}

	reg.MustRegister(
		c.loginSuccess,
		c.loginNotFound,
		c.exchangeFail,
		c.verifyFail,
		c.userCreated,
		c.httpStatus,
		c.providerLatency,
	)

	return c
}

// RecordLoginSuccess はログイン成功を記録する。
func (c *Collector) RecordLoginSuccess() {
	c.loginSuccess.Inc()
}

// RecordLoginNotFound は未登録メールによるログイン試行を記録する。
func (c *Collector) RecordLoginNotFound() {
	c.loginNotFound.Inc()
}

// RecordExchangeFailure はカスタムトークン交換失敗を記録する。
func (c *Collector) RecordExchangeFailure() {
	c.exchangeFail.Inc()
}

// RecordVerificationFailure はベアラートークン検証失敗を記録する。
func (c *Collector) RecordVerificationFailure() {
	c.verifyFail.Inc()
}

// RecordUserCreated はユーザー作成を記録する。
func (c *Collector) RecordUserCreated() {
	c.userCreated.Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordProviderLatency はプロバイダー呼び出しのレイテンシを記録する。
func (c *Collector) RecordProviderLatency(operation string, duration time.Duration) {
	c.providerLatency.WithLabelValues(operation).Observe(duration.Seconds())
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
