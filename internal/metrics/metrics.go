// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// サービス層から利用する。
type MetricsCollector interface {
	RecordSave()
	RecordRemove()
	RecordRemoteCallFailure()
	RecordExtractSuccess()
	RecordExtractFailure(reason string)
	RecordExtractLatency(duration time.Duration)
	RecordMigrationItem(status string)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	saves          prometheus.Counter
	removes        prometheus.Counter
	remoteFailures prometheus.Counter
	extractSuccess prometheus.Counter
	extractFail    *prometheus.CounterVec
	extractLatency prometheus.Histogram
	migrationItems *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		saves: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "recipeapp_saves_total",
			Help: "レシピ保存の合計数",
		}),
		removes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "recipeapp_removes_total",
			Help: "レシピ保存解除の合計数",
		}),
		remoteFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "recipeapp_remote_call_fail_total",
			Help: "クラウドストア呼び出し失敗の合計数",
		}),
		extractSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "recipeapp_extract_success_total",
			Help: "レシピ抽出成功の合計数",
		}),
		extractFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "recipeapp_extract_fail_total",
			Help: "レシピ抽出失敗の理由別合計数",
		}, []string{"reason"}),
		extractLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "recipeapp_extract_latency_seconds",
			Help:    "レシピ抽出のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		migrationItems: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "recipeapp_migration_items_total",
			Help: "マイグレーション処理済みレシピのステータス別合計数",
		}, []string{"status"}),
	}

	reg.MustRegister(
		c.saves,
		c.removes,
		c.remoteFailures,
		c.extractSuccess,
		c.extractFail,
		c.extractLatency,
		c.migrationItems,
	)

	return c
}

// RecordSave はレシピ保存を記録する。
func (c *Collector) RecordSave() {
	c.saves.Inc()
}

// RecordRemove はレシピ保存解除を記録する。
func (c *Collector) RecordRemove() {
	c.removes.Inc()
}

// RecordRemoteCallFailure はクラウドストア呼び出し失敗を記録する。
func (c *Collector) RecordRemoteCallFailure() {
	c.remoteFailures.Inc()
}

// RecordExtractSuccess はレシピ抽出成功を記録する。
func (c *Collector) RecordExtractSuccess() {
	c.extractSuccess.Inc()
}

// RecordExtractFailure はレシピ抽出失敗を理由付きで記録する。
func (c *Collector) RecordExtractFailure(reason string) {
	c.extractFail.WithLabelValues(reason).Inc()
}

// RecordExtractLatency はレシピ抽出のレイテンシを記録する。
func (c *Collector) RecordExtractLatency(duration time.Duration) {
	c.extractLatency.Observe(duration.Seconds())
}

// RecordMigrationItem はマイグレーション処理済みレシピをステータス別に記録する。
func (c *Collector) RecordMigrationItem(status string) {
	c.migrationItems.WithLabelValues(status).Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute は/metricsエンドポイントを提供するHTTPハンドラーを返す。
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}
