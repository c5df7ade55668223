package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// 缓存
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "announcehub_cache_hits_total",
			Help: "Total number of announcement cache hits",
		},
		[]string{"view"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "announcehub_cache_misses_total",
			Help: "Total number of announcement cache misses",
		},
		[]string{"view"},
	)

	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "announcehub_cache_errors_total",
			Help: "Total number of cache store failures served from the repository",
		},
		[]string{"operation"},
	)

	// 通知
	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "announcehub_notifications_total",
			Help: "Total number of notifications by channel and result",
		},
		[]string{"channel", "result"}, // result: sent, failed, dropped
	)

	// 异步任务
	AsyncTasksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "announcehub_async_tasks_total",
			Help: "Total number of finished async tasks by result",
		},
		[]string{"task", "result"}, // result: ok, error
	)

	AsyncTaskDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "announcehub_async_task_duration_seconds",
			Help:    "Async task duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"task"},
	)

	// API
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "announcehub_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "announcehub_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "endpoint"},
	)
)

// RecordCacheHit 记录缓存命中
func RecordCacheHit(view string) {
	CacheHits.WithLabelValues(view).Inc()
}

// RecordCacheMiss 记录缓存未命中
func RecordCacheMiss(view string) {
	CacheMisses.WithLabelValues(view).Inc()
}

// RecordCacheError 记录缓存存储故障
func RecordCacheError(operation string) {
	CacheErrors.WithLabelValues(operation).Inc()
}

// RecordNotification 记录通知结果
func RecordNotification(channel, result string) {
	NotificationsTotal.WithLabelValues(channel, result).Inc()
}

// RecordAsyncTask 记录一次异步任务的结果和耗时
func RecordAsyncTask(task string, err error, duration time.Duration) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	AsyncTasksTotal.WithLabelValues(task, result).Inc()
	AsyncTaskDuration.WithLabelValues(task).Observe(duration.Seconds())
}

// RecordAPIRequest 记录一次API请求
func RecordAPIRequest(method, endpoint string, status int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}
