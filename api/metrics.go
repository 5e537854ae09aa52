package api

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pta_backtest_runs_total",
		Help: "Total backtest runs handled by the API, by status.",
	}, []string{"status"})

	runDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pta_backtest_duration_seconds",
		Help:    "Wall time of a backtest run.",
		Buckets: prometheus.DefBuckets,
	})

	tradesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pta_backtest_trades_total",
		Help: "Total trades produced across API backtest runs.",
	})

	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pta_http_requests_total",
		Help: "HTTP requests by path and status.",
	}, []string{"path", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pta_http_request_duration_seconds",
		Help:    "HTTP request latency by path.",
		Buckets: prometheus.DefBuckets,
	}, []string{"path"})
)

// metricsMiddleware 请求指标中间件
func metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		c.Next()

		httpRequests.WithLabelValues(path, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(path).Observe(time.Since(start).Seconds())
	}
}

func observeRun(status string, d time.Duration, trades int) {
	runsTotal.WithLabelValues(status).Inc()
	runDuration.Observe(d.Seconds())
	if trades > 0 {
		tradesTotal.Add(float64(trades))
	}
}
