// Package metrics 提供 Prometheus 指标注册与暴露
package metrics

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/wyfcoding/optionpricing/pkg/logger"
)

// Metrics 指标集合
type Metrics struct {
	registry *prometheus.Registry

	// HTTP 请求计数（按路径、状态码）
	HTTPRequestsTotal *prometheus.CounterVec
	// HTTP 请求耗时
	HTTPRequestDuration *prometheus.HistogramVec

	// 定价请求计数（按模型）
	PricingRequestsTotal *prometheus.CounterVec
	// 定价耗时（按模型）
	PricingDuration *prometheus.HistogramVec
	// 定价失败计数（按错误类别）
	PricingErrorsTotal *prometheus.CounterVec
	// 模拟路径总数
	SimulatedPathsTotal prometheus.Counter
}

// New 创建指标实例
func New(serviceName string) *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pricing",
			Subsystem: serviceName,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests",
		}, []string{"path", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "pricing",
			Subsystem: serviceName,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"path"}),
		PricingRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pricing",
			Subsystem: serviceName,
			Name:      "requests_total",
			Help:      "Total pricing requests",
		}, []string{"model"}),
		PricingDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "pricing",
			Subsystem: serviceName,
			Name:      "duration_seconds",
			Help:      "Pricing computation duration in seconds",
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}, []string{"model"}),
		PricingErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pricing",
			Subsystem: serviceName,
			Name:      "errors_total",
			Help:      "Total pricing failures",
		}, []string{"kind"}),
		SimulatedPathsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pricing",
			Subsystem: serviceName,
			Name:      "simulated_paths_total",
			Help:      "Total Monte Carlo paths simulated",
		}),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.PricingRequestsTotal,
		m.PricingDuration,
		m.PricingErrorsTotal,
		m.SimulatedPathsTotal,
	)

	return m
}

// Serve 在独立端口上暴露 /metrics 端点
func (m *Metrics) Serve(port int, path string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle(path, promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}

	go func() {
		logger.Info(context.Background(), "metrics server started", "port", port, "path", path)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error(context.Background(), "metrics server failed", "error", err)
		}
	}()

	return srv
}
