package observability

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

// GlobeCollector bundles Prometheus metrics for the globe service: RPC
// traffic, front-facing evaluations, the catalog, quiz answers, and
// websocket viewers.
type GlobeCollector struct {
	gatherer prometheus.Gatherer

	RPCRequests  *prometheus.CounterVec
	RPCDurations *prometheus.HistogramVec

	FacingEvaluations *prometheus.CounterVec
	FrontFacingScore  prometheus.Gauge
	CatalogCountries  prometheus.Gauge
	QuizAnswers       *prometheus.CounterVec
	StreamClients     prometheus.Gauge
}

// NewGlobeCollector registers the globe metrics against reg, defaulting to
// the global Prometheus registry when nil. Registering twice against the
// same registry returns the existing collectors.
func NewGlobeCollector(reg prometheus.Registerer) (*GlobeCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	requests, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "globe_rpc_requests_total",
		Help: "Total number of handled GlobeService RPCs, labeled by service, method, and gRPC status code.",
	}, []string{"service", "method", "code"}), "globe_rpc_requests_total")
	if err != nil {
		return nil, err
	}

	durations, err := registerHistogramVec(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "globe_rpc_duration_seconds",
		Help:    "GlobeService RPC latency in seconds.",
		Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}, []string{"service", "method"}), "globe_rpc_duration_seconds")
	if err != nil {
		return nil, err
	}

	evaluations, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "globe_facing_evaluations_total",
		Help: "Front-facing country evaluations, labeled by whether a country was found.",
	}, []string{"found"}), "globe_facing_evaluations_total")
	if err != nil {
		return nil, err
	}

	score, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "globe_front_facing_score",
		Help: "Alignment score of the most recent settled front-facing country (1 = dead centre).",
	}), "globe_front_facing_score")
	if err != nil {
		return nil, err
	}

	countries, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "globe_catalog_countries",
		Help: "Current number of countries in the catalog.",
	}), "globe_catalog_countries")
	if err != nil {
		return nil, err
	}

	answers, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "globe_quiz_answers_total",
		Help: "Quiz answers submitted, labeled by correctness.",
	}, []string{"correct"}), "globe_quiz_answers_total")
	if err != nil {
		return nil, err
	}

	clients, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "globe_stream_clients",
		Help: "Currently connected websocket frame-stream clients.",
	}), "globe_stream_clients")
	if err != nil {
		return nil, err
	}

	return &GlobeCollector{
		gatherer:          gatherer,
		RPCRequests:       requests,
		RPCDurations:      durations,
		FacingEvaluations: evaluations,
		FrontFacingScore:  score,
		CatalogCountries:  countries,
		QuizAnswers:       answers,
		StreamClients:     clients,
	}, nil
}

// UnaryServerInterceptor records request counts and durations for unary RPCs.
func (c *GlobeCollector) UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		if c == nil {
			return resp, err
		}

		fullMethod := ""
		if info != nil {
			fullMethod = info.FullMethod
		}
		service, method := SplitMethod(fullMethod)
		code := status.Code(err).String()

		if c.RPCRequests != nil {
			c.RPCRequests.WithLabelValues(service, method, code).Inc()
		}
		if c.RPCDurations != nil {
			c.RPCDurations.WithLabelValues(service, method).Observe(time.Since(start).Seconds())
		}

		return resp, err
	}
}

// Handler exposes a ready-to-use /metrics handler.
func (c *GlobeCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// ObserveFacing records one settled front-facing evaluation. It satisfies
// the globe driver's metrics recorder.
func (c *GlobeCollector) ObserveFacing(found bool, score float64) {
	if c == nil {
		return
	}
	if c.FacingEvaluations != nil {
		c.FacingEvaluations.WithLabelValues(strconv.FormatBool(found)).Inc()
	}
	if found && c.FrontFacingScore != nil {
		c.FrontFacingScore.Set(score)
	}
}

// SetCatalogSize updates the catalog gauge.
func (c *GlobeCollector) SetCatalogSize(n int) {
	if c == nil || c.CatalogCountries == nil {
		return
	}
	c.CatalogCountries.Set(float64(n))
}

// RecordAnswer counts a quiz answer.
func (c *GlobeCollector) RecordAnswer(correct bool) {
	if c == nil || c.QuizAnswers == nil {
		return
	}
	c.QuizAnswers.WithLabelValues(strconv.FormatBool(correct)).Inc()
}

// SetStreamClients updates the websocket client gauge.
func (c *GlobeCollector) SetStreamClients(n int) {
	if c == nil || c.StreamClients == nil {
		return
	}
	c.StreamClients.Set(float64(n))
}

// SplitMethod parses a fully-qualified gRPC method name into service and method
// components. It tolerates empty strings and partial paths, returning
// "unknown"/"unknown" when parsing fails.
func SplitMethod(fullMethod string) (string, string) {
	if fullMethod == "" {
		return "unknown", "unknown"
	}
	fullMethod = strings.TrimPrefix(fullMethod, "/")
	parts := strings.Split(fullMethod, "/")
	if len(parts) < 2 {
		return "unknown", "unknown"
	}
	service := parts[len(parts)-2]
	method := parts[len(parts)-1]
	if dot := strings.LastIndex(service, "."); dot >= 0 && dot+1 < len(service) {
		service = service[dot+1:]
	}
	if service == "" {
		service = "unknown"
	}
	if method == "" {
		method = "unknown"
	}
	return service, method
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
