package provider

import (
	"context"
	"encoding/json"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/RustForNeo/neoclient/pkg/logging"
	"github.com/RustForNeo/neoclient/pkg/transport"
	"github.com/RustForNeo/neoclient/pkg/types"
)

const tracerName = "github.com/RustForNeo/neoclient"

// ObservabilityConfig wires the observability layer into the host
// application's telemetry. Zero values fall back to the global otel
// provider, the default prometheus registerer and a nop logger.
type ObservabilityConfig struct {
	Registerer     prometheus.Registerer
	TracerProvider trace.TracerProvider
	Logger         logging.Logger
}

// ObservabilityMiddleware records per-method counters, latency histograms
// and spans around every provider operation.
type ObservabilityMiddleware struct {
	tracer trace.Tracer
	lg     logging.Logger

	requests      *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	subscriptions *prometheus.CounterVec
}

// NewObservabilityMiddleware creates the observability layer.
func NewObservabilityMiddleware(cfg ObservabilityConfig) *ObservabilityMiddleware {
	if cfg.Registerer == nil {
		cfg.Registerer = prometheus.DefaultRegisterer
	}
	if cfg.TracerProvider == nil {
		cfg.TracerProvider = otel.GetTracerProvider()
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.NewNop()
	}

	factory := promauto.With(cfg.Registerer)
	return &ObservabilityMiddleware{
		tracer: cfg.TracerProvider.Tracer(tracerName),
		lg:     cfg.Logger.Named("rpc"),
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "neoclient_requests_total",
			Help: "RPC requests by method and outcome.",
		}, []string{"method", "outcome"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "neoclient_request_duration_seconds",
			Help:    "RPC request latency by method.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
		subscriptions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "neoclient_subscriptions_total",
			Help: "Subscriptions opened through this provider, by topic.",
		}, []string{"topic"}),
	}
}

// Wrap implements the Middleware interface.
func (m *ObservabilityMiddleware) Wrap(next Provider) Provider {
	return &observedProvider{middlewareProvider: middlewareProvider{next: next}, mw: m}
}

type observedProvider struct {
	middlewareProvider
	mw *ObservabilityMiddleware
}

func (p *observedProvider) observe(method string, start time.Time, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	elapsed := time.Since(start)
	p.mw.requests.WithLabelValues(method, outcome).Inc()
	p.mw.duration.WithLabelValues(method).Observe(elapsed.Seconds())
	if err != nil {
		p.mw.lg.Warn("rpc call failed", "method", method, "elapsed", elapsed, "error", err)
	} else {
		p.mw.lg.Debug("rpc call", "method", method, "elapsed", elapsed)
	}
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (p *observedProvider) Call(ctx context.Context, method string, params []interface{}) (json.RawMessage, error) {
	ctx, span := p.mw.tracer.Start(ctx, "neoclient.call",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("rpc.method", method)))
	start := time.Now()

	result, err := p.next.Call(ctx, method, params)

	p.observe(method, start, err)
	endSpan(span, err)
	return result, err
}

func (p *observedProvider) SendTransaction(ctx context.Context, tx *types.Transaction) (types.Hash256, error) {
	ctx, span := p.mw.tracer.Start(ctx, "neoclient.send_transaction",
		trace.WithSpanKind(trace.SpanKindClient))
	start := time.Now()

	hash, err := p.next.SendTransaction(ctx, tx)
	if err == nil {
		span.SetAttributes(attribute.String("tx.hash", hash.String()))
	}

	p.observe("sendtransaction", start, err)
	endSpan(span, err)
	return hash, err
}

func (p *observedProvider) Subscribe(ctx context.Context, topic string, params ...interface{}) (*transport.Subscription, error) {
	ctx, span := p.mw.tracer.Start(ctx, "neoclient.subscribe",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("subscription.topic", topic)))
	start := time.Now()

	sub, err := p.next.Subscribe(ctx, topic, params...)

	p.observe("subscribe", start, err)
	endSpan(span, err)
	if err != nil {
		return nil, err
	}

	p.mw.subscriptions.WithLabelValues(topic).Inc()
	return sub, nil
}
