package devcli

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"

	"github.com/steven3002/feedpager-go/checkpoint"
)

// Shutdown releases a resource opened at startup.
type Shutdown func(context.Context) error

func noop(context.Context) error { return nil }

// SetupTracing installs a batching OTLP tracer provider. An empty endpoint
// leaves the global no-op provider in place.
func SetupTracing(ctx context.Context, endpoint string) (Shutdown, error) {
	if endpoint == "" {
		return noop, nil
	}
	exporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}
	res, _ := resource.New(ctx, resource.WithAttributes(semconv.ServiceNameKey.String("feedpager")))
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))
	return tp.Shutdown, nil
}

// NewRegistry returns a registry with the Go runtime collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return reg
}

// ServeMetrics exposes reg on addr under /metrics until shut down. An
// empty addr serves nothing.
func ServeMetrics(addr string, reg *prometheus.Registry, log *logrus.Entry) (Shutdown, error) {
	if addr == "" {
		return noop, nil
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("metrics server stopped")
		}
	}()
	log.Infof("serving metrics on %s/metrics", ln.Addr())
	return srv.Shutdown, nil
}

// OpenStore connects the checkpoint store: Redis when an address is
// configured, process memory otherwise.
func OpenStore(ctx context.Context, s Settings, log *logrus.Entry) (checkpoint.Store, Shutdown, error) {
	if s.RedisAddr == "" {
		return checkpoint.NewMemoryStore(), noop, nil
	}
	rdb := redis.NewClient(&redis.Options{Addr: s.RedisAddr})
	if err := redisotel.InstrumentTracing(rdb); err != nil {
		_ = rdb.Close()
		return nil, nil, err
	}
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, err
	}
	log.WithField("addr", s.RedisAddr).Debug("connected to redis")
	return checkpoint.NewRedisStore(rdb, s.CheckpointTTL), func(context.Context) error { return rdb.Close() }, nil
}
