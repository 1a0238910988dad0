package telemetry

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// FiberMiddleware creates a span per HTTP request, propagating any
// incoming trace context from the request headers, and records request
// count and duration metrics.
func FiberMiddleware(serviceName string) fiber.Handler {
	tracer := otel.Tracer(serviceName)
	meter := otel.Meter(serviceName)
	propagator := otel.GetTextMapPropagator()

	requests, err := meter.Int64Counter("http.server.requests",
		metric.WithDescription("Number of handled HTTP requests"))
	if err != nil {
		slog.Error("failed to create request counter", "error", err)
	}
	duration, err := meter.Float64Histogram("http.server.duration",
		metric.WithDescription("HTTP request duration"),
		metric.WithUnit("ms"))
	if err != nil {
		slog.Error("failed to create duration histogram", "error", err)
	}

	return func(c *fiber.Ctx) error {
		ctx := propagator.Extract(c.Context(), &fiberCarrier{c: c})

		spanName := c.Method() + " " + c.Route().Path
		if spanName == " " {
			spanName = c.Method() + " " + c.Path()
		}

		ctx, span := tracer.Start(ctx, spanName,
			trace.WithAttributes(
				attribute.String("http.method", c.Method()),
				attribute.String("http.url", c.OriginalURL()),
				attribute.String("http.route", c.Route().Path),
				attribute.String("http.remote_addr", c.IP()),
			),
		)
		defer span.End()

		c.Locals("otel.ctx", ctx)

		start := time.Now()
		err := c.Next()

		statusCode := c.Response().StatusCode()
		span.SetAttributes(attribute.Int("http.status_code", statusCode))

		metricAttrs := metric.WithAttributes(
			attribute.String("http.method", c.Method()),
			attribute.String("http.route", c.Route().Path),
			attribute.Int("http.status_code", statusCode),
		)
		requests.Add(ctx, 1, metricAttrs)
		duration.Record(ctx, float64(time.Since(start).Microseconds())/1000, metricAttrs)

		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else if statusCode >= 400 {
			span.SetStatus(codes.Error, "HTTP "+strconv.Itoa(statusCode))
		} else {
			span.SetStatus(codes.Ok, "")
		}

		return err
	}
}

// fiberCarrier adapts a Fiber context to propagation.TextMapCarrier.
type fiberCarrier struct {
	c *fiber.Ctx
}

func (fc *fiberCarrier) Get(key string) string {
	return fc.c.Get(key)
}

func (fc *fiberCarrier) Set(key, value string) {
	fc.c.Set(key, value)
}

func (fc *fiberCarrier) Keys() []string {
	keys := make([]string, 0)
	fc.c.Request().Header.VisitAll(func(key, value []byte) {
		keys = append(keys, string(key))
	})
	return keys
}
