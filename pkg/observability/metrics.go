package observability

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeDropped = "dropped"
)

// Metrics holds the application counters. A nil *Metrics records nothing.
type Metrics struct {
	authEvents    metric.Int64Counter
	notifications metric.Int64Counter
}

// NewMetrics registers the application instruments on meter
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	authEvents, err := meter.Int64Counter(
		"auth_events_total",
		metric.WithDescription("Authentication lifecycle events by operation and outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth events counter: %w", err)
	}

	notifications, err := meter.Int64Counter(
		"notifications_total",
		metric.WithDescription("Outbound notifications by kind and outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create notifications counter: %w", err)
	}

	return &Metrics{
		authEvents:    authEvents,
		notifications: notifications,
	}, nil
}

// RecordAuth counts one register, confirm, login or logout attempt
func (m *Metrics) RecordAuth(ctx context.Context, operation, outcome string) {
	if m == nil {
		return
	}
	m.authEvents.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("outcome", outcome),
	))
}

func (m *Metrics) RecordNotification(ctx context.Context, kind, outcome string) {
	if m == nil {
		return
	}
	m.notifications.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("outcome", outcome),
	))
}

// PrometheusHandler returns a Gin handler for Prometheus metrics
func PrometheusHandler(handler http.Handler) gin.HandlerFunc {
	return func(c *gin.Context) {
		if handler != nil {
			handler.ServeHTTP(c.Writer, c.Request)
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "metrics handler not initialized",
			})
		}
	}
}
