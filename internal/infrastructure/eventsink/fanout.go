// Package eventsink combines the order event sinks behind one
// ports.EventPublisher.
package eventsink

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/swiftlogistics/order-api/internal/core/domain"
	"github.com/swiftlogistics/order-api/internal/pkg/metrics"
)

// Sink is a named event destination.
type Sink interface {
	Name() string
	Publish(ctx context.Context, event domain.OrderEvent) error
}

// Fanout delivers every event to all sinks. A failing sink does not stop the
// others; failures are logged, counted and joined into the returned error.
type Fanout struct {
	sinks []Sink
	log   zerolog.Logger
}

func NewFanout(log zerolog.Logger, sinks ...Sink) *Fanout {
	return &Fanout{sinks: sinks, log: log}
}

func (f *Fanout) Publish(ctx context.Context, event domain.OrderEvent) error {
	var errs []error
	for _, sink := range f.sinks {
		if err := sink.Publish(ctx, event); err != nil {
			metrics.EventPublishErrorsTotal.WithLabelValues(sink.Name()).Inc()
			f.log.Warn().Err(err).
				Str("sink", sink.Name()).
				Str("event", event.Type).
				Str("order_id", event.OrderID).
				Msg("event sink rejected event")
			errs = append(errs, fmt.Errorf("%s: %w", sink.Name(), err))
		}
	}
	return errors.Join(errs...)
}
