package mq

import (
	"context"

	"tasktracker/pkg/circuitbreaker"

	"go.uber.org/zap"
)

// GuardedPublisher stops calling a failing broker for a while, so an outage
// costs each write one fast ErrOpen instead of a publish timeout.
type GuardedPublisher struct {
	next    EventPublisher
	breaker *circuitbreaker.CircuitBreaker
}

func NewGuardedPublisher(next EventPublisher, cfg circuitbreaker.Config, logger *zap.Logger) *GuardedPublisher {
	breaker := circuitbreaker.New(cfg, func(from, to circuitbreaker.State) {
		logger.Warn("Event publisher circuit changed state",
			zap.String("from", from.String()),
			zap.String("to", to.String()),
		)
	})
	return &GuardedPublisher{next: next, breaker: breaker}
}

func (g *GuardedPublisher) Publish(ctx context.Context, routingKey string, payload any) error {
	return g.breaker.Execute(func() error {
		return g.next.Publish(ctx, routingKey, payload)
	})
}
