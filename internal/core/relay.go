package core

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/timada-org/todo/pkg/client"
)

// Receiver is the consuming side of the broker. *client.Consumer implements it.
type Receiver interface {
	Receive(ctx context.Context) (*client.Event, error)
}

// Relay forwards broker events to the local bus so every instance streams the
// changes made through any other instance.
type Relay struct {
	// RetryDelay is the pause after a failed receive.
	RetryDelay time.Duration

	receiver Receiver
	bus      *EventBus
	logger   zerolog.Logger
}

func NewRelay(receiver Receiver, bus *EventBus, logger zerolog.Logger) *Relay {
	return &Relay{
		RetryDelay: time.Second,
		receiver:   receiver,
		bus:        bus,
		logger:     logger,
	}
}

// Run blocks until ctx is done.
func (r *Relay) Run(ctx context.Context) {
	for {
		event, err := r.receiver.Receive(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return
			}

			r.logger.Error().Err(err).Dur("retry_in", r.RetryDelay).Msg("failed to receive event")

			select {
			case <-ctx.Done():
				return
			case <-time.After(r.RetryDelay):
			}

			continue
		}

		r.logger.Trace().Str("topic", event.Topic.String()).Str("name", event.Name).Msg("relay event")

		_ = r.bus.Send(ctx, event)
	}
}
