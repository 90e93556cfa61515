package core

import (
	"context"
	"sync"

	"github.com/timada-org/todo/internal/sse"
	"github.com/timada-org/todo/pkg/client"
	"github.com/timada-org/todo/pkg/topic"
)

// Sink receives events for one subscriber. *sse.Session implements it.
type Sink interface {
	Send(e *sse.Event) bool
}

type EventBusOptions struct {
	Server *sse.Server
}

// EventBus delivers events to the subscribers whose filters match the event
// topic.
type EventBus struct {
	mux           sync.RWMutex
	subscriptions map[string]*Subscription
}

func NewEventBus(options *EventBusOptions) *EventBus {
	bus := &EventBus{
		subscriptions: make(map[string]*Subscription),
	}

	if options != nil && options.Server != nil {
		options.Server.CloseSessionHandler = func(id string, session *sse.Session) {
			bus.Unsubscribe(id)
		}
	}

	return bus
}

// Send implements the todo event sender. It never blocks on slow subscribers.
func (bus *EventBus) Send(ctx context.Context, event *client.Event) error {
	bus.mux.RLock()
	defer bus.mux.RUnlock()

	for _, subscription := range bus.subscriptions {
		subscription.send(event)
	}

	return nil
}

func (bus *EventBus) Subscribe(id string, sink Sink, filter *topic.Filter) {
	bus.mux.Lock()
	defer bus.mux.Unlock()

	subscription, ok := bus.subscriptions[id]
	if !ok {
		subscription = &Subscription{
			sink:    sink,
			filters: make(map[string]*topic.Filter),
		}
		bus.subscriptions[id] = subscription
	}

	subscription.add(filter)
}

func (bus *EventBus) Unsubscribe(id string) {
	bus.mux.Lock()
	defer bus.mux.Unlock()

	delete(bus.subscriptions, id)
}

func (bus *EventBus) Len() int {
	bus.mux.RLock()
	defer bus.mux.RUnlock()

	return len(bus.subscriptions)
}

type Subscription struct {
	mux     sync.RWMutex
	filters map[string]*topic.Filter
	sink    Sink
}

func (s *Subscription) add(filter *topic.Filter) {
	s.mux.Lock()
	defer s.mux.Unlock()
	s.filters[filter.String()] = filter
}

func (s *Subscription) send(event *client.Event) {
	s.mux.RLock()
	defer s.mux.RUnlock()

	for _, filter := range s.filters {
		if filter.Match(event.Topic) {
			s.sink.Send(&sse.Event{
				Topic:    event.Topic.String(),
				Name:     event.Name,
				Data:     event.Data,
				Metadata: event.Metadata,
			})
			return
		}
	}
}
