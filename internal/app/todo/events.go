package todo

import (
	"context"
	"fmt"
	"time"

	"github.com/timada-org/todo/pkg/client"
	"github.com/timada-org/todo/pkg/topic"
)

const (
	EventCreated = "Created"
	EventUpdated = "Updated"
	EventDeleted = "Deleted"
)

const (
	sendTimeout = 5 * time.Second
	outboxSize  = 256
)

// Sender publishes todo events. Both the SSE event bus and the Pulsar client
// implement it.
type Sender interface {
	Send(ctx context.Context, event *client.Event) error
}

type deletedData struct {
	ID uint64 `json:"id"`
}

func todoTopic(id uint64) *topic.Name {
	return topic.MustName(fmt.Sprintf("todos/%d", id))
}

func newEvent(name string, todo Todo) *client.Event {
	event := &client.Event{
		Topic: todoTopic(todo.ID),
		Name:  name,
		Data:  todo,
	}

	if name == EventDeleted {
		event.Data = deletedData{ID: todo.ID}
	}

	return event
}

// publish queues event for the delivery worker. Events leave in the order
// they were published. Failures are logged and never reach the request.
func (app *App) publish(event *client.Event) {
	app.mux.RLock()
	defer app.mux.RUnlock()

	if app.closed {
		app.logger.Warn().
			Str("topic", event.Topic.String()).
			Str("name", event.Name).
			Msg("event dropped after close")
		return
	}

	app.outbox <- event
}

// deliver sends queued events one at a time until the outbox is closed.
func (app *App) deliver() {
	defer app.wg.Done()

	for event := range app.outbox {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)

		for _, sender := range app.senders {
			if err := sender.Send(ctx, event); err != nil {
				app.logger.Error().
					Err(err).
					Str("topic", event.Topic.String()).
					Str("name", event.Name).
					Msg("failed to send event")
			}
		}

		cancel()
	}
}
