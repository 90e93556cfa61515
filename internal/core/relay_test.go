package core_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/timada-org/todo/internal/core"
	"github.com/timada-org/todo/pkg/client"
	"github.com/timada-org/todo/pkg/topic"
)

type queueReceiver struct {
	events chan *client.Event
}

func (q *queueReceiver) Receive(ctx context.Context) (*client.Event, error) {
	select {
	case event, ok := <-q.events:
		if !ok {
			return nil, errors.New("closed")
		}
		if event == nil {
			return nil, errors.New("decode event: missing topic")
		}
		return event, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func TestRelay(t *testing.T) {
	bus := core.NewEventBus(nil)
	sink := &recordingSink{}
	bus.Subscribe("s1", sink, mustFilter(t, "todos/#"))

	receiver := &queueReceiver{events: make(chan *client.Event, 4)}
	receiver.events <- &client.Event{Topic: topic.MustName("todos/1"), Name: "Created"}
	receiver.events <- nil
	receiver.events <- &client.Event{Topic: topic.MustName("todos/2"), Name: "Deleted"}

	relay := core.NewRelay(receiver, bus, zerolog.Nop())
	relay.RetryDelay = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		relay.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		return len(sink.topics()) == 2
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"todos/1", "todos/2"}, sink.topics())

	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("relay did not stop")
	}
}

type failingReceiver struct {
	calls atomic.Int32
}

func (f *failingReceiver) Receive(ctx context.Context) (*client.Event, error) {
	f.calls.Add(1)
	return nil, errors.New("consumer closed")
}

func TestRelayBacksOffOnErrors(t *testing.T) {
	receiver := &failingReceiver{}
	relay := core.NewRelay(receiver, core.NewEventBus(nil), zerolog.Nop())
	relay.RetryDelay = 100 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 250*time.Millisecond)
	defer cancel()

	start := time.Now()
	relay.Run(ctx)

	assert.GreaterOrEqual(t, time.Since(start), 200*time.Millisecond)
	assert.LessOrEqual(t, receiver.calls.Load(), int32(4))
}
