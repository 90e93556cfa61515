// Package client publishes todo events to an Apache Pulsar topic.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/apache/pulsar-client-go/pulsar"

	"github.com/timada-org/todo/pkg/topic"
)

// Event is the envelope shared by every event sink: the SSE bus and the broker.
type Event struct {
	Topic    *topic.Name `json:"topic"`
	Name     string      `json:"name"`
	Data     any         `json:"data"`
	Metadata any         `json:"metadata,omitempty"`
}

type ClientOptions struct {
	URL   string
	Topic string
	Name  string
}

type Client struct {
	client   pulsar.Client
	producer pulsar.Producer
}

func New(options ClientOptions) (*Client, error) {
	if options.URL == "" {
		return nil, errors.New("broker url is empty")
	}

	client, err := pulsar.NewClient(pulsar.ClientOptions{
		URL: options.URL,
	})
	if err != nil {
		return nil, fmt.Errorf("create pulsar client: %w", err)
	}

	producer, err := client.CreateProducer(pulsar.ProducerOptions{
		Topic: options.Topic,
		Name:  options.Name,
	})
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("create pulsar producer: %w", err)
	}

	return &Client{
		client:   client,
		producer: producer,
	}, nil
}

// Send publishes the JSON encoded event, keyed by its topic name so events of
// the same todo stay ordered within a partition.
func (c *Client) Send(ctx context.Context, event *Event) error {
	if c.producer == nil {
		return errors.New("producer not initialized")
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	msg := &pulsar.ProducerMessage{Payload: payload}
	if event.Topic != nil {
		msg.Key = event.Topic.String()
	}

	if _, err := c.producer.Send(ctx, msg); err != nil {
		return fmt.Errorf("send event: %w", err)
	}

	return nil
}

func (c *Client) Close() {
	if c.producer != nil {
		c.producer.Close()
	}

	c.client.Close()
}

// Consumer receives events published by every instance sharing the topic.
type Consumer struct {
	consumer pulsar.Consumer
}

// Subscribe opens an exclusive subscription named name on the client topic.
// Each instance needs its own name to see every event.
func (c *Client) Subscribe(topic, name string) (*Consumer, error) {
	consumer, err := c.client.Subscribe(pulsar.ConsumerOptions{
		Topic:            topic,
		SubscriptionName: name,
		Type:             pulsar.Exclusive,
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", topic, err)
	}

	return &Consumer{consumer: consumer}, nil
}

// Receive blocks until the next event arrives or ctx is done. Messages that
// cannot be decoded are acknowledged and reported as an error.
func (c *Consumer) Receive(ctx context.Context) (*Event, error) {
	msg, err := c.consumer.Receive(ctx)
	if err != nil {
		return nil, err
	}

	c.consumer.Ack(msg)

	var event Event
	if err := json.Unmarshal(msg.Payload(), &event); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}

	if event.Topic == nil {
		return nil, errors.New("decode event: missing topic")
	}

	return &event, nil
}

func (c *Consumer) Close() {
	c.consumer.Close()
}
