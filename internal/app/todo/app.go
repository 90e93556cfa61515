package todo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/julienschmidt/httprouter"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/timada-org/todo/internal/core"
	"github.com/timada-org/todo/internal/sse"
	"github.com/timada-org/todo/pkg/client"
)

type Options struct {
	Addr        string
	GracePeriod time.Duration
	Store       *Store
	Logger      zerolog.Logger
	// Senders receive every todo event in addition to the SSE bus.
	Senders []Sender
	Events  *sse.Server
	Bus     *core.EventBus
	// Relay feeds Bus from the broker. When set, events reach the bus only
	// through the broker so every instance sees them once.
	Relay *core.Relay
}

type App struct {
	addr        string
	gracePeriod time.Duration
	store       *Store
	logger      zerolog.Logger
	senders     []Sender
	events      *sse.Server
	bus         *core.EventBus
	relay       *core.Relay
	views       *views

	mux    sync.RWMutex
	closed bool
	outbox chan *client.Event
	wg     sync.WaitGroup

	persistence Persistence
	broker      *client.Client
	consumer    *client.Consumer
}

func NewApp(options Options) *App {
	events := options.Events
	if events == nil {
		events = sse.New()
	}

	bus := options.Bus
	if bus == nil {
		bus = core.NewEventBus(&core.EventBusOptions{Server: events})
	}

	senders := options.Senders
	if options.Relay == nil {
		senders = append([]Sender{bus}, senders...)
	}

	app := &App{
		addr:        options.Addr,
		gracePeriod: options.GracePeriod,
		store:       options.Store,
		logger:      options.Logger,
		senders:     senders,
		events:      events,
		bus:         bus,
		relay:       options.Relay,
		views:       newViews(),
		outbox:      make(chan *client.Event, outboxSize),
	}

	app.wg.Add(1)
	go app.deliver()

	return app
}

// New wires the application from cfg. With a broker configured, todo events
// go out through Pulsar and come back to the local SSE bus through the relay.
func New(cfg *core.Config, logger zerolog.Logger) (*App, error) {
	persistence, err := OpenPersistence(cfg.Storage)
	if err != nil {
		return nil, err
	}

	store, err := NewStore(persistence, logger)
	if err != nil {
		persistence.Close()
		return nil, err
	}

	options := Options{
		Addr:        cfg.Addr,
		GracePeriod: cfg.GracePeriod(),
		Store:       store,
		Logger:      logger,
		Events:      sse.New(),
	}
	options.Bus = core.NewEventBus(&core.EventBusOptions{Server: options.Events})

	var (
		broker   *client.Client
		consumer *client.Consumer
	)

	if cfg.Broker.Enabled() {
		instance := fmt.Sprintf("%s-%s", cfg.Broker.Name, gonanoid.Must(8))

		broker, err = client.New(client.ClientOptions{
			URL:   cfg.Broker.URL,
			Topic: cfg.Broker.Topic,
			Name:  instance,
		})
		if err != nil {
			persistence.Close()
			return nil, err
		}

		consumer, err = broker.Subscribe(cfg.Broker.Topic, instance)
		if err != nil {
			broker.Close()
			persistence.Close()
			return nil, err
		}

		options.Senders = []Sender{broker}
		options.Relay = core.NewRelay(consumer, options.Bus, logger)

		logger.Info().
			Str("url", cfg.Broker.URL).
			Str("topic", cfg.Broker.Topic).
			Str("instance", instance).
			Msg("publishing events to broker")
	}

	app := NewApp(options)
	app.persistence = persistence
	app.broker = broker
	app.consumer = consumer

	return app, nil
}

func (app *App) Handler() http.Handler {
	router := httprouter.New()
	router.GET("/", app.index())
	router.GET("/search", app.search())
	router.POST("/create-todo", app.create())
	router.POST("/mark-done/:id", app.markDone())
	router.PUT("/mark-done/:id", app.markDone())
	router.POST("/delete-todo/:id", app.delete())
	router.DELETE("/delete-todo/:id", app.delete())
	router.GET("/events", app.subscribe())
	router.ServeFiles("/static/*filepath", http.FS(staticFS))

	var handler http.Handler = router
	handler = hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Stringer("url", r.URL).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("request")
	})(handler)
	handler = hlog.RequestIDHandler("req_id", "X-Request-Id")(handler)
	handler = hlog.NewHandler(app.logger)(handler)

	return handler
}

// Listen serves HTTP until ctx is done, then shuts down within the grace
// period.
func (app *App) Listen(ctx context.Context) error {
	server := &http.Server{
		Addr:              app.addr,
		Handler:           app.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if app.relay != nil {
		go app.relay.Run(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		app.logger.Info().Str("addr", app.addr).Msg("listening")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	app.logger.Info().Dur("grace_period", app.gracePeriod).Msg("shutting down")

	app.events.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), app.gracePeriod)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	return nil
}

// Close delivers the queued events, then releases the broker and the
// persistence. Call it after Listen returns. Events published afterwards are
// dropped.
func (app *App) Close() error {
	app.mux.Lock()
	if !app.closed {
		app.closed = true
		close(app.outbox)
	}
	app.mux.Unlock()

	app.wg.Wait()

	if app.consumer != nil {
		app.consumer.Close()
	}

	if app.broker != nil {
		app.broker.Close()
	}

	if app.persistence != nil {
		return app.persistence.Close()
	}

	return nil
}
