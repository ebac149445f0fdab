package cli

import (
	"fmt"
	"io"

	"github.com/zenem/zenem/internal/api"
	"github.com/zenem/zenem/internal/config"
	"github.com/zenem/zenem/internal/events"
	"github.com/zenem/zenem/internal/logging"
	"github.com/zenem/zenem/internal/notify"
	"github.com/zenem/zenem/internal/refresh"
	"github.com/zenem/zenem/internal/store"
	"github.com/zenem/zenem/internal/wizard"
)

// Session holds the components a command works with
type Session struct {
	Config    *config.Config
	Durations config.Durations
	Store     *store.Store
	Client    *api.Client
	Notifier  notify.Notifier
	Events    *events.Bus
}

// WireSession assembles the store, API client, notifier and event bus.
// toasts is where terminal notifications are written.
func WireSession(cfg *config.Config, toasts io.Writer) (*Session, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	d, err := cfg.Durations()
	if err != nil {
		return nil, err
	}

	st, err := store.Open(cfg.StateDB)
	if err != nil {
		return nil, fmt.Errorf("open state: %w", err)
	}

	notifier, err := notify.FromConfig(notify.Config{
		Backends:     cfg.Notify.Backends,
		SlackWebhook: cfg.Notify.SlackWebhook,
		WebhookURL:   cfg.Notify.WebhookURL,
		Terminal:     toasts,
	})
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("configure notifications: %w", err)
	}

	client := api.New(cfg.API.BaseURL,
		api.WithTokenSource(st),
		api.WithTimeout(d.APITimeout),
		api.WithMetadataCache(api.NewMetadataCache(d.MetadataTTL)),
		api.WithLogger(logging.Get("api")),
	)

	bus := events.NewBus(256)
	bus.Subscribe(events.LoggerHandler(logging.Get("events")))

	return &Session{
		Config:    cfg,
		Durations: d,
		Store:     st,
		Client:    client,
		Notifier:  notifier,
		Events:    bus,
	}, nil
}

// Close releases the event bus and the store
func (s *Session) Close() error {
	s.Events.Close()
	return s.Store.Close()
}

// RefreshController builds a refresh controller using the session's timings
func (s *Session) RefreshController() *refresh.Controller {
	return refresh.NewController(s.Client, refresh.Options{
		EstimateDelay: s.Durations.EstimateDelay,
		PollInterval:  s.Durations.PollInterval,
		BadgeInterval: s.Durations.BadgeInterval,
		Bus:           s.Events,
		Logger:        logging.Get("refresh"),
	})
}

// WizardOptions returns wizard options using the session's timings
func (s *Session) WizardOptions() wizard.Options {
	return wizard.Options{
		DiscoveryPollInterval: s.Durations.DiscoveryPollInterval,
		Bus:                   s.Events,
		Logger:                logging.Get("wizard"),
	}
}

// session wires a Session for the running command
func (a *App) session() (*Session, error) {
	return WireSession(a.cfg, a.rootCmd.ErrOrStderr())
}
