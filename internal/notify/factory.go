package notify

import (
	"fmt"
	"io"
)

// Config holds notification configuration
type Config struct {
	Backends     []string
	SlackWebhook string
	WebhookURL   string

	// Terminal is where terminal toasts go; nil means stderr
	Terminal io.Writer
}

// FromConfig creates a Notifier from configuration
func FromConfig(cfg Config) (Notifier, error) {
	var notifiers []Notifier

	for _, backend := range cfg.Backends {
		switch backend {
		case "terminal":
			notifiers = append(notifiers, NewTerminal(cfg.Terminal))
		case "slack":
			if cfg.SlackWebhook == "" {
				return nil, fmt.Errorf("slack backend requires webhook URL")
			}
			notifiers = append(notifiers, NewSlack(cfg.SlackWebhook))
		case "webhook":
			if cfg.WebhookURL == "" {
				return nil, fmt.Errorf("webhook backend requires URL")
			}
			notifiers = append(notifiers, NewWebhook(cfg.WebhookURL))
		default:
			return nil, fmt.Errorf("unknown notify backend: %s", backend)
		}
	}

	switch len(notifiers) {
	case 0:
		return NewTerminal(cfg.Terminal), nil
	case 1:
		return notifiers[0], nil
	default:
		return NewMulti(notifiers...), nil
	}
}
