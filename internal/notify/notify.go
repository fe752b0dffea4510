// Package notify delivers digests of upcoming reminders over email,
// DingTalk and Telegram.
package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/notexe/reminder-tracker/internal/config"
	"github.com/notexe/reminder-tracker/internal/reminder"
	"github.com/rs/zerolog"
)

var (
	// ErrNotConfigured is returned by a Notifier missing required settings.
	ErrNotConfigured = errors.New("channel not configured")
	// ErrUnknownChannel is returned for channel names no Notifier serves.
	ErrUnknownChannel = errors.New("unknown channel")
)

// Notifier sends a rendered digest over one channel.
type Notifier interface {
	Name() string
	Send(ctx context.Context, msg Message) error
}

// Lister is the read side of the reminder store.
type Lister interface {
	List(ctx context.Context) ([]reminder.Reminder, error)
}

// Delivery outcomes.
const (
	StatusSent    = "sent"
	StatusSkipped = "skipped"
	StatusFailed  = "failed"
)

// Outcome is the result of one channel.
type Outcome struct {
	Channel string `json:"channel"`
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`
}

// Report summarizes one check.
type Report struct {
	Today   string    `json:"today"`
	Count   int       `json:"count"`
	Names   []string  `json:"names"`
	Results []Outcome `json:"results"`
}

// Gate finds upcoming reminders and fans the digest out to notifiers.
// Delivery failures are reported per channel and never fail the check.
type Gate struct {
	store     Lister
	renderer  *Renderer
	notifiers map[string]Notifier
	defaults  []string
	log       zerolog.Logger
}

// NewGate creates a gate. defaults names the channels used when a check
// does not ask for one; every name must belong to one of notifiers.
func NewGate(store Lister, renderer *Renderer, defaults []string, log zerolog.Logger, notifiers ...Notifier) (*Gate, error) {
	g := &Gate{
		store:     store,
		renderer:  renderer,
		notifiers: make(map[string]Notifier, len(notifiers)),
		log:       log.With().Str("component", "notify").Logger(),
	}
	for _, n := range notifiers {
		g.notifiers[n.Name()] = n
	}
	for _, name := range defaults {
		if _, ok := g.notifiers[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownChannel, name)
		}
	}
	g.defaults = append([]string(nil), defaults...)
	return g, nil
}

// Channels returns the default channel names.
func (g *Gate) Channels() []string {
	return append([]string(nil), g.defaults...)
}

// Check lists the store and sends the digest of reminders upcoming on
// today. An empty channel means the default channels. Nothing is sent when
// no reminder is upcoming.
func (g *Gate) Check(ctx context.Context, today reminder.Date, channel string) (Report, error) {
	channels := g.defaults
	if channel != "" {
		if _, ok := g.notifiers[channel]; !ok {
			return Report{}, fmt.Errorf("%w: %s", ErrUnknownChannel, channel)
		}
		channels = []string{channel}
	}

	rs, err := g.store.List(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("failed to list reminders: %w", err)
	}

	digest := BuildDigest(rs, today)
	report := Report{
		Today:   today.String(),
		Count:   len(digest.Items),
		Names:   reminder.UpcomingNames(rs, today),
		Results: []Outcome{},
	}
	if report.Count == 0 {
		g.log.Info().Str("today", report.Today).Msg("no upcoming reminders")
		return report, nil
	}

	msg, err := g.renderer.Render(digest)
	if err != nil {
		return Report{}, err
	}

	g.log.Info().Int("count", report.Count).Strs("channels", channels).Msg("sending reminder digest")
	for _, name := range channels {
		report.Results = append(report.Results, g.deliver(ctx, g.notifiers[name], msg))
	}
	return report, nil
}

func (g *Gate) deliver(ctx context.Context, n Notifier, msg Message) Outcome {
	out := Outcome{Channel: n.Name()}
	err := n.Send(ctx, msg)
	switch {
	case err == nil:
		out.Status = StatusSent
		g.log.Info().Str("channel", out.Channel).Msg("digest sent")
	case errors.Is(err, ErrNotConfigured):
		out.Status = StatusSkipped
		out.Error = err.Error()
		g.log.Warn().Err(err).Str("channel", out.Channel).Msg("channel skipped")
	default:
		out.Status = StatusFailed
		out.Error = err.Error()
		g.log.Error().Stack().Err(err).Str("channel", out.Channel).Msg("failed to send digest")
	}
	return out
}

// FromConfig builds the renderer and every notifier from cfg and returns a
// gate whose defaults are cfg.Channels.
func FromConfig(cfg config.NotifyConfig, store Lister, log zerolog.Logger) (*Gate, error) {
	renderer, err := NewRenderer(cfg.Subject, cfg.Templates.Text, cfg.Templates.Markdown)
	if err != nil {
		return nil, err
	}
	return NewGate(store, renderer, cfg.Channels, log,
		NewEmail(cfg.Email),
		NewDingTalk(cfg.DingTalk),
		NewTelegram(cfg.Telegram),
	)
}
