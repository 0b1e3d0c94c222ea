// Package notify delivers operator alerts for engine incidents (failed
// settlements, archive errors) to external channels. Alerts carry the track
// and period they concern; each registered sender renders them for its
// channel, and an event-type filter lets operators mute noise per deploy.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Alert is one operator notification.
type Alert struct {
	Event    string // machine event type, e.g. "settlement_failed"
	Title    string
	Detail   string
	Track    string // period key string, empty when not period-scoped
	PeriodID string
}

// Sender delivers alerts over one channel.
type Sender interface {
	Send(ctx context.Context, alert Alert) error
	// Name identifies the channel in logs, e.g. "telegram".
	Name() string
}

// Notifier fans an alert out to every registered sender. When an allow-list
// of event types is configured, alerts outside it are dropped; an empty list
// allows everything.
type Notifier struct {
	senders []Sender
	allowed map[string]bool
	logger  *slog.Logger
}

// NewNotifier creates a Notifier delivering to senders, filtered to the
// given event types (nil or empty allows all).
func NewNotifier(senders []Sender, events []string, logger *slog.Logger) *Notifier {
	allowed := make(map[string]bool, len(events))
	for _, e := range events {
		if e = strings.TrimSpace(e); e != "" {
			allowed[e] = true
		}
	}
	return &Notifier{
		senders: senders,
		allowed: allowed,
		logger:  logger.With(slog.String("component", "notifier")),
	}
}

// Notify delivers the alert to every sender whose filter admits it. Sender
// failures are collected so one dead webhook does not block the others.
func (n *Notifier) Notify(ctx context.Context, alert Alert) error {
	if len(n.allowed) > 0 && !n.allowed[alert.Event] {
		n.logger.DebugContext(ctx, "alert filtered out", slog.String("event", alert.Event))
		return nil
	}
	if len(n.senders) == 0 {
		return nil
	}

	var failed []string
	for _, s := range n.senders {
		if err := s.Send(ctx, alert); err != nil {
			n.logger.ErrorContext(ctx, "alert delivery failed",
				slog.String("sender", s.Name()),
				slog.String("event", alert.Event),
				slog.String("error", err.Error()),
			)
			failed = append(failed, fmt.Sprintf("%s: %v", s.Name(), err))
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("notify: %d sender(s) failed: %s", len(failed), strings.Join(failed, "; "))
	}
	return nil
}

// scopeLine renders the track/period suffix shared by all channel formats.
func scopeLine(alert Alert) string {
	switch {
	case alert.Track != "" && alert.PeriodID != "":
		return fmt.Sprintf("\ntrack %s, period %s", alert.Track, alert.PeriodID)
	case alert.Track != "":
		return "\ntrack " + alert.Track
	default:
		return ""
	}
}

// postJSON sends a JSON payload and treats any non-2xx status as an error,
// including a bounded slice of the response body for diagnosis.
func postJSON(ctx context.Context, client *http.Client, channel, url string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%s: marshal payload: %w", channel, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%s: create request: %w", channel, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%s: send request: %w", channel, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("%s: unexpected status %d: %s", channel, resp.StatusCode, string(respBody))
	}
	return nil
}

func defaultClient() *http.Client {
	return &http.Client{Timeout: 10 * time.Second}
}
