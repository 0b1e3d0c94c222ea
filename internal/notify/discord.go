package notify

import (
	"context"
	"fmt"
	"net/http"
)

// DiscordSender delivers alerts via a Discord webhook.
type DiscordSender struct {
	webhookURL string
	client     *http.Client
}

// NewDiscordSender creates a DiscordSender for the given webhook URL.
func NewDiscordSender(webhookURL string) *DiscordSender {
	return &DiscordSender{webhookURL: webhookURL, client: defaultClient()}
}

// Send posts the alert to the webhook, title bold in Discord markdown.
// Discord returns 204 No Content on success.
func (d *DiscordSender) Send(ctx context.Context, alert Alert) error {
	return postJSON(ctx, d.client, "discord", d.webhookURL, map[string]string{
		"content": fmt.Sprintf("**%s**\n%s%s", alert.Title, alert.Detail, scopeLine(alert)),
	})
}

func (d *DiscordSender) Name() string { return "discord" }
