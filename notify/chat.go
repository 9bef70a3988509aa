package notify

import (
	"context"
	"sort"

	"github.com/slack-go/slack"

	"sitecrew/apperr"
	"sitecrew/config"
)

// Chat posts to an incoming webhook.
type Chat struct {
	url     string
	channel string
}

func NewChat(env config.ChatEnv) *Chat {
	return &Chat{url: env.WebhookURL, channel: env.Channel}
}

func (c *Chat) Notify(ctx context.Context, msg Message) error {
	keys := make([]string, 0, len(msg.Data))
	for k := range msg.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make([]slack.AttachmentField, 0, len(keys))
	for _, k := range keys {
		fields = append(fields, slack.AttachmentField{Title: k, Value: msg.Data[k], Short: true})
	}

	wm := &slack.WebhookMessage{
		Channel: c.channel,
		Text:    "*" + msg.Title + "*\n" + msg.Body,
	}
	if len(fields) > 0 {
		wm.Attachments = []slack.Attachment{{Fields: fields}}
	}
	if err := slack.PostWebhookContext(ctx, c.url, wm); err != nil {
		return apperr.New(apperr.Notification, "chat webhook failed", err)
	}
	return nil
}
