package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	webpush "github.com/SherClockHolmes/webpush-go"
	"go.uber.org/zap"

	"sitecrew/apperr"
	"sitecrew/config"
	"sitecrew/model"
)

type SubscriptionStore interface {
	PushSubscriptionsFor(ctx context.Context, userIDs []string) ([]model.PushSubscription, error)
	DeletePushSubscription(ctx context.Context, endpoint string) error
}

type webPushPayload struct {
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
}

type WebPush struct {
	env    config.WebPushEnv
	subs   SubscriptionStore
	logger *zap.Logger
}

func NewWebPush(env config.WebPushEnv, subs SubscriptionStore, logger *zap.Logger) *WebPush {
	return &WebPush{env: env, subs: subs, logger: logger}
}

func (w *WebPush) Notify(ctx context.Context, msg Message) error {
	if len(msg.Recipients) == 0 {
		return nil
	}
	subs, err := w.subs.PushSubscriptionsFor(ctx, msg.Recipients)
	if err != nil {
		return apperr.New(apperr.Notification, "failed to list push subscriptions", err)
	}
	data, err := json.Marshal(webPushPayload{Title: msg.Title, Body: msg.Body, Data: msg.Data})
	if err != nil {
		return apperr.New(apperr.Notification, "failed to encode push payload", err)
	}

	var errs []error
	for _, sub := range subs {
		if err := w.send(ctx, sub, data); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return apperr.New(apperr.Notification, "web push delivery failed", errors.Join(errs...))
	}
	return nil
}

func (w *WebPush) send(ctx context.Context, sub model.PushSubscription, data []byte) error {
	resp, err := webpush.SendNotificationWithContext(ctx, data, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys:     webpush.Keys{P256dh: sub.P256dhKey, Auth: sub.AuthKey},
	}, &webpush.Options{
		VAPIDPublicKey:  w.env.VAPIDPublicKey,
		VAPIDPrivateKey: w.env.VAPIDPrivateKey,
		Subscriber:      w.env.VAPIDContact,
		TTL:             86400,
	})
	if err != nil {
		return fmt.Errorf("send to %s: %w", sub.Endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusGone {
		w.logger.Info("push subscription expired, removing", zap.String("endpoint", sub.Endpoint))
		if err := w.subs.DeletePushSubscription(ctx, sub.Endpoint); err != nil {
			w.logger.Warn("failed to delete expired push subscription", zap.String("endpoint", sub.Endpoint), zap.Error(err))
		}
		return nil
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("send to %s: unexpected status %d", sub.Endpoint, resp.StatusCode)
	}
	return nil
}
