// Package notify delivers best-effort messages to people: a chat channel,
// FCM devices and Web Push browsers. Callers log failures and move on.
package notify

import (
	"context"

	"github.com/sourcegraph/conc/pool"

	"sitecrew/apperr"
)

// Message is channel-agnostic. Recipients are user ids; Data carries the
// machine-readable ids (task, project, worker) alongside the text.
type Message struct {
	Title      string
	Body       string
	Recipients []string
	Data       map[string]string
}

type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}

// Nop drops every message.
type Nop struct{}

func (Nop) Notify(context.Context, Message) error { return nil }

// Multi sends to every channel concurrently and joins their errors.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, msg Message) error {
	p := pool.New().WithErrors()
	for _, n := range m {
		n := n // per-iteration copy; module targets go 1.21 loop semantics
		p.Go(func() error {
			return n.Notify(ctx, msg)
		})
	}
	if err := p.Wait(); err != nil {
		return apperr.New(apperr.Notification, "notification delivery failed", err)
	}
	return nil
}

// Func adapts a function to Notifier.
type Func func(ctx context.Context, msg Message) error

func (f Func) Notify(ctx context.Context, msg Message) error { return f(ctx, msg) }
