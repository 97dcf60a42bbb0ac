package activity

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Event is one catalog activity occurrence. Identifiers stay strings so
// callers are not tied to a particular UUID type.
type Event struct {
	Verb           string
	ActorID        string
	UserID         string
	TenantID       string
	ObjectType     string
	ObjectID       string
	Channel        string
	DefinitionCode string
	Recipients     []string
	Metadata       map[string]any
	OccurredAt     time.Time
}

// Complete reports whether the event carries the fields every hook needs.
func (e Event) Complete() bool {
	return e.Verb != "" && e.ObjectType != "" && e.ObjectID != ""
}

// ActivityHook receives normalized events.
type ActivityHook interface {
	Notify(ctx context.Context, event Event) error
}

// HookFunc adapts a plain function to ActivityHook.
type HookFunc func(ctx context.Context, event Event) error

// Notify calls fn.
func (fn HookFunc) Notify(ctx context.Context, event Event) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, event)
}

// Hooks is an ordered fan-out of ActivityHook values.
type Hooks []ActivityHook

// Enabled reports whether there is at least one hook.
func (h Hooks) Enabled() bool {
	return len(h) > 0
}

// Clone copies the slice and drops nil hooks. It returns nil when nothing
// remains.
func (h Hooks) Clone() Hooks {
	if len(h) == 0 {
		return nil
	}
	out := make(Hooks, 0, len(h))
	for _, hook := range h {
		if hook != nil {
			out = append(out, hook)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Notify normalizes event and delivers it to every hook. Incomplete events
// are dropped silently. Hook failures do not stop delivery; they are joined.
func (h Hooks) Notify(ctx context.Context, event Event) error {
	if len(h) == 0 {
		return nil
	}
	normalized := NormalizeEvent(event)
	if !normalized.Complete() {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var errs []error
	for _, hook := range h {
		if hook == nil {
			continue
		}
		if err := hook.Notify(ctx, normalized); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NormalizeEvent trims identifiers, copies metadata and recipients, and
// stamps OccurredAt when it is zero.
func NormalizeEvent(event Event) Event {
	out := event
	for _, field := range []*string{
		&out.Verb, &out.ActorID, &out.UserID, &out.TenantID,
		&out.ObjectType, &out.ObjectID, &out.Channel, &out.DefinitionCode,
	} {
		*field = strings.TrimSpace(*field)
	}
	out.Metadata = cloneMap(event.Metadata)
	out.Recipients = nil
	if len(event.Recipients) > 0 {
		out.Recipients = append([]string{}, event.Recipients...)
	}
	if out.OccurredAt.IsZero() {
		out.OccurredAt = time.Now()
	}
	return out
}

func cloneMap(src map[string]any) map[string]any {
	if len(src) == 0 {
		return nil
	}
	dst := make(map[string]any, len(src))
	for key, value := range src {
		dst[key] = value
	}
	return dst
}
