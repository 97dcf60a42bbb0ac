package activity

import (
	"context"
	"strings"
)

// DefaultChannel is stamped on events that do not name a channel.
const DefaultChannel = "variants"

// Config carries emission defaults. ActorID and TenantID fill events that
// leave them empty, which suits a catalog owned by a single service account.
type Config struct {
	Enabled  bool
	Channel  string
	ActorID  string
	TenantID string
}

// Emitter delivers events to hooks after applying Config defaults.
type Emitter struct {
	hooks Hooks
	cfg   Config
}

// NewEmitter builds an emitter. It is disabled when cfg.Enabled is false or
// there are no usable hooks.
func NewEmitter(hooks Hooks, cfg Config) *Emitter {
	cfg.Channel = strings.TrimSpace(cfg.Channel)
	if cfg.Channel == "" {
		cfg.Channel = DefaultChannel
	}
	hooks = hooks.Clone()
	cfg.Enabled = cfg.Enabled && hooks.Enabled()
	return &Emitter{hooks: hooks, cfg: cfg}
}

// Enabled reports whether Emit will reach any hook.
func (e *Emitter) Enabled() bool {
	return e != nil && e.cfg.Enabled
}

// Channel returns the default channel.
func (e *Emitter) Channel() string {
	if e == nil {
		return DefaultChannel
	}
	return e.cfg.Channel
}

// Emit fills defaults and forwards event to the hooks.
func (e *Emitter) Emit(ctx context.Context, event Event) error {
	if !e.Enabled() {
		return nil
	}
	if strings.TrimSpace(event.Channel) == "" {
		event.Channel = e.cfg.Channel
	}
	if strings.TrimSpace(event.ActorID) == "" {
		event.ActorID = e.cfg.ActorID
	}
	if strings.TrimSpace(event.TenantID) == "" {
		event.TenantID = e.cfg.TenantID
	}
	return e.hooks.Notify(ctx, event)
}
