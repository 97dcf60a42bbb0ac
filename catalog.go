package variants

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-variants/pkg/activity"
	"github.com/google/uuid"
)

var (
	// ErrUnknownVariant is returned when a catalog lookup names nothing registered.
	ErrUnknownVariant = errors.New("variants: unknown variant")
	// ErrVariantExists is returned by Register when the name is taken.
	ErrVariantExists = errors.New("variants: variant already registered")
	// ErrVariantNameRequired is returned when neither the name argument nor
	// Definition.Name is set.
	ErrVariantNameRequired = errors.New("variants: variant name must be provided")
)

// CatalogOption configures a Catalog.
type CatalogOption func(*catalogConfig)

type catalogConfig struct {
	hooks    activity.Hooks
	activity activity.Config
	strict   bool
	resolver []Option
	now      func() time.Time
	newID    func() string
}

// WithCatalogHooks sets hooks notified for every catalog change.
func WithCatalogHooks(hooks activity.Hooks) CatalogOption {
	normalized := hooks.Clone()
	return func(cfg *catalogConfig) {
		cfg.hooks = normalized
	}
}

// WithCatalogActivity overrides the emitter defaults (channel, actor, tenant).
// Enabled is forced on whenever hooks are present.
func WithCatalogActivity(config activity.Config) CatalogOption {
	return func(cfg *catalogConfig) {
		cfg.activity = config
	}
}

// WithStrictRegistration makes Register and Replace reject definitions that
// fail Validate.
func WithStrictRegistration() CatalogOption {
	return func(cfg *catalogConfig) {
		cfg.strict = true
	}
}

// WithCatalogResolverOptions applies opts to every resolver the catalog
// builds, before any per-call options.
func WithCatalogResolverOptions(opts ...Option) CatalogOption {
	return func(cfg *catalogConfig) {
		cfg.resolver = append(cfg.resolver, opts...)
	}
}

// WithCatalogClock replaces time.Now for event timestamps.
func WithCatalogClock(now func() time.Time) CatalogOption {
	return func(cfg *catalogConfig) {
		if now != nil {
			cfg.now = now
		}
	}
}

// WithRegistrationIDs replaces the UUID generator used for registration IDs.
func WithRegistrationIDs(next func() string) CatalogOption {
	return func(cfg *catalogConfig) {
		if next != nil {
			cfg.newID = next
		}
	}
}

// Registration is a catalog entry.
type Registration struct {
	ID           string
	Name         string
	Resolver     *Resolver
	RegisteredAt time.Time
}

// Catalog is a concurrency safe registry of named resolvers, for example one
// per UI component.
type Catalog struct {
	mu      sync.RWMutex
	entries map[string]Registration
	cfg     catalogConfig
	emitter *activity.Emitter
}

// NewCatalog returns an empty catalog.
func NewCatalog(opts ...CatalogOption) *Catalog {
	cfg := catalogConfig{
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	emitterCfg := cfg.activity
	emitterCfg.Enabled = true
	return &Catalog{
		entries: map[string]Registration{},
		cfg:     cfg,
		emitter: activity.NewEmitter(cfg.hooks, emitterCfg),
	}
}

// Register builds a resolver for def and stores it under name, or under
// def.Name when name is empty. It returns the registration ID. Hook failures
// are returned after the entry is stored.
func (c *Catalog) Register(ctx context.Context, name string, def Definition, opts ...Option) (string, error) {
	name, resolver, err := c.build(name, def, opts)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	if _, exists := c.entries[name]; exists {
		c.mu.Unlock()
		return "", fmt.Errorf("%w: %s", ErrVariantExists, name)
	}
	entry := c.store(name, resolver)
	c.mu.Unlock()

	return entry.ID, c.emit(ctx, resolver, activity.BuildRegisteredEvent(activity.VariantEventInput{
		Name:           name,
		RegistrationID: entry.ID,
		Summary:        resolver.summarize(),
		OccurredAt:     entry.RegisteredAt,
	}))
}

// Replace swaps the resolver stored under name. The name must already be
// registered.
func (c *Catalog) Replace(ctx context.Context, name string, def Definition, opts ...Option) (string, error) {
	name, resolver, err := c.build(name, def, opts)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	previous, exists := c.entries[name]
	if !exists {
		c.mu.Unlock()
		return "", fmt.Errorf("%w: %s", ErrUnknownVariant, name)
	}
	entry := c.store(name, resolver)
	c.mu.Unlock()

	err = c.emit(ctx, resolver, activity.BuildReplacedEvent(activity.VariantEventInput{
		Name:           name,
		RegistrationID: entry.ID,
		PreviousID:     previous.ID,
		Summary:        resolver.summarize(),
		OccurredAt:     entry.RegisteredAt,
	}))
	return entry.ID, err
}

// Remove deletes name from the catalog.
func (c *Catalog) Remove(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	c.mu.Lock()
	previous, exists := c.entries[name]
	if !exists {
		c.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownVariant, name)
	}
	delete(c.entries, name)
	c.mu.Unlock()

	return c.emit(ctx, previous.Resolver, activity.BuildRemovedEvent(activity.VariantEventInput{
		Name:       name,
		PreviousID: previous.ID,
		OccurredAt: c.cfg.now(),
	}))
}

// Get returns the registration stored under name.
func (c *Catalog) Get(name string) (Registration, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[strings.TrimSpace(name)]
	return entry, ok
}

// Resolver returns the resolver stored under name.
func (c *Catalog) Resolver(name string) (*Resolver, error) {
	entry, ok := c.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownVariant, name)
	}
	return entry.Resolver, nil
}

// Resolve resolves sel with the resolver stored under name.
func (c *Catalog) Resolve(name string, sel Selection) (string, error) {
	r, err := c.Resolver(name)
	if err != nil {
		return "", err
	}
	return r.Resolve(sel), nil
}

// Names lists registered names in lexical order.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return sortedKeys(c.entries)
}

// Len returns the number of registrations.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Catalog) build(name string, def Definition, opts []Option) (string, *Resolver, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = strings.TrimSpace(def.Name)
	}
	if name == "" {
		return "", nil, ErrVariantNameRequired
	}
	if def.Name == "" {
		def.Name = name
	}
	all := make([]Option, 0, len(c.cfg.resolver)+len(opts))
	all = append(all, c.cfg.resolver...)
	all = append(all, opts...)
	resolver := New(def, all...)
	if c.cfg.strict {
		if err := resolver.Validate(); err != nil {
			return "", nil, fmt.Errorf("variants: register %s: %w", name, err)
		}
	}
	return name, resolver, nil
}

// store must be called with c.mu held.
func (c *Catalog) store(name string, resolver *Resolver) Registration {
	entry := Registration{
		ID:           c.cfg.newID(),
		Name:         name,
		Resolver:     resolver,
		RegisteredAt: c.cfg.now(),
	}
	c.entries[name] = entry
	return entry
}

// emit notifies catalog hooks and then the resolver's own hooks.
func (c *Catalog) emit(ctx context.Context, r *Resolver, event activity.Event) error {
	var errs []error
	if err := c.emitter.Emit(ctx, event); err != nil {
		errs = append(errs, err)
	}
	if hooks := r.ActivityHooks(); hooks.Enabled() {
		if event.Channel == "" {
			event.Channel = c.emitter.Channel()
		}
		if err := hooks.Notify(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("variants: activity hook: %w", err)
	}
	return nil
}
