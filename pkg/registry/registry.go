package registry

import (
	"fmt"
	"slices"
	"sync"
	"text/template"
)

// DefaultTypeName is the name of the built-in type every registry is seeded with.
const DefaultTypeName = "default"

// TemplateResolver loads named external message templates. The registry uses
// it only to fail fast at registration time; rendering happens elsewhere.
type TemplateResolver interface {
	Resolve(name string) (*template.Template, error)
}

// Registry maps type names to validated configurations and keeps an ordered
// choice list plus the set of model names associated with registered types.
//
// Mutation (Register/Unregister) is expected to happen during process startup
// only; concurrent steady-state reads are safe. The internal lock keeps the
// registry consistent even if that contract is violated, but callers should
// still serialize registration.
type Registry struct {
	mu       sync.RWMutex
	types    map[string]Config
	choices  []Choice
	models   map[string]struct{}
	resolver TemplateResolver
}

// Option configures a Registry.
type Option func(*Registry)

// WithTemplateResolver sets the resolver used to validate external message
// template references. Without one, configs using MessageTemplate are rejected.
func WithTemplateResolver(r TemplateResolver) Option {
	return func(reg *Registry) {
		reg.resolver = r
	}
}

// New creates a registry seeded with the built-in "default" type.
func New(opts ...Option) *Registry {
	reg := &Registry{
		types:  make(map[string]Config),
		models: make(map[string]struct{}),
	}

	for _, opt := range opts {
		opt(reg)
	}

	// The built-in type uses an inline message, so seeding cannot fail
	// regardless of whether a template resolver is configured.
	defaultConfig := Config{
		Level:        LevelInfo,
		Verb:         "default verb",
		VerboseName:  "Default Type",
		EmailSubject: "[{{.Site.Name}}] Default Notification Subject",
		Message: "Default notification with {{.Notification.Verb}} and level {{.Notification.Level}}" +
			" by [{{.Actor}}]({{.ActorLink}})",
	}
	reg.types[DefaultTypeName] = normalize(DefaultTypeName, defaultConfig)
	reg.choices = append(reg.choices, Choice{Name: DefaultTypeName, VerboseName: "Default Type"})

	return reg
}

// Register validates cfg and inserts it under name. Associated model names,
// if any, are unioned into the registry's model set.
//
// Validation happens exactly once, here; a failure leaves the registry
// unchanged. Registered configs are immutable afterwards.
func (r *Registry) Register(name string, cfg Config, models ...string) error {
	if name == "" {
		return ErrEmptyTypeName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.types[name]; exists {
		return fmt.Errorf("%w: %q", ErrAlreadyRegistered, name)
	}

	if err := r.validate(cfg); err != nil {
		return err
	}

	validated := normalize(name, cfg)
	r.types[name] = validated
	r.choices = append(r.choices, Choice{Name: name, VerboseName: validated.VerboseName})
	for _, m := range models {
		r.models[m] = struct{}{}
	}

	return nil
}

// Unregister removes the named type and its choice entry.
func (r *Registry) Unregister(name string) error {
	if name == "" {
		return ErrEmptyTypeName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.types[name]; !exists {
		return fmt.Errorf("%w: %q", ErrNotRegistered, name)
	}
	delete(r.types, name)

	for i, c := range r.choices {
		if c.Name == name {
			r.choices = slices.Delete(r.choices, i, i+1)
			return nil
		}
	}

	// The type map and the choice list are mutated together, so a missing
	// choice entry means the registry state is corrupt.
	return fmt.Errorf("%w: %q", ErrChoiceMissing, name)
}

// Get returns the configuration for the named type.
//
// An empty name means "no type, no configuration constraints" and returns a
// zero Config without error. An unknown non-empty name is a configuration
// error.
func (r *Registry) Get(name string) (Config, error) {
	if name == "" {
		return Config{}, nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	cfg, exists := r.types[name]
	if !exists {
		return Config{}, fmt.Errorf("%w: %q", ErrNotRegistered, name)
	}
	return cfg, nil
}

// Has reports whether the named type is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.types[name]
	return exists
}

// Choices returns the (name, verbose name) pairs of all registered types in
// registration order.
func (r *Registry) Choices() []Choice {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Clone(r.choices)
}

// AssociatedModels returns the sorted set of model names contributed by
// registrants.
func (r *Registry) AssociatedModels() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	models := make([]string, 0, len(r.models))
	for m := range r.models {
		models = append(models, m)
	}
	slices.Sort(models)
	return models
}

// validate enforces the registration-time rules: required fields, at least
// one message source, and a resolvable external template when referenced.
func (r *Registry) validate(cfg Config) error {
	if cfg.Level == "" {
		return fmt.Errorf("%w: level is required", ErrInvalidConfig)
	}
	if cfg.Verb == "" {
		return fmt.Errorf("%w: verb is required", ErrInvalidConfig)
	}
	if cfg.EmailSubject == "" {
		return fmt.Errorf("%w: email_subject is required", ErrInvalidConfig)
	}
	if cfg.Message == "" && cfg.MessageTemplate == "" {
		return fmt.Errorf("%w: one of message or message_template is required", ErrInvalidConfig)
	}

	if cfg.MessageTemplate != "" {
		if r.resolver == nil {
			return fmt.Errorf("%w: %q: no template resolver configured", ErrTemplateUnresolvable, cfg.MessageTemplate)
		}
		if _, err := r.resolver.Resolve(cfg.MessageTemplate); err != nil {
			return fmt.Errorf("%w: %q: %v", ErrTemplateUnresolvable, cfg.MessageTemplate, err)
		}
	}

	return nil
}

// normalize fills presentation and delivery defaults on a validated config.
func normalize(name string, cfg Config) Config {
	if cfg.VerboseName == "" {
		cfg.VerboseName = name
	}
	if cfg.EmailNotification == nil {
		cfg.EmailNotification = ptr(true)
	}
	if cfg.WebNotification == nil {
		cfg.WebNotification = ptr(true)
	}
	return cfg
}

func ptr(b bool) *bool { return &b }
