package notifykit

import (
	"context"
	"errors"
	"html/template"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/owlpost/notifykit/pkg/cache"
	"github.com/owlpost/notifykit/pkg/email"
	"github.com/owlpost/notifykit/pkg/logger"
	"github.com/owlpost/notifykit/pkg/notification"
	"github.com/owlpost/notifykit/pkg/registry"
	"github.com/owlpost/notifykit/pkg/related"
	"github.com/owlpost/notifykit/pkg/render"
	"github.com/owlpost/notifykit/pkg/settings"
	"github.com/owlpost/notifykit/pkg/tasks"
)

// RecipientLookup resolves per-recipient delivery details for email sending.
type RecipientLookup interface {
	// Email returns the recipient's email address.
	Email(ctx context.Context, userID string) (string, error)

	// Setting returns the recipient's delivery override for the type, or
	// nil when none exists and the type defaults apply.
	Setting(ctx context.Context, userID, typeName string) (*settings.Setting, error)
}

// Service is the high-level entry point tying together the type registry,
// notification storage, the related-object cache, rendering and task
// dispatch. Zero-value options give a fully in-memory service suitable for
// development and tests.
type Service struct {
	registry   *registry.Registry
	storage    notification.Storage
	store      cache.Store
	resolver   *related.Resolver
	related    *related.Cache
	renderer   *render.Renderer
	dispatcher *tasks.Dispatcher
	ignores    settings.IgnoreRuleStorage
	sender     email.EmailSender
	emailer    *email.Notifier
	recipients RecipientLookup
	logger     *slog.Logger

	renderOpts []render.Option
}

// Option configures a Service.
type Option func(*Service)

// WithRegistry uses a pre-populated type registry instead of a fresh one.
func WithRegistry(reg *registry.Registry) Option {
	return func(s *Service) {
		if reg != nil {
			s.registry = reg
		}
	}
}

// WithStorage sets the notification storage backend. Defaults to in-memory.
func WithStorage(storage notification.Storage) Option {
	return func(s *Service) {
		if storage != nil {
			s.storage = storage
		}
	}
}

// WithCacheStore sets the cache backend for related objects and unread
// counts. Defaults to in-memory.
func WithCacheStore(store cache.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithResolver sets the related-object resolver used to load actors, action
// objects and targets on cache misses.
func WithResolver(resolver *related.Resolver) Option {
	return func(s *Service) {
		if resolver != nil {
			s.resolver = resolver
		}
	}
}

// WithIgnoreRules enables per-user object ignore rules; Send drops
// notifications whose target the recipient currently ignores.
func WithIgnoreRules(storage settings.IgnoreRuleStorage) Option {
	return func(s *Service) { s.ignores = storage }
}

// WithEmailDelivery enables email delivery on Send. The lookup provides the
// recipient address and delivery settings.
func WithEmailDelivery(sender email.EmailSender, lookup RecipientLookup) Option {
	return func(s *Service) {
		s.sender = sender
		s.recipients = lookup
	}
}

// WithRenderOptions passes options through to the underlying renderer, e.g.
// render.WithSite or render.WithTemplates.
func WithRenderOptions(opts ...render.Option) Option {
	return func(s *Service) { s.renderOpts = append(s.renderOpts, opts...) }
}

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New assembles a Service. Components not overridden by options run on
// in-memory defaults.
func New(opts ...Option) *Service {
	s := &Service{
		registry: registry.New(),
		storage:  notification.NewMemoryStorage(),
		store:    cache.NewMemoryStore(),
		resolver: related.NewResolver(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	// The cache is assembled only after every option has been applied, so the
	// resolver and the store pair up regardless of option order.
	s.related = related.NewCache(s.store, s.resolver)

	s.dispatcher = tasks.NewDispatcher()
	s.dispatcher.RegisterHandler(tasks.NewDeleteNotificationHandler(s.storage, s.related))

	renderOpts := append([]render.Option{
		render.WithTaskEnqueuer(s.dispatcher),
		render.WithLogger(s.logger),
	}, s.renderOpts...)
	s.renderer = render.New(s.registry, s.related, renderOpts...)

	if s.sender != nil {
		s.emailer = email.NewNotifier(s.renderer, s.sender, s.registry,
			email.WithNotifierLogger(s.logger))
	}

	return s
}

// Registry exposes the type registry for registering notification types.
func (s *Service) Registry() *registry.Registry { return s.registry }

// Renderer exposes the message renderer, e.g. for transports built outside
// this package.
func (s *Service) Renderer() *render.Renderer { return s.renderer }

// Dispatcher exposes the background task dispatcher.
func (s *Service) Dispatcher() *tasks.Dispatcher { return s.dispatcher }

// Send stores a notification and invalidates the recipient's unread count.
// Missing fields are filled in: a fresh id, the current timestamp, unread
// state, and the type's default level and verb. When ignore rules are
// configured and the recipient ignores the notification's target, the
// notification is silently dropped and uuid.Nil is returned.
//
// When email delivery is configured, the email is sent after the store
// succeeds; an email failure is logged but does not fail the send.
func (s *Service) Send(ctx context.Context, n notification.Notification) (uuid.UUID, error) {
	if n.RecipientID == "" {
		return uuid.Nil, notification.ErrMissingRecipient
	}

	if n.Type != "" {
		cfg, err := s.registry.Get(n.Type)
		if err != nil {
			return uuid.Nil, err
		}
		if n.Level == "" {
			n.Level = string(cfg.Level)
		}
		if n.Verb == "" {
			n.Verb = cfg.Verb
		}
		if !cfg.WebEnabled() {
			return uuid.Nil, nil
		}
	}

	if s.ignores != nil && !n.Target.IsZero() {
		ignored, err := s.ignores.Ignored(ctx, n.RecipientID, n.Target)
		if err != nil {
			return uuid.Nil, err
		}
		if ignored {
			return uuid.Nil, nil
		}
	}

	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.Timestamp.IsZero() {
		n.Timestamp = time.Now()
	}
	n.Unread = true

	if err := s.storage.Create(ctx, n); err != nil {
		return uuid.Nil, err
	}
	if err := s.related.InvalidateUnreadCount(ctx, n.RecipientID); err != nil {
		return uuid.Nil, err
	}

	if s.emailer != nil && s.recipients != nil {
		if err := s.deliverEmail(ctx, &n); err != nil {
			s.logger.LogAttrs(ctx, slog.LevelError, "Failed to deliver notification email",
				logger.NotificationID(n.ID.String()),
				logger.UserID(n.RecipientID),
				logger.Error(err),
			)
		}
	}

	return n.ID, nil
}

func (s *Service) deliverEmail(ctx context.Context, n *notification.Notification) error {
	addr, err := s.recipients.Email(ctx, n.RecipientID)
	if err != nil {
		return err
	}
	setting, err := s.recipients.Setting(ctx, n.RecipientID, n.Type)
	if err != nil {
		return err
	}
	return s.emailer.Notify(ctx, n, addr, setting)
}

// Get retrieves a single notification by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*notification.Notification, error) {
	return s.storage.Get(ctx, id)
}

// List returns the recipient's notifications, newest first.
func (s *Service) List(ctx context.Context, recipientID string, opts notification.ListOptions) ([]notification.Notification, error) {
	return s.storage.List(ctx, recipientID, opts)
}

// MarkRead marks the given notifications as read and invalidates the
// recipient's unread count.
func (s *Service) MarkRead(ctx context.Context, recipientID string, ids ...uuid.UUID) error {
	if err := s.storage.MarkRead(ctx, recipientID, ids...); err != nil {
		return err
	}
	return s.related.InvalidateUnreadCount(ctx, recipientID)
}

// MarkAllRead marks every unread notification of the recipient as read and
// invalidates the unread count.
func (s *Service) MarkAllRead(ctx context.Context, recipientID string) error {
	if err := s.storage.MarkAllRead(ctx, recipientID); err != nil {
		return err
	}
	return s.related.InvalidateUnreadCount(ctx, recipientID)
}

// Delete removes a notification and invalidates its recipient's unread
// count. Deleting an already-deleted notification is not an error.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	n, err := s.storage.Get(ctx, id)
	if err != nil {
		if errors.Is(err, notification.ErrNotFound) {
			return nil
		}
		return err
	}
	if err := s.storage.Delete(ctx, id); err != nil {
		return err
	}
	return s.related.InvalidateUnreadCount(ctx, n.RecipientID)
}

// UnreadCount returns the recipient's unread count, served from the cache
// and recomputed from storage on a miss.
func (s *Service) UnreadCount(ctx context.Context, recipientID string) (int, error) {
	return s.related.UnreadCount(ctx, recipientID, func(ctx context.Context) (int, error) {
		return s.storage.CountUnread(ctx, recipientID)
	})
}

// RenderMessage renders the notification's message for in-app display.
func (s *Service) RenderMessage(ctx context.Context, n *notification.Notification) (template.HTML, error) {
	return s.renderer.Message(ctx, n, false)
}

// RenderEmailSubject renders the notification's email subject line.
func (s *Service) RenderEmailSubject(ctx context.Context, n *notification.Notification) (string, error) {
	return s.renderer.EmailSubject(ctx, n)
}
