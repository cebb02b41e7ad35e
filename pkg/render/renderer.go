package render

import (
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"strings"
	texttemplate "text/template"

	"github.com/google/uuid"

	"github.com/owlpost/notifykit/pkg/logger"
	"github.com/owlpost/notifykit/pkg/markdown"
	"github.com/owlpost/notifykit/pkg/notification"
	"github.com/owlpost/notifykit/pkg/registry"
	"github.com/owlpost/notifykit/pkg/related"
	"github.com/owlpost/notifykit/pkg/tasks"
	"github.com/owlpost/notifykit/pkg/templates"
)

// TaskEnqueuer schedules the fire-and-forget deletion of unrenderable
// notifications. *tasks.Dispatcher satisfies it.
type TaskEnqueuer interface {
	Enqueue(ctx context.Context, payload any) error
}

// Renderer turns notification records into display-ready messages and email
// subjects.
type Renderer struct {
	registry    *registry.Registry
	related     *related.Cache
	templates   *templates.Resolver
	tasks       TaskEnqueuer
	site        Site
	redirectURL func(id uuid.UUID) string
	logger      *slog.Logger
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithTemplates sets the resolver for external message templates. Required
// when any registered type uses MessageTemplate.
func WithTemplates(resolver *templates.Resolver) Option {
	return func(r *Renderer) { r.templates = resolver }
}

// WithTaskEnqueuer sets the dispatcher receiving DeleteNotification tasks on
// render failure. Without one, failed notifications are only logged.
func WithTaskEnqueuer(enqueuer TaskEnqueuer) Option {
	return func(r *Renderer) { r.tasks = enqueuer }
}

// WithSite sets the site metadata exposed to templates and used to build
// absolute links.
func WithSite(site Site) Option {
	return func(r *Renderer) { r.site = site }
}

// WithReadRedirectURL overrides how the email fallback target link is built
// from a notification id.
func WithReadRedirectURL(fn func(id uuid.UUID) string) Option {
	return func(r *Renderer) {
		if fn != nil {
			r.redirectURL = fn
		}
	}
}

// WithLogger sets the logger for render failures.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New creates a renderer over the given registry and related-object cache.
func New(reg *registry.Registry, rel *related.Cache, opts ...Option) *Renderer {
	r := &Renderer{
		registry: reg,
		related:  rel,
		site:     Site{Name: "example", Domain: "example.com"},
		logger:   slog.Default(),
	}
	r.redirectURL = func(id uuid.UUID) string {
		return fmt.Sprintf("https://%s/notifications/%s/read-redirect/", r.site.Domain, id)
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Message renders the notification's message body as sanitized markup.
//
// Untyped notifications (empty Type) return their description without
// markdown processing, HTML-escaped because the return type promises safe
// markup. For typed notifications the
// message source comes from the type configuration: the inline template
// string when present, the external template otherwise.
func (r *Renderer) Message(ctx context.Context, n *notification.Notification, forEmail bool) (template.HTML, error) {
	if n.Type == "" {
		return template.HTML(template.HTMLEscapeString(n.Description)), nil
	}

	cfg, err := r.registry.Get(n.Type)
	if err != nil {
		return "", err
	}

	tc, err := r.buildContext(ctx, n, forEmail)
	if err != nil {
		return "", err
	}

	var text string
	if cfg.Message != "" {
		text, err = r.renderInline("message", cfg.Message, tc)
	} else {
		text, err = r.renderExternal(cfg.MessageTemplate, tc)
	}
	if err != nil {
		return "", r.failRender(ctx, n, err)
	}

	html, err := markdown.Render(text)
	if err != nil {
		return "", r.failRender(ctx, n, err)
	}
	return html, nil
}

// EmailSubject renders the notification's email subject line.
//
// Untyped notifications prefer an explicit data["email_subject"] value and
// fall back to the raw description; subjects are plain text, so the HTML
// escaping Message applies would corrupt them. Typed notifications format
// the type's EmailSubject template with {Site, Notification, <data keys>}.
func (r *Renderer) EmailSubject(ctx context.Context, n *notification.Notification) (string, error) {
	if n.Type == "" {
		if subject, ok := n.DataEmailSubject(); ok {
			return subject, nil
		}
		return n.Description, nil
	}

	cfg, err := r.registry.Get(n.Type)
	if err != nil {
		return "", err
	}

	tc, err := r.buildContext(ctx, n, true)
	if err != nil {
		return "", err
	}

	subject, err := r.renderInline("email_subject", cfg.EmailSubject, tc)
	if err != nil {
		return "", r.failRender(ctx, n, err)
	}
	return subject, nil
}

func (r *Renderer) renderInline(name, src string, tc map[string]any) (string, error) {
	tmpl, err := texttemplate.New(name).Option("missingkey=error").Parse(src)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	if err := tmpl.Execute(&sb, tc); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func (r *Renderer) renderExternal(name string, tc map[string]any) (string, error) {
	if r.templates == nil {
		return "", fmt.Errorf("no template resolver configured for %q", name)
	}
	tmpl, err := r.templates.Resolve(name)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	if err := tmpl.Execute(&sb, tc); err != nil {
		return "", err
	}
	return strings.TrimSpace(sb.String()), nil
}

// failRender applies the fail-fast-and-discard policy: log, schedule the
// asynchronous deletion of the notification, and wrap the error so callers
// can recognize the class. The enqueue must never block the failure return.
func (r *Renderer) failRender(ctx context.Context, n *notification.Notification, cause error) error {
	r.logger.LogAttrs(ctx, slog.LevelError, "Failed to render notification",
		logger.NotificationID(n.ID.String()),
		logger.NotificationType(n.Type),
		logger.Error(cause),
	)

	if r.tasks != nil {
		if err := r.tasks.Enqueue(ctx, tasks.DeleteNotification{ID: n.ID}); err != nil {
			r.logger.LogAttrs(ctx, slog.LevelWarn, "Failed to schedule notification deletion",
				logger.NotificationID(n.ID.String()),
				logger.Error(err),
			)
		}
	}

	return fmt.Errorf("%w: %v", ErrRenderFailed, cause)
}
