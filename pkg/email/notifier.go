package email

import (
	"context"
	"log/slog"

	"github.com/owlpost/notifykit/pkg/logger"
	"github.com/owlpost/notifykit/pkg/notification"
	"github.com/owlpost/notifykit/pkg/registry"
	"github.com/owlpost/notifykit/pkg/render"
	"github.com/owlpost/notifykit/pkg/settings"
)

// Notifier delivers notifications over email, honoring the recipient's
// delivery settings and the type's channel defaults.
type Notifier struct {
	renderer *render.Renderer
	sender   EmailSender
	registry *registry.Registry
	logger   *slog.Logger
}

// NotifierOption configures a Notifier.
type NotifierOption func(*Notifier)

// WithNotifierLogger sets the logger for delivery decisions and failures.
func WithNotifierLogger(logger *slog.Logger) NotifierOption {
	return func(n *Notifier) {
		if logger != nil {
			n.logger = logger
		}
	}
}

// NewNotifier creates an email notifier over the given renderer and sender.
func NewNotifier(renderer *render.Renderer, sender EmailSender, reg *registry.Registry, opts ...NotifierOption) *Notifier {
	n := &Notifier{
		renderer: renderer,
		sender:   sender,
		registry: reg,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Notify renders and sends notif to recipientEmail. Delivery is skipped
// silently when the recipient's effective email preference is off. A nil
// setting means no per-user override exists and the type defaults apply.
func (d *Notifier) Notify(ctx context.Context, notif *notification.Notification, recipientEmail string, setting *settings.Setting) error {
	enabled, err := d.emailEnabled(notif.Type, setting)
	if err != nil {
		return err
	}
	if !enabled {
		d.logger.LogAttrs(ctx, slog.LevelDebug, "Email delivery disabled, skipping",
			logger.NotificationID(notif.ID.String()),
			logger.NotificationType(notif.Type),
		)
		return nil
	}

	subject, err := d.renderer.EmailSubject(ctx, notif)
	if err != nil {
		return err
	}
	body, err := d.renderer.Message(ctx, notif, true)
	if err != nil {
		return err
	}

	return d.sender.SendEmail(ctx, SendEmailParams{
		SendTo:   recipientEmail,
		Subject:  subject,
		BodyHTML: string(body),
		Tag:      notif.Type,
	})
}

func (d *Notifier) emailEnabled(typeName string, setting *settings.Setting) (bool, error) {
	if setting != nil {
		return setting.EffectiveEmail(d.registry)
	}
	if typeName == "" {
		return true, nil
	}
	cfg, err := d.registry.Get(typeName)
	if err != nil {
		return false, err
	}
	return cfg.WebEnabled() && cfg.EmailEnabled(), nil
}
