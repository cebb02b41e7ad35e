package email_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/owlpost/notifykit/pkg/cache"
	"github.com/owlpost/notifykit/pkg/email"
	"github.com/owlpost/notifykit/pkg/notification"
	"github.com/owlpost/notifykit/pkg/registry"
	"github.com/owlpost/notifykit/pkg/related"
	"github.com/owlpost/notifykit/pkg/render"
	"github.com/owlpost/notifykit/pkg/settings"
)

type recordingSender struct {
	mu   sync.Mutex
	sent []email.SendEmailParams
}

func (s *recordingSender) SendEmail(_ context.Context, params email.SendEmailParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, params)
	return nil
}

func (s *recordingSender) all() []email.SendEmailParams {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]email.SendEmailParams(nil), s.sent...)
}

func boolPtr(v bool) *bool { return &v }

func newTestNotifier(t *testing.T, reg *registry.Registry) (*email.Notifier, *recordingSender) {
	t.Helper()

	relCache := related.NewCache(cache.NewMemoryStore(), related.NewResolver())
	renderer := render.New(reg, relCache,
		render.WithSite(render.Site{Name: "OpenWISP", Domain: "wisp.example.com"}),
	)
	sender := &recordingSender{}
	return email.NewNotifier(renderer, sender, reg), sender
}

func newEmailNotif(typ string) *notification.Notification {
	return &notification.Notification{
		ID:          uuid.New(),
		RecipientID: "u1",
		Type:        typ,
		Verb:        "pinged",
		Timestamp:   time.Now(),
	}
}

func TestNotifier_Notify(t *testing.T) {
	ctx := context.Background()

	t.Run("sends rendered subject and body", func(t *testing.T) {
		reg := registry.New()
		require.NoError(t, reg.Register("ping", registry.Config{
			Level:        registry.LevelInfo,
			Verb:         "pinged",
			EmailSubject: "[{{.Site.Name}}] {{.Notification.Verb}}",
			Message:      "host was {{.Notification.Verb}}",
		}))
		notifier, sender := newTestNotifier(t, reg)

		n := newEmailNotif("ping")
		require.NoError(t, notifier.Notify(ctx, n, "user@example.com", nil))

		sent := sender.all()
		require.Len(t, sent, 1)
		assert.Equal(t, "user@example.com", sent[0].SendTo)
		assert.Equal(t, "[OpenWISP] pinged", sent[0].Subject)
		assert.Contains(t, sent[0].BodyHTML, "host was pinged")
		assert.Equal(t, "ping", sent[0].Tag)
	})

	t.Run("type default disables email", func(t *testing.T) {
		reg := registry.New()
		require.NoError(t, reg.Register("silent", registry.Config{
			Level:             registry.LevelInfo,
			Verb:              "pinged",
			EmailSubject:      "s",
			Message:           "m",
			EmailNotification: boolPtr(false),
		}))
		notifier, sender := newTestNotifier(t, reg)

		require.NoError(t, notifier.Notify(ctx, newEmailNotif("silent"), "user@example.com", nil))
		assert.Empty(t, sender.all())
	})

	t.Run("user setting overrides type default", func(t *testing.T) {
		reg := registry.New()
		require.NoError(t, reg.Register("ping", registry.Config{
			Level:        registry.LevelInfo,
			Verb:         "pinged",
			EmailSubject: "s",
			Message:      "m",
		}))
		notifier, sender := newTestNotifier(t, reg)

		setting := &settings.Setting{
			UserID: "u1",
			Type:   "ping",
			Email:  boolPtr(false),
		}
		require.NoError(t, notifier.Notify(ctx, newEmailNotif("ping"), "user@example.com", setting))
		assert.Empty(t, sender.all())
	})

	t.Run("web disabled blocks email even when email is on", func(t *testing.T) {
		reg := registry.New()
		require.NoError(t, reg.Register("ping", registry.Config{
			Level:        registry.LevelInfo,
			Verb:         "pinged",
			EmailSubject: "s",
			Message:      "m",
		}))
		notifier, sender := newTestNotifier(t, reg)

		setting := &settings.Setting{
			UserID: "u1",
			Type:   "ping",
			Web:    boolPtr(false),
			Email:  boolPtr(true),
		}
		require.NoError(t, notifier.Notify(ctx, newEmailNotif("ping"), "user@example.com", setting))
		assert.Empty(t, sender.all())
	})

	t.Run("unknown type surfaces the configuration error", func(t *testing.T) {
		reg := registry.New()
		notifier, sender := newTestNotifier(t, reg)

		err := notifier.Notify(ctx, newEmailNotif("ghost"), "user@example.com", nil)
		require.ErrorIs(t, err, registry.ErrNotRegistered)
		assert.Empty(t, sender.all())
	})
}
