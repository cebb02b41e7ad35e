package notifykit_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/owlpost/notifykit"
	"github.com/owlpost/notifykit/pkg/cache"
	"github.com/owlpost/notifykit/pkg/email"
	"github.com/owlpost/notifykit/pkg/notification"
	"github.com/owlpost/notifykit/pkg/registry"
	"github.com/owlpost/notifykit/pkg/related"
	"github.com/owlpost/notifykit/pkg/settings"
)

func registerPing(t *testing.T, svc *notifykit.Service) {
	t.Helper()
	require.NoError(t, svc.Registry().Register("ping", registry.Config{
		Level:        registry.LevelInfo,
		Verb:         "pinged",
		EmailSubject: "[{{.Site.Name}}] {{.Notification.Verb}}",
		Message:      "host was {{.Notification.Verb}}",
	}))
}

func TestService_Send(t *testing.T) {
	ctx := context.Background()

	t.Run("fills defaults and stores", func(t *testing.T) {
		svc := notifykit.New()
		registerPing(t, svc)

		id, err := svc.Send(ctx, notification.Notification{
			RecipientID: "u1",
			Type:        "ping",
		})
		require.NoError(t, err)
		require.NotEqual(t, uuid.Nil, id)

		n, err := svc.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "info", n.Level)
		assert.Equal(t, "pinged", n.Verb)
		assert.True(t, n.Unread)
		assert.False(t, n.Timestamp.IsZero())
	})

	t.Run("missing recipient", func(t *testing.T) {
		svc := notifykit.New()
		registerPing(t, svc)

		_, err := svc.Send(ctx, notification.Notification{Type: "ping"})
		require.ErrorIs(t, err, notification.ErrMissingRecipient)
	})

	t.Run("unknown type", func(t *testing.T) {
		svc := notifykit.New()

		_, err := svc.Send(ctx, notification.Notification{RecipientID: "u1", Type: "ghost"})
		require.ErrorIs(t, err, registry.ErrNotRegistered)
	})

	t.Run("web-disabled type is dropped", func(t *testing.T) {
		off := false
		svc := notifykit.New()
		require.NoError(t, svc.Registry().Register("muted", registry.Config{
			Level:           registry.LevelInfo,
			Verb:            "muted",
			EmailSubject:    "s",
			Message:         "m",
			WebNotification: &off,
		}))

		id, err := svc.Send(ctx, notification.Notification{RecipientID: "u1", Type: "muted"})
		require.NoError(t, err)
		assert.Equal(t, uuid.Nil, id)

		list, err := svc.List(ctx, "u1", notification.ListOptions{})
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("ignored target is dropped", func(t *testing.T) {
		ignores := settings.NewMemoryIgnoreRuleStorage()
		svc := notifykit.New(notifykit.WithIgnoreRules(ignores))
		registerPing(t, svc)

		target := related.Reference{ContentType: "device", ObjectID: "7"}
		require.NoError(t, ignores.Create(ctx, settings.IgnoreRule{
			ID:     uuid.New(),
			UserID: "u1",
			Object: target,
		}))

		id, err := svc.Send(ctx, notification.Notification{
			RecipientID: "u1",
			Type:        "ping",
			Target:      target,
		})
		require.NoError(t, err)
		assert.Equal(t, uuid.Nil, id)

		// Another recipient is unaffected.
		id, err = svc.Send(ctx, notification.Notification{
			RecipientID: "u2",
			Type:        "ping",
			Target:      target,
		})
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, id)
	})
}

func TestService_OptionOrder(t *testing.T) {
	// The resolver and the cache store must end up paired no matter which
	// option comes first.
	ctx := context.Background()

	resolver := related.NewResolver()
	resolver.RegisterLoader("device", func(ctx context.Context, id string) (any, error) {
		return "router-" + id, nil
	})

	store := cache.NewMemoryStore()
	svc := notifykit.New(
		notifykit.WithResolver(resolver),
		notifykit.WithCacheStore(store),
	)
	registerPing(t, svc)

	_, err := svc.Send(ctx, notification.Notification{RecipientID: "u1", Type: "ping"})
	require.NoError(t, err)

	count, err := svc.UnreadCount(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Positive(t, store.Len(), "configured cache store holds the unread-count entry")
}

func TestService_UnreadCount(t *testing.T) {
	ctx := context.Background()

	svc := notifykit.New()
	registerPing(t, svc)

	for i := 0; i < 3; i++ {
		_, err := svc.Send(ctx, notification.Notification{RecipientID: "u1", Type: "ping"})
		require.NoError(t, err)
	}

	count, err := svc.UnreadCount(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	list, err := svc.List(ctx, "u1", notification.ListOptions{})
	require.NoError(t, err)
	require.Len(t, list, 3)

	require.NoError(t, svc.MarkRead(ctx, "u1", list[0].ID))
	count, err = svc.UnreadCount(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, count, "mark-read invalidates the cached count")

	require.NoError(t, svc.MarkAllRead(ctx, "u1"))
	count, err = svc.UnreadCount(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestService_Delete(t *testing.T) {
	ctx := context.Background()

	svc := notifykit.New()
	registerPing(t, svc)

	id, err := svc.Send(ctx, notification.Notification{RecipientID: "u1", Type: "ping"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, id))
	_, err = svc.Get(ctx, id)
	require.ErrorIs(t, err, notification.ErrNotFound)

	count, err := svc.UnreadCount(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	assert.NoError(t, svc.Delete(ctx, id), "double delete is not an error")
}

func TestService_Render(t *testing.T) {
	ctx := context.Background()

	svc := notifykit.New()
	registerPing(t, svc)

	id, err := svc.Send(ctx, notification.Notification{RecipientID: "u1", Type: "ping"})
	require.NoError(t, err)

	n, err := svc.Get(ctx, id)
	require.NoError(t, err)

	html, err := svc.RenderMessage(ctx, n)
	require.NoError(t, err)
	assert.Contains(t, string(html), "host was pinged")

	subject, err := svc.RenderEmailSubject(ctx, n)
	require.NoError(t, err)
	assert.Contains(t, subject, "pinged")
}

func TestService_RenderFailureDeletes(t *testing.T) {
	ctx := context.Background()

	svc := notifykit.New()
	require.NoError(t, svc.Registry().Register("alert", registry.Config{
		Level:        registry.LevelWarning,
		Verb:         "alerted",
		EmailSubject: "s",
		Message:      "{{.missing_key}}",
	}))

	id, err := svc.Send(ctx, notification.Notification{RecipientID: "u1", Type: "alert"})
	require.NoError(t, err)

	n, err := svc.Get(ctx, id)
	require.NoError(t, err)

	_, err = svc.RenderMessage(ctx, n)
	require.Error(t, err)
	svc.Dispatcher().Wait()

	_, err = svc.Get(ctx, id)
	require.ErrorIs(t, err, notification.ErrNotFound)

	count, err := svc.UnreadCount(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

type staticLookup struct {
	mu       sync.Mutex
	email    string
	settings map[string]*settings.Setting
}

func (l *staticLookup) Email(_ context.Context, userID string) (string, error) {
	return l.email, nil
}

func (l *staticLookup) Setting(_ context.Context, userID, typeName string) (*settings.Setting, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.settings[typeName], nil
}

type countingSender struct {
	mu   sync.Mutex
	sent []email.SendEmailParams
}

func (s *countingSender) SendEmail(_ context.Context, params email.SendEmailParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, params)
	return nil
}

func TestService_EmailDelivery(t *testing.T) {
	ctx := context.Background()

	sender := &countingSender{}
	lookup := &staticLookup{
		email: "user@example.com",
		settings: map[string]*settings.Setting{
			"silent": {UserID: "u1", Type: "silent", Email: func() *bool { v := false; return &v }()},
		},
	}
	svc := notifykit.New(notifykit.WithEmailDelivery(sender, lookup))
	registerPing(t, svc)
	require.NoError(t, svc.Registry().Register("silent", registry.Config{
		Level:        registry.LevelInfo,
		Verb:         "hushed",
		EmailSubject: "s",
		Message:      "m",
	}))

	_, err := svc.Send(ctx, notification.Notification{RecipientID: "u1", Type: "ping"})
	require.NoError(t, err)

	sender.mu.Lock()
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "user@example.com", sender.sent[0].SendTo)
	sender.mu.Unlock()

	// The per-user setting turns email off for the second type.
	_, err = svc.Send(ctx, notification.Notification{RecipientID: "u1", Type: "silent"})
	require.NoError(t, err)

	sender.mu.Lock()
	assert.Len(t, sender.sent, 1)
	sender.mu.Unlock()
}

func TestService_SendWithDefaults(t *testing.T) {
	// Untyped notifications carry their own description.
	ctx := context.Background()
	svc := notifykit.New()

	id, err := svc.Send(ctx, notification.Notification{
		RecipientID: "u1",
		Description: "ad-hoc message",
		Timestamp:   time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	n, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "ad-hoc message", n.Description)
	assert.Equal(t, 2025, n.Timestamp.Year(), "explicit timestamp preserved")

	html, err := svc.RenderMessage(ctx, n)
	require.NoError(t, err)
	assert.Contains(t, string(html), "ad-hoc message")
}
