package render_test

import (
	"bytes"
	"context"
	"encoding/json"
	"sync"
	"testing"
	"testing/fstest"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/owlpost/notifykit/pkg/cache"
	"github.com/owlpost/notifykit/pkg/logger"
	"github.com/owlpost/notifykit/pkg/notification"
	"github.com/owlpost/notifykit/pkg/registry"
	"github.com/owlpost/notifykit/pkg/related"
	"github.com/owlpost/notifykit/pkg/render"
	"github.com/owlpost/notifykit/pkg/tasks"
	"github.com/owlpost/notifykit/pkg/templates"
)

// recordingEnqueuer captures enqueued payloads.
type recordingEnqueuer struct {
	mu       sync.Mutex
	payloads []any
}

func (e *recordingEnqueuer) Enqueue(ctx context.Context, payload any) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.payloads = append(e.payloads, payload)
	return nil
}

func (e *recordingEnqueuer) deletions() []tasks.DeleteNotification {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []tasks.DeleteNotification
	for _, p := range e.payloads {
		if d, ok := p.(tasks.DeleteNotification); ok {
			out = append(out, d)
		}
	}
	return out
}

type device struct {
	Name string
	Path string
}

func (d *device) String() string      { return d.Name }
func (d *device) AbsoluteURL() string { return d.Path }

func newRenderer(t *testing.T, reg *registry.Registry, opts ...render.Option) (*render.Renderer, *recordingEnqueuer) {
	t.Helper()

	resolver := related.NewResolver()
	resolver.RegisterLoader("device", func(ctx context.Context, id string) (any, error) {
		return &device{Name: "router-" + id, Path: "/devices/" + id + "/"}, nil
	})

	enqueuer := &recordingEnqueuer{}
	opts = append([]render.Option{
		render.WithSite(render.Site{Name: "OpenWISP", Domain: "wisp.example.com"}),
		render.WithTaskEnqueuer(enqueuer),
	}, opts...)

	r := render.New(reg, related.NewCache(cache.NewMemoryStore(), resolver), opts...)
	return r, enqueuer
}

func newNotif(typ string) *notification.Notification {
	return &notification.Notification{
		ID:          uuid.New(),
		RecipientID: "u1",
		Type:        typ,
		Verb:        "ping",
		Timestamp:   time.Now(),
	}
}

func TestRenderer_Message(t *testing.T) {
	ctx := context.Background()

	t.Run("inline template", func(t *testing.T) {
		reg := registry.New()
		require.NoError(t, reg.Register("ping", registry.Config{
			Level:        registry.LevelInfo,
			Verb:         "pinged",
			EmailSubject: "s",
			Message:      "Hello {{.Notification.Verb}}",
		}))
		r, enqueuer := newRenderer(t, reg)

		html, err := r.Message(ctx, newNotif("ping"), false)
		require.NoError(t, err)
		assert.Contains(t, string(html), "Hello ping")
		assert.Empty(t, enqueuer.deletions())
	})

	t.Run("untyped returns description verbatim", func(t *testing.T) {
		reg := registry.New()
		r, _ := newRenderer(t, reg)

		n := newNotif("")
		n.Description = "something **happened**"
		html, err := r.Message(ctx, n, false)
		require.NoError(t, err)
		assert.Contains(t, string(html), "something **happened**", "no markdown processing for descriptions")
	})

	t.Run("data entries are substitution variables", func(t *testing.T) {
		reg := registry.New()
		require.NoError(t, reg.Register("alert", registry.Config{
			Level:        registry.LevelWarning,
			Verb:         "alerted",
			EmailSubject: "s",
			Message:      "Alert: {{.reason}}",
		}))
		r, _ := newRenderer(t, reg)

		n := newNotif("alert")
		n.Data = map[string]any{"reason": "cpu overload"}
		html, err := r.Message(ctx, n, false)
		require.NoError(t, err)
		assert.Contains(t, string(html), "Alert: cpu overload")
	})

	t.Run("related objects and links", func(t *testing.T) {
		reg := registry.New()
		require.NoError(t, reg.Register("device_down", registry.Config{
			Level:        registry.LevelError,
			Verb:         "went offline",
			EmailSubject: "s",
			Message:      "[{{.Actor}}]({{.ActorLink}}) {{.Notification.Verb}}",
		}))
		r, _ := newRenderer(t, reg)

		n := newNotif("device_down")
		n.Verb = "went offline"
		n.Actor = related.Reference{ContentType: "device", ObjectID: "7"}
		html, err := r.Message(ctx, n, false)
		require.NoError(t, err)
		assert.Contains(t, string(html), "router-7")
		assert.Contains(t, string(html), `href="https://wisp.example.com/devices/7/"`)
	})

	t.Run("external template", func(t *testing.T) {
		fsys := fstest.MapFS{
			"ping.md": {Data: []byte("\n\nexternal {{.Notification.Verb}}\n\n")},
		}
		resolver := templates.NewResolver(fsys)

		reg := registry.New(registry.WithTemplateResolver(resolver))
		require.NoError(t, reg.Register("ping", registry.Config{
			Level:           registry.LevelInfo,
			Verb:            "pinged",
			EmailSubject:    "s",
			MessageTemplate: "ping.md",
		}))
		r, _ := newRenderer(t, reg, render.WithTemplates(resolver))

		html, err := r.Message(ctx, newNotif("ping"), false)
		require.NoError(t, err)
		assert.Contains(t, string(html), "external ping")
	})

	t.Run("message takes precedence over message template", func(t *testing.T) {
		fsys := fstest.MapFS{"ping.md": {Data: []byte("from template")}}
		resolver := templates.NewResolver(fsys)

		reg := registry.New(registry.WithTemplateResolver(resolver))
		require.NoError(t, reg.Register("ping", registry.Config{
			Level:           registry.LevelInfo,
			Verb:            "pinged",
			EmailSubject:    "s",
			Message:         "from inline",
			MessageTemplate: "ping.md",
		}))
		r, _ := newRenderer(t, reg, render.WithTemplates(resolver))

		html, err := r.Message(ctx, newNotif("ping"), false)
		require.NoError(t, err)
		assert.Contains(t, string(html), "from inline")
	})

	t.Run("unknown type is a configuration error, not a render failure", func(t *testing.T) {
		reg := registry.New()
		r, enqueuer := newRenderer(t, reg)

		_, err := r.Message(ctx, newNotif("ghost"), false)
		require.ErrorIs(t, err, registry.ErrNotRegistered)
		assert.Empty(t, enqueuer.deletions(), "configuration errors must not delete the notification")
	})
}

func TestRenderer_FailurePolicy(t *testing.T) {
	ctx := context.Background()

	t.Run("missing data key deletes the notification", func(t *testing.T) {
		reg := registry.New()
		require.NoError(t, reg.Register("alert", registry.Config{
			Level:        registry.LevelWarning,
			Verb:         "alerted",
			EmailSubject: "s",
			Message:      "Alert: {{.reason}}",
		}))
		r, enqueuer := newRenderer(t, reg)

		n := newNotif("alert") // no data, so .reason is missing
		_, err := r.Message(ctx, n, false)
		require.ErrorIs(t, err, render.ErrRenderFailed)

		deletions := enqueuer.deletions()
		require.Len(t, deletions, 1, "exactly one deletion task enqueued")
		assert.Equal(t, n.ID, deletions[0].ID)
	})

	t.Run("failure log carries the shared attribute keys", func(t *testing.T) {
		reg := registry.New()
		require.NoError(t, reg.Register("alert", registry.Config{
			Level:        registry.LevelWarning,
			Verb:         "alerted",
			EmailSubject: "s",
			Message:      "{{.missing_key}}",
		}))

		var buf bytes.Buffer
		r, _ := newRenderer(t, reg, render.WithLogger(logger.New(logger.WithOutput(&buf))))

		n := newNotif("alert")
		_, err := r.Message(ctx, n, false)
		require.ErrorIs(t, err, render.ErrRenderFailed)

		var record map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
		assert.Equal(t, n.ID.String(), record["notification_id"])
		assert.Equal(t, "alert", record["type"])
		assert.NotEmpty(t, record["error"])
	})

	t.Run("end to end: failed render removes the stored notification", func(t *testing.T) {
		reg := registry.New()
		require.NoError(t, reg.Register("alert", registry.Config{
			Level:        registry.LevelWarning,
			Verb:         "alerted",
			EmailSubject: "s",
			Message:      "{{.missing_key}}",
		}))

		storage := notification.NewMemoryStorage()
		relCache := related.NewCache(cache.NewMemoryStore(), related.NewResolver())
		dispatcher := tasks.NewDispatcher()
		dispatcher.RegisterHandler(tasks.NewDeleteNotificationHandler(storage, relCache))

		r := render.New(reg, relCache, render.WithTaskEnqueuer(dispatcher))

		n := newNotif("alert")
		require.NoError(t, storage.Create(ctx, *n))

		_, err := r.Message(ctx, n, false)
		require.ErrorIs(t, err, render.ErrRenderFailed)
		dispatcher.Wait()

		_, err = storage.Get(ctx, n.ID)
		require.ErrorIs(t, err, notification.ErrNotFound)
	})
}

func TestRenderer_EmailSubject(t *testing.T) {
	ctx := context.Background()

	t.Run("typed subject with site context", func(t *testing.T) {
		reg := registry.New()
		require.NoError(t, reg.Register("ping", registry.Config{
			Level:        registry.LevelInfo,
			Verb:         "pinged",
			EmailSubject: "[{{.Site.Name}}] {{.Notification.Verb}}",
			Message:      "m",
		}))
		r, _ := newRenderer(t, reg)

		subject, err := r.EmailSubject(ctx, newNotif("ping"))
		require.NoError(t, err)
		assert.Equal(t, "[OpenWISP] ping", subject)
	})

	t.Run("untyped prefers data email_subject", func(t *testing.T) {
		reg := registry.New()
		r, _ := newRenderer(t, reg)

		n := newNotif("")
		n.Description = "fallback"
		n.Data = map[string]any{"email_subject": "explicit subject"}
		subject, err := r.EmailSubject(ctx, n)
		require.NoError(t, err)
		assert.Equal(t, "explicit subject", subject)
	})

	t.Run("untyped falls back to the raw description", func(t *testing.T) {
		reg := registry.New()
		r, _ := newRenderer(t, reg)

		n := newNotif("")
		n.Description = "CPU & memory <90%>"
		subject, err := r.EmailSubject(ctx, n)
		require.NoError(t, err)
		assert.Equal(t, "CPU & memory <90%>", subject, "subjects are plain text, never entity-encoded")
	})

	t.Run("missing subject key deletes the notification", func(t *testing.T) {
		reg := registry.New()
		require.NoError(t, reg.Register("alert", registry.Config{
			Level:        registry.LevelWarning,
			Verb:         "alerted",
			EmailSubject: "{{.threshold}}",
			Message:      "m",
		}))
		r, enqueuer := newRenderer(t, reg)

		n := newNotif("alert")
		_, err := r.EmailSubject(ctx, n)
		require.ErrorIs(t, err, render.ErrRenderFailed)
		require.Len(t, enqueuer.deletions(), 1)
	})
}

func TestRenderer_EmailTargetFallback(t *testing.T) {
	ctx := context.Background()

	reg := registry.New()
	require.NoError(t, reg.Register("ping", registry.Config{
		Level:        registry.LevelInfo,
		Verb:         "pinged",
		EmailSubject: "s",
		Message:      "read more: {{.TargetLink}}",
	}))
	r, _ := newRenderer(t, reg)

	n := newNotif("ping")

	// Web variant leaves the link empty when no target resolves.
	html, err := r.Message(ctx, n, false)
	require.NoError(t, err)
	assert.NotContains(t, string(html), "read-redirect")

	// Email variant falls back to the read-redirect endpoint.
	html, err = r.Message(ctx, n, true)
	require.NoError(t, err)
	assert.Contains(t, string(html), "/notifications/"+n.ID.String()+"/read-redirect/")
}
