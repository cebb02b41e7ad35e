package render

import (
	"context"
	"fmt"
	"strings"

	"github.com/owlpost/notifykit/pkg/notification"
	"github.com/owlpost/notifykit/pkg/related"
)

// Site is the deployment metadata available to templates as {{.Site}}.
type Site struct {
	Name   string
	Domain string
}

// Linkable is implemented by resolved entities that know their own URL.
// Relative URLs are made absolute against the site domain.
type Linkable interface {
	AbsoluteURL() string
}

// buildContext assembles the immutable template context for one render call:
// the notification, site metadata, the resolved related objects with their
// links, and the notification's data entries merged in last, so data keys are
// directly addressable in templates (and may shadow the built-ins).
func (r *Renderer) buildContext(ctx context.Context, n *notification.Notification, forEmail bool) (map[string]any, error) {
	actor, actorLink, err := r.resolveField(ctx, n.Actor)
	if err != nil {
		return nil, err
	}
	actionObject, actionLink, err := r.resolveField(ctx, n.ActionObject)
	if err != nil {
		return nil, err
	}
	target, targetLink, err := r.resolveField(ctx, n.Target)
	if err != nil {
		return nil, err
	}

	// Emails cannot rely on in-app routing: an unresolvable target falls
	// back to the read-redirect endpoint, which also marks the notification
	// read on click.
	if forEmail && targetLink == "" {
		targetLink = r.redirectURL(n.ID)
	}

	tc := map[string]any{
		"Notification": n,
		"Site":         r.site,
		"Actor":        actor,
		"ActionObject": actionObject,
		"Target":       target,
		"ActorLink":    actorLink,
		"ActionLink":   actionLink,
		"TargetLink":   targetLink,
	}
	for k, v := range n.Data {
		tc[k] = v
	}
	return tc, nil
}

// resolveField resolves one polymorphic reference through the cache and
// derives its absolute link, when the entity can provide one.
func (r *Renderer) resolveField(ctx context.Context, ref related.Reference) (any, string, error) {
	obj, err := r.related.Resolve(ctx, ref)
	if err != nil {
		return nil, "", err
	}
	if obj == nil {
		return nil, "", nil
	}

	link := ""
	if l, ok := obj.(Linkable); ok {
		link = r.absoluteURL(l.AbsoluteURL())
	}
	return obj, link, nil
}

func (r *Renderer) absoluteURL(u string) string {
	if u == "" || !strings.HasPrefix(u, "/") {
		return u
	}
	return fmt.Sprintf("https://%s%s", r.site.Domain, u)
}
