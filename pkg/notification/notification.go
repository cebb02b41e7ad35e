package notification

import (
	"time"

	"github.com/google/uuid"

	"github.com/owlpost/notifykit/pkg/related"
)

// Notification is the core domain model. The rendering pipeline never
// mutates it; render-time context (resolved objects, links) lives in a
// separate value built per render call.
type Notification struct {
	ID           uuid.UUID         `json:"id"`
	RecipientID  string            `json:"recipient_id"`
	Type         string            `json:"type,omitempty"` // empty means untyped; Description is shown verbatim
	Level        string            `json:"level,omitempty"`
	Verb         string            `json:"verb,omitempty"`
	Actor        related.Reference `json:"actor,omitempty"`
	ActionObject related.Reference `json:"action_object,omitempty"`
	Target       related.Reference `json:"target,omitempty"`
	Description  string            `json:"description,omitempty"`
	Data         map[string]any    `json:"data,omitempty"`
	Unread       bool              `json:"unread"`
	Timestamp    time.Time         `json:"timestamp"`
}

// DataEmailSubject returns the explicit email subject override carried in
// Data, if any. Untyped notifications prefer it over a rendered subject.
func (n *Notification) DataEmailSubject() (string, bool) {
	if n.Data == nil {
		return "", false
	}
	s, ok := n.Data["email_subject"].(string)
	return s, ok && s != ""
}
