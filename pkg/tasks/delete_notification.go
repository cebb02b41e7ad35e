package tasks

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/owlpost/notifykit/pkg/notification"
	"github.com/owlpost/notifykit/pkg/related"
)

// DeleteNotification is the payload of the render-failure cleanup task.
type DeleteNotification struct {
	ID uuid.UUID `json:"id"`
}

// NewDeleteNotificationHandler builds the handler removing an unrenderable
// notification. It also invalidates the recipient's unread-count cache entry,
// since deleting an unread notification changes the count. An already-deleted
// notification is not an error.
func NewDeleteNotificationHandler(storage notification.Storage, cache *related.Cache) Handler {
	return NewTaskHandler(func(ctx context.Context, payload DeleteNotification) error {
		notif, err := storage.Get(ctx, payload.ID)
		if err != nil {
			if errors.Is(err, notification.ErrNotFound) {
				return nil
			}
			return err
		}

		if err := storage.Delete(ctx, payload.ID); err != nil {
			return err
		}
		if cache != nil {
			return cache.InvalidateUnreadCount(ctx, notif.RecipientID)
		}
		return nil
	})
}
