package notification

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Storage handles notification persistence and retrieval.
type Storage interface {
	// Create stores a new notification.
	Create(ctx context.Context, notif Notification) error

	// Get retrieves a single notification by id.
	Get(ctx context.Context, id uuid.UUID) (*Notification, error)

	// List returns notifications for a recipient, newest first.
	List(ctx context.Context, recipientID string, opts ListOptions) ([]Notification, error)

	// MarkRead marks notification(s) as read.
	MarkRead(ctx context.Context, recipientID string, ids ...uuid.UUID) error

	// MarkAllRead marks every unread notification of the recipient as read.
	MarkAllRead(ctx context.Context, recipientID string) error

	// Delete removes notification(s) by id.
	Delete(ctx context.Context, ids ...uuid.UUID) error

	// CountUnread returns the recipient's unread count.
	CountUnread(ctx context.Context, recipientID string) (int, error)
}

// ListOptions provides filtering and pagination for listing notifications.
type ListOptions struct {
	Limit      int        // Maximum number of notifications to return (0 = no limit)
	Offset     int        // Number of notifications to skip for pagination
	OnlyUnread bool       // When true, only return unread notifications
	Types      []string   // If specified, only return notifications of these types
	Since      *time.Time // If specified, only return notifications created after this time
}
