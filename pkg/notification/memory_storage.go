package notification

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStorage is an in-memory implementation of the Storage interface.
// Suitable for development and testing.
type MemoryStorage struct {
	mu            sync.RWMutex
	notifications map[uuid.UUID]Notification
}

// NewMemoryStorage creates a new in-memory notification storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		notifications: make(map[uuid.UUID]Notification),
	}
}

func (s *MemoryStorage) Create(ctx context.Context, notif Notification) error {
	if notif.ID == uuid.Nil {
		return ErrMissingID
	}
	if notif.RecipientID == "" {
		return ErrMissingRecipient
	}
	if notif.Timestamp.IsZero() {
		notif.Timestamp = time.Now()
	}

	s.mu.Lock()
	s.notifications[notif.ID] = notif
	s.mu.Unlock()
	return nil
}

func (s *MemoryStorage) Get(ctx context.Context, id uuid.UUID) (*Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	notif, ok := s.notifications[id]
	if !ok {
		return nil, ErrNotFound
	}
	// Return a copy to prevent external mutation of stored data.
	return &notif, nil
}

func (s *MemoryStorage) List(ctx context.Context, recipientID string, opts ListOptions) ([]Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var filtered []Notification
	for _, n := range s.notifications {
		if n.RecipientID != recipientID {
			continue
		}
		if opts.OnlyUnread && !n.Unread {
			continue
		}
		if len(opts.Types) > 0 && !slices.Contains(opts.Types, n.Type) {
			continue
		}
		if opts.Since != nil && n.Timestamp.Before(*opts.Since) {
			continue
		}
		filtered = append(filtered, n)
	}

	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].Timestamp.After(filtered[j].Timestamp)
	})

	start := opts.Offset
	if start > len(filtered) {
		return []Notification{}, nil
	}
	end := start + opts.Limit
	if opts.Limit == 0 || end > len(filtered) {
		end = len(filtered)
	}
	return filtered[start:end], nil
}

func (s *MemoryStorage) MarkRead(ctx context.Context, recipientID string, ids ...uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range ids {
		n, ok := s.notifications[id]
		if !ok || n.RecipientID != recipientID {
			continue
		}
		n.Unread = false
		s.notifications[id] = n
	}
	return nil
}

func (s *MemoryStorage) MarkAllRead(ctx context.Context, recipientID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, n := range s.notifications {
		if n.RecipientID != recipientID || !n.Unread {
			continue
		}
		n.Unread = false
		s.notifications[id] = n
	}
	return nil
}

func (s *MemoryStorage) Delete(ctx context.Context, ids ...uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range ids {
		delete(s.notifications, id)
	}
	return nil
}

func (s *MemoryStorage) CountUnread(ctx context.Context, recipientID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, n := range s.notifications {
		if n.RecipientID == recipientID && n.Unread {
			count++
		}
	}
	return count, nil
}
