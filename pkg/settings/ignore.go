package settings

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/owlpost/notifykit/pkg/related"
)

// IgnoreRule suppresses notifications about one object for one user until
// ValidTill. A zero ValidTill means the rule never expires.
type IgnoreRule struct {
	ID        uuid.UUID         `json:"id"`
	UserID    string            `json:"user_id"`
	Object    related.Reference `json:"object"`
	ValidTill time.Time         `json:"valid_till,omitempty"`
}

// Expired reports whether the rule is logically dead at now.
func (r IgnoreRule) Expired(now time.Time) bool {
	return !r.ValidTill.IsZero() && now.After(r.ValidTill)
}

// SortByExpiry orders rules by expiry ascending; never-expiring rules last.
func SortByExpiry(rules []IgnoreRule) {
	sort.SliceStable(rules, func(i, j int) bool {
		a, b := rules[i].ValidTill, rules[j].ValidTill
		if a.IsZero() {
			return false
		}
		if b.IsZero() {
			return true
		}
		return a.Before(b)
	})
}

// IgnoreRuleStorage persists ignore rules. DeleteExpired is what the Sweeper
// runs periodically.
type IgnoreRuleStorage interface {
	// Create stores a rule.
	Create(ctx context.Context, rule IgnoreRule) error

	// List returns a user's rules ordered by expiry ascending.
	List(ctx context.Context, userID string) ([]IgnoreRule, error)

	// Ignored reports whether the user currently ignores the object.
	Ignored(ctx context.Context, userID string, obj related.Reference) (bool, error)

	// Delete removes a rule by id.
	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteExpired removes every rule expired at the given time and
	// returns how many were removed.
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}

// MemoryIgnoreRuleStorage is an in-memory IgnoreRuleStorage for development
// and testing.
type MemoryIgnoreRuleStorage struct {
	mu    sync.RWMutex
	rules map[uuid.UUID]IgnoreRule
}

// NewMemoryIgnoreRuleStorage creates an empty in-memory rule storage.
func NewMemoryIgnoreRuleStorage() *MemoryIgnoreRuleStorage {
	return &MemoryIgnoreRuleStorage{
		rules: make(map[uuid.UUID]IgnoreRule),
	}
}

func (s *MemoryIgnoreRuleStorage) Create(ctx context.Context, rule IgnoreRule) error {
	s.mu.Lock()
	s.rules[rule.ID] = rule
	s.mu.Unlock()
	return nil
}

func (s *MemoryIgnoreRuleStorage) List(ctx context.Context, userID string) ([]IgnoreRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rules []IgnoreRule
	for _, r := range s.rules {
		if r.UserID == userID {
			rules = append(rules, r)
		}
	}
	SortByExpiry(rules)
	return rules, nil
}

func (s *MemoryIgnoreRuleStorage) Ignored(ctx context.Context, userID string, obj related.Reference) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := time.Now()
	for _, r := range s.rules {
		if r.UserID == userID && r.Object == obj && !r.Expired(now) {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryIgnoreRuleStorage) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	delete(s.rules, id)
	s.mu.Unlock()
	return nil
}

func (s *MemoryIgnoreRuleStorage) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, r := range s.rules {
		if r.Expired(now) {
			delete(s.rules, id)
			removed++
		}
	}
	return removed, nil
}
