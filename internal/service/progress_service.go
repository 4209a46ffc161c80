package service

import (
	"log"
	"sync"

	"lingoclash/internal/events"
	"lingoclash/internal/repository"
)

// ProgressService is the local progress store: the durable XP total plus the
// awarded-attempt set, with an XP-change event published on every write.
// Storage failures never propagate to callers; reads degrade to zero-value
// defaults and failed writes are logged, keeping the HUD available at the
// cost of strict correctness.
type ProgressService struct {
	repo *repository.ProgressRepository
	bus  *events.Bus
	mu   sync.Mutex
}

// NewProgressService creates a new progress service
func NewProgressService(repo *repository.ProgressRepository, bus *events.Bus) *ProgressService {
	return &ProgressService{repo: repo, bus: bus}
}

// TotalXP returns the persisted XP total, 0 when the store is empty or
// unreadable.
func (s *ProgressService) TotalXP() int {
	return s.repo.GetTotalXP()
}

// SetTotalXP clamps value to >= 0, persists it, and publishes an XPChanged
// event whose prev/now/delta are computed from the pre- and post-write
// values. Returns the stored total.
func (s *ProgressService) SetTotalXP(value int, source string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setTotalXP(value, source)
}

// setTotalXP must be called with s.mu held.
func (s *ProgressService) setTotalXP(value int, source string) int {
	prev := s.repo.GetTotalXP()

	now := value
	if now < 0 {
		now = 0
	}

	if err := s.repo.SetTotalXP(now); err != nil {
		// The stored value is unchanged, so no event is published.
		log.Printf("progress: failed to persist XP total %d: %v", now, err)
		return prev
	}

	s.bus.PublishXPChanged(events.XPChanged{
		Delta:  now - prev,
		Prev:   prev,
		Now:    now,
		Source: source,
	})
	return now
}

// AddXP adds amount to the stored total and returns the new total. The
// read-modify-write runs under the store mutex so concurrent writers cannot
// lose updates.
func (s *ProgressService) AddXP(amount int, source string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setTotalXP(s.repo.GetTotalXP()+amount, source)
}

// HasAttemptAwarded reports whether an attempt has already been credited.
func (s *ProgressService) HasAttemptAwarded(attemptID string) bool {
	return s.repo.HasAttemptAwarded(attemptID)
}

// MarkAttemptAwarded records an attempt in the awarded set. Marking twice is
// a no-op; a failed write is logged and swallowed.
func (s *ProgressService) MarkAttemptAwarded(attemptID string) {
	if err := s.repo.MarkAttemptAwarded(attemptID); err != nil {
		log.Printf("progress: failed to mark attempt %s awarded: %v", attemptID, err)
	}
}
