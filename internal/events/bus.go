// Package events provides the in-process event bus that decouples XP and
// streak mutation from their presentation consumers (HUD, overlay, streak
// badge). Delivery is synchronous and in subscription order; there is no
// buffering or replay, so a subscriber registered after a publish never sees
// that publish. Consumers needing a current value at subscribe time pull it
// from the progress store or the profile gateway instead.
package events

import (
	"log"
	"sync"

	"lingoclash/internal/models"
)

// XPChanged is published after every write to the local XP total.
// Now = Prev + Delta at the time of emission.
type XPChanged struct {
	Delta  int    `json:"delta"`
	Prev   int    `json:"prev"`
	Now    int    `json:"now"`
	Source string `json:"source"`
}

// StreakChanged is published when the backend reports a new streak value.
type StreakChanged struct {
	Days int `json:"days"`
}

// UserUpdated is published after a fresh profile fetch.
type UserUpdated struct {
	Profile models.Profile `json:"profile"`
}

type subscriber[E any] struct {
	id int
	fn func(E)
}

// Bus is a process-wide typed publish/subscribe hub. One instance is created
// at application start and shared by reference, so tests get isolation by
// constructing their own.
type Bus struct {
	mu     sync.Mutex
	nextID int

	xpSubs     []subscriber[XPChanged]
	streakSubs []subscriber[StreakChanged]
	userSubs   []subscriber[UserUpdated]
}

// NewBus creates an empty event bus.
func NewBus() *Bus {
	return &Bus{}
}

// SubscribeXPChanged registers a handler for XP changes and returns its
// unsubscribe function.
func (b *Bus) SubscribeXPChanged(fn func(XPChanged)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.xpSubs = append(b.xpSubs, subscriber[XPChanged]{id: id, fn: fn})
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.xpSubs = remove(b.xpSubs, id)
	}
}

// SubscribeStreakChanged registers a handler for streak updates and returns
// its unsubscribe function.
func (b *Bus) SubscribeStreakChanged(fn func(StreakChanged)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.streakSubs = append(b.streakSubs, subscriber[StreakChanged]{id: id, fn: fn})
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.streakSubs = remove(b.streakSubs, id)
	}
}

// SubscribeUserUpdated registers a handler for profile refreshes and returns
// its unsubscribe function.
func (b *Bus) SubscribeUserUpdated(fn func(UserUpdated)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.userSubs = append(b.userSubs, subscriber[UserUpdated]{id: id, fn: fn})
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.userSubs = remove(b.userSubs, id)
	}
}

// PublishXPChanged delivers an XP change to all current subscribers before
// returning.
func (b *Bus) PublishXPChanged(e XPChanged) {
	deliver(b.snapshotXP(), e)
}

// PublishStreakChanged delivers a streak update to all current subscribers
// before returning.
func (b *Bus) PublishStreakChanged(e StreakChanged) {
	deliver(b.snapshotStreak(), e)
}

// PublishUserUpdated delivers a profile refresh to all current subscribers
// before returning.
func (b *Bus) PublishUserUpdated(e UserUpdated) {
	deliver(b.snapshotUser(), e)
}

func (b *Bus) snapshotXP() []subscriber[XPChanged] {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]subscriber[XPChanged](nil), b.xpSubs...)
}

func (b *Bus) snapshotStreak() []subscriber[StreakChanged] {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]subscriber[StreakChanged](nil), b.streakSubs...)
}

func (b *Bus) snapshotUser() []subscriber[UserUpdated] {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]subscriber[UserUpdated](nil), b.userSubs...)
}

// deliver invokes handlers in subscription order. A panicking handler is
// logged and must not prevent later handlers from running.
func deliver[E any](subs []subscriber[E], e E) {
	for _, s := range subs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("event subscriber panicked: %v", r)
				}
			}()
			s.fn(e)
		}()
	}
}

func remove[E any](subs []subscriber[E], id int) []subscriber[E] {
	for i, s := range subs {
		if s.id == id {
			return append(subs[:i], subs[i+1:]...)
		}
	}
	return subs
}
