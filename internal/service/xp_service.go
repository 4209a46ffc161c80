package service

import (
	"context"
	"fmt"
	"log"
	"sync"

	"lingoclash/internal/events"
	"lingoclash/internal/gateway"
	"lingoclash/internal/models"
	"lingoclash/internal/xp"
)

// XPService drives the two flows that mutate XP: awarding a quiz attempt and
// reconciling the local store against the remote profile. A single mutex
// serializes them, so a sign-in reconcile can never interleave with an
// award's read-modify-write and clobber it.
type XPService struct {
	progress *ProgressService
	profiles gateway.ProfileGateway
	bus      *events.Bus
	mu       sync.Mutex
}

// NewXPService creates a new XP service
func NewXPService(progress *ProgressService, profiles gateway.ProfileGateway, bus *events.Bus) *XPService {
	return &XPService{progress: progress, profiles: profiles, bus: bus}
}

// Award credits XP for a quiz attempt at most once. An already-awarded
// attempt only recomputes the display value and mutates nothing. For a new
// attempt the local mutation completes and is durable before the remote push
// is issued; a remote failure is logged but never rolls the local award back,
// it only forgoes the streak update.
func (s *XPService) Award(ctx context.Context, result models.AttemptResult) models.AwardOutcome {
	earned := xp.ComputeXP(result)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.progress.HasAttemptAwarded(result.AttemptID) {
		return models.AwardOutcome{Awarded: false, Earned: earned, TotalXP: s.progress.TotalXP()}
	}

	total := s.progress.AddXP(earned, "quiz")
	s.progress.MarkAttemptAwarded(result.AttemptID)

	profile, err := s.profiles.PostXPDelta(ctx, models.XPDelta{
		Delta:     earned,
		AttemptID: result.AttemptID,
		Source:    "quiz",
	})
	if err != nil {
		log.Printf("xp: failed to push award for attempt %s upstream: %v", result.AttemptID, err)
		return models.AwardOutcome{Awarded: true, Earned: earned, TotalXP: total}
	}

	s.bus.PublishStreakChanged(events.StreakChanged{Days: profile.Streak})
	return models.AwardOutcome{Awarded: true, Earned: earned, TotalXP: total}
}

// Reconcile merges the local store and the remote profile with a max-wins
// policy on total XP and surfaces the backend streak unconditionally. A
// failed profile fetch aborts the attempt and propagates; a failed push of
// local-ahead progress is logged and swallowed, with local state already
// correct and the remote catching up on the next sync.
func (s *XPService) Reconcile(ctx context.Context) (models.SyncResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	localXP := s.progress.TotalXP()

	remote, err := s.profiles.FetchProfile(ctx)
	if err != nil {
		return models.SyncResult{}, fmt.Errorf("failed to fetch remote profile: %w", err)
	}

	finalXP := localXP
	if remote.TotalXP > finalXP {
		finalXP = remote.TotalXP
	}

	// Remote was ahead: catch the local store up. The resulting XPChanged
	// event may trigger burst and level-up presentation, which is wanted:
	// remote-ahead progress is real progress the user has not seen animated.
	if finalXP != localXP {
		s.progress.SetTotalXP(finalXP, "sync")
	}

	// Local was ahead: push the difference upstream.
	if finalXP != remote.TotalXP {
		delta := models.XPDelta{Delta: finalXP - remote.TotalXP, Source: "sync"}
		if _, err := s.profiles.PostXPDelta(ctx, delta); err != nil {
			log.Printf("xp: failed to push local XP upstream: %v", err)
		}
	}

	return models.SyncResult{
		TotalXP: finalXP,
		Level:   xp.LevelFromXP(finalXP),
		Streak:  remote.Streak,
	}, nil
}
