package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"lingoclash/internal/database"
	"lingoclash/internal/events"
	"lingoclash/internal/models"
	"lingoclash/internal/repository"
)

// fakeProfileGateway is an in-memory stand-in for the learning API. Posted
// deltas are applied additively, mirroring the real backend.
type fakeProfileGateway struct {
	profile  models.Profile
	fetchErr error
	postErr  error
	deltas   []models.XPDelta
}

func (f *fakeProfileGateway) FetchProfile(ctx context.Context) (models.Profile, error) {
	if f.fetchErr != nil {
		return models.Profile{}, f.fetchErr
	}
	return f.profile, nil
}

func (f *fakeProfileGateway) PostXPDelta(ctx context.Context, delta models.XPDelta) (models.Profile, error) {
	if f.postErr != nil {
		return models.Profile{}, f.postErr
	}
	f.deltas = append(f.deltas, delta)
	f.profile.TotalXP += delta.Delta
	f.profile.Level = 0 // backend recomputes; not relevant here
	return f.profile, nil
}

func newTestProgress(t *testing.T, bus *events.Bus) *ProgressService {
	t.Helper()

	db, err := database.Initialize(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	return NewProgressService(repository.NewProgressRepository(db), bus)
}

func TestAwardCreditsAttemptOnce(t *testing.T) {
	bus := events.NewBus()
	progress := newTestProgress(t, bus)
	remote := &fakeProfileGateway{profile: models.Profile{Streak: 3}}
	engine := NewXPService(progress, remote, bus)

	result := models.AttemptResult{AttemptID: "att_1", NumCorrect: 2, NumTotal: 2, ScorePercent: 100}

	outcome := engine.Award(context.Background(), result)
	if !outcome.Awarded {
		t.Error("first award reported Awarded = false")
	}
	if outcome.Earned != 90 {
		t.Errorf("Earned = %d, expected 90", outcome.Earned)
	}
	if outcome.TotalXP != 90 {
		t.Errorf("TotalXP = %d, expected 90", outcome.TotalXP)
	}
	if len(remote.deltas) != 1 || remote.deltas[0].Delta != 90 || remote.deltas[0].AttemptID != "att_1" {
		t.Errorf("unexpected upstream deltas: %+v", remote.deltas)
	}

	// Replaying the same attempt reports the value but changes nothing.
	repeat := engine.Award(context.Background(), result)
	if repeat.Awarded {
		t.Error("repeat award reported Awarded = true")
	}
	if repeat.Earned != 90 {
		t.Errorf("repeat Earned = %d, expected 90", repeat.Earned)
	}
	if repeat.TotalXP != 90 {
		t.Errorf("repeat TotalXP = %d, expected 90", repeat.TotalXP)
	}
	if len(remote.deltas) != 1 {
		t.Errorf("repeat award pushed upstream: %+v", remote.deltas)
	}
}

func TestAwardPublishesXPAndStreakEvents(t *testing.T) {
	bus := events.NewBus()
	progress := newTestProgress(t, bus)
	remote := &fakeProfileGateway{profile: models.Profile{Streak: 5}}
	engine := NewXPService(progress, remote, bus)

	var xpEvents []events.XPChanged
	bus.SubscribeXPChanged(func(e events.XPChanged) { xpEvents = append(xpEvents, e) })

	var streaks []int
	bus.SubscribeStreakChanged(func(e events.StreakChanged) { streaks = append(streaks, e.Days) })

	engine.Award(context.Background(), models.AttemptResult{AttemptID: "att_1", NumCorrect: 3, NumTotal: 5, ScorePercent: 60})

	if len(xpEvents) != 1 {
		t.Fatalf("published %d XPChanged events, expected 1", len(xpEvents))
	}
	e := xpEvents[0]
	if e.Delta != 50 || e.Prev != 0 || e.Now != 50 || e.Source != "quiz" {
		t.Errorf("unexpected XPChanged event: %+v", e)
	}
	if len(streaks) != 1 || streaks[0] != 5 {
		t.Errorf("unexpected streak events: %v", streaks)
	}

	// An already-awarded attempt publishes nothing.
	engine.Award(context.Background(), models.AttemptResult{AttemptID: "att_1", NumCorrect: 3, NumTotal: 5, ScorePercent: 60})
	if len(xpEvents) != 1 || len(streaks) != 1 {
		t.Error("repeat award published events")
	}
}

func TestAwardSurvivesRemoteFailure(t *testing.T) {
	bus := events.NewBus()
	progress := newTestProgress(t, bus)
	remote := &fakeProfileGateway{postErr: errors.New("backend down")}
	engine := NewXPService(progress, remote, bus)

	var streaks []int
	bus.SubscribeStreakChanged(func(e events.StreakChanged) { streaks = append(streaks, e.Days) })

	outcome := engine.Award(context.Background(), models.AttemptResult{AttemptID: "att_1", NumCorrect: 5, NumTotal: 5, ScorePercent: 100})

	// The local award stands even though the push failed.
	if !outcome.Awarded {
		t.Error("award reported Awarded = false on remote failure")
	}
	if outcome.TotalXP != 120 {
		t.Errorf("TotalXP = %d, expected 120", outcome.TotalXP)
	}
	if progress.TotalXP() != 120 {
		t.Errorf("stored total = %d, expected 120", progress.TotalXP())
	}
	if !progress.HasAttemptAwarded("att_1") {
		t.Error("attempt not marked awarded after remote failure")
	}
	if len(streaks) != 0 {
		t.Errorf("streak events published despite remote failure: %v", streaks)
	}
}

func TestReconcileRemoteAhead(t *testing.T) {
	bus := events.NewBus()
	progress := newTestProgress(t, bus)
	progress.SetTotalXP(80, "quiz")
	remote := &fakeProfileGateway{profile: models.Profile{TotalXP: 150, Streak: 4}}
	engine := NewXPService(progress, remote, bus)

	result, err := engine.Reconcile(context.Background())
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}

	if result.TotalXP != 150 {
		t.Errorf("TotalXP = %d, expected 150", result.TotalXP)
	}
	if result.Level != 2 {
		t.Errorf("Level = %d, expected 2", result.Level)
	}
	if result.Streak != 4 {
		t.Errorf("Streak = %d, expected 4", result.Streak)
	}
	if progress.TotalXP() != 150 {
		t.Errorf("stored total = %d, expected 150", progress.TotalXP())
	}
	if len(remote.deltas) != 0 {
		t.Errorf("pushed upstream despite remote being ahead: %+v", remote.deltas)
	}
}

func TestReconcileLocalAhead(t *testing.T) {
	bus := events.NewBus()
	progress := newTestProgress(t, bus)
	progress.SetTotalXP(200, "quiz")
	remote := &fakeProfileGateway{profile: models.Profile{TotalXP: 50, Streak: 2}}
	engine := NewXPService(progress, remote, bus)

	var xpEvents []events.XPChanged
	bus.SubscribeXPChanged(func(e events.XPChanged) { xpEvents = append(xpEvents, e) })

	result, err := engine.Reconcile(context.Background())
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}

	if result.TotalXP != 200 {
		t.Errorf("TotalXP = %d, expected 200", result.TotalXP)
	}
	if progress.TotalXP() != 200 {
		t.Errorf("stored total = %d, expected 200", progress.TotalXP())
	}
	if len(remote.deltas) != 1 || remote.deltas[0].Delta != 150 || remote.deltas[0].Source != "sync" {
		t.Errorf("unexpected upstream deltas: %+v", remote.deltas)
	}
	// Nothing changed locally, so no XPChanged event.
	if len(xpEvents) != 0 {
		t.Errorf("XPChanged published for unchanged local total: %+v", xpEvents)
	}
}

func TestReconcileEqualTotalsIsQuiet(t *testing.T) {
	bus := events.NewBus()
	progress := newTestProgress(t, bus)
	progress.SetTotalXP(100, "quiz")
	remote := &fakeProfileGateway{profile: models.Profile{TotalXP: 100, Streak: 1}}
	engine := NewXPService(progress, remote, bus)

	var xpEvents []events.XPChanged
	bus.SubscribeXPChanged(func(e events.XPChanged) { xpEvents = append(xpEvents, e) })

	result, err := engine.Reconcile(context.Background())
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}

	if result.TotalXP != 100 || result.Streak != 1 {
		t.Errorf("unexpected result: %+v", result)
	}
	if len(remote.deltas) != 0 || len(xpEvents) != 0 {
		t.Error("equal totals triggered writes or events")
	}
}

func TestReconcileFetchFailurePropagates(t *testing.T) {
	bus := events.NewBus()
	progress := newTestProgress(t, bus)
	progress.SetTotalXP(80, "quiz")
	remote := &fakeProfileGateway{fetchErr: errors.New("backend down")}
	engine := NewXPService(progress, remote, bus)

	if _, err := engine.Reconcile(context.Background()); err == nil {
		t.Fatal("Reconcile did not surface the fetch failure")
	}

	// Local state is untouched by a failed sync.
	if progress.TotalXP() != 80 {
		t.Errorf("stored total = %d, expected 80", progress.TotalXP())
	}
}

func TestReconcilePushFailureIsSwallowed(t *testing.T) {
	bus := events.NewBus()
	progress := newTestProgress(t, bus)
	progress.SetTotalXP(200, "quiz")
	remote := &fakeProfileGateway{profile: models.Profile{TotalXP: 50, Streak: 2}, postErr: errors.New("backend down")}
	engine := NewXPService(progress, remote, bus)

	result, err := engine.Reconcile(context.Background())
	if err != nil {
		t.Fatalf("Reconcile surfaced a push failure: %v", err)
	}
	if result.TotalXP != 200 || result.Streak != 2 {
		t.Errorf("unexpected result: %+v", result)
	}
}
