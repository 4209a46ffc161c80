package models

// AttemptResult is the outcome of one completed quiz attempt, as reported by
// the quiz subsystem. AttemptID is the idempotence key for XP awards: each
// attempt is credited at most once.
type AttemptResult struct {
	AttemptID    string `json:"attemptId"`
	NumCorrect   int    `json:"numCorrect"`
	NumTotal     int    `json:"numTotal"`
	ScorePercent int    `json:"scorePercent"`
}

// Profile is the remote user record. The backend owns it: streak in
// particular is computed entirely server-side and is never derived locally.
type Profile struct {
	TotalXP        int    `json:"totalXP"`
	Level          int    `json:"level"`
	Streak         int    `json:"streak"`
	LastActiveDate string `json:"lastActiveDate,omitempty"`
}

// XPDelta is the body of an XP update pushed to the backend. Source
// distinguishes real activity ("quiz") from reconciliation ("sync") so the
// backend can decide whether the delta counts toward the streak.
type XPDelta struct {
	Delta     int    `json:"delta"`
	AttemptID string `json:"attemptId,omitempty"`
	Source    string `json:"source"`
}

// AwardOutcome describes what an award request did. Earned is always the
// computed XP for the attempt, even when Awarded is false because the
// attempt had already been credited.
type AwardOutcome struct {
	Awarded bool `json:"awarded"`
	Earned  int  `json:"earned"`
	TotalXP int  `json:"totalXP"`
}

// SyncResult is the outcome of a local/remote XP reconciliation.
type SyncResult struct {
	TotalXP int `json:"totalXP"`
	Level   int `json:"level"`
	Streak  int `json:"streak"`
}
