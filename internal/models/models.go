package models

import (
	"encoding/json"
	"time"
)

// Controller input types found in the user roster.
type Controller string

const (
	ControllerWheel Controller = "wheel"
	ControllerPad   Controller = "pad"
)

// User is a static roster entry, loaded once at process start.
type User struct {
	Nick       string     `json:"nick"`
	Controller Controller `json:"controller"`
}

// Roster maps user number to roster entry.
type Roster map[string]User

// CourseRecord is one lap record belonging to a single user+category fetch.
type CourseRecord struct {
	CourseID   string `json:"course_id"`
	CategoryID string `json:"category_id"`
	UpdateTime string `json:"update_time"`
	Result     string `json:"result"`
}

// CourseRanking is the consolidated ranking structure, rebuilt wholesale on
// each run. CourseIDs is ordered by most-recent record date (day granularity)
// descending; each category's record list is ordered by ascending numeric
// result.
type CourseRanking struct {
	UpdateTime time.Time                            `json:"updateTime"`
	CourseIDs  []string                             `json:"courseIds"`
	Ranking    map[string]map[string][]CourseRecord `json:"courseRanking"`
}

// DailyRaceEvent is the flat projection of the remote event structure. The
// game parameter fields are carried over verbatim; category and course ids
// are resolved against the cached reference tables and are null when the
// remote code has no local match.
type DailyRaceEvent struct {
	EventID    int64           `json:"event_id"`
	GameMode   json.RawMessage `json:"game_mode"`
	EventType  json.RawMessage `json:"event_type"`
	SportsMode json.RawMessage `json:"sports_mode"`
	BoardID    json.RawMessage `json:"board_id"`
	CategoryID *string         `json:"category_id"`
	CourseID   *string         `json:"course_id"`
}

// ProfileUser is the roster slice carried into the profiles output.
type ProfileUser struct {
	Nick       string     `json:"nick"`
	Controller Controller `json:"controller"`
}

// ProfileEntry joins a raw remote profile with its roster entry.
type ProfileEntry struct {
	Profile json.RawMessage `json:"profile"`
	User    ProfileUser     `json:"user"`
}

// JobRun is a single completed scheduler run, persisted for the admin surface.
type JobRun struct {
	ID         string    `json:"id" db:"id"`
	Name       string    `json:"name" db:"name"`
	StartedAt  time.Time `json:"started_at" db:"started_at"`
	EndedAt    time.Time `json:"ended_at" db:"ended_at"`
	DurationMS int64     `json:"duration_ms" db:"duration_ms"`
	Error      string    `json:"error,omitempty" db:"error"`
}

// JobInfo is the read-only snapshot of a job definition's run-state.
type JobInfo struct {
	Name         string     `json:"name"`
	Rule         string     `json:"rule"`
	Enabled      bool       `json:"enabled"`
	Running      bool       `json:"running"`
	Count        int        `json:"count"`
	LastEnded    *time.Time `json:"lastEnded,omitempty"`
	LastDuration int64      `json:"lastDuration"`
	MaxDuration  int64      `json:"maxDuration"`
	LastError    string     `json:"lastError,omitempty"`
	NextRun      *time.Time `json:"nextRun,omitempty"`
}
