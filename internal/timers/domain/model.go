package domain

import "time"

// ClockSlack is how far a reported duration may exceed the server-measured span.
const ClockSlack = 5 * time.Minute

// Session is one start/stop interval of work on a project. EndTime is nil while running.
type Session struct {
	ID        string     `json:"id"`
	OwnerID   string     `json:"ownerId"`
	ProjectID string     `json:"projectId"`
	StartTime time.Time  `json:"startTime"`
	EndTime   *time.Time `json:"endTime"`
	Duration  float64    `json:"duration"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

func (s *Session) Running() bool {
	return s.EndTime == nil
}

// StopResult is what a stopped timer reports back to the client.
type StopResult struct {
	ID                string    `json:"id"`
	EndTime           time.Time `json:"endTime"`
	Duration          float64   `json:"duration"`
	ProjectTotalHours float64   `json:"projectTotalHours"`
}

// ActiveTimer identifies the caller's running session.
type ActiveTimer struct {
	SessionID string    `json:"sessionId"`
	ProjectID string    `json:"projectId"`
	StartTime time.Time `json:"startTime"`
}

// MarkerPending is the active-timer marker value between reservation and session creation.
const MarkerPending = "pending"
