package domain

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	ErrSessionNotFound     = errors.New("timer session not found")
	ErrForbidden           = errors.New("timer session belongs to another user")
	ErrSessionClosed       = errors.New("timer session already stopped")
	ErrTimerAlreadyRunning = errors.New("a timer is already running")
	ErrNoActiveTimer       = errors.New("no timer is running")
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ValidateStop checks a stop request against the session it closes.
// duration is in hours.
func ValidateStop(s *Session, end time.Time, duration float64) error {
	if end.IsZero() {
		return &ValidationError{Field: "endTime", Message: "endTime is required"}
	}
	if end.Before(s.StartTime) {
		return &ValidationError{Field: "endTime", Message: "endTime cannot be before startTime"}
	}
	if math.IsNaN(duration) || math.IsInf(duration, 0) || duration < 0 {
		return &ValidationError{Field: "duration", Message: "duration must be a non-negative number of hours"}
	}

	maxHours := (end.Sub(s.StartTime) + ClockSlack).Hours()
	if duration > maxHours {
		return &ValidationError{
			Field:   "duration",
			Message: fmt.Sprintf("duration %.4fh exceeds the elapsed time of the session", duration),
		}
	}
	return nil
}
