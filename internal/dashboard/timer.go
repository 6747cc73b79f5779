package dashboard

import (
	"context"
	"errors"
	"net/http"
	"time"

	timerdomain "github.com/sakura-events/sakura-backend/internal/timers/domain"
)

// TimerAPI is the part of Client that starts and stops sessions.
type TimerAPI interface {
	StartTimer(ctx context.Context, projectID string) (*timerdomain.Session, error)
	StopTimer(ctx context.Context, in StopRequest) (*timerdomain.StopResult, error)
}

// StartTimer opens a session and remembers it locally. The stored start is
// the server's timestamp so both sides measure the same span.
func StartTimer(ctx context.Context, api TimerAPI, store *TimerStore, userID, projectID string) (*RunningTimer, error) {
	s, err := api.StartTimer(ctx, projectID)
	if err != nil {
		return nil, err
	}

	rt := RunningTimer{
		UserID:         userID,
		ProjectID:      s.ProjectID,
		SessionID:      s.ID,
		StartTimestamp: s.StartTime,
	}
	if err := store.Save(rt); err != nil {
		return &rt, err
	}
	return &rt, nil
}

// StopTimer closes rt at end with the elapsed hours as its duration. The local
// record is dropped once the server no longer has the session open.
func StopTimer(ctx context.Context, api TimerAPI, store *TimerStore, rt RunningTimer, end time.Time) (*timerdomain.StopResult, error) {
	res, err := api.StopTimer(ctx, StopRequest{
		ID:       rt.SessionID,
		EndTime:  end.UTC(),
		Duration: rt.Elapsed(end).Hours(),
	})

	if err == nil || sessionGone(err) {
		if clearErr := store.Clear(); clearErr != nil && err == nil {
			return res, clearErr
		}
	}
	return res, err
}

// sessionGone reports whether the server no longer has the session open.
func sessionGone(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && (apiErr.Status == http.StatusConflict || apiErr.Status == http.StatusNotFound)
}
