package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sakura-events/sakura-backend/internal/auth"
	"github.com/sakura-events/sakura-backend/internal/logging"
	projectdomain "github.com/sakura-events/sakura-backend/internal/projects/domain"
	timerdomain "github.com/sakura-events/sakura-backend/internal/timers/domain"
)

// Success writes {success:true, data}.
func Success(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

// Fail writes {success:false, error} and stops the handler chain.
func Fail(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "error": message})
}

// BadRequest is used for bodies that do not decode.
func BadRequest(c *gin.Context) {
	Fail(c, http.StatusBadRequest, "Invalid request body")
}

// Error maps err onto a status code and writes the failure envelope.
func Error(c *gin.Context, err error) {
	status, message := Classify(err)
	if status >= http.StatusInternalServerError {
		logging.NewLogger(c.Request.Context()).LogError(c.FullPath(), err)
	}
	Fail(c, status, message)
}

var sentinels = []struct {
	err    error
	status int
}{
	{auth.ErrUnauthenticated, http.StatusUnauthorized},
	{projectdomain.ErrForbidden, http.StatusForbidden},
	{timerdomain.ErrForbidden, http.StatusForbidden},
	{projectdomain.ErrNotFound, http.StatusNotFound},
	{timerdomain.ErrSessionNotFound, http.StatusNotFound},
	{timerdomain.ErrSessionClosed, http.StatusConflict},
	{timerdomain.ErrTimerAlreadyRunning, http.StatusConflict},
	{timerdomain.ErrNoActiveTimer, http.StatusNotFound},
}

// Classify returns the status and client message for err.
// Anything unrecognised is a store failure and keeps its own message.
func Classify(err error) (int, string) {
	var pv *projectdomain.ValidationError
	if errors.As(err, &pv) {
		return http.StatusBadRequest, pv.Message
	}
	var tv *timerdomain.ValidationError
	if errors.As(err, &tv) {
		return http.StatusBadRequest, tv.Message
	}

	for _, s := range sentinels {
		if errors.Is(err, s.err) {
			return s.status, s.err.Error()
		}
	}
	return http.StatusInternalServerError, err.Error()
}

// Caller returns the identity set by the identity middleware, writing 401 when missing.
func Caller(c *gin.Context) (auth.Identity, bool) {
	id, ok := auth.IdentityFrom(c)
	if !ok {
		Error(c, auth.ErrUnauthenticated)
	}
	return id, ok
}
