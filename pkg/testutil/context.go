package testutil

import (
	"context"
	"net/http"
	"time"

	id "presence/pkg/domain"
	"presence/pkg/requestcontext"
)

// WithInitials simulates what the auth middleware does for an authenticated
// request. Unparsable initials are not added.
func WithInitials(req *http.Request, initials string) *http.Request {
	parsed, err := id.ParseInitials(initials)
	if err != nil {
		return req
	}
	return req.WithContext(requestcontext.WithInitials(req.Context(), parsed))
}

// WithRequestTime pins the request-scoped clock.
func WithRequestTime(req *http.Request, now time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), now))
}

// WithContextValue adds an arbitrary key-value pair to the request context.
func WithContextValue(req *http.Request, key, value any) *http.Request {
	ctx := context.WithValue(req.Context(), key, value)
	return req.WithContext(ctx)
}

// London returns the office time zone, failing loudly if tzdata is missing.
func London() *time.Location {
	loc, err := time.LoadLocation("Europe/London")
	if err != nil {
		panic(err)
	}
	return loc
}

// At builds a wall-clock time in the office zone.
func At(year int, month time.Month, day, hour, minute int) time.Time {
	return time.Date(year, month, day, hour, minute, 0, 0, London())
}
