package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"presence/internal/attendance/models"
	id "presence/pkg/domain"
	dErrors "presence/pkg/domain-errors"
	"presence/pkg/platform/circuit"
)

func quiet() Option {
	return WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestSubmit(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/attendance", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		var payloads []models.SavePayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payloads))
		out := make([]models.AttendanceRecord, 0, len(payloads))
		for _, p := range payloads {
			out = append(out, models.AttendanceRecord{ID: id.NewRecordID(), Initials: "AB", WeekStart: p.WeekStart, AttendanceDays: p.AttendanceDays})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(out)
	}))
	defer srv.Close()

	c := New(srv.URL+"/", WithToken("tok"), quiet())
	got, err := c.Submit(context.Background(), []models.SavePayload{
		{PersonIdentifier: "AB", WeekStart: "2024-06-03", AttendanceDays: "Monday"},
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Monday", got[0].AttendanceDays)
	assert.False(t, got[0].ID.IsNil())
	assert.EqualValues(t, 1, calls.Load())
}

func TestNon2xxIsTotalFailureWithoutRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":"forbidden","error_description":"cannot save attendance for another person"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, quiet()).Submit(context.Background(), []models.SavePayload{{PersonIdentifier: "CD", WeekStart: "2024-06-03"}})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
	assert.Contains(t, err.Error(), "another person")
	assert.EqualValues(t, 1, calls.Load())
}

func TestErrorWithoutBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := New(srv.URL, quiet()).Today(context.Background())
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
}

func TestBreakerShortCircuits(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	now := time.Date(2024, 6, 4, 9, 0, 0, 0, time.UTC)
	breaker := circuit.New("test",
		circuit.WithFailureThreshold(2),
		circuit.WithSuccessThreshold(1),
		circuit.WithCooldown(time.Minute),
		circuit.WithClock(func() time.Time { return now }),
	)
	c := New(srv.URL, WithBreaker(breaker), quiet())

	for i := 0; i < 2; i++ {
		_, err := c.Snapshot(context.Background(), nil)
		require.Error(t, err)
	}
	assert.True(t, breaker.IsOpen())

	_, err := c.Snapshot(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnavailable))
	assert.EqualValues(t, 2, calls.Load(), "open circuit does not call the server")

	now = now.Add(time.Minute)
	_, _ = c.Snapshot(context.Background(), nil)
	assert.EqualValues(t, 3, calls.Load(), "probe after cooldown")
}

func TestUnreachableServer(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(url, quiet()).Board(context.Background(), "next")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnavailable))
}

func TestSnapshotAndBoardQueries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/attendance/snapshot":
			assert.Equal(t, "2024-06-03,2024-06-10", r.URL.Query().Get("weeks"))
			_ = json.NewEncoder(w).Encode(models.Snapshot{Version: 7})
		case "/api/attendance/board":
			assert.Equal(t, "next", r.URL.Query().Get("week"))
			_ = json.NewEncoder(w).Encode(models.Board{WeekStart: "2024-06-10"})
		case "/api/attendance/board.xlsx":
			_, _ = w.Write([]byte("PK\x03\x04"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := New(srv.URL, quiet())
	snap, err := c.Snapshot(context.Background(), []string{"2024-06-03", "2024-06-10"})
	require.NoError(t, err)
	assert.EqualValues(t, 7, snap.Version)

	board, err := c.Board(context.Background(), "next")
	require.NoError(t, err)
	assert.Equal(t, "2024-06-10", board.WeekStart)

	var buf bytes.Buffer
	require.NoError(t, c.ExportBoard(context.Background(), "", &buf))
	assert.Equal(t, "PK\x03\x04", buf.String())
}
