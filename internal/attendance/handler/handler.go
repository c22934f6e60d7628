package handler

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"presence/internal/attendance/export"
	"presence/internal/attendance/models"
	id "presence/pkg/domain"
	dErrors "presence/pkg/domain-errors"
	"presence/pkg/platform/httputil"
	pstrings "presence/pkg/platform/strings"
	"presence/pkg/requestcontext"
)

// Service defines the attendance operations the handler serves.
type Service interface {
	Confirm(ctx context.Context, actor id.Initials, payloads []models.SavePayload) ([]models.AttendanceRecord, error)
	Snapshot(ctx context.Context, weekStarts []string) (models.Snapshot, error)
	Board(ctx context.Context, week string) (models.Board, error)
	Today(ctx context.Context) (models.Today, error)
}

// LeaveRefresher rewarms the leave cache on demand.
type LeaveRefresher interface {
	RunOnce(ctx context.Context) error
}

// Handler serves the attendance API.
type Handler struct {
	logger    *slog.Logger
	service   Service
	refresher LeaveRefresher
}

// New creates a new attendance Handler. refresher may be nil when no leave
// cache is configured.
func New(service Service, refresher LeaveRefresher, logger *slog.Logger) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		refresher: refresher,
	}
}

// Register registers the authenticated attendance routes.
func (h *Handler) Register(r chi.Router) {
	r.Get("/attendance/snapshot", h.handleSnapshot)
	r.Post("/attendance", h.handleConfirm)
	r.Get("/attendance/board", h.handleBoard)
	r.Get("/attendance/board.xlsx", h.handleBoardExport)
	r.Get("/attendance/today", h.handleToday)
}

// RegisterAdmin registers the admin routes.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Post("/leave/refresh", h.handleLeaveRefresh)
}

func (h *Handler) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	weeks := pstrings.SplitList(r.URL.Query().Get("weeks"))
	if err := httputil.Var(ctx, "weeks", weeks, "max=8,dive,datetime=2006-01-02"); err != nil {
		h.logger.WarnContext(ctx, "invalid snapshot query",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	snap, err := h.service.Snapshot(ctx, weeks)
	if err != nil {
		h.writeServiceError(ctx, w, "failed to load snapshot", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, snap)
}

func (h *Handler) handleConfirm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	actor := requestcontext.Initials(ctx)
	if actor.IsNil() {
		h.logger.ErrorContext(ctx, "initials missing from context despite auth middleware",
			"request_id", requestID,
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}

	req, ok := httputil.DecodeAndPrepare[SaveRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	records, err := h.service.Confirm(ctx, actor, req.Payloads)
	if err != nil {
		h.writeServiceError(ctx, w, "failed to save attendance", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, records)
}

func (h *Handler) handleBoard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	board, err := h.service.Board(ctx, r.URL.Query().Get("week"))
	if err != nil {
		h.writeServiceError(ctx, w, "failed to resolve board", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, board)
}

func (h *Handler) handleBoardExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	board, err := h.service.Board(ctx, r.URL.Query().Get("week"))
	if err != nil {
		h.writeServiceError(ctx, w, "failed to resolve board", err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteBoard(&buf, board); err != nil {
		h.writeServiceError(ctx, w, "failed to export board", err)
		return
	}
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename(board)+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (h *Handler) handleToday(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	today, err := h.service.Today(ctx)
	if err != nil {
		h.writeServiceError(ctx, w, "failed to resolve today", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, today)
}

func (h *Handler) handleLeaveRefresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.refresher == nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "leave cache is not configured"))
		return
	}
	if err := h.refresher.RunOnce(ctx); err != nil {
		h.writeServiceError(ctx, w, "failed to refresh leave", dErrors.Wrap(err, dErrors.CodeUnavailable, "leave source unavailable"))
		return
	}
	h.logger.InfoContext(ctx, "leave cache refreshed",
		"request_id", requestcontext.RequestID(ctx),
	)
	w.WriteHeader(http.StatusNoContent)
}

// writeServiceError logs client errors as warnings and everything else as
// errors, then writes the mapped response.
func (h *Handler) writeServiceError(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	requestID := requestcontext.RequestID(ctx)
	switch dErrors.ToHTTPStatus(dErrors.CodeOf(err)) / 100 {
	case 4:
		h.logger.WarnContext(ctx, msg,
			"request_id", requestID,
			"error", err,
		)
	default:
		h.logger.ErrorContext(ctx, msg,
			"request_id", requestID,
			"error", err,
		)
	}
	httputil.WriteError(w, err)
}
