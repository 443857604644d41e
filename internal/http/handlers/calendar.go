package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"kalenderium/internal/calendar"
	"kalenderium/internal/policy"
)

func (h *Handler) PostCreateEvent(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.sessionUser(w, r)
	if !ok {
		return
	}

	start, err := parseDateTime(r.FormValue("start"))
	if err != nil {
		redirectWithError(w, r, policy.DashboardPath, "Start: "+err.Error())
		return
	}
	end, err := parseDateTime(r.FormValue("end"))
	if err != nil {
		redirectWithError(w, r, policy.DashboardPath, "End: "+err.Error())
		return
	}

	_, err = h.Calendar.CreateEvent(r.Context(), calendar.Event{
		UserID:  userID,
		Name:    r.FormValue("name"),
		Details: r.FormValue("details"),
		Start:   start,
		End:     end,
		Color:   r.FormValue("color"),
	})
	if err != nil {
		var verr *calendar.ValidationError
		if errors.As(err, &verr) {
			redirectWithError(w, r, policy.DashboardPath, verr.Error())
			return
		}
		h.Log.Error("failed to create event", zap.Int64("user_id", userID), zap.Error(err))
		redirectWithError(w, r, policy.DashboardPath, "The event could not be saved.")
		return
	}
	redirectWithSuccess(w, r, policy.DashboardPath, "Event added.")
}

func (h *Handler) PostDeleteEvent(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.sessionUser(w, r)
	if !ok {
		return
	}

	err := h.Calendar.DeleteEvent(r.Context(), chi.URLParam(r, "id"), userID)
	switch {
	case err == nil:
		redirectWithSuccess(w, r, policy.DashboardPath, "Event deleted.")
	case errors.Is(err, calendar.ErrRecordNotFound):
		redirectWithError(w, r, policy.DashboardPath, "That event does not exist.")
	default:
		h.Log.Error("failed to delete event", zap.Int64("user_id", userID), zap.Error(err))
		redirectWithError(w, r, policy.DashboardPath, "The event could not be deleted.")
	}
}
