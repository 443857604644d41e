package handlers

import (
	"net/http"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"kalenderium/internal/account"
	"kalenderium/internal/calendar"
	"kalenderium/internal/pagination"
	"kalenderium/internal/policy"
	"kalenderium/internal/route"
	"kalenderium/internal/view"
)

var pageTitles = map[string]string{
	"home":     "Home",
	"calendar": "Calendar",
	"signup":   "Sign up",
	"login":    "Log in",
}

func pageTitle(entry route.Entry) string {
	if title, ok := pageTitles[entry.Name]; ok {
		return title
	}
	return entry.Name
}

type calendarPage struct {
	Events []calendar.Event
	Pager  pagination.Pager
}

// Page returns the handler for a route entry. It runs after the entry's
// guard has proceeded.
func (h *Handler) Page(entry route.Entry) http.HandlerFunc {
	if entry.Name == "calendar" {
		return h.showCalendar(entry)
	}
	return func(w http.ResponseWriter, r *http.Request) {
		h.Views.Render(w, r, entry.View, view.PageData{Title: pageTitle(entry), Route: entry.Name})
	}
}

func (h *Handler) showCalendar(entry route.Entry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := h.sessionUser(w, r)
		if !ok {
			return
		}

		events, pager, err := h.Calendar.ListEvents(r.Context(), userID, pagination.Request(r))
		if err != nil {
			h.Log.Error("failed to list events", zap.Int64("user_id", userID), zap.Error(err))
			h.Views.RenderStatus(w, r, http.StatusInternalServerError, entry.View, view.PageData{
				Title: pageTitle(entry),
				Route: entry.Name,
				Error: "Your events could not be loaded. Please try again.",
			})
			return
		}

		h.Views.Render(w, r, entry.View, view.PageData{
			Title: pageTitle(entry),
			Route: entry.Name,
			Data:  calendarPage{Events: events, Pager: pager},
		})
	}
}

// sessionUser resolves the session token to its user. A token the account
// service no longer knows is dropped from the cookie and the browser is sent
// to the login page.
func (h *Handler) sessionUser(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, err := h.Accounts.Authenticate(r.Context(), h.Sessions.Token(r))
	if err == nil {
		return userID, true
	}
	if errors.Is(err, account.ErrInvalidToken) {
		if err := h.Sessions.ClearToken(w, r); err != nil {
			h.Log.Warn("failed to clear session token", zap.Error(err))
		}
		redirectWithError(w, r, policy.LoginPath, "Your session has expired. Please log in again.")
		return 0, false
	}
	h.Log.Error("failed to authenticate session", zap.Error(err))
	http.Error(w, "the server encountered a problem and could not process your request", http.StatusInternalServerError)
	return 0, false
}
