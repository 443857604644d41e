package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"kalenderium/internal/account"
	"kalenderium/internal/calendar"
	"kalenderium/internal/http/errs"
	"kalenderium/internal/http/middleware"
	"kalenderium/internal/pagination"
	"kalenderium/internal/token"
)

const maxJSONBytes = 1 << 20

type envelope map[string]interface{}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	UserID int64        `json:"user_id"`
	Token  *token.Token `json:"authentication_token"`
}

type eventJSON struct {
	ID      string    `json:"id,omitempty"`
	Name    string    `json:"name"`
	Details string    `json:"details,omitempty"`
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
	Color   string    `json:"color"`
}

type addEventRequest struct {
	Event eventJSON `json:"event"`
}

func toEventJSON(e calendar.Event) eventJSON {
	return eventJSON{ID: e.ID, Name: e.Name, Details: e.Details, Start: e.Start, End: e.End, Color: e.Color}
}

func (h *Handler) APISignUp(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := readJSON(w, r, &req); err != nil {
		errs.BadRequestResponse(w, err)
		return
	}
	id, tok, err := h.Accounts.SignUp(r.Context(), req.Email, req.Password)
	if err != nil {
		h.accountErrorResponse(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, sessionResponse{UserID: id, Token: tok})
}

func (h *Handler) APILogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := readJSON(w, r, &req); err != nil {
		errs.BadRequestResponse(w, err)
		return
	}
	id, tok, err := h.Accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.accountErrorResponse(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, sessionResponse{UserID: id, Token: tok})
}

// APILogout revokes the bearer token of the request.
func (h *Handler) APILogout(w http.ResponseWriter, r *http.Request) {
	tok, _ := middleware.BearerToken(r)
	if err := h.Accounts.Logout(r.Context(), tok); err != nil {
		h.Log.Error("failed to revoke token", zap.Error(err))
		errs.ServerErrorResponse(w)
		return
	}
	h.writeJSON(w, http.StatusOK, envelope{"message": "logged out"})
}

func (h *Handler) APIListEvents(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())
	events, pager, err := h.Calendar.ListEvents(r.Context(), userID, pagination.Request(r))
	if err != nil {
		h.Log.Error("failed to list events", zap.Int64("user_id", userID), zap.Error(err))
		errs.ServerErrorResponse(w)
		return
	}

	out := make([]eventJSON, 0, len(events))
	for _, e := range events {
		out = append(out, toEventJSON(e))
	}
	h.writeJSON(w, http.StatusOK, envelope{"events": out, "metadata": pager})
}

func (h *Handler) APIAddEvent(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())

	var req addEventRequest
	if err := readJSON(w, r, &req); err != nil {
		errs.BadRequestResponse(w, err)
		return
	}

	id, err := h.Calendar.CreateEvent(r.Context(), calendar.Event{
		UserID:  userID,
		Name:    req.Event.Name,
		Details: req.Event.Details,
		Start:   req.Event.Start,
		End:     req.Event.End,
		Color:   req.Event.Color,
	})
	if err != nil {
		var verr *calendar.ValidationError
		if errors.As(err, &verr) {
			errs.FailedValidationResponse(w, verr.Fields)
			return
		}
		h.Log.Error("failed to create event", zap.Int64("user_id", userID), zap.Error(err))
		errs.ServerErrorResponse(w)
		return
	}

	w.Header().Set("Location", "/v1/calendar/"+id)
	h.writeJSON(w, http.StatusCreated, envelope{"event_id": id})
}

func (h *Handler) APIDeleteEvent(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())

	err := h.Calendar.DeleteEvent(r.Context(), chi.URLParam(r, "id"), userID)
	switch {
	case err == nil:
		h.writeJSON(w, http.StatusOK, envelope{"message": "event successfully deleted"})
	case errors.Is(err, calendar.ErrRecordNotFound):
		errs.NotFoundResponse(w, r)
	default:
		h.Log.Error("failed to delete event", zap.Int64("user_id", userID), zap.Error(err))
		errs.ServerErrorResponse(w)
	}
}

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (h *Handler) APIExportEvents(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())

	data, err := h.Calendar.Export(r.Context(), userID)
	if err != nil {
		h.Log.Error("failed to export events", zap.Int64("user_id", userID), zap.Error(err))
		errs.ServerErrorResponse(w)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="events.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// Healthcheck reports whether the token store and the database answer.
func (h *Handler) Healthcheck(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{"accounts": "available", "calendar": "available"}
	status := http.StatusOK
	if err := h.Accounts.ServiceStatus(r.Context()); err != nil {
		checks["accounts"] = "unavailable"
		status = http.StatusServiceUnavailable
	}
	if err := h.Calendar.ServiceStatus(r.Context()); err != nil {
		checks["calendar"] = "unavailable"
		status = http.StatusServiceUnavailable
	}

	overall := "available"
	if status != http.StatusOK {
		overall = "degraded"
	}
	h.writeJSON(w, status, envelope{"status": overall, "version": h.Version, "checks": checks})
}

func (h *Handler) accountErrorResponse(w http.ResponseWriter, err error) {
	var verr *account.ValidationError
	switch {
	case errors.As(err, &verr):
		errs.FailedValidationResponse(w, verr.Fields)
	case errors.Is(err, account.ErrInvalidCredentials):
		errs.InvalidCredentialsResponse(w)
	case errors.Is(err, account.ErrDuplicateEmail):
		errs.FailedValidationResponse(w, map[string]string{"email": "a user with this email address already exists"})
	default:
		h.Log.Error("account request failed", zap.Error(err))
		errs.ServerErrorResponse(w)
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	js, err := json.Marshal(data)
	if err != nil {
		h.Log.Error("failed to encode response", zap.Error(err))
		errs.ServerErrorResponse(w)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(js, '\n'))
}

// readJSON decodes exactly one JSON value with no unknown fields.
func readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &syntaxErr):
			return errors.Errorf("body contains badly-formed JSON (at character %d)", syntaxErr.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("body contains badly-formed JSON")
		case errors.As(err, &typeErr):
			return errors.Errorf("body contains incorrect JSON type for field %q", typeErr.Field)
		case errors.Is(err, io.EOF):
			return errors.New("body must not be empty")
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			return errors.Errorf("body contains unknown key %s", strings.TrimPrefix(err.Error(), "json: unknown field "))
		case errors.As(err, &maxErr):
			return errors.Errorf("body must not be larger than %d bytes", maxErr.Limit)
		default:
			return err
		}
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("body must only contain a single JSON value")
	}
	return nil
}
