package handlers

import (
	"net/http"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"kalenderium/internal/account"
	"kalenderium/internal/http/middleware"
	"kalenderium/internal/policy"
	"kalenderium/internal/token"
	"kalenderium/internal/view"
)

type credentialsForm struct {
	Email string
}

func (h *Handler) PostLogin(w http.ResponseWriter, r *http.Request) {
	email := r.FormValue("email")
	_, tok, err := h.Accounts.Login(r.Context(), email, r.FormValue("password"))
	if err != nil {
		h.renderCredentialsError(w, r, "login", email, err)
		return
	}
	h.startSession(w, r, tok)
}

func (h *Handler) PostSignup(w http.ResponseWriter, r *http.Request) {
	email := r.FormValue("email")
	_, tok, err := h.Accounts.SignUp(r.Context(), email, r.FormValue("password"))
	if err != nil {
		h.renderCredentialsError(w, r, "signup", email, err)
		return
	}
	h.startSession(w, r, tok)
}

func (h *Handler) PostLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.Accounts.Logout(r.Context(), h.Sessions.Token(r)); err != nil {
		h.Log.Warn("failed to revoke token", zap.Error(err))
	}
	if err := h.Sessions.ClearToken(w, r); err != nil {
		h.Log.Error("failed to clear session token", zap.Error(err))
		http.Error(w, "the server encountered a problem and could not process your request", http.StatusInternalServerError)
		return
	}
	redirectWithSuccess(w, r, policy.LoginPath, "You have been logged out.")
}

func (h *Handler) startSession(w http.ResponseWriter, r *http.Request, tok *token.Token) {
	if err := h.Sessions.SetToken(w, r, tok.Plaintext); err != nil {
		h.Log.Error("failed to save session token", zap.Error(err))
		http.Error(w, "the server encountered a problem and could not process your request", http.StatusInternalServerError)
		return
	}
	middleware.Redirect(w, r, policy.DashboardPath)
}

func (h *Handler) renderCredentialsError(w http.ResponseWriter, r *http.Request, routeName, email string, err error) {
	status := http.StatusInternalServerError
	message := "Something went wrong. Please try again."

	var verr *account.ValidationError
	switch {
	case errors.As(err, &verr):
		status = http.StatusUnprocessableEntity
		message = verr.Error()
	case errors.Is(err, account.ErrInvalidCredentials):
		status = http.StatusUnauthorized
		message = "Invalid email or password."
	case errors.Is(err, account.ErrDuplicateEmail):
		status = http.StatusConflict
		message = "An account with this email already exists."
	default:
		h.Log.Error("credentials request failed", zap.String("route", routeName), zap.Error(err))
	}

	entry, _ := h.Routes.Lookup(routeName)
	h.Views.RenderStatus(w, r, status, entry.View, view.PageData{
		Title: pageTitle(entry),
		Route: entry.Name,
		Error: message,
		Data:  credentialsForm{Email: email},
	})
}
