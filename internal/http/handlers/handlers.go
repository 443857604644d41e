package handlers

import (
	"context"

	"go.uber.org/zap"

	"kalenderium/internal/auth"
	"kalenderium/internal/calendar"
	"kalenderium/internal/pagination"
	"kalenderium/internal/route"
	"kalenderium/internal/token"
	"kalenderium/internal/view"
)

type AccountService interface {
	SignUp(ctx context.Context, email, password string) (int64, *token.Token, error)
	Login(ctx context.Context, email, password string) (int64, *token.Token, error)
	Logout(ctx context.Context, plaintext string) error
	Authenticate(ctx context.Context, plaintext string) (int64, error)
	ServiceStatus(ctx context.Context) error
}

type CalendarService interface {
	CreateEvent(ctx context.Context, e calendar.Event) (string, error)
	ListEvents(ctx context.Context, userID int64, p pagination.Pager) ([]calendar.Event, pagination.Pager, error)
	DeleteEvent(ctx context.Context, id string, userID int64) error
	Export(ctx context.Context, userID int64) ([]byte, error)
	ServiceStatus(ctx context.Context) error
}

// Handler serves the pages and the JSON API.
type Handler struct {
	Accounts AccountService
	Calendar CalendarService
	Sessions *auth.Store
	Views    *view.Renderer
	Routes   *route.Table
	Log      *zap.Logger
	Version  string
}
