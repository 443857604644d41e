package calendar

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"kalenderium/internal/pagination"
	"kalenderium/internal/repo"
	"kalenderium/internal/validator"
)

var ErrRecordNotFound = repo.ErrRecordNotFound

type Event = repo.Event

// ValidationError carries the field errors of a rejected event.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	v := validator.Validator{Errors: e.Fields}
	return "validation failed: " + v.First("title", "color", "body", "start", "end")
}

type EventRepository interface {
	Create(ctx context.Context, e *repo.Event) error
	ListByUser(ctx context.Context, userID int64, p pagination.Pager) ([]repo.Event, int, error)
	Delete(ctx context.Context, id string, userID int64) error
	Ping(ctx context.Context) error
}

type Service struct {
	events EventRepository
	log    *zap.Logger
}

func NewService(events EventRepository, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{events: events, log: log}
}

func ValidateEvent(v *validator.Validator, e Event) {
	v.Check(strings.TrimSpace(e.Name) != "", "title", "must be provided")
	v.Check(len(e.Name) <= 80, "title", "must not be more than 80 bytes long")

	v.Check(e.Color != "", "color", "must be provided")
	v.Check(validator.Matches(e.Color, validator.ColorRX), "color", "must be a #rrggbb value")

	v.Check(len(e.Details) <= 1100, "body", "must not be more than 1100 bytes long")

	v.Check(!e.Start.IsZero(), "start", "must be provided")
	v.Check(!e.End.Before(e.Start), "end", "must not be before start")
}

// CreateEvent stores the event for its owner and returns the new id.
func (s *Service) CreateEvent(ctx context.Context, e Event) (string, error) {
	v := validator.New()
	ValidateEvent(v, e)
	if !v.Valid() {
		return "", &ValidationError{Fields: v.Errors}
	}
	if e.UserID <= 0 {
		return "", errors.New("event has no owner")
	}

	e.ID = uuid.NewString()
	if err := s.events.Create(ctx, &e); err != nil {
		return "", err
	}
	s.log.Debug("event created", zap.String("event_id", e.ID), zap.Int64("user_id", e.UserID))
	return e.ID, nil
}

func (s *Service) ListEvents(ctx context.Context, userID int64, p pagination.Pager) ([]Event, pagination.Pager, error) {
	list, total, err := s.events.ListByUser(ctx, userID, p)
	if err != nil {
		return nil, p, err
	}
	return list, p.WithTotal(total), nil
}

// DeleteEvent removes one of the user's events. Ids that are not UUIDs
// cannot exist and report ErrRecordNotFound.
func (s *Service) DeleteEvent(ctx context.Context, id string, userID int64) error {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return ErrRecordNotFound
	}
	return s.events.Delete(ctx, parsed.String(), userID)
}

func (s *Service) ServiceStatus(ctx context.Context) error {
	return s.events.Ping(ctx)
}

const (
	exportSheet    = "Events"
	exportPageSize = 500
)

var exportHeader = []interface{}{"ID", "Title", "Details", "Start", "End", "Color"}

// Export writes every event of the user to an xlsx workbook.
func (s *Service) Export(ctx context.Context, userID int64) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), exportSheet); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		return nil, err
	}

	row := 2
	p := pagination.NewPager(0, 1, exportPageSize)
	for {
		list, total, err := s.events.ListByUser(ctx, userID, p)
		if err != nil {
			return nil, err
		}
		for _, e := range list {
			values := []interface{}{
				e.ID,
				e.Name,
				e.Details,
				e.Start.Format(time.RFC3339),
				e.End.Format(time.RFC3339),
				e.Color,
			}
			if err := f.SetSheetRow(exportSheet, fmt.Sprintf("A%d", row), &values); err != nil {
				return nil, err
			}
			row++
		}
		p = p.WithTotal(total)
		if len(list) == 0 || !p.HasNext() {
			break
		}
		p = pagination.NewPager(total, p.CurrentPage+1, exportPageSize)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, errors.Wrap(err, "write workbook")
	}
	return buf.Bytes(), nil
}
