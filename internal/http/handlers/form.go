package handlers

import (
	"strings"
	"time"

	"github.com/pkg/errors"
)

const dateTimeLocal = "2006-01-02T15:04"

// parseDateTime reads an <input type="datetime-local"> value.
func parseDateTime(value string) (time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return time.Time{}, errors.New("date and time are required")
	}
	t, err := time.ParseInLocation(dateTimeLocal, value, time.Local)
	if err != nil {
		return time.Time{}, errors.New("date and time must look like 2006-01-02T15:04")
	}
	return t, nil
}
