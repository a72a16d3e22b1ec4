package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"air_purifier/internal/models"
	"air_purifier/internal/repository"
)

// Filter errors. Both mean the caller asked for something the journal
// cannot contain.
var (
	ErrInvalidTimeRange = errors.New("invalid time range: from must not be after to")
	ErrUnknownEventType = errors.New("unknown event type")
)

// IsFilterError reports whether err was caused by a bad LogFilter.
func IsFilterError(err error) bool {
	return errors.Is(err, ErrInvalidTimeRange) || errors.Is(err, ErrUnknownEventType)
}

// EventLogService reads the transition journal.
type EventLogService struct {
	eventRepo repository.EventRepo
}

func NewEventLogService(eventRepo repository.EventRepo) *EventLogService {
	return &EventLogService{eventRepo: eventRepo}
}

// normalize returns f with UTC bounds and a canonical event type.
func (f LogFilter) normalize() (LogFilter, error) {
	out := LogFilter{From: f.From, To: f.To}
	if !out.From.IsZero() {
		out.From = out.From.UTC()
	}
	if !out.To.IsZero() {
		out.To = out.To.UTC()
	}
	if !out.From.IsZero() && !out.To.IsZero() && out.From.After(out.To) {
		return LogFilter{}, ErrInvalidTimeRange
	}

	if typ := strings.ToUpper(strings.TrimSpace(f.Type)); typ != "" {
		if !models.IsEventType(typ) {
			return LogFilter{}, fmt.Errorf("%w %q: want one of %s",
				ErrUnknownEventType, f.Type, strings.Join(models.EventTypes(), ", "))
		}
		out.Type = typ
	}
	return out, nil
}

// List returns journal entries matching f, oldest first. The repository is
// not queried when f is invalid.
func (s *EventLogService) List(ctx context.Context, f LogFilter) ([]models.PurifierEvent, error) {
	nf, err := f.normalize()
	if err != nil {
		return nil, err
	}
	return s.eventRepo.List(ctx, nf.From, nf.To, nf.Type)
}
