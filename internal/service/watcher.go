package service

import (
	"context"
	"time"

	"air_purifier/internal/logger"
	"air_purifier/internal/models"
	"air_purifier/internal/repository"

	"github.com/google/uuid"
)

// WatcherService polls the derived state and publishes it when it changes.
// With the placeholder sensor currentState never moves, so after the first
// tick only writes made outside the service layer would show up here.
type WatcherService struct {
	acc       *guardedAccessory
	eventRepo repository.EventRepo
	notifier  *Notifier
	log       *logger.Logger
}

func NewWatcherService(acc *guardedAccessory, eventRepo repository.EventRepo, notifier *Notifier, log *logger.Logger) *WatcherService {
	if log == nil {
		log = logger.Nop()
	}
	return &WatcherService{acc: acc, eventRepo: eventRepo, notifier: notifier, log: log}
}

// Subscribe registers a listener for published snapshots, both polled
// ones and those published by committed writes.
func (s *WatcherService) Subscribe(l StateListener) (unsubscribe func()) {
	return s.notifier.Subscribe(l)
}

// Run ticks at the given interval until ctx is canceled.
func (s *WatcherService) Run(ctx context.Context, tick time.Duration) {
	s.poll(ctx, time.Now())

	t := time.NewTicker(tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			s.poll(ctx, now)
		}
	}
}

// poll takes one snapshot and publishes it if it differs from the last one.
// Returns true if listeners were notified.
func (s *WatcherService) poll(ctx context.Context, now time.Time) bool {
	seq, st, err := s.acc.snapshot(ctx)
	if err != nil {
		s.log.Warnw("purifier_poll_failed", "err", err)
		return false
	}

	prev, ok := s.notifier.Last()
	if ok && prev.SameCharacteristics(st) {
		return false
	}
	if !s.notifier.publish(seq, st) {
		return false
	}

	if ok && prev.CurrentState != st.CurrentState {
		e := models.PurifierEvent{
			EventID:     uuid.NewString(),
			OccurredAt:  now.UTC(),
			Type:        models.EventStateChange,
			Description: "Current state changed to " + st.CurrentStateName,
			Metadata: map[string]any{
				"from": prev.CurrentStateName,
				"to":   st.CurrentStateName,
			},
		}
		if err := s.eventRepo.Append(ctx, e); err != nil {
			s.log.Errorw("purifier_journal_failed", "err", err, "type", e.Type)
		}
	}
	return true
}
