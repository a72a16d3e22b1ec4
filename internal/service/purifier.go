package service

import (
	"context"
	"time"

	"air_purifier/internal/logger"
	"air_purifier/internal/models"
	"air_purifier/internal/repository"

	"github.com/google/uuid"
)

type PurifierService struct {
	acc       *guardedAccessory
	eventRepo repository.EventRepo
	notifier  *Notifier
	log       *logger.Logger
}

func NewPurifierService(acc *guardedAccessory, eventRepo repository.EventRepo, notifier *Notifier, log *logger.Logger) *PurifierService {
	if log == nil {
		log = logger.Nop()
	}
	return &PurifierService{acc: acc, eventRepo: eventRepo, notifier: notifier, log: log}
}

func (s *PurifierService) Name() string              { return s.acc.app.Name() }
func (s *PurifierService) Identity() models.Identity { return s.acc.app.Identity() }

// Get reads one characteristic.
func (s *PurifierService) Get(ctx context.Context, name string) (any, error) {
	return s.acc.get(ctx, name)
}

// Set writes one characteristic, journals the transition and notifies
// listeners. A journal failure is logged; the write itself stands.
func (s *PurifierService) Set(ctx context.Context, name string, value any) error {
	res, err := s.acc.set(ctx, name, value)
	if err != nil {
		return err
	}
	if res.stateErr != nil {
		s.log.Warnw("purifier_snapshot_failed", "err", res.stateErr, "characteristic", name)
		s.journal(ctx, models.PurifierEvent{
			Type:        changeType(name),
			Description: "Air purifier " + name + " set",
			Metadata:    map[string]any{"value": value},
		})
		return nil
	}

	s.journal(ctx, changeEvent(name, res.state))
	s.notifier.publish(res.seq, res.state)
	return nil
}

// Identify acknowledges an identify request.
func (s *PurifierService) Identify(ctx context.Context) error {
	s.acc.identify()
	s.journal(ctx, models.PurifierEvent{
		Type:        models.EventIdentify,
		Description: "Identify requested",
		Metadata:    map[string]any{"name": s.acc.app.Name()},
	})
	return nil
}

func (s *PurifierService) journal(ctx context.Context, e models.PurifierEvent) {
	if e.EventID == "" {
		e.EventID = uuid.NewString()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}
	if id, ok := ControllerFromContext(ctx); ok {
		if meta, isMap := e.Metadata.(map[string]any); isMap {
			meta["controller_id"] = id
		}
	}
	if err := s.eventRepo.Append(ctx, e); err != nil {
		s.log.Errorw("purifier_journal_failed", "err", err, "type", e.Type)
	}
}

func changeType(name string) string {
	if name == models.CharActive {
		return models.EventActiveChange
	}
	return models.EventModeChange
}

// changeEvent describes a committed write of name.
func changeEvent(name string, st models.PurifierState) models.PurifierEvent {
	if changeType(name) == models.EventActiveChange {
		status := "INACTIVE"
		if st.Active {
			status = "ACTIVE"
		}
		return models.PurifierEvent{
			Type:        models.EventActiveChange,
			Description: "Air purifier status set to " + status,
			Metadata:    map[string]any{"active": st.Active},
		}
	}
	return models.PurifierEvent{
		Type:        models.EventModeChange,
		Description: "Air purifier mode set to " + st.TargetStateName,
		Metadata: map[string]any{
			"mode":         st.Mode,
			"target_state": st.TargetStateName,
			"via":          name,
		},
	}
}
