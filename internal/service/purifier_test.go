package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"air_purifier/internal/appliance"
	"air_purifier/internal/models"
)

// recordingEventRepo captures appended events.
type recordingEventRepo struct {
	mu        sync.Mutex
	events    []models.PurifierEvent
	appendErr error
}

func (r *recordingEventRepo) Append(_ context.Context, e models.PurifierEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.appendErr != nil {
		return r.appendErr
	}
	r.events = append(r.events, e)
	return nil
}

func (r *recordingEventRepo) List(context.Context, time.Time, time.Time, string) ([]models.PurifierEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.PurifierEvent(nil), r.events...), nil
}

func (r *recordingEventRepo) appended() []models.PurifierEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.PurifierEvent(nil), r.events...)
}

func newTestAccessory(t *testing.T, opts ...appliance.Option) *guardedAccessory {
	t.Helper()
	app, err := appliance.New("Bedroom Purifier", opts...)
	if err != nil {
		t.Fatalf("appliance.New: %v", err)
	}
	return newGuardedAccessory(app)
}

func newTestPurifier(t *testing.T) (*PurifierService, *recordingEventRepo, *Notifier) {
	t.Helper()
	repo := &recordingEventRepo{}
	n := NewNotifier()
	return NewPurifierService(newTestAccessory(t), repo, n, nil), repo, n
}

func TestPurifierService_SetActive_JournalsAndNotifies(t *testing.T) {
	svc, repo, n := newTestPurifier(t)
	ctx := context.Background()

	var got []models.PurifierState
	n.Subscribe(func(st models.PurifierState) { got = append(got, st) })

	if err := svc.Set(ctx, models.CharActive, true); err != nil {
		t.Fatalf("Set: %v", err)
	}

	v, err := svc.Get(ctx, models.CharActive)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if v != true {
		t.Fatalf("expected active=true, got %v", v)
	}

	events := repo.appended()
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	e := events[0]
	if e.Type != models.EventActiveChange || e.EventID == "" || e.OccurredAt.IsZero() {
		t.Fatalf("unexpected event: %+v", e)
	}
	if e.Description != "Air purifier status set to ACTIVE" {
		t.Fatalf("unexpected description: %q", e.Description)
	}

	if len(got) != 1 || !got[0].Active {
		t.Fatalf("expected one notification with active=true, got %+v", got)
	}
}

func TestPurifierService_SetTargetState_JournalsModeChange(t *testing.T) {
	svc, repo, _ := newTestPurifier(t)
	ctx := context.Background()

	if err := svc.Set(ctx, models.CharTargetState, float64(0)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	mode, _ := svc.Get(ctx, models.CharMode)
	if mode != true {
		t.Fatalf("expected mode=true after MANUAL, got %v", mode)
	}

	events := repo.appended()
	if len(events) != 1 || events[0].Type != models.EventModeChange {
		t.Fatalf("expected one MODE_CHANGE event, got %+v", events)
	}
	meta, ok := events[0].Metadata.(map[string]any)
	if !ok {
		t.Fatalf("unexpected metadata type %T", events[0].Metadata)
	}
	if meta["target_state"] != "MANUAL" || meta["via"] != models.CharTargetState {
		t.Fatalf("unexpected metadata: %+v", meta)
	}
}

func TestPurifierService_SetErrors_NoJournalNoNotify(t *testing.T) {
	cases := []struct {
		name    string
		prop    string
		value   any
		wantErr func(error) bool
	}{
		{"invalid value", models.CharActive, "yes", appliance.IsInvalidValue},
		{"read only", models.CharCurrentState, 1, func(err error) bool { return errors.Is(err, appliance.ErrReadOnly) }},
		{"unknown", "speed", 3, func(err error) bool { return errors.Is(err, appliance.ErrUnknownProperty) }},
		{"target out of range", models.CharTargetState, 2, appliance.IsInvalidValue},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, repo, n := newTestPurifier(t)
			calls := 0
			n.Subscribe(func(models.PurifierState) { calls++ })

			err := svc.Set(context.Background(), tc.prop, tc.value)
			if err == nil || !tc.wantErr(err) {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(repo.appended()) != 0 {
				t.Fatalf("expected no journal entries")
			}
			if calls != 0 {
				t.Fatalf("expected no notifications, got %d", calls)
			}
		})
	}
}

func TestPurifierService_JournalFailureDoesNotFailSet(t *testing.T) {
	svc, repo, _ := newTestPurifier(t)
	repo.appendErr = errors.New("disk full")

	if err := svc.Set(context.Background(), models.CharMode, true); err != nil {
		t.Fatalf("Set should succeed despite journal failure, got %v", err)
	}
	v, _ := svc.Get(context.Background(), models.CharMode)
	if v != true {
		t.Fatalf("expected mode=true, got %v", v)
	}
}

func TestPurifierService_Identify(t *testing.T) {
	svc, repo, _ := newTestPurifier(t)

	if err := svc.Identify(context.Background()); err != nil {
		t.Fatalf("Identify: %v", err)
	}
	events := repo.appended()
	if len(events) != 1 || events[0].Type != models.EventIdentify {
		t.Fatalf("expected IDENTIFY event, got %+v", events)
	}

	// identify touches no characteristic
	active, _ := svc.Get(context.Background(), models.CharActive)
	if active != false {
		t.Fatalf("identify changed active: %v", active)
	}
}

func TestPurifierService_IdentityAndName(t *testing.T) {
	svc, _, _ := newTestPurifier(t)

	if svc.Name() != "Bedroom Purifier" {
		t.Fatalf("unexpected name %q", svc.Name())
	}
	id := svc.Identity()
	if id.Manufacturer != appliance.Manufacturer || id.Model != appliance.Model {
		t.Fatalf("unexpected identity %+v", id)
	}
}

func TestPurifierService_ConcurrentSets(t *testing.T) {
	svc, repo, _ := newTestPurifier(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = svc.Set(ctx, models.CharActive, i%2 == 0)
			_, _ = svc.Get(ctx, models.CharCurrentState)
		}(i)
	}
	wg.Wait()

	if len(repo.appended()) != 50 {
		t.Fatalf("expected 50 journal entries, got %d", len(repo.appended()))
	}
}

func TestPurifierService_SetWithFailingSensor_CommitsWithoutNotify(t *testing.T) {
	sensor := &switchableSensor{err: errors.New("device unreachable")}
	repo := &recordingEventRepo{}
	n := NewNotifier()
	svc := NewPurifierService(newTestAccessory(t, appliance.WithStatusSensor(sensor)), repo, n, nil)

	calls := 0
	n.Subscribe(func(models.PurifierState) { calls++ })

	if err := svc.Set(context.Background(), models.CharActive, true); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if v, _ := svc.Get(context.Background(), models.CharActive); v != true {
		t.Fatalf("expected active=true, got %v", v)
	}
	if calls != 0 {
		t.Fatalf("expected no notification without a snapshot, got %d", calls)
	}
	events := repo.appended()
	if len(events) != 1 || events[0].Type != models.EventActiveChange {
		t.Fatalf("expected ACTIVE_CHANGE journal entry, got %+v", events)
	}
}

func TestPurifierService_JournalRecordsController(t *testing.T) {
	svc, repo, _ := newTestPurifier(t)
	ctx := WithController(context.Background(), 7)

	if err := svc.Set(ctx, models.CharActive, true); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := svc.Identify(ctx); err != nil {
		t.Fatalf("Identify: %v", err)
	}
	if err := svc.Set(context.Background(), models.CharMode, true); err != nil {
		t.Fatalf("Set without controller: %v", err)
	}

	events := repo.appended()
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	for i, e := range events[:2] {
		meta := e.Metadata.(map[string]any)
		if meta["controller_id"] != 7 {
			t.Fatalf("event %d (%s): controller_id=%v, want 7", i, e.Type, meta["controller_id"])
		}
	}
	if _, ok := events[2].Metadata.(map[string]any)["controller_id"]; ok {
		t.Fatalf("controller recorded for a write without one: %+v", events[2].Metadata)
	}
}
