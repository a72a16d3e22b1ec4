package service

import (
	"context"
	"sync"

	"air_purifier/internal/appliance"
	"air_purifier/internal/models"
)

// guardedAccessory serializes every request against the appliance. The
// appliance itself has no locking; this is the one place that provides it.
type guardedAccessory struct {
	mu  sync.Mutex
	app *appliance.Appliance
	seq uint64 // bumped on every snapshot taken under mu
}

func newGuardedAccessory(app *appliance.Appliance) *guardedAccessory {
	return &guardedAccessory{app: app}
}

func (g *guardedAccessory) get(ctx context.Context, name string) (any, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.app.Get(ctx, name)
}

// setResult is the state observed right after a committed write. A failing
// status sensor leaves stateErr set; the write itself still stands.
type setResult struct {
	seq      uint64
	state    models.PurifierState
	stateErr error
}

func (g *guardedAccessory) set(ctx context.Context, name string, value any) (setResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.app.Set(name, value); err != nil {
		return setResult{}, err
	}
	seq, st, err := g.snapshotLocked(ctx)
	return setResult{seq: seq, state: st, stateErr: err}, nil
}

func (g *guardedAccessory) identify() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.app.Identify()
}

func (g *guardedAccessory) snapshot(ctx context.Context) (uint64, models.PurifierState, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snapshotLocked(ctx)
}

func (g *guardedAccessory) snapshotLocked(ctx context.Context) (uint64, models.PurifierState, error) {
	st, err := g.app.Snapshot(ctx)
	if err != nil {
		return 0, models.PurifierState{}, err
	}
	g.seq++
	return g.seq, st, nil
}
