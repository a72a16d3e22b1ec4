package appliance

import (
	"context"
	"fmt"

	"air_purifier/internal/models"
)

// StatusSensor reports the operating status of the physical device.
// It is the only characteristic source allowed to block.
type StatusSensor interface {
	Status(ctx context.Context, active bool) (models.CurrentState, error)
}

// StatusSensorFunc adapts a function to StatusSensor.
type StatusSensorFunc func(ctx context.Context, active bool) (models.CurrentState, error)

func (f StatusSensorFunc) Status(ctx context.Context, active bool) (models.CurrentState, error) {
	return f(ctx, active)
}

// PlaceholderSensor always reports PURIFYING_AIR and ignores the power flag.
// It stands in for device polling, which is not implemented.
type PlaceholderSensor struct{}

func (PlaceholderSensor) Status(context.Context, bool) (models.CurrentState, error) {
	return models.CurrentStatePurifyingAir, nil
}

// DerivationEngine computes the read-only characteristics from a store.
type DerivationEngine struct {
	store *CharacteristicStore
	sensor StatusSensor
	log   Logger
}

// NewDerivationEngine binds an engine to store. A nil sensor selects
// PlaceholderSensor.
func NewDerivationEngine(store *CharacteristicStore, sensor StatusSensor, log Logger) *DerivationEngine {
	if sensor == nil {
		sensor = PlaceholderSensor{}
	}
	if log == nil {
		log = nopLogger{}
	}
	return &DerivationEngine{store: store, sensor: sensor, log: log}
}

// CurrentState resolves the operating status through the sensor.
func (e *DerivationEngine) CurrentState(ctx context.Context) (models.CurrentState, error) {
	st, err := e.currentState(ctx)
	if err != nil {
		return st, err
	}
	e.log.Infow("air purifier current state returned", "state", st.String())
	return st, nil
}

func (e *DerivationEngine) currentState(ctx context.Context) (models.CurrentState, error) {
	st, err := e.sensor.Status(ctx, e.store.Active())
	if err != nil {
		return models.CurrentStateInactive, fmt.Errorf("query status: %w", err)
	}
	if !st.Valid() {
		return models.CurrentStateInactive, fmt.Errorf("%w: %d", ErrInvalidStatus, int(st))
	}
	return st, nil
}

// TargetState maps the mode flag: MANUAL when set, AUTO otherwise.
func (e *DerivationEngine) TargetState() models.TargetState {
	st := e.targetState()
	e.log.Infow("air purifier target state returned", "state", st.String())
	return st
}

func (e *DerivationEngine) targetState() models.TargetState {
	if e.store.Mode() {
		return models.TargetStateManual
	}
	return models.TargetStateAuto
}
