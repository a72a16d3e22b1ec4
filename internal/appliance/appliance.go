package appliance

import (
	"context"
	"math"
	"strings"
	"time"

	"air_purifier/internal/models"
)

// Fixed identity of the accessory.
const (
	Manufacturer = "OneLife"
	Model        = "OneLife X Air Purifier"
)

// Appliance is one air purifier accessory. It exclusively owns its
// characteristic store and identity record.
type Appliance struct {
	name     string
	identity models.Identity
	store    *CharacteristicStore
	engine   *DerivationEngine
	sensor   StatusSensor
	log      Logger
}

// Option configures an Appliance at construction.
type Option func(*Appliance)

// WithLogger sets the logging sink.
func WithLogger(l Logger) Option {
	return func(a *Appliance) {
		if l != nil {
			a.log = l
		}
	}
}

// WithStatusSensor replaces PlaceholderSensor as the source of currentState.
func WithStatusSensor(p StatusSensor) Option {
	return func(a *Appliance) { a.sensor = p }
}

// WithSerialNumber sets the serial number reported in the identity record.
func WithSerialNumber(sn string) Option {
	return func(a *Appliance) { a.identity.SerialNumber = sn }
}

// WithFirmware sets the firmware revision reported in the identity record.
func WithFirmware(rev string) Option {
	return func(a *Appliance) { a.identity.Firmware = rev }
}

// New constructs the accessory with both flags false.
func New(name string, opts ...Option) (*Appliance, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}

	a := &Appliance{
		name: name,
		identity: models.Identity{
			Manufacturer: Manufacturer,
			Model:        Model,
		},
		log: nopLogger{},
	}
	for _, opt := range opts {
		opt(a)
	}

	a.store = NewCharacteristicStore(a.log)
	a.engine = NewDerivationEngine(a.store, a.sensor, a.log)

	a.log.Infow("air purifier finished initializing", "name", a.name)
	return a, nil
}

func (a *Appliance) Name() string              { return a.name }
func (a *Appliance) Identity() models.Identity { return a.identity }
func (a *Appliance) Manufacturer() string      { return a.identity.Manufacturer }
func (a *Appliance) Model() string             { return a.identity.Model }

// Active returns the power flag.
func (a *Appliance) Active() bool {
	v, _ := a.store.Get(models.CharActive)
	return v
}

// SetActive stores the power flag.
func (a *Appliance) SetActive(v bool) {
	_ = a.store.Set(models.CharActive, v)
}

// Mode returns the manual flag.
func (a *Appliance) Mode() bool {
	v, _ := a.store.Get(models.CharMode)
	return v
}

// SetMode stores the manual flag.
func (a *Appliance) SetMode(manual bool) {
	_ = a.store.Set(models.CharMode, manual)
}

// CurrentState returns the derived operating status.
func (a *Appliance) CurrentState(ctx context.Context) (models.CurrentState, error) {
	return a.engine.CurrentState(ctx)
}

// TargetState returns the view over the mode flag.
func (a *Appliance) TargetState() models.TargetState {
	return a.engine.TargetState()
}

// SetTargetState writes the mode flag through its target-state view.
func (a *Appliance) SetTargetState(ts models.TargetState) error {
	return a.Set(models.CharTargetState, ts)
}

// Identify acknowledges an identify request from a controller.
func (a *Appliance) Identify() {
	a.log.Infow("identify requested", "name", a.name)
}

// Get reads a characteristic by name.
func (a *Appliance) Get(ctx context.Context, property string) (any, error) {
	switch property {
	case models.CharActive, models.CharMode:
		return a.store.Get(property)
	case models.CharCurrentState:
		return a.engine.CurrentState(ctx)
	case models.CharTargetState:
		return a.engine.TargetState(), nil
	case models.CharManufacturer:
		return a.identity.Manufacturer, nil
	case models.CharModel:
		return a.identity.Model, nil
	case models.CharName:
		return a.name, nil
	default:
		return nil, ErrUnknownProperty
	}
}

// Set writes a characteristic by name. The new value is visible to every
// subsequent Get once Set returns.
func (a *Appliance) Set(property string, value any) error {
	d, ok := Lookup(property)
	if !ok {
		return ErrUnknownProperty
	}
	if !d.Access.CanWrite() {
		return ErrReadOnly
	}

	if property == models.CharTargetState {
		ts, ok := toTargetState(value)
		if !ok {
			return &InvalidValueError{Property: property, Value: value, Want: "0 (MANUAL) or 1 (AUTO)"}
		}
		return a.store.Set(models.CharMode, ts == models.TargetStateManual)
	}
	return a.store.Set(property, value)
}

// Snapshot returns every characteristic at once. It does not log reads.
func (a *Appliance) Snapshot(ctx context.Context) (models.PurifierState, error) {
	cur, err := a.engine.currentState(ctx)
	if err != nil {
		return models.PurifierState{}, err
	}
	target := a.engine.targetState()
	return models.PurifierState{
		Name:             a.name,
		Active:           a.store.Active(),
		Mode:             a.store.Mode(),
		CurrentState:     cur,
		CurrentStateName: cur.String(),
		TargetState:      target,
		TargetStateName:  target.String(),
		Manufacturer:     a.identity.Manufacturer,
		Model:            a.identity.Model,
		ObservedAt:       time.Now().UTC(),
	}, nil
}

// toTargetState accepts the enum itself, any integer, or a whole float
// (as decoded from JSON) equal to 0 or 1.
func toTargetState(v any) (models.TargetState, bool) {
	var n int64
	switch t := v.(type) {
	case models.TargetState:
		n = int64(t)
	case int:
		n = int64(t)
	case int8:
		n = int64(t)
	case int16:
		n = int64(t)
	case int32:
		n = int64(t)
	case int64:
		n = t
	case uint8:
		n = int64(t)
	case uint16:
		n = int64(t)
	case uint32:
		n = int64(t)
	case uint:
		return uintToTargetState(uint64(t))
	case uint64:
		return uintToTargetState(t)
	case uintptr:
		return uintToTargetState(uint64(t))
	case float32:
		return toTargetState(float64(t))
	case float64:
		if math.IsNaN(t) || math.Trunc(t) != t || t < 0 || t > 1 {
			return 0, false
		}
		n = int64(t)
	default:
		return 0, false
	}
	ts := models.TargetState(n)
	return ts, ts.Valid()
}

func uintToTargetState(u uint64) (models.TargetState, bool) {
	if u > math.MaxInt64 {
		return 0, false
	}
	ts := models.TargetState(int64(u))
	return ts, ts.Valid()
}
