package appliance

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"air_purifier/internal/models"
)

type recordingLogger struct {
	msgs []string
}

func (r *recordingLogger) Infow(msg string, _ ...interface{}) {
	r.msgs = append(r.msgs, msg)
}

func newTestAppliance(t *testing.T, opts ...Option) *Appliance {
	t.Helper()
	a, err := New("Living Room Purifier", opts...)
	require.NoError(t, err)
	return a
}

func TestNew_Defaults(t *testing.T) {
	a := newTestAppliance(t)

	assert.Equal(t, "Living Room Purifier", a.Name())
	assert.False(t, a.Active())
	assert.False(t, a.Mode())
	assert.Equal(t, models.TargetStateAuto, a.TargetState())
	assert.Equal(t, "OneLife", a.Manufacturer())
	assert.Equal(t, "OneLife X Air Purifier", a.Model())
}

func TestNew_EmptyName(t *testing.T) {
	_, err := New("   ")
	assert.ErrorIs(t, err, ErrEmptyName)
}

func TestNew_IdentityOptions(t *testing.T) {
	a := newTestAppliance(t, WithSerialNumber("OLX-0001"), WithFirmware("1.2.0"))

	id := a.Identity()
	assert.Equal(t, Manufacturer, id.Manufacturer)
	assert.Equal(t, Model, id.Model)
	assert.Equal(t, "OLX-0001", id.SerialNumber)
	assert.Equal(t, "1.2.0", id.Firmware)
}

func TestSetThenGet_Consistency(t *testing.T) {
	ctx := context.Background()
	for _, prop := range []string{models.CharActive, models.CharMode} {
		for _, v := range []bool{true, false, true} {
			t.Run(fmt.Sprintf("%s=%v", prop, v), func(t *testing.T) {
				a := newTestAppliance(t)
				require.NoError(t, a.Set(prop, v))
				got, err := a.Get(ctx, prop)
				require.NoError(t, err)
				assert.Equal(t, v, got)
			})
		}
	}
}

func TestTargetState_FollowsMode(t *testing.T) {
	a := newTestAppliance(t)

	sequence := []bool{true, false, false, true, true, false}
	for _, mode := range sequence {
		a.SetMode(mode)
		if mode {
			assert.Equal(t, models.TargetStateManual, a.TargetState())
		} else {
			assert.Equal(t, models.TargetStateAuto, a.TargetState())
		}
	}
}

func TestSetTargetState_WritesMode(t *testing.T) {
	a := newTestAppliance(t)

	require.NoError(t, a.SetTargetState(models.TargetStateManual))
	assert.True(t, a.Mode())

	require.NoError(t, a.SetTargetState(models.TargetStateAuto))
	assert.False(t, a.Mode())
}

func TestSetTargetState_AcceptedEncodings(t *testing.T) {
	tests := []struct {
		name     string
		value    any
		wantMode bool
	}{
		{name: "enum manual", value: models.TargetStateManual, wantMode: true},
		{name: "int auto", value: 1, wantMode: false},
		{name: "int manual", value: 0, wantMode: true},
		{name: "json float manual", value: float64(0), wantMode: true},
		{name: "json float auto", value: float64(1), wantMode: false},
		{name: "uint8 manual", value: uint8(0), wantMode: true},
		{name: "uint manual", value: uint(0), wantMode: true},
		{name: "uint auto", value: uint(1), wantMode: false},
		{name: "uint64 manual", value: uint64(0), wantMode: true},
		{name: "uint64 auto", value: uint64(1), wantMode: false},
		{name: "uintptr manual", value: uintptr(0), wantMode: true},
		{name: "int64 auto", value: int64(1), wantMode: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestAppliance(t)
			a.SetMode(!tt.wantMode)
			require.NoError(t, a.Set(models.CharTargetState, tt.value))
			assert.Equal(t, tt.wantMode, a.Mode())
		})
	}
}

func TestSet_InvalidValues(t *testing.T) {
	tests := []struct {
		name     string
		property string
		value    any
	}{
		{name: "active string", property: models.CharActive, value: "true"},
		{name: "active int", property: models.CharActive, value: 1},
		{name: "active nil", property: models.CharActive, value: nil},
		{name: "mode float", property: models.CharMode, value: 0.0},
		{name: "target out of range", property: models.CharTargetState, value: 2},
		{name: "target negative", property: models.CharTargetState, value: -1},
		{name: "target fraction", property: models.CharTargetState, value: 0.5},
		{name: "target bool", property: models.CharTargetState, value: true},
		{name: "target string", property: models.CharTargetState, value: "AUTO"},
		{name: "target uint out of range", property: models.CharTargetState, value: uint(2)},
		{name: "target uint64 above int64", property: models.CharTargetState, value: uint64(math.MaxUint64)},
		{name: "target uintptr out of range", property: models.CharTargetState, value: uintptr(7)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestAppliance(t)
			err := a.Set(tt.property, tt.value)
			require.Error(t, err)

			var ive *InvalidValueError
			require.True(t, errors.As(err, &ive))
			assert.Equal(t, tt.property, ive.Property)
			assert.True(t, IsInvalidValue(err))

			assert.False(t, a.Active())
			assert.False(t, a.Mode())
		})
	}
}

func TestSet_ReadOnlyAndUnknown(t *testing.T) {
	a := newTestAppliance(t)

	for _, prop := range []string{models.CharCurrentState, models.CharManufacturer, models.CharModel, models.CharName} {
		assert.ErrorIs(t, a.Set(prop, "x"), ErrReadOnly, prop)
	}
	assert.ErrorIs(t, a.Set("rotationSpeed", 10), ErrUnknownProperty)

	_, err := a.Get(context.Background(), "rotationSpeed")
	assert.ErrorIs(t, err, ErrUnknownProperty)
	assert.Equal(t, "OneLife", a.Manufacturer())
}

func TestSet_Independence(t *testing.T) {
	a := newTestAppliance(t)

	a.SetMode(true)
	a.SetActive(true)
	assert.True(t, a.Mode())
	a.SetActive(false)
	assert.True(t, a.Mode())

	a.SetActive(true)
	a.SetMode(false)
	assert.True(t, a.Active())
	a.SetMode(true)
	assert.True(t, a.Active())
}

func TestCurrentState_PlaceholderAlwaysPurifying(t *testing.T) {
	ctx := context.Background()
	a := newTestAppliance(t)

	for _, active := range []bool{false, true, false} {
		a.SetActive(active)
		st, err := a.CurrentState(ctx)
		require.NoError(t, err)
		assert.Equal(t, models.CurrentStatePurifyingAir, st)
	}
}

func TestCurrentState_CustomSensor(t *testing.T) {
	ctx := context.Background()
	sensor := StatusSensorFunc(func(_ context.Context, active bool) (models.CurrentState, error) {
		if active {
			return models.CurrentStateIdle, nil
		}
		return models.CurrentStateInactive, nil
	})
	a := newTestAppliance(t, WithStatusSensor(sensor))

	st, err := a.CurrentState(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.CurrentStateInactive, st)

	a.SetActive(true)
	st, err = a.CurrentState(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.CurrentStateIdle, st)
}

func TestCurrentState_SensorErrors(t *testing.T) {
	ctx := context.Background()

	failing := newTestAppliance(t, WithStatusSensor(StatusSensorFunc(
		func(context.Context, bool) (models.CurrentState, error) {
			return 0, errors.New("device unreachable")
		})))
	_, err := failing.CurrentState(ctx)
	assert.ErrorContains(t, err, "device unreachable")

	bogus := newTestAppliance(t, WithStatusSensor(StatusSensorFunc(
		func(context.Context, bool) (models.CurrentState, error) {
			return models.CurrentState(9), nil
		})))
	_, err = bogus.Get(ctx, models.CharCurrentState)
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestScenario_ControllerSession(t *testing.T) {
	ctx := context.Background()
	a := newTestAppliance(t)

	v, err := a.Get(ctx, models.CharActive)
	require.NoError(t, err)
	assert.Equal(t, false, v)

	require.NoError(t, a.Set(models.CharActive, true))

	v, err = a.Get(ctx, models.CharActive)
	require.NoError(t, err)
	assert.Equal(t, true, v)

	v, err = a.Get(ctx, models.CharCurrentState)
	require.NoError(t, err)
	assert.Equal(t, models.CurrentStatePurifyingAir, v)

	require.NoError(t, a.Set(models.CharMode, true))

	v, err = a.Get(ctx, models.CharTargetState)
	require.NoError(t, err)
	assert.Equal(t, models.TargetStateManual, v)
}

func TestSnapshot(t *testing.T) {
	a := newTestAppliance(t)
	a.SetActive(true)
	a.SetMode(true)

	st, err := a.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Living Room Purifier", st.Name)
	assert.True(t, st.Active)
	assert.True(t, st.Mode)
	assert.Equal(t, models.CurrentStatePurifyingAir, st.CurrentState)
	assert.Equal(t, "PURIFYING_AIR", st.CurrentStateName)
	assert.Equal(t, models.TargetStateManual, st.TargetState)
	assert.Equal(t, "MANUAL", st.TargetStateName)
	assert.False(t, st.ObservedAt.IsZero())
}

func TestLogging_Hooks(t *testing.T) {
	log := &recordingLogger{}
	a := newTestAppliance(t, WithLogger(log))
	ctx := context.Background()

	_, _ = a.Get(ctx, models.CharActive)
	_ = a.Set(models.CharActive, true)
	_, _ = a.Get(ctx, models.CharCurrentState)
	_, _ = a.Get(ctx, models.CharTargetState)
	a.Identify()

	assert.Equal(t, []string{
		"air purifier finished initializing",
		"air purifier status returned",
		"air purifier status set",
		"air purifier current state returned",
		"air purifier target state returned",
		"identify requested",
	}, log.msgs)

	// snapshots are silent
	before := len(log.msgs)
	_, err := a.Snapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, log.msgs, before)
}

func TestDescriptors(t *testing.T) {
	d, ok := Lookup(models.CharTargetState)
	require.True(t, ok)
	assert.Equal(t, "RW", d.Access.String())
	assert.True(t, d.Derived)

	d, ok = Lookup(models.CharCurrentState)
	require.True(t, ok)
	assert.False(t, d.Access.CanWrite())
	assert.Equal(t, "PURIFYING_AIR", d.Values[2])

	_, ok = Lookup("identify")
	assert.False(t, ok)
	assert.Len(t, Descriptors(), 7)
}
