package homekit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"air_purifier/internal/appliance"
	"air_purifier/internal/models"
	"air_purifier/internal/repository"
	"air_purifier/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopEventRepo struct{}

func (nopEventRepo) Append(context.Context, models.PurifierEvent) error { return nil }
func (nopEventRepo) List(context.Context, time.Time, time.Time, string) ([]models.PurifierEvent, error) {
	return nil, nil
}

func newTestBridge(t *testing.T, opts ...appliance.Option) (*Bridge, *service.Service) {
	t.Helper()
	opts = append(opts, appliance.WithSerialNumber("SN-42"), appliance.WithFirmware("1.2.0"))
	app, err := appliance.New("Nursery", opts...)
	require.NoError(t, err)
	svc := service.NewService(&repository.Repository{EventRepo: nopEventRepo{}}, app, service.AuthConfig{}, nil)
	return New(svc.Purifier, nil), svc
}

func TestBridge_InitialReads(t *testing.T) {
	b, _ := newTestBridge(t)

	v, code := b.purifier.Active.ValueRequestFunc(nil)
	assert.Equal(t, statusSuccess, code)
	assert.Equal(t, 0, v)

	v, code = b.purifier.CurrentState.ValueRequestFunc(nil)
	assert.Equal(t, statusSuccess, code)
	assert.Equal(t, int(models.CurrentStatePurifyingAir), v)

	v, code = b.purifier.TargetState.ValueRequestFunc(nil)
	assert.Equal(t, statusSuccess, code)
	assert.Equal(t, int(models.TargetStateAuto), v)
}

func TestBridge_NewSeedsCharacteristicCache(t *testing.T) {
	b, _ := newTestBridge(t)

	assert.Equal(t, 0, b.purifier.Active.Value())
	assert.Equal(t, int(models.TargetStateAuto), b.purifier.TargetState.Value())
	assert.Equal(t, int(models.CurrentStatePurifyingAir), b.purifier.CurrentState.Value())
}

func TestBridge_ControllerManualWriteReachesCore(t *testing.T) {
	b, svc := newTestBridge(t)
	req := httptest.NewRequest(http.MethodPut, "/characteristics", nil)

	_, code := b.purifier.TargetState.SetValueRequest(int(models.TargetStateManual), req)
	require.Equal(t, statusSuccess, code)

	mode, err := svc.Purifier.Get(context.Background(), models.CharMode)
	require.NoError(t, err)
	assert.Equal(t, true, mode)
	assert.Equal(t, int(models.TargetStateManual), b.purifier.TargetState.Value())

	_, code = b.purifier.Active.SetValueRequest(1, req)
	require.Equal(t, statusSuccess, code)
	on, _ := svc.Purifier.Get(context.Background(), models.CharActive)
	assert.Equal(t, true, on)
}

func TestBridge_SetActiveRoutesToService(t *testing.T) {
	b, svc := newTestBridge(t)
	ctx := context.Background()

	_, code := b.purifier.Active.SetValueRequestFunc(1, nil)
	require.Equal(t, statusSuccess, code)

	on, err := svc.Purifier.Get(ctx, models.CharActive)
	require.NoError(t, err)
	assert.Equal(t, true, on)

	v, _ := b.purifier.Active.ValueRequestFunc(nil)
	assert.Equal(t, 1, v)

	_, code = b.purifier.Active.SetValueRequestFunc(0, nil)
	require.Equal(t, statusSuccess, code)
	on, _ = svc.Purifier.Get(ctx, models.CharActive)
	assert.Equal(t, false, on)
}

func TestBridge_SetActiveRejectsOutOfRange(t *testing.T) {
	b, svc := newTestBridge(t)

	_, code := b.purifier.Active.SetValueRequestFunc(2, nil)
	assert.Equal(t, statusInvalidValue, code)

	_, code = b.purifier.Active.SetValueRequestFunc("on", nil)
	assert.Equal(t, statusInvalidValue, code)

	on, _ := svc.Purifier.Get(context.Background(), models.CharActive)
	assert.Equal(t, false, on)
}

func TestBridge_SetTargetStateFlipsMode(t *testing.T) {
	b, svc := newTestBridge(t)
	ctx := context.Background()

	_, code := b.purifier.TargetState.SetValueRequestFunc(int(models.TargetStateManual), nil)
	require.Equal(t, statusSuccess, code)
	mode, _ := svc.Purifier.Get(ctx, models.CharMode)
	assert.Equal(t, true, mode)

	_, code = b.purifier.TargetState.SetValueRequestFunc(float64(1), nil)
	require.Equal(t, statusSuccess, code)
	mode, _ = svc.Purifier.Get(ctx, models.CharMode)
	assert.Equal(t, false, mode)

	_, code = b.purifier.TargetState.SetValueRequestFunc(5, nil)
	assert.Equal(t, statusInvalidValue, code)
	mode, _ = svc.Purifier.Get(ctx, models.CharMode)
	assert.Equal(t, false, mode)
}

func TestBridge_SensorFailureIsCommunicationFailure(t *testing.T) {
	sensor := appliance.StatusSensorFunc(func(context.Context, bool) (models.CurrentState, error) {
		return 0, errors.New("no response")
	})
	b, _ := newTestBridge(t, appliance.WithStatusSensor(sensor))

	_, code := b.purifier.CurrentState.ValueRequestFunc(nil)
	assert.Equal(t, statusCommunicationFailure, code)
}

func TestBridge_ApplyPushesSnapshot(t *testing.T) {
	b, _ := newTestBridge(t)

	b.apply(models.PurifierState{
		Active:       true,
		CurrentState: models.CurrentStateIdle,
		TargetState:  models.TargetStateManual,
	})

	assert.Equal(t, 1, b.purifier.Active.Value())
	assert.Equal(t, int(models.CurrentStateIdle), b.purifier.CurrentState.Value())
	assert.Equal(t, int(models.TargetStateManual), b.purifier.TargetState.Value())
}

func TestBridge_NotifyKeepsLatest(t *testing.T) {
	b, _ := newTestBridge(t)

	b.Notify(models.PurifierState{Active: false})
	b.Notify(models.PurifierState{Active: true})

	select {
	case st := <-b.updates:
		assert.True(t, st.Active)
	default:
		t.Fatal("expected a queued snapshot")
	}
	select {
	case <-b.updates:
		t.Fatal("expected only the latest snapshot")
	default:
	}
}

func TestBridge_ListenerWiring(t *testing.T) {
	b, svc := newTestBridge(t)
	svc.Watcher.Subscribe(b.Notify)

	require.NoError(t, svc.Purifier.Set(context.Background(), models.CharActive, true))

	select {
	case st := <-b.updates:
		assert.True(t, st.Active)
	case <-time.After(time.Second):
		t.Fatal("expected snapshot after Set")
	}
}

func TestToInt(t *testing.T) {
	cases := []struct {
		in   interface{}
		want int
		ok   bool
	}{
		{1, 1, true},
		{int64(0), 0, true},
		{uint8(1), 1, true},
		{float64(1), 1, true},
		{1.5, 0, false},
		{true, 1, true},
		{"1", 0, false},
		{nil, 0, false},
	}
	for _, tc := range cases {
		got, ok := toInt(tc.in)
		assert.Equal(t, tc.ok, ok, "toInt(%#v)", tc.in)
		assert.Equal(t, tc.want, got, "toInt(%#v)", tc.in)
	}
}
