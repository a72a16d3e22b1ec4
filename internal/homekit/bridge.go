// Package homekit exposes the purifier to HomeKit controllers through a
// HAP server. Every characteristic request is routed to the purifier
// service; nothing is cached here except what HAP itself keeps for events.
package homekit

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"

	"air_purifier/internal/appliance"
	"air_purifier/internal/config"
	"air_purifier/internal/logger"
	"air_purifier/internal/models"
	"air_purifier/internal/service"

	"github.com/brutella/hap"
	"github.com/brutella/hap/accessory"
	"github.com/brutella/hap/characteristic"
)

// HAP status codes returned from characteristic handlers.
const (
	statusSuccess              = 0
	statusCommunicationFailure = -70402
	statusInvalidValue         = -70410
)

// Bridge binds one HAP accessory to the purifier service.
type Bridge struct {
	A        *accessory.A
	purifier *airPurifier

	svc     service.Purifier
	log     *logger.Logger
	updates chan models.PurifierState
}

// New builds the accessory from the purifier's identity and wires every
// characteristic to svc.
func New(svc service.Purifier, log *logger.Logger) *Bridge {
	if log == nil {
		log = logger.Nop()
	}
	id := svc.Identity()
	a := accessory.New(accessory.Info{
		Name:         svc.Name(),
		SerialNumber: id.SerialNumber,
		Manufacturer: id.Manufacturer,
		Model:        id.Model,
		Firmware:     id.Firmware,
	}, accessory.TypeAirPurifier)

	b := &Bridge{
		A:        a,
		purifier: newAirPurifier(),
		svc:      svc,
		log:      log,
		updates:  make(chan models.PurifierState, 1),
	}
	a.AddS(b.purifier.S)

	b.purifier.Active.ValueRequestFunc = b.getActive
	b.purifier.Active.SetValueRequestFunc = b.setActive
	b.purifier.CurrentState.ValueRequestFunc = b.getCurrentState
	b.purifier.TargetState.ValueRequestFunc = b.getTargetState
	b.purifier.TargetState.SetValueRequestFunc = b.setTargetState
	a.IdentifyFunc = func(r *http.Request) {
		if err := b.svc.Identify(requestContext(r)); err != nil {
			b.log.Errorw("homekit_identify_failed", "err", err)
		}
	}

	b.seed(context.Background())
	return b
}

// seed copies the core's characteristics into the HAP cache. HAP drops
// a write equal to the cached value before calling the set handler, so
// the cache must start out matching the core.
func (b *Bridge) seed(ctx context.Context) {
	if v, err := b.svc.Get(ctx, models.CharActive); err == nil {
		on, _ := v.(bool)
		b.purifier.Active.SetValue(activeToHAP(on))
	} else {
		b.log.Errorw("homekit_seed_failed", "characteristic", models.CharActive, "err", err)
	}
	if v, err := b.svc.Get(ctx, models.CharTargetState); err == nil {
		ts, _ := v.(models.TargetState)
		b.purifier.TargetState.SetValue(int(ts))
	} else {
		b.log.Errorw("homekit_seed_failed", "characteristic", models.CharTargetState, "err", err)
	}
	if v, err := b.svc.Get(ctx, models.CharCurrentState); err == nil {
		st, _ := v.(models.CurrentState)
		b.purifier.CurrentState.SetValue(int(st))
	} else {
		b.log.Errorw("homekit_seed_failed", "characteristic", models.CharCurrentState, "err", err)
	}
}

// Notify queues a snapshot for HomeKit subscribers. It never blocks; when
// the queue is full the older snapshot is replaced.
func (b *Bridge) Notify(st models.PurifierState) {
	for {
		select {
		case b.updates <- st:
			return
		default:
		}
		select {
		case <-b.updates:
		default:
		}
	}
}

// Serve runs the HAP server until ctx is canceled.
func (b *Bridge) Serve(ctx context.Context, cfg config.HomeKitConfig) error {
	srv, err := hap.NewServer(hap.NewFsStore(cfg.StoragePath), b.A)
	if err != nil {
		return fmt.Errorf("create hap server: %w", err)
	}
	srv.Pin = cfg.Pin
	srv.Addr = cfg.Addr

	go b.forward(ctx)

	b.log.Infow("homekit_serving", "addr", cfg.Addr, "name", b.svc.Name())
	if err := srv.ListenAndServe(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) && ctx.Err() == nil {
		return fmt.Errorf("hap listen: %w", err)
	}
	return nil
}

// forward applies queued snapshots to the HAP characteristics.
func (b *Bridge) forward(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case st := <-b.updates:
			b.apply(st)
		}
	}
}

func (b *Bridge) apply(st models.PurifierState) {
	b.purifier.Active.SetValue(activeToHAP(st.Active))
	b.purifier.CurrentState.SetValue(int(st.CurrentState))
	b.purifier.TargetState.SetValue(int(st.TargetState))
}

func (b *Bridge) getActive(r *http.Request) (interface{}, int) {
	v, err := b.svc.Get(requestContext(r), models.CharActive)
	if err != nil {
		return nil, b.statusFor("get", models.CharActive, err)
	}
	on, _ := v.(bool)
	return activeToHAP(on), statusSuccess
}

func (b *Bridge) getCurrentState(r *http.Request) (interface{}, int) {
	v, err := b.svc.Get(requestContext(r), models.CharCurrentState)
	if err != nil {
		return nil, b.statusFor("get", models.CharCurrentState, err)
	}
	st, _ := v.(models.CurrentState)
	return int(st), statusSuccess
}

func (b *Bridge) getTargetState(r *http.Request) (interface{}, int) {
	v, err := b.svc.Get(requestContext(r), models.CharTargetState)
	if err != nil {
		return nil, b.statusFor("get", models.CharTargetState, err)
	}
	ts, _ := v.(models.TargetState)
	return int(ts), statusSuccess
}

func (b *Bridge) setActive(v interface{}, r *http.Request) (interface{}, int) {
	n, ok := toInt(v)
	if !ok || (n != characteristic.ActiveActive && n != characteristic.ActiveInactive) {
		b.log.Infow("homekit_set_rejected", "characteristic", models.CharActive, "value", v)
		return nil, statusInvalidValue
	}
	if err := b.svc.Set(requestContext(r), models.CharActive, n == characteristic.ActiveActive); err != nil {
		return nil, b.statusFor("set", models.CharActive, err)
	}
	return nil, statusSuccess
}

func (b *Bridge) setTargetState(v interface{}, r *http.Request) (interface{}, int) {
	n, ok := toInt(v)
	if !ok {
		b.log.Infow("homekit_set_rejected", "characteristic", models.CharTargetState, "value", v)
		return nil, statusInvalidValue
	}
	if err := b.svc.Set(requestContext(r), models.CharTargetState, n); err != nil {
		return nil, b.statusFor("set", models.CharTargetState, err)
	}
	return nil, statusSuccess
}

func (b *Bridge) statusFor(op, name string, err error) int {
	if appliance.IsInvalidValue(err) {
		b.log.Infow("homekit_"+op+"_rejected", "characteristic", name, "err", err)
		return statusInvalidValue
	}
	b.log.Errorw("homekit_"+op+"_failed", "characteristic", name, "err", err)
	return statusCommunicationFailure
}

func activeToHAP(on bool) int {
	if on {
		return characteristic.ActiveActive
	}
	return characteristic.ActiveInactive
}

// toInt accepts the integer encodings HAP clients send.
func toInt(v interface{}) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case int64:
		return int(t), true
	case uint8:
		return int(t), true
	case float64:
		if math.Trunc(t) != t {
			return 0, false
		}
		return int(t), true
	case bool:
		if t {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

func requestContext(r *http.Request) context.Context {
	if r == nil {
		return context.Background()
	}
	return r.Context()
}
