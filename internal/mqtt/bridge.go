package mqtt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"air_purifier/internal/logger"
	"air_purifier/internal/models"
	"air_purifier/internal/service"
)

const setTimeout = 5 * time.Second

// Conn is the part of Client the bridge needs.
type Conn interface {
	Publish(topic string, payload []byte, retained bool) error
	Subscribe(topic string, handler MessageHandler) error
}

// Bridge publishes snapshots and routes set topics to the purifier service.
type Bridge struct {
	conn    Conn
	topics  Topics
	svc     service.Purifier
	log     *logger.Logger
	updates chan models.PurifierState
}

func NewBridge(conn Conn, topics Topics, svc service.Purifier, log *logger.Logger) *Bridge {
	if log == nil {
		log = logger.Nop()
	}
	return &Bridge{
		conn:    conn,
		topics:  topics,
		svc:     svc,
		log:     log,
		updates: make(chan models.PurifierState, 1),
	}
}

// Start subscribes to every set topic of the device.
func (b *Bridge) Start() error {
	return b.conn.Subscribe(b.topics.AllSets(), b.handleSet)
}

// Notify queues a snapshot for publishing without blocking. A queued
// snapshot that was not yet published is replaced.
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

// Run publishes queued snapshots until ctx is canceled.
func (b *Bridge) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case st := <-b.updates:
			if err := b.PublishState(st); err != nil {
				b.log.Warnw("mqtt_publish_state_failed", "err", err)
			}
		}
	}
}

// PublishState writes st as a retained JSON document.
func (b *Bridge) PublishState(st models.PurifierState) error {
	payload, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	return b.conn.Publish(b.topics.State(), payload, true)
}

// handleSet decodes payload as one JSON value and writes it to the
// characteristic named by the last topic segment.
func (b *Bridge) handleSet(topic string, payload []byte) error {
	name, ok := b.topics.CharacteristicFromTopic(topic)
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidTopic, topic)
	}

	value, err := decodeValue(payload)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), setTimeout)
	defer cancel()
	if err := b.svc.Set(ctx, name, value); err != nil {
		return fmt.Errorf("set %s: %w", name, err)
	}
	return nil
}

func decodeValue(payload []byte) (any, error) {
	payload = bytes.TrimSpace(payload)
	if len(payload) == 0 {
		return nil, fmt.Errorf("%w: empty", ErrInvalidPayload)
	}
	dec := json.NewDecoder(bytes.NewReader(payload))
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data", ErrInvalidPayload)
	}
	if v == nil {
		return nil, fmt.Errorf("%w: null", ErrInvalidPayload)
	}
	return v, nil
}
