package appliance

import "air_purifier/internal/models"

// Logger is the logging sink the accessory reports to. Calls are
// fire-and-forget and never fail the calling operation.
// *logger.Logger satisfies it.
type Logger interface {
	Infow(msg string, keysAndValues ...interface{})
}

type nopLogger struct{}

func (nopLogger) Infow(string, ...interface{}) {}

// CharacteristicStore is the single source of truth for the writable
// flags of one accessory. The zero configuration is inactive, auto mode.
type CharacteristicStore struct {
	active bool
	mode   bool // true = manual
	log    Logger
}

// NewCharacteristicStore returns a store with both flags false.
func NewCharacteristicStore(log Logger) *CharacteristicStore {
	if log == nil {
		log = nopLogger{}
	}
	return &CharacteristicStore{log: log}
}

// Get returns the last committed value of active or mode.
func (s *CharacteristicStore) Get(property string) (bool, error) {
	switch property {
	case models.CharActive:
		s.log.Infow("air purifier status returned", "status", activeLabel(s.active))
		return s.active, nil
	case models.CharMode:
		s.log.Infow("air purifier mode returned", "mode", modeLabel(s.mode))
		return s.mode, nil
	default:
		return false, ErrUnknownProperty
	}
}

// Set stores a boolean value for active or mode.
func (s *CharacteristicStore) Set(property string, value any) error {
	if property != models.CharActive && property != models.CharMode {
		return ErrUnknownProperty
	}
	v, ok := value.(bool)
	if !ok {
		return &InvalidValueError{Property: property, Value: value, Want: "bool"}
	}

	if property == models.CharActive {
		prev := s.active
		s.active = v
		s.log.Infow("air purifier status set", "from", activeLabel(prev), "to", activeLabel(v))
		return nil
	}
	prev := s.mode
	s.mode = v
	s.log.Infow("air purifier mode set", "from", modeLabel(prev), "to", modeLabel(v))
	return nil
}

// Active returns the power flag without logging.
func (s *CharacteristicStore) Active() bool { return s.active }

// Mode returns the manual flag without logging.
func (s *CharacteristicStore) Mode() bool { return s.mode }

func activeLabel(v bool) string {
	if v {
		return "ACTIVE"
	}
	return "INACTIVE"
}

func modeLabel(manual bool) string {
	if manual {
		return models.TargetStateManual.String()
	}
	return models.TargetStateAuto.String()
}
