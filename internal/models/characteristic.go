package models

// CurrentState is the derived operating status reported to controllers.
// Values match the HomeKit CurrentAirPurifierState encoding.
type CurrentState int

const (
	CurrentStateInactive     CurrentState = 0
	CurrentStateIdle         CurrentState = 1
	CurrentStatePurifyingAir CurrentState = 2
)

func (s CurrentState) String() string {
	switch s {
	case CurrentStateInactive:
		return "INACTIVE"
	case CurrentStateIdle:
		return "IDLE"
	case CurrentStatePurifyingAir:
		return "PURIFYING_AIR"
	default:
		return "UNKNOWN"
	}
}

// Valid reports whether s is one of the declared states.
func (s CurrentState) Valid() bool {
	return s >= CurrentStateInactive && s <= CurrentStatePurifyingAir
}

// TargetState is the requested operating mode. It is a view over the
// stored mode flag: MANUAL when the flag is set, AUTO otherwise.
type TargetState int

const (
	TargetStateManual TargetState = 0
	TargetStateAuto   TargetState = 1
)

func (s TargetState) String() string {
	switch s {
	case TargetStateManual:
		return "MANUAL"
	case TargetStateAuto:
		return "AUTO"
	default:
		return "UNKNOWN"
	}
}

// Valid reports whether s is MANUAL or AUTO.
func (s TargetState) Valid() bool {
	return s == TargetStateManual || s == TargetStateAuto
}

// Characteristic names used on every host surface (REST, HomeKit, MQTT).
const (
	CharActive       = "active"
	CharMode         = "mode"
	CharCurrentState = "currentState"
	CharTargetState  = "targetState"
	CharManufacturer = "manufacturer"
	CharModel        = "model"
	CharName         = "name"
)

// Identity is the immutable manufacturer/model metadata of the accessory.
type Identity struct {
	Manufacturer string `json:"manufacturer"`
	Model        string `json:"model"`
	SerialNumber string `json:"serial_number,omitempty"`
	Firmware     string `json:"firmware,omitempty"`
}
