package models

import "time"

// PurifierState is a point-in-time snapshot of every characteristic.
type PurifierState struct {
	Name             string       `json:"name"`
	Active           bool         `json:"active"`
	Mode             bool         `json:"mode"`                // true = manual
	CurrentState     CurrentState `json:"current_state"`       // 0 INACTIVE | 1 IDLE | 2 PURIFYING_AIR
	CurrentStateName string       `json:"current_state_name"`  // human-readable
	TargetState      TargetState  `json:"target_state"`        // 0 MANUAL | 1 AUTO
	TargetStateName  string       `json:"target_state_name"`   // human-readable
	Manufacturer     string       `json:"manufacturer"`
	Model            string       `json:"model"`
	ObservedAt       time.Time    `json:"observed_at"`
}

// SameCharacteristics reports whether two snapshots carry equal values,
// ignoring the observation time.
func (s PurifierState) SameCharacteristics(o PurifierState) bool {
	return s.Active == o.Active &&
		s.Mode == o.Mode &&
		s.CurrentState == o.CurrentState &&
		s.TargetState == o.TargetState
}
