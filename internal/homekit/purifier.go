package homekit

import (
	"github.com/brutella/hap/characteristic"
	hapservice "github.com/brutella/hap/service"
)

// airPurifier is the HAP Air Purifier service with its required
// characteristics.
type airPurifier struct {
	*hapservice.S

	Active       *characteristic.Active
	CurrentState *characteristic.CurrentAirPurifierState
	TargetState  *characteristic.TargetAirPurifierState
}

func newAirPurifier() *airPurifier {
	s := airPurifier{}
	s.S = hapservice.New(hapservice.TypeAirPurifier)

	s.Active = characteristic.NewActive()
	s.AddC(s.Active.C)

	s.CurrentState = characteristic.NewCurrentAirPurifierState()
	s.AddC(s.CurrentState.C)

	s.TargetState = characteristic.NewTargetAirPurifierState()
	s.AddC(s.TargetState.C)

	return &s
}
