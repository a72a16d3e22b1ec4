package appliance

import "air_purifier/internal/models"

// Access flags for characteristics.
type Access uint8

const (
	AccessRead Access = 1 << iota
	AccessWrite

	AccessReadOnly  = AccessRead
	AccessReadWrite = AccessRead | AccessWrite
)

func (a Access) CanRead() bool  { return a&AccessRead != 0 }
func (a Access) CanWrite() bool { return a&AccessWrite != 0 }

// String returns the access flags as "R", "RW" or "-".
func (a Access) String() string {
	var s string
	if a.CanRead() {
		s += "R"
	}
	if a.CanWrite() {
		s += "W"
	}
	if s == "" {
		return "-"
	}
	return s
}

// MarshalText renders the flags in their string form for JSON descriptors.
func (a Access) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// DataType is the value type of a characteristic.
type DataType string

const (
	DataTypeBool   DataType = "bool"
	DataTypeEnum   DataType = "enum"
	DataTypeString DataType = "string"
)

// Descriptor describes one characteristic exposed by the accessory.
type Descriptor struct {
	Name        string         `json:"name"`
	Type        DataType       `json:"type"`
	Access      Access         `json:"access"`
	Derived     bool           `json:"derived,omitempty"`
	Values      map[int]string `json:"values,omitempty"`
	Description string         `json:"description"`
}

var descriptors = []Descriptor{
	{
		Name:        models.CharActive,
		Type:        DataTypeBool,
		Access:      AccessReadWrite,
		Description: "power state",
	},
	{
		Name:        models.CharMode,
		Type:        DataTypeBool,
		Access:      AccessReadWrite,
		Description: "operating mode flag, true = manual",
	},
	{
		Name:    models.CharCurrentState,
		Type:    DataTypeEnum,
		Access:  AccessReadOnly,
		Derived: true,
		Values: map[int]string{
			int(models.CurrentStateInactive):     models.CurrentStateInactive.String(),
			int(models.CurrentStateIdle):         models.CurrentStateIdle.String(),
			int(models.CurrentStatePurifyingAir): models.CurrentStatePurifyingAir.String(),
		},
		Description: "derived operating status",
	},
	{
		Name:    models.CharTargetState,
		Type:    DataTypeEnum,
		Access:  AccessReadWrite,
		Derived: true,
		Values: map[int]string{
			int(models.TargetStateManual): models.TargetStateManual.String(),
			int(models.TargetStateAuto):   models.TargetStateAuto.String(),
		},
		Description: "view over mode",
	},
	{
		Name:        models.CharManufacturer,
		Type:        DataTypeString,
		Access:      AccessReadOnly,
		Description: "identity",
	},
	{
		Name:        models.CharModel,
		Type:        DataTypeString,
		Access:      AccessReadOnly,
		Description: "identity",
	},
	{
		Name:        models.CharName,
		Type:        DataTypeString,
		Access:      AccessReadOnly,
		Description: "display name",
	},
}

// Descriptors returns a copy of the characteristic table.
func Descriptors() []Descriptor {
	out := make([]Descriptor, len(descriptors))
	copy(out, descriptors)
	return out
}

// Lookup returns the descriptor for name.
func Lookup(name string) (Descriptor, bool) {
	for _, d := range descriptors {
		if d.Name == name {
			return d, true
		}
	}
	return Descriptor{}, false
}
