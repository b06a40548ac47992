package protocol

// UnitID identifies one of up to seven transmitters sharing the spectrum.
// Manufacturers variously call this the ID LED code or channel group; the
// values correspond to the indicator LED colour on the transmitter.
//
// UnitAuto is a scan-only sentinel meaning "lock onto whichever unit is
// transmitting"; a receiver is never locked to UnitAuto.
type UnitID uint8

const (
	UnitAuto UnitID = iota
	UnitRed
	UnitGreen
	UnitYellow
	UnitBlue
	UnitMagenta
	UnitCyan
	UnitWhite
)

// Valid reports whether id is a concrete (lockable) unit ID.
func (id UnitID) Valid() bool {
	return id >= UnitRed && id <= UnitWhite
}

// Next returns the cyclic successor among the concrete unit IDs,
// skipping UnitAuto.
func (id UnitID) Next() UnitID {
	if id >= UnitWhite || id < UnitRed {
		return UnitRed
	}
	return id + 1
}

var unitNames = [...]string{"auto", "red", "green", "yellow", "blue", "magenta", "cyan", "white"}

func (id UnitID) String() string {
	if int(id) < len(unitNames) {
		return unitNames[id]
	}
	return "invalid"
}

// ParseUnitID maps a unit ID name ("auto", "red", ... "white") to its value.
func ParseUnitID(name string) (UnitID, error) {
	for i, n := range unitNames {
		if n == name {
			return UnitID(i), nil
		}
	}
	return UnitAuto, ErrUnknownUnitID
}
