package elevio

// Reference board: four floors, seven direction lamps.
const (
	N_Floors        = 4
	N_DirectionLeds = 7
)

// Floor is a stop position, 0 being the ground floor.
type Floor int

// NoFloor is what a call resolves to when no button can be named.
const NoFloor Floor = -1

type Dirn int

const (
	D_Down Dirn = -1
	D_Idle Dirn = 0
	D_Up   Dirn = 1
)

// Valid reports whether f is a stop on a lift with n floors.
func (f Floor) Valid(n int) bool {
	return f >= 0 && int(f) < n
}
