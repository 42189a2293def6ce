package elevio

func DirnToString(d Dirn) string {
	switch d {
	case D_Up:
		return "UP"
	case D_Down:
		return "DOWN"
	case D_Idle:
		return "IDLE"
	default:
		return "D_UNDEFINED"
	}
}

// DirnBetween is the direction of travel from one floor to another.
func DirnBetween(from, to Floor) Dirn {
	switch {
	case to > from:
		return D_Up
	case to < from:
		return D_Down
	default:
		return D_Idle
	}
}
