package elevator

import (
	"liftsim/elevio"
)

type ElevatorBehaviour int

const (
	EB_Idle ElevatorBehaviour = iota
	EB_Moving
)

// Elevator is the controller's model of the car. Floor always names the lit
// position lamp once a floor has settled.
type Elevator struct {
	Floor     elevio.Floor
	Moving    bool
	Behaviour ElevatorBehaviour
}

func ElevatorInit(defaultFloor elevio.Floor) Elevator {
	return Elevator{
		Floor:     defaultFloor,
		Moving:    false,
		Behaviour: EB_Idle,
	}
}

// ChooseDirection is the way the car must travel to serve requested.
func ChooseDirection(e Elevator, requested elevio.Floor) elevio.Dirn {
	return elevio.DirnBetween(e.Floor, requested)
}

// Depart marks the car as travelling.
func (e *Elevator) Depart() {
	e.Moving = true
	e.Behaviour = EB_Moving
}

// Arrive settles the car at floor.
func (e *Elevator) Arrive(floor elevio.Floor) {
	e.Floor = floor
	e.Moving = false
	e.Behaviour = EB_Idle
}

func BehaviourToString(b ElevatorBehaviour) string {
	switch b {
	case EB_Idle:
		return "EB_Idle"
	case EB_Moving:
		return "EB_Moving"
	default:
		return "EB_UNDEFINED"
	}
}
