package network

import (
	"time"

	"github.com/google/uuid"
)

const DEFAULT_MONITOR_PORT string = ":14280"

// Forward error correction shards for the KCP sessions.
const (
	dataShards   = 10
	parityShards = 3
)

const publishQueue = 64

type MessageType string

const (
	TypePanel MessageType = "Panel"
)

// Panel is one frame of the lift's lamp panel.
type Panel struct {
	Session   uuid.UUID `json:"session"`
	Host      string    `json:"host"`
	Seq       uint64    `json:"seq"`
	Sent      time.Time `json:"sent"`
	Direction []bool    `json:"direction"`
	Position  []bool    `json:"position"`
	Ack       []bool    `json:"ack"`
}

type MsgPanel struct {
	Type    MessageType `json:"type"`
	Content Panel       `json:"content"`
}

// Floor is the lit position lamp, or -1 when none or several are lit.
func (p Panel) Floor() int {
	floor := -1
	for i, on := range p.Position {
		if !on {
			continue
		}
		if floor >= 0 {
			return -1
		}
		floor = i
	}
	return floor
}
