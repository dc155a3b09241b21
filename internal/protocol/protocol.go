// Package protocol defines the JSON wire messages of the soul trap
// service.
package protocol

import "encoding/json"

const Version = "1.0"

// Message types.
const (
	TypeHello      = "HELLO"
	TypeWelcome    = "WELCOME"
	TypeSpawn      = "SPAWN"
	TypeSpawned    = "SPAWNED"
	TypeKill       = "KILL"
	TypeGive       = "GIVE"
	TypeAck        = "ACK"
	TypeTrap       = "TRAP"
	TypeTrapResult = "TRAP_RESULT"
	TypeNotify     = "NOTIFY"
	TypeError      = "ERROR"
)

// BaseMessage lets us route unknown JSON messages by type.
type BaseMessage struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version,omitempty"`
}

func DecodeBase(b []byte) (BaseMessage, error) {
	var m BaseMessage
	err := json.Unmarshal(b, &m)
	return m, err
}
