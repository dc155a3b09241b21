package protocol

// HELLO (client -> server)
type HelloMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ClientName      string `json:"client_name,omitempty"`
}

// WELCOME (server -> client)
type WelcomeMsg struct {
	Type            string     `json:"type"`
	ProtocolVersion string     `json:"protocol_version"`
	SessionID       string     `json:"session_id"`
	Catalog         CatalogRef `json:"catalog"`
}

type CatalogRef struct {
	GemsDigest string `json:"gems_digest"`
	Families   int    `json:"families"`
}

// SPAWN (client -> server): register an actor.
type SpawnMsg struct {
	Type            string    `json:"type"`
	ProtocolVersion string    `json:"protocol_version"`
	ReqID           string    `json:"req_id"`
	Actor           ActorSpec `json:"actor"`
}

type ActorSpec struct {
	Name     string `json:"name,omitempty"`
	Soul     string `json:"soul"` // none|petty|lesser|common|greater|grand|black
	Dead     bool   `json:"dead,omitempty"`
	Teammate bool   `json:"teammate,omitempty"`
	Primary  bool   `json:"primary,omitempty"`
}

// SPAWNED (server -> client)
type SpawnedMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ReqID           string `json:"req_id"`
	ActorID         string `json:"actor_id"`
}

// KILL (client -> server): mark an actor dead.
type KillMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ReqID           string `json:"req_id"`
	ActorID         string `json:"actor_id"`
}

// GIVE (client -> server): add gems to an actor's inventory.
type GiveMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ReqID           string `json:"req_id"`
	ActorID         string `json:"actor_id"`
	GemID           string `json:"gem_id"`
	Count           int    `json:"count"`
	OwnerID         string `json:"owner_id,omitempty"`
	ExtraSoul       string `json:"extra_soul,omitempty"`
}

// ACK (server -> client): generic success for KILL/GIVE.
type AckMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ReqID           string `json:"req_id"`
}

// TRAP (client -> server): attempt a soul capture.
type TrapMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ReqID           string `json:"req_id"`
	CasterID        string `json:"caster_id"`
	VictimID        string `json:"victim_id"`
}

// TRAP_RESULT (server -> client)
type TrapResultMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ReqID           string `json:"req_id"`
	Captured        bool   `json:"captured"`
}

// NOTIFY (server -> client): user-facing capture message for an owner.
type NotifyMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	OwnerID         string `json:"owner_id"`
	Message         string `json:"message"`
}

// ERROR (server -> client)
type ErrorMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ReqID           string `json:"req_id,omitempty"`
	Code            string `json:"code"`
	Message         string `json:"message,omitempty"`
}
