package protocol

const (
	// Protocol/transport validation.
	ErrProtoBadRequest = "E_PROTO_BAD_REQUEST"

	// Request layer.
	ErrBadRequest   = "E_BAD_REQUEST"
	ErrUnknownActor = "E_UNKNOWN_ACTOR"
	ErrUnknownGem   = "E_UNKNOWN_GEM"
	ErrConflict     = "E_CONFLICT"
	ErrInternal     = "E_INTERNAL"
)

var knownCodes = map[string]struct{}{
	ErrProtoBadRequest: {},
	ErrBadRequest:      {},
	ErrUnknownActor:    {},
	ErrUnknownGem:      {},
	ErrConflict:        {},
	ErrInternal:        {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}
