package protocol

import "testing"

func TestIsKnownCode(t *testing.T) {
	for _, code := range []string{
		ErrProtoBadRequest,
		ErrBadRequest,
		ErrUnknownActor,
		ErrUnknownGem,
		ErrConflict,
		ErrInternal,
		"",
	} {
		if !IsKnownCode(code) {
			t.Fatalf("expected %q to be a known code", code)
		}
	}
	if IsKnownCode("E_NOT_A_CODE") {
		t.Fatalf("unexpected known code")
	}
}
