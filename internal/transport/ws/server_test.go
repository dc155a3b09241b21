package ws

import (
	"encoding/json"
	"io"
	"log"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gorilla/websocket"

	"soulforge.gg/internal/catalog"
	"soulforge.gg/internal/protocol"
	"soulforge.gg/internal/sim/actors"
	"soulforge.gg/internal/sim/trap"
	"soulforge.gg/internal/tuning"
)

func findRepoRoot(t *testing.T) string {
	t.Helper()
	dir, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatalf("could not find repo root from %s", dir)
		}
		dir = parent
	}
}

func newTestServer(t *testing.T) (*httptest.Server, *actors.Registry) {
	t.Helper()
	cat, err := catalog.Load(filepath.Join(findRepoRoot(t), "configs"))
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	reg := actors.NewRegistry()
	logger := log.New(io.Discard, "", 0)
	engine := trap.NewEngine(trap.EngineConfig{
		Catalog:  cat,
		Registry: reg,
		Policy:   trap.NewConfig(trap.PolicyFromTuning(tuning.Defaults().Policy)),
		Logger:   logger,
	})
	server := NewServer(engine, reg, cat, logger)
	engine.SetNotifier(server)

	srv := httptest.NewServer(server.Handler())
	t.Cleanup(srv.Close)
	return srv, reg
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func sendJSON(t *testing.T, conn *websocket.Conn, v any) {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func readMsg(t *testing.T, conn *websocket.Conn) (protocol.BaseMessage, []byte) {
	t.Helper()
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	base, err := protocol.DecodeBase(raw)
	if err != nil {
		t.Fatalf("decode %q: %v", raw, err)
	}
	return base, raw
}

// readUntil skips interleaved broadcasts (NOTIFY) until the wanted
// message type arrives.
func readUntil(t *testing.T, conn *websocket.Conn, msgType string) []byte {
	t.Helper()
	for i := 0; i < 8; i++ {
		base, raw := readMsg(t, conn)
		if base.Type == msgType {
			return raw
		}
		if base.Type != protocol.TypeNotify {
			t.Fatalf("unexpected %s while waiting for %s: %s", base.Type, msgType, raw)
		}
	}
	t.Fatalf("no %s received", msgType)
	return nil
}

func handshake(t *testing.T, conn *websocket.Conn) protocol.WelcomeMsg {
	t.Helper()
	sendJSON(t, conn, protocol.HelloMsg{
		Type:            protocol.TypeHello,
		ProtocolVersion: protocol.Version,
		ClientName:      "test-client",
	})
	_, raw := readMsg(t, conn)
	var welcome protocol.WelcomeMsg
	if err := json.Unmarshal(raw, &welcome); err != nil {
		t.Fatalf("welcome: %v", err)
	}
	if welcome.Type != protocol.TypeWelcome || welcome.SessionID == "" {
		t.Fatalf("bad welcome %s", raw)
	}
	return welcome
}

func spawn(t *testing.T, conn *websocket.Conn, spec protocol.ActorSpec) string {
	t.Helper()
	sendJSON(t, conn, protocol.SpawnMsg{
		Type:            protocol.TypeSpawn,
		ProtocolVersion: protocol.Version,
		ReqID:           "spawn-" + spec.Name,
		Actor:           spec,
	})
	raw := readUntil(t, conn, protocol.TypeSpawned)
	var m protocol.SpawnedMsg
	if err := json.Unmarshal(raw, &m); err != nil {
		t.Fatalf("spawned: %v", err)
	}
	if m.ActorID == "" {
		t.Fatalf("missing actor id in %s", raw)
	}
	return m.ActorID
}

func TestHandshakeReportsCatalog(t *testing.T) {
	srv, _ := newTestServer(t)
	conn := dial(t, srv)
	welcome := handshake(t, conn)
	if welcome.Catalog.Families != 7 || welcome.Catalog.GemsDigest == "" {
		t.Fatalf("bad catalog ref %+v", welcome.Catalog)
	}
}

func TestTrapRoundTrip(t *testing.T) {
	srv, reg := newTestServer(t)
	conn := dial(t, srv)
	handshake(t, conn)

	caster := spawn(t, conn, protocol.ActorSpec{Name: "hero", Soul: "none", Primary: true})
	victim := spawn(t, conn, protocol.ActorSpec{Name: "bandit", Soul: "grand", Dead: true})

	sendJSON(t, conn, protocol.GiveMsg{
		Type:            protocol.TypeGive,
		ProtocolVersion: protocol.Version,
		ReqID:           "give-1",
		ActorID:         caster,
		GemID:           "grand_gem_empty",
	})
	readUntil(t, conn, protocol.TypeAck)

	sendJSON(t, conn, protocol.TrapMsg{
		Type:            protocol.TypeTrap,
		ProtocolVersion: protocol.Version,
		ReqID:           "trap-1",
		CasterID:        caster,
		VictimID:        victim,
	})
	raw := readUntil(t, conn, protocol.TypeTrapResult)
	var result protocol.TrapResultMsg
	if err := json.Unmarshal(raw, &result); err != nil {
		t.Fatalf("result: %v", err)
	}
	if !result.Captured || result.ReqID != "trap-1" {
		t.Fatalf("unexpected result %s", raw)
	}

	inv, err := reg.SoulGems(actors.ID(caster))
	if err != nil {
		t.Fatalf("inventory: %v", err)
	}
	if inv["grand_gem_grand"].Count != 1 {
		t.Fatalf("gem not filled: %v", inv)
	}
}

func TestKillThenTrap(t *testing.T) {
	srv, _ := newTestServer(t)
	conn := dial(t, srv)
	handshake(t, conn)

	caster := spawn(t, conn, protocol.ActorSpec{Name: "hero", Soul: "none"})
	victim := spawn(t, conn, protocol.ActorSpec{Name: "wolf", Soul: "petty"})

	sendJSON(t, conn, protocol.GiveMsg{
		Type:            protocol.TypeGive,
		ProtocolVersion: protocol.Version,
		ReqID:           "give-1",
		ActorID:         caster,
		GemID:           "petty_gem_empty",
	})
	readUntil(t, conn, protocol.TypeAck)

	// A living victim cannot be trapped.
	sendJSON(t, conn, protocol.TrapMsg{
		Type:            protocol.TypeTrap,
		ProtocolVersion: protocol.Version,
		ReqID:           "trap-1",
		CasterID:        caster,
		VictimID:        victim,
	})
	raw := readUntil(t, conn, protocol.TypeTrapResult)
	var result protocol.TrapResultMsg
	if err := json.Unmarshal(raw, &result); err != nil {
		t.Fatalf("result: %v", err)
	}
	if result.Captured {
		t.Fatalf("living victim captured")
	}

	sendJSON(t, conn, protocol.KillMsg{
		Type:            protocol.TypeKill,
		ProtocolVersion: protocol.Version,
		ReqID:           "kill-1",
		ActorID:         victim,
	})
	readUntil(t, conn, protocol.TypeAck)

	sendJSON(t, conn, protocol.TrapMsg{
		Type:            protocol.TypeTrap,
		ProtocolVersion: protocol.Version,
		ReqID:           "trap-2",
		CasterID:        caster,
		VictimID:        victim,
	})
	raw = readUntil(t, conn, protocol.TypeTrapResult)
	if err := json.Unmarshal(raw, &result); err != nil {
		t.Fatalf("result: %v", err)
	}
	if !result.Captured {
		t.Fatalf("expected capture after kill")
	}
}

func TestRequestErrors(t *testing.T) {
	srv, _ := newTestServer(t)
	conn := dial(t, srv)
	handshake(t, conn)

	caster := spawn(t, conn, protocol.ActorSpec{Name: "hero", Soul: "none"})

	sendJSON(t, conn, protocol.GiveMsg{
		Type:            protocol.TypeGive,
		ProtocolVersion: protocol.Version,
		ReqID:           "give-1",
		ActorID:         caster,
		GemID:           "philosopher_stone",
	})
	raw := readUntil(t, conn, protocol.TypeError)
	var errMsg protocol.ErrorMsg
	if err := json.Unmarshal(raw, &errMsg); err != nil {
		t.Fatalf("error: %v", err)
	}
	if errMsg.Code != protocol.ErrUnknownGem {
		t.Fatalf("code = %s, want %s", errMsg.Code, protocol.ErrUnknownGem)
	}

	sendJSON(t, conn, protocol.SpawnMsg{
		Type:            protocol.TypeSpawn,
		ProtocolVersion: protocol.Version,
		ReqID:           "spawn-bad",
		Actor:           protocol.ActorSpec{Name: "odd", Soul: "colossal"},
	})
	raw = readUntil(t, conn, protocol.TypeError)
	if err := json.Unmarshal(raw, &errMsg); err != nil {
		t.Fatalf("error: %v", err)
	}
	if errMsg.Code != protocol.ErrBadRequest {
		t.Fatalf("code = %s, want %s", errMsg.Code, protocol.ErrBadRequest)
	}
}

func TestVersionMismatchRejected(t *testing.T) {
	srv, _ := newTestServer(t)
	conn := dial(t, srv)
	handshake(t, conn)

	sendJSON(t, conn, protocol.TrapMsg{
		Type:            protocol.TypeTrap,
		ProtocolVersion: "9.9",
		ReqID:           "trap-1",
	})
	raw := readUntil(t, conn, protocol.TypeError)
	var errMsg protocol.ErrorMsg
	if err := json.Unmarshal(raw, &errMsg); err != nil {
		t.Fatalf("error: %v", err)
	}
	if errMsg.Code != protocol.ErrProtoBadRequest {
		t.Fatalf("code = %s, want %s", errMsg.Code, protocol.ErrProtoBadRequest)
	}
}

func TestHandshakeRequiresHello(t *testing.T) {
	srv, _ := newTestServer(t)
	conn := dial(t, srv)

	sendJSON(t, conn, protocol.TrapMsg{
		Type:            protocol.TypeTrap,
		ProtocolVersion: protocol.Version,
	})
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatalf("connection should be closed without HELLO")
	}
}
