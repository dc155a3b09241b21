// Package ws exposes the trap service over a websocket endpoint.
package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"soulforge.gg/internal/catalog"
	"soulforge.gg/internal/protocol"
	"soulforge.gg/internal/sim/actors"
	"soulforge.gg/internal/sim/trap"
	"soulforge.gg/internal/soul"
)

type Server struct {
	engine *trap.Engine
	reg    *actors.Registry
	cat    *catalog.Catalog
	log    *log.Logger

	upgrader websocket.Upgrader

	mu       sync.Mutex
	sessions map[string]chan []byte
}

func NewServer(engine *trap.Engine, reg *actors.Registry, cat *catalog.Catalog, logger *log.Logger) *Server {
	return &Server{
		engine:   engine,
		reg:      reg,
		cat:      cat,
		log:      logger,
		sessions: map[string]chan []byte{},
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

// Notify implements trap.Notifier by pushing a NOTIFY message to every
// connected session. Delivery is best-effort: a slow client drops it.
func (s *Server) Notify(owner actors.ID, msg trap.Message) {
	b, err := json.Marshal(protocol.NotifyMsg{
		Type:            protocol.TypeNotify,
		ProtocolVersion: protocol.Version,
		OwnerID:         string(owner),
		Message:         msg.String(),
	})
	if err != nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, out := range s.sessions {
		select {
		case out <- b:
		default:
		}
	}
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		sessionID, out := s.handshake(conn)
		if sessionID == "" {
			return
		}
		defer s.dropSession(sessionID)

		done := make(chan struct{})
		defer close(done)

		// Writer goroutine.
		go func() {
			for {
				select {
				case <-done:
					return
				case b, ok := <-out:
					if !ok {
						return
					}
					_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						return
					}
				}
			}
		}()

		// Reader loop.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(120 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			base, err := protocol.DecodeBase(msg)
			if err != nil {
				s.send(out, errorMsg("", protocol.ErrProtoBadRequest, "malformed JSON"))
				continue
			}
			if base.ProtocolVersion != protocol.Version {
				s.send(out, errorMsg("", protocol.ErrProtoBadRequest, "bad protocol_version"))
				continue
			}
			s.dispatch(out, base.Type, msg)
		}
	}
}

func (s *Server) dispatch(out chan []byte, msgType string, raw []byte) {
	switch msgType {
	case protocol.TypeSpawn:
		var m protocol.SpawnMsg
		if err := json.Unmarshal(raw, &m); err != nil {
			s.send(out, errorMsg("", protocol.ErrProtoBadRequest, "malformed SPAWN"))
			return
		}
		s.handleSpawn(out, m)
	case protocol.TypeKill:
		var m protocol.KillMsg
		if err := json.Unmarshal(raw, &m); err != nil {
			s.send(out, errorMsg("", protocol.ErrProtoBadRequest, "malformed KILL"))
			return
		}
		s.handleKill(out, m)
	case protocol.TypeGive:
		var m protocol.GiveMsg
		if err := json.Unmarshal(raw, &m); err != nil {
			s.send(out, errorMsg("", protocol.ErrProtoBadRequest, "malformed GIVE"))
			return
		}
		s.handleGive(out, m)
	case protocol.TypeTrap:
		var m protocol.TrapMsg
		if err := json.Unmarshal(raw, &m); err != nil {
			s.send(out, errorMsg("", protocol.ErrProtoBadRequest, "malformed TRAP"))
			return
		}
		s.handleTrap(out, m)
	default:
		s.send(out, errorMsg("", protocol.ErrProtoBadRequest, "unknown message type"))
	}
}

func (s *Server) handleSpawn(out chan []byte, m protocol.SpawnMsg) {
	size, ok := soul.ParseSize(m.Actor.Soul)
	if !ok {
		s.send(out, errorMsg(m.ReqID, protocol.ErrBadRequest, "unknown soul size"))
		return
	}
	id, err := s.reg.Spawn(actors.Actor{
		Name:     m.Actor.Name,
		Soul:     size,
		Dead:     m.Actor.Dead,
		Teammate: m.Actor.Teammate,
		Primary:  m.Actor.Primary,
	})
	if err != nil {
		s.send(out, errorMsg(m.ReqID, protocol.ErrConflict, err.Error()))
		return
	}
	s.send(out, protocol.SpawnedMsg{
		Type:            protocol.TypeSpawned,
		ProtocolVersion: protocol.Version,
		ReqID:           m.ReqID,
		ActorID:         string(id),
	})
}

func (s *Server) handleKill(out chan []byte, m protocol.KillMsg) {
	if err := s.reg.Kill(actors.ID(m.ActorID)); err != nil {
		s.send(out, errorMsg(m.ReqID, protocol.ErrUnknownActor, err.Error()))
		return
	}
	s.send(out, ack(m.ReqID))
}

func (s *Server) handleGive(out chan []byte, m protocol.GiveMsg) {
	if _, ok := s.cat.Kind(catalog.GemID(m.GemID)); !ok {
		s.send(out, errorMsg(m.ReqID, protocol.ErrUnknownGem, "unknown gem kind"))
		return
	}
	count := m.Count
	if count <= 0 {
		count = 1
	}
	var meta *actors.GemMeta
	if m.OwnerID != "" || m.ExtraSoul != "" {
		extra := soul.SizeNone
		if m.ExtraSoul != "" {
			var ok bool
			if extra, ok = soul.ParseSize(m.ExtraSoul); !ok {
				s.send(out, errorMsg(m.ReqID, protocol.ErrBadRequest, "unknown extra soul size"))
				return
			}
		}
		meta = &actors.GemMeta{Owner: actors.ID(m.OwnerID), ExtraSoul: extra}
	}
	if err := s.reg.AddGem(actors.ID(m.ActorID), catalog.GemID(m.GemID), meta, count); err != nil {
		s.send(out, errorMsg(m.ReqID, protocol.ErrUnknownActor, err.Error()))
		return
	}
	s.send(out, ack(m.ReqID))
}

func (s *Server) handleTrap(out chan []byte, m protocol.TrapMsg) {
	captured := s.engine.Trap(actors.ID(m.CasterID), actors.ID(m.VictimID))
	s.send(out, protocol.TrapResultMsg{
		Type:            protocol.TypeTrapResult,
		ProtocolVersion: protocol.Version,
		ReqID:           m.ReqID,
		Captured:        captured,
	})
}

func (s *Server) handshake(conn *websocket.Conn) (sessionID string, out chan []byte) {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return "", nil
	}

	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeHello {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "expected HELLO"), time.Now().Add(time.Second))
		return "", nil
	}
	if base.ProtocolVersion != protocol.Version {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "bad protocol_version"), time.Now().Add(time.Second))
		return "", nil
	}

	sessionID = uuid.NewString()
	out = make(chan []byte, 16)

	s.mu.Lock()
	s.sessions[sessionID] = out
	s.mu.Unlock()

	welcome, err := json.Marshal(protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		SessionID:       sessionID,
		Catalog: protocol.CatalogRef{
			GemsDigest: s.cat.Digest,
			Families:   len(s.cat.Groups()),
		},
	})
	if err != nil {
		s.dropSession(sessionID)
		return "", nil
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if err := conn.WriteMessage(websocket.TextMessage, welcome); err != nil {
		s.dropSession(sessionID)
		return "", nil
	}
	return sessionID, out
}

func (s *Server) dropSession(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

func (s *Server) send(out chan []byte, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		s.log.Printf("ws: marshal: %v", err)
		return
	}
	select {
	case out <- b:
	default:
		s.log.Printf("ws: dropping message, client too slow")
	}
}

func ack(reqID string) protocol.AckMsg {
	return protocol.AckMsg{Type: protocol.TypeAck, ProtocolVersion: protocol.Version, ReqID: reqID}
}

func errorMsg(reqID, code, message string) protocol.ErrorMsg {
	return protocol.ErrorMsg{
		Type:            protocol.TypeError,
		ProtocolVersion: protocol.Version,
		ReqID:           reqID,
		Code:            code,
		Message:         message,
	}
}
