package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait       = 10 * time.Second
	pingInterval    = 30 * time.Second
	maxMessageBytes = 64 * 1024
	sendBufferSize  = 256
)

var pingPayload = []byte(`{"type":"ping"}`)

// wsMessage is the envelope for everything a player connection sends.
type wsMessage struct {
	Type   string          `json:"type"`
	Player string          `json:"player"`
	Guess  string          `json:"guess"`
	Data   json.RawMessage `json:"data"`
}

// wsClient owns one player websocket. Writes go through a buffered
// channel so a stalled connection fails its own sends instead of
// holding up a broadcast.
type wsClient struct {
	id   string
	conn *websocket.Conn
	send chan []byte

	mu     sync.Mutex
	closed bool
}

func newWSClient(conn *websocket.Conn) *wsClient {
	return &wsClient{
		id:   newConnID(),
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}
}

// Send queues payload for the write pump. It fails when the buffer is
// full or the connection is closing; callers treat that as a dead peer.
func (c *wsClient) Send(payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- data:
		return nil
	default:
		return errors.New("send buffer full")
	}
}

func (c *wsClient) close() {
	c.mu.Lock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
	c.mu.Unlock()
}

func (c *wsClient) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, pingPayload); err != nil {
				return
			}
		}
	}
}

// lobbyHub fans lobby status out to observer connections. Writes stay
// under the lock: a lobby payload is small and gorilla connections do
// not allow concurrent writers.
type lobbyHub struct {
	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

func newLobbyHub() *lobbyHub {
	return &lobbyHub{
		conns: make(map[*websocket.Conn]struct{}),
	}
}

// Register writes the current status to conn and adds it to the set in
// one step, so no broadcast slips between the two.
func (h *lobbyHub) Register(conn *websocket.Conn, status any) {
	data, err := json.Marshal(status)
	if err != nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		_ = conn.Close()
		return
	}
	h.conns[conn] = struct{}{}
}

func (h *lobbyHub) Remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, conn)
	_ = conn.Close()
}

func (h *lobbyHub) Broadcast(payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.conns {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			delete(h.conns, conn)
			_ = conn.Close()
		}
	}
}

func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{CheckOrigin: s.checkOrigin}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed remote=%s error=%v", r.RemoteAddr, err)
		return
	}
	client := newWSClient(conn)
	log.Printf("ws connected conn_id=%s remote=%s", client.id, r.RemoteAddr)
	go client.writePump()
	go s.readWS(client)
}

func (s *Server) handleLobbyWebsocket(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{CheckOrigin: s.checkOrigin}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("lobby ws upgrade failed remote=%s error=%v", r.RemoteAddr, err)
		return
	}
	log.Printf("lobby ws connected remote=%s", r.RemoteAddr)
	s.lobbyWS.Register(conn, s.session.lobbyStatus())
	go s.readLobbyWS(conn)
}

// readWS is the per-connection dispatch loop. The name bound by a
// successful join sticks to the connection; teardown leaves the session
// on its behalf.
func (s *Server) readWS(client *wsClient) {
	player := ""
	defer func() {
		client.close()
		if player != "" {
			s.leavePlayer(client, player)
		}
	}()
	client.conn.SetReadLimit(maxMessageBytes)
	for {
		_, data, err := client.conn.ReadMessage()
		if err != nil {
			log.Printf("ws disconnected conn_id=%s player=%s error=%v", client.id, player, err)
			return
		}
		var msg wsMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("ws message rejected conn_id=%s error=%v", client.id, err)
			continue
		}
		switch msg.Type {
		case msgTypeJoin:
			if name, ok := s.joinPlayer(client, player, msg.Player); ok {
				player = name
			}
		case msgTypeDrawing:
			s.relayDrawing(player, msg.Data)
		case msgTypeGuess:
			s.submitGuess(player, msg.Guess)
		case msgTypeResetGame:
			s.resetGame(client, player)
		case msgTypePong:
			// liveness reply, nothing to do
		default:
			log.Printf("ws message ignored conn_id=%s type=%q", client.id, msg.Type)
		}
	}
}

func (s *Server) readLobbyWS(conn *websocket.Conn) {
	defer s.lobbyWS.Remove(conn)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			log.Printf("lobby ws disconnected error=%v", err)
			return
		}
	}
}

// checkOrigin admits same-host browsers plus the configured frontend
// origins. A missing Origin header means a non-browser client.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	parsed, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if strings.EqualFold(parsed.Host, r.Host) {
		return true
	}
	for _, allowed := range s.cfg.AllowedOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	return false
}

func (s *Server) broadcastLobbyUpdate() {
	if s.lobbyWS == nil {
		return
	}
	s.lobbyWS.Broadcast(s.session.lobbyStatus())
}
