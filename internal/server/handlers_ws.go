package server

import (
	"encoding/json"
	"log"
)

// joinPlayer validates and seats a new player. bound is the name
// already attached to this connection; a connection joins at most once.
func (s *Server) joinPlayer(client *wsClient, bound, rawName string) (string, bool) {
	if bound != "" {
		_ = client.Send(joinErrorPayload(rawName, "already joined"))
		return "", false
	}
	name, err := validateName(rawName)
	if err != nil {
		_ = client.Send(joinErrorPayload(rawName, err.Error()))
		return "", false
	}
	out, err := s.session.Join(name, client)
	if err != nil {
		log.Printf("join rejected conn_id=%s player=%s reason=%v", client.id, name, err)
		_ = client.Send(joinErrorPayload(name, err.Error()))
		return "", false
	}
	log.Printf("player joined conn_id=%s player=%s", client.id, name)
	if err := s.persistPlayerJoined(name); err != nil {
		log.Printf("persist join failed player=%s error=%v", name, err)
	}
	s.persistOutcome(out)
	deliver(out.deliveries)
	s.broadcastLobbyUpdate()
	return name, true
}

func (s *Server) leavePlayer(client *wsClient, name string) {
	out := s.session.Leave(name)
	log.Printf("player left conn_id=%s player=%s", client.id, name)
	if err := s.persistPlayerLeft(name); err != nil {
		log.Printf("persist leave failed player=%s error=%v", name, err)
	}
	s.persistOutcome(out)
	deliver(out.deliveries)
	s.broadcastLobbyUpdate()
}

// relayDrawing forwards a stroke frame. Frames from connections that
// never joined, oversized frames and frames without coordinates are
// dropped before they reach the session.
func (s *Server) relayDrawing(player string, data json.RawMessage) {
	if player == "" || len(data) == 0 {
		return
	}
	if len(data) > maxDrawingBytes {
		log.Printf("drawing dropped player=%s bytes=%d", player, len(data))
		return
	}
	if !hasStrokeCoords(data) {
		return
	}
	out := s.session.RelayDrawing(player, data)
	deliver(out.deliveries)
}

func (s *Server) submitGuess(player, text string) {
	if player == "" {
		return
	}
	if len(text) > maxGuessLength {
		log.Printf("guess dropped player=%s reason=too_long", player)
		return
	}
	out, hit := s.session.SubmitGuess(player, text)
	if err := s.persistGuess(player, text, hit); err != nil {
		log.Printf("persist guess failed player=%s error=%v", player, err)
	}
	if !hit {
		return
	}
	if err := s.persistCorrectGuess(player); err != nil {
		log.Printf("persist score failed player=%s error=%v", player, err)
	}
	s.persistOutcome(out)
	deliver(out.deliveries)
	s.broadcastLobbyUpdate()
}

// resetGame is deliberately open: any connection may ask for a fresh
// game, joined or not.
func (s *Server) resetGame(client *wsClient, player string) {
	log.Printf("game reset conn_id=%s player=%s", client.id, player)
	out := s.session.Reset()
	if out.reset != nil {
		if err := s.persistReset(out.reset); err != nil {
			log.Printf("persist reset failed error=%v", err)
		}
	}
	s.persistOutcome(out)
	deliver(out.deliveries)
	s.broadcastLobbyUpdate()
}

// persistOutcome records the state transitions an operation produced.
// Audit failures are logged and never affect gameplay.
func (s *Server) persistOutcome(out outcome) {
	if out.round != nil {
		if err := s.persistRound(*out.round); err != nil {
			log.Printf("persist round failed round=%d error=%v", out.round.number, err)
		}
	}
	if out.gameOver != nil {
		if err := s.persistGameOver(out.gameOver); err != nil {
			log.Printf("persist game over failed error=%v", err)
		}
	}
}
