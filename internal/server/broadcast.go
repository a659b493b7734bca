package server

import (
	"encoding/json"
	"log"
)

func joinAckPayload(name string) map[string]any {
	return map[string]any{
		"type":    msgTypePlayerJoined,
		"player":  name,
		"status":  "success",
		"message": "Successfully joined as " + name,
	}
}

func joinErrorPayload(name, reason string) map[string]any {
	return map[string]any{
		"type":    msgTypePlayerJoined,
		"player":  name,
		"status":  "error",
		"message": reason,
	}
}

func correctGuessPayload(name, word string) map[string]any {
	return map[string]any{
		"type":   msgTypeCorrectGuess,
		"player": name,
		"word":   word,
	}
}

func drawingPayload(data json.RawMessage) map[string]any {
	return map[string]any{
		"type": msgTypeDrawing,
		"data": data,
	}
}

func gameOverPayload(scores map[string]int) map[string]any {
	return map[string]any{
		"type":   msgTypeGameOver,
		"scores": scores,
	}
}

// gameStatePayloadLocked renders the session for one viewer. The word
// is included only when the viewer holds the turn; every other field is
// identical across recipients.
func (s *Session) gameStatePayloadLocked(viewer string) map[string]any {
	players := make([]map[string]any, 0, len(s.players))
	for _, p := range s.players {
		players = append(players, map[string]any{
			"name":   p.Name,
			"score":  p.Score,
			"isSelf": p.Name == viewer,
		})
	}
	var turn any
	if s.currentTurn != "" {
		turn = s.currentTurn
	}
	var word any
	if s.currentTurn != "" && viewer == s.currentTurn {
		word = s.currentWord
	}
	return map[string]any{
		"type": msgTypeGameState,
		"state": map[string]any{
			"currentTurn":  turn,
			"word":         word,
			"players":      players,
			"roundsPlayed": s.roundsPlayed,
			"maxRounds":    s.maxRounds,
			"roundTime":    s.roundTime,
		},
	}
}

func (s *Session) broadcastGameStateLocked(out *outcome) {
	for i := range s.players {
		p := &s.players[i]
		out.add(delivery{player: p.Name, to: p.sink, payload: s.gameStatePayloadLocked(p.Name)})
	}
	out.broadcast = true
}

// broadcastStateOnceLocked closes an operation with a single state
// fan-out unless one is already queued.
func (s *Session) broadcastStateOnceLocked(out *outcome) {
	if out.broadcast {
		return
	}
	s.broadcastGameStateLocked(out)
}

// observerSnapshot is the REST view of the session. It never carries
// the word.
func (s *Session) observerSnapshot() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	players := make([]map[string]any, 0, len(s.players))
	for _, p := range s.players {
		players = append(players, map[string]any{
			"name":  p.Name,
			"score": p.Score,
		})
	}
	var turn any
	if s.currentTurn != "" {
		turn = s.currentTurn
	}
	return map[string]any{
		"currentTurn":  turn,
		"players":      players,
		"roundsPlayed": s.roundsPlayed,
		"maxRounds":    s.maxRounds,
		"roundTime":    s.roundTime,
		"roundActive":  s.currentTurn != "",
	}
}

// lobbyStatus feeds the observer websocket on /ws/lobby.
func (s *Session) lobbyStatus() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.players))
	for _, p := range s.players {
		names = append(names, p.Name)
	}
	return map[string]any{
		"type":         msgTypeLobby,
		"players":      names,
		"roundsPlayed": s.roundsPlayed,
		"maxRounds":    s.maxRounds,
		"roundActive":  s.currentTurn != "",
		"minPlayers":   s.minPlayers,
	}
}

// deliver sends a batch assembled under the session lock. A failing
// sink is logged and skipped; it never blocks the rest of the batch.
func deliver(batch []delivery) {
	for _, d := range batch {
		if d.to == nil {
			continue
		}
		if err := d.to.Send(d.payload); err != nil {
			log.Printf("ws send failed player=%s error=%v", d.player, err)
		}
	}
}
