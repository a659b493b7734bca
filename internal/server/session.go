package server

import (
	"encoding/json"
	"errors"
	"log"
	"math/rand"
	"strings"
	"sync"

	"sketch-party/internal/config"
)

// Session holds the single shared game: the roster, the active round
// and the running scores. Every operation serializes on mu; outgoing
// payloads are assembled under the lock and delivered after release.
type Session struct {
	mu           sync.Mutex
	players      []Player
	currentTurn  string
	currentWord  string
	roundsPlayed int

	roundTime  int
	minPlayers int
	maxPlayers int
	maxRounds  int
	words      []string
}

func newSession(cfg config.Config) *Session {
	return &Session{
		roundTime:  cfg.RoundTimeSeconds,
		minPlayers: cfg.MinPlayers,
		maxPlayers: cfg.MaxPlayers,
		maxRounds:  cfg.MaxRounds,
		words:      cfg.Words,
	}
}

// Join seats a new player and queues the acknowledgement on sink.
// Reaching the minimum roster with no round running starts the first
// round.
func (s *Session) Join(name string, sink MessageSink) (outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out outcome
	if s.findPlayerLocked(name) != nil {
		return out, errors.New("name already taken")
	}
	if s.maxPlayers > 0 && len(s.players) >= s.maxPlayers {
		return out, errors.New("lobby full")
	}

	s.players = append(s.players, Player{Name: name, sink: sink})
	out.add(delivery{player: name, to: sink, payload: joinAckPayload(name)})
	if len(s.players) >= s.minPlayers && s.currentTurn == "" {
		s.startNewRoundLocked(&out)
	}
	s.broadcastStateOnceLocked(&out)
	return out, nil
}

// Leave removes name from the roster. When the drawer leaves the round
// rolls over for the remaining players; otherwise the round continues.
func (s *Session) Leave(name string) outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out outcome
	index := -1
	for i := range s.players {
		if s.players[i].Name == name {
			index = i
			break
		}
	}
	if index < 0 {
		return out
	}
	wasDrawer := name == s.currentTurn
	s.players = append(s.players[:index], s.players[index+1:]...)
	if wasDrawer {
		s.startNewRoundLocked(&out)
	}
	s.broadcastStateOnceLocked(&out)
	return out
}

// SubmitGuess scores text against the current word. Misses are silent.
// A hit raises the guesser's score, announces it to everyone and rolls
// the round. The drawer cannot guess, and comparison is exact after
// lowercasing: no trimming, no fuzzy matching.
func (s *Session) SubmitGuess(name, text string) (outcome, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out outcome
	player := s.findPlayerLocked(name)
	if player == nil || s.currentWord == "" || name == s.currentTurn {
		return out, false
	}
	if strings.ToLower(text) != strings.ToLower(s.currentWord) {
		return out, false
	}

	player.Score++
	word := s.currentWord
	announce := correctGuessPayload(name, word)
	for i := range s.players {
		out.add(delivery{player: s.players[i].Name, to: s.players[i].sink, payload: announce})
	}
	log.Printf("correct guess player=%s word=%s score=%d", name, word, player.Score)
	s.startNewRoundLocked(&out)
	return out, true
}

// RelayDrawing forwards a stroke from the current drawer to every other
// player. Strokes from anyone else are dropped.
func (s *Session) RelayDrawing(name string, data json.RawMessage) outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out outcome
	if name == "" || name != s.currentTurn {
		return out
	}
	frame := drawingPayload(data)
	for i := range s.players {
		if s.players[i].Name == name {
			continue
		}
		out.add(delivery{player: s.players[i].Name, to: s.players[i].sink, payload: frame})
	}
	return out
}

// Reset zeroes every score and the round counter, then starts a fresh
// round for the current roster. The prior scores are reported back for
// the audit trail.
func (s *Session) Reset() outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	prior := make(map[string]int, len(s.players))
	for i := range s.players {
		prior[s.players[i].Name] = s.players[i].Score
		s.players[i].Score = 0
	}
	s.roundsPlayed = 0

	var out outcome
	out.reset = prior
	s.startNewRoundLocked(&out)
	s.broadcastStateOnceLocked(&out)
	return out
}

// startNewRoundLocked advances the round counter and hands the turn to
// a player other than the current drawer. With fewer than two players
// the round state is cleared instead; past maxRounds the game ends.
// The counter stays where the overflow left it so that the game-over
// state is re-announced if play somehow continues.
func (s *Session) startNewRoundLocked(out *outcome) {
	if len(s.players) < 2 {
		s.currentTurn = ""
		s.currentWord = ""
		return
	}
	s.roundsPlayed++
	if s.roundsPlayed > s.maxRounds {
		s.gameOverLocked(out)
		return
	}
	eligible := make([]string, 0, len(s.players))
	for _, p := range s.players {
		if p.Name != s.currentTurn {
			eligible = append(eligible, p.Name)
		}
	}
	s.currentTurn = eligible[rand.Intn(len(eligible))]
	s.currentWord = s.words[rand.Intn(len(s.words))]
	out.round = &roundStart{number: s.roundsPlayed, drawer: s.currentTurn, word: s.currentWord}
	log.Printf("round started round=%d drawer=%s", s.roundsPlayed, s.currentTurn)
	s.broadcastGameStateLocked(out)
}

func (s *Session) gameOverLocked(out *outcome) {
	scores := make(map[string]int, len(s.players))
	for _, p := range s.players {
		scores[p.Name] = p.Score
	}
	payload := gameOverPayload(scores)
	for i := range s.players {
		out.add(delivery{player: s.players[i].Name, to: s.players[i].sink, payload: payload})
	}
	out.gameOver = scores
	out.broadcast = true
	log.Printf("game over rounds_played=%d players=%d", s.roundsPlayed, len(s.players))
}

func (s *Session) findPlayerLocked(name string) *Player {
	for i := range s.players {
		if s.players[i].Name == name {
			return &s.players[i]
		}
	}
	return nil
}
