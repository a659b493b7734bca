package server

// Message types accepted from player connections.
const (
	msgTypeJoin      = "join"
	msgTypeDrawing   = "drawing"
	msgTypeGuess     = "guess"
	msgTypeResetGame = "reset_game"
	msgTypePong      = "pong"
)

// Message types emitted to clients.
const (
	msgTypePlayerJoined = "player_joined"
	msgTypeGameState    = "game_state"
	msgTypeGameOver     = "game_over"
	msgTypeCorrectGuess = "correct_guess"
	msgTypePing         = "ping"
	msgTypeLobby        = "lobby"
)

// MessageSink is the delivery end of a player connection. Session code
// never touches websockets directly; it addresses payloads to sinks.
type MessageSink interface {
	Send(payload any) error
}

// Player is one seat in the session. Slice order is join order and is
// preserved in every roster payload.
type Player struct {
	Name  string
	Score int
	sink  MessageSink
}

// delivery is a payload addressed to a single player. Batches are
// assembled under the session lock and sent after it is released.
type delivery struct {
	player  string
	to      MessageSink
	payload any
}

// roundStart records a round transition for the audit trail.
type roundStart struct {
	number int
	drawer string
	word   string
}

// outcome is what a session operation hands back to the transport
// layer: the payloads to deliver plus the transitions worth persisting.
// broadcast marks that a full game_state (or game_over) fan-out is
// already queued, so the operation must not append a second one.
type outcome struct {
	deliveries []delivery
	round      *roundStart
	gameOver   map[string]int
	reset      map[string]int
	broadcast  bool
}

func (o *outcome) add(d delivery) {
	o.deliveries = append(o.deliveries, d)
}
