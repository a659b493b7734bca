package server

import (
	"net/http"
	"sync"

	"sketch-party/internal/config"

	"gorm.io/gorm"
)

type Server struct {
	session *Session
	db      *gorm.DB
	lobbyWS *lobbyHub
	cfg     config.Config

	persistMu   sync.Mutex
	gameDBID    uint
	roundDBID   uint
	playerDBIDs map[string]uint
}

func New(conn *gorm.DB, cfg config.Config) *Server {
	return &Server{
		session:     newSession(cfg),
		db:          conn,
		lobbyWS:     newLobbyHub(),
		cfg:         cfg,
		playerDBIDs: make(map[string]uint),
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /", s.handleHome)
	mux.HandleFunc("GET /api/game", s.handleGetGame)
	mux.HandleFunc("GET /api/", s.handleAPINotFound)
	mux.HandleFunc("GET /ws", s.handleWebsocket)
	mux.HandleFunc("GET /ws/lobby", s.handleLobbyWebsocket)
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir("static"))))
	return mux
}
