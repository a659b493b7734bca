package server

import "net/http"

// handleGetGame returns the observer view of the session: roster,
// scores and round progress, never the word.
func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.session.observerSnapshot())
}

func (s *Server) handleAPINotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "not found")
}
