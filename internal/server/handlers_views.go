package server

import (
	"net/http"

	"sketch-party/internal/web"

	"github.com/a-h/templ"
)

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	templ.Handler(web.Home()).ServeHTTP(w, r)
}
