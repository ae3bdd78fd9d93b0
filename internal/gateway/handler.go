package gateway

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/cors"
)

const indexBody = "bw-server: real-time word game server. Connect with a WebSocket client, or GET /health.\n"

// Handler returns the full HTTP surface: /health for probes, WebSocket
// upgrades on any path, and a plain informational page for everything else.
// The whole mux is wrapped in permissive CORS since game clients are served
// from arbitrary origins.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if websocket.IsWebSocketUpgrade(r) {
			s.HandleSocket(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(indexBody))
	})

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	})
	return c.Handler(mux)
}
