package httpserver

import (
	"net/http"
	"time"
)

// New builds the API server. Timeouts are deliberately generous: stage
// submissions carry small JSON bodies, but the registration gate holds a
// row lock and must not be cut off mid-transaction by the server.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
}
