// Package site serves the embedded scoreboard page.
package site

import (
	"context"
	"errors"
	"net/http"
)

var ErrServe = errors.New("scoreboard serve failed")

// Register attaches the scoreboard at / to mux. The page polls /clock and
// /notifications.
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.Handle("/", NewRootHandler())
}

// RootHandler serves the embedded scoreboard files.
type RootHandler struct {
	files http.Handler
}

func NewRootHandler() *RootHandler {
	return &RootHandler{files: http.FileServer(FS())}
}

// ServeHTTP only answers GET and HEAD.
func (h *RootHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.NotFound(w, r)
		return
	}
	h.files.ServeHTTP(w, r)
}
